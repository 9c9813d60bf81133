// internal/nutrition/fallback.go
package nutrition

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Rahulcodess/macro-factor/internal/models"
)

// FallbackClient asks a chat model for an estimate when neither external
// nutrition source produced data. Unlike the adapters this client surfaces
// errors: at this point there is no next source to fall through to.
type FallbackClient struct {
	httpClient *http.Client
	apiURL     string
	apiKey     string
	model      string
	defaults   models.ProfileDefaults
}

// NewFallbackClient builds a client from the environment. LLM_API_URL,
// OPENROUTER_API_KEY and OPENROUTER_MODEL configure the endpoint; profile
// defaults are passed in explicitly rather than read from globals.
func NewFallbackClient(defaults models.ProfileDefaults) *FallbackClient {
	apiURL := os.Getenv("LLM_API_URL")
	if apiURL == "" {
		apiURL = "https://openrouter.ai/api/v1/chat/completions"
	}

	model := os.Getenv("OPENROUTER_MODEL")
	if model == "" {
		model = "anthropic/claude-3.5-sonnet"
	}

	return &FallbackClient{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		apiURL:   apiURL,
		apiKey:   os.Getenv("OPENROUTER_API_KEY"),
		model:    model,
		defaults: defaults,
	}
}

const fallbackSystemPrompt = `You are a nutrition expert estimating calories and macronutrients for food diary entries.

IMPORTANT: Always respond with a single valid JSON object in this exact format, and nothing else:
{
  "calories": [number, kilocalories for the described serving],
  "protein_g": [number],
  "carbs_g": [number],
  "fat_g": [number],
  "confidence_range": "[a short qualifier like ±15%]"
}

Estimate for the exact quantity described. Use typical preparations unless stated otherwise.`

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type fallbackEstimate struct {
	Calories        float64 `json:"calories"`
	ProteinG        float64 `json:"protein_g"`
	CarbsG          float64 `json:"carbs_g"`
	FatG            float64 `json:"fat_g"`
	ConfidenceRange string  `json:"confidence_range"`
}

// Estimate requests a structured estimate for the query. hint carries any
// partial nutrition data another source already found, so the model can
// anchor on it instead of guessing from scratch.
func (c *FallbackClient) Estimate(ctx context.Context, query models.FoodQuery, hint string) (*models.SourceResult, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Food: %q", query.Description)
	if query.DeclaredGrams > 0 {
		fmt.Fprintf(&sb, "\nDeclared weight: %.0f g", query.DeclaredGrams)
	}
	if hint != "" {
		fmt.Fprintf(&sb, "\nKnown nutrition data: %s", hint)
	}
	if c.defaults.WeightKg > 0 {
		fmt.Fprintf(&sb, "\nContext: typical adult, age %d, weight %.0f kg, goal %s.",
			c.defaults.AgeYears, c.defaults.WeightKg, c.defaults.Goal)
	}

	content, err := c.complete(ctx, sb.String())
	if err != nil {
		return nil, err
	}

	content = stripCodeFence(content)
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("model returned empty content")
	}

	var est fallbackEstimate
	if err := json.Unmarshal([]byte(content), &est); err != nil {
		return nil, fmt.Errorf("model returned unparsable JSON: %w", err)
	}

	confidence := est.ConfidenceRange
	if confidence == "" {
		confidence = "±25%"
	}

	return &models.SourceResult{
		Source:     models.SourceModelFallback,
		Calories:   est.Calories,
		ProteinG:   est.ProteinG,
		CarbsG:     est.CarbsG,
		FatG:       est.FatG,
		Basis:      models.BasisTotalForQuery,
		Confidence: confidence,
	}, nil
}

func (c *FallbackClient) complete(ctx context.Context, userPrompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: fallbackSystemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens:   500,
		Temperature: 0.1,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("completion request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode completion response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("completion response contained no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}

// stripCodeFence removes a surrounding markdown code fence, with or without
// a language tag, before JSON parsing.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
