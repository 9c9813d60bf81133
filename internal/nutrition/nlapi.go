// internal/nutrition/nlapi.go
package nutrition

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/Rahulcodess/macro-factor/internal/models"
)

// maxQueryChars caps the free text sent upstream; the API rejects very long
// queries and nothing useful lives past this point anyway.
const maxQueryChars = 1500

// NaturalLanguageClient wraps the natural-language nutrition API. The API
// parses quantity words out of the text itself ("3 eggs", "1lb chicken") and
// returns absolute totals, so its results never need re-scaling.
//
// Fail-closed: every failure mode (no credential, transport error, bad
// status, empty or invalid payload) yields nil, never an error.
type NaturalLanguageClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewNaturalLanguageClient builds a client from the environment.
// NUTRITION_API_KEY is required for the client to be configured;
// NUTRITION_API_URL overrides the default endpoint.
func NewNaturalLanguageClient() *NaturalLanguageClient {
	baseURL := os.Getenv("NUTRITION_API_URL")
	if baseURL == "" {
		baseURL = "https://api.calorieninjas.com"
	}

	return &NaturalLanguageClient{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
		apiKey:  os.Getenv("NUTRITION_API_KEY"),
	}
}

// Configured reports whether a credential is present.
func (c *NaturalLanguageClient) Configured() bool {
	return c.apiKey != ""
}

type nlItem struct {
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbohydrates_total_g"`
	FatG     float64 `json:"fat_total_g"`
}

type nlResponse struct {
	Items []nlItem `json:"items"`
}

// Lookup queries the API with the raw food text and sums all returned line
// items into one total-for-query result. Returns nil when no usable data
// came back.
func (c *NaturalLanguageClient) Lookup(ctx context.Context, query string) *models.SourceResult {
	if !c.Configured() {
		return nil
	}
	if len(query) > maxQueryChars {
		query = query[:maxQueryChars]
	}

	reqURL := c.baseURL + "/v1/nutrition?query=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("nutrition API lookup failed: %v", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("nutrition API returned status %d", resp.StatusCode)
		return nil
	}

	var parsed nlResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		log.Printf("nutrition API returned invalid JSON: %v", err)
		return nil
	}
	if len(parsed.Items) == 0 {
		return nil
	}

	result := &models.SourceResult{
		Source:     models.SourceNaturalLanguageAPI,
		Basis:      models.BasisTotalForQuery,
		Confidence: "±10%",
	}
	for _, item := range parsed.Items {
		result.Calories += item.Calories
		result.ProteinG += item.ProteinG
		result.CarbsG += item.CarbsG
		result.FatG += item.FatG
	}
	if result.Calories <= 0 {
		return nil
	}

	return result
}
