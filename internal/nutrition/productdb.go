// internal/nutrition/productdb.go
package nutrition

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/Rahulcodess/macro-factor/internal/models"
)

// ProductClient wraps the Open Food Facts style product database. Results
// are energy densities per 100g and must be scaled to the serving weight by
// the reconciler. Same fail-closed contract as the language client.
type ProductClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewProductClient builds a client from the environment. PRODUCT_DB_URL
// overrides the default host; setting it to "off" disables the source.
func NewProductClient() *ProductClient {
	baseURL := os.Getenv("PRODUCT_DB_URL")
	if baseURL == "off" {
		baseURL = ""
	} else if baseURL == "" {
		baseURL = "https://world.openfoodfacts.org"
	}

	return &ProductClient{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
	}
}

// Configured reports whether the source is enabled.
func (c *ProductClient) Configured() bool {
	return c.baseURL != ""
}

type product struct {
	Code        string         `json:"code"`
	ProductName string         `json:"product_name"`
	Nutriments  map[string]any `json:"nutriments"`
}

type searchResponse struct {
	Products []product `json:"products"`
}

type productResponse struct {
	Status  int      `json:"status"`
	Product *product `json:"product"`
}

// Search finds the first product matching the query that reports an
// energy-per-100g figure. Returns nil when nothing usable matches.
func (c *ProductClient) Search(ctx context.Context, query string) *models.SourceResult {
	if !c.Configured() {
		return nil
	}

	params := url.Values{}
	params.Set("search_terms", query)
	params.Set("search_simple", "1")
	params.Set("action", "process")
	params.Set("json", "1")
	params.Set("page_size", "5")
	reqURL := c.baseURL + "/cgi/search.pl?" + params.Encode()

	var parsed searchResponse
	if !c.getJSON(ctx, reqURL, &parsed) {
		return nil
	}
	for i := range parsed.Products {
		if result := normalizeProduct(&parsed.Products[i]); result != nil {
			return result
		}
	}
	return nil
}

// LookupBarcode fetches one product directly by its barcode.
func (c *ProductClient) LookupBarcode(ctx context.Context, code string) *models.SourceResult {
	if !c.Configured() || code == "" {
		return nil
	}

	reqURL := fmt.Sprintf("%s/api/v2/product/%s.json", c.baseURL, url.PathEscape(code))
	var parsed productResponse
	if !c.getJSON(ctx, reqURL, &parsed) {
		return nil
	}
	if parsed.Status != 1 || parsed.Product == nil {
		return nil
	}
	return normalizeProduct(parsed.Product)
}

func (c *ProductClient) getJSON(ctx context.Context, reqURL string, target any) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("product database lookup failed: %v", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("product database returned status %d", resp.StatusCode)
		return false
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		log.Printf("product database returned invalid JSON: %v", err)
		return false
	}
	return true
}

// normalizeProduct maps a raw product record onto a per-100g SourceResult.
// Prefers the kcal field; falls back to kJ converted. Products without an
// energy figure are skipped.
func normalizeProduct(p *product) *models.SourceResult {
	kcal, ok := nutrimentFloat(p.Nutriments, "energy-kcal_100g")
	if !ok {
		if kj, okJ := nutrimentFloat(p.Nutriments, "energy-kj_100g"); okJ {
			kcal, ok = kj/4.184, true
		}
	}
	if !ok || kcal <= 0 {
		return nil
	}

	result := &models.SourceResult{
		Source:     models.SourceProductDatabase,
		Calories:   kcal,
		Basis:      models.BasisPer100Grams,
		Confidence: "±10%",
	}
	if v, ok := nutrimentFloat(p.Nutriments, "proteins_100g"); ok {
		result.ProteinG = v
	}
	if v, ok := nutrimentFloat(p.Nutriments, "carbohydrates_100g"); ok {
		result.CarbsG = v
	}
	if v, ok := nutrimentFloat(p.Nutriments, "fat_100g"); ok {
		result.FatG = v
	}
	return result
}

// nutrimentFloat coerces a nutriments map value to float64; the feed mixes
// numbers and numeric strings.
func nutrimentFloat(m map[string]any, key string) (float64, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, false
		}
		return x, true
	case string:
		var f float64
		if _, err := fmt.Sscanf(x, "%f", &f); err == nil {
			return f, true
		}
	}
	return 0, false
}
