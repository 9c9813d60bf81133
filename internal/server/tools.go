// internal/server/tools.go
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	"github.com/oklog/ulid/v2"

	"github.com/Rahulcodess/macro-factor/internal/models"
)

type EstimateFoodParams struct {
	Description string  `json:"description" description:"Free-text description of the food eaten"`
	Grams       float64 `json:"grams,omitempty" description:"Declared serving weight in grams (optional)"`
}

type LogMealParams struct {
	Description string  `json:"description" description:"Free-text description of the meal eaten"`
	Grams       float64 `json:"grams,omitempty" description:"Declared serving weight in grams (optional)"`
	Timestamp   string  `json:"timestamp,omitempty" description:"ISO timestamp of when the meal was eaten (defaults to now)"`
}

type GetMealsParams struct {
	StartDate string `json:"start_date,omitempty" description:"Start date for meal query (YYYY-MM-DD)"`
	EndDate   string `json:"end_date,omitempty" description:"End date for meal query (YYYY-MM-DD)"`
	Limit     int    `json:"limit,omitempty" description:"Maximum number of meals to return"`
}

type LookupBarcodeParams struct {
	Code string `json:"code" description:"Product barcode to look up directly"`
}

// extractParams safely extracts parameters from the request arguments
func extractParams(req *protocol.CallToolRequest, target interface{}) error {
	// Convert the Arguments map to JSON bytes, then unmarshal to target
	jsonBytes, err := json.Marshal(req.Arguments)
	if err != nil {
		return fmt.Errorf("failed to marshal arguments: %w", err)
	}

	if err := json.Unmarshal(jsonBytes, target); err != nil {
		return fmt.Errorf("failed to unmarshal parameters: %w", err)
	}

	return nil
}

// handleEstimateFood reconciles a single estimate without logging anything
func (s *EstimateServer) handleEstimateFood(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params EstimateFoodParams
	if err := extractParams(req, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	if params.Description == "" {
		return nil, fmt.Errorf("food description is required")
	}

	query := models.FoodQuery{Description: params.Description, DeclaredGrams: params.Grams}
	estimate, err := s.reconciler.Reconcile(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to estimate nutrition: %w", err)
	}

	return s.createJSONResponse(estimate)
}

// handleLogMeal reconciles an estimate and persists it as a meal entry
func (s *EstimateServer) handleLogMeal(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params LogMealParams
	if err := extractParams(req, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	if params.Description == "" {
		return nil, fmt.Errorf("meal description is required")
	}

	// Parse timestamp or use current time
	var timestamp time.Time
	var err error
	if params.Timestamp != "" {
		timestamp, err = time.Parse(time.RFC3339, params.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp format: %w", err)
		}
	} else {
		timestamp = time.Now()
	}

	query := models.FoodQuery{Description: params.Description, DeclaredGrams: params.Grams}
	estimate, err := s.reconciler.Reconcile(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to estimate nutrition: %w", err)
	}

	meal := &models.Meal{
		ID:          ulid.Make().String(),
		Description: params.Description,
		Grams:       params.Grams,
		Estimate:    *estimate,
		Timestamp:   timestamp,
		CreatedAt:   time.Now(),
	}

	if err := s.storage.SaveMeal(meal); err != nil {
		return nil, fmt.Errorf("failed to save meal: %w", err)
	}

	return s.createJSONResponse(meal)
}

// handleGetMeals retrieves meals from storage
func (s *EstimateServer) handleGetMeals(req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params GetMealsParams
	if err := extractParams(req, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	// Set defaults
	if params.Limit <= 0 {
		params.Limit = 20
	}

	meals, err := s.storage.GetMeals(params.StartDate, params.EndDate, params.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve meals: %w", err)
	}

	return s.createJSONResponse(meals)
}

// handleLookupBarcode fetches one product's per-100g data directly by barcode
func (s *EstimateServer) handleLookupBarcode(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params LookupBarcodeParams
	if err := extractParams(req, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	if params.Code == "" {
		return nil, fmt.Errorf("barcode is required")
	}

	result := s.products.LookupBarcode(ctx, params.Code)
	if result == nil {
		return nil, fmt.Errorf("no product found for barcode %s", params.Code)
	}

	return s.createJSONResponse(result)
}

// Register all tools - handled manually in the HTTP handler
func (s *EstimateServer) registerTools() error {
	tools := []string{"estimate_food", "log_meal", "get_meals", "lookup_barcode"}

	for _, name := range tools {
		log.Printf("Registered tool: %s", name)
	}

	return nil
}
