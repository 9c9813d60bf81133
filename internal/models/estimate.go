// internal/models/estimate.go
package models

import (
	"time"
)

// Source identifies which nutrition provider produced a value.
type Source string

const (
	SourceNaturalLanguageAPI Source = "natural_language_api"
	SourceProductDatabase    Source = "product_database"
	SourceModelFallback      Source = "model_fallback"
)

// Basis says what a SourceResult's numbers refer to.
type Basis string

const (
	// BasisTotalForQuery means the numbers already cover the whole query,
	// quantity words included. No further scaling is wanted.
	BasisTotalForQuery Basis = "total_for_query"
	// BasisPer100Grams means the numbers are an energy/macro density and
	// must be scaled by the serving weight.
	BasisPer100Grams Basis = "per_100g"
)

// FoodQuery is the immutable input to one reconciliation.
type FoodQuery struct {
	Description   string  `json:"description"`
	DeclaredGrams float64 `json:"declared_grams,omitempty"` // 0 when not declared
}

// SourceResult is one adapter's normalized answer. Never mutated after creation.
type SourceResult struct {
	Source     Source  `json:"source"`
	Calories   float64 `json:"calories"`
	ProteinG   float64 `json:"protein_g"`
	CarbsG     float64 `json:"carbs_g"`
	FatG       float64 `json:"fat_g"`
	Basis      Basis   `json:"basis"`
	Confidence string  `json:"confidence"`
}

// ReconciledEstimate is the only externally visible artifact of the engine.
// Calories is a finite positive integer capped at 2000 kcal per serving;
// macro grams are finite, non-negative, rounded to one decimal.
type ReconciledEstimate struct {
	Calories        int     `json:"calories"`
	ProteinG        float64 `json:"protein_g"`
	CarbsG          float64 `json:"carbs_g"`
	FatG            float64 `json:"fat_g"`
	ConfidenceRange string  `json:"confidence_range"`
	Source          string  `json:"source"`
}

// Meal is a persisted food entry with its reconciled estimate.
type Meal struct {
	ID          string             `json:"id"`
	Description string             `json:"description"`
	Grams       float64            `json:"grams,omitempty"`
	Estimate    ReconciledEstimate `json:"estimate"`
	Timestamp   time.Time          `json:"timestamp"`
	CreatedAt   time.Time          `json:"created_at"`
}

// ProfileDefaults are the request-context values used when no user profile
// exists. Passed explicitly to whatever needs them; never module-level state.
type ProfileDefaults struct {
	AgeYears int
	WeightKg float64
	Goal     string
}
