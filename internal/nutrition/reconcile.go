// internal/nutrition/reconcile.go
package nutrition

import (
	"context"
	"fmt"

	"github.com/Rahulcodess/macro-factor/internal/models"
)

// Reconciler combines the untrustworthy sources into one trustworthy
// estimate: query both adapters concurrently, take the highest-priority
// result, sanitize, run the override rules, clamp the density, cap the
// ceiling, and attach an honest confidence qualifier.
//
// The reconciler holds no per-request state and nothing is cached across
// calls; the only process-wide data it touches is the read-only rule tables.
type Reconciler struct {
	language *NaturalLanguageClient
	products *ProductClient
	fallback *FallbackClient
}

// NewReconciler wires the three sources. Either adapter may be
// unconfigured; the fallback client must not be nil.
func NewReconciler(language *NaturalLanguageClient, products *ProductClient, fallback *FallbackClient) *Reconciler {
	return &Reconciler{
		language: language,
		products: products,
		fallback: fallback,
	}
}

// Reconcile produces the single estimate for a food query. Source
// unavailability is never an error; the only failure surfaced is the model
// fallback returning unusable output when no other source succeeded.
func (r *Reconciler) Reconcile(ctx context.Context, query models.FoodQuery) (*models.ReconciledEstimate, error) {
	langRes, prodRes := r.gatherSources(ctx, query)

	var (
		raw    Macros
		source models.Source
	)
	confidence := "±10%"

	switch {
	case langRes != nil:
		// Absolute totals for the full query text; declared grams must not
		// re-scale them.
		raw = Macros{
			Calories: float64(mustSanitize(langRes.Calories)),
			ProteinG: langRes.ProteinG,
			CarbsG:   langRes.CarbsG,
			FatG:     langRes.FatG,
		}
		source = langRes.Source

	case prodRes != nil:
		grams := query.DeclaredGrams
		if grams <= 0 {
			grams = 100
		}
		// The per-100g density was already sanitized; the scaled total must
		// not go through the joules heuristic again. Oversized servings are
		// handled by the ceiling cap below.
		scale := grams / 100
		raw = Macros{
			Calories: prodRes.Calories * scale,
			ProteinG: prodRes.ProteinG * scale,
			CarbsG:   prodRes.CarbsG * scale,
			FatG:     prodRes.FatG * scale,
		}
		source = prodRes.Source

	default:
		fb, err := r.fallback.Estimate(ctx, query, "")
		if err != nil {
			return nil, fmt.Errorf("all nutrition sources failed: %w", err)
		}
		kcal, ok := SanitizeCalories(fb.Calories)
		if !ok {
			return nil, fmt.Errorf("model fallback returned no usable calorie value (%v)", fb.Calories)
		}
		raw = Macros{Calories: float64(kcal), ProteinG: fb.ProteinG, CarbsG: fb.CarbsG, FatG: fb.FatG}
		source = fb.Source
		confidence = fb.Confidence
	}

	corrected := ApplyOverrides(query.Description, query.DeclaredGrams, raw)
	calories := ClampToCategory(query.Description, corrected.Calories, query.DeclaredGrams)
	if calories > CalorieCeiling {
		calories = CalorieCeiling
	}
	if calories < 1 {
		calories = 1
	}

	if corrected.Note != "" {
		confidence = fmt.Sprintf("%s (%s)", confidence, corrected.Note)
	}

	return &models.ReconciledEstimate{
		Calories:        int(calories),
		ProteinG:        round1(corrected.ProteinG),
		CarbsG:          round1(corrected.CarbsG),
		FatG:            round1(corrected.FatG),
		ConfidenceRange: confidence,
		Source:          string(source),
	}, nil
}

// gatherSources fires both adapter lookups concurrently so added latency is
// bounded by the slower call, not their sum. A failed or unconfigured
// adapter resolves to nil and never blocks the other branch.
func (r *Reconciler) gatherSources(ctx context.Context, query models.FoodQuery) (*models.SourceResult, *models.SourceResult) {
	langCh := make(chan *models.SourceResult, 1)
	prodCh := make(chan *models.SourceResult, 1)

	go func() {
		if r.language == nil {
			langCh <- nil
			return
		}
		res := r.language.Lookup(ctx, query.Description)
		langCh <- dropUnsanitizable(res)
	}()
	go func() {
		if r.products == nil {
			prodCh <- nil
			return
		}
		res := r.products.Search(ctx, query.Description)
		prodCh <- dropUnsanitizable(res)
	}()

	return <-langCh, <-prodCh
}

// dropUnsanitizable discards an adapter result whose calorie value the
// sanitizer rejects; for adapters that is the same as no data.
func dropUnsanitizable(res *models.SourceResult) *models.SourceResult {
	if res == nil {
		return nil
	}
	if _, ok := SanitizeCalories(res.Calories); !ok {
		return nil
	}
	return res
}

// mustSanitize is for values dropUnsanitizable already vetted.
func mustSanitize(raw float64) int {
	kcal, _ := SanitizeCalories(raw)
	return kcal
}
