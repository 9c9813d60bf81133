package nutrition

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rahulcodess/macro-factor/internal/models"
)

func nlServer(body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
}

func disabledProducts() *ProductClient {
	return &ProductClient{httpClient: http.DefaultClient, baseURL: ""}
}

func unreachableFallback() *FallbackClient {
	return &FallbackClient{
		httpClient: &http.Client{Timeout: time.Second},
		apiURL:     "http://127.0.0.1:1/never",
		apiKey:     "k",
		model:      "m",
	}
}

func TestReconcile_NaturalLanguagePreferredAndNotRescaled(t *testing.T) {
	nl := nlServer(`{"items":[{"calories":250,"protein_g":30,"carbohydrates_total_g":5,"fat_total_g":10}]}`)
	defer nl.Close()
	prod := nlServer(`{"products":[{"nutriments":{"energy-kcal_100g":300}}]}`)
	defer prod.Close()

	r := NewReconciler(
		newLanguageClient(nl, "k"),
		&ProductClient{httpClient: prod.Client(), baseURL: prod.URL},
		unreachableFallback(),
	)

	// Declared grams must not scale the language API's absolute totals.
	est, err := r.Reconcile(context.Background(), models.FoodQuery{Description: "grilled chicken", DeclaredGrams: 200})
	require.NoError(t, err)
	assert.Equal(t, string(models.SourceNaturalLanguageAPI), est.Source)
	assert.Equal(t, 250, est.Calories)
	assert.Equal(t, 30.0, est.ProteinG)
	assert.Equal(t, "±10%", est.ConfidenceRange)
}

func TestReconcile_ProductDensityScaledByGrams(t *testing.T) {
	prod := nlServer(`{"products":[{"nutriments":{"energy-kcal_100g":300,"proteins_100g":8,"carbohydrates_100g":40,"fat_100g":12}}]}`)
	defer prod.Close()

	r := NewReconciler(
		&NaturalLanguageClient{httpClient: http.DefaultClient, apiKey: ""}, // unconfigured
		&ProductClient{httpClient: prod.Client(), baseURL: prod.URL},
		unreachableFallback(),
	)

	est, err := r.Reconcile(context.Background(), models.FoodQuery{Description: "packaged trail mix", DeclaredGrams: 50})
	require.NoError(t, err)
	assert.Equal(t, string(models.SourceProductDatabase), est.Source)
	assert.Equal(t, 150, est.Calories) // 300/100g × 50g
	assert.Equal(t, 4.0, est.ProteinG)
	assert.Equal(t, 20.0, est.CarbsG)
	assert.Equal(t, 6.0, est.FatG)
}

func TestReconcile_ProductDefaultsTo100Grams(t *testing.T) {
	prod := nlServer(`{"products":[{"nutriments":{"energy-kcal_100g":120}}]}`)
	defer prod.Close()

	r := NewReconciler(
		&NaturalLanguageClient{httpClient: http.DefaultClient, apiKey: ""},
		&ProductClient{httpClient: prod.Client(), baseURL: prod.URL},
		unreachableFallback(),
	)

	est, err := r.Reconcile(context.Background(), models.FoodQuery{Description: "packaged trail mix"})
	require.NoError(t, err)
	assert.Equal(t, 120, est.Calories)
}

func TestReconcile_FallbackWhenAdaptersFail(t *testing.T) {
	fb := newFallbackServer(t, `{"calories":450,"protein_g":20,"carbs_g":55,"fat_g":14,"confidence_range":"±30%"}`)
	defer fb.Close()

	r := NewReconciler(
		&NaturalLanguageClient{httpClient: http.DefaultClient, apiKey: ""},
		disabledProducts(),
		newFallbackClient(fb),
	)

	est, err := r.Reconcile(context.Background(), models.FoodQuery{Description: "homemade casserole"})
	require.NoError(t, err)
	assert.Equal(t, string(models.SourceModelFallback), est.Source)
	assert.Equal(t, 450, est.Calories)
	assert.Equal(t, "±30%", est.ConfidenceRange)
}

func TestReconcile_FallbackJoulesSanitized(t *testing.T) {
	// 570720 "calories" is 570720 J ≈ 136 kcal; the model has no unit discipline.
	fb := newFallbackServer(t, `{"calories":570720,"protein_g":10,"carbs_g":12,"fat_g":5}`)
	defer fb.Close()

	r := NewReconciler(
		&NaturalLanguageClient{httpClient: http.DefaultClient, apiKey: ""},
		disabledProducts(),
		newFallbackClient(fb),
	)

	est, err := r.Reconcile(context.Background(), models.FoodQuery{Description: "homemade casserole"})
	require.NoError(t, err)
	assert.Equal(t, 136, est.Calories)
}

func TestReconcile_FallbackParseFailureSurfaces(t *testing.T) {
	fb := newFallbackServer(t, "roughly three hundred calories, give or take")
	defer fb.Close()

	r := NewReconciler(
		&NaturalLanguageClient{httpClient: http.DefaultClient, apiKey: ""},
		disabledProducts(),
		newFallbackClient(fb),
	)

	_, err := r.Reconcile(context.Background(), models.FoodQuery{Description: "dal"})
	assert.Error(t, err)
}

func TestReconcile_CeilingHolds(t *testing.T) {
	nl := nlServer(`{"items":[{"calories":1900000}]}`)
	defer nl.Close()

	r := NewReconciler(newLanguageClient(nl, "k"), disabledProducts(), unreachableFallback())

	est, err := r.Reconcile(context.Background(), models.FoodQuery{Description: "mystery feast", DeclaredGrams: 1000})
	require.NoError(t, err)
	assert.LessOrEqual(t, est.Calories, CalorieCeiling)
	assert.Greater(t, est.Calories, 0)
}

func TestReconcile_OverridesAndClampApplied(t *testing.T) {
	nl := nlServer(`{"items":[{"calories":644,"protein_g":12,"carbohydrates_total_g":2,"fat_total_g":10}]}`)
	defer nl.Close()

	r := NewReconciler(newLanguageClient(nl, "k"), disabledProducts(), unreachableFallback())

	est, err := r.Reconcile(context.Background(), models.FoodQuery{Description: "2 eggs"})
	require.NoError(t, err)
	assert.LessOrEqual(t, est.Calories, 180) // egg cap 2×90
	assert.GreaterOrEqual(t, est.Calories, 140)
}

func TestReconcile_WheyReplaceAnnotatesConfidence(t *testing.T) {
	nl := nlServer(`{"items":[{"calories":29,"protein_g":2,"carbohydrates_total_g":1,"fat_total_g":0.3}]}`)
	defer nl.Close()

	r := NewReconciler(newLanguageClient(nl, "k"), disabledProducts(), unreachableFallback())

	est, err := r.Reconcile(context.Background(), models.FoodQuery{Description: "1 scoop whey protein"})
	require.NoError(t, err)
	assert.Equal(t, 120, est.Calories)
	assert.Equal(t, 24.0, est.ProteinG)
	assert.Equal(t, 2.0, est.CarbsG)
	assert.Equal(t, 1.5, est.FatG)
	assert.Equal(t, "±10% (typical scoop)", est.ConfidenceRange)
}

func TestReconcile_AdaptersQueriedConcurrently(t *testing.T) {
	const delay = 150 * time.Millisecond
	var inFlight, sawOverlap atomic.Int32

	slow := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if inFlight.Add(1) > 1 {
				sawOverlap.Store(1)
			}
			time.Sleep(delay)
			inFlight.Add(-1)
			w.Write([]byte(body))
		}
	}

	nl := httptest.NewServer(slow(`{"items":[{"calories":200}]}`))
	defer nl.Close()
	prod := httptest.NewServer(slow(`{"products":[{"nutriments":{"energy-kcal_100g":200}}]}`))
	defer prod.Close()

	r := NewReconciler(
		newLanguageClient(nl, "k"),
		&ProductClient{httpClient: prod.Client(), baseURL: prod.URL},
		unreachableFallback(),
	)

	start := time.Now()
	_, err := r.Reconcile(context.Background(), models.FoodQuery{Description: "lunch plate"})
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, int32(1), sawOverlap.Load(), "both adapters should be in flight at once")
	assert.Less(t, elapsed, 2*delay, "latency should be bounded by the slower call, not the sum")
}
