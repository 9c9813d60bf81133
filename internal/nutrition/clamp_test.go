package nutrition

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampToCategory_WithinRangeUnchanged(t *testing.T) {
	// 180 kcal for a default 100g serving of eggs sits inside 60–180.
	assert.Equal(t, 180.0, ClampToCategory("2 eggs", 180, 0))
	// 250 kcal for 200g of chicken is 125 kcal/100g, inside 80–320.
	assert.Equal(t, 250.0, ClampToCategory("grilled chicken", 250, 200))
}

func TestClampToCategory_BoundsGarbage(t *testing.T) {
	// 3000 kcal for 100g of rice is nonsense; rice tops out at 250/100g.
	assert.Equal(t, 250.0, ClampToCategory("white rice", 3000, 0))
	// 5 kcal for 250g of milk is below the 30/100g floor.
	assert.Equal(t, 75.0, ClampToCategory("glass of milk", 5, 250))
}

func TestClampToCategory_DefaultRange(t *testing.T) {
	// Unmodeled food falls back to 30–500 kcal/100g.
	assert.Equal(t, 500.0, ClampToCategory("mystery casserole", 4000, 0))
	assert.Equal(t, 30.0, ClampToCategory("mystery casserole", 2, 0))
	assert.Equal(t, 300.0, ClampToCategory("mystery casserole", 300, 0))
}

func TestClampToCategory_FirstMatchWins(t *testing.T) {
	// "egg curry" hits the egg category before the curry category.
	assert.Equal(t, 180.0, ClampToCategory("egg curry", 400, 0))
}

func TestClampToCategory_NonPositivePassesThrough(t *testing.T) {
	assert.Equal(t, 0.0, ClampToCategory("2 eggs", 0, 0))
	assert.Equal(t, -7.0, ClampToCategory("2 eggs", -7, 100))
	assert.True(t, math.IsNaN(ClampToCategory("rice", math.NaN(), 100)))
	assert.True(t, math.IsInf(ClampToCategory("rice", math.Inf(1), 100), 1))
}

func TestClampToCategory_Idempotent(t *testing.T) {
	descriptions := []string{
		"2 eggs", "white rice", "dal tadka", "paneer tikka", "2 rotis",
		"glass of milk", "banana", "aloo sabzi", "10g ghee",
		"1 scoop whey protein", "cucumber salad", "grilled salmon",
		"mutton curry", "gulab jamun", "handful of almonds", "dahi",
		"besan chilla", "completely unknown dish",
	}
	calories := []float64{1, 7, 29, 90, 136, 180, 240, 333, 644, 1200, 1999, 2500, 10000}
	grams := []float64{0, 1, 3, 13, 30, 50, 100, 137, 250, 480, 1000}

	for _, d := range descriptions {
		for _, c := range calories {
			for _, g := range grams {
				once := ClampToCategory(d, c, g)
				twice := ClampToCategory(d, once, g)
				assert.Equal(t, once, twice, "desc=%q calories=%v grams=%v", d, c, g)
			}
		}
	}
}

func TestClampToCategory_ResultDensityWithinBounds(t *testing.T) {
	for _, d := range []string{"2 eggs", "white rice", "10g ghee", "unknown dish"} {
		min, max := densityBounds(d)
		for _, c := range []float64{1, 50, 500, 5000} {
			for _, g := range []float64{0, 40, 100, 300} {
				got := ClampToCategory(d, c, g)
				eff := g
				if eff <= 0 {
					eff = 100
				}
				density := got / eff * 100
				// Rounding to whole kcal can nudge the implied density a
				// hair past the bound; anything further is a real bug.
				slack := 100 / eff / 2
				assert.GreaterOrEqual(t, density, min-slack, "desc=%q c=%v g=%v", d, c, g)
				assert.LessOrEqual(t, density, max+slack, "desc=%q c=%v g=%v", d, c, g)
			}
		}
	}
}
