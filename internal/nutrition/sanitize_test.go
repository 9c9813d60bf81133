package nutrition

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeCalories_RejectsNonPositive(t *testing.T) {
	for _, raw := range []float64{0, -5, -0.001, math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, ok := SanitizeCalories(raw)
		assert.False(t, ok, "raw=%v should be rejected", raw)
	}
}

func TestSanitizeCalories_PassesPlausibleValues(t *testing.T) {
	cases := []struct {
		raw  float64
		want int
	}{
		{1, 1},
		{136.4, 136},
		{136.5, 137},
		{1500, 1500},
		{2000, 2000},
	}
	for _, tc := range cases {
		got, ok := SanitizeCalories(tc.raw)
		assert.True(t, ok)
		assert.Equal(t, tc.want, got, "raw=%v", tc.raw)
	}
}

func TestSanitizeCalories_ConvertsJoules(t *testing.T) {
	// 570720 J ≈ 136 kcal.
	got, ok := SanitizeCalories(570720)
	assert.True(t, ok)
	assert.Equal(t, 136, got)
}

func TestSanitizeCalories_UpperJoulesRange(t *testing.T) {
	// Just under the implausible threshold still converts as joules.
	got, ok := SanitizeCalories(499999)
	assert.True(t, ok)
	assert.Equal(t, 120, got) // 499999 J / 4184 ≈ 119.5 kcal
}

func TestSanitizeCalories_ImplausiblyLargeClampsToCeiling(t *testing.T) {
	for _, raw := range []float64{500000, 600000, 1e9} {
		got, ok := SanitizeCalories(raw)
		assert.True(t, ok)
		assert.Equal(t, CalorieCeiling, got, "raw=%v", raw)
	}
}

func TestSanitizeCalories_SmallJouleValuesNeverYieldZero(t *testing.T) {
	// 2001 J rounds to 0 kcal; the sanitizer keeps it at 1.
	got, ok := SanitizeCalories(2001)
	assert.True(t, ok)
	assert.Equal(t, 1, got)
}
