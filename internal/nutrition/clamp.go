// internal/nutrition/clamp.go
package nutrition

import (
	"math"
	"regexp"
)

// The category clamp is the final backstop: it bounds the implied energy
// density (kcal/100g) of an estimate to a range plausible for the food's
// category. It runs after the overrides and catches whatever garbage the
// upstream sources produce for unmodeled foods via the default range.

type categoryBound struct {
	pattern *regexp.Regexp
	minKcal float64 // per 100g
	maxKcal float64 // per 100g
}

// Ordered; first match wins. Ranges are deliberately loose at the low end so
// small per-piece override results (one egg, one roti) survive the default
// 100g serving assumption.
var categoryBounds = []categoryBound{
	{regexp.MustCompile(`(?i)\beggs?\b`), 60, 180},
	{regexp.MustCompile(`(?i)\b(?:rice|biryani|pulao|poha)\b`), 80, 250},
	{regexp.MustCompile(`(?i)\b(?:dal|lentils?|curry|sambar|rajma|chole)\b`), 40, 200},
	{regexp.MustCompile(`(?i)\b(?:chicken|paneer|tofu)\b`), 80, 320},
	{regexp.MustCompile(`(?i)\b(?:bread|toast|rotis?|chapat(?:h?i|h?is)|parath?as?|naans?)\b`), 80, 350},
	{regexp.MustCompile(`(?i)\bmilk\b`), 30, 90},
	{regexp.MustCompile(`(?i)\b(?:apple|banana|mango|orange|grapes?|papaya|fruits?)\b`), 25, 120},
	{regexp.MustCompile(`(?i)\b(?:potato(?:es)?|aloo)\b`), 60, 200},
	{regexp.MustCompile(`(?i)\b(?:butter|ghee|oil)\b`), 500, 900},
	{regexp.MustCompile(`(?i)\b(?:whey|protein\s+powder|scoops?)\b`), 100, 450},
	{regexp.MustCompile(`(?i)\b(?:vegetables?|salad|spinach|palak|broccoli|cabbage|cauliflower|bhindi|okra)\b`), 15, 150},
	{regexp.MustCompile(`(?i)\b(?:fish|salmon|tuna|prawns?|shrimp)\b`), 70, 250},
	{regexp.MustCompile(`(?i)\b(?:beef|mutton|lamb|pork)\b`), 120, 350},
	{regexp.MustCompile(`(?i)\b(?:sugar|jaggery|sweets?|dessert|gulab\s+jamun|jalebi|cake|chocolate)\b`), 150, 550},
	{regexp.MustCompile(`(?i)\b(?:almonds?|peanuts?|cashews?|walnuts?|pistachios?|nuts?)\b`), 400, 700},
	{regexp.MustCompile(`(?i)\b(?:yogurt|curd|dahi|raita|lassi)\b`), 30, 150},
	{regexp.MustCompile(`(?i)\b(?:flour|atta|maida|besan)\b`), 300, 380},
}

// Default density range for foods no category models. This is what catches
// API and model garbage for everything else.
const (
	defaultMinKcalPer100g = 30
	defaultMaxKcalPer100g = 500
)

// densityBounds returns the first matching category's range.
func densityBounds(description string) (min, max float64) {
	for _, c := range categoryBounds {
		if c.pattern.MatchString(description) {
			return c.minKcal, c.maxKcal
		}
	}
	return defaultMinKcalPer100g, defaultMaxKcalPer100g
}

// ClampToCategory bounds calories so the implied kcal/100g density is
// plausible for the described food. declaredGrams <= 0 assumes a 100g
// serving. Idempotent: clamping its own output changes nothing. Non-finite
// or non-positive values pass through untouched; a zero estimate is not this
// function's concern.
func ClampToCategory(description string, calories, declaredGrams float64) float64 {
	if math.IsNaN(calories) || math.IsInf(calories, 0) || calories <= 0 {
		return calories
	}
	grams := declaredGrams
	if grams <= 0 {
		grams = 100
	}
	density := calories / grams * 100
	min, max := densityBounds(description)
	if density < min {
		density = min
	} else if density > max {
		density = max
	}
	return math.Round(density * grams / 100)
}
