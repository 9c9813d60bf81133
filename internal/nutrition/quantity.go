// internal/nutrition/quantity.go
package nutrition

import (
	"regexp"
	"strconv"
)

// Free-text quantity parsing. Kept as pure string functions so the override
// and clamp logic that consumes them can be tested separately.

var (
	gramsPattern  = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*g(?:rams?|ms?)?\b`)
	leadingDigits = regexp.MustCompile(`^\s*(\d+)`)
)

// parseGrams pulls a weight like "5g" or "30 grams" out of a description.
func parseGrams(text string) (float64, bool) {
	m := gramsPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	g, err := strconv.ParseFloat(m[1], 64)
	if err != nil || g <= 0 {
		return 0, false
	}
	return g, true
}

// extractCount finds the digit run next to a unit keyword ("3 eggs",
// "2 scoops"), falling back to a leading digit run ("2 boiled eggs" still
// hits the unit pattern; "2, eggs" does not). Missing or absurd counts fall
// back to def; the result is clamped to [1, max].
func extractCount(text string, unitPattern *regexp.Regexp, def, max int) int {
	n := def
	if m := unitPattern.FindStringSubmatch(text); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil && v > 0 {
			n = v
		}
	} else if m := leadingDigits.FindStringSubmatch(text); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil && v > 0 {
			n = v
		}
	}
	if n < 1 {
		n = 1
	}
	if n > max {
		n = max
	}
	return n
}
