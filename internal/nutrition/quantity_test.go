package nutrition

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseGrams(t *testing.T) {
	cases := []struct {
		text string
		want float64
		ok   bool
	}{
		{"5g butter", 5, true},
		{"10 g ghee", 10, true},
		{"30 grams peanut butter", 30, true},
		{"12.5g oil", 12.5, true},
		{"two eggs", 0, false},
		{"", 0, false},
		{"0g butter", 0, false},
	}
	for _, tc := range cases {
		got, ok := parseGrams(tc.text)
		assert.Equal(t, tc.ok, ok, "text=%q", tc.text)
		if tc.ok {
			assert.Equal(t, tc.want, got, "text=%q", tc.text)
		}
	}
}

func TestExtractCount(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"3 eggs", 3},
		{"2 boiled eggs", 2},
		// no digits: default
		{"egg bhurji", 1},
		// no digit next to the keyword: leading digit run
		{"4 omelette eggs", 4},
		// clamped to the rule maximum, never below one
		{"100 eggs", 20},
		{"0 eggs", 1},
		{"", 1},
	}
	for _, tc := range cases {
		got := extractCount(tc.text, eggCount, 1, maxEggs)
		assert.Equal(t, tc.want, got, "text=%q", tc.text)
	}
}

func TestExtractCount_UsesDefaultWhenNoDigits(t *testing.T) {
	assert.Equal(t, 2, extractCount("roti with dal", flatbreadCount, defaultFlatbreads, maxFlatbreads))
	assert.Equal(t, 3, extractCount("3 rotis", flatbreadCount, defaultFlatbreads, maxFlatbreads))
	assert.Equal(t, 1, extractCount("scoop of whey", scoopCount, 1, maxScoops))
	assert.Equal(t, 5, extractCount("8 scoops whey", scoopCount, 1, maxScoops))
}
