// internal/nutrition/override.go
package nutrition

import (
	"math"
	"regexp"
)

// The override engine corrects categories the upstream sources get
// systematically wrong: the bug there is a wrong item count or a bad
// typical-serving assumption, which density clamping alone cannot fix.
// Rules run in a fixed order on the current (post-sanitizer, pre-clamp)
// value. Floors only raise, caps only lower; the combined egg+fat floor runs
// before the single-ingredient fat floor so the more specific rule wins, and
// all floors run before caps so a cap cannot undo a legitimate floor.

// Macros is a calorie value with its macro grams, the unit the override
// rules operate on.
type Macros struct {
	Calories float64
	ProteinG float64
	CarbsG   float64
	FatG     float64
}

// OverrideOutcome is the corrected estimate plus an optional confidence
// annotation (e.g. "typical scoop") when a replace rule fired.
type OverrideOutcome struct {
	Macros
	Note string
}

// Per-unit values and limits for the override rules.
const (
	scoopFloorKcal = 70.0 // below this per scoop, the source clearly missed the powder
	scoopKcal      = 120.0
	scoopProteinG  = 24.0
	scoopCarbsG    = 2.0
	scoopFatG      = 1.5
	maxScoops      = 5

	eggFloorKcal = 70.0
	eggCapKcal   = 90.0
	maxEggs      = 20

	oilKcalPerGram    = 9.0
	butterKcalPerGram = 7.2
	fatFloorScale     = 0.8 // floors assume not all the fat ends up eaten
	combinedFatKcal   = 7.0 // per gram, in the combined egg+fat floor

	flatbreadCapKcal  = 90.0
	defaultFlatbreads = 2
	maxFlatbreads     = 10
)

var (
	wheyTrigger = regexp.MustCompile(`(?i)\b(?:whey|protein\s+powder|scoops?)\b`)
	scoopCount  = regexp.MustCompile(`(?i)(\d+)\s*scoops?\b`)

	eggTrigger = regexp.MustCompile(`(?i)\beggs?\b`)
	eggCount   = regexp.MustCompile(`(?i)(\d+)\s*(?:boiled\s+|fried\s+|scrambled\s+|poached\s+)?eggs?\b`)

	// Brand names (Amul, Nutralite) show up constantly in Indian food logs
	// and behave like butter.
	fatTrigger = regexp.MustCompile(`(?i)\b(?:butter|ghee|oil|amul|nutralite)\b`)
	oilWord    = regexp.MustCompile(`(?i)\boil\b`)

	flatbreadTrigger = regexp.MustCompile(`(?i)\b(?:rotis?|chapat(?:h?i|h?is)|parath?as?|naans?|phulkas?|theplas?)\b`)
	flatbreadCount   = regexp.MustCompile(`(?i)(\d+)\s*(?:rotis?|chapat(?:h?i|h?is)|parath?as?|naans?|phulkas?|theplas?)\b`)
)

// ApplyOverrides runs the full rule order against the current estimate.
// A description matching no rule passes through unchanged.
func ApplyOverrides(description string, declaredGrams float64, cur Macros) OverrideOutcome {
	out := OverrideOutcome{Macros: cur}

	applyWheyFloor(description, &out)
	applyCombinedEggFatFloor(description, declaredGrams, &out)
	applyFatFloor(description, declaredGrams, &out)
	applyEggFloor(description, &out)
	applyFlatbreadCap(description, &out)
	applyEggCap(description, &out)

	return out
}

// applyWheyFloor replaces an estimate that clearly missed the powder with
// typical per-scoop values.
func applyWheyFloor(description string, out *OverrideOutcome) {
	if !wheyTrigger.MatchString(description) {
		return
	}
	scoops := float64(extractCount(description, scoopCount, 1, maxScoops))
	if out.Calories >= scoopFloorKcal*scoops {
		return
	}
	out.Calories = scoopKcal * scoops
	out.ProteinG = scoopProteinG * scoops
	out.CarbsG = scoopCarbsG * scoops
	out.FatG = scoopFatG * scoops
	out.Note = "typical scoop"
}

// applyCombinedEggFatFloor handles "2 eggs fried in 10g butter" style
// descriptions, where both the eggs and the cooking fat are usually
// undercounted together.
func applyCombinedEggFatFloor(description string, declaredGrams float64, out *OverrideOutcome) {
	if !eggTrigger.MatchString(description) || !fatTrigger.MatchString(description) {
		return
	}
	eggs := float64(extractCount(description, eggCount, 1, maxEggs))
	fatGrams := declaredGrams
	if fatGrams <= 0 {
		fatGrams, _ = parseGrams(description)
	}
	floor := eggs*eggFloorKcal + fatGrams*combinedFatKcal*fatFloorScale
	if out.Calories < floor {
		out.Calories = floor
	}
}

// applyFatFloor floors plain cooking-fat entries by weight. When it fires the
// macros are replaced too: a description that is just fat has fat macros.
func applyFatFloor(description string, declaredGrams float64, out *OverrideOutcome) {
	if !fatTrigger.MatchString(description) {
		return
	}
	grams := declaredGrams
	if grams <= 0 {
		grams, _ = parseGrams(description)
	}
	if grams <= 0 {
		return
	}
	perGram := butterKcalPerGram
	if oilWord.MatchString(description) {
		perGram = oilKcalPerGram
	}
	floor := grams * perGram * fatFloorScale
	if out.Calories >= floor {
		return
	}
	out.Calories = floor
	out.ProteinG = 0
	out.CarbsG = 0
	out.FatG = grams * 0.99
}

func applyEggFloor(description string, out *OverrideOutcome) {
	if !eggTrigger.MatchString(description) {
		return
	}
	eggs := float64(extractCount(description, eggCount, 1, maxEggs))
	if floor := eggs * eggFloorKcal; out.Calories < floor {
		out.Calories = floor
	}
}

func applyFlatbreadCap(description string, out *OverrideOutcome) {
	if !flatbreadTrigger.MatchString(description) {
		return
	}
	pieces := float64(extractCount(description, flatbreadCount, defaultFlatbreads, maxFlatbreads))
	if limit := pieces * flatbreadCapKcal; out.Calories > limit {
		out.Calories = limit
	}
}

func applyEggCap(description string, out *OverrideOutcome) {
	if !eggTrigger.MatchString(description) {
		return
	}
	eggs := float64(extractCount(description, eggCount, 1, maxEggs))
	if limit := eggs * eggCapKcal; out.Calories > limit {
		out.Calories = limit
	}
}

// round1 rounds a macro value to one decimal, flooring garbage at zero.
func round1(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return math.Round(v*10) / 10
}
