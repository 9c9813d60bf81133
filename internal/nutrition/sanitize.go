// internal/nutrition/sanitize.go
package nutrition

import (
	"math"
)

const (
	// CalorieCeiling is the hard per-serving cap on any reconciled value.
	CalorieCeiling = 2000

	// Above this, a raw value is garbage even as joules and gets clamped outright.
	implausibleCalories = 500000

	joulesPerKcal = 4184.0
)

// SanitizeCalories turns a raw numeric calorie value from any source into a
// sane kilocalorie integer. Sources with no unit discipline (the model
// fallback especially) sometimes report energy in joules; values between the
// per-serving ceiling and the implausible threshold are assumed to be joules
// and converted. Returns false for non-finite or non-positive input.
func SanitizeCalories(raw float64) (int, bool) {
	if math.IsNaN(raw) || math.IsInf(raw, 0) || raw <= 0 {
		return 0, false
	}
	if raw > CalorieCeiling {
		if raw >= implausibleCalories {
			return CalorieCeiling, true
		}
		kcal := math.Round(raw / joulesPerKcal)
		if kcal > CalorieCeiling {
			return CalorieCeiling, true
		}
		if kcal < 1 {
			kcal = 1
		}
		return int(kcal), true
	}
	return int(math.Round(raw)), true
}
