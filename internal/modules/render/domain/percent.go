package domain

import "math"

// Percent floors ratio*100. Ratios outside [0,1] are not clamped, so 1.3
// prints as 130. Values past the int range saturate and NaN prints as 0.
func Percent(ratio float64) int {
	v := math.Floor(ratio * 100)
	switch {
	case math.IsNaN(v):
		return 0
	case v >= float64(math.MaxInt):
		return math.MaxInt
	case v <= float64(math.MinInt):
		return math.MinInt
	}
	return int(v)
}
