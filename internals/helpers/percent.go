// file: internals/helpers/percent.go
package helper

import "math"

// Percentage computes part/total*100 rounded half-away-from-zero to two
// decimals. Zero total yields 0.00, never NaN.
func Percentage(part, total int64) float64 {
	if total == 0 {
		return 0.0
	}
	raw := float64(part) / float64(total) * 100.0
	return Round2(raw)
}

// Round2 rounds half-away-from-zero to 2 decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
