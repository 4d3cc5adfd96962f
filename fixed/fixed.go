// Package fixed converts between real values and their scaled integer
// representation (Q16.16 style at the default scale of 65536).
//
// Encoding is round(real * scale), clamped to the signed 32-bit range;
// decoding is encoded / scale. Both directions are pure functions, used
// at compile time for literal and constant desugaring and at run time by
// the deterministic math reference and provider normalization.
package fixed

import (
	"math"
)

const (
	DEFAULT_SCALE = 65536 // Default Q16.16 scale factor.

	MAX = math.MaxInt32 // Clamp bound for encoded values.
)

// Encode converts a real value to its scaled integer form. The clamp
// happens in float space: a product past the int64 range must pin to
// the bound with its sign intact, not go through an overflowing
// conversion first.
func Encode(value float64, scale int64) (encoded int64) {
	r := math.Round(value * float64(scale))

	if r >= MAX {
		return MAX
	}
	if r <= -MAX {
		return -MAX
	}

	return int64(r)
}

// Decode converts a scaled integer back to its real value.
func Decode(encoded int64, scale int64) (value float64) {
	return float64(encoded) / float64(scale)
}

// Clamp limits a real value to [lo, hi].
func Clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
