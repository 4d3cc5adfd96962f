package fixed

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncode(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name    string
		value   float64
		scale   int64
		encoded int64
	}){
		{"zero", 0.0, DEFAULT_SCALE, 0},
		{"one", 1.0, DEFAULT_SCALE, 65536},
		{"half", 0.5, DEFAULT_SCALE, 32768},
		{"neg_one", -1.0, DEFAULT_SCALE, -65536},
		{"pi", math.Pi, DEFAULT_SCALE, 205887},
		{"round_up", 1.00001, 100, 100},
		{"round_half", 0.005, 100, 1},
		{"clamp_hi", 1e12, DEFAULT_SCALE, MAX},
		{"clamp_lo", -1e12, DEFAULT_SCALE, -MAX},
		// Products past the int64 range still pin to the bound with
		// the sign of the value.
		{"overflow_hi", 1e15, DEFAULT_SCALE, MAX},
		{"overflow_lo", -1e15, DEFAULT_SCALE, -MAX},
		{"inf_hi", math.Inf(1), DEFAULT_SCALE, MAX},
		{"inf_lo", math.Inf(-1), DEFAULT_SCALE, -MAX},
	}

	for _, entry := range table {
		assert.Equal(entry.encoded, Encode(entry.value, entry.scale), entry.name)
	}
}

func TestDecode(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(1.0, Decode(65536, DEFAULT_SCALE))
	assert.Equal(-0.5, Decode(-32768, DEFAULT_SCALE))
	assert.Equal(0.0, Decode(0, DEFAULT_SCALE))
}

func TestRoundTrip(t *testing.T) {
	assert := assert.New(t)

	scales := []int64{1, 10, 256, DEFAULT_SCALE}
	values := []float64{0, 1, -1, 0.125, 3.14159, -2.71828, 100.5, -100.5}

	for _, scale := range scales {
		bound := 0.5 / float64(scale)
		for _, value := range values {
			got := Decode(Encode(value, scale), scale)
			assert.InDelta(value, got, bound+1e-12, "scale %v value %v", scale, value)
		}
	}
}

func TestClamp(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(1.0, Clamp(2.0, -1, 1))
	assert.Equal(-1.0, Clamp(-2.0, -1, 1))
	assert.Equal(0.25, Clamp(0.25, -1, 1))
}
