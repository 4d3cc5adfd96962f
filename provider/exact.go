package provider

import (
	"math"

	"github.com/ezrec/pl0fx/fixed"
	"github.com/ezrec/pl0fx/vm"
)

// ExactBinary is a BinaryEstimator that predicts with real arithmetic
// over the scale-normalized operands, in result/scale units. With
// Mix=1 and no fallback, a Binary provider built on it tracks the
// exact integer path to within rounding.
type ExactBinary struct {
	Scale int64
}

func (est ExactBinary) Estimate(op vm.Op, a, b float64) (out float64) {
	scale := est.Scale
	if scale == 0 {
		scale = fixed.DEFAULT_SCALE
	}
	s := float64(scale)

	switch op {
	case vm.OP_ADD:
		out = a + b
	case vm.OP_SUB:
		out = a - b
	case vm.OP_MUL:
		out = a * b * s
	case vm.OP_DIV:
		if b != 0 {
			out = math.Floor(a/b) / s
		}
	}

	return
}

// ExactUnary is a UnaryEstimator that evaluates the documented
// reference function in the op's [0,1] normalized space.
type ExactUnary struct {
	Scale int64
}

func (est ExactUnary) Estimate(op vm.Op, input float64) (out float64) {
	scale := est.Scale
	if scale == 0 {
		scale = fixed.DEFAULT_SCALE
	}

	inLo, inHi, outLo, outHi, ok := vm.Domain(op)
	if !ok {
		return
	}

	x := inLo + input*(inHi-inLo)
	exact := vm.MathExact(op, fixed.Encode(x, scale), scale)
	value := fixed.Decode(exact, scale)

	return (value - outLo) / (outHi - outLo)
}
