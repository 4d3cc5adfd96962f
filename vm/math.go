package vm

import (
	"math"

	"github.com/ezrec/pl0fx/fixed"
)

// domain is the documented safe input/output range for a math op.
type domain struct {
	inLo, inHi   float64
	outLo, outHi float64
}

// mathDomain is the clamp table for the ten unary math ops. The
// documented ranges are part of the compatibility contract and must
// not change.
var mathDomain = map[Op]domain{
	OP_SIN:   {-math.Pi, math.Pi, -1, 1},
	OP_COS:   {-math.Pi, math.Pi, -1, 1},
	OP_TAN:   {-1.3, 1.3, -8, 8},
	OP_TANH:  {-3, 3, -1, 1},
	OP_SINH:  {-3, 3, -8, 8},
	OP_COSH:  {-3, 3, 0, 10},
	OP_LN:    {1e-6, 256, -16, 16},
	OP_LOG10: {1e-6, 256, -16, 16},
	OP_EXP:   {-8, 8, 0, 256},
	OP_SQRT:  {0, 256, 0, 16},
}

// Domain returns the documented input/output clamp ranges for a unary
// math op. Providers use these ranges to normalize into the op's own
// [0,1] space.
func Domain(op Op) (inLo, inHi, outLo, outHi float64, ok bool) {
	dom, ok := mathDomain[op]
	if !ok {
		return
	}

	return dom.inLo, dom.inHi, dom.outLo, dom.outHi, true
}

// MathExact computes the deterministic fixed-point reference for a
// unary math op: decode, clamp input, apply the real function, clamp
// output, re-encode. This is the execution path when no unary provider
// is attached, and the exact comparator when one is.
func MathExact(op Op, input int64, scale int64) (result int64) {
	dom := mathDomain[op]

	x := fixed.Decode(input, scale)

	var out float64
	switch op {
	case OP_SIN:
		out = math.Sin(fixed.Clamp(x, dom.inLo, dom.inHi))
	case OP_COS:
		out = math.Cos(fixed.Clamp(x, dom.inLo, dom.inHi))
	case OP_TAN:
		out = math.Tan(fixed.Clamp(x, dom.inLo, dom.inHi))
	case OP_TANH:
		out = math.Tanh(fixed.Clamp(x, dom.inLo, dom.inHi))
	case OP_SINH:
		out = math.Sinh(fixed.Clamp(x, dom.inLo, dom.inHi))
	case OP_COSH:
		out = math.Cosh(fixed.Clamp(x, dom.inLo, dom.inHi))
	case OP_LN:
		if x <= 0 {
			out = -16
		} else {
			out = math.Log(fixed.Clamp(x, dom.inLo, dom.inHi))
		}
	case OP_LOG10:
		if x <= 0 {
			out = -16
		} else {
			out = math.Log10(fixed.Clamp(x, dom.inLo, dom.inHi))
		}
	case OP_EXP:
		out = math.Exp(fixed.Clamp(x, dom.inLo, dom.inHi))
	case OP_SQRT:
		out = math.Sqrt(fixed.Clamp(x, dom.inLo, dom.inHi))
	default:
		panic("not a math op: " + op.String())
	}

	out = fixed.Clamp(out, dom.outLo, dom.outHi)

	return fixed.Encode(out, scale)
}

// FloorDiv computes floor division, matching the exact-path DIV
// semantics for negative operands (FloorDiv(-7, 2) == -4).
func FloorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q -= 1
	}
	return q
}

// ExactBinary computes the native integer result for a binary
// arithmetic op. This is the execution path when no binary provider is
// attached, and the exact comparator that attached providers must
// agree with: DIV is floor division, zero-guarded.
func ExactBinary(op Op, a, b int64) (result int64, err error) {
	switch op {
	case OP_ADD:
		result = a + b
	case OP_SUB:
		result = a - b
	case OP_MUL:
		result = a * b
	case OP_DIV:
		if b == 0 {
			err = ErrDivideByZero
			return
		}
		result = FloorDiv(a, b)
	default:
		err = ErrOpcodeUnknown
	}

	return
}
