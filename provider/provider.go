// Package provider implements the two computation provider contracts
// consumed by the virtual machine: blending a learned estimator's
// prediction with the exact reference value under a configurable mix
// factor and an absolute-error safety fallback.
//
// The estimator itself is an external collaborator; this package only
// needs something that maps an operation and normalized operand(s) to
// a prediction. Exact estimators are included so the providers can
// run, and be tested, without any trained model attached.
package provider

import (
	"math"

	"github.com/ezrec/pl0fx/fixed"
	"github.com/ezrec/pl0fx/vm"
)

// BinaryEstimator predicts the result of a binary arithmetic op.
// Operands and result are in scale-normalized units (value / scale).
type BinaryEstimator interface {
	Estimate(op vm.Op, a, b float64) float64
}

// UnaryEstimator predicts the result of a unary math op. Input and
// output are normalized into the op's own [0,1] domain and range,
// derived from the documented clamp table.
type UnaryEstimator interface {
	Estimate(op vm.Op, input float64) float64
}

// Config is the provider configuration surface.
type Config struct {
	Mix       float64 `yaml:"mix"`       // Blend weight in [0,1]; 0 is all-exact.
	Fallback  bool    `yaml:"fallback"`  // Enable the safety fallback.
	Threshold float64 `yaml:"threshold"` // Absolute-error bound, fixed-point units.
	Scale     int64   `yaml:"scale"`     // Fixed-point scale for normalization.
}

// withDefaults fills the zero-value scale.
func (cfg Config) withDefaults() Config {
	if cfg.Scale == 0 {
		cfg.Scale = fixed.DEFAULT_SCALE
	}
	return cfg
}

// blend mixes the exact value with a raw prediction and applies the
// fallback policy. The returned result is what the machine adopts.
func (cfg Config) blend(exact int64, raw float64) (result, mixed int64, usedFallback bool) {
	mixed = int64(math.Round(float64(exact)*(1-cfg.Mix) + raw*cfg.Mix))

	result = mixed
	if cfg.Fallback && math.Abs(float64(mixed-exact)) > cfg.Threshold {
		result = exact
		usedFallback = true
	}

	return
}

// Binary is a vm.BinaryProvider delegating predictions to an
// estimator. It alone computes the exact comparator (same floor
// division, zero-guarded rules as the machine's native path).
type Binary struct {
	Config
	Estimator BinaryEstimator
}

// NewBinary creates a binary arithmetic provider.
func NewBinary(est BinaryEstimator, cfg Config) (p *Binary) {
	return &Binary{Config: cfg.withDefaults(), Estimator: est}
}

// Binary satisfies one arithmetic instruction.
func (p *Binary) Binary(op vm.Op, a, b int64) (out vm.BinaryOutcome, err error) {
	exact, err := vm.ExactBinary(op, a, b)
	if err != nil {
		return
	}

	scale := float64(p.Scale)
	raw := p.Estimator.Estimate(op, float64(a)/scale, float64(b)/scale) * scale

	result, mixed, usedFallback := p.blend(exact, raw)

	out = vm.BinaryOutcome{
		Result:       result,
		Exact:        exact,
		Raw:          raw,
		Mixed:        mixed,
		UsedFallback: usedFallback,
	}

	return
}

// Unary is a vm.UnaryProvider delegating predictions to an estimator
// operating in the op's [0,1] input/output space.
type Unary struct {
	Config
	Estimator UnaryEstimator
}

// NewUnary creates a unary math provider.
func NewUnary(est UnaryEstimator, cfg Config) (p *Unary) {
	return &Unary{Config: cfg.withDefaults(), Estimator: est}
}

// Unary satisfies one math instruction.
func (p *Unary) Unary(op vm.Op, input int64) (out vm.UnaryOutcome, err error) {
	inLo, inHi, outLo, outHi, ok := vm.Domain(op)
	if !ok {
		err = vm.ErrOpcodeUnknown
		return
	}

	exact := vm.MathExact(op, input, p.Scale)

	x := fixed.Clamp(fixed.Decode(input, p.Scale), inLo, inHi)
	normIn := (x - inLo) / (inHi - inLo)
	normOut := p.Estimator.Estimate(op, normIn)

	raw := float64(fixed.Encode(outLo+normOut*(outHi-outLo), p.Scale))

	result, mixed, usedFallback := p.blend(exact, raw)

	out = vm.UnaryOutcome{
		Result:       result,
		Exact:        exact,
		Raw:          raw,
		Mixed:        mixed,
		UsedFallback: usedFallback,
		NormIn:       normIn,
		NormOut:      normOut,
	}

	return
}
