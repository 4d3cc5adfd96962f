package vm

// BinaryOutcome reports one delegated binary arithmetic instruction.
// The machine adopts Result as the new register value; the remaining
// fields are diagnostics, optionally folded into run statistics.
type BinaryOutcome struct {
	Result       int64   // Value adopted by the machine.
	Exact        int64   // Exact reference value (ExactBinary rules).
	Raw          float64 // Provider's raw prediction.
	Mixed        int64   // exact*(1-mix) + prediction*mix, rounded.
	UsedFallback bool    // True if the safety fallback replaced the blend.
}

// UnaryOutcome reports one delegated unary math instruction.
// Normalization happens in the op's own [0,1] input/output space,
// derived from the Domain table.
type UnaryOutcome struct {
	Result       int64   // Value adopted by the machine.
	Exact        int64   // Exact reference value (MathExact rules).
	Raw          float64 // Provider's raw prediction, fixed-point units.
	Mixed        int64   // exact*(1-mix) + prediction*mix, rounded.
	UsedFallback bool    // True if the safety fallback replaced the blend.
	NormIn       float64 // Input normalized into the op's [0,1] domain.
	NormOut      float64 // Raw prediction in the op's [0,1] range.
}

// BinaryProvider satisfies ADD/SUB/MUL/DIV instructions in place of
// native arithmetic. The provider alone is the source of the exact
// comparator; the machine never re-derives it.
type BinaryProvider interface {
	Binary(op Op, a, b int64) (BinaryOutcome, error)
}

// UnaryProvider satisfies the ten unary math instructions in place of
// the deterministic reference.
type UnaryProvider interface {
	Unary(op Op, input int64) (UnaryOutcome, error)
}

// Stats accumulates provider outcomes over one execution run. The
// error sum uses the mixed value for both outcome kinds.
type Stats struct {
	BinaryCalls   int     // Binary provider invocations.
	UnaryCalls    int     // Unary provider invocations.
	Fallbacks     int     // Outcomes where the safety fallback fired.
	AbsoluteError float64 // Summed |mixed - exact| across all outcomes.
}

func (st *Stats) addBinary(out BinaryOutcome) {
	st.BinaryCalls += 1
	if out.UsedFallback {
		st.Fallbacks += 1
	}
	st.AbsoluteError += abs64(out.Mixed - out.Exact)
}

func (st *Stats) addUnary(out UnaryOutcome) {
	st.UnaryCalls += 1
	if out.UsedFallback {
		st.Fallbacks += 1
	}
	st.AbsoluteError += abs64(out.Mixed - out.Exact)
}

func abs64(v int64) float64 {
	if v < 0 {
		v = -v
	}
	return float64(v)
}
