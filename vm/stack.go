package vm

const (
	STACK_LIMIT      = 32 // Maximum data stack depth
	CALL_STACK_LIMIT = 64 // Maximum call stack depth
)

// Stack is the bounded data stack of the machine.
type Stack struct {
	Data []int64
}

func (s *Stack) Push(value int64) {
	s.Data = append(s.Data, value)
}

func (s *Stack) Pop() (value int64, ok bool) {
	value, ok = s.Peek()
	if ok {
		s.Data = s.Data[:len(s.Data)-1]
	}
	return
}

func (s *Stack) Empty() bool {
	return len(s.Data) == 0
}

func (s *Stack) Full() bool {
	return len(s.Data) == STACK_LIMIT
}

func (s *Stack) Peek() (value int64, ok bool) {
	if s.Empty() {
		return
	}

	return s.Data[len(s.Data)-1], true
}

func (s *Stack) Reset() {
	if len(s.Data) > 0 {
		s.Data = s.Data[:0]
	}
}

// FrameKind tags the two call stack entry shapes.
type FrameKind int

const (
	FRAME_RETURN  = FrameKind(0) // intra-program: a bare return index
	FRAME_CONTEXT = FrameKind(1) // cross-program: full caller context
)

// Frame is one call stack entry. FRAME_RETURN frames carry only the
// return index; FRAME_CONTEXT frames additionally capture the caller's
// instruction sequence and label table so a RET in the callee can
// restore them.
type Frame struct {
	Kind    FrameKind
	Return  int
	Program string
	Code    []Instruction
	Labels  map[string]int
}
