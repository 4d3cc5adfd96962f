package vm

import (
	"errors"

	"github.com/ezrec/pl0fx/translate"
)

var f = translate.From

var (
	// Machine errors
	ErrStackFull      = errors.New(f("data stack full"))
	ErrStackEmpty     = errors.New(f("data stack empty"))
	ErrCallStackFull  = errors.New(f("call stack full"))
	ErrDivideByZero   = errors.New(f("divide by zero"))
	ErrRunaway        = errors.New(f("maximum step count exceeded"))
	ErrRegisterRange  = errors.New(f("register out of range"))
	ErrOperandKind    = errors.New(f("operand kind invalid"))
	ErrOperandCount   = errors.New(f("operand count invalid"))
	ErrOpcodeUnknown  = errors.New(f("opcode unknown"))
	ErrProviderResult = errors.New(f("provider result invalid"))

	// Assembler errors
	ErrMnemonicInvalid = errors.New(f("mnemonic invalid"))
	ErrLabelDuplicate  = errors.New(f("label duplicated"))
)

// ErrLabelMissing indicates a label that does not resolve in the
// active instruction sequence.
type ErrLabelMissing string

func (err ErrLabelMissing) Error() string {
	return f("label %v missing", string(err))
}

// ErrProgramMissing indicates a cross-program call target absent from
// the registry.
type ErrProgramMissing string

func (err ErrProgramMissing) Error() string {
	return f("program %v not registered", string(err))
}

// ErrParseNumber indicates a malformed numeric field in the text form.
type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

// ErrParseExpression indicates a malformed $(...) expression.
type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

// ErrSyntax indicates the location of a text-form parse error.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

// ErrExec indicates the location of an execution error: the program,
// instruction pointer, and offending instruction.
type ErrExec struct {
	Program string
	Ip      int
	Inst    Instruction
	Err     error
}

func (err ErrExec) Error() string {
	return f("%v:%d '%v' %v", err.Program, err.Ip, err.Inst.String(), err.Err)
}

func (err ErrExec) Unwrap() error {
	return err.Err
}
