package vm

import (
	"fmt"
	"iter"
	"log"
	"maps"
)

const (
	REGISTER_COUNT = 4   // General purpose registers, r0..r3.
	MEMORY_SIZE    = 256 // Integer memory cells.

	DEFAULT_MAX_STEPS = 10000 // Runaway bound when the caller passes none.
)

var _vm_defines = map[string]string{
	"REGISTER_COUNT":   fmt.Sprintf("%v", REGISTER_COUNT),
	"MEMORY_SIZE":      fmt.Sprintf("%v", MEMORY_SIZE),
	"STACK_LIMIT":      fmt.Sprintf("%v", STACK_LIMIT),
	"CALL_STACK_LIMIT": fmt.Sprintf("%v", CALL_STACK_LIMIT),
}

// Machine is the virtual machine state: register file, memory, data
// stack, call stack, and the active instruction sequence with its
// label table. All mutation happens in the dispatch loop; create a
// fresh Machine (or Reset one) per execution run.
type Machine struct {
	Verbose bool // Set to enable verbose logging.

	Registry *Registry      // Program store for cross-program calls.
	Binary   BinaryProvider // Optional arithmetic provider.
	Unary    UnaryProvider  // Optional math provider.
	Scale    int64          // Fixed-point scale for the math reference.

	Register [REGISTER_COUNT]int64 // Register bank.
	Memory   [MEMORY_SIZE]int64    // Memory cells.
	Stack    Stack                 // Data stack.
	Ip       int                   // Current instruction pointer.
	Running  bool                  // Cleared on halt.

	Steps    int   // Instructions executed since the last run started.
	MaxSteps int   // Runaway bound; exceeding it is a fatal error.
	Stats    Stats // Provider statistics for the current run.

	program string
	code    []Instruction
	labels  map[string]int
	frames  []Frame
}

// NewMachine creates a machine executing from the given registry.
func NewMachine(reg *Registry) (m *Machine) {
	return &Machine{
		Registry: reg,
		Scale:    65536,
	}
}

// Defines for the machine.
func (m *Machine) Defines() iter.Seq2[string, string] {
	return maps.All(_vm_defines)
}

// Reset clears all machine state except the registry, providers, and
// scale.
func (m *Machine) Reset() {
	clear(m.Register[:])
	clear(m.Memory[:])
	m.Stack.Reset()
	m.frames = m.frames[:0]
	m.code = nil
	m.labels = nil
	m.program = ""
	m.Ip = 0
	m.Running = false
	m.Steps = 0
	m.Stats = Stats{}
}

// Program returns the name of the active program.
func (m *Machine) Program() string {
	return m.program
}

// Load switches the active instruction sequence to the given program,
// rebuilding the label table and resetting the instruction pointer.
func (m *Machine) Load(prog *Program) (err error) {
	labels, err := prog.Labels()
	if err != nil {
		return
	}

	m.program = prog.Name
	m.code = prog.Code
	m.labels = labels
	m.Ip = 0

	return
}

// String returns the current machine state as a string.
func (m *Machine) String() (text string) {
	text += fmt.Sprintf("%8v: %v\n", "program", m.program)
	text += fmt.Sprintf("%8v: %v\n", "ip", m.Ip)
	for n, val := range m.Register {
		text += fmt.Sprintf("      r%d: %v\n", n, val)
	}
	text += fmt.Sprintf("%8v: %v\n", "stack", m.Stack.Data)
	text += fmt.Sprintf("%8v: %v\n", "frames", len(m.frames))
	text += fmt.Sprintf("%8v: %v\n", "steps", m.Steps)

	return
}

// Run looks up the entry program, loads it, and executes until halt or
// fatal error. The step bound is the only cancellation mechanism,
// checked once per fetched instruction; a bound of zero or less
// selects the default, never an unbounded spin.
func (m *Machine) Run(entry string, maxSteps int) (err error) {
	if maxSteps <= 0 {
		maxSteps = DEFAULT_MAX_STEPS
	}

	prog, ok := m.Registry.Lookup(entry)
	if !ok {
		return ErrProgramMissing(entry)
	}

	err = m.Load(prog)
	if err != nil {
		return
	}

	m.MaxSteps = maxSteps
	m.Steps = 0
	m.Running = true

	for m.Running && m.Ip >= 0 && m.Ip < len(m.code) {
		err = m.Step()
		if err != nil {
			m.Running = false
			return
		}
	}

	m.Running = false

	return
}

// Step fetches and executes a single instruction. The instruction
// pointer advances by one by default; control flow instructions
// override the advance.
func (m *Machine) Step() (err error) {
	inst := m.code[m.Ip]

	defer func() {
		if err != nil {
			err = ErrExec{Program: m.program, Ip: m.Ip, Inst: inst, Err: err}
		}
	}()

	m.Steps += 1
	if m.MaxSteps > 0 && m.Steps > m.MaxSteps {
		err = ErrRunaway
		return
	}

	if m.Verbose {
		log.Printf("%v %03d: %v", m.program, m.Ip, inst.String())
	}

	next_ip := m.Ip + 1

	switch inst.Op {
	case OP_LABEL:
		// Position marker only.
	case OP_LOAD, OP_PEEK:
		var reg int
		reg, err = m.regOperand(inst, 0)
		if err != nil {
			return
		}
		var value int64
		value, err = m.readOperand(inst, 1)
		if err != nil {
			return
		}
		m.Register[reg] = value
	case OP_STORE, OP_POKE:
		var reg int
		reg, err = m.regOperand(inst, 0)
		if err != nil {
			return
		}
		var addr int
		addr, err = m.addrOperand(inst, 1)
		if err != nil {
			return
		}
		m.Memory[addr] = m.Register[reg]
	case OP_PUSH:
		var reg int
		reg, err = m.regOperand(inst, 0)
		if err != nil {
			return
		}
		if m.Stack.Full() {
			err = ErrStackFull
			return
		}
		m.Stack.Push(m.Register[reg])
	case OP_POP:
		var reg int
		reg, err = m.regOperand(inst, 0)
		if err != nil {
			return
		}
		value, ok := m.Stack.Pop()
		if !ok {
			err = ErrStackEmpty
			return
		}
		m.Register[reg] = value
	case OP_ADD, OP_SUB, OP_MUL, OP_DIV:
		var dst, src int
		dst, err = m.regOperand(inst, 0)
		if err != nil {
			return
		}
		src, err = m.regOperand(inst, 1)
		if err != nil {
			return
		}
		var result int64
		result, err = m.binary(inst.Op, m.Register[dst], m.Register[src])
		if err != nil {
			return
		}
		m.Register[dst] = result
	case OP_SIN, OP_COS, OP_TAN, OP_TANH, OP_SINH, OP_COSH,
		OP_LN, OP_LOG10, OP_EXP, OP_SQRT:
		var reg int
		reg, err = m.regOperand(inst, 0)
		if err != nil {
			return
		}
		var result int64
		result, err = m.unary(inst.Op, m.Register[reg])
		if err != nil {
			return
		}
		m.Register[reg] = result
	case OP_JMP:
		next_ip, err = m.labelOperand(inst, 0)
		if err != nil {
			return
		}
	case OP_JZ, OP_JNZ:
		var reg int
		reg, err = m.regOperand(inst, 0)
		if err != nil {
			return
		}
		var target int
		target, err = m.labelOperand(inst, 1)
		if err != nil {
			return
		}
		zero := m.Register[reg] == 0
		if (inst.Op == OP_JZ) == zero {
			next_ip = target
		}
	case OP_CALL:
		var target int
		target, err = m.labelOperand(inst, 0)
		if err != nil {
			return
		}
		if len(m.frames) == CALL_STACK_LIMIT {
			err = ErrCallStackFull
			return
		}
		m.frames = append(m.frames, Frame{Kind: FRAME_RETURN, Return: next_ip})
		next_ip = target
	case OP_RET:
		if len(m.frames) == 0 {
			// Program completion, not an error.
			m.Running = false
			break
		}
		frame := m.frames[len(m.frames)-1]
		m.frames = m.frames[:len(m.frames)-1]
		if frame.Kind == FRAME_CONTEXT {
			m.program = frame.Program
			m.code = frame.Code
			m.labels = frame.Labels
		}
		next_ip = frame.Return
	case OP_PL0CALL:
		if len(inst.Operands) != 1 || inst.Operands[0].Kind != OPERAND_LABEL {
			err = ErrOperandKind
			return
		}
		name := inst.Operands[0].Name
		prog, ok := m.Registry.Lookup(name)
		if !ok {
			err = ErrProgramMissing(name)
			return
		}
		if len(m.frames) == CALL_STACK_LIMIT {
			err = ErrCallStackFull
			return
		}
		m.frames = append(m.frames, Frame{
			Kind:    FRAME_CONTEXT,
			Return:  next_ip,
			Program: m.program,
			Code:    m.code,
			Labels:  m.labels,
		})
		err = m.Load(prog)
		if err != nil {
			return
		}
		next_ip = 0
	case OP_HALT:
		m.Running = false
	default:
		err = ErrOpcodeUnknown
		return
	}

	m.Ip = next_ip

	return
}

// binary satisfies a binary arithmetic instruction, either through the
// configured provider or the exact native path.
func (m *Machine) binary(op Op, a, b int64) (result int64, err error) {
	if m.Binary == nil {
		return ExactBinary(op, a, b)
	}

	out, err := m.Binary.Binary(op, a, b)
	if err != nil {
		return
	}

	m.Stats.addBinary(out)
	result = out.Result

	return
}

// unary satisfies a unary math instruction, either through the
// configured provider or the deterministic reference.
func (m *Machine) unary(op Op, input int64) (result int64, err error) {
	if m.Unary == nil {
		return MathExact(op, input, m.Scale), nil
	}

	out, err := m.Unary.Unary(op, input)
	if err != nil {
		return
	}

	m.Stats.addUnary(out)
	result = out.Result

	return
}

// regOperand validates and returns the register index of operand n.
func (m *Machine) regOperand(inst Instruction, n int) (index int, err error) {
	if n >= len(inst.Operands) {
		err = ErrOperandCount
		return
	}
	o := inst.Operands[n]
	if o.Kind != OPERAND_REG {
		err = ErrOperandKind
		return
	}
	if o.Reg < 0 || o.Reg >= REGISTER_COUNT {
		err = ErrRegisterRange
		return
	}

	index = o.Reg

	return
}

// addrOperand resolves operand n to a memory address, normalized into
// range by Euclidean modulo.
func (m *Machine) addrOperand(inst Instruction, n int) (addr int, err error) {
	if n >= len(inst.Operands) {
		err = ErrOperandCount
		return
	}
	o := inst.Operands[n]

	var raw int64
	switch o.Kind {
	case OPERAND_ADDR:
		raw = o.Value
	case OPERAND_IND:
		if o.Reg < 0 || o.Reg >= REGISTER_COUNT {
			err = ErrRegisterRange
			return
		}
		raw = m.Register[o.Reg]
	default:
		err = ErrOperandKind
		return
	}

	addr = int(((raw % MEMORY_SIZE) + MEMORY_SIZE) % MEMORY_SIZE)

	return
}

// readOperand resolves operand n to a value: an immediate, or a
// memory read through an absolute or register-indirect address.
func (m *Machine) readOperand(inst Instruction, n int) (value int64, err error) {
	if n >= len(inst.Operands) {
		err = ErrOperandCount
		return
	}
	if inst.Operands[n].Kind == OPERAND_IMM {
		value = inst.Operands[n].Value
		return
	}

	addr, err := m.addrOperand(inst, n)
	if err != nil {
		return
	}

	value = m.Memory[addr]

	return
}

// labelOperand resolves operand n against the active label table.
// Labels are locally scoped per program; an unresolved label is a
// fatal execution error.
func (m *Machine) labelOperand(inst Instruction, n int) (target int, err error) {
	if n >= len(inst.Operands) {
		err = ErrOperandCount
		return
	}
	o := inst.Operands[n]
	if o.Kind != OPERAND_LABEL {
		err = ErrOperandKind
		return
	}

	target, ok := m.labels[o.Name]
	if !ok {
		err = ErrLabelMissing(o.Name)
		return
	}

	return
}
