package vm

import (
	"fmt"
	"strings"
)

// Op is a machine opcode.
type Op int

const (
	OP_LABEL = Op(0) // label pseudo-instruction, position marker only

	// Data movement
	OP_LOAD  = Op(1) // LOAD
	OP_STORE = Op(2) // STORE
	OP_PEEK  = Op(3) // PEEK
	OP_POKE  = Op(4) // POKE

	// Data stack
	OP_PUSH = Op(5) // PUSH
	OP_POP  = Op(6) // POP

	// Binary arithmetic
	OP_ADD = Op(7)  // ADD
	OP_SUB = Op(8)  // SUB
	OP_MUL = Op(9)  // MUL
	OP_DIV = Op(10) // DIV

	// Unary math
	OP_SIN   = Op(11) // SIN
	OP_COS   = Op(12) // COS
	OP_TAN   = Op(13) // TAN
	OP_TANH  = Op(14) // TANH
	OP_SINH  = Op(15) // SINH
	OP_COSH  = Op(16) // COSH
	OP_LN    = Op(17) // LN
	OP_LOG10 = Op(18) // LOG10
	OP_EXP   = Op(19) // EXP
	OP_SQRT  = Op(20) // SQRT

	// Control flow
	OP_JMP     = Op(21) // JMP
	OP_JZ      = Op(22) // JZ
	OP_JNZ     = Op(23) // JNZ
	OP_CALL    = Op(24) // CALL
	OP_RET     = Op(25) // RET
	OP_PL0CALL = Op(26) // PL0CALL
	OP_HALT    = Op(27) // HALT
)

// opName maps opcodes to their text-form mnemonics.
var opName = map[Op]string{
	OP_LOAD:    "LOAD",
	OP_STORE:   "STORE",
	OP_PEEK:    "PEEK",
	OP_POKE:    "POKE",
	OP_PUSH:    "PUSH",
	OP_POP:     "POP",
	OP_ADD:     "ADD",
	OP_SUB:     "SUB",
	OP_MUL:     "MUL",
	OP_DIV:     "DIV",
	OP_SIN:     "SIN",
	OP_COS:     "COS",
	OP_TAN:     "TAN",
	OP_TANH:    "TANH",
	OP_SINH:    "SINH",
	OP_COSH:    "COSH",
	OP_LN:      "LN",
	OP_LOG10:   "LOG10",
	OP_EXP:     "EXP",
	OP_SQRT:    "SQRT",
	OP_JMP:     "JMP",
	OP_JZ:      "JZ",
	OP_JNZ:     "JNZ",
	OP_CALL:    "CALL",
	OP_RET:     "RET",
	OP_PL0CALL: "PL0CALL",
	OP_HALT:    "HALT",
}

// nameOp is the inverse of opName, keyed by upper-case mnemonic.
var nameOp = map[string]Op{}

func init() {
	for op, name := range opName {
		nameOp[name] = op
	}
}

// String returns the text-form mnemonic of the opcode.
func (op Op) String() string {
	name, ok := opName[op]
	if !ok {
		if op == OP_LABEL {
			return "LABEL"
		}
		return fmt.Sprintf("OP(%d)", int(op))
	}
	return name
}

// IsBinary reports whether the opcode is a binary arithmetic instruction.
func (op Op) IsBinary() bool {
	return op >= OP_ADD && op <= OP_DIV
}

// IsMath reports whether the opcode is a unary math instruction.
func (op Op) IsMath() bool {
	return op >= OP_SIN && op <= OP_SQRT
}

// OperandKind is the type of an instruction operand.
type OperandKind int

const (
	OPERAND_REG   = OperandKind(0) // register (r0..r3)
	OPERAND_IMM   = OperandKind(1) // immediate integer (#N)
	OPERAND_ADDR  = OperandKind(2) // absolute memory address ([N])
	OPERAND_IND   = OperandKind(3) // register-indirect memory address ([rN])
	OPERAND_LABEL = OperandKind(4) // label or program name
)

// Operand is a single instruction operand.
type Operand struct {
	Kind  OperandKind
	Value int64  // immediate value or absolute address
	Reg   int    // register index for OPERAND_REG / OPERAND_IND
	Name  string // label or program name for OPERAND_LABEL
}

// Reg makes a register operand.
func Reg(index int) Operand {
	return Operand{Kind: OPERAND_REG, Reg: index}
}

// Imm makes an immediate operand.
func Imm(value int64) Operand {
	return Operand{Kind: OPERAND_IMM, Value: value}
}

// Addr makes an absolute memory address operand.
func Addr(address int64) Operand {
	return Operand{Kind: OPERAND_ADDR, Value: address}
}

// Ind makes a register-indirect memory address operand.
func Ind(index int) Operand {
	return Operand{Kind: OPERAND_IND, Reg: index}
}

// Label makes a label (or program name) operand.
func Label(name string) Operand {
	return Operand{Kind: OPERAND_LABEL, Name: name}
}

// String returns the text-form rendering of the operand.
func (o Operand) String() string {
	switch o.Kind {
	case OPERAND_REG:
		return fmt.Sprintf("r%d", o.Reg)
	case OPERAND_IMM:
		return fmt.Sprintf("#%d", o.Value)
	case OPERAND_ADDR:
		return fmt.Sprintf("[%d]", o.Value)
	case OPERAND_IND:
		return fmt.Sprintf("[r%d]", o.Reg)
	case OPERAND_LABEL:
		return o.Name
	}

	return fmt.Sprintf("operand(%d)", int(o.Kind))
}

// Instruction is one machine instruction: an opcode and zero to two
// operands. Created at compile time, immutable thereafter.
type Instruction struct {
	Op       Op
	Operands []Operand
}

// MakeInst creates an instruction.
func MakeInst(op Op, operands ...Operand) Instruction {
	return Instruction{Op: op, Operands: operands}
}

// MakeLabel creates a label pseudo-instruction.
func MakeLabel(name string) Instruction {
	return Instruction{Op: OP_LABEL, Operands: []Operand{Label(name)}}
}

// String returns the text-form rendering of the instruction, one line,
// suitable for Assembler.Parse.
func (inst Instruction) String() string {
	if inst.Op == OP_LABEL {
		return inst.Operands[0].Name + ":"
	}

	if len(inst.Operands) == 0 {
		return inst.Op.String()
	}

	args := make([]string, len(inst.Operands))
	for n, o := range inst.Operands {
		args[n] = o.String()
	}

	return inst.Op.String() + " " + strings.Join(args, ", ")
}
