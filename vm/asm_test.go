package vm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssembler(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog, err := asm.Parse("empty", strings.NewReader(""))
	assert.NoError(err)
	assert.Equal(0, len(prog.Code))
	assert.Equal("empty", prog.Name)
}

func TestAssemblerOperands(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	program := []string{
		"LOAD r0, #5",
		"LOAD r1, [30]",
		"PEEK r2, [r1]",
		"STORE r0, [r3]",
		"PUSH r0",
		"RET",
	}

	prog, err := asm.Parse("ops", strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}

	expected := []Instruction{
		MakeInst(OP_LOAD, Reg(0), Imm(5)),
		MakeInst(OP_LOAD, Reg(1), Addr(30)),
		MakeInst(OP_PEEK, Reg(2), Ind(1)),
		MakeInst(OP_STORE, Reg(0), Ind(3)),
		MakeInst(OP_PUSH, Reg(0)),
		MakeInst(OP_RET),
	}

	assert.Equal(expected, prog.Code)
}

func TestAssemblerLabels(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	program := []string{
		"",
		"start:",
		"  LOAD r0, #1   ; accumulator",
		"again: SUB r0, r1",
		"  JNZ r0, again",
		"  JMP start",
	}

	prog, err := asm.Parse("loops", strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}

	expected := []Instruction{
		MakeLabel("start"),
		MakeInst(OP_LOAD, Reg(0), Imm(1)),
		MakeLabel("again"),
		MakeInst(OP_SUB, Reg(0), Reg(1)),
		MakeInst(OP_JNZ, Reg(0), Label("again")),
		MakeInst(OP_JMP, Label("start")),
	}

	assert.Equal(expected, prog.Code)

	labels, err := prog.Labels()
	assert.NoError(err)
	assert.Equal(0, labels["start"])
	assert.Equal(2, labels["again"])
}

func TestAssemblerExpression(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("BASE", "10")

	program := []string{
		"LOAD r0, #$(1 + 2 * 3)",
		"LOAD r1, [$(MEMORY_SIZE - 1)]",
		"STORE r0, [$(BASE + 5)]",
	}

	prog, err := asm.Parse("expr", strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}

	expected := []Instruction{
		MakeInst(OP_LOAD, Reg(0), Imm(7)),
		MakeInst(OP_LOAD, Reg(1), Addr(MEMORY_SIZE-1)),
		MakeInst(OP_STORE, Reg(0), Addr(15)),
	}

	assert.Equal(expected, prog.Code)
}

func TestAssemblerErrors(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name string
		text string
		want error
	}){
		{"mnemonic", "FROB r0", ErrMnemonicInvalid},
		{"number", "LOAD r0, #zork", ErrParseNumber("zork")},
		{"address", "LOAD r0, [zork]", ErrParseNumber("zork")},
		{"duplicate_label", "x:\nx:", ErrLabelDuplicate},
	}

	for _, entry := range table {
		asm := &Assembler{}
		prog, err := asm.Parse(entry.name, strings.NewReader(entry.text))
		assert.Error(err, entry.name)
		assert.Nil(prog, entry.name)

		var syntax ErrSyntax
		if assert.ErrorAs(err, &syntax, entry.name) {
			assert.ErrorIs(err, entry.want, entry.name)
		}
	}

	// Unresolvable $() expressions are also syntax errors.
	asm := &Assembler{}
	_, err := asm.Parse("expr", strings.NewReader("LOAD r0, #$(unbound)"))
	assert.Error(err)
	var syntax ErrSyntax
	assert.ErrorAs(err, &syntax)
}

func TestAssemblerRoundTrip(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"start:",
		"LOAD r0, #-3",
		"COS r0",
		"JZ r0, start",
		"PL0CALL helper",
		"HALT",
	}

	asm := &Assembler{}
	prog, err := asm.Parse("rt", strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}

	again, err := asm.Parse("rt", strings.NewReader(prog.Text()))
	assert.NoError(err)
	assert.Equal(prog, again)
}

func TestAssemblerRegisterRange(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	// r9 is out of range; it parses as a label operand, which the
	// machine will reject at execution, not here.
	prog, err := asm.Parse("r9", strings.NewReader("PUSH r9"))
	assert.NoError(err)
	assert.Equal(OPERAND_LABEL, prog.Code[0].Operands[0].Kind)
}
