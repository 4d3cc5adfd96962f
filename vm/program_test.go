package vm

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgramLabels(t *testing.T) {
	assert := assert.New(t)

	prog := &Program{
		Name: "labels",
		Code: []Instruction{
			MakeLabel("start"),
			MakeInst(OP_LOAD, Reg(0), Imm(1)),
			MakeLabel("middle"),
			MakeInst(OP_JMP, Label("start")),
			MakeLabel("end"),
		},
	}

	labels, err := prog.Labels()
	assert.NoError(err)
	assert.Equal(map[string]int{
		"start":  0,
		"middle": 2,
		"end":    4,
	}, labels)
}

func TestProgramLabelsDuplicate(t *testing.T) {
	assert := assert.New(t)

	prog := &Program{
		Name: "dup",
		Code: []Instruction{
			MakeLabel("here"),
			MakeInst(OP_HALT),
			MakeLabel("here"),
		},
	}

	_, err := prog.Labels()
	assert.ErrorIs(err, ErrLabelDuplicate)
}

func TestProgramInstructions(t *testing.T) {
	assert := assert.New(t)

	prog := &Program{
		Name: "iter",
		Code: []Instruction{
			MakeInst(OP_LOAD, Reg(0), Imm(1)),
			MakeInst(OP_HALT),
		},
	}

	var ops []Op
	for n, inst := range prog.Instructions() {
		assert.Equal(prog.Code[n], inst)
		ops = append(ops, inst.Op)
	}
	assert.Equal([]Op{OP_LOAD, OP_HALT}, ops)
}

func TestRegistry(t *testing.T) {
	assert := assert.New(t)

	reg := NewRegistry()
	assert.Equal(0, reg.Len())

	_, ok := reg.Lookup("alpha")
	assert.False(ok)

	alpha := &Program{Name: "alpha"}
	beta := &Program{Name: "beta"}
	reg.Register(beta)
	reg.Register(alpha)
	assert.Equal(2, reg.Len())

	found, ok := reg.Lookup("alpha")
	assert.True(ok)
	assert.Same(alpha, found)

	// Re-registration replaces.
	alpha2 := &Program{Name: "alpha", Code: []Instruction{MakeInst(OP_HALT)}}
	reg.Register(alpha2)
	assert.Equal(2, reg.Len())
	found, _ = reg.Lookup("alpha")
	assert.Same(alpha2, found)

	assert.Equal([]string{"alpha", "beta"}, slices.Collect(reg.Names()))
}
