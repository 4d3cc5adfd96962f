package vm

import (
	"iter"
	"maps"
	"slices"
	"strings"
)

// Program is one compiled instruction sequence, registered under its
// declared name. The sequence is owned by the program and immutable
// after compilation.
type Program struct {
	Name string
	Code []Instruction
}

// Labels scans the instruction sequence and builds the label table:
// label name to instruction index. The table is rebuilt whenever a
// machine switches its active sequence.
func (prog *Program) Labels() (labels map[string]int, err error) {
	labels = make(map[string]int, 8)

	for n, inst := range prog.Code {
		if inst.Op != OP_LABEL {
			continue
		}
		name := inst.Operands[0].Name
		_, ok := labels[name]
		if ok {
			err = ErrLabelDuplicate
			return
		}
		labels[name] = n
	}

	return
}

// Text renders the program in the one-instruction-per-line text form.
// Assembler.Parse on the output reproduces the program.
func (prog *Program) Text() string {
	var sb strings.Builder

	for _, inst := range prog.Code {
		sb.WriteString(inst.String())
		sb.WriteByte('\n')
	}

	return sb.String()
}

// Instructions iterates over the instruction sequence with indexes.
func (prog *Program) Instructions() iter.Seq2[int, Instruction] {
	return func(yield func(int, Instruction) bool) {
		for n, inst := range prog.Code {
			if !yield(n, inst) {
				return
			}
		}
	}
}

// Registry maps program names to their compiled instruction sequences.
// It is an explicit store object: construct one per compilation
// session and share it between the compiler and the machines that
// execute from it. Registration of a name that already exists replaces
// the prior sequence. The registry performs no locking; a host running
// concurrent compilations or executions must serialize access.
type Registry struct {
	program map[string]*Program
}

// NewRegistry creates an empty program registry.
func NewRegistry() (reg *Registry) {
	return &Registry{
		program: make(map[string]*Program, 8),
	}
}

// Register stores a program under its name, replacing any prior
// registration of that name.
func (reg *Registry) Register(prog *Program) {
	reg.program[prog.Name] = prog
}

// Lookup finds a program by name.
func (reg *Registry) Lookup(name string) (prog *Program, ok bool) {
	prog, ok = reg.program[name]
	return
}

// Len returns the number of registered programs.
func (reg *Registry) Len() int {
	return len(reg.program)
}

// Names iterates over the registered program names, sorted.
func (reg *Registry) Names() iter.Seq[string] {
	names := slices.Sorted(maps.Keys(reg.program))
	return slices.Values(names)
}
