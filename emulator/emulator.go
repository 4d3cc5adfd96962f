// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package emulator is the host boundary around the compiler and the
// virtual machine: one Emulator owns a program registry, compiles
// source into it, and runs an entry program to halt or fatal error
// with a step bound and optional computation providers.
package emulator

import (
	"fmt"
	"io"
	"iter"
	"maps"

	"github.com/ezrec/pl0fx/fixed"
	"github.com/ezrec/pl0fx/internal"
	"github.com/ezrec/pl0fx/pl0"
	"github.com/ezrec/pl0fx/vm"
)

const (
	DEFAULT_BASE      = 0                    // First variable address for compiled programs.
	DEFAULT_MAX_STEPS = vm.DEFAULT_MAX_STEPS // Default runaway bound.
)

var _emulator_defines = map[string]string{
	"DEFAULT_BASE":      fmt.Sprintf("%v", DEFAULT_BASE),
	"DEFAULT_MAX_STEPS": fmt.Sprintf("%v", DEFAULT_MAX_STEPS),
	"DEFAULT_SCALE":     fmt.Sprintf("%v", fixed.DEFAULT_SCALE),
}

// Emulator state: registry + compiler settings + providers. The
// registry outlives individual runs; machine state is fresh per run.
type Emulator struct {
	Verbose bool // If set, enables verbose logging.

	Registry *vm.Registry      // Program store shared by compiler and machines.
	Scale    int64             // Fixed-point scale.
	Base     int               // Base variable address for compilation.
	Binary   vm.BinaryProvider // Optional arithmetic provider.
	Unary    vm.UnaryProvider  // Optional math provider.

	Machine *vm.Machine // Machine state of the most recent run.
}

// NewEmulator creates an emulator with an empty registry.
func NewEmulator() (emu *Emulator) {
	return &Emulator{
		Registry: vm.NewRegistry(),
		Scale:    fixed.DEFAULT_SCALE,
		Base:     DEFAULT_BASE,
	}
}

// Defines returns an iterator over all of the defines.
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	m := vm.NewMachine(emu.Registry)
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		m.Defines(),
	)
}

// Compile compiles PL/0 source and registers the program under its
// declared name, replacing any prior registration.
func (emu *Emulator) Compile(source string) (prog *vm.Program, err error) {
	c := pl0.NewCompiler(emu.Registry)
	c.Verbose = emu.Verbose
	c.Scale = emu.Scale
	c.Base = emu.Base

	prog, _, err = c.Compile(source)

	return
}

// Assemble parses the instruction text form and registers the program
// under the given name.
func (emu *Emulator) Assemble(name string, input io.Reader) (prog *vm.Program, err error) {
	asm := &vm.Assembler{Verbose: emu.Verbose}

	prog, err = asm.Parse(name, input)
	if err != nil {
		return
	}

	emu.Registry.Register(prog)

	return
}

// Run executes the named entry program on a fresh machine, to halt or
// fatal error. The final machine state stays inspectable on
// emu.Machine either way.
func (emu *Emulator) Run(entry string, maxSteps int) (m *vm.Machine, err error) {
	if maxSteps <= 0 {
		maxSteps = DEFAULT_MAX_STEPS
	}

	m = vm.NewMachine(emu.Registry)
	m.Verbose = emu.Verbose
	m.Scale = emu.Scale
	m.Binary = emu.Binary
	m.Unary = emu.Unary

	emu.Machine = m

	err = m.Run(entry, maxSteps)

	return
}
