// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/pl0fx/fixed"
	"github.com/ezrec/pl0fx/provider"
	"github.com/ezrec/pl0fx/vm"
)

func TestEmulatorPrecedence(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	_, err := emu.Compile("program p; var x; begin x := 2 + 3 * 4; end.")
	assert.NoError(err)

	m, err := emu.Run("p", 0)
	assert.NoError(err)
	assert.Equal(int64(14), m.Memory[DEFAULT_BASE])
	assert.Same(m, emu.Machine)
}

func TestEmulatorCrossProgram(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	// A 2x4 matrix lives at 30; the setter writes cell [row, col]
	// through poke, the getter reads it back through peek and leaves
	// it on the data stack. Programs compile with disjoint variable
	// bases and communicate through memory and the stack only.
	emu.Base = 10
	_, err := emu.Compile(`
		program setter; var row, col, value, addr;
		begin
			pop value;
			pop col;
			pop row;
			addr := row * 4 + col + 30;
			poke(addr, value);
		end.
	`)
	assert.NoError(err)

	emu.Base = 20
	_, err = emu.Compile(`
		program getter; var row, col, value, addr;
		begin
			pop col;
			pop row;
			addr := row * 4 + col + 30;
			peek(value, addr);
			push value;
		end.
	`)
	assert.NoError(err)

	emu.Base = 0
	_, err = emu.Compile(`
		program main; var row, col, value;
		begin
			row := 2;
			col := 1;
			value := 7;
			push row; push col; push value;
			call setter;
			push row; push col;
			call getter;
		end.
	`)
	assert.NoError(err)

	m, err := emu.Run("main", 0)
	assert.NoError(err)
	assert.Equal(int64(7), m.Memory[2*4+1+30])
	assert.Equal([]int64{7}, m.Stack.Data)
	assert.Equal("main", m.Program())

	// A clean re-run on a fresh machine reproduces the same final
	// memory cell and stack contents.
	again, err := emu.Run("main", 0)
	assert.NoError(err)
	assert.NotSame(m, again)
	assert.Equal(m.Memory, again.Memory)
	assert.Equal(m.Stack.Data, again.Stack.Data)
}

func TestEmulatorMathReference(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	_, err := emu.Compile("program trig; var c, l; begin c := cos(0.0); l := ln(1.0); end.")
	assert.NoError(err)

	m, err := emu.Run("trig", 0)
	assert.NoError(err)
	assert.Equal(int64(65536), m.Memory[0])
	assert.Equal(int64(0), m.Memory[1])
}

func TestEmulatorAssemble(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	text := strings.Join([]string{
		"LOAD r0, #6",
		"LOAD r1, #7",
		"MUL r0, r1",
		"STORE r0, [0]",
		"RET",
	}, "\n")

	_, err := emu.Assemble("mul", strings.NewReader(text))
	assert.NoError(err)

	m, err := emu.Run("mul", 0)
	assert.NoError(err)
	assert.Equal(int64(42), m.Memory[0])
}

func TestEmulatorAssembleCallsCompiled(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	_, err := emu.Compile("program double; var x; begin pop x; x := x * 2; push x; end.")
	assert.NoError(err)

	text := strings.Join([]string{
		"LOAD r0, #21",
		"PUSH r0",
		"PL0CALL double",
		"POP r1",
		"RET",
	}, "\n")
	_, err = emu.Assemble("main", strings.NewReader(text))
	assert.NoError(err)

	m, err := emu.Run("main", 0)
	assert.NoError(err)
	assert.Equal(int64(42), m.Register[1])
}

func TestEmulatorRunawayDefault(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	_, err := emu.Compile("program spin; var x; begin x := 1; while x do x := 1; end.")
	assert.NoError(err)

	// maxSteps <= 0 selects the default bound.
	m, err := emu.Run("spin", 0)
	assert.ErrorIs(err, vm.ErrRunaway)
	assert.Equal(DEFAULT_MAX_STEPS+1, m.Steps)
}

func TestEmulatorDefines(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	defines := map[string]string{}
	for key, value := range emu.Defines() {
		defines[key] = value
	}

	assert.Equal("0", defines["DEFAULT_BASE"])
	assert.Equal("65536", defines["DEFAULT_SCALE"])
	assert.Equal("256", defines["MEMORY_SIZE"])
	assert.Equal("4", defines["REGISTER_COUNT"])
}

func TestParseConfig(t *testing.T) {
	assert := assert.New(t)

	cfg, err := ParseConfig([]byte(`
scale: 256
base: 16
provider:
  use: both
  mix: 0.5
  fallback: true
  threshold: 10
`))
	assert.NoError(err)
	assert.Equal(int64(256), cfg.Scale)
	assert.Equal(16, cfg.Base)
	assert.Equal(DEFAULT_MAX_STEPS, cfg.MaxSteps)
	assert.Equal("both", cfg.Provider.Use)
	assert.Equal(0.5, cfg.Provider.Mix)
	assert.True(cfg.Provider.Fallback)
	// The provider scale inherits the emulator scale when unset.
	assert.Equal(int64(256), cfg.Provider.Config.Scale)
}

func TestParseConfigDefaults(t *testing.T) {
	assert := assert.New(t)

	cfg, err := ParseConfig([]byte("{}"))
	assert.NoError(err)
	assert.Equal(int64(fixed.DEFAULT_SCALE), cfg.Scale)
	assert.Equal(0, cfg.Base)
	assert.Equal(DEFAULT_MAX_STEPS, cfg.MaxSteps)
	assert.Equal("", cfg.Provider.Use)
}

func TestParseConfigInvalid(t *testing.T) {
	assert := assert.New(t)

	cfg, err := ParseConfig([]byte("scale: not-a-number"))
	assert.Error(err)
	assert.Nil(cfg)
}

func TestConfigure(t *testing.T) {
	assert := assert.New(t)

	bin := provider.ExactBinary{}
	un := provider.ExactUnary{}

	table := [](struct {
		use       string
		hasBinary bool
		hasUnary  bool
	}){
		{"", false, false},
		{"none", false, false},
		{"binary", true, false},
		{"unary", false, true},
		{"both", true, true},
	}

	for _, entry := range table {
		emu := NewEmulator()
		cfg, err := ParseConfig([]byte("provider:\n  use: " + entry.use))
		assert.NoError(err, entry.use)

		emu.Configure(cfg, bin, un)
		assert.Equal(entry.hasBinary, emu.Binary != nil, entry.use)
		assert.Equal(entry.hasUnary, emu.Unary != nil, entry.use)
	}

	// Nil estimators leave the contract unattached.
	emu := NewEmulator()
	cfg, _ := ParseConfig([]byte("provider:\n  use: both"))
	emu.Configure(cfg, nil, nil)
	assert.Nil(emu.Binary)
	assert.Nil(emu.Unary)
}

func TestEmulatorWithProviders(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	cfg, err := ParseConfig([]byte(`
provider:
  use: both
  mix: 1.0
  fallback: true
  threshold: 4
`))
	assert.NoError(err)

	emu.Configure(cfg,
		provider.ExactBinary{Scale: cfg.Scale},
		provider.ExactUnary{Scale: cfg.Scale})

	_, err = emu.Compile("program p; var x, y; begin x := 2 + 3 * 4; y := cos(0.0); end.")
	assert.NoError(err)

	m, err := emu.Run("p", 0)
	assert.NoError(err)
	assert.Equal(int64(14), m.Memory[0])
	assert.Equal(int64(65536), m.Memory[1])

	// Every arithmetic and math instruction routed through a provider.
	assert.NotZero(m.Stats.BinaryCalls)
	assert.Equal(1, m.Stats.UnaryCalls)
	assert.Zero(m.Stats.Fallbacks)
}
