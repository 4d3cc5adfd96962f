// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/ezrec/pl0fx/emulator"
	"github.com/ezrec/pl0fx/provider"
)

func main() {
	var entry string
	var steps int
	var config string
	var asm string
	var defines bool
	var list bool
	var verbose bool

	flag.StringVar(&entry, "e", "", "Entry program name (default: last compiled)")
	flag.IntVar(&steps, "n", 0, "Maximum step count")
	flag.StringVar(&config, "f", "", "Provider configuration YAML file")
	flag.StringVar(&asm, "a", "", "Instruction text file to assemble")
	flag.BoolVar(&defines, "D", false, "Dump machine defines, do not execute")
	flag.BoolVar(&list, "l", false, "List compiled instructions, do not execute")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	emu := emulator.NewEmulator()
	emu.Verbose = verbose

	if defines {
		for key, value := range emu.Defines() {
			fmt.Printf("%v=%v\n", key, value)
		}
		return
	}

	if len(config) != 0 {
		cfg, err := emulator.LoadConfig(config)
		if err != nil {
			log.Fatalf("%v: %v", config, err)
		}
		emu.Configure(cfg, provider.ExactBinary{Scale: cfg.Scale},
			provider.ExactUnary{Scale: cfg.Scale})
		if steps == 0 {
			steps = cfg.MaxSteps
		}
	}

	// Compile each .pl0 source argument; the last program compiled is
	// the default entry.
	for _, path := range flag.Args() {
		source, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("%v: %v", path, err)
		}

		prog, err := emu.Compile(string(source))
		if err != nil {
			log.Fatalf("%v: %v", path, err)
		}

		if list {
			fmt.Print(prog.Text())
		}
		if len(entry) == 0 {
			entry = prog.Name
		}
	}

	// Assemble an instruction text file, named after the file.
	if len(asm) != 0 {
		inf, err := os.Open(asm)
		if err != nil {
			log.Fatalf("%v: %v", asm, err)
		}
		defer inf.Close()

		name := strings.TrimSuffix(filepath.Base(asm), filepath.Ext(asm))
		prog, err := emu.Assemble(name, inf)
		if err != nil {
			log.Fatalf("%v: %v", asm, err)
		}

		if list {
			fmt.Print(prog.Text())
		}
		if len(entry) == 0 {
			entry = prog.Name
		}
	}

	if list {
		return
	}

	if len(entry) == 0 {
		log.Fatalf("%v: no program to run", os.Args[0])
	}

	m, err := emu.Run(entry, steps)
	if err != nil {
		log.Fatal(err)
	}

	dump := m.String()
	if m.Stats.BinaryCalls+m.Stats.UnaryCalls > 0 {
		dump += fmt.Sprintf("%8v: %v binary, %v unary, %v fallbacks, %.1f error\n",
			"provider", m.Stats.BinaryCalls, m.Stats.UnaryCalls,
			m.Stats.Fallbacks, m.Stats.AbsoluteError)
	}

	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		dump = "\033[36m" + dump + "\033[0m"
	}
	fmt.Print(dump)
}
