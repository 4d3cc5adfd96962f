// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package vm

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"regexp"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Predefined system equates available to $() expressions.
var sysEquate = map[string]string{
	"REGISTER_COUNT":   fmt.Sprintf("%v", REGISTER_COUNT),
	"MEMORY_SIZE":      fmt.Sprintf("%v", MEMORY_SIZE),
	"STACK_LIMIT":      fmt.Sprintf("%v", STACK_LIMIT),
	"CALL_STACK_LIMIT": fmt.Sprintf("%v", CALL_STACK_LIMIT),
}

// Assembler parses the machine's text form: one instruction per line,
// mnemonic followed by comma-separated operands. A line (or line
// prefix) ending in ':' declares a label at that position. Blank
// lines are skipped, ';' starts a comment, and $( ... ) fields are
// evaluated at parse time as integer expressions.
type Assembler struct {
	Verbose bool // If set, verbosely logs the assembler actions.

	predefine map[string]string // Predefines for $() expressions.
}

// Predefine defines a new equate or redefines an existing equate for
// $() expressions.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// parenEval does parse-time $(...) evaluations.
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range sysEquate {
		v64, _err := strconv.ParseInt(str, 0, 64)
		if _err != nil {
			continue
		}
		pred[key] = starlark.MakeInt64(v64)
	}
	for key, str := range asm.predefine {
		v64, _err := strconv.ParseInt(str, 0, 64)
		if _err != nil {
			continue
		}
		pred[key] = starlark.MakeInt64(v64)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = st_int64
	return
}

var parenRe = regexp.MustCompile(`\$\([^\$\)]*\)`)

// regOf parses a register name of the form r<index>.
func regOf(word string) (index int, ok bool) {
	if len(word) < 2 || word[0] != 'r' {
		return
	}
	index, err := strconv.Atoi(word[1:])
	if err != nil || index < 0 || index >= REGISTER_COUNT {
		return 0, false
	}
	return index, true
}

// operandOf classifies a single operand field.
func (asm *Assembler) operandOf(word string) (o Operand, err error) {
	switch {
	case word[0] == '#':
		var value int64
		value, err = strconv.ParseInt(word[1:], 0, 64)
		if err != nil {
			err = ErrParseNumber(word[1:])
			return
		}
		o = Imm(value)
	case word[0] == '[' && word[len(word)-1] == ']':
		inner := strings.TrimSpace(word[1 : len(word)-1])
		if index, ok := regOf(inner); ok {
			o = Ind(index)
			return
		}
		var value int64
		value, err = strconv.ParseInt(inner, 0, 64)
		if err != nil {
			err = ErrParseNumber(inner)
			return
		}
		o = Addr(value)
	default:
		if index, ok := regOf(word); ok {
			o = Reg(index)
			return
		}
		o = Label(word)
	}

	return
}

// parseLine parses a single text-form line into zero or more
// instructions (label declarations plus at most one operation).
func (asm *Assembler) parseLine(line string) (insts []Instruction, err error) {
	// Strip comments.
	line = strings.TrimSpace(strings.Split(line, ";")[0])
	if len(line) == 0 {
		return
	}

	// Do $() evaluations.
	line = parenRe.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%v", value)
	})
	if err != nil {
		return
	}

	// Leading label declarations.
	for {
		head, rest, found := strings.Cut(line, ":")
		if !found || strings.ContainsAny(head, " \t,#[") {
			break
		}
		insts = append(insts, MakeLabel(strings.TrimSpace(head)))
		line = strings.TrimSpace(rest)
		if len(line) == 0 {
			return
		}
	}

	mnemonic, rest, _ := strings.Cut(line, " ")
	op, ok := nameOp[strings.ToUpper(mnemonic)]
	if !ok {
		err = ErrMnemonicInvalid
		return
	}

	var operands []Operand
	rest = strings.TrimSpace(rest)
	if len(rest) > 0 {
		for _, field := range strings.Split(rest, ",") {
			field = strings.TrimSpace(field)
			if len(field) == 0 {
				err = ErrOperandCount
				return
			}
			var o Operand
			o, err = asm.operandOf(field)
			if err != nil {
				return
			}
			operands = append(operands, o)
		}
	}

	insts = append(insts, MakeInst(op, operands...))

	return
}

// Parse parses an input stream in the text form into a named Program.
func (asm *Assembler) Parse(name string, input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	prog = &Program{Name: name}

	for scanner.Scan() {
		line = scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v", lineno, line)
		}

		var insts []Instruction
		insts, err = asm.parseLine(line)
		if err != nil {
			prog = nil
			return
		}

		prog.Code = append(prog.Code, insts...)
	}

	// Duplicate label declarations are a parse error, not an
	// execution error.
	_, err = prog.Labels()
	if err != nil {
		prog = nil
		return
	}

	return
}
