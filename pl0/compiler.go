// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package pl0

import (
	"fmt"
	"log"
	"math"
	"slices"
	"strings"

	"github.com/ezrec/pl0fx/fixed"
	"github.com/ezrec/pl0fx/vm"
)

// intrinsicOp maps the accepted call-like math names to their single
// operand instructions. 'log' is an alias of 'ln'.
var intrinsicOp = map[string]vm.Op{
	"sin":   vm.OP_SIN,
	"cos":   vm.OP_COS,
	"tan":   vm.OP_TAN,
	"tanh":  vm.OP_TANH,
	"sinh":  vm.OP_SINH,
	"cosh":  vm.OP_COSH,
	"ln":    vm.OP_LN,
	"log":   vm.OP_LN,
	"log10": vm.OP_LOG10,
	"exp":   vm.OP_EXP,
	"sqrt":  vm.OP_SQRT,
}

// toFixedForms multiply by the scale; fromFixedForms integer-divide by it.
var toFixedForms = map[string]bool{"fx": true, "tofx": true}
var fromFixedForms = map[string]bool{"int": true, "fromfx": true, "unfx": true}

// constant holds the named constants desugared like float literals.
var constant = map[string]float64{
	"pi":  math.Pi,
	"tau": 2 * math.Pi,
	"e":   math.E,
}

// supportedForms returns the sorted closed set of call-like names, for
// the unknown-intrinsic error message.
func supportedForms() (names []string) {
	for name := range intrinsicOp {
		names = append(names, name)
	}
	for name := range toFixedForms {
		names = append(names, name)
	}
	for name := range fromFixedForms {
		names = append(names, name)
	}
	slices.Sort(names)
	return
}

// Compiler is the recursive-descent parser and code generator. Each
// grammar production returns an AST fragment and an instruction
// fragment; fragments are concatenated bottom-up. Expressions evaluate
// into the accumulator r0, with r1 holding the second operand of a
// binary operation reloaded from a spilled temporary cell.
//
// Variables are addressed ascending from Base; temporaries descend
// from the top of memory, one fresh cell per binary operation node.
// The two ranges meeting is a fatal compile error.
type Compiler struct {
	Verbose  bool         // If set, verbosely logs compiler actions.
	Scale    int64        // Fixed-point scale for literal desugaring.
	Base     int          // First variable address.
	Registry *vm.Registry // Destination for compiled programs.

	tokens   []Token
	pos      int
	name     string
	symbols  map[string]int
	tempAt   int
	labelSeq int
}

// NewCompiler creates a compiler registering into the given registry.
func NewCompiler(reg *vm.Registry) (c *Compiler) {
	return &Compiler{
		Scale:    fixed.DEFAULT_SCALE,
		Registry: reg,
	}
}

// Compile tokenizes and parses one program, emits its instruction
// sequence, and registers the finished program under its declared
// name. The same source with the same base and scale always produces
// an identical sequence. The first error aborts the compilation.
func (c *Compiler) Compile(source string) (prog *vm.Program, tree *ProgramNode, err error) {
	c.tokens, err = Lex(source)
	if err != nil {
		return
	}

	c.pos = 0
	c.name = ""
	c.symbols = make(map[string]int, 8)
	c.tempAt = vm.MEMORY_SIZE - 1
	c.labelSeq = 0

	tree, code, err := c.program()
	if err != nil {
		tree = nil
		return
	}

	// Implicit return.
	code = append(code, vm.MakeInst(vm.OP_RET))

	prog = &vm.Program{Name: tree.Name, Code: code}
	c.Registry.Register(prog)

	if c.Verbose {
		log.Printf("pl0: compiled %v: %v instructions, %v variables",
			prog.Name, len(prog.Code), len(c.symbols))
	}

	return
}

// tok returns the current token.
func (c *Compiler) tok() Token {
	return c.tokens[c.pos]
}

// advance consumes the current token.
func (c *Compiler) advance() {
	if c.pos < len(c.tokens)-1 {
		c.pos += 1
	}
}

// expectSymbol consumes the given symbol or fails.
func (c *Compiler) expectSymbol(text string) (err error) {
	if !c.tok().IsSymbol(text) {
		return ErrUnexpected{Token: c.tok(), Want: fmt.Sprintf("'%v'", text)}
	}
	c.advance()
	return
}

// expectKeyword consumes the given keyword or fails.
func (c *Compiler) expectKeyword(name string) (err error) {
	if !c.tok().IsKeyword(name) {
		return ErrUnexpected{Token: c.tok(), Want: fmt.Sprintf("'%v'", name)}
	}
	c.advance()
	return
}

// expectIdent consumes an identifier or fails.
func (c *Compiler) expectIdent() (name string, err error) {
	if c.tok().Kind != TOKEN_IDENT {
		err = ErrUnexpected{Token: c.tok(), Want: "identifier"}
		return
	}
	name = c.tok().Text
	c.advance()
	return
}

// address resolves a declared variable name to its memory address.
func (c *Compiler) address(name string) (addr int, err error) {
	addr, ok := c.symbols[name]
	if !ok {
		err = ErrUnknownVar(name)
	}
	return
}

// temp allocates a fresh temporary cell from the top of memory,
// descending. Touching the topmost variable address is fatal: silent
// corruption is not an option.
func (c *Compiler) temp() (addr int, err error) {
	if c.tempAt < c.Base+len(c.symbols) {
		err = ErrMemoryFull
		return
	}
	addr = c.tempAt
	c.tempAt -= 1
	return
}

// newLabel allocates a fresh label, unique within the compilation.
func (c *Compiler) newLabel(prefix string) string {
	c.labelSeq += 1
	return fmt.Sprintf("%v_%d", prefix, c.labelSeq)
}

// program := 'program' ident ';' block '.'
func (c *Compiler) program() (tree *ProgramNode, code []vm.Instruction, err error) {
	err = c.expectKeyword("program")
	if err != nil {
		return
	}
	name, err := c.expectIdent()
	if err != nil {
		return
	}
	c.name = name
	err = c.expectSymbol(";")
	if err != nil {
		return
	}

	block, code, err := c.block()
	if err != nil {
		return
	}

	err = c.expectSymbol(".")
	if err != nil {
		return
	}

	tree = &ProgramNode{Name: name, Block: block}

	return
}

// block := varDecl? statement
func (c *Compiler) block() (tree *BlockNode, code []vm.Instruction, err error) {
	tree = &BlockNode{}

	if c.tok().IsKeyword("var") {
		c.advance()
		for {
			var name string
			name, err = c.expectIdent()
			if err != nil {
				return
			}
			_, ok := c.symbols[name]
			if ok {
				err = ErrDuplicateVar(name)
				return
			}
			c.symbols[name] = c.Base + len(c.symbols)
			tree.Vars = append(tree.Vars, name)
			if !c.tok().IsSymbol(",") {
				break
			}
			c.advance()
		}
		err = c.expectSymbol(";")
		if err != nil {
			return
		}
	}

	tree.Body, code, err = c.statement()

	return
}

// statement := assign | call | ifStmt | whileStmt | compound
//            | push | pop | peek | poke | empty
func (c *Compiler) statement() (tree Node, code []vm.Instruction, err error) {
	tok := c.tok()

	switch {
	case tok.Kind == TOKEN_IDENT:
		return c.assign()
	case tok.IsKeyword("call"):
		return c.call()
	case tok.IsKeyword("if"):
		return c.ifStmt()
	case tok.IsKeyword("while"):
		return c.whileStmt()
	case tok.IsKeyword("begin"):
		return c.compound()
	case tok.IsKeyword("push"):
		return c.push()
	case tok.IsKeyword("pop"):
		return c.pop()
	case tok.IsKeyword("peek"):
		return c.peekPoke(true)
	case tok.IsKeyword("poke"):
		return c.peekPoke(false)
	}

	// empty statement
	return
}

// assign := ident ':=' expr ';'
func (c *Compiler) assign() (tree Node, code []vm.Instruction, err error) {
	name, err := c.expectIdent()
	if err != nil {
		return
	}
	addr, err := c.address(name)
	if err != nil {
		return
	}
	err = c.expectSymbol(":=")
	if err != nil {
		return
	}
	expr, code, err := c.expression()
	if err != nil {
		return
	}
	err = c.expectSymbol(";")
	if err != nil {
		return
	}

	code = append(code, vm.MakeInst(vm.OP_STORE, vm.Reg(0), vm.Addr(int64(addr))))
	tree = &AssignNode{Name: name, Expr: expr}

	return
}

// call := 'call' ident ';'
//
// Compiles to a single cross-program invocation; composition happens
// at the machine level, never by inline expansion. The callee must
// already be registered, except for a self-call.
func (c *Compiler) call() (tree Node, code []vm.Instruction, err error) {
	c.advance()
	name, err := c.expectIdent()
	if err != nil {
		return
	}
	if name != c.name {
		_, ok := c.Registry.Lookup(name)
		if !ok {
			err = ErrUnknownProgram(name)
			return
		}
	}
	err = c.expectSymbol(";")
	if err != nil {
		return
	}

	code = append(code, vm.MakeInst(vm.OP_PL0CALL, vm.Label(name)))
	tree = &CallNode{Name: name}

	return
}

// ifStmt := 'if' expr 'then' statement
func (c *Compiler) ifStmt() (tree Node, code []vm.Instruction, err error) {
	c.advance()
	cond, code, err := c.expression()
	if err != nil {
		return
	}
	err = c.expectKeyword("then")
	if err != nil {
		return
	}
	body, bodyCode, err := c.statement()
	if err != nil {
		return
	}

	// Branch-if-zero lands one instruction past the body.
	end := c.newLabel("endif")
	code = append(code, vm.MakeInst(vm.OP_JZ, vm.Reg(0), vm.Label(end)))
	code = append(code, bodyCode...)
	code = append(code, vm.MakeLabel(end))

	tree = &IfNode{Cond: cond, Body: body}

	return
}

// whileStmt := 'while' expr 'do' statement
func (c *Compiler) whileStmt() (tree Node, code []vm.Instruction, err error) {
	c.advance()

	start := c.newLabel("loop")
	end := c.newLabel("endloop")

	code = append(code, vm.MakeLabel(start))
	cond, condCode, err := c.expression()
	if err != nil {
		return
	}
	code = append(code, condCode...)
	err = c.expectKeyword("do")
	if err != nil {
		return
	}
	body, bodyCode, err := c.statement()
	if err != nil {
		return
	}

	code = append(code, vm.MakeInst(vm.OP_JZ, vm.Reg(0), vm.Label(end)))
	code = append(code, bodyCode...)
	code = append(code, vm.MakeInst(vm.OP_JMP, vm.Label(start)))
	code = append(code, vm.MakeLabel(end))

	tree = &WhileNode{Cond: cond, Body: body}

	return
}

// compound := 'begin' statement* 'end'
//
// The statement forms carry their own ';' terminator; stray separators
// between statements are skipped.
func (c *Compiler) compound() (tree Node, code []vm.Instruction, err error) {
	c.advance()

	node := &CompoundNode{}
	for {
		var stmt Node
		var stmtCode []vm.Instruction
		stmt, stmtCode, err = c.statement()
		if err != nil {
			return
		}
		if stmt != nil {
			node.Stmts = append(node.Stmts, stmt)
			code = append(code, stmtCode...)
		}
		if c.tok().IsSymbol(";") {
			c.advance()
			continue
		}
		if stmt == nil {
			break
		}
	}

	err = c.expectKeyword("end")
	if err != nil {
		return
	}

	tree = node

	return
}

// push := 'push' ident ';'
func (c *Compiler) push() (tree Node, code []vm.Instruction, err error) {
	c.advance()
	name, err := c.expectIdent()
	if err != nil {
		return
	}
	addr, err := c.address(name)
	if err != nil {
		return
	}
	err = c.expectSymbol(";")
	if err != nil {
		return
	}

	code = append(code,
		vm.MakeInst(vm.OP_LOAD, vm.Reg(0), vm.Addr(int64(addr))),
		vm.MakeInst(vm.OP_PUSH, vm.Reg(0)),
	)
	tree = &PushNode{Name: name}

	return
}

// pop := 'pop' ident ';'
func (c *Compiler) pop() (tree Node, code []vm.Instruction, err error) {
	c.advance()
	name, err := c.expectIdent()
	if err != nil {
		return
	}
	addr, err := c.address(name)
	if err != nil {
		return
	}
	err = c.expectSymbol(";")
	if err != nil {
		return
	}

	code = append(code,
		vm.MakeInst(vm.OP_POP, vm.Reg(0)),
		vm.MakeInst(vm.OP_STORE, vm.Reg(0), vm.Addr(int64(addr))),
	)
	tree = &PopNode{Name: name}

	return
}

// peek := 'peek' '(' ident ',' ident ')' ';'  -- a := memory[b]
// poke := 'poke' '(' ident ',' ident ')' ';'  -- memory[a] := b
func (c *Compiler) peekPoke(isPeek bool) (tree Node, code []vm.Instruction, err error) {
	c.advance()
	err = c.expectSymbol("(")
	if err != nil {
		return
	}
	first, err := c.expectIdent()
	if err != nil {
		return
	}
	firstAddr, err := c.address(first)
	if err != nil {
		return
	}
	err = c.expectSymbol(",")
	if err != nil {
		return
	}
	second, err := c.expectIdent()
	if err != nil {
		return
	}
	secondAddr, err := c.address(second)
	if err != nil {
		return
	}
	err = c.expectSymbol(")")
	if err != nil {
		return
	}
	err = c.expectSymbol(";")
	if err != nil {
		return
	}

	if isPeek {
		code = append(code,
			vm.MakeInst(vm.OP_LOAD, vm.Reg(1), vm.Addr(int64(secondAddr))),
			vm.MakeInst(vm.OP_PEEK, vm.Reg(0), vm.Ind(1)),
			vm.MakeInst(vm.OP_STORE, vm.Reg(0), vm.Addr(int64(firstAddr))),
		)
		tree = &PeekNode{Dst: first, Src: second}
	} else {
		code = append(code,
			vm.MakeInst(vm.OP_LOAD, vm.Reg(1), vm.Addr(int64(firstAddr))),
			vm.MakeInst(vm.OP_LOAD, vm.Reg(0), vm.Addr(int64(secondAddr))),
			vm.MakeInst(vm.OP_POKE, vm.Reg(0), vm.Ind(1)),
		)
		tree = &PokeNode{Dst: first, Src: second}
	}

	return
}

// expression := term (('+'|'-') term)*
func (c *Compiler) expression() (tree Node, code []vm.Instruction, err error) {
	tree, code, err = c.term()
	if err != nil {
		return
	}

	for c.tok().IsSymbol("+") || c.tok().IsSymbol("-") {
		op := c.tok().Text[0]
		c.advance()

		var right Node
		var rightCode []vm.Instruction
		right, rightCode, err = c.term()
		if err != nil {
			return
		}

		code, err = c.binary(op, code, rightCode)
		if err != nil {
			return
		}
		tree = &BinaryNode{Op: op, Left: tree, Right: right}
	}

	return
}

// term := factor (('*'|'/') factor)*
func (c *Compiler) term() (tree Node, code []vm.Instruction, err error) {
	tree, code, err = c.factor()
	if err != nil {
		return
	}

	for c.tok().IsSymbol("*") || c.tok().IsSymbol("/") {
		op := c.tok().Text[0]
		c.advance()

		var right Node
		var rightCode []vm.Instruction
		right, rightCode, err = c.factor()
		if err != nil {
			return
		}

		code, err = c.binary(op, code, rightCode)
		if err != nil {
			return
		}
		tree = &BinaryNode{Op: op, Left: tree, Right: right}
	}

	return
}

// binary stitches the operand fragments of one binary operation under
// the single-accumulator discipline: the left value is spilled to a
// fresh temporary, the right value is evaluated into r0, and the left
// value reloads into r1.
//
// Addition and multiplication are commutative and compute directly.
// Subtraction and division compute left-op-right in r1 (the reversed
// register order), then correct through the temp cell so the result
// lands in the accumulator.
func (c *Compiler) binary(op byte, left, right []vm.Instruction) (code []vm.Instruction, err error) {
	t, err := c.temp()
	if err != nil {
		return
	}
	addr := vm.Addr(int64(t))

	code = left
	code = append(code, vm.MakeInst(vm.OP_STORE, vm.Reg(0), addr))
	code = append(code, right...)
	code = append(code, vm.MakeInst(vm.OP_LOAD, vm.Reg(1), addr))

	switch op {
	case '+':
		code = append(code, vm.MakeInst(vm.OP_ADD, vm.Reg(0), vm.Reg(1)))
	case '*':
		code = append(code, vm.MakeInst(vm.OP_MUL, vm.Reg(0), vm.Reg(1)))
	case '-':
		code = append(code,
			vm.MakeInst(vm.OP_SUB, vm.Reg(1), vm.Reg(0)),
			vm.MakeInst(vm.OP_STORE, vm.Reg(1), addr),
			vm.MakeInst(vm.OP_LOAD, vm.Reg(0), addr),
		)
	case '/':
		code = append(code,
			vm.MakeInst(vm.OP_DIV, vm.Reg(1), vm.Reg(0)),
			vm.MakeInst(vm.OP_STORE, vm.Reg(1), addr),
			vm.MakeInst(vm.OP_LOAD, vm.Reg(0), addr),
		)
	}

	return
}

// factor := number | float | ident ['(' expr ')'] | '(' expr ')'
func (c *Compiler) factor() (tree Node, code []vm.Instruction, err error) {
	tok := c.tok()

	switch {
	case tok.Kind == TOKEN_NUMBER:
		c.advance()
		code = append(code, vm.MakeInst(vm.OP_LOAD, vm.Reg(0), vm.Imm(tok.Int)))
		tree = &NumberNode{Value: tok.Int}
	case tok.Kind == TOKEN_FLOAT:
		c.advance()
		encoded := fixed.Encode(tok.Real, c.Scale)
		code = append(code, vm.MakeInst(vm.OP_LOAD, vm.Reg(0), vm.Imm(encoded)))
		tree = &FloatNode{Value: tok.Real, Encoded: encoded}
	case tok.IsSymbol("("):
		c.advance()
		tree, code, err = c.expression()
		if err != nil {
			return
		}
		err = c.expectSymbol(")")
	case tok.Kind == TOKEN_IDENT:
		c.advance()
		if c.tok().IsSymbol("(") {
			return c.callLike(tok.Text)
		}

		addr, ok := c.symbols[tok.Text]
		if ok {
			code = append(code, vm.MakeInst(vm.OP_LOAD, vm.Reg(0), vm.Addr(int64(addr))))
			tree = &VarNode{Name: tok.Text}
			return
		}

		value, ok := constant[strings.ToLower(tok.Text)]
		if ok {
			encoded := fixed.Encode(value, c.Scale)
			code = append(code, vm.MakeInst(vm.OP_LOAD, vm.Reg(0), vm.Imm(encoded)))
			tree = &ConstantNode{Name: tok.Text, Encoded: encoded}
			return
		}

		err = ErrUnknownVar(tok.Text)
	default:
		err = ErrUnexpected{Token: tok, Want: "number, identifier or '('"}
	}

	return
}

// callLike compiles the closed set of call-like forms: fixed-point
// conversions desugar to inline multiply/divide by the scale, the
// math intrinsics desugar to their single-operand instructions.
func (c *Compiler) callLike(name string) (tree Node, code []vm.Instruction, err error) {
	lower := strings.ToLower(name)

	op, isIntrinsic := intrinsicOp[lower]
	if !isIntrinsic && !toFixedForms[lower] && !fromFixedForms[lower] {
		err = ErrIntrinsicUnknown(name)
		return
	}

	err = c.expectSymbol("(")
	if err != nil {
		return
	}
	arg, code, err := c.expression()
	if err != nil {
		return
	}
	err = c.expectSymbol(")")
	if err != nil {
		return
	}

	switch {
	case isIntrinsic:
		code = append(code, vm.MakeInst(op, vm.Reg(0)))
		tree = &IntrinsicNode{Name: name, Op: op, Arg: arg}
	case toFixedForms[lower]:
		code = append(code,
			vm.MakeInst(vm.OP_LOAD, vm.Reg(1), vm.Imm(c.Scale)),
			vm.MakeInst(vm.OP_MUL, vm.Reg(0), vm.Reg(1)),
		)
		tree = &ConvertNode{ToFixed: true, Arg: arg}
	default:
		code = append(code,
			vm.MakeInst(vm.OP_LOAD, vm.Reg(1), vm.Imm(c.Scale)),
			vm.MakeInst(vm.OP_DIV, vm.Reg(0), vm.Reg(1)),
		)
		tree = &ConvertNode{ToFixed: false, Arg: arg}
	}

	return
}
