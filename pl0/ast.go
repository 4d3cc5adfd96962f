package pl0

import (
	"github.com/ezrec/pl0fx/vm"
)

// Node is an abstract syntax tree node. The tree records source
// structure; the authoritative compiled artifact is the emitted
// instruction sequence, which is never re-derived from the tree.
type Node interface {
	node()
}

// ProgramNode is the root: 'program' ident ';' block '.'
type ProgramNode struct {
	Name  string
	Block *BlockNode
}

// BlockNode is an optional variable declaration plus one statement.
type BlockNode struct {
	Vars []string
	Body Node // nil for an empty statement
}

// AssignNode is ident ':=' expr ';'
type AssignNode struct {
	Name string
	Expr Node
}

// CallNode is 'call' ident ';' — a cross-program invocation.
type CallNode struct {
	Name string
}

// IfNode is 'if' expr 'then' statement.
type IfNode struct {
	Cond Node
	Body Node
}

// WhileNode is 'while' expr 'do' statement.
type WhileNode struct {
	Cond Node
	Body Node
}

// CompoundNode is 'begin' statement (';' statement)* 'end'.
type CompoundNode struct {
	Stmts []Node
}

// PushNode is 'push' ident ';'
type PushNode struct {
	Name string
}

// PopNode is 'pop' ident ';'
type PopNode struct {
	Name string
}

// PeekNode is 'peek' '(' dst ',' src ')' ';' — dst := memory[src].
type PeekNode struct {
	Dst string
	Src string
}

// PokeNode is 'poke' '(' dst ',' src ')' ';' — memory[dst] := src.
type PokeNode struct {
	Dst string
	Src string
}

// BinaryNode is a '+', '-', '*' or '/' expression.
type BinaryNode struct {
	Op    byte
	Left  Node
	Right Node
}

// IntrinsicNode is a unary math call-like form, e.g. sin(x).
type IntrinsicNode struct {
	Name string
	Op   vm.Op
	Arg  Node
}

// ConvertNode is a fixed-point conversion form: fx/tofx scale up,
// int/fromfx/unfx scale down.
type ConvertNode struct {
	ToFixed bool
	Arg     Node
}

// NumberNode is an integer literal, unscaled.
type NumberNode struct {
	Value int64
}

// FloatNode is a float literal, desugared at compile time into its
// scaled integer encoding.
type FloatNode struct {
	Value   float64
	Encoded int64
}

// ConstantNode is a named constant (pi, tau, e), desugared like a
// float literal.
type ConstantNode struct {
	Name    string
	Encoded int64
}

// VarNode is a variable reference.
type VarNode struct {
	Name string
}

func (*ProgramNode) node()   {}
func (*BlockNode) node()     {}
func (*AssignNode) node()    {}
func (*CallNode) node()      {}
func (*IfNode) node()        {}
func (*WhileNode) node()     {}
func (*CompoundNode) node()  {}
func (*PushNode) node()      {}
func (*PopNode) node()       {}
func (*PeekNode) node()      {}
func (*PokeNode) node()      {}
func (*BinaryNode) node()    {}
func (*IntrinsicNode) node() {}
func (*ConvertNode) node()   {}
func (*NumberNode) node()    {}
func (*FloatNode) node()     {}
func (*ConstantNode) node()  {}
func (*VarNode) node()       {}
