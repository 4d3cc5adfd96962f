// Package vm implements the stack-oriented virtual machine and its
// instruction model.
//
// A machine executes one compiled instruction sequence at a time
// against four general purpose registers, 256 integer memory cells, a
// bounded data stack, and a bounded call stack. Cross-program calls
// (PL0CALL) push a full context frame and switch the active sequence,
// rebuilding the per-program label table; intra-program calls push a
// bare return index.
//
// Arithmetic (ADD/SUB/MUL/DIV) and the ten unary math instructions can
// be satisfied either by the exact deterministic path (ExactBinary,
// MathExact) or by an attached computation provider that blends a
// learned prediction with the exact value under a safety fallback.
// Control flow and memory stay strictly deterministic either way.
//
// The package also provides the instruction text form: Assembler.Parse
// reads one instruction per line, and Program.Text renders it back.
package vm
