// Package pl0 implements the compiler front end for the PL/0 dialect:
// a lexer and a recursive-descent parser that simultaneously builds an
// abstract syntax tree and emits the machine instruction sequence.
//
// The grammar, informally:
//
//	program    := 'program' ident ';' block '.'
//	block      := varDecl? statement
//	varDecl    := 'var' ident (',' ident)* ';'
//	statement  := assign | call | ifStmt | whileStmt | compound
//	            | push | pop | peek | poke | empty
//	assign     := ident ':=' expr ';'
//	call       := 'call' ident ';'
//	ifStmt     := 'if' expr 'then' statement
//	whileStmt  := 'while' expr 'do' statement
//	compound   := 'begin' statement* 'end'
//	push       := 'push' ident ';'     pop := 'pop' ident ';'
//	peek       := 'peek' '(' ident ',' ident ')' ';'
//	poke       := 'poke' '(' ident ',' ident ')' ';'
//	expr       := term (('+'|'-') term)*
//	term       := factor (('*'|'/') factor)*
//	factor     := number | float | ident ['(' expr ')'] | '(' expr ')'
//
// Float literals and the constants pi, tau and e are desugared at
// compile time into their scaled fixed-point encoding; integer
// literals stay unscaled. The call-like forms fx/tofx and
// int/fromfx/unfx desugar to inline scale multiplies and divides, and
// the closed set of math intrinsics desugars to single-operand math
// instructions.
package pl0
