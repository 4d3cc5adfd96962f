package pl0

import (
	"errors"
	"strings"

	"github.com/ezrec/pl0fx/translate"
)

var f = translate.From

var (
	ErrMemoryFull = errors.New(f("temporary addresses collide with variables"))
)

// ErrCharacter indicates an unrecognized character in the source.
type ErrCharacter struct {
	Offset int
	Char   rune
}

func (err ErrCharacter) Error() string {
	return f("offset %d: unrecognized character %q", err.Offset, err.Char)
}

// ErrNumber indicates a malformed numeric literal.
type ErrNumber struct {
	Offset int
	Text   string
}

func (err ErrNumber) Error() string {
	return f("offset %d: malformed number '%v'", err.Offset, err.Text)
}

// ErrUnexpected indicates a token that does not fit the grammar.
type ErrUnexpected struct {
	Token Token
	Want  string
}

func (err ErrUnexpected) Error() string {
	if err.Token.Kind == TOKEN_EOF {
		return f("offset %d: unexpected end of input, want %v", err.Token.Offset, err.Want)
	}
	return f("offset %d: unexpected '%v', want %v", err.Token.Offset, err.Token.Text, err.Want)
}

// ErrDuplicateVar indicates a variable declared twice.
type ErrDuplicateVar string

func (err ErrDuplicateVar) Error() string {
	return f("variable %v already declared", string(err))
}

// ErrUnknownVar indicates a reference to an undeclared variable.
type ErrUnknownVar string

func (err ErrUnknownVar) Error() string {
	return f("variable %v not declared", string(err))
}

// ErrUnknownProgram indicates a call to an unregistered program name.
type ErrUnknownProgram string

func (err ErrUnknownProgram) Error() string {
	return f("program %v not registered", string(err))
}

// ErrIntrinsicUnknown indicates an unsupported call-like form.
type ErrIntrinsicUnknown string

func (err ErrIntrinsicUnknown) Error() string {
	return f("unsupported function %v (supported: %v)",
		string(err), strings.Join(supportedForms(), ", "))
}
