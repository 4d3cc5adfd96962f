package pl0

import (
	"strconv"
	"strings"
)

// TokenKind is the kind of a lexical token.
type TokenKind int

const (
	TOKEN_EOF     = TokenKind(0) // end of input
	TOKEN_NUMBER  = TokenKind(1) // integer literal, unscaled
	TOKEN_FLOAT   = TokenKind(2) // literal with fraction or exponent
	TOKEN_IDENT   = TokenKind(3) // identifier, case preserved
	TOKEN_KEYWORD = TokenKind(4) // reserved word, matched case-insensitively
	TOKEN_SYMBOL  = TokenKind(5) // punctuation, including ':='
)

// Token is a single lexical token. Produced once, immutable, consumed
// left to right by the parser.
type Token struct {
	Kind   TokenKind
	Text   string  // Raw source text.
	Int    int64   // Decoded value for TOKEN_NUMBER.
	Real   float64 // Decoded value for TOKEN_FLOAT.
	Offset int     // Byte offset in the source.
}

// keyword is the reserved word set, lower case.
var keyword = map[string]bool{
	"program": true,
	"var":     true,
	"begin":   true,
	"end":     true,
	"if":      true,
	"then":    true,
	"while":   true,
	"do":      true,
	"call":    true,
	"push":    true,
	"pop":     true,
	"peek":    true,
	"poke":    true,
}

// IsKeyword reports whether the token is the given keyword,
// case-insensitively.
func (tok Token) IsKeyword(name string) bool {
	return tok.Kind == TOKEN_KEYWORD && strings.EqualFold(tok.Text, name)
}

// IsSymbol reports whether the token is the given symbol.
func (tok Token) IsSymbol(text string) bool {
	return tok.Kind == TOKEN_SYMBOL && tok.Text == text
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isAlpha(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

// Lex converts full source text into a token sequence, ending with a
// TOKEN_EOF entry. Line comments start with '#'. Any unrecognized
// character is a fatal error reporting its offset.
func Lex(source string) (tokens []Token, err error) {
	pos := 0

	for pos < len(source) {
		ch := source[pos]

		switch {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			pos += 1
		case ch == '#':
			for pos < len(source) && source[pos] != '\n' {
				pos += 1
			}
		case isDigit(ch):
			var tok Token
			tok, pos, err = lexNumber(source, pos)
			if err != nil {
				return
			}
			tokens = append(tokens, tok)
		case isAlpha(ch):
			start := pos
			for pos < len(source) && (isAlpha(source[pos]) || isDigit(source[pos])) {
				pos += 1
			}
			text := source[start:pos]
			kind := TOKEN_IDENT
			if keyword[strings.ToLower(text)] {
				kind = TOKEN_KEYWORD
			}
			tokens = append(tokens, Token{Kind: kind, Text: text, Offset: start})
		case ch == ':':
			// ':=' is special-cased before single symbols.
			if pos+1 < len(source) && source[pos+1] == '=' {
				tokens = append(tokens, Token{Kind: TOKEN_SYMBOL, Text: ":=", Offset: pos})
				pos += 2
			} else {
				tokens = append(tokens, Token{Kind: TOKEN_SYMBOL, Text: ":", Offset: pos})
				pos += 1
			}
		case strings.IndexByte(";.,()+-*/", ch) >= 0:
			tokens = append(tokens, Token{Kind: TOKEN_SYMBOL, Text: string(ch), Offset: pos})
			pos += 1
		default:
			err = ErrCharacter{Offset: pos, Char: rune(ch)}
			return
		}
	}

	tokens = append(tokens, Token{Kind: TOKEN_EOF, Offset: len(source)})

	return
}

// lexNumber scans an integer or float literal. A literal is a float if
// it has a fractional part ('.' followed by a digit) or an exponent
// ('e'/'E' followed by an optionally signed digit). The single-byte
// peek past 'e' keeps exponents distinct from a trailing identifier.
func lexNumber(source string, start int) (tok Token, pos int, err error) {
	pos = start
	isFloat := false

	for pos < len(source) && isDigit(source[pos]) {
		pos += 1
	}

	if pos+1 < len(source) && source[pos] == '.' && isDigit(source[pos+1]) {
		isFloat = true
		pos += 1
		for pos < len(source) && isDigit(source[pos]) {
			pos += 1
		}
	}

	if pos < len(source) && (source[pos] == 'e' || source[pos] == 'E') {
		mark := pos + 1
		if mark < len(source) && (source[mark] == '+' || source[mark] == '-') {
			mark += 1
		}
		if mark < len(source) && isDigit(source[mark]) {
			isFloat = true
			pos = mark
			for pos < len(source) && isDigit(source[pos]) {
				pos += 1
			}
		}
	}

	text := source[start:pos]
	tok = Token{Text: text, Offset: start}

	if isFloat {
		tok.Kind = TOKEN_FLOAT
		tok.Real, err = strconv.ParseFloat(text, 64)
	} else {
		tok.Kind = TOKEN_NUMBER
		tok.Int, err = strconv.ParseInt(text, 10, 64)
	}
	if err != nil {
		err = ErrNumber{Offset: start, Text: text}
	}

	return
}
