package pl0

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLex(t *testing.T) {
	assert := assert.New(t)

	tokens, err := Lex("program demo;\nvar x;\nbegin x := 42; end.")
	assert.NoError(err)

	kinds := make([]TokenKind, len(tokens))
	for n, tok := range tokens {
		kinds[n] = tok.Kind
	}
	assert.Equal([]TokenKind{
		TOKEN_KEYWORD, TOKEN_IDENT, TOKEN_SYMBOL,
		TOKEN_KEYWORD, TOKEN_IDENT, TOKEN_SYMBOL,
		TOKEN_KEYWORD, TOKEN_IDENT, TOKEN_SYMBOL, TOKEN_NUMBER, TOKEN_SYMBOL,
		TOKEN_KEYWORD, TOKEN_SYMBOL,
		TOKEN_EOF,
	}, kinds)

	assert.Equal(int64(42), tokens[9].Int)
	assert.True(tokens[0].IsKeyword("program"))
	assert.True(tokens[8].IsSymbol(":="))
}

func TestLexNumbers(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name  string
		text  string
		kind  TokenKind
		value float64
	}){
		{"integer", "42", TOKEN_NUMBER, 42},
		{"zero", "0", TOKEN_NUMBER, 0},
		{"fraction", "3.14", TOKEN_FLOAT, 3.14},
		{"exponent", "1e3", TOKEN_FLOAT, 1000},
		{"signed_exponent", "25e-2", TOKEN_FLOAT, 0.25},
		{"upper_exponent", "2E2", TOKEN_FLOAT, 200},
	}

	for _, entry := range table {
		tokens, err := Lex(entry.text)
		assert.NoError(err, entry.name)
		assert.Equal(2, len(tokens), entry.name)
		assert.Equal(entry.kind, tokens[0].Kind, entry.name)
		if entry.kind == TOKEN_FLOAT {
			assert.Equal(entry.value, tokens[0].Real, entry.name)
		} else {
			assert.Equal(int64(entry.value), tokens[0].Int, entry.name)
		}
	}
}

func TestLexNumberBoundaries(t *testing.T) {
	assert := assert.New(t)

	// '1.' without a following digit is a number then a '.' symbol.
	tokens, err := Lex("1.")
	assert.NoError(err)
	assert.Equal(TOKEN_NUMBER, tokens[0].Kind)
	assert.True(tokens[1].IsSymbol("."))

	// '2e' without a digit after the 'e' is a number then an identifier.
	tokens, err = Lex("2e")
	assert.NoError(err)
	assert.Equal(TOKEN_NUMBER, tokens[0].Kind)
	assert.Equal(TOKEN_IDENT, tokens[1].Kind)
	assert.Equal("e", tokens[1].Text)
}

func TestLexComments(t *testing.T) {
	assert := assert.New(t)

	tokens, err := Lex("x # the rest is ignored := ;\ny")
	assert.NoError(err)
	assert.Equal(3, len(tokens))
	assert.Equal("x", tokens[0].Text)
	assert.Equal("y", tokens[1].Text)
}

func TestLexKeywordCase(t *testing.T) {
	assert := assert.New(t)

	tokens, err := Lex("PROGRAM While BeGiN")
	assert.NoError(err)
	assert.True(tokens[0].IsKeyword("program"))
	assert.True(tokens[1].IsKeyword("while"))
	assert.True(tokens[2].IsKeyword("begin"))
	// Raw text is preserved.
	assert.Equal("PROGRAM", tokens[0].Text)
}

func TestLexBadCharacter(t *testing.T) {
	assert := assert.New(t)

	_, err := Lex("x := @;")
	assert.ErrorIs(err, ErrCharacter{Offset: 5, Char: '@'})
}

func TestLexOffsets(t *testing.T) {
	assert := assert.New(t)

	tokens, err := Lex("ab 12")
	assert.NoError(err)
	assert.Equal(0, tokens[0].Offset)
	assert.Equal(3, tokens[1].Offset)
	assert.Equal(5, tokens[2].Offset)
}
