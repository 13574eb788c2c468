// Package token defines the lexical tokens of the hocon configuration grammar.
package token

import (
	"fmt"
	"strconv"
)

// TokenType represents the type of a lexical token.
//
//nolint:revive // token.TokenType mirrors the naming used by the parser package
type TokenType uint8

const (
	// Special tokens
	EOF TokenType = iota

	// Literals
	STRING // "text" or 'text'
	NUMBER // -12.5
	TRUE   // true
	FALSE  // false
	NULL   // null

	// Structural
	LBRACE   // {
	RBRACE   // }
	LBRACKET // [
	RBRACKET // ]
	COMMA    // ,
	COLON    // :
	EQUALS   // =
	DOT      // .

	// Reserved words
	INCLUDE // include

	// BAREWORD is an unquoted word that is not a reserved word. The grammar
	// has no production for it; it exists so that unquoted keys are reported
	// by the parser rather than as stray characters.
	BAREWORD
)

var tokenNames = [...]string{
	EOF:      "EOF",
	STRING:   "STRING",
	NUMBER:   "NUMBER",
	TRUE:     "true",
	FALSE:    "false",
	NULL:     "null",
	LBRACE:   "{",
	RBRACE:   "}",
	LBRACKET: "[",
	RBRACKET: "]",
	COMMA:    ",",
	COLON:    ":",
	EQUALS:   "=",
	DOT:      ".",
	INCLUDE:  "include",
	BAREWORD: "BAREWORD",
}

// String returns the string representation of the token type.
func (t TokenType) String() string {
	if int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", t)
}

// IsLiteral reports whether t carries a scalar value.
func (t TokenType) IsLiteral() bool {
	return t >= STRING && t <= NULL
}

// keywords maps reserved words to their token types.
var keywords = map[string]TokenType{
	"true":    TRUE,
	"false":   FALSE,
	"null":    NULL,
	"include": INCLUDE,
}

// LookupKeyword returns the token type of a reserved word.
func LookupKeyword(word string) (TokenType, bool) {
	t, ok := keywords[word]
	return t, ok
}

// Token represents a lexical token.
type Token struct {
	Type    TokenType
	Literal string  // source text; unquoted content for strings
	Number  float64 // parsed value for NUMBER tokens
	Pos     Position
}

// String describes the token for error messages.
func (t Token) String() string {
	switch t.Type {
	case EOF:
		return "end of input"
	case STRING:
		return "string " + strconv.Quote(t.Literal)
	case NUMBER:
		return "number " + t.Literal
	case BAREWORD:
		return "bare word " + strconv.Quote(t.Literal)
	default:
		return strconv.Quote(t.Type.String())
	}
}
