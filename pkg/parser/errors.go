package parser

import (
	"fmt"

	"github.com/leapstack-labs/fmto/pkg/token"
)

// Position is re-exported so callers need not import the token package.
type Position = token.Position

// LexError represents a lexical analysis error.
type LexError struct {
	Pos     Position
	Message string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lexer error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// ParseError represents a parsing error with position information.
type ParseError struct {
	Pos     Position
	Message string
	Err     error // underlying lexer error, if any
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("parse error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// SemanticError reports a lexically and syntactically valid input whose
// meaning is not a configuration document.
type SemanticError struct {
	Message string
}

func (e *SemanticError) Error() string {
	return fmt.Sprintf("semantic error: %s", e.Message)
}

// Common error messages
const (
	ErrInvalidCharacter   = "invalid character %q"
	ErrUnterminatedString = "unterminated string"
	ErrInvalidNumber      = "invalid number %q"
	ErrInvalidBoolean     = "invalid boolean %q"
	ErrInvalidNull        = "invalid null %q"
	ErrInvalidKeyword     = "invalid keyword %q"

	ErrInvalidValue       = "invalid value: unexpected %s"
	ErrUnexpectedEOF      = "unexpected end of input, expected %s"
	ErrKeyMustBeString    = "object key must be string, got %s"
	ErrExpectedSeparator  = "expected ':' or '=' after key %q, got %s"
	ErrParseIncomplete    = "parse incomplete: unexpected %s after document"
	ErrTrailingContent    = "parse incomplete: invalid trailing content"
	ErrRootMustBeObject   = "root must be an object, got %s"
	ErrIncludeUnsupported = "include is reserved and not supported"
)
