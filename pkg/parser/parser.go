// Package parser provides lexing and parsing for the hocon configuration grammar.
//
// # Usage
//
//	doc, err := parser.Parse(`{"server": {"port" = 8080}}`)
//	if err != nil {
//	    // *LexError, *ParseError or *SemanticError
//	}
//
// # Grammar Overview
//
// The parser implements a recursive descent parser with one token of
// lookahead:
//
//	document → object
//	object   → '{' ( member [','] )* '}'
//	member   → STRING (':' | '=') value
//	array    → '[' ( value [','] )* ']'
//	value    → STRING | NUMBER | true | false | null | object | array
//
// Commas are never required between members or elements. Object keys must be
// quoted. The word include is reserved but has no production.
package parser

import (
	"fmt"

	"github.com/leapstack-labs/fmto/pkg/token"
	"github.com/leapstack-labs/fmto/pkg/value"
)

// Parser holds the lexer and the single lookahead token.
type Parser struct {
	lexer *Lexer
	token token.Token // current token
	depth int         // open objects and arrays
}

// NewParser creates a parser and reads the first token.
func NewParser(input string) (*Parser, error) {
	p := &Parser{lexer: NewLexer(input)}
	if err := p.nextToken(); err != nil {
		return nil, err
	}
	return p, nil
}

// Parse parses a complete document. The root must be an object.
func Parse(input string) (*value.Object, error) {
	p, err := NewParser(input)
	if err != nil {
		return nil, err
	}

	root, err := p.ParseDocument()
	if err != nil {
		return nil, err
	}

	obj, ok := root.AsObject()
	if !ok {
		return nil, &SemanticError{Message: fmt.Sprintf(ErrRootMustBeObject, root.Kind())}
	}
	return obj, nil
}

// ParseDocument parses one value and requires the input to end after it.
// Any value kind is accepted here; Parse enforces the object root.
func (p *Parser) ParseDocument() (value.Value, error) {
	v, err := p.parseValue()
	if err != nil {
		return value.Value{}, err
	}
	if !p.check(token.EOF) {
		return value.Value{}, p.errorf(ErrParseIncomplete, p.token)
	}
	return v, nil
}

// ---------- Token Helpers ----------

// nextToken advances to the next token.
func (p *Parser) nextToken() error {
	tok, err := p.lexer.NextToken()
	if err != nil {
		return err
	}
	p.token = tok
	return nil
}

// closeToken consumes a closing bracket. When it closes the root value, a
// lexer failure on the following input is reported as trailing content.
func (p *Parser) closeToken() error {
	p.depth--
	pos := p.token.Pos
	err := p.nextToken()
	if err != nil && p.depth == 0 {
		return &ParseError{Pos: pos, Message: ErrTrailingContent, Err: err}
	}
	return err
}

// check returns true if the current token is of the given type.
func (p *Parser) check(t token.TokenType) bool {
	return p.token.Type == t
}

// match consumes the current token if it matches and returns true.
func (p *Parser) match(t token.TokenType) (bool, error) {
	if !p.check(t) {
		return false, nil
	}
	return true, p.nextToken()
}

// errorf builds a parse error at the current token.
func (p *Parser) errorf(format string, args ...any) error {
	return &ParseError{
		Pos:     p.token.Pos,
		Message: fmt.Sprintf(format, args...),
	}
}

// ---------- Productions ----------

// parseValue dispatches on the current token.
func (p *Parser) parseValue() (value.Value, error) {
	tok := p.token

	var v value.Value
	switch tok.Type {
	case token.STRING:
		v = value.String(tok.Literal)
	case token.NUMBER:
		v = value.Number(tok.Number)
	case token.TRUE:
		v = value.Bool(true)
	case token.FALSE:
		v = value.Bool(false)
	case token.NULL:
		v = value.Null()
	case token.LBRACE:
		return p.parseObject()
	case token.LBRACKET:
		return p.parseArray()
	case token.INCLUDE:
		return value.Value{}, p.errorf(ErrIncludeUnsupported)
	case token.EOF:
		return value.Value{}, p.errorf(ErrUnexpectedEOF, "a value")
	default:
		return value.Value{}, p.errorf(ErrInvalidValue, tok)
	}

	if err := p.nextToken(); err != nil {
		return value.Value{}, err
	}
	return v, nil
}

// parseObject parses '{' ( member [','] )* '}'.
func (p *Parser) parseObject() (value.Value, error) {
	p.depth++
	if err := p.nextToken(); err != nil { // skip '{'
		return value.Value{}, err
	}

	obj := value.NewObject()
	for !p.check(token.RBRACE) {
		if p.check(token.EOF) {
			return value.Value{}, p.errorf(ErrUnexpectedEOF, "'}'")
		}
		if !p.check(token.STRING) {
			return value.Value{}, p.errorf(ErrKeyMustBeString, p.token)
		}
		key := p.token.Literal
		if err := p.nextToken(); err != nil {
			return value.Value{}, err
		}

		if !p.check(token.COLON) && !p.check(token.EQUALS) {
			return value.Value{}, p.errorf(ErrExpectedSeparator, key, p.token)
		}
		if err := p.nextToken(); err != nil {
			return value.Value{}, err
		}

		v, err := p.parseValue()
		if err != nil {
			return value.Value{}, err
		}
		obj.Set(key, v)

		if _, err := p.match(token.COMMA); err != nil {
			return value.Value{}, err
		}
	}

	if err := p.closeToken(); err != nil { // skip '}'
		return value.Value{}, err
	}
	return value.FromObject(obj), nil
}

// parseArray parses '[' ( value [','] )* ']'.
func (p *Parser) parseArray() (value.Value, error) {
	p.depth++
	if err := p.nextToken(); err != nil { // skip '['
		return value.Value{}, err
	}

	items := []value.Value{}
	for !p.check(token.RBRACKET) {
		if p.check(token.EOF) {
			return value.Value{}, p.errorf(ErrUnexpectedEOF, "']'")
		}
		v, err := p.parseValue()
		if err != nil {
			return value.Value{}, err
		}
		items = append(items, v)

		if _, err := p.match(token.COMMA); err != nil {
			return value.Value{}, err
		}
	}

	if err := p.closeToken(); err != nil { // skip ']'
		return value.Value{}, err
	}
	return value.Array(items...), nil
}
