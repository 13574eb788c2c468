package parser

import (
	"fmt"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/leapstack-labs/fmto/pkg/token"
)

// eof marks the end of input. It is not a valid rune so a NUL byte in the
// input is still reported as an invalid character.
const eof rune = -1

// Lexer tokenizes hocon input. It keeps only a cursor into the input and
// produces one token per NextToken call.
type Lexer struct {
	input   string
	pos     int  // offset of ch
	readPos int  // offset after ch
	ch      rune // current char under examination
	line    int  // line of ch (1-based)
	col     int  // column of ch (1-based)
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
		col:   0,
	}
	l.readChar()
	return l
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	switch l.ch {
	case eof:
		return
	case '\n':
		l.line++
		l.col = 1
	default:
		l.col++
	}

	l.pos = l.readPos
	if l.readPos >= len(l.input) {
		l.ch = eof
		return
	}
	r, w := utf8.DecodeRuneInString(l.input[l.readPos:])
	l.ch = r
	l.readPos += w
}

// currentPos returns the position of the current character.
func (l *Lexer) currentPos() Position {
	return Position{
		Line:   l.line,
		Column: l.col,
		Offset: l.pos,
	}
}

// NextToken returns the next token, or a *LexError when the input at the
// cursor is not a valid token. Lexing does not recover from errors.
func (l *Lexer) NextToken() (token.Token, error) {
	l.skipWhitespaceAndComments()

	pos := l.currentPos()

	switch l.ch {
	case eof:
		return token.Token{Type: token.EOF, Pos: pos}, nil
	case '{':
		return l.single(token.LBRACE, pos), nil
	case '}':
		return l.single(token.RBRACE, pos), nil
	case '[':
		return l.single(token.LBRACKET, pos), nil
	case ']':
		return l.single(token.RBRACKET, pos), nil
	case ',':
		return l.single(token.COMMA, pos), nil
	case ':':
		return l.single(token.COLON, pos), nil
	case '=':
		return l.single(token.EQUALS, pos), nil
	case '.':
		return l.single(token.DOT, pos), nil
	case '"', '\'':
		return l.readString(pos)
	}

	switch {
	case l.ch == '-' || isDigit(l.ch):
		return l.readNumber(pos)
	case l.ch == 't' || l.ch == 'f' || l.ch == 'n' || l.ch == 'i':
		return l.readWord(pos)
	case unicode.IsLetter(l.ch) || l.ch == '_':
		return l.readBareWord(pos), nil
	}

	return token.Token{}, &LexError{Pos: pos, Message: fmt.Sprintf(ErrInvalidCharacter, l.ch)}
}

// single emits a one-character structural token and advances past it.
func (l *Lexer) single(t token.TokenType, pos Position) token.Token {
	tok := token.Token{Type: t, Literal: string(l.ch), Pos: pos}
	l.readChar()
	return tok
}

// skipWhitespaceAndComments skips whitespace and '#' comments.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for l.ch != eof && unicode.IsSpace(l.ch) {
			l.readChar()
		}

		if l.ch == '#' {
			for l.ch != '\n' && l.ch != eof {
				l.readChar()
			}
			continue
		}

		break
	}
}

// readString reads a string delimited by the current quote character.
// Content is copied verbatim; there are no escape sequences.
func (l *Lexer) readString(pos Position) (token.Token, error) {
	quote := l.ch
	l.readChar() // skip opening quote

	start := l.pos
	for l.ch != quote {
		if l.ch == eof {
			return token.Token{}, &LexError{Pos: pos, Message: ErrUnterminatedString}
		}
		l.readChar()
	}
	content := l.input[start:l.pos]
	l.readChar() // skip closing quote

	return token.Token{Type: token.STRING, Literal: content, Pos: pos}, nil
}

// readNumber reads a run of digits and dots, with an optional leading minus.
func (l *Lexer) readNumber(pos Position) (token.Token, error) {
	start := l.pos
	l.readChar() // '-' or first digit

	for isDigit(l.ch) || l.ch == '.' {
		l.readChar()
	}

	literal := l.input[start:l.pos]
	n, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		// Out-of-range runs are rejected too, keeping numbers finite.
		return token.Token{}, &LexError{Pos: pos, Message: fmt.Sprintf(ErrInvalidNumber, literal)}
	}
	return token.Token{Type: token.NUMBER, Literal: literal, Number: n, Pos: pos}, nil
}

// readWord reads a run of letters and matches it against the reserved words.
func (l *Lexer) readWord(pos Position) (token.Token, error) {
	start := l.pos
	first := l.ch
	for l.ch != eof && unicode.IsLetter(l.ch) {
		l.readChar()
	}

	word := l.input[start:l.pos]
	if t, ok := token.LookupKeyword(word); ok {
		return token.Token{Type: t, Literal: word, Pos: pos}, nil
	}

	var msg string
	switch first {
	case 't', 'f':
		msg = ErrInvalidBoolean
	case 'n':
		msg = ErrInvalidNull
	default:
		msg = ErrInvalidKeyword
	}
	return token.Token{}, &LexError{Pos: pos, Message: fmt.Sprintf(msg, word)}
}

// readBareWord reads an unquoted word such as a bare object key.
func (l *Lexer) readBareWord(pos Position) token.Token {
	start := l.pos
	for l.ch != eof && (unicode.IsLetter(l.ch) || isDigit(l.ch) || l.ch == '_' || l.ch == '-') {
		l.readChar()
	}
	return token.Token{Type: token.BAREWORD, Literal: l.input[start:l.pos], Pos: pos}
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}
