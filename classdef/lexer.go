package classdef

import (
	"strings"

	"github.com/chazu/objectscript/syntax"
)

// ---------------------------------------------------------------------------
// Lexer: tokenizer for class-definition declarations
// ---------------------------------------------------------------------------

// Lexer tokenizes the declarative parts of a class definition. Member
// bodies are never lexed; the parser skips over them with Seek.
type Lexer struct {
	input string
	pos   int
	doc   []string
}

// NewLexer creates a lexer for input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// Seek moves the cursor to offset pos and drops pending documentation.
func (l *Lexer) Seek(pos int) {
	l.pos = pos
	l.doc = nil
}

// NextToken returns the next token.
func (l *Lexer) NextToken() Token {
	l.skipWhitespaceAndComments()
	start := l.pos
	doc := l.doc
	l.doc = nil
	tok := func(t TokenType, end int) Token {
		l.pos = end
		return Token{Type: t, Literal: l.input[start:end], Span: syntax.Span{Start: start, End: end}, Doc: doc}
	}
	if start >= len(l.input) {
		return Token{Type: TokenEOF, Span: syntax.Span{Start: start, End: start}, Doc: doc}
	}
	switch c := l.input[start]; {
	case c == '(':
		return tok(TokenLParen, start+1)
	case c == ')':
		return tok(TokenRParen, start+1)
	case c == '[':
		return tok(TokenLBracket, start+1)
	case c == ']':
		return tok(TokenRBracket, start+1)
	case c == '{':
		return tok(TokenLBrace, start+1)
	case c == '}':
		return tok(TokenRBrace, start+1)
	case c == ',':
		return tok(TokenComma, start+1)
	case c == ';':
		return tok(TokenSemicolon, start+1)
	case c == '=':
		return tok(TokenEquals, start+1)
	case c == '-':
		return tok(TokenMinus, start+1)
	case strings.HasPrefix(l.input[start:], "..."):
		return tok(TokenEllipsis, start+3)
	case c == '"':
		end, ok := scanQuoted(l.input[:lineEnd(l.input, start)], start)
		if !ok {
			return tok(TokenError, lineEnd(l.input, start))
		}
		return tok(TokenString, end)
	case isDigit(c) && l.numberAhead(start):
		return tok(TokenNumber, l.scanNumber(start))
	case c == '%' || isAlnum(c):
		return tok(TokenIdent, l.scanIdent(start))
	}
	return tok(TokenError, start+1)
}

// skipWhitespaceAndComments skips blanks, // and /* */ comments, and
// collects /// documentation lines.
func (l *Lexer) skipWhitespaceAndComments() {
	for l.pos < len(l.input) {
		rest := l.input[l.pos:]
		switch {
		case rest[0] == ' ' || rest[0] == '\t' || rest[0] == '\r' || rest[0] == '\n':
			l.pos++
		case strings.HasPrefix(rest, "///"):
			end := lineEnd(l.input, l.pos)
			l.doc = append(l.doc, strings.TrimSpace(l.input[l.pos+3:end]))
			l.pos = end
		case strings.HasPrefix(rest, "//"):
			l.pos = lineEnd(l.input, l.pos)
		case strings.HasPrefix(rest, "/*"):
			if i := strings.Index(rest[2:], "*/"); i >= 0 {
				l.pos += i + 4
			} else {
				l.pos = len(l.input)
			}
		default:
			return
		}
	}
}

// numberAhead reports whether the digits at pos form a number rather than
// the start of an identifier such as 3DPoint.
func (l *Lexer) numberAhead(pos int) bool {
	end := l.scanNumber(pos)
	return end >= len(l.input) || !isAlnum(l.input[end]) && l.input[end] != '%'
}

func (l *Lexer) scanNumber(pos int) int {
	i := pos
	for i < len(l.input) && isDigit(l.input[i]) {
		i++
	}
	if i+1 < len(l.input) && l.input[i] == '.' && isDigit(l.input[i+1]) {
		i++
		for i < len(l.input) && isDigit(l.input[i]) {
			i++
		}
	}
	return i
}

// scanIdent matches [%A-Za-z0-9][A-Za-z0-9]*(.[A-Za-z0-9]+)*.
func (l *Lexer) scanIdent(pos int) int {
	i := pos + 1
	for {
		for i < len(l.input) && isAlnum(l.input[i]) {
			i++
		}
		if i+1 < len(l.input) && l.input[i] == '.' && isAlnum(l.input[i+1]) {
			i++
			continue
		}
		return i
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlnum(c byte) bool {
	return isDigit(c) || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func lineEnd(src string, pos int) int {
	if i := strings.IndexAny(src[pos:], "\r\n"); i >= 0 {
		return pos + i
	}
	return len(src)
}

// scanQuoted matches a "..." string with doubled-quote escaping.
func scanQuoted(src string, pos int) (int, bool) {
	for i := pos + 1; i < len(src); i++ {
		if src[i] == '"' {
			if i+1 < len(src) && src[i+1] == '"' {
				i++
				continue
			}
			return i + 1, true
		}
	}
	return pos, false
}

// unquote strips the quotes of a quoted name and undoubles inner quotes.
func unquote(lit string) string {
	if len(lit) >= 2 && lit[0] == '"' && lit[len(lit)-1] == '"' {
		return strings.ReplaceAll(lit[1:len(lit)-1], `""`, `"`)
	}
	return lit
}
