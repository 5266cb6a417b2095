package syntax

import (
	"strings"
	"unicode/utf8"
)

// ---------------------------------------------------------------------------
// Character classes
// ---------------------------------------------------------------------------

func isSpace(c byte) bool   { return c == ' ' || c == '\t' }
func isNewline(c byte) bool { return c == '\n' || c == '\r' }
func isDigit(c byte) bool   { return c >= '0' && c <= '9' }
func isAlpha(c byte) bool   { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isAlnum(c byte) bool   { return isAlpha(c) || isDigit(c) }

// isNameStart reports whether c can begin a variable or label name.
func isNameStart(c byte) bool { return c == '%' || isAlpha(c) }

func byteAt(src string, i int) byte {
	if i < 0 || i >= len(src) {
		return 0
	}
	return src[i]
}

// ---------------------------------------------------------------------------
// Scanners. Each takes the source and a start offset and returns the end
// offset of the recognized run, or the start offset when nothing matches.
// ---------------------------------------------------------------------------

// scanName matches [%A-Za-z][A-Za-z0-9]*.
func scanName(src string, pos int) int {
	if !isNameStart(byteAt(src, pos)) {
		return pos
	}
	pos++
	for pos < len(src) && isAlnum(src[pos]) {
		pos++
	}
	return pos
}

// scanMember matches [%A-Za-z0-9][A-Za-z0-9]*, the spelling of labels,
// member names and macro names.
func scanMember(src string, pos int) int {
	c := byteAt(src, pos)
	if c != '%' && !isAlnum(c) {
		return pos
	}
	pos++
	for pos < len(src) && isAlnum(src[pos]) {
		pos++
	}
	return pos
}

// scanDottedName matches a member name followed by .part segments, the
// spelling of class, routine and include names.
func scanDottedName(src string, pos int) int {
	end := scanMember(src, pos)
	if end == pos {
		return pos
	}
	for byteAt(src, end) == '.' && isAlnum(byteAt(src, end+1)) {
		end++
		for end < len(src) && isAlnum(src[end]) {
			end++
		}
	}
	return end
}

// scanTagName matches a column-zero label: [%A-Za-z0-9]+.
func scanTagName(src string, pos int) int {
	for pos < len(src) && (isAlnum(src[pos]) || src[pos] == '%') {
		pos++
	}
	return pos
}

// scanString matches a string literal with doubled-quote escaping. When the
// literal is unterminated it returns the end of the line and false.
func scanString(src string, pos int) (int, bool) {
	i := pos + 1
	for i < len(src) {
		switch src[i] {
		case '"':
			if byteAt(src, i+1) == '"' {
				i += 2
				continue
			}
			return i + 1, true
		case '\n', '\r':
			return i, false
		}
		i++
	}
	return i, false
}

// scanNumber matches integer and decimal literals with an optional exponent.
func scanNumber(src string, pos int) int {
	i := pos
	for i < len(src) && isDigit(src[i]) {
		i++
	}
	digits := i > pos
	if byteAt(src, i) == '.' && isDigit(byteAt(src, i+1)) {
		i++
		for i < len(src) && isDigit(src[i]) {
			i++
		}
		digits = true
	}
	if !digits {
		return pos
	}
	if c := byteAt(src, i); c == 'e' || c == 'E' {
		j := i + 1
		if c := byteAt(src, j); c == '+' || c == '-' {
			j++
		}
		if isDigit(byteAt(src, j)) {
			for j < len(src) && isDigit(src[j]) {
				j++
			}
			i = j
		}
	}
	return i
}

// lineCommentLen returns the length of a line comment introducer at pos:
// ";", "//" or "#;".
func lineCommentLen(src string, pos int) int {
	switch byteAt(src, pos) {
	case ';':
		return 1
	case '/':
		if byteAt(src, pos+1) == '/' {
			return 2
		}
	case '#':
		if byteAt(src, pos+1) == ';' {
			return 2
		}
	}
	return 0
}

// scanLineEnd returns the offset of the next line terminator or end of input.
func scanLineEnd(src string, pos int) int {
	for pos < len(src) && !isNewline(src[pos]) {
		pos++
	}
	return pos
}

// scanBlockComment matches /* ... */. An unterminated comment runs to the end
// of its first line and reports false.
func scanBlockComment(src string, pos int) (int, bool) {
	if i := strings.Index(src[pos+2:], "*/"); i >= 0 {
		return pos + 2 + i + 2, true
	}
	return scanLineEnd(src, pos), false
}

// scanSpaces matches a run of spaces and tabs.
func scanSpaces(src string, pos int) int {
	for pos < len(src) && isSpace(src[pos]) {
		pos++
	}
	return pos
}

// scanNewline matches one line terminator: \r\n, \n or \r.
func scanNewline(src string, pos int) int {
	switch byteAt(src, pos) {
	case '\r':
		if byteAt(src, pos+1) == '\n' {
			return pos + 2
		}
		return pos + 1
	case '\n':
		return pos + 1
	}
	return pos
}

// ---------------------------------------------------------------------------
// Operators
// ---------------------------------------------------------------------------

// binaryOperators lists every binary operator longest first. All of them
// share one precedence level and associate left to right.
var binaryOperators = []string{
	"']]",
	"**", "]]", "'=", "'<", "'>", "'[", "']", "'!", "'&", "'?",
	"<=", ">=", "||", "&&",
	"*", "/", "\\", "#", "+", "-", "=", "<", ">", "'", "!", "&", "_", "]", "[", "?",
}

// matchOperator returns the binary operator spelled at pos, if any. Comment
// introducers and fenced-block keywords are never operators.
func matchOperator(src string, pos int) string {
	if lineCommentLen(src, pos) > 0 && byteAt(src, pos) != ';' {
		return ""
	}
	if strings.HasPrefix(src[pos:], "/*") {
		return ""
	}
	if byteAt(src, pos) == '&' && embeddedKeywordLen(src, pos) > 0 {
		return ""
	}
	for _, op := range binaryOperators {
		if strings.HasPrefix(src[pos:], op) {
			return op
		}
	}
	return ""
}

// ---------------------------------------------------------------------------
// Command boundary
// ---------------------------------------------------------------------------

// Boundary classifies the whitespace after a command keyword and its
// optional post-conditional.
type Boundary int

const (
	// BoundaryNone means the keyword runs directly into other text.
	BoundaryNone Boundary = iota
	// BoundaryArgs means one space followed by argument text.
	BoundaryArgs
	// BoundaryArgless means the command takes no arguments.
	BoundaryArgless
)

func (b Boundary) String() string {
	switch b {
	case BoundaryArgs:
		return "argumentful"
	case BoundaryArgless:
		return "argumentless"
	}
	return "none"
}

// argumentlessTerminators are the texts that, directly after the single
// space, end an argumentless command.
var argumentlessTerminators = []string{" ", "\n", "\r", "\t", ";", "}", "//", "/*", "#;"}

// CommandBoundary applies the command-boundary rule at pos. A single space
// followed by a non-terminator means arguments follow. A second space, a
// line end, a tab, a comment, a closing brace or end of input means the
// command is argumentless.
func CommandBoundary(src string, pos int) Boundary {
	if pos >= len(src) {
		return BoundaryArgless
	}
	switch src[pos] {
	case ' ':
		rest := src[pos+1:]
		if rest == "" {
			return BoundaryArgless
		}
		for _, t := range argumentlessTerminators {
			if strings.HasPrefix(rest, t) {
				return BoundaryArgless
			}
		}
		return BoundaryArgs
	case '\n', '\r', '\t', '}':
		return BoundaryArgless
	}
	return BoundaryNone
}

// ---------------------------------------------------------------------------
// Lexer: context-free classification
// ---------------------------------------------------------------------------

// Lexer classifies source text one token at a time without grammar context.
// The parser uses it to emit trivia; callers can use it for quick scans.
type Lexer struct {
	input string
	pos   int
}

// NewLexer creates a lexer positioned at the start of input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// Pos returns the cursor offset.
func (l *Lexer) Pos() int { return l.pos }

// Next returns the token at the cursor and advances past it. At end of input
// it returns a zero-length TokenError.
func (l *Lexer) Next() Token {
	start := l.pos
	src := l.input
	if start >= len(src) {
		return Token{Kind: TokenError, Span: Span{start, start}}
	}
	_, size := utf8.DecodeRuneInString(src[start:])
	kind, end := TokenText, start+size
	c := src[start]
	switch {
	case isSpace(c):
		kind, end = TokenWhitespace, scanSpaces(src, start)
	case isNewline(c):
		kind, end = TokenNewline, scanNewline(src, start)
	case lineCommentLen(src, start) > 0:
		kind, end = TokenComment, scanLineEnd(src, start)
	case strings.HasPrefix(src[start:], "/*"):
		var ok bool
		end, ok = scanBlockComment(src, start)
		kind = TokenComment
		if !ok {
			kind = TokenError
		}
	case c == '"':
		var ok bool
		end, ok = scanString(src, start)
		kind = TokenLiteral
		if !ok {
			kind = TokenError
		}
	case isDigit(c) || (c == '.' && isDigit(byteAt(src, start+1))):
		kind, end = TokenLiteral, scanNumber(src, start)
	case isNameStart(c):
		kind, end = TokenIdentifier, scanName(src, start)
	case matchOperator(src, start) != "":
		kind, end = TokenOperator, start+len(matchOperator(src, start))
	case strings.IndexByte("(){}[],:.^$@|", c) >= 0:
		kind, end = TokenPunct, start+1
	}
	l.pos = end
	return Token{Kind: kind, Span: Span{start, end}, Text: src[start:end]}
}

// Boundary applies the command-boundary rule at the cursor.
func (l *Lexer) Boundary() Boundary {
	return CommandBoundary(l.input, l.pos)
}
