package syntax

import (
	"fmt"
	"sort"
)

// ---------------------------------------------------------------------------
// Source positions
// ---------------------------------------------------------------------------

// Span is a half-open byte range [Start, End) into the source text.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int { return s.End - s.Start }

// Contains reports whether o lies entirely within s.
func (s Span) Contains(o Span) bool { return s.Start <= o.Start && o.End <= s.End }

// Text returns the source text covered by the span.
func (s Span) Text(src string) string {
	if s.Start < 0 || s.End > len(src) || s.Start > s.End {
		return ""
	}
	return src[s.Start:s.End]
}

func (s Span) String() string { return fmt.Sprintf("%d-%d", s.Start, s.End) }

// Position represents a source location.
type Position struct {
	Offset int // byte offset
	Line   int // 1-based line number
	Column int // 1-based column number, in bytes
}

// LineIndex converts byte offsets into line and column positions.
type LineIndex struct {
	starts []int
}

// NewLineIndex records the start offset of every line in src.
func NewLineIndex(src string) *LineIndex {
	starts := []int{0}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{starts: starts}
}

// Position returns the line and column of a byte offset.
func (li *LineIndex) Position(offset int) Position {
	line := sort.Search(len(li.starts), func(i int) bool { return li.starts[i] > offset }) - 1
	if line < 0 {
		line = 0
	}
	return Position{Offset: offset, Line: line + 1, Column: offset - li.starts[line] + 1}
}

// Offset returns the byte offset of a 1-based line and column.
func (li *LineIndex) Offset(line, column int) int {
	if line < 1 {
		return 0
	}
	if line > len(li.starts) {
		line = len(li.starts)
	}
	return li.starts[line-1] + column - 1
}

// Lines returns the number of lines.
func (li *LineIndex) Lines() int { return len(li.starts) }

// ---------------------------------------------------------------------------
// Tokens
// ---------------------------------------------------------------------------

// TokenKind classifies a token.
type TokenKind int

const (
	TokenError TokenKind = iota
	TokenKeyword
	TokenIdentifier
	TokenLiteral
	TokenOperator
	TokenPunct
	TokenFenced
	TokenWhitespace
	TokenNewline
	TokenComment
	TokenText
)

var tokenNames = map[TokenKind]string{
	TokenError:      "ERROR",
	TokenKeyword:    "KEYWORD",
	TokenIdentifier: "IDENTIFIER",
	TokenLiteral:    "LITERAL",
	TokenOperator:   "OPERATOR",
	TokenPunct:      "PUNCT",
	TokenFenced:     "FENCED",
	TokenWhitespace: "WHITESPACE",
	TokenNewline:    "NEWLINE",
	TokenComment:    "COMMENT",
	TokenText:       "TEXT",
}

func (k TokenKind) String() string {
	if name, ok := tokenNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Token(%d)", k)
}

// Trivia reports whether tokens of this kind carry no syntax.
func (k TokenKind) Trivia() bool {
	return k == TokenWhitespace || k == TokenNewline || k == TokenComment
}

// Token is a classified byte range of the source. Tokens never overlap.
type Token struct {
	Kind TokenKind
	Span Span
	Text string
}

func (t Token) String() string {
	if len(t.Text) > 20 {
		return fmt.Sprintf("%s(%q...)", t.Kind, t.Text[:20])
	}
	return fmt.Sprintf("%s(%q)", t.Kind, t.Text)
}
