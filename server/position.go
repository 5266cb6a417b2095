package server

import (
	"net/url"
	"path/filepath"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/chazu/objectscript/syntax"
)

// ---------------------------------------------------------------------------
// Offsets and LSP positions. LSP columns count UTF-16 code units.
// ---------------------------------------------------------------------------

// positionAt converts a byte offset into an LSP position.
func positionAt(src string, lines *syntax.LineIndex, offset int) protocol.Position {
	if offset > len(src) {
		offset = len(src)
	}
	if offset < 0 {
		offset = 0
	}
	p := lines.Position(offset)
	start := offset - (p.Column - 1)
	return protocol.Position{
		Line:      protocol.UInteger(p.Line - 1),
		Character: protocol.UInteger(utf16Len(src[start:offset])),
	}
}

// offsetAt converts an LSP position into a byte offset, clamped to the
// line it names.
func offsetAt(src string, lines *syntax.LineIndex, pos protocol.Position) int {
	line := int(pos.Line) + 1
	if line > lines.Lines() {
		return len(src)
	}
	i := lines.Offset(line, 1)
	units := 0
	for i < len(src) && src[i] != '\n' && units < int(pos.Character) {
		r, size := utf8.DecodeRuneInString(src[i:])
		units += runeUnits(r)
		i += size
	}
	return i
}

func rangeOf(src string, lines *syntax.LineIndex, sp syntax.Span) protocol.Range {
	return protocol.Range{
		Start: positionAt(src, lines, sp.Start),
		End:   positionAt(src, lines, sp.End),
	}
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += runeUnits(r)
	}
	return n
}

func runeUnits(r rune) int {
	if n := utf16.RuneLen(r); n > 0 {
		return n
	}
	return 1
}

// ---------------------------------------------------------------------------
// Words under the cursor
// ---------------------------------------------------------------------------

func isNameByte(c byte) bool {
	return c == '%' || c >= '0' && c <= '9' || c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= 0x80
}

// extractPrefix returns the name fragment before offset for completion,
// including any leading '$' or '$$'.
func extractPrefix(text string, offset int) string {
	if offset > len(text) {
		offset = len(text)
	}
	start := offset
	for start > 0 && isNameByte(text[start-1]) {
		start--
	}
	for start > 0 && text[start-1] == '$' {
		start--
	}
	return text[start:offset]
}

// extractWord returns the reference under offset and its span. A reference
// may carry '$' sigils, a '^routine' part and dotted class name segments.
func extractWord(text string, offset int) (string, syntax.Span) {
	if offset > len(text) {
		offset = len(text)
	}
	inWord := func(c byte) bool { return isNameByte(c) || c == '^' || c == '.' }
	start := offset
	for start > 0 && inWord(text[start-1]) {
		start--
	}
	for start > 0 && text[start-1] == '$' {
		start--
	}
	end := offset
	for end < len(text) && inWord(text[end]) {
		end++
	}
	for end > start && text[end-1] == '.' {
		end--
	}
	for start < end && text[start] == '.' {
		start++
	}
	if start == end {
		return "", syntax.Span{Start: offset, End: offset}
	}
	return text[start:end], syntax.Span{Start: start, End: end}
}

// ---------------------------------------------------------------------------
// URIs
// ---------------------------------------------------------------------------

func uriToPath(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "file" {
		return uri
	}
	return filepath.FromSlash(u.Path)
}

func pathToURI(path string) string {
	if strings.Contains(path, "://") {
		return path
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}
