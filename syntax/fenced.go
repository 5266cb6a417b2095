package syntax

import "strings"

// Language tags the foreign code held by a fenced block.
type Language string

const (
	LangSQL  Language = "sql"
	LangHTML Language = "html"
	LangJS   Language = "js"
	LangXML  Language = "xml"
)

// maxMarkerLen bounds the optional marker of &sql<marker>( ... )<reversed>.
const maxMarkerLen = 30

// embeddedKeywords maps the &-introduced keywords to their languages.
var embeddedKeywords = []struct {
	word string
	lang Language
}{
	{"&html", LangHTML},
	{"&sql", LangSQL},
	{"&xml", LangXML},
	{"&js", LangJS},
}

// embeddedKeywordLen returns the length of an &sql, &html, &js or &xml
// keyword at pos when it introduces a fenced block.
func embeddedKeywordLen(src string, pos int) int {
	lang, n := embeddedAt(src, pos)
	if n == 0 {
		return 0
	}
	next := byteAt(src, pos+n)
	if lang == LangSQL {
		if next == '(' {
			return n
		}
		if _, ok := scanSQLMarker(src, pos+n); ok {
			return n
		}
		return 0
	}
	if next == '<' {
		return n
	}
	return 0
}

func embeddedAt(src string, pos int) (Language, int) {
	for _, k := range embeddedKeywords {
		if len(src)-pos >= len(k.word) && strings.EqualFold(src[pos:pos+len(k.word)], k.word) {
			return k.lang, len(k.word)
		}
	}
	return "", 0
}

// scanSQLMarker matches the optional marker between &sql and its opening
// parenthesis. The marker excludes whitespace and the characters ( + - / \ | * )
// and is at most 30 bytes long. It returns the offset of the '('.
func scanSQLMarker(src string, pos int) (int, bool) {
	for i := pos; i < len(src) && i-pos <= maxMarkerLen; i++ {
		c := src[i]
		if c == '(' {
			return i, true
		}
		if strings.IndexByte("+-/\\|*) \t\r\n", c) >= 0 {
			return pos, false
		}
	}
	return pos, false
}

// reverseMarker returns the closing marker for an opening marker.
func reverseMarker(m string) string {
	b := []byte(m)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}

// delimiters returns the bracket pair of a fenced language.
func delimiters(lang Language) (byte, byte) {
	if lang == LangSQL {
		return '(', ')'
	}
	return '<', '>'
}

// quoteChars returns the string quotes honored inside a fenced language.
func quoteChars(lang Language) string {
	switch lang {
	case LangSQL, LangJS:
		return `"'`
	}
	return `"`
}

// ScanFenced finds the delimiter closing the fenced block whose opening
// delimiter is at src[open]. Nested pairs of the same bracket are counted,
// and brackets inside quoted strings are ignored; a doubled quote inside a
// string is an escaped quote. An unterminated string inside the body is
// treated as plain text. It returns the offset of the closing delimiter.
func ScanFenced(src string, open int, lang Language) (int, bool) {
	l, r := delimiters(lang)
	if byteAt(src, open) != l {
		return open, false
	}
	quotes := quoteChars(lang)
	depth := 1
	for i := open + 1; i < len(src); i++ {
		c := src[i]
		switch {
		case strings.IndexByte(quotes, c) >= 0:
			if end, ok := scanQuoted(src, i, c); ok {
				i = end - 1
			}
		case c == l:
			depth++
		case c == r:
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return len(src), false
}

// scanQuoted matches a string delimited by q with doubled-quote escaping. It
// may span lines.
func scanQuoted(src string, pos int, q byte) (int, bool) {
	for i := pos + 1; i < len(src); i++ {
		if src[i] == q {
			if byteAt(src, i+1) == q {
				i++
				continue
			}
			return i + 1, true
		}
	}
	return pos, false
}

// ScanBalanced finds the '}' matching the '{' at src[open]. Braces inside
// strings delimited by any byte of quotes are ignored. Used for opaque class
// member bodies.
func ScanBalanced(src string, open int, quotes string) (int, bool) {
	if byteAt(src, open) != '{' {
		return open, false
	}
	depth := 1
	for i := open + 1; i < len(src); i++ {
		switch c := src[i]; {
		case strings.IndexByte(quotes, c) >= 0:
			if end, ok := scanQuoted(src, i, c); ok {
				i = end - 1
			}
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return len(src), false
}
