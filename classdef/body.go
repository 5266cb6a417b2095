package classdef

import (
	"strings"

	"github.com/chazu/objectscript/syntax"
)

// externalLanguages are method and trigger languages whose bodies are kept
// as opaque text.
var externalLanguages = map[string]bool{
	"java":       true,
	"javascript": true,
	"tsql":       true,
	"ispl":       true,
	"python":     true,
}

var fencedOpeners = []struct {
	prefix string
	lang   syntax.Language
}{
	{"&sql(", syntax.LangSQL},
	{"&html<", syntax.LangHTML},
	{"&js<", syntax.LangJS},
}

// scanCodeBody finds the '}' closing a core-dialect body whose '{' is at
// src[open]. Braces inside strings, comments and fenced blocks do not count.
func scanCodeBody(src string, open int) (int, bool) {
	if open >= len(src) || src[open] != '{' {
		return open, false
	}
	depth := 1
	for i := open + 1; i < len(src); i++ {
		c := src[i]
		rest := src[i:]
		switch {
		case c == '"':
			i = lineString(src, i) - 1
		case strings.HasPrefix(rest, "//") || strings.HasPrefix(rest, "#;") || c == ';':
			i = lineEnd(src, i) - 1
		case strings.HasPrefix(rest, "/*"):
			if j := strings.Index(rest[2:], "*/"); j >= 0 {
				i += j + 3
			} else {
				return len(src), false
			}
		case c == '&':
			for _, f := range fencedOpeners {
				if hasPrefixFold(rest, f.prefix) {
					if end, ok := syntax.ScanFenced(src, i+len(f.prefix)-1, f.lang); ok {
						i = end
					}
					break
				}
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

// lineString returns the offset after the string starting at src[pos], or
// the line end when it is unterminated.
func lineString(src string, pos int) int {
	end := lineEnd(src, pos)
	if e, ok := scanQuoted(src[:end], pos); ok {
		return e
	}
	return end
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func equalFold(a, b string) bool { return strings.EqualFold(a, b) }

// bodyLanguage returns the lower-cased Language keyword of a member.
func bodyLanguage(kl *KeywordList) string {
	if k, ok := kl.Lookup("Language"); ok && k.Value != nil {
		return strings.ToLower(k.Value.Raw)
	}
	return ""
}

// expressionMode reports whether a method has CodeMode = expression.
func expressionMode(kl *KeywordList) bool {
	k, ok := kl.Lookup("CodeMode")
	return ok && k.Value != nil && equalFold(k.Value.Raw, "expression")
}
