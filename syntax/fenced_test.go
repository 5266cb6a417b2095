package syntax

import (
	"strings"
	"testing"
)

func TestScanFenced(t *testing.T) {
	tests := []struct {
		name  string
		input string
		open  int
		lang  Language
		want  string // body between the delimiters
		ok    bool
	}{
		{"nested parens", "&sql(SELECT * FROM (SELECT 1)) W 1", 4, LangSQL, "SELECT * FROM (SELECT 1)", true},
		{"paren in string", `&sql(SELECT ')' FROM x WHERE y=")")`, 4, LangSQL, `SELECT ')' FROM x WHERE y=")"`, true},
		{"doubled quote", `&sql(SELECT 'it''s)' FROM x)`, 4, LangSQL, `SELECT 'it''s)' FROM x`, true},
		{"html nesting", `&html<<b>"x>"</b>>`, 5, LangHTML, `<b>"x>"</b>`, true},
		{"js single quote", `&js<var s='>'; f(1)>`, 3, LangJS, `var s='>'; f(1)`, true},
		{"multi-line", "&sql(SELECT 1\n  FROM x)", 4, LangSQL, "SELECT 1\n  FROM x", true},
		{"unterminated", "&sql(SELECT (1)", 4, LangSQL, "", false},
		{"wrong opener", "&sql SELECT", 4, LangSQL, "", false},
	}

	for _, tc := range tests {
		end, ok := ScanFenced(tc.input, tc.open, tc.lang)
		if ok != tc.ok {
			t.Errorf("%s: ok = %v, want %v", tc.name, ok, tc.ok)
			continue
		}
		if !ok {
			continue
		}
		if got := tc.input[tc.open+1 : end]; got != tc.want {
			t.Errorf("%s: body = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestScanSQLMarker(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"<x>(SELECT 1)<x>", "<x>", true},
		{"abc(SELECT 1)cba", "abc", true},
		{"a b(", "", false},
		{"a+b(", "", false},
		{strings.Repeat("m", 31) + "(", "", false},
	}

	for _, tc := range tests {
		open, ok := scanSQLMarker(tc.input, 0)
		if ok != tc.ok {
			t.Errorf("scanSQLMarker(%q): ok = %v, want %v", tc.input, ok, tc.ok)
			continue
		}
		if ok && tc.input[:open] != tc.want {
			t.Errorf("scanSQLMarker(%q): marker = %q, want %q", tc.input, tc.input[:open], tc.want)
		}
	}
}

func TestReverseMarker(t *testing.T) {
	tests := []struct{ in, want string }{
		{"abc", "cba"},
		{"<x>", ">x<"},
		{"", ""},
	}
	for _, tc := range tests {
		if got := reverseMarker(tc.in); got != tc.want {
			t.Errorf("reverseMarker(%q): got %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestScanBalanced(t *testing.T) {
	tests := []struct {
		input  string
		quotes string
		want   int
		ok     bool
	}{
		{`{ "}" { } }x`, `"`, 10, true},
		{`{ '}' }`, `"'`, 6, true},
		{`{ a // } comment }`, `"`, 7, true},
		{`{ {`, `"`, 3, false},
	}

	for _, tc := range tests {
		end, ok := ScanBalanced(tc.input, 0, tc.quotes)
		if ok != tc.ok || (ok && end != tc.want) {
			t.Errorf("ScanBalanced(%q): got %d, %v, want %d, %v", tc.input, end, ok, tc.want, tc.ok)
		}
	}
}
