package syntax

import "testing"

func TestResolveCommand(t *testing.T) {
	tests := []struct {
		word string
		b    Boundary
		want Command
		ok   bool
	}{
		{"H", BoundaryArgs, CmdHang, true},
		{"H", BoundaryArgless, CmdHalt, true},
		{"h", BoundaryArgless, CmdHalt, true},
		{"HANG", BoundaryArgs, CmdHang, true},
		{"HANG", BoundaryArgless, CmdHang, false},
		{"HALT", BoundaryArgs, CmdHalt, false},
		{"s", BoundaryArgs, CmdSet, true},
		{"Set", BoundaryArgless, CmdSet, false},
		{"W", BoundaryArgless, CmdWrite, true},
		{"write", BoundaryArgs, CmdWrite, true},
		{"TRO", BoundaryArgless, CmdTRollback, true},
		{"TC", BoundaryArgless, CmdTCommit, true},
		{"RET", BoundaryArgs, CmdReturn, true},
		{"ZN", BoundaryArgs, CmdZNSpace, true},
		{"ZZDUMP", BoundaryArgs, CmdZZ, true},
		{"E", BoundaryArgless, CmdElse, true},
	}

	for _, tc := range tests {
		spec, ok := resolveCommand(lookupCommand(tc.word), tc.b)
		if spec.cmd != tc.want || ok != tc.ok {
			t.Errorf("resolve(%q, %v): got %v, %v, want %v, %v", tc.word, tc.b, spec.cmd, ok, tc.want, tc.ok)
		}
	}
}

func TestLookupUnknownCommand(t *testing.T) {
	for _, word := range []string{"FOO", "SE", "WR", "ZZ", ""} {
		if cands := lookupCommand(word); len(cands) != 0 {
			t.Errorf("lookupCommand(%q): got %d candidates, want none", word, len(cands))
		}
	}
}

func TestPostConditionalAllowed(t *testing.T) {
	tests := []struct {
		cmd  Command
		want bool
	}{
		{CmdSet, true},
		{CmdQuit, true},
		{CmdIf, false},
		{CmdFor, false},
		{CmdTry, false},
	}
	for _, tc := range tests {
		if got := tc.cmd.AllowsPostConditional(); got != tc.want {
			t.Errorf("%v.AllowsPostConditional(): got %v, want %v", tc.cmd, got, tc.want)
		}
	}
}

func TestSystemNames(t *testing.T) {
	fnTests := []struct {
		spelling string
		want     string
		known    bool
	}{
		{"P", "PIECE", true},
		{"piece", "PIECE", true},
		{"LB", "LISTBUILD", true},
		{"ZDTH", "ZDATETIMEH", true},
		{"NOPE", "", false},
	}
	for _, tc := range fnTests {
		got, known := SystemFunction(tc.spelling)
		if got != tc.want || known != tc.known {
			t.Errorf("SystemFunction(%q): got %q, %v, want %q, %v", tc.spelling, got, known, tc.want, tc.known)
		}
	}

	varTests := []struct {
		spelling string
		want     string
	}{
		{"H", "HOROLOG"},
		{"zts", "ZTIMESTAMP"},
		{"this", "THIS"},
		{"T", "TEST"},
	}
	for _, tc := range varTests {
		if got, _ := SystemVariable(tc.spelling); got != tc.want {
			t.Errorf("SystemVariable(%q): got %q, want %q", tc.spelling, got, tc.want)
		}
	}
}

func TestCommandNames(t *testing.T) {
	names := CommandNames()
	if len(names) != len(commandSpecs)-1 {
		t.Fatalf("CommandNames: got %d names, want %d", len(names), len(commandSpecs)-1)
	}
	seen := make(map[string]bool)
	for _, n := range names {
		if seen[n] {
			t.Errorf("CommandNames: duplicate %q", n)
		}
		seen[n] = true
	}
}

func TestCommandName(t *testing.T) {
	tests := []struct {
		spelling string
		want     string
		ok       bool
	}{
		{"s", "SET", true},
		{"Write", "WRITE", true},
		{"H", "HANG/HALT", true},
		{"tro", "TROLLBACK", true},
		{"zzDump", "ZZDUMP", true},
		{"SE", "", false},
	}
	for _, tc := range tests {
		got, ok := CommandName(tc.spelling)
		if got != tc.want || ok != tc.ok {
			t.Errorf("CommandName(%q): got %q, %v, want %q, %v", tc.spelling, got, ok, tc.want, tc.ok)
		}
	}
}
