package syntax

import (
	"reflect"
	"testing"
)

func TestInspectOrder(t *testing.T) {
	src := " S x=a+1\n"
	f := mustParse(t, src)
	var got []string
	Inspect(f, func(n Node) bool {
		got = append(got, NodeName(n))
		return true
	})
	want := []string{"File", "CommandStmt", "SetArg", "LocalVar", "Expression", "LocalVar", "Tail", "NumberLit"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestInspectPrune(t *testing.T) {
	f := mustParse(t, " I x {\n W 1\n }\n W 2\n")
	var cmds int
	Inspect(f, func(n Node) bool {
		if _, ok := n.(*CommandStmt); ok {
			cmds++
		}
		_, isIf := n.(*IfStmt)
		return !isIf
	})
	if cmds != 1 {
		t.Errorf("got %d commands outside the IF, want 1", cmds)
	}
}

func TestInspectSpansNest(t *testing.T) {
	for _, src := range corpus {
		f := ParseFile(src, 0)
		var check func(n Node)
		check = func(n Node) {
			sp := n.Span()
			for _, c := range Children(n) {
				cs := c.Span()
				if cs.Start < sp.Start || cs.End > sp.End {
					t.Errorf("%s %v escapes parent %s %v in %q", NodeName(c), cs, NodeName(n), sp, src)
				}
				check(c)
			}
		}
		check(f)
	}
}

func TestChildrenOfLeaf(t *testing.T) {
	if c := Children(&NumberLit{Raw: "1"}); len(c) != 0 {
		t.Errorf("got %d children, want 0", len(c))
	}
	if c := Children(nil); c != nil {
		t.Errorf("got %v for nil", c)
	}
	var nilStmt *CommandStmt
	if c := Children(nilStmt); c != nil {
		t.Errorf("got %v for typed nil", c)
	}
}

func TestGroupingParens(t *testing.T) {
	src := "(1+2)*3"
	e := mustExpr(t, src)
	if got := Grouping(e, src); got != "(((1+2))*3)" {
		t.Errorf("got %s", got)
	}
}
