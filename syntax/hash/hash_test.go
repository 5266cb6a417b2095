package hash

import (
	"testing"

	"github.com/chazu/objectscript/syntax"
)

var samples = []string{
	" S x=1\n",
	"main(a,b=2) public {\n  quit a+b\n}\n",
	"#define Max(%a,%b) $S(%a>%b:%a,1:%b)\nT S y=$$$Max(1,2) W y,!\n",
	" &sql(SELECT Name INTO :n FROM Sample.Person)\n",
	" D  I x W 1\n . W 2\n",
}

func TestFingerprintIdempotent(t *testing.T) {
	for _, src := range samples {
		a := syntax.ParseFile(src, 0)
		b := syntax.ParseFile(src, 0)
		if Fingerprint(a, src) != Fingerprint(b, src) {
			t.Errorf("fingerprints differ for %q", src)
		}
	}
}

func TestFingerprintDistinguishesStructure(t *testing.T) {
	tests := []struct {
		a, b string
	}{
		{" S x=1\n", " S x=2\n"},
		{" S x=1\n", "  S x=1\n"},
		{" S x=1+2*3\n", " S x=1+(2*3)\n"},
		{" D Foo\n", " G Foo\n"},
	}
	for _, tc := range tests {
		fa := Fingerprint(syntax.ParseFile(tc.a, 0), tc.a)
		fb := Fingerprint(syntax.ParseFile(tc.b, 0), tc.b)
		if fa == fb {
			t.Errorf("%q and %q: got equal fingerprints", tc.a, tc.b)
		}
	}
}

func TestContent(t *testing.T) {
	if Content("x", "core") != Content("x", "core") {
		t.Error("Content is not deterministic")
	}
	if Content("x", "core") == Content("x", "class") {
		t.Error("dialect should change the content key")
	}
	if Content("ab", "") == Content("a", "b") {
		t.Error("length prefixes should separate dialect from source")
	}
}

func TestHex(t *testing.T) {
	var fp [32]byte
	fp[0] = 0xab
	got := Hex(fp)
	if len(got) != 64 || got[:2] != "ab" {
		t.Errorf("Hex: got %q", got)
	}
}
