package cache

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/fxamacker/cbor/v2"
	bolt "go.etcd.io/bbolt"

	"github.com/chazu/objectscript/syntax"
	"github.com/chazu/objectscript/syntax/hash"
)

func openTemp(t *testing.T) (*Cache, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "cache.db")
	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c, path
}

func TestPutGet(t *testing.T) {
	c, _ := openTemp(t)
	key := hash.Content(" S x=1\n", "core")
	diags := []syntax.Diagnostic{
		{Span: syntax.Span{Start: 1, End: 4}, Severity: syntax.SeverityError, Code: syntax.UnexpectedToken, Message: "boom"},
	}
	want := NewSummary("core", [32]byte{1, 2, 3}, diags, 7)

	if _, ok := c.Get(key); ok {
		t.Fatal("Get before Put: got a hit")
	}
	if err := c.Put(key, want); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	got, ok := c.Get(key)
	if !ok {
		t.Fatal("Get after Put: miss")
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Get: got %+v, want %+v", got, want)
	}
	if !reflect.DeepEqual(got.SyntaxDiagnostics(), diags) {
		t.Errorf("SyntaxDiagnostics: got %v, want %v", got.SyntaxDiagnostics(), diags)
	}
	if c.Len() != 1 {
		t.Errorf("Len: got %d, want 1", c.Len())
	}
}

func TestReopen(t *testing.T) {
	c, path := openTemp(t)
	key := hash.Content("x", "class")
	if err := c.Put(key, NewSummary("class", [32]byte{}, nil, 0)); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}

	c2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer c2.Close()
	got, ok := c2.Get(key)
	if !ok || got.Dialect != "class" {
		t.Errorf("Get after reopen: got %+v, %v", got, ok)
	}
}

func TestStaleAndCorruptEntries(t *testing.T) {
	c, _ := openTemp(t)
	stale := hash.Content("a", "core")
	corrupt := hash.Content("b", "core")

	old := NewSummary("core", [32]byte{}, nil, 0)
	old.Version = SummaryVersion + 1
	data, err := cbor.Marshal(old)
	if err != nil {
		t.Fatal(err)
	}
	err = c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		if err := b.Put(stale[:], data); err != nil {
			return err
		}
		return b.Put(corrupt[:], []byte{0xff, 0x00})
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := c.Get(stale); ok {
		t.Error("stale version: got a hit")
	}
	if _, ok := c.Get(corrupt); ok {
		t.Error("corrupt entry: got a hit")
	}
}

func TestClosed(t *testing.T) {
	c, _ := openTemp(t)
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if err := c.Put([32]byte{}, Summary{}); err != ErrClosed {
		t.Errorf("Put after Close: got %v, want ErrClosed", err)
	}
	if _, ok := c.Get([32]byte{}); ok {
		t.Error("Get after Close: got a hit")
	}
}
