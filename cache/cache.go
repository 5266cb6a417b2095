// Package cache keeps parse summaries on disk, keyed by the content
// fingerprint of a source text, so unchanged files skip re-parsing.
package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/tliron/commonlog"
	bolt "go.etcd.io/bbolt"

	"github.com/chazu/objectscript/syntax"
)

// SummaryVersion is bumped whenever the summary encoding or the parser's
// output changes in a way that invalidates stored entries.
const SummaryVersion = 1

var bucketName = []byte("summaries")

// ErrClosed is returned by operations on a closed cache.
var ErrClosed = errors.New("cache closed")

var log = commonlog.GetLogger("objectscript.cache")

var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("cache: failed to create CBOR enc mode: %v", err))
	}
	encMode = em
}

// Diagnostic is the stored form of a syntax.Diagnostic.
type Diagnostic struct {
	Start    int    `cbor:"1,keyasint"`
	End      int    `cbor:"2,keyasint"`
	Severity int    `cbor:"3,keyasint"`
	Code     string `cbor:"4,keyasint"`
	Message  string `cbor:"5,keyasint"`
}

// Summary is what a check run needs to know about a file without parsing it.
type Summary struct {
	Version     int          `cbor:"1,keyasint"`
	Dialect     string       `cbor:"2,keyasint"`
	Fingerprint [32]byte     `cbor:"3,keyasint"`
	Diagnostics []Diagnostic `cbor:"4,keyasint"`
	Symbols     int          `cbor:"5,keyasint"`
}

// NewSummary builds a summary from a parse result.
func NewSummary(dialect string, fp [32]byte, diags []syntax.Diagnostic, symbols int) Summary {
	s := Summary{Version: SummaryVersion, Dialect: dialect, Fingerprint: fp, Symbols: symbols}
	for _, d := range diags {
		s.Diagnostics = append(s.Diagnostics, Diagnostic{
			Start:    d.Span.Start,
			End:      d.Span.End,
			Severity: int(d.Severity),
			Code:     string(d.Code),
			Message:  d.Message,
		})
	}
	return s
}

// SyntaxDiagnostics converts the stored diagnostics back.
func (s Summary) SyntaxDiagnostics() []syntax.Diagnostic {
	out := make([]syntax.Diagnostic, 0, len(s.Diagnostics))
	for _, d := range s.Diagnostics {
		out = append(out, syntax.Diagnostic{
			Span:     syntax.Span{Start: d.Start, End: d.End},
			Severity: syntax.Severity(d.Severity),
			Code:     syntax.Code(d.Code),
			Message:  d.Message,
		})
	}
	return out
}

// Cache is a bbolt-backed summary store. It is safe for concurrent use.
type Cache struct {
	db *bolt.DB
}

// Open opens or creates the cache database at path.
func Open(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening cache %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}
	log.Debugf("opened cache %s", path)
	return &Cache{db: db}, nil
}

// Close closes the database.
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}

// Get returns the summary stored under key. Entries written by another
// summary version, or that fail to decode, are misses.
func (c *Cache) Get(key [32]byte) (Summary, bool) {
	if c.db == nil {
		return Summary{}, false
	}
	var data []byte
	err := c.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketName).Get(key[:]); v != nil {
			// v is only valid inside the transaction.
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil || data == nil {
		return Summary{}, false
	}
	var s Summary
	if err := cbor.Unmarshal(data, &s); err != nil {
		log.Warningf("dropping undecodable cache entry: %v", err)
		return Summary{}, false
	}
	if s.Version != SummaryVersion {
		return Summary{}, false
	}
	return s, true
}

// Put stores a summary under key.
func (c *Cache) Put(key [32]byte, s Summary) error {
	if c.db == nil {
		return ErrClosed
	}
	data, err := encMode.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put(key[:], data)
	})
}

// Len returns the number of stored summaries.
func (c *Cache) Len() int {
	if c.db == nil {
		return 0
	}
	n := 0
	c.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(bucketName).Stats().KeyN
		return nil
	})
	return n
}
