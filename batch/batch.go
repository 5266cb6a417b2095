// Package batch parses many independent source units in parallel.
package batch

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"github.com/chazu/objectscript"
	"github.com/chazu/objectscript/cache"
	"github.com/chazu/objectscript/index"
	"github.com/chazu/objectscript/syntax"
	"github.com/chazu/objectscript/syntax/hash"
)

var log = commonlog.GetLogger("objectscript.batch")

// File is one unit of work.
type File struct {
	Path    string
	Dialect objectscript.Dialect
}

// Options configures ParseFiles. Cache and Index are optional.
type Options struct {
	// Workers bounds the number of files parsed at once; 0 means GOMAXPROCS.
	Workers int
	Mode    syntax.Mode
	Cache   *cache.Cache
	Index   *index.Index
	// Store, when set, writes a parsed file's symbols in place of
	// Index.Replace. Index is still consulted for cache staleness.
	Store func(path string, syms []index.Symbol) error
}

// Result is the outcome for one file. Document is nil when the summary came
// from the cache or the file could not be read.
type Result struct {
	Path        string
	Dialect     objectscript.Dialect
	Document    *objectscript.Document
	Diagnostics []syntax.Diagnostic
	Fingerprint [32]byte
	Symbols     int
	Cached      bool
	Err         error
}

// Errors counts error-severity diagnostics.
func (r *Result) Errors() int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Severity == syntax.SeverityError {
			n++
		}
	}
	return n
}

// ParseFiles reads and parses files on a bounded set of goroutines. Results
// are returned in input order. A file that cannot be read records the error
// in its Result; the returned error is only set when ctx is cancelled or
// the index cannot be written.
func ParseFiles(ctx context.Context, files []File, opts Options) ([]Result, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	results := make([]Result, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, f := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := parseOne(f, opts)
			results[i] = r
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}

	cached := 0
	for _, r := range results {
		if r.Cached {
			cached++
		}
	}
	log.Infof("parsed %d files (%d cached) on %d workers", len(files), cached, workers)
	return results, nil
}

func parseOne(f File, opts Options) (Result, error) {
	r := Result{Path: f.Path, Dialect: f.Dialect}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		r.Err = fmt.Errorf("reading %s: %w", f.Path, err)
		return r, nil
	}
	src := string(data)
	key := hash.Content(src, string(f.Dialect))

	if opts.Cache != nil {
		if s, ok := opts.Cache.Get(key); ok && !stale(opts.Index, f.Path, s.Symbols) {
			log.Debugf("cache hit %s", f.Path)
			r.Cached = true
			r.Diagnostics = s.SyntaxDiagnostics()
			r.Fingerprint = s.Fingerprint
			r.Symbols = s.Symbols
			return r, nil
		}
	}

	doc, diags := objectscript.ParseMode(src, f.Dialect, opts.Mode)
	syms := index.Extract(f.Path, doc)
	r.Document = doc
	r.Diagnostics = diags
	r.Fingerprint = doc.Fingerprint()
	r.Symbols = len(syms)
	log.Debugf("parsed %s: %d diagnostics, %d symbols", f.Path, len(diags), len(syms))

	store := opts.Store
	if store == nil && opts.Index != nil {
		store = opts.Index.Replace
	}
	if store != nil {
		if err := store(f.Path, syms); err != nil {
			return r, fmt.Errorf("indexing %s: %w", f.Path, err)
		}
	}
	if opts.Cache != nil {
		s := cache.NewSummary(string(f.Dialect), r.Fingerprint, diags, len(syms))
		if err := opts.Cache.Put(key, s); err != nil {
			log.Warningf("caching %s: %v", f.Path, err)
		}
	}
	return r, nil
}

// stale reports whether a cached file still needs a parse to repopulate
// the index.
func stale(x *index.Index, path string, symbols int) bool {
	if x == nil || symbols == 0 {
		return false
	}
	have, err := x.File(path)
	return err != nil || len(have) != symbols
}
