// Package index stores workspace symbols in a SQLite database.
package index

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"
)

// ErrClosed is returned by operations on a closed index.
var ErrClosed = errors.New("index closed")

var log = commonlog.GetLogger("objectscript.index")

const schema = `
CREATE TABLE IF NOT EXISTS symbols (
	file       TEXT NOT NULL,
	name       TEXT NOT NULL,
	lname      TEXT NOT NULL,
	kind       TEXT NOT NULL,
	container  TEXT NOT NULL,
	start_off  INTEGER NOT NULL,
	end_off    INTEGER NOT NULL,
	line       INTEGER NOT NULL,
	detail     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS symbols_lname ON symbols(lname);
CREATE INDEX IF NOT EXISTS symbols_file ON symbols(file);
CREATE INDEX IF NOT EXISTS symbols_container ON symbols(container, name);
`

const columns = "name, kind, file, container, start_off, end_off, line, detail"

// Index is a symbol database. It is safe for concurrent use.
type Index struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// Open opens or creates the index at path. The path ":memory:" gives a
// private in-memory index.
func Open(path string) (*Index, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating index dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// An in-memory database lives per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}
	log.Debugf("opened index %s", path)
	return &Index{db: db, path: path}, nil
}

// Close closes the database connection.
func (x *Index) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.db == nil {
		return nil
	}
	err := x.db.Close()
	x.db = nil
	return err
}

// Replace swaps every symbol recorded for file with syms.
func (x *Index) Replace(file string, syms []Symbol) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.db == nil {
		return ErrClosed
	}

	tx, err := x.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM symbols WHERE file = ?", file); err != nil {
		return fmt.Errorf("clearing %s: %w", file, err)
	}
	stmt, err := tx.Prepare(`INSERT INTO symbols
		(name, lname, kind, file, container, start_off, end_off, line, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()
	for _, s := range syms {
		_, err := stmt.Exec(s.Name, strings.ToLower(s.Name), string(s.Kind), file,
			s.Container, s.Span.Start, s.Span.End, s.Line, s.Detail)
		if err != nil {
			return fmt.Errorf("inserting %s: %w", s.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	log.Debugf("indexed %d symbols from %s", len(syms), file)
	return nil
}

// Remove drops every symbol recorded for file.
func (x *Index) Remove(file string) error {
	return x.Replace(file, nil)
}

// Lookup returns the symbols named exactly name.
func (x *Index) Lookup(name string) ([]Symbol, error) {
	return x.query("SELECT "+columns+" FROM symbols WHERE name = ? ORDER BY file, start_off", name)
}

// LookupIn returns the symbols named name inside container, a routine or
// class name.
func (x *Index) LookupIn(container, name string) ([]Symbol, error) {
	return x.query("SELECT "+columns+" FROM symbols WHERE container = ? AND name = ? ORDER BY file, start_off",
		container, name)
}

// InContainer returns the symbols of a routine or class in file and
// source order.
func (x *Index) InContainer(container string) ([]Symbol, error) {
	return x.query("SELECT "+columns+" FROM symbols WHERE container = ? ORDER BY file, start_off", container)
}

// Search returns symbols whose name starts with prefix, ignoring case.
func (x *Index) Search(prefix string) ([]Symbol, error) {
	return x.query("SELECT "+columns+` FROM symbols WHERE lname LIKE ? ESCAPE '\'
		ORDER BY lname, file, start_off`, escapeLike(strings.ToLower(prefix))+"%")
}

// File returns the symbols recorded for file in source order.
func (x *Index) File(file string) ([]Symbol, error) {
	return x.query("SELECT "+columns+" FROM symbols WHERE file = ? ORDER BY start_off", file)
}

// Files returns the indexed file paths.
func (x *Index) Files() ([]string, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.db == nil {
		return nil, ErrClosed
	}
	rows, err := x.db.Query("SELECT DISTINCT file FROM symbols ORDER BY file")
	if err != nil {
		return nil, fmt.Errorf("querying files: %w", err)
	}
	defer rows.Close()

	var files []string
	for rows.Next() {
		var f string
		if err := rows.Scan(&f); err != nil {
			return nil, fmt.Errorf("scanning file: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

func (x *Index) query(q string, args ...any) ([]Symbol, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.db == nil {
		return nil, ErrClosed
	}
	rows, err := x.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying symbols: %w", err)
	}
	defer rows.Close()

	var out []Symbol
	for rows.Next() {
		var s Symbol
		var kind string
		if err := rows.Scan(&s.Name, &kind, &s.File, &s.Container,
			&s.Span.Start, &s.Span.End, &s.Line, &s.Detail); err != nil {
			return nil, fmt.Errorf("scanning symbol: %w", err)
		}
		s.Kind = Kind(kind)
		out = append(out, s)
	}
	return out, rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
