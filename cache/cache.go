// Package cache stores generated fragments in SQLite, keyed by the content of
// the descriptor and generation context that produced them.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fxamacker/cbor/v2"
	_ "modernc.org/sqlite"

	"github.com/chazu/bindgen/bindgen"
	"github.com/chazu/bindgen/metadata"
)

// formatVersion is part of every key. Bump it when emitted code changes shape.
const formatVersion = 2

var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("cache: failed to create CBOR enc mode: %v", err))
	}
	encMode = em
}

// Cache is a fragment store. It is safe for concurrent use.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at path.
func Open(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	// One connection, so the pragma below holds for every statement.
	db.SetMaxOpenConns(1)

	// Set busy timeout for concurrent generators
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS fragments (
		key TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		data BLOB NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close closes the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

// keyDoc is everything that determines a fragment.
type keyDoc struct {
	Version    int
	Descriptor *metadata.MethodDescriptor
	Namespace  string
	Umbrella   string
	Library    string
	Package    string
	Path       string
	Types      string
	Runtime    string
	Features   string
}

// Key returns the content address of d generated under gc.
func Key(d *metadata.MethodDescriptor, gc *bindgen.GenerationContext) (string, error) {
	doc := keyDoc{
		Version:    formatVersion,
		Descriptor: d,
		Namespace:  gc.Namespace,
		Umbrella:   gc.UmbrellaPrefix,
		Library:    gc.DefaultLibrary,
		Package:    gc.Package,
		Path:       gc.PackagePath,
		Types:      gc.TypesModule,
		Runtime:    gc.RuntimePath,
		Features:   fmt.Sprintf("%T%+v", gc.Features, gc.Features),
	}
	data, err := encMode.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encoding cache key: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Lookup implements bindgen.FragmentCache.
func (c *Cache) Lookup(d *metadata.MethodDescriptor, gc *bindgen.GenerationContext) (*bindgen.Fragment, bool, error) {
	key, err := Key(d, gc)
	if err != nil {
		return nil, false, err
	}

	var data []byte
	err = c.db.QueryRow("SELECT data FROM fragments WHERE key = ?", key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("querying fragment: %w", err)
	}

	var fr bindgen.Fragment
	if err := cbor.Unmarshal(data, &fr); err != nil {
		return nil, false, fmt.Errorf("cache: unmarshal fragment %s: %w", d.Name, err)
	}
	return &fr, true, nil
}

// Store implements bindgen.FragmentCache.
func (c *Cache) Store(d *metadata.MethodDescriptor, gc *bindgen.GenerationContext, fr *bindgen.Fragment) error {
	key, err := Key(d, gc)
	if err != nil {
		return err
	}
	data, err := encMode.Marshal(fr)
	if err != nil {
		return fmt.Errorf("encoding fragment: %w", err)
	}
	_, err = c.db.Exec("INSERT OR REPLACE INTO fragments (key, name, data) VALUES (?, ?, ?)", key, d.Name, data)
	if err != nil {
		return fmt.Errorf("saving fragment: %w", err)
	}
	return nil
}

// Len returns the number of stored fragments.
func (c *Cache) Len() (int, error) {
	var n int
	if err := c.db.QueryRow("SELECT COUNT(*) FROM fragments").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting fragments: %w", err)
	}
	return n, nil
}

// Clear removes every stored fragment.
func (c *Cache) Clear() error {
	if _, err := c.db.Exec("DELETE FROM fragments"); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	return nil
}

var _ bindgen.FragmentCache = (*Cache)(nil)
