// Package cache is a content-addressed build cache: it hashes a grammar
// document (plus the build options that affect its output) to a key, and
// persists the optimized ir.Grammar for that key so repeat builds of an
// unchanged grammar skip the builder/optimizer pipeline entirely. Adapted
// from tunaq's server/dao/sqlite package (same database/sql + driver
// registration pattern, same migration-on-open style).
package cache

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/dekarrin/rezi"
	_ "modernc.org/sqlite"
	"golang.org/x/crypto/blake2b"
)

// ErrNotFound is returned by Get when no entry exists for the given key.
var ErrNotFound = errors.New("cache: not found")

// Key is a content-addressed build cache key: blake2b-256 of the grammar
// document bytes plus the build options that affect the emitted output.
type Key [32]byte

// KeyFor hashes doc and the options that influence build output (the
// starting rule name, max depth, and the safe/id-mode policy flags) into a
// single cache key. Two identical documents built with different options
// must not collide.
func KeyFor(doc []byte, start string, maxDepth int, safeOnly, idMode bool) (Key, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return Key{}, fmt.Errorf("cache: init hash: %w", err)
	}
	h.Write(doc)
	fmt.Fprintf(h, "\x00start=%s\x00depth=%d\x00safe=%v\x00ids=%v", start, maxDepth, safeOnly, idMode)

	var k Key
	copy(k[:], h.Sum(nil))
	return k, nil
}

// Entry is one stored build result.
type Entry struct {
	Key         Key
	GrammarBlob []byte // rezi-encoded, optimized ir.Grammar
	SourceSize  int
	CreatedAt   time.Time
}

// DB is a sqlite-backed build cache.
type DB struct {
	db *sql.DB
}

// Open opens (creating if needed) the sqlite database at path.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, wrapDBError(err)
	}

	d := &DB{db: sqlDB}
	if err := d.init(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *DB) init() error {
	_, err := d.db.Exec(`CREATE TABLE IF NOT EXISTS build_cache (
		key TEXT NOT NULL PRIMARY KEY,
		grammar_blob BLOB NOT NULL,
		source_size INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);`)
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

// Close closes the underlying database handle.
func (d *DB) Close() error {
	return d.db.Close()
}

// Put stores an optimized grammar (already rezi-encoded by the caller via
// EncodeGrammar) under key, replacing any prior entry.
func (d *DB) Put(ctx context.Context, key Key, grammarBlob []byte, sourceSize int) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO build_cache (key, grammar_blob, source_size, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET grammar_blob = excluded.grammar_blob,
		     source_size = excluded.source_size, created_at = excluded.created_at`,
		hexKey(key), grammarBlob, sourceSize, time.Now().Unix(),
	)
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

// Get retrieves the cached entry for key, or ErrNotFound.
func (d *DB) Get(ctx context.Context, key Key) (Entry, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT grammar_blob, source_size, created_at FROM build_cache WHERE key = ?`,
		hexKey(key),
	)

	var e Entry
	e.Key = key
	var createdUnix int64
	if err := row.Scan(&e.GrammarBlob, &e.SourceSize, &createdUnix); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, wrapDBError(err)
	}
	e.CreatedAt = time.Unix(createdUnix, 0)
	return e, nil
}

// EncodeGrammar serializes an optimized grammar with rezi for storage.
func EncodeGrammar(g interface{}) []byte {
	return rezi.EncBinary(g)
}

// DecodeGrammar deserializes a rezi-encoded grammar blob into target.
func DecodeGrammar(blob []byte, target interface{}) error {
	n, err := rezi.DecBinary(blob, target)
	if err != nil {
		return fmt.Errorf("cache: rezi decode: %w", err)
	}
	if n != len(blob) {
		return fmt.Errorf("cache: rezi decode consumed %d/%d bytes", n, len(blob))
	}
	return nil
}

func hexKey(k Key) string {
	return hex.EncodeToString(k[:])
}

func wrapDBError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("cache: %w", err)
}
