// Package cache stores serialized compiled chunks in SQLite, keyed by the
// sha256 of their source text, so repeated runs of an unchanged file skip
// compilation.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"

	"github.com/tusk-lang/tusk/pkg/bytecode"
)

var log = commonlog.GetLogger("tusk.cache")

// ErrMiss indicates no cached chunk exists for the given source.
var ErrMiss = errors.New("compiled chunk not found")

// Cache is a SQLite-backed store of compiled chunks.
type Cache struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (creating if needed) the cache database at path.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Busy timeout for concurrent toolchain invocations
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS chunks (
		source_hash TEXT PRIMARY KEY,
		build_id    TEXT NOT NULL,
		data        BLOB NOT NULL,
		created_at  TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Key returns the cache key for a source text.
func Key(source []byte) string {
	sum := sha256.Sum256(source)
	return hex.EncodeToString(sum[:])
}

// Put stores the compiled chunk for a source text, replacing any previous
// entry.
func (c *Cache) Put(source []byte, chunk *bytecode.Chunk) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := chunk.Serialize()
	if err != nil {
		return fmt.Errorf("serializing chunk: %w", err)
	}

	key := Key(source)
	_, err = c.db.Exec(
		`INSERT OR REPLACE INTO chunks (source_hash, build_id, data, created_at) VALUES (?, ?, ?, ?)`,
		key, uuid.NewString(), data, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("storing chunk: %w", err)
	}

	log.Debugf("cached chunk %s (%d bytes)", key[:12], len(data))
	return nil
}

// Get loads the compiled chunk for a source text. Returns ErrMiss if no
// entry exists.
func (c *Cache) Get(source []byte) (*bytecode.Chunk, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var data []byte
	err := c.db.QueryRow(
		`SELECT data FROM chunks WHERE source_hash = ?`, Key(source),
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("loading chunk: %w", err)
	}

	chunk, err := bytecode.Deserialize(data)
	if err != nil {
		return nil, fmt.Errorf("deserializing cached chunk: %w", err)
	}
	return chunk, nil
}
