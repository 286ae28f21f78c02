// Package sqlitecache persists preview edit patches in a local SQLite
// database so a session survives process restarts. It satisfies the preview
// package's Cache interface and adds Load for session resume.
package sqlitecache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by Load when no patch is stored under the key.
var ErrNotFound = errors.New("sqlitecache: patch not found")

// Cache stores one serialized patch per cache key.
type Cache struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func New(path string) (*Cache, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("sqlitecache: create data dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlitecache: open database: %w", err)
	}
	// WAL mode lets the preview server read while a save is in flight, and
	// the busy timeout makes writers wait instead of failing with
	// SQLITE_BUSY. synchronous=NORMAL is safe under WAL.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlitecache: configure database: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	c := &Cache{db: db}
	if err := c.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// NewWithDB wraps an already opened database handle. The caller owns the
// handle's lifecycle; Close is still safe to call.
func NewWithDB(db *sql.DB) (*Cache, error) {
	c := &Cache{db: db}
	if err := c.ensureSchema(); err != nil {
		return nil, err
	}
	return c, nil
}

// Close closes the underlying database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

func (c *Cache) ensureSchema() error {
	_, err := c.db.Exec(`
CREATE TABLE IF NOT EXISTS preview_patches (
    cache_key TEXT PRIMARY KEY,
    patch TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
`)
	if err != nil {
		return fmt.Errorf("sqlitecache: ensure schema: %w", err)
	}
	return nil
}

// Save upserts the patch for key. An empty patch is stored as an empty
// object rather than deleted, so Load can distinguish "no pending edits"
// from "no session".
func (c *Cache) Save(key string, patch map[string]any) error {
	payload, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("sqlitecache: encode patch: %w", err)
	}
	_, err = c.db.Exec(`
INSERT INTO preview_patches (cache_key, patch, updated_at) VALUES (?, ?, ?)
ON CONFLICT(cache_key) DO UPDATE SET patch = excluded.patch, updated_at = excluded.updated_at
`, key, string(payload), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("sqlitecache: save patch: %w", err)
	}
	return nil
}

// Load returns the stored patch for key, or ErrNotFound.
func (c *Cache) Load(key string) (map[string]any, error) {
	var payload string
	err := c.db.QueryRow(`SELECT patch FROM preview_patches WHERE cache_key = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlitecache: load patch: %w", err)
	}
	var patch map[string]any
	if err := json.Unmarshal([]byte(payload), &patch); err != nil {
		return nil, fmt.Errorf("sqlitecache: decode patch: %w", err)
	}
	return patch, nil
}

// Delete removes the entry for key. Deleting an absent key is not an error.
func (c *Cache) Delete(key string) error {
	if _, err := c.db.Exec(`DELETE FROM preview_patches WHERE cache_key = ?`, key); err != nil {
		return fmt.Errorf("sqlitecache: delete patch: %w", err)
	}
	return nil
}
