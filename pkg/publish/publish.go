// Package publish persists published site snapshots. The SQLite store is the
// default backend the preview server publishes through; each publish appends
// a full-document snapshot so earlier versions remain recoverable.
package publish

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/goliatone/go-sitepreview/pkg/site"
)

// ErrNotFound is returned by Latest when a site has never been published.
var ErrNotFound = errors.New("publish: snapshot not found")

// Snapshot is one published version of a site document.
type Snapshot struct {
	SiteID      string
	Version     int
	Document    *site.Data
	Patch       map[string]any
	PublishedAt time.Time
}

// Store writes snapshots to a local SQLite database.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the snapshot database at path.
func New(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("publish: create data dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("publish: open database: %w", err)
	}
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("publish: configure database: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewWithDB wraps an already opened database handle.
func NewWithDB(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS site_snapshots (
    site_id TEXT NOT NULL,
    version INTEGER NOT NULL,
    document TEXT NOT NULL,
    patch TEXT NOT NULL,
    published_at TEXT NOT NULL,
    PRIMARY KEY (site_id, version)
);
`)
	if err != nil {
		return fmt.Errorf("publish: ensure schema: %w", err)
	}
	return nil
}

// Publish appends a new snapshot for siteID with the next version number.
// It implements the preview package's Publisher interface.
func (s *Store) Publish(ctx context.Context, siteID string, doc *site.Data, patch map[string]any) error {
	if siteID == "" {
		siteID = "default"
	}
	docPayload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("publish: encode document: %w", err)
	}
	patchPayload, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("publish: encode patch: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("publish: begin transaction: %w", err)
	}
	defer tx.Rollback()

	var version int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) + 1 FROM site_snapshots WHERE site_id = ?`, siteID,
	).Scan(&version); err != nil {
		return fmt.Errorf("publish: next version: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO site_snapshots (site_id, version, document, patch, published_at) VALUES (?, ?, ?, ?, ?)`,
		siteID, version, string(docPayload), string(patchPayload), time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("publish: insert snapshot: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("publish: commit: %w", err)
	}
	return nil
}

// Latest returns the most recent snapshot for siteID, or ErrNotFound.
func (s *Store) Latest(ctx context.Context, siteID string) (*Snapshot, error) {
	if siteID == "" {
		siteID = "default"
	}
	var (
		snap         Snapshot
		docPayload   string
		patchPayload string
		publishedAt  string
	)
	err := s.db.QueryRowContext(ctx, `
SELECT site_id, version, document, patch, published_at
FROM site_snapshots WHERE site_id = ?
ORDER BY version DESC LIMIT 1`, siteID,
	).Scan(&snap.SiteID, &snap.Version, &docPayload, &patchPayload, &publishedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("publish: load snapshot: %w", err)
	}

	snap.Document = &site.Data{}
	if err := json.Unmarshal([]byte(docPayload), snap.Document); err != nil {
		return nil, fmt.Errorf("publish: decode document: %w", err)
	}
	if err := json.Unmarshal([]byte(patchPayload), &snap.Patch); err != nil {
		return nil, fmt.Errorf("publish: decode patch: %w", err)
	}
	if ts, err := time.Parse(time.RFC3339, publishedAt); err == nil {
		snap.PublishedAt = ts
	}
	return &snap, nil
}

// Versions returns how many snapshots exist for siteID.
func (s *Store) Versions(ctx context.Context, siteID string) (int, error) {
	if siteID == "" {
		siteID = "default"
	}
	var n int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM site_snapshots WHERE site_id = ?`, siteID,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("publish: count snapshots: %w", err)
	}
	return n, nil
}
