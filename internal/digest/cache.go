package digest

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Cache memoizes file digests in a SQLite database keyed by absolute path,
// size, and modification time. A file that changed on disk misses the cache
// and is rehashed, so a cached digest never diverges from the bytes.
type Cache struct {
	db *sql.DB
}

// OpenCache opens or creates the digest cache at the given path,
// creating parent directories as needed.
func OpenCache(path string) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating digest cache directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening digest cache: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	schema := `
		CREATE TABLE IF NOT EXISTS digests (
			path TEXT NOT NULL,
			size INTEGER NOT NULL,
			mtime INTEGER NOT NULL,
			sha256 TEXT NOT NULL,
			PRIMARY KEY (path, size, mtime)
		);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating digest cache schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// File returns the sha256 digest of path, from cache when size and mtime
// still match, otherwise freshly computed and stored.
func (c *Cache) File(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	size := info.Size()
	mtime := info.ModTime().Unix()

	var cached string
	err = c.db.QueryRow(
		`SELECT sha256 FROM digests WHERE path = ? AND size = ? AND mtime = ?`,
		path, size, mtime,
	).Scan(&cached)
	if err == nil {
		return cached, nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("querying digest cache: %w", err)
	}

	d, err := File(path)
	if err != nil {
		return "", err
	}

	// Stale rows for the same path are superseded, not needed for lookups.
	if _, err := c.db.Exec(
		`INSERT OR REPLACE INTO digests (path, size, mtime, sha256) VALUES (?, ?, ?, ?)`,
		path, size, mtime, d,
	); err != nil {
		return "", fmt.Errorf("storing digest: %w", err)
	}
	return d, nil
}
