package llm

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// CacheFileName is the database file created inside the cache directory.
const CacheFileName = "responses.db"

// Cache stores model answers keyed by CacheKey. Entries never expire.
type Cache struct {
	db     *sql.DB
	dbPath string
}

// CacheOptions configures Open.
type CacheOptions struct {
	// CreateIfNotExists creates the directory and database file when missing.
	CreateIfNotExists bool
}

// DefaultCacheOptions returns the options used by the CLI.
func DefaultCacheOptions() CacheOptions {
	return CacheOptions{CreateIfNotExists: true}
}

// OpenCache opens the response cache stored in dir.
func OpenCache(dir string, opts CacheOptions) (*Cache, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: cache directory not set", ErrUnavailable)
	}
	dbPath := filepath.Join(dir, CacheFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: cache not found at %s", ErrUnavailable, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check cache path: %w", err)
		}
	} else if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("%w: failed to create cache directory: %v", ErrUnavailable, err)
	}

	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	c := &Cache{db: db, dbPath: dbPath}
	if err := c.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create cache tables: %w", err)
	}
	return c, nil
}

// Path returns the database file location.
func (c *Cache) Path() string { return c.dbPath }

// Close closes the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

func (c *Cache) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS responses (
		key TEXT PRIMARY KEY,
		model TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := c.db.ExecContext(context.Background(), schema)
	return err
}

// Get returns the stored answer for key. ok is false on a miss.
func (c *Cache) Get(ctx context.Context, key string) (content string, ok bool, err error) {
	row := c.db.QueryRowContext(ctx, `SELECT content FROM responses WHERE key = ?`, key)
	if err := row.Scan(&content); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read cache: %w", err)
	}
	return content, true, nil
}

// Put stores an answer, replacing any previous one under the same key.
func (c *Cache) Put(ctx context.Context, key, model, content string) error {
	_, err := c.db.ExecContext(ctx, `
	INSERT INTO responses (key, model, content) VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET model = excluded.model, content = excluded.content, created_at = CURRENT_TIMESTAMP
	`, key, model, content)
	if err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	return nil
}

// Count returns the number of stored answers.
func (c *Cache) Count(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM responses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count cache entries: %w", err)
	}
	return n, nil
}

// CachingCompleter answers from the cache when it can and records every
// fresh answer.
type CachingCompleter struct {
	next  Completer
	cache *Cache
}

// NewCachingCompleter wraps next with cache.
func NewCachingCompleter(next Completer, cache *Cache) *CachingCompleter {
	return &CachingCompleter{next: next, cache: cache}
}

// Complete implements Completer.
func (c *CachingCompleter) Complete(ctx context.Context, req Request) (Response, error) {
	key := CacheKey(req)
	content, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		return Response{}, err
	}
	if ok {
		return Response{Content: content, Cached: true}, nil
	}

	resp, err := c.next.Complete(ctx, req)
	if err != nil {
		return Response{}, err
	}
	if err := c.cache.Put(ctx, key, req.Model, resp.Content); err != nil {
		return Response{}, err
	}
	return resp, nil
}
