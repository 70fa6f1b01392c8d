package pkgdb

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped whenever schema.sql changes. A mismatching cache is
// rebuilt since every row can be looked up again.
const schemaVersion = 1

const lockRetryDelay = 50 * time.Millisecond

// Entry is one cached lookup. An empty Package records that no package
// provides the executable.
type Entry struct {
	Executable string    `json:"executable" yaml:"executable"`
	Package    string    `json:"package,omitempty" yaml:"package,omitempty"`
	Source     string    `json:"source" yaml:"source"`
	LookedUpAt time.Time `json:"looked_up_at" yaml:"looked_up_at"`
}

// Cache persists lookup results in SQLite.
type Cache struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// OpenCache opens or creates the cache database at path.
func OpenCache(ctx context.Context, path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	cache := &Cache{db: db, path: path, lock: flock.New(path + ".lock")}
	if err := cache.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return cache, nil
}

// Path returns the database file location.
func (c *Cache) Path() string {
	return c.path
}

// Close closes the database.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

func (c *Cache) initSchema(ctx context.Context) error {
	return c.withLock(ctx, func() error {
		var tableExists int
		err := c.db.QueryRowContext(ctx,
			"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
		).Scan(&tableExists)
		if err != nil {
			return fmt.Errorf("check schema_version table: %w", err)
		}
		if tableExists == 1 {
			var version int
			err := c.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
			if err == nil && version == schemaVersion {
				return nil
			}
			if err != nil && !errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("read schema version: %w", err)
			}
			if _, err := c.db.ExecContext(ctx, "DROP TABLE IF EXISTS lookups; DROP TABLE schema_version"); err != nil {
				return fmt.Errorf("drop stale schema: %w", err)
			}
		}
		return c.createSchema(ctx)
	})
}

func (c *Cache) createSchema(ctx context.Context) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// withLock holds the cross-process write lock while fn runs.
func (c *Cache) withLock(ctx context.Context, fn func() error) error {
	ok, err := c.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("acquire cache lock: %w", err)
	}
	if !ok {
		return errors.New("acquire cache lock: not acquired")
	}
	defer func() { _ = c.lock.Unlock() }()
	return fn()
}

// Get returns the cached entry for exe if it is younger than ttl. A zero ttl
// never expires.
func (c *Cache) Get(ctx context.Context, exe string, ttl time.Duration) (Entry, bool, error) {
	row := c.db.QueryRowContext(ctx,
		"SELECT executable, package, source, looked_up_at FROM lookups WHERE executable = ?", exe)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("read cache entry: %w", err)
	}
	if ttl > 0 && time.Since(entry.LookedUpAt) > ttl {
		return entry, false, nil
	}
	return entry, true, nil
}

// Put stores a lookup result. pkg may be empty to record a negative answer.
func (c *Cache) Put(ctx context.Context, exe, pkg, source string) error {
	return c.put(ctx, Entry{Executable: exe, Package: pkg, Source: source, LookedUpAt: time.Now().UTC()})
}

func (c *Cache) put(ctx context.Context, entry Entry) error {
	return c.withLock(ctx, func() error {
		_, err := c.db.ExecContext(ctx,
			`INSERT INTO lookups (executable, package, source, looked_up_at) VALUES (?, ?, ?, ?)
             ON CONFLICT(executable) DO UPDATE SET
                package = excluded.package,
                source = excluded.source,
                looked_up_at = excluded.looked_up_at`,
			entry.Executable,
			nullableString(entry.Package),
			entry.Source,
			entry.LookedUpAt.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("write cache entry: %w", err)
		}
		return nil
	})
}

// Purge deletes every cached entry and returns how many were removed.
func (c *Cache) Purge(ctx context.Context) (int64, error) {
	var removed int64
	err := c.withLock(ctx, func() error {
		res, err := c.db.ExecContext(ctx, "DELETE FROM lookups")
		if err != nil {
			return fmt.Errorf("purge cache: %w", err)
		}
		removed, err = res.RowsAffected()
		return err
	})
	return removed, err
}

// Entries lists every cached entry ordered by executable.
func (c *Cache) Entries(ctx context.Context) ([]Entry, error) {
	rows, err := c.db.QueryContext(ctx,
		"SELECT executable, package, source, looked_up_at FROM lookups ORDER BY executable")
	if err != nil {
		return nil, fmt.Errorf("list cache entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cache entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func scanEntry(scanner interface{ Scan(dest ...any) error }) (Entry, error) {
	var (
		entry     Entry
		pkg       sql.NullString
		lookedRaw string
	)
	if err := scanner.Scan(&entry.Executable, &pkg, &entry.Source, &lookedRaw); err != nil {
		return Entry{}, err
	}
	entry.Package = pkg.String
	if ts, err := time.Parse(time.RFC3339Nano, lookedRaw); err == nil {
		entry.LookedUpAt = ts
	}
	return entry, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
