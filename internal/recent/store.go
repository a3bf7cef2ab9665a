package recent

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; users delete the database to adopt the new schema.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the
// expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// prefLastImportDir is the preferences key for the last import destination.
const prefLastImportDir = "last_import_dir"

// Library is one remembered library archive.
type Library struct {
	Path       string
	Name       string
	LastOpened time.Time
	OpenCount  int64
}

// Store manages host preference persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the preferences database under stateDir.
func Open(stateDir string) (*Store, error) {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure state directory: %w", err)
	}

	dbPath := filepath.Join(stateDir, "stash.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	err = s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
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
	return tx.Commit()
}

// Touch records that a library was opened or mutated now, creating or
// refreshing its row. An empty name keeps whatever name is already stored.
func (s *Store) Touch(ctx context.Context, archivePath, name string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO libraries (path, name, last_opened, open_count)
         VALUES (?, ?, ?, 1)
         ON CONFLICT(path) DO UPDATE SET
             name = CASE WHEN excluded.name = '' THEN name ELSE excluded.name END,
             last_opened = excluded.last_opened,
             open_count = open_count + 1`,
		archivePath, name, now,
	)
	if err != nil {
		return fmt.Errorf("touch library: %w", err)
	}
	return nil
}

// Forget removes a library from the recent list.
func (s *Store) Forget(ctx context.Context, archivePath string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM libraries WHERE path = ?", archivePath); err != nil {
		return fmt.Errorf("forget library: %w", err)
	}
	return nil
}

// Recent returns up to limit libraries, most recently opened first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Library, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT path, name, last_opened, open_count FROM libraries ORDER BY last_opened DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent libraries: %w", err)
	}
	defer rows.Close()

	var out []Library
	for rows.Next() {
		var lib Library
		var opened string
		if err := rows.Scan(&lib.Path, &lib.Name, &opened, &lib.OpenCount); err != nil {
			return nil, fmt.Errorf("scan library row: %w", err)
		}
		if ts, parseErr := time.Parse(time.RFC3339Nano, opened); parseErr == nil {
			lib.LastOpened = ts
		}
		out = append(out, lib)
	}
	return out, rows.Err()
}

// MostRecent returns the most recently opened library, or nil when the list
// is empty.
func (s *Store) MostRecent(ctx context.Context) (*Library, error) {
	libs, err := s.Recent(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(libs) == 0 {
		return nil, nil
	}
	return &libs[0], nil
}

// SetLastImportDir remembers the destination of the latest import.
func (s *Store) SetLastImportDir(ctx context.Context, dir string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO preferences (key, value) VALUES (?, ?)
         ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		prefLastImportDir, dir,
	)
	if err != nil {
		return fmt.Errorf("set last import dir: %w", err)
	}
	return nil
}

// LastImportDir returns the remembered import destination, or "" when none
// has been recorded.
func (s *Store) LastImportDir(ctx context.Context) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM preferences WHERE key = ?", prefLastImportDir,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read last import dir: %w", err)
	}
	return value, nil
}
