// Package sqlite is the embedded namespace store: a single database file,
// one writer at a time, no server to run. It backs single-node deployments
// and the test suite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	DB     *sql.DB
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds dynamically prefixed table names
type TableNames struct {
	Prefix  string
	Folders string
	Files   string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Prefix:  prefix,
		Folders: prefix + "folders",
		Files:   prefix + "files",
	}
}

// Open opens (or creates) the database at path.
//
// Every connection gets foreign keys, WAL and a busy timeout; transactions
// start with BEGIN IMMEDIATE so the write lock is taken up front instead of
// on the first write, which would otherwise let two readers-turned-writers
// deadlock.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	params := url.Values{}
	params.Add("_pragma", "foreign_keys(1)")
	params.Add("_pragma", "journal_mode(WAL)")
	params.Add("_pragma", "busy_timeout(5000)")
	params.Set("_txlock", "immediate")
	dsn := "file:" + path + "?" + params.Encode()

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return db, nil
}

// EnsureSchema creates tables and indexes if they don't exist
func EnsureSchema(ctx context.Context, db *sql.DB, t *TableNames) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %[1]s (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			name TEXT NOT NULL,
			parent_id TEXT REFERENCES %[1]s(id),
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)`, t.Folders),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			filename TEXT NOT NULL,
			folder_id TEXT REFERENCES %s(id),
			size INTEGER NOT NULL,
			last_modified INTEGER NOT NULL,
			content_ref TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`, t.Files, t.Folders),
		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS idx_%[1]sfolders_sibling_name ON %[2]s
			(owner_id, COALESCE(parent_id, ''), name)`, t.Prefix, t.Folders),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%[1]sfolders_owner_parent ON %[2]s (owner_id, parent_id)`, t.Prefix, t.Folders),
		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS idx_%[1]sfiles_sibling_name ON %[2]s
			(owner_id, COALESCE(folder_id, ''), filename)`, t.Prefix, t.Files),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%[1]sfiles_owner_folder ON %[2]s (owner_id, folder_id)`, t.Prefix, t.Files),
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// DropTables drops the namespace tables, files first
func DropTables(ctx context.Context, db *sql.DB, t *TableNames) error {
	for _, table := range []string{t.Files, t.Folders} {
		if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	return nil
}

// ClearOwner deletes every file and folder of ownerID
func ClearOwner(ctx context.Context, db *sql.DB, t *TableNames, ownerID uuid.UUID) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "PRAGMA defer_foreign_keys = ON"); err != nil {
		return fmt.Errorf("defer foreign keys: %w", err)
	}
	for _, table := range []string{t.Files, t.Folders} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE owner_id = ?", ownerID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return tx.Commit()
}
