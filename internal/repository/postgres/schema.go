package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaStatements returns the DDL for the namespace tables.
//
// Root membership is a NULL parent_id/folder_id. The sibling-name indexes
// fold NULL into the nil UUID so two root-level entries with the same name
// collide as well.
func schemaStatements(t *TableNames) []string {
	return []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %[1]s (
				id UUID PRIMARY KEY,
				owner_id UUID NOT NULL,
				name TEXT NOT NULL,
				parent_id UUID REFERENCES %[1]s(id),
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`, t.Folders),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY,
				owner_id UUID NOT NULL,
				filename TEXT NOT NULL,
				folder_id UUID REFERENCES %s(id),
				size BIGINT NOT NULL,
				last_modified TIMESTAMPTZ NOT NULL,
				content_ref TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`, t.Files, t.Folders),
		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS idx_%[1]sfolders_sibling_name ON %[2]s
			(owner_id, COALESCE(parent_id, '00000000-0000-0000-0000-000000000000'::uuid), name)`, t.Prefix, t.Folders),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%[1]sfolders_owner_parent ON %[2]s (owner_id, parent_id)`, t.Prefix, t.Folders),
		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS idx_%[1]sfiles_sibling_name ON %[2]s
			(owner_id, COALESCE(folder_id, '00000000-0000-0000-0000-000000000000'::uuid), filename)`, t.Prefix, t.Files),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%[1]sfiles_owner_folder ON %[2]s (owner_id, folder_id)`, t.Prefix, t.Files),
	}
}

// EnsureSchema creates tables and indexes if they don't exist
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	for _, stmt := range schemaStatements(tables) {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// DropTables drops the namespace tables, files first to respect foreign keys
func DropTables(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	for _, table := range []string{tables.Files, tables.Folders} {
		if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE"); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	return nil
}

// ClearOwner deletes every file and folder of one owner
func ClearOwner(ctx context.Context, pool *pgxpool.Pool, tables *TableNames, ownerID uuid.UUID) error {
	if _, err := pool.Exec(ctx, "DELETE FROM "+tables.Files+" WHERE owner_id = $1", ownerID); err != nil {
		return fmt.Errorf("clear files: %w", err)
	}
	// parent_id references are checked at statement end, so one statement removes the whole forest
	if _, err := pool.Exec(ctx, "DELETE FROM "+tables.Folders+" WHERE owner_id = $1", ownerID); err != nil {
		return fmt.Errorf("clear folders: %w", err)
	}
	return nil
}
