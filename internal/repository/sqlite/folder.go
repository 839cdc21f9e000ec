package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"cirrus/internal/domain"
	models "cirrus/internal/domain/models/namespace"
	nsRepo "cirrus/internal/domain/repositories/namespace"
)

const folderColumns = "id, owner_id, parent_id, name, created_at, updated_at"

// SQLiteFolderRepository implements the FolderRepository interface
type SQLiteFolderRepository struct {
	db     *sql.DB
	tables *TableNames
	logger *slog.Logger
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *RepositoryConfig) nsRepo.FolderRepository {
	return &SQLiteFolderRepository{
		db:     config.DB,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create creates a new folder
func (r *SQLiteFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, owner_id, parent_id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, r.tables.Folders)

	executor := getExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		folder.ID,
		folder.OwnerID,
		folder.ParentID,
		folder.Name,
		toNanos(folder.CreatedAt),
		toNanos(folder.UpdatedAt),
	)
	if err != nil {
		return r.writeError(ctx, "create folder", folder, err)
	}

	return nil
}

// GetByID retrieves a folder by ID
func (r *SQLiteFolderRepository) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE id = ? AND owner_id = ?
	`, folderColumns, r.tables.Folders)

	folder, err := scanFolder(getExecutor(ctx, r.db).QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		return nil, storageError("get folder", err)
	}

	return folder, nil
}

// FindByName returns the child of parentID named name, nil if there is none
func (r *SQLiteFolderRepository) FindByName(ctx context.Context, ownerID uuid.UUID, parentID *uuid.UUID, name string) (*models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE owner_id = ? AND name = ? AND parent_id IS ?
	`, folderColumns, r.tables.Folders)

	folder, err := scanFolder(getExecutor(ctx, r.db).QueryRowContext(ctx, query, ownerID, name, parentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, storageError("find folder by name", err)
	}

	return folder, nil
}

// Update updates a folder's name and parent
func (r *SQLiteFolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET parent_id = ?, name = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?
	`, r.tables.Folders)

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		folder.ParentID,
		folder.Name,
		toNanos(folder.UpdatedAt),
		folder.ID,
		folder.OwnerID,
	)
	if err != nil {
		return r.writeError(ctx, "update folder", folder, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return storageError("update folder", err)
	}
	if n == 0 {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
	}

	return nil
}

// ListChildren lists immediate child folders
func (r *SQLiteFolderRepository) ListChildren(ctx context.Context, ownerID uuid.UUID, parentID *uuid.UUID) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE owner_id = ? AND parent_id IS ?
		ORDER BY name ASC, id ASC
	`, folderColumns, r.tables.Folders)

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, ownerID, parentID)
	if err != nil {
		return nil, storageError("list folder children", err)
	}
	defer rows.Close()

	folders := []models.Folder{}
	for rows.Next() {
		folder, err := scanFolder(rows)
		if err != nil {
			return nil, storageError("scan folder", err)
		}
		folders = append(folders, *folder)
	}

	if err := rows.Err(); err != nil {
		return nil, storageError("iterate folders", err)
	}

	return folders, nil
}

// Closure returns id plus every descendant
func (r *SQLiteFolderRepository) Closure(ctx context.Context, ownerID, id uuid.UUID) ([]uuid.UUID, error) {
	query := fmt.Sprintf(`
		WITH RECURSIVE subtree(id) AS (
			SELECT id FROM %[1]s WHERE id = ?1 AND owner_id = ?2
			UNION
			SELECT f.id FROM %[1]s f
			JOIN subtree s ON f.parent_id = s.id
			WHERE f.owner_id = ?2
		)
		SELECT id FROM subtree
	`, r.tables.Folders)

	return r.queryIDs(ctx, "folder closure", query, id, ownerID)
}

// Ancestors returns id and all of its ancestors, in no particular order
func (r *SQLiteFolderRepository) Ancestors(ctx context.Context, ownerID, id uuid.UUID) ([]uuid.UUID, error) {
	query := fmt.Sprintf(`
		WITH RECURSIVE chain(id, parent_id) AS (
			SELECT id, parent_id FROM %[1]s WHERE id = ?1 AND owner_id = ?2
			UNION
			SELECT f.id, f.parent_id FROM %[1]s f
			JOIN chain c ON f.id = c.parent_id
			WHERE f.owner_id = ?2
		)
		SELECT id FROM chain
	`, r.tables.Folders)

	return r.queryIDs(ctx, "folder ancestors", query, id, ownerID)
}

// Lock is a no-op: transactions begin IMMEDIATE, so the writer already holds
// the database lock.
func (r *SQLiteFolderRepository) Lock(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) error {
	return nil
}

// DeleteMany deletes the given folders. Foreign keys are deferred to commit
// so batches may remove a parent before its children.
func (r *SQLiteFolderRepository) DeleteMany(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	executor := getExecutor(ctx, r.db)
	if txFromContext(ctx) != nil {
		if _, err := executor.ExecContext(ctx, "PRAGMA defer_foreign_keys = ON"); err != nil {
			return 0, storageError("defer foreign keys", err)
		}
	}

	var total int64
	for _, batch := range chunk(ids, batchSize) {
		placeholders, args := inClause(batch)
		query := fmt.Sprintf(`
			DELETE FROM %s
			WHERE owner_id = ? AND id IN (%s)
		`, r.tables.Folders, placeholders)

		result, err := executor.ExecContext(ctx, query, append([]any{ownerID}, args...)...)
		if err != nil {
			if isForeignKeyError(err) {
				return 0, fmt.Errorf("folder still referenced: %w", domain.ErrConflict)
			}
			return 0, storageError("delete folders", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return 0, storageError("delete folders", err)
		}
		total += n
	}

	return total, nil
}

func (r *SQLiteFolderRepository) queryIDs(ctx context.Context, op, query string, args ...any) ([]uuid.UUID, error) {
	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageError(op, err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, storageError(op, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError(op, err)
	}
	return ids, nil
}

func (r *SQLiteFolderRepository) writeError(ctx context.Context, op string, folder *models.Folder, err error) error {
	switch {
	case isDuplicateError(err):
		conflict := &domain.ConflictError{
			Message:      fmt.Sprintf("a folder named %q already exists in this location", folder.Name),
			ResourceType: "folder",
		}
		if existing, findErr := r.FindByName(ctx, folder.OwnerID, folder.ParentID, folder.Name); findErr == nil && existing != nil {
			conflict.ResourceID = existing.ID.String()
		}
		return conflict
	case isForeignKeyError(err):
		return fmt.Errorf("parent folder: %w", domain.ErrNotFound)
	default:
		return storageError(op, err)
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFolder(row rowScanner) (*models.Folder, error) {
	var folder models.Folder
	var created, updated int64
	err := row.Scan(
		&folder.ID,
		&folder.OwnerID,
		&folder.ParentID,
		&folder.Name,
		&created,
		&updated,
	)
	if err != nil {
		return nil, err
	}
	folder.CreatedAt = fromNanos(created)
	folder.UpdatedAt = fromNanos(updated)
	return &folder, nil
}
