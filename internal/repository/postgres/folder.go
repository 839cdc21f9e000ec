package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cirrus/internal/domain"
	models "cirrus/internal/domain/models/namespace"
	nsRepo "cirrus/internal/domain/repositories/namespace"
)

const folderColumns = "id, owner_id, parent_id, name, created_at, updated_at"

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *RepositoryConfig) nsRepo.FolderRepository {
	return &PostgresFolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create creates a new folder
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, owner_id, parent_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, r.tables.Folders)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		folder.ID,
		folder.OwnerID,
		folder.ParentID,
		folder.Name,
		folder.CreatedAt,
		folder.UpdatedAt,
	)
	if err != nil {
		return r.writeError(ctx, "create folder", folder, err)
	}

	return nil
}

// GetByID retrieves a folder by ID
func (r *PostgresFolderRepository) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND owner_id = $2
	`, folderColumns, r.tables.Folders)

	executor := GetExecutor(ctx, r.pool)
	folder, err := scanFolder(executor.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		return nil, storageError("get folder", err)
	}

	return folder, nil
}

// FindByName returns the child of parentID named name, nil if there is none
func (r *PostgresFolderRepository) FindByName(ctx context.Context, ownerID uuid.UUID, parentID *uuid.UUID, name string) (*models.Folder, error) {
	var query string
	var args []any

	if parentID == nil {
		query = fmt.Sprintf(`
			SELECT %s
			FROM %s
			WHERE owner_id = $1 AND name = $2 AND parent_id IS NULL
		`, folderColumns, r.tables.Folders)
		args = append(args, ownerID, name)
	} else {
		query = fmt.Sprintf(`
			SELECT %s
			FROM %s
			WHERE owner_id = $1 AND name = $2 AND parent_id = $3
		`, folderColumns, r.tables.Folders)
		args = append(args, ownerID, name, *parentID)
	}

	executor := GetExecutor(ctx, r.pool)
	folder, err := scanFolder(executor.QueryRow(ctx, query, args...))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, nil // Not found, not an error
		}
		return nil, storageError("find folder by name", err)
	}

	return folder, nil
}

// Update updates a folder's name and parent
func (r *PostgresFolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET parent_id = $1, name = $2, updated_at = $3
		WHERE id = $4 AND owner_id = $5
	`, r.tables.Folders)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		folder.ParentID,
		folder.Name,
		folder.UpdatedAt,
		folder.ID,
		folder.OwnerID,
	)
	if err != nil {
		return r.writeError(ctx, "update folder", folder, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
	}

	return nil
}

// ListChildren lists immediate child folders
func (r *PostgresFolderRepository) ListChildren(ctx context.Context, ownerID uuid.UUID, parentID *uuid.UUID) ([]models.Folder, error) {
	var query string
	var args []any

	if parentID == nil {
		query = fmt.Sprintf(`
			SELECT %s
			FROM %s
			WHERE owner_id = $1 AND parent_id IS NULL
			ORDER BY name COLLATE "C" ASC, id ASC
		`, folderColumns, r.tables.Folders)
		args = append(args, ownerID)
	} else {
		query = fmt.Sprintf(`
			SELECT %s
			FROM %s
			WHERE owner_id = $1 AND parent_id = $2
			ORDER BY name COLLATE "C" ASC, id ASC
		`, folderColumns, r.tables.Folders)
		args = append(args, ownerID, *parentID)
	}

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
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

// Closure returns id plus every descendant using a recursive CTE.
// UNION (not UNION ALL) terminates even on corrupted, cyclic data.
func (r *PostgresFolderRepository) Closure(ctx context.Context, ownerID, id uuid.UUID) ([]uuid.UUID, error) {
	query := fmt.Sprintf(`
		WITH RECURSIVE subtree AS (
			SELECT id FROM %[1]s WHERE id = $1 AND owner_id = $2
			UNION
			SELECT f.id FROM %[1]s f
			JOIN subtree s ON f.parent_id = s.id
			WHERE f.owner_id = $2
		)
		SELECT id FROM subtree
	`, r.tables.Folders)

	return r.queryIDs(ctx, "folder closure", query, id, ownerID)
}

// Ancestors returns id and all of its ancestors, in no particular order
func (r *PostgresFolderRepository) Ancestors(ctx context.Context, ownerID, id uuid.UUID) ([]uuid.UUID, error) {
	query := fmt.Sprintf(`
		WITH RECURSIVE chain AS (
			SELECT id, parent_id FROM %[1]s WHERE id = $1 AND owner_id = $2
			UNION
			SELECT f.id, f.parent_id FROM %[1]s f
			JOIN chain c ON f.id = c.parent_id
			WHERE f.owner_id = $2
		)
		SELECT id FROM chain
	`, r.tables.Folders)

	return r.queryIDs(ctx, "folder ancestors", query, id, ownerID)
}

// Lock takes row locks on the given folders in id order, so two transactions
// locking overlapping sets cannot deadlock each other.
func (r *PostgresFolderRepository) Lock(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		SELECT id FROM %s
		WHERE owner_id = $1 AND id = ANY($2)
		ORDER BY id
		FOR UPDATE
	`, r.tables.Folders)

	_, err := r.queryIDs(ctx, "lock folders", query, ownerID, ids)
	return err
}

// DeleteMany deletes the given folders in one statement. parent_id
// references are checked at statement end, so a parent and its children may
// go together.
func (r *PostgresFolderRepository) DeleteMany(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE owner_id = $1 AND id = ANY($2)
	`, r.tables.Folders)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, ownerID, ids)
	if err != nil {
		if IsPgForeignKeyError(err) {
			return 0, fmt.Errorf("folder still referenced: %w", domain.ErrConflict)
		}
		return 0, storageError("delete folders", err)
	}

	return result.RowsAffected(), nil
}

func (r *PostgresFolderRepository) queryIDs(ctx context.Context, op, query string, args ...any) ([]uuid.UUID, error) {
	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, storageError(op, err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, storageError(op, err)
	}
	return ids, nil
}

// writeError classifies an insert/update failure: a duplicate sibling name
// becomes a ConflictError naming the existing folder, a vanished parent
// becomes not found.
func (r *PostgresFolderRepository) writeError(ctx context.Context, op string, folder *models.Folder, err error) error {
	switch {
	case IsPgDuplicateError(err):
		conflict := &domain.ConflictError{
			Message:      fmt.Sprintf("a folder named %q already exists in this location", folder.Name),
			ResourceType: "folder",
		}
		// the failed statement aborted any surrounding transaction, so look up
		// the winner only outside of one
		if txFromContext(ctx) == nil {
			if existing, findErr := r.FindByName(ctx, folder.OwnerID, folder.ParentID, folder.Name); findErr == nil && existing != nil {
				conflict.ResourceID = existing.ID.String()
			}
		}
		return conflict
	case IsPgForeignKeyError(err):
		return fmt.Errorf("parent folder: %w", domain.ErrNotFound)
	default:
		return storageError(op, err)
	}
}

func scanFolder(row pgx.Row) (*models.Folder, error) {
	var folder models.Folder
	err := row.Scan(
		&folder.ID,
		&folder.OwnerID,
		&folder.ParentID,
		&folder.Name,
		&folder.CreatedAt,
		&folder.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &folder, nil
}
