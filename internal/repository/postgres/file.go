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

const fileColumns = "id, owner_id, filename, folder_id, size, last_modified, content_ref, created_at"

// PostgresFileRepository implements the FileRepository interface
type PostgresFileRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewFileRepository creates a new file repository
func NewFileRepository(config *RepositoryConfig) nsRepo.FileRepository {
	return &PostgresFileRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create creates new file metadata
func (r *PostgresFileRepository) Create(ctx context.Context, file *models.File) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, owner_id, filename, folder_id, size, last_modified, content_ref, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, r.tables.Files)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		file.ID,
		file.OwnerID,
		file.Filename,
		file.FolderID,
		file.Size,
		file.LastModified,
		file.ContentRef,
		file.CreatedAt,
	)
	if err != nil {
		switch {
		case IsPgDuplicateError(err):
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a file named %q already exists in this location", file.Filename),
				ResourceType: "file",
			}
		case IsPgForeignKeyError(err):
			return fmt.Errorf("target folder: %w", domain.ErrNotFound)
		default:
			return storageError("create file", err)
		}
	}

	return nil
}

// GetByID retrieves file metadata by ID
func (r *PostgresFileRepository) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*models.File, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND owner_id = $2
	`, fileColumns, r.tables.Files)

	executor := GetExecutor(ctx, r.pool)
	file, err := scanFile(executor.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
		}
		return nil, storageError("get file", err)
	}

	return file, nil
}

// FindByName returns the file named filename in folderID, nil if there is none
func (r *PostgresFileRepository) FindByName(ctx context.Context, ownerID uuid.UUID, folderID *uuid.UUID, filename string) (*models.File, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE owner_id = $1 AND filename = $2 AND folder_id IS NOT DISTINCT FROM $3
	`, fileColumns, r.tables.Files)

	executor := GetExecutor(ctx, r.pool)
	file, err := scanFile(executor.QueryRow(ctx, query, ownerID, filename, folderID))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, nil
		}
		return nil, storageError("find file by name", err)
	}

	return file, nil
}

// ListByFolder lists files directly inside folderID
func (r *PostgresFileRepository) ListByFolder(ctx context.Context, ownerID uuid.UUID, folderID *uuid.UUID) ([]models.File, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE owner_id = $1 AND folder_id IS NOT DISTINCT FROM $2
		ORDER BY filename COLLATE "C" ASC, id ASC
	`, fileColumns, r.tables.Files)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, ownerID, folderID)
	if err != nil {
		return nil, storageError("list files", err)
	}
	defer rows.Close()

	files := []models.File{}
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, storageError("scan file", err)
		}
		files = append(files, *file)
	}

	if err := rows.Err(); err != nil {
		return nil, storageError("iterate files", err)
	}

	return files, nil
}

// ContentRefsByFolders returns content refs of every file inside the given folders
func (r *PostgresFileRepository) ContentRefsByFolders(ctx context.Context, ownerID uuid.UUID, folderIDs []uuid.UUID) ([]string, error) {
	if len(folderIDs) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT content_ref FROM %s
		WHERE owner_id = $1 AND folder_id = ANY($2)
	`, r.tables.Files)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, ownerID, folderIDs)
	if err != nil {
		return nil, storageError("list content refs", err)
	}

	refs, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, storageError("list content refs", err)
	}
	return refs, nil
}

// Delete deletes a single file
func (r *PostgresFileRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1 AND owner_id = $2
	`, r.tables.Files)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, ownerID)
	if err != nil {
		return storageError("delete file", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// DeleteByFolders deletes every file inside the given folders
func (r *PostgresFileRepository) DeleteByFolders(ctx context.Context, ownerID uuid.UUID, folderIDs []uuid.UUID) (int64, error) {
	if len(folderIDs) == 0 {
		return 0, nil
	}

	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE owner_id = $1 AND folder_id = ANY($2)
	`, r.tables.Files)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, ownerID, folderIDs)
	if err != nil {
		return 0, storageError("delete files by folder", err)
	}

	return result.RowsAffected(), nil
}

func scanFile(row pgx.Row) (*models.File, error) {
	var file models.File
	err := row.Scan(
		&file.ID,
		&file.OwnerID,
		&file.Filename,
		&file.FolderID,
		&file.Size,
		&file.LastModified,
		&file.ContentRef,
		&file.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &file, nil
}
