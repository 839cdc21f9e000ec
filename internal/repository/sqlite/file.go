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

const fileColumns = "id, owner_id, filename, folder_id, size, last_modified, content_ref, created_at"

// SQLiteFileRepository implements the FileRepository interface
type SQLiteFileRepository struct {
	db     *sql.DB
	tables *TableNames
	logger *slog.Logger
}

// NewFileRepository creates a new file repository
func NewFileRepository(config *RepositoryConfig) nsRepo.FileRepository {
	return &SQLiteFileRepository{
		db:     config.DB,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create creates new file metadata
func (r *SQLiteFileRepository) Create(ctx context.Context, file *models.File) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, owner_id, filename, folder_id, size, last_modified, content_ref, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, r.tables.Files)

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		file.ID,
		file.OwnerID,
		file.Filename,
		file.FolderID,
		file.Size,
		toNanos(file.LastModified),
		file.ContentRef,
		toNanos(file.CreatedAt),
	)
	if err != nil {
		switch {
		case isDuplicateError(err):
			conflict := &domain.ConflictError{
				Message:      fmt.Sprintf("a file named %q already exists in this location", file.Filename),
				ResourceType: "file",
			}
			if existing, findErr := r.FindByName(ctx, file.OwnerID, file.FolderID, file.Filename); findErr == nil && existing != nil {
				conflict.ResourceID = existing.ID.String()
			}
			return conflict
		case isForeignKeyError(err):
			return fmt.Errorf("target folder: %w", domain.ErrNotFound)
		default:
			return storageError("create file", err)
		}
	}

	return nil
}

// GetByID retrieves file metadata by ID
func (r *SQLiteFileRepository) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*models.File, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE id = ? AND owner_id = ?
	`, fileColumns, r.tables.Files)

	file, err := scanFile(getExecutor(ctx, r.db).QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
		}
		return nil, storageError("get file", err)
	}

	return file, nil
}

// FindByName returns the file named filename in folderID, nil if there is none
func (r *SQLiteFileRepository) FindByName(ctx context.Context, ownerID uuid.UUID, folderID *uuid.UUID, filename string) (*models.File, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE owner_id = ? AND filename = ? AND folder_id IS ?
	`, fileColumns, r.tables.Files)

	file, err := scanFile(getExecutor(ctx, r.db).QueryRowContext(ctx, query, ownerID, filename, folderID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, storageError("find file by name", err)
	}

	return file, nil
}

// ListByFolder lists files directly inside folderID
func (r *SQLiteFileRepository) ListByFolder(ctx context.Context, ownerID uuid.UUID, folderID *uuid.UUID) ([]models.File, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE owner_id = ? AND folder_id IS ?
		ORDER BY filename ASC, id ASC
	`, fileColumns, r.tables.Files)

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, ownerID, folderID)
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
func (r *SQLiteFileRepository) ContentRefsByFolders(ctx context.Context, ownerID uuid.UUID, folderIDs []uuid.UUID) ([]string, error) {
	var refs []string
	executor := getExecutor(ctx, r.db)

	for _, batch := range chunk(folderIDs, batchSize) {
		placeholders, args := inClause(batch)
		query := fmt.Sprintf(`
			SELECT content_ref FROM %s
			WHERE owner_id = ? AND folder_id IN (%s)
		`, r.tables.Files, placeholders)

		rows, err := executor.QueryContext(ctx, query, append([]any{ownerID}, args...)...)
		if err != nil {
			return nil, storageError("list content refs", err)
		}
		for rows.Next() {
			var ref string
			if err := rows.Scan(&ref); err != nil {
				rows.Close()
				return nil, storageError("list content refs", err)
			}
			refs = append(refs, ref)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, storageError("list content refs", err)
		}
	}

	return refs, nil
}

// Delete deletes a single file
func (r *SQLiteFileRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ? AND owner_id = ?`, r.tables.Files)

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return storageError("delete file", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return storageError("delete file", err)
	}
	if n == 0 {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// DeleteByFolders deletes every file inside the given folders
func (r *SQLiteFileRepository) DeleteByFolders(ctx context.Context, ownerID uuid.UUID, folderIDs []uuid.UUID) (int64, error) {
	var total int64
	executor := getExecutor(ctx, r.db)

	for _, batch := range chunk(folderIDs, batchSize) {
		placeholders, args := inClause(batch)
		query := fmt.Sprintf(`
			DELETE FROM %s
			WHERE owner_id = ? AND folder_id IN (%s)
		`, r.tables.Files, placeholders)

		result, err := executor.ExecContext(ctx, query, append([]any{ownerID}, args...)...)
		if err != nil {
			return 0, storageError("delete files by folder", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return 0, storageError("delete files by folder", err)
		}
		total += n
	}

	return total, nil
}

func scanFile(row rowScanner) (*models.File, error) {
	var file models.File
	var lastModified, created int64
	err := row.Scan(
		&file.ID,
		&file.OwnerID,
		&file.Filename,
		&file.FolderID,
		&file.Size,
		&lastModified,
		&file.ContentRef,
		&created,
	)
	if err != nil {
		return nil, err
	}
	file.LastModified = fromNanos(lastModified)
	file.CreatedAt = fromNanos(created)
	return &file, nil
}
