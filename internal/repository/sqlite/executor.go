package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	driver "modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"

	"cirrus/internal/domain"
)

// DBTX is implemented by both *sql.DB and *sql.Tx
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txContextKey struct{}

func withTx(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, txContextKey{}, tx)
}

func txFromContext(ctx context.Context) *sql.Tx {
	tx, _ := ctx.Value(txContextKey{}).(*sql.Tx)
	return tx
}

// getExecutor returns the transaction carried by ctx, or db
func getExecutor(ctx context.Context, db *sql.DB) DBTX {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}
	return db
}

func isConstraint(err error, code int) bool {
	var sqliteErr *driver.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == code
	}
	return false
}

func isDuplicateError(err error) bool {
	return isConstraint(err, sqlitelib.SQLITE_CONSTRAINT_UNIQUE) || isConstraint(err, sqlitelib.SQLITE_CONSTRAINT_PRIMARYKEY)
}

func isForeignKeyError(err error) bool {
	return isConstraint(err, sqlitelib.SQLITE_CONSTRAINT_FOREIGNKEY)
}

func storageError(op string, err error) error {
	return domain.NewStorageError(op, err)
}

// timestamps are stored as unix nanoseconds
func toNanos(t time.Time) int64 { return t.UnixNano() }

func fromNanos(n int64) time.Time { return time.Unix(0, n).UTC() }

// inClause renders "?, ?, ?" for ids and returns them as driver arguments
func inClause(ids []uuid.UUID) (string, []any) {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", "), args
}

// chunk splits ids into batches that stay below SQLite's variable limit
func chunk(ids []uuid.UUID, size int) [][]uuid.UUID {
	var batches [][]uuid.UUID
	for len(ids) > size {
		batches = append(batches, ids[:size])
		ids = ids[size:]
	}
	if len(ids) > 0 {
		batches = append(batches, ids)
	}
	return batches
}

const batchSize = 500
