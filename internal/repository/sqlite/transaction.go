package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"cirrus/internal/domain"
	"cirrus/internal/domain/repositories"
)

// TransactionManager implements the TransactionManager interface
type TransactionManager struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewTransactionManager creates a new transaction manager
func NewTransactionManager(db *sql.DB, logger *slog.Logger) repositories.TransactionManager {
	return &TransactionManager{db: db, logger: logger}
}

// ExecTx executes a function within a transaction. Nested calls reuse the
// outer transaction. database/sql also rolls back on its own when ctx is
// cancelled before commit.
func (tm *TransactionManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := tm.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.NewStorageError("begin transaction", err)
	}

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			tm.logger.Warn("rollback failed", "error", err)
		}
	}()

	if err := fn(withTx(ctx, tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return domain.NewStorageError("commit transaction", err)
	}
	return nil
}
