package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is an interface that both *pgxpool.Pool and pgx.Tx implement
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, arguments ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row
}

type txContextKey struct{}

// withTx stores a transaction in the context
func withTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txContextKey{}, tx)
}

// txFromContext retrieves a transaction from the context, nil if there is none
func txFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(txContextKey{}).(pgx.Tx)
	return tx
}

// GetExecutor returns the transaction carried by ctx, or the pool when there
// is none. Repositories call it on every query so they join a surrounding
// ExecTx automatically.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) DBTX {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}
	return pool
}
