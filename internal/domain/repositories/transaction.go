package repositories

import "context"

// TxFn is a function that runs within a transaction
type TxFn func(ctx context.Context) error

// TransactionManager handles database transactions.
//
// ExecTx commits only when fn returns nil. Any error, panic or context
// cancellation rolls the transaction back, so a namespace mutation is either
// fully applied or not visible at all.
type TransactionManager interface {
	// ExecTx executes a function within a transaction
	ExecTx(ctx context.Context, fn TxFn) error
}
