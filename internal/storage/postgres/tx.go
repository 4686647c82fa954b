package postgres

import (
	"context"
	"fmt"

	"wins-pool/internal/storage"
)

// TxManager implements storage.TxManager on a connection pool. Stores handed
// to the closure are bound to one transaction; row locks taken via
// GetForUpdate serialize conflicting writes to the same lot, auction, and
// participant rows.
type TxManager struct {
	pool *Pool
}

// NewTxManager creates a TxManager.
func NewTxManager(pool *Pool) *TxManager {
	return &TxManager{pool: pool}
}

var _ storage.TxManager = (*TxManager)(nil)

// InTx runs fn inside a transaction. Any error from fn rolls back every
// write made through the bound stores.
func (m *TxManager) InTx(ctx context.Context, fn func(ctx context.Context, s storage.Stores) error) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, newStores(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}
