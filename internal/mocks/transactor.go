package mocks

import (
	"context"

	"github.com/palabra-labs/palabra-api/internal/store"
)

// Transactor implements store.Transactor for testing. By default it runs the
// function directly with a nil transaction; the mock stores ignore WithTx, so
// commit/rollback behavior reduces to whether fn returned an error.
type Transactor struct {
	RunFn func(ctx context.Context, fn store.TxFn) error

	// BeginError, when set, is returned before fn runs, simulating a
	// failure to open the transaction.
	BeginError error

	// Calls counts how many transactions were started.
	Calls int
}

// RunInTransaction implements the store.Transactor interface.
func (t *Transactor) RunInTransaction(ctx context.Context, fn store.TxFn) error {
	t.Calls++

	if t.RunFn != nil {
		return t.RunFn(ctx, fn)
	}

	if t.BeginError != nil {
		return t.BeginError
	}

	return fn(ctx, nil)
}
