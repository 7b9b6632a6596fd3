package store_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palabra-labs/palabra-api/internal/store"
)

// failingTxBeginner always fails to open a transaction.
type failingTxBeginner struct {
	err error
}

func (f *failingTxBeginner) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return nil, f.err
}

func TestRunInTransaction_BeginFailure(t *testing.T) {
	beginErr := errors.New("connection refused")
	db := &failingTxBeginner{err: beginErr}

	called := false
	err := store.RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
		called = true
		return nil
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, beginErr)
	assert.ErrorIs(t, err, store.ErrTransactionFailed)
	assert.False(t, called, "fn must not run when the transaction cannot be opened")
}

func TestSQLTransactor_PropagatesBeginFailure(t *testing.T) {
	beginErr := errors.New("pool exhausted")
	transactor := store.NewSQLTransactor(&failingTxBeginner{err: beginErr})

	err := transactor.RunInTransaction(context.Background(), func(ctx context.Context, tx *sql.Tx) error {
		return nil
	})

	assert.ErrorIs(t, err, beginErr)
}
