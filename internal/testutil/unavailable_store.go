package testutil

import (
	"context"

	"github.com/fleetledger/fleetledger/internal/docstore"
	ierr "github.com/fleetledger/fleetledger/internal/errors"
)

// TxUnavailableStore passes everything through to the wrapped store except transactions,
// which fail without running. It stands in for a backend whose transaction API is down.
type TxUnavailableStore struct {
	docstore.Store
	Attempts int
}

func NewTxUnavailableStore(store docstore.Store) *TxUnavailableStore {
	return &TxUnavailableStore{Store: store}
}

func (s *TxUnavailableStore) RunTransaction(_ context.Context, _ func(ctx context.Context, tx docstore.Tx) error) error {
	s.Attempts++
	return ierr.NewError("transactions unavailable").
		WithHint("The document store could not start a transaction").
		Mark(ierr.ErrDatabase)
}
