package invoice

import (
	ierr "github.com/fleetledger/fleetledger/internal/errors"
)

// ErrNotFound builds the error returned for a missing invoice
func ErrNotFound(id string) error {
	return ierr.NewError("invoice not found").
		WithHintf("Invoice %s was not found", id).
		WithReportableDetails(map[string]any{
			"invoice_id": id,
		}).
		Mark(ierr.ErrNotFound)
}
