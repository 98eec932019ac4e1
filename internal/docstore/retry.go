package docstore

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	ierr "github.com/fleetledger/fleetledger/internal/errors"
)

const DefaultMaxAttempts = 5

// ErrConflict is returned by a backend commit when a document changed after it was read
var ErrConflict = ierr.NewError("document changed during transaction").
	WithHint("The record was modified concurrently, please retry").
	Mark(ierr.ErrVersionConflict)

// RetryOnConflict runs attempt until it succeeds, fails with a non-conflict error, or
// maxAttempts conflicts have happened. Conflicts are retried with jittered exponential backoff.
func RetryOnConflict(ctx context.Context, maxAttempts int, attempt func() error) error {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = 10 * time.Millisecond
	expo.MaxInterval = 200 * time.Millisecond
	expo.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(expo, uint64(maxAttempts-1)), ctx)

	err := backoff.Retry(func() error {
		err := attempt()
		if err == nil {
			return nil
		}
		if ierr.IsVersionConflict(err) {
			return err
		}
		return backoff.Permanent(err)
	}, policy)
	if err != nil && ierr.IsVersionConflict(err) {
		return ierr.WithError(err).
			WithHintf("Transaction gave up after %d attempts", maxAttempts).
			Mark(ierr.ErrVersionConflict)
	}
	return err
}
