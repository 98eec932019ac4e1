package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/fleetledger/fleetledger/internal/docstore"
	ierr "github.com/fleetledger/fleetledger/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counterDoc struct {
	Seq int `json:"seq"`
}

type rowDoc struct {
	ID        string    `json:"id"`
	Mode      string    `json:"business_mode"`
	CreatedAt time.Time `json:"created_at"`
}

func TestStore_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	var doc counterDoc
	err := s.Get(ctx, "counters", "missing", &doc)
	require.Error(t, err)
	assert.True(t, ierr.IsNotFound(err))

	require.NoError(t, s.Set(ctx, "counters", "a", counterDoc{Seq: 3}))
	require.NoError(t, s.Get(ctx, "counters", "a", &doc))
	assert.Equal(t, 3, doc.Seq)

	require.NoError(t, s.Delete(ctx, "counters", "a"))
	assert.True(t, ierr.IsNotFound(s.Get(ctx, "counters", "a", &doc)))
	// deleting twice is fine
	require.NoError(t, s.Delete(ctx, "counters", "a"))
}

func TestStore_TransactionIncrementsUnderContention(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	const workers = 25
	var wg sync.WaitGroup
	results := make(chan int, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var next int
			err := s.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
				var c counterDoc
				if _, err := tx.Get(ctx, "counters", "seq", &c); err != nil {
					return err
				}
				next = c.Seq + 1
				return tx.Set("counters", "seq", counterDoc{Seq: next})
			})
			assert.NoError(t, err)
			results <- next
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[int]bool)
	for r := range results {
		assert.False(t, seen[r], "duplicate value %d", r)
		seen[r] = true
	}
	assert.Len(t, seen, workers)

	var final counterDoc
	require.NoError(t, s.Get(ctx, "counters", "seq", &final))
	assert.Equal(t, workers, final.Seq)
}

func TestStore_TransactionRetriesAfterConcurrentWrite(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.Set(ctx, "counters", "seq", counterDoc{Seq: 1}))

	attempts := 0
	err := s.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		attempts++
		var c counterDoc
		if _, err := tx.Get(ctx, "counters", "seq", &c); err != nil {
			return err
		}
		if attempts == 1 {
			// a writer outside the transaction sneaks in
			require.NoError(t, s.Set(ctx, "counters", "seq", counterDoc{Seq: 10}))
		}
		return tx.Set("counters", "seq", counterDoc{Seq: c.Seq + 1})
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)

	var c counterDoc
	require.NoError(t, s.Get(ctx, "counters", "seq", &c))
	assert.Equal(t, 11, c.Seq)
}

func TestStore_TransactionGivesUp(t *testing.T) {
	ctx := context.Background()
	s := NewStore(WithMaxAttempts(2))

	attempts := 0
	err := s.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		attempts++
		var c counterDoc
		if _, err := tx.Get(ctx, "counters", "seq", &c); err != nil {
			return err
		}
		require.NoError(t, s.Set(ctx, "counters", "seq", counterDoc{Seq: attempts * 100}))
		return tx.Set("counters", "seq", counterDoc{Seq: c.Seq + 1})
	})
	require.Error(t, err)
	assert.True(t, ierr.IsVersionConflict(err))
	assert.Equal(t, 2, attempts)
}

func TestStore_TransactionErrorDiscardsWrites(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	boom := fmt.Errorf("boom")
	err := s.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		require.NoError(t, tx.Set("counters", "seq", counterDoc{Seq: 1}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var c counterDoc
	assert.True(t, ierr.IsNotFound(s.Get(ctx, "counters", "seq", &c)))
}

func TestStore_TransactionReadsOwnWrites(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	err := s.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		require.NoError(t, tx.Set("counters", "seq", counterDoc{Seq: 7}))
		var c counterDoc
		found, err := tx.Get(ctx, "counters", "seq", &c)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, 7, c.Seq)
		return nil
	})
	require.NoError(t, err)
}

func TestStore_BatchCommitsAtomically(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.Set(ctx, "invoices", "gone", rowDoc{ID: "gone"}))

	b := s.NewBatch()
	b.Delete("invoices", "gone")
	require.NoError(t, b.Set("invoices", "a", rowDoc{ID: "a"}))
	require.NoError(t, b.Set("counters", "seq", counterDoc{Seq: 1}))
	assert.Equal(t, 3, b.Len())

	var row rowDoc
	// nothing visible before commit
	assert.True(t, ierr.IsNotFound(s.Get(ctx, "invoices", "a", &row)))

	require.NoError(t, b.Commit(ctx))
	require.NoError(t, s.Get(ctx, "invoices", "a", &row))
	assert.True(t, ierr.IsNotFound(s.Get(ctx, "invoices", "gone", &row)))
}

func TestStore_Query(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	rows := []rowDoc{
		{ID: "c", Mode: "b2b", CreatedAt: base.Add(2 * time.Hour)},
		{ID: "a", Mode: "b2b", CreatedAt: base},
		{ID: "b", Mode: "b2c", CreatedAt: base.Add(time.Hour)},
		// sub-second precision must still order chronologically
		{ID: "d", Mode: "b2b", CreatedAt: base.Add(500 * time.Millisecond)},
	}
	for _, r := range rows {
		require.NoError(t, s.Set(ctx, "invoices", r.ID, r))
	}

	tests := []struct {
		name  string
		query docstore.Query
		want  []string
	}{
		{
			name:  "filter and ascending order",
			query: docstore.NewQuery().Where("business_mode", "b2b").Order("created_at", docstore.Asc),
			want:  []string{"a", "d", "c"},
		},
		{
			name:  "descending with limit",
			query: docstore.NewQuery().Order("created_at", docstore.Desc).Take(2),
			want:  []string{"c", "b"},
		},
		{
			name:  "no match",
			query: docstore.NewQuery().Where("business_mode", "B2B"),
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snaps, err := s.Query(ctx, "invoices", tt.query)
			require.NoError(t, err)
			ids := make([]string, 0, len(snaps))
			for _, snap := range snaps {
				ids = append(ids, snap.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}
