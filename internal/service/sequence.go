package service

import (
	"context"
	"time"

	"github.com/fleetledger/fleetledger/internal/docstore"
	"github.com/fleetledger/fleetledger/internal/domain/invoice"
	"github.com/fleetledger/fleetledger/internal/types"
)

// Allocation is an invoice number together with the sequence it encodes
type Allocation struct {
	InvoiceNumber string `json:"invoice_number"`
	Sequence      int    `json:"sequence"`
}

func newAllocation(createdAt time.Time, seq int) *Allocation {
	return &Allocation{
		InvoiceNumber: invoice.FormatNumber(createdAt, seq),
		Sequence:      seq,
	}
}

// SequenceService issues per business mode invoice sequences
type SequenceService interface {
	// Next increments the partition counter in its own transaction
	Next(ctx context.Context, mode types.BusinessMode) (int, error)

	// Allocate increments the partition counter inside tx and formats the invoice number
	Allocate(ctx context.Context, tx docstore.Tx, mode types.BusinessMode, createdAt time.Time) (*Allocation, error)

	// EstimateNext guesses the next sequence without a transaction. Concurrent callers may
	// receive the same value.
	EstimateNext(ctx context.Context, mode types.BusinessMode) (int, error)

	// EstimateAllocation is Allocate built on EstimateNext
	EstimateAllocation(ctx context.Context, mode types.BusinessMode, createdAt time.Time) (*Allocation, error)
}

type sequenceService struct {
	ServiceParams
}

func NewSequenceService(params ServiceParams) SequenceService {
	return &sequenceService{
		ServiceParams: params,
	}
}

func (s *sequenceService) Next(ctx context.Context, mode types.BusinessMode) (int, error) {
	if err := mode.Validate(); err != nil {
		return 0, err
	}

	var next int
	err := s.Store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		seq, err := s.SequenceRepo.NextInTx(ctx, tx, mode.SequenceKey())
		if err != nil {
			return err
		}
		next = seq
		return nil
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

func (s *sequenceService) Allocate(ctx context.Context, tx docstore.Tx, mode types.BusinessMode, createdAt time.Time) (*Allocation, error) {
	if err := mode.Validate(); err != nil {
		return nil, err
	}

	seq, err := s.SequenceRepo.NextInTx(ctx, tx, mode.SequenceKey())
	if err != nil {
		return nil, err
	}
	return newAllocation(createdAt, seq), nil
}

func (s *sequenceService) EstimateNext(ctx context.Context, mode types.BusinessMode) (int, error) {
	if err := mode.Validate(); err != nil {
		return 0, err
	}

	highest := 0
	latest, err := s.InvoiceRepo.Latest(ctx, mode)
	if err != nil {
		return 0, err
	}
	if latest != nil {
		if seq, ok := latest.SequenceNumber(); ok {
			highest = seq
		}
	}

	// the counter can be ahead of the newest invoice; failing to read it only weakens the estimate
	counter, err := s.SequenceRepo.Get(ctx, mode.SequenceKey())
	if err != nil {
		s.Logger.Warnw("failed to read sequence counter for estimate",
			"business_mode", mode,
			"error", err,
		)
	} else if counter > highest {
		highest = counter
	}

	return highest + 1, nil
}

func (s *sequenceService) EstimateAllocation(ctx context.Context, mode types.BusinessMode, createdAt time.Time) (*Allocation, error) {
	seq, err := s.EstimateNext(ctx, mode)
	if err != nil {
		return nil, err
	}
	return newAllocation(createdAt, seq), nil
}
