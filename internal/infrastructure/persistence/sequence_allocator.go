package persistence

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/erp/crm/internal/domain/shared"
	"gorm.io/gorm"
)

// sequenceSource is the column a sequence is seeded from on first use
type sequenceSource struct {
	table  string
	column string
}

var sequenceSources = map[string]sequenceSource{
	shared.SequenceOpportunity: {table: "opportunities", column: "opportunity_id"},
	shared.SequenceCustomer:    {table: "customers", column: "customer_id"},
	shared.SequenceContact:     {table: "customers", column: "contact_id"},
}

// SequenceAllocator implements shared.IDAllocator on the id_sequences table.
// Each allocation is a single UPDATE ... RETURNING, so concurrent callers and
// processes sharing the database never observe the same value.
type SequenceAllocator struct {
	db     *gorm.DB
	seeded sync.Map // sequence name -> struct{}
}

// NewSequenceAllocator creates a new SequenceAllocator
func NewSequenceAllocator(db *gorm.DB) *SequenceAllocator {
	return &SequenceAllocator{db: db}
}

// NextID returns the next identifier for sequence
func (a *SequenceAllocator) NextID(ctx context.Context, sequence string) (int64, error) {
	src, ok := sequenceSources[sequence]
	if !ok {
		return 0, shared.ErrInvalidInput.WithMessage(fmt.Sprintf("unknown sequence %q", sequence))
	}

	next, err := a.allocate(ctx, sequence, src)
	if err == nil && next == 0 {
		// sequence row vanished after it was seeded; seed again once
		a.seeded.Delete(sequence)
		next, err = a.allocate(ctx, sequence, src)
	}
	if err != nil {
		return 0, allocationError(ctx, err)
	}
	if next == 0 {
		return 0, shared.ErrAllocation.WithMessage(fmt.Sprintf("sequence %q has no counter row", sequence))
	}
	return next, nil
}

func (a *SequenceAllocator) allocate(ctx context.Context, sequence string, src sequenceSource) (int64, error) {
	var next int64
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := a.ensureSeeded(tx, sequence, src); err != nil {
			return err
		}
		return tx.Raw(
			"UPDATE id_sequences SET value = value + 1 WHERE name = ? RETURNING value",
			sequence,
		).Scan(&next).Error
	})
	return next, err
}

// ensureSeeded creates the counter row from the current maximum of the
// source column. An empty table seeds 0 so the first id is 1.
func (a *SequenceAllocator) ensureSeeded(tx *gorm.DB, sequence string, src sequenceSource) error {
	if _, ok := a.seeded.Load(sequence); ok {
		return nil
	}
	// WHERE true disambiguates ON CONFLICT from a join constraint in SQLite
	stmt := fmt.Sprintf(
		"INSERT INTO id_sequences (name, value) SELECT ?, COALESCE(MAX(%s), 0) FROM %s WHERE true ON CONFLICT (name) DO NOTHING",
		src.column, src.table,
	)
	if err := tx.Exec(stmt, sequence).Error; err != nil {
		return fmt.Errorf("seed sequence %s: %w", sequence, err)
	}
	a.seeded.Store(sequence, struct{}{})
	return nil
}

func allocationError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return shared.ErrTimeout.Wrap(err)
	}
	return shared.ErrAllocation.Wrap(err)
}
