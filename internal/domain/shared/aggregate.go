package shared

import "time"

// AggregateRoot is implemented by records persisted with an optimistic
// version check: opportunities and customers.
type AggregateRoot interface {
	GetID() int64
	GetVersion() int
}

// BaseAggregateRoot carries the sequence-allocated id, timestamps and the
// version compared on every update. Version starts at 1.
type BaseAggregateRoot struct {
	ID        int64
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int
}

// NewBaseAggregateRoot creates a new base aggregate root at version 1
func NewBaseAggregateRoot(id int64, now time.Time) BaseAggregateRoot {
	return BaseAggregateRoot{ID: id, CreatedAt: now, UpdatedAt: now, Version: 1}
}

// GetID returns the allocated id
func (a *BaseAggregateRoot) GetID() int64 { return a.ID }

// GetCreatedAt returns the creation timestamp
func (a *BaseAggregateRoot) GetCreatedAt() time.Time { return a.CreatedAt }

// GetUpdatedAt returns the last update timestamp
func (a *BaseAggregateRoot) GetUpdatedAt() time.Time { return a.UpdatedAt }

// GetVersion returns the version the next update must match
func (a *BaseAggregateRoot) GetVersion() int { return a.Version }

// Touch records a modification at now and bumps the version
func (a *BaseAggregateRoot) Touch(now time.Time) {
	a.UpdatedAt = now
	a.Version++
}
