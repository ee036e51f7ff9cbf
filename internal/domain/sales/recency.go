package sales

import (
	"context"
	"time"
)

// DefaultRecentCapacity is how many opportunity ids are kept per customer
const DefaultRecentCapacity = 5

// RecencyCache keeps a bounded, ranked list of recently touched opportunity
// ids per customer. The opportunity service is its only writer.
type RecencyCache interface {
	// Touch records opportunityID as the most recent entry for customerID at
	// time at, then trims the set to capacity. Insert and trim are atomic.
	Touch(ctx context.Context, customerID, opportunityID int64, at time.Time) error

	// Recent returns up to capacity ids, most recent first. An unknown
	// customer yields an empty slice.
	Recent(ctx context.Context, customerID int64) ([]int64, error)

	// Evict removes opportunityID from the customer's set. Missing ids are a no-op.
	Evict(ctx context.Context, customerID, opportunityID int64) error

	// ResetAll removes every customer's recency set.
	ResetAll(ctx context.Context) error
}
