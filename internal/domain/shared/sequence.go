package shared

import "context"

// Sequence names understood by IDAllocator implementations
const (
	SequenceOpportunity = "opportunity_id"
	SequenceCustomer    = "customer_id"
	SequenceContact     = "contact_id"
)

// IDAllocator hands out auto-increment identifiers for a named sequence.
// Implementations must be safe for concurrent callers: two calls for the same
// sequence never return the same value.
type IDAllocator interface {
	// NextID returns previous+1 for the sequence, where previous is 0 for an
	// empty sequence. Fails with ErrAllocation when the backend is unreachable
	// and ErrTimeout when the context deadline expires.
	NextID(ctx context.Context, sequence string) (int64, error)
}
