package sales

import "context"

// OpportunityRepository defines the interface for opportunity persistence
type OpportunityRepository interface {
	// FindByID finds an opportunity by its ID. Returns shared.ErrNotFound when absent.
	FindByID(ctx context.Context, id int64) (*Opportunity, error)

	// Create inserts a new opportunity.
	// Returns shared.ErrAlreadyExists when the id is already taken.
	Create(ctx context.Context, opportunity *Opportunity) error

	// Update persists the opportunity only if the stored version still equals
	// expectedVersion. Returns shared.ErrNotFound if the record is gone and
	// shared.ErrConcurrencyConflict if it was changed in between.
	Update(ctx context.Context, opportunity *Opportunity, expectedVersion int) error

	// Delete removes an opportunity. Returns shared.ErrNotFound when absent.
	Delete(ctx context.Context, id int64) error

	// ListIDsByCustomer returns the customer's opportunity ids in ascending order
	ListIDsByCustomer(ctx context.Context, customerID int64) ([]int64, error)
}
