package partner

import "context"

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	// FindByID finds a customer by its ID. Returns shared.ErrNotFound when absent.
	FindByID(ctx context.Context, id int64) (*Customer, error)

	// Create inserts a new customer.
	// Returns shared.ErrAlreadyExists when the customer or contact id is taken.
	Create(ctx context.Context, customer *Customer) error

	// Delete deletes a customer. Returns shared.ErrNotFound when absent.
	Delete(ctx context.Context, id int64) error

	// ListIDs returns every customer id, highest first
	ListIDs(ctx context.Context) ([]int64, error)
}
