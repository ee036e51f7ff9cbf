package partner

import (
	"context"
	"errors"
	"time"

	"github.com/erp/crm/internal/domain/partner"
	"github.com/erp/crm/internal/domain/shared"
	"github.com/erp/crm/internal/infrastructure/logger"
	"github.com/erp/crm/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const defaultOperationTimeout = 3 * time.Second

// CustomerService handles customer administration
type CustomerService struct {
	customerRepo partner.CustomerRepository
	ids          shared.IDAllocator
	logger       *zap.Logger
	now          func() time.Time
	timeout      time.Duration
}

// Option configures a CustomerService
type Option func(*CustomerService)

// WithLogger sets the fallback logger
func WithLogger(l *zap.Logger) Option {
	return func(s *CustomerService) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock sets the time source for record timestamps
func WithClock(now func() time.Time) Option {
	return func(s *CustomerService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithOperationTimeout bounds every store call
func WithOperationTimeout(d time.Duration) Option {
	return func(s *CustomerService) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customerRepo partner.CustomerRepository, ids shared.IDAllocator, opts ...Option) *CustomerService {
	s := &CustomerService{
		customerRepo: customerRepo,
		ids:          ids,
		logger:       zap.NewNop(),
		now:          time.Now,
		timeout:      defaultOperationTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add validates the profile, allocates customer and contact ids and stores
// the customer
func (s *CustomerService) Add(ctx context.Context, req AddCustomerRequest) (*CustomerResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	ctx, span := telemetry.StartServiceSpan(ctx, "customer", "add")
	defer span.End()

	profile := req.profile()
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	customerID, err := s.ids.NextID(ctx, shared.SequenceCustomer)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, shared.AsTimeout(err)
	}
	contactID, err := s.ids.NextID(ctx, shared.SequenceContact)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, shared.AsTimeout(err)
	}

	customer, err := partner.NewCustomer(customerID, contactID, profile, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		telemetry.RecordError(span, err)
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.ErrAllocation.WithMessage("Allocated customer or contact id is already in use").Wrap(err)
		}
		return nil, shared.AsTimeout(err)
	}
	span.SetAttributes(telemetry.CustomerAttr(customerID))

	logger.L(ctx, s.logger).Info("Customer added",
		logger.CustomerID(customerID),
		zap.Int64("contact_id", contactID),
	)

	response := ToCustomerResponse(customer)
	return &response, nil
}

// GetByID retrieves a customer by ID
func (s *CustomerService) GetByID(ctx context.Context, customerID int64) (*CustomerResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return nil, shared.AsTimeout(err)
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// Delete deletes a customer. Opportunities of the customer are left in place.
func (s *CustomerService) Delete(ctx context.Context, customerID int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	ctx, span := telemetry.StartServiceSpan(ctx, "customer", "delete", telemetry.CustomerAttr(customerID))
	defer span.End()

	if err := s.customerRepo.Delete(ctx, customerID); err != nil {
		telemetry.RecordError(span, err)
		return shared.AsTimeout(err)
	}

	logger.L(ctx, s.logger).Info("Customer deleted", logger.CustomerID(customerID))
	return nil
}

// ListCustomerIDs returns every customer id, highest first
func (s *CustomerService) ListCustomerIDs(ctx context.Context) (*CustomerIDsResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ids, err := s.customerRepo.ListIDs(ctx)
	if err != nil {
		return nil, shared.AsTimeout(err)
	}
	return &CustomerIDsResponse{CustomerIDs: ids}, nil
}
