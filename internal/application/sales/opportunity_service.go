package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/crm/internal/domain/sales"
	"github.com/erp/crm/internal/domain/shared"
	"github.com/erp/crm/internal/infrastructure/logger"
	"github.com/erp/crm/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Operation names used in logs, spans and metrics
const (
	OpCreate = "create"
	OpView   = "view"
	OpUpdate = "update"
	OpDelete = "delete"
	OpRecent = "recent"
	OpReset  = "reset"
	OpList   = "list_ids"
)

const (
	defaultOperationTimeout  = 3 * time.Second
	defaultAllocationRetries = 3
)

// OpportunityService is the opportunity store. The repository is the
// authoritative record; the recency cache is written through after every
// successful store write and is never allowed to fail one.
type OpportunityService struct {
	repo     sales.OpportunityRepository
	ids      shared.IDAllocator
	recency  sales.RecencyCache
	logger   *zap.Logger
	observer StoreObserver
	now      func() time.Time
	timeout  time.Duration
	retries  int
}

// Option configures an OpportunityService
type Option func(*OpportunityService)

// WithLogger sets the fallback logger used when the context carries none
func WithLogger(l *zap.Logger) Option {
	return func(s *OpportunityService) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithObserver sets the receiver of store health signals
func WithObserver(o StoreObserver) Option {
	return func(s *OpportunityService) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithClock sets the time source for record timestamps and recency scores
func WithClock(now func() time.Time) Option {
	return func(s *OpportunityService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithOperationTimeout bounds every store call
func WithOperationTimeout(d time.Duration) Option {
	return func(s *OpportunityService) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithAllocationRetries sets how many times an insert is retried with a
// fresh id after a duplicate key
func WithAllocationRetries(n int) Option {
	return func(s *OpportunityService) {
		if n >= 0 {
			s.retries = n
		}
	}
}

// NewOpportunityService creates a new OpportunityService
func NewOpportunityService(
	repo sales.OpportunityRepository,
	ids shared.IDAllocator,
	recency sales.RecencyCache,
	opts ...Option,
) *OpportunityService {
	s := &OpportunityService{
		repo:     repo,
		ids:      ids,
		recency:  recency,
		logger:   zap.NewNop(),
		observer: noopObserver{},
		now:      time.Now,
		timeout:  defaultOperationTimeout,
		retries:  defaultAllocationRetries,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates the request, allocates an id, persists the opportunity
// and records it as the customer's most recent one.
func (s *OpportunityService) Create(ctx context.Context, req CreateOpportunityRequest) (*OpportunityResponse, error) {
	var created *sales.Opportunity
	err := s.run(ctx, OpCreate, func(ctx context.Context) error {
		if req.CustomerID <= 0 {
			return shared.ErrInvalidInput.WithMessage("Customer ID must be positive")
		}
		details := req.details()
		if err := details.Validate(); err != nil {
			return err
		}

		o, err := s.insertWithFreshID(ctx, req.CustomerID, details)
		if err != nil {
			return err
		}
		created = o
		trace.SpanFromContext(ctx).SetAttributes(telemetry.OpportunityAttr(o.ID))
		s.touch(ctx, OpCreate, o.CustomerID, o.ID)
		return nil
	}, telemetry.CustomerAttr(req.CustomerID))
	if err != nil {
		return nil, err
	}

	response := ToOpportunityResponse(created)
	return &response, nil
}

// insertWithFreshID allocates an id and inserts the opportunity, retrying
// with a new id when the insert hits a duplicate key.
func (s *OpportunityService) insertWithFreshID(ctx context.Context, customerID int64, details sales.OpportunityDetails) (*sales.Opportunity, error) {
	var lastErr error
	for attempt := 0; attempt <= s.retries; attempt++ {
		id, err := s.ids.NextID(ctx, shared.SequenceOpportunity)
		if err != nil {
			return nil, err
		}

		o, err := sales.NewOpportunity(id, customerID, details, s.now())
		if err != nil {
			return nil, err
		}

		err = s.repo.Create(ctx, o)
		if err == nil {
			return o, nil
		}
		if !errors.Is(err, shared.ErrAlreadyExists) {
			return nil, err
		}

		lastErr = err
		s.observer.RecordAllocationRetry(ctx, shared.SequenceOpportunity)
		telemetry.AddEvent(trace.SpanFromContext(ctx), "id_allocator.retry",
			attribute.Int(telemetry.SpanAttrAttempt, attempt+1),
			telemetry.OpportunityAttr(id),
		)
		logger.L(ctx, s.logger).Warn("Allocated opportunity id already in use, retrying",
			logger.OpportunityID(id),
			zap.Int("attempt", attempt+1),
		)
	}
	return nil, shared.ErrAllocation.WithMessage(
		fmt.Sprintf("No free opportunity id after %d attempts", s.retries+1)).Wrap(lastErr)
}

// View returns the opportunity and records it as the customer's most recent one
func (s *OpportunityService) View(ctx context.Context, id int64) (*OpportunityResponse, error) {
	var found *sales.Opportunity
	err := s.run(ctx, OpView, func(ctx context.Context) error {
		o, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		found = o
		s.touch(ctx, OpView, o.CustomerID, o.ID)
		return nil
	}, telemetry.OpportunityAttr(id))
	if err != nil {
		return nil, err
	}

	response := ToOpportunityResponse(found)
	return &response, nil
}

// Update replaces the mutable fields of an opportunity using an optimistic
// version check and records it as the customer's most recent one.
func (s *OpportunityService) Update(ctx context.Context, id int64, req UpdateOpportunityRequest) (*OpportunityResponse, error) {
	var updated *sales.Opportunity
	err := s.run(ctx, OpUpdate, func(ctx context.Context) error {
		o, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if req.CustomerID != nil && *req.CustomerID != o.CustomerID {
			return shared.ErrInvalidInput.WithMessage(
				fmt.Sprintf("Opportunity %d belongs to customer %d and cannot be moved", id, o.CustomerID))
		}

		expected := o.GetVersion()
		if req.ExpectedVersion != nil && *req.ExpectedVersion != expected {
			return shared.ErrConcurrencyConflict.WithMessage(
				fmt.Sprintf("Opportunity %d is at version %d, not %d", id, expected, *req.ExpectedVersion))
		}

		if err := o.Apply(req.details(), s.now()); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, o, expected); err != nil {
			return err
		}
		updated = o
		s.touch(ctx, OpUpdate, o.CustomerID, o.ID)
		return nil
	}, telemetry.OpportunityAttr(id))
	if err != nil {
		return nil, err
	}

	response := ToOpportunityResponse(updated)
	return &response, nil
}

// Delete removes the opportunity, then evicts it from its customer's recency set
func (s *OpportunityService) Delete(ctx context.Context, id int64) error {
	return s.run(ctx, OpDelete, func(ctx context.Context) error {
		o, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, id); err != nil {
			return err
		}
		if err := s.recency.Evict(ctx, o.CustomerID, id); err != nil {
			s.reportInconsistency(ctx, OpDelete, o.CustomerID, id, err)
		}
		return nil
	}, telemetry.OpportunityAttr(id))
}

// Recent returns the customer's most recently used opportunity ids, most
// recent first. Cache errors propagate.
func (s *OpportunityService) Recent(ctx context.Context, customerID int64) (*RecentOpportunitiesResponse, error) {
	var ids []int64
	err := s.run(ctx, OpRecent, func(ctx context.Context) error {
		if customerID <= 0 {
			return shared.ErrInvalidInput.WithMessage("Customer ID must be positive")
		}
		var err error
		ids, err = s.recency.Recent(ctx, customerID)
		return err
	}, telemetry.CustomerAttr(customerID))
	if err != nil {
		return nil, err
	}
	return &RecentOpportunitiesResponse{CustomerID: customerID, OpportunityIDs: ids}, nil
}

// ResetRecentCache clears every customer's recency set. It must not run
// concurrently with writes.
func (s *OpportunityService) ResetRecentCache(ctx context.Context) error {
	return s.run(ctx, OpReset, func(ctx context.Context) error {
		if err := s.recency.ResetAll(ctx); err != nil {
			return err
		}
		logger.L(ctx, s.logger).Info("Recency cache reset")
		return nil
	})
}

// ListOpportunityIDs returns the customer's opportunity ids in ascending order
func (s *OpportunityService) ListOpportunityIDs(ctx context.Context, customerID int64) ([]int64, error) {
	var ids []int64
	err := s.run(ctx, OpList, func(ctx context.Context) error {
		var err error
		ids, err = s.repo.ListIDsByCustomer(ctx, customerID)
		return err
	}, telemetry.CustomerAttr(customerID))
	return ids, err
}

// run bounds fn by the operation timeout inside a service span and reports
// its duration and outcome.
func (s *OpportunityService) run(ctx context.Context, op string, fn func(ctx context.Context) error, attrs ...attribute.KeyValue) error {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ctx, span := telemetry.StartServiceSpan(ctx, "opportunity", op, attrs...)
	defer span.End()

	err := asTimeout(ctx, fn(ctx))
	telemetry.RecordError(span, err)
	s.observer.ObserveOperation(ctx, op, time.Since(start), err)
	return err
}

// touch writes the recency entry after a successful store step
func (s *OpportunityService) touch(ctx context.Context, op string, customerID, opportunityID int64) {
	if err := s.recency.Touch(ctx, customerID, opportunityID, s.now()); err != nil {
		s.reportInconsistency(ctx, op, customerID, opportunityID, err)
	}
}

// reportInconsistency logs and counts a cache write lost after the store
// write succeeded. The caller still reports success.
func (s *OpportunityService) reportInconsistency(ctx context.Context, op string, customerID, opportunityID int64, cause error) {
	err := shared.ErrCacheInconsistency.Wrap(cause)
	logger.L(ctx, s.logger).Warn("Recency cache write failed after store write",
		logger.Op(op),
		logger.CustomerID(customerID),
		logger.OpportunityID(opportunityID),
		zap.Error(err),
	)
	s.observer.RecordInconsistency(ctx, op)
	telemetry.AddEvent(trace.SpanFromContext(ctx), "recency_cache.inconsistency",
		telemetry.AttrOperation.String(op),
		telemetry.CustomerAttr(customerID),
		telemetry.OpportunityAttr(opportunityID),
	)
}

// asTimeout maps store errors raised after the deadline to ErrTimeout
func asTimeout(ctx context.Context, err error) error {
	err = shared.AsTimeout(err)
	if err == nil || !errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return err
	}
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	return shared.ErrTimeout.Wrap(err)
}
