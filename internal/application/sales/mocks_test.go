package sales

import (
	"context"
	"sync"
	"time"

	"github.com/erp/crm/internal/domain/sales"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Mocks
// =============================================================================

// MockOpportunityRepository is a mock implementation of OpportunityRepository
type MockOpportunityRepository struct {
	mock.Mock
}

func (m *MockOpportunityRepository) FindByID(ctx context.Context, id int64) (*sales.Opportunity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Opportunity), args.Error(1)
}

func (m *MockOpportunityRepository) Create(ctx context.Context, opportunity *sales.Opportunity) error {
	args := m.Called(ctx, opportunity)
	return args.Error(0)
}

func (m *MockOpportunityRepository) Update(ctx context.Context, opportunity *sales.Opportunity, expectedVersion int) error {
	args := m.Called(ctx, opportunity, expectedVersion)
	return args.Error(0)
}

func (m *MockOpportunityRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOpportunityRepository) ListIDsByCustomer(ctx context.Context, customerID int64) ([]int64, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

// MockIDAllocator is a mock implementation of IDAllocator
type MockIDAllocator struct {
	mock.Mock
}

func (m *MockIDAllocator) NextID(ctx context.Context, sequence string) (int64, error) {
	args := m.Called(ctx, sequence)
	return args.Get(0).(int64), args.Error(1)
}

// MockRecencyCache is a mock implementation of RecencyCache
type MockRecencyCache struct {
	mock.Mock
}

func (m *MockRecencyCache) Touch(ctx context.Context, customerID, opportunityID int64, at time.Time) error {
	args := m.Called(ctx, customerID, opportunityID, at)
	return args.Error(0)
}

func (m *MockRecencyCache) Recent(ctx context.Context, customerID int64) ([]int64, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockRecencyCache) Evict(ctx context.Context, customerID, opportunityID int64) error {
	args := m.Called(ctx, customerID, opportunityID)
	return args.Error(0)
}

func (m *MockRecencyCache) ResetAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// spyObserver records store health signals
type spyObserver struct {
	mu              sync.Mutex
	inconsistencies []string
	retries         int
	operations      map[string]error
}

func newSpyObserver() *spyObserver {
	return &spyObserver{operations: map[string]error{}}
}

func (o *spyObserver) RecordInconsistency(_ context.Context, op string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.inconsistencies = append(o.inconsistencies, op)
}

func (o *spyObserver) RecordAllocationRetry(context.Context, string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.retries++
}

func (o *spyObserver) ObserveOperation(_ context.Context, op string, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.operations[op] = err
}

// fakeClock advances one millisecond on every call
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Millisecond)
	return c.now
}
