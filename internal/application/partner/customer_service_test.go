package partner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/crm/internal/domain/partner"
	"github.com/erp/crm/internal/domain/shared"
	"github.com/erp/crm/internal/infrastructure/persistence"
	"github.com/erp/crm/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// =============================================================================
// Mocks
// =============================================================================

// MockCustomerRepository is a mock implementation of CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id int64) (*partner.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Create(ctx context.Context, customer *partner.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCustomerRepository) ListIDs(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
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

var fixedNow = func() time.Time { return time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC) }

func validAddRequest() AddCustomerRequest {
	return AddCustomerRequest{
		Name:     "Northwind Traders",
		Industry: "Retail",
		Contact: ContactDTO{
			ContactID: 999, // ignored, allocated by the service
			FirstName: "Ana",
			LastName:  "Lima",
			Email:     "Ana.Lima@Northwind.example",
		},
	}
}

// =============================================================================
// Unit tests
// =============================================================================

func TestCustomerService_Add(t *testing.T) {
	t.Run("allocates both ids", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		ids := new(MockIDAllocator)
		ids.On("NextID", mock.Anything, shared.SequenceCustomer).Return(int64(12), nil).Once()
		ids.On("NextID", mock.Anything, shared.SequenceContact).Return(int64(30), nil).Once()
		repo.On("Create", mock.Anything, mock.MatchedBy(func(c *partner.Customer) bool {
			return c.CustomerID() == 12 && c.Contact.ContactID == 30
		})).Return(nil).Once()

		svc := NewCustomerService(repo, ids, WithClock(fixedNow))
		resp, err := svc.Add(context.Background(), validAddRequest())

		require.NoError(t, err)
		assert.Equal(t, int64(12), resp.CustomerID)
		assert.Equal(t, int64(30), resp.Contact.ContactID)
		assert.Equal(t, "ana.lima@northwind.example", resp.Contact.Email)
		assert.Equal(t, fixedNow(), resp.CreatedAt)
		repo.AssertExpectations(t)
		ids.AssertExpectations(t)
	})

	t.Run("invalid profile allocates nothing", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		ids := new(MockIDAllocator)
		req := validAddRequest()
		req.Name = "  "

		_, err := NewCustomerService(repo, ids).Add(context.Background(), req)

		assert.ErrorIs(t, err, shared.ErrInvalidInput)
		ids.AssertNotCalled(t, "NextID", mock.Anything, mock.Anything)
	})

	t.Run("allocation failure", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		ids := new(MockIDAllocator)
		ids.On("NextID", mock.Anything, shared.SequenceCustomer).
			Return(int64(0), shared.ErrAllocation.Wrap(errors.New("connection refused"))).Once()

		_, err := NewCustomerService(repo, ids).Add(context.Background(), validAddRequest())

		assert.ErrorIs(t, err, shared.ErrAllocation)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("duplicate id is an allocation failure", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		ids := new(MockIDAllocator)
		ids.On("NextID", mock.Anything, mock.Anything).Return(int64(1), nil).Twice()
		repo.On("Create", mock.Anything, mock.Anything).Return(shared.ErrAlreadyExists).Once()

		_, err := NewCustomerService(repo, ids).Add(context.Background(), validAddRequest())

		assert.ErrorIs(t, err, shared.ErrAllocation)
	})
}

func TestCustomerService_Delete(t *testing.T) {
	repo := new(MockCustomerRepository)
	repo.On("Delete", mock.Anything, int64(5)).Return(shared.ErrNotFound).Once()

	err := NewCustomerService(repo, new(MockIDAllocator)).Delete(context.Background(), 5)

	assert.ErrorIs(t, err, shared.ErrNotFound)
	repo.AssertExpectations(t)
}

// =============================================================================
// Store-backed tests
// =============================================================================

func newStoreBackedService(t *testing.T) *CustomerService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.AllModels()...))

	return NewCustomerService(
		persistence.NewGormCustomerRepository(db),
		persistence.NewSequenceAllocator(db),
		WithClock(fixedNow),
	)
}

func TestCustomerService_AddListDelete(t *testing.T) {
	svc := newStoreBackedService(t)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		resp, err := svc.Add(ctx, validAddRequest())
		require.NoError(t, err)
		assert.Equal(t, want, resp.CustomerID)
		assert.Equal(t, want, resp.Contact.ContactID)
	}

	list, err := svc.ListCustomerIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 2, 1}, list.CustomerIDs)

	require.NoError(t, svc.Delete(ctx, 2))
	_, err = svc.GetByID(ctx, 2)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, 2), shared.ErrNotFound)

	list, err = svc.ListCustomerIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1}, list.CustomerIDs)

	// ids are never reused after a delete
	resp, err := svc.Add(ctx, validAddRequest())
	require.NoError(t, err)
	assert.Equal(t, int64(4), resp.CustomerID)
}
