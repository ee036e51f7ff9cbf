package handler

import (
	"context"

	partnerapp "github.com/erp/crm/internal/application/partner"
	salesapp "github.com/erp/crm/internal/application/sales"
	"github.com/stretchr/testify/mock"
)

// MockOpportunityStore is a mock implementation of OpportunityStore
type MockOpportunityStore struct {
	mock.Mock
}

func (m *MockOpportunityStore) Create(ctx context.Context, req salesapp.CreateOpportunityRequest) (*salesapp.OpportunityResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*salesapp.OpportunityResponse), args.Error(1)
}

func (m *MockOpportunityStore) View(ctx context.Context, id int64) (*salesapp.OpportunityResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*salesapp.OpportunityResponse), args.Error(1)
}

func (m *MockOpportunityStore) Update(ctx context.Context, id int64, req salesapp.UpdateOpportunityRequest) (*salesapp.OpportunityResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*salesapp.OpportunityResponse), args.Error(1)
}

func (m *MockOpportunityStore) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOpportunityStore) Recent(ctx context.Context, customerID int64) (*salesapp.RecentOpportunitiesResponse, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*salesapp.RecentOpportunitiesResponse), args.Error(1)
}

func (m *MockOpportunityStore) ListOpportunityIDs(ctx context.Context, customerID int64) ([]int64, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockOpportunityStore) ResetRecentCache(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockCustomerAdmin is a mock implementation of CustomerAdmin
type MockCustomerAdmin struct {
	mock.Mock
}

func (m *MockCustomerAdmin) Add(ctx context.Context, req partnerapp.AddCustomerRequest) (*partnerapp.CustomerResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partnerapp.CustomerResponse), args.Error(1)
}

func (m *MockCustomerAdmin) GetByID(ctx context.Context, customerID int64) (*partnerapp.CustomerResponse, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partnerapp.CustomerResponse), args.Error(1)
}

func (m *MockCustomerAdmin) Delete(ctx context.Context, customerID int64) error {
	args := m.Called(ctx, customerID)
	return args.Error(0)
}

func (m *MockCustomerAdmin) ListCustomerIDs(ctx context.Context) (*partnerapp.CustomerIDsResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partnerapp.CustomerIDsResponse), args.Error(1)
}

// MockPinger is a mock implementation of Pinger
type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
