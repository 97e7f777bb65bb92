package handler_test

import (
	"context"
	"customer-management/internal/domain/customer"
	"customer-management/internal/domain/user"
	"io"
	"log/slog"

	"github.com/stretchr/testify/mock"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type MockCustomerService struct {
	mock.Mock
}

var _ customer.CustomerService = (*MockCustomerService)(nil)

func (m *MockCustomerService) ListCustomers(ctx context.Context) ([]*customer.Customer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*customer.Customer), args.Error(1)
}

func (m *MockCustomerService) GetCustomer(ctx context.Context, customerID int64) (*customer.Customer, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func (m *MockCustomerService) CreateCustomer(ctx context.Context, req *customer.Customer) (*customer.Customer, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func (m *MockCustomerService) UpdateCustomer(ctx context.Context, customerID int64, req *customer.Customer) (*customer.Customer, error) {
	args := m.Called(ctx, customerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func (m *MockCustomerService) DeleteCustomer(ctx context.Context, customerID int64) error {
	args := m.Called(ctx, customerID)
	return args.Error(0)
}

func (m *MockCustomerService) RefreshLoanAssessment(ctx context.Context, cust *customer.Customer) (bool, error) {
	args := m.Called(ctx, cust)
	return args.Bool(0), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

var _ user.UserService = (*MockUserService)(nil)

func (m *MockUserService) Register(ctx context.Context, name, email, password string) (*user.User, error) {
	args := m.Called(ctx, name, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserService) Authenticate(ctx context.Context, email, password string) (*user.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}
