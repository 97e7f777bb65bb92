package batch_test

import (
	"context"
	"customer-management/internal/batch"
	"customer-management/internal/domain/customer"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type MockCustomerService struct {
	mock.Mock
}

var _ customer.CustomerService = (*MockCustomerService)(nil)

func (m *MockCustomerService) ListCustomers(ctx context.Context) ([]*customer.Customer, error) {
	args := m.Called(ctx)
	if customers, ok := args.Get(0).([]*customer.Customer); ok {
		return customers, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCustomerService) GetCustomer(ctx context.Context, customerID int64) (*customer.Customer, error) {
	args := m.Called(ctx, customerID)
	if cust, ok := args.Get(0).(*customer.Customer); ok {
		return cust, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCustomerService) CreateCustomer(ctx context.Context, req *customer.Customer) (*customer.Customer, error) {
	args := m.Called(ctx, req)
	if cust, ok := args.Get(0).(*customer.Customer); ok {
		return cust, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCustomerService) UpdateCustomer(ctx context.Context, customerID int64, req *customer.Customer) (*customer.Customer, error) {
	args := m.Called(ctx, customerID, req)
	if cust, ok := args.Get(0).(*customer.Customer); ok {
		return cust, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCustomerService) DeleteCustomer(ctx context.Context, customerID int64) error {
	return m.Called(ctx, customerID).Error(0)
}

func (m *MockCustomerService) RefreshLoanAssessment(ctx context.Context, cust *customer.Customer) (bool, error) {
	args := m.Called(ctx, cust)
	return args.Bool(0), args.Error(1)
}

func customers(ids ...int64) []*customer.Customer {
	out := make([]*customer.Customer, 0, len(ids))
	for _, id := range ids {
		out = append(out, &customer.Customer{CustomerID: id})
	}
	return out
}

func byID(id int64) any {
	return mock.MatchedBy(func(c *customer.Customer) bool { return c.CustomerID == id })
}

func TestNewRefreshAssessmentJob_Panics(t *testing.T) {
	assert.Panics(t, func() { batch.NewRefreshAssessmentJob(nil, 1, testLogger) })
	assert.Panics(t, func() { batch.NewRefreshAssessmentJob(new(MockCustomerService), 1, nil) })
}

func TestRefreshAssessmentJob_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("refreshes stale customers and skips current ones", func(t *testing.T) {
		svc := new(MockCustomerService)
		svc.On("ListCustomers", ctx).Return(customers(1, 2, 3), nil).Once()
		svc.On("RefreshLoanAssessment", ctx, byID(1)).Return(true, nil).Once()
		svc.On("RefreshLoanAssessment", ctx, byID(2)).Return(false, nil).Once()
		svc.On("RefreshLoanAssessment", ctx, byID(3)).Return(true, nil).Once()

		err := batch.NewRefreshAssessmentJob(svc, 2, testLogger).Run(ctx)

		assert.NoError(t, err)
		svc.AssertExpectations(t)
	})

	t.Run("no customers", func(t *testing.T) {
		svc := new(MockCustomerService)
		svc.On("ListCustomers", ctx).Return([]*customer.Customer{}, nil).Once()

		err := batch.NewRefreshAssessmentJob(svc, 2, testLogger).Run(ctx)

		assert.NoError(t, err)
		svc.AssertNotCalled(t, "RefreshLoanAssessment", mock.Anything, mock.Anything)
	})

	t.Run("listing fails", func(t *testing.T) {
		svc := new(MockCustomerService)
		listErr := errors.New("db down")
		svc.On("ListCustomers", ctx).Return(nil, listErr).Once()

		err := batch.NewRefreshAssessmentJob(svc, 2, testLogger).Run(ctx)

		require.Error(t, err)
		assert.ErrorIs(t, err, listErr)
	})

	t.Run("deleted customers are not errors", func(t *testing.T) {
		svc := new(MockCustomerService)
		svc.On("ListCustomers", ctx).Return(customers(1, 2), nil).Once()
		svc.On("RefreshLoanAssessment", ctx, byID(1)).Return(false, customer.ErrNotFound).Once()
		svc.On("RefreshLoanAssessment", ctx, byID(2)).Return(true, nil).Once()

		assert.NoError(t, batch.NewRefreshAssessmentJob(svc, 1, testLogger).Run(ctx))
	})

	t.Run("customers updated during the run are skipped", func(t *testing.T) {
		svc := new(MockCustomerService)
		svc.On("ListCustomers", ctx).Return(customers(1, 2, 3), nil).Once()
		svc.On("RefreshLoanAssessment", ctx, byID(1)).Return(false, customer.ErrProfileChanged).Once()
		svc.On("RefreshLoanAssessment", ctx, byID(2)).Return(true, nil).Once()
		svc.On("RefreshLoanAssessment", ctx, byID(3)).Return(false, fmt.Errorf("wrapped: %w", customer.ErrProfileChanged)).Once()

		assert.NoError(t, batch.NewRefreshAssessmentJob(svc, 2, testLogger).Run(ctx))
		svc.AssertExpectations(t)
	})

	t.Run("save failures are counted and reported", func(t *testing.T) {
		svc := new(MockCustomerService)
		svc.On("ListCustomers", ctx).Return(customers(1, 2, 3), nil).Once()
		svc.On("RefreshLoanAssessment", ctx, byID(1)).Return(false, errors.New("write failed")).Once()
		svc.On("RefreshLoanAssessment", ctx, byID(2)).Return(true, nil).Once()
		svc.On("RefreshLoanAssessment", ctx, byID(3)).Return(false, errors.New("write failed")).Once()

		err := batch.NewRefreshAssessmentJob(svc, 3, testLogger).Run(ctx)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "job completed with 2 errors")
		svc.AssertExpectations(t)
	})

	t.Run("cancelled context stops dispatch", func(t *testing.T) {
		cancelCtx, cancel := context.WithCancel(ctx)
		svc := new(MockCustomerService)
		svc.On("ListCustomers", cancelCtx).Return(customers(1, 2, 3, 4), nil).Once()
		svc.On("RefreshLoanAssessment", cancelCtx, mock.Anything).Run(func(mock.Arguments) {
			cancel()
		}).Return(false, nil)

		err := batch.NewRefreshAssessmentJob(svc, 1, testLogger).Run(cancelCtx)

		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Less(t, len(svc.Calls), 1+4)
	})

	t.Run("worker count bounds concurrency", func(t *testing.T) {
		var inFlight, peak atomic.Int32
		svc := new(MockCustomerService)
		svc.On("ListCustomers", ctx).Return(customers(1, 2, 3, 4, 5, 6, 7, 8), nil).Once()
		svc.On("RefreshLoanAssessment", ctx, mock.Anything).Run(func(mock.Arguments) {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			inFlight.Add(-1)
		}).Return(false, nil)

		require.NoError(t, batch.NewRefreshAssessmentJob(svc, 2, testLogger).Run(ctx))
		assert.LessOrEqual(t, peak.Load(), int32(2))
		svc.AssertNumberOfCalls(t, "RefreshLoanAssessment", 8)
	})
}
