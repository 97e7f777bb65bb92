package customer

import (
	"context"
	"customer-management/internal/pkg/apperrors"
	"fmt"
)

var (
	ErrNotFound = fmt.Errorf("customer %w", apperrors.ErrNotFound)

	ErrDuplicate = fmt.Errorf("customer username or email %w", apperrors.ErrAlreadyExists)

	ErrProfileChanged = fmt.Errorf("customer %w: changed or deleted since it was read", apperrors.ErrConflict)
)

type CustomerRepository interface {
	Save(ctx context.Context, customer *Customer) error

	FindByID(ctx context.Context, customerID int64) (*Customer, error)

	FindAll(ctx context.Context) ([]*Customer, error)

	Delete(ctx context.Context, customerID int64) error

	// UpdateAssessment writes only LoanEligible and MaxLoanAmount, and only
	// while the stored salary, credit score and employment status still equal
	// the ones on customer. Otherwise it returns ErrProfileChanged.
	UpdateAssessment(ctx context.Context, customer *Customer) error
}
