package user

import (
	"context"
	"customer-management/internal/pkg/apperrors"
	"fmt"
)

var (
	ErrNotFound           = fmt.Errorf("user %w", apperrors.ErrNotFound)
	ErrEmailTaken         = fmt.Errorf("email %w", apperrors.ErrAlreadyExists)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthorized)
)

type UserRepository interface {
	Save(ctx context.Context, u *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
}
