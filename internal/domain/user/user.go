package user

import (
	"customer-management/internal/pkg/apperrors"
	"strings"
	"time"
)

const MinPasswordLength = 8

type User struct {
	UserID       int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NormalizeEmail trims and lower-cases an address so lookups and the unique
// index agree on one spelling.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateRegistration(name, email, password string) error {
	if strings.TrimSpace(name) == "" {
		return apperrors.NewValidationError("name", "name is required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return apperrors.NewValidationError("email", "a valid email is required")
	}
	if len(password) < MinPasswordLength {
		return apperrors.NewValidationError("password", "password must be at least 8 characters")
	}
	return nil
}
