package postgres

import (
	"customer-management/internal/pkg/apperrors"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestTranslateDBError(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, translateDBError(nil, logger))
	})

	t.Run("no rows maps to not found", func(t *testing.T) {
		assert.ErrorIs(t, translateDBError(pgx.ErrNoRows, logger), apperrors.ErrNotFound)
	})

	t.Run("unique violation maps to already exists", func(t *testing.T) {
		err := translateDBError(&pgconn.PgError{Code: "23505", ConstraintName: "customers_email_key"}, logger)
		assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
		assert.Contains(t, err.Error(), "customers_email_key")
	})

	t.Run("other pg errors map to database", func(t *testing.T) {
		err := translateDBError(&pgconn.PgError{Code: "42P01"}, logger)
		assert.ErrorIs(t, err, apperrors.ErrDatabase)
		assert.Contains(t, err.Error(), "42P01")

		var appErr *apperrors.AppError
		assert.ErrorAs(t, err, &appErr)
		assert.Equal(t, "DB_ERROR", appErr.Code)
	})

	t.Run("generic errors map to database", func(t *testing.T) {
		cause := errors.New("broken pipe")
		err := translateDBError(cause, logger)
		assert.ErrorIs(t, err, apperrors.ErrDatabase)
		assert.ErrorIs(t, err, cause)
	})
}

func TestQueryStatus(t *testing.T) {
	assert.Equal(t, statusSuccess, queryStatus(nil))
	assert.Equal(t, statusSuccess, queryStatus(pgx.ErrNoRows))
	assert.Equal(t, statusError, queryStatus(errors.New("boom")))
}
