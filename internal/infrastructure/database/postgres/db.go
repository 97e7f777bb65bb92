package postgres

import (
	"context"
	"customer-management/internal/pkg/apperrors"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	statusSuccess = "success"
	statusError   = "error"

	pgUniqueViolation = "23505"
)

// DBPool is the subset of *pgxpool.Pool the repositories use. pgxmock's pool
// satisfies it in tests.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
	Close()
}

var _ DBPool = (*pgxpool.Pool)(nil)

var errMsgFormat = "%w: %w"

func queryStatus(err error) string {
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return statusError
	}
	return statusSuccess
}

// translateDBError maps driver errors onto the apperrors sentinels.
func translateDBError(err error, contextLogger *slog.Logger) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == pgUniqueViolation {
			contextLogger.Warn("Database unique constraint violation", "detail", pgErr.Detail, "constraint", pgErr.ConstraintName)
			return fmt.Errorf("%w: %s", apperrors.ErrAlreadyExists, pgErr.ConstraintName)
		}

		contextLogger.Error("PostgreSQL specific error", "code", pgErr.Code, "message", pgErr.Message, "detail", pgErr.Detail)
		return apperrors.WrapDatabaseError(pgErr, "db error code "+pgErr.Code)
	}

	contextLogger.Error("Generic database error", "error", err)
	return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
}
