package postgres

import (
	"context"
	"customer-management/internal/domain/user"
	"customer-management/internal/infrastructure/monitoring"
	"customer-management/internal/pkg/apperrors"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
)

const (
	insertUserSQL = `
        INSERT INTO users (name, email, password_hash, created_at)
        VALUES ($1, $2, $3, NOW())
        RETURNING id, created_at`

	selectUserByEmailSQL = `
        SELECT id, name, email, password_hash, created_at
        FROM users
        WHERE email = $1`
)

type UserRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ user.UserRepository = (*UserRepository)(nil)

func NewUserRepository(db DBPool, logger *slog.Logger) *UserRepository {
	if db == nil {
		panic("DBPool cannot be nil for UserRepository")
	}
	return &UserRepository{db: db, logger: logger.With("component", "UserRepository")}
}

func (r *UserRepository) Save(ctx context.Context, u *user.User) error {
	if u == nil {
		return fmt.Errorf("%w: user cannot be nil", apperrors.ErrInvalidArgument)
	}

	start := time.Now()
	err := r.db.QueryRow(ctx, insertUserSQL, u.Name, u.Email, u.PasswordHash).Scan(&u.UserID, &u.CreatedAt)
	monitoring.RecordDBQuery("CreateUser", queryStatus(err), time.Since(start))

	if err != nil {
		return translateDBError(err, r.logger)
	}

	r.logger.InfoContext(ctx, "User inserted", slog.Int64("userID", u.UserID))
	return nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	start := time.Now()
	var u user.User
	err := r.db.QueryRow(ctx, selectUserByEmailSQL, email).Scan(&u.UserID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	monitoring.RecordDBQuery("FindUserByEmail", queryStatus(err), time.Since(start))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to query user by email", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to get user by email: %w", apperrors.ErrDatabase, err)
	}
	return &u, nil
}
