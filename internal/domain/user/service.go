package user

import (
	"context"
	"customer-management/internal/pkg/apperrors"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

type UserService interface {
	Register(ctx context.Context, name, email, password string) (*User, error)
	Authenticate(ctx context.Context, email, password string) (*User, error)
}

var _ UserService = (*userService)(nil)

type userService struct {
	repo       UserRepository
	bcryptCost int
	logger     *slog.Logger
}

type Option func(*userService)

// WithBcryptCost overrides bcrypt.DefaultCost. Tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(s *userService) {
		s.bcryptCost = cost
	}
}

func NewUserService(repo UserRepository, logger *slog.Logger, opts ...Option) UserService {
	if repo == nil {
		panic("user repository cannot be nil")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	}

	s := &userService{
		repo:       repo,
		bcryptCost: bcrypt.DefaultCost,
		logger:     logger.With(slog.String("component", "userService")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *userService) Register(ctx context.Context, name, email, password string) (*User, error) {
	email = NormalizeEmail(email)
	logger := s.logger.With(slog.String("email", email))
	logger.InfoContext(ctx, "Attempting to register user")

	if err := validateRegistration(name, email, password); err != nil {
		logger.WarnContext(ctx, "Registration validation failed", slog.Any("error", err))
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to hash password", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to hash password: %w", apperrors.ErrInternalServer, err)
	}

	u := &User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.repo.Save(ctx, u); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			logger.WarnContext(ctx, "Email already registered")
			return nil, ErrEmailTaken
		}
		logger.ErrorContext(ctx, "Repository failed to save user", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	logger.InfoContext(ctx, "User registered", slog.Int64("userID", u.UserID))
	return u, nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*User, error) {
	email = NormalizeEmail(email)
	logger := s.logger.With(slog.String("email", email))

	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			logger.WarnContext(ctx, "Login attempt for unknown email")
			return nil, ErrInvalidCredentials
		}
		logger.ErrorContext(ctx, "Repository error looking up user", slog.Any("error", err))
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		logger.WarnContext(ctx, "Login attempt with wrong password")
		return nil, ErrInvalidCredentials
	}

	logger.InfoContext(ctx, "User authenticated", slog.Int64("userID", u.UserID))
	return u, nil
}
