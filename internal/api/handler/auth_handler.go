package handler

import (
	"customer-management/internal/api/handler/dto"
	"customer-management/internal/config"
	"customer-management/internal/domain/user"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenIssuer = "customer-management"
	tokenType   = "Bearer"
)

var errMissingSigningSecret = errors.New("jwt signing secret is not configured")

type AuthHandler struct {
	service user.UserService
	cfg     config.AuthConfig
	logger  *slog.Logger
	now     func() time.Time
}

func NewAuthHandler(s user.UserService, cfg config.AuthConfig, l *slog.Logger) *AuthHandler {
	if s == nil {
		panic("user service cannot be nil")
	}
	if l == nil {
		panic("logger cannot be nil")
	}
	return &AuthHandler{
		service: s,
		cfg:     cfg,
		logger:  l.With("component", "AuthHandler"),
		now:     time.Now,
	}
}

// Register handles POST /api/auth/register
// @Summary Register an API user
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration request"
// @Success 201 {object} dto.UserResponse "User registered"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload"
// @Failure 409 {object} dto.ErrorResponse "Email already registered"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode register request", slog.Any("error", err))
		respondError(w, err)
		return
	}
	if err := dto.Validate(&req); err != nil {
		respondError(w, err)
		return
	}

	u, err := h.service.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Registration rejected", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "User registered", slog.Int64("userID", u.UserID))
	respondJSON(w, http.StatusCreated, dto.NewUserResponse(u))
}

// Login handles POST /api/auth/login
// @Summary Exchange credentials for a bearer token
// @Description Returns a signed HS256 JWT to send as "Authorization: Bearer <token>" on customer endpoints.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login request"
// @Success 200 {object} dto.TokenResponse "Token issued"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload"
// @Failure 401 {object} dto.ErrorResponse "Invalid email or password"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode login request", slog.Any("error", err))
		respondError(w, err)
		return
	}
	if err := dto.Validate(&req); err != nil {
		respondError(w, err)
		return
	}

	u, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Login rejected", slog.Any("error", err))
		respondError(w, err)
		return
	}

	token, expiresAt, err := h.issueToken(u)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to sign token", slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.TokenResponse{
		Token:     token,
		TokenType: tokenType,
		ExpiresAt: expiresAt,
	})
}

func (h *AuthHandler) issueToken(u *user.User) (string, time.Time, error) {
	if h.cfg.JWTSecret == "" {
		return "", time.Time{}, errMissingSigningSecret
	}

	issuedAt := h.now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(h.cfg.TokenTTL)
	claims := struct {
		Email string `json:"email"`
		jwt.RegisteredClaims
	}{
		Email: u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(u.UserID, 10),
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}
