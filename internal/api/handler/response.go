package handler

import (
	"customer-management/internal/api/handler/dto"
	"customer-management/internal/pkg/apperrors"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return fmt.Errorf("%w: request body is empty", apperrors.ErrInvalidArgument)
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("%w: malformed JSON body: %v", apperrors.ErrInvalidArgument, err)
	}
	if decoder.More() {
		return fmt.Errorf("%w: request body must contain a single JSON object", apperrors.ErrInvalidArgument)
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Default().Error("Failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":{"message":"Internal server error"}}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

// respondError maps domain errors to a status and the standard error body.
// Server-side failures never leak their cause to the client.
func respondError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatus(err)
	message, field := err.Error(), ""

	var validationError *apperrors.ValidationError
	if errors.As(err, &validationError) {
		message, field = validationError.Message, validationError.Field
	}
	if status == http.StatusInternalServerError {
		slog.Default().Error("Unhandled internal error", "error", err)
		message, field = "An unexpected error occurred.", ""
	}

	respondJSON(w, status, dto.ErrorResponse{
		Error: dto.ErrorDetail{
			Message: message,
			Field:   field,
		},
	})
}

func getCustomerIDFromURL(r *http.Request) (int64, error) {
	idStr := chi.URLParam(r, "customerID")
	if idStr == "" {
		return 0, fmt.Errorf("%w: customerID not found in URL path", apperrors.ErrInvalidArgument)
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid customerID format in URL path: %s", apperrors.ErrInvalidArgument, idStr)
	}
	return id, nil
}
