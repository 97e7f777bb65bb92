package handler

import (
	"customer-management/internal/api/handler/dto"
	"customer-management/internal/domain/customer"
	"customer-management/internal/pkg/apperrors"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
)

type CustomerHandler struct {
	service customer.CustomerService
	logger  *slog.Logger
}

func NewCustomerHandler(s customer.CustomerService, l *slog.Logger) *CustomerHandler {
	if s == nil {
		panic("customer service cannot be nil")
	}
	if l == nil {
		panic("logger cannot be nil")
	}
	return &CustomerHandler{
		service: s,
		logger:  l.With("component", "CustomerHandler"),
	}
}

func (h *CustomerHandler) logServiceError(r *http.Request, msg string, err error) {
	level := slog.LevelError
	if apperrors.HTTPStatus(err) < http.StatusInternalServerError {
		level = slog.LevelWarn
	}
	h.logger.Log(r.Context(), level, msg, slog.Any("error", err))
}

func (h *CustomerHandler) decodeCustomerRequest(r *http.Request) (*customer.Customer, error) {
	var req dto.CustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}
	if err := dto.Validate(&req); err != nil {
		return nil, err
	}
	return req.ToDomain(), nil
}

// ListCustomers handles GET /api/customers
// @Summary List customers
// @Description Returns every customer ordered by id, including the computed loan eligibility and maximum loan amount.
// @Tags Customers
// @Produce json
// @Success 200 {array} dto.CustomerResponse "List of customers"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid bearer token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers [get]
// @Security BearerAuth
func (h *CustomerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.service.ListCustomers(r.Context())
	if err != nil {
		h.logServiceError(r, "Service failed to list customers", err)
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewCustomerListResponse(customers))
}

// GetCustomer handles GET /api/customers/{customerID}
// @Summary Retrieve customer details
// @Tags Customers
// @Produce json
// @Param customerID path int true "Customer ID" Minimum(1)
// @Success 200 {object} dto.CustomerResponse "Customer details retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid customer ID format"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{customerID} [get]
// @Security BearerAuth
func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get customer ID from URL", slog.Any("error", err))
		respondError(w, err)
		return
	}

	cust, err := h.service.GetCustomer(r.Context(), customerID)
	if err != nil {
		h.logServiceError(r, "Service failed to get customer", err)
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewCustomerResponse(cust))
}

// CreateCustomer handles POST /api/customers
// @Summary Create a new customer
// @Description Creates a customer. loanEligible and maxLoanAmount are computed by the server from salary, credit score and employment status.
// @Tags Customers
// @Accept json
// @Produce json
// @Param request body dto.CustomerRequest true "Customer creation request"
// @Success 201 {object} dto.CustomerResponse "Customer successfully created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload"
// @Failure 409 {object} dto.ErrorResponse "Username or email already registered"
// @Failure 500 {object} dto.ErrorResponse "Internal server error during creation"
// @Router /customers [post]
// @Security BearerAuth
func (h *CustomerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	req, err := h.decodeCustomerRequest(r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Rejected create customer request", slog.Any("error", err))
		respondError(w, err)
		return
	}

	created, err := h.service.CreateCustomer(r.Context(), req)
	if err != nil {
		h.logServiceError(r, "Service failed to create customer", err)
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Customer created successfully", slog.Int64("customerID", created.CustomerID))
	w.Header().Set("Location", "/api/customers/"+strconv.FormatInt(created.CustomerID, 10))
	respondJSON(w, http.StatusCreated, dto.NewCustomerResponse(created))
}

// UpdateCustomer handles PUT /api/customers/{customerID}
// @Summary Replace a customer
// @Description Overwrites every editable field with the request body (absent optional fields are cleared) and recomputes the loan assessment.
// @Tags Customers
// @Accept json
// @Produce json
// @Param customerID path int true "Customer ID" Minimum(1)
// @Param request body dto.CustomerRequest true "Customer update request"
// @Success 200 {object} dto.CustomerResponse "Customer updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload or ID"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 409 {object} dto.ErrorResponse "Username or email already registered"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{customerID} [put]
// @Security BearerAuth
func (h *CustomerHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get customer ID from URL", slog.Any("error", err))
		respondError(w, err)
		return
	}

	req, err := h.decodeCustomerRequest(r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Rejected update customer request", slog.Any("error", err))
		respondError(w, err)
		return
	}

	updated, err := h.service.UpdateCustomer(r.Context(), customerID, req)
	if err != nil {
		h.logServiceError(r, "Service failed to update customer", err)
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewCustomerResponse(updated))
}

// DeleteCustomer handles DELETE /api/customers/{customerID}
// @Summary Delete a customer
// @Tags Customers
// @Param customerID path int true "Customer ID" Minimum(1)
// @Success 204 "Customer deleted"
// @Failure 400 {object} dto.ErrorResponse "Invalid customer ID format"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{customerID} [delete]
// @Security BearerAuth
func (h *CustomerHandler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get customer ID from URL", slog.Any("error", err))
		respondError(w, err)
		return
	}

	if err := h.service.DeleteCustomer(r.Context(), customerID); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			h.logServiceError(r, "Service failed to delete customer", err)
		}
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
