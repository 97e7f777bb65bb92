package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"customer-management/internal/domain/customer"
	"customer-management/internal/infrastructure/monitoring"
	"customer-management/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
)

const customerColumns = `id, name, surname, username, email, COALESCE(phone, ''), COALESCE(address, ''),
        monthly_salary, credit_score, COALESCE(employment_status, ''), loan_eligible, max_loan_amount,
        created_at, updated_at`

const (
	insertCustomerSQL = `
        INSERT INTO customers (name, surname, username, email, phone, address, monthly_salary, credit_score,
            employment_status, loan_eligible, max_loan_amount, created_at, updated_at)
        VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, $8, NULLIF($9, ''), $10, $11, NOW(), NOW())
        RETURNING id, created_at, updated_at`

	updateCustomerSQL = `
        UPDATE customers
        SET name = $1,
            surname = $2,
            username = $3,
            email = $4,
            phone = NULLIF($5, ''),
            address = NULLIF($6, ''),
            monthly_salary = $7,
            credit_score = $8,
            employment_status = NULLIF($9, ''),
            loan_eligible = $10,
            max_loan_amount = $11,
            updated_at = NOW()
        WHERE id = $12
        RETURNING created_at, updated_at`

	selectCustomerByIDSQL = `
        SELECT ` + customerColumns + `
        FROM customers
        WHERE id = $1`

	selectAllCustomersSQL = `
        SELECT ` + customerColumns + `
        FROM customers
        ORDER BY id ASC`

	updateAssessmentSQL = `
        UPDATE customers
        SET loan_eligible = $1,
            max_loan_amount = $2,
            updated_at = NOW()
        WHERE id = $3
          AND monthly_salary IS NOT DISTINCT FROM $4
          AND credit_score IS NOT DISTINCT FROM $5
          AND COALESCE(employment_status, '') = $6
        RETURNING updated_at`

	deleteCustomerSQL = `DELETE FROM customers WHERE id = $1`
)

type rowScanner interface {
	Scan(dest ...any) error
}

type CustomerRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ customer.CustomerRepository = (*CustomerRepository)(nil)

func NewCustomerRepository(db DBPool, logger *slog.Logger) *CustomerRepository {
	if db == nil {
		panic("DBPool cannot be nil for CustomerRepository")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerRepository, using default stderr handler")
	}
	return &CustomerRepository{
		db:     db,
		logger: logger.With("component", "CustomerRepository"),
	}
}

func scanCustomer(row rowScanner) (*customer.Customer, error) {
	var cust customer.Customer
	err := row.Scan(
		&cust.CustomerID,
		&cust.Name,
		&cust.Surname,
		&cust.Username,
		&cust.Email,
		&cust.Phone,
		&cust.Address,
		&cust.MonthlySalary,
		&cust.CreditScore,
		&cust.EmploymentStatus,
		&cust.LoanEligible,
		&cust.MaxLoanAmount,
		&cust.CreatedAt,
		&cust.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &cust, nil
}

// Save inserts customers without an id and updates the rest.
func (r *CustomerRepository) Save(ctx context.Context, cust *customer.Customer) error {
	if cust == nil {
		return fmt.Errorf("%w: customer cannot be nil", apperrors.ErrInvalidArgument)
	}

	if cust.CustomerID == 0 {
		return r.createCustomer(ctx, cust)
	}
	return r.updateCustomer(ctx, cust)
}

func (r *CustomerRepository) createCustomer(ctx context.Context, cust *customer.Customer) error {
	r.logger.InfoContext(ctx, "Attempting to insert new customer", slog.String("username", cust.Username))

	start := time.Now()
	err := r.db.QueryRow(ctx, insertCustomerSQL,
		cust.Name,
		cust.Surname,
		cust.Username,
		cust.Email,
		cust.Phone,
		cust.Address,
		cust.MonthlySalary,
		cust.CreditScore,
		cust.EmploymentStatus,
		cust.LoanEligible,
		cust.MaxLoanAmount,
	).Scan(
		&cust.CustomerID,
		&cust.CreatedAt,
		&cust.UpdatedAt,
	)
	monitoring.RecordDBQuery("CreateCustomer", queryStatus(err), time.Since(start))

	if err != nil {
		translatedErr := translateDBError(err, r.logger)
		if errors.Is(translatedErr, apperrors.ErrAlreadyExists) {
			r.logger.WarnContext(ctx, "Failed to insert customer due to unique constraint violation", slog.String("username", cust.Username))
			return translatedErr
		}
		r.logger.ErrorContext(ctx, "Failed to insert customer", slog.Any("error", err))
		return fmt.Errorf("%w: failed to insert customer: %w", apperrors.ErrDatabase, err)
	}

	r.logger.InfoContext(ctx, "Customer inserted successfully", slog.Int64("customerID", cust.CustomerID))
	return nil
}

func (r *CustomerRepository) updateCustomer(ctx context.Context, cust *customer.Customer) error {
	logger := r.logger.With(slog.Int64("customerID", cust.CustomerID))
	logger.InfoContext(ctx, "Attempting to update customer")

	start := time.Now()
	err := r.db.QueryRow(ctx, updateCustomerSQL,
		cust.Name,
		cust.Surname,
		cust.Username,
		cust.Email,
		cust.Phone,
		cust.Address,
		cust.MonthlySalary,
		cust.CreditScore,
		cust.EmploymentStatus,
		cust.LoanEligible,
		cust.MaxLoanAmount,
		cust.CustomerID,
	).Scan(
		&cust.CreatedAt,
		&cust.UpdatedAt,
	)
	monitoring.RecordDBQuery("UpdateCustomer", queryStatus(err), time.Since(start))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.WarnContext(ctx, "Update matched zero rows, customer likely not found")
			return customer.ErrNotFound
		}
		translatedErr := translateDBError(err, logger)
		if errors.Is(translatedErr, apperrors.ErrAlreadyExists) {
			logger.WarnContext(ctx, "Failed to update customer due to unique constraint violation", slog.Any("error", err))
			return translatedErr
		}
		logger.ErrorContext(ctx, "Failed to update customer", slog.Any("error", err))
		return fmt.Errorf("%w: failed to update customer: %w", apperrors.ErrDatabase, err)
	}

	logger.InfoContext(ctx, "Customer updated successfully")
	return nil
}

// UpdateAssessment rewrites the derived loan columns only while the row still
// holds the salary, credit score and employment status they were computed from.
func (r *CustomerRepository) UpdateAssessment(ctx context.Context, cust *customer.Customer) error {
	if cust == nil {
		return fmt.Errorf("%w: customer cannot be nil", apperrors.ErrInvalidArgument)
	}
	logger := r.logger.With(slog.Int64("customerID", cust.CustomerID))
	logger.InfoContext(ctx, "Attempting to update customer loan assessment")

	start := time.Now()
	err := r.db.QueryRow(ctx, updateAssessmentSQL,
		cust.LoanEligible,
		cust.MaxLoanAmount,
		cust.CustomerID,
		cust.MonthlySalary,
		cust.CreditScore,
		cust.EmploymentStatus,
	).Scan(&cust.UpdatedAt)
	monitoring.RecordDBQuery("UpdateCustomerAssessment", queryStatus(err), time.Since(start))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.InfoContext(ctx, "Assessment update matched zero rows, customer changed or deleted")
			return customer.ErrProfileChanged
		}
		logger.ErrorContext(ctx, "Failed to update customer loan assessment", slog.Any("error", err))
		return fmt.Errorf("%w: failed to update customer loan assessment: %w", apperrors.ErrDatabase, err)
	}

	logger.InfoContext(ctx, "Customer loan assessment updated successfully")
	return nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, customerID int64) (*customer.Customer, error) {
	logger := r.logger.With(slog.Int64("customerID", customerID))
	logger.InfoContext(ctx, "Attempting to find customer by ID")

	start := time.Now()
	cust, err := scanCustomer(r.db.QueryRow(ctx, selectCustomerByIDSQL, customerID))
	monitoring.RecordDBQuery("FindCustomerByID", queryStatus(err), time.Since(start))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.WarnContext(ctx, "Customer not found")
			return nil, customer.ErrNotFound
		}
		logger.ErrorContext(ctx, "Failed to query/scan customer by ID", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to get customer by ID: %w", apperrors.ErrDatabase, err)
	}

	logger.InfoContext(ctx, "Customer found successfully")
	return cust, nil
}

func (r *CustomerRepository) FindAll(ctx context.Context) ([]*customer.Customer, error) {
	r.logger.InfoContext(ctx, "Attempting to find all customers")

	start := time.Now()
	customers, err := r.findAll(ctx)
	monitoring.RecordDBQuery("FindAllCustomers", queryStatus(err), time.Since(start))
	if err != nil {
		return nil, err
	}

	r.logger.InfoContext(ctx, "Finished finding customers", slog.Int("count", len(customers)))
	return customers, nil
}

func (r *CustomerRepository) findAll(ctx context.Context) ([]*customer.Customer, error) {
	rows, err := r.db.Query(ctx, selectAllCustomersSQL)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query customers", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to query customers: %w", apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	customers := make([]*customer.Customer, 0)
	for rows.Next() {
		cust, err := scanCustomer(rows)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan customer row", slog.Any("error", err))
			return nil, fmt.Errorf("%w: failed to scan customer row: %w", apperrors.ErrDatabase, err)
		}
		customers = append(customers, cust)
	}

	if err = rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating customer rows", slog.Any("error", err))
		return nil, fmt.Errorf("%w: error iterating customer rows: %w", apperrors.ErrDatabase, err)
	}
	return customers, nil
}

func (r *CustomerRepository) Delete(ctx context.Context, customerID int64) error {
	logger := r.logger.With(slog.Int64("customerID", customerID))
	logger.InfoContext(ctx, "Attempting to delete customer")

	start := time.Now()
	cmdTag, err := r.db.Exec(ctx, deleteCustomerSQL, customerID)
	monitoring.RecordDBQuery("DeleteCustomer", queryStatus(err), time.Since(start))

	if err != nil {
		logger.ErrorContext(ctx, "Failed to execute delete customer", slog.Any("error", err))
		return fmt.Errorf("%w: failed to delete customer: %w", apperrors.ErrDatabase, err)
	}

	if cmdTag.RowsAffected() == 0 {
		logger.WarnContext(ctx, "Delete affected zero rows, customer likely not found")
		return customer.ErrNotFound
	}

	logger.InfoContext(ctx, "Customer deleted successfully")
	return nil
}
