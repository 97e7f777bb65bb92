package customer

import (
	"context"
	"customer-management/internal/domain/loan"
	"customer-management/internal/event"
	"customer-management/internal/infrastructure/monitoring"
	"customer-management/internal/pkg/apperrors"
	"errors"
	"fmt"
	"log/slog"
	"os"
)

const (
	inputValidationPassed = "Input validation passed"
	customerNotFound      = "Customer not found by repository"
)

type CustomerService interface {
	ListCustomers(ctx context.Context) ([]*Customer, error)
	GetCustomer(ctx context.Context, customerID int64) (*Customer, error)
	CreateCustomer(ctx context.Context, req *Customer) (*Customer, error)
	UpdateCustomer(ctx context.Context, customerID int64, req *Customer) (*Customer, error)
	DeleteCustomer(ctx context.Context, customerID int64) error
	// RefreshLoanAssessment rewrites the derived loan fields of a customer read
	// earlier. It returns ErrProfileChanged when the row was edited or deleted
	// in between, and never touches the profile columns.
	RefreshLoanAssessment(ctx context.Context, cust *Customer) (bool, error)
}

var _ CustomerService = (*customerService)(nil)

type customerService struct {
	repo       CustomerRepository
	evaluator  loan.EligibilityEvaluator
	calculator loan.LimitCalculator
	pub        event.EventPublisher
	logger     *slog.Logger
}

func NewCustomerService(
	repo CustomerRepository,
	evaluator loan.EligibilityEvaluator,
	calculator loan.LimitCalculator,
	eventPublisher event.EventPublisher,
	logger *slog.Logger,
) CustomerService {
	if repo == nil {
		panic("customer repository cannot be nil")
	}
	if evaluator == nil || calculator == nil {
		panic("loan evaluator and calculator cannot be nil")
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerService, using default stderr handler")
	}

	if eventPublisher == nil {
		logger.Warn("Warning: No event publisher provided to NewCustomerService, events will be dropped")
		eventPublisher = event.NewNoopEventPublisher(logger)
	}

	return &customerService{
		repo:       repo,
		evaluator:  evaluator,
		calculator: calculator,
		pub:        eventPublisher,
		logger:     logger.With(slog.String("component", "customerService")),
	}
}

func NewCustomerEventPayload(cust *Customer) event.CustomerEventPayload {
	if cust == nil {
		return event.CustomerEventPayload{}
	}
	return event.CustomerEventPayload{
		CustomerID:       cust.CustomerID,
		Name:             cust.Name,
		Surname:          cust.Surname,
		Username:         cust.Username,
		Email:            cust.Email,
		EmploymentStatus: cust.EmploymentStatus,
		LoanEligible:     cust.LoanEligible,
		MaxLoanAmount:    cust.MaxLoanAmount,
		CreditTier:       loan.TierFor(cust.CreditScore).Name,
		CreatedAt:        cust.CreatedAt,
		UpdatedAt:        cust.UpdatedAt,
	}
}

// assess overwrites the derived loan fields; values supplied by a caller are never kept.
func (s *customerService) assess(ctx context.Context, logger *slog.Logger, cust *Customer) loan.Assessment {
	assessment := loan.Assess(s.evaluator, s.calculator, cust.LoanProfile())
	cust.ApplyAssessment(assessment)
	monitoring.RecordLoanAssessment(assessment.Eligible)

	logger.InfoContext(ctx, "Loan assessment computed",
		slog.Bool("loanEligible", assessment.Eligible),
		slog.String("maxLoanAmount", assessment.MaxLoanAmount.String()),
		slog.String("creditTier", assessment.Tier.Name),
	)
	return assessment
}

func (s *customerService) publishUpdated(ctx context.Context, logger *slog.Logger, cust *Customer) {
	if err := s.pub.PublishCustomerUpdated(ctx, event.NewCustomerUpdatedEvent(NewCustomerEventPayload(cust))); err != nil {
		logger.ErrorContext(ctx, "Customer saved, but FAILED to publish update event", slog.Any("error", err))
		return
	}
	logger.InfoContext(ctx, "Successfully published customer update event")
}

func (s *customerService) ListCustomers(ctx context.Context) ([]*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to list customers")

	customers, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error listing customers", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	s.logger.InfoContext(ctx, "Successfully retrieved customers", slog.Int("count", len(customers)))
	return customers, nil
}

func (s *customerService) GetCustomer(ctx context.Context, customerID int64) (*Customer, error) {
	logger := s.logger.With(slog.Int64("customerID", customerID))
	logger.InfoContext(ctx, "Attempting to get customer by ID")

	cust, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			logger.WarnContext(ctx, customerNotFound)
			return nil, ErrNotFound
		}
		logger.ErrorContext(ctx, "Repository error finding customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get customer %d: %w", customerID, err)
	}

	logger.InfoContext(ctx, "Successfully retrieved customer")
	return cust, nil
}

func (s *customerService) CreateCustomer(ctx context.Context, req *Customer) (*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to create new customer")

	if req == nil {
		return nil, fmt.Errorf("%w: customer payload cannot be nil", apperrors.ErrInvalidArgument)
	}

	cust := &Customer{}
	cust.Overwrite(req)
	cust.Normalize()
	if err := cust.Validate(); err != nil {
		s.logger.WarnContext(ctx, "Validation failed for new customer", slog.Any("error", err))
		return nil, err
	}
	logger := s.logger.With(slog.String("username", cust.Username))
	logger.InfoContext(ctx, inputValidationPassed)

	s.assess(ctx, logger, cust)

	logger.InfoContext(ctx, "Calling repository Save")
	if err := s.repo.Save(ctx, cust); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			logger.WarnContext(ctx, "Username or email already registered", slog.Any("error", err))
			return nil, ErrDuplicate
		}
		logger.ErrorContext(ctx, "Repository failed to save new customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save new customer: %w", err)
	}
	logger = logger.With(slog.Int64("customerID", cust.CustomerID))

	logger.InfoContext(ctx, "Successfully saved new customer, publishing creation event")
	if pubErr := s.pub.PublishCustomerCreated(ctx, event.NewCustomerCreatedEvent(NewCustomerEventPayload(cust))); pubErr != nil {
		logger.ErrorContext(ctx, "Customer created, but FAILED to publish creation event", slog.Any("error", pubErr))
	} else {
		logger.InfoContext(ctx, "Successfully published customer creation event")
	}

	logger.InfoContext(ctx, "Successfully created new customer")
	return cust, nil
}

// UpdateCustomer replaces every editable field of the stored customer with the
// request's values. The read and the write are separate statements, so two
// concurrent updates of the same id resolve as last-writer-wins.
func (s *customerService) UpdateCustomer(ctx context.Context, customerID int64, req *Customer) (*Customer, error) {
	logger := s.logger.With(slog.Int64("customerID", customerID))
	logger.InfoContext(ctx, "Attempting to update customer")

	if req == nil {
		return nil, fmt.Errorf("%w: customer payload cannot be nil", apperrors.ErrInvalidArgument)
	}

	incoming := &Customer{}
	incoming.Overwrite(req)
	incoming.Normalize()
	if err := incoming.Validate(); err != nil {
		logger.WarnContext(ctx, "Validation failed for customer update", slog.Any("error", err))
		return nil, err
	}
	logger.InfoContext(ctx, inputValidationPassed)

	logger.InfoContext(ctx, "Calling repository FindByID to get current customer data")
	cust, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			logger.WarnContext(ctx, "Customer not found by repository for update")
			return nil, ErrNotFound
		}
		logger.ErrorContext(ctx, "Repository error finding customer for update", slog.Any("error", err))
		return nil, fmt.Errorf("cannot find customer %d to update: %w", customerID, err)
	}

	cust.Overwrite(incoming)
	s.assess(ctx, logger, cust)

	logger.InfoContext(ctx, "Calling repository Save to persist customer update")
	if err := s.repo.Save(ctx, cust); err != nil {
		if errors.Is(err, ErrNotFound) {
			logger.ErrorContext(ctx, "Customer disappeared before save completed")
			return nil, ErrNotFound
		}
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			logger.WarnContext(ctx, "Username or email already registered", slog.Any("error", err))
			return nil, ErrDuplicate
		}
		logger.ErrorContext(ctx, "Repository failed to save updated customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save customer %d: %w", customerID, err)
	}

	logger.InfoContext(ctx, "Successfully updated customer in repository, publishing update event.")
	s.publishUpdated(ctx, logger, cust)

	logger.InfoContext(ctx, "Successfully updated customer")
	return cust, nil
}

func (s *customerService) DeleteCustomer(ctx context.Context, customerID int64) error {
	logger := s.logger.With(slog.Int64("customerID", customerID))
	logger.InfoContext(ctx, "Attempting to delete customer")

	if err := s.repo.Delete(ctx, customerID); err != nil {
		if errors.Is(err, ErrNotFound) {
			logger.WarnContext(ctx, customerNotFound)
			return ErrNotFound
		}
		logger.ErrorContext(ctx, "Repository error deleting customer", slog.Any("error", err))
		return fmt.Errorf("failed to delete customer %d: %w", customerID, err)
	}

	if pubErr := s.pub.PublishCustomerDeleted(ctx, event.NewCustomerDeletedEvent(customerID)); pubErr != nil {
		logger.ErrorContext(ctx, "Customer deleted, but FAILED to publish deletion event", slog.Any("error", pubErr))
	} else {
		logger.InfoContext(ctx, "Successfully published customer deletion event")
	}

	logger.InfoContext(ctx, "Successfully deleted customer")
	return nil
}

func (s *customerService) RefreshLoanAssessment(ctx context.Context, cust *Customer) (bool, error) {
	if cust == nil {
		return false, fmt.Errorf("%w: customer cannot be nil", apperrors.ErrInvalidArgument)
	}
	logger := s.logger.With(slog.Int64("customerID", cust.CustomerID))

	assessment := loan.Assess(s.evaluator, s.calculator, cust.LoanProfile())
	if !cust.AssessmentDiffers(assessment) {
		logger.DebugContext(ctx, "Stored loan assessment already current")
		return false, nil
	}

	logger.InfoContext(ctx, "Stored loan assessment is stale, rewriting",
		slog.Bool("oldLoanEligible", cust.LoanEligible),
		slog.Bool("newLoanEligible", assessment.Eligible),
		slog.String("oldMaxLoanAmount", cust.MaxLoanAmount.String()),
		slog.String("newMaxLoanAmount", assessment.MaxLoanAmount.String()),
	)
	refreshed := *cust
	refreshed.ApplyAssessment(assessment)

	if err := s.repo.UpdateAssessment(ctx, &refreshed); err != nil {
		if errors.Is(err, ErrProfileChanged) {
			logger.InfoContext(ctx, "Customer changed or deleted since it was read, leaving it to the newer write")
			return false, ErrProfileChanged
		}
		logger.ErrorContext(ctx, "Repository failed to save refreshed assessment", slog.Any("error", err))
		return false, fmt.Errorf("failed to save refreshed assessment for customer %d: %w", cust.CustomerID, err)
	}
	monitoring.RecordLoanAssessment(assessment.Eligible)
	*cust = refreshed

	s.publishUpdated(ctx, logger, cust)
	return true, nil
}
