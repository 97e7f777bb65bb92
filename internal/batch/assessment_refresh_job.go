package batch

import (
	"context"
	"customer-management/internal/domain/customer"
	"customer-management/internal/infrastructure/monitoring"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

const defaultWorkers = 4

// RefreshAssessmentJob recomputes the stored loan assessment of every customer
// and rewrites the rows whose stored values no longer match the current
// eligibility policy, for example after a threshold change.
type RefreshAssessmentJob struct {
	customerService customer.CustomerService
	workers         int
	logger          *slog.Logger
}

func NewRefreshAssessmentJob(customerSvc customer.CustomerService, workers int, logger *slog.Logger) *RefreshAssessmentJob {
	if customerSvc == nil || logger == nil {
		panic("RefreshAssessmentJob dependencies cannot be nil")
	}
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &RefreshAssessmentJob{
		customerService: customerSvc,
		workers:         workers,
		logger:          logger.With("job", "RefreshLoanAssessment"),
	}
}

func (j *RefreshAssessmentJob) Run(ctx context.Context) error {
	startTime := time.Now()
	j.logger.InfoContext(ctx, "Starting loan assessment refresh job.")

	customers, err := j.customerService.ListCustomers(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to list customers, aborting job.", slog.Any("error", err))
		return fmt.Errorf("cannot run job, failed to list customers: %w", err)
	}
	j.logger.InfoContext(ctx, "Fetched customers.", slog.Int("count", len(customers)))

	if len(customers) == 0 {
		j.logger.InfoContext(ctx, "No customers found to process.")
		j.logger.InfoContext(ctx, "Loan assessment refresh job finished.", slog.Duration("duration", time.Since(startTime)))
		return nil
	}

	var processedCount, refreshedCount, skippedCount, errorCount atomic.Int32

	g := new(errgroup.Group)
	g.SetLimit(j.workers)
	for _, cust := range customers {
		if ctx.Err() != nil {
			break
		}
		cust := cust
		g.Go(func() error {
			logCtx := j.logger.With(slog.Int64("customerID", cust.CustomerID))

			refreshed, refreshErr := j.customerService.RefreshLoanAssessment(ctx, cust)
			switch {
			case errors.Is(refreshErr, customer.ErrProfileChanged), errors.Is(refreshErr, customer.ErrNotFound):
				logCtx.InfoContext(ctx, "Customer changed or deleted while the job was running, skipping.")
				skippedCount.Add(1)
			case refreshErr != nil:
				logCtx.ErrorContext(ctx, "Failed to refresh loan assessment", slog.Any("error", refreshErr))
				errorCount.Add(1)
			case refreshed:
				monitoring.RecordRefreshedCustomer()
				refreshedCount.Add(1)
			}
			processedCount.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	summaryLog := j.logger.With(
		slog.Duration("duration", time.Since(startTime)),
		slog.Int("total_customers", len(customers)),
		slog.Int("customers_processed", int(processedCount.Load())),
		slog.Int("customers_refreshed", int(refreshedCount.Load())),
		slog.Int("customers_skipped", int(skippedCount.Load())),
		slog.Int("errors_encountered", int(errorCount.Load())),
	)

	if ctxErr := ctx.Err(); ctxErr != nil {
		summaryLog.WarnContext(ctx, "Loan assessment refresh job interrupted.", slog.Any("error", ctxErr))
		return fmt.Errorf("job interrupted after %d of %d customers: %w", processedCount.Load(), len(customers), ctxErr)
	}
	if n := errorCount.Load(); n > 0 {
		summaryLog.WarnContext(ctx, "Loan assessment refresh job finished with errors.")
		return fmt.Errorf("job completed with %d errors", n)
	}
	summaryLog.InfoContext(ctx, "Loan assessment refresh job finished successfully.")
	return nil
}
