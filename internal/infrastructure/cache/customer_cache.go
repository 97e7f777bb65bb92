package cache

import (
	"context"
	"customer-management/internal/domain/customer"
	"customer-management/internal/infrastructure/monitoring"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	customerKeyPrefix = "customer:"
	DefaultTTL        = 10 * time.Minute

	resultHit   = "hit"
	resultMiss  = "miss"
	resultError = "error"
)

func CustomerKey(customerID int64) string {
	return fmt.Sprintf("%s%d", customerKeyPrefix, customerID)
}

// CachedCustomerRepository is a cache-aside decorator for single-customer
// reads. Writes go to the store first and then drop the cached copy. Redis
// failures are logged and the store answers instead.
type CachedCustomerRepository struct {
	next   customer.CustomerRepository
	client redis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

var _ customer.CustomerRepository = (*CachedCustomerRepository)(nil)

func NewCachedCustomerRepository(next customer.CustomerRepository, client redis.Cmdable, ttl time.Duration, logger *slog.Logger) *CachedCustomerRepository {
	if next == nil || client == nil {
		panic("cached customer repository needs a backing repository and a redis client")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CachedCustomerRepository{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger.With("component", "CachedCustomerRepository"),
	}
}

func (r *CachedCustomerRepository) FindByID(ctx context.Context, customerID int64) (*customer.Customer, error) {
	key := CustomerKey(customerID)

	data, err := r.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cust customer.Customer
		jsonErr := json.Unmarshal(data, &cust)
		if jsonErr == nil {
			monitoring.RecordCacheLookup(resultHit)
			return &cust, nil
		}
		r.logger.WarnContext(ctx, "Discarding undecodable cache entry", slog.String("key", key), slog.Any("error", jsonErr))
		monitoring.RecordCacheLookup(resultError)
	case errors.Is(err, redis.Nil):
		monitoring.RecordCacheLookup(resultMiss)
	default:
		r.logger.WarnContext(ctx, "Cache read failed, falling back to store", slog.String("key", key), slog.Any("error", err))
		monitoring.RecordCacheLookup(resultError)
	}

	cust, err := r.next.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	r.store(ctx, cust)
	return cust, nil
}

func (r *CachedCustomerRepository) FindAll(ctx context.Context) ([]*customer.Customer, error) {
	return r.next.FindAll(ctx)
}

func (r *CachedCustomerRepository) Save(ctx context.Context, cust *customer.Customer) error {
	if err := r.next.Save(ctx, cust); err != nil {
		return err
	}
	r.evict(ctx, cust.CustomerID)
	return nil
}

func (r *CachedCustomerRepository) UpdateAssessment(ctx context.Context, cust *customer.Customer) error {
	if err := r.next.UpdateAssessment(ctx, cust); err != nil {
		return err
	}
	r.evict(ctx, cust.CustomerID)
	return nil
}

func (r *CachedCustomerRepository) Delete(ctx context.Context, customerID int64) error {
	if err := r.next.Delete(ctx, customerID); err != nil {
		return err
	}
	r.evict(ctx, customerID)
	return nil
}

func (r *CachedCustomerRepository) store(ctx context.Context, cust *customer.Customer) {
	data, err := json.Marshal(cust)
	if err != nil {
		r.logger.WarnContext(ctx, "Failed to encode customer for cache", slog.Int64("customerID", cust.CustomerID), slog.Any("error", err))
		return
	}
	if err := r.client.Set(ctx, CustomerKey(cust.CustomerID), data, r.ttl).Err(); err != nil {
		r.logger.WarnContext(ctx, "Cache write failed", slog.Int64("customerID", cust.CustomerID), slog.Any("error", err))
	}
}

func (r *CachedCustomerRepository) evict(ctx context.Context, customerID int64) {
	if err := r.client.Del(ctx, CustomerKey(customerID)).Err(); err != nil {
		r.logger.WarnContext(ctx, "Cache eviction failed", slog.Int64("customerID", customerID), slog.Any("error", err))
	}
}
