package cache

import (
	"context"
	"customer-management/internal/config"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

type RedisClientConstructor func(opt *redis.Options) *redis.Client

// Connect opens a client and pings it. newClientFunc defaults to redis.NewClient
// and exists so tests can hand back a redismock client.
func Connect(ctx context.Context, cfg config.RedisConfig, newClientFunc RedisClientConstructor, logger *slog.Logger) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address (addr) is not configured")
	}

	logger.InfoContext(ctx, "Connecting to Redis", slog.String("addr", cfg.Addr), slog.Int("db", cfg.DB))

	if newClientFunc == nil {
		newClientFunc = redis.NewClient
	}
	client := newClientFunc(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		logger.ErrorContext(ctx, "Redis ping failed", slog.Any("error", err), slog.String("addr", cfg.Addr))
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	logger.InfoContext(ctx, "Redis client connected successfully", slog.String("addr", cfg.Addr), slog.Int("db", cfg.DB))
	return client, nil
}

func Close(client *redis.Client, logger *slog.Logger) {
	if client == nil {
		logger.Info("Redis client was not initialized, skipping close.")
		return
	}
	logger.Info("Closing Redis client connection...")
	if err := client.Close(); err != nil {
		logger.Error("Failed to close Redis client connection gracefully", "error", err)
		return
	}
	logger.Info("Redis client connection closed.")
}
