// pkg/connector/factory.go
package connector

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/David-Botos/statusline/pkg/config"
)

// ConnectorFactory creates the optional backing services
type ConnectorFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewConnectorFactory creates a new connector factory
func NewConnectorFactory(cfg *config.Config, logger *zap.Logger) *ConnectorFactory {
	return &ConnectorFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreatePostgresConnector creates a new PostgreSQL connector for the audit sink
func (f *ConnectorFactory) CreatePostgresConnector(ctx context.Context) (*PostgresConnector, error) {
	if f.cfg.Postgres == nil {
		return nil, errors.New("postgreSQL configuration is missing")
	}
	f.logger.Info("Creating PostgreSQL connector")

	connector, err := NewPostgresConnector(ctx, f.cfg.Postgres, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create PostgreSQL connector: %w", err)
	}

	return connector, nil
}

// CreateRedisClient creates a Redis client for the line cache and verifies it responds
func (f *ConnectorFactory) CreateRedisClient(ctx context.Context) (*redis.Client, error) {
	if f.cfg.Redis == nil {
		return nil, errors.New("redis configuration is missing")
	}
	f.logger.Info("Creating Redis client", zap.String("addr", f.cfg.Redis.Addr), zap.Int("db", f.cfg.Redis.DB))

	client := redis.NewClient(&redis.Options{
		Addr:     f.cfg.Redis.Addr,
		Password: f.cfg.Redis.Password,
		DB:       f.cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}
