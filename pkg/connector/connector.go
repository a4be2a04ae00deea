// pkg/connector/connector.go
package connector

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Connector is a database handle used by one of the optional sinks
type Connector interface {
	// DB returns the underlying database handle
	DB() *sqlx.DB

	// Validate checks that the sink can do its work with this connection
	Validate(ctx context.Context) error

	// Close closes the connection and releases resources
	Close() error
}

// PoolStats is the subset of sql.DBStats worth logging
type PoolStats struct {
	Open         int
	InUse        int
	Idle         int
	MaxOpen      int
	WaitCount    int64
	WaitDuration time.Duration
}

// Stats returns connection pool statistics
func Stats(db *sqlx.DB) PoolStats {
	s := db.Stats()
	return PoolStats{
		Open:         s.OpenConnections,
		InUse:        s.InUse,
		Idle:         s.Idle,
		MaxOpen:      s.MaxOpenConnections,
		WaitCount:    s.WaitCount,
		WaitDuration: s.WaitDuration,
	}
}

func logStats(logger *zap.Logger, name string, db *sqlx.DB) {
	s := Stats(db)
	logger.Debug("Connection pool stats",
		zap.String("database", name),
		zap.Int("open", s.Open),
		zap.Int("in_use", s.InUse),
		zap.Int("idle", s.Idle),
		zap.Int("max_open", s.MaxOpen),
		zap.Int64("wait_count", s.WaitCount),
		zap.Duration("wait_duration", s.WaitDuration),
	)
}

// pingWithRetry pings until the database answers, doubling the pause between attempts
func pingWithRetry(ctx context.Context, logger *zap.Logger, db *sqlx.DB, attempts int, timeout time.Duration) error {
	if attempts < 1 {
		attempts = 1
	}

	backoff := 200 * time.Millisecond
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, timeout)
		err = db.PingContext(pingCtx)
		cancel()
		if err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		logger.Warn("Database ping failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	return fmt.Errorf("ping failed after %d attempts: %w", attempts, err)
}

// applyPool configures the pool; zero values keep the driver defaults
func applyPool(db *sqlx.DB, maxOpen, maxIdle int, maxLifetime, maxIdleTime time.Duration) {
	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
	}
	if maxIdle > 0 {
		db.SetMaxIdleConns(maxIdle)
	}
	if maxLifetime > 0 {
		db.SetConnMaxLifetime(maxLifetime)
	}
	if maxIdleTime > 0 {
		db.SetConnMaxIdleTime(maxIdleTime)
	}
}
