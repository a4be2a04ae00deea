// pkg/connector/postgres.go
package connector

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v4/stdlib" // registers "pgx"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // registers "postgres"
	"go.uber.org/zap"

	"github.com/David-Botos/statusline/pkg/config"
)

const applicationName = "statusline"

// PostgresConnector holds the audit sink's PostgreSQL connection
type PostgresConnector struct {
	db     *sqlx.DB
	logger *zap.Logger
	cfg    *config.PostgresConfig
}

var _ Connector = (*PostgresConnector)(nil)

// NewPostgresConnector opens the audit database with the configured driver and waits for it to answer
func NewPostgresConnector(ctx context.Context, cfg *config.PostgresConfig, logger *zap.Logger) (*PostgresConnector, error) {
	if cfg == nil {
		return nil, errors.New("postgreSQL configuration cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if !driverRegistered(cfg.Driver) {
		return nil, fmt.Errorf("database driver %q is not registered", cfg.Driver)
	}
	logger = logger.Named("postgres")

	logger.Info("Connecting to audit database",
		zap.String("driver", cfg.Driver),
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
		zap.String("user", cfg.User))

	// both drivers accept libpq keyword DSNs
	db, err := sqlx.Open(cfg.Driver, cfg.ConnectionString()+" application_name="+applicationName)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL connection: %w", err)
	}
	applyPool(db, cfg.MaxOpenConns, cfg.MaxIdleConns, cfg.ConnMaxLifetime, cfg.ConnMaxIdleTime)

	if err := pingWithRetry(ctx, logger, db, 3, 5*time.Second); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	if cfg.StatementTimeout > 0 {
		stmt := fmt.Sprintf("SET statement_timeout = %d", cfg.StatementTimeout.Milliseconds())
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			logger.Warn("Failed to set statement timeout", zap.Error(err))
		}
	}

	c := &PostgresConnector{db: db, logger: logger, cfg: cfg}
	logStats(logger, cfg.Database, db)
	return c, nil
}

func driverRegistered(name string) bool {
	for _, d := range sql.Drivers() {
		if d == name {
			return true
		}
	}
	return false
}

// DB returns the underlying database handle
func (c *PostgresConnector) DB() *sqlx.DB {
	return c.db
}

// Validate checks that the audit user may create the operations table in the public schema
func (c *PostgresConnector) Validate(ctx context.Context) error {
	var (
		version   string
		canCreate bool
	)
	row := c.db.QueryRowContext(ctx,
		"SELECT version(), has_schema_privilege(current_user, 'public', 'CREATE')")
	if err := row.Scan(&version, &canCreate); err != nil {
		return fmt.Errorf("failed to query PostgreSQL privileges: %w", err)
	}
	if !canCreate {
		return fmt.Errorf("user %s cannot create tables in schema public of %s", c.cfg.User, c.cfg.Database)
	}

	c.logger.Info("Audit database validated",
		zap.String("version", version),
		zap.String("database", c.cfg.Database))
	return nil
}

// Close closes the database connection
func (c *PostgresConnector) Close() error {
	logStats(c.logger, c.cfg.Database, c.db)
	return c.db.Close()
}
