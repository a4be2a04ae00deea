// pkg/audit/store.go
package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/David-Botos/statusline/pkg/model"
)

const createTableSQL = `
	CREATE TABLE IF NOT EXISTS public.statusline_operations (
		id SERIAL PRIMARY KEY,
		run_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		trigger_token TEXT NOT NULL,
		operation TEXT NOT NULL,
		original_value TEXT NOT NULL,
		new_value TEXT NOT NULL,
		reason TEXT NOT NULL,
		cleaned_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
	)
`

const insertOperationSQL = `
	INSERT INTO public.statusline_operations
	(run_id, position, trigger_token, operation, original_value, new_value, reason, cleaned_at)
	VALUES (:run_id, :position, :trigger_token, :operation, :original_value, :new_value, :reason, :cleaned_at)
`

// Store persists field operations so status line changes can be traced back
type Store struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewStore creates a Store and ensures the tracking table exists
func NewStore(ctx context.Context, db *sqlx.DB, logger *zap.Logger) (*Store, error) {
	if db == nil {
		return nil, errors.New("database connection cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	store := &Store{
		db:     db,
		logger: logger.Named("audit"),
	}

	if err := store.setupTable(ctx); err != nil {
		return nil, fmt.Errorf("failed to setup operations table: %w", err)
	}

	return store, nil
}

// setupTable ensures the statusline_operations tracking table exists
func (s *Store) setupTable(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create tracking table: %w", err)
	}

	s.logger.Info("Ensured statusline_operations table exists")
	return nil
}

// RecordOperations batch inserts operations into the tracking table in one transaction
func (s *Store) RecordOperations(ctx context.Context, operations []model.FieldOperation) (err error) {
	if len(operations) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error("Failed to rollback transaction",
					zap.NamedError("rollback_error", rbErr),
					zap.Error(err))
			}
		}
	}()

	stmt, err := tx.PrepareNamedContext(ctx, insertOperationSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, op := range operations {
		if _, err = stmt.ExecContext(ctx, op); err != nil {
			return fmt.Errorf("failed to insert operation for run %s: %w", op.RunID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("Recorded status line operations", zap.Int("count", len(operations)))
	return nil
}
