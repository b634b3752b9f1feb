package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/opslane/riskplane/config"
	"go.uber.org/zap"
)

// DB wraps the sql.DB connection pool
type DB struct {
	*sql.DB
	logger *zap.Logger
}

// NewDB creates a new database connection pool
func NewDB(cfg config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established",
		zap.String("connection", cfg.LogString()))

	return &DB{
		DB:     db,
		logger: logger,
	}, nil
}

// Close closes the database connection pool
func (db *DB) Close() error {
	db.logger.Info("closing database connection")
	return db.DB.Close()
}

// HealthCheck performs a health check on the database
func (db *DB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return db.PingContext(ctx)
}

// InitSchema creates the audit table when it does not exist. Append-only:
// there are no UPDATE or DELETE paths anywhere in the repository.
func (db *DB) InitSchema(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS audit_entries (
			id BIGINT PRIMARY KEY,
			request_id UUID NOT NULL,
			order_id TEXT NOT NULL,
			supplier TEXT NOT NULL,
			expected_delivery TIMESTAMPTZ NOT NULL,
			current_status TEXT NOT NULL,
			received_at TIMESTAMPTZ NOT NULL,
			risk_level TEXT NOT NULL,
			risk_signal JSONB NOT NULL,
			decision JSONB NOT NULL,
			tool_result JSONB NOT NULL,
			outcome TEXT NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_audit_entries_order_id ON audit_entries (order_id);
		CREATE INDEX IF NOT EXISTS idx_audit_entries_risk_level ON audit_entries (risk_level);
	`

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize audit schema: %w", err)
	}

	db.logger.Info("audit schema initialized")
	return nil
}
