// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"startup-insights/internal/common/config"

	_ "github.com/lib/pq"
)

// submissionsSchema holds one row per organization, upserted on every
// settled prediction.
const submissionsSchema = `
CREATE TABLE IF NOT EXISTS startup_submissions (
	id                UUID PRIMARY KEY,
	organization_name TEXT NOT NULL UNIQUE,
	investment_stage  TEXT NOT NULL DEFAULT '',
	industries        TEXT NOT NULL DEFAULT '',
	prediction_label  TEXT NOT NULL,
	confidence        DOUBLE PRECISION,
	health_score      INTEGER NOT NULL,
	profile           JSONB NOT NULL,
	prediction        JSONB NOT NULL,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_startup_submissions_label ON startup_submissions (prediction_label);
`

// PostgresClient wraps the SQL database connection
type PostgresClient struct {
	DB *sql.DB
}

// NewPostgres creates a new PostgreSQL client
func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresClient{DB: db}, nil
}

// Ping tests the database connection
func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// Migrate creates the submission history table when missing.
func (c *PostgresClient) Migrate(ctx context.Context) error {
	if _, err := c.DB.ExecContext(ctx, submissionsSchema); err != nil {
		return fmt.Errorf("migrate startup_submissions: %w", err)
	}
	return nil
}

// Close closes the database connection
func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// GetDB returns the underlying *sql.DB
func (c *PostgresClient) GetDB() *sql.DB {
	return c.DB
}
