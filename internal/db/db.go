package db

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/famshare/billing-bot/internal/config"
)

// Connect creates the PostgreSQL connection pool.
func Connect(ctx context.Context, cfg config.PostgreSQLConfig) (*pgxpool.Pool, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable search_path=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.DBName,
		cfg.Schema,
	)

	connectConf, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to parse PostgreSQL config: %w", err)
	}

	connectConf.MaxConns = int32(cfg.PoolMaxConns)
	connectConf.HealthCheckPeriod = 15 * time.Second
	connectConf.ConnConfig.ConnectTimeout = 5 * time.Second

	// Set timezone to PGX runtime
	if s := os.Getenv("TZ"); s != "" {
		connectConf.ConnConfig.RuntimeParams["timezone"] = s
	}

	pool, err := pgxpool.NewWithConfig(ctx, connectConf)
	if err != nil {
		return nil, fmt.Errorf("unable to create PostgreSQL connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to reach PostgreSQL: %w", err)
	}

	return pool, nil
}

// Migrate sets up the database schema. All statements are idempotent so
// the migration runs on every start.
func Migrate(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) error {
	logger.Info().Msg("starting database migration")

	usersSchema := `
    CREATE TABLE IF NOT EXISTS users (
        id SERIAL PRIMARY KEY,
        telegram_id BIGINT NOT NULL UNIQUE,
        full_name TEXT,
        language TEXT NOT NULL DEFAULT 'en',
        debt NUMERIC(10, 2) NOT NULL DEFAULT 1.0,
        role TEXT NOT NULL DEFAULT 'member',
        created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
    );
    CREATE UNIQUE INDEX IF NOT EXISTS idx_users_telegram_id ON users(telegram_id);`
	if _, err := pool.Exec(ctx, usersSchema); err != nil {
		return fmt.Errorf("failed to migrate users table: %w", err)
	}

	paymentsSchema := `
    CREATE TABLE IF NOT EXISTS payments (
        id SERIAL PRIMARY KEY,
        user_id BIGINT NOT NULL REFERENCES users(telegram_id) ON DELETE CASCADE,
        image_path TEXT NOT NULL,
        reference TEXT,
        created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
    );
    CREATE INDEX IF NOT EXISTS idx_payments_user_id ON payments(user_id);`
	if _, err := pool.Exec(ctx, paymentsSchema); err != nil {
		return fmt.Errorf("failed to migrate payments table: %w", err)
	}

	// Older deployments predate the reference column.
	addReference := `
		ALTER TABLE payments
		ADD COLUMN IF NOT EXISTS reference TEXT;
	`
	if _, err := pool.Exec(ctx, addReference); err != nil {
		return fmt.Errorf("failed to add reference column to payments table: %w", err)
	}

	logger.Info().Msg("database migration completed")
	return nil
}
