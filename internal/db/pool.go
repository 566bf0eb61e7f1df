package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// Pool is the global database connection pool
var Pool *pgxpool.Pool

// ErrNotConfigured is returned by Init when no database settings are present
var ErrNotConfigured = errors.New("no database configuration")

// DatabaseURL resolves DATABASE_URL, or builds one from DB_HOST, DB_PORT,
// DB_USER, DB_PASSWORD and DB_NAME. Returns "" when neither is set.
func DatabaseURL() string {
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		return databaseURL
	}

	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	dbname := os.Getenv("DB_NAME")

	if host == "" || user == "" || dbname == "" {
		return ""
	}
	if port == "" {
		port = "5432"
	}
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=disable",
		user, password, host, port, dbname)
}

// Init initializes the database connection pool and the analyses table
func Init(ctx context.Context) error {
	databaseURL := DatabaseURL()
	if databaseURL == "" {
		return ErrNotConfigured
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return fmt.Errorf("failed to parse database URL: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 1
	config.MaxConnLifetime = 1 * time.Hour
	config.MaxConnIdleTime = 30 * time.Minute
	config.HealthCheckPeriod = 1 * time.Minute

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, createAnalysesTable); err != nil {
		pool.Close()
		return fmt.Errorf("failed to create analyses table: %w", err)
	}

	Pool = pool
	log.Info().Msg("database connection pool initialized")
	return nil
}

// Close closes the database connection pool
func Close() {
	if Pool != nil {
		Pool.Close()
		Pool = nil
		log.Info().Msg("database connection pool closed")
	}
}

// Ping reports whether the pool is reachable
func Ping(ctx context.Context) error {
	if Pool == nil {
		return ErrNotConfigured
	}
	return Pool.Ping(ctx)
}
