// Package db persists display sightings to PostgreSQL. Persistence is
// optional; the daemon runs without it when DB_ENABLED is off.
package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/Frostfire25/airplane-project/pkg/config"
)

//go:embed schema.sql
var schemaSQL embed.FS

// Config holds the connection parameters.
type Config struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string
}

// ConfigFromStore reads the DB_* keys from the configuration store.
func ConfigFromStore(cfg *config.Store) Config {
	return Config{
		Host:     cfg.GetString(config.KeyDBHost, "localhost"),
		Port:     cfg.GetInt(config.KeyDBPort, 5432),
		Database: cfg.GetString(config.KeyDBName, "flightdisplay"),
		Username: cfg.GetString(config.KeyDBUser, "flightdisplay"),
		Password: cfg.GetString(config.KeyDBPassword, ""),
		SSLMode:  cfg.GetString(config.KeyDBSSLMode, "disable"),
	}
}

// DB wraps a database connection with helper methods.
type DB struct {
	*sql.DB
	config Config
}

// Connect establishes a connection to the PostgreSQL database.
func Connect(cfg Config) (*DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.Username,
		cfg.Password,
		cfg.Database,
		cfg.SSLMode,
	)

	sqlDB, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB.SetMaxOpenConns(5)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: sqlDB, config: cfg}, nil
}

// InitSchema creates or updates the database schema. Called once at
// startup.
func (db *DB) InitSchema(ctx context.Context) error {
	schemaBytes, err := schemaSQL.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}

	if _, err := db.ExecContext(ctx, string(schemaBytes)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// Prune removes sightings older than maxAge to bound table growth.
func (db *DB) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-maxAge)

	res, err := db.ExecContext(ctx,
		`DELETE FROM sightings WHERE seen_at < $1`,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prune sightings: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
