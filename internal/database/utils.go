package database

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"contrib.go.opencensus.io/integrations/ocsql"
	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/listingdeck/listingdeck/config"
)

// GetConnectionPoolSettings returns the pool settings of cfg, falling back to
// environment based defaults for unset values
func GetConnectionPoolSettings(cfg *config.DatabaseConfig) (maxOpen, maxIdle int, maxLifetime time.Duration) {
	maxOpen, maxIdle, maxLifetime = 25, 25, 20*time.Minute

	// smaller pools keep test runs under the server connection limit
	if os.Getenv("ENVIRONMENT") == "test" || os.Getenv("INTEGRATION_TESTS") == "true" {
		maxOpen, maxIdle, maxLifetime = 10, 5, 2*time.Minute
	}

	if cfg != nil && cfg.MaxOpenConns > 0 {
		maxOpen = cfg.MaxOpenConns
	}
	if cfg != nil && cfg.MaxIdleConns > 0 {
		maxIdle = cfg.MaxIdleConns
	}
	if maxIdle > maxOpen {
		maxIdle = maxOpen
	}
	return maxOpen, maxIdle, maxLifetime
}

// GetDSN returns the DSN of the brochure database
func GetDSN(cfg *config.DatabaseConfig) string {
	return buildDSN(cfg, cfg.DBName)
}

// GetPostgresDSN returns the DSN for connecting to the server without a database
func GetPostgresDSN(cfg *config.DatabaseConfig) string {
	return buildDSN(cfg, "postgres")
}

func buildDSN(cfg *config.DatabaseConfig, dbName string) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		dbName,
		sslMode,
	)
}

// Open connects to the brochure database and applies the pool settings.
// With traced set, queries are recorded as OpenCensus spans.
func Open(cfg *config.DatabaseConfig, traced bool) (*sql.DB, error) {
	driverName := "postgres"
	if traced {
		name, err := ocsql.Register("postgres", ocsql.WithAllTraceOptions())
		if err != nil {
			return nil, fmt.Errorf("failed to register traced driver: %w", err)
		}
		driverName = name
	}

	db, err := sql.Open(driverName, GetDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	maxOpen, maxIdle, maxLifetime := GetConnectionPoolSettings(cfg)
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(maxLifetime)
	return db, nil
}

// EnsureDatabaseExists creates the brochure database when it is missing
func EnsureDatabaseExists(cfg *config.DatabaseConfig) error {
	db, err := sql.Open("postgres", GetPostgresDSN(cfg))
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL server: %w", err)
	}
	defer db.Close()

	return ensureDatabase(db, cfg.DBName)
}

func ensureDatabase(db *sql.DB, dbName string) error {
	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping PostgreSQL server: %w", err)
	}

	var exists bool
	query := "SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)"
	if err := db.QueryRow(query, dbName).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check if database exists: %w", err)
	}
	if exists {
		return nil
	}

	// identifiers cannot be bound as parameters
	createDBQuery := fmt.Sprintf("CREATE DATABASE %s", quoteIdentifier(dbName))
	if _, err := db.Exec(createDBQuery); err != nil {
		return fmt.Errorf("failed to create database %s: %w", dbName, err)
	}
	return nil
}

func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
