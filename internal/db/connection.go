package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"
)

// Connection holds the database connection
type Connection struct {
	DB *sql.DB
}

// DSN returns databaseURL when set, otherwise a key/value DSN assembled from
// the libpq PG* variables. Both the gazetteer import and GAZETTEER_SOURCE=db
// go through it.
func DSN(databaseURL string) string {
	if databaseURL != "" {
		return databaseURL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		getEnvOrDefault("PGHOST", "localhost"),
		getEnvOrDefault("PGPORT", "5432"),
		getEnvOrDefault("PGUSER", "recall"),
		getEnvOrDefault("PGPASSWORD", "recall"),
		getEnvOrDefault("PGDATABASE", "recall"),
		getEnvOrDefault("PGSSLMODE", "disable"))
}

// NewConnection opens and pings the gazetteer database.
func NewConnection(ctx context.Context, databaseURL string) (*Connection, error) {
	db, err := sql.Open("postgres", DSN(databaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// The gazetteer is read once at startup and written by a single import.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)

	return &Connection{DB: db}, nil
}

// Close closes the database connection
func (c *Connection) Close() error {
	return c.DB.Close()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
