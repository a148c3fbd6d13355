package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

const pingTimeout = 3 * time.Second

// DBService wraps the pooled Postgres connection used by all repositories.
type DBService struct {
	DB *sql.DB
}

// NewDBService connects to the database named by DB_CONNECTION_STRING and
// verifies the connection before returning. Pool limits can be overridden
// with DB_MAX_OPEN_CONNS / DB_MAX_IDLE_CONNS.
func NewDBService() (*DBService, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Error loading .env file, continuing with system environment variables")
	}

	connStr := os.Getenv("DB_CONNECTION_STRING")
	if connStr == "" {
		return nil, fmt.Errorf("missing DB_CONNECTION_STRING in environment variables")
	}

	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("could not open db connection: %v", err)
	}

	db.SetMaxOpenConns(envInt("DB_MAX_OPEN_CONNS", 50))
	db.SetMaxIdleConns(envInt("DB_MAX_IDLE_CONNS", 25))
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("could not connect to the database: %v", err)
	}

	return &DBService{DB: db}, nil
}

func envInt(name string, defaultValue int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		log.Printf("Invalid %s value %q, using default %d", name, raw, defaultValue)
		return defaultValue
	}
	return value
}

// Health pings the database and reports connection pool statistics for the
// readiness endpoint.
func (s *DBService) Health() map[string]string {
	stats := make(map[string]string)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := s.DB.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		return stats
	}

	poolStats := s.DB.Stats()
	stats["status"] = "up"
	stats["open_connections"] = strconv.Itoa(poolStats.OpenConnections)
	stats["in_use"] = strconv.Itoa(poolStats.InUse)
	stats["idle"] = strconv.Itoa(poolStats.Idle)
	return stats
}

// Close closes the database connection pool.
func (s *DBService) Close() error {
	log.Println("Closing database connection")
	return s.DB.Close()
}
