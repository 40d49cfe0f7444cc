package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxConns     int
	QueryTimeout time.Duration
}

// DB is the explicitly constructed pool handle handed to every repository.
// It bounds the number of outstanding connections and the execution time of
// each operation run through OpContext.
type DB struct {
	*sql.DB
	queryTimeout time.Duration
}

// Open connects to Postgres, bounds the pool and waits for the store to
// become reachable before returning.
func Open(cfg Config, logger *logrus.Logger) (*DB, error) {
	if cfg.SSLMode == "" {
		cfg.SSLMode = "disable"
	}
	if cfg.MaxConns <= 0 {
		cfg.MaxConns = 10
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConns)
	db.SetMaxIdleConns(cfg.MaxConns)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Wait for the database to be ready
	var pingErr error
	for i := 0; i < 30; i++ {
		if pingErr = db.Ping(); pingErr == nil {
			logger.Info("Database connection established")
			break
		}
		logger.Info("Waiting for database...")
		time.Sleep(2 * time.Second)
	}
	if pingErr != nil {
		db.Close()
		return nil, fmt.Errorf("database not reachable: %w", pingErr)
	}

	return NewDB(db, cfg.QueryTimeout), nil
}

// NewDB wraps an already-open handle. Used by Open and by tests.
func NewDB(db *sql.DB, queryTimeout time.Duration) *DB {
	if queryTimeout <= 0 {
		queryTimeout = 60 * time.Second
	}
	return &DB{DB: db, queryTimeout: queryTimeout}
}

// OpContext derives the bounded context every repository operation runs
// under. The driver discards a connection whose statement was cancelled
// rather than returning it dirty to the pool.
func (d *DB) OpContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d.queryTimeout)
}
