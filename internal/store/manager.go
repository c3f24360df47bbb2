// Package store publishes breakpoint calls to a MySQL results database and
// reads them back for cross-sample compilation.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver

	"github.com/dbsmedya/mitobreak/internal/config"
)

// Manager owns the connection pool to the results database.
type Manager struct {
	DB     *sql.DB
	config *config.ResultsDBConfig
}

// NewManager creates a new database manager from configuration.
func NewManager(cfg *config.ResultsDBConfig) *Manager {
	return &Manager{
		config: cfg,
	}
}

// Connect opens and verifies the connection pool.
func (m *Manager) Connect(ctx context.Context) error {
	db, err := m.connectWithRetry(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to results database: %w", err)
	}
	m.DB = db
	return nil
}

// connectWithRetry attempts to connect with exponential backoff.
func (m *Manager) connectWithRetry(ctx context.Context) (*sql.DB, error) {
	var db *sql.DB
	var err error

	maxRetries := 3
	backoff := time.Second

	for i := 0; i < maxRetries; i++ {
		db, err = m.connect()
		if err == nil {
			pingErr := db.PingContext(ctx)
			if pingErr == nil {
				return db, nil
			}
			db.Close()
			err = pingErr
		}

		if i < maxRetries-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
				backoff *= 2
			}
		}
	}

	return nil, fmt.Errorf("failed after %d retries: %w", maxRetries, err)
}

func (m *Manager) connect() (*sql.DB, error) {
	db, err := sql.Open("mysql", BuildDSN(m.config))
	if err != nil {
		return nil, err
	}

	if m.config.MaxConnections > 0 {
		db.SetMaxOpenConns(m.config.MaxConnections)
	}
	if m.config.MaxIdleConnections > 0 {
		db.SetMaxIdleConns(m.config.MaxIdleConnections)
	}
	db.SetConnMaxLifetime(10 * time.Minute)

	return db, nil
}

// BuildDSN constructs a MySQL DSN from configuration.
func BuildDSN(cfg *config.ResultsDBConfig) string {
	// Format: user:password@tcp(host:port)/database?params
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
	)

	params := "?parseTime=true"
	switch cfg.TLS {
	case "disable":
		params += "&tls=false"
	case "required":
		params += "&tls=true"
	case "preferred", "":
		params += "&tls=preferred"
	}

	return dsn + params
}

// Close closes the connection pool.
func (m *Manager) Close() error {
	if m.DB == nil {
		return nil
	}
	if err := m.DB.Close(); err != nil {
		return fmt.Errorf("results database close: %w", err)
	}
	return nil
}

// Ping verifies the connection is alive.
func (m *Manager) Ping(ctx context.Context) error {
	if m.DB == nil {
		return fmt.Errorf("results database is not connected")
	}
	if err := m.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("results database ping failed: %w", err)
	}
	return nil
}
