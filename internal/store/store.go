package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dbsmedya/mitobreak/internal/config"
	"github.com/dbsmedya/mitobreak/internal/logger"
	"github.com/dbsmedya/mitobreak/internal/report"
)

// insertChunkSize bounds the number of rows per INSERT statement.
const insertChunkSize = 500

// Store reads and writes breakpoint calls in one results table.
type Store struct {
	db     *sql.DB
	table  string
	logger *logger.Logger
}

// New returns a Store on db using the given table, which must be a plain
// identifier.
func New(db *sql.DB, table string, log *logger.Logger) (*Store, error) {
	if db == nil {
		return nil, errors.New("results database is nil")
	}
	quoted, err := QuoteIdentifierSafe(table)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Store{db: db, table: quoted, logger: log}, nil
}

// Open connects to the results database described by cfg, ensures the
// results table exists and returns the Store with its Manager. Callers
// close the Manager when done.
func Open(ctx context.Context, cfg *config.ResultsDBConfig, log *logger.Logger) (*Store, *Manager, error) {
	mgr := NewManager(cfg)
	if err := mgr.Connect(ctx); err != nil {
		return nil, nil, err
	}

	s, err := New(mgr.DB, cfg.Table, log)
	if err != nil {
		mgr.Close()
		return nil, nil, err
	}
	if err := s.EnsureSchema(ctx); err != nil {
		mgr.Close()
		return nil, nil, err
	}
	return s, mgr, nil
}

// EnsureSchema creates the results table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
  sample VARCHAR(255) NOT NULL,
  start_pos INT NOT NULL,
  end_pos INT NOT NULL,
  support INT NOT NULL,
  PRIMARY KEY (sample, start_pos, end_pos)
)`, s.table)

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create results table: %w", err)
	}
	return nil
}

// SaveCalls replaces the stored calls of sample in a single transaction,
// holding the sample's advisory lock so that concurrent writers of the same
// sample serialize. Calls sharing an interval are stored as one row.
func (s *Store) SaveCalls(ctx context.Context, sample string, calls []report.Call) error {
	calls = report.Coalesce(calls)
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to reserve connection: %w", err)
	}
	defer conn.Close()

	lock := NewAdvisoryLock(conn, SampleLockName(sample))
	return lock.WithLock(ctx, TimeoutMedium, func() error {
		return s.replace(ctx, conn, sample, calls)
	})
}

func (s *Store) replace(ctx context.Context, conn *sql.Conn, sample string, calls []report.Call) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	deleted, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE sample = ?", s.table), sample)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete previous calls: %w", err)
	}

	for i := 0; i < len(calls); i += insertChunkSize {
		end := i + insertChunkSize
		if end > len(calls) {
			end = len(calls)
		}
		query, args := s.insertStatement(sample, calls[i:end])
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert calls: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit calls: %w", err)
	}

	replaced, _ := deleted.RowsAffected()
	s.logger.Infow("published breakpoint calls", "sample", sample, "calls", len(calls), "replaced", replaced)
	return nil
}

// insertStatement builds a multi-row INSERT. Duplicate keys add their support.
func (s *Store) insertStatement(sample string, calls []report.Call) (string, []interface{}) {
	placeholders := make([]string, len(calls))
	args := make([]interface{}, 0, len(calls)*4)
	for i, c := range calls {
		placeholders[i] = "(?, ?, ?, ?)"
		args = append(args, sample, c.Start, c.End, c.Count)
	}
	query := fmt.Sprintf(
		"INSERT INTO %s (sample, start_pos, end_pos, support) VALUES %s ON DUPLICATE KEY UPDATE support = support + VALUES(support)",
		s.table, strings.Join(placeholders, ", "))
	return query, args
}

// WriteCalls implements report.Sink.
func (s *Store) WriteCalls(ctx context.Context, sample string, calls []report.Call) error {
	return s.SaveCalls(ctx, sample, calls)
}

// ListSamples returns every stored sample name in ascending order.
func (s *Store) ListSamples(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT DISTINCT sample FROM %s ORDER BY sample", s.table))
	if err != nil {
		return nil, fmt.Errorf("failed to list samples: %w", err)
	}
	defer rows.Close()

	var samples []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		samples = append(samples, name)
	}
	return samples, rows.Err()
}

// LoadSamples returns the stored calls of each requested sample, ordered
// like a breakpoint table. Samples without rows map to nil.
func (s *Store) LoadSamples(ctx context.Context, samples []string) (map[string][]report.Call, error) {
	out := make(map[string][]report.Call, len(samples))
	if len(samples) == 0 {
		return out, nil
	}

	placeholders := make([]string, len(samples))
	args := make([]interface{}, len(samples))
	for i, name := range samples {
		placeholders[i] = "?"
		args[i] = name
	}

	query := fmt.Sprintf(
		"SELECT sample, start_pos, end_pos, support FROM %s WHERE sample IN (%s) ORDER BY sample, start_pos, end_pos, support DESC",
		s.table, strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load calls: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var c report.Call
		if err := rows.Scan(&name, &c.Start, &c.End, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan call: %w", err)
		}
		out[name] = append(out[name], c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating calls: %w", err)
	}
	return out, nil
}
