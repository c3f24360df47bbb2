package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrLockTimeout is returned when another writer holds the sample lock.
var ErrLockTimeout = errors.New("lock acquisition timed out")

// Lock wait times in seconds.
const (
	TimeoutImmediate = 0
	TimeoutShort     = 1
	TimeoutMedium    = 10
)

// AdvisoryLock is a MySQL named lock. GET_LOCK is scoped to a connection, so
// the lock is bound to a single *sql.Conn rather than the pool.
type AdvisoryLock struct {
	conn     *sql.Conn
	lockName string
	held     bool
}

// NewAdvisoryLock creates a lock; it is not acquired until AcquireLock.
func NewAdvisoryLock(conn *sql.Conn, lockName string) *AdvisoryLock {
	return &AdvisoryLock{conn: conn, lockName: lockName}
}

// AcquireLock waits up to timeoutSeconds for the lock. It returns false when
// the wait expired.
//
// GET_LOCK returns 1 on success, 0 on timeout and NULL on error.
func (a *AdvisoryLock) AcquireLock(ctx context.Context, timeoutSeconds int) (bool, error) {
	if a.held {
		return true, nil
	}

	var result sql.NullInt64
	err := a.conn.QueryRowContext(ctx, "SELECT GET_LOCK(?, ?)", a.lockName, timeoutSeconds).Scan(&result)
	if err != nil {
		return false, fmt.Errorf("failed to execute GET_LOCK: %w", err)
	}

	if !result.Valid {
		return false, fmt.Errorf("GET_LOCK returned NULL for lock %q (possible database error)", a.lockName)
	}

	switch result.Int64 {
	case 1:
		a.held = true
		return true, nil
	case 0:
		return false, nil
	default:
		return false, fmt.Errorf("unexpected GET_LOCK return value: %d", result.Int64)
	}
}

// ReleaseLock releases the lock. It returns false if the lock was not held.
//
// RELEASE_LOCK returns 1 on success, 0 when another session owns the lock
// and NULL when the lock does not exist.
func (a *AdvisoryLock) ReleaseLock(ctx context.Context) (bool, error) {
	if !a.held {
		return false, nil
	}

	var result sql.NullInt64
	err := a.conn.QueryRowContext(ctx, "SELECT RELEASE_LOCK(?)", a.lockName).Scan(&result)
	if err != nil {
		return false, fmt.Errorf("failed to execute RELEASE_LOCK: %w", err)
	}

	a.held = false
	if !result.Valid {
		return false, fmt.Errorf("RELEASE_LOCK returned NULL for lock %q (lock did not exist)", a.lockName)
	}
	return result.Int64 == 1, nil
}

// IsHeld reports whether this instance holds the lock.
func (a *AdvisoryLock) IsHeld() bool {
	return a.held
}

// LockName returns the name of the advisory lock.
func (a *AdvisoryLock) LockName() string {
	return a.lockName
}

// WithLock runs fn while holding the lock and releases it afterwards, even
// if fn panics.
func (a *AdvisoryLock) WithLock(ctx context.Context, timeoutSeconds int, fn func() error) error {
	acquired, err := a.AcquireLock(ctx, timeoutSeconds)
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !acquired {
		return fmt.Errorf("%w: lock %q is held by another instance", ErrLockTimeout, a.lockName)
	}

	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		// The server drops the lock with the connection if this fails.
		_, _ = a.ReleaseLock(releaseCtx)
	}()

	return fn()
}

// SampleLockName returns the lock name guarding writes for one sample.
// MySQL caps lock names at 64 characters.
func SampleLockName(sample string) string {
	sanitized := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			return r
		}
		return '_'
	}, sample)

	name := "mitobreak:sample:" + sanitized
	if len(name) > 64 {
		name = name[:64]
	}
	return name
}
