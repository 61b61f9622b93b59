package database

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// ErrIntegrity is matched by every error caused by a uniqueness, foreign key
// or check constraint. The rejected statement had no effect.
var ErrIntegrity = errors.New("integrity violation")

// IntegrityError carries the operation that violated a constraint
type IntegrityError struct {
	Op  string
	Err error
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrIntegrity, e.Err)
}

func (e *IntegrityError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrIntegrity) hold for any IntegrityError
func (e *IntegrityError) Is(target error) bool {
	return target == ErrIntegrity
}

// IsIntegrity reports whether err is a constraint violation
func IsIntegrity(err error) bool {
	return errors.Is(err, ErrIntegrity)
}

func isConstraint(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint
}

// wrap classifies a driver error for op. Constraint violations become
// IntegrityError and are counted; anything else is an I/O failure.
func (s *Store) wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if isConstraint(err) {
		if s.db.metrics != nil {
			s.db.metrics.IntegrityViolationsTotal.WithLabelValues(op).Inc()
		}
		return &IntegrityError{Op: op, Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// ErrNotFound is returned by targeted updates and deletes when no row has
// the given identifier. Lookups report a miss as a nil result instead.
var ErrNotFound = errors.New("not found")
