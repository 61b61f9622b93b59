package database

import (
	"context"
	"database/sql"
	"time"
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// Store runs typed queries against the index, either inside a transaction
// (see DB.WithTx) or directly on the database (see DB.Store).
//
// Write methods update the struct passed in only after the statement
// succeeded. Inside a transaction that is later rolled back the struct is
// not reverted.
type Store struct {
	q  querier
	db *DB
}

// Link names used in logs and the stale link metric
const (
	linkTag     = "tag"
	linkPerson  = "person"
	linkProgram = "program"
)

func (s *Store) staleLink(link string, ownerID, videoID int64) {
	s.db.logger.Warn().
		Str("link", link).
		Int64("owner_id", ownerID).
		Int64("video_id", videoID).
		Msg("Removed link did not exist")
	if s.db.metrics != nil {
		s.db.metrics.StaleLinkRemovalsTotal.WithLabelValues(link).Inc()
	}
}

// exec runs a write and returns the number of affected rows
func (s *Store) exec(ctx context.Context, op, query string, args ...any) (int64, error) {
	res, err := s.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, s.wrap(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, s.wrap(op, err)
	}
	return n, nil
}

func (s *Store) insert(ctx context.Context, op, query string, args ...any) (int64, error) {
	res, err := s.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, s.wrap(op, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, s.wrap(op, err)
	}
	return id, nil
}

func toUnix(t time.Time) int64 {
	return t.Unix()
}

func fromUnix(sec int64) time.Time {
	return time.Unix(sec, 0)
}

func nullUnix(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
