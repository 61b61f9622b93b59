package database

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hollywoo/internal/metrics"
	"hollywoo/internal/models"
)

func newTestDB(t *testing.T) (*DB, *metrics.Metrics) {
	t.Helper()
	m := metrics.New(prometheus.NewRegistry())
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "hollywoo.db"), WithMetrics(m))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, m
}

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	d := newDB("mock.db")
	d.db = sqlDB
	return d, mock
}

func tableCount(t *testing.T, db *DB) int {
	t.Helper()
	var n int
	err := db.db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table'").Scan(&n)
	require.NoError(t, err)
	return n
}

func TestDSN(t *testing.T) {
	dsn := DSN("/var/lib/hollywoo/index.db", 5*time.Second)

	assert.Contains(t, dsn, "file:/var/lib/hollywoo/index.db?")
	assert.Contains(t, dsn, "_journal_mode=WAL")
	assert.Contains(t, dsn, "_foreign_keys=on")
	assert.Contains(t, dsn, "_locking_mode=NORMAL")
	assert.Contains(t, dsn, "_busy_timeout=5000")
	assert.Contains(t, dsn, "_txlock=immediate")
}

func TestOpen_CreatesSchema(t *testing.T) {
	db, _ := newTestDB(t)

	assert.Equal(t, len(Tables), tableCount(t, db))

	for _, table := range Tables {
		var strict int
		err := db.db.QueryRow("SELECT strict FROM pragma_table_list WHERE name = ?", table).Scan(&strict)
		require.NoError(t, err, table)
		assert.Equal(t, 1, strict, "%s should be STRICT", table)
	}

	var fk int
	require.NoError(t, db.db.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)

	var mode string
	require.NoError(t, db.db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestOpen_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "hollywoo.db")

	db, err := Open(ctx, path)
	require.NoError(t, err)
	f := &models.Folder{Path: "/media/movies"}
	require.NoError(t, db.Store().FolderAdd(ctx, f))
	require.NoError(t, db.Close())

	db, err = Open(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	got, err := db.Store().FolderGetByPath(ctx, "/media/movies")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, f.ID, got.ID)
}

func TestOpen_ConcurrentFirstOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "hollywoo.db")

	const n = 4
	handles := make([]*DB, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			handles[i], errs[i] = Open(ctx, path)
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, len(Tables), tableCount(t, handles[i]))
		handles[i].Close()
	}
}

func TestOpen_InitRunsOncePerHandle(t *testing.T) {
	db, _ := newTestDB(t)
	assert.True(t, db.initialized)
	require.NoError(t, db.init(context.Background()))
}

func TestOpen_FailsOnUnusableLocation(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(context.Background(), filepath.Join(dir, "missing", "sub", "hollywoo.db"))
	assert.Error(t, err)
	assert.Nil(t, db)
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()

	tag := &models.Tag{Name: "Action"}
	err := db.WithTx(ctx, func(s *Store) error {
		return s.TagCreate(ctx, tag)
	})
	require.NoError(t, err)

	got, err := db.Store().TagGetByName(ctx, "Action")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, tag.ID, got.ID)
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := db.WithTx(ctx, func(s *Store) error {
		if err := s.TagCreate(ctx, &models.Tag{Name: "Drama"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := db.Store().TagGetByName(ctx, "Drama")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestWithTx_RollsBackAndRepanics(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()

	assert.PanicsWithValue(t, "kaboom", func() {
		_ = db.WithTx(ctx, func(s *Store) error {
			if err := s.TagCreate(ctx, &models.Tag{Name: "Horror"}); err != nil {
				return err
			}
			panic("kaboom")
		})
	})

	got, err := db.Store().TagGetByName(ctx, "Horror")
	require.NoError(t, err)
	assert.Nil(t, got)

	// the connection went back to the pool in a usable state
	require.NoError(t, db.Store().TagCreate(ctx, &models.Tag{Name: "Horror"}))
}

func TestWithTx_Mock(t *testing.T) {
	insertTag := regexp.QuoteMeta("INSERT INTO tag (name) VALUES (?)")

	t.Run("commit failure is reported", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectExec(insertTag).WithArgs("Action").WillReturnResult(sqlmock.NewResult(7, 1))
		mock.ExpectCommit().WillReturnError(errors.New("disk I/O error"))

		err := db.WithTx(context.Background(), func(s *Store) error {
			return s.TagCreate(context.Background(), &models.Tag{Name: "Action"})
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to commit transaction")
		assert.False(t, IsIntegrity(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("constraint error rolls back", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectExec(insertTag).WithArgs("Action").
			WillReturnError(sqlite3.Error{Code: sqlite3.ErrConstraint})
		mock.ExpectRollback()

		tag := &models.Tag{Name: "Action"}
		err := db.WithTx(context.Background(), func(s *Store) error {
			return s.TagCreate(context.Background(), tag)
		})
		assert.ErrorIs(t, err, ErrIntegrity)
		assert.Zero(t, tag.ID)

		var ie *IntegrityError
		require.ErrorAs(t, err, &ie)
		assert.Equal(t, "TagCreate", ie.Op)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin failure", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin().WillReturnError(errors.New("database is locked"))

		called := false
		err := db.WithTx(context.Background(), func(s *Store) error {
			called = true
			return nil
		})
		require.Error(t, err)
		assert.False(t, called)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("panic rolls back", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		assert.Panics(t, func() {
			_ = db.WithTx(context.Background(), func(s *Store) error {
				panic("oops")
			})
		})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStore_IOErrorIsNotIntegrity(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE folder SET remote = ? WHERE id = ?")).
		WillReturnError(sqlite3.Error{Code: sqlite3.ErrIoErr})

	f := &models.Folder{ID: 1, Path: "/media"}
	err := db.Store().FolderSetRemote(context.Background(), f, true)
	require.Error(t, err)
	assert.False(t, IsIntegrity(err))
	assert.False(t, f.Remote)
	assert.NoError(t, mock.ExpectationsWereMet())
}
