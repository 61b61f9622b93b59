package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"hollywoo/internal/models"
)

const folderColumns = "id, path, last_scan, remote"

func scanFolder(r rowScanner, f *models.Folder) error {
	var (
		lastScan sql.NullInt64
		remote   int64
	)
	if err := r.Scan(&f.ID, &f.Path, &lastScan, &remote); err != nil {
		return err
	}
	f.LastScan = nil
	if lastScan.Valid {
		t := fromUnix(lastScan.Int64)
		f.LastScan = &t
	}
	f.Remote = remote != 0
	return nil
}

// FolderAdd inserts f and sets its ID
func (s *Store) FolderAdd(ctx context.Context, f *models.Folder) error {
	id, err := s.insert(ctx, "FolderAdd",
		"INSERT INTO folder (path, last_scan, remote) VALUES (?, ?, ?)",
		f.Path, nullUnix(f.LastScan), boolInt(f.Remote))
	if err != nil {
		return err
	}
	f.ID = id
	if f.LastScan != nil {
		t := f.LastScan.Truncate(time.Second)
		f.LastScan = &t
	}
	return nil
}

// FolderUpdateScan records t as the time f was last scanned completely
func (s *Store) FolderUpdateScan(ctx context.Context, f *models.Folder, t time.Time) error {
	n, err := s.exec(ctx, "FolderUpdateScan",
		"UPDATE folder SET last_scan = ? WHERE id = ?", toUnix(t), f.ID)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("FolderUpdateScan %d: %w", f.ID, ErrNotFound)
	}
	stamp := fromUnix(toUnix(t))
	f.LastScan = &stamp
	return nil
}

// FolderSetRemote marks f as living on a network share or not
func (s *Store) FolderSetRemote(ctx context.Context, f *models.Folder, remote bool) error {
	n, err := s.exec(ctx, "FolderSetRemote",
		"UPDATE folder SET remote = ? WHERE id = ?", boolInt(remote), f.ID)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("FolderSetRemote %d: %w", f.ID, ErrNotFound)
	}
	f.Remote = remote
	return nil
}

// FolderGetAll returns all folders ordered by path
func (s *Store) FolderGetAll(ctx context.Context) ([]*models.Folder, error) {
	rows, err := s.q.QueryContext(ctx,
		"SELECT "+folderColumns+" FROM folder ORDER BY path")
	if err != nil {
		return nil, s.wrap("FolderGetAll", err)
	}
	defer rows.Close()

	folders := make([]*models.Folder, 0)
	for rows.Next() {
		f := &models.Folder{}
		if err := scanFolder(rows, f); err != nil {
			return nil, s.wrap("FolderGetAll", err)
		}
		folders = append(folders, f)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrap("FolderGetAll", err)
	}
	return folders, nil
}

// FolderGetByID returns the folder with the given ID, or nil
func (s *Store) FolderGetByID(ctx context.Context, id int64) (*models.Folder, error) {
	return s.folderGet(ctx, "FolderGetByID",
		"SELECT "+folderColumns+" FROM folder WHERE id = ?", id)
}

// FolderGetByPath returns the folder with the given path, or nil
func (s *Store) FolderGetByPath(ctx context.Context, path string) (*models.Folder, error) {
	return s.folderGet(ctx, "FolderGetByPath",
		"SELECT "+folderColumns+" FROM folder WHERE path = ?", path)
}

func (s *Store) folderGet(ctx context.Context, op, query string, arg any) (*models.Folder, error) {
	f := &models.Folder{}
	err := scanFolder(s.q.QueryRowContext(ctx, query, arg), f)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, s.wrap(op, err)
	}
	return f, nil
}

// FolderDelete removes a folder together with its videos and their links
func (s *Store) FolderDelete(ctx context.Context, id int64) error {
	n, err := s.exec(ctx, "FolderDelete", "DELETE FROM folder WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("FolderDelete %d: %w", id, ErrNotFound)
	}
	return nil
}
