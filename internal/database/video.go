package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"hollywoo/internal/models"
)

const videoColumns = "id, folder_id, path, added, mtime, title, cksum, res_x, res_y, duration, hidden"

// videoColumnsQualified is videoColumns for queries that join on video
const videoColumnsQualified = "v.id, v.folder_id, v.path, v.added, v.mtime, v.title, v.cksum, v.res_x, v.res_y, v.duration, v.hidden"

func scanVideo(r rowScanner, v *models.Video) error {
	var (
		added, mtime int64
		cksum        sql.NullString
		resX, resY   sql.NullInt64
		duration     sql.NullInt64
		hidden       int64
	)
	if err := r.Scan(&v.ID, &v.FolderID, &v.Path, &added, &mtime, &v.Title,
		&cksum, &resX, &resY, &duration, &hidden); err != nil {
		return err
	}

	v.Added = fromUnix(added)
	v.Mtime = fromUnix(mtime)

	v.Checksum = nil
	if cksum.Valid {
		c := cksum.String
		v.Checksum = &c
	}

	v.Resolution = nil
	if resX.Valid && resY.Valid {
		v.Resolution = &models.Resolution{Width: int(resX.Int64), Height: int(resY.Int64)}
	}

	v.Duration = nil
	if duration.Valid {
		d := duration.Int64
		v.Duration = &d
	}

	v.Hidden = hidden != 0
	return nil
}

func resolutionArgs(r *models.Resolution) (sql.NullInt64, sql.NullInt64) {
	if r == nil {
		return sql.NullInt64{}, sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(r.Width), Valid: true},
		sql.NullInt64{Int64: int64(r.Height), Valid: true}
}

func nullInt(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

// VideoAdd inserts v and sets its ID. A zero Added is set to the current time.
func (s *Store) VideoAdd(ctx context.Context, v *models.Video) error {
	added := v.Added
	if added.IsZero() {
		added = time.Now()
	}
	resX, resY := resolutionArgs(v.Resolution)

	id, err := s.insert(ctx, "VideoAdd", `
		INSERT INTO video (folder_id, path, added, mtime, title, cksum, res_x, res_y, duration, hidden)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.FolderID, v.Path, toUnix(added), toUnix(v.Mtime), v.Title,
		nullString(v.Checksum), resX, resY, nullInt(v.Duration), boolInt(v.Hidden))
	if err != nil {
		return err
	}

	v.ID = id
	v.Added = fromUnix(toUnix(added))
	v.Mtime = fromUnix(toUnix(v.Mtime))
	return nil
}

func (s *Store) videoUpdate(ctx context.Context, op string, id int64, set string, args ...any) error {
	n, err := s.exec(ctx, op, "UPDATE video SET "+set+" WHERE id = ?", append(args, id)...)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", op, id, ErrNotFound)
	}
	return nil
}

// VideoSetTitle sets the title of v
func (s *Store) VideoSetTitle(ctx context.Context, v *models.Video, title string) error {
	if err := s.videoUpdate(ctx, "VideoSetTitle", v.ID, "title = ?", title); err != nil {
		return err
	}
	v.Title = title
	return nil
}

// VideoSetChecksum sets the content checksum of v
func (s *Store) VideoSetChecksum(ctx context.Context, v *models.Video, cksum string) error {
	if err := s.videoUpdate(ctx, "VideoSetChecksum", v.ID, "cksum = ?", cksum); err != nil {
		return err
	}
	v.Checksum = &cksum
	return nil
}

// VideoSetMtime records the modification time of the file behind v
func (s *Store) VideoSetMtime(ctx context.Context, v *models.Video, mtime time.Time) error {
	if err := s.videoUpdate(ctx, "VideoSetMtime", v.ID, "mtime = ?", toUnix(mtime)); err != nil {
		return err
	}
	v.Mtime = fromUnix(toUnix(mtime))
	return nil
}

// VideoSetResolution sets or, with nil, clears the resolution of v
func (s *Store) VideoSetResolution(ctx context.Context, v *models.Video, res *models.Resolution) error {
	resX, resY := resolutionArgs(res)
	if err := s.videoUpdate(ctx, "VideoSetResolution", v.ID, "res_x = ?, res_y = ?", resX, resY); err != nil {
		return err
	}
	if res == nil {
		v.Resolution = nil
	} else {
		r := *res
		v.Resolution = &r
	}
	return nil
}

// VideoSetDuration sets or, with nil, clears the duration of v in milliseconds
func (s *Store) VideoSetDuration(ctx context.Context, v *models.Video, ms *int64) error {
	if err := s.videoUpdate(ctx, "VideoSetDuration", v.ID, "duration = ?", nullInt(ms)); err != nil {
		return err
	}
	if ms == nil {
		v.Duration = nil
	} else {
		d := *ms
		v.Duration = &d
	}
	return nil
}

// VideoSetHidden hides or unhides v
func (s *Store) VideoSetHidden(ctx context.Context, v *models.Video, hidden bool) error {
	if err := s.videoUpdate(ctx, "VideoSetHidden", v.ID, "hidden = ?", boolInt(hidden)); err != nil {
		return err
	}
	v.Hidden = hidden
	return nil
}

// VideoGetByID returns the video with the given ID, or nil
func (s *Store) VideoGetByID(ctx context.Context, id int64) (*models.Video, error) {
	return s.videoGet(ctx, "VideoGetByID",
		"SELECT "+videoColumns+" FROM video WHERE id = ?", id)
}

// VideoGetByPath returns the video stored under the absolute path, or nil.
// If folders overlap the oldest row wins.
func (s *Store) VideoGetByPath(ctx context.Context, path string) (*models.Video, error) {
	return s.videoGet(ctx, "VideoGetByPath",
		"SELECT "+videoColumns+" FROM video WHERE path = ? ORDER BY id LIMIT 1", path)
}

func (s *Store) videoGet(ctx context.Context, op, query string, arg any) (*models.Video, error) {
	v := &models.Video{}
	err := scanVideo(s.q.QueryRowContext(ctx, query, arg), v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, s.wrap(op, err)
	}
	return v, nil
}

// VideoGetByFolder returns the videos of a folder ordered by path
func (s *Store) VideoGetByFolder(ctx context.Context, folderID int64) ([]*models.Video, error) {
	return s.videoList(ctx, "VideoGetByFolder",
		"SELECT "+videoColumns+" FROM video WHERE folder_id = ? ORDER BY path, id", folderID)
}

// VideoGetAll returns every video ordered by path
func (s *Store) VideoGetAll(ctx context.Context) ([]*models.Video, error) {
	return s.videoList(ctx, "VideoGetAll",
		"SELECT "+videoColumns+" FROM video ORDER BY path, id")
}

func (s *Store) videoList(ctx context.Context, op, query string, args ...any) ([]*models.Video, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, s.wrap(op, err)
	}
	defer rows.Close()

	videos := make([]*models.Video, 0)
	for rows.Next() {
		v := &models.Video{}
		if err := scanVideo(rows, v); err != nil {
			return nil, s.wrap(op, err)
		}
		videos = append(videos, v)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrap(op, err)
	}
	return videos, nil
}

// VideoDelete removes a video and every link to it
func (s *Store) VideoDelete(ctx context.Context, id int64) error {
	n, err := s.exec(ctx, "VideoDelete", "DELETE FROM video WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("VideoDelete %d: %w", id, ErrNotFound)
	}
	return nil
}

// VideoCount returns the number of indexed videos
func (s *Store) VideoCount(ctx context.Context) (int64, error) {
	var n int64
	if err := s.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM video").Scan(&n); err != nil {
		return 0, s.wrap("VideoCount", err)
	}
	return n, nil
}
