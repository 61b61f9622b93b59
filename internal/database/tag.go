package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hollywoo/internal/models"
)

const tagColumns = "id, name"

func scanTag(r rowScanner, t *models.Tag) error {
	return r.Scan(&t.ID, &t.Name)
}

// TagCreate inserts t and sets its ID. Tag names are unique.
func (s *Store) TagCreate(ctx context.Context, t *models.Tag) error {
	id, err := s.insert(ctx, "TagCreate", "INSERT INTO tag (name) VALUES (?)", t.Name)
	if err != nil {
		return err
	}
	t.ID = id
	return nil
}

// TagGetByID returns the tag with the given ID, or nil
func (s *Store) TagGetByID(ctx context.Context, id int64) (*models.Tag, error) {
	return s.tagGet(ctx, "TagGetByID",
		"SELECT "+tagColumns+" FROM tag WHERE id = ?", id)
}

// TagGetByName returns the tag with the given name, or nil
func (s *Store) TagGetByName(ctx context.Context, name string) (*models.Tag, error) {
	return s.tagGet(ctx, "TagGetByName",
		"SELECT "+tagColumns+" FROM tag WHERE name = ?", name)
}

func (s *Store) tagGet(ctx context.Context, op, query string, arg any) (*models.Tag, error) {
	t := &models.Tag{}
	err := scanTag(s.q.QueryRowContext(ctx, query, arg), t)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, s.wrap(op, err)
	}
	return t, nil
}

// TagGetAll returns all tags ordered by name
func (s *Store) TagGetAll(ctx context.Context) ([]*models.Tag, error) {
	rows, err := s.q.QueryContext(ctx, "SELECT "+tagColumns+" FROM tag ORDER BY name")
	if err != nil {
		return nil, s.wrap("TagGetAll", err)
	}
	defer rows.Close()

	tags := make([]*models.Tag, 0)
	for rows.Next() {
		t := &models.Tag{}
		if err := scanTag(rows, t); err != nil {
			return nil, s.wrap("TagGetAll", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrap("TagGetAll", err)
	}
	return tags, nil
}

// TagDelete removes a tag and all its links
func (s *Store) TagDelete(ctx context.Context, id int64) error {
	n, err := s.exec(ctx, "TagDelete", "DELETE FROM tag WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("TagDelete %d: %w", id, ErrNotFound)
	}
	return nil
}

// TagLinkCreate attaches a tag to a video. Attaching it twice is an
// integrity violation.
func (s *Store) TagLinkCreate(ctx context.Context, tagID, videoID int64) error {
	_, err := s.insert(ctx, "TagLinkCreate",
		"INSERT INTO tag_vid_link (tag_id, vid_id) VALUES (?, ?)", tagID, videoID)
	return err
}

// TagLinkDelete detaches a tag from a video. A missing link is logged and
// counted, not reported as an error.
func (s *Store) TagLinkDelete(ctx context.Context, tagID, videoID int64) error {
	n, err := s.exec(ctx, "TagLinkDelete",
		"DELETE FROM tag_vid_link WHERE tag_id = ? AND vid_id = ?", tagID, videoID)
	if err != nil {
		return err
	}
	if n == 0 {
		s.staleLink(linkTag, tagID, videoID)
	}
	return nil
}
