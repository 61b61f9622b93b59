package database

import (
	"context"

	"hollywoo/internal/models"
)

// Read-only joins across the link tables. An entity without links yields an
// empty slice, never nil.

const (
	tagColumnsQualified    = "t.id, t.name"
	personColumnsQualified = "p.id, p.name, p.born"
)

// trailingScanner appends extra destinations after the ones an entity
// scanner asks for, so a join can reuse scanVideo or scanPerson for the
// leading columns.
type trailingScanner struct {
	r     rowScanner
	extra []any
}

func (t trailingScanner) Scan(dest ...any) error {
	return t.r.Scan(append(dest, t.extra...)...)
}

// TagGetAllForVideo returns every tag, flagged with whether it is attached
// to the video, ordered by name
func (s *Store) TagGetAllForVideo(ctx context.Context, videoID int64) ([]models.TagFlag, error) {
	const op = "TagGetAllForVideo"
	rows, err := s.q.QueryContext(ctx, `
		SELECT `+tagColumnsQualified+`,
		       EXISTS (SELECT 1 FROM tag_vid_link l WHERE l.tag_id = t.id AND l.vid_id = ?)
		FROM tag t
		ORDER BY t.name`, videoID)
	if err != nil {
		return nil, s.wrap(op, err)
	}
	defer rows.Close()

	flags := make([]models.TagFlag, 0)
	for rows.Next() {
		var (
			flag   models.TagFlag
			linked int64
		)
		if err := scanTag(trailingScanner{r: rows, extra: []any{&linked}}, &flag.Tag); err != nil {
			return nil, s.wrap(op, err)
		}
		flag.Linked = linked != 0
		flags = append(flags, flag)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrap(op, err)
	}
	return flags, nil
}

// TagGetVideos returns the videos carrying a tag, ordered by folder path and
// then by video path
func (s *Store) TagGetVideos(ctx context.Context, tagID int64) ([]*models.Video, error) {
	return s.videoList(ctx, "TagGetVideos", `
		SELECT `+videoColumnsQualified+`
		FROM tag_vid_link l
		JOIN video v ON v.id = l.vid_id
		JOIN folder f ON f.id = v.folder_id
		WHERE l.tag_id = ?
		ORDER BY f.path, v.path, v.id`, tagID)
}

// VideoGetTags returns the tags attached to a video ordered by name
func (s *Store) VideoGetTags(ctx context.Context, videoID int64) ([]*models.Tag, error) {
	const op = "VideoGetTags"
	rows, err := s.q.QueryContext(ctx, `
		SELECT `+tagColumnsQualified+`
		FROM tag_vid_link l
		JOIN tag t ON t.id = l.tag_id
		WHERE l.vid_id = ?
		ORDER BY t.name`, videoID)
	if err != nil {
		return nil, s.wrap(op, err)
	}
	defer rows.Close()

	tags := make([]*models.Tag, 0)
	for rows.Next() {
		t := &models.Tag{}
		if err := scanTag(rows, t); err != nil {
			return nil, s.wrap(op, err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrap(op, err)
	}
	return tags, nil
}

// PersonGetRoles returns every role a person holds, ordered by video path
// and role
func (s *Store) PersonGetRoles(ctx context.Context, personID int64) ([]models.RoleAssignment, error) {
	const op = "PersonGetRoles"
	rows, err := s.q.QueryContext(ctx, `
		SELECT `+videoColumnsQualified+`, l.role
		FROM person_vid_link l
		JOIN video v ON v.id = l.vid_id
		WHERE l.person_id = ?
		ORDER BY v.path, l.role`, personID)
	if err != nil {
		return nil, s.wrap(op, err)
	}
	defer rows.Close()

	roles := make([]models.RoleAssignment, 0)
	for rows.Next() {
		var ra models.RoleAssignment
		if err := scanVideo(trailingScanner{r: rows, extra: []any{&ra.Role}}, &ra.Video); err != nil {
			return nil, s.wrap(op, err)
		}
		roles = append(roles, ra)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrap(op, err)
	}
	return roles, nil
}

// VideoGetPeople returns everyone credited on a video, ordered by name and
// role
func (s *Store) VideoGetPeople(ctx context.Context, videoID int64) ([]models.Credit, error) {
	const op = "VideoGetPeople"
	rows, err := s.q.QueryContext(ctx, `
		SELECT `+personColumnsQualified+`, l.role
		FROM person_vid_link l
		JOIN person p ON p.id = l.person_id
		WHERE l.vid_id = ?
		ORDER BY p.name, l.role`, videoID)
	if err != nil {
		return nil, s.wrap(op, err)
	}
	defer rows.Close()

	credits := make([]models.Credit, 0)
	for rows.Next() {
		var c models.Credit
		if err := scanPerson(trailingScanner{r: rows, extra: []any{&c.Role}}, &c.Person); err != nil {
			return nil, s.wrap(op, err)
		}
		credits = append(credits, c)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrap(op, err)
	}
	return credits, nil
}

// ProgramGetVideos returns the videos of a program ordered by path
func (s *Store) ProgramGetVideos(ctx context.Context, programID int64) ([]*models.Video, error) {
	return s.videoList(ctx, "ProgramGetVideos", `
		SELECT `+videoColumnsQualified+`
		FROM prog_vid_link l
		JOIN video v ON v.id = l.vid_id
		WHERE l.prog_id = ?
		ORDER BY v.path, v.id`, programID)
}

// TagLinkCount returns how many times a tag is attached to a video: 0 or 1
func (s *Store) TagLinkCount(ctx context.Context, tagID, videoID int64) (int, error) {
	var n int
	err := s.q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM tag_vid_link WHERE tag_id = ? AND vid_id = ?",
		tagID, videoID).Scan(&n)
	if err != nil {
		return 0, s.wrap("TagLinkCount", err)
	}
	return n, nil
}
