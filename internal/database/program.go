package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hollywoo/internal/models"
)

const programColumns = "id, title"

func scanProgram(r rowScanner, p *models.Program) error {
	return r.Scan(&p.ID, &p.Title)
}

// ProgramAdd inserts p and sets its ID
func (s *Store) ProgramAdd(ctx context.Context, p *models.Program) error {
	id, err := s.insert(ctx, "ProgramAdd", "INSERT INTO program (title) VALUES (?)", p.Title)
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

// ProgramSetTitle renames p
func (s *Store) ProgramSetTitle(ctx context.Context, p *models.Program, title string) error {
	n, err := s.exec(ctx, "ProgramSetTitle",
		"UPDATE program SET title = ? WHERE id = ?", title, p.ID)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("ProgramSetTitle %d: %w", p.ID, ErrNotFound)
	}
	p.Title = title
	return nil
}

// ProgramAddVideo links a video to a program
func (s *Store) ProgramAddVideo(ctx context.Context, programID, videoID int64) error {
	_, err := s.insert(ctx, "ProgramAddVideo",
		"INSERT INTO prog_vid_link (prog_id, vid_id) VALUES (?, ?)", programID, videoID)
	return err
}

// ProgramRemoveVideo unlinks a video from a program. A missing link is
// logged and counted, not reported as an error.
func (s *Store) ProgramRemoveVideo(ctx context.Context, programID, videoID int64) error {
	n, err := s.exec(ctx, "ProgramRemoveVideo",
		"DELETE FROM prog_vid_link WHERE prog_id = ? AND vid_id = ?", programID, videoID)
	if err != nil {
		return err
	}
	if n == 0 {
		s.staleLink(linkProgram, programID, videoID)
	}
	return nil
}

// ProgramGetByID returns the program with the given ID, or nil
func (s *Store) ProgramGetByID(ctx context.Context, id int64) (*models.Program, error) {
	p := &models.Program{}
	err := scanProgram(s.q.QueryRowContext(ctx,
		"SELECT "+programColumns+" FROM program WHERE id = ?", id), p)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, s.wrap("ProgramGetByID", err)
	}
	return p, nil
}

// ProgramGetAll returns all programs ordered by title
func (s *Store) ProgramGetAll(ctx context.Context) ([]*models.Program, error) {
	rows, err := s.q.QueryContext(ctx,
		"SELECT "+programColumns+" FROM program ORDER BY title, id")
	if err != nil {
		return nil, s.wrap("ProgramGetAll", err)
	}
	defer rows.Close()

	programs := make([]*models.Program, 0)
	for rows.Next() {
		p := &models.Program{}
		if err := scanProgram(rows, p); err != nil {
			return nil, s.wrap("ProgramGetAll", err)
		}
		programs = append(programs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrap("ProgramGetAll", err)
	}
	return programs, nil
}

// ProgramDelete removes a program and its video links. The videos stay.
func (s *Store) ProgramDelete(ctx context.Context, id int64) error {
	n, err := s.exec(ctx, "ProgramDelete", "DELETE FROM program WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("ProgramDelete %d: %w", id, ErrNotFound)
	}
	return nil
}
