package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hollywoo/internal/models"
)

const personColumns = "id, name, born"

func scanPerson(r rowScanner, p *models.Person) error {
	var born sql.NullInt64
	if err := r.Scan(&p.ID, &p.Name, &born); err != nil {
		return err
	}
	p.Born = nil
	if born.Valid {
		y := int(born.Int64)
		p.Born = &y
	}
	return nil
}

func nullYear(y *int) sql.NullInt64 {
	if y == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*y), Valid: true}
}

// PersonAdd inserts p and sets its ID. Person names are unique.
func (s *Store) PersonAdd(ctx context.Context, p *models.Person) error {
	id, err := s.insert(ctx, "PersonAdd",
		"INSERT INTO person (name, born) VALUES (?, ?)", p.Name, nullYear(p.Born))
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

// PersonSetBorn sets or, with nil, clears the birth year of p
func (s *Store) PersonSetBorn(ctx context.Context, p *models.Person, born *int) error {
	n, err := s.exec(ctx, "PersonSetBorn",
		"UPDATE person SET born = ? WHERE id = ?", nullYear(born), p.ID)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("PersonSetBorn %d: %w", p.ID, ErrNotFound)
	}
	if born == nil {
		p.Born = nil
	} else {
		y := *born
		p.Born = &y
	}
	return nil
}

// PersonGetByID returns the person with the given ID, or nil
func (s *Store) PersonGetByID(ctx context.Context, id int64) (*models.Person, error) {
	return s.personGet(ctx, "PersonGetByID",
		"SELECT "+personColumns+" FROM person WHERE id = ?", id)
}

// PersonGetByName returns the person with the given name, or nil
func (s *Store) PersonGetByName(ctx context.Context, name string) (*models.Person, error) {
	return s.personGet(ctx, "PersonGetByName",
		"SELECT "+personColumns+" FROM person WHERE name = ?", name)
}

func (s *Store) personGet(ctx context.Context, op, query string, arg any) (*models.Person, error) {
	p := &models.Person{}
	err := scanPerson(s.q.QueryRowContext(ctx, query, arg), p)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, s.wrap(op, err)
	}
	return p, nil
}

// PersonGetAll returns all people ordered by name
func (s *Store) PersonGetAll(ctx context.Context) ([]*models.Person, error) {
	rows, err := s.q.QueryContext(ctx, "SELECT "+personColumns+" FROM person ORDER BY name")
	if err != nil {
		return nil, s.wrap("PersonGetAll", err)
	}
	defer rows.Close()

	people := make([]*models.Person, 0)
	for rows.Next() {
		p := &models.Person{}
		if err := scanPerson(rows, p); err != nil {
			return nil, s.wrap("PersonGetAll", err)
		}
		people = append(people, p)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrap("PersonGetAll", err)
	}
	return people, nil
}

// PersonDelete removes a person and all their credits
func (s *Store) PersonDelete(ctx context.Context, id int64) error {
	n, err := s.exec(ctx, "PersonDelete", "DELETE FROM person WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("PersonDelete %d: %w", id, ErrNotFound)
	}
	return nil
}

// PersonLinkCreate credits a person on a video in role. The same person may
// hold several roles on one video, but each role only once.
func (s *Store) PersonLinkCreate(ctx context.Context, personID, videoID int64, role string) error {
	_, err := s.insert(ctx, "PersonLinkCreate",
		"INSERT INTO person_vid_link (person_id, vid_id, role) VALUES (?, ?, ?)",
		personID, videoID, role)
	return err
}

// PersonLinkDelete removes one credit. A missing credit is logged and
// counted, not reported as an error.
func (s *Store) PersonLinkDelete(ctx context.Context, personID, videoID int64, role string) error {
	n, err := s.exec(ctx, "PersonLinkDelete",
		"DELETE FROM person_vid_link WHERE person_id = ? AND vid_id = ? AND role = ?",
		personID, videoID, role)
	if err != nil {
		return err
	}
	if n == 0 {
		s.staleLink(linkPerson, personID, videoID)
	}
	return nil
}
