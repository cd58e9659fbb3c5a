package db

import (
	"context"

	"github.com/Spok95/college-library/internal/ctxutil"
	"github.com/Spok95/college-library/internal/models"
)

// GetOrCreateGenre: точное совпадение по имени, с учётом регистра.
func (s *Store) GetOrCreateGenre(ctx context.Context, name string) (*models.Genre, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO genres (name) VALUES ($1) ON CONFLICT (name) DO NOTHING
	`, name); err != nil {
		return nil, err
	}
	var g models.Genre
	if err := s.db.QueryRowContext(ctx, `SELECT id, name FROM genres WHERE name = $1`, name).
		Scan(&g.ID, &g.Name); err != nil {
		return nil, mapErr(err)
	}
	return &g, nil
}

func (s *Store) ListGenres(ctx context.Context) ([]models.Genre, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM genres ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Genre
	for rows.Next() {
		var g models.Genre
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *Store) ListDirections(ctx context.Context) ([]models.Direction, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, description FROM directions ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Direction
	for rows.Next() {
		var d models.Direction
		if err := rows.Scan(&d.ID, &d.Name, &d.Description); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) DirectionByID(ctx context.Context, id int64) (*models.Direction, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	var d models.Direction
	err := s.db.QueryRowContext(ctx, `SELECT id, name, description FROM directions WHERE id = $1`, id).
		Scan(&d.ID, &d.Name, &d.Description)
	if err != nil {
		return nil, mapErr(err)
	}
	return &d, nil
}

func (s *Store) DirectionByName(ctx context.Context, name string) (*models.Direction, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	var d models.Direction
	err := s.db.QueryRowContext(ctx, `SELECT id, name, description FROM directions WHERE name = $1`, name).
		Scan(&d.ID, &d.Name, &d.Description)
	if err != nil {
		return nil, mapErr(err)
	}
	return &d, nil
}

func (s *Store) CreateDirection(ctx context.Context, d *models.Direction) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return mapErr(s.db.QueryRowContext(ctx, `
		INSERT INTO directions (name, description) VALUES ($1, $2) RETURNING id
	`, d.Name, d.Description).Scan(&d.ID))
}

func (s *Store) UpdateDirection(ctx context.Context, d *models.Direction) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	res, err := s.db.ExecContext(ctx, `
		UPDATE directions SET name = $1, description = $2 WHERE id = $3
	`, d.Name, d.Description, d.ID)
	if err != nil {
		return mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteDirection удаляет направление вместе с его книгами (ON DELETE CASCADE).
func (s *Store) DeleteDirection(ctx context.Context, id int64) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	res, err := s.db.ExecContext(ctx, `DELETE FROM directions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DirectionStats(ctx context.Context) ([]models.DirectionStats, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	rows, err := s.db.QueryContext(ctx, `
		SELECT dr.id, dr.name, COUNT(d.id)
		FROM directions dr
		LEFT JOIN documents d ON d.direction_id = dr.id
		GROUP BY dr.id
		ORDER BY dr.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.DirectionStats
	for rows.Next() {
		var st models.DirectionStats
		if err := rows.Scan(&st.ID, &st.Name, &st.BooksCount); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}
