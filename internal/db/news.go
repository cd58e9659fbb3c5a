package db

import (
	"context"

	"github.com/Spok95/college-library/internal/ctxutil"
	"github.com/Spok95/college-library/internal/models"
)

const newsCols = `id, owner_id, title, description, published_at, image_key`

func scanNews(row scanner) (*models.News, error) {
	var n models.News
	if err := row.Scan(&n.ID, &n.OwnerID, &n.Title, &n.Description, &n.PublishedAt, &n.ImageKey); err != nil {
		return nil, err
	}
	return &n, nil
}

// ListNews: новые сверху, с авторами.
func (s *Store) ListNews(ctx context.Context) ([]models.NewsDetail, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	rows, err := s.db.QueryContext(ctx, `SELECT `+newsCols+` FROM news ORDER BY published_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	var items []models.News
	for rows.Next() {
		n, err := scanNews(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		items = append(items, *n)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()
	return s.withNewsOwners(ctx, items)
}

func (s *Store) NewsByID(ctx context.Context, id int64) (*models.NewsDetail, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	n, err := scanNews(s.db.QueryRowContext(ctx, `SELECT `+newsCols+` FROM news WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	out, err := s.withNewsOwners(ctx, []models.News{*n})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (s *Store) withNewsOwners(ctx context.Context, items []models.News) ([]models.NewsDetail, error) {
	var ids []int64
	for _, n := range items {
		if n.OwnerID != nil {
			ids = append(ids, *n.OwnerID)
		}
	}
	owners, err := s.AccountsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]models.NewsDetail, 0, len(items))
	for _, n := range items {
		nd := models.NewsDetail{News: n}
		if n.OwnerID != nil {
			if a, ok := owners[*n.OwnerID]; ok {
				nd.Owner = &a
			}
		}
		out = append(out, nd)
	}
	return out, nil
}

// CreateNews: published_at по умолчанию now(), если не задан.
func (s *Store) CreateNews(ctx context.Context, n *models.News) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	var published any
	if !n.PublishedAt.IsZero() {
		published = n.PublishedAt
	}
	return mapErr(s.db.QueryRowContext(ctx, `
		INSERT INTO news (owner_id, title, description, published_at, image_key)
		VALUES ($1, $2, $3, COALESCE($4::timestamptz, now()), $5)
		RETURNING id, published_at
	`, n.OwnerID, n.Title, n.Description, published, n.ImageKey).Scan(&n.ID, &n.PublishedAt))
}

func (s *Store) UpdateNews(ctx context.Context, n *models.News) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	res, err := s.db.ExecContext(ctx, `
		UPDATE news SET title = $1, description = $2, image_key = $3 WHERE id = $4
	`, n.Title, n.Description, n.ImageKey, n.ID)
	if err != nil {
		return mapErr(err)
	}
	if k, _ := res.RowsAffected(); k == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteNews(ctx context.Context, id int64) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	res, err := s.db.ExecContext(ctx, `DELETE FROM news WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if k, _ := res.RowsAffected(); k == 0 {
		return ErrNotFound
	}
	return nil
}
