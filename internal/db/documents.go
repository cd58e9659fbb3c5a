package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/Spok95/college-library/internal/ctxutil"
	"github.com/Spok95/college-library/internal/models"
)

// DocumentIDs: id документов по возрастанию; search фильтрует по названию (ILIKE).
func (s *Store) DocumentIDs(ctx context.Context, search string) ([]int64, error) {
	q := `SELECT id FROM documents WHERE 1=1`
	var args []any
	idx := 1
	if search = strings.TrimSpace(search); search != "" {
		q += fmt.Sprintf(" AND title ILIKE $%d", idx)
		args = append(args, "%"+escapeLike(search)+"%")
		idx++
	}
	q += " ORDER BY id"
	return s.queryIDs(ctx, q, args...)
}

func (s *Store) DocumentIDsByOwner(ctx context.Context, ownerID int64) ([]int64, error) {
	return s.queryIDs(ctx, `SELECT id FROM documents WHERE owner_id = $1 ORDER BY id`, ownerID)
}

func (s *Store) FavoriteDocumentIDs(ctx context.Context, accountID int64) ([]int64, error) {
	return s.queryIDs(ctx, `
		SELECT document_id FROM favorites WHERE account_id = $1 ORDER BY id
	`, accountID)
}

// DocumentIDsByTitles: документы, чьё название входит в titles.
func (s *Store) DocumentIDsByTitles(ctx context.Context, titles []string) ([]int64, error) {
	if len(titles) == 0 {
		return nil, nil
	}
	return s.queryIDs(ctx, `SELECT id FROM documents WHERE title = ANY($1) ORDER BY id`, pq.Array(titles))
}

func (s *Store) DistinctTitles(ctx context.Context) ([]string, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT title FROM documents`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) queryIDs(ctx context.Context, q string, args ...any) ([]int64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

const documentCols = `id, author, owner_id, title, description, genre_id, direction_id,
	pages, year, pdf_key, image_key, created_at`

func scanDocument(row scanner) (*models.Document, error) {
	var d models.Document
	if err := row.Scan(&d.ID, &d.Author, &d.OwnerID, &d.Title, &d.Description, &d.GenreID,
		&d.DirectionID, &d.Pages, &d.Year, &d.PDFKey, &d.ImageKey, &d.CreatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Store) DocumentByID(ctx context.Context, id int64) (*models.Document, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	d, err := scanDocument(s.db.QueryRowContext(ctx, `SELECT `+documentCols+` FROM documents WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return d, nil
}

func (s *Store) CreateDocument(ctx context.Context, d *models.Document) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return mapErr(s.db.QueryRowContext(ctx, `
		INSERT INTO documents (author, owner_id, title, description, genre_id, direction_id,
		                       pages, year, pdf_key, image_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`, d.Author, d.OwnerID, d.Title, d.Description, d.GenreID, d.DirectionID,
		d.Pages, d.Year, d.PDFKey, d.ImageKey).Scan(&d.ID, &d.CreatedAt))
}

func (s *Store) DeleteDocument(ctx context.Context, id int64) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteDocuments(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DocumentDetails собирает полные агрегаты документов в порядке ids.
// Несуществующие id пропускаются.
func (s *Store) DocumentDetails(ctx context.Context, ids []int64) ([]models.DocumentDetail, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT d.id, d.author, d.owner_id, d.title, d.description, d.genre_id, d.direction_id,
		       d.pages, d.year, d.pdf_key, d.image_key, d.created_at,
		       g.name, dr.name, dr.description
		FROM documents d
		JOIN directions dr ON dr.id = d.direction_id
		LEFT JOIN genres g ON g.id = d.genre_id
		WHERE d.id = ANY($1)
	`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*models.DocumentDetail, len(ids))
	accountIDs := map[int64]struct{}{}
	for rows.Next() {
		var (
			dd        models.DocumentDetail
			genreName sql.NullString
		)
		d := &dd.Document
		if err := rows.Scan(&d.ID, &d.Author, &d.OwnerID, &d.Title, &d.Description, &d.GenreID,
			&d.DirectionID, &d.Pages, &d.Year, &d.PDFKey, &d.ImageKey, &d.CreatedAt,
			&genreName, &dd.Direction.Name, &dd.Direction.Description); err != nil {
			_ = rows.Close()
			return nil, err
		}
		dd.Direction.ID = d.DirectionID
		if d.GenreID != nil && genreName.Valid {
			dd.Genre = &models.Genre{ID: *d.GenreID, Name: genreName.String}
		}
		if d.OwnerID != nil {
			accountIDs[*d.OwnerID] = struct{}{}
		}
		byID[d.ID] = &dd
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	comments, err := s.commentsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, c := range comments {
		if c.AccountID != nil {
			accountIDs[*c.AccountID] = struct{}{}
		}
	}
	stats, err := s.viewStatsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, st := range stats {
		accountIDs[st.AccountID] = struct{}{}
	}

	keys := make([]int64, 0, len(accountIDs))
	for id := range accountIDs {
		keys = append(keys, id)
	}
	accounts, err := s.AccountsByIDs(ctx, keys)
	if err != nil {
		return nil, err
	}

	for _, c := range comments {
		dd, ok := byID[c.DocumentID]
		if !ok {
			continue
		}
		cw := models.CommentWithAuthor{Comment: c}
		if c.AccountID != nil {
			if a, ok := accounts[*c.AccountID]; ok {
				cw.Author = &a
			}
		}
		dd.Comments = append(dd.Comments, cw)
	}
	for _, st := range stats {
		dd, ok := byID[st.DocumentID]
		if !ok {
			continue
		}
		a, ok := accounts[st.AccountID]
		if !ok {
			continue
		}
		dd.Stats = append(dd.Stats, models.ViewStatWithAccount{Stat: st, Account: a})
	}

	out := make([]models.DocumentDetail, 0, len(ids))
	for _, id := range ids {
		dd, ok := byID[id]
		if !ok {
			continue
		}
		if dd.Document.OwnerID != nil {
			if a, ok := accounts[*dd.Document.OwnerID]; ok {
				dd.Owner = &a
			}
		}
		out = append(out, *dd)
	}
	return out, nil
}

func (s *Store) commentsFor(ctx context.Context, docIDs []int64) ([]models.Comment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, account_id, document_id, text, created_at
		FROM comments WHERE document_id = ANY($1) ORDER BY id
	`, pq.Array(docIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.AccountID, &c.DocumentID, &c.Text, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) viewStatsFor(ctx context.Context, docIDs []int64) ([]models.ViewStat, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, account_id, document_id, viewed, downloaded
		FROM view_stats WHERE document_id = ANY($1) ORDER BY id
	`, pq.Array(docIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.ViewStat
	for rows.Next() {
		var v models.ViewStat
		if err := rows.Scan(&v.ID, &v.AccountID, &v.DocumentID, &v.Viewed, &v.Downloaded); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
