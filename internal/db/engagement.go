package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Spok95/college-library/internal/ctxutil"
	"github.com/Spok95/college-library/internal/models"
)

// ToggleFavorite атомарно переключает избранное: удаляет строку, а если удалять было нечего, вставляет.
// saved=true, если избранное теперь есть.
func (s *Store) ToggleFavorite(ctx context.Context, accountID, documentID int64) (saved bool, err error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		var id int64
		err := tx.QueryRowContext(ctx, `
			DELETE FROM favorites WHERE account_id = $1 AND document_id = $2 RETURNING id
		`, accountID, documentID).Scan(&id)
		switch {
		case err == nil:
			saved = false
			return nil
		case !errors.Is(err, sql.ErrNoRows):
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO favorites (account_id, document_id) VALUES ($1, $2)
			ON CONFLICT (account_id, document_id) DO NOTHING
		`, accountID, documentID); err != nil {
			return err
		}
		saved = true
		return nil
	})
	return saved, err
}

func (s *Store) AddComment(ctx context.Context, c *models.Comment) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return mapErr(s.db.QueryRowContext(ctx, `
		INSERT INTO comments (account_id, document_id, text) VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, c.AccountID, c.DocumentID, c.Text).Scan(&c.ID, &c.CreatedAt))
}

// MarkViewStat ставит флаг в строке (аккаунт, документ), второй флаг не трогает.
// created=true, если строка вставлена этим вызовом (xmax = 0 у новой версии строки).
func (s *Store) MarkViewStat(ctx context.Context, accountID, documentID int64, flag models.StatFlag) (created bool, err error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	q := `
		INSERT INTO view_stats (account_id, document_id, viewed) VALUES ($1, $2, TRUE)
		ON CONFLICT (account_id, document_id) DO UPDATE SET viewed = TRUE
		RETURNING (xmax = 0)
	`
	if flag == models.FlagDownloaded {
		q = `
		INSERT INTO view_stats (account_id, document_id, downloaded) VALUES ($1, $2, TRUE)
		ON CONFLICT (account_id, document_id) DO UPDATE SET downloaded = TRUE
		RETURNING (xmax = 0)
	`
	}
	err = s.db.QueryRowContext(ctx, q, accountID, documentID).Scan(&created)
	return created, mapErr(err)
}

func (s *Store) ViewStat(ctx context.Context, accountID, documentID int64) (*models.ViewStat, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	var v models.ViewStat
	err := s.db.QueryRowContext(ctx, `
		SELECT id, account_id, document_id, viewed, downloaded
		FROM view_stats WHERE account_id = $1 AND document_id = $2
	`, accountID, documentID).Scan(&v.ID, &v.AccountID, &v.DocumentID, &v.Viewed, &v.Downloaded)
	if err != nil {
		return nil, mapErr(err)
	}
	return &v, nil
}
