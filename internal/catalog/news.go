package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Spok95/college-library/internal/apperr"
	"github.com/Spok95/college-library/internal/blob"
	"github.com/Spok95/college-library/internal/models"
	"github.com/Spok95/college-library/internal/validate"
)

type NewsInput struct {
	Title       string     `json:"title" validate:"required,max=320"`
	Description string     `json:"description" validate:"max=2000"`
	PublishedAt *time.Time `json:"news_date"`

	Image *blob.File `json:"-" validate:"-"`
}

func (s *Service) ListNews(ctx context.Context) ([]models.NewsDetail, error) {
	return s.store.ListNews(ctx)
}

func (s *Service) GetNews(ctx context.Context, id int64) (*models.NewsDetail, error) {
	n, err := s.store.NewsByID(ctx, id)
	if err != nil {
		return nil, notFound(err, MsgNewsNotFound)
	}
	return n, nil
}

// CreateNews: автор новости = вызывающий; без даты берётся момент создания.
func (s *Service) CreateNews(ctx context.Context, in NewsInput, author *models.Account) (*models.NewsDetail, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	n := &models.News{OwnerID: &author.ID, Title: in.Title, Description: in.Description}
	if in.PublishedAt != nil {
		n.PublishedAt = *in.PublishedAt
	}
	if in.Image != nil {
		key, err := s.blobs.Put(ctx, blob.DirNews, *in.Image)
		if err != nil {
			return nil, fmt.Errorf("save news image: %w", err)
		}
		n.ImageKey = key
	}
	if err := s.store.CreateNews(ctx, n); err != nil {
		s.dropBlobs(ctx, n.ImageKey)
		return nil, fmt.Errorf("create news: %w", err)
	}
	s.log.Info("новость опубликована", zap.Int64("news_id", n.ID))
	return s.GetNews(ctx, n.ID)
}

func (s *Service) ownNews(ctx context.Context, id int64, requester *models.Account) (*models.NewsDetail, error) {
	n, err := s.GetNews(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.News.OwnerID == nil || *n.News.OwnerID != requester.ID {
		return nil, apperr.Forbidden(MsgNewsNotOwner)
	}
	return n, nil
}

// UpdateNews: только автор. Новая картинка заменяет старую.
func (s *Service) UpdateNews(ctx context.Context, id int64, in NewsInput, requester *models.Account) (*models.NewsDetail, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	cur, err := s.ownNews(ctx, id, requester)
	if err != nil {
		return nil, err
	}
	n := cur.News
	n.Title, n.Description = in.Title, in.Description
	oldKey := n.ImageKey
	if in.Image != nil {
		if n.ImageKey, err = s.blobs.Put(ctx, blob.DirNews, *in.Image); err != nil {
			return nil, fmt.Errorf("save news image: %w", err)
		}
	}
	if err := s.store.UpdateNews(ctx, &n); err != nil {
		if n.ImageKey != oldKey {
			s.dropBlobs(ctx, n.ImageKey)
		}
		return nil, notFound(err, MsgNewsNotFound)
	}
	if n.ImageKey != oldKey {
		s.dropBlobs(ctx, oldKey)
	}
	return s.GetNews(ctx, id)
}

func (s *Service) DeleteNews(ctx context.Context, id int64, requester *models.Account) error {
	cur, err := s.ownNews(ctx, id, requester)
	if err != nil {
		return err
	}
	if err := s.store.DeleteNews(ctx, id); err != nil {
		return notFound(err, MsgNewsNotFound)
	}
	s.dropBlobs(ctx, cur.News.ImageKey)
	return nil
}
