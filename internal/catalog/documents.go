package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Spok95/college-library/internal/apperr"
	"github.com/Spok95/college-library/internal/blob"
	"github.com/Spok95/college-library/internal/db"
	"github.com/Spok95/college-library/internal/models"
	"github.com/Spok95/college-library/internal/validate"
)

type CreateDocumentInput struct {
	Author      string `json:"author" validate:"max=80"`
	Title       string `json:"title" validate:"required,max=320"`
	Description string `json:"description" validate:"max=2000"`
	Pages       *int   `json:"pages" validate:"omitempty,gte=0"`
	Year        *int   `json:"year" validate:"omitempty,gte=0"`
	Genre       string `json:"genre" validate:"max=150"`
	Direction   string `json:"direction" validate:"required,max=150"`

	PDF   *blob.File `json:"-" validate:"-"`
	Image *blob.File `json:"-" validate:"-"`
}

// CreateDocument сохраняет книгу от имени creator. Файлы пишутся только после проверок
// и удаляются, если вставка не удалась.
func (s *Service) CreateDocument(ctx context.Context, in CreateDocumentInput, creator *models.Account) (*models.DocumentDetail, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Genre = strings.TrimSpace(in.Genre)
	in.Direction = strings.TrimSpace(in.Direction)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	dir, err := s.store.DirectionByName(ctx, in.Direction)
	if err != nil {
		return nil, notFound(err, MsgDirectionNotFound)
	}

	d := &models.Document{
		Author:      strings.TrimSpace(in.Author),
		OwnerID:     &creator.ID,
		Title:       in.Title,
		Description: in.Description,
		DirectionID: dir.ID,
		Pages:       in.Pages,
		Year:        in.Year,
	}
	if in.Genre != "" {
		g, err := s.store.GetOrCreateGenre(ctx, in.Genre)
		if err != nil {
			return nil, fmt.Errorf("genre %q: %w", in.Genre, err)
		}
		d.GenreID = &g.ID
	}

	if in.PDF != nil {
		if d.PDFKey, err = s.blobs.Put(ctx, blob.BooksDir(time.Now()), *in.PDF); err != nil {
			return nil, fmt.Errorf("save pdf: %w", err)
		}
	}
	if in.Image != nil {
		if d.ImageKey, err = s.blobs.Put(ctx, blob.DirImages, *in.Image); err != nil {
			s.dropBlobs(ctx, d.PDFKey)
			return nil, fmt.Errorf("save image: %w", err)
		}
	}

	if err := s.store.CreateDocument(ctx, d); err != nil {
		s.dropBlobs(ctx, d.PDFKey, d.ImageKey)
		return nil, fmt.Errorf("create document: %w", err)
	}
	s.log.Info("книга добавлена", zap.Int64("document_id", d.ID), zap.Int64("owner_id", creator.ID))
	return s.GetDocument(ctx, d.ID)
}

// DeleteDocument: удалить может только владелец; права персонала здесь не помогают.
func (s *Service) DeleteDocument(ctx context.Context, id int64, requester *models.Account) error {
	d, err := s.store.DocumentByID(ctx, id)
	if err != nil {
		return notFound(err, MsgDocumentNotFound)
	}
	if d.OwnerID == nil || *d.OwnerID != requester.ID {
		return apperr.Forbidden(MsgDocumentNotOwner)
	}
	if err := s.store.DeleteDocument(ctx, id); err != nil {
		return notFound(err, MsgDocumentNotFound)
	}
	s.dropBlobs(ctx, d.PDFKey, d.ImageKey)
	s.log.Info("книга удалена", zap.Int64("document_id", id), zap.Int64("account_id", requester.ID))
	return nil
}

// PurgeDuplicateTitles выбирает книги, чьё название входит в множество всех названий,
// то есть весь каталог, и удаляет их. Возвращает представления до удаления.
func (s *Service) PurgeDuplicateTitles(ctx context.Context) ([]models.DocumentDetail, error) {
	titles, err := s.store.DistinctTitles(ctx)
	if err != nil {
		return nil, err
	}
	if len(titles) == 0 {
		return nil, nil
	}
	ids, err := s.store.DocumentIDsByTitles(ctx, titles)
	if err != nil {
		return nil, err
	}
	out, err := s.store.DocumentDetails(ctx, ids)
	if err != nil {
		return nil, err
	}
	n, err := s.store.DeleteDocuments(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("purge: %w", err)
	}
	for _, d := range out {
		s.dropBlobs(ctx, d.Document.PDFKey, d.Document.ImageKey)
	}
	s.log.Warn("каталог очищен по названиям", zap.Int64("deleted", n))
	return out, nil
}

func isConflict(err error) bool { return errors.Is(err, db.ErrConflict) }
