// Package engagement: избранное, комментарии и отметки просмотра/скачивания.
package engagement

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Spok95/college-library/internal/apperr"
	"github.com/Spok95/college-library/internal/db"
	"github.com/Spok95/college-library/internal/metrics"
	"github.com/Spok95/college-library/internal/models"
	"github.com/Spok95/college-library/internal/validate"
)

const (
	MsgDocumentNotFound = "Not Found"
	MsgRemoved          = "removed"
	MsgSaved            = "saved"
	MsgCommentAdded     = "comment added"
	MsgRecorded         = "OK"
)

// Outcome: чем закончилось действие; граница HTTP выбирает по нему код ответа.
type Outcome int

const (
	Removed Outcome = iota
	Saved
	Created
	NoContent
)

func (o Outcome) String() string {
	switch o {
	case Removed:
		return "removed"
	case Saved:
		return "saved"
	case Created:
		return "created"
	default:
		return "no_content"
	}
}

type Store interface {
	DocumentByID(ctx context.Context, id int64) (*models.Document, error)
	ToggleFavorite(ctx context.Context, accountID, documentID int64) (saved bool, err error)
	AddComment(ctx context.Context, c *models.Comment) error
	MarkViewStat(ctx context.Context, accountID, documentID int64, flag models.StatFlag) (created bool, err error)
}

type Service struct {
	store   Store
	limiter *KeyLimiter
	log     *zap.Logger
}

func New(store Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, limiter: NewKeyLimiter(), log: log.Named("engagement")}
}

func (s *Service) requireDocument(ctx context.Context, id int64) error {
	_, err := s.store.DocumentByID(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return apperr.NotFound(MsgDocumentNotFound)
	}
	return err
}

// ToggleFavorite добавляет книгу в избранное или убирает её оттуда.
func (s *Service) ToggleFavorite(ctx context.Context, account *models.Account, documentID int64) (Outcome, error) {
	if err := s.requireDocument(ctx, documentID); err != nil {
		return 0, err
	}
	unlock := s.limiter.lock(account.ID, documentID)
	defer unlock()

	saved, err := s.store.ToggleFavorite(ctx, account.ID, documentID)
	if err != nil {
		return 0, fmt.Errorf("toggle favorite: %w", err)
	}
	out := Removed
	if saved {
		out = Saved
	}
	metrics.ObserveEngagement("favorite", out.String())
	return out, nil
}

type commentInput struct {
	Text string `json:"text" validate:"required,max=500"`
}

func (s *Service) AddComment(ctx context.Context, account *models.Account, documentID int64, text string) (*models.Comment, error) {
	in := commentInput{Text: strings.TrimSpace(text)}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if err := s.requireDocument(ctx, documentID); err != nil {
		return nil, err
	}
	c := &models.Comment{AccountID: &account.ID, DocumentID: documentID, Text: in.Text}
	if err := s.store.AddComment(ctx, c); err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}
	metrics.ObserveEngagement("comment", Created.String())
	return c, nil
}

func (s *Service) RecordView(ctx context.Context, account *models.Account, documentID int64) (Outcome, error) {
	return s.record(ctx, account, documentID, models.FlagViewed, "view")
}

func (s *Service) RecordDownload(ctx context.Context, account *models.Account, documentID int64) (Outcome, error) {
	return s.record(ctx, account, documentID, models.FlagDownloaded, "download")
}

// record: преподаватели в статистику не попадают, им сразу NoContent.
func (s *Service) record(ctx context.Context, account *models.Account, documentID int64, flag models.StatFlag, action string) (Outcome, error) {
	if account.IsTeacher() {
		metrics.ObserveEngagement(action, "skipped")
		return NoContent, nil
	}
	if err := s.requireDocument(ctx, documentID); err != nil {
		return 0, err
	}
	unlock := s.limiter.lock(account.ID, documentID)
	defer unlock()

	created, err := s.store.MarkViewStat(ctx, account.ID, documentID, flag)
	if err != nil {
		return 0, fmt.Errorf("%s stat: %w", action, err)
	}
	out := NoContent
	if created {
		out = Created
	}
	metrics.ObserveEngagement(action, out.String())
	return out, nil
}
