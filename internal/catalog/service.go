// Package catalog: книги, жанры, направления и новости.
package catalog

import (
	"context"
	"errors"
	"math/rand"

	"go.uber.org/zap"

	"github.com/Spok95/college-library/internal/apperr"
	"github.com/Spok95/college-library/internal/blob"
	"github.com/Spok95/college-library/internal/db"
	"github.com/Spok95/college-library/internal/models"
)

const (
	MsgDocumentNotFound  = "Not Found"
	MsgDocumentNotOwner  = "Удалить книгу может только тот, кто её загрузил"
	MsgDirectionNotFound = "Направление не найдено"
	MsgDirectionTaken    = "Направление с таким названием уже существует"
	MsgNewsNotFound      = "Event does not exist."
	MsgNewsNotOwner      = "Изменять новость может только её автор"
)

// RandomLimit: сколько книг отдаёт подборка.
const RandomLimit = 6

type Store interface {
	DocumentIDs(ctx context.Context, search string) ([]int64, error)
	DocumentDetails(ctx context.Context, ids []int64) ([]models.DocumentDetail, error)
	DocumentByID(ctx context.Context, id int64) (*models.Document, error)
	CreateDocument(ctx context.Context, d *models.Document) error
	DeleteDocument(ctx context.Context, id int64) error
	DeleteDocuments(ctx context.Context, ids []int64) (int64, error)
	DistinctTitles(ctx context.Context) ([]string, error)
	DocumentIDsByTitles(ctx context.Context, titles []string) ([]int64, error)

	GetOrCreateGenre(ctx context.Context, name string) (*models.Genre, error)
	ListGenres(ctx context.Context) ([]models.Genre, error)

	ListDirections(ctx context.Context) ([]models.Direction, error)
	DirectionByID(ctx context.Context, id int64) (*models.Direction, error)
	DirectionByName(ctx context.Context, name string) (*models.Direction, error)
	CreateDirection(ctx context.Context, d *models.Direction) error
	UpdateDirection(ctx context.Context, d *models.Direction) error
	DeleteDirection(ctx context.Context, id int64) error
	DirectionStats(ctx context.Context) ([]models.DirectionStats, error)

	ListNews(ctx context.Context) ([]models.NewsDetail, error)
	NewsByID(ctx context.Context, id int64) (*models.NewsDetail, error)
	CreateNews(ctx context.Context, n *models.News) error
	UpdateNews(ctx context.Context, n *models.News) error
	DeleteNews(ctx context.Context, id int64) error
}

type Service struct {
	store Store
	blobs blob.Store
	log   *zap.Logger
}

func New(store Store, blobs blob.Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, blobs: blobs, log: log.Named("catalog")}
}

// ListDocuments: весь каталог по id; search фильтрует по названию без учёта регистра.
func (s *Service) ListDocuments(ctx context.Context, search string) ([]models.DocumentDetail, error) {
	ids, err := s.store.DocumentIDs(ctx, search)
	if err != nil {
		return nil, err
	}
	return s.store.DocumentDetails(ctx, ids)
}

func (s *Service) GetDocument(ctx context.Context, id int64) (*models.DocumentDetail, error) {
	out, err := s.store.DocumentDetails(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, apperr.NotFound(MsgDocumentNotFound)
	}
	return &out[0], nil
}

// RandomDocuments: до RandomLimit разных книг в случайном порядке.
func (s *Service) RandomDocuments(ctx context.Context) ([]models.DocumentDetail, error) {
	ids, err := s.store.DocumentIDs(ctx, "")
	if err != nil {
		return nil, err
	}
	rand.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	if len(ids) > RandomLimit {
		ids = ids[:RandomLimit]
	}
	return s.store.DocumentDetails(ctx, ids)
}

func (s *Service) ListGenres(ctx context.Context) ([]models.Genre, error) {
	return s.store.ListGenres(ctx)
}

func notFound(err error, msg string) error {
	if errors.Is(err, db.ErrNotFound) {
		return apperr.NotFound(msg)
	}
	return err
}

// dropBlobs удаляет файлы без ошибки наружу: строка в базе уже удалена.
func (s *Service) dropBlobs(ctx context.Context, keys ...string) {
	for _, k := range keys {
		if k == "" {
			continue
		}
		if err := s.blobs.Delete(ctx, k); err != nil {
			s.log.Warn("не удалось удалить файл", zap.String("key", k), zap.Error(err))
		}
	}
}
