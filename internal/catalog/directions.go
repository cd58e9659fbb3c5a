package catalog

import (
	"context"
	"strings"

	"github.com/Spok95/college-library/internal/apperr"
	"github.com/Spok95/college-library/internal/models"
	"github.com/Spok95/college-library/internal/validate"
)

type DirectionInput struct {
	Name        string  `json:"name" validate:"required,max=150"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

func (s *Service) ListDirections(ctx context.Context) ([]models.Direction, error) {
	return s.store.ListDirections(ctx)
}

func (s *Service) GetDirection(ctx context.Context, id int64) (*models.Direction, error) {
	d, err := s.store.DirectionByID(ctx, id)
	if err != nil {
		return nil, notFound(err, MsgDirectionNotFound)
	}
	return d, nil
}

func (s *Service) CreateDirection(ctx context.Context, in DirectionInput) (*models.Direction, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	d := &models.Direction{Name: in.Name, Description: in.Description}
	if err := s.store.CreateDirection(ctx, d); err != nil {
		if isConflict(err) {
			return nil, apperr.Validation(MsgDirectionTaken)
		}
		return nil, err
	}
	return d, nil
}

func (s *Service) UpdateDirection(ctx context.Context, id int64, in DirectionInput) (*models.Direction, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	d := &models.Direction{ID: id, Name: in.Name, Description: in.Description}
	if err := s.store.UpdateDirection(ctx, d); err != nil {
		if isConflict(err) {
			return nil, apperr.Validation(MsgDirectionTaken)
		}
		return nil, notFound(err, MsgDirectionNotFound)
	}
	return d, nil
}

// DeleteDirection удаляет направление вместе со всеми его книгами.
func (s *Service) DeleteDirection(ctx context.Context, id int64) error {
	return notFound(s.store.DeleteDirection(ctx, id), MsgDirectionNotFound)
}

func (s *Service) DirectionStats(ctx context.Context) ([]models.DirectionStats, error) {
	return s.store.DirectionStats(ctx)
}
