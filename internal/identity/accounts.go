package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Spok95/college-library/internal/apperr"
	"github.com/Spok95/college-library/internal/db"
	"github.com/Spok95/college-library/internal/models"
	"github.com/Spok95/college-library/internal/validate"
)

func (s *Service) Account(ctx context.Context, id int64) (*models.Account, error) {
	a, err := s.store.AccountByID(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, apperr.NotFound(MsgAccountMissing)
	}
	return a, err
}

// AccountDetail: для преподавателя его книги, для остальных избранное.
func (s *Service) AccountDetail(ctx context.Context, id int64) (*models.AccountDetail, error) {
	a, err := s.Account(ctx, id)
	if err != nil {
		return nil, err
	}
	prof, err := a.Profile()
	if err != nil {
		return nil, fmt.Errorf("account %d: %w", a.ID, err)
	}
	out := &models.AccountDetail{Account: *a}
	switch prof.(type) {
	case models.TeacherProfile:
		ids, err := s.store.DocumentIDsByOwner(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		if out.Authored, err = s.store.DocumentDetails(ctx, ids); err != nil {
			return nil, err
		}
	case models.LearnerProfile:
		ids, err := s.store.FavoriteDocumentIDs(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		if out.Favorites, err = s.store.DocumentDetails(ctx, ids); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Service) ListAccountStats(ctx context.Context) ([]models.AccountStats, error) {
	return s.store.ListAccountStats(ctx)
}

func (s *Service) ListGroups(ctx context.Context) ([]models.Group, error) {
	return s.store.ListGroups(ctx)
}

type GroupInput struct {
	Name      string  `json:"name" validate:"required,max=35"`
	Course    int     `json:"course" validate:"required,gt=0"`
	Direction string  `json:"direction" validate:"max=35"`
	Stage     *string `json:"stage" validate:"omitempty,max=35"`
}

func (s *Service) CreateGroup(ctx context.Context, in GroupInput) (*models.Group, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	g := &models.Group{Name: in.Name, Course: in.Course, Direction: strings.TrimSpace(in.Direction), Stage: in.Stage}
	if err := s.store.CreateGroup(ctx, g); err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}
	return g, nil
}

// SetStaff: выдать или снять права персонала.
func (s *Service) SetStaff(ctx context.Context, id int64, staff bool) (*models.Account, error) {
	a, err := s.Account(ctx, id)
	if err != nil {
		return nil, err
	}
	a.IsStaff = staff
	if err := s.store.UpdateAccount(ctx, a); err != nil {
		return nil, err
	}
	s.log.Info("изменён флаг персонала", zap.Int64("account_id", id), zap.Bool("is_staff", staff))
	return a, nil
}

type SuperuserInput struct {
	Email       string `validate:"required,email"`
	Password    string `validate:"required,min=6"`
	FullName    string `validate:"required,max=60"`
	PhoneNumber string `validate:"required,max=20"`
}

// CreateSuperuser: активный преподаватель с правами персонала, без письма.
func (s *Service) CreateSuperuser(ctx context.Context, in SuperuserInput) (*models.Account, error) {
	in.Email = NormalizeEmail(in.Email)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	a := &models.Account{
		Email:       in.Email,
		PhoneNumber: strings.TrimSpace(in.PhoneNumber),
		FullName:    strings.TrimSpace(in.FullName),
		Role:        models.Teacher,
		IsStaff:     true,
		IsActive:    true,
	}
	if err := s.create(ctx, a, in.Password); err != nil {
		return nil, err
	}
	return a, nil
}
