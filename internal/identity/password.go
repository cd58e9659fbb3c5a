package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Spok95/college-library/internal/apperr"
	"github.com/Spok95/college-library/internal/auth"
	"github.com/Spok95/college-library/internal/ctxutil"
	"github.com/Spok95/college-library/internal/db"
	"github.com/Spok95/college-library/internal/validate"
)

type forgotInput struct {
	Email string `json:"email" validate:"required,email"`
}

// RequestPasswordReset выдаёт новый код и отправляет его письмом. Код наружу не возвращается.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	in := forgotInput{Email: NormalizeEmail(email)}
	if err := validate.Struct(in); err != nil {
		return err
	}
	a, err := s.store.AccountByEmail(ctx, in.Email)
	if errors.Is(err, db.ErrNotFound) {
		return apperr.Validation(MsgNoSuchUser)
	}
	if err != nil {
		return err
	}
	code, err := auth.NewActivationCode()
	if err != nil {
		return err
	}
	a.ActivationCode = code
	if err := s.store.UpdateAccount(ctx, a); err != nil {
		return fmt.Errorf("save reset code: %w", err)
	}

	to := a.Email
	s.dispatch.Go("mail_password_reset", func(ctx context.Context) error {
		ctx, cancel := ctxutil.WithTimeout(ctx, ctxutil.MailTimeout)
		defer cancel()
		return s.mail.SendPasswordReset(ctx, to, code)
	})
	s.log.Info("запрошен сброс пароля", zap.Int64("account_id", a.ID))
	return nil
}

type ResetInput struct {
	ActivationCode string `json:"activation_code" validate:"required"`
	Password       string `json:"password" validate:"required,min=6,max=128"`
}

// CompletePasswordReset ставит новый пароль по коду; код одноразовый.
func (s *Service) CompletePasswordReset(ctx context.Context, in ResetInput) error {
	in.ActivationCode = strings.TrimSpace(in.ActivationCode)
	if err := validate.Struct(in); err != nil {
		return err
	}
	a, err := s.store.AccountByActivationCode(ctx, in.ActivationCode)
	if errors.Is(err, db.ErrNotFound) {
		return apperr.Validation(MsgBadCode)
	}
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return err
	}
	a.PasswordHash = hash
	a.ActivationCode = ""
	if err := s.store.UpdateAccount(ctx, a); err != nil {
		return fmt.Errorf("reset password %d: %w", a.ID, err)
	}
	s.log.Info("пароль сброшен по коду", zap.Int64("account_id", a.ID))
	return nil
}

type changeInput struct {
	Password string `json:"password" validate:"required,min=6,max=128"`
}

// ChangePassword меняет пароль своего аккаунта.
// TODO: требовать текущий пароль, как только клиенты начнут его передавать.
func (s *Service) ChangePassword(ctx context.Context, accountID int64, newPassword string) error {
	if err := validate.Struct(changeInput{Password: newPassword}); err != nil {
		return err
	}
	a, err := s.store.AccountByID(ctx, accountID)
	if errors.Is(err, db.ErrNotFound) {
		return apperr.NotFound(MsgAccountMissing)
	}
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	a.PasswordHash = hash
	if err := s.store.UpdateAccount(ctx, a); err != nil {
		return fmt.Errorf("change password %d: %w", a.ID, err)
	}
	return nil
}
