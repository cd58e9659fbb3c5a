// Package identity: регистрация, активация, вход, пароли и токены аккаунтов.
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
	"github.com/Spok95/college-library/internal/jobs"
	"github.com/Spok95/college-library/internal/mail"
	"github.com/Spok95/college-library/internal/models"
	"github.com/Spok95/college-library/internal/validate"
)

// Сообщения, которые видит клиент.
const (
	MsgNotRegistered  = "Пользователь не зарегистрирован"
	MsgWrongPassword  = "Неверный пароль"
	MsgNotActivated   = "Активируйте свою учетную запись через email"
	MsgNoSuchUser     = "Такого пользователя не существует"
	MsgBadCode        = "Активационный код введен неверно"
	MsgEmailTaken     = "Пользователь с таким email уже существует"
	MsgPhoneTaken     = "Пользователь с таким номером телефона уже существует"
	MsgGroupRequired  = "Для студента и старосты нужно указать группу"
	MsgGroupNotFound  = "Группа не найдена"
	MsgAccountMissing = "Пользователь не найден"
	MsgBadToken       = "Токен недействителен или истёк"
)

type Store interface {
	AccountTaken(ctx context.Context, email, phone string) (emailTaken, phoneTaken bool, err error)
	CreateAccount(ctx context.Context, a *models.Account) error
	UpdateAccount(ctx context.Context, a *models.Account) error
	AccountByID(ctx context.Context, id int64) (*models.Account, error)
	AccountByEmail(ctx context.Context, email string) (*models.Account, error)
	AccountByActivationCode(ctx context.Context, code string) (*models.Account, error)
	ListAccountStats(ctx context.Context) ([]models.AccountStats, error)

	GroupByID(ctx context.Context, id int64) (*models.Group, error)
	ListGroups(ctx context.Context) ([]models.Group, error)
	CreateGroup(ctx context.Context, g *models.Group) error

	FavoriteDocumentIDs(ctx context.Context, accountID int64) ([]int64, error)
	DocumentIDsByOwner(ctx context.Context, ownerID int64) ([]int64, error)
	DocumentDetails(ctx context.Context, ids []int64) ([]models.DocumentDetail, error)
}

// Dispatcher запускает отправку писем в фоне.
type Dispatcher interface {
	Go(name string, fn jobs.Job)
}

type Service struct {
	store    Store
	tokens   *auth.Manager
	mail     mail.Messenger
	dispatch Dispatcher
	log      *zap.Logger
}

func New(store Store, tokens *auth.Manager, messenger mail.Messenger, dispatch Dispatcher, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, tokens: tokens, mail: messenger, dispatch: dispatch, log: log.Named("identity")}
}

type RegisterInput struct {
	Email       string      `json:"email" validate:"required,email,max=254"`
	Password    string      `json:"password" validate:"required,min=6,max=128"`
	FullName    string      `json:"full_name" validate:"required,max=60"`
	PhoneNumber string      `json:"phone_number" validate:"required,max=20"`
	Role        models.Role `json:"user_type" validate:"required,oneof=student representative teacher"`
	GroupID     *int64      `json:"group" validate:"omitempty,gt=0"`
}

// NormalizeEmail обрезает пробелы и приводит домен к нижнему регистру.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}

// Register создаёт неактивный аккаунт и отправляет письмо с кодом активации.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.Account, error) {
	in.Email = NormalizeEmail(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	a := &models.Account{
		Email:       in.Email,
		PhoneNumber: in.PhoneNumber,
		FullName:    in.FullName,
		Role:        in.Role,
	}
	if in.Role != models.Teacher {
		if in.GroupID == nil {
			return nil, apperr.Validation(MsgGroupRequired)
		}
		g, err := s.store.GroupByID(ctx, *in.GroupID)
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperr.Validation(MsgGroupNotFound)
		}
		if err != nil {
			return nil, fmt.Errorf("group %d: %w", *in.GroupID, err)
		}
		a.GroupID = &g.ID
		a.Group = g
	}

	if err := s.create(ctx, a, in.Password); err != nil {
		return nil, err
	}

	email, code := a.Email, a.ActivationCode
	s.dispatch.Go("mail_activation", func(ctx context.Context) error {
		ctx, cancel := ctxutil.WithTimeout(ctx, ctxutil.MailTimeout)
		defer cancel()
		return s.mail.SendActivation(ctx, email, code)
	})
	s.log.Info("аккаунт зарегистрирован", zap.Int64("account_id", a.ID), zap.String("role", string(a.Role)))
	return a, nil
}

// create проверяет уникальность, выдаёт код активации, хэширует пароль и сохраняет.
func (s *Service) create(ctx context.Context, a *models.Account, password string) error {
	emailTaken, phoneTaken, err := s.store.AccountTaken(ctx, a.Email, a.PhoneNumber)
	if err != nil {
		return fmt.Errorf("check unique: %w", err)
	}
	if emailTaken {
		return apperr.Validation(MsgEmailTaken)
	}
	if phoneTaken {
		return apperr.Validation(MsgPhoneTaken)
	}

	code, err := auth.NewActivationCode()
	if err != nil {
		return fmt.Errorf("activation code: %w", err)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	a.ActivationCode = code
	a.PasswordHash = hash

	if err := s.store.CreateAccount(ctx, a); err != nil {
		if errors.Is(err, db.ErrConflict) {
			if strings.Contains(db.ConstraintOf(err), "phone") {
				return apperr.Validation(MsgPhoneTaken)
			}
			return apperr.Validation(MsgEmailTaken)
		}
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

// Activate включает аккаунт по коду из письма и гасит код.
func (s *Service) Activate(ctx context.Context, code string) (*models.Account, error) {
	a, err := s.store.AccountByActivationCode(ctx, strings.TrimSpace(code))
	if errors.Is(err, db.ErrNotFound) {
		return nil, apperr.Validation(MsgBadCode)
	}
	if err != nil {
		return nil, err
	}
	a.IsActive = true
	a.ActivationCode = ""
	if err := s.store.UpdateAccount(ctx, a); err != nil {
		return nil, fmt.Errorf("activate %d: %w", a.ID, err)
	}
	s.log.Info("аккаунт активирован", zap.Int64("account_id", a.ID))
	return a, nil
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginResult struct {
	Account *models.Account
	Tokens  auth.Pair
}

// Authenticate проверяет по порядку: email, пароль, активность.
func (s *Service) Authenticate(ctx context.Context, in LoginInput) (*LoginResult, error) {
	in.Email = NormalizeEmail(in.Email)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	a, err := s.store.AccountByEmail(ctx, in.Email)
	if errors.Is(err, db.ErrNotFound) {
		return nil, apperr.Validation(MsgNotRegistered)
	}
	if err != nil {
		return nil, err
	}
	if err := auth.CheckPassword(a.PasswordHash, in.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, apperr.Validation(MsgWrongPassword)
		}
		return nil, err
	}
	if !a.IsActive {
		return nil, apperr.Validation(MsgNotActivated)
	}
	if _, err := a.Profile(); err != nil {
		return nil, fmt.Errorf("account %d: %w", a.ID, err)
	}
	pair, err := s.tokens.IssuePair(a.ID, string(a.Role))
	if err != nil {
		return nil, err
	}
	return &LoginResult{Account: a, Tokens: pair}, nil
}

// Refresh выдаёт новую пару по refresh-токену ещё активного аккаунта.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (auth.Pair, error) {
	id, _, err := s.tokens.Parse(refreshToken, auth.TypeRefresh)
	if err != nil {
		return auth.Pair{}, apperr.Wrap(apperr.KindUnauthenticated, MsgBadToken, err)
	}
	a, err := s.store.AccountByID(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return auth.Pair{}, apperr.Unauthenticated(MsgBadToken)
	}
	if err != nil {
		return auth.Pair{}, err
	}
	if !a.IsActive {
		return auth.Pair{}, apperr.Unauthenticated(MsgNotActivated)
	}
	return s.tokens.IssuePair(a.ID, string(a.Role))
}

// AccountFromAccess: аккаунт по access-токену из заголовка Authorization.
func (s *Service) AccountFromAccess(ctx context.Context, token string) (*models.Account, error) {
	id, _, err := s.tokens.Parse(token, auth.TypeAccess)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnauthenticated, MsgBadToken, err)
	}
	return s.activeAccount(ctx, id)
}

// AccountFromSession: аккаунт по собственному токену {id, exp} (заголовок "Token <...>").
func (s *Service) AccountFromSession(ctx context.Context, token string) (*models.Account, error) {
	id, err := s.tokens.ParseSession(token)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnauthenticated, MsgBadToken, err)
	}
	return s.activeAccount(ctx, id)
}

func (s *Service) activeAccount(ctx context.Context, id int64) (*models.Account, error) {
	a, err := s.store.AccountByID(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, apperr.Unauthenticated(MsgBadToken)
	}
	if err != nil {
		return nil, err
	}
	if !a.IsActive {
		return nil, apperr.Unauthenticated(MsgNotActivated)
	}
	return a, nil
}

// SessionToken: собственный токен аккаунта {id, exp=+24h}, отдельный от пары access/refresh.
func (s *Service) SessionToken(a *models.Account) (string, error) {
	return s.tokens.SessionToken(a.ID)
}
