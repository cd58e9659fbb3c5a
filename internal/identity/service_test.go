package identity

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Spok95/college-library/internal/apperr"
	"github.com/Spok95/college-library/internal/auth"
	"github.com/Spok95/college-library/internal/jobs"
	"github.com/Spok95/college-library/internal/models"
	"github.com/Spok95/college-library/internal/testutil/memstore"
)

type sentMail struct {
	kind, email, code string
}

type fakeMessenger struct {
	mu   sync.Mutex
	sent []sentMail
}

func (f *fakeMessenger) SendActivation(_ context.Context, email, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{"activation", email, code})
	return nil
}

func (f *fakeMessenger) SendPasswordReset(_ context.Context, email, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{"reset", email, code})
	return nil
}

type fixture struct {
	svc   *Service
	store *memstore.Store
	mail  *fakeMessenger
	jobs  *jobs.Inline
	group *models.Group
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memstore.New()
	g := &models.Group{Name: "ИС-21", Course: 2}
	if err := st.CreateGroup(context.Background(), g); err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	m := &fakeMessenger{}
	in := &jobs.Inline{}
	tokens := auth.NewManager(auth.Config{Secret: "test", AccessTTL: time.Minute, RefreshTTL: time.Hour})
	return &fixture{svc: New(st, tokens, m, in, nil), store: st, mail: m, jobs: in, group: g}
}

func (f *fixture) studentInput(email, phone string) RegisterInput {
	gid := f.group.ID
	return RegisterInput{
		Email:       email,
		Password:    "secret1",
		FullName:    "Иван Петров",
		PhoneNumber: phone,
		Role:        models.Student,
		GroupID:     &gid,
	}
}

func mustRegisterActive(t *testing.T, f *fixture, email string) *models.Account {
	t.Helper()
	a, err := f.svc.Register(context.Background(), f.studentInput(email, email+"-phone"))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := f.svc.Activate(context.Background(), a.ActivationCode); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	return a
}

func wantMessage(t *testing.T, err error, msg string) {
	t.Helper()
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		t.Fatalf("ожидали *apperr.Error, получили %v", err)
	}
	if ae.Message != msg {
		t.Fatalf("сообщение=%q, ожидали %q", ae.Message, msg)
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	a, err := f.svc.Register(ctx, f.studentInput("ivan@Mail.RU", "+70000000001"))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if a.IsActive {
		t.Fatal("новый аккаунт должен быть неактивным")
	}
	if a.Email != "ivan@mail.ru" {
		t.Fatalf("email не нормализован: %q", a.Email)
	}
	if len(f.mail.sent) != 1 || f.mail.sent[0].kind != "activation" {
		t.Fatalf("ожидали ровно одно письмо активации, получили %+v", f.mail.sent)
	}
	if f.mail.sent[0].code != a.ActivationCode || a.ActivationCode == "" {
		t.Fatal("в письме должен быть код активации аккаунта")
	}

	t.Run("duplicate_email", func(t *testing.T) {
		_, err := f.svc.Register(ctx, f.studentInput("ivan@mail.ru", "+70000000002"))
		wantMessage(t, err, MsgEmailTaken)
		if len(f.mail.sent) != 1 {
			t.Fatal("повторная регистрация не должна слать письмо")
		}
	})

	t.Run("duplicate_phone", func(t *testing.T) {
		_, err := f.svc.Register(ctx, f.studentInput("other@mail.ru", "+70000000001"))
		wantMessage(t, err, MsgPhoneTaken)
	})

	t.Run("student_without_group", func(t *testing.T) {
		in := f.studentInput("nogroup@mail.ru", "+70000000003")
		in.GroupID = nil
		_, err := f.svc.Register(ctx, in)
		wantMessage(t, err, MsgGroupRequired)
	})

	t.Run("unknown_group", func(t *testing.T) {
		in := f.studentInput("badgroup@mail.ru", "+70000000004")
		missing := int64(9999)
		in.GroupID = &missing
		_, err := f.svc.Register(ctx, in)
		wantMessage(t, err, MsgGroupNotFound)
	})

	t.Run("teacher_group_ignored", func(t *testing.T) {
		in := f.studentInput("teacher@mail.ru", "+70000000005")
		in.Role = models.Teacher
		a, err := f.svc.Register(ctx, in)
		if err != nil {
			t.Fatalf("Register: %v", err)
		}
		if a.GroupID != nil {
			t.Fatal("у преподавателя не должно быть группы")
		}
	})

	t.Run("bad_role", func(t *testing.T) {
		in := f.studentInput("role@mail.ru", "+70000000006")
		in.Role = "admin"
		_, err := f.svc.Register(ctx, in)
		if !apperr.Is(err, apperr.KindValidation) {
			t.Fatalf("ожидали ошибку валидации, получили %v", err)
		}
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	a, err := f.svc.Register(ctx, f.studentInput("login@mail.ru", "+71111111111"))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	t.Run("not_activated", func(t *testing.T) {
		_, err := f.svc.Authenticate(ctx, LoginInput{Email: "login@mail.ru", Password: "secret1"})
		wantMessage(t, err, MsgNotActivated)
	})

	if _, err := f.svc.Activate(ctx, a.ActivationCode); err != nil {
		t.Fatalf("Activate: %v", err)
	}

	t.Run("code_is_spent", func(t *testing.T) {
		_, err := f.svc.Activate(ctx, a.ActivationCode)
		wantMessage(t, err, MsgBadCode)
	})

	t.Run("wrong_password", func(t *testing.T) {
		_, err := f.svc.Authenticate(ctx, LoginInput{Email: "login@mail.ru", Password: "wrong-pass"})
		wantMessage(t, err, MsgWrongPassword)
	})

	t.Run("not_registered", func(t *testing.T) {
		_, err := f.svc.Authenticate(ctx, LoginInput{Email: "nobody@mail.ru", Password: "secret1"})
		wantMessage(t, err, MsgNotRegistered)
	})

	t.Run("short_password", func(t *testing.T) {
		_, err := f.svc.Authenticate(ctx, LoginInput{Email: "login@mail.ru", Password: "123"})
		if !apperr.Is(err, apperr.KindValidation) {
			t.Fatalf("ожидали ошибку валидации, получили %v", err)
		}
	})

	res, err := f.svc.Authenticate(ctx, LoginInput{Email: "login@mail.ru", Password: "secret1"})
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if res.Account.Group == nil || res.Account.Group.Name != "ИС-21" {
		t.Fatal("ожидали аккаунт с группой")
	}

	t.Run("access_token_resolves_account", func(t *testing.T) {
		got, err := f.svc.AccountFromAccess(ctx, res.Tokens.Access)
		if err != nil {
			t.Fatalf("AccountFromAccess: %v", err)
		}
		if got.ID != a.ID {
			t.Fatalf("id=%d, ожидали %d", got.ID, a.ID)
		}
	})

	t.Run("session_token_resolves_account", func(t *testing.T) {
		tok, err := f.svc.SessionToken(res.Account)
		if err != nil {
			t.Fatalf("SessionToken: %v", err)
		}
		got, err := f.svc.AccountFromSession(ctx, tok)
		if err != nil {
			t.Fatalf("AccountFromSession: %v", err)
		}
		if got.ID != a.ID {
			t.Fatalf("id=%d, ожидали %d", got.ID, a.ID)
		}
		if _, err := f.svc.AccountFromSession(ctx, res.Tokens.Access); !apperr.Is(err, apperr.KindUnauthenticated) {
			t.Fatalf("access-токен не является токеном сессии, получили %v", err)
		}
	})

	t.Run("refresh", func(t *testing.T) {
		pair, err := f.svc.Refresh(ctx, res.Tokens.Refresh)
		if err != nil {
			t.Fatalf("Refresh: %v", err)
		}
		if pair.Access == "" || pair.Refresh == "" {
			t.Fatal("пустая пара токенов")
		}
		if _, err := f.svc.Refresh(ctx, res.Tokens.Access); !apperr.Is(err, apperr.KindUnauthenticated) {
			t.Fatalf("access вместо refresh должен отклоняться, получили %v", err)
		}
	})
}

func TestPasswordReset(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	mustRegisterActive(t, f, "reset@mail.ru")

	t.Run("unknown_email", func(t *testing.T) {
		err := f.svc.RequestPasswordReset(ctx, "ghost@mail.ru")
		wantMessage(t, err, MsgNoSuchUser)
	})

	if err := f.svc.RequestPasswordReset(ctx, "reset@mail.ru"); err != nil {
		t.Fatalf("RequestPasswordReset: %v", err)
	}
	last := f.mail.sent[len(f.mail.sent)-1]
	if last.kind != "reset" || last.email != "reset@mail.ru" {
		t.Fatalf("ожидали письмо сброса, получили %+v", last)
	}

	if err := f.svc.CompletePasswordReset(ctx, ResetInput{ActivationCode: last.code, Password: "newpass1"}); err != nil {
		t.Fatalf("CompletePasswordReset: %v", err)
	}

	t.Run("code_single_use", func(t *testing.T) {
		err := f.svc.CompletePasswordReset(ctx, ResetInput{ActivationCode: last.code, Password: "another1"})
		wantMessage(t, err, MsgBadCode)
	})

	t.Run("login_with_new_password", func(t *testing.T) {
		if _, err := f.svc.Authenticate(ctx, LoginInput{Email: "reset@mail.ru", Password: "newpass1"}); err != nil {
			t.Fatalf("Authenticate: %v", err)
		}
		_, err := f.svc.Authenticate(ctx, LoginInput{Email: "reset@mail.ru", Password: "secret1"})
		wantMessage(t, err, MsgWrongPassword)
	})
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := mustRegisterActive(t, f, "change@mail.ru")

	if err := f.svc.ChangePassword(ctx, a.ID, "12"); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("короткий пароль должен отклоняться, получили %v", err)
	}
	if err := f.svc.ChangePassword(ctx, a.ID, "changed1"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if _, err := f.svc.Authenticate(ctx, LoginInput{Email: "change@mail.ru", Password: "changed1"}); err != nil {
		t.Fatalf("вход с новым паролем: %v", err)
	}
	if err := f.svc.ChangePassword(ctx, 424242, "changed1"); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("ожидали NotFound, получили %v", err)
	}
}

func TestCreateSuperuserAndStaff(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	su, err := f.svc.CreateSuperuser(ctx, SuperuserInput{
		Email: "admin@college.ru", Password: "adminpass", FullName: "Админ", PhoneNumber: "+79990000000",
	})
	if err != nil {
		t.Fatalf("CreateSuperuser: %v", err)
	}
	if !su.IsActive || !su.IsStaff || su.Role != models.Teacher {
		t.Fatalf("неожиданный суперпользователь: %+v", su)
	}
	if len(f.mail.sent) != 0 {
		t.Fatal("суперпользователю письмо не нужно")
	}

	a := mustRegisterActive(t, f, "staff@mail.ru")
	got, err := f.svc.SetStaff(ctx, a.ID, true)
	if err != nil {
		t.Fatalf("SetStaff: %v", err)
	}
	if !got.IsStaff {
		t.Fatal("ожидали is_staff=true")
	}
	if _, err := f.svc.SetStaff(ctx, 777777, true); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("ожидали NotFound, получили %v", err)
	}
}

func TestAccountDetail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := mustRegisterActive(t, f, "detail@mail.ru")

	d, err := f.svc.AccountDetail(ctx, a.ID)
	if err != nil {
		t.Fatalf("AccountDetail: %v", err)
	}
	if len(d.Favorites) != 0 || len(d.Authored) != 0 {
		t.Fatal("у нового студента не должно быть книг")
	}
	if _, err := f.svc.AccountDetail(ctx, 31337); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("ожидали NotFound, получили %v", err)
	}
}
