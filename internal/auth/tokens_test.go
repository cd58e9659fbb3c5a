package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestManager() *Manager {
	return NewManager(Config{Secret: "s3cret", AccessTTL: 15 * time.Minute, RefreshTTL: 7 * 24 * time.Hour})
}

func TestIssueAndParsePair(t *testing.T) {
	m := newTestManager()
	pair, err := m.IssuePair(7, "student")
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}

	id, claims, err := m.Parse(pair.Access, TypeAccess)
	if err != nil {
		t.Fatalf("Parse access: %v", err)
	}
	if id != 7 || claims.Role != "student" {
		t.Fatalf("id=%d role=%q", id, claims.Role)
	}

	t.Run("refresh_is_not_access", func(t *testing.T) {
		if _, _, err := m.Parse(pair.Refresh, TypeAccess); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("ожидали ErrInvalidToken, получили %v", err)
		}
	})

	t.Run("other_secret_rejected", func(t *testing.T) {
		other := NewManager(Config{Secret: "другой", AccessTTL: time.Minute, RefreshTTL: time.Hour})
		if _, _, err := other.Parse(pair.Access, TypeAccess); err == nil {
			t.Fatal("ожидали ошибку подписи")
		}
	})

	t.Run("expired_access_rejected", func(t *testing.T) {
		later := m.WithClock(func() time.Time { return time.Now().Add(time.Hour) })
		if _, _, err := later.Parse(pair.Access, TypeAccess); err == nil {
			t.Fatal("ожидали ошибку для просроченного токена")
		}
	})
}

func TestSessionToken(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := newTestManager().WithClock(func() time.Time { return issued })

	tok, err := m.SessionToken(42)
	if err != nil {
		t.Fatalf("SessionToken: %v", err)
	}

	t.Run("valid_within_24h", func(t *testing.T) {
		check := m.WithClock(func() time.Time { return issued.Add(23 * time.Hour) })
		id, err := check.ParseSession(tok)
		if err != nil || id != 42 {
			t.Fatalf("ParseSession: id=%d err=%v", id, err)
		}
	})

	t.Run("expired_after_24h", func(t *testing.T) {
		check := m.WithClock(func() time.Time { return issued.Add(24*time.Hour + time.Minute) })
		if _, err := check.ParseSession(tok); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("ожидали ErrInvalidToken, получили %v", err)
		}
	})

	t.Run("tampered_signature", func(t *testing.T) {
		bad := tok[:strings.LastIndex(tok, ".")+1] + "AAAA"
		if _, err := m.ParseSession(bad); err == nil {
			t.Fatal("ожидали ошибку для испорченной подписи")
		}
	})

	t.Run("access_is_not_session", func(t *testing.T) {
		pair, err := m.IssuePair(42, "student")
		if err != nil {
			t.Fatalf("IssuePair: %v", err)
		}
		if _, err := m.ParseSession(pair.Access); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("access без id не должен проходить как токен сессии, получили %v", err)
		}
	})

	t.Run("exp_is_exactly_24h", func(t *testing.T) {
		exactlyBefore := m.WithClock(func() time.Time { return issued.Add(SessionTTL - time.Second) })
		if _, err := exactlyBefore.ParseSession(tok); err != nil {
			t.Fatalf("за секунду до истечения токен должен быть валиден: %v", err)
		}
	})
}

func TestPasswordAndActivationCode(t *testing.T) {
	h, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if h == "secret1" {
		t.Fatal("пароль не должен храниться в открытом виде")
	}
	if err := CheckPassword(h, "secret1"); err != nil {
		t.Fatalf("CheckPassword: %v", err)
	}
	if err := CheckPassword(h, "secret2"); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("ожидали ErrPasswordMismatch, получили %v", err)
	}

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := NewActivationCode()
		if err != nil {
			t.Fatalf("NewActivationCode: %v", err)
		}
		if len(code) != 8 {
			t.Fatalf("длина кода %d, ожидали 8: %q", len(code), code)
		}
		if strings.ContainsAny(code, "+/=") {
			t.Fatalf("код не url-safe: %q", code)
		}
		seen[code] = true
	}
	if len(seen) < 45 {
		t.Fatalf("слишком много повторов кодов: %d уникальных из 50", len(seen))
	}
}
