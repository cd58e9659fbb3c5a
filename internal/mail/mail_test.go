package mail

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	gomail "github.com/wneessus/go-mail"
	"go.uber.org/zap"

	"github.com/Spok95/college-library/internal/config"
)

type fakeSender struct {
	err  error
	sent []*gomail.Msg
}

func (f *fakeSender) DialAndSendWithContext(_ context.Context, messages ...*gomail.Msg) error {
	f.sent = append(f.sent, messages...)
	return f.err
}

func mustSMTP(t *testing.T, cfg config.SMTPConfig, link string, f *fakeSender) *SMTP {
	t.Helper()
	s, err := NewSMTP(cfg, link)
	if err != nil {
		t.Fatalf("NewSMTP: %v", err)
	}
	s.client = f
	return s
}

func TestSMTPSendActivation(t *testing.T) {
	f := &fakeSender{}
	s := mustSMTP(t, config.SMTPConfig{Host: "smtp.example.org", Port: 587, User: "bot@example.org", Password: "x", From: "bot@example.org"}, "http://lib.local", f)

	if err := s.SendActivation(context.Background(), "ivan@example.org", "AbCd1234"); err != nil {
		t.Fatalf("SendActivation: %v", err)
	}
	if len(f.sent) != 1 {
		t.Fatalf("отправлено %d писем, ожидали 1", len(f.sent))
	}
	rcpts, err := f.sent[0].GetRecipients()
	if err != nil || len(rcpts) != 1 || rcpts[0] != "ivan@example.org" {
		t.Fatalf("получатели=%v err=%v", rcpts, err)
	}

	var buf bytes.Buffer
	if _, err := f.sent[0].WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	raw := buf.String()
	if !strings.Contains(raw, "http://lib.local/api/v1/accounts/activate/AbCd1234/") {
		t.Fatalf("в письме нет ссылки активации:\n%s", raw)
	}
	for _, line := range strings.Split(raw, "\r\n") {
		if strings.HasPrefix(line, "Subject: ") {
			if strings.Contains(line, "Активация") || !strings.Contains(line, "=?UTF-8?") {
				t.Fatalf("тема должна быть закодирована: %q", line)
			}
			return
		}
	}
	t.Fatalf("в письме нет темы:\n%s", raw)
}

func TestSMTPErrorWrapped(t *testing.T) {
	cause := errors.New("connection refused")
	s := mustSMTP(t, config.SMTPConfig{Host: "smtp.example.org", Port: 25, From: "bot@example.org"}, "", &fakeSender{err: cause})
	if err := s.SendPasswordReset(context.Background(), "a@b.c", "code"); !errors.Is(err, cause) {
		t.Fatalf("ожидали исходную ошибку в цепочке, получили %v", err)
	}
}

func TestSMTPBadSender(t *testing.T) {
	f := &fakeSender{}
	s := mustSMTP(t, config.SMTPConfig{Host: "smtp.example.org", Port: 25, From: "не адрес"}, "", f)
	if err := s.SendActivation(context.Background(), "a@b.c", "code"); err == nil {
		t.Fatal("ожидали ошибку для некорректного From")
	}
	if len(f.sent) != 0 {
		t.Fatal("письмо с некорректным From не должно уходить")
	}
}

func TestNewPicksLogWithoutHost(t *testing.T) {
	m, err := New(config.SMTPConfig{}, "", zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := m.(*Log); !ok {
		t.Fatalf("ожидали *Log, получили %T", m)
	}
	if err := m.SendActivation(context.Background(), "a@b.c", "x"); err != nil {
		t.Fatalf("Log.SendActivation: %v", err)
	}
}

func TestNewPicksSMTPWithHost(t *testing.T) {
	m, err := New(config.SMTPConfig{Host: "smtp.example.org", Port: 587, From: "bot@example.org"}, "", zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := m.(*SMTP); !ok {
		t.Fatalf("ожидали *SMTP, получили %T", m)
	}
}
