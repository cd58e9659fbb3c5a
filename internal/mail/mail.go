// Package mail доставляет письма активации и сброса пароля.
package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessus/go-mail"
	"go.uber.org/zap"

	"github.com/Spok95/college-library/internal/config"
	"github.com/Spok95/college-library/internal/ctxutil"
)

// Messenger: внешний получатель писем. Реализации должны быть безопасны для горутин.
type Messenger interface {
	SendActivation(ctx context.Context, email, code string) error
	SendPasswordReset(ctx context.Context, email, code string) error
}

func activationBody(link, code string) (string, string) {
	return "Активация аккаунта",
		fmt.Sprintf("Здравствуйте!\n\nДля активации аккаунта перейдите по ссылке:\n%s/api/v1/accounts/activate/%s/\n\nКод активации: %s\n", link, code, code)
}

func resetBody(code string) (string, string) {
	return "Восстановление пароля",
		fmt.Sprintf("Здравствуйте!\n\nКод для восстановления пароля: %s\nЕсли вы не запрашивали сброс, просто проигнорируйте письмо.\n", code)
}

// sender: часть *gomail.Client, которой пользуется SMTP. В тестах подменяется.
type sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*gomail.Msg) error
}

// SMTP отправляет письма через go-mail; PLAIN-авторизация, если задан SMTP_USER.
type SMTP struct {
	cfg    config.SMTPConfig
	link   string
	client sender
}

func NewSMTP(cfg config.SMTPConfig, link string) (*SMTP, error) {
	opts := []gomail.Option{
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithPort(cfg.Port),
		gomail.WithTimeout(ctxutil.MailTimeout),
	}
	if cfg.User != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.User),
			gomail.WithPassword(cfg.Password),
		)
	}
	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTP{cfg: cfg, link: link, client: client}, nil
}

func (s *SMTP) SendActivation(ctx context.Context, email, code string) error {
	subj, body := activationBody(s.link, code)
	return s.deliver(ctx, email, subj, body)
}

func (s *SMTP) SendPasswordReset(ctx context.Context, email, code string) error {
	subj, body := resetBody(code)
	return s.deliver(ctx, email, subj, body)
}

func (s *SMTP) message(to, subject, body string) (*gomail.Msg, error) {
	m := gomail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return nil, fmt.Errorf("from %q: %w", s.cfg.From, err)
	}
	if err := m.To(to); err != nil {
		return nil, fmt.Errorf("to %q: %w", to, err)
	}
	m.Subject(subject)
	m.SetDate()
	m.SetBodyString(gomail.TypeTextPlain, body)
	return m, nil
}

func (s *SMTP) deliver(ctx context.Context, to, subject, body string) error {
	m, err := s.message(to, subject, body)
	if err != nil {
		return err
	}
	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}

// Log пишет письма в лог вместо отправки. Для dev, когда SMTP_HOST пуст.
type Log struct {
	log  *zap.Logger
	link string
}

func NewLog(log *zap.Logger, link string) *Log { return &Log{log: log, link: link} }

func (l *Log) SendActivation(_ context.Context, email, code string) error {
	subj, _ := activationBody(l.link, code)
	l.log.Info("письмо (не отправлено)", zap.String("to", email), zap.String("subject", subj), zap.String("code", code))
	return nil
}

func (l *Log) SendPasswordReset(_ context.Context, email, code string) error {
	subj, _ := resetBody(code)
	l.log.Info("письмо (не отправлено)", zap.String("to", email), zap.String("subject", subj), zap.String("code", code))
	return nil
}

// New выбирает SMTP, если задан хост, иначе логирующий мессенджер.
func New(cfg config.SMTPConfig, link string, log *zap.Logger) (Messenger, error) {
	if cfg.Host == "" {
		return NewLog(log, link), nil
	}
	return NewSMTP(cfg, link)
}
