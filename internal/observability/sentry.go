// Package observability: отправка ошибок в Sentry. Без DSN всё превращается в no-op.
package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/Spok95/college-library/internal/ctxutil"
)

const flushTimeout = 2 * time.Second

// InitSentry возвращает функцию сброса буфера для defer в main.
func InitSentry(dsn, env, release string) (func(), error) {
	if dsn == "" {
		return func() {}, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      env,
		Release:          release,
		AttachStacktrace: true,
		BeforeSend: func(ev *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			// пароли и токены не должны уходить наружу
			if ev.Request != nil {
				delete(ev.Request.Headers, "Authorization")
				ev.Request.Data = ""
			}
			return ev
		},
	})
	if err != nil {
		return func() {}, err
	}
	return func() { sentry.Flush(flushTimeout) }, nil
}

// CaptureErr: фоновые ошибки без HTTP-контекста (рассылка писем).
func CaptureErr(err error) {
	if err != nil {
		sentry.CaptureException(err)
	}
}

// CaptureRequestErr: ошибка запроса; маршрут, id запроса и аккаунт идут в теги.
func CaptureRequestErr(ctx context.Context, err error, method, path string) {
	if err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("http.method", method)
		scope.SetTag("http.path", path)
		if op, ok := ctxutil.Op(ctx); ok {
			scope.SetTag("http.route", op)
		}
		if rid, ok := ctxutil.RequestID(ctx); ok {
			scope.SetTag("request_id", rid)
		}
		if id, ok := ctxutil.AccountID(ctx); ok {
			scope.SetUser(sentry.User{ID: strconv.FormatInt(id, 10)})
		}
		sentry.CaptureException(err)
	})
}
