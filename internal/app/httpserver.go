package app

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type HTTPServer struct {
	app  *fiber.App
	errc chan error
}

// StartHTTP слушает addr до отмены ctx, затем аккуратно останавливается.
func StartHTTP(ctx context.Context, addr string, app *fiber.App, log *zap.Logger) *HTTPServer {
	s := &HTTPServer{app: app, errc: make(chan error, 1)}

	go func() {
		log.Info("HTTP сервер запущен", zap.String("addr", addr))
		s.errc <- app.Listen(addr)
	}()

	go func() {
		<-ctx.Done()
		if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
			log.Warn("остановка HTTP сервера", zap.Error(err))
		}
	}()

	return s
}

// Err: ошибка Listen; nil после штатной остановки.
func (s *HTTPServer) Err() <-chan error { return s.errc }
