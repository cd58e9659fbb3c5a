package logging

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Spok95/college-library/internal/ctxutil"
)

// Middleware пишет одну строку на запрос. 5xx пишется как Error, 4xx как Warn.
func Middleware(l *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		lvl := zapcore.InfoLevel
		switch {
		case status >= 500:
			lvl = zapcore.ErrorLevel
		case status >= 400:
			lvl = zapcore.WarnLevel
		}

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.IP()),
		}
		if op, ok := ctxutil.Op(c.UserContext()); ok {
			fields = append(fields, zap.String("route", op))
		}
		if rid, ok := ctxutil.RequestID(c.UserContext()); ok {
			fields = append(fields, zap.String("request_id", rid))
		}
		if uid, ok := ctxutil.AccountID(c.UserContext()); ok {
			fields = append(fields, zap.Int64("account_id", uid))
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
		}
		if ce := l.Check(lvl, "http request"); ce != nil {
			ce.Write(fields...)
		}
		return err
	}
}
