package app

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Spok95/college-library/internal/apperr"
	"github.com/Spok95/college-library/internal/ctxutil"
	"github.com/Spok95/college-library/internal/metrics"
	"github.com/Spok95/college-library/internal/observability"
)

const msgInternal = "Внутренняя ошибка сервера"

var kindStatus = map[apperr.Kind]int{
	apperr.KindValidation:      fiber.StatusBadRequest,
	apperr.KindUnauthenticated: fiber.StatusUnauthorized,
	apperr.KindForbidden:       fiber.StatusForbidden,
	apperr.KindNotFound:        fiber.StatusNotFound,
}

// classify: код ответа, сообщение и ошибки по полям.
func classify(err error) (int, string, map[string]string) {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		if st, ok := kindStatus[ae.Kind]; ok {
			return st, ae.Message, ae.Fields
		}
		return fiber.StatusInternalServerError, msgInternal, nil
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, fe.Message, nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		fields := make(map[string]string, len(ve))
		for _, e := range ve {
			fields[e.Field()] = e.Tag()
		}
		return fiber.StatusBadRequest, "Ошибка валидации", fields
	}
	return fiber.StatusInternalServerError, msgInternal, nil
}

// errorHandler пишет {"code","status","message","errors"?}. 5xx уходят в лог и sentry.
func errorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, msg, fields := classify(err)
		if status >= fiber.StatusInternalServerError {
			rid, _ := ctxutil.RequestID(c.UserContext())
			metrics.HandlerErrors.Inc()
			observability.CaptureRequestErr(c.UserContext(), err, c.Method(), c.Path())
			log.Error("ошибка обработки запроса",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("request_id", rid),
				zap.Error(err))
		}
		body := fiber.Map{"code": status, "status": "error", "message": msg}
		if len(fields) > 0 {
			body["errors"] = fields
		}
		return c.Status(status).JSON(body)
	}
}

// renderErrors превращает ошибку обработчика в ответ сразу,
// чтобы логирование и метрики выше по цепочке видели итоговый код.
func renderErrors(h fiber.ErrorHandler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := c.Next(); err != nil {
			return h(c, err)
		}
		return nil
	}
}

func badBody(err error) error {
	return apperr.Wrap(apperr.KindValidation, "Некорректное тело запроса", err)
}
