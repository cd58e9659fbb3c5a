// Package app: HTTP-граница сервиса на fiber.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Spok95/college-library/internal/catalog"
	"github.com/Spok95/college-library/internal/config"
	"github.com/Spok95/college-library/internal/engagement"
	"github.com/Spok95/college-library/internal/identity"
	"github.com/Spok95/college-library/internal/logging"
	"github.com/Spok95/college-library/internal/metrics"
	"github.com/Spok95/college-library/internal/present"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

type Deps struct {
	Config     *config.Config
	DB         Pinger
	Identity   *identity.Service
	Catalog    *catalog.Service
	Engagement *engagement.Service
	Presenter  *present.Presenter
	Redis      *redis.Client
	Log        *zap.Logger
	// LogLevel: ручка смены уровня логов для персонала; nil отключает.
	LogLevel   http.Handler
	// MediaRoot: раздавать локальные файлы по MEDIA_URL; пусто для OSS.
	MediaRoot  string
}

type handlers struct {
	Deps
}

func New(d Deps) *fiber.App {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	onErr := errorHandler(d.Log)
	app := fiber.New(fiber.Config{
		AppName:               "college-library",
		DisableStartupMessage: true,
		ErrorHandler:          onErr,
		BodyLimit:             d.Config.MaxUploadMB * 1024 * 1024,
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(requestID())
	app.Use(logging.Middleware(d.Log))
	app.Use(metrics.Middleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins: d.Config.CORSOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(renderErrors(onErr))
	app.Use(tagRoute())

	h := &handlers{Deps: d}
	app.Get("/healthz", h.health)
	app.Get("/metrics", metrics.Handler())
	if d.LogLevel != nil {
		app.All("/debug/loglevel", h.user(), requireStaff(), adaptor.HTTPHandler(d.LogLevel))
	}
	if d.MediaRoot != "" {
		app.Static(d.Config.MediaURL, d.MediaRoot)
	}

	api := app.Group("/api/v1", rateLimit(globalRule, d.Redis))
	h.accountRoutes(api.Group("/accounts"))
	h.bookRoutes(api.Group("/books"))
	h.directionRoutes(api.Group("/directions"))
	h.statsRoutes(api.Group("/stats"))
	h.newsRoutes(api.Group("/news"))
	return app
}

func (h *handlers) health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 800*time.Millisecond)
	defer cancel()
	t0 := time.Now()
	if err := h.DB.PingContext(ctx); err != nil {
		return c.Status(http.StatusServiceUnavailable).SendString("db not ok: " + err.Error())
	}
	metrics.ObserveDBPing(time.Since(t0))
	return c.SendString("ok")
}

func (h *handlers) user() fiber.Handler { return requireUser(h.Identity) }

func message(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"message": msg})
}
