package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Spok95/college-library/internal/app"
	"github.com/Spok95/college-library/internal/auth"
	"github.com/Spok95/college-library/internal/blob"
	"github.com/Spok95/college-library/internal/cache"
	"github.com/Spok95/college-library/internal/catalog"
	"github.com/Spok95/college-library/internal/config"
	"github.com/Spok95/college-library/internal/db"
	"github.com/Spok95/college-library/internal/engagement"
	"github.com/Spok95/college-library/internal/identity"
	"github.com/Spok95/college-library/internal/jobs"
	"github.com/Spok95/college-library/internal/logging"
	"github.com/Spok95/college-library/internal/mail"
	"github.com/Spok95/college-library/internal/observability"
	"github.com/Spok95/college-library/internal/present"
)

var release = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Ошибка конфигурации: %v", err)
	}

	lg, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("Ошибка инициализации логгера: %v", err)
	}
	defer lg.Closer()
	l := lg.Base

	flush, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, release)
	if err != nil {
		l.Warn("sentry не инициализирован", zap.Error(err))
	}
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		l.Fatal("Ошибка подключения к БД", zap.Error(err))
	}
	defer func() { _ = database.Close() }()

	if err := db.Migrate(database); err != nil {
		l.Fatal("Миграция не удалась", zap.Error(err))
	}

	blobs, err := blob.New(cfg)
	if err != nil {
		l.Fatal("Ошибка хранилища файлов", zap.Error(err))
	}
	var mediaRoot string
	if local, ok := blobs.(*blob.Local); ok {
		mediaRoot = local.Root()
	}

	rdb := cache.Connect(ctx, cfg.RedisAddr, l)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	store := db.NewStore(database)
	runner := jobs.New(ctx, l)
	tokens := auth.NewManager(auth.Config{Secret: cfg.SecretKey, AccessTTL: cfg.AccessTTL, RefreshTTL: cfg.RefreshTTL})

	messenger, err := mail.New(cfg.SMTP, cfg.Link, l)
	if err != nil {
		l.Fatal("Ошибка настройки почты", zap.Error(err))
	}

	srv := app.New(app.Deps{
		Config:     cfg,
		DB:         database,
		Identity:   identity.New(store, tokens, messenger, runner, l),
		Catalog:    catalog.New(store, blobs, l),
		Engagement: engagement.New(store, l),
		Presenter:  present.New(blobs),
		Redis:      rdb,
		Log:        l,
		LogLevel:   lg.LevelHandler(),
		MediaRoot:  mediaRoot,
	})

	httpSrv := app.StartHTTP(ctx, cfg.HTTPAddr, srv, l)
	select {
	case <-ctx.Done():
	case err := <-httpSrv.Err():
		if err != nil {
			l.Error("HTTP сервер остановился", zap.Error(err))
		}
		stop()
	}

	if !runner.Wait(10 * time.Second) {
		l.Warn("не все фоновые задачи завершились до остановки")
	}
	l.Info("сервис остановлен")
}
