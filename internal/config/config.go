package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	SecretKey   string
	HTTPAddr    string
	LogLevel    string
	Env         string // dev|prod
	SentryDSN   string

	// Link: префикс абсолютных ссылок на файлы (http://host:port)
	Link      string
	MediaRoot string
	MediaURL  string

	BlobBackend string // local|oss
	OSS         OSSConfig
	SMTP        SMTPConfig
	RedisAddr   string

	AccessTTL   time.Duration
	RefreshTTL  time.Duration
	CORSOrigins string
	MaxUploadMB int
}

type OSSConfig struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	Bucket     string
	PublicBase string
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// Load читает .env (если есть) и переменные окружения.
func Load() (*Config, error) {
	_ = godotenv.Load()

	accessTTL, err := durationEnv("ACCESS_TTL", 15*time.Minute)
	if err != nil {
		return nil, err
	}
	refreshTTL, err := durationEnv("REFRESH_TTL", 7*24*time.Hour)
	if err != nil {
		return nil, err
	}
	smtpPort, err := intEnv("SMTP_PORT", 587)
	if err != nil {
		return nil, err
	}
	maxUpload, err := intEnv("MAX_UPLOAD_MB", 50)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabaseURL: mustEnv("DATABASE_URL"),
		SecretKey:   mustEnv("SECRET_KEY"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		Env:         getenv("ENV", "dev"),
		SentryDSN:   os.Getenv("SENTRY_DSN"),

		Link:      strings.TrimRight(getenv("LINK", "http://localhost:8080"), "/"),
		MediaRoot: getenv("MEDIA_ROOT", "./media"),
		MediaURL:  getenv("MEDIA_URL", "/media/"),

		BlobBackend: strings.ToLower(getenv("BLOB_BACKEND", "local")),
		OSS: OSSConfig{
			Endpoint:   os.Getenv("ALI_OSS_ENDPOINT"),
			AccessKey:  os.Getenv("ALI_OSS_ACCESS_KEY"),
			SecretKey:  os.Getenv("ALI_OSS_SECRET_KEY"),
			Bucket:     os.Getenv("ALI_OSS_BUCKET"),
			PublicBase: os.Getenv("ALI_OSS_PUBLIC_BASE"),
		},
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     smtpPort,
			User:     os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getenv("SMTP_FROM", os.Getenv("SMTP_USER")),
		},
		RedisAddr: os.Getenv("REDIS_ADDR"),

		AccessTTL:   accessTTL,
		RefreshTTL:  refreshTTL,
		CORSOrigins: getenv("CORS_ORIGINS", "*"),
		MaxUploadMB: maxUpload,
	}

	switch cfg.BlobBackend {
	case "local":
	case "oss":
		if cfg.OSS.Endpoint == "" || cfg.OSS.AccessKey == "" || cfg.OSS.SecretKey == "" || cfg.OSS.Bucket == "" {
			return nil, fmt.Errorf("BLOB_BACKEND=oss: нужны ALI_OSS_ENDPOINT/ACCESS_KEY/SECRET_KEY/BUCKET")
		}
	default:
		return nil, fmt.Errorf("BLOB_BACKEND: неизвестное значение %q", cfg.BlobBackend)
	}
	return cfg, nil
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("required env " + k + " is empty")
	}
	return v
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func durationEnv(k string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return d, nil
}

func intEnv(k string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: bad int %q: %w", k, v, err)
	}
	return n, nil
}
