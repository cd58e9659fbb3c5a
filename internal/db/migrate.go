package db

import (
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/Spok95/college-library/internal/db/migrations"
)

func gooseInit() error {
	goose.SetBaseFS(migrations.FS)
	return goose.SetDialect("postgres")
}

// Migrate накатывает встроенные миграции до последней версии.
func Migrate(database *sql.DB) error {
	if err := gooseInit(); err != nil {
		return err
	}
	if err := goose.Up(database, "."); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// MigrateDown откатывает последнюю миграцию.
func MigrateDown(database *sql.DB) error {
	if err := gooseInit(); err != nil {
		return err
	}
	return goose.Down(database, ".")
}

func MigrateStatus(database *sql.DB) error {
	if err := gooseInit(); err != nil {
		return err
	}
	return goose.Status(database, ".")
}
