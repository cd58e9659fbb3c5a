package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/Spok95/college-library/internal/auth"
	"github.com/Spok95/college-library/internal/config"
	"github.com/Spok95/college-library/internal/db"
	"github.com/Spok95/college-library/internal/export"
	"github.com/Spok95/college-library/internal/identity"
	"github.com/Spok95/college-library/internal/jobs"
	"github.com/Spok95/college-library/internal/logging"
	"github.com/Spok95/college-library/internal/mail"
)

func main() {
	flag.Usage = usage
	email := flag.String("email", "", "email суперпользователя")
	password := flag.String("password", "", "пароль суперпользователя")
	fullName := flag.String("name", "Администратор", "ФИО суперпользователя")
	phone := flag.String("phone", "", "телефон суперпользователя")
	course := flag.Int("course", 1, "курс группы")
	direction := flag.String("direction", "", "направление группы")
	out := flag.String("out", "", "файл для выгрузки статистики")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		return
	}
	command := args[0]

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Ошибка конфигурации: %v", err)
	}
	lg, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("Ошибка инициализации логгера: %v", err)
	}
	defer lg.Closer()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Ошибка подключения к базе данных: %v", err)
	}
	defer func() { _ = database.Close() }()

	store := db.NewStore(database)
	tokens := auth.NewManager(auth.Config{Secret: cfg.SecretKey, AccessTTL: cfg.AccessTTL, RefreshTTL: cfg.RefreshTTL})
	inline := &jobs.Inline{}
	messenger, err := mail.New(cfg.SMTP, cfg.Link, lg.Base)
	if err != nil {
		log.Fatalf("Ошибка настройки почты: %v", err)
	}
	ids := identity.New(store, tokens, messenger, inline, lg.Base)

	switch command {
	case "migrate":
		if err := db.Migrate(database); err != nil {
			log.Fatalf("Ошибка применения миграций: %v", err)
		}
		fmt.Println("Миграции успешно применены")
	case "migrate-down":
		if err := db.MigrateDown(database); err != nil {
			log.Fatalf("Ошибка отката миграций: %v", err)
		}
		fmt.Println("Последняя миграция откачена")
	case "migrate-status":
		if err := db.MigrateStatus(database); err != nil {
			log.Fatalf("Ошибка получения статуса миграций: %v", err)
		}
	case "createsuperuser":
		a, err := ids.CreateSuperuser(ctx, identity.SuperuserInput{
			Email: *email, Password: *password, FullName: *fullName, PhoneNumber: *phone,
		})
		if err != nil {
			log.Fatalf("Не удалось создать суперпользователя: %v", err)
		}
		fmt.Printf("Суперпользователь создан: id=%d email=%s\n", a.ID, a.Email)
	case "set-staff", "unset-staff":
		if len(args) < 2 {
			log.Fatalf("Необходимо указать id аккаунта")
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			log.Fatalf("Некорректный id: %v", err)
		}
		a, err := ids.SetStaff(ctx, id, command == "set-staff")
		if err != nil {
			log.Fatalf("Не удалось изменить права: %v", err)
		}
		fmt.Printf("Аккаунт %d (%s): is_staff=%t\n", a.ID, a.Email, a.IsStaff)
	case "create-group":
		if len(args) < 2 {
			log.Fatalf("Необходимо указать название группы")
		}
		g, err := ids.CreateGroup(ctx, identity.GroupInput{Name: args[1], Course: *course, Direction: *direction})
		if err != nil {
			log.Fatalf("Не удалось создать группу: %v", err)
		}
		fmt.Printf("Группа создана: id=%d %s (%d курс, %s)\n", g.ID, g.Name, g.Course, g.Direction)
	case "export-stats":
		if err := exportStats(ctx, store, ids, *out); err != nil {
			log.Fatalf("Ошибка выгрузки статистики: %v", err)
		}
	default:
		fmt.Printf("Неизвестная команда: %s\n", command)
		flag.Usage()
		os.Exit(2)
	}
	for _, err := range inline.Errs {
		log.Printf("Фоновая задача завершилась с ошибкой: %v", err)
	}
}

func exportStats(ctx context.Context, store *db.Store, ids *identity.Service, path string) error {
	dirs, err := store.DirectionStats(ctx)
	if err != nil {
		return err
	}
	accounts, err := ids.ListAccountStats(ctx)
	if err != nil {
		return err
	}
	wb, err := export.StatsWorkbook(dirs, accounts)
	if err != nil {
		return err
	}
	defer func() { _ = wb.Close() }()

	if path == "" {
		path = export.StatsFilename(time.Now())
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := wb.Write(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("Статистика выгружена в файл: %s\n", path)
	return nil
}

func usage() {
	fmt.Println("Использование: manage [флаги] [команда]")
	fmt.Println("Доступные команды:")
	fmt.Println("  migrate              - Применить все непримененные миграции")
	fmt.Println("  migrate-down         - Откатить последнюю миграцию")
	fmt.Println("  migrate-status       - Показать статус миграций")
	fmt.Println("  createsuperuser      - Создать активного преподавателя с правами персонала")
	fmt.Println("  set-staff ID         - Выдать права персонала")
	fmt.Println("  unset-staff ID       - Снять права персонала")
	fmt.Println("  create-group NAME    - Создать группу (-course, -direction)")
	fmt.Println("  export-stats         - Выгрузить статистику в xlsx (-out)")
	fmt.Println("")
	fmt.Println("Примеры:")
	fmt.Println("  manage -email admin@college.ru -password secret1 -phone +79990000000 createsuperuser")
	fmt.Println("  manage set-staff 42")
	fmt.Println("  manage -course 2 create-group ИС-21")
	fmt.Println("  manage -out stats.xlsx export-stats")
}
