package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"github.com/yourusername/edu-api/internal/config"
	"github.com/yourusername/edu-api/pkg/database"
)

const usage = `Использование: migrate [-config path] <up|down|version|force N>

  up       применить все миграции
  down     откатить одну миграцию
  version  показать текущую версию схемы
  force N  установить версию N и снять флаг dirty`

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "путь к файлу конфигурации")
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}
	if *configPath == "" {
		*configPath = "config/config.yaml"
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := sql.Open("postgres", cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unavailable: %v", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		log.Fatal(err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		database.MigrationSourceURL(cfg.Database.MigrationsPath),
		"postgres",
		driver,
	)
	if err != nil {
		log.Fatal(err)
	}

	switch flag.Arg(0) {
	case "up":
		err = m.Up()
	case "down":
		err = m.Steps(-1)
	case "version":
		version, dirty, verr := m.Version()
		if errors.Is(verr, migrate.ErrNilVersion) {
			fmt.Println("Миграции еще не применялись")
			return
		}
		if verr != nil {
			log.Fatalf("Failed to read version: %v", verr)
		}
		fmt.Printf("Версия схемы: %d (dirty: %t)\n", version, dirty)
		return
	case "force":
		if flag.NArg() < 2 {
			flag.Usage()
			os.Exit(2)
		}
		version, perr := strconv.Atoi(flag.Arg(1))
		if perr != nil {
			log.Fatalf("Invalid version %q: %v", flag.Arg(1), perr)
		}
		fmt.Printf("Устанавливаем версию миграций %d...\n", version)
		err = m.Force(version)
	default:
		flag.Usage()
		os.Exit(2)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("Migration %s failed: %v", flag.Arg(0), err)
	}
	if errors.Is(err, migrate.ErrNoChange) {
		fmt.Println("Изменений нет, схема актуальна.")
		return
	}
	fmt.Println("Готово.")
}
