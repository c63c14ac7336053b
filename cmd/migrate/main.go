package main

import (
	"context"
	"flag"
	"log"

	"quiz-poll/internal/config"
	"quiz-poll/internal/database"
	"quiz-poll/internal/logger"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

func main() {
	dir := flag.String("dir", database.DefaultMigrationsDir, "directory holding *.up.sql migrations")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	l := logger.Get()
	defer l.Sync()

	if cfg.Archive.DSN == "" {
		l.Fatal("archive.dsn (ARCHIVE_DSN) is not set")
	}

	ctx := context.Background()
	db, err := database.NewSQLXOracleDB(ctx, cfg.Archive.DSN, l)
	if err != nil {
		l.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if _, err := database.RunMigrations(ctx, db, afero.NewOsFs(), *dir, l); err != nil {
		l.Fatal("Failed to run migrations", zap.Error(err))
	}
}
