package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quiz-poll/internal/adapter"
	"quiz-poll/internal/adapter/quizgen"
	"quiz-poll/internal/adapter/telegram"
	"quiz-poll/internal/cache"
	"quiz-poll/internal/config"
	"quiz-poll/internal/database"
	"quiz-poll/internal/dedup"
	"quiz-poll/internal/domain"
	"quiz-poll/internal/handler"
	"quiz-poll/internal/logger"
	"quiz-poll/internal/middleware"
	"quiz-poll/internal/repository"
	"quiz-poll/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const lockRetryDelay = 200 * time.Millisecond

func main() {
	issueToken := flag.Duration("issue-admin-token", 0, "print an admin API token valid for the given duration and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *issueToken > 0 {
		if cfg.Admin.JWTSecret == "" {
			log.Fatal("admin.jwt_secret is not set")
		}
		token, err := middleware.IssueAdminToken([]byte(cfg.Admin.JWTSecret), "cli", *issueToken)
		if err != nil {
			log.Fatalf("Failed to issue admin token: %v", err)
		}
		fmt.Println(token)
		return
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	appLogger.Info("Starting UPSC SSC CGL Quiz Bot...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Question history, optionally serialised across producers through Redis.
	var history domain.QuestionHistory = dedup.NewFileStore(afero.NewOsFs(), cfg.Dedup.Path, logger.Named("history"))
	if cfg.Redis.Address != "" {
		redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		locker := adapter.NewRedisLocker(redisClient, cfg.Redis.LockAttempts, lockRetryDelay)
		history = dedup.NewLockedStore(history, locker, cfg.Redis.LockTTL, logger.Named("history"))
		appLogger.Info("Question history lock enabled", zap.String("redis", cfg.Redis.Address))
	}

	model, err := quizgen.NewModel(cfg.LLM)
	if err != nil {
		appLogger.Fatal("Failed to create LLM client", zap.Error(err))
	}
	generator, err := quizgen.NewLLMQuestionGenerator(model, cfg.LLM, logger.Named("generator"))
	if err != nil {
		appLogger.Fatal("Failed to create question generator", zap.Error(err))
	}

	bot, err := telegram.NewBotAPI(cfg.Telegram.Token, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize Telegram bot", zap.Error(err))
	}
	publisher, err := telegram.NewPollPublisher(bot, cfg.Telegram.ChannelID, logger.Named("telegram"))
	if err != nil {
		appLogger.Fatal("Invalid Telegram channel", zap.Error(err))
	}

	var archive domain.PublicationRepository
	if cfg.Archive.DSN != "" {
		db, err := database.NewSQLXOracleDB(ctx, cfg.Archive.DSN, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to connect to archive database", zap.Error(err))
		}
		defer db.Close()
		archive = repository.NewPublicationRepository(db)
	}

	cycles := service.NewQuizCycleService(generator, history, publisher, archive, cfg.Dedup.RecentCount, logger.Named("cycle"))
	scheduler, err := service.NewScheduler(cycles, cfg.Schedule, logger.Named("scheduler"))
	if err != nil {
		appLogger.Fatal("Invalid schedule", zap.Error(err))
	}

	var app *fiber.App
	if cfg.Admin.Port > 0 {
		app = fiber.New(fiber.Config{
			ErrorHandler:          middleware.ErrorHandler(),
			DisableStartupMessage: true,
		})
		app.Use(recover.New())
		app.Use(middleware.RequestLogger())
		handler.NewAdminHandler(cycles, history, archive).RegisterRoutes(app, []byte(cfg.Admin.JWTSecret))

		go func() {
			addr := fmt.Sprintf(":%d", cfg.Admin.Port)
			appLogger.Info("Admin API listening", zap.String("addr", addr))
			if err := app.Listen(addr); err != nil {
				appLogger.Error("Admin API stopped", zap.Error(err))
				stop()
			}
		}()
	}

	if err := scheduler.Run(ctx); err != nil {
		appLogger.Error("Scheduler exited with error", zap.Error(err))
	}

	if app != nil {
		if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
			appLogger.Error("Admin API shutdown failed", zap.Error(err))
		}
	}
	appLogger.Info("Bot stopped")
}
