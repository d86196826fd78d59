package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/algolab-dev/labrec-api/internal/config"
	"github.com/algolab-dev/labrec-api/internal/database"
	"github.com/algolab-dev/labrec-api/internal/handler"
	"github.com/algolab-dev/labrec-api/internal/middleware"
	"github.com/algolab-dev/labrec-api/internal/models"
	"github.com/algolab-dev/labrec-api/internal/repository"
	"github.com/algolab-dev/labrec-api/internal/router"
	"github.com/algolab-dev/labrec-api/internal/service"
	"github.com/algolab-dev/labrec-api/pkg/ai"
	"github.com/algolab-dev/labrec-api/pkg/pdfexport"
	"github.com/algolab-dev/labrec-api/pkg/piston"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Profile{},
		&models.Classroom{},
		&models.ClassroomMember{},
		&models.Program{},
		&models.AlgorithmSubmission{},
		&models.CodeSubmission{},
		&models.Notification{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, review events will not be broadcast")
		} else {
			defer natsConn.Close()
		}
	}

	executor, err := piston.NewClient(piston.Config{
		BaseURL: cfg.PistonURL,
		Timeout: cfg.PistonTimeout,
		Logger:  logger,
	})
	if err != nil {
		log.Fatalf("failed to create piston client: %v", err)
	}

	var assistant ai.Assistant
	if cfg.AIProvider == "openai" && cfg.OpenAIAPIKey != "" {
		assistant, err = ai.NewOpenAIAssistant(ai.OpenAIConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.OpenAIModel,
			Logger: logger,
		})
		if err != nil {
			log.Fatalf("failed to create assistant: %v", err)
		}
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	programRepo := repository.NewProgramRepository(db)
	algorithmRepo := repository.NewAlgorithmSubmissionRepository(db)
	codeRepo := repository.NewCodeSubmissionRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	classroomRepo := repository.NewClassroomRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	notificationService := service.NewNotificationService(notificationRepo, natsConn, cfg.NotificationsSubject, validate, logger)
	workflowService := service.NewWorkflowService(algorithmRepo, codeRepo, programRepo, validate, notificationService, logger)
	programService := service.NewProgramService(programRepo, validate, logger)
	progressService := service.NewProgressService(programRepo, algorithmRepo, codeRepo, profileRepo, classroomRepo, redisClient, cfg.ProgressCacheTTL, logger)
	recordService := service.NewRecordService(programRepo, algorithmRepo, codeRepo, pdfexport.NewRenderer(), logger)
	runnerService := service.NewRunnerService(executor, validate, logger)
	assistantService := service.NewAssistantService(programRepo, assistant, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		ProgramHandler:      handler.NewProgramHandler(programService, logger),
		SubmissionHandler:   handler.NewSubmissionHandler(workflowService, logger),
		ProgressHandler:     handler.NewProgressHandler(workflowService, progressService, logger),
		RecordHandler:       handler.NewRecordHandler(recordService, logger),
		RunnerHandler:       handler.NewRunnerHandler(runnerService, logger),
		AssistantHandler:    handler.NewAssistantHandler(assistantService, logger),
		NotificationHandler: handler.NewNotificationHandler(notificationService, logger),
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
