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
	"github.com/rs/zerolog"

	"github.com/aulamax/aulamax-api/internal/config"
	"github.com/aulamax/aulamax-api/internal/database"
	"github.com/aulamax/aulamax-api/internal/handler"
	"github.com/aulamax/aulamax-api/internal/middleware"
	"github.com/aulamax/aulamax-api/internal/models"
	"github.com/aulamax/aulamax-api/internal/repository"
	"github.com/aulamax/aulamax-api/internal/router"
	"github.com/aulamax/aulamax-api/internal/service"
	cloud "github.com/aulamax/aulamax-api/pkg/cloudinary"
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
		&models.User{},
		&models.UploadedFile{},
		&models.Assessment{},
		&models.Question{},
		&models.QuestionOption{},
		&models.Submission{},
		&models.Attempt{},
		&models.Answer{},
		&models.Grade{},
		&models.ActivityLog{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(context.Background(), cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	} else {
		logger.Warn().Msg("nats url not configured, activity fan-out disabled")
	}

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	uploadRepo := repository.NewUploadRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	var publisher service.EventPublisher
	if natsConn != nil {
		publisher = natsConn
	}

	activityService := service.NewActivityService(activityRepo, publisher, logger)
	authService := service.NewAuthService(userRepo, validate, cfg.JWTSecret, cfg.TokenTTL, logger)
	uploadService := service.NewUploadService(uploader, uploadRepo, cfg.UploadMaxSizeMB, logger)
	assessmentService := service.NewAssessmentService(assessmentRepo, uploadRepo, validate, activityService, logger)
	submissionService := service.NewSubmissionService(submissionRepo, assessmentRepo, uploadRepo, validate, activityService, cfg.AcceptLateSubmissions, logger)
	attemptService := service.NewAttemptService(attemptRepo, assessmentRepo, validate, activityService, logger)
	gradingService := service.NewGradingService(gradeRepo, submissionRepo, attemptRepo, assessmentRepo, uploadRepo, validate, activityService, logger)
	progressService := service.NewStudentProgressService(assessmentRepo, submissionRepo, attemptRepo, gradeRepo, redisClient, cfg.ProgressCacheTTL, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:       handler.NewAuthHandler(authService, logger),
		AssessmentHandler: handler.NewAssessmentHandler(assessmentService, logger),
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, logger),
		AttemptHandler:    handler.NewAttemptHandler(attemptService, logger),
		GradingHandler:    handler.NewGradingHandler(gradingService, logger),
		UploadHandler:     handler.NewUploadHandler(uploadService, logger),
		ProgressHandler:   handler.NewProgressHandler(progressService, logger),
		ActivityHandler:   handler.NewActivityHandler(activityService, logger),
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
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
