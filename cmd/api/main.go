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

	"github.com/sigra-edu/sigra-api/internal/config"
	"github.com/sigra-edu/sigra-api/internal/database"
	"github.com/sigra-edu/sigra-api/internal/handler"
	"github.com/sigra-edu/sigra-api/internal/middleware"
	"github.com/sigra-edu/sigra-api/internal/models"
	"github.com/sigra-edu/sigra-api/internal/repository"
	"github.com/sigra-edu/sigra-api/internal/router"
	"github.com/sigra-edu/sigra-api/internal/service"
	cloud "github.com/sigra-edu/sigra-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL, database.PoolOptions{
		MaxOpenConns: cfg.DatabaseMaxOpenConns,
		MaxIdleConns: cfg.DatabaseMaxIdleConns,
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Teacher{},
		&models.Student{},
		&models.Program{},
		&models.Period{},
		&models.Course{},
		&models.LearningOutcome{},
		&models.Indicator{},
		&models.ActivityType{},
		&models.Activity{},
		&models.ActivityOutcome{},
		&models.Enrollment{},
		&models.Grade{},
		&models.Resource{},
		&models.Notification{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(context.Background(), cfg.RedisURL, cfg.AppName)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis url not configured, caching and cross-node fan-out disabled")
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL, nats.Name(cfg.AppName))
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	}

	var uploader service.FileStorage
	if cfg.CloudinaryCloudName != "" {
		cld, err := cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
		if err != nil {
			log.Fatalf("failed to create cloudinary client: %v", err)
		}
		uploader = cld
	} else {
		logger.Warn().Msg("cloudinary not configured, resource uploads disabled")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	teacherRepo := repository.NewTeacherRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	outcomeRepo := repository.NewOutcomeRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	resourceRepo := repository.NewResourceRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	notificationService := service.NewNotificationService(notificationRepo, redisClient, cfg.NotificationChannel, natsConn, validate, logger)
	authService := service.NewAuthService(teacherRepo, studentRepo, validate, nil, cfg.JWTSecret, cfg.TokenTTL, cfg.ResetTokenTTL, logger)
	courseService := service.NewCourseService(courseRepo, outcomeRepo, enrollmentRepo, logger)
	outcomeService := service.NewOutcomeService(outcomeRepo, activityRepo, courseService, validate, logger)
	activityService := service.NewActivityService(activityRepo, outcomeRepo, gradeRepo, enrollmentRepo, courseService, validate, logger)
	gradeService := service.NewGradeService(gradeRepo, enrollmentRepo, activityRepo, outcomeRepo, notificationService, validate, logger)
	noticeService := service.NewNoticeService(enrollmentRepo, outcomeRepo, activityRepo, gradeRepo, redisClient, cfg.NoticeCacheTTL, logger)
	progressService := service.NewProgressService(courseService, enrollmentRepo, outcomeRepo, gradeRepo, logger)
	profileService := service.NewProfileService(teacherRepo, studentRepo, courseRepo, enrollmentRepo, validate, logger)
	resourceService := service.NewResourceService(resourceRepo, courseService, enrollmentRepo, uploader, notificationService, cfg.ResourceMaxSizeMB, logger)

	runCtx, stopConsumers := context.WithCancel(context.Background())
	defer stopConsumers()
	notificationService.Start(runCtx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AllowOrigins: cfg.CORSOrigins})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:         handler.NewAuthHandler(authService, logger),
		CourseHandler:       handler.NewCourseHandler(courseService, progressService, logger),
		OutcomeHandler:      handler.NewOutcomeHandler(outcomeService, logger),
		ActivityHandler:     handler.NewActivityHandler(activityService, logger),
		GradeHandler:        handler.NewGradeHandler(gradeService, logger),
		NoticeHandler:       handler.NewNoticeHandler(noticeService, logger),
		ProfileHandler:      handler.NewProfileHandler(profileService, logger),
		ResourceHandler:     handler.NewResourceHandler(resourceService, logger),
		NotificationHandler: handler.NewNotificationHandler(notificationService, logger, 30*time.Second),
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
