package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/foxxcyber/hisab-kitab/internal/config"
	"github.com/foxxcyber/hisab-kitab/internal/database"
	"github.com/foxxcyber/hisab-kitab/internal/handlers"
	"github.com/foxxcyber/hisab-kitab/internal/metrics"
	"github.com/foxxcyber/hisab-kitab/internal/services"
)

// bodyLimit leaves room for multipart overhead around a 5 MB bill image
const bodyLimit = handlers.MaxBillImageSize + 1024*1024

func setupLogging(cfg *config.Config) {
	if cfg.IsProduction() {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
	log.SetOutput(os.Stdout)
}

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env: %v", err)
	}

	cfg := config.Load()
	setupLogging(cfg)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Create admin user if it doesn't exist
	if err := database.EnsureAdminUser(db, cfg); err != nil {
		log.Printf("Warning: Could not ensure admin user: %v", err)
	}

	collector := metrics.New(db, cfg.Location())

	// Bill archive is optional; a nil BillStore disables it everywhere
	var bills services.BillStore
	if cfg.StorageConfigured() {
		storage, err := services.NewStorageService(cfg)
		if err != nil {
			log.Printf("Warning: Failed to initialize storage service: %v", err)
		} else if err := storage.EnsureBucket(context.Background()); err != nil {
			log.Printf("Warning: Failed to ensure S3 bucket exists: %v", err)
		} else {
			bills = storage
			log.WithField("bucket", storage.Bucket()).Info("Bill archive enabled")
		}
	} else {
		log.Info("S3 not configured, bill images will not be archived")
	}

	var recognizer services.TextRecognizer
	ocr, err := services.NewOCRService()
	if err != nil {
		log.Printf("Warning: Failed to initialize OCR service: %v", err)
	} else {
		defer ocr.Close()
		recognizer = ocr
	}

	telegram, err := services.NewTelegramService(cfg.TelegramBotToken)
	if err != nil {
		log.Printf("Warning: Failed to initialize Telegram bot: %v", err)
	}

	notifier := services.NewNotifier(
		db,
		services.NewEmailService(cfg),
		services.NewSMSService(cfg),
		telegram,
		collector,
	)
	assistant := services.NewAssistantFromConfig(cfg)
	defer func() {
		if err := assistant.Close(); err != nil {
			log.WithError(err).Warn("Failed to close chat provider")
		}
	}()

	h := handlers.New(db, cfg, assistant, notifier, bills)
	bh := handlers.NewBillHandler(cfg, db, recognizer, services.NewBillParser(), bills, collector)

	scheduler, err := services.NewScheduler(cfg, db, notifier, bills, collector)
	if err != nil {
		log.Fatalf("Failed to configure scheduler: %v", err)
	}
	h.SetJobRunner(scheduler)
	scheduler.Start()

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    bodyLimit,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	setupRoutes(app, cfg, h, bh, collector)

	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	scheduler.Stop(ctx)
	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("Warning: server shutdown: %v", err)
	}
}
