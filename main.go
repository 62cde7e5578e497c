package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"

	"github.com/andy-arrow/vocal-excellence-backend/config"
	"github.com/andy-arrow/vocal-excellence-backend/handlers"
	"github.com/andy-arrow/vocal-excellence-backend/middleware"
	"github.com/andy-arrow/vocal-excellence-backend/models"
	"github.com/andy-arrow/vocal-excellence-backend/monitoring"
	"github.com/andy-arrow/vocal-excellence-backend/utils"
)

func main() {
	logger := log.New(os.Stdout, "VOCAL: ", log.LstdFlags|log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.SentryDSN != "" {
		if err := utils.InitSentry(cfg.SentryDSN, cfg.Env, cfg.AppVersion); err != nil {
			logger.Printf("Sentry disabled: %v", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	monitoring.Init()

	// The repository is constructed once here and injected everywhere; it is
	// never reinitialized for the lifetime of the process.
	repo, err := models.NewRepository(models.RepositoryConfig{
		Backend:        cfg.StorageBackend,
		DatabaseDSN:    cfg.DatabaseDSN(),
		RemoteStoreURL: cfg.RemoteStoreURL,
		RemoteStoreKey: cfg.RemoteStoreKey,
	})
	if err != nil {
		logger.Fatalf("Failed to initialize storage: %v", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logger.Printf("Error closing storage: %v", err)
		}
	}()
	logger.Printf("Storage backend: %s (%s)", repo.BackendName(), repo.BackendDescription())

	var cache utils.RedisClient
	if cfg.RedisHost != "" {
		maxRetries := 5
		retryDelay := 3 * time.Second
		for i := 0; i < maxRetries; i++ {
			cache, err = utils.NewRedisClient(cfg.RedisHost, cfg.RedisPassword)
			if err == nil {
				break
			}
			logger.Printf("Attempt %d: Failed to connect to Redis: %v", i+1, err)
			if i < maxRetries-1 {
				time.Sleep(retryDelay)
			}
		}
		if err != nil {
			logger.Printf("Redis cache disabled after %d attempts: %v", maxRetries, err)
			cache = nil
		} else {
			defer func() {
				if err := cache.Close(); err != nil {
					logger.Printf("Error closing Redis connection: %v", err)
				}
			}()
		}
	}

	var producer utils.KafkaProducer
	if cfg.KafkaBroker != "" {
		producer, err = utils.NewKafkaProducer(cfg.KafkaBroker)
		if err != nil {
			logger.Printf("Kafka events disabled: %v", err)
			producer = nil
		} else {
			defer producer.Close()
		}
	}

	var es utils.ElasticsearchClient
	if cfg.ElasticsearchURL != "" {
		es, err = utils.NewElasticsearchClient(cfg.ElasticsearchURL)
		if err != nil {
			logger.Printf("Admin search disabled: %v", err)
			es = nil
		}
	}

	var mailer utils.Mailer
	if cfg.ResendAPIKey != "" {
		mailer = utils.NewMailer(utils.MailerConfig{
			APIKey:     cfg.ResendAPIKey,
			From:       cfg.MailFrom,
			AdminEmail: cfg.AdminEmail,
		})
	} else {
		logger.Printf("RESEND_API_KEY not set, email notifications disabled")
	}

	router := gin.New()
	router.Use(
		gin.Logger(),
		gin.Recovery(),
		middleware.RequestID(),
		middleware.SentryMiddleware(),
		middleware.PrometheusMetrics(),
		middleware.ErrorHandler(),
	)

	appHandler := handlers.NewApplicationHandler(repo, mailer, cache, producer, cfg.UploadDir)
	contactHandler := handlers.NewContactHandler(repo, mailer, producer)
	signupHandler := handlers.NewSignupHandler(repo, producer)
	adminHandler := handlers.NewAdminHandler(repo, es, cfg.AdminPassword)
	paymentHandler := handlers.NewPaymentHandler(repo, cfg.PaymentCheckoutURL)
	healthHandler := handlers.NewHealthHandler(repo)

	api := router.Group("/api")
	{
		api.POST("/applications", appHandler.SubmitApplication)
		api.GET("/applications", appHandler.ListApplications)
		api.GET("/applications/:id", appHandler.GetApplication)

		api.POST("/contact", contactHandler.SubmitContact)
		api.GET("/contact-messages", contactHandler.ListContactMessages)
		api.POST("/contact-submissions", contactHandler.SubmitContactSubmission)
		api.GET("/contact-submissions", contactHandler.ListContactSubmissions)

		api.POST("/email-signups", signupHandler.CreateSignup)
		api.GET("/email-signups", signupHandler.ListSignups)

		api.POST("/admin/verify", adminHandler.Verify)
		api.GET("/admin/export", adminHandler.Export)
		api.GET("/admin/search", adminHandler.Search)

		api.POST("/payments/session", paymentHandler.CreateSession)
		api.POST("/payments/confirm", paymentHandler.Confirm)

		api.GET("/health", healthHandler.Health)
	}
	router.GET("/metrics", gin.WrapH(monitoring.Handler()))

	logger.Printf("Server is running on port %s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		logger.Fatalf("Server error: %v", err)
	}
}
