package main

import (
	"accounts_portal/internal/api"       // Custom package for API handlers
	"accounts_portal/internal/config"    // Custom package for configuration
	"accounts_portal/internal/db"        // Database connection
	"accounts_portal/internal/notify"    // Event publishing
	"accounts_portal/internal/receivers" // Model signal receivers
	"accounts_portal/internal/session"   // Session settings
	"accounts_portal/internal/storage"   // Profile picture storage
	"context"                            // context package is needed for Redis operations
	"errors"                             // Server shutdown errors
	"net/http"                           // HTTP server
	"os"                                 // Signals
	"os/signal"                          // Signal notification
	"syscall"                            // SIGTERM
	"time"                               // Shutdown timeout

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	if cfg.IsProd {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gdb, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})
	defer redisClient.Close()

	// Test Redis connection
	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	var files api.FileStore // Stays nil when MinIO is not configured
	if cfg.MinIOEndpoint != "" {
		store, err := storage.NewMinioStore(ctx, cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOBucket, cfg.MinIOUseSSL)
		if err != nil {
			logrus.Fatalf("failed to connect to MinIO: %v", err)
		}
		files = store
	} else {
		logrus.Warn("MINIO_ENDPOINT not set, profile picture uploads are disabled")
	}

	var pub notify.Publisher = notify.Discard{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := notify.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer func() {
			if err := kp.Close(); err != nil {
				logrus.WithError(err).Error("Failed to close Kafka writer")
			}
		}()
		pub = kp
	}

	if err := receivers.Register(gdb, redisClient, pub); err != nil {
		logrus.Fatalf("failed to connect receivers: %v", err)
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	r, err := api.NewRouter(api.Deps{
		DB:    gdb,
		Redis: redisClient,
		Files: files,
		Sessions: session.Options{
			CookieName:           cfg.SessionCookieName,
			Age:                  cfg.SessionCookieAge,
			Secure:               cfg.SessionCookieSecure,
			SaveEveryRequest:     cfg.SessionSaveEveryRequest,
			ExpireAtBrowserClose: cfg.SessionExpireAtBrowserClose,
		},
		JWTSecret:      cfg.JWTSecret,
		MaxUploadBytes: cfg.MaxUploadBytes,
		RateRequests:   cfg.RateLimitRequests,
		RateWindow:     cfg.RateLimitWindow,
		TrustedProxies: []string{"127.0.0.1"},
	})
	if err != nil {
		logrus.Fatalf("failed to build router: %v", err)
	}

	srv := &http.Server{Addr: ":" + cfg.AppPort, Handler: r}
	go func() {
		logrus.Info("Server running on " + cfg.AppPort) // Log server start
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	logrus.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Graceful shutdown failed")
	}
}
