package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq" // PostgreSQL driver

	ingest "github.com/zombar/linksaver"
	"github.com/zombar/linksaver/analyze"
	"github.com/zombar/linksaver/api"
	"github.com/zombar/linksaver/db"
	"github.com/zombar/linksaver/extract"
	"github.com/zombar/linksaver/storage"
)

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err == nil {
		logger.Info("loaded configuration from .env")
	}

	logger.Info("linksaver service initializing", "version", "1.0.0")

	defaultPort := getEnv("PORT", "8080")
	defaultFrontendURL := getEnv("FRONTEND_URL", "http://localhost:3000")
	defaultStoragePath := getEnv("STORAGE_BASE_PATH", "./storage")

	port := flag.String("port", defaultPort, "Server port")
	frontendURL := flag.String("frontend-url", defaultFrontendURL, "Frontend URL included in save confirmations")
	disableCORS := flag.Bool("disable-cors", false, "Disable CORS")
	disableSnapshots := flag.Bool("disable-snapshots", false, "Disable snapshot archiving")
	rollback := flag.Bool("rollback", false, "Roll back the last database migration and exit")
	flag.Parse()

	// PostgreSQL database configuration (required)
	dbHost := getEnv("DB_HOST", "")
	if dbHost == "" {
		logger.Error("DB_HOST environment variable is required")
		os.Exit(1)
	}
	dbPort := getEnv("DB_PORT", "5432")
	dbUser := getEnv("DB_USER", "linksaver")
	dbPassword := getEnv("DB_PASSWORD", "linksaver_dev_pass")
	dbName := getEnv("DB_NAME", "linksaver")

	database, err := db.New(db.Config{
		DSN: fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			dbHost, dbPort, dbUser, dbPassword, dbName),
	})
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	logger.Info("using PostgreSQL database", "host", dbHost, "port", dbPort, "database", dbName)

	if *rollback {
		if err := db.Rollback(database.DB()); err != nil {
			logger.Error("rollback failed", "error", err)
			os.Exit(1)
		}
		logger.Info("rolled back last migration")
		return
	}

	if status, err := db.GetMigrationStatus(database.DB()); err == nil {
		applied := 0
		for _, s := range status {
			if s.Applied {
				applied++
			}
		}
		logger.Info("schema migrations", "applied", applied, "known", len(status))
	}

	db.RegisterPoolMetrics(database.DB())

	// Snapshot archive: S3 when a bucket is configured, local
	// filesystem otherwise
	var archive ingest.Archiver
	if !*disableSnapshots {
		if bucket := getEnv("S3_BUCKET", ""); bucket != "" {
			s3Backend, err := storage.NewS3Storage(context.Background(), storage.S3Config{
				Endpoint:        getEnv("S3_ENDPOINT", ""),
				Region:          getEnv("S3_REGION", "us-east-1"),
				Bucket:          bucket,
				AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
				SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
				UsePathStyle:    getEnv("S3_USE_PATH_STYLE", "") == "true",
			})
			if err != nil {
				logger.Error("failed to initialize S3 storage", "error", err)
				os.Exit(1)
			}
			archive = s3Backend
			logger.Info("snapshot archive using S3", "bucket", bucket)
		} else {
			fsBackend, err := storage.New(storage.Config{BasePath: defaultStoragePath})
			if err != nil {
				logger.Error("failed to initialize storage", "error", err)
				os.Exit(1)
			}
			archive = fsBackend
			logger.Info("snapshot archive using filesystem", "path", defaultStoragePath)
		}
	}

	extractConfig := extract.DefaultConfig()
	extractConfig.ApifyToken = getEnv("APIFY_API_TOKEN", "")
	if readerURL := getEnv("READER_BASE_URL", ""); readerURL != "" {
		extractConfig.ReaderBaseURL = readerURL
	}
	extractor := extract.New(extractConfig)

	analyzeConfig := analyze.DefaultConfig()
	analyzeConfig.GeminiAPIKey = getEnv("GEMINI_API_KEY", "")
	if model := getEnv("GEMINI_MODEL", ""); model != "" {
		analyzeConfig.GeminiModel = model
	}
	analyzer, err := analyze.New(context.Background(), analyzeConfig)
	if err != nil {
		logger.Error("failed to initialize analyzer", "error", err)
		os.Exit(1)
	}
	logger.Info("analysis strategy selected", "method", analyzer.Method())

	pipeline := ingest.New(
		ingest.Config{FrontendURL: *frontendURL},
		database,
		extractor,
		analyzer,
		archive,
	)

	server := api.NewServer(api.Config{
		Addr:        ":" + *port,
		CORSEnabled: !*disableCORS,
	}, database, pipeline)

	go func() {
		logger.Info("linksaver service starting",
			"port", *port,
			"database_host", dbHost,
			"database_name", dbName,
			"frontend_url", *frontendURL,
			"snapshots_enabled", archive != nil,
			"apify_configured", extractConfig.ApifyToken != "",
		)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down gracefully")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
