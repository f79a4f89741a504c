package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/talentwire/docpipe/internal/api"
	"github.com/talentwire/docpipe/internal/cache"
	"github.com/talentwire/docpipe/internal/config"
	"github.com/talentwire/docpipe/internal/llm"
	"github.com/talentwire/docpipe/internal/logger"
	"github.com/talentwire/docpipe/internal/repository"
	"github.com/talentwire/docpipe/internal/service"
	"github.com/talentwire/docpipe/internal/storage"
)

func main() {
	// Load configuration
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger := logger.NewDefault()
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	// Initialize job store
	jobs, err := buildJobStore(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize job store: %v", err)
	}

	// Initialize document storage (supports S3, R2, in-memory)
	documents, err := storage.NewStore(&storage.S3Config{
		Type:      storage.StorageType(cfg.Storage.Type),
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		UseSSL:    cfg.Storage.UseSSL,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		PublicURL: cfg.Storage.PublicURL,
	})
	if err != nil {
		logger.Fatal("Failed to initialize storage: %v", err)
	}

	ctx := context.Background()
	if s3Store, ok := documents.(*storage.S3Store); ok {
		if err := s3Store.EnsureBucket(ctx); err != nil {
			logger.Fatal("Failed to ensure storage bucket: %v", err)
		}
	}

	// Compile output schemas and build the structured-generation client
	schemas, err := service.NewSchemaSet()
	if err != nil {
		logger.Fatal("Failed to compile schemas: %v", err)
	}
	generator := llm.NewClient(&llm.Config{
		Provider: cfg.LLM.Provider,
		Model:    cfg.LLM.Model,
		APIKey:   cfg.LLM.APIKey,
		BaseURL:  cfg.LLM.BaseURL,
		Timeout:  cfg.LLM.Timeout,
	}, schemas)

	// Initialize services
	contentCache := cache.NewMemoryCache()
	orchestrator := service.NewOrchestrator(generator, jobs, &cfg.Extraction, appLogger)
	questions := service.NewQuestionGenerator(generator)
	deliverer := service.NewWebhookDeliverer(&cfg.Webhook)
	scorer := service.NewMatchScorer(generator)

	processing := service.NewProcessingService(
		jobs,
		contentCache,
		documents,
		orchestrator,
		questions,
		deliverer,
		&cfg.Extraction,
		cfg.LLM.Model,
		appLogger,
	)

	// Periodic job store sweep
	sweepCtx, stopSweep := context.WithCancel(ctx)
	go runCleanupSweep(sweepCtx, jobs, cfg.Jobs.CleanupInterval, cfg.Jobs.MaxAge)

	// Setup router
	router := api.SetupRouter(processing, jobs, scorer, &cfg.Server)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting API server: port=%d, mode=%s", cfg.Server.Port, cfg.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	stopSweep()

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown: %v", err)
	}

	// Let in-flight pipelines reach a terminal state
	processing.Wait()

	logger.Info("Server exited")
}

func buildJobStore(cfg *config.Config) (repository.JobStore, error) {
	switch cfg.Jobs.Store {
	case "", "memory":
		return repository.NewMemoryJobStore(), nil
	case "database":
		db, err := repository.InitDB(&cfg.Database)
		if err != nil {
			return nil, err
		}
		return repository.NewGormJobStore(db), nil
	default:
		return nil, fmt.Errorf("unknown jobs.store %q", cfg.Jobs.Store)
	}
}

// runCleanupSweep removes stale jobs on a fixed interval until ctx is done.
func runCleanupSweep(ctx context.Context, jobs repository.JobStore, interval, maxAge time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := jobs.Cleanup(ctx, maxAge)
			if err != nil {
				logger.CtxError(ctx, "Job cleanup sweep failed: %v", err)
				continue
			}
			if removed > 0 {
				logger.CtxInfo(ctx, "Job cleanup sweep removed %d jobs", removed)
			}
		}
	}
}
