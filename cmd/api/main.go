package main

import (
	"cmp"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sampleprojects/postandcomments/internal/ai"
	"github.com/sampleprojects/postandcomments/internal/api"
	"github.com/sampleprojects/postandcomments/internal/blog"
	"github.com/sampleprojects/postandcomments/internal/config"
	gdb "github.com/sampleprojects/postandcomments/internal/db"
	"github.com/sampleprojects/postandcomments/internal/log"
	"github.com/sampleprojects/postandcomments/internal/metrics"
	"github.com/sampleprojects/postandcomments/pkg/kv"

	_ "github.com/sampleprojects/postandcomments/pkg/kv/memory"
	_ "github.com/sampleprojects/postandcomments/pkg/kv/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger, err := log.NewSugar(cfg.Env, cfg.ServiceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Infow("Starting posts API server",
		"env", cfg.Env,
		"addr", cfg.HTTPAddr,
		"version", api.APIVersion,
	)

	// Setup metrics and tracing
	metricsObj, metricsHandler, err := metrics.Setup(cfg.ServiceName)
	if err != nil {
		logger.Fatalw("Failed to setup metrics", "error", err)
	}
	tracerProvider := metrics.SetupTracing(cfg.ServiceName)
	defer tracerProvider.Shutdown(context.Background())

	// Initialize database
	db, err := gdb.NewDatabase(&gdb.Config{
		Type:          cfg.Database.Type,
		DSN:           cfg.Database.DSN,
		MaxOpenConns:  cfg.Database.MaxOpenConns,
		MaxIdleConns:  cfg.Database.MaxIdleConns,
		SlowThreshold: cfg.Database.SlowThreshold,
	}, logger)
	if err != nil {
		logger.Fatalw("Invalid database configuration", "error", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := gdb.ConnectAndMigrate(ctx, db, cfg.Database.AutoMigrate); err != nil {
		logger.Fatalw("Failed to initialize database", "error", err)
	}
	defer db.Disconnect(context.Background())
	logger.Infow("Database initialized", "type", cfg.Database.Type, "auto_migrate", cfg.Database.AutoMigrate)

	// Setup services
	services := api.Services{
		Posts:    blog.NewPostService(db, db.Posts(), db.Tags(), logger),
		Tags:     blog.NewTagService(db, db.Tags(), logger),
		Comments: blog.NewCommentService(db, db.Posts(), db.Comments(), logger),
		Details:  blog.NewDetailsService(db, db.Posts(), db.Details(), logger),
	}

	var explainer api.Explainer
	if cfg.AI.Enabled() {
		client := ai.NewClient(cfg.AI.APIKey, cfg.AI.BaseURL)
		explainer = ai.NewExplainer(client, cfg.AI.Model, logger, metricsObj)
		logger.Infow("AI explanations enabled", "model", cfg.AI.Model, "base_url", cfg.AI.BaseURL)
	} else {
		logger.Infow("AI explanations disabled: BLOG_AI_API_KEY is not set")
	}

	// Setup API handler and middleware
	handler := api.NewHandler(services, explainer, db, logger)
	middleware := api.NewMiddleware(logger, metricsObj)

	// Per-client rate limit counters
	if cfg.Security.RateLimitStore != "" {
		counters, err := kv.NewStoreFromConfig(kv.Config{
			Backend:  kv.Backend(cfg.Security.RateLimitStore),
			RedisURL: cfg.Security.RedisURL,
			Logger:   logger.Warnw,
		})
		if err != nil {
			logger.Fatalw("Failed to create rate limit store", "backend", cfg.Security.RateLimitStore, "error", err)
		}
		defer counters.Close()
		middleware.WithCounterStore(counters)
	}
	logger.Infow("Rate limiting configured",
		"rpm", cfg.Security.RateLimitRPM,
		"store", cmp.Or(cfg.Security.RateLimitStore, "global"),
	)

	router := handler.Routes(middleware, cfg.Security.CORSAllowedOrigins, cfg.Security.RateLimitRPM)
	logger.Infow("CORS configured", "allowed_origins", cfg.Security.CORSAllowedOrigins)

	// Add metrics endpoint
	router.Handle("/metrics", metricsHandler)

	// Setup HTTP server
	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	serverErrors := make(chan error, 1)
	go func() {
		logger.Infow("API server starting", "addr", server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Fatalw("Server startup failed", "error", err)
	case sig := <-shutdown:
		logger.Infow("Shutdown signal received", "signal", sig.String())

		// Give outstanding requests 30 seconds to complete
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Errorw("Graceful shutdown failed", "error", err)
			server.Close()
		}

		logger.Infow("Server stopped")
	}
}
