package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stock-empire/internal/config"
	"stock-empire/internal/container"
	"stock-empire/internal/handler"
	"stock-empire/internal/middleware"
	"stock-empire/internal/service"
	"stock-empire/pkg/logger"
)

// Resources holds all resources that need cleanup
type Resources struct {
	container *container.Container
	analytics service.AnalyticsService
	server    *http.Server
	log       *logger.Logger
	mu        sync.Mutex
	closed    bool
}

// Cleanup gracefully closes all resources
func (r *Resources) Cleanup(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	var errors []error

	r.log.Info("Starting graceful shutdown...")

	// Shutdown HTTP server first to stop accepting new requests
	if r.server != nil {
		r.log.Info("Shutting down HTTP server...")
		if err := r.server.Shutdown(ctx); err != nil {
			r.log.WithError(err).Error("Failed to shutdown HTTP server")
			errors = append(errors, fmt.Errorf("HTTP server shutdown: %w", err))
		} else {
			r.log.Info("HTTP server shutdown complete")
		}
	}

	// Stop analytics service (saves final snapshot)
	if r.analytics != nil {
		r.log.Info("Stopping analytics service...")
		if err := r.analytics.Stop(ctx); err != nil {
			r.log.WithError(err).Error("Failed to stop analytics service")
			errors = append(errors, fmt.Errorf("analytics service shutdown: %w", err))
		} else {
			r.log.Info("Analytics service stopped successfully")
		}
	}

	// Close Redis connection with health check
	if r.container.HasRedis() {
		r.log.Info("Closing Redis connection...")

		// Quick health check before closing (with short timeout)
		healthCtx, healthCancel := context.WithTimeout(ctx, 2*time.Second)
		if err := r.container.RedisClient.Health(healthCtx); err != nil {
			r.log.WithError(err).Warn("Redis health check failed before closing")
		}
		healthCancel()

		if err := r.container.RedisClient.Close(); err != nil {
			r.log.WithError(err).Error("Failed to close Redis connection")
			errors = append(errors, fmt.Errorf("Redis close: %w", err))
		} else {
			r.log.Info("Redis connection closed successfully")
		}
	}

	// Close database connection pool
	if r.container.HasDatabase() {
		r.log.Info("Closing database connection pool...")
		r.container.DB.Close()
		r.log.Info("Database connection pool closed successfully")
	}

	if len(errors) > 0 {
		r.log.WithField("error_count", len(errors)).Error("Cleanup completed with errors")
		return fmt.Errorf("cleanup completed with %d errors: %v", len(errors), errors)
	}

	r.log.Info("Graceful shutdown completed successfully")
	return nil
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log.WithFields(map[string]interface{}{
		"port":        cfg.Port,
		"log_level":   cfg.LogLevel,
		"environment": cfg.Environment,
	}).Info("Starting stock-empire server")

	if cfg.IdentityJWTSecret == "" {
		log.Warn("IDENTITY_JWT_SECRET not set, every authenticated request will be rejected")
	}

	ctx := context.Background()

	// Create dependency injection container
	c, err := container.New(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to create container")
	}

	if c.HasDatabase() {
		if err := c.DB.Migrate(ctx); err != nil {
			log.WithError(err).Fatal("Failed to apply database schema")
		}
	}

	// Start analytics service (restores and schedules snapshots)
	analytics := c.Services.Analytics
	if err := analytics.Start(ctx); err != nil {
		log.WithError(err).Fatal("Failed to start analytics service")
	}

	// Setup router
	router := setupRouter(c)

	// Create HTTP server with optimized timeouts for high load
	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        router,
		ReadTimeout:    10 * time.Second,  // Reduced for faster failure detection
		WriteTimeout:   60 * time.Second,  // Aligned with the request timeout middleware
		IdleTimeout:    120 * time.Second, // Increased for connection reuse
		MaxHeaderBytes: 1 << 20,           // 1MB max header size
	}

	// Create resources manager for cleanup
	resources := &Resources{
		container: c,
		analytics: analytics,
		server:    server,
		log:       log,
	}

	// Setup graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)

	// Setup cleanup function that will be called regardless of how the program exits
	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := resources.Cleanup(cleanupCtx); err != nil {
			log.WithError(err).Error("Cleanup completed with errors")
		}
	}()

	// Start server in a goroutine
	serverErrChan := make(chan error, 1)
	go func() {
		log.Info("Server starting on port " + cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("Server error occurred")
			serverErrChan <- err
		}
	}()

	// Wait for interrupt signal or server error
	select {
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("Received shutdown signal")
	case err := <-serverErrChan:
		log.WithError(err).Error("Server failed, initiating shutdown")
	}

	log.Info("Initiating graceful shutdown...")

	// Create context with timeout for shutdown operations
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	if err := resources.Cleanup(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown completed with errors")
		os.Exit(1)
	}

	log.Info("Application shutdown complete")
}

// setupRouter configures and returns the HTTP router
func setupRouter(c *container.Container) *chi.Mux {
	cfg := c.GetConfig()
	log := c.GetLogger()
	authService := c.Services.Auth

	// Create router
	r := chi.NewRouter()

	// Setup CORS middleware
	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowedOrigins = cfg.AllowedOrigins

	// Setup middlewares
	r.Use(middleware.CORS(corsConfig, log))
	r.Use(middleware.RequestID(log))
	if cfg.TrustProxyHeaders {
		r.Use(chiMiddleware.RealIP)
	}
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(chiMiddleware.Compress(5)) // Add gzip compression with level 5 (balanced)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Create handlers
	healthHandler := handler.NewHealthHandler(c)
	authHandler := handler.NewAuthHandler(c)
	analyticsHandler := handler.NewAnalyticsHandler(c.Services.Analytics, log.Named("analytics"))
	marketHandler := handler.NewMarketHandler(c.Services.Quotes, c.Services.Signals, log.Named("market"))
	picksHandler := handler.NewPicksHandler(c.Services.Picks, log.Named("picks"))
	newsHandler := handler.NewNewsHandler(c.Services.News, log.Named("news"))
	viewLimitHandler := handler.NewViewLimitHandler(c.ViewLimits, log.Named("viewlimit"))
	testingHandler := handler.NewTestingHandler(c)

	// Health check and metrics (no auth required)
	r.Get("/health", healthHandler.Check)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		// Anonymous callers are FREE; a bad token is rejected
		r.Use(middleware.OptionalAuth(authService, log))

		// Analytics ledger
		r.Post("/track", analyticsHandler.Track)
		r.Get("/stats", analyticsHandler.Stats)

		// News feeds
		r.Get("/breaking-news", newsHandler.BreakingNews)
		r.Get("/news", newsHandler.News)

		// Market data
		r.Get("/market-signals", marketHandler.MarketSignals)
		r.Get("/theme-signals", marketHandler.ThemeSignals)
		r.Get("/themes", marketHandler.Themes)
		r.Get("/quote", marketHandler.Quote)
		r.Get("/stock-analysis", marketHandler.StockAnalysis)

		// Picks and rates; these never fail upstream
		r.Get("/alpha-signals", picksHandler.AlphaSignals)
		r.Get("/vvip-picks", picksHandler.VVIPPicks)
		r.Get("/exchange-rate", picksHandler.ExchangeRate)

		// Premium reveal counter
		r.Get("/view-limit", viewLimitHandler.Status)
		r.Post("/view-limit/reveal", viewLimitHandler.Reveal)

		// Protected routes (require authentication)
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(authService, log))

			r.Get("/me", authHandler.GetMe)
		})

		// Testing routes (development environment only)
		// The handler itself will check the environment and return 403 if not in development
		r.Route("/testing", func(r chi.Router) {
			r.Get("/snapshot-stats", testingHandler.SnapshotStats)
			r.Post("/prune-snapshots", testingHandler.PruneSnapshots)
		})
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"success":false,"error":{"type":"not_found","message":"Endpoint not found"}}`))
	})

	log.Info("Router configured successfully")
	return r
}
