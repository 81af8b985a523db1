package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/mstgnz/paybridge/infra/config"
	"github.com/mstgnz/paybridge/infra/logger"
	"github.com/mstgnz/paybridge/infra/middle"
	"github.com/mstgnz/paybridge/infra/opensearch"
	"github.com/mstgnz/paybridge/infra/response"
	"github.com/mstgnz/paybridge/infra/validate"
	"github.com/mstgnz/paybridge/provider"
	_ "github.com/mstgnz/paybridge/provider/aci"    // Import for side-effect registration
	_ "github.com/mstgnz/paybridge/provider/shift4" // Import for side-effect registration
	"github.com/mstgnz/paybridge/router"
	"github.com/prometheus/client_golang/prometheus"
)

const version = "1.0.0"

var openSearchLogger *opensearch.Logger

func init() {
	// Load Env; a missing .env file is fine when the environment is set directly
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Load Env Error: %v\n", err)
		os.Exit(1)
	}
	// init conf
	_ = config.App()

	cfg := config.GetAppConfig()
	if cfg.EnableLogging {
		osClient, err := opensearch.NewClient(cfg, provider.GetAvailableProviders()...)
		if err != nil {
			fmt.Fprintf(os.Stderr, "OpenSearch setup failed: %v\n", err)
		}
		if osClient != nil {
			openSearchLogger = opensearch.NewLogger(osClient)
		}
	}
	logger.InitGlobalLogger(openSearchLogger)
}

func main() {
	defer func() { _ = logger.GetGlobalLogger().Sync() }()

	cfg := config.GetAppConfig()

	providerConfig := config.NewProviderConfig()
	providerConfig.LoadFromEnv()

	metrics := provider.NewMetrics()
	prometheus.MustRegister(metrics)

	opts := []provider.ServiceOption{
		provider.WithMetrics(metrics),
		provider.WithProviderTimeout(cfg.ProviderTimeout),
	}
	if openSearchLogger != nil {
		opts = append(opts, provider.WithPaymentLogger(openSearchLogger))
	}

	paymentService := provider.NewPaymentService(opts...)
	if err := paymentService.AddProviders(providerConfig); err != nil {
		logger.Error("Some payment providers could not be registered", err)
	}
	defer paymentService.Wait()

	rateLimiter := middle.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	defer rateLimiter.Stop()

	// Chi Define Routes
	r := chi.NewRouter()

	// Basic Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middle.RequestLoggingMiddleware())
	r.Use(middle.PanicRecoveryMiddleware())
	r.Use(middleware.Timeout(60 * time.Second))
	if cfg.ThrottleRequests > 0 {
		r.Use(middleware.Throttle(cfg.ThrottleRequests))
	}

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Content-Length"},
		MaxAge:         300, // Preflight cache time (second)
	}))

	router.Routes(r, router.Options{
		Service:     paymentService,
		Validator:   validate.NewPaymentValidator(paymentService.Providers()),
		RateLimiter: rateLimiter,
		APIKey:      cfg.APIKey,
		Version:     version,
		Environment: cfg.Environment,
	})

	// Not Found
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotFound, "Not Found", nil)
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           r,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Create a context that listens for interrupt and terminate signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server stopped", err)
		}
	}()

	logger.Info("API is running", logger.LogContext{
		Fields: map[string]any{
			"port":      cfg.Port,
			"providers": paymentService.Providers(),
		},
	})

	// Block until a signal is received
	<-ctx.Done()

	logger.Info("Shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", err)
	}
}
