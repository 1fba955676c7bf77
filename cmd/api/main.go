// Package main is the entrypoint for the ListKit API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	// Loads .env into the environment before config parsing.
	_ "github.com/joho/godotenv/autoload"

	"github.com/listkit/listkit/internal/billing"
	"github.com/listkit/listkit/internal/cache"
	"github.com/listkit/listkit/internal/config"
	"github.com/listkit/listkit/internal/genai"
	"github.com/listkit/listkit/internal/handler"
	"github.com/listkit/listkit/internal/metrics"
	"github.com/listkit/listkit/internal/middleware"
	"github.com/listkit/listkit/internal/repository"
	"github.com/listkit/listkit/internal/server"
	"github.com/listkit/listkit/internal/service"
	"github.com/listkit/listkit/internal/usage"
)

func main() {
	// Initialize context
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.ValidateForProduction(); err != nil {
		slog.Error("invalid production config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	// Initialize cache
	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	// Upstream clients
	generator := genai.NewClient(genai.ClientConfig{
		BaseURL:   cfg.AnthropicBaseURL,
		APIKey:    cfg.AnthropicAPIKey,
		Model:     cfg.AnthropicModel,
		MaxTokens: cfg.GenerationMaxTokens,
	})
	processor := billing.NewClient(billing.ClientConfig{
		BaseURL:   cfg.StripeBaseURL,
		SecretKey: cfg.StripeSecretKey,
	})

	// Usage pipeline
	metricsRecorder := metrics.NewNoop()
	publisher := usage.NewPublisher(cacheClient.Client(), logger, metricsRecorder)
	worker := usage.NewWorker(
		cacheClient.Client(),
		repository.NewUsageEventRepository(repo),
		logger,
		usage.NewConsumerID(),
		metricsRecorder,
	)

	// Initialize services
	entitlements := service.NewEntitlementChecker(repo, metricsRecorder)
	accounts := service.NewAccountService(repo, cacheClient, cfg.SessionTTL, logger)
	generations := service.NewGenerationService(repo, entitlements, generator, publisher, logger, metricsRecorder)
	events := service.NewBillingService(repo, logger, metricsRecorder)
	checkout := service.NewCheckoutService(
		repo, processor,
		cfg.StripePriceSubscription, cfg.StripePricePerListing,
		cfg.BaseURL, logger,
	)
	profiles := service.NewProfileService(repo, entitlements)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	authHandler := handler.NewAuthHandler(accounts, logger, cfg.SessionTTL, cfg.IsProduction())
	listingHandler := handler.NewListingHandler(generations, logger)
	profileHandler := handler.NewProfileHandler(profiles, logger)
	billingHandler := handler.NewBillingHandler(checkout, events, cfg.StripeWebhookSecret, logger, metricsRecorder)

	// Setup router
	r := setupRouter(routerDeps{
		health:  healthHandler,
		auth:    authHandler,
		listing: listingHandler,
		profile: profileHandler,
		billing: billingHandler,
		cache:   cacheClient,
		cfg:     cfg,
		logger:  logger,
	})

	// Create and run server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)
	srv.OnShutdown("usage worker", worker.Shutdown)

	go func() {
		if err := worker.Run(ctx); err != nil && err != context.Canceled {
			logger.Error("usage worker exited", "error", err)
		}
	}()

	logger.Info("starting server",
		"port", cfg.AppPort,
		"base_url", cfg.BaseURL,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type routerDeps struct {
	health  *handler.HealthHandler
	auth    *handler.AuthHandler
	listing *handler.ListingHandler
	profile *handler.ProfileHandler
	billing *handler.BillingHandler
	cache   *cache.Cache
	cfg     *config.Config
	logger  *slog.Logger
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(deps routerDeps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.logger))
	r.Use(middleware.Recoverer(deps.logger))
	r.Use(middleware.Security(middleware.SecurityConfig{
		IsDevelopment:      deps.cfg.IsDevelopment(),
		AllowedOrigins:     deps.cfg.GetCORSAllowedOrigins(),
		MaxRequestBodySize: deps.cfg.MaxRequestBodySize,
	}))

	// Health endpoints (no auth required)
	r.Get("/healthz", deps.health.Healthz)
	r.Get("/readyz", deps.health.Readyz)

	authCfg := middleware.SessionAuthConfig{
		Logger: deps.logger,
		Cache:  deps.cache,
	}

	rateLimitCfg := middleware.RateLimitConfig{
		Logger:          deps.logger,
		Cache:           deps.cache,
		GenerateEnabled: deps.cfg.RateLimitGenerateEnabled,
		GenerateRPM:     deps.cfg.RateLimitGenerateRPM,
		GenerateBurst:   deps.cfg.RateLimitGenerateBurst,
		AuthEnabled:     deps.cfg.RateLimitAuthEnabled,
		AuthRPS:         deps.cfg.RateLimitAuthRPS,
		AuthBurst:       deps.cfg.RateLimitAuthBurst,
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Credential endpoints are public but rate limited per IP
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimitAuth(rateLimitCfg))
			r.Post("/auth/register", deps.auth.Register)
			r.Post("/auth/login", deps.auth.Login)
		})

		// Everything else requires a session
		r.Group(func(r chi.Router) {
			r.Use(middleware.SessionAuth(authCfg))

			r.Post("/auth/logout", deps.auth.Logout)

			r.With(middleware.RateLimitGenerate(rateLimitCfg)).Post("/generate", deps.listing.Generate)
			r.Get("/listings", deps.listing.List)
			r.Get("/listings/{id}", deps.listing.Get)

			r.Get("/profile", deps.profile.Get)
			r.Put("/profile", deps.profile.Update)

			r.Post("/billing/checkout", deps.billing.Checkout)
		})
	})

	// Processor webhook, authenticated by signature instead of session
	r.Post("/webhooks/billing", deps.billing.Webhook)

	// 404 and 405 handlers
	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
