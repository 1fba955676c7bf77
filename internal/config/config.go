// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Base URL of the app, used for checkout redirect targets
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Cache / sessions (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// Sessions
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"168h"`

	// Generation API (Anthropic-compatible Messages endpoint)
	AnthropicAPIKey     string `env:"ANTHROPIC_API_KEY"`
	AnthropicBaseURL    string `env:"ANTHROPIC_BASE_URL" envDefault:"https://api.anthropic.com"`
	AnthropicModel      string `env:"ANTHROPIC_MODEL" envDefault:"claude-sonnet-4-20250514"`
	GenerationMaxTokens int    `env:"GENERATION_MAX_TOKENS" envDefault:"1500"`

	// Payment processor (Stripe-compatible REST API)
	StripeSecretKey         string `env:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret     string `env:"STRIPE_WEBHOOK_SECRET"`
	StripeBaseURL           string `env:"STRIPE_BASE_URL" envDefault:"https://api.stripe.com"`
	StripePriceSubscription string `env:"STRIPE_PRICE_SUBSCRIPTION"`
	StripePricePerListing   string `env:"STRIPE_PRICE_PER_LISTING"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts. The write timeout is generous because one generate
	// request waits on six upstream model calls.
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Rate limiting for the generation endpoint
	RateLimitGenerateEnabled bool `env:"RATE_LIMIT_GENERATE_ENABLED" envDefault:"true"`
	RateLimitGenerateRPM     int  `env:"RATE_LIMIT_GENERATE_RPM" envDefault:"10"`
	RateLimitGenerateBurst   int  `env:"RATE_LIMIT_GENERATE_BURST" envDefault:"3"`

	// Rate limiting for login and register (per IP)
	RateLimitAuthEnabled bool `env:"RATE_LIMIT_AUTH_ENABLED" envDefault:"true"`
	RateLimitAuthRPS     int  `env:"RATE_LIMIT_AUTH_RPS" envDefault:"5"`
	RateLimitAuthBurst   int  `env:"RATE_LIMIT_AUTH_BURST" envDefault:"10"`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://example.com,https://app.example.com")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// ValidateForProduction checks that secrets required outside development are set.
// Development can run without keys: generation degrades to the failure
// sentinel and checkout is rejected upstream.
func (c *Config) ValidateForProduction() error {
	if !c.IsProduction() {
		return nil
	}
	if c.AnthropicAPIKey == "" {
		return errors.New("ANTHROPIC_API_KEY is required in production")
	}
	if c.StripeSecretKey == "" || c.StripeWebhookSecret == "" {
		return errors.New("STRIPE_SECRET_KEY and STRIPE_WEBHOOK_SECRET are required in production")
	}
	return nil
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
