package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"consignd"`
		Port int    `envconfig:"PORT" default:"8080"`
		// Env selects the log format: "dev" logs text, anything else JSON.
		Env string `envconfig:"APP_ENV" default:"dev"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"consignd"`
		SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
		MaxConns int    `envconfig:"DB_MAX_CONNS" default:"25"`
	}

	Server struct {
		Timeout         time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"15s"`
		CORSOrigins     []string      `envconfig:"CORS_ORIGINS" default:"http://localhost:3000"`
	}

	Auth struct {
		JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
		TokenTTL  time.Duration `envconfig:"JWT_TTL" default:"24h"`
	}

	Checkout struct {
		BaseWindow time.Duration `envconfig:"CHECKOUT_BASE_WINDOW" default:"10m"`
		Extension  time.Duration `envconfig:"CHECKOUT_EXTENSION" default:"5m"`
		Ceiling    time.Duration `envconfig:"CHECKOUT_CEILING" default:"15m"`
		TxAttempts int           `envconfig:"CHECKOUT_TX_ATTEMPTS" default:"3"`
	}

	Sweep struct {
		Interval  time.Duration `envconfig:"SWEEP_INTERVAL" default:"5m"`
		Throttle  time.Duration `envconfig:"SWEEP_THROTTLE" default:"30s"`
		BatchSize int           `envconfig:"SWEEP_BATCH_SIZE" default:"500"`
		// Disabled leaves sweeping to an external scheduler running consignctl.
		Disabled bool `envconfig:"SWEEP_DISABLED" default:"false"`
	}

	Payment struct {
		BaseURL       string        `envconfig:"PAYMENT_BASE_URL" default:"http://localhost:12111"`
		APIKey        string        `envconfig:"PAYMENT_API_KEY"`
		WebhookSecret string        `envconfig:"PAYMENT_WEBHOOK_SECRET"`
		Timeout       time.Duration `envconfig:"PAYMENT_TIMEOUT" default:"5s"`
		SuccessURL    string        `envconfig:"PAYMENT_SUCCESS_URL" default:"http://localhost:3000/checkout/success"`
		CancelURL     string        `envconfig:"PAYMENT_CANCEL_URL" default:"http://localhost:3000/checkout/cancel"`
	}

	Redis struct {
		// Addr empty keeps sweep gating in process.
		Addr     string `envconfig:"REDIS_ADDR"`
		Password string `envconfig:"REDIS_PASSWORD"`
		DB       int    `envconfig:"REDIS_DB" default:"0"`
	}

	NATS struct {
		// URL empty disables history fan-out.
		URL string `envconfig:"NATS_URL"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name, c.DB.SSLMode)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	// required only rejects an unset key, not JWT_SECRET="".
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must be set")
	}

	if c.Checkout.BaseWindow > c.Checkout.Ceiling {
		return fmt.Errorf("checkout base window %s exceeds ceiling %s", c.Checkout.BaseWindow, c.Checkout.Ceiling)
	}

	if c.Sweep.Interval <= 0 {
		return fmt.Errorf("sweep interval must be positive, got %s", c.Sweep.Interval)
	}

	return nil
}
