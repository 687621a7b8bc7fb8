package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type AuthConfig struct {
	AccessSecret string
}

type PricingConfig struct {
	DefaultHourlyRate decimal.Decimal
	DefaultVatRate    decimal.Decimal
}

type NumberingConfig struct {
	MaxAttempts int
}

type WorkerConfig struct {
	QuoteExpirySchedule string
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	Pricing     PricingConfig
	Numbering   NumberingConfig
	Worker      WorkerConfig
}

func Load() (*Config, error) {
	// A missing .env is fine; real environment variables win over it.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("HTTP_HOST", "0.0.0.0")
	v.SetDefault("HTTP_PORT", 8080)
	v.SetDefault("DB_MAX_OPEN_CONNS", 20)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", 30*time.Minute)
	v.SetDefault("PRICING_DEFAULT_HOURLY_RATE", "25")
	v.SetDefault("PRICING_DEFAULT_VAT_RATE", "0")
	v.SetDefault("NUMBERING_MAX_ATTEMPTS", 5)
	v.SetDefault("QUOTE_EXPIRY_SCHEDULE", "@every 1h")

	v.AutomaticEnv()

	_ = v.ReadInConfig()

	hourlyRate, err := decimal.NewFromString(v.GetString("PRICING_DEFAULT_HOURLY_RATE"))
	if err != nil {
		return nil, fmt.Errorf("PRICING_DEFAULT_HOURLY_RATE: %w", err)
	}
	vatRate, err := decimal.NewFromString(v.GetString("PRICING_DEFAULT_VAT_RATE"))
	if err != nil {
		return nil, fmt.Errorf("PRICING_DEFAULT_VAT_RATE: %w", err)
	}

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		Pricing: PricingConfig{
			DefaultHourlyRate: hourlyRate,
			DefaultVatRate:    vatRate,
		},
		Numbering: NumberingConfig{
			MaxAttempts: v.GetInt("NUMBERING_MAX_ATTEMPTS"),
		},
		Worker: WorkerConfig{
			QuoteExpirySchedule: v.GetString("QUOTE_EXPIRY_SCHEDULE"),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.Pricing.DefaultHourlyRate.IsNegative() {
		return fmt.Errorf("PRICING_DEFAULT_HOURLY_RATE must not be negative")
	}
	if cfg.Pricing.DefaultVatRate.IsNegative() || cfg.Pricing.DefaultVatRate.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("PRICING_DEFAULT_VAT_RATE must be between 0 and 100")
	}
	if cfg.Numbering.MaxAttempts < 1 {
		return fmt.Errorf("NUMBERING_MAX_ATTEMPTS must be at least 1")
	}
	return nil
}
