package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultRequestExpiry      = "72h"
	defaultBuyerVaultCooldown = "48h"
	defaultVaultAccessWindow  = "720h" // 30 days
	defaultJWTTTL             = "24h"
	defaultHTTPAddr           = ":8080"
)

type Config struct {
	DatabaseURL      string
	JWTSecret        string
	JWTTTL           time.Duration
	Environment      string
	HTTPAddr         string
	PaymentPassword2 string

	// Lifecycle windows. The 72h pending window and the 48h buyer-vault
	// cooldown are intentionally different values.
	RequestExpiry      time.Duration
	BuyerVaultCooldown time.Duration
	VaultAccessWindow  time.Duration
}

func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err == nil {
		log.Println("loaded configuration from .env file")
	}

	cfg := &Config{
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		Environment:      envOrDefault("ENV", "development"),
		HTTPAddr:         envOrDefault("HTTP_ADDR", defaultHTTPAddr),
		PaymentPassword2: os.Getenv("PAYMENT_PASSWORD2"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required but not set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}

	var err error
	if cfg.JWTTTL, err = durOrDefault("JWT_TTL", defaultJWTTTL); err != nil {
		return nil, err
	}
	if cfg.RequestExpiry, err = durOrDefault("REQUEST_EXPIRY", defaultRequestExpiry); err != nil {
		return nil, err
	}
	if cfg.BuyerVaultCooldown, err = durOrDefault("BUYER_VAULT_COOLDOWN", defaultBuyerVaultCooldown); err != nil {
		return nil, err
	}
	if cfg.VaultAccessWindow, err = durOrDefault("VAULT_ACCESS_WINDOW", defaultVaultAccessWindow); err != nil {
		return nil, err
	}

	return cfg, nil
}

func envOrDefault(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

func durOrDefault(name, def string) (time.Duration, error) {
	raw := envOrDefault(name, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return d, nil
}
