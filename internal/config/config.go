package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storefront configures cmd/storefront.
type Storefront struct {
	HTTPPort              string        `env:"HTTP_PORT"                   envDefault:"8080"`
	PromoCode             string        `env:"GOLDSHOP_PROMO_CODE"         envDefault:"GOLDADMIN"`
	ReviewsURL            string        `env:"GOLDSHOP_REVIEWS_URL"        envDefault:"http://localhost:8090/reviews"`
	LogsURL               string        `env:"GOLDSHOP_LOGS_URL"           envDefault:"http://localhost:8090/logs"`
	LogPollInterval       time.Duration `env:"GOLDSHOP_LOG_POLL_INTERVAL"  envDefault:"5s"`
	RequestTimeout        time.Duration `env:"GOLDSHOP_REQUEST_TIMEOUT"    envDefault:"10s"`
	SessionIdleTTL        time.Duration `env:"GOLDSHOP_SESSION_IDLE_TTL"   envDefault:"30m"`
	CatalogDBPath         string        `env:"CATALOG_DB_PATH"`
	CatalogMigrationsPath string        `env:"CATALOG_MIGRATIONS_PATH"     envDefault:"./internal/catalog/migrations"`
	OTelEndpoint          string        `env:"OTEL_EXPORTER_ENDPOINT"`
}

// StoreAPI configures cmd/storeapi.
type StoreAPI struct {
	HTTPPort       string `env:"HTTP_PORT"       envDefault:"8090"`
	DBHost         string `env:"DB_HOST"         envDefault:"localhost"`
	DBPort         int    `env:"DB_PORT"         envDefault:"5432"`
	DBUser         string `env:"DB_USER"         envDefault:"postgres"`
	DBPassword     string `env:"DB_PASSWORD"     envDefault:"postgres"`
	DBName         string `env:"DB_NAME"         envDefault:"goldshop"`
	MigrationsPath string `env:"MIGRATIONS_PATH" envDefault:"./internal/storeapi/repository/migrations"`
	RedisAddr      string `env:"REDIS_ADDR"      envDefault:"localhost:6379"`
	RedisPassword  string `env:"REDIS_PASSWORD"`

	// KafkaBrokers left empty disables the outbox publisher.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	OTelEndpoint string   `env:"OTEL_EXPORTER_ENDPOINT"`
}

// LoadStorefront reads an optional .env file and then the environment.
func LoadStorefront() (Storefront, error) {
	var cfg Storefront
	if err := parse(&cfg); err != nil {
		return Storefront{}, err
	}
	if cfg.LogPollInterval <= 0 {
		return Storefront{}, fmt.Errorf("GOLDSHOP_LOG_POLL_INTERVAL must be positive, got %v", cfg.LogPollInterval)
	}
	return cfg, nil
}

func LoadStoreAPI() (StoreAPI, error) {
	var cfg StoreAPI
	if err := parse(&cfg); err != nil {
		return StoreAPI{}, err
	}
	return cfg, nil
}

func parse(target any) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("failed to load .env: %v", err)
	}
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
