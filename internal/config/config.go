package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const minSecretKeyLength = 32

var insecureSecretKeys = map[string]struct{}{
	"change_me_in_production":                    {},
	"replace_with_at_least_32_random_characters": {},
}

type Config struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	SecretKey       string        `env:"SECRET_KEY"`
	TokenTTL        time.Duration `env:"TOKEN_TTL" envDefault:"168h"`
	DBDriver        string        `env:"DB_DRIVER" envDefault:"sqlite"`
	DBPath          string        `env:"DB_PATH" envDefault:"data/skinior.db"`
	DatabaseURL     string        `env:"DATABASE_URL"`
	Timezone        string        `env:"TZ" envDefault:"UTC"`
	DefaultLanguage string        `env:"DEFAULT_LANGUAGE" envDefault:"en"`
	LogMode         string        `env:"LOG_MODE" envDefault:"development"`
	CORSOrigins     []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	RedisAddr       string        `env:"REDIS_ADDR"`
	RedisPassword   string        `env:"REDIS_PASSWORD"`
	RedisDB         int           `env:"REDIS_DB" envDefault:"0"`

	FCM    FCMConfig
	Export ExportStorageConfig
	OTel   OTelConfig
}

type FCMConfig struct {
	ProjectID       string `env:"FCM_PROJECT_ID"`
	CredentialsFile string `env:"FCM_CREDENTIALS_FILE"`
	CredentialsJSON string `env:"FCM_CREDENTIALS_JSON"`
}

type ExportStorageConfig struct {
	Endpoint      string        `env:"EXPORT_S3_ENDPOINT"`
	Region        string        `env:"EXPORT_S3_REGION" envDefault:"us-east-1"`
	Bucket        string        `env:"EXPORT_S3_BUCKET" envDefault:"skinior-exports"`
	AccessKey     string        `env:"EXPORT_S3_ACCESS_KEY"`
	SecretKey     string        `env:"EXPORT_S3_SECRET_KEY"`
	UseSSL        bool          `env:"EXPORT_S3_USE_SSL" envDefault:"false"`
	PresignExpiry time.Duration `env:"EXPORT_S3_PRESIGN_EXPIRY" envDefault:"15m"`
}

type OTelConfig struct {
	ServiceName string  `env:"OTEL_SERVICE_NAME" envDefault:"skinior-api"`
	Environment string  `env:"OTEL_ENVIRONMENT" envDefault:"development"`
	Endpoint    string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Insecure    bool    `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"false"`
	Stdout      bool    `env:"OTEL_TRACES_STDOUT" envDefault:"false"`
	SampleRatio float64 `env:"OTEL_SAMPLER_RATIO" envDefault:"0.1"`
}

// Load reads the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg *Config) Validate() error {
	secret, err := ValidateSecretKey(cfg.SecretKey)
	if err != nil {
		return err
	}
	cfg.SecretKey = secret

	port, err := ValidatePort(cfg.Port)
	if err != nil {
		return err
	}
	cfg.Port = port

	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	switch cfg.DBDriver {
	case "", "sqlite":
		cfg.DBDriver = "sqlite"
		if strings.TrimSpace(cfg.DBPath) == "" {
			return errors.New("DB_PATH is required for the sqlite driver")
		}
	case "postgres":
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return errors.New("DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", cfg.DBDriver)
	}

	if cfg.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if cfg.OTel.SampleRatio < 0 || cfg.OTel.SampleRatio > 1 {
		return errors.New("OTEL_SAMPLER_RATIO must be between 0 and 1")
	}
	return nil
}

// DSN returns the connection string for the configured driver.
func (cfg Config) DSN() string {
	if cfg.DBDriver == "postgres" {
		return cfg.DatabaseURL
	}
	return cfg.DBPath
}

func ValidateSecretKey(raw string) (string, error) {
	secret := strings.TrimSpace(raw)
	if secret == "" {
		return "", errors.New("SECRET_KEY is required")
	}
	if _, insecure := insecureSecretKeys[strings.ToLower(secret)]; insecure {
		return "", errors.New("SECRET_KEY uses an insecure placeholder value")
	}
	if len(secret) < minSecretKeyLength {
		return "", fmt.Errorf("SECRET_KEY must be at least %d characters", minSecretKeyLength)
	}
	return secret, nil
}

func ValidatePort(raw string) (string, error) {
	port := strings.TrimSpace(raw)
	if port == "" {
		return "8080", nil
	}
	value, err := strconv.Atoi(port)
	if err != nil || value < 1 || value > 65535 {
		return "", fmt.Errorf("PORT must be a number between 1 and 65535, got %q", port)
	}
	return port, nil
}
