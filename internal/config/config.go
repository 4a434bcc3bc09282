package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config is read from the environment (and a .env file when present).
// Keys are the lower-cased variable names: DB_DSN -> db_dsn.
type Config struct {
	AppPort         string `koanf:"app_port"`
	DBDSN           string `koanf:"db_dsn"`
	JWTSecret       string `koanf:"jwt_secret"`
	JWTExpiresMin   int    `koanf:"jwt_expires_min"`
	RedisAddr       string `koanf:"redis_addr"`
	RedisPassword   string `koanf:"redis_password"`
	RedisDB         int    `koanf:"redis_db"`
	FrontendBaseURL string `koanf:"frontend_base_url"`
	LogLevel        string `koanf:"log_level"`
	LogFormat       string `koanf:"log_format"`
}

// Load reads .env (ignored when missing), then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return LoadEnv()
}

// LoadEnv reads only the process environment.
func LoadEnv() (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.AppPort == "" {
		cfg.AppPort = "8080"
	}
	if cfg.JWTExpiresMin <= 0 {
		cfg.JWTExpiresMin = 10080
	}
	if cfg.RedisAddr == "" {
		cfg.RedisAddr = "localhost:6379"
	}
	if cfg.FrontendBaseURL == "" {
		cfg.FrontendBaseURL = "http://localhost:3000"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "json"
	}
}

func (c *Config) Validate() error {
	var errs []error
	if c.DBDSN == "" {
		errs = append(errs, errors.New("missing env: DB_DSN"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("missing env: JWT_SECRET"))
	}
	return errors.Join(errs...)
}
