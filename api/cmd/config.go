package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type config struct {
	Version struct {
		Build string `json:"build"`
		Desc  string `json:"desc"`
	} `json:"version"`

	Web struct {
		ReadTimeout        time.Duration `envconfig:"WEB_READ_TIMEOUT" default:"5s"`
		WriteTimeout       time.Duration `envconfig:"WEB_WRITE_TIMEOUT" default:"10s"`
		IdleTimeout        time.Duration `envconfig:"WEB_IDLE_TIMEOUT" default:"120s"`
		ShutdownTimeout    time.Duration `envconfig:"WEB_SHUTDOWN_TIMEOUT" default:"20s"`
		APIHost            string        `envconfig:"WEB_API_HOST" default:"0.0.0.0:3000"`
		DebugHost          string        `envconfig:"WEB_DEBUG_HOST" default:"0.0.0.0:3010"`
		CORSAllowedOrigins []string      `envconfig:"WEB_CORS_ALLOWED_ORIGINS"`
	}
	DB struct {
		User         string `envconfig:"DB_USER" default:"app"`
		Password     string `envconfig:"DB_PASSWORD" default:"app"`
		Host         string `envconfig:"DB_HOST" default:"localhost"`
		Name         string `envconfig:"DB_NAME" default:"sassstore"`
		MaxIdleConns int    `envconfig:"DB_MAX_IDLE_CONNS" default:"2"`
		MaxOpenConns int    `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
		DisableTLS   bool   `envconfig:"DB_DISABLE_TLS" default:"true"`

		// AllowPrivileged lets the service start on a role that bypasses row
		// level security. Only local development should set it.
		AllowPrivileged bool `envconfig:"DB_ALLOW_PRIVILEGED" default:"false"`
	}
	Auth struct {
		KeysFolder   string        `envconfig:"AUTH_KEYS_FOLDER" default:"zarf/keys/"`
		ActiveKID    string        `envconfig:"AUTH_ACTIVE_KID" default:"54bb2165-71e1-41a6-af3e-7da4a0e1e2c1"`
		Issuer       string        `envconfig:"AUTH_ISSUER" default:"sass-store"`
		TokenTTL     time.Duration `envconfig:"AUTH_TOKEN_TTL" default:"24h"`
		CookieName   string        `envconfig:"AUTH_COOKIE_NAME" default:"sid"`
		UserCacheTTL time.Duration `envconfig:"AUTH_USER_CACHE_TTL" default:"1m"`
	}
	Tenancy struct {
		BaseDomain    string        `envconfig:"TENANCY_BASE_DOMAIN"`
		CacheTTL      time.Duration `envconfig:"TENANCY_CACHE_TTL" default:"1m"`
		CacheCapacity int           `envconfig:"TENANCY_CACHE_CAPACITY" default:"1000"`
	}
	RateLimit struct {
		RPS   float64 `envconfig:"RATELIMIT_RPS" default:"20"`
		Burst int     `envconfig:"RATELIMIT_BURST" default:"40"`
	}
	Tempo struct {
		Host        string  `envconfig:"TEMPO_HOST"`
		ServiceName string  `envconfig:"TEMPO_SERVICE_NAME" default:"tenancy-api"`
		Probability float64 `envconfig:"TEMPO_PROBABILITY" default:"0.05"`
	}
}

// loadConfig reads an optional .env file and then the environment. Values
// already present in the environment win over the file.
func loadConfig() (config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config{}, fmt.Errorf("loading .env: %w", err)
	}

	var cfg config
	cfg.Version.Build = build
	cfg.Version.Desc = "tenant isolation boundary for the salon storefronts"

	if err := envconfig.Process("", &cfg); err != nil {
		return config{}, fmt.Errorf("processing config: %w", err)
	}

	return cfg, nil
}

// String renders the config for the startup log with secrets masked.
func (cfg config) String() string {
	cfg.DB.Password = "[MASKED]"

	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Sprintf("%+v", cfg.Version)
	}
	return string(data)
}
