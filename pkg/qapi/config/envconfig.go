package config

import (
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/quatton/jobsched/pkg/qapi/utils"
	"github.com/quatton/jobsched/pkg/qlog"
)

const (
	AuthBackendStatic = "static"
	AuthBackendDB     = "db"
)

type EnvConfig struct {
	Port            string        `envconfig:"PORT" default:"5000"`
	BaseURL         string        `envconfig:"BASE_URL" default:"http://localhost:5000"`
	Environment     string        `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel        string        `envconfig:"LOG_LEVEL"`
	LogFormat       string        `envconfig:"LOG_FORMAT" default:"text"`
	ApplicationRoot string        `envconfig:"APPLICATION_ROOT" default:"/"`
	PBSExecPath     string        `envconfig:"PBS_EXEC_PATH" default:"/opt/pbs"`
	PBSServer       string        `envconfig:"PBS_SERVER"`
	ExecTimeout     time.Duration `envconfig:"EXEC_TIMEOUT" default:"30s"`
	AuthBackend     string        `envconfig:"AUTH_BACKEND" default:"static"`
	AuthUsers       string        `envconfig:"AUTH_USERS"`
	AuthCacheTTL    time.Duration `envconfig:"AUTH_CACHE_TTL" default:"5m"`
	ValkeyAddr      string        `envconfig:"VALKEY_ADDR"`
	ValkeyPassword  string        `envconfig:"VALKEY_PASSWORD"`
	ValkeyDB        int           `envconfig:"VALKEY_DB" default:"0"`
	DBHost          string        `envconfig:"DB_HOST" default:"localhost"`
	DBPort          int           `envconfig:"DB_PORT" default:"5432"`
	DBUser          string        `envconfig:"DB_USER" default:"jobsched"`
	DBPassword      string        `envconfig:"DB_PASSWORD" default:"password"`
	DBName          string        `envconfig:"DB_NAME" default:"jobsched"`
	DBSSLMode       string        `envconfig:"DB_SSLMODE" default:"disable"`
}

func ValidateEnv() (*EnvConfig, error) {
	if utils.IsDev() {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found")
		} else {
			log.Println("Loaded .env file")
		}
	}

	var cfg EnvConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot, and fills LOG_LEVEL's
// environment dependent default.
func (c *EnvConfig) Validate() error {
	var errors []string

	if c.LogLevel == "" {
		c.LogLevel = "info"
		if strings.EqualFold(c.Environment, "development") {
			c.LogLevel = "debug"
		}
	}
	if _, err := qlog.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, "  LOG_LEVEL must be one of debug, info, warn, error")
	}
	if _, err := qlog.ParseFormat(c.LogFormat); err != nil {
		errors = append(errors, "  LOG_FORMAT must be text or json")
	}

	if _, err := url.ParseRequestURI(c.BaseURL); err != nil {
		errors = append(errors, "  BASE_URL must be a valid URL")
	}

	if !strings.HasPrefix(c.ApplicationRoot, "/") {
		errors = append(errors, "  APPLICATION_ROOT must start with /")
	}

	if c.ExecTimeout < 0 {
		errors = append(errors, "  EXEC_TIMEOUT must not be negative")
	}

	switch c.AuthBackend {
	case AuthBackendStatic:
		if c.AuthUsers == "" {
			errors = append(errors, "  AUTH_USERS is required when AUTH_BACKEND=static")
		}
	case AuthBackendDB:
	default:
		errors = append(errors, "  AUTH_BACKEND must be static or db")
	}

	if len(errors) > 0 {
		return fmt.Errorf("environment validation failed:\n%s", strings.Join(errors, "\n"))
	}
	return nil
}

// Prefix is APPLICATION_ROOT without its trailing slash; "" for "/".
func (c *EnvConfig) Prefix() string {
	return strings.TrimRight(c.ApplicationRoot, "/")
}

func MaskSecret(secret string) string {
	if secret == "" {
		return "<not set>"
	}
	if len(secret) <= 8 {
		return "***"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}

func (c *EnvConfig) Print(fmtr func(string, ...interface{})) {
	fmtr("Configuration:\n")
	fmtr("  Environment: %s\n", c.Environment)
	fmtr("  Port: %s\n", c.Port)
	fmtr("  Base URL: %s\n", c.BaseURL)
	fmtr("  Application root: %s\n", c.ApplicationRoot)
	fmtr("  Log: %s (%s)\n", c.LogLevel, c.LogFormat)
	fmtr("  PBS: %s (server=%q, timeout=%s)\n", c.PBSExecPath, c.PBSServer, c.ExecTimeout)
	fmtr("  Auth backend: %s\n", c.AuthBackend)
	if c.AuthBackend == AuthBackendDB {
		fmtr("  Database: %s@%s:%d/%s (sslmode=%s, password=%s)\n",
			c.DBUser, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode, MaskSecret(c.DBPassword))
	}
	switch {
	case c.AuthCacheTTL <= 0:
		fmtr("  Credential cache: disabled\n")
	case c.ValkeyAddr != "":
		fmtr("  Credential cache: valkey %s db=%d (ttl=%s)\n", c.ValkeyAddr, c.ValkeyDB, c.AuthCacheTTL)
	default:
		fmtr("  Credential cache: memory (ttl=%s)\n", c.AuthCacheTTL)
	}
}
