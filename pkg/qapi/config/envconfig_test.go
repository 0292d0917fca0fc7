package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

// unsetEnv clears keys for the duration of the test.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestValidateEnv_Defaults(t *testing.T) {
	unsetEnv(t, "PORT", "PBS_EXEC_PATH", "EXEC_TIMEOUT", "AUTH_CACHE_TTL", "LOG_LEVEL",
		"LOG_FORMAT", "AUTH_BACKEND", "APPLICATION_ROOT", "BASE_URL")
	t.Setenv("ENVIRONMENT", "testing")
	t.Setenv("AUTH_USERS", "alice:$2a$10$abcdefghijklmnopqrstuv")

	cfg, err := ValidateEnv()
	if err != nil {
		t.Fatalf("ValidateEnv failed: %v", err)
	}
	if cfg.Port != "5000" {
		t.Errorf("Expected port 5000, got %s", cfg.Port)
	}
	if cfg.PBSExecPath != "/opt/pbs" {
		t.Errorf("Expected /opt/pbs, got %s", cfg.PBSExecPath)
	}
	if cfg.ExecTimeout != 30*time.Second {
		t.Errorf("Expected 30s timeout, got %s", cfg.ExecTimeout)
	}
	if cfg.AuthCacheTTL != 5*time.Minute {
		t.Errorf("Expected 5m cache ttl, got %s", cfg.AuthCacheTTL)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected info outside development, got %s", cfg.LogLevel)
	}
	if cfg.Prefix() != "" {
		t.Errorf("Expected empty prefix for /, got %q", cfg.Prefix())
	}
}

func TestValidate_Errors(t *testing.T) {
	cfg := EnvConfig{
		BaseURL:         "not a url",
		ApplicationRoot: "api",
		LogFormat:       "xml",
		AuthBackend:     "ldap",
		Environment:     "production",
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("Expected validation to fail")
	}
	for _, want := range []string{"BASE_URL", "APPLICATION_ROOT", "LOG_FORMAT", "AUTH_BACKEND"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Expected %s in %q", want, err.Error())
		}
	}
}

func TestValidate_DevelopmentDebug(t *testing.T) {
	cfg := EnvConfig{
		BaseURL:         "http://localhost:5000",
		ApplicationRoot: "/pbs-api/",
		LogFormat:       "json",
		AuthBackend:     AuthBackendDB,
		Environment:     "development",
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("Expected debug in development, got %s", cfg.LogLevel)
	}
	if cfg.Prefix() != "/pbs-api" {
		t.Errorf("Expected /pbs-api, got %s", cfg.Prefix())
	}
}

func TestMaskSecret(t *testing.T) {
	if got := MaskSecret(""); got != "<not set>" {
		t.Errorf("Expected <not set>, got %s", got)
	}
	if got := MaskSecret("short"); got != "***" {
		t.Errorf("Expected ***, got %s", got)
	}
	if got := MaskSecret("0123456789abcdef"); got != "0123...cdef" {
		t.Errorf("Expected 0123...cdef, got %s", got)
	}
}
