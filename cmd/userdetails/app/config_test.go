package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/agentstation/userdetails/pkg/constants"
)

// TestLoadConfig_Defaults verifies defaults when nothing is configured.
func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("SUBMIT_DELAY", "")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("HTTP_PORT", "")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if config.SubmitDelay != constants.DefaultSubmitDelay {
		t.Errorf("SubmitDelay = %s, want %s", config.SubmitDelay, constants.DefaultSubmitDelay)
	}
	if config.SessionTTL != constants.DefaultSessionTTL {
		t.Errorf("SessionTTL = %s, want %s", config.SessionTTL, constants.DefaultSessionTTL)
	}
	if config.HTTPPort != constants.DefaultPort {
		t.Errorf("HTTPPort = %d, want %d", config.HTTPPort, constants.DefaultPort)
	}
	if config.LogOutput == "" {
		t.Error("LogOutput should default to stderr")
	}
}

// TestLoadConfig_Environment verifies env vars are read.
func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("SUBMIT_DELAY", "500ms")
	t.Setenv("SESSION_TTL", "2m")
	t.Setenv("HTTP_HOST", "0.0.0.0")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("RATE_LIMIT", "10")
	t.Setenv("LOG_LEVEL", "debug")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if config.SubmitDelay != 500*time.Millisecond {
		t.Errorf("SubmitDelay = %s, want 500ms", config.SubmitDelay)
	}
	if config.SessionTTL != 2*time.Minute {
		t.Errorf("SessionTTL = %s, want 2m", config.SessionTTL)
	}
	if config.HTTPHost != "0.0.0.0" {
		t.Errorf("HTTPHost = %s, want 0.0.0.0", config.HTTPHost)
	}
	if config.HTTPPort != 9090 {
		t.Errorf("HTTPPort = %d, want 9090", config.HTTPPort)
	}
	if config.RateLimit != 10 {
		t.Errorf("RateLimit = %d, want 10", config.RateLimit)
	}
	if config.EnvLogLevel != "debug" {
		t.Errorf("EnvLogLevel = %s, want debug", config.EnvLogLevel)
	}
}

// TestLoadConfigFile verifies an explicit YAML config file.
func TestLoadConfigFile(t *testing.T) {
	t.Setenv("SUBMIT_DELAY", "")
	path := filepath.Join(t.TempDir(), "userdetails.yaml")
	if err := os.WriteFile(path, []byte("submit_delay: 5s\nrate_limit: 7\n"), constants.FilePermissions); err != nil {
		t.Fatal(err)
	}

	config, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile() failed: %v", err)
	}
	if config.SubmitDelay != 5*time.Second {
		t.Errorf("SubmitDelay = %s, want 5s", config.SubmitDelay)
	}
	if config.RateLimit != 7 {
		t.Errorf("RateLimit = %d, want 7", config.RateLimit)
	}
	if config.ConfigFile != path {
		t.Errorf("ConfigFile = %s, want %s", config.ConfigFile, path)
	}
}

// TestLoadConfigFile_Missing verifies an explicit missing file is an error.
func TestLoadConfigFile_Missing(t *testing.T) {
	if _, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing config file")
	}
}

// TestConfig_UpdateFromFlags verifies flags override loaded values.
func TestConfig_UpdateFromFlags(t *testing.T) {
	config := &Config{Format: "table", EnvLogLevel: "warn"}

	config.UpdateFromFlags(true, false, true, "json", "")
	if !config.Verbose || config.Quiet || !config.NoColor {
		t.Errorf("boolean flags not applied: %+v", config)
	}
	if config.Format != "json" {
		t.Errorf("Format = %s, want json", config.Format)
	}
	if config.LogLevel != "" {
		t.Errorf("LogLevel = %s, want empty", config.LogLevel)
	}

	config.UpdateFromFlags(false, false, false, "", "error")
	if config.Format != "json" {
		t.Errorf("empty format flag must keep %q, got %q", "json", config.Format)
	}
	if config.LogLevel != "error" {
		t.Errorf("LogLevel = %s, want error", config.LogLevel)
	}
}
