package config

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/illarion/pph/internal/crypto"
)

func TestDefaults(t *testing.T) {
	c, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}
	if c.Iterations != crypto.DefaultIters || c.GuessRate != 1e9 || c.LogFormat != "text" {
		t.Errorf("Unexpected defaults %+v", c)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv(EnvIterations, "200_000")
	t.Setenv(EnvGuessRate, "1e6")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvLogFormat, "JSON")
	t.Setenv(EnvMaxAttempts, "500")
	t.Setenv(EnvRedisAddr, "localhost:6379")
	t.Setenv(EnvArgon2Memory, "16384")

	c, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}
	if c.Iterations != 200000 || c.GuessRate != 1e6 || c.MaxAttempts != 500 {
		t.Errorf("Numeric overrides not applied: %+v", c)
	}
	if c.LogLevel != slog.LevelDebug || c.LogFormat != "json" || c.RedisAddr != "localhost:6379" {
		t.Errorf("String overrides not applied: %+v", c)
	}
	if c.Argon2.Memory != 16384 {
		t.Errorf("Argon2 memory: got %d", c.Argon2.Memory)
	}
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{EnvIterations, "many"},
		{EnvIterations, "10"},
		{EnvGuessRate, "0"},
		{EnvGuessRate, "-5"},
		{EnvMaxAttempts, "0"},
		{EnvMaxAttempts, "20000000"},
		{EnvRateBurst, "0"},
		{EnvLogFormat, "xml"},
		{EnvLogLevel, "loud"},
		{EnvArgon2Par, "0"},
		{EnvTrustedProxies, "10.0.0.0/33"},
		{EnvTrustedProxies, "proxy.local"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := FromEnv(); !errors.Is(err, crypto.ErrInvalidInput) {
				t.Errorf("Expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestTrustedProxies(t *testing.T) {
	t.Setenv(EnvTrustedProxies, "10.1.2.3/8, 192.0.2.7 ,,::1")

	c, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}
	want := []string{"10.0.0.0/8", "192.0.2.7/32", "::1/128"}
	if len(c.TrustedProxies) != len(want) {
		t.Fatalf("TrustedProxies: got %v", c.TrustedProxies)
	}
	for i, p := range c.TrustedProxies {
		if p.String() != want[i] {
			t.Errorf("TrustedProxies[%d] = %s, want %s", i, p, want[i])
		}
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("PPH_VAULT=custom.pph\n"), 0600); err != nil {
		t.Fatalf("Failed to write env file: %v", err)
	}
	t.Setenv(EnvVault, "")
	os.Unsetenv(EnvVault)

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.VaultPath != "custom.pph" {
		t.Errorf("VaultPath: got %q", c.VaultPath)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("Missing env file should be ignored, got %v", err)
	}
}

func TestNewLogger(t *testing.T) {
	c := Default()
	c.LogFormat = "json"
	c.LogLevel = slog.LevelInfo

	var buf bytes.Buffer
	logger := c.NewLogger(&buf)
	logger.Debug("hidden")
	logger.Info("shown", "iterations", 1000)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("Debug record should be filtered")
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"iterations":1000`) {
		t.Errorf("Unexpected log output %q", out)
	}
}
