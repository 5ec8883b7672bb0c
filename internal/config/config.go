package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"net/netip"
	"os"
	"strconv"
	"strings"

	"github.com/alexedwards/argon2id"
	"github.com/illarion/pph/internal/bruteforce"
	"github.com/illarion/pph/internal/crypto"
	"github.com/illarion/pph/internal/strength"
	"github.com/joho/godotenv"
)

// Environment variables
const (
	EnvIterations   = "PPH_ITERATIONS"
	EnvGuessRate    = "PPH_GUESS_RATE"
	EnvVault        = "PPH_VAULT"
	EnvLogLevel     = "PPH_LOG_LEVEL"
	EnvLogFormat    = "PPH_LOG_FORMAT"
	EnvListen       = "PPH_LISTEN"
	EnvRedisAddr    = "PPH_REDIS_ADDR"
	EnvRedisURL     = "PPH_REDIS_URL"
	EnvRateLimit    = "PPH_RATE_LIMIT"
	EnvRateBurst    = "PPH_RATE_BURST"
	EnvMaxAttempts  = "PPH_MAX_ATTEMPTS"
	EnvArgon2Memory = "PPH_ARGON2_MEMORY"
	EnvArgon2Iter   = "PPH_ARGON2_ITER"
	EnvArgon2Par    = "PPH_ARGON2_PAR"

	// EnvTrustedProxies lists proxy addresses or CIDR ranges, comma
	// separated, whose X-Forwarded-For header is honoured.
	EnvTrustedProxies = "PPH_TRUSTED_PROXIES"
)

// DefaultEnvFile is loaded when present; a missing file is not an error.
const DefaultEnvFile = ".env"

// Config is the runtime configuration shared by the CLI and the server.
type Config struct {
	Iterations  int
	GuessRate   float64
	VaultPath   string
	LogLevel    slog.Level
	LogFormat   string // text or json
	Listen      string
	RedisAddr   string
	RedisURL    string
	RateLimit   float64 // requests per second per client
	RateBurst   int
	MaxAttempts int
	Argon2      argon2id.Params

	TrustedProxies []netip.Prefix
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Iterations:  crypto.DefaultIters,
		GuessRate:   strength.DefaultGuessRate,
		VaultPath:   ".pph",
		LogLevel:    slog.LevelWarn,
		LogFormat:   "text",
		Listen:      "127.0.0.1:8080",
		RateLimit:   5,
		RateBurst:   10,
		MaxAttempts: bruteforce.DefaultMaxAttempts,
		Argon2:      *argon2id.DefaultParams,
	}
}

// Load reads envFile into the process environment, without overriding
// variables that are already set, then builds the configuration.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}
	return FromEnv()
}

// FromEnv builds the configuration from environment variables on top of
// the defaults.
func FromEnv() (*Config, error) {
	c := Default()
	var err error

	if c.Iterations, err = envInt(EnvIterations, c.Iterations); err != nil {
		return nil, err
	}
	if c.GuessRate, err = envFloat(EnvGuessRate, c.GuessRate); err != nil {
		return nil, err
	}
	if c.MaxAttempts, err = envInt(EnvMaxAttempts, c.MaxAttempts); err != nil {
		return nil, err
	}
	if c.RateLimit, err = envFloat(EnvRateLimit, c.RateLimit); err != nil {
		return nil, err
	}
	if c.RateBurst, err = envInt(EnvRateBurst, c.RateBurst); err != nil {
		return nil, err
	}

	mem, err := envInt(EnvArgon2Memory, int(c.Argon2.Memory))
	if err != nil {
		return nil, err
	}
	iter, err := envInt(EnvArgon2Iter, int(c.Argon2.Iterations))
	if err != nil {
		return nil, err
	}
	par, err := envInt(EnvArgon2Par, int(c.Argon2.Parallelism))
	if err != nil {
		return nil, err
	}
	if mem < 8*1024 || iter < 1 || par < 1 || par > math.MaxUint8 {
		return nil, fmt.Errorf("%w: argon2 parameters out of range (memory %d KiB, iterations %d, parallelism %d)", crypto.ErrInvalidInput, mem, iter, par)
	}
	c.Argon2.Memory, c.Argon2.Iterations, c.Argon2.Parallelism = uint32(mem), uint32(iter), uint8(par)

	if v := os.Getenv(EnvLogLevel); v != "" {
		if err := c.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", crypto.ErrInvalidInput, EnvLogLevel, err)
		}
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.LogFormat = strings.ToLower(v)
	}
	if v := os.Getenv(EnvVault); v != "" {
		c.VaultPath = v
	}
	if v := os.Getenv(EnvListen); v != "" {
		c.Listen = v
	}
	c.RedisAddr = os.Getenv(EnvRedisAddr)
	c.RedisURL = os.Getenv(EnvRedisURL)
	if c.TrustedProxies, err = parseProxies(os.Getenv(EnvTrustedProxies)); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks ranges. Every failure wraps crypto.ErrInvalidInput.
func (c *Config) Validate() error {
	switch {
	case c.Iterations < crypto.MinIters:
		return fmt.Errorf("%w: %s must be at least %d, got %d", crypto.ErrInvalidInput, EnvIterations, crypto.MinIters, c.Iterations)
	case !(c.GuessRate > 0) || math.IsInf(c.GuessRate, 0):
		return fmt.Errorf("%w: %s must be a positive finite number", crypto.ErrInvalidInput, EnvGuessRate)
	case c.MaxAttempts < 1 || c.MaxAttempts > bruteforce.MaxAttemptsCeiling:
		return fmt.Errorf("%w: %s must be between 1 and %d", crypto.ErrInvalidInput, EnvMaxAttempts, bruteforce.MaxAttemptsCeiling)
	case !(c.RateLimit > 0) || math.IsInf(c.RateLimit, 0):
		return fmt.Errorf("%w: %s must be a positive finite number", crypto.ErrInvalidInput, EnvRateLimit)
	case c.RateBurst < 1:
		return fmt.Errorf("%w: %s must be at least 1", crypto.ErrInvalidInput, EnvRateBurst)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: %s must be text or json, got %q", crypto.ErrInvalidInput, EnvLogFormat, c.LogFormat)
	case c.VaultPath == "":
		return fmt.Errorf("%w: %s must not be empty", crypto.ErrInvalidInput, EnvVault)
	}
	return nil
}

// NewLogger builds the structured logger described by c.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// parseProxies accepts single addresses and CIDR ranges.
func parseProxies(v string) ([]netip.Prefix, error) {
	var out []netip.Prefix
	for _, field := range strings.Split(v, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		if strings.Contains(field, "/") {
			p, err := netip.ParsePrefix(field)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", crypto.ErrInvalidInput, EnvTrustedProxies, err)
			}
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(field)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", crypto.ErrInvalidInput, EnvTrustedProxies, err)
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.ReplaceAll(v, "_", ""))
	if err != nil {
		return 0, fmt.Errorf("%w: %s: not a number: %q", crypto.ErrInvalidInput, key, v)
	}
	return n, nil
}

func envFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: not a number: %q", crypto.ErrInvalidInput, key, v)
	}
	return f, nil
}
