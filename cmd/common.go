package cmd

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/illarion/pph/internal/config"
	"github.com/illarion/pph/internal/core"
	"github.com/illarion/pph/internal/keyring"
	"github.com/illarion/pph/internal/metadata"
	"github.com/illarion/pph/internal/security"
)

// App bundles what every command needs.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Hardener *core.Hardener
}

// NewApp loads configuration from .env and PPH_* variables, exiting on
// invalid settings.
func NewApp() *App {
	cfg, err := config.Load(config.DefaultEnvFile)
	if err != nil {
		HandleError(err)
	}
	logger := cfg.NewLogger(os.Stderr)
	return &App{
		Config: cfg,
		Logger: logger,
		Hardener: core.New(core.Options{
			Iterations: cfg.Iterations,
			GuessRate:  cfg.GuessRate,
			Logger:     logger,
		}),
	}
}

// Vault returns the configured recovery vault.
func (a *App) Vault() *core.Vault {
	return core.NewVault(a.Config.VaultPath, a.Hardener, &a.Config.Argon2)
}

// MetadataFlags registers one flag per metadata field on fs.
func MetadataFlags(fs *flag.FlagSet) *metadata.Record {
	r := &metadata.Record{}
	fs.StringVar(&r.HouseName, "house-name", "", "House or street name")
	fs.StringVar(&r.PhoneSuffix, "phone-suffix", "", "Last digits of a phone number")
	fs.StringVar(&r.CoreMemory, "core-memory", "", "A memorable phrase")
	fs.StringVar(&r.HandleName, "handle-name", "", "A username or handle")
	fs.StringVar(&r.BirthdayToken, "birthday-token", "", "A date token such as 0315")
	fs.StringVar(&r.Custom, "custom", "", "Any other value")
	return r
}

// GetPassword retrieves the password from PPH_PASSWORD or prompts for it.
// The caller is responsible for calling crypto.ClearBytes on the result.
func GetPassword(prompt string) ([]byte, error) {
	if password := core.GetPasswordFromEnv(); password != nil {
		return password, nil
	}
	return core.ReadPassword(prompt)
}

// GetPasswordOrExit is like GetPassword but exits on error
func GetPasswordOrExit(prompt string) []byte {
	password, err := GetPassword(prompt)
	if err != nil {
		HandleError(err)
	}
	return password
}

// GetPasswordConfirmed is like GetPassword but asks twice when prompting
func GetPasswordConfirmed(prompt string) []byte {
	if password := core.GetPasswordFromEnv(); password != nil {
		return password
	}
	password, err := core.ReadPasswordConfirm(prompt)
	if err != nil {
		HandleError(err)
	}
	return password
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		HandleError(err)
	}
	fmt.Println(string(data))
}

// HandleError prints err with a hint where one helps, and exits
func HandleError(err error) {
	switch {
	case errors.Is(err, core.ErrNotInitialized):
		fmt.Fprintf(os.Stderr, "Error: no pph vault found\n")
		fmt.Fprintf(os.Stderr, "Run 'pph harden --save <profile>' to create one\n")
	case errors.Is(err, core.ErrProfileNotFound):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		fmt.Fprintf(os.Stderr, "Use 'pph status' to list profiles\n")
	case errors.Is(err, core.ErrProfileExists):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		fmt.Fprintf(os.Stderr, "Use --overwrite to replace it\n")
	case errors.Is(err, core.ErrWrongCredentials):
		fmt.Fprintf(os.Stderr, "Error: password or metadata do not match this profile\n")
	case errors.Is(err, core.ErrPasswordRequired):
		fmt.Fprintf(os.Stderr, "Error: password required (prompt or %s)\n", core.PasswordEnv)
	case errors.Is(err, security.ErrFileExists):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		fmt.Fprintf(os.Stderr, "Recovery files are never overwritten, choose another path\n")
	case errors.Is(err, keyring.ErrNotFound):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		fmt.Fprintf(os.Stderr, "Use 'pph keyring save <profile>' first\n")
	default:
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
	os.Exit(1)
}

func formatSize(size int64) string {
	const (
		KB = 1024
		MB = KB * 1024
	)

	switch {
	case size >= MB:
		return fmt.Sprintf("%.1f MB", float64(size)/MB)
	case size >= KB:
		return fmt.Sprintf("%.1f KB", float64(size)/KB)
	default:
		return fmt.Sprintf("%d bytes", size)
	}
}
