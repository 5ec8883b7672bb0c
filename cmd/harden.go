package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/illarion/pph/internal/core"
	"github.com/illarion/pph/internal/crypto"
	"github.com/illarion/pph/internal/keyring"
	"github.com/illarion/pph/internal/metadata"
	"github.com/illarion/pph/internal/strength"
)

// HardenOptions are the flags of the harden command.
type HardenOptions struct {
	Save         string // profile name, empty to skip the vault
	Overwrite    bool
	RecoveryFile string
	Keyring      bool
	JSON         bool
}

type hardenOutput struct {
	Hardened      *core.Hardened    `json:"hardened"`
	SecretKey     string            `json:"secret_key"`
	Analysis      *core.Analysis    `json:"analysis"`
	MetadataHints map[string]string `json:"metadata_hints"`
}

// Validate rejects flag combinations that cannot be honoured.
func (o HardenOptions) Validate() error {
	if o.Keyring && o.Save == "" {
		return fmt.Errorf("%w: --keyring requires --save <profile>", crypto.ErrInvalidInput)
	}
	if o.Overwrite && o.Save == "" {
		return fmt.Errorf("%w: --overwrite requires --save <profile>", crypto.ErrInvalidInput)
	}
	return nil
}

// Harden derives the hardened variants of a prompted password
func Harden(app *App, r metadata.Record, opts HardenOptions) {
	if err := opts.Validate(); err != nil {
		HandleError(err)
	}

	password := GetPasswordConfirmed("Enter base password: ")
	defer crypto.ClearBytes(password)

	hd, err := app.Hardener.Harden(password, r)
	if err != nil {
		HandleError(err)
	}
	analysis, err := app.Hardener.AnalyzeHardened(password, r, hd)
	if err != nil {
		HandleError(err)
	}

	if opts.Save != "" {
		if _, err := app.Vault().SaveProfile(opts.Save, r, hd, opts.Overwrite); err != nil {
			HandleError(err)
		}
	}
	rec := core.NewRecovery(opts.Save, r, hd)
	if opts.RecoveryFile != "" {
		if err := core.WriteRecovery(".", opts.RecoveryFile, rec); err != nil {
			HandleError(err)
		}
	}
	if opts.Keyring {
		saveToKeyring(opts.Save, rec)
	}

	if opts.JSON {
		printJSON(hardenOutput{
			Hardened:      hd,
			SecretKey:     hd.SaltHex(),
			Analysis:      analysis,
			MetadataHints: metadata.Hints(r),
		})
		return
	}

	fmt.Println("Original password:")
	printReport("  ", analysis.Original)
	if analysis.Original.Pattern.ContainsHint {
		fmt.Println("  warning: the base password contains your metadata")
	}

	fmt.Println("\nHardened passwords:")
	for _, v := range crypto.Variants {
		report := analysis.Variants[v.String()]
		fmt.Printf("  %-7s %s\n", v.String()+":", hd.Variant(v))
		fmt.Printf("          %.2f bits, %s, %s\n", report.Entropy, report.Category, report.CrackTime.Display)
	}

	fmt.Println("\nRecovery:")
	fmt.Printf("  secret key: %s\n", hd.SaltHex())
	fmt.Printf("  algorithm:  %s, %d iterations\n", hd.Algorithm, hd.Iterations)
	fmt.Print(indent(metadata.FormatHints(metadata.Hints(r)), "  "))
	if opts.Save != "" {
		fmt.Printf("  saved as profile %q in %s\n", opts.Save, app.Config.VaultPath)
	}
	if opts.RecoveryFile != "" {
		fmt.Printf("  recovery file: %s\n", opts.RecoveryFile)
	}
	if opts.Save == "" && opts.RecoveryFile == "" && !opts.Keyring {
		fmt.Println("\nwarning: the secret key is not stored anywhere, write it down")
		fmt.Println("         or use --save, --recovery-file or --keyring")
	}
	fmt.Println("\nStore your base password separately, it is required for recovery.")
}

func saveToKeyring(profile string, rec *core.Recovery) {
	data, err := json.Marshal(rec)
	if err != nil {
		HandleError(err)
	}
	if err := keyring.SaveRecoveryKey(profile, string(data)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to save to keyring: %s\n", err)
		os.Exit(1)
	}
}

func printReport(prefix string, r *strength.Report) {
	fmt.Printf("%slength:     %d\n", prefix, r.Length)
	fmt.Printf("%sentropy:    %.2f bits (%s)\n", prefix, r.Entropy, joinNames(r.Charset.Names))
	fmt.Printf("%sstrength:   %s\n", prefix, r.Category)
	fmt.Printf("%scrack time: %s\n", prefix, r.CrackTime.Display)
	fmt.Printf("%spattern:    score %d/4, %s\n", prefix, r.Pattern.Score, r.Pattern.CrackTimeDisplay)
}

func joinNames(names []string) string {
	if len(names) == 0 {
		return "empty"
	}
	return strings.Join(names, ", ")
}

func indent(s, prefix string) string {
	if s == "" {
		return ""
	}
	return prefix + strings.ReplaceAll(strings.TrimSuffix(s, "\n"), "\n", "\n"+prefix) + "\n"
}
