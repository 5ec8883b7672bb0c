package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/illarion/pph/internal/core"
	"github.com/illarion/pph/internal/crypto"
	"github.com/illarion/pph/internal/keyring"
	"github.com/illarion/pph/internal/metadata"
)

// RecoverSource selects where the secret key comes from. Exactly one field
// is set.
type RecoverSource struct {
	Profile string // vault profile, checked against the stored verifier
	File    string // recovery file in the working directory
	Keyring string // profile name in the OS keyring
}

// Recover regenerates one hardened variant
func Recover(app *App, src RecoverSource, r metadata.Record, variant crypto.Variant) {
	set := 0
	for _, s := range []string{src.Profile, src.File, src.Keyring} {
		if s != "" {
			set++
		}
	}
	if set != 1 {
		fmt.Fprintln(os.Stderr, "Error: use exactly one of --profile, --file or --keyring")
		os.Exit(1)
	}

	password := GetPasswordOrExit("Enter base password: ")
	defer crypto.ClearBytes(password)

	var (
		value string
		err   error
	)
	switch {
	case src.Profile != "":
		vault := app.Vault()
		value, err = vault.Recover(src.Profile, password, r, variant)
		if errors.Is(err, core.ErrWrongCredentials) {
			if p, perr := vault.Profile(src.Profile); perr == nil {
				if d := core.DiffHints(p.Hints, metadata.Hints(r)); d != "" {
					fmt.Fprintln(os.Stderr, "Metadata hints differ from the stored profile:")
					fmt.Fprint(os.Stderr, d)
				}
			}
		}
	case src.File != "":
		var rec *core.Recovery
		if rec, err = core.ReadRecovery(".", src.File); err == nil {
			value, err = app.Hardener.RecoverFromFile(password, r, rec, variant)
			printUncheckedWarning(rec, r)
		}
	default:
		var rec *core.Recovery
		if rec, err = recoveryFromKeyring(src.Keyring); err == nil {
			value, err = app.Hardener.RecoverFromFile(password, r, rec, variant)
			printUncheckedWarning(rec, r)
		}
	}
	if err != nil {
		HandleError(err)
	}

	fmt.Println(value)
}

// printUncheckedWarning notes that a recovery file cannot confirm the
// result, and shows hint differences that suggest a typo.
func printUncheckedWarning(rec *core.Recovery, r metadata.Record) {
	fmt.Fprintln(os.Stderr, "note: recovery files carry no verifier, a wrong password or metadata gives a different value")
	if d := core.DiffHints(rec.MetadataHints, metadata.Hints(r)); d != "" {
		fmt.Fprintln(os.Stderr, "Metadata hints differ from the recovery file:")
		fmt.Fprint(os.Stderr, d)
	}
}

func recoveryFromKeyring(profile string) (*core.Recovery, error) {
	secret, err := keyring.GetRecoveryKey(profile)
	if err != nil {
		return nil, err
	}
	var rec core.Recovery
	if err := json.Unmarshal([]byte(secret), &rec); err != nil {
		return nil, fmt.Errorf("%w: keyring entry for %s is not a recovery record", core.ErrInvalidInput, profile)
	}
	return &rec, nil
}

// Verify checks a hardened value against a stored profile
func Verify(app *App, profile string, variant crypto.Variant) {
	candidate := GetPasswordOrExit(fmt.Sprintf("Hardened %s password: ", variant))
	defer crypto.ClearBytes(candidate)

	ok, err := app.Vault().Verify(profile, variant, string(candidate))
	if err != nil {
		HandleError(err)
	}
	if !ok {
		fmt.Println("no match")
		os.Exit(1)
	}
	fmt.Println("match")
}

// Export writes a profile's recovery file
func Export(app *App, profile, out string) {
	rec, err := app.Vault().ExportRecovery(profile)
	if err != nil {
		HandleError(err)
	}
	if out == "" {
		printJSON(rec)
		return
	}
	if err := core.WriteRecovery(".", out, rec); err != nil {
		HandleError(err)
	}
	fmt.Printf("Recovery info saved to %s\n", out)
	fmt.Println("IMPORTANT: store your base password separately!")
}
