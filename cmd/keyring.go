package cmd

import (
	"fmt"
	"os"

	"github.com/illarion/pph/internal/keyring"
)

// KeyringSave copies a vault profile's recovery data into the OS keyring
func KeyringSave(app *App, profile string) {
	rec, err := app.Vault().ExportRecovery(profile)
	if err != nil {
		HandleError(err)
	}
	saveToKeyring(profile, rec)
	fmt.Printf("Recovery key for %s saved to keyring\n", profile)
}

// KeyringDelete removes a profile's recovery data from the OS keyring
func KeyringDelete(profile string) {
	if err := keyring.DeleteRecoveryKey(profile); err != nil {
		fmt.Printf("No recovery key for %s stored in keyring\n", profile)
		return
	}
	fmt.Printf("Recovery key for %s removed from keyring\n", profile)
}

// KeyringStatus checks if a profile's recovery data is in the keyring
func KeyringStatus(profile string) {
	if keyring.HasRecoveryKey(profile) {
		fmt.Printf("%s: stored in keyring\n", profile)
	} else {
		fmt.Printf("%s: not stored\n", profile)
	}
}

// KeyringUsage prints the keyring subcommands and exits
func KeyringUsage() {
	fmt.Fprintln(os.Stderr, "Usage: pph keyring <save|delete|status> <profile>")
	os.Exit(1)
}
