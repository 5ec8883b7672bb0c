package cmd

import (
	"fmt"
	"os"

	"github.com/illarion/pph/internal/keyring"
)

// Forget removes profiles from the vault and from the keyring
func Forget(app *App, profiles []string) {
	if len(profiles) == 0 {
		fmt.Fprintf(os.Stderr, "Error: forget requires at least one profile\n")
		fmt.Fprintf(os.Stderr, "Usage: pph forget <profile> [profile...]\n")
		os.Exit(1)
	}

	vault := app.Vault()
	for _, name := range profiles {
		if err := vault.Forget(name); err != nil {
			HandleError(err)
		}
		// Not critical
		_ = keyring.DeleteRecoveryKey(name)
		fmt.Printf("forgot: %s\n", name)
	}
}
