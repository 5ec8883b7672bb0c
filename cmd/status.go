package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/illarion/pph/internal/core"
	"github.com/illarion/pph/internal/git"
	"github.com/illarion/pph/internal/keyring"
)

// Status shows the vault, its profiles and git exposure
func Status(ctx context.Context, app *App) {
	status, err := app.Vault().Status(ctx)
	if errors.Is(err, core.ErrNotInitialized) {
		fmt.Printf("No vault found at %s\n", app.Config.VaultPath)
		fmt.Println("Run 'pph harden --save <profile>' to create one")
		return
	}
	if err != nil {
		HandleError(err)
	}

	fmt.Printf("Vault: %s (%s", status.Path, formatSize(status.Size))
	if !status.LastModified.IsZero() {
		fmt.Printf(", modified %s", status.LastModified.Format(time.RFC3339))
	}
	fmt.Println(")")

	fmt.Println("\nProfiles:")
	if len(status.Profiles) == 0 {
		fmt.Println("  (none)")
	}
	for _, p := range status.Profiles {
		stored := ""
		if keyring.HasRecoveryKey(p.Name) {
			stored = ", in keyring"
		}
		fmt.Printf("  %s (%d iterations, created %s%s)\n", p.Name, p.Iterations, p.Created.Format("2006-01-02"), stored)
	}

	fmt.Print(git.Format(status.Git))
}
