package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/illarion/pph/internal/bruteforce"
	"github.com/illarion/pph/internal/crypto"
)

// Analyze prints the strength report of a prompted password
func Analyze(app *App, asJSON bool) {
	password := GetPasswordOrExit("Password to analyze: ")
	defer crypto.ClearBytes(password)

	report, err := app.Hardener.AnalyzeStrength(string(password))
	if err != nil {
		HandleError(err)
	}

	if asJSON {
		printJSON(report)
		return
	}
	printReport("", report)
}

// Simulate runs the brute-force demonstration against a prompted password
func Simulate(ctx context.Context, app *App, opts bruteforce.Options, asJSON bool) {
	target := GetPasswordOrExit("Password to attack: ")
	defer crypto.ClearBytes(target)

	if opts.MaxAttempts == 0 {
		opts.MaxAttempts = app.Config.MaxAttempts
	}

	res, err := app.Hardener.Simulate(ctx, string(target), opts)
	if err != nil {
		HandleError(err)
	}

	if asJSON {
		printJSON(res)
		return
	}

	if res.Found {
		fmt.Printf("Found after %d attempts\n", res.Attempts)
	} else {
		fmt.Printf("Not found in %d attempts\n", res.Attempts)
	}
	fmt.Printf("Strategy:      %s\n", res.Strategy)
	fmt.Printf("Alphabet:      %d characters, search space 2^%.1f\n", res.AlphabetSize, res.Log2SearchSpace)
	fmt.Printf("Elapsed:       %s (%.0f attempts/s)\n", res.Elapsed.Round(time.Microsecond), res.AttemptsPerSec)
}
