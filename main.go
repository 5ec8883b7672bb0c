package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/illarion/pph/cmd"
	"github.com/illarion/pph/internal/bruteforce"
	"github.com/illarion/pph/internal/crypto"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "harden":
		runHarden(ctx, os.Args[2:])
	case "analyze":
		runAnalyze(ctx, os.Args[2:])
	case "simulate":
		runSimulate(ctx, os.Args[2:])
	case "recover":
		runRecover(ctx, os.Args[2:])
	case "verify":
		runVerify(ctx, os.Args[2:])
	case "export":
		runExport(ctx, os.Args[2:])
	case "status":
		runStatus(ctx, os.Args[2:])
	case "forget":
		runForget(ctx, os.Args[2:])
	case "compact":
		runCompact(ctx, os.Args[2:])
	case "keyring":
		runKeyring(ctx, os.Args[2:])
	case "serve":
		runServe(ctx, os.Args[2:])
	case "completion":
		runCompletion(ctx, os.Args[2:])
	case "help", "-h", "--help":
		if len(os.Args) <= 2 {
			printUsage()
			return
		}
		printCommandHelp(os.Args[2])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func parse(fs *flag.FlagSet, args []string) {
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func parseVariant(s string) crypto.Variant {
	v, err := crypto.ParseVariant(s)
	if err != nil {
		cmd.HandleError(err)
	}
	return v
}

func runHarden(_ context.Context, args []string) {
	fs := flag.NewFlagSet("harden", flag.ExitOnError)
	record := cmd.MetadataFlags(fs)
	var opts cmd.HardenOptions
	fs.StringVar(&opts.Save, "save", "", "Save salt, hints and verifiers as a vault profile")
	fs.BoolVar(&opts.Overwrite, "overwrite", false, "Replace an existing profile")
	fs.StringVar(&opts.RecoveryFile, "recovery-file", "", "Write a recovery file (path inside the working directory)")
	fs.BoolVar(&opts.Keyring, "keyring", false, "Store the recovery key in the OS keyring (requires --save)")
	fs.BoolVar(&opts.JSON, "json", false, "Print JSON")
	parse(fs, args)

	cmd.Harden(cmd.NewApp(), *record, opts)
}

func runAnalyze(_ context.Context, args []string) {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	asJSON := fs.Bool("json", false, "Print JSON")
	parse(fs, args)

	cmd.Analyze(cmd.NewApp(), *asJSON)
}

func runSimulate(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("simulate", flag.ExitOnError)
	maxAttempts := fs.Int("max-attempts", 0, "Attempt limit (default PPH_MAX_ATTEMPTS or 10000)")
	strategy := fs.String("strategy", "sequential", "Guess order: sequential or random")
	seed := fs.Uint64("seed", 0, "Seed for the random strategy (0 picks one)")
	asJSON := fs.Bool("json", false, "Print JSON")
	parse(fs, args)

	s, err := bruteforce.ParseStrategy(*strategy)
	if err != nil {
		cmd.HandleError(err)
	}
	if *maxAttempts < 0 {
		cmd.HandleError(fmt.Errorf("%w: --max-attempts must be positive", crypto.ErrInvalidInput))
	}

	cmd.Simulate(ctx, cmd.NewApp(), bruteforce.Options{MaxAttempts: *maxAttempts, Strategy: s, Seed: *seed}, *asJSON)
}

func runRecover(_ context.Context, args []string) {
	fs := flag.NewFlagSet("recover", flag.ExitOnError)
	record := cmd.MetadataFlags(fs)
	var src cmd.RecoverSource
	fs.StringVar(&src.Profile, "profile", "", "Vault profile")
	fs.StringVar(&src.File, "file", "", "Recovery file")
	fs.StringVar(&src.Keyring, "keyring", "", "Profile whose recovery key is in the OS keyring")
	variant := fs.String("variant", "medium", "Variant: short, medium or long")
	parse(fs, args)

	cmd.Recover(cmd.NewApp(), src, *record, parseVariant(*variant))
}

func runVerify(_ context.Context, args []string) {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	profile := fs.String("profile", "", "Vault profile")
	variant := fs.String("variant", "medium", "Variant: short, medium or long")
	parse(fs, args)

	if *profile == "" {
		fmt.Fprintln(os.Stderr, "Usage: pph verify --profile <profile> [--variant medium]")
		os.Exit(1)
	}
	cmd.Verify(cmd.NewApp(), *profile, parseVariant(*variant))
}

func runExport(_ context.Context, args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	profile := fs.String("profile", "", "Vault profile")
	out := fs.String("out", "", "Output file inside the working directory (default stdout)")
	parse(fs, args)

	if *profile == "" {
		fmt.Fprintln(os.Stderr, "Usage: pph export --profile <profile> [--out recovery.json]")
		os.Exit(1)
	}
	cmd.Export(cmd.NewApp(), *profile, *out)
}

func runStatus(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	parse(fs, args)

	cmd.Status(ctx, cmd.NewApp())
}

func runForget(_ context.Context, args []string) {
	fs := flag.NewFlagSet("forget", flag.ExitOnError)
	parse(fs, args)

	cmd.Forget(cmd.NewApp(), fs.Args())
}

func runCompact(_ context.Context, args []string) {
	fs := flag.NewFlagSet("compact", flag.ExitOnError)
	parse(fs, args)

	cmd.Compact(cmd.NewApp())
}

func runKeyring(_ context.Context, args []string) {
	if len(args) != 2 {
		cmd.KeyringUsage()
	}

	switch args[0] {
	case "save":
		cmd.KeyringSave(cmd.NewApp(), args[1])
	case "delete":
		cmd.KeyringDelete(args[1])
	case "status":
		cmd.KeyringStatus(args[1])
	default:
		cmd.KeyringUsage()
	}
}

func runServe(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	listen := fs.String("listen", "", "Listen address (default PPH_LISTEN or 127.0.0.1:8080)")
	parse(fs, args)

	cmd.Serve(ctx, cmd.NewApp(), *listen)
}

func runCompletion(_ context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: pph completion <bash|zsh|fish>")
		os.Exit(1)
	}
	cmd.Completion(args[0])
}

func printUsage() {
	fmt.Println("pph - Personalized password hardener")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  pph <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  harden      Derive hardened passwords from a base password and metadata")
	fmt.Println("  analyze     Report entropy, strength class and crack time")
	fmt.Println("  simulate    Run a bounded brute-force demonstration")
	fmt.Println("  recover     Regenerate a hardened password")
	fmt.Println("  verify      Check a hardened password against a profile")
	fmt.Println("  export      Write the recovery file of a profile")
	fmt.Println("  status      Show vault profiles and git exposure")
	fmt.Println("  forget      Remove profiles from the vault")
	fmt.Println("  compact     Compact vault to reclaim disk space")
	fmt.Println("  keyring     Manage recovery keys in the OS keyring")
	fmt.Println("  serve       Run the HTTP API")
	fmt.Println("  completion  Generate shell completions")
	fmt.Println("  help        Show help for a command")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  pph harden --birthday-token 0315 --save work   # Harden and keep a profile")
	fmt.Println("  pph recover --profile work --birthday-token 0315")
	fmt.Println("  pph analyze                                    # Analyze a password")
	fmt.Println()
	fmt.Println("The password is read from PPH_PASSWORD or prompted for without echo.")
	fmt.Println("Use 'pph help <command>' for more information about a command.")
}

func printCommandHelp(command string) {
	switch command {
	case "harden":
		fmt.Println("pph harden [metadata flags] [--save <profile>] [--overwrite] [--recovery-file <path>] [--keyring] [--json]")
		fmt.Println()
		fmt.Println("Derives short (16), medium (24) and long (32) character passwords from a")
		fmt.Println("base password and optional personal metadata using PBKDF2-HMAC-SHA256")
		fmt.Println("with a fresh random salt. The salt is the secret recovery key.")
		fmt.Println()
		fmt.Println("Metadata flags:")
		fmt.Println("  --house-name, --phone-suffix, --core-memory,")
		fmt.Println("  --handle-name, --birthday-token, --custom")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  --save           Store salt, hints and verifiers in the vault")
		fmt.Println("  --overwrite      Replace an existing profile")
		fmt.Println("  --recovery-file  Write a recovery file (never overwritten)")
		fmt.Println("  --keyring        Store the recovery key in the OS keyring")
		fmt.Println("  --json           Print JSON")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  pph harden --house-name \"Sunset Villa\" --birthday-token 0315 --save work")
		fmt.Println("  pph harden --recovery-file recovery.json")
	case "analyze":
		fmt.Println("pph analyze [--json]")
		fmt.Println()
		fmt.Println("Prints length, character classes, entropy, strength class, estimated")
		fmt.Println("crack time (PPH_GUESS_RATE guesses per second) and a pattern score.")
	case "simulate":
		fmt.Println("pph simulate [--max-attempts N] [--strategy sequential|random] [--seed N] [--json]")
		fmt.Println()
		fmt.Println("Guesses the password over its own character classes, stopping after")
		fmt.Println("N attempts (at most 10,000,000). For demonstration only.")
	case "recover":
		fmt.Println("pph recover (--profile <p> | --file <path> | --keyring <p>) [metadata flags] [--variant medium]")
		fmt.Println()
		fmt.Println("Regenerates one hardened password from the base password, the same")
		fmt.Println("metadata and the stored secret key. With --profile the result is checked")
		fmt.Println("against the stored verifier and differing metadata hints are shown.")
	case "verify":
		fmt.Println("pph verify --profile <profile> [--variant medium]")
		fmt.Println()
		fmt.Println("Checks a hardened password against the profile verifier.")
		fmt.Println("Exits non-zero when it does not match.")
	case "export":
		fmt.Println("pph export --profile <profile> [--out <path>]")
		fmt.Println()
		fmt.Println("Writes the recovery file (secret key, hints, iterations, algorithm).")
		fmt.Println("It never contains the base password. Keep it out of version control.")
	case "status":
		fmt.Println("pph status")
		fmt.Println()
		fmt.Println("Lists profiles and warns when the vault is tracked by git.")
		fmt.Println("Does not require a password.")
	case "forget":
		fmt.Println("pph forget <profile> [profile...]")
		fmt.Println()
		fmt.Println("Removes profiles from the vault and the OS keyring.")
	case "compact":
		fmt.Println("pph compact")
		fmt.Println()
		fmt.Println("Compacts the vault database to reclaim unused disk space.")
	case "keyring":
		fmt.Println("pph keyring <save|delete|status> <profile>")
		fmt.Println()
		fmt.Println("Copies a profile's recovery data into the OS keyring so that")
		fmt.Println("'pph recover --keyring <profile>' works without the vault file.")
	case "serve":
		fmt.Println("pph serve [--listen addr]")
		fmt.Println()
		fmt.Println("Serves POST /harden, /analyze and /simulate-brute-force as JSON.")
		fmt.Println("Requests are rate limited per client; set PPH_REDIS_ADDR or")
		fmt.Println("PPH_REDIS_URL to share the limit between instances. Behind a reverse")
		fmt.Println("proxy, list it in PPH_TRUSTED_PROXIES so X-Forwarded-For is used.")
	case "completion":
		fmt.Println("pph completion <bash|zsh|fish>")
		fmt.Println()
		fmt.Println("Outputs shell completion script for the specified shell.")
		fmt.Println()
		fmt.Println("Setup:")
		fmt.Println("  # Bash - add to ~/.bashrc")
		fmt.Println("  eval \"$(pph completion bash)\"")
		fmt.Println()
		fmt.Println("  # Zsh - add to ~/.zshrc")
		fmt.Println("  eval \"$(pph completion zsh)\"")
		fmt.Println()
		fmt.Println("  # Fish - add to ~/.config/fish/config.fish")
		fmt.Println("  pph completion fish | source")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
	}
}
