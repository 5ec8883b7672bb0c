package core

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/illarion/pph/internal/bruteforce"
	"github.com/illarion/pph/internal/crypto"
	"github.com/illarion/pph/internal/metadata"
	"github.com/illarion/pph/internal/strength"
)

// Options configures a Hardener. Zero values select the defaults.
type Options struct {
	Iterations int
	Alphabet   string
	GuessRate  float64
	Logger     *slog.Logger
}

// Hardener turns a base password plus metadata into hardened variants.
// It holds only immutable configuration and is safe for concurrent use.
type Hardener struct {
	iterations int
	alphabet   string
	guessRate  float64
	logger     *slog.Logger
}

// New creates a Hardener from opts.
func New(opts Options) *Hardener {
	h := &Hardener{
		iterations: opts.Iterations,
		alphabet:   opts.Alphabet,
		guessRate:  opts.GuessRate,
		logger:     opts.Logger,
	}
	if h.iterations == 0 {
		h.iterations = crypto.DefaultIters
	}
	if h.alphabet == "" {
		h.alphabet = crypto.Alphabet
	}
	if h.guessRate == 0 {
		h.guessRate = strength.DefaultGuessRate
	}
	if h.logger == nil {
		h.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return h
}

// Iterations returns the PBKDF2 work factor used for new derivations.
func (h *Hardener) Iterations() int {
	return h.iterations
}

// With returns a copy of h using the given work factor and guess rate.
// Zero keeps the current value. Invalid values surface as ErrInvalidInput
// from the operations that use them.
func (h *Hardener) With(iterations int, guessRate float64) *Hardener {
	c := *h
	if iterations != 0 {
		c.iterations = iterations
	}
	if guessRate != 0 {
		c.guessRate = guessRate
	}
	return &c
}

// Hardened is the result of one derivation. Salt is the recovery key.
type Hardened struct {
	Salt       []byte `json:"-"`
	Iterations int    `json:"iterations"`
	Algorithm  string `json:"algorithm"`
	Short      string `json:"short"`
	Medium     string `json:"medium"`
	Long       string `json:"long"`
}

// SaltHex returns the salt as the hex recovery key.
func (hd *Hardened) SaltHex() string {
	return hex.EncodeToString(hd.Salt)
}

// Variant returns the hardened value for v.
func (hd *Hardened) Variant(v crypto.Variant) string {
	switch v {
	case crypto.Short:
		return hd.Short
	case crypto.Medium:
		return hd.Medium
	case crypto.Long:
		return hd.Long
	default:
		return ""
	}
}

// Harden derives all variants under a fresh salt.
func (h *Hardener) Harden(password []byte, r metadata.Record) (*Hardened, error) {
	kdf, err := crypto.NewKDF(h.iterations)
	if err != nil {
		return nil, err
	}
	return h.derive(kdf, password, r)
}

// Regenerate re-derives all variants from a previously returned salt.
func (h *Hardener) Regenerate(password []byte, r metadata.Record, salt []byte, iterations int) (*Hardened, error) {
	kdf, err := crypto.KDFWithSalt(salt, iterations)
	if err != nil {
		return nil, err
	}
	return h.derive(kdf, password, r)
}

// RegenerateVariant re-derives a single variant from a stored salt.
func (h *Hardener) RegenerateVariant(password []byte, r metadata.Record, salt []byte, iterations int, v crypto.Variant) (string, error) {
	kdf, err := crypto.KDFWithSalt(salt, iterations)
	if err != nil {
		return "", err
	}
	return kdf.DeriveVariant(password, metadata.Canonicalize(r), v, h.alphabet)
}

// Verify reports whether password and metadata reproduce candidate as
// variant v under salt. The comparison is constant-time.
func (h *Hardener) Verify(password []byte, r metadata.Record, salt []byte, iterations int, v crypto.Variant, candidate string) (bool, error) {
	got, err := h.RegenerateVariant(password, r, salt, iterations, v)
	if err != nil {
		return false, err
	}
	return crypto.ConstantTimeCompare([]byte(got), []byte(candidate)), nil
}

func (h *Hardener) derive(kdf *crypto.KDF, password []byte, r metadata.Record) (*Hardened, error) {
	if len(password) == 0 {
		return nil, fmt.Errorf("%w: password must not be empty", ErrInvalidInput)
	}

	start := time.Now()
	variants, err := kdf.DeriveVariants(password, metadata.Canonicalize(r), h.alphabet)
	if err != nil {
		return nil, err
	}

	h.logger.Debug("derived variants",
		"iterations", kdf.Iterations,
		"metadata_fields", len(r.Values()),
		"elapsed", time.Since(start))

	return &Hardened{
		Salt:       kdf.Salt,
		Iterations: kdf.Iterations,
		Algorithm:  crypto.Algorithm,
		Short:      variants[crypto.Short],
		Medium:     variants[crypto.Medium],
		Long:       variants[crypto.Long],
	}, nil
}

// AnalyzeStrength reports entropy, category and crack time of candidate.
func (h *Hardener) AnalyzeStrength(candidate string) (*strength.Report, error) {
	return strength.Analyze(candidate, strength.Options{GuessRate: h.guessRate})
}

// Analysis compares the base password with its hardened variants.
type Analysis struct {
	Original *strength.Report            `json:"original"`
	Variants map[string]*strength.Report `json:"variants"`
}

// AnalyzeHardened analyzes the base password and every variant of hd.
// Metadata values are fed to the pattern checker so that a base password
// built from personal data is flagged.
func (h *Hardener) AnalyzeHardened(password []byte, r metadata.Record, hd *Hardened) (*Analysis, error) {
	opts := strength.Options{GuessRate: h.guessRate, UserInputs: r.Values()}

	original, err := strength.Analyze(string(password), opts)
	if err != nil {
		return nil, err
	}

	a := &Analysis{Original: original, Variants: make(map[string]*strength.Report, len(crypto.Variants))}
	for _, v := range crypto.Variants {
		report, err := strength.Analyze(hd.Variant(v), opts)
		if err != nil {
			return nil, fmt.Errorf("failed to analyze %s variant: %w", v, err)
		}
		a.Variants[v.String()] = report
	}
	return a, nil
}

// SimulateBruteForce runs a sequential simulation against target.
func (h *Hardener) SimulateBruteForce(ctx context.Context, target string, maxAttempts int) (*bruteforce.Result, error) {
	return h.Simulate(ctx, target, bruteforce.Options{MaxAttempts: maxAttempts})
}

// Simulate runs a simulation with explicit options.
func (h *Hardener) Simulate(ctx context.Context, target string, opts bruteforce.Options) (*bruteforce.Result, error) {
	res, err := bruteforce.Simulate(ctx, target, opts)
	if err != nil {
		return nil, err
	}
	h.logger.Debug("brute force simulation",
		"strategy", res.Strategy,
		"attempts", res.Attempts,
		"found", res.Found,
		"elapsed", res.Elapsed)
	return res, nil
}
