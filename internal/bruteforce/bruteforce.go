package bruteforce

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/illarion/pph/internal/crypto"
	"github.com/illarion/pph/internal/strength"
)

const (
	// MaxAttemptsCeiling bounds any single simulation.
	MaxAttemptsCeiling = 10_000_000
	// DefaultMaxAttempts matches the web front end default.
	DefaultMaxAttempts = 10000

	ctxCheckInterval = 1 << 12
)

// Strategy selects how guesses are generated.
type Strategy int

const (
	// Sequential enumerates every string of length 1..len(target) over the
	// alphabet in lexicographic order. Deterministic.
	Sequential Strategy = iota
	// Random samples len(target)-length strings uniformly.
	Random
)

func (s Strategy) String() string {
	switch s {
	case Sequential:
		return "sequential"
	case Random:
		return "random"
	default:
		return "unknown"
	}
}

// MarshalText encodes the strategy by name.
func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a strategy name.
func (s *Strategy) UnmarshalText(text []byte) error {
	v, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseStrategy parses "sequential" or "random".
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "", "sequential":
		return Sequential, nil
	case "random":
		return Random, nil
	default:
		return 0, fmt.Errorf("%w: unknown strategy %q", crypto.ErrInvalidInput, s)
	}
}

// Options configures a simulation.
type Options struct {
	MaxAttempts int
	Strategy    Strategy
	// Seed makes Random reproducible; zero draws a seed from crypto/rand.
	Seed uint64
}

// Result describes a finished simulation.
type Result struct {
	Attempts        int           `json:"attempts"`
	Found           bool          `json:"found"`
	Elapsed         time.Duration `json:"elapsed_ns"`
	Strategy        Strategy      `json:"strategy"`
	AlphabetSize    int           `json:"alphabet_size"`
	Log2SearchSpace float64       `json:"log2_search_space"`
	AttemptsPerSec  float64       `json:"attempts_per_second"`
}

// Simulate runs a bounded guessing attack against target. It is a
// demonstration of the crack-time model and must never be pointed at real
// credential verification.
//
// The alphabet is the union of the character classes present in target,
// plus any of target's runes those classes do not enumerate.
func Simulate(ctx context.Context, target string, opts Options) (*Result, error) {
	if target == "" {
		return nil, fmt.Errorf("%w: target must not be empty", crypto.ErrInvalidInput)
	}
	if opts.MaxAttempts <= 0 {
		return nil, fmt.Errorf("%w: max attempts must be positive, got %d", crypto.ErrInvalidInput, opts.MaxAttempts)
	}
	maxAttempts := min(opts.MaxAttempts, MaxAttemptsCeiling)

	alphabet := alphabetFor(target)
	length := utf8.RuneCountInString(target)

	var g generator
	switch opts.Strategy {
	case Sequential:
		g = newSequential(alphabet, length)
	case Random:
		seed := opts.Seed
		if seed == 0 {
			b, err := crypto.GenerateRandom(8)
			if err != nil {
				return nil, err
			}
			seed = binary.LittleEndian.Uint64(b)
		}
		g = newRandom(alphabet, length, seed)
	default:
		return nil, fmt.Errorf("%w: unknown strategy %d", crypto.ErrInvalidInput, int(opts.Strategy))
	}

	want := []byte(target)
	res := &Result{
		Strategy:        opts.Strategy,
		AlphabetSize:    len(alphabet),
		Log2SearchSpace: float64(length) * math.Log2(float64(len(alphabet))),
	}

	start := time.Now()
	for res.Attempts < maxAttempts {
		if res.Attempts%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		guess, ok := g.next()
		if !ok {
			break
		}
		res.Attempts++
		if crypto.ConstantTimeCompare(guess, want) {
			res.Found = true
			break
		}
	}
	res.Elapsed = time.Since(start)
	if secs := res.Elapsed.Seconds(); secs > 0 {
		res.AttemptsPerSec = float64(res.Attempts) / secs
	}
	return res, nil
}

func alphabetFor(target string) []rune {
	cs := strength.CharsetOf(target)

	var b strings.Builder
	for _, c := range cs.Classes {
		b.WriteString(c.Chars())
	}
	known := b.String()
	for _, r := range target {
		if !strings.ContainsRune(known, r) {
			b.WriteRune(r)
			known = b.String()
		}
	}
	return []rune(known)
}

type generator interface {
	// next returns the next guess; the slice is reused between calls.
	next() ([]byte, bool)
}

// sequential is an odometer over alphabet indices, growing in length.
type sequential struct {
	alphabet []rune
	maxLen   int
	idx      []int
	started  bool
	buf      []byte
}

func newSequential(alphabet []rune, maxLen int) *sequential {
	return &sequential{alphabet: alphabet, maxLen: maxLen, idx: make([]int, 1)}
}

func (s *sequential) next() ([]byte, bool) {
	if s.started && !s.advance() {
		return nil, false
	}
	s.started = true
	return s.render(), true
}

func (s *sequential) advance() bool {
	for i := len(s.idx) - 1; i >= 0; i-- {
		s.idx[i]++
		if s.idx[i] < len(s.alphabet) {
			return true
		}
		s.idx[i] = 0
	}
	if len(s.idx) == s.maxLen {
		return false
	}
	s.idx = make([]int, len(s.idx)+1)
	return true
}

func (s *sequential) render() []byte {
	s.buf = s.buf[:0]
	for _, i := range s.idx {
		s.buf = utf8.AppendRune(s.buf, s.alphabet[i])
	}
	return s.buf
}

type random struct {
	alphabet []rune
	length   int
	rng      *rand.Rand
	buf      []byte
}

func newRandom(alphabet []rune, length int, seed uint64) *random {
	return &random{
		alphabet: alphabet,
		length:   length,
		rng:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (r *random) next() ([]byte, bool) {
	r.buf = r.buf[:0]
	for i := 0; i < r.length; i++ {
		r.buf = utf8.AppendRune(r.buf, r.alphabet[r.rng.IntN(len(r.alphabet))])
	}
	return r.buf, true
}
