package strength

import (
	"fmt"
	"math"
	"strconv"

	"github.com/illarion/pph/internal/crypto"
)

// DefaultGuessRate is the assumed attacker speed in guesses per second.
const DefaultGuessRate = 1e9

// Largest log2(seconds) that is still exponentiated; beyond it the estimate
// saturates instead of overflowing float64.
const maxLog2Seconds = 1000

type timeUnit struct {
	name    string
	seconds float64
}

// Units from largest to smallest.
var timeUnits = []timeUnit{
	{"centuries", 3153600000},
	{"years", 31536000},
	{"days", 86400},
	{"hours", 3600},
	{"minutes", 60},
	{"seconds", 1},
}

// A million centuries and up is reported as astronomical.
var astronomicalLog2 = math.Log2(1e6 * 3153600000)

// CrackTime is an average-case exhaustive search estimate: half of the
// 2^bits search space at the given guess rate.
type CrackTime struct {
	// Seconds is math.MaxFloat64 when Saturated is set.
	Seconds     float64 `json:"seconds"`
	Log2Seconds float64 `json:"log2_seconds"`
	Value       float64 `json:"value"`
	Unit        string  `json:"unit"`
	Display     string  `json:"display"`
	Saturated   bool    `json:"saturated,omitempty"`
}

// EstimateCrackTime converts entropy into an estimated search duration.
// The computation stays in log2 space, so very large entropy never
// overflows.
func EstimateCrackTime(bits, guessRate float64) (CrackTime, error) {
	if math.IsNaN(guessRate) || math.IsInf(guessRate, 0) || guessRate <= 0 {
		return CrackTime{}, fmt.Errorf("%w: guess rate must be a positive finite number, got %v", crypto.ErrInvalidInput, guessRate)
	}
	if math.IsNaN(bits) || math.IsInf(bits, 0) {
		return CrackTime{}, fmt.Errorf("%w: entropy %v is not representable", crypto.ErrOverflow, bits)
	}
	if bits < 0 {
		return CrackTime{}, fmt.Errorf("%w: entropy must not be negative, got %v", crypto.ErrInvalidInput, bits)
	}

	// 2^bits / (2 * rate)
	log2s := bits - 1 - math.Log2(guessRate)
	ct := CrackTime{Log2Seconds: log2s}

	if log2s > maxLog2Seconds {
		ct.Seconds = math.MaxFloat64
		ct.Saturated = true
	} else {
		ct.Seconds = math.Exp2(log2s)
	}

	switch {
	case log2s < 0:
		ct.Value = ct.Seconds
		ct.Unit = "instant"
		ct.Display = "instant"
	case log2s >= astronomicalLog2:
		centuries := log2s - math.Log2(timeUnits[0].seconds)
		// The exponent can exceed any integer type for huge entropy, so it is
		// formatted as a float.
		exp10 := math.Floor(centuries * math.Log10(2))
		ct.Value = math.Exp2(math.Min(centuries, maxLog2Seconds))
		ct.Unit = "astronomical"
		ct.Display = "astronomical (~10^" + strconv.FormatFloat(exp10, 'f', 0, 64) + " centuries)"
	default:
		for _, u := range timeUnits {
			if ct.Seconds >= u.seconds {
				ct.Value = round2(ct.Seconds / u.seconds)
				ct.Unit = u.name
				ct.Display = fmt.Sprintf("%.2f %s", ct.Value, u.name)
				break
			}
		}
	}
	return ct, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
