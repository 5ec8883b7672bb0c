package strength

import (
	"unicode/utf8"

	zxcvbn "github.com/ccojocar/zxcvbn-go"
)

// zxcvbn slows down sharply on long inputs, only the first
// maxPatternLen characters are pattern checked.
const maxPatternLen = 50

// Report is the strength analysis of one candidate.
type Report struct {
	Length    int       `json:"length"`
	Entropy   float64   `json:"entropy"`
	Category  Category  `json:"strength"`
	Color     string    `json:"color"`
	Charset   Charset   `json:"charset"`
	CrackTime CrackTime `json:"crack_time"`
	Pattern   Pattern   `json:"pattern"`
}

// Pattern is the dictionary- and pattern-aware zxcvbn view of the candidate.
// It complements the class-based entropy, which cannot see reuse of words
// or personal data.
type Pattern struct {
	Score            int     `json:"score"` // 0..4
	Entropy          float64 `json:"entropy"`
	CrackTimeDisplay string  `json:"crack_time_display"`
	ContainsHint     bool    `json:"contains_personal_data"`
}

// Options tunes an analysis.
type Options struct {
	// GuessRate in guesses per second; zero means DefaultGuessRate.
	GuessRate float64
	// UserInputs are personal values (metadata) the candidate should not
	// contain. They only affect Pattern.
	UserInputs []string
}

// Analyze builds the full strength report for candidate.
func Analyze(candidate string, opts Options) (*Report, error) {
	rate := opts.GuessRate
	if rate == 0 {
		rate = DefaultGuessRate
	}

	cs := CharsetOf(candidate)
	bits := entropyOf(candidate, cs)

	ct, err := EstimateCrackTime(bits, rate)
	if err != nil {
		return nil, err
	}

	category := Classify(bits)
	return &Report{
		Length:    utf8.RuneCountInString(candidate),
		Entropy:   bits,
		Category:  category,
		Color:     category.Color(),
		Charset:   cs,
		CrackTime: ct,
		Pattern:   patternOf(candidate, opts.UserInputs),
	}, nil
}

func patternOf(candidate string, userInputs []string) Pattern {
	if candidate == "" {
		return Pattern{}
	}
	check := candidate
	if utf8.RuneCountInString(check) > maxPatternLen {
		check = string([]rune(check)[:maxPatternLen])
	}

	result := zxcvbn.PasswordStrength(check, userInputs)
	p := Pattern{
		Score:            result.Score,
		Entropy:          round2(result.Entropy),
		CrackTimeDisplay: result.CrackTimeDisplay,
	}
	if len(userInputs) > 0 {
		// Scoring again without the personal inputs reveals whether they
		// were what made the candidate guessable.
		p.ContainsHint = zxcvbn.PasswordStrength(check, nil).Entropy > result.Entropy
	}
	return p
}
