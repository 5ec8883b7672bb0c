package metadata

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/illarion/pph/internal/crypto"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Field names in canonical order.
const (
	HouseName     = "house_name"
	PhoneSuffix   = "phone_suffix"
	CoreMemory    = "core_memory"
	HandleName    = "handle_name"
	BirthdayToken = "birthday_token"
	Custom        = "custom"
)

// FieldNames lists every known field in canonical order.
var FieldNames = []string{HouseName, PhoneSuffix, CoreMemory, HandleName, BirthdayToken, Custom}

const (
	version      = "pph.meta.v1"
	recordSep    = '\x1e'
	fieldSep     = '\x1f'
	notProvided  = "Not provided"
	provided     = "Provided"
	hintRunes    = 2
	hintEllipsis = "..."
)

// Values shorter than minHintedRunes would have half or more of their
// characters shown by a hint.
const minHintedRunes = 2*hintRunes + 1

// Record holds the optional personal fields mixed into a derivation.
type Record struct {
	HouseName     string `json:"house_name,omitempty"`
	PhoneSuffix   string `json:"phone_suffix,omitempty"`
	CoreMemory    string `json:"core_memory,omitempty"`
	HandleName    string `json:"handle_name,omitempty"`
	BirthdayToken string `json:"birthday_token,omitempty"`
	Custom        string `json:"custom,omitempty"`
}

// FromMap builds a Record from an unordered field map.
// Unknown field names are rejected.
func FromMap(m map[string]string) (Record, error) {
	var r Record
	for name, value := range m {
		p := r.field(name)
		if p == nil {
			return Record{}, fmt.Errorf("%w: unknown metadata field %q", crypto.ErrInvalidInput, name)
		}
		*p = value
	}
	return r, nil
}

// Set assigns a field by name.
func (r *Record) Set(name, value string) error {
	p := r.field(name)
	if p == nil {
		return fmt.Errorf("%w: unknown metadata field %q", crypto.ErrInvalidInput, name)
	}
	*p = value
	return nil
}

// Get returns a field by name and whether the name is known.
func (r Record) Get(name string) (string, bool) {
	p := r.field(name)
	if p == nil {
		return "", false
	}
	return *p, true
}

func (r *Record) field(name string) *string {
	switch name {
	case HouseName:
		return &r.HouseName
	case PhoneSuffix:
		return &r.PhoneSuffix
	case CoreMemory:
		return &r.CoreMemory
	case HandleName:
		return &r.HandleName
	case BirthdayToken:
		return &r.BirthdayToken
	case Custom:
		return &r.Custom
	default:
		return nil
	}
}

// Values returns the non-empty normalized field values in canonical order.
func (r Record) Values() []string {
	var out []string
	for _, name := range FieldNames {
		v, _ := r.Get(name)
		if n := Normalize(v); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// IsEmpty reports whether every field normalizes to the empty string.
func (r Record) IsEmpty() bool {
	return len(r.Values()) == 0
}

// Normalize applies NFKC, turns whitespace controls into spaces, drops
// other control characters, trims and case folds. The result never
// contains the record or field separators.
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	s = strings.Map(func(r rune) rune {
		if !unicode.IsControl(r) {
			return r
		}
		if unicode.IsSpace(r) {
			return ' '
		}
		return -1
	}, s)
	return cases.Fold().String(strings.TrimSpace(s))
}

// Canonicalize serializes the record into its deterministic byte form:
//
//	pph.meta.v1 0x1e house_name=<v> 0x1f phone_suffix=<v> 0x1f ... custom=<v>
//
// Every field is always present, so an all-empty record still yields a
// fixed, non-empty sequence.
func Canonicalize(r Record) []byte {
	var b strings.Builder
	b.WriteString(version)
	b.WriteByte(recordSep)
	for i, name := range FieldNames {
		if i > 0 {
			b.WriteByte(fieldSep)
		}
		v, _ := r.Get(name)
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(Normalize(v))
	}
	return []byte(b.String())
}

// Hints returns a reminder per field that reveals less than half of the
// value: the first two characters followed by "..." for values of five or
// more characters, "Provided" for shorter ones, and "Not provided" for
// empty fields.
func Hints(r Record) map[string]string {
	hints := make(map[string]string, len(FieldNames))
	for _, name := range FieldNames {
		v, _ := r.Get(name)
		hints[name] = hint(strings.TrimSpace(v))
	}
	return hints
}

func hint(v string) string {
	if v == "" {
		return notProvided
	}
	if utf8.RuneCountInString(Normalize(v)) < minHintedRunes || utf8.RuneCountInString(v) < minHintedRunes {
		return provided
	}
	runes := []rune(v)
	return string(runes[:hintRunes]) + hintEllipsis
}

// FormatHints renders known hints one per line in canonical order.
func FormatHints(hints map[string]string) string {
	var b strings.Builder
	for _, name := range FieldNames {
		if h, ok := hints[name]; ok {
			fmt.Fprintf(&b, "%s: %s\n", name, h)
		}
	}
	return b.String()
}
