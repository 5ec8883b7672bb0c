package strength

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Class is a disjoint character class used for the alphabet estimate.
type Class int

const (
	Lower Class = iota
	Upper
	Digit
	Symbol
	Space
	Other
)

// Classes lists every class in a stable order.
var Classes = []Class{Lower, Upper, Digit, Symbol, Space, Other}

const (
	lowerChars  = "abcdefghijklmnopqrstuvwxyz"
	upperChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digitChars  = "0123456789"
	symbolChars = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
	otherSize   = 64
)

// Size is the number of symbols the class contributes to the alphabet.
func (c Class) Size() int {
	switch c {
	case Lower:
		return len(lowerChars)
	case Upper:
		return len(upperChars)
	case Digit:
		return len(digitChars)
	case Symbol:
		return len(symbolChars)
	case Space:
		return 1
	case Other:
		return otherSize
	default:
		return 0
	}
}

func (c Class) String() string {
	switch c {
	case Lower:
		return "lowercase"
	case Upper:
		return "uppercase"
	case Digit:
		return "digits"
	case Symbol:
		return "symbols"
	case Space:
		return "whitespace"
	case Other:
		return "other"
	default:
		return "unknown"
	}
}

// Chars returns the enumerable characters of the class, or "" for classes
// without a fixed ASCII repertoire.
func (c Class) Chars() string {
	switch c {
	case Lower:
		return lowerChars
	case Upper:
		return upperChars
	case Digit:
		return digitChars
	case Symbol:
		return symbolChars
	case Space:
		return " "
	default:
		return ""
	}
}

// ClassOf returns the class a rune belongs to.
func ClassOf(r rune) Class {
	switch {
	case r >= 'a' && r <= 'z':
		return Lower
	case r >= 'A' && r <= 'Z':
		return Upper
	case r >= '0' && r <= '9':
		return Digit
	case r < utf8.RuneSelf && strings.ContainsRune(symbolChars, r):
		return Symbol
	case unicode.IsSpace(r):
		return Space
	default:
		return Other
	}
}

// Charset describes the character classes found in a string.
type Charset struct {
	Classes []Class  `json:"-"`
	Names   []string `json:"classes"`
	Size    int      `json:"alphabet_size"`
}

// Has reports whether the class is present.
func (cs Charset) Has(c Class) bool {
	for _, x := range cs.Classes {
		if x == c {
			return true
		}
	}
	return false
}

// CharsetOf returns the classes present in s and the resulting alphabet size.
func CharsetOf(s string) Charset {
	var seen [Other + 1]bool
	for _, r := range s {
		seen[ClassOf(r)] = true
	}

	var cs Charset
	for _, c := range Classes {
		if seen[c] {
			cs.Classes = append(cs.Classes, c)
			cs.Names = append(cs.Names, c.String())
			cs.Size += c.Size()
		}
	}
	return cs
}

// Entropy estimates the bits of entropy in s as L * log2(N), where L is the
// rune count and N the summed size of the classes present. The result is
// rounded to two decimals and is never negative.
func Entropy(s string) float64 {
	return entropyOf(s, CharsetOf(s))
}

func entropyOf(s string, cs Charset) float64 {
	length := utf8.RuneCountInString(s)
	if length == 0 {
		return 0
	}
	n := cs.Size
	if n < 1 {
		n = 1
	}
	bits := float64(length) * math.Log2(float64(n))
	return math.Round(bits*100) / 100
}
