package strength

import (
	"fmt"
	"math"
)

// Category is the discrete strength band of an entropy value.
type Category int

const (
	VeryWeak Category = iota
	Weak
	Moderate
	Strong
	VeryStrong
)

// Band lower bounds in bits, inclusive.
const (
	weakBits       = 28
	moderateBits   = 36
	strongBits     = 60
	veryStrongBits = 80
)

// String returns a human-readable representation of the category.
func (c Category) String() string {
	switch c {
	case VeryWeak:
		return "Very Weak"
	case Weak:
		return "Weak"
	case Moderate:
		return "Moderate"
	case Strong:
		return "Strong"
	case VeryStrong:
		return "Very Strong"
	default:
		return "Unknown"
	}
}

// Color is the indicator color the web front end shows for the category.
func (c Category) Color() string {
	switch c {
	case VeryWeak:
		return "red"
	case Weak:
		return "orange"
	case Moderate:
		return "yellow"
	case Strong:
		return "lightgreen"
	case VeryStrong:
		return "green"
	default:
		return "gray"
	}
}

// MarshalText encodes the category by name.
func (c Category) MarshalText() ([]byte, error) {
	if c < VeryWeak || c > VeryStrong {
		return nil, fmt.Errorf("unknown category %d", int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText decodes a category name as produced by MarshalText.
func (c *Category) UnmarshalText(text []byte) error {
	for x := VeryWeak; x <= VeryStrong; x++ {
		if x.String() == string(text) {
			*c = x
			return nil
		}
	}
	return fmt.Errorf("unknown category %q", text)
}

// Classify maps an entropy value onto its band. Each band includes its
// lower bound. NaN and negative values are Very Weak.
func Classify(bits float64) Category {
	switch {
	case math.IsNaN(bits) || bits < weakBits:
		return VeryWeak
	case bits < moderateBits:
		return Weak
	case bits < strongBits:
		return Moderate
	case bits < veryStrongBits:
		return Strong
	default:
		return VeryStrong
	}
}
