package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/pbkdf2"
)

const (
	SaltSize      = 32     // Salt size in bytes
	MasterKeySize = 32     // PBKDF2 output, one SHA-256 block
	DefaultIters  = 100000 // Default PBKDF2 iterations
	MinIters      = 1000   // Iteration floor, below this derivation is refused
	Algorithm     = "PBKDF2-HMAC-SHA256+HKDF-SHA256"
)

// Alphabet is the character set hardened variants are drawn from:
// ASCII letters, digits and eight symbols.
const Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnsupportedAlphabet = errors.New("unsupported alphabet")
	ErrOverflow            = errors.New("overflow")
)

// Variant identifies one of the fixed-length hardened outputs.
type Variant int

const (
	Short Variant = iota
	Medium
	Long
)

// Variants lists every variant in output order.
var Variants = []Variant{Short, Medium, Long}

// Len returns the number of characters in the variant.
func (v Variant) Len() int {
	switch v {
	case Short:
		return 16
	case Medium:
		return 24
	case Long:
		return 32
	default:
		return 0
	}
}

func (v Variant) String() string {
	switch v {
	case Short:
		return "short"
	case Medium:
		return "medium"
	case Long:
		return "long"
	default:
		return "unknown"
	}
}

// label is the HKDF info string binding derived bytes to one variant.
func (v Variant) label() []byte {
	return []byte("pph/v1/variant/" + v.String())
}

// ParseVariant parses "short", "medium" or "long".
func ParseVariant(s string) (Variant, error) {
	for _, v := range Variants {
		if v.String() == s {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown variant %q", ErrInvalidInput, s)
}

// KDF handles key derivation from passwords
type KDF struct {
	Salt       []byte
	Iterations int
}

// NewKDF creates a new KDF with a random salt
func NewKDF(iterations int) (*KDF, error) {
	if iterations < MinIters {
		return nil, fmt.Errorf("%w: iteration count %d is below the minimum of %d", ErrInvalidInput, iterations, MinIters)
	}

	salt, err := GenerateRandom(SaltSize)
	if err != nil {
		return nil, err
	}

	return &KDF{
		Salt:       salt,
		Iterations: iterations,
	}, nil
}

// KDFWithSalt rebuilds a KDF from a previously returned salt.
func KDFWithSalt(salt []byte, iterations int) (*KDF, error) {
	if len(salt) != SaltSize {
		return nil, fmt.Errorf("%w: salt must be %d bytes, got %d", ErrInvalidInput, SaltSize, len(salt))
	}
	if iterations < MinIters {
		return nil, fmt.Errorf("%w: iteration count %d is below the minimum of %d", ErrInvalidInput, iterations, MinIters)
	}

	return &KDF{
		Salt:       append([]byte(nil), salt...),
		Iterations: iterations,
	}, nil
}

// DeriveKey runs PBKDF2 over password||0x00||metadata.
// The caller owns the returned key and should clear it.
func (k *KDF) DeriveKey(password, metadata []byte) ([]byte, error) {
	if len(password) == 0 {
		return nil, fmt.Errorf("%w: password must not be empty", ErrInvalidInput)
	}
	if k.Iterations < MinIters {
		return nil, fmt.Errorf("%w: iteration count %d is below the minimum of %d", ErrInvalidInput, k.Iterations, MinIters)
	}
	if len(k.Salt) != SaltSize {
		return nil, fmt.Errorf("%w: salt must be %d bytes, got %d", ErrInvalidInput, SaltSize, len(k.Salt))
	}

	secret := make([]byte, 0, len(password)+1+len(metadata))
	secret = append(secret, password...)
	secret = append(secret, 0)
	secret = append(secret, metadata...)
	defer ClearBytes(secret)

	return pbkdf2.Key(secret, k.Salt, k.Iterations, MasterKeySize, sha256.New), nil
}

// DeriveVariants derives every variant from a single PBKDF2 run.
func (k *KDF) DeriveVariants(password, metadata []byte, alphabet string) (map[Variant]string, error) {
	if len(alphabet) == 0 {
		return nil, fmt.Errorf("%w: alphabet is empty", ErrUnsupportedAlphabet)
	}

	master, err := k.DeriveKey(password, metadata)
	if err != nil {
		return nil, err
	}
	defer ClearBytes(master)

	out := make(map[Variant]string, len(Variants))
	for _, v := range Variants {
		s, err := expandVariant(master, v, alphabet)
		if err != nil {
			return nil, err
		}
		out[v] = s
	}
	return out, nil
}

// DeriveVariant derives a single variant. It costs a full PBKDF2 run.
func (k *KDF) DeriveVariant(password, metadata []byte, v Variant, alphabet string) (string, error) {
	if len(alphabet) == 0 {
		return "", fmt.Errorf("%w: alphabet is empty", ErrUnsupportedAlphabet)
	}
	if v.Len() == 0 {
		return "", fmt.Errorf("%w: unknown variant %d", ErrInvalidInput, int(v))
	}

	master, err := k.DeriveKey(password, metadata)
	if err != nil {
		return "", err
	}
	defer ClearBytes(master)

	return expandVariant(master, v, alphabet)
}

func expandVariant(master []byte, v Variant, alphabet string) (string, error) {
	raw := make([]byte, v.Len())
	defer ClearBytes(raw)

	r := hkdf.Expand(sha256.New, master, v.label())
	if _, err := io.ReadFull(r, raw); err != nil {
		return "", fmt.Errorf("failed to expand %s variant: %w", v, err)
	}

	return MapToAlphabet(raw, alphabet)
}

// MapToAlphabet maps each byte to alphabet[b % len(alphabet)].
func MapToAlphabet(raw []byte, alphabet string) (string, error) {
	if len(alphabet) == 0 {
		return "", fmt.Errorf("%w: alphabet is empty", ErrUnsupportedAlphabet)
	}

	out := make([]byte, len(raw))
	for i, b := range raw {
		out[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(out), nil
}

// ClearBytes securely clears a byte slice
func ClearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// ConstantTimeCompare performs a constant-time comparison of two byte slices
func ConstantTimeCompare(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

// GenerateRandom generates n random bytes
func GenerateRandom(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return b, nil
}
