package core

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/illarion/pph/internal/crypto"
	"github.com/illarion/pph/internal/metadata"
	"github.com/illarion/pph/internal/security"
)

const recoveryWarning = "Keep this file secure! Store the base password separately, it is not in this file."

// Recovery is the portable recovery file. It carries the salt and hints
// needed to regenerate a profile's variants, never the base password or a
// hardened value.
type Recovery struct {
	Profile       string            `json:"profile,omitempty"`
	SecretKey     string            `json:"secret_key"`
	MetadataHints map[string]string `json:"metadata_hints"`
	Iterations    int               `json:"iterations"`
	Algorithm     string            `json:"algorithm"`
	Warning       string            `json:"warning"`
}

// NewRecovery builds the recovery file contents for a fresh derivation.
func NewRecovery(profile string, r metadata.Record, hd *Hardened) *Recovery {
	return &Recovery{
		Profile:       profile,
		SecretKey:     hd.SaltHex(),
		MetadataHints: metadata.Hints(r),
		Iterations:    hd.Iterations,
		Algorithm:     hd.Algorithm,
		Warning:       recoveryWarning,
	}
}

// ExportRecovery builds the recovery file contents of a stored profile.
func (v *Vault) ExportRecovery(name string) (*Recovery, error) {
	p, err := v.Profile(name)
	if err != nil {
		return nil, err
	}
	return &Recovery{
		Profile:       p.Name,
		SecretKey:     p.Salt,
		MetadataHints: p.Hints,
		Iterations:    p.Iterations,
		Algorithm:     p.Algorithm,
		Warning:       recoveryWarning,
	}, nil
}

// WriteRecovery writes rec as indented JSON to path, which must lie inside
// dir and must not exist yet.
func WriteRecovery(dir, path string, rec *Recovery) error {
	validator, err := security.New(dir)
	if err != nil {
		return fmt.Errorf("failed to initialize path validator: %w", err)
	}
	defer validator.Close()

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode recovery file: %w", err)
	}
	return validator.WriteNew(path, append(data, '\n'))
}

// ReadRecovery loads and validates a recovery file inside dir.
func ReadRecovery(dir, path string) (*Recovery, error) {
	validator, err := security.New(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize path validator: %w", err)
	}
	defer validator.Close()

	data, err := validator.Read(path)
	if err != nil {
		return nil, err
	}

	var rec Recovery
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: invalid recovery file format: %v", ErrInvalidInput, err)
	}
	if rec.Algorithm != crypto.Algorithm {
		return nil, fmt.Errorf("%w: unsupported algorithm %q", ErrInvalidInput, rec.Algorithm)
	}
	if _, err := rec.Salt(); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Salt decodes the secret key.
func (rec *Recovery) Salt() ([]byte, error) {
	salt, err := hex.DecodeString(rec.SecretKey)
	if err != nil || len(salt) != crypto.SaltSize {
		return nil, fmt.Errorf("%w: secret key must be %d hex-encoded bytes", ErrInvalidInput, crypto.SaltSize)
	}
	return salt, nil
}

// RecoverFromFile regenerates one variant from a recovery file. Without a
// stored verifier the result cannot be checked; a wrong password or
// metadata silently yields a different value.
func (h *Hardener) RecoverFromFile(password []byte, r metadata.Record, rec *Recovery, v crypto.Variant) (string, error) {
	salt, err := rec.Salt()
	if err != nil {
		return "", err
	}
	return h.RegenerateVariant(password, r, salt, rec.Iterations, v)
}
