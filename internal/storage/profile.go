package storage

import (
	"encoding/hex"
	"fmt"
	"time"
)

// Profile is everything needed to regenerate and check a hardened password
// except the base password and the metadata themselves.
type Profile struct {
	Name       string            `json:"name"`
	Salt       string            `json:"salt"` // hex, the recovery key
	Iterations int               `json:"iterations"`
	Algorithm  string            `json:"algorithm"`
	Hints      map[string]string `json:"hints"`
	Verifiers  map[string]string `json:"verifiers"` // variant -> argon2id PHC
	Created    time.Time         `json:"created"`
	Modified   time.Time         `json:"modified"`
}

// SaltBytes decodes the stored salt
func (p *Profile) SaltBytes() ([]byte, error) {
	salt, err := hex.DecodeString(p.Salt)
	if err != nil {
		return nil, fmt.Errorf("profile %s has a malformed salt: %w", p.Name, err)
	}
	return salt, nil
}
