package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/illarion/pph/internal/crypto"
	"github.com/illarion/pph/internal/git"
	"github.com/illarion/pph/internal/metadata"
	"github.com/illarion/pph/internal/storage"
)

// VaultFile is the default vault file name in the working directory.
const VaultFile = ".pph"

// Vault keeps recovery profiles: salt, iterations, hints and argon2id
// verifiers of the hardened variants. It never stores the base password,
// the metadata or a variant in the clear.
type Vault struct {
	path     string
	hardener *Hardener
	params   *argon2id.Params
	logger   *slog.Logger
}

// NewVault returns a vault backed by the bbolt file at path. A nil params
// selects argon2id.DefaultParams.
func NewVault(path string, h *Hardener, params *argon2id.Params) *Vault {
	if params == nil {
		params = argon2id.DefaultParams
	}
	logger := h.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Vault{path: path, hardener: h, params: params, logger: logger}
}

// Path returns the vault file path.
func (v *Vault) Path() string {
	return v.path
}

// open opens the vault database, creating it when create is set.
func (v *Vault) open(create bool) (*storage.Storage, error) {
	if !create {
		if _, err := os.Stat(v.path); err != nil {
			return nil, ErrNotInitialized
		}
	}

	db, err := storage.Open(v.path)
	if err != nil {
		return nil, err
	}

	if create {
		if err := db.Initialize(); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize vault: %w", err)
		}
		return db, nil
	}

	ok, err := db.IsInitialized()
	if err != nil || !ok {
		db.Close()
		return nil, ErrNotInitialized
	}
	return db, nil
}

// SaveProfile stores the recovery data of hd under name. An existing
// profile is only replaced when overwrite is set.
func (v *Vault) SaveProfile(name string, r metadata.Record, hd *Hardened, overwrite bool) (*storage.Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: profile name must not be empty", ErrInvalidInput)
	}
	if hd == nil || len(hd.Salt) != crypto.SaltSize {
		return nil, fmt.Errorf("%w: hardened result has no valid salt", ErrInvalidInput)
	}

	db, err := v.open(true)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	created := time.Now().UTC()
	existing, err := db.GetProfile(name)
	switch {
	case err == nil && !overwrite:
		return nil, fmt.Errorf("%w: %s", ErrProfileExists, name)
	case err == nil:
		created = existing.Created
	}

	verifiers := make(map[string]string, len(crypto.Variants))
	for _, variant := range crypto.Variants {
		hash, err := argon2id.CreateHash(hd.Variant(variant), v.params)
		if err != nil {
			return nil, fmt.Errorf("failed to hash %s variant: %w", variant, err)
		}
		verifiers[variant.String()] = hash
	}

	p := storage.Profile{
		Name:       name,
		Salt:       hd.SaltHex(),
		Iterations: hd.Iterations,
		Algorithm:  hd.Algorithm,
		Hints:      metadata.Hints(r),
		Verifiers:  verifiers,
		Created:    created,
		Modified:   time.Now().UTC(),
	}
	if err := db.PutProfile(p); err != nil {
		return nil, fmt.Errorf("failed to store profile: %w", err)
	}

	v.logger.Info("profile saved", "profile", name, "iterations", p.Iterations)
	return &p, nil
}

// Profile returns a stored profile.
func (v *Vault) Profile(name string) (*storage.Profile, error) {
	db, err := v.open(false)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	return db.GetProfile(name)
}

// Profiles lists all stored profiles ordered by name.
func (v *Vault) Profiles() ([]storage.Profile, error) {
	db, err := v.open(false)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	return db.ListProfiles()
}

// Recover regenerates one variant of a stored profile and checks it
// against the stored verifier. A mismatch means the password or the
// metadata differ from the ones used at creation time.
func (v *Vault) Recover(name string, password []byte, r metadata.Record, variant crypto.Variant) (string, error) {
	p, err := v.Profile(name)
	if err != nil {
		return "", err
	}
	salt, err := p.SaltBytes()
	if err != nil {
		return "", err
	}

	value, err := v.hardener.RegenerateVariant(password, r, salt, p.Iterations, variant)
	if err != nil {
		return "", err
	}

	ok, err := v.check(p, variant, value)
	if err != nil {
		return "", err
	}
	if !ok {
		v.logger.Warn("recovery mismatch", "profile", name, "variant", variant)
		return "", fmt.Errorf("%w: profile %s", ErrWrongCredentials, name)
	}
	return value, nil
}

// Verify reports whether candidate is the stored variant of a profile.
func (v *Vault) Verify(name string, variant crypto.Variant, candidate string) (bool, error) {
	p, err := v.Profile(name)
	if err != nil {
		return false, err
	}
	return v.check(p, variant, candidate)
}

func (v *Vault) check(p *storage.Profile, variant crypto.Variant, value string) (bool, error) {
	hash, ok := p.Verifiers[variant.String()]
	if !ok {
		return false, fmt.Errorf("profile %s has no %s verifier", p.Name, variant)
	}
	match, err := argon2id.ComparePasswordAndHash(value, hash)
	if err != nil {
		return false, fmt.Errorf("profile %s has a malformed verifier: %w", p.Name, err)
	}
	return match, nil
}

// Forget deletes a profile.
func (v *Vault) Forget(name string) error {
	db, err := v.open(false)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.DeleteProfile(name); err != nil {
		return err
	}
	v.logger.Info("profile removed", "profile", name)
	return nil
}

// Compact rewrites the vault file without free pages.
func (v *Vault) Compact() error {
	db, err := v.open(false)
	if err != nil {
		return err
	}
	defer db.Close()

	return db.Compact()
}

// StatusInfo summarizes the vault.
type StatusInfo struct {
	Path         string
	Size         int64
	LastModified time.Time
	Profiles     []storage.Profile
	Git          *git.Status
}

// Status reports vault contents and how the vault file relates to git.
func (v *Vault) Status(ctx context.Context) (*StatusInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	db, err := v.open(false)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	status := &StatusInfo{Path: v.path}

	// Not critical
	if modified, err := db.GetModified(); err == nil {
		status.LastModified = modified
	}
	if info, err := os.Stat(v.path); err == nil {
		status.Size = info.Size()
	}

	status.Profiles, err = db.ListProfiles()
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir, file := filepath.Split(v.path)
	if dir == "" {
		dir = "."
	}
	status.Git = git.Check(dir, []string{file})

	return status, nil
}
