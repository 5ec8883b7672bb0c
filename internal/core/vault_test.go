package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alexedwards/argon2id"
	"github.com/illarion/pph/internal/crypto"
	"github.com/illarion/pph/internal/metadata"
)

var testParams = &argon2id.Params{Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func setupVault(t *testing.T) (*Vault, *Hardened, metadata.Record) {
	t.Helper()
	h := testHardener()
	v := NewVault(filepath.Join(t.TempDir(), VaultFile), h, testParams)

	r := metadata.Record{HouseName: "Sunset Villa", BirthdayToken: "0315"}
	hd, err := h.Harden([]byte("MySecurePass123"), r)
	if err != nil {
		t.Fatalf("Harden failed: %v", err)
	}
	if _, err := v.SaveProfile("work", r, hd, false); err != nil {
		t.Fatalf("SaveProfile failed: %v", err)
	}
	return v, hd, r
}

func TestVaultNotInitialized(t *testing.T) {
	v := NewVault(filepath.Join(t.TempDir(), VaultFile), testHardener(), testParams)
	if _, err := v.Profiles(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Expected ErrNotInitialized, got %v", err)
	}
	if _, err := v.Status(context.Background()); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Expected ErrNotInitialized, got %v", err)
	}
}

func TestSaveProfileStoresNoSecrets(t *testing.T) {
	v, hd, _ := setupVault(t)

	p, err := v.Profile("work")
	if err != nil {
		t.Fatalf("Profile failed: %v", err)
	}
	if p.Salt != hd.SaltHex() || p.Iterations != hd.Iterations || p.Algorithm != crypto.Algorithm {
		t.Errorf("Unexpected profile %+v", p)
	}
	if p.Hints[metadata.HouseName] != "Su..." || p.Hints[metadata.PhoneSuffix] != "Not provided" {
		t.Errorf("Unexpected hints %v", p.Hints)
	}
	if p.Hints[metadata.BirthdayToken] != "Provided" {
		t.Errorf("Short values must not be hinted, got %q", p.Hints[metadata.BirthdayToken])
	}

	raw, err := os.ReadFile(v.Path())
	if err != nil {
		t.Fatalf("Failed to read vault: %v", err)
	}
	for _, secret := range []string{"MySecurePass123", "Sunset Villa", "sunset villa", hd.Short, hd.Medium, hd.Long} {
		if strings.Contains(string(raw), secret) {
			t.Errorf("Vault file contains %q", secret)
		}
	}
}

func TestSaveProfileHidesShortFields(t *testing.T) {
	h := testHardener()
	v := NewVault(filepath.Join(t.TempDir(), VaultFile), h, testParams)

	r := metadata.Record{PhoneSuffix: "58", Custom: "x", BirthdayToken: "0315"}
	hd, err := h.Harden([]byte("MySecurePass123"), r)
	if err != nil {
		t.Fatalf("Harden failed: %v", err)
	}
	if _, err := v.SaveProfile("short", r, hd, false); err != nil {
		t.Fatalf("SaveProfile failed: %v", err)
	}

	p, err := v.Profile("short")
	if err != nil {
		t.Fatalf("Profile failed: %v", err)
	}
	for _, name := range []string{metadata.PhoneSuffix, metadata.Custom, metadata.BirthdayToken} {
		if p.Hints[name] != "Provided" {
			t.Errorf("Hint %s: got %q", name, p.Hints[name])
		}
	}

	raw, err := os.ReadFile(v.Path())
	if err != nil {
		t.Fatalf("Failed to read vault: %v", err)
	}
	for _, leak := range []string{`"58...`, `"x...`, `"03...`, `"0315"`} {
		if strings.Contains(string(raw), leak) {
			t.Errorf("Vault file contains %s", leak)
		}
	}

	rec := NewRecovery("short", r, hd)
	for name, hint := range rec.MetadataHints {
		if hint != "Provided" && hint != "Not provided" {
			t.Errorf("Recovery hint %s: got %q", name, hint)
		}
	}
}

func TestSaveProfileOverwrite(t *testing.T) {
	v, hd, r := setupVault(t)

	if _, err := v.SaveProfile("work", r, hd, false); !errors.Is(err, ErrProfileExists) {
		t.Errorf("Expected ErrProfileExists, got %v", err)
	}
	if _, err := v.SaveProfile("work", r, hd, true); err != nil {
		t.Errorf("Overwrite failed: %v", err)
	}
	if _, err := v.SaveProfile("  ", r, hd, false); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for blank name, got %v", err)
	}
}

func TestRecover(t *testing.T) {
	v, hd, r := setupVault(t)

	for _, variant := range crypto.Variants {
		got, err := v.Recover("work", []byte("MySecurePass123"), r, variant)
		if err != nil {
			t.Fatalf("Recover %s failed: %v", variant, err)
		}
		if got != hd.Variant(variant) {
			t.Errorf("Recover %s mismatch", variant)
		}
	}

	if _, err := v.Recover("work", []byte("WrongPassword123"), r, crypto.Medium); !errors.Is(err, ErrWrongCredentials) {
		t.Errorf("Wrong password: expected ErrWrongCredentials, got %v", err)
	}
	wrong := r
	wrong.HouseName = "Sunrise Villa"
	if _, err := v.Recover("work", []byte("MySecurePass123"), wrong, crypto.Medium); !errors.Is(err, ErrWrongCredentials) {
		t.Errorf("Wrong metadata: expected ErrWrongCredentials, got %v", err)
	}
	if _, err := v.Recover("home", []byte("MySecurePass123"), r, crypto.Medium); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("Expected ErrProfileNotFound, got %v", err)
	}
}

func TestVaultVerify(t *testing.T) {
	v, hd, _ := setupVault(t)

	ok, err := v.Verify("work", crypto.Long, hd.Long)
	if err != nil || !ok {
		t.Errorf("Verify stored value: ok=%v err=%v", ok, err)
	}
	ok, err = v.Verify("work", crypto.Long, hd.Medium)
	if err != nil || ok {
		t.Errorf("Verify other variant: ok=%v err=%v", ok, err)
	}
}

func TestForgetAndCompact(t *testing.T) {
	v, hd, r := setupVault(t)
	if _, err := v.SaveProfile("home", r, hd, false); err != nil {
		t.Fatalf("SaveProfile failed: %v", err)
	}

	if err := v.Forget("work"); err != nil {
		t.Fatalf("Forget failed: %v", err)
	}
	if err := v.Forget("work"); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("Expected ErrProfileNotFound, got %v", err)
	}
	if err := v.Compact(); err != nil {
		t.Fatalf("Compact failed: %v", err)
	}

	list, err := v.Profiles()
	if err != nil {
		t.Fatalf("Profiles failed: %v", err)
	}
	if len(list) != 1 || list[0].Name != "home" {
		t.Errorf("Unexpected profiles %v", list)
	}
}

func TestVaultStatus(t *testing.T) {
	v, _, _ := setupVault(t)

	status, err := v.Status(context.Background())
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if len(status.Profiles) != 1 || status.Size == 0 || status.LastModified.IsZero() {
		t.Errorf("Unexpected status %+v", status)
	}
	if status.Git == nil || status.Git.IsRepo {
		t.Errorf("Temp dir should not be a git repository: %+v", status.Git)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := v.Status(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
