package core

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/illarion/pph/internal/crypto"
	"github.com/illarion/pph/internal/metadata"
	"github.com/illarion/pph/internal/security"
)

func TestRecoveryFileRoundTrip(t *testing.T) {
	v, hd, r := setupVault(t)
	dir := filepath.Dir(v.Path())

	rec, err := v.ExportRecovery("work")
	if err != nil {
		t.Fatalf("ExportRecovery failed: %v", err)
	}
	if err := WriteRecovery(dir, "recovery.json", rec); err != nil {
		t.Fatalf("WriteRecovery failed: %v", err)
	}
	if err := WriteRecovery(dir, "recovery.json", rec); !errors.Is(err, security.ErrFileExists) {
		t.Errorf("Expected ErrFileExists, got %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "recovery.json"))
	if err != nil {
		t.Fatalf("Failed to read recovery file: %v", err)
	}
	if strings.Contains(string(raw), "MySecurePass123") || strings.Contains(string(raw), hd.Medium) {
		t.Error("Recovery file must not contain the password or a variant")
	}

	loaded, err := ReadRecovery(dir, "recovery.json")
	if err != nil {
		t.Fatalf("ReadRecovery failed: %v", err)
	}
	got, err := testHardener().RecoverFromFile([]byte("MySecurePass123"), r, loaded, crypto.Short)
	if err != nil {
		t.Fatalf("RecoverFromFile failed: %v", err)
	}
	if got != hd.Short {
		t.Error("Recovery file should reproduce the short variant")
	}
}

func TestNewRecovery(t *testing.T) {
	h := testHardener()
	r := metadata.Record{CoreMemory: "first_dog_max"}
	hd, err := h.Harden([]byte("pw"), r)
	if err != nil {
		t.Fatalf("Harden failed: %v", err)
	}

	rec := NewRecovery("", r, hd)
	if rec.SecretKey != hd.SaltHex() || rec.MetadataHints[metadata.CoreMemory] != "fi..." || rec.Warning == "" {
		t.Errorf("Unexpected recovery %+v", rec)
	}
}

func TestReadRecoveryRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"garbage.json":   "not json",
		"algorithm.json": `{"secret_key":"00","algorithm":"MD5"}`,
		"salt.json":      `{"secret_key":"abcd","algorithm":"` + crypto.Algorithm + `"}`,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0600); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}

	for name := range files {
		if _, err := ReadRecovery(dir, name); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%s: expected ErrInvalidInput, got %v", name, err)
		}
	}
	if _, err := ReadRecovery(dir, "../outside.json"); !errors.Is(err, security.ErrPathEscapes) {
		t.Errorf("Expected ErrPathEscapes, got %v", err)
	}
}

func TestDiffHints(t *testing.T) {
	stored := metadata.Hints(metadata.Record{HouseName: "Sunset Villa", BirthdayToken: "0315"})

	if d := DiffHints(stored, stored); d != "" {
		t.Errorf("Equal hints should give an empty diff, got %q", d)
	}

	provided := metadata.Hints(metadata.Record{HouseName: "Moonrise", BirthdayToken: "0315"})
	d := DiffHints(stored, provided)
	if !strings.Contains(d, "- house_name: Su...") || !strings.Contains(d, "+ house_name: Mo...") {
		t.Errorf("Unexpected diff:\n%s", d)
	}
	if strings.Contains(d, "- birthday_token") {
		t.Errorf("Unchanged field reported as removed:\n%s", d)
	}
}
