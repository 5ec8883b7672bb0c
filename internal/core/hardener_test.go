package core

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/illarion/pph/internal/crypto"
	"github.com/illarion/pph/internal/metadata"
)

func testHardener() *Hardener {
	return New(Options{Iterations: crypto.MinIters})
}

func TestHardenScenario(t *testing.T) {
	h := testHardener()
	r := metadata.Record{BirthdayToken: "0315"}

	hd, err := h.Harden([]byte("MyPassword123"), r)
	if err != nil {
		t.Fatalf("Harden failed: %v", err)
	}

	if len(hd.Short) != 16 || len(hd.Medium) != 24 || len(hd.Long) != 32 {
		t.Errorf("Unexpected lengths: %d %d %d", len(hd.Short), len(hd.Medium), len(hd.Long))
	}
	if hd.Short == hd.Medium[:16] || hd.Medium == hd.Long[:24] {
		t.Error("Variants should not be prefixes of each other")
	}
	for _, v := range crypto.Variants {
		for _, c := range hd.Variant(v) {
			if !strings.ContainsRune(crypto.Alphabet, c) {
				t.Errorf("%s variant contains %q outside the alphabet", v, c)
			}
		}
	}
	if len(hd.Salt) != crypto.SaltSize || len(hd.SaltHex()) != 2*crypto.SaltSize {
		t.Errorf("Unexpected salt size %d", len(hd.Salt))
	}

	again, err := h.Regenerate([]byte("MyPassword123"), r, hd.Salt, hd.Iterations)
	if err != nil {
		t.Fatalf("Regenerate failed: %v", err)
	}
	if again.Short != hd.Short || again.Medium != hd.Medium || again.Long != hd.Long {
		t.Errorf("Regenerate mismatch: %+v vs %+v", again, hd)
	}
}

func TestHardenFreshSaltEachCall(t *testing.T) {
	h := testHardener()
	a, err := h.Harden([]byte("MyPassword123"), metadata.Record{})
	if err != nil {
		t.Fatalf("Harden failed: %v", err)
	}
	b, err := h.Harden([]byte("MyPassword123"), metadata.Record{})
	if err != nil {
		t.Fatalf("Harden failed: %v", err)
	}
	if bytes.Equal(a.Salt, b.Salt) {
		t.Error("Salts should differ between calls")
	}
	if a.Medium == b.Medium {
		t.Error("Variants should differ under different salts")
	}
}

func TestMetadataChangesOutput(t *testing.T) {
	h := testHardener()
	hd, err := h.Harden([]byte("pw"), metadata.Record{HouseName: "Sunset Villa"})
	if err != nil {
		t.Fatalf("Harden failed: %v", err)
	}

	// Normalization makes case and surrounding space irrelevant.
	same, err := h.Regenerate([]byte("pw"), metadata.Record{HouseName: "  SUNSET VILLA "}, hd.Salt, hd.Iterations)
	if err != nil {
		t.Fatalf("Regenerate failed: %v", err)
	}
	if same.Long != hd.Long {
		t.Error("Normalized metadata should reproduce the same variant")
	}

	other, err := h.Regenerate([]byte("pw"), metadata.Record{HouseName: "Sunrise Villa"}, hd.Salt, hd.Iterations)
	if err != nil {
		t.Fatalf("Regenerate failed: %v", err)
	}
	if other.Long == hd.Long {
		t.Error("Different metadata should change the variant")
	}
}

func TestHardenErrors(t *testing.T) {
	h := testHardener()
	if _, err := h.Harden(nil, metadata.Record{}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Empty password: expected ErrInvalidInput, got %v", err)
	}
	if _, err := h.Regenerate([]byte("pw"), metadata.Record{}, []byte("short"), crypto.MinIters); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Bad salt: expected ErrInvalidInput, got %v", err)
	}
	if _, err := New(Options{Iterations: 10}).Harden([]byte("pw"), metadata.Record{}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Low iterations: expected ErrInvalidInput, got %v", err)
	}
	if _, err := New(Options{Iterations: crypto.MinIters, Alphabet: ""}).Harden([]byte("pw"), metadata.Record{}); err != nil {
		t.Errorf("Empty alphabet option should fall back to the default, got %v", err)
	}
}

func TestVerify(t *testing.T) {
	h := testHardener()
	r := metadata.Record{PhoneSuffix: "5847"}
	hd, err := h.Harden([]byte("MySecurePass123"), r)
	if err != nil {
		t.Fatalf("Harden failed: %v", err)
	}

	ok, err := h.Verify([]byte("MySecurePass123"), r, hd.Salt, hd.Iterations, crypto.Medium, hd.Medium)
	if err != nil || !ok {
		t.Errorf("Verify with the right inputs: ok=%v err=%v", ok, err)
	}
	ok, err = h.Verify([]byte("WrongPassword123"), r, hd.Salt, hd.Iterations, crypto.Medium, hd.Medium)
	if err != nil || ok {
		t.Errorf("Verify with a wrong password: ok=%v err=%v", ok, err)
	}
}

func TestAnalyzeHardened(t *testing.T) {
	h := testHardener()
	r := metadata.Record{BirthdayToken: "0315"}
	hd, err := h.Harden([]byte("MyPassword123"), r)
	if err != nil {
		t.Fatalf("Harden failed: %v", err)
	}

	a, err := h.AnalyzeHardened([]byte("MyPassword123"), r, hd)
	if err != nil {
		t.Fatalf("AnalyzeHardened failed: %v", err)
	}
	if len(a.Variants) != 3 {
		t.Fatalf("Expected 3 variant reports, got %d", len(a.Variants))
	}
	for name, report := range a.Variants {
		if report.Entropy <= a.Original.Entropy {
			t.Errorf("%s variant entropy %v should exceed original %v", name, report.Entropy, a.Original.Entropy)
		}
	}

	single, err := h.AnalyzeStrength("MyPassword123")
	if err != nil {
		t.Fatalf("AnalyzeStrength failed: %v", err)
	}
	if single.Entropy != a.Original.Entropy {
		t.Errorf("Entropy mismatch: %v vs %v", single.Entropy, a.Original.Entropy)
	}
}

func TestSimulateBruteForce(t *testing.T) {
	h := testHardener()
	res, err := h.SimulateBruteForce(context.Background(), "ab", 1000)
	if err != nil {
		t.Fatalf("SimulateBruteForce failed: %v", err)
	}
	if !res.Found || res.Attempts > 1000 {
		t.Errorf("Unexpected result %+v", res)
	}
	if _, err := h.SimulateBruteForce(context.Background(), "ab", 0); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestWithOverrides(t *testing.T) {
	h := testHardener()
	if h.Iterations() != crypto.MinIters {
		t.Fatalf("Iterations: got %d", h.Iterations())
	}

	same := h.With(0, 0)
	if same.Iterations() != crypto.MinIters || same.guessRate != h.guessRate {
		t.Errorf("Zero overrides should keep settings: %+v", same)
	}

	c := h.With(2000, 1e3)
	if c.Iterations() != 2000 || h.Iterations() != crypto.MinIters {
		t.Errorf("With must not modify the receiver: %d, %d", c.Iterations(), h.Iterations())
	}
	hd, err := c.Harden([]byte("pw"), metadata.Record{})
	if err != nil {
		t.Fatalf("Harden failed: %v", err)
	}
	if hd.Iterations != 2000 {
		t.Errorf("Hardened iterations: got %d", hd.Iterations)
	}

	slow, err := c.AnalyzeStrength("abcdef")
	if err != nil {
		t.Fatalf("AnalyzeStrength failed: %v", err)
	}
	fast, _ := h.AnalyzeStrength("abcdef")
	if slow.CrackTime.Seconds <= fast.CrackTime.Seconds {
		t.Errorf("Lower guess rate should give a longer crack time")
	}

	if _, err := h.With(10, 0).Harden([]byte("pw"), metadata.Record{}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput below the floor, got %v", err)
	}
	if _, err := h.With(0, -1).AnalyzeStrength("abc"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for negative rate, got %v", err)
	}
}
