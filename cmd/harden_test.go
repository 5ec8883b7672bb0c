package cmd

import (
	"errors"
	"testing"

	"github.com/illarion/pph/internal/crypto"
)

func TestHardenOptionsValidate(t *testing.T) {
	tests := []struct {
		name string
		opts HardenOptions
		ok   bool
	}{
		{"defaults", HardenOptions{}, true},
		{"save with keyring", HardenOptions{Save: "work", Keyring: true, Overwrite: true}, true},
		{"recovery file only", HardenOptions{RecoveryFile: "recovery.json"}, true},
		{"keyring without save", HardenOptions{Keyring: true, RecoveryFile: "recovery.json"}, false},
		{"overwrite without save", HardenOptions{Overwrite: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate failed: %v", err)
			}
			if !tt.ok && !errors.Is(err, crypto.ErrInvalidInput) {
				t.Errorf("Expected ErrInvalidInput, got %v", err)
			}
		})
	}
}
