package security

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestValidate(t *testing.T) {
	validator, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}
	defer validator.Close()

	tests := []struct {
		name    string
		input   string
		want    string
		errType error
	}{
		{"simple file", "recovery.json", "recovery.json", nil},
		{"subdirectory", "backup/recovery.json", "backup/recovery.json", nil},
		{"dot slash", "./recovery.json", "recovery.json", nil},
		{"dot segments", "a/./b/../r.json", "a/r.json", nil},
		{"parent directory", "../recovery.json", "", ErrPathEscapes},
		{"nested parent", "a/../../r.json", "", ErrPathEscapes},
		{"absolute path", "/etc/passwd", "", ErrAbsolutePath},
		{"empty path", "", "", ErrEmptyPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := validator.Validate(tt.input)
			if tt.errType != nil {
				if !errors.Is(err, tt.errType) {
					t.Errorf("Expected %v, got %v", tt.errType, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Validate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestWriteNewAndRead(t *testing.T) {
	dir := t.TempDir()
	validator, err := New(dir)
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}
	defer validator.Close()

	if err := validator.WriteNew("recovery.json", []byte(`{"salt":"00"}`)); err != nil {
		t.Fatalf("WriteNew failed: %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, "recovery.json"))
	if err != nil {
		t.Fatalf("File should exist: %v", err)
	}
	if info.Mode().Perm()&0077 != 0 {
		t.Errorf("File should be owner-only, got %v", info.Mode().Perm())
	}

	if err := validator.WriteNew("recovery.json", []byte("again")); !errors.Is(err, ErrFileExists) {
		t.Errorf("Expected ErrFileExists, got %v", err)
	}

	data, err := validator.Read("recovery.json")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(data) != `{"salt":"00"}` {
		t.Errorf("Read returned %q", data)
	}
}

func TestEscapePrevention(t *testing.T) {
	parent := t.TempDir()
	dir := filepath.Join(parent, "work")
	if err := os.Mkdir(dir, 0700); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}

	validator, err := New(dir)
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}
	defer validator.Close()

	if err := validator.WriteNew("../escaped.json", []byte("x")); err == nil {
		t.Fatal("Write outside the root should fail")
	}
	if _, err := os.Stat(filepath.Join(parent, "escaped.json")); !os.IsNotExist(err) {
		t.Error("File must not be created outside the root")
	}
	if _, err := validator.Read("../../etc/passwd"); err == nil {
		t.Error("Read outside the root should fail")
	}
}

func TestReadTooLarge(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "big.json"), make([]byte, maxRecoveryFileSize+1), 0600); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	validator, err := New(dir)
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}
	defer validator.Close()

	if _, err := validator.Read("big.json"); !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("Expected ErrFileTooLarge, got %v", err)
	}
}
