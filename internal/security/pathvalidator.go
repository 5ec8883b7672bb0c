package security

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Recovery files are capped well above any realistic size.
const maxRecoveryFileSize = 1 << 20

var (
	ErrPathEscapes  = errors.New("path escapes working directory")
	ErrAbsolutePath = errors.New("absolute paths are not allowed")
	ErrEmptyPath    = errors.New("empty path not allowed")
	ErrFileExists   = errors.New("file already exists")
	ErrFileTooLarge = errors.New("file too large")
)

// PathValidator confines recovery file reads and writes to one directory
// using os.Root, so a crafted path cannot drop a salt outside of it.
type PathValidator struct {
	root *os.Root
	dir  string
}

// New opens dir as the confinement root.
func New(dir string) (*PathValidator, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	root, err := os.OpenRoot(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open root directory: %w", err)
	}

	return &PathValidator{root: root, dir: absPath}, nil
}

// Close releases the root handle.
func (pv *PathValidator) Close() error {
	if pv.root != nil {
		return pv.root.Close()
	}
	return nil
}

// Validate rejects empty, absolute and escaping paths and returns the
// cleaned, slash-separated relative path.
func (pv *PathValidator) Validate(userPath string) (string, error) {
	if userPath == "" {
		return "", ErrEmptyPath
	}
	if filepath.IsAbs(userPath) {
		return "", fmt.Errorf("%w: %s", ErrAbsolutePath, userPath)
	}

	cleanPath := filepath.Clean(userPath)
	if !filepath.IsLocal(cleanPath) {
		return "", fmt.Errorf("%w: %s", ErrPathEscapes, userPath)
	}

	return filepath.ToSlash(cleanPath), nil
}

// WriteNew writes data to a file that must not exist yet, owner-only.
func (pv *PathValidator) WriteNew(path string, data []byte) error {
	clean, err := pv.Validate(path)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	f, err := pv.root.OpenFile(filepath.FromSlash(clean), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", ErrFileExists, clean)
		}
		return fmt.Errorf("failed to create %s: %w", clean, err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", clean, err)
	}
	return f.Close()
}

// Read reads a recovery file inside the root.
func (pv *PathValidator) Read(path string) ([]byte, error) {
	clean, err := pv.Validate(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	f, err := pv.root.Open(filepath.FromSlash(clean))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", clean, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxRecoveryFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", clean, err)
	}
	if len(data) > maxRecoveryFileSize {
		return nil, fmt.Errorf("%w: %s", ErrFileTooLarge, clean)
	}
	return data, nil
}
