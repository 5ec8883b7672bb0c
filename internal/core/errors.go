package core

import (
	"errors"

	"github.com/illarion/pph/internal/crypto"
	"github.com/illarion/pph/internal/storage"
)

// Error kinds raised by the leaf packages, re-exported so callers only
// need to import core.
var (
	ErrInvalidInput        = crypto.ErrInvalidInput
	ErrUnsupportedAlphabet = crypto.ErrUnsupportedAlphabet
	ErrOverflow            = crypto.ErrOverflow
	ErrProfileNotFound     = storage.ErrProfileNotFound
)

var (
	ErrNotInitialized   = errors.New("pph vault not initialized")
	ErrProfileExists    = errors.New("profile already exists")
	ErrWrongCredentials = errors.New("password or metadata do not reproduce the stored variant")
	ErrPasswordRequired = errors.New("password required")
)
