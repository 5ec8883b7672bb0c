package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const serviceName = "pph"

// ErrNotFound is returned when no recovery key is stored for a profile.
var ErrNotFound = errors.New("recovery key not found in keyring")

// SaveRecoveryKey stores a profile's recovery data in the OS keyring
func SaveRecoveryKey(profile, secret string) error {
	if profile == "" {
		return fmt.Errorf("profile name must not be empty")
	}
	return keyring.Set(serviceName, profile, secret)
}

// GetRecoveryKey retrieves a profile's recovery data from the OS keyring
func GetRecoveryKey(profile string) (string, error) {
	secret, err := keyring.Get(serviceName, profile)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, profile)
	}
	return secret, err
}

// DeleteRecoveryKey removes a profile's recovery data from the OS keyring
func DeleteRecoveryKey(profile string) error {
	err := keyring.Delete(serviceName, profile)
	if errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, profile)
	}
	return err
}

// HasRecoveryKey checks if recovery data is stored for a profile
func HasRecoveryKey(profile string) bool {
	_, err := keyring.Get(serviceName, profile)
	return err == nil
}
