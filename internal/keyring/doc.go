// Package keyring caches recovery files in the operating system keyring,
// keyed by profile name.
package keyring
