// Package crypto provides the key derivation engine for pph.
//
// Key derivation uses PBKDF2-HMAC-SHA256 with:
//   - 32-byte random salt, fresh for every hardening operation
//   - 100,000 iterations by default, 1,000 minimum
//   - password || 0x00 || canonical metadata as the secret
//
// Each hardened variant (short 16, medium 24, long 32 characters) is
// expanded from the PBKDF2 master key with HKDF-SHA256 under its own label,
// so no variant is a prefix of another and one variant's bytes do not
// reveal the master key. Bytes are mapped onto Alphabet by modular indexing.
//
// Memory safety:
//   - Use ClearBytes() to zero sensitive data after use
package crypto
