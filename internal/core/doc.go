// Package core ties the derivation, analysis and simulation packages
// together and keeps recovery profiles.
//
// Hardener is the stateless facade:
//   - Harden: derive short, medium and long variants under a fresh salt
//   - Regenerate / RegenerateVariant: derive again from a stored salt
//   - AnalyzeStrength / AnalyzeHardened: entropy, category and crack time
//   - SimulateBruteForce: bounded guessing demonstration
//
// Vault persists what recovery needs (salt, iterations, hints and argon2id
// verifiers) in a bbolt file, and Recovery is the portable JSON form of
// the same data.
package core
