// Package storage provides the BBolt database interface for the pph
// recovery vault.
//
// Database structure uses two buckets:
//   - config: vault version and timestamps
//   - profiles: one JSON record per profile name
//
// A profile holds the salt (recovery key), iteration count, algorithm,
// metadata hints and argon2id verification hashes of the hardened
// variants. The base password and raw metadata are never stored.
//
// BBolt provides ACID transactions, file locking, and corruption detection.
package storage
