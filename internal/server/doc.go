// Package server exposes hardening, strength analysis and the brute-force
// simulator as a small JSON API with RFC 7807 errors, request ids and
// per-client rate limiting.
package server
