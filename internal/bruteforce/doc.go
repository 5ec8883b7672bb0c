// Package bruteforce runs bounded guessing attacks against a known target
// to illustrate crack-time estimates.
//
// Guesses are drawn from the character classes present in the target,
// either in lexicographic order (Sequential) or uniformly at random from a
// seed (Random). A run never exceeds its attempt limit nor
// MaxAttemptsCeiling, and stops early when its context is cancelled.
//
// The simulator compares guesses with the target directly and must never be
// pointed at a real credential check.
package bruteforce
