// Package strength estimates how hard a password is to guess.
//
// Entropy is the class-based estimate L * log2(N): N sums the sizes of the
// character classes present (lowercase 26, uppercase 26, digits 10, ASCII
// symbols 32, space 1, anything else 64). Classify maps bits onto five
// bands and EstimateCrackTime turns bits into an average-case search
// duration at a given guess rate.
//
// Analyze combines those with a zxcvbn pattern score, which sees
// dictionary words, keyboard walks and reuse of personal data that the
// class-based figure cannot.
package strength
