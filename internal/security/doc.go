// Package security confines recovery file I/O to the working directory.
package security
