// Package config loads pph settings from an optional .env file and PPH_*
// environment variables, and builds the slog logger.
package config
