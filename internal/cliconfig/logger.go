package cliconfig

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger returns the CLI logger: human-readable output on stderr so stdout
// stays free for consumed batches.
func Logger(level zerolog.Level) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// Redacted returns a copy of cfg with secrets masked, for logging.
func (c Config) Redacted() Config {
	if c.AuthToken != "" {
		c.AuthToken = "*****"
	}
	if c.OAuthClientSecret != "" {
		c.OAuthClientSecret = "*****"
	}
	return c
}
