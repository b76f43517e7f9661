// Package logging builds the process logger. Development gets a console
// writer at debug level; everything else gets JSON at info.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/km-arc/go-multihost/framework/config"
)

// New creates the application logger from config.
func New(cfg *config.Config) zerolog.Logger {
	level := zerolog.InfoLevel
	if cfg.App.Debug {
		level = zerolog.DebugLevel
	}

	if cfg.Environment().IsDevelopment() {
		output := zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
		return zerolog.New(output).Level(level).With().
			Timestamp().
			Str("app", cfg.App.Name).
			Logger()
	}

	return zerolog.New(os.Stdout).Level(level).With().
		Timestamp().
		Str("app", cfg.App.Name).
		Logger()
}

// Nop returns a disabled logger, for tests and defaults.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
