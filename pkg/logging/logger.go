// Package logging provides structured logging for watchsync using zerolog.
// Console output is used when stderr is a terminal, JSON lines otherwise.
//
// Example usage:
//
//	log := logging.Default()
//	log.Info().Str("service", "mal").Int("entries", 412).Msg("Fetched anime list")
//
//	ctx := logging.WithService(ctx, "trakt")
//	logging.FromContext(ctx).Debug().Msg("Refreshing token")
package logging

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// defaultLogger is built from the LOG_* environment until the CLI
// replaces it with the configured one.
var defaultLogger = NewLoggerFromConfig(DefaultConfig())

// Default returns the default global logger.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault sets the default global logger.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger
}

// Debug starts a new debug level log event.
func Debug() *zerolog.Event {
	return defaultLogger.Debug()
}

// Info starts a new info level log event.
func Info() *zerolog.Event {
	return defaultLogger.Info()
}

// Warn starts a new warning level log event.
func Warn() *zerolog.Event {
	return defaultLogger.Warn()
}

// Error starts a new error level log event.
func Error() *zerolog.Event {
	return defaultLogger.Error()
}

func terminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
