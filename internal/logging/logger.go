package logging

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init initializes the global logger with configuration from environment variables.
// LOG_LEVEL controls the log level: debug, info, warn, error (default: info)
// LOG_FORMAT=console switches from JSON lines to human-readable output
func Init() {
	zerolog.SetGlobalLevel(ParseLevel(os.Getenv("LOG_LEVEL")))
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "console") {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		return
	}
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// ParseLevel maps a level name to a zerolog level, defaulting to info
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
