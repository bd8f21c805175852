// Package logging configures the process-wide zerolog logger from LOG_*
// environment variables.
package logging

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New builds the root logger. LOG_LEVEL defaults to info, LOG_FORMAT to
// console; set LOG_FORMAT=json for machine-readable output in deployment.
func New() zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(os.Getenv("LOG_LEVEL")))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		logger = zerolog.New(os.Stderr)
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	return logger.Level(level).With().Timestamp().Str("service", "rota-api").Logger()
}
