package log

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the root logger services derive their tagged loggers from.
// Console output stays human readable; production drops colors and debug.
func New(environment string) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    environment == "production",
	}

	logger := zerolog.New(output).With().
		Timestamp().
		Str("app", "classbook").
		Logger()

	level := zerolog.DebugLevel
	if environment == "production" {
		level = zerolog.InfoLevel
	}
	if override, err := zerolog.ParseLevel(os.Getenv("CLASSBOOK_LOG_LEVEL")); err == nil && override != zerolog.NoLevel {
		level = override
	}
	zerolog.SetGlobalLevel(level)

	return logger
}
