// Package logging configures the zerolog logger shared by every namesink package.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel controls how much namesink reports
type LogLevel int

const (
	LogLevelQuiet   LogLevel = iota // errors only
	LogLevelNormal                  // info and above
	LogLevelVerbose                 // everything, including per-item debug lines
)

func (l LogLevel) String() string {
	switch l {
	case LogLevelQuiet:
		return "quiet"
	case LogLevelVerbose:
		return "verbose"
	default:
		return "normal"
	}
}

// ParseLogLevel converts a config or flag value into a LogLevel
func ParseLogLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "quiet":
		return LogLevelQuiet, nil
	case "normal", "":
		return LogLevelNormal, nil
	case "verbose":
		return LogLevelVerbose, nil
	default:
		return LogLevelNormal, fmt.Errorf("unknown log level: %s", s)
	}
}

// Zerolog maps a LogLevel onto the zerolog level it enables
func (l LogLevel) Zerolog() zerolog.Level {
	switch l {
	case LogLevelQuiet:
		return zerolog.ErrorLevel
	case LogLevelVerbose:
		return zerolog.DebugLevel
	default:
		return zerolog.InfoLevel
	}
}

// Setup installs a console logger writing to w as the global logger
func Setup(level LogLevel, w io.Writer) zerolog.Logger {
	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
	}).With().Timestamp().Logger().Level(level.Zerolog())

	log.Logger = logger
	return logger
}

// Discard silences the global logger. Used while the TUI owns the terminal.
func Discard() {
	log.Logger = zerolog.Nop()
}
