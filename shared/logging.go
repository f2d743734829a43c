package shared

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// LogLevelEnv is the environment variable consulted by SetupLogging.
const LogLevelEnv = "LOGLEVEL"

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelInfo:
		return slog.LevelInfo
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	}

	return slog.LevelInfo
}

// ParseLevel maps a severity name to a slog level. Unrecognized or empty
// names fall back to info.
func ParseLevel(name string) slog.Level {
	normalized := LogLevel(strings.ToLower(strings.TrimSpace(name)))
	for _, level := range []LogLevel{LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError} {
		if normalized == level {
			return level.SlogLevel()
		}
	}

	return slog.LevelInfo
}

// SetupLogging installs the process-wide slog handler. The level is read
// once from LOGLEVEL; a nil writer logs to stderr.
func SetupLogging(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(os.Getenv(LogLevelEnv)),
	})))
}
