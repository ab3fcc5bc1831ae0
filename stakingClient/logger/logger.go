package logger

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// New creates a zerolog logger writing to out. The CLI passes stderr so
// stdout stays free for command output. Supports console/json format, level
// filtering, and optional sampling.
func New(out io.Writer, logLevel int, logFormat string, logSampler bool) zerolog.Logger {
	writer := out
	if logFormat != "json" {
		writer = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}

	logger := zerolog.New(writer).
		Level(zerolog.Level(logLevel)).
		With().
		Timestamp().
		Logger()

	if logSampler {
		logger = logger.Sample(&zerolog.BasicSampler{N: 5})
	}
	return logger
}

// ParseLevel accepts a zerolog level name ("debug", "info", ...) or its
// numeric value and returns the numeric level.
func ParseLevel(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < int(zerolog.DebugLevel) || n > int(zerolog.PanicLevel) {
			return 0, fmt.Errorf("log level %d out of range", n)
		}
		return n, nil
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil {
		return 0, err
	}
	if lvl < zerolog.DebugLevel || lvl > zerolog.PanicLevel {
		return 0, fmt.Errorf("unsupported log level %q", s)
	}
	return int(lvl), nil
}
