package mixloop

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

var logger = slog.Default()

func ResolveLogLevel(level string) (slog.Level, error) {
	switch level {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%w: invalid log level: %s", ErrInvalidConfig, level)
	}
}

// InitLogger installs a text logger on stderr for the package and
// returns it so commands can share it.
func InitLogger(level string) (*slog.Logger, error) {
	return InitLoggerTo(os.Stderr, level)
}

func InitLoggerTo(w io.Writer, level string) (*slog.Logger, error) {
	logLevel, err := ResolveLogLevel(level)
	if err != nil {
		return nil, err
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	})
	logger = slog.New(handler)
	return logger, nil
}

// Logger returns the package logger.
func Logger() *slog.Logger {
	return logger
}
