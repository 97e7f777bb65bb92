package logging

import (
	"customer-management/internal/config"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/traceid"
)

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the process logger and installs it as slog's default.
// Records carry the request trace id when one is present on the context.
func NewLogger(cfg config.LoggerConfig) *slog.Logger {
	logger := slog.New(newHandler(os.Stdout, cfg))
	slog.SetDefault(logger)
	return logger
}

func newHandler(w io.Writer, cfg config.LoggerConfig) slog.Handler {
	level := ParseLevel(cfg.Level)
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Encoding, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return traceid.LogHandler(handler)
}
