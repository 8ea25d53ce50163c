// Package logger builds the process-wide slog.Logger from environment
// configuration. JSON output feeds log aggregation in deployment; text is for
// local development.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config is the logging configuration surface.
type Config struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`   // debug, info, warn, error
	Format string `env:"LOG_FORMAT" envDefault:"json"`  // json or text
	App    string `env:"LOG_APP_NAME" envDefault:""`    // attached as "app" when set
}

// New builds a logger from the config, writing to the given writer. A nil
// writer defaults to stderr; unknown levels and formats fall back to info and
// JSON rather than failing startup.
func New(cfg Config, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	log := slog.New(handler)
	if cfg.App != "" {
		log = log.With(slog.String("app", cfg.App))
	}
	return log
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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
