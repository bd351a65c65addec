package app

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/heartmarshall/calc-content-backend/internal/config"
	"github.com/heartmarshall/calc-content-backend/pkg/ctxutil"
)

// AppName tags every record so content-service logs can be told apart in a
// shared sink.
const AppName = "calc-content-backend"

// NewLogger builds the process logger on stderr and installs it as the slog
// default. "json" is the production format; anything else is text with
// source locations. Unknown levels fall back to info.
func NewLogger(cfg config.LogConfig) *slog.Logger {
	logger := newLogger(os.Stderr, cfg)
	slog.SetDefault(logger)
	return logger
}

func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	jsonFormat := strings.EqualFold(strings.TrimSpace(cfg.Format), "json")
	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: !jsonFormat,
	}

	var handler slog.Handler = slog.NewTextHandler(w, opts)
	if jsonFormat {
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(ctxutil.NewLogHandler(handler)).With(slog.String("app", AppName))
}

func parseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
