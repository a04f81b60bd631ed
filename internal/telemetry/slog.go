package telemetry

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// logOutput is where the configured handler writes. Tests swap it for a
// buffer; everything else logs to stdout.
var logOutput io.Writer = os.Stdout

// parseLevel maps a config string to a slog level, defaulting to info.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// newHandler builds the slog handler for the given format and level.
// "json" selects the machine-readable handler for production; anything else
// falls back to the text handler for local development.
func newHandler(w io.Writer, format string, lvl slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl == slog.LevelDebug, // include file:line only when debugging
	}
	if strings.ToLower(format) == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// SetupLogger configures the global slog default logger from the logging
// section of the application configuration. Installing it as the default
// lets slog.Info/Warn/Error calls elsewhere in the application use it
// without carrying a *slog.Logger through every constructor.
func SetupLogger(format, level string) {
	lvl := parseLevel(level)
	slog.SetDefault(slog.New(newHandler(logOutput, format, lvl)))
	slog.Info("logger initialised", "format", format, "level", lvl.String())
}
