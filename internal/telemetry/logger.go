package telemetry

import (
	"io"
	"log/slog"
	"os"
)

// InitLogger configures the default slog logger. Output is JSON on stdout,
// duplicated to logFile when one is given.
func InitLogger(debug bool, logFile string) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	var out io.Writer = os.Stdout
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err == nil {
			out = io.MultiWriter(os.Stdout, f)
		} else {
			slog.Error("Failed to open log file", "path", logFile, "error", err)
		}
	}

	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}
