// Package logger configures the process-wide structured logger for the
// digest pipeline.
package logger

import (
	"io"
	"log/slog"
	"os"
)

var Logger *slog.Logger

// Init installs the pipeline logger as the process default.
func Init() {
	Logger = New(os.Stdout)
	slog.SetDefault(Logger)
}

// New builds a text logger writing to w, tagged with the application name so
// pipeline records are attributable when stdout is shared (cron, systemd).
// DEBUG=true raises the level.
func New(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("DEBUG") == "true" {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	return slog.New(slog.NewTextHandler(w, opts)).With("app", "newsdigest")
}

func Info(msg string, args ...any) {
	Logger.Info(msg, args...)
}

func Error(msg string, args ...any) {
	Logger.Error(msg, args...)
}

func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}

func Warn(msg string, args ...any) {
	Logger.Warn(msg, args...)
}
