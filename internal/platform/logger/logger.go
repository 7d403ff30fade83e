package logger

import (
	"log/slog"
	"os"

	"github.com/ArmandoKoffi/ChatApp-backend/internal/config"
)

func NewLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.Logger.Level {
	case "debug", "DEBUG":
		level = slog.LevelDebug
	case "warn", "WARN":
		level = slog.LevelWarn
	case "error", "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: true, // critical for incident debugging
	}
	var handler slog.Handler
	switch cfg.Logger.Format {
	case "TEXT", "text":
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	log := slog.New(handler).With(
		slog.String("service", cfg.Service.Name),
		slog.String("env", cfg.Service.Env),
		slog.Int("pid", os.Getpid()),
	)
	slog.SetDefault(log)
	return log
}
