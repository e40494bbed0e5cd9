// Package logger собирает slog.Logger по настройкам из конфига.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/lumberjack.v2"

	"github.com/magabrotheeeer/meal-subscription/internal/config"
)

const envLocal = "local"

// New создаёт логгер: текстовый для local, JSON для остальных окружений.
// Если указан файл, вывод дублируется в него с ротацией через lumberjack.
func New(env string, cfg config.Log) *slog.Logger {
	return slog.New(newHandler(env, cfg, os.Stdout))
}

func newHandler(env string, cfg config.Log, stdout io.Writer) slog.Handler {
	writers := []io.Writer{stdout}
	if cfg.File != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			LocalTime:  true,
		})
	}
	out := io.MultiWriter(writers...)

	level := parseLevel(cfg.Level)
	if cfg.Level == "" && env == envLocal {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	if env == envLocal {
		return slog.NewTextHandler(out, opts)
	}
	return slog.NewJSONHandler(out, opts)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
