package main

import (
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// setupLogging installs the process-wide slog handler. It runs twice on
// startup: once before the config is loaded so config-load warnings already
// go through a real handler, and again once the configured level is known.
// An empty levelStr means debug in dev and info in prod.
func setupLogging(env, levelStr string) {
	prod := env == "prod" || env == "production"

	level := slog.LevelDebug
	if prod {
		level = slog.LevelInfo
	}
	if levelStr != "" {
		level = parseLevel(levelStr)
	}

	var handler slog.Handler
	if prod {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey {
					return slog.String("ts", a.Value.Time().UTC().Format(time.RFC3339Nano))
				}
				return a
			},
		})
	} else {
		handler = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			AddSource:  true,
			TimeFormat: "15:04:05.000",
			NoColor:    !isatty.IsTerminal(os.Stdout.Fd()),
		})
	}

	slog.SetDefault(slog.New(handler))

	// Route the stdlib logger through slog so nothing prints unformatted.
	log.SetFlags(0)
	log.SetOutput(slog.NewLogLogger(handler, slog.LevelInfo).Writer())
}

// parseLevel reads a slog level name, falling back to info on anything the
// config validator would have rejected anyway.
func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}
