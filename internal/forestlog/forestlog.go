// Package forestlog wires a process-wide zerolog logger, optionally
// rotated through lumberjack when a log file path is configured,
// replacing a bare fmt.Fprintf-to-stderr bool gate with structured,
// leveled logging: the dataspec inference pass, the registry, and the
// split finder all have enough going on to want fields rather than a
// single formatted line.
package forestlog

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config selects where log output goes and how verbose it is.
type Config struct {
	Level      string // debug, info, warn, error; defaults to info
	FilePath   string // empty writes to stderr
	MaxSizeMB  int    // lumberjack rotation threshold; defaults to 100
	MaxBackups int    // defaults to 3
	MaxAgeDays int    // defaults to 28
}

// New builds a zerolog.Logger per cfg. Every package in this repo that
// logs takes a zerolog.Logger explicitly rather than reaching for a
// package-level global.
func New(cfg Config) zerolog.Logger {
	var w io.Writer = os.Stderr
	if cfg.FilePath != "" {
		w = &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    orDefault(cfg.MaxSizeMB, 100),
			MaxBackups: orDefault(cfg.MaxBackups, 3),
			MaxAge:     orDefault(cfg.MaxAgeDays, 28),
		}
	}
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
