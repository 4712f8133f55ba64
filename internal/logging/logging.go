// Package logging configures the process-wide phuslu logger.
package logging

import (
	"os"

	"github.com/phuslu/log"

	"PriceDash/internal/config"
)

// Setup replaces log.DefaultLogger according to cfg. Console output is
// colored when stderr is a terminal. A non-empty File adds a rotating file
// writer next to the stderr writer.
func Setup(cfg config.LoggingConfig) {
	var stderr log.Writer
	switch cfg.Format {
	case "json":
		stderr = &log.IOWriter{Writer: os.Stderr}
	default:
		stderr = &log.ConsoleWriter{
			Writer:         os.Stderr,
			ColorOutput:    log.IsTerminal(os.Stderr.Fd()),
			QuoteString:    true,
			EndWithMessage: true,
		}
	}

	writer := stderr
	if cfg.File != "" {
		writer = &log.MultiEntryWriter{
			stderr,
			&log.FileWriter{
				Filename:     cfg.File,
				MaxSize:      10 * 1024 * 1024,
				MaxBackups:   5,
				EnsureFolder: true,
				LocalTime:    true,
			},
		}
	}

	log.DefaultLogger = log.Logger{
		Level:      ParseLevel(cfg.Level),
		TimeFormat: "2006-01-02T15:04:05Z07:00",
		Writer:     writer,
	}
}

// ParseLevel maps a config level name onto a phuslu level, defaulting to info.
func ParseLevel(s string) log.Level {
	switch s {
	case "debug", "info", "warn", "error", "trace":
		return log.ParseLevel(s)
	case "warning":
		return log.WarnLevel
	default:
		return log.InfoLevel
	}
}
