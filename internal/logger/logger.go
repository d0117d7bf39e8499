// Package logger builds zerolog loggers for the pipeline.
//
// There is deliberately no package-level logger: every stage receives its
// logger handle explicitly, so two pipeline invocations never share
// mutable logging state.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options configures a root logger.
type Options struct {
	Level  string    // trace, debug, info, warn, error; defaults to info
	Format string    // console or json; defaults to console
	Writer io.Writer // defaults to os.Stderr
}

// New builds a root logger from opts.
func New(opts Options) zerolog.Logger {
	var w io.Writer = os.Stderr
	if opts.Writer != nil {
		w = opts.Writer
	}
	if strings.ToLower(opts.Format) != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(w).Level(parseLevel(opts.Level)).With().Timestamp().Logger()
}

// ForStage returns a child logger tagged with the stage name.
func ForStage(log zerolog.Logger, stage string) zerolog.Logger {
	return log.With().Str("stage", stage).Logger()
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "", "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
