// Package logging builds the zerolog loggers used across reviewdb.
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mickamy/reviewdb/orm"
)

// Config controls logger construction.
type Config struct {
	// Level is a zerolog level name ("debug", "info", ...). Empty means info.
	Level string
	// Pretty switches to human-readable console output.
	Pretty bool
	// Output defaults to os.Stderr.
	Output io.Writer
}

// New returns a logger with timestamps at the configured level.
// An unknown level falls back to info.
func New(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// QueryLogger implements orm.Logger on top of zerolog. Queries are logged
// at debug level with the logger carried in ctx when there is one, so
// fields such as tx_id follow the query.
type QueryLogger struct {
	base zerolog.Logger
}

var _ orm.Logger = (*QueryLogger)(nil)

// NewQueryLogger returns a QueryLogger falling back to base.
func NewQueryLogger(base zerolog.Logger) *QueryLogger {
	return &QueryLogger{base: base}
}

func (l *QueryLogger) Log(ctx context.Context, query string, args ...any) {
	logger := zerolog.Ctx(ctx)
	if logger.GetLevel() == zerolog.Disabled {
		logger = &l.base
	}
	logger.Debug().Str("query", query).Interface("args", args).Msg("sql")
}
