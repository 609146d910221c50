package cmdlog

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
)

type ctxKey int

const loggerKey ctxKey = 0

// New returns a new logger writing to w. Timestamps are only shown at debug level
func New(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: level <= log.DebugLevel,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// WithLogger returns a context that carries the logger
func WithLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the logger of ctx or the default logger if there is none
func FromContext(ctx context.Context) *log.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
			return l
		}
	}
	return log.Default()
}
