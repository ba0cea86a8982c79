package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger defines a standard interface for logging.
type Logger interface {
	Debugf(format string, v ...interface{})
	Infof(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
}

// ZeroLogger is a wrapper around a zerolog logger.
type ZeroLogger struct {
	zl zerolog.Logger
}

// NewLogger creates a new logger instance based on the specified level.
// Output goes to w, or to stderr when w is nil.
func NewLogger(level string, w io.Writer) Logger {
	if w == nil {
		w = os.Stderr
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	zl := zerolog.New(w).Level(lvl).With().
		Timestamp().
		Str("service", "mpdkit").
		Logger()

	return &ZeroLogger{zl: zl}
}

// WithComponent returns a child logger annotated with the given component name.
func WithComponent(l Logger, component string) Logger {
	zlog, ok := l.(*ZeroLogger)
	if !ok {
		return l
	}
	return &ZeroLogger{zl: zlog.zl.With().Str("component", component).Logger()}
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return &ZeroLogger{zl: zerolog.Nop()}
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}

// Debugf logs a message at the debug level.
func (l *ZeroLogger) Debugf(format string, v ...interface{}) {
	l.zl.Debug().Msg(fmt.Sprintf(format, v...))
}

// Infof logs a message at the info level.
func (l *ZeroLogger) Infof(format string, v ...interface{}) {
	l.zl.Info().Msg(fmt.Sprintf(format, v...))
}

// Warnf logs a message at the warn level.
func (l *ZeroLogger) Warnf(format string, v ...interface{}) {
	l.zl.Warn().Msg(fmt.Sprintf(format, v...))
}

// Errorf logs a message at the error level.
func (l *ZeroLogger) Errorf(format string, v ...interface{}) {
	l.zl.Error().Msg(fmt.Sprintf(format, v...))
}
