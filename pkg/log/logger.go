// Package log provides the structured logging facade used across the
// isoforest library.
//
// Loggers accept alternating key/value pairs, slog-style, and are backed by
// zerolog. Library code never writes to stderr directly: degenerate-input
// downgrades, fit progress and the like all go through this facade so that
// embedding applications can redirect or silence them.
package log

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// Well-known field keys, shared so log output stays greppable.
const (
	ModelNameKey = "model"
	ComponentKey = "component"
	OperationKey = "operation"
	TreeIndexKey = "tree"
)

// Logger is the minimal structured logging interface used by the library.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)

	// With returns a child logger with the given fields attached to every event.
	With(keysAndValues ...any) Logger
}

var (
	mu   sync.RWMutex
	root = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(zerolog.WarnLevel).
		With().Timestamp().Logger()
)

// SetOutput redirects all library logging to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	root = root.Output(w)
}

// SetLevel sets the global minimum level for library logging.
func SetLevel(level zerolog.Level) {
	mu.Lock()
	defer mu.Unlock()
	root = root.Level(level)
}

// GetLogger returns the root library logger.
func GetLogger() Logger {
	mu.RLock()
	defer mu.RUnlock()
	return &zlogger{zl: root}
}

// GetLoggerWithName returns a logger tagged with a component name.
func GetLoggerWithName(name string) Logger {
	mu.RLock()
	defer mu.RUnlock()
	return &zlogger{zl: root.With().Str(ComponentKey, name).Logger()}
}

type zlogger struct {
	zl zerolog.Logger
}

func (l *zlogger) Debug(msg string, keysAndValues ...any) {
	emit(l.zl.Debug(), msg, keysAndValues)
}

func (l *zlogger) Info(msg string, keysAndValues ...any) {
	emit(l.zl.Info(), msg, keysAndValues)
}

func (l *zlogger) Warn(msg string, keysAndValues ...any) {
	emit(l.zl.Warn(), msg, keysAndValues)
}

func (l *zlogger) Error(msg string, keysAndValues ...any) {
	emit(l.zl.Error(), msg, keysAndValues)
}

func (l *zlogger) With(keysAndValues ...any) Logger {
	ctx := l.zl.With()
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		ctx = ctx.Interface(key(keysAndValues[i]), keysAndValues[i+1])
	}
	return &zlogger{zl: ctx.Logger()}
}

func emit(ev *zerolog.Event, msg string, keysAndValues []any) {
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		ev = ev.Interface(key(keysAndValues[i]), keysAndValues[i+1])
	}
	ev.Msg(msg)
}

func key(k any) string {
	if s, ok := k.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", k)
}
