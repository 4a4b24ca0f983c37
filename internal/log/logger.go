// Package log provides the structured logger used throughout sfuzz. It
// wraps log/slog with a small set of named levels and a module tag so
// that dispatcher, JIT, and orchestrator output can be filtered and
// correlated without string-matching free-form messages.
package log

import (
	"context"
	"log/slog"
	"math"
	"os"
	"runtime"
	"time"
)

const (
	levelMaxVerbosity slog.Level = math.MinInt
	LevelTrace        slog.Level = -8
	LevelDebug                   = slog.LevelDebug
	LevelInfo                    = slog.LevelInfo
	LevelWarn                    = slog.LevelWarn
	LevelError                   = slog.LevelError
	LevelCrit         slog.Level = 12
)

// LevelAlignedString returns a 5-character name for l, for fixed-width output.
func LevelAlignedString(l slog.Level) string {
	switch l {
	case LevelTrace:
		return "TRACE"
	case slog.LevelDebug:
		return "DEBUG"
	case slog.LevelInfo:
		return "INFO "
	case slog.LevelWarn:
		return "WARN "
	case slog.LevelError:
		return "ERROR"
	case LevelCrit:
		return "CRIT "
	default:
		return "??? "
	}
}

// Logger writes key/value pairs tagged with a module name to a slog.Handler.
type Logger interface {
	With(ctx ...any) Logger
	Trace(module, msg string, ctx ...any)
	Debug(module, msg string, ctx ...any)
	Info(module, msg string, ctx ...any)
	Warn(module, msg string, ctx ...any)
	Error(module, msg string, ctx ...any)
	// Crit logs at the critical level and terminates the process.
	Crit(module, msg string, ctx ...any)
	Enabled(ctx context.Context, level slog.Level) bool
	Handler() slog.Handler
}

type logger struct {
	inner *slog.Logger
}

// New returns a Logger backed by h.
func New(h slog.Handler) Logger {
	return &logger{inner: slog.New(h)}
}

// NewText returns a Logger writing aligned-level text to w (os.Stderr by
// default), at or above minLevel.
func NewText(w *os.File, minLevel slog.Level) Logger {
	if w == nil {
		w = os.Stderr
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: minLevel})
	return New(h)
}

func (l *logger) Handler() slog.Handler { return l.inner.Handler() }

func (l *logger) write(level slog.Level, module, msg string, attrs ...any) {
	if !l.inner.Enabled(context.Background(), level) {
		return
	}
	var pcs [1]uintptr
	runtime.Callers(3, pcs[:])
	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	r.AddAttrs(slog.String("module", module))
	r.Add(attrs...)
	_ = l.inner.Handler().Handle(context.Background(), r)
}

func (l *logger) With(ctx ...any) Logger {
	return &logger{inner: l.inner.With(ctx...)}
}

func (l *logger) Enabled(ctx context.Context, level slog.Level) bool {
	return l.inner.Enabled(ctx, level)
}

func (l *logger) Trace(module, msg string, ctx ...any) { l.write(LevelTrace, module, msg, ctx...) }
func (l *logger) Debug(module, msg string, ctx ...any) { l.write(slog.LevelDebug, module, msg, ctx...) }
func (l *logger) Info(module, msg string, ctx ...any)  { l.write(slog.LevelInfo, module, msg, ctx...) }
func (l *logger) Warn(module, msg string, ctx ...any)  { l.write(slog.LevelWarn, module, msg, ctx...) }
func (l *logger) Error(module, msg string, ctx ...any) { l.write(slog.LevelError, module, msg, ctx...) }

func (l *logger) Crit(module, msg string, ctx ...any) {
	l.write(LevelCrit, module, msg, ctx...)
	os.Exit(1)
}

// Root is the process-wide default logger; tests and the CLI may replace it.
var Root Logger = NewText(os.Stderr, LevelInfo)
