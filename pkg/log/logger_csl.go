package log

import (
	"context"
	"io"
	"log"
	"os"
)

type CslLogger struct {
	out       *log.Logger
	level     Level
	component string
}

func NewCslLogger(level string) (*CslLogger, error) {
	return NewCslLoggerTo(os.Stderr, level), nil
}

// NewCslLoggerTo writes to w instead of stderr.
func NewCslLoggerTo(w io.Writer, level string) *CslLogger {
	return &CslLogger{
		out:   log.New(w, "", log.LstdFlags),
		level: ParseLevel(level),
	}
}

// With returns a logger that prefixes every line with the component name.
func (l *CslLogger) With(component string) Logger {
	return &CslLogger{out: l.out, level: l.level, component: component}
}

func (l *CslLogger) print(ctx context.Context, level Level, format string, args ...interface{}) {
	if level < l.level {
		return
	}
	prefix := "[" + level.String() + "] "
	if l.component != "" {
		prefix += "[" + l.component + "] "
	}
	if id := requestID(ctx); id != "" {
		prefix += "[req=" + id + "] "
	}
	l.out.Printf(prefix+format, args...)
}

func (l *CslLogger) Info(ctx context.Context, format string, args ...interface{}) {
	l.print(ctx, LevelInfo, format, args...)
}

func (l *CslLogger) Alert(ctx context.Context, format string, args ...interface{}) {
	l.print(ctx, LevelAlert, format, args...)
}

func (l *CslLogger) Error(ctx context.Context, format string, args ...interface{}) {
	l.print(ctx, LevelError, format, args...)
}

func (l *CslLogger) Warn(ctx context.Context, format string, args ...interface{}) {
	l.print(ctx, LevelWarn, format, args...)
}

func (l *CslLogger) Debug(ctx context.Context, format string, args ...interface{}) {
	l.print(ctx, LevelDebug, format, args...)
}

func (l *CslLogger) Critical(ctx context.Context, format string, args ...interface{}) {
	l.print(ctx, LevelCritical, format, args...)
}

func (l *CslLogger) Emergency(ctx context.Context, format string, args ...interface{}) {
	l.print(ctx, LevelEmergency, format, args...)
}

func (l *CslLogger) Notice(ctx context.Context, format string, args ...interface{}) {
	l.print(ctx, LevelNotice, format, args...)
}

// NopLogger discards everything. Tests use it.
type NopLogger struct{}

func NewNopLogger() *NopLogger { return &NopLogger{} }

func (NopLogger) Info(context.Context, string, ...interface{})      {}
func (NopLogger) Alert(context.Context, string, ...interface{})     {}
func (NopLogger) Error(context.Context, string, ...interface{})     {}
func (NopLogger) Warn(context.Context, string, ...interface{})      {}
func (NopLogger) Debug(context.Context, string, ...interface{})     {}
func (NopLogger) Notice(context.Context, string, ...interface{})    {}
func (NopLogger) Critical(context.Context, string, ...interface{})  {}
func (NopLogger) Emergency(context.Context, string, ...interface{}) {}
