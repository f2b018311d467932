package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// Logger is the logging surface used by footplan and smpc. It is a thin
// facade over *zap.SugaredLogger: this module's hot path (Solve, every
// Cholesky up/downdate, and FormPreviewWindow except for the one warning
// it emits when it halts) never calls any of these methods, so Logger
// only needs to be convenient at construction time and at tick
// boundaries, not allocation-free.
type Logger interface {
	Debugw(msg string, keysAndValues ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Errorw(msg string, keysAndValues ...interface{})
}

type zapLogger struct {
	*zap.SugaredLogger
}

// NewLogger creates a Logger named name that writes to appenders (or to
// stdout if none are given).
func NewLogger(name string, appenders ...Appender) Logger {
	if len(appenders) == 0 {
		appenders = []Appender{NewStdoutAppender()}
	}
	cores := make([]zapcore.Core, 0, len(appenders))
	for _, a := range appenders {
		cores = append(cores, &appenderCore{appender: a, enabler: zapcore.DebugLevel})
	}
	core := zapcore.NewTee(cores...)
	return &zapLogger{zap.New(core).Named(name).Sugar()}
}

// NewTestLogger creates a Logger that writes through t.Log, so output is
// only shown for failing or verbose test runs.
func NewTestLogger(t *testing.T) Logger {
	t.Helper()
	core := zaptest.NewLogger(t).Core()
	return &zapLogger{zap.New(core).Sugar()}
}

// NewObservedLogger creates a Logger backed by zap's in-memory observer,
// for tests that assert on emitted log entries.
func NewObservedLogger() (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return &zapLogger{zap.New(core).Sugar()}, logs
}

// appenderCore adapts an Appender to zapcore.Core.
type appenderCore struct {
	appender Appender
	enabler  zapcore.LevelEnabler
}

func (c *appenderCore) Enabled(lvl zapcore.Level) bool { return c.enabler.Enabled(lvl) }

func (c *appenderCore) With(fields []zapcore.Field) zapcore.Core {
	return &withFieldsCore{appenderCore: c, fields: fields}
}

func (c *appenderCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}
	return checked
}

func (c *appenderCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	return c.appender.Write(entry, fields)
}

func (c *appenderCore) Sync() error { return c.appender.Sync() }

type withFieldsCore struct {
	*appenderCore
	fields []zapcore.Field
}

func (c *withFieldsCore) With(fields []zapcore.Field) zapcore.Core {
	return &withFieldsCore{appenderCore: c.appenderCore, fields: append(append([]zapcore.Field{}, c.fields...), fields...)}
}

func (c *withFieldsCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}
	return checked
}

func (c *withFieldsCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	all := append(append([]zapcore.Field{}, c.fields...), fields...)
	return c.appenderCore.Write(entry, all)
}
