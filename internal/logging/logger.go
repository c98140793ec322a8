package logging

import (
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger provides a thin wrapper around logr.Logger with convenience helpers.
type Logger struct {
	log logr.Logger
}

// New wraps base. An uninitialized base logger discards everything.
func New(base logr.Logger) Logger {
	if base.GetSink() == nil {
		return Discard()
	}
	return Logger{log: base}
}

// Discard returns a Logger that drops everything. Handy in tests.
func Discard() Logger {
	return Logger{log: logr.Discard()}
}

// NewZap builds the process logger. Production environments get the JSON
// encoder; everything else uses the human friendly development encoder.
// A level of "debug" enables Debug output.
func NewZap(environment, level string) (Logger, func(), error) {
	var cfg zap.Config
	if strings.EqualFold(environment, "production") {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	lvl := zapcore.InfoLevel
	if strings.EqualFold(strings.TrimSpace(level), "debug") {
		// logr V(1) maps to zap level -1
		lvl = zapcore.DebugLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	zapLogger, err := cfg.Build()
	if err != nil {
		return Logger{}, func() {}, err
	}
	sync := func() { _ = zapLogger.Sync() }
	return New(zapr.NewLogger(zapLogger)), sync, nil
}

// WithValues returns a new Logger with additional key-value pairs attached.
func (l Logger) WithValues(keysAndValues ...any) Logger {
	return Logger{log: l.log.WithValues(keysAndValues...)}
}

// WithName scopes the logger with the supplied name.
func (l Logger) WithName(name string) Logger {
	return Logger{log: l.log.WithName(name)}
}

// Info logs an informational message.
func (l Logger) Info(msg string, keysAndValues ...any) {
	l.log.Info(msg, keysAndValues...)
}

// Debug logs a verbose message when V(1) is enabled on the underlying logger.
func (l Logger) Debug(msg string, keysAndValues ...any) {
	if l.log.V(1).Enabled() {
		l.log.V(1).Info(msg, keysAndValues...)
	}
}

// Warn logs at info level with a warning marker. logr has no warn level.
func (l Logger) Warn(msg string, keysAndValues ...any) {
	l.log.Info(msg, append([]any{"warning", true}, keysAndValues...)...)
}

// Error logs an error message.
func (l Logger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(err, msg, keysAndValues...)
}

// Logr exposes the underlying logr.Logger.
func (l Logger) Logr() logr.Logger {
	return l.log
}
