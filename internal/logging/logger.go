// =============================================================================
// Disperse Validator - Logging
// =============================================================================
//
// Leveled logging for the CLI, the batch processor and the HTTP API.
// Callers depend on the small Logger interface; the implementation is a zap
// sugared logger writing human-readable lines to stderr, or JSON lines when a
// log file is configured.
//
// =============================================================================

package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is an interface for leveled, printf-style logging.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// ZapLogger implements Logger on top of zap.
type ZapLogger struct {
	sugar   *zap.SugaredLogger
	closeFn func()
}

// Compile-time assertion: *ZapLogger implements Logger.
var _ Logger = (*ZapLogger)(nil)

// ParseLevel converts a configuration level name into a zap level.
func ParseLevel(level string) (zapcore.Level, error) {
	var parsed zapcore.Level
	if err := parsed.Set(level); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return parsed, nil
}

// New creates a logger at the given level.
//
// PARAMETERS:
//   - level: "debug", "info", "warn" or "error".
//   - logFile: Path of a JSON log file; empty writes console output to stderr.
//
// RETURNS:
//   - The logger; call Close when done to flush and release the file.
//   - An error if the level is invalid or the file cannot be opened.
func New(level, logFile string) (*ZapLogger, error) {
	zapLevel, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	var (
		encoder zapcore.Encoder
		sink    zapcore.WriteSyncer
		closeFn = func() {}
	)

	if logFile == "" {
		encoderCfg := zap.NewDevelopmentEncoderConfig()
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
		sink = zapcore.Lock(os.Stderr)
	} else {
		encoderCfg := zap.NewProductionEncoderConfig()
		encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encoderCfg)

		ws, closeSink, err := zap.Open(logFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		sink = ws
		closeFn = closeSink
	}

	logger := FromZap(zap.New(zapcore.NewCore(encoder, sink, zapLevel)))
	logger.closeFn = closeFn

	return logger, nil
}

// FromZap wraps an existing zap logger.
func FromZap(logger *zap.Logger) *ZapLogger {
	return &ZapLogger{sugar: logger.Sugar(), closeFn: func() {}}
}

// Nop returns a logger that discards everything.
func Nop() *ZapLogger {
	return FromZap(zap.NewNop())
}

func (l *ZapLogger) must() *zap.SugaredLogger {
	if l == nil || l.sugar == nil {
		return zap.NewNop().Sugar()
	}
	return l.sugar
}

func (l *ZapLogger) Debug(msg string, args ...interface{}) {
	l.must().Debugf(msg, args...)
}

func (l *ZapLogger) Info(msg string, args ...interface{}) {
	l.must().Infof(msg, args...)
}

func (l *ZapLogger) Warn(msg string, args ...interface{}) {
	l.must().Warnf(msg, args...)
}

func (l *ZapLogger) Error(msg string, args ...interface{}) {
	l.must().Errorf(msg, args...)
}

// With returns a child logger carrying extra key/value pairs.
func (l *ZapLogger) With(keysAndValues ...interface{}) *ZapLogger {
	return &ZapLogger{sugar: l.must().With(keysAndValues...), closeFn: func() {}}
}

// Close flushes buffered entries and releases the log file, if any.
// Sync errors on stderr are ignored; they are common on terminals.
func (l *ZapLogger) Close() {
	if l == nil {
		return
	}
	_ = l.must().Sync()
	if l.closeFn != nil {
		l.closeFn()
	}
}
