package logger

import (
	"fmt"
	"io"
	"os"
	"sort"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Pirikara/liccheck/internal/policy"
)

// Level represents log level
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// ParseLevel converts a flag value into a Level
func ParseLevel(s string) (Level, error) {
	switch Level(s) {
	case LevelDebug, LevelInfo, LevelWarn, LevelError:
		return Level(s), nil
	}
	return "", fmt.Errorf("unknown log level %q (want debug, info, warn or error)", s)
}

// Format selects the log encoding
type Format string

const (
	FormatJSON    Format = "json"
	FormatConsole Format = "console"
)

// ParseFormat converts a flag value into a Format
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, FormatConsole:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown log format %q (want json or console)", s)
}

// Logger provides event-style structured logging backed by zap
type Logger struct {
	zl *zap.Logger
}

// NewLogger creates a new JSON Lines Logger
func NewLogger(writer io.Writer, level Level) *Logger {
	return New(writer, level, FormatJSON)
}

// New creates a new Logger with the given encoding
func New(writer io.Writer, level Level, format Format) *Logger {
	if writer == nil {
		writer = os.Stderr
	}

	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.MessageKey = "message"
	cfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder

	var encoder zapcore.Encoder
	if format == FormatConsole {
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(cfg)
	} else {
		encoder = zapcore.NewJSONEncoder(cfg)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(writer), zap.NewAtomicLevelAt(toZapLevel(level)))
	return &Logger{zl: zap.New(core)}
}

// Nop returns a Logger that discards everything
func Nop() *Logger {
	return &Logger{zl: zap.NewNop()}
}

// WithRunID returns a child logger tagging every event with the run id
func (l *Logger) WithRunID(runID string) *Logger {
	return &Logger{zl: l.must().With(zap.String("run_id", runID))}
}

// LogClassification logs the outcome for one package
func (l *Logger) LogClassification(pkg policy.Package, reason policy.Reason, level policy.Level) {
	licenses := pkg.Licenses
	if licenses == nil {
		licenses = []string{}
	}

	l.must().Debug("Package classified",
		zap.String("event", "package_check"),
		zap.String("name", pkg.Name),
		zap.String("version", pkg.Version),
		zap.Strings("licenses", licenses),
		zap.String("reason", string(reason)),
		zap.String("compliance_level", string(level)),
	)
}

// Debug logs a debug event
func (l *Logger) Debug(event, message string, data map[string]interface{}) {
	l.log(zapcore.DebugLevel, event, message, data)
}

// Info logs an info event
func (l *Logger) Info(event, message string, data map[string]interface{}) {
	l.log(zapcore.InfoLevel, event, message, data)
}

// Warn logs a warning event
func (l *Logger) Warn(event, message string, data map[string]interface{}) {
	l.log(zapcore.WarnLevel, event, message, data)
}

// Error logs an error event
func (l *Logger) Error(event, message string, data map[string]interface{}) {
	l.log(zapcore.ErrorLevel, event, message, data)
}

// Sync flushes buffered entries
func (l *Logger) Sync() error {
	return l.must().Sync()
}

func (l *Logger) log(level zapcore.Level, event, message string, data map[string]interface{}) {
	zl := l.must()
	ce := zl.Check(level, message)
	if ce == nil {
		return
	}

	fields := make([]zap.Field, 0, len(data)+1)
	fields = append(fields, zap.String("event", event))

	// stable field order
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fields = append(fields, zap.Any(k, data[k]))
	}

	ce.Write(fields...)
}

func (l *Logger) must() *zap.Logger {
	if l == nil || l.zl == nil {
		return zap.NewNop()
	}
	return l.zl
}

func toZapLevel(level Level) zapcore.Level {
	switch level {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
