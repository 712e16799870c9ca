// Package logger provides the structured logging interface used across the
// module. The interface shape is the teacher's own (Debug/Info/Warn/Error/
// Fatal/With), backed by zap instead of the teacher's bare stdlib logger.
package logger

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Logger is the structured logging interface every package depends on.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)
	With(fields ...Field) Logger
}

// Field is a structured logging field; zf carries the concrete zap.Field.
type Field struct {
	zf zap.Field
}

// String creates a string field.
func String(key, value string) Field { return Field{zf: zap.String(key, value)} }

// Int creates an integer field.
func Int(key string, value int) Field { return Field{zf: zap.Int(key, value)} }

// Float64 creates a float field.
func Float64(key string, value float64) Field { return Field{zf: zap.Float64(key, value)} }

// Error creates an error field.
func Error(err error) Field { return Field{zf: zap.Error(err)} }

// Duration creates a duration field.
func Duration(key string, value time.Duration) Field {
	return Field{zf: zap.Duration(key, value)}
}

// zapLogger adapts *zap.Logger to the Logger interface.
type zapLogger struct {
	z *zap.Logger
}

// New creates a production-configured zap-backed Logger.
func New() Logger {
	z, err := zap.NewProduction()
	if err != nil {
		z = zap.NewNop()
	}
	return &zapLogger{z: z}
}

// NewDevelopment creates a console-friendly zap-backed Logger, suited to
// cmd/awrctl's interactive usage.
func NewDevelopment() Logger {
	z, err := zap.NewDevelopment()
	if err != nil {
		z = zap.NewNop()
	}
	return &zapLogger{z: z}
}

func toZapFields(fields []Field) []zap.Field {
	out := make([]zap.Field, len(fields))
	for i, f := range fields {
		out[i] = f.zf
	}
	return out
}

func (l *zapLogger) Debug(msg string, fields ...Field) { l.z.Debug(msg, toZapFields(fields)...) }
func (l *zapLogger) Info(msg string, fields ...Field)  { l.z.Info(msg, toZapFields(fields)...) }
func (l *zapLogger) Warn(msg string, fields ...Field)  { l.z.Warn(msg, toZapFields(fields)...) }
func (l *zapLogger) Error(msg string, fields ...Field) { l.z.Error(msg, toZapFields(fields)...) }
func (l *zapLogger) Fatal(msg string, fields ...Field) { l.z.Fatal(msg, toZapFields(fields)...) }

func (l *zapLogger) With(fields ...Field) Logger {
	return &zapLogger{z: l.z.With(toZapFields(fields)...)}
}

type contextKey string

const loggerKey contextKey = "logger"

// WithContext attaches a Logger to ctx.
func WithContext(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext retrieves the Logger attached to ctx, or a new production
// Logger from New when none is attached.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey).(Logger); ok {
		return l
	}
	return New()
}
