package logger

import (
	"context"
	"io"
)

type nopLogger struct{}

// NewNopLogger returns a logger that discards everything. Handy for tests
// and for components that make logging optional.
func NewNopLogger() Logger { return nopLogger{} }

func (nopLogger) Debug(msg string)                          {}
func (nopLogger) Debugf(format string, args ...any)         {}
func (nopLogger) Info(msg string)                           {}
func (nopLogger) Infof(format string, args ...any)          {}
func (nopLogger) Warn(msg string)                           {}
func (nopLogger) Warnf(format string, args ...any)          {}
func (nopLogger) Error(msg string)                          {}
func (nopLogger) Errorf(format string, args ...any)         {}
func (nopLogger) Fatal(msg string)                          {}
func (nopLogger) Fatalf(format string, args ...any)         {}
func (n nopLogger) WithField(key string, value any) Logger  { return n }
func (n nopLogger) WithFields(fields Fields) Logger         { return n }
func (n nopLogger) WithContext(ctx context.Context) Logger  { return n }
func (nopLogger) SetLevel(level Level)                      {}
func (nopLogger) SetOutput(output io.Writer)                {}
