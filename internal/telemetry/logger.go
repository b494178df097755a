// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package telemetry defines the Logger contract shared by every
// repoharvest component and a zap-backed implementation of it. Domain
// packages (clone, commitlog, blame, branches, httpapi, githubapi)
// depend only on the Logger interface, never on zap directly, so a
// caller can plug in their own adapter without pulling zap in.
package telemetry

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the structured logging contract every repoharvest
// component accepts. It mirrors the variadic key-value style already
// used throughout the teacher's packages rather than zap's typed
// Field API directly, so callers can pass either without an adapter.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// NoopLogger discards everything. It is the default when no Logger is
// configured, matching the teacher's noopLogger pattern.
type NoopLogger struct{}

func (NoopLogger) Debug(string, ...interface{}) {}
func (NoopLogger) Info(string, ...interface{})  {}
func (NoopLogger) Warn(string, ...interface{})  {}
func (NoopLogger) Error(string, ...interface{}) {}

// zapLogger adapts *zap.SugaredLogger to the Logger interface.
type zapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZapLogger builds a Logger backed by a production zap.Logger
// writing JSON to stderr. debug enables debug-level output.
func NewZapLogger(debug bool) (Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &zapLogger{sugar: l.Sugar()}, nil
}

// NewZapLoggerOrNoop builds a zap-backed Logger and falls back to
// NoopLogger if construction fails, logging the failure to stderr
// once so misconfiguration is never silent.
func NewZapLoggerOrNoop(debug bool) Logger {
	l, err := NewZapLogger(debug)
	if err != nil {
		os.Stderr.WriteString("telemetry: falling back to noop logger: " + err.Error() + "\n")
		return NoopLogger{}
	}
	return l
}

func (l *zapLogger) Debug(msg string, args ...interface{}) { l.sugar.Debugw(msg, args...) }
func (l *zapLogger) Info(msg string, args ...interface{})  { l.sugar.Infow(msg, args...) }
func (l *zapLogger) Warn(msg string, args ...interface{})  { l.sugar.Warnw(msg, args...) }
func (l *zapLogger) Error(msg string, args ...interface{}) { l.sugar.Errorw(msg, args...) }
