/*
Copyright 2025 The traitcalc Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package logging wires the logr API to a zap backend and holds the
// process-wide logger used by every traitcalc package.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Verbosity levels used with logger.V(level).
const (
	DEBUG = 1
	TRACE = 2
)

// Log is the process-wide logger. It discards everything until SetLogger is called.
var Log = logr.Discard()

// SetLogger replaces the process-wide logger.
func SetLogger(l logr.Logger) {
	Log = l
}

// FromContext returns the logger stored in ctx, falling back to Log.
func FromContext(ctx context.Context) logr.Logger {
	if ctx != nil {
		if l, err := logr.FromContext(ctx); err == nil {
			return l
		}
	}
	return Log
}

// IntoContext stores logger in ctx.
func IntoContext(ctx context.Context, logger logr.Logger) context.Context {
	return logr.NewContext(ctx, logger)
}

// ParseLevel maps a level name to a zap level. "trace" enables V(TRACE) output.
func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(level) {
	case "trace":
		return zapcore.Level(-TRACE), nil
	case "debug":
		return zapcore.Level(-DEBUG), nil
	case "", "info":
		return zapcore.InfoLevel, nil
	case "warn":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
}

// NewLogger builds a zap-backed logr.Logger writing to w.
// format is either "json" or "text".
func NewLogger(level, format string, w io.Writer) (logr.Logger, error) {
	zapLevel, err := ParseLevel(level)
	if err != nil {
		return logr.Discard(), err
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	switch strings.ToLower(format) {
	case "", "text", "console":
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	case "json":
		encoder = zapcore.NewJSONEncoder(encCfg)
	default:
		return logr.Discard(), fmt.Errorf("unknown log format %q", format)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), zap.NewAtomicLevelAt(zapLevel))
	return zapr.NewLogger(zap.New(core)), nil
}

// NewTestLogger installs a development logger writing to stderr at debug
// verbosity. Suites call it once before RunSpecs.
func NewTestLogger() logr.Logger {
	l, err := NewLogger("debug", "text", os.Stderr)
	if err != nil {
		panic(err)
	}
	SetLogger(l)
	return l
}
