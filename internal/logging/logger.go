// Package logging builds the zap logger shared by the CLI and the
// session runtime. The engine itself never logs directly; callers
// (cmd/sys2dsl, tests) build a *zap.Logger here and pass it down to
// anything that wants structured diagnostics, such as hook errors
// surfaced from pkg/session.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sys2dsl/engine/internal/config"
)

// New builds a *zap.Logger from a LoggingConfig. An empty Level
// defaults to info; an empty Encoding defaults to console, matching
// what a developer expects from a CLI tool rather than a service.
func New(cfg config.LoggingConfig) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.Set(cfg.Level); err != nil {
			return nil, fmt.Errorf("logging: invalid level %q: %w", cfg.Level, err)
		}
	}

	encoding := cfg.Encoding
	if encoding == "" {
		encoding = "console"
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.Encoding = encoding
	zcfg.EncoderConfig.TimeKey = "ts"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if encoding == "console" {
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	if cfg.OutputPath != "" {
		zcfg.OutputPaths = []string{cfg.OutputPath}
		zcfg.ErrorOutputPaths = []string{cfg.OutputPath}
	}

	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: building logger: %w", err)
	}
	return logger, nil
}

// Noop returns a logger that discards everything, used by tests and
// any embedder that does not want session diagnostics on stderr.
func Noop() *zap.Logger {
	return zap.NewNop()
}
