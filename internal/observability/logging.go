// Package observability builds the structured loggers the engine binaries
// hand to every component.
package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/tamer/internal/config"
)

// NewLogger creates a structured logger from the given logging configuration.
//
// Precondition: cfg.Level must be one of "debug", "info", "warn", "error".
// Precondition: cfg.Format must be "json" or "console".
// Postcondition: Returns a configured zap.Logger or a non-nil error.
func NewLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}

	var zapCfg zap.Config
	switch cfg.Format {
	case "json":
		zapCfg = zap.NewProductionConfig()
	case "console":
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.DisableStacktrace = true
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}

// Components names the child loggers a binary hands to each engine package.
type Components struct {
	Catalog   *zap.Logger
	Battle    *zap.Logger
	Dice      *zap.Logger
	Scripting *zap.Logger
	Storage   *zap.Logger
}

// Split derives one named child logger per engine component from root.
//
// Postcondition: every field is non-nil; a nil root yields no-op loggers.
func Split(root *zap.Logger) Components {
	if root == nil {
		root = zap.NewNop()
	}
	return Components{
		Catalog:   root.Named("catalog"),
		Battle:    root.Named("battle"),
		Dice:      root.Named("dice"),
		Scripting: root.Named("scripting"),
		Storage:   root.Named("storage"),
	}
}
