package config

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// BuildLogger constructs the process-wide logger from LoggingConfig.
func (c LoggingConfig) BuildLogger() (*zap.Logger, error) {
	var zapConfig zap.Config
	switch c.Format {
	case "json", "":
		zapConfig = zap.NewProductionConfig()
	case "console":
		zapConfig = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("config: unknown logging.format %q", c.Format)
	}

	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(c.Level)); err != nil {
		return nil, fmt.Errorf("config: unknown logging.level %q: %w", c.Level, err)
	}
	zapConfig.Level = zap.NewAtomicLevelAt(lvl)

	return zapConfig.Build()
}
