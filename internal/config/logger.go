package config

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLevel parses Level. Unknown or empty levels fall back to info.
func (c LoggingConfig) ZapLevel() zapcore.Level {
	level, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}

// Build creates the logger: production JSON output for the json format, colored
// development output otherwise.
func (c LoggingConfig) Build(opts ...zap.Option) (*zap.Logger, error) {
	var zapCfg zap.Config
	if c.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zapCfg.Level = zap.NewAtomicLevelAt(c.ZapLevel())
	return zapCfg.Build(opts...)
}
