package initializers

import (
	"github.com/jangir-rishbh/clothing-shop-sub000/internals/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func NewLogger(cfg config.Config) (*zap.Logger, error) {
	var zc zap.Config
	if cfg.IsProduction() {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	if level, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		zc.Level = zap.NewAtomicLevelAt(level)
	}
	logger, err := zc.Build()
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)

	for _, fb := range cfg.Fallbacks {
		logger.Warn("environment variable "+fb.Reason+", using fallback value", zap.String("key", fb.Key))
	}
	return logger, nil
}
