// Package logging installs the process-wide zap logger.
package logging

import (
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Level  string // debug | info | warn | error
	Format string // json | console
}

// Init builds a logger from cfg and makes it the zap global. The returned
// func flushes buffered entries.
func Init(cfg Config) (func(), error) {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(cfg.Level)))); err != nil {
		level.SetLevel(zapcore.InfoLevel)
	}

	zc := zap.NewProductionConfig()
	if strings.EqualFold(cfg.Format, "console") {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zc.Level = level
	zc.EncoderConfig.TimeKey = "ts"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zc.Build()
	if err != nil {
		return func() {}, eris.Wrap(err, "build logger")
	}
	undo := zap.ReplaceGlobals(logger)
	return func() {
		_ = logger.Sync()
		undo()
	}, nil
}

// Component returns the global logger tagged with a component name.
func Component(name string) *zap.Logger {
	return zap.L().With(zap.String("component", name))
}
