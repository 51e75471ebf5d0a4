package logger

import (
	"os"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var global atomic.Pointer[zap.Logger]

// Init initializes the global zap logger for the given environment.
func Init(env string) {
	l, err := build(env)
	if err != nil {
		panic(err)
	}
	global.Store(l)
}

func build(env string) (*zap.Logger, error) {
	var cfg zap.Config

	if env == "production" {
		cfg = zap.NewProductionConfig()
		cfg.Encoding = "json"
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.MessageKey = "message"
		cfg.EncoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.OutputPaths = []string{"stdout"}
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	return cfg.Build(zap.AddCaller())
}

// L returns the global logger, initializing it from APP_ENV on first use.
func L() *zap.Logger {
	if l := global.Load(); l != nil {
		return l
	}
	l, err := build(os.Getenv("APP_ENV"))
	if err != nil {
		panic(err)
	}
	// a concurrent Init or Set wins
	if global.CompareAndSwap(nil, l) {
		return l
	}
	return global.Load()
}

// Set replaces the global logger. Tests use it to install an observer.
func Set(l *zap.Logger) {
	global.Store(l)
}

// Sync flushes buffered log entries.
func Sync() {
	if l := global.Load(); l != nil {
		_ = l.Sync()
	}
}
