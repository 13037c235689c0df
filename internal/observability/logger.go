// Package observability sets up the process logger.
package observability

import (
	"io"
	"os"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/iburimskiy/particle-field/internal/config"
)

var globalLogger atomic.Pointer[zap.Logger]

// NewLogger builds a zap logger writing to console (unless console is nil)
// and, when cfg.LogFile is set, to a rotated JSON file.
func NewLogger(cfg config.LoggerConfig, console io.Writer) *zap.Logger {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level.SetLevel(zap.InfoLevel)
	}

	var cores []zapcore.Core
	if console != nil {
		cores = append(cores, zapcore.NewCore(encoder(cfg.Format), zapcore.Lock(zapcore.AddSync(console)), level))
	}
	if cfg.LogFile != "" {
		// lumberjack handles rotation and concurrent writes
		fileWriter := zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		})
		cores = append(cores, zapcore.NewCore(encoder("json"), fileWriter, level))
	}
	if len(cores) == 0 {
		return zap.NewNop()
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddStacktrace(zap.ErrorLevel))
	if cfg.ServiceName != "" {
		logger = logger.Named(cfg.ServiceName)
	}
	return logger
}

func encoder(format string) zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	if format == "json" {
		return zapcore.NewJSONEncoder(ec)
	}
	ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewConsoleEncoder(ec)
}

// Initialize installs the global logger. The terminal backend owns stdout,
// so it logs to the file only.
func Initialize(cfg config.Config) *zap.Logger {
	var console io.Writer = os.Stderr
	if cfg.Backend == config.BackendTerminal {
		console = nil
	}
	logger := NewLogger(cfg.Logger, console)
	globalLogger.Store(logger)
	zap.ReplaceGlobals(logger)
	return logger
}

// GetLogger returns the global logger, a no-op logger before Initialize.
func GetLogger() *zap.Logger {
	if l := globalLogger.Load(); l != nil {
		return l
	}
	return zap.NewNop()
}

// Sync flushes the global logger.
func Sync() {
	_ = GetLogger().Sync()
}
