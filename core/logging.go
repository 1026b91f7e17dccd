package core

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	EnvLogLevel = "TAKEOUT_LOG"
	EnvLogFile  = "TAKEOUT_LOG_FILE"
)

// NewLoggerFromEnv builds a logger from TAKEOUT_LOG (debug, info, warn, error)
// and TAKEOUT_LOG_FILE. With TAKEOUT_LOG unset logging is disabled.
func NewLoggerFromEnv() (*zap.Logger, error) {
	level := strings.ToLower(strings.TrimSpace(os.Getenv(EnvLogLevel)))
	if level == "" {
		return zap.NewNop(), nil
	}
	return NewLogger(level, os.Getenv(EnvLogFile))
}

// NewLogger builds a JSON logger at the given level. Output goes to stderr,
// or to a size-rotated file when logFile is set.
func NewLogger(level, logFile string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var sink zapcore.WriteSyncer
	if logFile != "" {
		sink = zapcore.AddSync(&lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10, // megabytes
			MaxBackups: 5,
			MaxAge:     15, // days
			Compress:   true,
		})
	} else {
		sink = zapcore.Lock(os.Stderr)
	}

	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(cfg), sink, lvl)
	return zap.New(core, zap.AddCaller()).Named("takeout"), nil
}
