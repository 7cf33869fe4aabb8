// Package utils
package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger *zap.SugaredLogger
	mu     sync.Mutex
)

// GetLogger returns the process logger, building a console logger on first
// use.
func GetLogger() *zap.SugaredLogger {
	mu.Lock()
	defer mu.Unlock()
	if logger == nil {
		logger = zap.New(zapcore.NewCore(consoleEncoder(), zapcore.AddSync(os.Stdout), zap.InfoLevel)).Sugar()
	}
	return logger
}

// SetLogger replaces the process logger.
func SetLogger(l *zap.SugaredLogger) {
	mu.Lock()
	defer mu.Unlock()
	logger = l
}

// InitFileLogger tees the process logger to stdout and a JSON log file.
func InitFileLogger(logPath string, level zapcore.Level) (*zap.SugaredLogger, error) {
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", logPath, err)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewTee(
		zapcore.NewCore(consoleEncoder(), zapcore.AddSync(os.Stdout), level),
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(file), level),
	)
	l := zap.New(core).Sugar()
	SetLogger(l)
	return l, nil
}

// ParseLevel maps a config string to a zap level, defaulting to info.
func ParseLevel(level string) zapcore.Level {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel
	}
	return l
}

func consoleEncoder() zapcore.Encoder {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return zapcore.NewConsoleEncoder(cfg)
}
