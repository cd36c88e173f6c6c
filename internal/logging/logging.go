// Package logging builds the zap loggers used by dice-mcp.
//
// Logs always go to stderr: in serve mode stdout carries the MCP protocol.
package logging

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvLevel names the environment variable consulted when no level flag is set.
const EnvLevel = "DICE_MCP_LOG_LEVEL"

// ParseLevel converts debug|info|warn|error (case-insensitive) to a zap level.
// An empty string means info.
func ParseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", s)
	}
}

// LevelFromEnv returns flagLevel when set, otherwise the EnvLevel variable.
func LevelFromEnv(flagLevel string) string {
	if flagLevel != "" {
		return flagLevel
	}
	return os.Getenv(EnvLevel)
}

// NewConfig returns the logger config for level. Console output is the
// default; jsonOutput selects the JSON encoder for log collectors.
func NewConfig(level zapcore.Level, jsonOutput bool) zap.Config {
	encoding := "console"
	encodeLevel := zapcore.CapitalLevelEncoder
	if jsonOutput {
		encoding = "json"
		encodeLevel = zapcore.LowercaseLevelEncoder
	}
	return zap.Config{
		Level:    zap.NewAtomicLevelAt(level),
		Encoding: encoding,
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    encodeLevel,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		DisableStacktrace: true,
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
	}
}

// New builds a stderr logger for the named level.
func New(level string, jsonOutput bool) (*zap.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	logger, err := NewConfig(lvl, jsonOutput).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// OrNop returns logger, or a no-op logger when it is nil.
func OrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
