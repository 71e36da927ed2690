package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type loggerConfig struct {
	Level  string
	Format string
	File   string
}

func loggerConfigFromViper() loggerConfig {
	return loggerConfig{
		Level:  viper.GetString("logging.level"),
		Format: viper.GetString("logging.format"),
		File:   viper.GetString("logging.file"),
	}
}

// newLoggerFromConfig builds a zap logger writing to stderr, plus cfg.File
// when set. Stdout is left to the MCP transport and command output.
func newLoggerFromConfig(cfg loggerConfig) (*zap.Logger, error) {
	level, err := parseZapLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(level)
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "", "json":
	case "console", "text":
		config.Encoding = "console"
		config.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	default:
		return nil, fmt.Errorf("unknown logging.format: %s", cfg.Format)
	}

	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}
	if file := strings.TrimSpace(cfg.File); file != "" {
		file = expandHome(file)
		if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}
		config.OutputPaths = append(config.OutputPaths, file)
	}

	return config.Build()
}

func parseZapLevel(s string) (zapcore.Level, error) {
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
		return zapcore.InfoLevel, fmt.Errorf("unknown logging.level: %s", s)
	}
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
