// Package logger builds the zap logger used by the server and the CLI.
package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log levels and formats accepted in Config.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"

	FormatConsole = "console"
	FormatText    = "text"
	FormatJSON    = "json"
)

// Config selects outputs and levels.
type Config struct {
	Level   string        `yaml:"level"`
	Console ConsoleConfig `yaml:"console"`
	File    FileConfig    `yaml:"file"`
}

// ConsoleConfig controls stdout logging.
type ConsoleConfig struct {
	Enabled bool   `yaml:"enabled"`
	Format  string `yaml:"format"`
	Level   string `yaml:"level"`
}

// FileConfig controls rotating file logging.
type FileConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Path       string `yaml:"path"`
	Format     string `yaml:"format"`
	Level      string `yaml:"level"`
	MaxSize    int    `yaml:"max_size"` // megabytes
	MaxAge     int    `yaml:"max_age"`  // days
	MaxBackups int    `yaml:"max_backups"`
	Compress   bool   `yaml:"compress"`
}

// DefaultConfig logs info and above to the console.
func DefaultConfig() Config {
	return Config{
		Level:   LevelInfo,
		Console: ConsoleConfig{Enabled: true, Format: FormatConsole},
		File:    FileConfig{Format: FormatText, MaxSize: 100, MaxAge: 30, MaxBackups: 5},
	}
}

// New creates a zap logger writing to every enabled output.
func New(cfg Config) (*zap.Logger, error) {
	global := ParseLevel(cfg.Level)

	var cores []zapcore.Core
	if cfg.Console.Enabled {
		level := resolveLevel(cfg.Console.Level, global)
		cores = append(cores, zapcore.NewCore(encoder(cfg.Console.Format), zapcore.Lock(os.Stdout), level))
	}
	if cfg.File.Enabled {
		if cfg.File.Path == "" {
			return nil, fmt.Errorf("logger: file.path must be set when file logging is enabled")
		}
		level := resolveLevel(cfg.File.Level, global)
		cores = append(cores, zapcore.NewCore(encoder(cfg.File.Format), fileWriter(cfg.File), level))
	}

	switch len(cores) {
	case 0:
		return nil, fmt.Errorf("logger: at least one output (console or file) must be enabled")
	case 1:
		return zap.New(cores[0]), nil
	default:
		return zap.New(zapcore.NewTee(cores...)), nil
	}
}

// ParseLevel maps a level name to a zap level, defaulting to info.
func ParseLevel(level string) zapcore.Level {
	switch level {
	case LevelDebug:
		return zap.DebugLevel
	case LevelWarn:
		return zap.WarnLevel
	case LevelError:
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

func resolveLevel(level string, fallback zapcore.Level) zapcore.Level {
	if level != "" {
		return ParseLevel(level)
	}
	return fallback
}

func encoder(format string) zapcore.Encoder {
	if format == FormatJSON {
		return zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}
	cfg := zap.NewDevelopmentEncoderConfig()
	if format == FormatText {
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	} else {
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return zapcore.NewConsoleEncoder(cfg)
}

func fileWriter(cfg FileConfig) zapcore.WriteSyncer {
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSize,
		MaxAge:     cfg.MaxAge,
		MaxBackups: cfg.MaxBackups,
		Compress:   cfg.Compress,
	})
}
