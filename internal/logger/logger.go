// Package logger builds the zerolog loggers used by the fxrack command and
// the rack itself.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config selects log level and outputs.
type Config struct {
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
	JSONFormat bool   `mapstructure:"json"`
	Caller     bool   `mapstructure:"caller"`
	File       bool   `mapstructure:"file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"` // megabytes
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
}

// DefaultConfig logs info and above to the console only.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Console:    true,
		FilePath:   filepath.Join("logs", "fxrack.log"),
		MaxSize:    20,
		MaxBackups: 3,
		MaxAge:     14,
	}
}

// Logger owns the configured zerolog logger and any rotating file output.
type Logger struct {
	zerolog.Logger

	file *lumberjack.Logger
}

// New builds a logger writing console output to w (stderr when nil).
func New(cfg Config, w io.Writer) (*Logger, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	if w == nil {
		w = os.Stderr
	}

	var (
		outputs []io.Writer
		l       Logger
	)

	if cfg.Console {
		outputs = append(outputs, consoleWriter(w, cfg.JSONFormat))
	}

	if cfg.File {
		if cfg.FilePath == "" {
			return nil, fmt.Errorf("logger: file output needs a path")
		}

		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
			return nil, fmt.Errorf("logger: create log directory: %w", err)
		}

		l.file = &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
		}
		outputs = append(outputs, l.file)
	}

	if len(outputs) == 0 {
		l.Logger = zerolog.Nop()
		return &l, nil
	}

	ctx := zerolog.New(zerolog.MultiLevelWriter(outputs...)).Level(level).With().Timestamp()
	if cfg.Caller {
		ctx = ctx.Caller()
	}

	l.Logger = ctx.Logger()

	return &l, nil
}

// Close flushes and closes the file output, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}

	return l.file.Close()
}

func consoleWriter(w io.Writer, json bool) io.Writer {
	if json {
		return w
	}

	return zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    true,
		TimeFormat: "15:04:05",
		FormatLevel: func(i any) string {
			return strings.ToUpper(fmt.Sprintf("%-5s", i))
		},
		FormatFieldName: func(i any) string {
			return fmt.Sprintf("%s:", i)
		},
	}
}
