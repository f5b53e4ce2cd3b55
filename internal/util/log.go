package util

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

func NewLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil { lvl = zerolog.InfoLevel }
	return zerolog.New(os.Stdout).With().Timestamp().Logger().Level(lvl)
}

// NewFileLogger tees output to stdout and a size-rotated log file.
// Each file is capped at maxSizeMB megabytes; backups rotated copies are kept.
func NewFileLogger(level, path string, maxSizeMB, backups int) (zerolog.Logger, io.Closer, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zerolog.Nop(), nil, err
	}
	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: backups,
	}
	w := zerolog.MultiLevelWriter(os.Stdout, rotator)
	return zerolog.New(w).With().Timestamp().Logger().Level(lvl), rotator, nil
}
