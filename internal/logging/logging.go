// Package logging builds the zap logger. The terminal belongs to the TUI, so
// log lines go to a file under the XDG state directory.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a JSON file logger at the given level, tagged with a fresh
// session id. Falls back to a no-op logger if the file cannot be opened.
func New(path, level string) *zap.Logger {
	logger, err := open(path, level)
	if err != nil {
		return zap.NewNop()
	}
	return logger.With(zap.String("session", uuid.NewString()))
}

func open(path, level string) (*zap.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log dir: %w", err)
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(lvl)
	config.OutputPaths = []string{path}
	config.ErrorOutputPaths = []string{path}
	config.EncoderConfig.TimeKey = "ts"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return config.Build()
}
