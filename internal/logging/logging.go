// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging provides the file-backed structured logger for verity.
//
// The TUI owns stdout/stderr, so all diagnostics go to a rotated log file
// under the verity home directory. Logging failures are never fatal: if the
// sink cannot be created the package degrades to a no-op logger.
package logging

import (
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// =============================================================================
// LOGGER SETUP
// =============================================================================

var (
	mu     sync.Mutex
	logger *zap.Logger
)

// Options configures the log sink.
type Options struct {
	// Path is the log file location. Empty selects ~/.verity/verity.log.
	Path string

	// Debug lowers the level from Info to Debug.
	Debug bool

	// MaxSizeMB caps a single log file before rotation (default 5).
	MaxSizeMB int

	// MaxBackups caps the number of rotated files kept (default 3).
	MaxBackups int
}

// Init builds the process-wide logger. Safe to call more than once; the
// last call wins.
func Init(opts Options) *zap.Logger {
	mu.Lock()
	defer mu.Unlock()

	path := opts.Path
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			logger = zap.NewNop()
			return logger
		}
		path = filepath.Join(home, ".verity", "verity.log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		logger = zap.NewNop()
		return logger
	}

	maxSize := opts.MaxSizeMB
	if maxSize <= 0 {
		maxSize = 5
	}
	maxBackups := opts.MaxBackups
	if maxBackups <= 0 {
		maxBackups = 3
	}

	sink := zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
		Compress:   true,
	})

	level := zapcore.InfoLevel
	if opts.Debug {
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), sink, level)

	logger = zap.New(core)
	return logger
}

// L returns the process logger, initializing a no-op logger if Init was
// never called. Never returns nil.
func L() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	if logger == nil {
		logger = zap.NewNop()
	}
	return logger
}

// Named returns a child logger tagged with a subsystem name.
func Named(name string) *zap.Logger {
	return L().Named(name)
}

// Sync flushes buffered entries. Called on shutdown; errors are ignored
// because the sink may be a closed file by then.
func Sync() {
	_ = L().Sync()
}
