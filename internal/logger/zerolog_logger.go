// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logger provides per-package structured loggers backed by
// zerolog, with optional file rotation via lumberjack.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/smith-agent/smith/internal/config"
)

// Manager manages one logger per package name.
type Manager struct {
	config         *config.LogConfig
	globalLogger   zerolog.Logger
	packageLoggers map[string]zerolog.Logger
	mu             sync.RWMutex
	writers        []io.Writer
}

// NewManager creates a new logger manager from the given configuration.
func NewManager(cfg *config.LogConfig) (*Manager, error) {
	m := &Manager{
		config:         cfg,
		packageLoggers: make(map[string]zerolog.Logger),
	}

	globalLevel := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(globalLevel)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	writers, err := m.createWriters(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create log writers: %w", err)
	}
	m.writers = writers

	var multi io.Writer
	switch len(writers) {
	case 0:
		multi = os.Stderr
	case 1:
		multi = writers[0]
	default:
		multi = io.MultiWriter(writers...)
	}

	m.globalLogger = m.createLogger(multi, globalLevel)
	return m, nil
}

func (m *Manager) createWriters(cfg *config.LogConfig) ([]io.Writer, error) {
	var writers []io.Writer

	for _, output := range cfg.Output {
		if !output.Enabled {
			continue
		}

		switch output.Type {
		case "console":
			var w io.Writer = os.Stderr
			if cfg.Format == "console" {
				w = zerolog.ConsoleWriter{
					Out:        os.Stderr,
					TimeFormat: "15:04:05.000",
					FormatLevel: func(i interface{}) string {
						return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
					},
				}
			}
			writers = append(writers, w)

		case "file":
			if err := os.MkdirAll(filepath.Dir(output.Path), 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory: %w", err)
			}
			if cfg.Rotate.MaxSizeMB > 0 {
				writers = append(writers, &lumberjack.Logger{
					Filename:   output.Path,
					MaxSize:    cfg.Rotate.MaxSizeMB,
					MaxBackups: cfg.Rotate.MaxBackups,
					MaxAge:     cfg.Rotate.MaxAgeDays,
					Compress:   cfg.Rotate.Compress,
				})
			} else {
				file, err := os.OpenFile(output.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
				if err != nil {
					return nil, fmt.Errorf("failed to open log file %s: %w", output.Path, err)
				}
				writers = append(writers, file)
			}

		default:
			return nil, fmt.Errorf("unsupported output type: %s", output.Type)
		}
	}

	return writers, nil
}

func (m *Manager) createLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// GetLogger returns the logger for a package, creating it on first use with
// the per-package level from config (falling back to the global level).
func (m *Manager) GetLogger(pkg string) zerolog.Logger {
	m.mu.RLock()
	if l, ok := m.packageLoggers[pkg]; ok {
		m.mu.RUnlock()
		return l
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.packageLoggers[pkg]; ok {
		return l
	}

	level := parseLevel(m.config.Level)
	if pkgLevel, ok := m.config.Levels[pkg]; ok {
		level = parseLevel(pkgLevel)
	}

	l := m.globalLogger.With().Str("pkg", pkg).Logger().Level(level)
	m.packageLoggers[pkg] = l
	return l
}

// Close closes every file-backed writer.
func (m *Manager) Close() error {
	for _, w := range m.writers {
		if c, ok := w.(io.Closer); ok {
			if err := c.Close(); err != nil {
				return err
			}
		}
	}
	return nil
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToUpper(level) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO":
		return zerolog.InfoLevel
	case "WARN", "WARNING":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	case "FATAL":
		return zerolog.FatalLevel
	case "PANIC":
		return zerolog.PanicLevel
	default:
		return zerolog.InfoLevel
	}
}

var (
	globalManager *Manager
	once          sync.Once
)

// Initialize sets up the global logger manager. Subsequent calls are no-ops.
func Initialize(cfg *config.LogConfig) error {
	var err error
	once.Do(func() {
		globalManager, err = NewManager(cfg)
	})
	return err
}

// GetLogger returns a logger for the given package, or a discard logger if
// Initialize has not been called yet (e.g. in unit tests).
func GetLogger(pkg string) zerolog.Logger {
	if globalManager == nil {
		return zerolog.New(io.Discard).With().Timestamp().Logger()
	}
	return globalManager.GetLogger(pkg)
}

// CloseGlobal closes the global logger manager's writers, if initialized.
func CloseGlobal() error {
	if globalManager != nil {
		return globalManager.Close()
	}
	return nil
}

// Static per-package getters, mirroring config's log.levels keys so callers
// never hand-type a package string.

// GetServerLogger returns the logger for the protocol server.
func GetServerLogger() zerolog.Logger { return GetLogger("server") }

// GetExecutorLogger returns the logger for the tool executor.
func GetExecutorLogger() zerolog.Logger { return GetLogger("executor") }

// GetGuardLogger returns the logger for sandbox/command guard checks.
func GetGuardLogger() zerolog.Logger { return GetLogger("guard") }

// GetToolLogger returns the logger for tool implementations.
func GetToolLogger() zerolog.Logger { return GetLogger("tool") }

// GetStatsLogger returns the logger for heartbeat/stats sampling.
func GetStatsLogger() zerolog.Logger { return GetLogger("stats") }

// GetAuditLogger returns the logger used for the task start/end audit trail.
func GetAuditLogger() zerolog.Logger { return GetLogger("audit") }
