// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/smith-agent/smith/internal/config"
)

func TestNewManager(t *testing.T) {
	tests := []struct {
		name        string
		config      *config.LogConfig
		expectError bool
		errorMsg    string
	}{
		{
			name: "minimal_config",
			config: &config.LogConfig{
				Level:  "info",
				Format: "json",
				Output: []config.LogOutputConfig{{Type: "console", Enabled: true}},
			},
		},
		{
			name: "file_output_config",
			config: &config.LogConfig{
				Level:  "debug",
				Format: "json",
				Output: []config.LogOutputConfig{{Type: "file", Enabled: true, Path: filepath.Join(t.TempDir(), "test.log")}},
			},
		},
		{
			name: "rotating_file_config",
			config: &config.LogConfig{
				Level:  "error",
				Format: "json",
				Output: []config.LogOutputConfig{{Type: "file", Enabled: true, Path: filepath.Join(t.TempDir(), "rotating.log")}},
				Rotate: config.LogRotateConfig{MaxSizeMB: 1, MaxBackups: 3, MaxAgeDays: 7, Compress: true},
			},
		},
		{
			name: "invalid_output_type",
			config: &config.LogConfig{
				Level:  "info",
				Format: "json",
				Output: []config.LogOutputConfig{{Type: "invalid", Enabled: true}},
			},
			expectError: true,
			errorMsg:    "unsupported output type: invalid",
		},
		{
			name: "invalid_file_path",
			config: &config.LogConfig{
				Level:  "info",
				Format: "json",
				Output: []config.LogOutputConfig{{Type: "file", Enabled: true, Path: "/invalid/path/that/does/not/exist/file.log"}},
			},
			expectError: true,
			errorMsg:    "failed to create log directory",
		},
		{
			name: "package_levels_config",
			config: &config.LogConfig{
				Level:  "info",
				Format: "json",
				Output: []config.LogOutputConfig{{Type: "console", Enabled: true}},
				Levels: map[string]string{"server": "debug", "stats": "warn"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manager, err := NewManager(tt.config)

			if tt.expectError {
				if err == nil {
					t.Fatal("expected error but got none")
				}
				if !strings.Contains(err.Error(), tt.errorMsg) {
					t.Errorf("expected error containing %q, got %q", tt.errorMsg, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if manager.packageLoggers == nil {
				t.Error("packageLoggers map should be initialized")
			}
		})
	}
}

func TestManager_GetLogger(t *testing.T) {
	originalLevel := zerolog.GlobalLevel()
	defer zerolog.SetGlobalLevel(originalLevel)

	cfg := &config.LogConfig{
		Level:  "trace",
		Format: "json",
		Output: []config.LogOutputConfig{{Type: "console", Enabled: true}},
		Levels: map[string]string{"server": "debug", "stats": "warn"},
	}

	manager, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		pkg           string
		expectedLevel zerolog.Level
	}{
		{"newpackage", zerolog.TraceLevel},
		{"server", zerolog.DebugLevel},
		{"stats", zerolog.WarnLevel},
	}

	for _, tt := range tests {
		t.Run(tt.pkg, func(t *testing.T) {
			l := manager.GetLogger(tt.pkg)

			var buf bytes.Buffer
			testLogger := l.Output(&buf)
			switch tt.expectedLevel {
			case zerolog.TraceLevel:
				testLogger.Trace().Msg("test message")
			case zerolog.DebugLevel:
				testLogger.Debug().Msg("test message")
			case zerolog.WarnLevel:
				testLogger.Warn().Msg("test message")
			default:
				testLogger.Info().Msg("test message")
			}

			if buf.Len() == 0 {
				t.Fatal("expected log output but got none")
			}
			var entry map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("failed to parse log JSON: %v", err)
			}
			if entry["pkg"] != tt.pkg {
				t.Errorf("expected pkg=%q, got %q", tt.pkg, entry["pkg"])
			}
		})
	}
}

func TestManager_ThreadSafety(t *testing.T) {
	cfg := &config.LogConfig{
		Level:  "info",
		Format: "json",
		Output: []config.LogOutputConfig{{Type: "console", Enabled: true}},
	}

	manager, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	const numGoroutines = 100
	const numPackages = 10

	var wg sync.WaitGroup
	packages := make([]string, numPackages)
	for i := 0; i < numPackages; i++ {
		packages[i] = fmt.Sprintf("pkg%d", i)
	}

	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(i int) {
			defer wg.Done()
			l := manager.GetLogger(packages[i%numPackages])
			l.Info().Str("goroutine", fmt.Sprintf("%d", i)).Msg("test")
		}(i)
	}
	wg.Wait()

	manager.mu.RLock()
	if len(manager.packageLoggers) != numPackages {
		t.Errorf("expected %d package loggers, got %d", numPackages, len(manager.packageLoggers))
	}
	manager.mu.RUnlock()
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{"TRACE", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"WARNING", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"FATAL", zerolog.FatalLevel},
		{"panic", zerolog.PanicLevel},
		{"invalid", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestManager_Close(t *testing.T) {
	tempDir := t.TempDir()
	cfg := &config.LogConfig{
		Level:  "info",
		Format: "json",
		Output: []config.LogOutputConfig{{Type: "file", Enabled: true, Path: filepath.Join(tempDir, "test.log")}},
	}

	manager, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	manager.GetLogger("test").Info().Msg("test message")

	if err := manager.Close(); err != nil {
		t.Errorf("expected Close() to succeed, got error: %v", err)
	}
}

func TestGlobalLoggerFunctions(t *testing.T) {
	l := GetLogger("test")
	l.Info().Msg("this should be discarded")

	cfg := &config.LogConfig{
		Level:  "info",
		Format: "json",
		Output: []config.LogOutputConfig{{Type: "console", Enabled: true}},
	}

	if err := Initialize(cfg); err != nil {
		t.Errorf("failed to initialize global logger: %v", err)
	}
	if err := Initialize(cfg); err != nil {
		t.Errorf("second initialization should not fail: %v", err)
	}

	l = GetLogger("global-test")
	var buf bytes.Buffer
	testLogger := l.Output(&buf)
	testLogger.Info().Msg("global test message")
	if buf.Len() == 0 {
		t.Error("expected initialized global logger to produce output")
	}

	_ = CloseGlobal()
	globalManager = nil
	if err := CloseGlobal(); err != nil {
		t.Errorf("CloseGlobal should not fail when not initialized: %v", err)
	}
}

func TestManager_MultipleOutputs(t *testing.T) {
	tempDir := t.TempDir()
	cfg := &config.LogConfig{
		Level:  "info",
		Format: "json",
		Output: []config.LogOutputConfig{
			{Type: "console", Enabled: true},
			{Type: "file", Enabled: true, Path: filepath.Join(tempDir, "multi.log")},
		},
	}

	manager, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("unexpected error creating manager: %v", err)
	}
	if len(manager.writers) != 2 {
		t.Errorf("expected 2 writers, got %d", len(manager.writers))
	}
}

func TestManager_DisabledOutputs(t *testing.T) {
	cfg := &config.LogConfig{
		Level:  "info",
		Format: "json",
		Output: []config.LogOutputConfig{
			{Type: "console", Enabled: false},
			{Type: "console", Enabled: true},
		},
	}

	manager, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("unexpected error creating manager: %v", err)
	}
	if len(manager.writers) != 1 {
		t.Errorf("expected 1 writer, got %d", len(manager.writers))
	}
}
