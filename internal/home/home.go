// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package home manages Smith's persisted state directory: the PID
// file, auth-token file, logs directory, and browser cache directory
// described in spec.md §6.
package home

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const (
	pidFileName   = "smith.pid"
	authFileName  = "auth_token"
	logsDirName   = "logs"
	cacheDirName  = "browser-cache"
	dirMode       = 0o700
	fileMode      = 0o600
)

// Home is the persisted-state directory rooted at Dir.
type Home struct {
	Dir string
}

// New ensures dir and its logs/browser-cache subdirectories exist and
// returns a Home rooted there.
func New(dir string) (*Home, error) {
	if dir == "" {
		return nil, fmt.Errorf("home directory must not be empty")
	}
	h := &Home{Dir: dir}
	for _, sub := range []string{"", logsDirName, cacheDirName} {
		if err := os.MkdirAll(filepath.Join(dir, sub), dirMode); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", filepath.Join(dir, sub), err)
		}
	}
	return h, nil
}

// PIDFilePath is the absolute path of the PID file.
func (h *Home) PIDFilePath() string { return filepath.Join(h.Dir, pidFileName) }

// AuthTokenFilePath is the absolute path of the persisted auth-token file.
func (h *Home) AuthTokenFilePath() string { return filepath.Join(h.Dir, authFileName) }

// LogsDir is the absolute path of the logs directory.
func (h *Home) LogsDir() string { return filepath.Join(h.Dir, logsDirName) }

// BrowserCacheDir is the absolute path of the browser cache directory.
func (h *Home) BrowserCacheDir() string { return filepath.Join(h.Dir, cacheDirName) }

// WritePID persists the current process's PID as integer text.
func (h *Home) WritePID() error {
	return os.WriteFile(h.PIDFilePath(), []byte(strconv.Itoa(os.Getpid())), fileMode)
}

// ReadPID reads the persisted PID file, if present.
func (h *Home) ReadPID() (int, error) {
	data, err := os.ReadFile(h.PIDFilePath())
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

// RemovePIDFile deletes the PID file, ignoring a not-exist error.
func (h *Home) RemovePIDFile() error {
	err := os.Remove(h.PIDFilePath())
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ResolveAuthToken implements spec.md §6's resolution order: an
// explicit config value wins outright; otherwise the persisted file is
// read if present; otherwise a new UUID is generated and persisted for
// next time.
func (h *Home) ResolveAuthToken(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}

	if data, err := os.ReadFile(h.AuthTokenFilePath()); err == nil {
		token := strings.TrimSpace(string(data))
		if token != "" {
			return token, nil
		}
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to read auth token file: %w", err)
	}

	token := uuid.NewString()
	if err := os.WriteFile(h.AuthTokenFilePath(), []byte(token), fileMode); err != nil {
		return "", fmt.Errorf("failed to persist auth token: %w", err)
	}
	return token, nil
}
