// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package home

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_CreatesSubdirectories(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "smith-home")
	h, err := New(dir)
	require.NoError(t, err)

	assert.DirExists(t, h.LogsDir())
	assert.DirExists(t, h.BrowserCacheDir())
}

func TestWriteAndReadPID(t *testing.T) {
	h, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, h.WritePID())
	pid, err := h.ReadPID()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)

	require.NoError(t, h.RemovePIDFile())
	_, err = h.ReadPID()
	assert.Error(t, err)
}

func TestResolveAuthToken_PrefersExplicitConfig(t *testing.T) {
	h, err := New(t.TempDir())
	require.NoError(t, err)

	token, err := h.ResolveAuthToken("configured-token")
	require.NoError(t, err)
	assert.Equal(t, "configured-token", token)

	_, statErr := os.Stat(h.AuthTokenFilePath())
	assert.True(t, os.IsNotExist(statErr))
}

func TestResolveAuthToken_PersistsGeneratedUUID(t *testing.T) {
	h, err := New(t.TempDir())
	require.NoError(t, err)

	first, err := h.ResolveAuthToken("")
	require.NoError(t, err)
	assert.NotEmpty(t, first)

	second, err := h.ResolveAuthToken("")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
