// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package shellexec

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Success(t *testing.T) {
	res := Run(context.Background(), "echo", []string{"hello"}, Options{})
	assert.Equal(t, 0, res.ExitCode)
	assert.Contains(t, res.Stdout, "hello")
	assert.False(t, res.TimedOut)
}

func TestRun_NonZeroExit(t *testing.T) {
	res := Run(context.Background(), "sh", []string{"-c", "exit 3"}, Options{})
	assert.Equal(t, 3, res.ExitCode)
	assert.False(t, res.TimedOut)
}

func TestRun_SpawnErrorSetsExitCodeOne(t *testing.T) {
	res := Run(context.Background(), "no-such-binary-xyz", nil, Options{})
	assert.Equal(t, 1, res.ExitCode)
	assert.NotEmpty(t, res.Stderr)
}

func TestRun_Timeout(t *testing.T) {
	start := time.Now()
	res := Run(context.Background(), "sleep", []string{"5"}, Options{Timeout: 200 * time.Millisecond})
	elapsed := time.Since(start)

	assert.True(t, res.TimedOut)
	assert.Less(t, elapsed, 2*time.Second)
}

func TestRun_Cwd(t *testing.T) {
	dir := t.TempDir()
	res := Run(context.Background(), "pwd", nil, Options{Cwd: dir})
	assert.Equal(t, 0, res.ExitCode)
}

func TestWhich_Found(t *testing.T) {
	path, ok := Which("sh")
	require.True(t, ok)
	assert.NotEmpty(t, path)
}

func TestWhich_NotFound(t *testing.T) {
	_, ok := Which("no-such-binary-xyz")
	assert.False(t, ok)
}
