// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package git

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smith-agent/smith/internal/registry"
)

func lookup(t *testing.T, name string) registry.Tool {
	for _, tool := range Factory() {
		if tool.Name == name {
			return tool
		}
	}
	t.Fatalf("tool %q not found", name)
	return registry.Tool{}
}

func initRepo(t *testing.T) string {
	dir := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		require.NoError(t, cmd.Run())
	}
	run("init")
	run("config", "user.email", "smith@example.com")
	run("config", "user.name", "smith")
	return dir
}

func TestGitStatus(t *testing.T) {
	dir := initRepo(t)
	tc := registry.ToolContext{SandboxDir: dir, AllowedShellCommands: []string{"git"}, Timeout: 5 * time.Second}
	out, err := lookup(t, "git_status").Handler(context.Background(), tc, nil)
	require.NoError(t, err)
	res := out.(Result)
	assert.Equal(t, 0, res.ExitCode)
}

func TestGitCommit_ReadOnlyDenied(t *testing.T) {
	dir := initRepo(t)
	tc := registry.ToolContext{SandboxDir: dir, AllowedShellCommands: []string{"git"}, ReadOnlyMode: true, Timeout: 5 * time.Second}
	_, err := lookup(t, "git_commit").Handler(context.Background(), tc, map[string]interface{}{"message": "x"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "read-only")
}

func TestGit_NotAllowlisted(t *testing.T) {
	dir := initRepo(t)
	tc := registry.ToolContext{SandboxDir: dir, AllowedShellCommands: []string{"node"}}
	_, err := lookup(t, "git_status").Handler(context.Background(), tc, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "allowed_commands")
}

func TestGitCloneDestination_SandboxEscape(t *testing.T) {
	dir := initRepo(t)
	tc := registry.ToolContext{SandboxDir: dir, AllowedShellCommands: []string{"git"}}
	_, err := lookup(t, "git_clone").Handler(context.Background(), tc, map[string]interface{}{
		"url": "https://example.com/repo.git", "destination": "/etc/evil",
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "outside the sandbox")
}
