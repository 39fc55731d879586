// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package system

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

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

func TestClipboardWrite_ReadOnlyDenied(t *testing.T) {
	tc := registry.ToolContext{ReadOnlyMode: true}
	_, err := lookup(t, "clipboard_write").Handler(context.Background(), tc, map[string]interface{}{"text": "hi"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "read-only")
}

func TestOpenFile_SandboxEscape(t *testing.T) {
	tc := registry.ToolContext{SandboxDir: t.TempDir()}
	_, err := lookup(t, "open_file").Handler(context.Background(), tc, map[string]interface{}{"path": "/etc/passwd"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "outside the sandbox")
}

func TestNotifyCommand_CurrentPlatform(t *testing.T) {
	cmd, args, err := notifyCommand("title", "message")
	assert.NoError(t, err)
	assert.NotEmpty(t, cmd)
	assert.NotEmpty(t, args)
}

func TestOpenCommand_KnownPlatforms(t *testing.T) {
	cmd, args, err := openCommand("https://example.com")
	assert.NoError(t, err)
	assert.NotEmpty(t, cmd)
	assert.NotEmpty(t, args)
}
