// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeFactories() map[string]CategoryFactory {
	noop := func(ctx context.Context, tc ToolContext, args map[string]interface{}) (interface{}, error) {
		return "ok", nil
	}
	return map[string]CategoryFactory{
		"filesystem": func() []Tool { return []Tool{{Name: "read_file", Category: "filesystem", Handler: noop}} },
		"shell":      func() []Tool { return []Tool{{Name: "run_command", Category: "shell", Handler: noop}} },
		"git":        func() []Tool { return []Tool{{Name: "git_status", Category: "git", Handler: noop}} },
		"network":    func() []Tool { return []Tool{{Name: "ping", Category: "network", Handler: noop}} },
		"processes":  func() []Tool { return []Tool{{Name: "list_processes", Category: "processes", Handler: noop}} },
		"packages":   func() []Tool { return []Tool{{Name: "npm_install", Category: "packages", Handler: noop}} },
		"system":     func() []Tool { return []Tool{{Name: "notify", Category: "system", Handler: noop}} },
		"browser":    func() []Tool { return []Tool{{Name: "navigate", Category: "browser", Handler: noop}} },
	}
}

func TestBuild_AllEnabled(t *testing.T) {
	entries := RegisterAll(fakeFactories())
	reg, err := Build(entries, map[string]bool{"filesystem": true, "shell": true, "git": true, "network": true})
	require.NoError(t, err)

	assert.Len(t, reg.Capabilities(), 8)
	_, ok := reg.Lookup("read_file")
	assert.True(t, ok)
}

func TestBuild_GatedCategoryDisabled(t *testing.T) {
	entries := RegisterAll(fakeFactories())
	reg, err := Build(entries, map[string]bool{"filesystem": false, "shell": true, "git": true, "network": true})
	require.NoError(t, err)

	_, ok := reg.Lookup("read_file")
	assert.False(t, ok)
	_, ok = reg.Lookup("run_command")
	assert.True(t, ok)
}

func TestBuild_UngatedCategoriesAlwaysLoad(t *testing.T) {
	entries := RegisterAll(fakeFactories())
	reg, err := Build(entries, map[string]bool{})
	require.NoError(t, err)

	for _, name := range []string{"list_processes", "npm_install", "notify", "navigate"} {
		_, ok := reg.Lookup(name)
		assert.True(t, ok, "expected %s to always load", name)
	}
	_, ok := reg.Lookup("read_file")
	assert.False(t, ok)
}

func TestBuild_DuplicateToolNameFails(t *testing.T) {
	factories := fakeFactories()
	factories["system"] = func() []Tool {
		return []Tool{{Name: "read_file", Category: "system"}}
	}
	entries := RegisterAll(factories)
	_, err := Build(entries, map[string]bool{"filesystem": true})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate tool name")
}

func TestValidateArgs_RequiredMissing(t *testing.T) {
	descs := []ArgDescriptor{{Name: "file_path", Type: ArgString, Required: true}}
	_, err := ValidateArgs(descs, map[string]interface{}{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "file_path")
}

func TestValidateArgs_WrongType(t *testing.T) {
	descs := []ArgDescriptor{{Name: "count", Type: ArgNumber, Required: true}}
	_, err := ValidateArgs(descs, map[string]interface{}{"count": "not a number"})
	assert.Error(t, err)
}

func TestValidateArgs_DefaultsFilled(t *testing.T) {
	descs := []ArgDescriptor{{Name: "recursive", Type: ArgBool, Default: false}}
	out, err := ValidateArgs(descs, map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, false, out["recursive"])
}

func TestValidateArgs_ValidPassthrough(t *testing.T) {
	descs := []ArgDescriptor{
		{Name: "file_path", Type: ArgString, Required: true},
		{Name: "max_results", Type: ArgNumber, Default: 100},
	}
	out, err := ValidateArgs(descs, map[string]interface{}{"file_path": "x.txt"})
	require.NoError(t, err)
	assert.Equal(t, "x.txt", out["file_path"])
	assert.Equal(t, 100, out["max_results"])
}

func TestArgHelpers(t *testing.T) {
	args := map[string]interface{}{
		"name":    "smith",
		"count":   float64(3),
		"all":     true,
		"tags":    []interface{}{"a", "b"},
		"options": map[string]interface{}{"k": "v"},
	}
	assert.Equal(t, "smith", StringArg(args, "name", "fallback"))
	assert.Equal(t, "fallback", StringArg(args, "missing", "fallback"))
	assert.Equal(t, 3, IntArg(args, "count", 0))
	assert.Equal(t, true, BoolArg(args, "all", false))
	assert.Equal(t, []string{"a", "b"}, StringSliceArg(args, "tags"))
	assert.Equal(t, "v", ObjectArg(args, "options")["k"])
}
