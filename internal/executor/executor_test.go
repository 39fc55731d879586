// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package executor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smith-agent/smith/internal/registry"
	"github.com/smith-agent/smith/internal/toolerr"
)

func buildRegistry(t *testing.T, tools ...registry.Tool) *registry.Registry {
	factories := map[string]registry.CategoryFactory{
		"filesystem": func() []registry.Tool { return tools },
	}
	entries := registry.RegisterAll(factories)
	reg, err := registry.Build(entries, map[string]bool{"filesystem": true})
	require.NoError(t, err)
	return reg
}

func TestExecute_UnknownTool(t *testing.T) {
	reg := buildRegistry(t)
	exec := New(reg, registry.ToolContext{Timeout: time.Second})

	result := exec.Execute(context.Background(), "does_not_exist", nil)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "unknown tool")
	assert.GreaterOrEqual(t, result.DurationMS, int64(0))
}

func TestExecute_BadArguments(t *testing.T) {
	tool := registry.Tool{
		Name: "needs_arg",
		Args: []registry.ArgDescriptor{{Name: "x", Type: registry.ArgString, Required: true}},
		Handler: func(ctx context.Context, tc registry.ToolContext, args map[string]interface{}) (interface{}, error) {
			return "ok", nil
		},
	}
	reg := buildRegistry(t, tool)
	exec := New(reg, registry.ToolContext{Timeout: time.Second})

	result := exec.Execute(context.Background(), "needs_arg", map[string]interface{}{})
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "missing required argument")
}

func TestExecute_HappyPath(t *testing.T) {
	tool := registry.Tool{
		Name: "echo",
		Handler: func(ctx context.Context, tc registry.ToolContext, args map[string]interface{}) (interface{}, error) {
			return "hi", nil
		},
	}
	reg := buildRegistry(t, tool)
	exec := New(reg, registry.ToolContext{Timeout: time.Second})

	result := exec.Execute(context.Background(), "echo", map[string]interface{}{})
	assert.True(t, result.Success)
	assert.Equal(t, "hi", result.Data)
	assert.Empty(t, result.Error)
	assert.GreaterOrEqual(t, result.DurationMS, int64(0))
}

func TestExecute_HandlerError(t *testing.T) {
	tool := registry.Tool{
		Name: "fails",
		Handler: func(ctx context.Context, tc registry.ToolContext, args map[string]interface{}) (interface{}, error) {
			return nil, errors.New("boom")
		},
	}
	reg := buildRegistry(t, tool)
	exec := New(reg, registry.ToolContext{Timeout: time.Second})

	result := exec.Execute(context.Background(), "fails", map[string]interface{}{})
	assert.False(t, result.Success)
	assert.Equal(t, "boom", result.Error)
}

func TestExecute_Timeout(t *testing.T) {
	tool := registry.Tool{
		Name: "slow",
		Handler: func(ctx context.Context, tc registry.ToolContext, args map[string]interface{}) (interface{}, error) {
			select {
			case <-time.After(500 * time.Millisecond):
				return "too slow", nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		},
	}
	reg := buildRegistry(t, tool)
	exec := New(reg, registry.ToolContext{Timeout: 50 * time.Millisecond})

	result := exec.Execute(context.Background(), "slow", map[string]interface{}{})
	assert.False(t, result.Success)
	assert.Equal(t, toolerr.ErrTimeout.Error(), result.Error)
	assert.Equal(t, int64(50), result.DurationMS)
}

func TestEffectiveTimeout_ArgOverridesWhenSmaller(t *testing.T) {
	exec := New(buildRegistry(t), registry.ToolContext{Timeout: time.Second})
	got := exec.effectiveTimeout(map[string]interface{}{"timeout_ms": float64(100)})
	assert.Equal(t, 100*time.Millisecond, got)
}

func TestEffectiveTimeout_CtxWinsWhenSmaller(t *testing.T) {
	exec := New(buildRegistry(t), registry.ToolContext{Timeout: 100 * time.Millisecond})
	got := exec.effectiveTimeout(map[string]interface{}{"timeout_ms": float64(5000)})
	assert.Equal(t, 100*time.Millisecond, got)
}

func TestEffectiveTimeout_DefaultsToCtx(t *testing.T) {
	exec := New(buildRegistry(t), registry.ToolContext{Timeout: 2 * time.Second})
	got := exec.effectiveTimeout(map[string]interface{}{})
	assert.Equal(t, 2*time.Second, got)
}
