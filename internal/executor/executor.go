// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package executor runs one tool invocation end to end: lookup,
// argument validation, timeout-bounded dispatch, and normalization
// into the wire-level result envelope.
package executor

import (
	"context"
	"errors"
	"time"

	"github.com/smith-agent/smith/internal/protocol"
	"github.com/smith-agent/smith/internal/registry"
	"github.com/smith-agent/smith/internal/toolerr"
)

// Executor runs tool invocations against a fixed Registry and
// ToolContext. It performs no concurrency gating of its own — the
// server enforces max_concurrent_tasks before calling Execute.
type Executor struct {
	reg *registry.Registry
	tc  registry.ToolContext
}

// New builds an Executor bound to reg and tc.
func New(reg *registry.Registry, tc registry.ToolContext) *Executor {
	return &Executor{reg: reg, tc: tc}
}

// Execute runs toolName with rawArgs and returns a fully normalized
// Result: success, data, error, and duration_ms are always populated
// consistently, regardless of where in the pipeline things failed.
func (e *Executor) Execute(ctx context.Context, toolName string, rawArgs map[string]interface{}) protocol.Result {
	start := time.Now()

	tool, ok := e.reg.Lookup(toolName)
	if !ok {
		return failure(toolerr.ErrUnknownTool, time.Since(start))
	}

	args, err := registry.ValidateArgs(tool.Args, rawArgs)
	if err != nil {
		return failure(err, time.Since(start))
	}

	timeout := e.effectiveTimeout(rawArgs)
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	data, err := tool.Handler(runCtx, e.tc, args)
	elapsed := time.Since(start)

	if err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return protocol.Result{Success: false, Error: toolerr.ErrTimeout.Error(), DurationMS: timeout.Milliseconds()}
		}
		return failure(err, elapsed)
	}

	return protocol.Result{Success: true, Data: data, DurationMS: elapsed.Milliseconds()}
}

// effectiveTimeout applies min(arg.timeout_ms, ctx.timeout_ms) per
// spec.md §5. A missing or non-positive arg.timeout_ms defers entirely
// to the context default.
func (e *Executor) effectiveTimeout(rawArgs map[string]interface{}) time.Duration {
	ctxTimeout := e.tc.Timeout
	argMS := registry.IntArg(rawArgs, "timeout_ms", 0)
	if argMS <= 0 {
		return ctxTimeout
	}
	argTimeout := time.Duration(argMS) * time.Millisecond
	if ctxTimeout > 0 && ctxTimeout < argTimeout {
		return ctxTimeout
	}
	return argTimeout
}

func failure(err error, elapsed time.Duration) protocol.Result {
	return protocol.Result{Success: false, Error: err.Error(), DurationMS: elapsed.Milliseconds()}
}
