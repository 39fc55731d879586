// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package toolsupport holds the cross-cutting checks every tool handler
// applies before doing real work: sandbox confinement and read-only
// enforcement, consolidated into one wrapper per spec.md §9's
// with_guarded_path pattern instead of being repeated per tool.
package toolsupport

import (
	"fmt"

	"github.com/smith-agent/smith/internal/guard"
	"github.com/smith-agent/smith/internal/toolerr"
)

// GuardPath resolves rawPath against sandboxDir and, if destructive is
// true, fails when readOnly is set. It is the single checkpoint every
// filesystem/git/network path argument passes through.
func GuardPath(sandboxDir string, readOnly bool, rawPath string, destructive bool) (string, error) {
	if destructive && readOnly {
		return "", fmt.Errorf("%w: destructive operation refused", toolerr.ErrReadOnlyDenied)
	}
	resolved, ok := guard.ResolveInSandbox(rawPath, sandboxDir)
	if !ok {
		return "", fmt.Errorf("%w: %q resolves outside the sandbox", toolerr.ErrSandboxViolation, rawPath)
	}
	return resolved, nil
}

// GuardDestructive fails when readOnly is true and the operation has no
// path argument to route through GuardPath (e.g. clipboard write).
func GuardDestructive(readOnly bool) error {
	if readOnly {
		return fmt.Errorf("%w: destructive operation refused", toolerr.ErrReadOnlyDenied)
	}
	return nil
}

// GuardCommand fails when cmd's binary is not in allow.
func GuardCommand(cmd string, allow []string) error {
	if !guard.IsCommandAllowed(cmd, allow) {
		return fmt.Errorf("%w: %q is not in allowed_commands", toolerr.ErrNotAllowed, cmd)
	}
	return nil
}
