// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package toolerr defines the sentinel error taxonomy tools and the
// executor use to classify failures into wire-level error strings.
package toolerr

import "errors"

// Sentinel errors, wrapped with context via fmt.Errorf("%w: ...", Sentinel)
// at the point of failure. errors.Is against these lets the executor and
// server log each failure under its taxonomy category without parsing
// error strings.
var (
	ErrUnknownTool    = errors.New("unknown tool")
	ErrBadArguments   = errors.New("bad arguments")
	ErrSandboxViolation = errors.New("outside the sandbox")
	ErrReadOnlyDenied = errors.New("read-only mode")
	ErrNotAllowed     = errors.New("not in allowed_commands")
	ErrTimeout        = errors.New("timeout")
	ErrBusy           = errors.New("busy")
	ErrInternal       = errors.New("internal error")
)
