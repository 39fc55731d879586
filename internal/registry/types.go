// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package registry catalogs Smith's tools by toggleable category and
// builds the subset enabled by the per-category enable flags.
package registry

import (
	"context"
	"time"
)

// ToolContext is the read-only, per-connection view handed to every
// tool handler.
type ToolContext struct {
	SandboxDir           string
	ReadOnlyMode         bool
	AllowedShellCommands []string
	Timeout              time.Duration
}

// WorkDir is the tool's working directory, which is always the sandbox
// root — Smith has no notion of a per-task subdirectory.
func (c ToolContext) WorkDir() string {
	return c.SandboxDir
}

// ArgType names the declarative argument kinds the shared validator
// understands. No JSON-schema library is involved — see the registry
// package's validation routine.
type ArgType string

const (
	ArgString ArgType = "string"
	ArgNumber ArgType = "number"
	ArgBool   ArgType = "bool"
	ArgObject ArgType = "object"
	ArgArray  ArgType = "array"
)

// ArgDescriptor declares one expected argument: its name, type,
// whether it's required, and a default value used when absent.
type ArgDescriptor struct {
	Name     string
	Type     ArgType
	Required bool
	Default  interface{}
}

// Handler executes one tool invocation with already-validated args and
// returns the tool's result data, or an error drawn from the sentinel
// error taxonomy in internal/toolerr.
type Handler func(ctx context.Context, tc ToolContext, args map[string]interface{}) (interface{}, error)

// Destructive marks a tool as a write/delete/mutate action. Neither the
// registry nor the executor reads it: read-only enforcement happens
// inside each handler that calls the toolsupport guards.
type Destructive bool

const (
	ReadOnly  Destructive = false
	Destructs Destructive = true
)

// Tool is the registry's unit of work: a name, category, input schema,
// and handler. Names are unique across the whole registry.
type Tool struct {
	Name        string
	Category    string
	Args        []ArgDescriptor
	Destructive Destructive
	Handler     Handler
}
