// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package packages implements the packages tool category: npm_install,
// npm_run, pip_install, and cargo_build. Every tool shells out to the
// corresponding package manager binary through internal/shellexec, the
// same adapter the shell and git categories use.
package packages

import (
	"context"
	"fmt"
	"time"

	"github.com/smith-agent/smith/internal/guard"
	"github.com/smith-agent/smith/internal/registry"
	"github.com/smith-agent/smith/internal/shellexec"
	"github.com/smith-agent/smith/internal/toolerr"
	"github.com/smith-agent/smith/internal/toolsupport"
)

const defaultPackageTimeout = 120 * time.Second

// Factory returns the packages category's tools.
func Factory() []registry.Tool {
	return []registry.Tool{
		npmInstallTool(), npmRunTool(), pipInstallTool(), cargoBuildTool(),
	}
}

// CommandResult is the data returned by every packages tool.
type CommandResult struct {
	ExitCode int    `json:"exit_code"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	TimedOut bool   `json:"timed_out"`
}

func timeoutFor(tc registry.ToolContext) time.Duration {
	if tc.Timeout > 0 {
		return tc.Timeout
	}
	return defaultPackageTimeout
}

func run(ctx context.Context, tc registry.ToolContext, bin string, args []string) (interface{}, error) {
	if err := toolsupport.GuardCommand(bin, tc.AllowedShellCommands); err != nil {
		return nil, err
	}
	res := shellexec.Run(ctx, bin, args, shellexec.Options{Cwd: tc.SandboxDir, Timeout: timeoutFor(tc)})
	if res.TimedOut {
		return nil, fmt.Errorf("%w: %s", toolerr.ErrTimeout, bin)
	}
	if res.ExitCode != 0 {
		return nil, fmt.Errorf("%w: %s exited %d: %s", toolerr.ErrInternal, bin, res.ExitCode,
			guard.TruncateOutput(res.Stderr, guard.DefaultOutputCap))
	}
	return CommandResult{
		ExitCode: res.ExitCode,
		Stdout:   guard.TruncateOutput(res.Stdout, guard.DefaultOutputCap),
		Stderr:   guard.TruncateOutput(res.Stderr, guard.DefaultOutputCap),
		TimedOut: res.TimedOut,
	}, nil
}

func npmInstallTool() registry.Tool {
	return registry.Tool{
		Name:     "npm_install",
		Category: "packages",
		Args: []registry.ArgDescriptor{
			{Name: "packages", Type: registry.ArgArray, Default: []interface{}{}},
		},
		Destructive: registry.Destructs,
		Handler: func(ctx context.Context, tc registry.ToolContext, args map[string]interface{}) (interface{}, error) {
			if err := toolsupport.GuardDestructive(tc.ReadOnlyMode); err != nil {
				return nil, err
			}
			pkgs := registry.StringSliceArg(args, "packages")
			npmArgs := append([]string{"install"}, pkgs...)
			return run(ctx, tc, "npm", npmArgs)
		},
	}
}

func npmRunTool() registry.Tool {
	return registry.Tool{
		Name:     "npm_run",
		Category: "packages",
		Args: []registry.ArgDescriptor{
			{Name: "script", Type: registry.ArgString, Required: true},
		},
		Destructive: registry.Destructs,
		Handler: func(ctx context.Context, tc registry.ToolContext, args map[string]interface{}) (interface{}, error) {
			if err := toolsupport.GuardDestructive(tc.ReadOnlyMode); err != nil {
				return nil, err
			}
			script := registry.StringArg(args, "script", "")
			return run(ctx, tc, "npm", []string{"run", script})
		},
	}
}

// pipInstallTool installs the listed packages, or installs from
// requirements.txt in the sandbox root when the list is empty.
func pipInstallTool() registry.Tool {
	return registry.Tool{
		Name:     "pip_install",
		Category: "packages",
		Args: []registry.ArgDescriptor{
			{Name: "packages", Type: registry.ArgArray, Default: []interface{}{}},
		},
		Destructive: registry.Destructs,
		Handler: func(ctx context.Context, tc registry.ToolContext, args map[string]interface{}) (interface{}, error) {
			if err := toolsupport.GuardDestructive(tc.ReadOnlyMode); err != nil {
				return nil, err
			}
			pkgs := registry.StringSliceArg(args, "packages")
			var pipArgs []string
			if len(pkgs) == 0 {
				pipArgs = []string{"install", "-r", "requirements.txt"}
			} else {
				pipArgs = append([]string{"install"}, pkgs...)
			}
			return run(ctx, tc, "pip", pipArgs)
		},
	}
}

func cargoBuildTool() registry.Tool {
	return registry.Tool{
		Name:     "cargo_build",
		Category: "packages",
		Args: []registry.ArgDescriptor{
			{Name: "release", Type: registry.ArgBool, Default: false},
		},
		Destructive: registry.Destructs,
		Handler: func(ctx context.Context, tc registry.ToolContext, args map[string]interface{}) (interface{}, error) {
			if err := toolsupport.GuardDestructive(tc.ReadOnlyMode); err != nil {
				return nil, err
			}
			cargoArgs := []string{"build"}
			if registry.BoolArg(args, "release", false) {
				cargoArgs = append(cargoArgs, "--release")
			}
			return run(ctx, tc, "cargo", cargoArgs)
		},
	}
}
