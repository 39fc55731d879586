// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package shelltool implements the shell tool category: run_command,
// run_script, and which.
package shelltool

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/smith-agent/smith/internal/guard"
	"github.com/smith-agent/smith/internal/registry"
	"github.com/smith-agent/smith/internal/shellexec"
	"github.com/smith-agent/smith/internal/toolerr"
	"github.com/smith-agent/smith/internal/toolsupport"
)

// Factory returns the shell category's tools.
func Factory() []registry.Tool {
	return []registry.Tool{
		runCommandTool(),
		runScriptTool(),
		whichTool(),
	}
}

// CommandResult is the data returned by run_command and run_script.
type CommandResult struct {
	ExitCode int    `json:"exit_code"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	TimedOut bool   `json:"timed_out"`
}

// commandResult normalizes a shellexec.Result into the shell tools'
// success shape, matching the error-on-failure pattern internal/tools/git
// and internal/tools/system use: a timed-out or non-zero run surfaces as
// an error rather than a success=true result with failure data inside it.
func commandResult(name string, res shellexec.Result) (interface{}, error) {
	if res.TimedOut {
		return nil, fmt.Errorf("%w: %s", toolerr.ErrTimeout, name)
	}
	if res.ExitCode != 0 {
		return nil, fmt.Errorf("%w: %s exited %d: %s", toolerr.ErrInternal, name, res.ExitCode,
			guard.TruncateOutput(res.Stderr, guard.DefaultOutputCap))
	}
	return CommandResult{
		ExitCode: res.ExitCode,
		Stdout:   guard.TruncateOutput(res.Stdout, guard.DefaultOutputCap),
		Stderr:   guard.TruncateOutput(res.Stderr, guard.DefaultOutputCap),
		TimedOut: res.TimedOut,
	}, nil
}

func runCommandTool() registry.Tool {
	return registry.Tool{
		Name:     "run_command",
		Category: "shell",
		Args: []registry.ArgDescriptor{
			{Name: "command", Type: registry.ArgString, Required: true},
			{Name: "args", Type: registry.ArgArray, Default: []interface{}{}},
			{Name: "cwd", Type: registry.ArgString},
			{Name: "timeout_ms", Type: registry.ArgNumber},
		},
		Destructive: registry.ReadOnly,
		Handler: func(ctx context.Context, tc registry.ToolContext, args map[string]interface{}) (interface{}, error) {
			cmd := registry.StringArg(args, "command", "")
			if err := toolsupport.GuardCommand(cmd, tc.AllowedShellCommands); err != nil {
				return nil, err
			}

			cwd := tc.SandboxDir
			if raw, ok := args["cwd"]; ok {
				resolved, ok := guard.ResolveInSandbox(raw.(string), tc.SandboxDir)
				if !ok {
					return nil, fmt.Errorf("%w: cwd %q resolves outside the sandbox", toolerr.ErrSandboxViolation, raw)
				}
				cwd = resolved
			}

			res := shellexec.Run(ctx, cmd, registry.StringSliceArg(args, "args"), shellexec.Options{
				Cwd:     cwd,
				Timeout: tc.Timeout,
			})
			return commandResult("run_command", res)
		},
	}
}

// interpreterFor maps a run_script language hint to the runtime used to
// execute it.
var interpreterFor = map[string]string{
	"bash":    "bash",
	"sh":      "sh",
	"node":    "node",
	"python3": "python3",
	"python":  "python3",
}

func runScriptTool() registry.Tool {
	return registry.Tool{
		Name:     "run_script",
		Category: "shell",
		Args: []registry.ArgDescriptor{
			{Name: "content", Type: registry.ArgString, Required: true},
			{Name: "language", Type: registry.ArgString, Default: "bash"},
			{Name: "timeout_ms", Type: registry.ArgNumber},
		},
		Destructive: registry.ReadOnly,
		Handler: func(ctx context.Context, tc registry.ToolContext, args map[string]interface{}) (interface{}, error) {
			language := registry.StringArg(args, "language", "bash")
			interpreter, ok := interpreterFor[language]
			if !ok {
				return nil, fmt.Errorf("%w: unsupported script language %q", toolerr.ErrBadArguments, language)
			}
			if err := toolsupport.GuardCommand(interpreter, tc.AllowedShellCommands); err != nil {
				return nil, err
			}

			tmp, err := os.CreateTemp(tc.SandboxDir, "smith-script-*")
			if err != nil {
				return nil, fmt.Errorf("%w: %s", toolerr.ErrInternal, err)
			}
			scriptPath := tmp.Name()
			defer os.Remove(scriptPath)

			content := registry.StringArg(args, "content", "")
			if _, err := tmp.WriteString(content); err != nil {
				tmp.Close()
				return nil, fmt.Errorf("%w: %s", toolerr.ErrInternal, err)
			}
			tmp.Close()

			res := shellexec.Run(ctx, interpreter, []string{scriptPath}, shellexec.Options{
				Cwd:     tc.SandboxDir,
				Timeout: tc.Timeout,
			})
			return commandResult("run_script", res)
		},
	}
}

func whichTool() registry.Tool {
	return registry.Tool{
		Name:     "which",
		Category: "shell",
		Args: []registry.ArgDescriptor{
			{Name: "binary", Type: registry.ArgString, Required: true},
		},
		Destructive: registry.ReadOnly,
		Handler: func(ctx context.Context, tc registry.ToolContext, args map[string]interface{}) (interface{}, error) {
			binary := registry.StringArg(args, "binary", "")
			path, found := shellexec.Which(filepath.Clean(binary))
			return map[string]interface{}{"path": path, "found": found}, nil
		},
	}
}
