// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package git implements the git tool category. Every tool shells out
// to the git binary; none of them touch go-git or any other library —
// the git binary itself is the interface, matching how every other
// shell-backed category works.
package git

import (
	"context"
	"fmt"

	"github.com/smith-agent/smith/internal/guard"
	"github.com/smith-agent/smith/internal/registry"
	"github.com/smith-agent/smith/internal/shellexec"
	"github.com/smith-agent/smith/internal/toolerr"
	"github.com/smith-agent/smith/internal/toolsupport"
)

// Factory returns the git category's tools.
func Factory() []registry.Tool {
	return []registry.Tool{
		statusTool(), diffTool(), logTool(), addTool(), commitTool(),
		pushTool(), pullTool(), checkoutTool(), createBranchTool(),
		stashTool(), cloneTool(), worktreeAddTool(),
	}
}

// Result is the data returned by every git tool.
type Result struct {
	ExitCode int    `json:"exit_code"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
}

func runGit(ctx context.Context, tc registry.ToolContext, cwd string, args []string) (interface{}, error) {
	if err := toolsupport.GuardCommand("git", tc.AllowedShellCommands); err != nil {
		return nil, err
	}
	res := shellexec.Run(ctx, "git", args, shellexec.Options{Cwd: cwd, Timeout: tc.Timeout})
	if res.ExitCode != 0 {
		return nil, fmt.Errorf("%w: git %v: %s", toolerr.ErrInternal, args, guard.TruncateOutput(res.Stderr, guard.DefaultOutputCap))
	}
	return Result{
		ExitCode: res.ExitCode,
		Stdout:   guard.TruncateOutput(res.Stdout, guard.DefaultOutputCap),
		Stderr:   guard.TruncateOutput(res.Stderr, guard.DefaultOutputCap),
	}, nil
}

func statusTool() registry.Tool {
	return registry.Tool{
		Name: "git_status", Category: "git", Destructive: registry.ReadOnly,
		Handler: func(ctx context.Context, tc registry.ToolContext, args map[string]interface{}) (interface{}, error) {
			return runGit(ctx, tc, tc.SandboxDir, []string{"status", "--porcelain=v1", "-b"})
		},
	}
}

func diffTool() registry.Tool {
	return registry.Tool{
		Name: "git_diff", Category: "git", Destructive: registry.ReadOnly,
		Args: []registry.ArgDescriptor{{Name: "path", Type: registry.ArgString}},
		Handler: func(ctx context.Context, tc registry.ToolContext, args map[string]interface{}) (interface{}, error) {
			gitArgs := []string{"diff"}
			if p := registry.StringArg(args, "path", ""); p != "" {
				gitArgs = append(gitArgs, "--", p)
			}
			return runGit(ctx, tc, tc.SandboxDir, gitArgs)
		},
	}
}

func logTool() registry.Tool {
	return registry.Tool{
		Name: "git_log", Category: "git", Destructive: registry.ReadOnly,
		Args: []registry.ArgDescriptor{{Name: "max_count", Type: registry.ArgNumber, Default: 20}},
		Handler: func(ctx context.Context, tc registry.ToolContext, args map[string]interface{}) (interface{}, error) {
			n := registry.IntArg(args, "max_count", 20)
			return runGit(ctx, tc, tc.SandboxDir, []string{"log", fmt.Sprintf("-%d", n), "--pretty=format:%H|%an|%ad|%s"})
		},
	}
}

func addTool() registry.Tool {
	return registry.Tool{
		Name: "git_add", Category: "git", Destructive: registry.ReadOnly,
		Args: []registry.ArgDescriptor{{Name: "paths", Type: registry.ArgArray, Default: []interface{}{"."}}},
		Handler: func(ctx context.Context, tc registry.ToolContext, args map[string]interface{}) (interface{}, error) {
			paths := registry.StringSliceArg(args, "paths")
			if len(paths) == 0 {
				paths = []string{"."}
			}
			return runGit(ctx, tc, tc.SandboxDir, append([]string{"add"}, paths...))
		},
	}
}

func commitTool() registry.Tool {
	return registry.Tool{
		Name: "git_commit", Category: "git", Destructive: registry.Destructs,
		Args: []registry.ArgDescriptor{{Name: "message", Type: registry.ArgString, Required: true}},
		Handler: func(ctx context.Context, tc registry.ToolContext, args map[string]interface{}) (interface{}, error) {
			if err := toolsupport.GuardDestructive(tc.ReadOnlyMode); err != nil {
				return nil, err
			}
			return runGit(ctx, tc, tc.SandboxDir, []string{"commit", "-m", registry.StringArg(args, "message", "")})
		},
	}
}

func pushTool() registry.Tool {
	return registry.Tool{
		Name: "git_push", Category: "git", Destructive: registry.Destructs,
		Args: []registry.ArgDescriptor{
			{Name: "remote", Type: registry.ArgString, Default: "origin"},
			{Name: "branch", Type: registry.ArgString},
		},
		Handler: func(ctx context.Context, tc registry.ToolContext, args map[string]interface{}) (interface{}, error) {
			if err := toolsupport.GuardDestructive(tc.ReadOnlyMode); err != nil {
				return nil, err
			}
			gitArgs := []string{"push", registry.StringArg(args, "remote", "origin")}
			if b := registry.StringArg(args, "branch", ""); b != "" {
				gitArgs = append(gitArgs, b)
			}
			return runGit(ctx, tc, tc.SandboxDir, gitArgs)
		},
	}
}

func pullTool() registry.Tool {
	return registry.Tool{
		Name: "git_pull", Category: "git", Destructive: registry.Destructs,
		Args: []registry.ArgDescriptor{{Name: "remote", Type: registry.ArgString, Default: "origin"}},
		Handler: func(ctx context.Context, tc registry.ToolContext, args map[string]interface{}) (interface{}, error) {
			if err := toolsupport.GuardDestructive(tc.ReadOnlyMode); err != nil {
				return nil, err
			}
			return runGit(ctx, tc, tc.SandboxDir, []string{"pull", registry.StringArg(args, "remote", "origin")})
		},
	}
}

func checkoutTool() registry.Tool {
	return registry.Tool{
		Name: "git_checkout", Category: "git", Destructive: registry.Destructs,
		Args: []registry.ArgDescriptor{{Name: "ref", Type: registry.ArgString, Required: true}},
		Handler: func(ctx context.Context, tc registry.ToolContext, args map[string]interface{}) (interface{}, error) {
			if err := toolsupport.GuardDestructive(tc.ReadOnlyMode); err != nil {
				return nil, err
			}
			return runGit(ctx, tc, tc.SandboxDir, []string{"checkout", registry.StringArg(args, "ref", "")})
		},
	}
}

func createBranchTool() registry.Tool {
	return registry.Tool{
		Name: "git_create_branch", Category: "git", Destructive: registry.ReadOnly,
		Args: []registry.ArgDescriptor{{Name: "name", Type: registry.ArgString, Required: true}},
		Handler: func(ctx context.Context, tc registry.ToolContext, args map[string]interface{}) (interface{}, error) {
			return runGit(ctx, tc, tc.SandboxDir, []string{"branch", registry.StringArg(args, "name", "")})
		},
	}
}

func stashTool() registry.Tool {
	return registry.Tool{
		Name: "git_stash", Category: "git", Destructive: registry.Destructs,
		Args: []registry.ArgDescriptor{{Name: "action", Type: registry.ArgString, Default: "push"}},
		Handler: func(ctx context.Context, tc registry.ToolContext, args map[string]interface{}) (interface{}, error) {
			if err := toolsupport.GuardDestructive(tc.ReadOnlyMode); err != nil {
				return nil, err
			}
			return runGit(ctx, tc, tc.SandboxDir, []string{"stash", registry.StringArg(args, "action", "push")})
		},
	}
}

func cloneTool() registry.Tool {
	return registry.Tool{
		Name: "git_clone", Category: "git", Destructive: registry.Destructs,
		Args: []registry.ArgDescriptor{
			{Name: "url", Type: registry.ArgString, Required: true},
			{Name: "destination", Type: registry.ArgString, Required: true},
		},
		Handler: func(ctx context.Context, tc registry.ToolContext, args map[string]interface{}) (interface{}, error) {
			dst, err := toolsupport.GuardPath(tc.SandboxDir, tc.ReadOnlyMode, registry.StringArg(args, "destination", ""), true)
			if err != nil {
				return nil, err
			}
			return runGit(ctx, tc, tc.SandboxDir, []string{"clone", registry.StringArg(args, "url", ""), dst})
		},
	}
}

func worktreeAddTool() registry.Tool {
	return registry.Tool{
		Name: "git_worktree_add", Category: "git", Destructive: registry.Destructs,
		Args: []registry.ArgDescriptor{
			{Name: "path", Type: registry.ArgString, Required: true},
			{Name: "branch", Type: registry.ArgString, Required: true},
		},
		Handler: func(ctx context.Context, tc registry.ToolContext, args map[string]interface{}) (interface{}, error) {
			dst, err := toolsupport.GuardPath(tc.SandboxDir, tc.ReadOnlyMode, registry.StringArg(args, "path", ""), true)
			if err != nil {
				return nil, err
			}
			return runGit(ctx, tc, tc.SandboxDir, []string{"worktree", "add", dst, registry.StringArg(args, "branch", "")})
		},
	}
}
