// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package system implements the system tool category: notify,
// clipboard_read, clipboard_write, open_url, and open_file. notify and
// open_* are OS-branched since none of the pack's examples carry a
// cross-platform abstraction for either; clipboard access goes through
// atotto/clipboard.
package system

import (
	"context"
	"fmt"
	"runtime"

	"github.com/atotto/clipboard"

	"github.com/smith-agent/smith/internal/registry"
	"github.com/smith-agent/smith/internal/shellexec"
	"github.com/smith-agent/smith/internal/toolerr"
	"github.com/smith-agent/smith/internal/toolsupport"
)

// Factory returns the system category's tools.
func Factory() []registry.Tool {
	return []registry.Tool{
		notifyTool(), clipboardReadTool(), clipboardWriteTool(), openURLTool(), openFileTool(),
	}
}

func notifyTool() registry.Tool {
	return registry.Tool{
		Name:     "notify",
		Category: "system",
		Args: []registry.ArgDescriptor{
			{Name: "title", Type: registry.ArgString, Required: true},
			{Name: "message", Type: registry.ArgString, Default: ""},
		},
		Destructive: registry.ReadOnly,
		Handler: func(ctx context.Context, tc registry.ToolContext, args map[string]interface{}) (interface{}, error) {
			title := registry.StringArg(args, "title", "")
			message := registry.StringArg(args, "message", "")

			cmd, cmdArgs, err := notifyCommand(title, message)
			if err != nil {
				return nil, err
			}
			res := shellexec.Run(ctx, cmd, cmdArgs, shellexec.Options{Timeout: tc.Timeout})
			if res.ExitCode != 0 {
				return nil, fmt.Errorf("%w: notify: %s", toolerr.ErrInternal, res.Stderr)
			}
			return map[string]interface{}{"sent": true}, nil
		},
	}
}

func notifyCommand(title, message string) (string, []string, error) {
	switch runtime.GOOS {
	case "darwin":
		script := fmt.Sprintf(`display notification %q with title %q`, message, title)
		return "osascript", []string{"-e", script}, nil
	case "linux":
		return "notify-send", []string{title, message}, nil
	case "windows":
		script := fmt.Sprintf(`[reflection.assembly]::loadwithpartialname('System.Windows.Forms'); `+
			`[System.Windows.Forms.MessageBox]::Show('%s','%s')`, message, title)
		return "powershell", []string{"-Command", script}, nil
	default:
		return "", nil, fmt.Errorf("%w: unsupported platform %q for notify", toolerr.ErrInternal, runtime.GOOS)
	}
}

func clipboardReadTool() registry.Tool {
	return registry.Tool{
		Name:     "clipboard_read",
		Category: "system",
		Destructive: registry.ReadOnly,
		Handler: func(ctx context.Context, tc registry.ToolContext, args map[string]interface{}) (interface{}, error) {
			text, err := clipboard.ReadAll()
			if err != nil {
				return nil, fmt.Errorf("%w: %s", toolerr.ErrInternal, err)
			}
			return map[string]interface{}{"text": text}, nil
		},
	}
}

func clipboardWriteTool() registry.Tool {
	return registry.Tool{
		Name:     "clipboard_write",
		Category: "system",
		Args: []registry.ArgDescriptor{
			{Name: "text", Type: registry.ArgString, Required: true},
		},
		Destructive: registry.Destructs,
		Handler: func(ctx context.Context, tc registry.ToolContext, args map[string]interface{}) (interface{}, error) {
			if err := toolsupport.GuardDestructive(tc.ReadOnlyMode); err != nil {
				return nil, err
			}
			text := registry.StringArg(args, "text", "")
			if err := clipboard.WriteAll(text); err != nil {
				return nil, fmt.Errorf("%w: %s", toolerr.ErrInternal, err)
			}
			return map[string]interface{}{"written": true}, nil
		},
	}
}

func openURLTool() registry.Tool {
	return registry.Tool{
		Name:     "open_url",
		Category: "system",
		Args: []registry.ArgDescriptor{
			{Name: "url", Type: registry.ArgString, Required: true},
		},
		Destructive: registry.ReadOnly,
		Handler: func(ctx context.Context, tc registry.ToolContext, args map[string]interface{}) (interface{}, error) {
			return openTarget(ctx, tc, registry.StringArg(args, "url", ""))
		},
	}
}

func openFileTool() registry.Tool {
	return registry.Tool{
		Name:     "open_file",
		Category: "system",
		Args: []registry.ArgDescriptor{
			{Name: "path", Type: registry.ArgString, Required: true},
		},
		Destructive: registry.ReadOnly,
		Handler: func(ctx context.Context, tc registry.ToolContext, args map[string]interface{}) (interface{}, error) {
			resolved, err := toolsupport.GuardPath(tc.SandboxDir, tc.ReadOnlyMode, registry.StringArg(args, "path", ""), false)
			if err != nil {
				return nil, err
			}
			return openTarget(ctx, tc, resolved)
		},
	}
}

func openTarget(ctx context.Context, tc registry.ToolContext, target string) (interface{}, error) {
	cmd, args, err := openCommand(target)
	if err != nil {
		return nil, err
	}
	res := shellexec.Run(ctx, cmd, args, shellexec.Options{Timeout: tc.Timeout})
	if res.ExitCode != 0 {
		return nil, fmt.Errorf("%w: open: %s", toolerr.ErrInternal, res.Stderr)
	}
	return map[string]interface{}{"opened": target}, nil
}

func openCommand(target string) (string, []string, error) {
	switch runtime.GOOS {
	case "darwin":
		return "open", []string{target}, nil
	case "linux":
		return "xdg-open", []string{target}, nil
	case "windows":
		return "cmd", []string{"/C", "start", "", target}, nil
	default:
		return "", nil, fmt.Errorf("%w: unsupported platform %q for open", toolerr.ErrInternal, runtime.GOOS)
	}
}
