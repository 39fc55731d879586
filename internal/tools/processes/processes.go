// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package processes implements the processes tool category: list, get,
// kill, system_info, and env_read. Process enumeration is read from
// /proc via prometheus/procfs, the same library internal/stats uses for
// heartbeat sampling.
package processes

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"syscall"

	"github.com/prometheus/procfs"

	"github.com/smith-agent/smith/internal/registry"
	"github.com/smith-agent/smith/internal/toolerr"
)

var sensitiveKeyParts = []string{"key", "token", "secret", "password"}

// Factory returns the processes category's tools.
func Factory() []registry.Tool {
	return []registry.Tool{
		listProcessesTool(), getProcessTool(), killProcessTool(), systemInfoTool(), envReadTool(),
	}
}

// ProcessInfo describes one running process.
type ProcessInfo struct {
	PID     int    `json:"pid"`
	Command string `json:"command"`
}

func listProcessesTool() registry.Tool {
	return registry.Tool{
		Name:     "list_processes",
		Category: "processes",
		Destructive: registry.ReadOnly,
		Handler: func(ctx context.Context, tc registry.ToolContext, args map[string]interface{}) (interface{}, error) {
			procs, err := procfs.AllProcs()
			if err != nil {
				return nil, fmt.Errorf("%w: %s", toolerr.ErrInternal, err)
			}
			out := make([]ProcessInfo, 0, len(procs))
			for _, p := range procs {
				comm, _ := p.Comm()
				out = append(out, ProcessInfo{PID: p.PID, Command: comm})
			}
			return out, nil
		},
	}
}

func getProcessTool() registry.Tool {
	return registry.Tool{
		Name:     "get_process",
		Category: "processes",
		Args:     []registry.ArgDescriptor{{Name: "pid", Type: registry.ArgNumber, Required: true}},
		Destructive: registry.ReadOnly,
		Handler: func(ctx context.Context, tc registry.ToolContext, args map[string]interface{}) (interface{}, error) {
			pid := registry.IntArg(args, "pid", 0)
			p, err := procfs.NewProc(pid)
			if err != nil {
				return nil, fmt.Errorf("%w: process %d not found: %s", toolerr.ErrInternal, pid, err)
			}
			comm, _ := p.Comm()
			stat, err := p.Stat()
			if err != nil {
				return nil, fmt.Errorf("%w: %s", toolerr.ErrInternal, err)
			}
			return map[string]interface{}{
				"pid":        pid,
				"command":    comm,
				"state":      stat.State,
				"rss_bytes":  stat.ResidentMemory(),
				"start_time": stat.Starttime,
			}, nil
		},
	}
}

func killProcessTool() registry.Tool {
	return registry.Tool{
		Name:     "kill_process",
		Category: "processes",
		Args: []registry.ArgDescriptor{
			{Name: "pid", Type: registry.ArgNumber, Required: true},
			{Name: "force", Type: registry.ArgBool, Default: false},
		},
		Destructive: registry.Destructs,
		Handler: func(ctx context.Context, tc registry.ToolContext, args map[string]interface{}) (interface{}, error) {
			pid := registry.IntArg(args, "pid", 0)
			proc, err := os.FindProcess(pid)
			if err != nil {
				return nil, fmt.Errorf("%w: %s", toolerr.ErrInternal, err)
			}
			sig := syscall.SIGTERM
			if registry.BoolArg(args, "force", false) {
				sig = syscall.SIGKILL
			}
			if err := proc.Signal(sig); err != nil {
				return nil, fmt.Errorf("%w: %s", toolerr.ErrInternal, err)
			}
			return map[string]interface{}{"pid": pid, "signal": sig.String()}, nil
		},
	}
}

func systemInfoTool() registry.Tool {
	return registry.Tool{
		Name:     "system_info",
		Category: "processes",
		Destructive: registry.ReadOnly,
		Handler: func(ctx context.Context, tc registry.ToolContext, args map[string]interface{}) (interface{}, error) {
			hostname, _ := os.Hostname()
			return map[string]interface{}{
				"os":        runtime.GOOS,
				"arch":      runtime.GOARCH,
				"hostname":  hostname,
				"num_cpu":   runtime.NumCPU(),
				"go_version": runtime.Version(),
			}, nil
		},
	}
}

func envReadTool() registry.Tool {
	return registry.Tool{
		Name:     "env_read",
		Category: "processes",
		Args: []registry.ArgDescriptor{
			{Name: "all", Type: registry.ArgBool, Default: false},
		},
		Destructive: registry.ReadOnly,
		Handler: func(ctx context.Context, tc registry.ToolContext, args map[string]interface{}) (interface{}, error) {
			showAll := registry.BoolArg(args, "all", false)
			out := make(map[string]string)
			for _, kv := range os.Environ() {
				parts := strings.SplitN(kv, "=", 2)
				if len(parts) != 2 {
					continue
				}
				if !showAll && isSensitiveKey(parts[0]) {
					continue
				}
				out[parts[0]] = parts[1]
			}
			return out, nil
		},
	}
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, part := range sensitiveKeyParts {
		if strings.Contains(lower, part) {
			return true
		}
	}
	return false
}
