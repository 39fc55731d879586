// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package filesystem implements the filesystem tool category: read,
// write, append, delete, move, copy, list, mkdir, stat, grep_files, and
// glob_find.
package filesystem

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/smith-agent/smith/internal/guard"
	"github.com/smith-agent/smith/internal/registry"
	"github.com/smith-agent/smith/internal/toolerr"
	"github.com/smith-agent/smith/internal/toolsupport"
)

const defaultMaxGrepResults = 100

// Factory returns every filesystem tool, in a fixed order.
func Factory() []registry.Tool {
	return []registry.Tool{
		readFileTool(),
		writeFileTool(),
		appendFileTool(),
		deleteTool(),
		moveTool(),
		copyTool(),
		listTool(),
		mkdirTool(),
		statTool(),
		grepFilesTool(),
		globFindTool(),
	}
}

// FileEntry describes one directory entry returned by list.
type FileEntry struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	IsDir bool   `json:"is_dir"`
	Size  int64  `json:"size"`
}

// GrepMatch is one line matched by grep_files.
type GrepMatch struct {
	File  string `json:"file"`
	Line  int    `json:"line"`
	Match string `json:"match"`
}

// StatResult is the data returned by stat.
type StatResult struct {
	Path    string `json:"path"`
	Size    int64  `json:"size"`
	IsDir   bool   `json:"is_dir"`
	Mode    string `json:"mode"`
	ModTime string `json:"mod_time"`
}

func readFileTool() registry.Tool {
	return registry.Tool{
		Name:     "read_file",
		Category: "filesystem",
		Args: []registry.ArgDescriptor{
			{Name: "file_path", Type: registry.ArgString, Required: true},
			{Name: "start_line", Type: registry.ArgNumber},
			{Name: "end_line", Type: registry.ArgNumber},
		},
		Destructive: registry.ReadOnly,
		Handler: func(ctx context.Context, tc registry.ToolContext, args map[string]interface{}) (interface{}, error) {
			path, err := toolsupport.GuardPath(tc.SandboxDir, tc.ReadOnlyMode, registry.StringArg(args, "file_path", ""), false)
			if err != nil {
				return nil, err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("%w: %s", toolerr.ErrInternal, err)
			}
			content := string(data)
			if _, hasStart := args["start_line"]; hasStart {
				content = sliceLines(content, registry.IntArg(args, "start_line", 1), registry.IntArg(args, "end_line", 0))
			}
			return guard.TruncateOutput(content, guard.DefaultOutputCap), nil
		},
	}
}

func sliceLines(content string, start, end int) string {
	lines := strings.Split(content, "\n")
	if start < 1 {
		start = 1
	}
	if end <= 0 || end > len(lines) {
		end = len(lines)
	}
	if start > len(lines) {
		return ""
	}
	return strings.Join(lines[start-1:end], "\n")
}

func writeFileTool() registry.Tool {
	return registry.Tool{
		Name:     "write_file",
		Category: "filesystem",
		Args: []registry.ArgDescriptor{
			{Name: "file_path", Type: registry.ArgString, Required: true},
			{Name: "content", Type: registry.ArgString, Required: true},
		},
		Destructive: registry.Destructs,
		Handler: func(ctx context.Context, tc registry.ToolContext, args map[string]interface{}) (interface{}, error) {
			path, err := toolsupport.GuardPath(tc.SandboxDir, tc.ReadOnlyMode, registry.StringArg(args, "file_path", ""), true)
			if err != nil {
				return nil, err
			}
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return nil, fmt.Errorf("%w: %s", toolerr.ErrInternal, err)
			}
			content := registry.StringArg(args, "content", "")
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				return nil, fmt.Errorf("%w: %s", toolerr.ErrInternal, err)
			}
			return map[string]interface{}{"bytes_written": len(content)}, nil
		},
	}
}

func appendFileTool() registry.Tool {
	return registry.Tool{
		Name:     "append_file",
		Category: "filesystem",
		Args: []registry.ArgDescriptor{
			{Name: "file_path", Type: registry.ArgString, Required: true},
			{Name: "content", Type: registry.ArgString, Required: true},
		},
		Destructive: registry.Destructs,
		Handler: func(ctx context.Context, tc registry.ToolContext, args map[string]interface{}) (interface{}, error) {
			path, err := toolsupport.GuardPath(tc.SandboxDir, tc.ReadOnlyMode, registry.StringArg(args, "file_path", ""), true)
			if err != nil {
				return nil, err
			}
			f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				return nil, fmt.Errorf("%w: %s", toolerr.ErrInternal, err)
			}
			defer f.Close()
			content := registry.StringArg(args, "content", "")
			if _, err := f.WriteString(content); err != nil {
				return nil, fmt.Errorf("%w: %s", toolerr.ErrInternal, err)
			}
			return map[string]interface{}{"bytes_appended": len(content)}, nil
		},
	}
}

func deleteTool() registry.Tool {
	return registry.Tool{
		Name:     "delete_file",
		Category: "filesystem",
		Args: []registry.ArgDescriptor{
			{Name: "file_path", Type: registry.ArgString, Required: true},
			{Name: "recursive", Type: registry.ArgBool, Default: false},
		},
		Destructive: registry.Destructs,
		Handler: func(ctx context.Context, tc registry.ToolContext, args map[string]interface{}) (interface{}, error) {
			path, err := toolsupport.GuardPath(tc.SandboxDir, tc.ReadOnlyMode, registry.StringArg(args, "file_path", ""), true)
			if err != nil {
				return nil, err
			}
			if registry.BoolArg(args, "recursive", false) {
				err = os.RemoveAll(path)
			} else {
				err = os.Remove(path)
			}
			if err != nil {
				return nil, fmt.Errorf("%w: %s", toolerr.ErrInternal, err)
			}
			return map[string]interface{}{"deleted": path}, nil
		},
	}
}

func moveTool() registry.Tool {
	return registry.Tool{
		Name:     "move_file",
		Category: "filesystem",
		Args: []registry.ArgDescriptor{
			{Name: "source", Type: registry.ArgString, Required: true},
			{Name: "destination", Type: registry.ArgString, Required: true},
		},
		Destructive: registry.Destructs,
		Handler: func(ctx context.Context, tc registry.ToolContext, args map[string]interface{}) (interface{}, error) {
			src, err := toolsupport.GuardPath(tc.SandboxDir, tc.ReadOnlyMode, registry.StringArg(args, "source", ""), true)
			if err != nil {
				return nil, err
			}
			dst, err := toolsupport.GuardPath(tc.SandboxDir, tc.ReadOnlyMode, registry.StringArg(args, "destination", ""), true)
			if err != nil {
				return nil, err
			}
			if err := os.Rename(src, dst); err != nil {
				return nil, fmt.Errorf("%w: %s", toolerr.ErrInternal, err)
			}
			return map[string]interface{}{"moved_to": dst}, nil
		},
	}
}

// copyTool is not in spec.md §4.4's destructive list (write, append,
// delete, move, mkdir, ...); a sandbox-root copy writes a new file but
// is treated as the spec's text literally specifies, so read-only mode
// does not block it.
func copyTool() registry.Tool {
	return registry.Tool{
		Name:     "copy_file",
		Category: "filesystem",
		Args: []registry.ArgDescriptor{
			{Name: "source", Type: registry.ArgString, Required: true},
			{Name: "destination", Type: registry.ArgString, Required: true},
		},
		Destructive: registry.ReadOnly,
		Handler: func(ctx context.Context, tc registry.ToolContext, args map[string]interface{}) (interface{}, error) {
			src, err := toolsupport.GuardPath(tc.SandboxDir, tc.ReadOnlyMode, registry.StringArg(args, "source", ""), false)
			if err != nil {
				return nil, err
			}
			dst, err := toolsupport.GuardPath(tc.SandboxDir, tc.ReadOnlyMode, registry.StringArg(args, "destination", ""), false)
			if err != nil {
				return nil, err
			}
			if err := copyFile(src, dst); err != nil {
				return nil, fmt.Errorf("%w: %s", toolerr.ErrInternal, err)
			}
			return map[string]interface{}{"copied_to": dst}, nil
		},
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, in)
	return err
}

func listTool() registry.Tool {
	return registry.Tool{
		Name:     "list_dir",
		Category: "filesystem",
		Args: []registry.ArgDescriptor{
			{Name: "dir_path", Type: registry.ArgString, Required: true},
			{Name: "recursive_depth", Type: registry.ArgNumber, Default: 1},
		},
		Destructive: registry.ReadOnly,
		Handler: func(ctx context.Context, tc registry.ToolContext, args map[string]interface{}) (interface{}, error) {
			path, err := toolsupport.GuardPath(tc.SandboxDir, tc.ReadOnlyMode, registry.StringArg(args, "dir_path", ""), false)
			if err != nil {
				return nil, err
			}
			depth := registry.IntArg(args, "recursive_depth", 1)
			var entries []FileEntry
			baseDepth := strings.Count(filepath.Clean(path), string(filepath.Separator))
			err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if p == path {
					return nil
				}
				curDepth := strings.Count(filepath.Clean(p), string(filepath.Separator)) - baseDepth
				if curDepth > depth {
					if d.IsDir() {
						return filepath.SkipDir
					}
					return nil
				}
				info, infoErr := d.Info()
				size := int64(0)
				if infoErr == nil {
					size = info.Size()
				}
				entries = append(entries, FileEntry{Name: d.Name(), Path: p, IsDir: d.IsDir(), Size: size})
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("%w: %s", toolerr.ErrInternal, err)
			}
			return entries, nil
		},
	}
}

func mkdirTool() registry.Tool {
	return registry.Tool{
		Name:     "make_dir",
		Category: "filesystem",
		Args: []registry.ArgDescriptor{
			{Name: "dir_path", Type: registry.ArgString, Required: true},
		},
		Destructive: registry.Destructs,
		Handler: func(ctx context.Context, tc registry.ToolContext, args map[string]interface{}) (interface{}, error) {
			path, err := toolsupport.GuardPath(tc.SandboxDir, tc.ReadOnlyMode, registry.StringArg(args, "dir_path", ""), true)
			if err != nil {
				return nil, err
			}
			if err := os.MkdirAll(path, 0755); err != nil {
				return nil, fmt.Errorf("%w: %s", toolerr.ErrInternal, err)
			}
			return map[string]interface{}{"created": path}, nil
		},
	}
}

func statTool() registry.Tool {
	return registry.Tool{
		Name:     "stat_file",
		Category: "filesystem",
		Args: []registry.ArgDescriptor{
			{Name: "file_path", Type: registry.ArgString, Required: true},
		},
		Destructive: registry.ReadOnly,
		Handler: func(ctx context.Context, tc registry.ToolContext, args map[string]interface{}) (interface{}, error) {
			path, err := toolsupport.GuardPath(tc.SandboxDir, tc.ReadOnlyMode, registry.StringArg(args, "file_path", ""), false)
			if err != nil {
				return nil, err
			}
			info, err := os.Stat(path)
			if err != nil {
				return nil, fmt.Errorf("%w: %s", toolerr.ErrInternal, err)
			}
			return StatResult{
				Path:    path,
				Size:    info.Size(),
				IsDir:   info.IsDir(),
				Mode:    info.Mode().String(),
				ModTime: info.ModTime().Format("2006-01-02T15:04:05Z07:00"),
			}, nil
		},
	}
}

func grepFilesTool() registry.Tool {
	return registry.Tool{
		Name:     "grep_files",
		Category: "filesystem",
		Args: []registry.ArgDescriptor{
			{Name: "dir_path", Type: registry.ArgString, Required: true},
			{Name: "pattern", Type: registry.ArgString, Required: true},
			{Name: "max_results", Type: registry.ArgNumber, Default: defaultMaxGrepResults},
		},
		Destructive: registry.ReadOnly,
		Handler: func(ctx context.Context, tc registry.ToolContext, args map[string]interface{}) (interface{}, error) {
			path, err := toolsupport.GuardPath(tc.SandboxDir, tc.ReadOnlyMode, registry.StringArg(args, "dir_path", ""), false)
			if err != nil {
				return nil, err
			}
			re, err := regexp.Compile(registry.StringArg(args, "pattern", ""))
			if err != nil {
				return nil, fmt.Errorf("%w: invalid pattern: %s", toolerr.ErrBadArguments, err)
			}
			maxResults := registry.IntArg(args, "max_results", defaultMaxGrepResults)

			var matches []GrepMatch
			walkErr := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
				if err != nil || d.IsDir() || len(matches) >= maxResults {
					if len(matches) >= maxResults {
						return filepath.SkipAll
					}
					return nil
				}
				data, rerr := os.ReadFile(p)
				if rerr != nil {
					return nil
				}
				for i, line := range strings.Split(string(data), "\n") {
					if re.MatchString(line) {
						matches = append(matches, GrepMatch{File: p, Line: i + 1, Match: line})
						if len(matches) >= maxResults {
							break
						}
					}
				}
				return nil
			})
			if walkErr != nil {
				return nil, fmt.Errorf("%w: %s", toolerr.ErrInternal, walkErr)
			}
			return matches, nil
		},
	}
}

func globFindTool() registry.Tool {
	return registry.Tool{
		Name:     "glob_find",
		Category: "filesystem",
		Args: []registry.ArgDescriptor{
			{Name: "pattern", Type: registry.ArgString, Required: true},
			{Name: "base_dir", Type: registry.ArgString, Default: "."},
		},
		Destructive: registry.ReadOnly,
		Handler: func(ctx context.Context, tc registry.ToolContext, args map[string]interface{}) (interface{}, error) {
			base, err := toolsupport.GuardPath(tc.SandboxDir, tc.ReadOnlyMode, registry.StringArg(args, "base_dir", "."), false)
			if err != nil {
				return nil, err
			}
			pattern := filepath.Join(base, registry.StringArg(args, "pattern", ""))
			matches, err := filepath.Glob(pattern)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid pattern: %s", toolerr.ErrBadArguments, err)
			}
			sort.Strings(matches)
			return matches, nil
		},
	}
}
