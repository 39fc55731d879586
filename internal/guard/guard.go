// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package guard holds the pure predicates every tool consults before
// touching the filesystem or spawning a process: sandbox confinement,
// shell command allowlisting, and output truncation.
package guard

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// DefaultOutputCap is the byte cap applied to tool stdout/stderr unless a
// tool specifies otherwise.
const DefaultOutputCap = 50 * 1024

var executableExtensions = []string{".exe", ".cmd", ".bat", ".sh", ".ps1"}

// IsWithinDir reports whether p, once resolved to absolute canonical
// form, is root itself or a descendant of root. Both paths are cleaned
// and made absolute before comparison; this does not resolve symlinks.
func IsWithinDir(p, root string) bool {
	absRoot, err := filepath.Abs(filepath.Clean(root))
	if err != nil {
		return false
	}
	absP, err := filepath.Abs(filepath.Clean(p))
	if err != nil {
		return false
	}
	if absP == absRoot {
		return true
	}
	return strings.HasPrefix(absP, absRoot+string(filepath.Separator))
}

// ResolveInSandbox resolves p relative to sandboxDir (absolute p is kept
// as-is) and reports whether the result stays within sandboxDir.
func ResolveInSandbox(p, sandboxDir string) (resolved string, ok bool) {
	if filepath.IsAbs(p) {
		resolved = filepath.Clean(p)
	} else {
		resolved = filepath.Clean(filepath.Join(sandboxDir, p))
	}
	return resolved, IsWithinDir(resolved, sandboxDir)
}

// IsCommandAllowed reports whether cmd's base binary name appears in
// allow. An empty allowlist means unrestricted.
func IsCommandAllowed(cmd string, allow []string) bool {
	if len(allow) == 0 {
		return true
	}
	name := normalizeBinaryName(cmd)
	for _, a := range allow {
		if normalizeBinaryName(a) == name {
			return true
		}
	}
	return false
}

func normalizeBinaryName(cmd string) string {
	fields := strings.Fields(cmd)
	token := cmd
	if len(fields) > 0 {
		token = fields[0]
	}
	base := filepath.Base(token)
	lower := strings.ToLower(base)
	for _, ext := range executableExtensions {
		if strings.HasSuffix(lower, ext) {
			lower = strings.TrimSuffix(lower, ext)
			break
		}
	}
	return lower
}

// TruncateOutput returns s unchanged if it's at most capBytes; otherwise
// it returns the first capBytes of s (never splitting a UTF-8 rune in
// the middle) plus an appended marker noting the original size.
func TruncateOutput(s string, capBytes int) string {
	if len(s) <= capBytes {
		return s
	}
	cut := capBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return fmt.Sprintf("%s\n[truncated: %d of %d bytes shown]", s[:cut], cut, len(s))
}
