// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package registry

import "fmt"

// gated categories check an enable flag against CategoryEnables; the
// rest always load. Kept as a set rather than hand-checked per entry so
// adding a gated category later is a one-line change.
var gatedCategories = map[string]struct{}{
	"filesystem": {},
	"shell":      {},
	"git":        {},
	"network":    {},
}

// CategoryFactory produces every tool belonging to one category. Kept
// as a plain function value — no global map populated by import side
// effects (spec.md §9).
type CategoryFactory func() []Tool

// entry pairs a category name with its factory, in the fixed insertion
// order RegisterAll declares.
type entry struct {
	category string
	factory  CategoryFactory
}

// Registry holds the subset of tools enabled by one set of category
// enable flags.
type Registry struct {
	tools map[string]Tool
	order []string
}

// RegisterAll returns the category entries in a fixed order: filesystem,
// shell, git, network, processes, packages, system, browser. Call
// Build with this list and an enable set to get the live tool map for a
// connection.
func RegisterAll(factories map[string]CategoryFactory) []entry {
	order := []string{"filesystem", "shell", "git", "network", "processes", "packages", "system", "browser"}
	entries := make([]entry, 0, len(order))
	for _, cat := range order {
		f, ok := factories[cat]
		if !ok {
			continue
		}
		entries = append(entries, entry{category: cat, factory: f})
	}
	return entries
}

// Enabled reports whether category's enable flag is set, consulting
// enabledFlags only for the four gated categories; every other category
// always loads.
func Enabled(category string, enabledFlags map[string]bool) bool {
	if _, gated := gatedCategories[category]; !gated {
		return true
	}
	return enabledFlags[category]
}

// Build iterates entries in order, skipping categories whose enable
// flag (for the four gated categories) is false, and assembles the
// enabled tool map. A duplicate tool name across any two categories is
// a programming error and causes Build to fail loudly rather than
// silently overwrite.
func Build(entries []entry, enabledFlags map[string]bool) (*Registry, error) {
	r := &Registry{tools: make(map[string]Tool)}
	for _, e := range entries {
		if !Enabled(e.category, enabledFlags) {
			continue
		}
		for _, tool := range e.factory() {
			if _, dup := r.tools[tool.Name]; dup {
				return nil, fmt.Errorf("registry: duplicate tool name %q from category %q", tool.Name, e.category)
			}
			r.tools[tool.Name] = tool
			r.order = append(r.order, tool.Name)
		}
	}
	return r, nil
}

// Lookup returns the tool named name, if enabled in this registry.
func (r *Registry) Lookup(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Capabilities returns every enabled tool name, in registration order —
// the slice sent in the register frame's capabilities field.
func (r *Registry) Capabilities() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
