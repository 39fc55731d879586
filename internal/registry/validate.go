// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package registry

import (
	"fmt"

	"github.com/smith-agent/smith/internal/toolerr"
)

// ValidateArgs checks raw against descriptors: every required field must
// be present and every present field must match its declared type.
// Missing optional fields are filled from their Default. This is the one
// shared routine every tool's schema runs through — see spec.md §9's
// directive to re-express JSON-schema validation as declarative
// descriptors instead of a validation library.
func ValidateArgs(descriptors []ArgDescriptor, raw map[string]interface{}) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(descriptors))
	for _, d := range descriptors {
		v, present := raw[d.Name]
		if !present {
			if d.Required {
				return nil, fmt.Errorf("%w: missing required argument %q", toolerr.ErrBadArguments, d.Name)
			}
			if d.Default != nil {
				out[d.Name] = d.Default
			}
			continue
		}
		if err := checkType(d, v); err != nil {
			return nil, err
		}
		out[d.Name] = v
	}
	return out, nil
}

func checkType(d ArgDescriptor, v interface{}) error {
	ok := false
	switch d.Type {
	case ArgString:
		_, ok = v.(string)
	case ArgNumber:
		switch v.(type) {
		case float64, float32, int, int64:
			ok = true
		}
	case ArgBool:
		_, ok = v.(bool)
	case ArgObject:
		_, ok = v.(map[string]interface{})
	case ArgArray:
		_, ok = v.([]interface{})
	default:
		return fmt.Errorf("%w: argument %q has unknown declared type %q", toolerr.ErrInternal, d.Name, d.Type)
	}
	if !ok {
		return fmt.Errorf("%w: argument %q must be of type %s", toolerr.ErrBadArguments, d.Name, d.Type)
	}
	return nil
}

// StringArg, IntArg, BoolArg, and friends pull an already-validated
// value out of the map with the right Go type, for handlers that don't
// want to repeat type assertions.

func StringArg(args map[string]interface{}, name, fallback string) string {
	if v, ok := args[name].(string); ok {
		return v
	}
	return fallback
}

func IntArg(args map[string]interface{}, name string, fallback int) int {
	switch v := args[name].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	}
	return fallback
}

func BoolArg(args map[string]interface{}, name string, fallback bool) bool {
	if v, ok := args[name].(bool); ok {
		return v
	}
	return fallback
}

func ArrayArg(args map[string]interface{}, name string) []interface{} {
	if v, ok := args[name].([]interface{}); ok {
		return v
	}
	return nil
}

func StringSliceArg(args map[string]interface{}, name string) []string {
	raw := ArrayArg(args, name)
	if raw == nil {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func ObjectArg(args map[string]interface{}, name string) map[string]interface{} {
	if v, ok := args[name].(map[string]interface{}); ok {
		return v
	}
	return nil
}
