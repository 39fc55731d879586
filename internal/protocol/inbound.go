// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package protocol

import (
	"encoding/json"
	"fmt"
)

// TaskPayload names the tool to invoke and the arguments to pass it.
type TaskPayload struct {
	Tool string                 `json:"tool"`
	Args map[string]interface{} `json:"args"`
}

// Task is sent by the controller to dispatch one tool invocation.
type Task struct {
	ID      string      `json:"id"`
	Payload TaskPayload `json:"payload"`
}

// Ping asks the agent to report freshly sampled system stats.
type Ping struct {
	Timestamp float64 `json:"timestamp"`
}

// ConfigQuery asks the agent to report its live configuration snapshot.
type ConfigQuery struct{}

// ParseInbound reads the type discriminator off raw and decodes it into
// the matching Go type. The second return value is the message type
// string, useful for logging malformed frames.
func ParseInbound(raw []byte) (interface{}, string, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, "", fmt.Errorf("malformed frame: %w", err)
	}

	switch env.Type {
	case TypeTask:
		var t Task
		if err := json.Unmarshal(raw, &t); err != nil {
			return nil, env.Type, fmt.Errorf("malformed task frame: %w", err)
		}
		return t, env.Type, nil
	case TypePing:
		var p Ping
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, env.Type, fmt.Errorf("malformed ping frame: %w", err)
		}
		return p, env.Type, nil
	case TypeConfigQuery:
		return ConfigQuery{}, env.Type, nil
	default:
		return nil, env.Type, fmt.Errorf("unknown frame type: %q", env.Type)
	}
}
