// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package protocol

// Register is the first frame sent on every accepted connection.
type Register struct {
	Type            string   `json:"type"`
	Name            string   `json:"name"`
	Capabilities    []string `json:"capabilities"`
	ProtocolVersion int      `json:"protocol_version"`
}

// NewRegister builds the greeting frame for name with the given enabled
// tool capabilities.
func NewRegister(name string, capabilities []string) Register {
	return Register{
		Type:            TypeRegister,
		Name:            name,
		Capabilities:    capabilities,
		ProtocolVersion: CurrentProtocolVersion,
	}
}

// Progress describes a task's in-flight state.
type Progress struct {
	Message string `json:"message"`
	Percent int    `json:"percent"`
}

// TaskProgress notifies the controller a task has started. At most one
// precedes the matching TaskResult; a task rejected as busy gets its
// TaskResult with no TaskProgress before it.
type TaskProgress struct {
	Type     string   `json:"type"`
	ID       string   `json:"id"`
	Progress Progress `json:"progress"`
}

// NewTaskProgress builds the single progress notification emitted right
// after a task is accepted for execution.
func NewTaskProgress(id string) TaskProgress {
	return TaskProgress{
		Type:     TypeTaskProgress,
		ID:       id,
		Progress: Progress{Message: "started", Percent: 0},
	}
}

// Result is the ToolResult envelope, mandatory for every tool outcome
// whether it reached a handler or failed before dispatch.
type Result struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
	DurationMS int64       `json:"duration_ms"`
}

// TaskResult carries the final outcome of a task. Exactly one is emitted
// per inbound task id, regardless of whether the task reached a handler.
type TaskResult struct {
	Type   string `json:"type"`
	ID     string `json:"id"`
	Result Result `json:"result"`
}

// NewTaskResult wraps result as the outbound frame for id.
func NewTaskResult(id string, result Result) TaskResult {
	return TaskResult{Type: TypeTaskResult, ID: id, Result: result}
}

// Pong answers a Ping with freshly sampled system stats. The concrete
// shape of stats is defined by internal/stats.Snapshot; protocol only
// needs it to marshal.
type Pong struct {
	Type  string      `json:"type"`
	Stats interface{} `json:"stats"`
}

// NewPong wraps stats as the outbound frame answering a ping.
func NewPong(stats interface{}) Pong {
	return Pong{Type: TypePong, Stats: stats}
}

// Devkit is the live configuration snapshot reported in response to a
// config_query.
type Devkit struct {
	SandboxDir        string   `json:"sandbox_dir"`
	ReadOnlyMode      bool     `json:"readonly_mode"`
	EnabledCategories []string `json:"enabled_categories"`
}

// ConfigReport answers a config_query with the agent's live config
// snapshot.
type ConfigReport struct {
	Type   string `json:"type"`
	Devkit Devkit `json:"devkit"`
}

// NewConfigReport wraps devkit as the outbound frame answering a
// config_query.
func NewConfigReport(devkit Devkit) ConfigReport {
	return ConfigReport{Type: TypeConfigReport, Devkit: devkit}
}
