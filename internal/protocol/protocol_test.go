// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInbound_Task(t *testing.T) {
	raw := []byte(`{"type":"task","id":"a","payload":{"tool":"read_file","args":{"file_path":"hello.txt"}}}`)

	msg, typ, err := ParseInbound(raw)
	require.NoError(t, err)
	assert.Equal(t, TypeTask, typ)

	task, ok := msg.(Task)
	require.True(t, ok)
	assert.Equal(t, "a", task.ID)
	assert.Equal(t, "read_file", task.Payload.Tool)
	assert.Equal(t, "hello.txt", task.Payload.Args["file_path"])
}

func TestParseInbound_Ping(t *testing.T) {
	raw := []byte(`{"type":"ping","timestamp":1700000000}`)

	msg, typ, err := ParseInbound(raw)
	require.NoError(t, err)
	assert.Equal(t, TypePing, typ)

	ping, ok := msg.(Ping)
	require.True(t, ok)
	assert.Equal(t, float64(1700000000), ping.Timestamp)
}

func TestParseInbound_ConfigQuery(t *testing.T) {
	raw := []byte(`{"type":"config_query"}`)

	msg, typ, err := ParseInbound(raw)
	require.NoError(t, err)
	assert.Equal(t, TypeConfigQuery, typ)
	_, ok := msg.(ConfigQuery)
	assert.True(t, ok)
}

func TestParseInbound_UnknownType(t *testing.T) {
	_, typ, err := ParseInbound([]byte(`{"type":"bogus"}`))
	assert.Error(t, err)
	assert.Equal(t, "bogus", typ)
}

func TestParseInbound_Malformed(t *testing.T) {
	_, _, err := ParseInbound([]byte(`not json`))
	assert.Error(t, err)
}

func TestParseInbound_IgnoresUnknownFields(t *testing.T) {
	raw := []byte(`{"type":"task","id":"a","payload":{"tool":"x","args":{}},"extra":"ignored"}`)
	msg, _, err := ParseInbound(raw)
	require.NoError(t, err)
	task := msg.(Task)
	assert.Equal(t, "a", task.ID)
}

func TestNewRegister(t *testing.T) {
	reg := NewRegister("smith-1", []string{"read_file", "run_command"})
	assert.Equal(t, TypeRegister, reg.Type)
	assert.Equal(t, "smith-1", reg.Name)
	assert.Equal(t, CurrentProtocolVersion, reg.ProtocolVersion)

	b, err := json.Marshal(reg)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"protocol_version":1`)
}

func TestNewTaskProgress(t *testing.T) {
	p := NewTaskProgress("a")
	assert.Equal(t, TypeTaskProgress, p.Type)
	assert.Equal(t, "a", p.ID)
	assert.Equal(t, 0, p.Progress.Percent)
}

func TestNewTaskResult_Success(t *testing.T) {
	r := NewTaskResult("a", Result{Success: true, Data: "hi", DurationMS: 3})
	assert.Equal(t, TypeTaskResult, r.Type)
	assert.True(t, r.Result.Success)
	assert.Empty(t, r.Result.Error)
}

func TestNewTaskResult_Failure(t *testing.T) {
	r := NewTaskResult("b", Result{Success: false, Error: "outside the sandbox", DurationMS: 0})
	assert.Equal(t, TypeTaskResult, r.Type)
	assert.False(t, r.Result.Success)
	assert.Contains(t, r.Result.Error, "outside the sandbox")

	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.NotContains(t, string(b), `"data"`)
}

func TestNewConfigReport(t *testing.T) {
	r := NewConfigReport(Devkit{
		SandboxDir:        "/w",
		ReadOnlyMode:      false,
		EnabledCategories: []string{"filesystem", "shell"},
	})
	assert.Equal(t, TypeConfigReport, r.Type)
	assert.Equal(t, "/w", r.Devkit.SandboxDir)
	assert.Len(t, r.Devkit.EnabledCategories, 2)
}

func TestNewPong(t *testing.T) {
	p := NewPong(map[string]interface{}{"uptime_s": 42})
	assert.Equal(t, TypePong, p.Type)
	assert.NotNil(t, p.Stats)
}
