// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSampler(t *testing.T) {
	s, err := NewSampler()
	require.NoError(t, err)
	assert.NotNil(t, s)
}

func TestSnapshot_PopulatesAllFields(t *testing.T) {
	s, err := NewSampler()
	require.NoError(t, err)

	snap, err := s.Snapshot()
	require.NoError(t, err)
	assert.NotEmpty(t, snap.Hostname)
	assert.Equal(t, "linux", snap.OS)
	assert.GreaterOrEqual(t, snap.CPUPercent, 0.0)
	assert.LessOrEqual(t, snap.CPUPercent, 100.0)
	assert.Greater(t, snap.MemoryTotalMB, 0.0)
	assert.GreaterOrEqual(t, snap.UptimeSeconds, int64(0))
}

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 12.0, roundTo(12.345, 0))
	assert.Equal(t, 12.3, roundTo(12.345, 1))
}
