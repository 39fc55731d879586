// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stats samples host resource usage for Smith's heartbeat
// (pong) responses: CPU percent, memory, hostname, and uptime, read
// from /proc via prometheus/procfs.
package stats

import (
	"fmt"
	"os"
	"time"

	"github.com/prometheus/procfs"
)

// Snapshot is the data reported in a pong's stats field.
type Snapshot struct {
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryUsedMB  float64 `json:"memory_used_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	OS            string  `json:"os"`
	Hostname      string  `json:"hostname"`
	UptimeSeconds int64   `json:"uptime_seconds"`
}

// Sampler reads aggregated tick counters from /proc/stat on each call.
type Sampler struct {
	fs        procfs.FS
	startedAt time.Time
}

// NewSampler opens /proc and returns a Sampler ready to take
// snapshots.
func NewSampler() (*Sampler, error) {
	fs, err := procfs.NewDefaultFS()
	if err != nil {
		return nil, fmt.Errorf("failed to open /proc: %w", err)
	}
	return &Sampler{fs: fs, startedAt: time.Now()}, nil
}

// Snapshot samples current CPU, memory, and host stats.
func (s *Sampler) Snapshot() (Snapshot, error) {
	hostname, _ := os.Hostname()
	snap := Snapshot{
		OS:            "linux",
		Hostname:      hostname,
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
	}

	cpuPercent, err := s.cpuPercent()
	if err != nil {
		return Snapshot{}, err
	}
	snap.CPUPercent = cpuPercent

	memUsedMB, memTotalMB, err := s.memoryMB()
	if err != nil {
		return Snapshot{}, err
	}
	snap.MemoryUsedMB = memUsedMB
	snap.MemoryTotalMB = memTotalMB

	return snap, nil
}

// cpuPercent computes round((total_ticks-idle_ticks)/total_ticks*100)
// from a single, instantaneous /proc/stat read — no delta between
// calls is taken.
func (s *Sampler) cpuPercent() (float64, error) {
	stat, err := s.fs.Stat()
	if err != nil {
		return 0, fmt.Errorf("failed to read /proc/stat: %w", err)
	}
	cpu := stat.CPUTotal
	idleTicks := cpu.Idle + cpu.Iowait
	totalTicks := cpu.User + cpu.Nice + cpu.System + cpu.Idle + cpu.Iowait + cpu.IRQ + cpu.SoftIRQ + cpu.Steal

	if totalTicks <= 0 {
		return 0, nil
	}
	return roundTo((totalTicks-idleTicks)/totalTicks*100, 0), nil
}

func (s *Sampler) memoryMB() (usedMB, totalMB float64, err error) {
	meminfo, err := s.fs.Meminfo()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read /proc/meminfo: %w", err)
	}
	totalKB := valueOrZero(meminfo.MemTotal)
	availKB := valueOrZero(meminfo.MemAvailable)
	usedKB := totalKB - availKB
	return usedKB / 1024, totalKB / 1024, nil
}

func valueOrZero(v *uint64) float64 {
	if v == nil {
		return 0
	}
	return float64(*v)
}

func roundTo(v float64, places int) float64 {
	mult := 1.0
	for i := 0; i < places; i++ {
		mult *= 10
	}
	return float64(int64(v*mult+0.5)) / mult
}
