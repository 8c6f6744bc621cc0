package app

import (
	"sync/atomic"
	"time"
)

// Metrics tracks frame loop counters. Safe for concurrent use.
type Metrics struct {
	frames       atomic.Uint64
	frameTotalNs atomic.Int64
	frameMinNs   atomic.Int64
	frameMaxNs   atomic.Int64

	commands     atomic.Uint64
	drawFailures atomic.Uint64
	skipped      atomic.Uint64

	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	m := &Metrics{startTime: time.Now()}
	m.frameMinNs.Store(1<<63 - 1)
	return m
}

// RecordFrame records a presented frame and its duration.
func (m *Metrics) RecordFrame(d time.Duration) {
	ns := d.Nanoseconds()
	m.frames.Add(1)
	m.frameTotalNs.Add(ns)

	for {
		old := m.frameMinNs.Load()
		if ns >= old || m.frameMinNs.CompareAndSwap(old, ns) {
			break
		}
	}
	for {
		old := m.frameMaxNs.Load()
		if ns <= old || m.frameMaxNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

// RecordCommand records a drawn command.
func (m *Metrics) RecordCommand() {
	m.commands.Add(1)
}

// RecordDrawFailure records a draw_pass call that failed.
func (m *Metrics) RecordDrawFailure() {
	m.drawFailures.Add(1)
}

// RecordSkippedPlugin records a plugin package that failed to load.
func (m *Metrics) RecordSkippedPlugin() {
	m.skipped.Add(1)
}

// Snapshot returns a point-in-time copy.
func (m *Metrics) Snapshot() MetricsSnapshot {
	frames := m.frames.Load()

	var avg time.Duration
	if frames > 0 {
		avg = time.Duration(m.frameTotalNs.Load() / int64(frames))
	}
	minNs := m.frameMinNs.Load()
	if minNs == 1<<63-1 {
		minNs = 0
	}

	return MetricsSnapshot{
		Uptime:         time.Since(m.startTime),
		Frames:         frames,
		AvgFrame:       avg,
		MinFrame:       time.Duration(minNs),
		MaxFrame:       time.Duration(m.frameMaxNs.Load()),
		Commands:       m.commands.Load(),
		DrawFailures:   m.drawFailures.Load(),
		SkippedPlugins: m.skipped.Load(),
	}
}

// MetricsSnapshot is a point-in-time view of metrics.
type MetricsSnapshot struct {
	Uptime         time.Duration
	Frames         uint64
	AvgFrame       time.Duration
	MinFrame       time.Duration
	MaxFrame       time.Duration
	Commands       uint64
	DrawFailures   uint64
	SkippedPlugins uint64
}
