package app

import (
	"sync/atomic"
	"time"
)

// Metrics tracks loop and backend activity.
type Metrics struct {
	// Loop tasks
	taskCount   atomic.Uint64
	taskFailed  atomic.Uint64
	taskTotalNs atomic.Int64
	taskMaxNs   atomic.Int64

	// Backend requests
	requestCount  atomic.Uint64
	requestFailed atomic.Uint64
	requestNs     atomic.Int64

	// Console commands
	commandCount atomic.Uint64

	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// RecordTask records one loop task.
func (m *Metrics) RecordTask(duration time.Duration, err error) {
	ns := duration.Nanoseconds()
	m.taskCount.Add(1)
	m.taskTotalNs.Add(ns)
	if err != nil {
		m.taskFailed.Add(1)
	}

	for {
		old := m.taskMaxNs.Load()
		if ns <= old {
			break
		}
		if m.taskMaxNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

// RecordRequest records one backend request.
func (m *Metrics) RecordRequest(duration time.Duration, err error) {
	m.requestCount.Add(1)
	m.requestNs.Add(duration.Nanoseconds())
	if err != nil {
		m.requestFailed.Add(1)
	}
}

// RecordCommand records one console command.
func (m *Metrics) RecordCommand() {
	m.commandCount.Add(1)
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	tasks := m.taskCount.Load()
	requests := m.requestCount.Load()

	var avgTask, avgRequest time.Duration
	if tasks > 0 {
		avgTask = time.Duration(m.taskTotalNs.Load() / int64(tasks))
	}
	if requests > 0 {
		avgRequest = time.Duration(m.requestNs.Load() / int64(requests))
	}

	return MetricsSnapshot{
		Uptime:         time.Since(m.startTime),
		Tasks:          tasks,
		TasksFailed:    m.taskFailed.Load(),
		AvgTask:        avgTask,
		MaxTask:        time.Duration(m.taskMaxNs.Load()),
		Requests:       requests,
		RequestsFailed: m.requestFailed.Load(),
		AvgRequest:     avgRequest,
		Commands:       m.commandCount.Load(),
	}
}

// MetricsSnapshot is a point-in-time view of metrics.
type MetricsSnapshot struct {
	Uptime         time.Duration
	Tasks          uint64
	TasksFailed    uint64
	AvgTask        time.Duration
	MaxTask        time.Duration
	Requests       uint64
	RequestsFailed uint64
	AvgRequest     time.Duration
	Commands       uint64
}

// Timer provides a simple way to measure elapsed time.
type Timer struct {
	start time.Time
}

// StartTimer creates a new timer.
func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Elapsed returns the elapsed time since the timer started.
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}
