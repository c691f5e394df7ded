// Package metrics is the process-wide metrics facade. Engine and CLI code
// record through the package functions; the configured Backend decides where
// the numbers go. The default backend discards everything.
package metrics

import (
	"sync"
	"time"
)

// Metric names shared by every backend.
const (
	RowsTotal           = "ecomdata_rows_total"
	CellsRepairedTotal  = "ecomdata_cells_repaired_total"
	StepDurationSeconds = "ecomdata_step_duration_seconds"
)

// Labels are metric dimensions.
type Labels map[string]string

// Backend receives measurements. Implementations must be safe for
// concurrent use.
type Backend interface {
	IncCounter(name string, delta float64, labels Labels)
	ObserveHistogram(name string, value float64, labels Labels)
	Flush() error
}

type nop struct{}

func (nop) IncCounter(string, float64, Labels)       {}
func (nop) ObserveHistogram(string, float64, Labels) {}
func (nop) Flush() error                             { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nop{}
)

// SetBackend installs b. A nil b restores the discarding backend.
func SetBackend(b Backend) {
	mu.Lock()
	defer mu.Unlock()
	if b == nil {
		b = nop{}
	}
	backend = b
}

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// IncCounter adds delta to a counter.
func IncCounter(name string, delta float64, labels Labels) {
	current().IncCounter(name, delta, labels)
}

// ObserveHistogram records one sample.
func ObserveHistogram(name string, value float64, labels Labels) {
	current().ObserveHistogram(name, value, labels)
}

// Flush asks the backend to publish what it has buffered.
func Flush() error { return current().Flush() }

// AddRows counts rows handled by an operation kind (generated, repaired, ...).
func AddRows(kind string, n int) {
	if n <= 0 {
		return
	}
	IncCounter(RowsTotal, float64(n), Labels{"kind": kind})
}

// AddRepairedCells counts cells a repair step changed.
func AddRepairedCells(step string, n int) {
	if n <= 0 {
		return
	}
	IncCounter(CellsRepairedTotal, float64(n), Labels{"step": step})
}

// ObserveStep records how long a step took and whether it failed.
func ObserveStep(step string, started time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	ObserveHistogram(StepDurationSeconds, time.Since(started).Seconds(), Labels{"step": step, "status": status})
}
