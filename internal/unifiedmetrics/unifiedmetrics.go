// Package unifiedmetrics is the single authoritative source of the
// workload-level totals used everywhere downstream: total elapsed time,
// total executions, CPU usage %, IO wait % (spec.md §4.3). Every other
// component reads from here instead of recomputing these from the raw
// tables, so the same numbers appear in every surface of the pipeline.
package unifiedmetrics

import (
	"strings"
	"sync"

	"github.com/dbaworks/awr-advisor/internal/awrmodel"
	"github.com/dbaworks/awr-advisor/internal/metricstore"
	"github.com/dbaworks/awr-advisor/internal/timewindow"
)

var ioWaitEventNames = []string{
	"db file sequential read",
	"db file scattered read",
	"direct path read",
	"direct path write",
	"log file sync",
	"log file parallel write",
}

// Calculator computes and memoizes UnifiedMetrics per workspace. One
// sync.Mutex guards the whole cache; computation is cheap enough that a
// single coarse lock is simpler than per-key locking and matches the
// single-process caching the metrics module assumes.
type Calculator struct {
	mu    sync.Mutex
	cache map[string]awrmodel.UnifiedMetrics
}

// NewCalculator builds an empty, ready-to-use Calculator.
func NewCalculator() *Calculator {
	return &Calculator{cache: make(map[string]awrmodel.UnifiedMetrics)}
}

// Compute returns the UnifiedMetrics for bundle, keyed by workspaceID.
// Results are cached; pass forceRefresh to recompute.
func (c *Calculator) Compute(workspaceID string, bundle *awrmodel.Bundle, forceRefresh bool) awrmodel.UnifiedMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !forceRefresh {
		if cached, ok := c.cache[workspaceID]; ok {
			return cached
		}
	}

	metrics := computeFromBundle(bundle)
	c.cache[workspaceID] = metrics
	return metrics
}

// Invalidate drops the cached entry for workspaceID, or clears the entire
// cache when workspaceID is empty.
func (c *Calculator) Invalidate(workspaceID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if workspaceID == "" {
		c.cache = make(map[string]awrmodel.UnifiedMetrics)
		return
	}
	delete(c.cache, workspaceID)
}

func computeFromBundle(bundle *awrmodel.Bundle) awrmodel.UnifiedMetrics {
	var m awrmodel.UnifiedMetrics
	if bundle == nil {
		return m
	}
	store := metricstore.New(bundle)

	if sqlStats := store.FindTable(awrmodel.TableSQLStats); sqlStats != nil {
		extractSQLStats(sqlStats, &m)
	}
	if waitEvents := store.FindTable(awrmodel.TableWaitEvents); waitEvents != nil {
		extractWaitEvents(waitEvents, &m)
	}

	if bundle.Metadata != nil {
		applyMetadata(bundle.Metadata, &m)
	}

	computeDerivedMetrics(&m)
	m.IsValid = true
	return m
}

func extractSQLStats(t *awrmodel.Table, m *awrmodel.UnifiedMetrics) {
	if v, ok := metricstore.SumColumnCandidates(t, "elapsed__time_s", "elapsed_time_s"); ok {
		m.TotalElapsedTimeS = v
	}
	if v, ok := metricstore.SumColumnCandidates(t, "executions"); ok {
		m.TotalExecutions = v
	}
	if v, ok := metricstore.SumColumnCandidates(t, "cpu_time_s"); ok {
		m.TotalCPUTimeS = v
	}
}

func extractWaitEvents(t *awrmodel.Table, m *awrmodel.UnifiedMetrics) {
	nameCol := metricstore.FindColumn(t, "event", "statistic_name")
	timeCol := metricstore.FindColumn(t, "time_s", "time_waited_s")
	if nameCol < 0 || timeCol < 0 {
		return
	}

	var dbCPU, dbTime, ioWait float64
	for _, row := range t.Rows {
		name := strings.ToLower(metricstore.Cell(row, nameCol))
		timeVal := metricstore.CoerceFloat(metricstore.Cell(row, timeCol))

		switch {
		case strings.Contains(name, "db cpu"):
			dbCPU = timeVal
		case strings.Contains(name, "db time"):
			dbTime = timeVal
		case isIOWaitEvent(name):
			ioWait += timeVal
		}
	}
	m.DBCPUTimeS = dbCPU
	m.DBTimeS = dbTime
	m.IOWaitTimeS = ioWait
}

func isIOWaitEvent(name string) bool {
	for _, ev := range ioWaitEventNames {
		if strings.Contains(name, ev) {
			return true
		}
	}
	return false
}

func applyMetadata(meta *awrmodel.SnapshotMetadata, m *awrmodel.UnifiedMetrics) {
	if meta.HasElapsedSeconds {
		m.SnapshotElapsedS = meta.ElapsedSeconds
	}
	m.CPUCores = 8
	if meta.HasCPUCores {
		m.CPUCores = meta.CPUCores
	}
	if meta.HasDBCPUSeconds {
		htmlDBCPU := meta.DBCPUSeconds
		if m.DBCPUTimeS == 0 || htmlDBCPU > m.DBCPUTimeS {
			m.DBCPUTimeS = htmlDBCPU
		}
	}
	if meta.HasInstanceCPUBusy {
		m.InstanceCPUBusyPct = meta.InstanceCPUBusyPct
	}
	if meta.HasHostCPUIdle {
		m.HostCPUIdlePct = meta.HostCPUIdlePct
	}

	window := timewindow.FromMetadata(meta)
	m.TimeWindowDisplay = window.DisplayWindow
}

// computeDerivedMetrics fills CPUPercentage/IOWaitPercentage following the
// same priority order as the metrics module: Instance CPU %Busy first,
// Host CPU (100-Idle) second, DB CPU/cores fallback last.
func computeDerivedMetrics(m *awrmodel.UnifiedMetrics) {
	switch {
	case m.InstanceCPUBusyPct != 0:
		m.CPUPercentage = clampPct(m.InstanceCPUBusyPct)
	case m.HostCPUIdlePct != 0:
		m.CPUPercentage = clampPct(100.0 - m.HostCPUIdlePct)
	case m.DBCPUTimeS > 0 && m.SnapshotElapsedS > 0:
		cores := m.CPUCores
		if cores <= 0 {
			cores = 8
		}
		m.CPUPercentage = clampPct((m.DBCPUTimeS / (m.SnapshotElapsedS * float64(cores))) * 100)
	default:
		m.CPUPercentage = 0.0
	}

	switch {
	case m.DBTimeS > 0:
		m.IOWaitPercentage = clampPctUncapped100Only((m.IOWaitTimeS / m.DBTimeS) * 100)
	case m.TotalElapsedTimeS > 0 && m.IOWaitTimeS > 0:
		m.IOWaitPercentage = clampPctUncapped100Only((m.IOWaitTimeS / m.TotalElapsedTimeS) * 100)
	default:
		m.IOWaitPercentage = 0.0
	}
}

func clampPct(v float64) float64 {
	if v > 100.0 {
		v = 100.0
	}
	if v < 0.0 {
		v = 0.0
	}
	return round1(v)
}

// clampPctUncapped100Only mirrors the Python source, which caps IO wait %
// at 100 but never floors it at 0 (a negative value here means bad input
// data, and should surface rather than be silently clamped).
func clampPctUncapped100Only(v float64) float64 {
	if v > 100.0 {
		v = 100.0
	}
	return round1(v)
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
