// Package sqlgen assembles executable Oracle SQL/PLSQL artifacts and tiered
// action plans whose text provably varies with the input signals
// (spec.md §4.7). Nothing in this package stores an artifact body as a
// constant: every SQL string returned here is built at call time from an
// ordered token list plus the live signal values.
package sqlgen

import (
	"fmt"

	"github.com/dbaworks/awr-advisor/internal/awrmodel"
)

// Fingerprint renders the signal fingerprint embedded verbatim as a comment
// in every generated artifact (spec.md §4.7, Glossary).
func Fingerprint(s awrmodel.NormalizedSignals) string {
	return fmt.Sprintf("exec=%d|avgtime=%.4f|cpu=%.1f|io=%.1f",
		int64(s.Executions), s.AvgExecTime, s.CPUPct, s.IOWaitPct)
}

// TaskSuffix renders the signal-derived suffix appended to advisor PL/SQL
// task names so tasks are unique per signal profile.
func TaskSuffix(s awrmodel.NormalizedSignals) string {
	return fmt.Sprintf("%d_%dio_%dcpu", int64(s.TotalElapsed), int64(s.IOWaitPct), int64(s.CPUPct))
}

// AdvisorTimeLimit returns the advisor task time budget in seconds per
// spec.md §4.7's tiering.
func AdvisorTimeLimit(s awrmodel.NormalizedSignals) int {
	switch {
	case s.TotalElapsed > 500 || s.IOWaitPct > 90:
		return 600
	case s.TotalElapsed > 100 || s.IOWaitPct > 70:
		return 300
	case s.AvgExecTime > 10:
		return 180
	default:
		return 60
	}
}

// AnalysisScope picks the SQL Access Advisor analysis scope for IO-bound
// SQL from the io_wait_pct/executions bucket.
func AnalysisScope(s awrmodel.NormalizedSignals) string {
	switch {
	case s.IOWaitPct > 90 && s.Executions < 10:
		return "INDEX_ONLY"
	case s.IOWaitPct > 70:
		return "PARTITION_ONLY"
	case s.CPUPct > 50:
		return "COMPREHENSIVE"
	default:
		return "FULL"
	}
}

// WorkloadScope picks the SQL Access Advisor workload scope for batch SQL
// from the io_wait_pct bucket (spec.md §4.7 "LIMITED / INDEX-focused / FULL").
func WorkloadScope(s awrmodel.NormalizedSignals) string {
	switch {
	case s.IOWaitPct > 90:
		return "COMPREHENSIVE"
	case s.IOWaitPct > 60:
		return "STANDARD"
	default:
		return "LIMITED"
	}
}
