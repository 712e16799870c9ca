// Package signals projects a raw SQL row into the fixed Normalized Signals
// shape consumed by the Decision Engine and Dynamic SQL Generator
// (spec.md §4.5).
package signals

import (
	"math"
	"strings"

	"github.com/dbaworks/awr-advisor/internal/awrmodel"
)

// Row is the raw, loosely-typed input for one SQL, mirroring the dict-keyed
// rows the metric store hands back. Missing fields are simply absent keys.
type Row struct {
	SQLID        string
	Executions   float64
	HasExec      bool
	Elapsed      float64
	HasElapsed   bool
	ElapsedTime  float64
	HasElapsedTime bool
	TotalElapsed float64
	HasTotalElapsed bool
	CPU          float64
	HasCPU       bool
	CPUTime      float64
	HasCPUTime   bool
	ElapsedPerExec float64
	HasElapsedPerExec bool
	PctCPU       float64
	HasPctCPU    bool
	PctIO        float64
	HasPctIO     bool
	PctTotal     float64
	HasPctTotal  bool
	DBTimePct    float64
	HasDBTimePct bool
	SQLText      string
	HasSQLText   bool
	SQLModule    string
	HasSQLModule bool
	WaitClass    string
	HasWaitClass bool
}

// WaitEvent is the minimal wait-event context used to enrich WaitClass.
type WaitEvent struct {
	WaitClass    string
	PctOfDBTime  float64
}

// Normalize projects a raw SQL row (plus optional wait-event context) into
// a Normalized Signals value, following the field-fallback chains of
// spec.md §4.5.
func Normalize(row Row, waitEvents []WaitEvent) awrmodel.NormalizedSignals {
	sqlID := row.SQLID
	if sqlID == "" {
		sqlID = "UNKNOWN"
	}

	executions := 0.0
	if row.HasExec {
		executions = row.Executions
	}

	totalElapsed := firstNonZero(
		valOrZero(row.HasElapsed, row.Elapsed),
		valOrZero(row.HasElapsedTime, row.ElapsedTime),
		valOrZero(row.HasTotalElapsed, row.TotalElapsed),
	)

	cpuTime := firstNonZero(
		valOrZero(row.HasCPU, row.CPU),
		valOrZero(row.HasCPUTime, row.CPUTime),
	)

	var avgExecTime float64
	if executions > 0 && totalElapsed > 0 {
		avgExecTime = totalElapsed / executions
	} else if row.HasElapsedPerExec {
		avgExecTime = row.ElapsedPerExec
	}

	// Resolution of spec.md §9(b): the row-level field wins unless it is
	// exactly zero, in which case derive from cpu_time/total_elapsed.
	cpuPct := 0.0
	if row.HasPctCPU {
		cpuPct = row.PctCPU
	}
	if cpuPct == 0 && totalElapsed > 0 && cpuTime > 0 {
		cpuPct = (cpuTime / totalElapsed) * 100
	}

	ioWaitPct := 0.0
	if row.HasPctIO {
		ioWaitPct = row.PctIO
	}
	if ioWaitPct == 0 && totalElapsed > 0 {
		nonCPU := math.Max(0, totalElapsed-cpuTime)
		ioWaitPct = (nonCPU / totalElapsed) * 100
	}

	dbTimePct := 0.0
	if row.HasPctTotal {
		dbTimePct = row.PctTotal
	} else if row.HasDBTimePct {
		dbTimePct = row.DBTimePct
	}

	waitClass := ""
	hasWaitClass := false
	if row.HasWaitClass && row.WaitClass != "" {
		waitClass = row.WaitClass
		hasWaitClass = true
	} else {
		for _, we := range waitEvents {
			if we.PctOfDBTime > 20 {
				waitClass = we.WaitClass
				hasWaitClass = strings.TrimSpace(waitClass) != ""
				break
			}
		}
	}

	return awrmodel.NormalizedSignals{
		SQLID:        sqlID,
		Executions:   executions,
		TotalElapsed: totalElapsed,
		AvgExecTime:  avgExecTime,
		CPUTime:      cpuTime,
		CPUPct:       clamp(cpuPct),
		IOWaitPct:    clamp(ioWaitPct),
		DBTimePct:    clamp(dbTimePct),
		SQLText:      row.SQLText,
		HasSQLText:   row.HasSQLText,
		SQLModule:    row.SQLModule,
		HasSQLModule: row.HasSQLModule,
		WaitClass:    waitClass,
		HasWaitClass: hasWaitClass,
	}
}

func valOrZero(has bool, v float64) float64 {
	if has {
		return v
	}
	return 0
}

func firstNonZero(vs ...float64) float64 {
	for _, v := range vs {
		if v != 0 {
			return v
		}
	}
	return 0
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
