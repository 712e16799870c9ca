package sqlgen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dbaworks/awr-advisor/internal/awrmodel"
)

// canonicalTokenOrder is the stable sort key for DBMS_XPLAN.DISPLAY_CURSOR
// format tokens. Tokens not present here sort after all of them, in
// whatever order they were appended.
var canonicalTokenOrder = []string{
	"BASIC", "TYPICAL", "ALLSTATS", "ALLSTATS LAST",
	"+COST", "+PREDICATE", "+PROJECTION", "+ALIAS",
	"+IOSTATS", "+MEMSTATS", "+PARALLEL", "+PARTITION",
	"+PEEKED_BINDS", "+ADAPTIVE", "+BIND_AWARE", "+OUTLINE",
}

func tokenRank(tok string) int {
	for i, t := range canonicalTokenOrder {
		if t == tok {
			return i
		}
	}
	return len(canonicalTokenOrder)
}

// baseFormat returns the category's starting format tokens before any
// signal-driven additions.
func baseFormat(category awrmodel.SQLCategory) []string {
	switch category {
	case awrmodel.CategoryBatch:
		return []string{"ALLSTATS LAST"}
	case awrmodel.CategoryChatty:
		return []string{"BASIC"}
	case awrmodel.CategoryIOBound:
		return []string{"ALLSTATS LAST", "+IOSTATS"}
	case awrmodel.CategoryCPUBound:
		return []string{"ALLSTATS LAST", "+COST", "+PREDICATE"}
	case awrmodel.CategoryMixed:
		return []string{"ALLSTATS LAST", "+COST"}
	default:
		return []string{"BASIC"}
	}
}

func addUnique(tokens []string, tok string) []string {
	for _, t := range tokens {
		if t == tok {
			return tokens
		}
	}
	return append(tokens, tok)
}

func assembleFormat(tokens []string) string {
	out := make([]string, len(tokens))
	copy(out, tokens)
	sort.SliceStable(out, func(i, j int) bool { return tokenRank(out[i]) < tokenRank(out[j]) })
	return strings.Join(out, " ")
}

// dynamicXPlan assembles the signal-driven DBMS_XPLAN format string and
// explanation for one set of signals, following the cascading thresholds
// of spec.md §4.7 ("Dynamic SQL Generator, assembly discipline").
func dynamicXPlan(category awrmodel.SQLCategory, s awrmodel.NormalizedSignals) (format string, explanation string) {
	tokens := baseFormat(category)
	var parts []string

	switch {
	case s.IOWaitPct >= 90:
		tokens = addUnique(tokens, "+IOSTATS")
		tokens = addUnique(tokens, "+PARALLEL")
		tokens = addUnique(tokens, "+PARTITION")
		parts = append(parts, fmt.Sprintf("CRITICAL io_wait_pct=%.1f", s.IOWaitPct))
	case s.IOWaitPct >= 70:
		tokens = addUnique(tokens, "+IOSTATS")
		tokens = addUnique(tokens, "+PARALLEL")
		parts = append(parts, fmt.Sprintf("HIGH io_wait_pct=%.1f", s.IOWaitPct))
	case s.IOWaitPct >= 50:
		tokens = addUnique(tokens, "+IOSTATS")
		parts = append(parts, fmt.Sprintf("MODERATE io_wait_pct=%.1f", s.IOWaitPct))
	case s.IOWaitPct >= 30 && category == awrmodel.CategoryBatch:
		tokens = addUnique(tokens, "+IOSTATS")
		parts = append(parts, fmt.Sprintf("io_wait_pct=%.1f in batch context", s.IOWaitPct))
	}

	switch {
	case s.CPUPct >= 90:
		tokens = addUnique(tokens, "+COST")
		tokens = addUnique(tokens, "+PREDICATE")
		tokens = addUnique(tokens, "+PROJECTION")
		parts = append(parts, fmt.Sprintf("CRITICAL cpu_pct=%.1f", s.CPUPct))
	case s.CPUPct >= 70:
		tokens = addUnique(tokens, "+COST")
		tokens = addUnique(tokens, "+PREDICATE")
		parts = append(parts, fmt.Sprintf("HIGH cpu_pct=%.1f", s.CPUPct))
	case s.CPUPct >= 50:
		tokens = addUnique(tokens, "+COST")
		parts = append(parts, fmt.Sprintf("MODERATE cpu_pct=%.1f", s.CPUPct))
	case s.CPUPct >= 30 && (category == awrmodel.CategoryBatch || category == awrmodel.CategoryCPUBound):
		tokens = addUnique(tokens, "+COST")
		parts = append(parts, fmt.Sprintf("cpu_pct=%.1f", s.CPUPct))
	}

	switch {
	case s.Executions >= 5000:
		tokens = addUnique(tokens, "+PEEKED_BINDS")
		tokens = addUnique(tokens, "+ADAPTIVE")
		tokens = addUnique(tokens, "+BIND_AWARE")
		parts = append(parts, fmt.Sprintf("VERY HIGH executions=%d", int64(s.Executions)))
	case s.Executions >= 1000:
		tokens = addUnique(tokens, "+PEEKED_BINDS")
		tokens = addUnique(tokens, "+ADAPTIVE")
		parts = append(parts, fmt.Sprintf("HIGH executions=%d", int64(s.Executions)))
	case s.Executions >= 500:
		tokens = addUnique(tokens, "+PEEKED_BINDS")
		parts = append(parts, fmt.Sprintf("executions=%d", int64(s.Executions)))
	case s.Executions < 50 && s.AvgExecTime >= 5:
		tokens = addUnique(tokens, "+OUTLINE")
		tokens = addUnique(tokens, "+ALIAS")
		parts = append(parts, fmt.Sprintf("batch pattern avg_exec_time=%.2f", s.AvgExecTime))
	}

	switch {
	case s.TotalElapsed >= 500:
		tokens = addUnique(tokens, "+MEMSTATS")
		tokens = addUnique(tokens, "+PARALLEL")
		parts = append(parts, fmt.Sprintf("VERY HIGH total_elapsed=%.1f", s.TotalElapsed))
	case s.TotalElapsed >= 100:
		tokens = addUnique(tokens, "+MEMSTATS")
		if category == awrmodel.CategoryBatch {
			tokens = addUnique(tokens, "+PARALLEL")
		}
		parts = append(parts, fmt.Sprintf("total_elapsed=%.1f", s.TotalElapsed))
	case s.TotalElapsed >= 50:
		tokens = addUnique(tokens, "+MEMSTATS")
		parts = append(parts, fmt.Sprintf("total_elapsed=%.1f", s.TotalElapsed))
	}

	switch {
	case s.AvgExecTime >= 30:
		tokens = addUnique(tokens, "+OUTLINE")
		parts = append(parts, fmt.Sprintf("SLOW avg_exec_time=%.2f", s.AvgExecTime))
	case s.AvgExecTime >= 10:
		tokens = addUnique(tokens, "+OUTLINE")
		parts = append(parts, fmt.Sprintf("avg_exec_time=%.2f", s.AvgExecTime))
	case s.AvgExecTime < 0.1 && s.Executions > 500:
		parts = append(parts, fmt.Sprintf("fast but chatty avg_exec_time=%.4f executions=%d", s.AvgExecTime, int64(s.Executions)))
	}

	format = assembleFormat(tokens)
	if len(parts) == 0 {
		explanation = fmt.Sprintf("Base analysis for %s", category)
	} else {
		explanation = "Generated because " + strings.Join(parts, ", ")
	}
	return format, explanation
}

// GenerateDynamicXPlan builds the XPLAN.DISPLAY_CURSOR artifact whose
// format string is assembled at call time from the live signal values.
func GenerateDynamicXPlan(decision awrmodel.DecisionResult) awrmodel.GeneratedSQL {
	s := decision.Signals
	format, explanation := dynamicXPlan(decision.Category, s)
	fp := Fingerprint(s)

	sql := fmt.Sprintf(
		"-- Dynamic XPLAN for %s\n"+
			"-- Signal Fingerprint: %s\n"+
			"-- Format assembled from: io=%.1f%%, cpu=%.1f%%, exec=%d\n"+
			"SELECT * FROM TABLE(DBMS_XPLAN.DISPLAY_CURSOR(sql_id => '%s', cursor_child_no => NULL, format => '%s'));",
		decision.Category, fp, s.IOWaitPct, s.CPUPct, int64(s.Executions), s.SQLID, format,
	)

	return awrmodel.GeneratedSQL{
		Action:            awrmodel.ActionPlanAnalysis,
		Label:             string(awrmodel.ActionPlanAnalysis),
		SQL:               sql,
		Intent:            "Confirm the execution plan actually chosen for this signal profile",
		Explanation:       explanation,
		Category:          decision.Category,
		SignalFingerprint: fp,
	}
}
