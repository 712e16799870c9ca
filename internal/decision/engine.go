// Package decision implements the ordered-gate workload classifier
// (spec.md §4.6) — the "DBA brain" that assigns each SQL a closed-vocabulary
// category and a closed-vocabulary set of allowed/blocked actions, with
// mandatory why_shown/why_hidden explanations.
package decision

import (
	"fmt"

	"github.com/dbaworks/awr-advisor/internal/awrmodel"
)

// Gate thresholds, named to match the DBA reasoning they encode.
const (
	batchMinAvgExecTime  = 5.0
	batchMaxExecutions   = 50.0
	chattyMinExecutions  = 1000.0
	chattyMaxAvgExecTime = 0.1
	ioBoundMinIOWaitPct  = 70.0
	cpuBoundMinCPUPct    = 70.0
	cpuBoundMaxIOWaitPct = 30.0
)

// Evaluate runs the ordered gate cascade against signals. Gates are
// disjoint by construction: the first matching gate wins.
func Evaluate(s awrmodel.NormalizedSignals) awrmodel.DecisionResult {
	switch {
	case isBatch(s):
		return batchDecision(s)
	case isChatty(s):
		return chattyDecision(s)
	case isIOBound(s):
		return ioBoundDecision(s)
	case isCPUBound(s):
		return cpuBoundDecision(s)
	case isMixedProfile(s):
		return mixedProfileDecision(s)
	default:
		return lowPriorityDecision(s)
	}
}

func isBatch(s awrmodel.NormalizedSignals) bool {
	return s.AvgExecTime > batchMinAvgExecTime && s.Executions < batchMaxExecutions
}

func isChatty(s awrmodel.NormalizedSignals) bool {
	return s.Executions > chattyMinExecutions && s.AvgExecTime < chattyMaxAvgExecTime
}

func isIOBound(s awrmodel.NormalizedSignals) bool {
	return s.IOWaitPct > ioBoundMinIOWaitPct
}

func isCPUBound(s awrmodel.NormalizedSignals) bool {
	return s.CPUPct > cpuBoundMinCPUPct && s.IOWaitPct < cpuBoundMaxIOWaitPct
}

func isMixedProfile(s awrmodel.NormalizedSignals) bool {
	hits := 0
	if s.AvgExecTime > 1 {
		hits++
	}
	if s.Executions > 100 {
		hits++
	}
	if s.IOWaitPct > 40 {
		hits++
	}
	if s.CPUPct > 40 {
		hits++
	}
	if s.DBTimePct > 10 {
		hits++
	}
	return hits >= 3
}

func batchDecision(s awrmodel.NormalizedSignals) awrmodel.DecisionResult {
	allowed := []awrmodel.ActionType{
		awrmodel.ActionPlanAnalysis,
		awrmodel.ActionIndexReview,
		awrmodel.ActionIOOptimization,
		awrmodel.ActionSQLAccessAdvisor,
		awrmodel.ActionSQLRewrite,
	}
	blocked := []awrmodel.ActionType{
		awrmodel.ActionBindTuning,
		awrmodel.ActionApplicationThrottling,
		awrmodel.ActionResultCaching,
	}
	reasoning := []string{
		fmt.Sprintf("Slow per execution (%.2fs > 5s threshold)", s.AvgExecTime),
		fmt.Sprintf("Low frequency (%.0f executions < 50 threshold)", s.Executions),
		"Pattern indicates batch/report SQL workload",
		"Focus on query efficiency, not application throttling",
	}
	whyShown := []string{
		fmt.Sprintf("avg_exec_time = %.2fs (>5s)", s.AvgExecTime),
		fmt.Sprintf("executions = %.0f (<50)", s.Executions),
		fmt.Sprintf("total_elapsed = %.1fs", s.TotalElapsed),
	}
	if s.IOWaitPct > 30 {
		whyShown = append(whyShown, fmt.Sprintf("io_wait_pct = %.1f%%", s.IOWaitPct))
	}
	whyHidden := []string{
		"Bind tuning skipped: low execution frequency makes cursor sharing irrelevant",
		"Application throttling skipped: not applicable for batch/report SQL",
		"Result caching skipped: low frequency means minimal cache hit benefit",
	}
	return result(awrmodel.CategoryBatch, s, allowed, blocked, reasoning, whyShown, whyHidden)
}

func chattyDecision(s awrmodel.NormalizedSignals) awrmodel.DecisionResult {
	allowed := []awrmodel.ActionType{
		awrmodel.ActionApplicationThrottling,
		awrmodel.ActionResultCaching,
		awrmodel.ActionBindTuning,
	}
	blocked := []awrmodel.ActionType{
		awrmodel.ActionIndexCreation,
		awrmodel.ActionSQLTuningAdvisor,
		awrmodel.ActionSQLAccessAdvisor,
		awrmodel.ActionPlanAnalysis,
		awrmodel.ActionSQLRewrite,
	}
	reasoning := []string{
		fmt.Sprintf("Fast per execution (%.4fs < 0.1s)", s.AvgExecTime),
		fmt.Sprintf("Extremely high frequency (%.0f executions > 1000)", s.Executions),
		"Pattern indicates OLTP/chatty SQL - application design issue",
		"Individual query is efficient but cumulative overhead is the problem",
	}
	whyShown := []string{
		fmt.Sprintf("executions = %.0f (>1000)", s.Executions),
		fmt.Sprintf("avg_exec_time = %.4fs (<0.1s)", s.AvgExecTime),
		"Cumulative impact despite fast individual execution",
	}
	whyHidden := []string{
		"Index creation skipped: query already executes fast enough",
		"SQL Tuning Advisor skipped: query is already efficient",
		"SQL Access Advisor skipped: no structural changes needed",
		"Plan analysis skipped: execution plan is not the bottleneck",
	}
	return result(awrmodel.CategoryChatty, s, allowed, blocked, reasoning, whyShown, whyHidden)
}

func ioBoundDecision(s awrmodel.NormalizedSignals) awrmodel.DecisionResult {
	allowed := []awrmodel.ActionType{
		awrmodel.ActionIndexReview,
		awrmodel.ActionIndexCreation,
		awrmodel.ActionAccessPathOptimize,
		awrmodel.ActionSQLAccessAdvisor,
		awrmodel.ActionIOOptimization,
	}
	blocked := []awrmodel.ActionType{
		awrmodel.ActionCPUTuning,
		awrmodel.ActionJoinHints,
		awrmodel.ActionHashVsNestedAnalysis,
	}
	reasoning := []string{
		fmt.Sprintf("High IO wait (%.1f%% > 70%% threshold)", s.IOWaitPct),
		"Query spending most time waiting for data retrieval",
		"Focus on reducing physical I/O through better access paths",
		"Index optimization likely to provide significant improvement",
	}
	whyShown := []string{
		fmt.Sprintf("io_wait_pct = %.1f%% (>70%%)", s.IOWaitPct),
		fmt.Sprintf("total_elapsed = %.1fs", s.TotalElapsed),
		fmt.Sprintf("cpu_pct = %.1f%% (low - confirms IO bottleneck)", s.CPUPct),
	}
	whyHidden := []string{
		"CPU tuning skipped: CPU is not the bottleneck",
		"Join hints skipped: join method changes unlikely to reduce IO",
		"Hash vs Nested analysis skipped: IO access path is the issue, not join method",
	}
	return result(awrmodel.CategoryIOBound, s, allowed, blocked, reasoning, whyShown, whyHidden)
}

func cpuBoundDecision(s awrmodel.NormalizedSignals) awrmodel.DecisionResult {
	allowed := []awrmodel.ActionType{
		awrmodel.ActionJoinMethodReview,
		awrmodel.ActionHashVsNestedAnalysis,
		awrmodel.ActionSQLRewrite,
		awrmodel.ActionPlanAnalysis,
		awrmodel.ActionSQLTuningAdvisor,
	}
	blocked := []awrmodel.ActionType{
		awrmodel.ActionIndexOnlyFixes,
		awrmodel.ActionIOOptimization,
		awrmodel.ActionAccessPathOptimize,
	}
	reasoning := []string{
		fmt.Sprintf("High CPU consumption (%.1f%% > 70%% threshold)", s.CPUPct),
		fmt.Sprintf("Low IO wait (%.1f%% < 30%% threshold)", s.IOWaitPct),
		"Query retrieving data efficiently but processing inefficiently",
		"Focus on join methods, aggregations, and computational logic",
	}
	whyShown := []string{
		fmt.Sprintf("cpu_pct = %.1f%% (>70%%)", s.CPUPct),
		fmt.Sprintf("io_wait_pct = %.1f%% (<30%%)", s.IOWaitPct),
		fmt.Sprintf("cpu_time = %.1fs", s.CPUTime),
	}
	whyHidden := []string{
		"Index-only fixes skipped: data access is already efficient",
		"IO optimization skipped: IO is not the bottleneck",
		"Access path optimization skipped: physical reads are not the issue",
	}
	return result(awrmodel.CategoryCPUBound, s, allowed, blocked, reasoning, whyShown, whyHidden)
}

func mixedProfileDecision(s awrmodel.NormalizedSignals) awrmodel.DecisionResult {
	allowed := []awrmodel.ActionType{
		awrmodel.ActionPlanAnalysis,
		awrmodel.ActionSQLTuningAdvisor,
	}
	if s.IOWaitPct > 40 {
		allowed = appendUnique(allowed, awrmodel.ActionIndexReview, awrmodel.ActionAccessPathOptimize)
	}
	if s.CPUPct > 40 {
		allowed = appendUnique(allowed, awrmodel.ActionJoinMethodReview, awrmodel.ActionSQLRewrite)
	}
	if s.Executions > 500 {
		allowed = appendUnique(allowed, awrmodel.ActionBindTuning, awrmodel.ActionResultCaching)
	}

	reasoning := []string{
		"SQL shows multiple concerning characteristics",
		fmt.Sprintf("Moderate execution time (%.2fs/exec)", s.AvgExecTime),
		fmt.Sprintf("Mixed IO (%.1f%%) and CPU (%.1f%%) profile", s.IOWaitPct, s.CPUPct),
		"Comprehensive analysis recommended",
	}
	whyShown := []string{
		fmt.Sprintf("avg_exec_time = %.2fs", s.AvgExecTime),
		fmt.Sprintf("executions = %.0f", s.Executions),
		fmt.Sprintf("io_wait_pct = %.1f%%", s.IOWaitPct),
		fmt.Sprintf("cpu_pct = %.1f%%", s.CPUPct),
		fmt.Sprintf("db_time_pct = %.1f%%", s.DBTimePct),
	}
	whyHidden := []string{
		"No actions explicitly blocked for mixed profile SQL",
		"Comprehensive investigation needed to identify root cause",
	}
	return result(awrmodel.CategoryMixed, s, allowed, nil, reasoning, whyShown, whyHidden)
}

func lowPriorityDecision(s awrmodel.NormalizedSignals) awrmodel.DecisionResult {
	allowed := []awrmodel.ActionType{awrmodel.ActionMonitorOnly}
	blocked := []awrmodel.ActionType{
		awrmodel.ActionIndexCreation,
		awrmodel.ActionSQLTuningAdvisor,
		awrmodel.ActionSQLAccessAdvisor,
		awrmodel.ActionSQLRewrite,
		awrmodel.ActionPlanAnalysis,
		awrmodel.ActionApplicationThrottling,
	}
	reasoning := []string{
		"No tuning justified by current workload behavior",
		fmt.Sprintf("Average execution time (%.3fs) is acceptable", s.AvgExecTime),
		fmt.Sprintf("Execution frequency (%.0f) is not concerning", s.Executions),
		"SQL does not meet any problem criteria - continue monitoring",
	}
	whyShown := []string{
		fmt.Sprintf("avg_exec_time = %.3fs (acceptable)", s.AvgExecTime),
		fmt.Sprintf("executions = %.0f (not excessive)", s.Executions),
		fmt.Sprintf("io_wait_pct = %.1f%% (within range)", s.IOWaitPct),
		fmt.Sprintf("cpu_pct = %.1f%% (within range)", s.CPUPct),
	}
	whyHidden := []string{
		"All tuning actions skipped: workload characteristics do not justify intervention",
		"SQL Tuning Advisor skipped: no performance problem detected",
		"Index creation skipped: access patterns are efficient",
		"Query rewrite skipped: query structure is acceptable",
	}
	return result(awrmodel.CategoryLowPriority, s, allowed, blocked, reasoning, whyShown, whyHidden)
}

func result(cat awrmodel.SQLCategory, s awrmodel.NormalizedSignals, allowed, blocked []awrmodel.ActionType,
	reasoning, whyShown, whyHidden []string) awrmodel.DecisionResult {
	return awrmodel.DecisionResult{
		Category:       cat,
		AllowedActions: allowed,
		BlockedActions: blocked,
		Reasoning:      reasoning,
		WhyShown:       whyShown,
		WhyHidden:      whyHidden,
		Signals:        s,
	}
}

func appendUnique(list []awrmodel.ActionType, extra ...awrmodel.ActionType) []awrmodel.ActionType {
	for _, e := range extra {
		found := false
		for _, l := range list {
			if l == e {
				found = true
				break
			}
		}
		if !found {
			list = append(list, e)
		}
	}
	return list
}

// IsActionAllowed reports whether action is in decision's allowed set.
func IsActionAllowed(d awrmodel.DecisionResult, action awrmodel.ActionType) bool {
	for _, a := range d.AllowedActions {
		if a == action {
			return true
		}
	}
	return false
}

// IsActionBlocked reports whether action is in decision's blocked set.
func IsActionBlocked(d awrmodel.DecisionResult, action awrmodel.ActionType) bool {
	for _, a := range d.BlockedActions {
		if a == action {
			return true
		}
	}
	return false
}
