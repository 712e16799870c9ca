package sqlgen

import (
	"fmt"

	"github.com/dbaworks/awr-advisor/internal/awrmodel"
)

// GenerateActionPlan dispatches to the category-specific four-tier action
// plan builder.
func GenerateActionPlan(decision awrmodel.DecisionResult) awrmodel.ActionPlan {
	switch decision.Category {
	case awrmodel.CategoryBatch:
		return batchActionPlan(decision)
	case awrmodel.CategoryChatty:
		return chattyActionPlan(decision)
	case awrmodel.CategoryIOBound:
		return ioBoundActionPlan(decision)
	case awrmodel.CategoryCPUBound:
		return cpuBoundActionPlan(decision)
	case awrmodel.CategoryMixed:
		return mixedActionPlan(decision)
	default:
		return lowPriorityActionPlan(decision)
	}
}

func batchActionPlan(decision awrmodel.DecisionResult) awrmodel.ActionPlan {
	s := decision.Signals
	immediate := []string{
		"Capture the current execution plan with DBMS_XPLAN.DISPLAY_CURSOR",
		"Record current plan statistics as a baseline before any change",
	}
	if s.IOWaitPct > 80 {
		immediate = append(immediate, "URGENT: check for full table scans driving the IO wait")
	}
	if s.TotalElapsed > 100 {
		immediate = append(immediate, "Check for blocking sessions contending with this job's window")
	}

	shortTerm := []string{
		"Run SQL Access Advisor against this workload",
		"Review existing indexes for coverage of this job's predicates",
	}
	if s.AvgExecTime > 10 {
		shortTerm = append(shortTerm, "Evaluate partitioning the driving table")
	}
	if s.IOWaitPct > 60 {
		shortTerm = append(shortTerm, "Refresh segment statistics; stale stats inflate IO estimates")
	}

	mediumTerm := []string{
		"Implement any indexes the advisor confirmed",
		"Move this job to an off-peak scheduling window",
	}
	if s.TotalElapsed > 200 {
		mediumTerm = append(mediumTerm, "Tune parallel query degree for this job")
	}

	longTerm := []string{
		"Capture a SQL plan baseline once the tuned plan is stable",
		"Set a retention policy matching this job's actual data lifecycle",
		"Define an SLA for this job's completion window",
	}

	reasoning := []string{
		fmt.Sprintf("Category: %s", decision.Category),
		fmt.Sprintf("total_elapsed=%.1fs drives urgency tier", s.TotalElapsed),
		fmt.Sprintf("io_wait_pct=%.1f%% drives the IO-remediation steps", s.IOWaitPct),
		fmt.Sprintf("avg_exec_time=%.2fs drives the partitioning recommendation", s.AvgExecTime),
	}

	return awrmodel.ActionPlan{Immediate: immediate, ShortTerm: shortTerm, MediumTerm: mediumTerm, LongTerm: longTerm, PriorityReasoning: reasoning}
}

func chattyActionPlan(decision awrmodel.DecisionResult) awrmodel.ActionPlan {
	s := decision.Signals
	immediate := []string{
		"Review the calling application code for this SQL's call site",
		"Check for missing bind variables causing hard-parse churn",
	}
	if s.Executions > 5000 {
		immediate = append(immediate, fmt.Sprintf("CRITICAL: %d executions in this window, this is a frequency problem", int64(s.Executions)))
	}

	shortTerm := []string{
		"Evaluate result cache hints for this query",
		"Review connection pooling configuration for this application",
		"Add monitoring on cursor sharing for this SQL",
	}
	if s.AvgExecTime < 0.01 {
		shortTerm = append(shortTerm, fmt.Sprintf("Consider client-side caching; avg_exec_time is %.4fms", s.AvgExecTime*1000))
	}

	mediumTerm := []string{
		fmt.Sprintf("Batch these %d executions into fewer round trips", int64(s.Executions)),
		"Introduce a caching layer in front of this call",
		"Audit the application's ORM or data-access layer for N+1 patterns",
	}

	longTerm := []string{
		"Reconsider the application architecture driving this call volume",
		"Evaluate moving this lookup to an application-tier cache",
		"Set an executions-per-hour budget for this SQL id",
	}

	reasoning := []string{
		fmt.Sprintf("Category: %s", decision.Category),
		fmt.Sprintf("executions=%d drives urgency tier", int64(s.Executions)),
		fmt.Sprintf("avg_exec_time=%.4fs confirms this is cheap-per-call, expensive-in-aggregate", s.AvgExecTime),
		"No plan-level fix applies; every action targets the calling application",
	}

	return awrmodel.ActionPlan{Immediate: immediate, ShortTerm: shortTerm, MediumTerm: mediumTerm, LongTerm: longTerm, PriorityReasoning: reasoning}
}

func ioBoundActionPlan(decision awrmodel.DecisionResult) awrmodel.ActionPlan {
	s := decision.Signals
	immediate := []string{
		"Capture the current execution plan and its IOSTATS",
		"Identify the segments contributing the most physical reads",
	}
	if s.IOWaitPct > 90 {
		immediate = append(immediate, fmt.Sprintf("URGENT: io_wait_pct=%.1f%%, this SQL is IO-starved", s.IOWaitPct))
	}

	shortTerm := []string{
		"Review index coverage for the predicates driving the scan",
		"Check whether a covering index would eliminate table access entirely",
	}
	if s.Executions < 10 {
		shortTerm = append(shortTerm, "Run SQL Access Advisor scoped to index-only recommendations, low execution count keeps the scope narrow")
	}

	mediumTerm := []string{
		"Implement any confirmed index recommendations",
		"Evaluate partitioning if the scanned segment is large and growing",
	}

	longTerm := []string{
		"Monitor segment growth against the indexing strategy chosen here",
		"Revisit storage tiering if this segment is a consistent hot spot",
	}

	reasoning := []string{
		fmt.Sprintf("Category: %s", decision.Category),
		fmt.Sprintf("io_wait_pct=%.1f%% drives urgency and advisor scope", s.IOWaitPct),
		fmt.Sprintf("executions=%d informs whether advisor scope stays narrow", int64(s.Executions)),
	}

	return awrmodel.ActionPlan{Immediate: immediate, ShortTerm: shortTerm, MediumTerm: mediumTerm, LongTerm: longTerm, PriorityReasoning: reasoning}
}

func cpuBoundActionPlan(decision awrmodel.DecisionResult) awrmodel.ActionPlan {
	s := decision.Signals
	immediate := []string{
		"Capture the current execution plan's cost breakdown",
		"Identify which plan step carries the highest CPU cost",
	}
	if s.CPUPct > 80 {
		immediate = append(immediate, fmt.Sprintf("URGENT: cpu_pct=%.1f%%, check for a cartesian join", s.CPUPct))
	}

	shortTerm := []string{
		"Review join methods chosen across the plan",
		"Run SQL Tuning Advisor against this SQL id",
	}

	mediumTerm := []string{
		"Apply any tuning advisor recommendations that pass review",
		"Evaluate join order and hints if the plan's join method is sound but costly",
	}

	longTerm := []string{
		"Capture a SQL plan baseline once a CPU-efficient plan is confirmed stable",
		"Monitor cpu_pct trend for this SQL id across future snapshots",
	}

	reasoning := []string{
		fmt.Sprintf("Category: %s", decision.Category),
		fmt.Sprintf("cpu_pct=%.1f%% drives urgency tier", s.CPUPct),
	}

	return awrmodel.ActionPlan{Immediate: immediate, ShortTerm: shortTerm, MediumTerm: mediumTerm, LongTerm: longTerm, PriorityReasoning: reasoning}
}

func mixedActionPlan(decision awrmodel.DecisionResult) awrmodel.ActionPlan {
	s := decision.Signals
	immediate := []string{
		"Capture a comprehensive plan and wait-event snapshot",
	}
	shortTerm := []string{
		"Review both index coverage and join methods; no single trait dominates",
	}
	if s.IOWaitPct > 40 {
		shortTerm = append(shortTerm, fmt.Sprintf("io_wait_pct=%.1f%% warrants an index usage check", s.IOWaitPct))
	}
	if s.CPUPct > 40 {
		shortTerm = append(shortTerm, fmt.Sprintf("cpu_pct=%.1f%% warrants a join method review", s.CPUPct))
	}
	mediumTerm := []string{
		"Re-classify after the next snapshot once one trait begins to dominate",
	}
	longTerm := []string{
		"Track this SQL id across snapshots to watch for a clearer profile emerging",
	}
	reasoning := []string{
		fmt.Sprintf("Category: %s", decision.Category),
		"Signals sit near the IO and CPU thresholds simultaneously; no single-cause remediation applies yet",
	}
	return awrmodel.ActionPlan{Immediate: immediate, ShortTerm: shortTerm, MediumTerm: mediumTerm, LongTerm: longTerm, PriorityReasoning: reasoning}
}

func lowPriorityActionPlan(decision awrmodel.DecisionResult) awrmodel.ActionPlan {
	return awrmodel.ActionPlan{
		Immediate:         []string{"None required"},
		ShortTerm:         []string{"Record a baseline for trend comparison"},
		MediumTerm:        []string{},
		LongTerm:          []string{},
		PriorityReasoning: []string{fmt.Sprintf("Category: %s, signal profile is below every problem threshold", decision.Category)},
	}
}
