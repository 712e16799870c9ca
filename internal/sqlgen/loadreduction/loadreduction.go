// Package loadreduction classifies the root cause of a problematic SQL and
// generates condition-based, production-safe DBA action queries aimed at
// reducing database load rather than merely explaining it (spec.md §4.7c).
package loadreduction

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dbaworks/awr-advisor/internal/awrmodel"
)

const (
	ioDominantThreshold = 60.0
	highCPUThreshold    = 50.0
	batchMinExecTime    = 5.0
	batchMaxExecutions  = 50.0
)

// Signals is the subset of a problematic SQL's profile the engine reacts
// to.
type Signals struct {
	SQLID           string
	IOWaitPct       float64
	CPUPct          float64
	AvgExecTime     float64
	Executions      float64
	PlanInstability bool
	FullTableScan   bool
}

// Result is the full root-cause-classified load reduction output for one
// SQL.
type Result struct {
	SQLID      string
	RootCauses []string
	Actions    []awrmodel.LoadReductionAction
	Summary    string
}

// FromNormalizedSignals adapts a Decision Engine signal set into the
// Load Reduction Engine's narrower input.
func FromNormalizedSignals(s awrmodel.NormalizedSignals) Signals {
	return Signals{SQLID: s.SQLID, IOWaitPct: s.IOWaitPct, CPUPct: s.CPUPct, AvgExecTime: s.AvgExecTime, Executions: s.Executions}
}

// Analyze classifies root causes and builds the matching action set, ordered
// by the fixed 1=highest priority ordering each root cause carries.
func Analyze(s Signals) Result {
	var causes []string
	var actions []awrmodel.LoadReductionAction

	ioDominant := s.IOWaitPct > ioDominantThreshold || s.FullTableScan
	if ioDominant {
		causes = append(causes, "IO_DOMINANT")
		actions = append(actions, ioDominantAction(s))
		causes = append(causes, "MISSING_INDEX")
		actions = append(actions, sqlAccessAdvisorAction(s))
	}

	batchPattern := s.AvgExecTime > batchMinExecTime && s.Executions < batchMaxExecutions
	if batchPattern {
		causes = append(causes, "PX_INEFFECTIVE")
		actions = append(actions, pxAction(s))
	}

	if s.PlanInstability {
		causes = append(causes, "BAD_EXECUTION_PLAN")
		actions = append(actions, planStabilityAction(s))
	}

	if s.CPUPct > highCPUThreshold {
		causes = append(causes, "HIGH_CPU")
		actions = append(actions, cpuReductionAction(s))
	}

	sort.SliceStable(actions, func(i, j int) bool {
		return actionPriority(actions[i]) < actionPriority(actions[j])
	})

	return Result{SQLID: s.SQLID, RootCauses: causes, Actions: actions, Summary: summarize(s, causes)}
}

func actionPriority(a awrmodel.LoadReductionAction) int {
	switch a.RootCause {
	case "IO_DOMINANT", "MISSING_INDEX":
		return 1
	case "PX_INEFFECTIVE", "HIGH_CPU":
		return 2
	case "BAD_EXECUTION_PLAN":
		return 3
	default:
		return 4
	}
}

func summarize(s Signals, causes []string) string {
	if len(causes) == 0 {
		return fmt.Sprintf("SQL %s: No significant load reduction opportunities detected.", s.SQLID)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "SQL %s - Load Reduction Analysis\n", s.SQLID)
	fmt.Fprintf(&b, "Root Causes Detected: %s\n\nKey Metrics:\n", strings.Join(causes, ", "))
	if contains(causes, "IO_DOMINANT") || contains(causes, "MISSING_INDEX") {
		fmt.Fprintf(&b, "  - IO Wait: %.1f%% (threshold: %.0f%%)\n", s.IOWaitPct, ioDominantThreshold)
	}
	if contains(causes, "HIGH_CPU") {
		fmt.Fprintf(&b, "  - CPU: %.1f%% (threshold: %.0f%%)\n", s.CPUPct, highCPUThreshold)
	}
	if contains(causes, "PX_INEFFECTIVE") {
		fmt.Fprintf(&b, "  - Avg Exec Time: %.1fs (batch pattern)\n", s.AvgExecTime)
	}
	b.WriteString("\nExpected Load Reduction:\n")
	if contains(causes, "IO_DOMINANT") || contains(causes, "MISSING_INDEX") {
		b.WriteString("  - Indexing: 60-90% IO reduction\n")
	}
	if contains(causes, "PX_INEFFECTIVE") {
		b.WriteString("  - Parallel tuning: 50-70% runtime reduction\n")
	}
	if contains(causes, "HIGH_CPU") {
		b.WriteString("  - CPU optimization: 30-50% CPU reduction\n")
	}
	if contains(causes, "BAD_EXECUTION_PLAN") {
		b.WriteString("  - Plan stability: prevents unpredictable load spikes\n")
	}
	return b.String()
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func ioDominantAction(s Signals) awrmodel.LoadReductionAction {
	why := fmt.Sprintf("IO wait is %.1f%% (threshold: %.0f%%). High physical reads indicate full table scans. Adding appropriate indexes allows index range scans instead, reducing IO and database load.", s.IOWaitPct, ioDominantThreshold)
	if s.IOWaitPct < 10 {
		why = "IO wait is negligible; CPU is the primary root cause. High physical reads still indicate full table scans. Adding appropriate indexes reduces IO and database load."
	}
	return awrmodel.LoadReductionAction{
		RootCause: "IO_DOMINANT",
		Title:     "IO Reduction - Missing Index Analysis",
		SQL: []string{
			fmt.Sprintf("SELECT DISTINCT object_owner, object_name, object_type FROM v$sql_plan WHERE sql_id = '%s' AND object_owner IS NOT NULL;", s.SQLID),
			fmt.Sprintf("SELECT table_owner, table_name, index_name, column_name, column_position\nFROM dba_ind_columns WHERE table_name IN (SELECT object_name FROM v$sql_plan WHERE sql_id = '%s')\nORDER BY table_name, index_name, column_position;", s.SQLID),
			"SELECT owner, object_name, physical_reads FROM v$segment_statistics\nWHERE statistic_name = 'physical reads' ORDER BY physical_reads DESC FETCH FIRST 10 ROWS ONLY;",
		},
		DBAAction: "Create indexes on the filter and join columns to reduce full table scans, lowering physical IO and overall database load.",
		WhyHelps:  why,
		Priority:  "1",
	}
}

func sqlAccessAdvisorAction(s Signals) awrmodel.LoadReductionAction {
	return awrmodel.LoadReductionAction{
		RootCause: "MISSING_INDEX",
		Title:     "SQL Access Advisor - Index Recommendations (Highest ROI)",
		SQL: []string{
			fmt.Sprintf("BEGIN\n  DBMS_SQLTUNE.CREATE_TUNING_TASK(sql_id => '%s', scope => DBMS_SQLTUNE.SCOPE_COMPREHENSIVE,\n    time_limit => 300, task_name => 'IDX_ADVISOR_%s');\nEND;\n/", s.SQLID, s.SQLID),
			fmt.Sprintf("BEGIN\n  DBMS_SQLTUNE.EXECUTE_TUNING_TASK(task_name => 'IDX_ADVISOR_%s');\nEND;\n/", s.SQLID),
			fmt.Sprintf("SELECT DBMS_SQLTUNE.REPORT_TUNING_TASK('IDX_ADVISOR_%s') AS recommendations FROM dual;", s.SQLID),
		},
		DBAAction: "Create advisor-recommended indexes. This is the safest, highest ROI way to reduce IO and database load.",
		WhyHelps:  "SQL Access Advisor analyzes the SQL and recommends optimal indexes; implementing these typically gives 60-90% IO reduction.",
		Priority:  "1",
	}
}

func pxAction(s Signals) awrmodel.LoadReductionAction {
	return awrmodel.LoadReductionAction{
		RootCause: "PX_INEFFECTIVE",
		Title:     "Parallel Execution - Batch Runtime Reduction",
		SQL: []string{
			fmt.Sprintf("SELECT sql_id, executions, px_servers_executions,\n  ROUND(px_servers_executions / NULLIF(executions,0), 2) AS avg_px\nFROM v$sql WHERE sql_id = '%s';", s.SQLID),
			"ALTER SESSION ENABLE PARALLEL DML;",
			fmt.Sprintf("SELECT sql_id, child_number, plan_hash_value, operation, options, other_tag\nFROM v$sql_plan WHERE sql_id = '%s' AND (operation LIKE '%%PX%%' OR other_tag LIKE '%%PX%%') ORDER BY id;", s.SQLID),
		},
		DBAAction: "Fix degree-of-parallelism or PX downgrade issues so batch SQL finishes faster, reducing the load window.",
		WhyHelps:  fmt.Sprintf("Average execution time is %.1fs with only %d executions. Enabling/tuning parallel DML can reduce runtime by 50-70%%.", s.AvgExecTime, int64(s.Executions)),
		Priority:  "2",
	}
}

func planStabilityAction(s Signals) awrmodel.LoadReductionAction {
	return awrmodel.LoadReductionAction{
		RootCause: "BAD_EXECUTION_PLAN",
		Title:     "Plan Stability - Prevent Regression",
		SQL: []string{
			fmt.Sprintf("SELECT * FROM TABLE(DBMS_XPLAN.DISPLAY_CURSOR(sql_id => '%s', format => 'ALLSTATS LAST +ALIAS +IOSTATS'));", s.SQLID),
			fmt.Sprintf("BEGIN\n  DBMS_SPM.LOAD_PLANS_FROM_CURSOR_CACHE(sql_id => '%s');\nEND;\n/", s.SQLID),
			fmt.Sprintf("SELECT sql_handle, plan_name, enabled, accepted, fixed, created\nFROM dba_sql_plan_baselines WHERE signature = (\n  SELECT exact_matching_signature FROM v$sql WHERE sql_id = '%s' AND ROWNUM = 1\n);", s.SQLID),
		},
		DBAAction: "Stabilize a known good execution plan to avoid regressions and unpredictable load spikes.",
		WhyHelps:  "Plan instability causes unpredictable performance; locking a known good plan via SQL Plan Baseline eliminates surprise load events.",
		Priority:  "3",
	}
}

func cpuReductionAction(s Signals) awrmodel.LoadReductionAction {
	return awrmodel.LoadReductionAction{
		RootCause: "HIGH_CPU",
		Title:     "CPU Load Reduction",
		SQL: []string{
			"SELECT sql_id, cpu_time/1000000 AS cpu_sec, executions,\n  ROUND(cpu_time/1000000/NULLIF(executions,0), 3) AS cpu_per_exec\nFROM v$sql ORDER BY cpu_time DESC FETCH FIRST 10 ROWS ONLY;",
			fmt.Sprintf("SELECT * FROM TABLE(DBMS_XPLAN.DISPLAY_CURSOR('%s', NULL, 'ALLSTATS LAST'));", s.SQLID),
			fmt.Sprintf("SELECT id, operation, options, cpu_cost, io_cost, cardinality, bytes\nFROM v$sql_plan WHERE sql_id = '%s' AND cpu_cost > 0 ORDER BY cpu_cost DESC;", s.SQLID),
		},
		DBAAction: "Rewrite the SQL or reduce row processing early to lower CPU usage and improve overall concurrency.",
		WhyHelps:  fmt.Sprintf("CPU percentage is %.1f%% (threshold: %.0f%%). High CPU often indicates inefficient join methods, excessive sorting, or scalar subqueries.", s.CPUPct, highCPUThreshold),
		Priority:  "2",
	}
}
