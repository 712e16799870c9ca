// Package fixformat selects and renders the "Fix Recommendations" section
// of a Finding: signal-driven, never a blanket dump of every possible fix
// (spec.md §4.7b).
package fixformat

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dbaworks/awr-advisor/internal/awrmodel"
)

const (
	ioThreshold    = 60.0
	cpuThreshold   = 50.0
	batchExecTime  = 5.0
	batchMaxExecs  = 50.0
	generalImpactS = 30.0
)

// Signals is the subset of a problematic SQL's profile the formatter
// reacts to, including the three plan/IO flags only ASH/plan-stability
// analysis can set.
type Signals struct {
	SQLID           string
	IOWaitPct       float64
	CPUPct          float64
	AvgExecTime     float64
	Executions      float64
	TotalElapsed    float64
	PlanInstability bool
	FullTableScan   bool
	HighIODetected  bool
}

var priorityOrder = map[string]int{"CRITICAL": 0, "HIGH": 1, "MEDIUM": 2}

// Generate builds the ordered, signal-selected set of fix sections for one
// SQL. An empty result for a low-impact SQL is correct, not a bug: not
// every problematic SQL needs every section.
func Generate(s Signals) []awrmodel.FixSection {
	var sections []awrmodel.FixSection
	var issues []string

	ioDominant := s.IOWaitPct > ioThreshold || s.FullTableScan || s.HighIODetected
	if ioDominant {
		issues = append(issues, "IO_DOMINANT")
		sections = append(sections, ioReductionSection(s))
		sections = append(sections, sqlAccessAdvisorSection(s))
	}

	batchPattern := s.AvgExecTime > batchExecTime && s.Executions < batchMaxExecs
	if batchPattern {
		issues = append(issues, "BATCH_PATTERN")
		sections = append(sections, parallelExecutionSection(s))
	}

	if s.PlanInstability {
		issues = append(issues, "PLAN_INSTABILITY")
		sections = append(sections, planStabilitySection())
	}

	if s.CPUPct > cpuThreshold {
		issues = append(issues, "HIGH_CPU")
		sections = append(sections, cpuReductionSection(s))
	}

	if len(sections) == 0 && s.TotalElapsed > generalImpactS {
		issues = append(issues, "HIGH_IMPACT")
		sections = append(sections, generalOptimizationSection(s))
	}

	sort.SliceStable(sections, func(i, j int) bool {
		return priorityOrder[sections[i].Priority] < priorityOrder[sections[j].Priority]
	})
	return sections
}

// Summary renders the human-facing roll-up of the sections Generate chose.
func Summary(sqlID string, sections []awrmodel.FixSection) string {
	if len(sections) == 0 {
		return fmt.Sprintf("SQL %s: No specific fix recommendations - standard monitoring advised.", sqlID)
	}
	var improvements []string
	for _, sec := range sections {
		improvements = append(improvements, fmt.Sprintf("- %s: %s", sec.Title, sec.ExpectedImprovement))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "SQL %s - Fix Recommendations\n", sqlID)
	fmt.Fprintf(&b, "Total Fix Sections: %d\n", len(sections))
	fmt.Fprintf(&b, "Expected Improvements:\n%s", strings.Join(improvements, "\n"))
	return b.String()
}

func ioReductionSection(s Signals) awrmodel.FixSection {
	why := fmt.Sprintf("IO wait is %.1f%% (threshold: %.0f%%). High physical reads indicate full table scans. Adding appropriate indexes will reduce IO dramatically.", s.IOWaitPct, ioThreshold)
	if s.IOWaitPct < 10 {
		why = "IO wait is negligible; CPU is the primary root cause. High physical reads indicate full table scans. Adding appropriate indexes will reduce IO dramatically."
	}
	priority := "HIGH"
	if s.IOWaitPct > 80 {
		priority = "CRITICAL"
	}
	steps := []awrmodel.FixStep{
		{Title: "Identify objects accessed by this SQL",
			SQL: fmt.Sprintf(
				"SELECT DISTINCT p.object_owner, p.object_name, p.object_type, p.operation, p.options\n"+
					"FROM v$sql_plan p WHERE p.sql_id = '%s' AND p.object_owner IS NOT NULL\n"+
					"ORDER BY p.object_owner, p.object_name;", s.SQLID),
			WhyHelps: "Identifies which tables are being accessed, focus indexing efforts here", Priority: "CRITICAL"},
		{Title: "Check existing indexes on accessed tables",
			SQL: fmt.Sprintf(
				"SELECT ic.table_owner, ic.table_name, ic.index_name,\n"+
					"  LISTAGG(ic.column_name, ', ') WITHIN GROUP (ORDER BY ic.column_position) AS index_columns,\n"+
					"  i.visibility, i.status\n"+
					"FROM dba_ind_columns ic JOIN dba_indexes i ON ic.index_name = i.index_name AND ic.index_owner = i.owner\n"+
					"WHERE ic.table_name IN (SELECT object_name FROM v$sql_plan WHERE sql_id = '%s' AND object_type = 'TABLE')\n"+
					"GROUP BY ic.table_owner, ic.table_name, ic.index_name, i.visibility, i.status;", s.SQLID),
			WhyHelps: "Reveals what indexes exist, may need a composite index or different column order", Priority: "HIGH"},
		{Title: "Find high physical-read segments (index candidates)",
			SQL: fmt.Sprintf(
				"SELECT ss.owner, ss.object_name, ss.object_type, ss.value AS physical_reads\n"+
					"FROM v$segment_statistics ss WHERE ss.statistic_name = 'physical reads'\n"+
					"  AND ss.object_name IN (SELECT object_name FROM v$sql_plan WHERE sql_id = '%s')\n"+
					"ORDER BY ss.value DESC;", s.SQLID),
			WhyHelps: "High physical reads mean disk IO and slow response; these segments need indexes most urgently", Priority: "HIGH"},
	}
	return awrmodel.FixSection{
		Kind: "IO_REDUCTION", Title: "IO Reduction - Missing Index Analysis",
		Priority: priority, WhyShown: why, Steps: steps,
		ExpectedImprovement: "40-70% reduction in elapsed time after proper indexing",
	}
}

func sqlAccessAdvisorSection(s Signals) awrmodel.FixSection {
	steps := []awrmodel.FixStep{
		{Title: "Create a SQL Tuning task for index recommendations",
			SQL: fmt.Sprintf(
				"DECLARE\n  l_task_name VARCHAR2(30);\nBEGIN\n"+
					"  l_task_name := DBMS_SQLTUNE.CREATE_TUNING_TASK(\n"+
					"    sql_id => '%s', scope => DBMS_SQLTUNE.SCOPE_COMPREHENSIVE,\n"+
					"    time_limit => 300, task_name => 'TUNE_%s');\n"+
					"END;\n/", s.SQLID, s.SQLID),
			WhyHelps: "Creates a comprehensive tuning analysis job that Oracle will execute", Priority: "CRITICAL"},
		{Title: "Execute the tuning task and check status",
			SQL: fmt.Sprintf(
				"BEGIN\n  DBMS_SQLTUNE.EXECUTE_TUNING_TASK(task_name => 'TUNE_%s');\nEND;\n/\n\n"+
					"SELECT task_name, status, execution_start, execution_end\n"+
					"FROM dba_advisor_log WHERE task_name = 'TUNE_%s';", s.SQLID, s.SQLID),
			WhyHelps: "Runs the optimizer against this specific SQL and generates recommendations", Priority: "CRITICAL"},
		{Title: "View index recommendations",
			SQL: fmt.Sprintf(
				"SELECT DBMS_SQLTUNE.REPORT_TUNING_TASK('TUNE_%s') AS recommendations FROM dual;\n\n"+
					"SELECT type, message, impact FROM dba_advisor_findings\n"+
					"WHERE task_name = 'TUNE_%s' ORDER BY impact DESC;", s.SQLID, s.SQLID),
			WhyHelps: "Shows specific recommendations, may include ready-to-run CREATE INDEX statements", Priority: "HIGH"},
	}
	return awrmodel.FixSection{
		Kind: "SQL_ACCESS_ADVISOR", Title: "SQL Access Advisor - Index Recommendation (Highest ROI)",
		Priority: "CRITICAL",
		WhyShown: fmt.Sprintf("IO wait at %.1f%%. SQL Access Advisor provides automated index recommendations with expected improvement percentages. This is the safest, highest ROI action.", s.IOWaitPct),
		Steps:    steps, ExpectedImprovement: "60-90% IO reduction with advisor-recommended indexes",
	}
}

func parallelExecutionSection(s Signals) awrmodel.FixSection {
	steps := []awrmodel.FixStep{
		{Title: "Check current PX usage for this SQL",
			SQL: fmt.Sprintf(
				"SELECT sql_id, executions, px_servers_executions,\n"+
					"  ROUND(px_servers_executions / NULLIF(executions, 0), 2) AS avg_px_per_exec,\n"+
					"  elapsed_time/1e6 AS elapsed_sec\n"+
					"FROM v$sql WHERE sql_id = '%s';", s.SQLID),
			WhyHelps: "Shows whether parallel execution is being used at all for this SQL", Priority: "HIGH"},
		{Title: "Enable parallel DML for batch operations",
			SQL: "ALTER SESSION ENABLE PARALLEL DML;\nALTER SESSION FORCE PARALLEL DML PARALLEL 4;",
			WhyHelps: "Parallel execution divides work across CPU cores, can reduce batch runtime by 50-80%", Priority: "HIGH"},
		{Title: "Validate parallel execution in the plan",
			SQL: fmt.Sprintf(
				"SELECT id, operation, options, object_name, distribution\n"+
					"FROM v$sql_plan WHERE sql_id = '%s'\n"+
					"  AND (operation LIKE '%%PX%%' OR distribution IS NOT NULL) ORDER BY id;", s.SQLID),
			WhyHelps: "Confirms whether parallel execution actually occurred in the chosen plan", Priority: "MEDIUM"},
	}
	return awrmodel.FixSection{
		Kind: "PARALLEL_EXECUTION", Title: "Parallel Execution - Batch Runtime Reduction",
		Priority: "HIGH",
		WhyShown: fmt.Sprintf("Average execution time is %.1fs with only %d executions. This batch pattern can benefit from parallel execution to reduce runtime by 50-70%%.", s.AvgExecTime, int64(s.Executions)),
		Steps:    steps, ExpectedImprovement: "50-70% runtime reduction with proper parallel configuration",
	}
}

func planStabilitySection() awrmodel.FixSection {
	steps := []awrmodel.FixStep{
		{Title: "Capture the current execution plan with statistics",
			SQL: "SELECT * FROM TABLE(DBMS_XPLAN.DISPLAY_CURSOR(format => 'ALLSTATS LAST +ALIAS +OUTLINE +IOSTATS'));",
			WhyHelps: "Captures the current plan, a good plan gets locked, a bad one gets investigated further", Priority: "CRITICAL"},
		{Title: "Load the good plan into a SQL Plan Baseline",
			SQL: "DECLARE\n  l_plans PLS_INTEGER;\nBEGIN\n  l_plans := DBMS_SPM.LOAD_PLANS_FROM_CURSOR_CACHE(\n    sql_id => NULL, enabled => 'YES', fixed => 'NO');\nEND;\n/",
			WhyHelps: "A SQL Plan Baseline prevents the optimizer from choosing a worse plan later", Priority: "CRITICAL"},
		{Title: "Verify the baseline was created and accepted",
			SQL: "SELECT sql_handle, plan_name, origin, enabled, accepted, fixed\nFROM dba_sql_plan_baselines ORDER BY created DESC;",
			WhyHelps: "accepted = YES confirms the optimizer will use this baseline going forward", Priority: "HIGH"},
	}
	return awrmodel.FixSection{
		Kind: "PLAN_STABILITY", Title: "Execution Plan Stability - Prevent Regression",
		Priority: "HIGH",
		WhyShown: "Plan instability detected. Locking a known good plan prevents unpredictable performance spikes that cause load problems.",
		Steps:    steps, ExpectedImprovement: "Eliminates surprise load events from plan regression",
	}
}

func cpuReductionSection(s Signals) awrmodel.FixSection {
	priority := "MEDIUM"
	if s.CPUPct > 70 {
		priority = "HIGH"
	}
	steps := []awrmodel.FixStep{
		{Title: "Identify CPU-heavy operations in the plan",
			SQL: fmt.Sprintf(
				"SELECT id, operation, options, object_name, cpu_cost, io_cost,\n"+
					"  ROUND(cpu_cost / NULLIF(io_cost, 0), 2) AS cpu_to_io_ratio\n"+
					"FROM v$sql_plan WHERE sql_id = '%s' AND cpu_cost > 0 ORDER BY cpu_cost DESC;", s.SQLID),
			WhyHelps: "Pinpoints which plan operations consume CPU, focus optimization there", Priority: "CRITICAL"},
		{Title: "Review the full plan for CPU hotspots",
			SQL: fmt.Sprintf(
				"SELECT * FROM TABLE(DBMS_XPLAN.DISPLAY_CURSOR(sql_id => '%s', format => 'ALLSTATS LAST +COST'));", s.SQLID),
			WhyHelps: "Shows exactly where CPU is spent: sorts, hash joins, or scalar-subquery filters", Priority: "HIGH"},
		{Title: "Consider a join method change",
			SQL: "-- If HASH JOIN is expensive: SELECT /*+ USE_NL(a b) INDEX(b idx_name) */ ...\n-- If NESTED LOOPS is expensive on large sets: SELECT /*+ USE_HASH(a b) */ ...",
			WhyHelps: "Wrong join method is the most common cause of CPU waste; changing it can cut CPU by 50% or more", Priority: "HIGH"},
	}
	return awrmodel.FixSection{
		Kind: "CPU_REDUCTION", Title: "High CPU SQL Reduction",
		Priority: priority,
		WhyShown: fmt.Sprintf("CPU percentage is %.1f%% (threshold: %.0f%%). High CPU often indicates inefficient join methods, excessive sorting, or scalar subqueries.", s.CPUPct, cpuThreshold),
		Steps:    steps, ExpectedImprovement: "30-50% CPU reduction with optimized join methods",
	}
}

func generalOptimizationSection(s Signals) awrmodel.FixSection {
	steps := []awrmodel.FixStep{
		{Title: "Run a comprehensive SQL Tuning Advisor pass",
			SQL: fmt.Sprintf(
				"DECLARE\n  l_task VARCHAR2(30);\nBEGIN\n"+
					"  l_task := DBMS_SQLTUNE.CREATE_TUNING_TASK(\n"+
					"    sql_id => '%s', scope => DBMS_SQLTUNE.SCOPE_COMPREHENSIVE,\n"+
					"    time_limit => 600, task_name => 'COMPREHENSIVE_TUNE_%s');\n"+
					"  DBMS_SQLTUNE.EXECUTE_TUNING_TASK(l_task);\nEND;\n/", s.SQLID, s.SQLID),
			WhyHelps: "Comprehensive analysis covers indexes, statistics, SQL profiles, and restructuring", Priority: "HIGH"},
		{Title: "Verify table statistics are current",
			SQL: fmt.Sprintf(
				"SELECT table_name, last_analyzed, num_rows, stale_stats,\n"+
					"  ROUND(SYSDATE - last_analyzed) AS days_old\n"+
					"FROM dba_tab_statistics WHERE table_name IN (\n"+
					"  SELECT DISTINCT object_name FROM v$sql_plan WHERE sql_id = '%s' AND object_type = 'TABLE'\n"+
					") ORDER BY last_analyzed NULLS FIRST;", s.SQLID),
			WhyHelps: "Stale statistics cause the optimizer to choose bad plans; refreshing them fixes many issues", Priority: "MEDIUM"},
	}
	return awrmodel.FixSection{
		Kind: "GENERAL_OPTIMIZATION", Title: "General SQL Optimization",
		Priority: "MEDIUM",
		WhyShown: fmt.Sprintf("Total elapsed time is %.1fs, a high-impact query that warrants optimization even without a specific IO/CPU signal.", s.TotalElapsed),
		Steps:    steps, ExpectedImprovement: "20-40% improvement with comprehensive tuning",
	}
}
