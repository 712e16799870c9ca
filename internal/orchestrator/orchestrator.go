// Package orchestrator is the DBA Expert Orchestrator (spec.md §4.8): the
// top-level entry point that turns a workload's raw SQL signals into the
// final result Envelope. It classifies the overall workload pattern,
// filters the handful of SQLs worth a human's attention, runs each one
// through the Decision Engine and Dynamic SQL Generator, and assembles a
// closing conclusion.
package orchestrator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dbaworks/awr-advisor/internal/awrmodel"
	"github.com/dbaworks/awr-advisor/internal/decision"
	"github.com/dbaworks/awr-advisor/internal/sqlgen"
	"github.com/dbaworks/awr-advisor/internal/sqlgen/fixformat"
	"github.com/dbaworks/awr-advisor/internal/sqlgen/loadreduction"
)

// Scoring thresholds, named for the DBA reasoning they encode.
const (
	criticalElapsedTime = 30.0
	highElapsedTime     = 10.0
	criticalCPUTime     = 20.0
	highCPUTime         = 5.0
	criticalExecutions  = 500.0
	mediumExecutions    = 50.0
	criticalWorkloadPct = 15.0
	highWorkloadPct     = 5.0
	criticalAvgElapsed  = 1.0
	mediumAvgElapsed    = 0.1
	highCPUPercentage   = 50.0
	mediumCPUPercentage = 30.0
	highIOPercentage    = 40.0

	cpuIntensiveElapsed = 500.0
	cpuIntensiveCPU     = 200.0
	highFrequencyExecs  = 10000.0
	waitDominatedPct    = 30.0

	maxProblematic       = 3
	secondTierDropRatio  = 0.4
	soleHighSeverityDrop = 1
)

// DominantWait is the single most significant wait event for a workload, as
// surfaced in an AWR wait-events table.
type DominantWait struct {
	Name        string
	TimeS       float64
	PctOfDBTime float64
	HasValue    bool
}

// ASHContext is the ASH-derived workload breakdown used to correct AWR's
// own IO% figure and to correlate a finding against observed wait behavior.
type ASHContext struct {
	IOPercent       float64
	HasIOPercent    bool
	DominantEvents  []ASHDominantEvent
	HighLoadPeriods []awrmodel.HighLoadPeriod
}

// ASHDominantEvent is one ranked entry from the ASH dominant-events list.
type ASHDominantEvent struct {
	Event     string
	PctImpact float64
}

// AnalyzeWorkload classifies the workload, filters it down to the SQLs
// worth a DBA's attention, and builds the full result Envelope. totalRawSQL
// is the unfiltered row count straight from the source table, used only so
// the UI's "N analyzed" figure matches the table the user can see.
func AnalyzeWorkload(topSQL []awrmodel.NormalizedSignals, totalRawSQL int, dominant DominantWait, ash ASHContext, metrics awrmodel.UnifiedMetrics) awrmodel.Envelope {
	workloadSummary := summarizeWorkload(topSQL, dominant)

	problematic := filterProblematic(topSQL)

	findings := make([]awrmodel.Finding, 0, len(problematic))
	for _, p := range problematic {
		findings = append(findings, buildFinding(p, dominant, ash))
	}

	analyzed := totalRawSQL
	if analyzed == 0 {
		analyzed = len(topSQL)
	}

	return awrmodel.Envelope{
		Status:                 awrmodel.StatusOK,
		WorkloadSummary:        workloadSummary,
		ProblematicCount:       len(findings),
		TotalAnalyzed:          analyzed,
		ProblematicSQLFindings: findings,
		DBAFinalConclusion:     buildConclusion(findings),
		AnalysisWindow:         ash.HighLoadPeriods,
		UnifiedMetrics:         metrics,
	}
}

func summarizeWorkload(topSQL []awrmodel.NormalizedSignals, dominant DominantWait) string {
	var totalElapsed, totalCPU, totalExecs float64
	for _, s := range topSQL {
		totalElapsed += s.TotalElapsed
		totalCPU += s.CPUTime
		totalExecs += s.Executions
	}

	pattern := classifyWorkloadPattern(totalElapsed, totalCPU, totalExecs, dominant)

	avgElapsed := 0.0
	if len(topSQL) > 0 {
		avgElapsed = totalElapsed / float64(len(topSQL))
	}

	summary := fmt.Sprintf("%s: %d SQL statements, %.1fs total elapsed, %.1fs total CPU, avg %.2fs/statement",
		pattern, len(topSQL), totalElapsed, totalCPU, avgElapsed)
	if dominant.HasValue {
		summary += fmt.Sprintf(", dominant wait %s (%.1f%% of DB time)", dominant.Name, dominant.PctOfDBTime)
	}
	return summary
}

// classifyWorkloadPattern ports the workload-level pattern classification:
// CPU and IO heavy-load detection by absolute elapsed/CPU time, frequency
// detection by execution count, and wait-event dominance from the
// dominant wait event's own share of DB time.
func classifyWorkloadPattern(totalElapsed, totalCPU, totalExecs float64, dominant DominantWait) string {
	switch {
	case totalElapsed > cpuIntensiveElapsed && totalCPU > cpuIntensiveCPU:
		return "CPU_INTENSIVE_HEAVY_LOAD"
	case totalElapsed > cpuIntensiveElapsed:
		return "IO_INTENSIVE_HEAVY_LOAD"
	case totalExecs > highFrequencyExecs:
		return "HIGH_FREQUENCY_WORKLOAD"
	case dominant.HasValue && dominant.PctOfDBTime > waitDominatedPct:
		return "WAIT_EVENT_DOMINATED"
	default:
		return "MODERATE_WORKLOAD"
	}
}

type scoredSignal struct {
	signals  awrmodel.NormalizedSignals
	severity string
	score    float64
	reasons  []string
}

// filterProblematic applies the seven severity-tiered criteria in order,
// scores each flagged SQL, and keeps at most three, dropping to two or one
// when the score/severity gap between ranked candidates says the tail
// isn't worth reporting.
func filterProblematic(topSQL []awrmodel.NormalizedSignals) []scoredSignal {
	var flagged []scoredSignal
	for _, s := range topSQL {
		severity, reasons := classifySeverity(s)
		if severity == "" {
			continue
		}
		score := dbaScore(s)
		flagged = append(flagged, scoredSignal{signals: s, severity: severity, score: score, reasons: reasons})
	}

	sort.Slice(flagged, func(i, j int) bool { return flagged[i].score > flagged[j].score })

	if len(flagged) > maxProblematic {
		flagged = flagged[:maxProblematic]
	}
	if len(flagged) == 3 && flagged[2].score < flagged[0].score*secondTierDropRatio {
		flagged = flagged[:2]
	}
	if len(flagged) >= 2 {
		highCount := 0
		var sole scoredSignal
		for _, f := range flagged {
			if f.severity == "HIGH" || f.severity == "CRITICAL" {
				highCount++
				sole = f
			}
		}
		if highCount == soleHighSeverityDrop {
			flagged = []scoredSignal{sole}
		}
	}
	return flagged
}

func isHighOrMedium(severity string) bool {
	return severity == "HIGH" || severity == "MEDIUM" || severity == "CRITICAL"
}

func escalate(current, next string) string {
	rank := map[string]int{"": 0, "MEDIUM": 1, "HIGH": 2}
	if rank[next] > rank[current] {
		return next
	}
	return current
}

// classifySeverity runs the seven criteria in the fixed priority order:
// later criteria can only escalate severity, never downgrade it.
func classifySeverity(s awrmodel.NormalizedSignals) (string, []string) {
	var severity string
	var reasons []string

	elapsed, cpu, execs := s.TotalElapsed, s.CPUTime, s.Executions
	avgExec := s.AvgExecTime
	dbTimePct := s.DBTimePct
	cpuPct := s.CPUPct
	ioPct := s.IOWaitPct

	switch {
	case elapsed >= criticalElapsedTime:
		severity = escalate(severity, "HIGH")
		reasons = append(reasons, fmt.Sprintf("elapsed %.1fs exceeds critical threshold %.1fs", elapsed, criticalElapsedTime))
	case elapsed >= highElapsedTime:
		severity = escalate(severity, "MEDIUM")
		reasons = append(reasons, fmt.Sprintf("elapsed %.1fs exceeds high threshold %.1fs", elapsed, highElapsedTime))
	}

	switch {
	case execs >= criticalExecutions:
		severity = escalate(severity, "HIGH")
		reasons = append(reasons, fmt.Sprintf("%d executions exceeds critical threshold %d", int64(execs), int64(criticalExecutions)))
	case execs >= mediumExecutions && elapsed > highElapsedTime:
		severity = escalate(severity, "MEDIUM")
		reasons = append(reasons, fmt.Sprintf("%d executions with elapsed %.1fs", int64(execs), elapsed))
	}

	switch {
	case avgExec >= criticalAvgElapsed:
		severity = escalate(severity, "HIGH")
		reasons = append(reasons, fmt.Sprintf("avg %.2fs/exec exceeds critical threshold", avgExec))
	case avgExec >= mediumAvgElapsed && execs > mediumExecutions:
		severity = escalate(severity, "MEDIUM")
		reasons = append(reasons, fmt.Sprintf("avg %.2fs/exec with %d executions", avgExec, int64(execs)))
	}

	switch {
	case cpuPct >= highCPUPercentage:
		severity = escalate(severity, "HIGH")
		reasons = append(reasons, fmt.Sprintf("CPU %.1f%% exceeds critical threshold", cpuPct))
	case cpuPct >= mediumCPUPercentage:
		severity = escalate(severity, "MEDIUM")
		reasons = append(reasons, fmt.Sprintf("CPU %.1f%% exceeds medium threshold", cpuPct))
	}

	// pcttotal (workload contribution) forces HIGH outright when critical,
	// matching the source's unconditional severity override.
	switch {
	case dbTimePct >= criticalWorkloadPct:
		severity = "HIGH"
		reasons = append(reasons, fmt.Sprintf("%.1f%% of DB time, dominant contributor", dbTimePct))
	case dbTimePct >= highWorkloadPct:
		severity = escalate(severity, "MEDIUM")
		reasons = append(reasons, fmt.Sprintf("%.1f%% of DB time", dbTimePct))
	}

	if ioPct >= highIOPercentage {
		severity = escalate(severity, "MEDIUM")
		reasons = append(reasons, fmt.Sprintf("IO wait %.1f%% is significant", ioPct))
	}

	// cpu_time (absolute seconds) forces HIGH outright when critical.
	switch {
	case cpu >= criticalCPUTime:
		severity = "HIGH"
		reasons = append(reasons, fmt.Sprintf("CPU time %.1fs exceeds critical threshold", cpu))
	case cpu >= highCPUTime && elapsed > criticalElapsedTime:
		severity = escalate(severity, "MEDIUM")
		reasons = append(reasons, fmt.Sprintf("CPU time %.1fs with elapsed %.1fs", cpu, elapsed))
	}

	return severity, reasons
}

// dbaScore is the fixed priority-ranking formula: a weighted sum of
// elapsed, CPU, workload share, execution count and per-execution cost,
// each normalized against its own threshold.
func dbaScore(s awrmodel.NormalizedSignals) float64 {
	score := (s.TotalElapsed/100)*40 +
		(s.CPUTime/50)*25 +
		(s.DBTimePct/20)*20 +
		minFloat((s.Executions/5000)*10, 10) +
		minFloat((s.AvgExecTime/2)*5, 5)
	return round2(score)
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}

// buildFinding runs one flagged SQL through execution-pattern
// classification, the Decision Engine, the Dynamic SQL Generator, the Fix
// Recommendation Formatter and the Load Reduction Engine, and assembles
// the resulting Finding.
func buildFinding(p scoredSignal, dominant DominantWait, ash ASHContext) awrmodel.Finding {
	s := p.signals

	effectiveIOPct := s.IOWaitPct
	if ash.HasIOPercent && ash.IOPercent > 0 {
		effectiveIOPct = ash.IOPercent
	}

	execPattern := classifyExecutionPattern(s)
	interpretation := buildInterpretation(s, effectiveIOPct)
	explanation := buildExplanation(s, effectiveIOPct)

	decisionResult := decision.Evaluate(s)
	generatedSQL := sqlgen.GenerateAll(decisionResult)
	actionPlan := sqlgen.GenerateActionPlan(decisionResult)

	lrSignals := loadreduction.FromNormalizedSignals(s)
	lrSignals.PlanInstability = mentionsPlanInstability(interpretation)
	lrSignals.FullTableScan = mentionsFullTableScan(interpretation)
	lrResult := loadreduction.Analyze(lrSignals)

	fixSignals := fixformat.Signals{
		SQLID:           s.SQLID,
		IOWaitPct:       effectiveIOPct,
		CPUPct:          s.CPUPct,
		AvgExecTime:     s.AvgExecTime,
		Executions:      s.Executions,
		TotalElapsed:    s.TotalElapsed,
		PlanInstability: lrSignals.PlanInstability,
		FullTableScan:   lrSignals.FullTableScan,
		HighIODetected:  strings.Contains(strings.ToLower(interpretation), "i/o") || strings.Contains(strings.ToLower(interpretation), "disk read"),
	}
	fixSections := fixformat.Generate(fixSignals)

	priorityDesc := priorityDescription(p.severity)
	expectedImprovement := expectedImprovement(decisionResult, p.severity)

	preview := s.SQLText
	if len(preview) > 200 {
		preview = preview[:200]
	}

	return awrmodel.Finding{
		SQLID:         s.SQLID,
		Severity:      p.severity,
		PriorityScore: p.score,
		RiskLevel:     p.severity,
		Explanation:   explanation,
		ProblemSummary: buildProblemSummary(s, effectiveIOPct, p.reasons),
		TechnicalParameters: awrmodel.TechnicalParameters{
			SQLID:                   s.SQLID,
			Elapsed:                 s.TotalElapsed,
			CPU:                     s.CPUTime,
			AvgTime:                 s.AvgExecTime,
			Executions:              s.Executions,
			RiskLevel:               p.severity,
			TotalElapsedTimeS:       s.TotalElapsed,
			CPUTimeS:                s.CPUTime,
			AvgElapsedPerExecS:      s.AvgExecTime,
			ContributionToDBTimePct: s.DBTimePct,
			CPUPercentage:           s.CPUPct,
			IOPercentage:            effectiveIOPct,
		},
		ExecutionPattern:  execPattern,
		DBAInterpretation: interpretation,
		Recommendations: awrmodel.Recommendations{
			TuningPriority:      p.severity,
			PriorityDescription: priorityDesc,
			WhatDBAShouldDoNext: formatNextSteps(decisionResult, generatedSQL),
			DBAActionPlan:       actionPlan,
			ExpectedImprovement: expectedImprovement,
			SQLCategory:         decisionResult.Category,
			AllowedActions:      decisionResult.AllowedActions,
			BlockedActions:      decisionResult.BlockedActions,
			WhyShown:            decisionResult.WhyShown,
			WhyHidden:           decisionResult.WhyHidden,
		},
		FixRecommendations:   fixSections,
		LoadReductionActions: lrResult.Actions,
		GeneratedSQL:         generatedSQL,
		SQLTextPreview:       preview,
	}
}

func mentionsPlanInstability(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "plan") && (strings.Contains(lower, "unstable") || strings.Contains(lower, "regression") || strings.Contains(lower, "instability"))
}

func mentionsFullTableScan(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "full scan") || strings.Contains(lower, "table scan") || strings.Contains(lower, "full table")
}

// classifyExecutionPattern buckets a SQL's call shape into one of four
// named patterns, each carrying its own DBA assessment text.
func classifyExecutionPattern(s awrmodel.NormalizedSignals) awrmodel.ExecutionPattern {
	switch {
	case s.Executions > 5000:
		return awrmodel.ExecutionPattern{
			PatternType:   "EXTREME_HIGH_FREQUENCY",
			Description:   fmt.Sprintf("Extreme high frequency: %d executions", int64(s.Executions)),
			DBAAssessment: "Volume this high means every millisecond per call matters; application-level batching or caching will move the needle far more than plan tuning.",
			IsHighFreq:    true,
		}
	case s.Executions > 1000:
		return awrmodel.ExecutionPattern{
			PatternType:   "HIGH_FREQUENCY",
			Description:   fmt.Sprintf("High frequency: %d executions", int64(s.Executions)),
			DBAAssessment: "Frequent caller; small per-execution gains compound quickly across this many calls.",
			IsHighFreq:    true,
		}
	case s.Executions > 100 && s.AvgExecTime > 1.0:
		return awrmodel.ExecutionPattern{
			PatternType:   "SUSTAINED_SLOW_LOAD",
			Description:   fmt.Sprintf("Sustained slow load: %d executions averaging %.2fs each", int64(s.Executions), s.AvgExecTime),
			DBAAssessment: "Consistent workload contributor with real per-call cost; plan tuning produces a reliable, cumulative win here.",
			IsSustained:   true,
		}
	case s.Executions < 100 && s.TotalElapsed > 50:
		return awrmodel.ExecutionPattern{
			PatternType:   "BURSTY_HIGH_IMPACT",
			Description:   fmt.Sprintf("Bursty high impact: %.1fs across only %d executions", s.TotalElapsed, int64(s.Executions)),
			DBAAssessment: "Few heavyweight runs dominate the total; look for structural plan issues like Cartesian joins or large full scans.",
			IsBursty:      true,
		}
	default:
		return awrmodel.ExecutionPattern{
			PatternType:   "FREQUENT_LIGHT_IMPACT",
			Description:   fmt.Sprintf("Frequent but light impact: %d executions", int64(s.Executions)),
			DBAAssessment: "Individual executions are cheap; this is volume-driven aggregate load, not a tuning target.",
			IsHighFreq:    s.Executions > 500,
		}
	}
}

// buildInterpretation condenses the DBA-style interpretation into plain,
// signal-driven sentences: CPU, IO, execution shape and common SQL-text
// smells, in the same priority order as the source reasoning.
func buildInterpretation(s awrmodel.NormalizedSignals, ioPct float64) string {
	var lines []string

	switch {
	case s.CPUPct > 85:
		lines = append(lines, "CPU-intensive SQL: the optimizer likely chose a poor plan, missing indexes forcing full scans or stale stats misleading cardinality estimates.")
	case s.CPUTime > 30:
		lines = append(lines, fmt.Sprintf("High CPU consumption (%.1fs): full table scans, complex operations or hash joins on non-indexed columns.", s.CPUTime))
	}

	switch {
	case ioPct > 40:
		lines = append(lines, fmt.Sprintf("I/O-heavy operation (%.1f%% wait): missing indexes forcing full table scans or inefficient data access patterns.", ioPct))
	case ioPct > 20:
		lines = append(lines, fmt.Sprintf("Moderate I/O activity (%.1f%%): not the primary bottleneck but a contributing factor.", ioPct))
	}

	switch {
	case s.Executions > 2000 && s.AvgExecTime < 0.1:
		lines = append(lines, fmt.Sprintf("Fast execution (%.4fs) called %d times: an application issue, inefficient loops, missing caching, or lack of batching.", s.AvgExecTime, int64(s.Executions)))
	case s.Executions < 50 && s.TotalElapsed > 100:
		lines = append(lines, fmt.Sprintf("Slow batch/report query: %.1fs across %d executions, check for Cartesian joins or full scans on large tables.", s.TotalElapsed, int64(s.Executions)))
	}

	if s.HasSQLText {
		upper := strings.ToUpper(s.SQLText)
		if strings.Contains(upper, "SELECT *") {
			lines = append(lines, "Selecting all columns (SELECT *) wastes I/O bandwidth and network overhead; specify only needed columns.")
		}
		if strings.Count(upper, "JOIN") >= 4 {
			lines = append(lines, fmt.Sprintf("Complex multi-join query (%d joins) increases optimizer complexity; verify every join has a supporting index.", strings.Count(upper, "JOIN")))
		}
		if !strings.Contains(upper, "WHERE") && strings.Contains(upper, "SELECT") && strings.Contains(upper, "FROM") {
			lines = append(lines, "No WHERE clause means a full table scan; add filtering conditions.")
		}
		if strings.Contains(upper, "DISTINCT") && (strings.Contains(upper, "ORDER BY") || strings.Contains(upper, "GROUP BY")) {
			lines = append(lines, "Heavy DISTINCT with sorting/grouping forces expensive sort operations; check whether DISTINCT is really needed, it often masks a bad join creating duplicates.")
		}
	}

	if s.TotalElapsed > 60 && ioPct < 20 && s.CPUPct > 60 {
		lines = append(lines, "Long elapsed time with high CPU but low I/O suggests parallel processing or compute-heavy in-memory operations.")
	}
	if s.Executions > 50 && (s.CPUPct > 50 || ioPct > 30) {
		lines = append(lines, "High resource usage with frequent execution suggests stale statistics misleading the optimizer; refresh table statistics.")
	}

	if len(lines) == 0 {
		lines = append(lines, "Performance degradation detected; run SQL Tuning Advisor and review actual vs estimated rows in the plan.")
	}

	return strings.Join(lines, " ")
}

// buildExplanation condenses the pattern-matched "why problematic"
// reasoning into a single pipe-joined line, same priority order as the
// source.
func buildExplanation(s awrmodel.NormalizedSignals, ioPct float64) string {
	var parts []string

	switch {
	case s.CPUPct >= 70 && s.Executions >= 100:
		parts = append(parts, "high CPU + high executions -> consistent workload stressor")
	case s.CPUPct >= 50 && s.Executions >= 100:
		parts = append(parts, "elevated CPU with frequent executions -> ongoing performance drain")
	}

	switch {
	case s.TotalElapsed >= 50 && s.Executions < 100:
		parts = append(parts, "high elapsed + low executions -> few heavy queries causing significant load")
	case s.TotalElapsed >= 20 && s.Executions < 50:
		parts = append(parts, "long-running with few executions -> batch/report query")
	}

	switch {
	case ioPct >= 40:
		parts = append(parts, "high IO wait -> disk bound SQL, likely missing indexes or full scans")
	case ioPct >= 25:
		parts = append(parts, "elevated IO waits -> inefficient data access pattern")
	}

	if s.Executions >= 1000 && s.AvgExecTime < 0.1 {
		parts = append(parts, "very high frequency with fast execution -> application-level optimization needed")
	}

	switch {
	case s.DBTimePct >= 25:
		parts = append(parts, fmt.Sprintf("dominant workload contribution (%.1f%% of DB time)", s.DBTimePct))
	case s.DBTimePct >= 10:
		parts = append(parts, fmt.Sprintf("significant workload impact (%.1f%% of DB time)", s.DBTimePct))
	}

	if len(parts) == 0 {
		switch {
		case s.TotalElapsed >= 20:
			parts = append(parts, "elevated elapsed time -> requires execution plan review")
		case s.CPUTime >= 10:
			parts = append(parts, "notable CPU consumption -> inefficient execution plan")
		default:
			parts = append(parts, "performance issue detected -> requires DBA analysis")
		}
	}

	return strings.Join(parts, " | ")
}

func buildProblemSummary(s awrmodel.NormalizedSignals, ioPct float64, reasons []string) string {
	return fmt.Sprintf("%s contributes %.1f%% of DB time across %d executions (%.1fs elapsed, %.1fs CPU, %.1f%% IO wait). %s",
		s.SQLID, s.DBTimePct, int64(s.Executions), s.TotalElapsed, s.CPUTime, ioPct, strings.Join(reasons, "; "))
}

func priorityDescription(severity string) string {
	switch severity {
	case "CRITICAL":
		return "CRITICAL - production impacting, requires immediate action"
	case "HIGH":
		return "HIGH - major performance drain, address within 24 hours"
	case "MEDIUM":
		return "MEDIUM - notable impact, schedule tuning this week"
	default:
		return "LOW - minor optimization opportunity"
	}
}

func formatNextSteps(d awrmodel.DecisionResult, generated []awrmodel.GeneratedSQL) string {
	var lines []string
	lines = append(lines, fmt.Sprintf("Workload category: %s", d.Category))
	for _, g := range generated {
		lines = append(lines, fmt.Sprintf("%s: %s", g.Action, g.Intent))
	}
	if len(d.WhyHidden) > 0 {
		lines = append(lines, "Not recommended for this workload: "+strings.Join(d.WhyHidden, "; "))
	}
	return strings.Join(lines, "\n")
}

func expectedImprovement(d awrmodel.DecisionResult, severity string) string {
	s := d.Signals
	switch d.Category {
	case awrmodel.CategoryChatty:
		return fmt.Sprintf("Application-level caching could cut database calls by 50-80%% (currently %d executions). Database-side tuning is not recommended; the query already runs in %.1fms.", int64(s.Executions), s.AvgExecTime*1000)
	case awrmodel.CategoryBatch:
		if s.IOWaitPct > 80 {
			return fmt.Sprintf("Index optimization could cut elapsed time by 60-80%% (currently %.1f%% IO wait).", s.IOWaitPct)
		}
		return "30-50% reduction in elapsed time is possible through execution plan optimization."
	case awrmodel.CategoryIOBound:
		return fmt.Sprintf("Proper indexing could cut IO wait from %.1f%% to under 20%%, yielding 40-70%% elapsed time reduction.", s.IOWaitPct)
	case awrmodel.CategoryCPUBound:
		return fmt.Sprintf("Query simplification or hints could cut CPU consumption by 30-50%% (currently %.1f%% CPU).", s.CPUPct)
	default:
		switch severity {
		case "CRITICAL":
			return "40-70% reduction in elapsed time with a proper optimization strategy."
		case "HIGH":
			return "30-50% reduction in elapsed time with targeted tuning."
		default:
			return "20-40% performance improvement possible with optimization."
		}
	}
}

// buildConclusion assembles the closing summary: severity counts, the
// dominant issue pattern, and an expected-outcome estimate.
func buildConclusion(findings []awrmodel.Finding) string {
	if len(findings) == 0 {
		return "No high-risk SQL identified. All query patterns are within acceptable thresholds; continue standard monitoring."
	}

	var critical, high, medium int
	var totalDBImpact, totalCPUPct float64
	var cpuDominant, frequencyIssues int
	for _, f := range findings {
		switch f.Severity {
		case "CRITICAL":
			critical++
		case "HIGH":
			high++
		case "MEDIUM":
			medium++
		}
		totalDBImpact += f.TechnicalParameters.ContributionToDBTimePct
		totalCPUPct += f.TechnicalParameters.CPUPercentage
		if strings.Contains(f.Explanation, "CPU") {
			cpuDominant++
		}
		if strings.Contains(strings.ToLower(f.Explanation), "frequency") {
			frequencyIssues++
		}
	}

	total := len(findings)
	avgCPUPct := totalCPUPct / float64(total)

	var parts []string
	switch {
	case critical > 0:
		parts = append(parts, fmt.Sprintf("Found %d critical issue(s). Production-impacting queries need immediate action.", critical))
	case high > 0:
		parts = append(parts, fmt.Sprintf("Found %d high priority issue(s). These queries are causing notable performance degradation.", high))
	default:
		parts = append(parts, fmt.Sprintf("Identified %d medium priority issue(s). Performance optimization opportunities detected.", medium))
	}

	if totalDBImpact > 50 {
		parts = append(parts, fmt.Sprintf("High impact pattern: %.1f%% DB time consumption, a major workload contributor.", totalDBImpact))
	}
	if float64(cpuDominant) >= float64(total)*0.5 && avgCPUPct > 70 {
		parts = append(parts, fmt.Sprintf("CPU-bound system: average %.0f%% CPU usage, execution plan optimization needed.", avgCPUPct))
	} else if float64(frequencyIssues) >= float64(total)*0.5 {
		parts = append(parts, "Frequency pattern: high-execution queries detected, application-level optimization required.")
	}

	switch total {
	case 1:
		parts = append(parts, "Focused problem: a single SQL root cause, a targeted fix will yield significant improvement.")
	case 2:
		parts = append(parts, "Dual bottleneck: two primary performance drivers, a systematic approach is recommended.")
	default:
		parts = append(parts, fmt.Sprintf("Multiple targets: %d bottlenecks identified, prioritize by severity score.", total))
	}

	switch {
	case critical > 0 || totalDBImpact > 40:
		parts = append(parts, "Expected results: 40-60% performance improvement achievable with proper tuning.")
	case high > 0:
		parts = append(parts, "Expected results: 25-40% performance gains expected from optimization.")
	default:
		parts = append(parts, "Expected results: 15-25% improvement potential through tuning.")
	}

	return strings.Join(parts, " ")
}
