package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbaworks/awr-advisor/internal/awrmodel"
)

func sig(sqlID string, exec, elapsed, cpuTime, cpuPct, ioWaitPct, dbTimePct float64) awrmodel.NormalizedSignals {
	s := awrmodel.NormalizedSignals{
		SQLID:        sqlID,
		Executions:   exec,
		TotalElapsed: elapsed,
		CPUTime:      cpuTime,
		CPUPct:       cpuPct,
		IOWaitPct:    ioWaitPct,
		DBTimePct:    dbTimePct,
	}
	if exec > 0 {
		s.AvgExecTime = elapsed / exec
	}
	return s
}

func TestClassifySeverityEscalatesAcrossCriteria(t *testing.T) {
	s := sig("SQL1", 600, 45.0, 25.0, 55.0, 10.0, 18.0)
	severity, reasons := classifySeverity(s)
	assert.Equal(t, "HIGH", severity)
	assert.NotEmpty(t, reasons)
}

func TestClassifySeverityLeavesHealthySQLUnflagged(t *testing.T) {
	severity, reasons := classifySeverity(sig("HEALTHY", 5, 0.2, 0.05, 5, 2, 0.5))
	assert.Empty(t, severity)
	assert.Empty(t, reasons)
}

func TestDBAScoreMatchesWeightedFormula(t *testing.T) {
	s := sig("SQL1", 1000, 50, 20, 0, 0, 10)
	got := dbaScore(s)
	want := round2((50.0/100)*40 + (20.0/50)*25 + (10.0/20)*20 + minFloat((1000.0/5000)*10, 10) + minFloat((0.05/2)*5, 5))
	assert.InDelta(t, want, got, 0.001)
}

func TestFilterProblematicCapsAtThree(t *testing.T) {
	top := []awrmodel.NormalizedSignals{
		sig("A", 600, 60, 25, 60, 10, 20),
		sig("B", 600, 55, 22, 55, 10, 19),
		sig("C", 600, 50, 20, 50, 10, 18),
		sig("D", 600, 45, 18, 45, 10, 17),
	}
	got := filterProblematic(top)
	assert.LessOrEqual(t, len(got), maxProblematic)
}

func TestFilterProblematicDropsLowTailBelowRatio(t *testing.T) {
	top := []awrmodel.NormalizedSignals{
		sig("BIG", 600, 100, 40, 80, 10, 30),
		sig("MED", 200, 20, 8, 35, 10, 8),
		sig("TINY", 60, 11, 1, 31, 5, 6),
	}
	got := filterProblematic(top)
	if len(got) == 3 {
		assert.GreaterOrEqual(t, got[2].score, got[0].score*secondTierDropRatio)
	}
}

func TestClassifyExecutionPatternBurstyHighImpact(t *testing.T) {
	p := classifyExecutionPattern(sig("SQL1", 10, 80, 40, 0, 0, 0))
	assert.Equal(t, "BURSTY_HIGH_IMPACT", p.PatternType)
	assert.True(t, p.IsBursty)
}

func TestClassifyExecutionPatternExtremeHighFrequency(t *testing.T) {
	p := classifyExecutionPattern(sig("SQL1", 6000, 30, 10, 0, 0, 0))
	assert.Equal(t, "EXTREME_HIGH_FREQUENCY", p.PatternType)
	assert.True(t, p.IsHighFreq)
}

func TestClassifyWorkloadPatternCPUIntensive(t *testing.T) {
	got := classifyWorkloadPattern(600, 250, 100, DominantWait{})
	assert.Equal(t, "CPU_INTENSIVE_HEAVY_LOAD", got)
}

func TestClassifyWorkloadPatternWaitDominated(t *testing.T) {
	got := classifyWorkloadPattern(100, 10, 50, DominantWait{HasValue: true, Name: "db file sequential read", PctOfDBTime: 45})
	assert.Equal(t, "WAIT_EVENT_DOMINATED", got)
}

func TestAnalyzeWorkloadProducesFindingsForFlaggedSQL(t *testing.T) {
	top := []awrmodel.NormalizedSignals{
		sig("SLOWQ", 20, 120, 40, 70, 15, 25),
		sig("FASTQ", 5, 0.5, 0.1, 5, 2, 1),
	}
	env := AnalyzeWorkload(top, 2, DominantWait{}, ASHContext{}, awrmodel.UnifiedMetrics{})
	require.NotEmpty(t, env.ProblematicSQLFindings)
	assert.Equal(t, "SLOWQ", env.ProblematicSQLFindings[0].SQLID)
	assert.Equal(t, awrmodel.StatusOK, env.Status)
	assert.Equal(t, 2, env.TotalAnalyzed)
	assert.NotEmpty(t, env.DBAFinalConclusion)
}

func TestAnalyzeWorkloadEmptyWorkloadYieldsHealthyConclusion(t *testing.T) {
	env := AnalyzeWorkload(nil, 0, DominantWait{}, ASHContext{}, awrmodel.UnifiedMetrics{})
	assert.Empty(t, env.ProblematicSQLFindings)
	assert.Contains(t, env.DBAFinalConclusion, "No high-risk SQL")
}

func TestBuildFindingUsesASHIOPercentOverAWR(t *testing.T) {
	s := sig("IOQ", 20, 120, 30, 40, 10, 20)
	ash := ASHContext{IOPercent: 55, HasIOPercent: true}
	f := buildFinding(scoredSignal{signals: s, severity: "HIGH", score: 50}, DominantWait{}, ash)
	assert.InDelta(t, 55, f.TechnicalParameters.IOPercentage, 0.01)
}

func TestBuildInterpretationFlagsDistinctWithSortOrGroup(t *testing.T) {
	s := sig("DISTQ", 20, 10, 5, 20, 10, 15)
	s.HasSQLText = true
	s.SQLText = "SELECT DISTINCT customer_id FROM orders GROUP BY customer_id"

	interp := buildInterpretation(s, 10)
	assert.Contains(t, interp, "DISTINCT")
	assert.Contains(t, interp, "masks a bad join")
}

func TestBuildFindingTruncatesSQLTextPreview(t *testing.T) {
	s := sig("LONGQ", 20, 120, 30, 40, 10, 20)
	long := ""
	for i := 0; i < 250; i++ {
		long += "x"
	}
	s.SQLText = long
	s.HasSQLText = true
	f := buildFinding(scoredSignal{signals: s, severity: "HIGH", score: 50}, DominantWait{}, ASHContext{})
	assert.Len(t, f.SQLTextPreview, 200)
}
