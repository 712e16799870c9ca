package sqlgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbaworks/awr-advisor/internal/awrmodel"
	"github.com/dbaworks/awr-advisor/internal/decision"
)

func s(sqlID string, exec, elapsed, cpuPct, ioWaitPct float64) awrmodel.NormalizedSignals {
	sig := awrmodel.NormalizedSignals{
		SQLID:        sqlID,
		Executions:   exec,
		TotalElapsed: elapsed,
		CPUPct:       cpuPct,
		IOWaitPct:    ioWaitPct,
	}
	if exec > 0 {
		sig.AvgExecTime = elapsed / exec
	}
	return sig
}

func TestFingerprintFormat(t *testing.T) {
	sig := s("SQL1", 100, 50.0, 10.0, 20.0)
	sig.AvgExecTime = 0.5
	fp := Fingerprint(sig)
	assert.Equal(t, "exec=100|avgtime=0.5000|cpu=10.0|io=20.0", fp)
}

func TestDynamicXPlanTokensVaryWithSignals(t *testing.T) {
	low := decision.Evaluate(s("LOW", 200, 300, 10, 20))
	high := decision.Evaluate(s("HIGH", 200, 300, 95, 95))

	lowArtifact := GenerateDynamicXPlan(low)
	highArtifact := GenerateDynamicXPlan(high)

	assert.NotEqual(t, lowArtifact.SQL, highArtifact.SQL)
	assert.Contains(t, highArtifact.SQL, "+PARALLEL")
	assert.Contains(t, highArtifact.SQL, "+PARTITION")
	assert.Contains(t, highArtifact.Explanation, "CRITICAL")
}

func TestAssembleFormatIsCanonicallyOrdered(t *testing.T) {
	got := assembleFormat([]string{"+PARALLEL", "ALLSTATS LAST", "+COST", "+IOSTATS"})
	assert.Equal(t, "ALLSTATS LAST +COST +IOSTATS +PARALLEL", got)
}

func TestAddUniqueIsIdempotent(t *testing.T) {
	tokens := []string{"BASIC"}
	tokens = addUnique(tokens, "BASIC")
	tokens = addUnique(tokens, "+COST")
	assert.Equal(t, []string{"BASIC", "+COST"}, tokens)
}

func TestChattyCommandsSuppressPlanAndAdvisor(t *testing.T) {
	sig := awrmodel.NormalizedSignals{SQLID: "CHATTY1", Executions: 8000, TotalElapsed: 40, CPUTime: 5, CPUPct: 12, IOWaitPct: 5, AvgExecTime: 0.005}
	d := decision.Evaluate(sig)
	require.Equal(t, awrmodel.CategoryChatty, d.Category)

	cmds := GenerateAll(d)
	for _, c := range cmds {
		assert.NotContains(t, c.SQL, "DBMS_XPLAN")
		assert.NotContains(t, c.SQL, "DBMS_ADVISOR")
		assert.NotContains(t, c.SQL, "DBMS_SQLTUNE")
	}
}

func TestBatchCommandsIncludeAccessAdvisor(t *testing.T) {
	sig := s("BATCH1", 10, 120, 16, 85)
	sig.CPUTime = 20
	d := decision.Evaluate(sig)
	require.Equal(t, awrmodel.CategoryBatch, d.Category)

	cmds := GenerateAll(d)
	var sawAdvisor, sawXPlan bool
	for _, c := range cmds {
		if strings.Contains(c.SQL, "DBMS_ADVISOR") {
			sawAdvisor = true
		}
		if strings.Contains(c.SQL, "DBMS_XPLAN") {
			sawXPlan = true
		}
	}
	assert.True(t, sawAdvisor)
	assert.True(t, sawXPlan)
}

func TestEveryArtifactCarriesItsFingerprint(t *testing.T) {
	sig := s("IO1", 200, 300, 10, 92)
	d := decision.Evaluate(sig)
	fp := Fingerprint(sig)
	for _, c := range GenerateAll(d) {
		assert.Equal(t, fp, c.SignalFingerprint)
	}
}

func TestVerifyDynamicGenerationAcrossCategories(t *testing.T) {
	result := VerifyDynamicGeneration(s("A", 10, 120, 16, 85), s("B", 8000, 40, 12, 5))
	assert.True(t, result.CategoriesDiffer)
	assert.True(t, result.ProofPassed)
}

func TestVerifyDynamicGenerationWithinSameCategoryRequiresSQLDiff(t *testing.T) {
	a := awrmodel.NormalizedSignals{SQLID: "CPU1", Executions: 50, TotalElapsed: 100, CPUTime: 85, CPUPct: 85, IOWaitPct: 10, AvgExecTime: 2}
	b := awrmodel.NormalizedSignals{SQLID: "CPU2", Executions: 60, TotalElapsed: 110, CPUTime: 95, CPUPct: 95, IOWaitPct: 10, AvgExecTime: 1.8}

	result := VerifyDynamicGeneration(a, b)
	require.False(t, result.CategoriesDiffer)
	assert.True(t, result.SQLTextDiffers, "same-category signals with different fingerprints must produce different SQL text")
	assert.True(t, result.ProofPassed)
}

func TestActionPlanVariesWithSignals(t *testing.T) {
	mild := decision.Evaluate(s("B1", 10, 60, 16, 40))
	urgent := decision.Evaluate(s("B2", 10, 250, 16, 95))
	require.Equal(t, awrmodel.CategoryBatch, mild.Category)
	require.Equal(t, awrmodel.CategoryBatch, urgent.Category)

	mildPlan := GenerateActionPlan(mild)
	urgentPlan := GenerateActionPlan(urgent)

	assert.NotEqual(t, mildPlan.Immediate, urgentPlan.Immediate)
}

func TestLowPriorityActionPlanHasNoWork(t *testing.T) {
	d := decision.Evaluate(s("LOW1", 30, 3.0, 30.0, 10.0))
	require.Equal(t, awrmodel.CategoryLowPriority, d.Category)
	plan := GenerateActionPlan(d)
	assert.Equal(t, []string{"None required"}, plan.Immediate)
}

func labels(cmds []awrmodel.GeneratedSQL) []string {
	out := make([]string, len(cmds))
	for i, c := range cmds {
		out[i] = c.Label
	}
	return out
}

// TestIOBoundFirstArtifactIsObjectIOAnalysis covers S3 from spec.md §8:
// the first artifact generated for IO-bound SQL must be labeled
// OBJECT_IO_ANALYSIS, ahead of any plan dump or advisor call.
func TestIOBoundFirstArtifactIsObjectIOAnalysis(t *testing.T) {
	sig := s("IO01", 200, 300, 10, 92)
	d := decision.Evaluate(sig)
	require.Equal(t, awrmodel.CategoryIOBound, d.Category)

	cmds := GenerateAll(d)
	require.NotEmpty(t, cmds)
	assert.Equal(t, "OBJECT_IO_ANALYSIS", cmds[0].Label)
}

// TestCPUBoundArtifactsCarryPerArtifactLabels covers S4: CPU-bound SQL
// with cpu_pct > 80 must include CPU_COST_ANALYSIS, JOIN_METHOD_ANALYSIS,
// and CARTESIAN_DETECTION artifacts, each a distinct diagnostic label
// from the closed ActionType vocabulary those artifacts gate on.
func TestCPUBoundArtifactsCarryPerArtifactLabels(t *testing.T) {
	sig := awrmodel.NormalizedSignals{SQLID: "CPU01", Executions: 50, TotalElapsed: 100, CPUTime: 85, CPUPct: 85, IOWaitPct: 10}
	d := decision.Evaluate(sig)
	require.Equal(t, awrmodel.CategoryCPUBound, d.Category)

	got := labels(GenerateAll(d))
	assert.Contains(t, got, "CPU_COST_ANALYSIS")
	assert.Contains(t, got, "JOIN_METHOD_ANALYSIS")
	assert.Contains(t, got, "CARTESIAN_DETECTION")
}

// TestChattyArtifactsIncludeApplicationPatternAnalysis covers S2: chatty
// SQL must include an APPLICATION_PATTERN_ANALYSIS artifact alongside the
// closed-vocabulary suppression already covered by
// TestChattyCommandsSuppressPlanAndAdvisor.
func TestChattyArtifactsIncludeApplicationPatternAnalysis(t *testing.T) {
	sig := awrmodel.NormalizedSignals{SQLID: "CHATTY1", Executions: 8000, TotalElapsed: 40, CPUTime: 5, CPUPct: 12, IOWaitPct: 5, AvgExecTime: 0.005}
	d := decision.Evaluate(sig)
	require.Equal(t, awrmodel.CategoryChatty, d.Category)

	got := labels(GenerateAll(d))
	assert.Contains(t, got, "APPLICATION_PATTERN_ANALYSIS")
}
