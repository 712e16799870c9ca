package loadreduction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIODominantAlsoTriggersMissingIndex(t *testing.T) {
	result := Analyze(Signals{SQLID: "S1", IOWaitPct: 80})
	assert.Contains(t, result.RootCauses, "IO_DOMINANT")
	assert.Contains(t, result.RootCauses, "MISSING_INDEX")
	require.Len(t, result.Actions, 2)
	assert.Equal(t, "1", result.Actions[0].Priority)
}

func TestActionsSortedByPriority(t *testing.T) {
	result := Analyze(Signals{SQLID: "S2", IOWaitPct: 90, CPUPct: 80, PlanInstability: true})
	var lastPrio string
	for i, a := range result.Actions {
		if i > 0 {
			assert.LessOrEqual(t, lastPrio, a.Priority)
		}
		lastPrio = a.Priority
	}
}

func TestNoRootCauseYieldsNoActions(t *testing.T) {
	result := Analyze(Signals{SQLID: "S3", IOWaitPct: 5, CPUPct: 5, AvgExecTime: 0.1, Executions: 1000})
	assert.Empty(t, result.Actions)
	assert.Contains(t, result.Summary, "No significant load reduction")
}

func TestBatchPatternYieldsPXAction(t *testing.T) {
	result := Analyze(Signals{SQLID: "S4", AvgExecTime: 10, Executions: 5})
	require.Len(t, result.Actions, 1)
	assert.Equal(t, "PX_INEFFECTIVE", result.Actions[0].RootCause)
}
