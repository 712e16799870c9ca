package fixformat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIODominantTriggersAccessAdvisor(t *testing.T) {
	sections := Generate(Signals{SQLID: "S1", IOWaitPct: 75})
	var kinds []string
	for _, s := range sections {
		kinds = append(kinds, s.Kind)
	}
	assert.Contains(t, kinds, "IO_REDUCTION")
	assert.Contains(t, kinds, "SQL_ACCESS_ADVISOR")
}

func TestSectionsSortedByPriority(t *testing.T) {
	sections := Generate(Signals{SQLID: "S2", IOWaitPct: 95, CPUPct: 60})
	require.True(t, len(sections) >= 2)
	for i := 1; i < len(sections); i++ {
		assert.LessOrEqual(t, priorityOrder[sections[i-1].Priority], priorityOrder[sections[i].Priority])
	}
}

func TestNoSignalsYieldsNoSections(t *testing.T) {
	sections := Generate(Signals{SQLID: "S3", IOWaitPct: 5, CPUPct: 5, TotalElapsed: 5})
	assert.Empty(t, sections)
}

func TestHighImpactFallsBackToGeneralOptimization(t *testing.T) {
	sections := Generate(Signals{SQLID: "S4", IOWaitPct: 5, CPUPct: 5, TotalElapsed: 45})
	require.Len(t, sections, 1)
	assert.Equal(t, "GENERAL_OPTIMIZATION", sections[0].Kind)
}

func TestBatchPatternTriggersParallelSection(t *testing.T) {
	sections := Generate(Signals{SQLID: "S5", AvgExecTime: 12, Executions: 5})
	require.Len(t, sections, 1)
	assert.Equal(t, "PARALLEL_EXECUTION", sections[0].Kind)
}

func TestSummaryReflectsSectionCount(t *testing.T) {
	sections := Generate(Signals{SQLID: "S6", IOWaitPct: 90})
	summary := Summary("S6", sections)
	assert.Contains(t, summary, "S6")
	assert.Contains(t, summary, "Total Fix Sections: 2")
}
