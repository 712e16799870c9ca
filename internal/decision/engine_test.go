package decision

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

func TestGateCategories(t *testing.T) {
	cases := []struct {
		name string
		s    awrmodel.NormalizedSignals
		want awrmodel.SQLCategory
	}{
		{"S1 batch", sig("BATCH01", 10, 120.0, 20.0, 16.0, 85.0, 18.0), awrmodel.CategoryBatch},
		{"S3 io-bound", sig("IO01", 200, 300.0, 30.0, 10.0, 92.0, 0), awrmodel.CategoryIOBound},
		{"S4 cpu-bound", sig("CPU01", 50, 100.0, 85.0, 85.0, 10.0, 0), awrmodel.CategoryCPUBound},
		{"S5 low priority", sig("LOW1", 30, 3.0, 1.0, 30.0, 10.0, 0), awrmodel.CategoryLowPriority},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Evaluate(tc.s)
			assert.Equal(t, tc.want, got.Category)
		})
	}
}

func TestChattyGateUsesExplicitAvgExecTime(t *testing.T) {
	s := awrmodel.NormalizedSignals{
		SQLID: "CHATTY1", Executions: 8000, TotalElapsed: 40.0, CPUTime: 5.0,
		IOWaitPct: 5.0, CPUPct: 12.0, AvgExecTime: 0.005,
	}
	got := Evaluate(s)
	assert.Equal(t, awrmodel.CategoryChatty, got.Category)
}

func TestAllowedAndBlockedAreDisjoint(t *testing.T) {
	cases := []awrmodel.NormalizedSignals{
		sig("A", 10, 120.0, 20.0, 16.0, 85.0, 18.0),
		sig("B", 8000, 40.0, 5.0, 12.0, 5.0, 0),
		sig("C", 200, 300.0, 30.0, 10.0, 92.0, 0),
		sig("D", 50, 100.0, 85.0, 85.0, 10.0, 0),
		sig("E", 150, 200.0, 60.0, 45.0, 45.0, 20.0),
		sig("F", 30, 3.0, 1.0, 30.0, 10.0, 0),
	}
	for _, s := range cases {
		d := Evaluate(s)
		for _, a := range d.AllowedActions {
			assert.False(t, IsActionBlocked(d, a), "action %s must not be both allowed and blocked for %s", a, d.Category)
		}
		if len(d.BlockedActions) > 0 {
			assert.NotEmpty(t, d.WhyHidden, "category %s blocks actions but has no why_hidden", d.Category)
		}
	}
}

func TestMixedProfileGateRequiresThreeTraits(t *testing.T) {
	s := sig("MIX1", 150, 200.0, 60.0, 45.0, 45.0, 20.0)
	s.AvgExecTime = 200.0 / 150
	got := Evaluate(s)
	require.Equal(t, awrmodel.CategoryMixed, got.Category)
	assert.Contains(t, got.AllowedActions, awrmodel.ActionIndexReview)
	assert.Contains(t, got.AllowedActions, awrmodel.ActionJoinMethodReview)
}

func TestLowPriorityHasSingleMonitorAction(t *testing.T) {
	got := Evaluate(sig("LOW1", 30, 3.0, 1.0, 30.0, 10.0, 0))
	require.Equal(t, awrmodel.CategoryLowPriority, got.Category)
	assert.Equal(t, []awrmodel.ActionType{awrmodel.ActionMonitorOnly}, got.AllowedActions)
}
