package unifiedmetrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbaworks/awr-advisor/internal/awrmodel"
)

func testBundle() *awrmodel.Bundle {
	return &awrmodel.Bundle{
		Tables: []*awrmodel.Table{
			{
				Name:    awrmodel.TableSQLStats,
				Columns: []string{"sql_id", "elapsed_time_s", "executions", "cpu_time_s"},
				Rows: [][]string{
					{"a1", "200.0", "10", "50.0"},
					{"a2", "100.0", "20", "30.0"},
				},
			},
			{
				Name:    awrmodel.TableWaitEvents,
				Columns: []string{"event", "time_s"},
				Rows: [][]string{
					{"DB CPU", "80.0"},
					{"DB time", "300.0"},
					{"db file sequential read", "60.0"},
					{"direct path read", "40.0"},
				},
			},
		},
		Metadata: &awrmodel.SnapshotMetadata{
			ParseSuccess: true, HasBeginTime: true, HasEndTime: true,
			BeginTime: time.Date(2026, 7, 15, 9, 0, 0, 0, time.UTC),
			EndTime:   time.Date(2026, 7, 15, 10, 0, 0, 0, time.UTC),
			HasElapsedSeconds:  true,
			ElapsedSeconds:     3600,
			HasInstanceCPUBusy: true,
			InstanceCPUBusyPct: 72.5,
		},
	}
}

func TestComputeAggregatesSQLStats(t *testing.T) {
	c := NewCalculator()
	m := c.Compute("ws1", testBundle(), false)
	assert.InDelta(t, 300.0, m.TotalElapsedTimeS, 0.01)
	assert.InDelta(t, 30.0, m.TotalExecutions, 0.01)
	assert.InDelta(t, 80.0, m.TotalCPUTimeS, 0.01)
}

func TestComputeAggregatesWaitEvents(t *testing.T) {
	c := NewCalculator()
	m := c.Compute("ws1", testBundle(), false)
	assert.InDelta(t, 80.0, m.DBCPUTimeS, 0.01)
	assert.InDelta(t, 300.0, m.DBTimeS, 0.01)
	assert.InDelta(t, 100.0, m.IOWaitTimeS, 0.01)
}

func TestComputeUsesInstanceCPUBusyAsPrimaryCPUSource(t *testing.T) {
	c := NewCalculator()
	m := c.Compute("ws1", testBundle(), false)
	assert.Equal(t, 72.5, m.CPUPercentage)
}

func TestComputeDerivesIOWaitFromDBTime(t *testing.T) {
	c := NewCalculator()
	m := c.Compute("ws1", testBundle(), false)
	assert.InDelta(t, 33.3, m.IOWaitPercentage, 0.1)
}

func TestComputeIsMemoizedPerWorkspace(t *testing.T) {
	c := NewCalculator()
	bundle := testBundle()
	first := c.Compute("ws1", bundle, false)

	bundle.Tables[0].Rows = append(bundle.Tables[0].Rows, []string{"a3", "500.0", "1", "1.0"})
	second := c.Compute("ws1", bundle, false)
	assert.Equal(t, first.TotalElapsedTimeS, second.TotalElapsedTimeS)

	third := c.Compute("ws1", bundle, true)
	assert.Greater(t, third.TotalElapsedTimeS, second.TotalElapsedTimeS)
}

func TestInvalidateClearsCachedEntry(t *testing.T) {
	c := NewCalculator()
	bundle := testBundle()
	first := c.Compute("ws1", bundle, false)

	bundle.Tables[0].Rows = append(bundle.Tables[0].Rows, []string{"a3", "500.0", "1", "1.0"})
	c.Invalidate("ws1")
	second := c.Compute("ws1", bundle, false)
	assert.Greater(t, second.TotalElapsedTimeS, first.TotalElapsedTimeS)
}

func TestComputeNilBundleReturnsZeroValue(t *testing.T) {
	c := NewCalculator()
	m := c.Compute("empty", nil, false)
	require.False(t, m.IsValid)
}
