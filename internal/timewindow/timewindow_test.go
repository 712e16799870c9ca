package timewindow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbaworks/awr-advisor/internal/awrmodel"
)

func TestFromMetadataRoundsToNearestHalfHour(t *testing.T) {
	meta := &awrmodel.SnapshotMetadata{
		ParseSuccess: true, HasBeginTime: true, HasEndTime: true,
		BeginTime: time.Date(2026, 7, 15, 9, 14, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 7, 15, 9, 47, 0, 0, time.UTC),
	}
	w := FromMetadata(meta)
	assert.Equal(t, "9:00 AM - 10:00 AM", w.DisplayWindow)
}

func TestFromMetadataHandlesCrossMidnight(t *testing.T) {
	meta := &awrmodel.SnapshotMetadata{
		ParseSuccess: true, HasBeginTime: true, HasEndTime: true,
		BeginTime: time.Date(2026, 7, 15, 23, 30, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 7, 15, 0, 15, 0, 0, time.UTC),
	}
	w := FromMetadata(meta)
	assert.True(t, w.EndTime.After(w.BeginTime))
}

func TestFromMetadataReturnsPlaceholderWhenParseFailed(t *testing.T) {
	w := FromMetadata(&awrmodel.SnapshotMetadata{ParseSuccess: false})
	assert.Equal(t, "--", w.DisplayWindow)
}

func TestCalculateCPUPercentageCapsAt100(t *testing.T) {
	pct := CalculateCPUPercentage(10000, 100, 4)
	assert.Equal(t, 100.0, pct)
}

func TestCalculateCPUPercentageUsesDefaultCores(t *testing.T) {
	pct := CalculateCPUPercentage(400, 1000, 0)
	assert.Equal(t, round1((400.0/(1000.0*8))*100), pct)
}

func TestCalculateCPUPercentageZeroWhenNoData(t *testing.T) {
	assert.Equal(t, 0.0, CalculateCPUPercentage(0, 1000, 8))
	assert.Equal(t, 0.0, CalculateCPUPercentage(100, 0, 8))
}

func TestDetectHighLoadPeriodsSkipsShortSpikes(t *testing.T) {
	periods := DetectHighLoadPeriods([]ActivitySample{
		{Start: time.Now(), DurationMin: 2, TotalSessions: 20, CPUSessions: 18},
	})
	assert.Empty(t, periods)
}

func TestDetectHighLoadPeriodsFlagsCriticalAAS(t *testing.T) {
	base := time.Date(2026, 7, 15, 10, 0, 0, 0, time.UTC)
	periods := DetectHighLoadPeriods([]ActivitySample{
		{Start: base, DurationMin: 15, TotalSessions: 20, CPUSessions: 15},
	})
	require.Len(t, periods, 1)
	assert.Equal(t, "HIGH", periods[0].Severity)
}

func TestDetectHighLoadPeriodsMergesAdjacentWindows(t *testing.T) {
	base := time.Date(2026, 7, 15, 10, 0, 0, 0, time.UTC)
	periods := DetectHighLoadPeriods([]ActivitySample{
		{Start: base, DurationMin: 15, TotalSessions: 20, CPUSessions: 15},
		{Start: base.Add(15*time.Minute + 60*time.Second), DurationMin: 15, TotalSessions: 22, CPUSessions: 16},
	})
	require.Len(t, periods, 1)
	assert.InDelta(t, 30.0, periods[0].DurationMin, 0.01)
}

func TestDetectHighLoadPeriodsKeepsSeparateWindowsBeyondGap(t *testing.T) {
	base := time.Date(2026, 7, 15, 10, 0, 0, 0, time.UTC)
	periods := DetectHighLoadPeriods([]ActivitySample{
		{Start: base, DurationMin: 15, TotalSessions: 20, CPUSessions: 15},
		{Start: base.Add(time.Hour), DurationMin: 15, TotalSessions: 22, CPUSessions: 16},
	})
	assert.Len(t, periods, 2)
}
