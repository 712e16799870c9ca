// Package timewindow derives the analysis display window from snapshot
// metadata and detects sustained high-load periods from ASH activity
// data (spec.md §4.4).
package timewindow

import (
	"fmt"
	"sort"
	"time"

	"github.com/dbaworks/awr-advisor/internal/awrmodel"
)

const (
	aasHighThreshold     = 3.0
	aasCriticalThreshold = 6.0
	cpuHighThreshold     = 75.0
	cpuCriticalThreshold = 90.0
	minDurationMinutes   = 10.0
	mergeGapSeconds      = 300.0
)

// Window is the authoritative, display-ready analysis time window.
type Window struct {
	BeginTime      time.Time
	EndTime        time.Time
	DisplayWindow  string
	ElapsedSeconds float64
	HasElapsed     bool
}

// FromMetadata builds the display window straight from parsed snapshot
// metadata. All rounding happens here, never in the parser.
func FromMetadata(meta *awrmodel.SnapshotMetadata) Window {
	w := Window{DisplayWindow: "--"}
	if meta == nil || !meta.ParseSuccess || !meta.HasBeginTime || !meta.HasEndTime {
		return w
	}

	begin, end := meta.BeginTime, meta.EndTime
	if end.Before(begin) {
		end = end.Add(24 * time.Hour)
	}

	w.BeginTime, w.EndTime = begin, end
	if meta.HasElapsedSeconds {
		w.ElapsedSeconds, w.HasElapsed = meta.ElapsedSeconds, true
	} else {
		w.ElapsedSeconds, w.HasElapsed = end.Sub(begin).Seconds(), true
	}

	beginRounded := roundToInterval(begin, 30)
	endRounded := roundToInterval(end, 30)
	w.DisplayWindow = fmt.Sprintf("%s - %s", formatClock(beginRounded), formatClock(endRounded))
	return w
}

// roundToInterval rounds dt to the nearest multiple of intervalMinutes,
// carrying an overflowing 60 into the next hour.
func roundToInterval(dt time.Time, intervalMinutes int) time.Time {
	half := intervalMinutes / 2
	rounded := ((dt.Minute() + half) / intervalMinutes) * intervalMinutes
	if rounded >= 60 {
		dt = dt.Add(time.Hour)
		rounded = 0
	}
	return time.Date(dt.Year(), dt.Month(), dt.Day(), dt.Hour(), rounded, 0, 0, dt.Location())
}

func formatClock(t time.Time) string {
	s := t.Format("03:04 PM")
	for len(s) > 0 && s[0] == '0' {
		s = s[1:]
	}
	return s
}

// CalculateCPUPercentage applies the authoritative CPU% formula:
// DB_CPU_TIME / (Elapsed_Time * CPU_Cores) * 100, capped at 100.
func CalculateCPUPercentage(dbCPUSeconds, elapsedSeconds float64, cpuCores int) float64 {
	cores := cpuCores
	if cores <= 0 {
		cores = 8
	}
	if dbCPUSeconds <= 0 || elapsedSeconds <= 0 {
		return 0.0
	}
	pct := (dbCPUSeconds / (elapsedSeconds * float64(cores))) * 100
	if pct > 100.0 {
		pct = 100.0
	}
	return round1(pct)
}

// ActivitySample is one ASH "activity over time" row: a sustained interval
// with a session breakdown.
type ActivitySample struct {
	Start         time.Time
	DurationMin   float64
	TotalSessions int
	CPUSessions   int
}

// DetectHighLoadPeriods classifies each sample against the AAS/CPU/session
// thresholds, then merges adjacent detected periods within a 5-minute gap.
func DetectHighLoadPeriods(samples []ActivitySample) []awrmodel.HighLoadPeriod {
	sorted := make([]ActivitySample, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })

	var periods []awrmodel.HighLoadPeriod
	for _, s := range sorted {
		if s.DurationMin < minDurationMinutes {
			continue
		}
		waitSessions := s.TotalSessions - s.CPUSessions
		if waitSessions < 0 {
			waitSessions = 0
		}
		aas := float64(s.TotalSessions) / maxFloat(1, s.DurationMin) * 5
		var cpuPct float64
		if s.TotalSessions > 0 {
			cpuPct = float64(s.CPUSessions) / float64(s.TotalSessions) * 100
		}

		isHigh := false
		severity := "LOW"
		var reasons []string

		switch {
		case aas >= aasCriticalThreshold:
			isHigh, severity = true, "HIGH"
			reasons = append(reasons, fmt.Sprintf("Critical AAS: %.1f (threshold: %.1f)", aas, aasCriticalThreshold))
		case aas >= aasHighThreshold:
			isHigh = true
			if cpuPct >= cpuHighThreshold {
				severity = "HIGH"
			} else {
				severity = "MEDIUM"
			}
			reasons = append(reasons, fmt.Sprintf("High AAS: %.1f (threshold: %.1f)", aas, aasHighThreshold))
		}

		if cpuPct >= cpuCriticalThreshold && s.TotalSessions >= 5 {
			isHigh, severity = true, "HIGH"
			reasons = append(reasons, fmt.Sprintf("Critical CPU load: %.1f%%", cpuPct))
		} else if cpuPct >= cpuHighThreshold && s.TotalSessions >= 3 {
			isHigh = true
			if severity == "LOW" {
				severity = "MEDIUM"
			}
			reasons = append(reasons, fmt.Sprintf("High CPU load: %.1f%%", cpuPct))
		}

		if waitSessions >= 5 && waitSessions > s.CPUSessions {
			isHigh = true
			if severity == "LOW" {
				severity = "MEDIUM"
			}
			reasons = append(reasons, fmt.Sprintf("Wait-dominated load: %d wait vs %d CPU sessions", waitSessions, s.CPUSessions))
		}

		if s.TotalSessions >= 10 && s.DurationMin >= minDurationMinutes {
			isHigh = true
			if severity == "LOW" {
				severity = "MEDIUM"
			}
			reasons = append(reasons, fmt.Sprintf("High session count: %d active sessions", s.TotalSessions))
		}

		if !isHigh || len(reasons) == 0 {
			continue
		}

		loadType := "High database activity"
		switch {
		case cpuPct >= 70:
			loadType = "High CPU dominated load"
		case waitSessions > s.CPUSessions && waitSessions >= 3:
			loadType = "High Wait Event load"
		}

		periods = append(periods, awrmodel.HighLoadPeriod{
			Source:      "ASH",
			Label:       loadType,
			Severity:    severity,
			Details:     fmt.Sprintf("%s: %s", loadType, joinReasons(reasons)),
			Start:       s.Start,
			End:         s.Start.Add(time.Duration(s.DurationMin * float64(time.Minute))),
			DurationMin: s.DurationMin,
			PeakAAS:     aas,
			PeakCPU:     cpuPct,
		})
	}

	return mergeContinuous(periods)
}

// mergeContinuous merges periods whose gap to the next is within 5 minutes,
// keeping the peak AAS/CPU figures and escalating to the highest
// observed severity.
func mergeContinuous(periods []awrmodel.HighLoadPeriod) []awrmodel.HighLoadPeriod {
	if len(periods) <= 1 {
		return periods
	}

	var merged []awrmodel.HighLoadPeriod
	current := periods[0]
	for _, next := range periods[1:] {
		gap := next.Start.Sub(current.End).Seconds()
		if gap <= mergeGapSeconds {
			current.End = next.End
			current.DurationMin += next.DurationMin
			current.PeakAAS = maxFloat(current.PeakAAS, next.PeakAAS)
			current.PeakCPU = maxFloat(current.PeakCPU, next.PeakCPU)
			if next.Severity == "HIGH" || current.Severity == "HIGH" {
				current.Severity = "HIGH"
			} else if next.Severity == "MEDIUM" || current.Severity == "MEDIUM" {
				current.Severity = "MEDIUM"
			}
			current.Details = fmt.Sprintf("Sustained %s: Peak AAS %.1f, Peak CPU %.1f%%, Duration %.0fm",
				current.Label, current.PeakAAS, current.PeakCPU, current.DurationMin)
		} else {
			merged = append(merged, current)
			current = next
		}
	}
	merged = append(merged, current)
	return merged
}

func joinReasons(reasons []string) string {
	out := reasons[0]
	for _, r := range reasons[1:] {
		out += "; " + r
	}
	return out
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
