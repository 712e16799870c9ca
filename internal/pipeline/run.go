// Package pipeline wires the individual analysis stages — parsing,
// metrics, signal normalization, time-window detection, integrity
// checking and the orchestrator — into the one entry point external
// callers (cmd/awrctl, the optional web API) drive the pipeline through.
package pipeline

import (
	"sort"
	"strings"
	"time"

	"github.com/dbaworks/awr-advisor/internal/awrmodel"
	"github.com/dbaworks/awr-advisor/internal/integrity"
	"github.com/dbaworks/awr-advisor/internal/metricstore"
	"github.com/dbaworks/awr-advisor/internal/orchestrator"
	"github.com/dbaworks/awr-advisor/internal/parser"
	"github.com/dbaworks/awr-advisor/internal/signals"
	"github.com/dbaworks/awr-advisor/internal/timewindow"
	"github.com/dbaworks/awr-advisor/internal/unifiedmetrics"
)

// SourceFile is one HTML report handed to the pipeline, already read from
// the workspace directory.
type SourceFile struct {
	Name string
	HTML []byte
}

// BuildBundle parses every source file and accumulates their tables into
// one Bundle. A file is treated as an Active Session History report when
// its name or contents say so; otherwise it is parsed as an AWR report.
func BuildBundle(workspaceID string, files []SourceFile) (*awrmodel.Bundle, error) {
	bundle := &awrmodel.Bundle{WorkspaceID: workspaceID, IngestedAt: time.Now()}
	var firstErr error

	for _, f := range files {
		bundle.SourceFiles = append(bundle.SourceFiles, f.Name)

		if looksLikeASH(f.Name, f.HTML) {
			tables, err := parser.ParseASH(f.HTML, f.Name)
			bundle.Tables = append(bundle.Tables, tables...)
			if err != nil && firstErr == nil {
				firstErr = err
			}
			continue
		}

		tables, err := parser.ParseAWR(f.HTML, f.Name)
		bundle.Tables = append(bundle.Tables, tables...)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		if bundle.Metadata == nil || !bundle.Metadata.ParseSuccess {
			if meta := parser.ParseSnapshotMetadata(f.HTML); meta.ParseSuccess || bundle.Metadata == nil {
				bundle.Metadata = meta
			}
		}
	}

	if bundle.Metadata == nil {
		bundle.Metadata = &awrmodel.SnapshotMetadata{ParseErrors: []string{"no AWR metadata present in workspace"}}
	}
	if firstErr != nil {
		return bundle, firstErr
	}
	return bundle, nil
}

func looksLikeASH(name string, htmlBytes []byte) bool {
	if strings.Contains(strings.ToLower(name), "ash") {
		return true
	}
	return strings.Contains(strings.ToLower(string(htmlBytes)), "active session history")
}

// Analyze runs the fail-closed preconditions, computes unified metrics,
// normalizes the SQL workload and produces the final result envelope
// (spec.md §6). A non-nil error always carries a *pipeline.Error naming
// which stage failed.
func Analyze(bundle *awrmodel.Bundle, ws integrity.Workspace, metrics *unifiedmetrics.Calculator) (awrmodel.Envelope, error) {
	report := integrity.Validate(ws, bundle)
	if !report.Valid {
		return awrmodel.Envelope{
			Status:                  awrmodel.StatusInvalid,
			DataIntegrityViolations: report.Violations,
		}, Newf(KindIntegrityViolation, "integrity", "%d workspace precondition(s) failed", len(report.Violations))
	}

	um := metrics.Compute(bundle.WorkspaceID, bundle, false)
	if !um.IsValid {
		return awrmodel.Envelope{Status: awrmodel.StatusInvalid}, Newf(KindMetricsInvalid, "unifiedmetrics", "unable to compute unified metrics for workspace %q", bundle.WorkspaceID)
	}

	store := metricstore.New(bundle)
	topSQL, totalRaw := normalizeSQLStats(store)
	dominant := dominantWaitEvent(store)
	ash := buildASHContext(store)

	return orchestrator.AnalyzeWorkload(topSQL, totalRaw, dominant, ash, um), nil
}

// normalizeSQLStats tries several header spellings for each logical
// field, in the same "try historical spellings in order" convention
// metricstore.FindColumn documents.
func normalizeSQLStats(store *metricstore.Store) ([]awrmodel.NormalizedSignals, int) {
	t := store.FindTable(awrmodel.TableSQLStats)
	if t == nil {
		return nil, 0
	}

	waitEvents := waitEventContext(store)

	idCol := metricstore.FindColumn(t, "sql_id")
	elapsedCol := metricstore.FindColumn(t, "elapsed__time_s", "elapsed_time_s")
	execCol := metricstore.FindColumn(t, "executions")
	cpuCol := metricstore.FindColumn(t, "cpu_time_s")
	avgCol := metricstore.FindColumn(t, "elapsed_time_execs", "elap_per_exec_s", "avg_elapsed_time_s")
	pctCPUCol := metricstore.FindColumn(t, "pctcpu", "pct_cpu")
	pctIOCol := metricstore.FindColumn(t, "pctio", "pct_io")
	pctTotalCol := metricstore.FindColumn(t, "pcttotal", "pct_total_db_time", "pct_total")
	textCol := metricstore.FindColumn(t, "sql_text")
	moduleCol := metricstore.FindColumn(t, "module", "sql_module")

	out := make([]awrmodel.NormalizedSignals, 0, len(t.Rows))
	for _, row := range t.Rows {
		r := signals.Row{
			SQLID:             metricstore.Cell(row, idCol),
			Elapsed:           metricstore.CoerceFloat(metricstore.Cell(row, elapsedCol)),
			HasElapsed:        elapsedCol >= 0,
			Executions:        metricstore.CoerceFloat(metricstore.Cell(row, execCol)),
			HasExec:           execCol >= 0,
			CPU:               metricstore.CoerceFloat(metricstore.Cell(row, cpuCol)),
			HasCPU:            cpuCol >= 0,
			ElapsedPerExec:    metricstore.CoerceFloat(metricstore.Cell(row, avgCol)),
			HasElapsedPerExec: avgCol >= 0,
			PctCPU:            metricstore.CoerceFloat(metricstore.Cell(row, pctCPUCol)),
			HasPctCPU:         pctCPUCol >= 0,
			PctIO:             metricstore.CoerceFloat(metricstore.Cell(row, pctIOCol)),
			HasPctIO:          pctIOCol >= 0,
			PctTotal:          metricstore.CoerceFloat(metricstore.Cell(row, pctTotalCol)),
			HasPctTotal:       pctTotalCol >= 0,
			SQLText:           metricstore.Cell(row, textCol),
			HasSQLText:        textCol >= 0,
			SQLModule:         metricstore.Cell(row, moduleCol),
			HasSQLModule:      moduleCol >= 0,
		}
		out = append(out, signals.Normalize(r, waitEvents))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].TotalElapsed > out[j].TotalElapsed })

	top := out
	if len(top) > 10 {
		top = top[:10]
	}
	return top, len(out)
}

func waitEventContext(store *metricstore.Store) []signals.WaitEvent {
	t := store.FindTable(awrmodel.TableWaitEvents)
	if t == nil {
		return nil
	}
	nameCol := metricstore.FindColumn(t, "event", "statistic_name")
	pctCol := metricstore.FindColumn(t, "pct_dbtime", "pctdbtime", "pct_db_time")
	if nameCol < 0 {
		return nil
	}
	var out []signals.WaitEvent
	for _, row := range t.Rows {
		out = append(out, signals.WaitEvent{
			WaitClass:   metricstore.Cell(row, nameCol),
			PctOfDBTime: metricstore.CoerceFloat(metricstore.Cell(row, pctCol)),
		})
	}
	return out
}

func dominantWaitEvent(store *metricstore.Store) orchestrator.DominantWait {
	t := store.FindTable(awrmodel.TableWaitEvents)
	if t == nil || len(t.Rows) == 0 {
		return orchestrator.DominantWait{}
	}
	nameCol := metricstore.FindColumn(t, "event", "statistic_name")
	timeCol := metricstore.FindColumn(t, "time_s", "time_waited_s")
	pctCol := metricstore.FindColumn(t, "pct_dbtime", "pctdbtime", "pct_db_time")
	if nameCol < 0 {
		return orchestrator.DominantWait{}
	}

	var best orchestrator.DominantWait
	for _, row := range t.Rows {
		pct := metricstore.CoerceFloat(metricstore.Cell(row, pctCol))
		if !best.HasValue || pct > best.PctOfDBTime {
			best = orchestrator.DominantWait{
				Name:        metricstore.Cell(row, nameCol),
				TimeS:       metricstore.CoerceFloat(metricstore.Cell(row, timeCol)),
				PctOfDBTime: pct,
				HasValue:    true,
			}
		}
	}
	return best
}

func buildASHContext(store *metricstore.Store) orchestrator.ASHContext {
	var ctx orchestrator.ASHContext

	if events := store.FindTable(awrmodel.TableASHEvents); events != nil {
		nameCol := metricstore.FindColumn(events, "event", "wait_class")
		pctCol := metricstore.FindColumn(events, "pct_activity", "pctactivity", "pct_total")
		ioCol := metricstore.FindColumn(events, "pctio", "pct_io")
		if ioCol >= 0 && len(events.Rows) > 0 {
			ctx.IOPercent = metricstore.CoerceFloat(metricstore.Cell(events.Rows[0], ioCol))
			ctx.HasIOPercent = true
		}
		if nameCol >= 0 {
			for _, row := range events.Rows {
				ctx.DominantEvents = append(ctx.DominantEvents, orchestrator.ASHDominantEvent{
					Event:     metricstore.Cell(row, nameCol),
					PctImpact: metricstore.CoerceFloat(metricstore.Cell(row, pctCol)),
				})
			}
		}
	}

	if activity := store.FindTable(awrmodel.TableASHActivity); activity != nil {
		startCol := metricstore.FindColumn(activity, "sample_time", "start_time")
		totalCol := metricstore.FindColumn(activity, "total_sessions", "active_sessions")
		cpuCol := metricstore.FindColumn(activity, "cpu_sessions", "on_cpu")
		durationCol := metricstore.FindColumn(activity, "duration_min", "duration_minutes")
		if totalCol >= 0 {
			var samples []timewindow.ActivitySample
			for _, row := range activity.Rows {
				samples = append(samples, timewindow.ActivitySample{
					Start:         parseSampleTime(metricstore.Cell(row, startCol)),
					DurationMin:   durationOrDefault(metricstore.CoerceFloat(metricstore.Cell(row, durationCol))),
					TotalSessions: int(metricstore.CoerceInt(metricstore.Cell(row, totalCol))),
					CPUSessions:   int(metricstore.CoerceInt(metricstore.Cell(row, cpuCol))),
				})
			}
			ctx.HighLoadPeriods = timewindow.DetectHighLoadPeriods(samples)
		}
	}

	return ctx
}

func durationOrDefault(v float64) float64 {
	if v <= 0 {
		return 10
	}
	return v
}

func parseSampleTime(raw string) time.Time {
	for _, layout := range []string{"02-Jan-06 15:04:05", "2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, strings.TrimSpace(raw)); err == nil {
			return t
		}
	}
	return time.Time{}
}
