// Package oracledb captures a live top-SQL snapshot directly from an
// Oracle instance's dynamic performance views, as an alternative to
// parsing an already-exported AWR/ASH HTML report (SPEC_FULL.md §4.10).
// The query and row-projection logic here is driver-agnostic; connection
// opening is split across connect_goora.go and connect_cgo.go so the
// CGO-based godror driver is only linked in when the cgo_oracle build tag
// is set.
package oracledb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dbaworks/awr-advisor/internal/awrmodel"
	"github.com/dbaworks/awr-advisor/internal/signals"
)

// Config holds the Oracle connection parameters needed to open a session.
type Config struct {
	Host        string
	Port        string
	ServiceName string
	Username    string
	Password    string
	MaxConns    int
	MinConns    int
}

// topSQLByElapsed mirrors the teacher's QueryTopSQLByElapsedTime, adjusted
// to surface the CPU percentage the normalizer expects directly from
// v$sql rather than requiring a second pass. No IO percentage is
// selected; the normalizer derives it from elapsed and CPU time.
const topSQLByElapsed = `
	SELECT
		sql_id,
		SUBSTR(sql_text, 1, 4000) as sql_text,
		parsing_schema_name,
		executions,
		ROUND(elapsed_time / 1000000, 2) as elapsed_time_seconds,
		ROUND(cpu_time / 1000000, 2) as cpu_time_seconds,
		CASE WHEN elapsed_time > 0 THEN ROUND(cpu_time / elapsed_time * 100, 2) ELSE 0 END as pct_cpu
	FROM v$sql
	WHERE executions > 0
	  AND parsing_schema_name IS NOT NULL
	ORDER BY elapsed_time DESC
	FETCH FIRST :1 ROWS ONLY
`

// Capture queries db for the top limit SQL statements by elapsed time and
// projects each row into Normalized Signals, the same shape the HTML
// ingestion path produces, so the orchestrator never needs to know
// whether a workload came from a report or a live session.
func Capture(ctx context.Context, db *sql.DB, limit int) ([]awrmodel.NormalizedSignals, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := db.QueryContext(ctx, topSQLByElapsed, limit)
	if err != nil {
		return nil, fmt.Errorf("query top SQL by elapsed time: %w", err)
	}
	defer rows.Close()

	var out []awrmodel.NormalizedSignals
	for rows.Next() {
		var (
			sqlID      string
			sqlText    sql.NullString
			schema     sql.NullString
			executions sql.NullFloat64
			elapsed    sql.NullFloat64
			cpuTime    sql.NullFloat64
			pctCPU     sql.NullFloat64
		)
		if err := rows.Scan(&sqlID, &sqlText, &schema, &executions, &elapsed, &cpuTime, &pctCPU); err != nil {
			return nil, fmt.Errorf("scan top SQL row: %w", err)
		}

		r := signals.Row{
			SQLID:        sqlID,
			Executions:   executions.Float64,
			HasExec:      executions.Valid,
			Elapsed:      elapsed.Float64,
			HasElapsed:   elapsed.Valid,
			CPU:          cpuTime.Float64,
			HasCPU:       cpuTime.Valid,
			PctCPU:       pctCPU.Float64,
			HasPctCPU:    pctCPU.Valid,
			SQLText:      sqlText.String,
			HasSQLText:   sqlText.Valid,
			SQLModule:    schema.String,
			HasSQLModule: schema.Valid,
		}
		out = append(out, signals.Normalize(r, nil))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate top SQL rows: %w", err)
	}
	return out, nil
}

// configurePool applies the teacher's pool-sizing and lifetime defaults to
// any already-opened *sql.DB, regardless of which driver opened it.
func configurePool(db *sql.DB, cfg Config) {
	db.SetMaxOpenConns(cfg.MaxConns)
	db.SetMaxIdleConns(cfg.MinConns)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(10 * time.Minute)
}

// ping verifies a freshly opened connection within a bounded timeout,
// following the teacher's NewOracleDB verification step.
func ping(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping oracle: %w", err)
	}
	return nil
}
