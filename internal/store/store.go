// Package store persists analysis envelopes to PostgreSQL so a workspace's
// findings survive past the awrctl process that produced them and can be
// served back out through webapi.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dbaworks/awr-advisor/internal/awrmodel"
	"github.com/dbaworks/awr-advisor/internal/database"
)

// Store wraps a PostgreSQL pool holding analyzed workspace envelopes.
type Store struct {
	db *database.PostgresDB
}

// New opens a PostgreSQL pool and prepares the envelopes table.
func New(cfg database.PostgresConfig) (*Store, error) {
	pgDB, err := database.NewPostgresDB(cfg)
	if err != nil {
		return nil, err
	}
	s := &Store{db: pgDB}
	if err := s.migrate(context.Background()); err != nil {
		pgDB.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS workspace_envelopes (
	workspace_id TEXT PRIMARY KEY,
	status TEXT NOT NULL,
	workload_summary TEXT NOT NULL,
	problematic_count INT NOT NULL,
	total_analyzed INT NOT NULL,
	envelope JSONB NOT NULL,
	analyzed_at TIMESTAMPTZ NOT NULL
)`
	_, err := s.db.DB.ExecContext(ctx, ddl)
	if err != nil {
		return fmt.Errorf("migrate workspace_envelopes: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Health reports whether the pool can still reach PostgreSQL.
func (s *Store) Health(ctx context.Context) error {
	return s.db.Health(ctx)
}

// SaveEnvelope upserts the envelope produced for a workspace, replacing
// whatever analysis was previously recorded for that workspace.
func (s *Store) SaveEnvelope(ctx context.Context, workspaceID string, env awrmodel.Envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	const q = `
INSERT INTO workspace_envelopes (workspace_id, status, workload_summary, problematic_count, total_analyzed, envelope, analyzed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (workspace_id) DO UPDATE SET
	status = EXCLUDED.status,
	workload_summary = EXCLUDED.workload_summary,
	problematic_count = EXCLUDED.problematic_count,
	total_analyzed = EXCLUDED.total_analyzed,
	envelope = EXCLUDED.envelope,
	analyzed_at = EXCLUDED.analyzed_at`

	_, err = s.db.DB.ExecContext(ctx, q,
		workspaceID, string(env.Status), env.WorkloadSummary, env.ProblematicCount, env.TotalAnalyzed, payload, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save envelope for %q: %w", workspaceID, err)
	}
	return nil
}

// Record is a stored envelope plus the timestamp it was analyzed at.
type Record struct {
	WorkspaceID string
	AnalyzedAt  time.Time
	Envelope    awrmodel.Envelope
}

// GetEnvelope fetches the most recently saved envelope for a workspace.
func (s *Store) GetEnvelope(ctx context.Context, workspaceID string) (*Record, error) {
	const q = `SELECT workspace_id, envelope, analyzed_at FROM workspace_envelopes WHERE workspace_id = $1`

	var rec Record
	var payload []byte
	err := s.db.DB.QueryRowContext(ctx, q, workspaceID).Scan(&rec.WorkspaceID, &payload, &rec.AnalyzedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get envelope for %q: %w", workspaceID, err)
	}
	if err := json.Unmarshal(payload, &rec.Envelope); err != nil {
		return nil, fmt.Errorf("unmarshal envelope for %q: %w", workspaceID, err)
	}
	return &rec, nil
}

// ListWorkspaces returns every workspace id with a saved envelope, most
// recently analyzed first.
func (s *Store) ListWorkspaces(ctx context.Context) ([]string, error) {
	const q = `SELECT workspace_id FROM workspace_envelopes ORDER BY analyzed_at DESC`

	rows, err := s.db.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
