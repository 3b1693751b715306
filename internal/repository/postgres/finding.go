package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"github.com/ignite/adpulse/internal/domain"
)

// FindingRepo persists diagnostic findings. Strictly append-only: every
// run inserts a fresh batch and nothing is ever updated in place.
type FindingRepo struct{ db *sql.DB }

// NewFindingRepo creates a Postgres-backed finding store.
func NewFindingRepo(db *sql.DB) *FindingRepo { return &FindingRepo{db: db} }

// InsertBatch appends a run's findings.
func (r *FindingRepo) InsertBatch(ctx context.Context, batch []domain.Finding) error {
	for _, f := range batch {
		evidence, err := json.Marshal(f.Evidence)
		if err != nil {
			return fmt.Errorf("marshal evidence %s: %w", f.ID, err)
		}
		if _, err := r.db.ExecContext(ctx, `
			INSERT INTO ad_findings
			(id, client_id, type, title, description, severity, status,
			 entities, evidence, schema_version, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		`,
			f.ID, f.ClientID, f.Type, f.Title, f.Description, f.Severity,
			f.Status, pq.Array(f.Entities), evidence, f.SchemaVersion, f.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert finding %s: %w", f.ID, err)
		}
	}
	return nil
}

// ListByClient returns a client's findings, newest first.
func (r *FindingRepo) ListByClient(ctx context.Context, clientID string, limit int) ([]domain.Finding, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, client_id, type, title, description, severity, status,
		       entities, evidence, schema_version, created_at
		FROM ad_findings
		WHERE client_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, clientID, limit)
	if err != nil {
		return nil, fmt.Errorf("list findings: %w", err)
	}
	defer rows.Close()

	var out []domain.Finding
	for rows.Next() {
		var f domain.Finding
		var evidence []byte
		if err := rows.Scan(
			&f.ID, &f.ClientID, &f.Type, &f.Title, &f.Description, &f.Severity,
			&f.Status, pq.Array(&f.Entities), &evidence, &f.SchemaVersion, &f.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan finding: %w", err)
		}
		if err := json.Unmarshal(evidence, &f.Evidence); err != nil {
			return nil, fmt.Errorf("unmarshal evidence %s: %w", f.ID, err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
