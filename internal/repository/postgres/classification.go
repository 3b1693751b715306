package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/ignite/adpulse/internal/domain"
)

// ClassificationRepo persists the engine's verdicts. One row per
// (client, level, entity), overwritten on every run.
type ClassificationRepo struct{ db *sql.DB }

// NewClassificationRepo creates a Postgres-backed classification store.
func NewClassificationRepo(db *sql.DB) *ClassificationRepo {
	return &ClassificationRepo{db: db}
}

// UpsertBatch writes a run's classifications. Each record is written
// independently: a failure on one entity is reported but does not block
// the rest of the batch.
func (r *ClassificationRepo) UpsertBatch(ctx context.Context, batch []domain.Classification) (int, error) {
	var firstErr error
	written := 0
	for _, c := range batch {
		if err := r.upsert(ctx, c); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("upsert %s/%s/%s: %w", c.ClientID, c.Level, c.EntityID, err)
			}
			continue
		}
		written++
	}
	return written, firstErr
}

func (r *ClassificationRepo) upsert(ctx context.Context, c domain.Classification) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ad_classifications
		(client_id, level, entity_id, concept_id, learning_state, intent_stage,
		 intent_score, fatigue, structure, decision, confidence, impact_score,
		 evidence, classified_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		ON CONFLICT (client_id, level, entity_id) DO UPDATE SET
		 concept_id = EXCLUDED.concept_id,
		 learning_state = EXCLUDED.learning_state,
		 intent_stage = EXCLUDED.intent_stage,
		 intent_score = EXCLUDED.intent_score,
		 fatigue = EXCLUDED.fatigue,
		 structure = EXCLUDED.structure,
		 decision = EXCLUDED.decision,
		 confidence = EXCLUDED.confidence,
		 impact_score = EXCLUDED.impact_score,
		 evidence = EXCLUDED.evidence,
		 classified_at = EXCLUDED.classified_at
	`,
		c.ClientID, c.Level, c.EntityID, nullable(c.ConceptID),
		c.LearningState, c.IntentStage, c.IntentScore,
		c.Fatigue, c.Structure, c.Decision, c.Confidence, c.ImpactScore,
		pq.Array(c.Evidence), c.ClassifiedAt,
	)
	return err
}

// ListByClient returns the latest classifications for a client, highest
// impact first, optionally filtered by level.
func (r *ClassificationRepo) ListByClient(ctx context.Context, clientID string, level domain.EntityLevel) ([]domain.Classification, error) {
	query := `
		SELECT client_id, level, entity_id, COALESCE(concept_id,''),
		       learning_state, intent_stage, intent_score, fatigue, structure,
		       decision, confidence, impact_score, evidence, classified_at
		FROM ad_classifications
		WHERE client_id = $1`
	args := []interface{}{clientID}
	if level != "" {
		query += " AND level = $2"
		args = append(args, level)
	}
	query += " ORDER BY impact_score DESC, entity_id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list classifications: %w", err)
	}
	defer rows.Close()

	var out []domain.Classification
	for rows.Next() {
		var c domain.Classification
		if err := rows.Scan(
			&c.ClientID, &c.Level, &c.EntityID, &c.ConceptID,
			&c.LearningState, &c.IntentStage, &c.IntentScore, &c.Fatigue, &c.Structure,
			&c.Decision, &c.Confidence, &c.ImpactScore,
			pq.Array(&c.Evidence), &c.ClassifiedAt,
		); err != nil {
			return nil, fmt.Errorf("scan classification: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
