// Package postgres implements the persistence layer against PostgreSQL.
// The engine itself never touches this package: the worker loads inputs
// here, runs the pure computation, and writes outputs back.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ignite/adpulse/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// MetricsRepo reads the sync collaborator's output: daily snapshots,
// rolling metrics, concept metrics, and client records.
type MetricsRepo struct{ db *sql.DB }

// NewMetricsRepo creates a Postgres-backed metrics reader.
func NewMetricsRepo(db *sql.DB) *MetricsRepo { return &MetricsRepo{db: db} }

// GetClient loads one client record with its targets.
func (r *MetricsRepo) GetClient(ctx context.Context, clientID string) (*domain.Client, error) {
	c := &domain.Client{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, target_cpa, target_roas, COALESCE(primary_goal,''),
		       COALESCE(business_model,''), COALESCE(growth_mode,''),
		       COALESCE(funnel_priority,''), ltv
		FROM ad_clients
		WHERE id = $1
	`, clientID).Scan(
		&c.ID, &c.Name, &c.TargetCPA, &c.TargetROAS, &c.PrimaryGoal,
		&c.BusinessModel, &c.GrowthMode, &c.FunnelPriority, &c.LTV,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}
	return c, nil
}

// ListClientIDs returns every client with synced metrics, for the batch
// runner's outer loop.
func (r *MetricsRepo) ListClientIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM ad_clients ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan client id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// LatestSnapshots returns the most recent daily snapshot for every entity
// of a client, across all levels.
func (r *MetricsRepo) LatestSnapshots(ctx context.Context, clientID string) ([]domain.DailySnapshot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT ON (level, entity_id)
		       client_id, level, entity_id, COALESCE(entity_name,''), date,
		       spend, impressions, clicks, purchases, leads, value,
		       days_active, days_since_last_edit,
		       COALESCE(concept_id,''), COALESCE(format,'')
		FROM ad_daily_snapshots
		WHERE client_id = $1
		ORDER BY level, entity_id, date DESC
	`, clientID)
	if err != nil {
		return nil, fmt.Errorf("latest snapshots: %w", err)
	}
	defer rows.Close()

	var out []domain.DailySnapshot
	for rows.Next() {
		var s domain.DailySnapshot
		if err := rows.Scan(
			&s.ClientID, &s.Level, &s.EntityID, &s.EntityName, &s.Date,
			&s.Spend, &s.Impressions, &s.Clicks, &s.Purchases, &s.Leads, &s.Value,
			&s.DaysActive, &s.DaysSinceLastEdit, &s.ConceptID, &s.Format,
		); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// AccountDailySnapshots returns the account-level daily series for the
// findings engine, oldest first.
func (r *MetricsRepo) AccountDailySnapshots(ctx context.Context, clientID string, days int) ([]domain.DailySnapshot, error) {
	return r.levelDailySnapshots(ctx, clientID, domain.LevelAccount, days)
}

// CampaignDailySnapshots returns the campaign-level daily series, used for
// the concentration and zombie-spend findings.
func (r *MetricsRepo) CampaignDailySnapshots(ctx context.Context, clientID string, days int) ([]domain.DailySnapshot, error) {
	return r.levelDailySnapshots(ctx, clientID, domain.LevelCampaign, days)
}

func (r *MetricsRepo) levelDailySnapshots(ctx context.Context, clientID string, level domain.EntityLevel, days int) ([]domain.DailySnapshot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT client_id, level, entity_id, COALESCE(entity_name,''), date,
		       spend, impressions, clicks, purchases, leads, value,
		       days_active, days_since_last_edit,
		       COALESCE(concept_id,''), COALESCE(format,'')
		FROM ad_daily_snapshots
		WHERE client_id = $1 AND level = $2
		  AND date >= NOW() - make_interval(days => $3)
		ORDER BY date
	`, clientID, level, days)
	if err != nil {
		return nil, fmt.Errorf("%s daily snapshots: %w", level, err)
	}
	defer rows.Close()

	var out []domain.DailySnapshot
	for rows.Next() {
		var s domain.DailySnapshot
		if err := rows.Scan(
			&s.ClientID, &s.Level, &s.EntityID, &s.EntityName, &s.Date,
			&s.Spend, &s.Impressions, &s.Clicks, &s.Purchases, &s.Leads, &s.Value,
			&s.DaysActive, &s.DaysSinceLastEdit, &s.ConceptID, &s.Format,
		); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// RollingMetrics returns the full rolling-metric population for a client.
// This is both the percentile population and the per-entity lookup source.
func (r *MetricsRepo) RollingMetrics(ctx context.Context, clientID string) ([]domain.RollingMetrics, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT client_id, level, entity_id,
		       spend_7d, spend_14d, impressions_7d, clicks_7d,
		       conversions_7d, conversions_14d, cpa_7d, cpa_14d,
		       roas_7d, roas_14d, frequency_7d,
		       velocity_7d, velocity_14d, hook_rate_delta,
		       spend_top1_pct, active_sub_units, budget_change_pct_3d,
		       updated_at
		FROM ad_rolling_metrics
		WHERE client_id = $1
	`, clientID)
	if err != nil {
		return nil, fmt.Errorf("rolling metrics: %w", err)
	}
	defer rows.Close()

	var out []domain.RollingMetrics
	for rows.Next() {
		var m domain.RollingMetrics
		if err := rows.Scan(
			&m.ClientID, &m.Level, &m.EntityID,
			&m.Spend7d, &m.Spend14d, &m.Impressions7d, &m.Clicks7d,
			&m.Conversions7d, &m.Conversions14d, &m.CPA7d, &m.CPA14d,
			&m.ROAS7d, &m.ROAS14d, &m.Frequency7d,
			&m.Velocity7d, &m.Velocity14d, &m.HookRateDelta,
			&m.SpendTop1Pct, &m.ActiveSubUnits, &m.BudgetChangePct3d,
			&m.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan rolling metrics: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ConceptMetrics returns the concept-level aggregates for a client, keyed
// by concept id.
func (r *MetricsRepo) ConceptMetrics(ctx context.Context, clientID string) (map[string]domain.ConceptMetrics, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT client_id, concept_id, avg_cpa_7d, avg_cpa_14d,
		       hook_rate_delta, spend_top1_pct, fatigued, updated_at
		FROM ad_concept_metrics
		WHERE client_id = $1
	`, clientID)
	if err != nil {
		return nil, fmt.Errorf("concept metrics: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.ConceptMetrics)
	for rows.Next() {
		var m domain.ConceptMetrics
		if err := rows.Scan(
			&m.ClientID, &m.ConceptID, &m.AvgCPA7d, &m.AvgCPA14d,
			&m.HookRateDelta, &m.SpendTop1Pct, &m.Fatigued, &m.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan concept metrics: %w", err)
		}
		out[m.ConceptID] = m
	}
	return out, rows.Err()
}
