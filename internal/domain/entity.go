package domain

import "time"

// EntityLevel identifies the position of an advertising entity in the
// account hierarchy.
type EntityLevel string

const (
	LevelAccount  EntityLevel = "account"
	LevelCampaign EntityLevel = "campaign"
	LevelAdSet    EntityLevel = "adset"
	LevelAd       EntityLevel = "ad"
)

// AllLevels returns every entity level, outermost first.
func AllLevels() []EntityLevel {
	return []EntityLevel{LevelAccount, LevelCampaign, LevelAdSet, LevelAd}
}

// DailySnapshot is one calendar day of performance for one entity.
// Created once per entity per day by the sync collaborator; immutable
// after creation.
type DailySnapshot struct {
	ClientID    string      `json:"client_id" db:"client_id"`
	Level       EntityLevel `json:"level" db:"level"`
	EntityID    string      `json:"entity_id" db:"entity_id"`
	EntityName  string      `json:"entity_name" db:"entity_name"`
	Date        time.Time   `json:"date" db:"date"`
	Spend       float64     `json:"spend" db:"spend"`
	Impressions int64       `json:"impressions" db:"impressions"`
	Clicks      int64       `json:"clicks" db:"clicks"`
	Purchases   int64       `json:"purchases" db:"purchases"`
	Leads       int64       `json:"leads" db:"leads"`
	Value       float64     `json:"value" db:"value"`

	// Stability block
	DaysActive        int `json:"days_active" db:"days_active"`
	DaysSinceLastEdit int `json:"days_since_last_edit" db:"days_since_last_edit"`

	// Meta block
	ConceptID string `json:"concept_id,omitempty" db:"concept_id"`
	Format    string `json:"format,omitempty" db:"format"`
}

// CTR returns clicks over impressions, 0 when there are no impressions.
func (s DailySnapshot) CTR() float64 {
	if s.Impressions == 0 {
		return 0
	}
	return float64(s.Clicks) / float64(s.Impressions)
}

// RollingMetrics is the per-entity trailing-window aggregate, recomputed on
// each sync cycle and overwritten in place.
type RollingMetrics struct {
	ClientID string      `json:"client_id" db:"client_id"`
	Level    EntityLevel `json:"level" db:"level"`
	EntityID string      `json:"entity_id" db:"entity_id"`

	Spend7d  float64 `json:"spend_7d" db:"spend_7d"`
	Spend14d float64 `json:"spend_14d" db:"spend_14d"`

	Impressions7d int64 `json:"impressions_7d" db:"impressions_7d"`
	Clicks7d      int64 `json:"clicks_7d" db:"clicks_7d"`

	Conversions7d  int64 `json:"conversions_7d" db:"conversions_7d"`
	Conversions14d int64 `json:"conversions_14d" db:"conversions_14d"`

	CPA7d  float64 `json:"cpa_7d" db:"cpa_7d"`
	CPA14d float64 `json:"cpa_14d" db:"cpa_14d"`

	ROAS7d  float64 `json:"roas_7d" db:"roas_7d"`
	ROAS14d float64 `json:"roas_14d" db:"roas_14d"`

	Frequency7d float64 `json:"frequency_7d" db:"frequency_7d"`

	// Conversion velocity: conversions per day over the window.
	Velocity7d  float64 `json:"velocity_7d" db:"velocity_7d"`
	Velocity14d float64 `json:"velocity_14d" db:"velocity_14d"`

	// Early-engagement trend: 7d hook rate minus 14d hook rate.
	HookRateDelta float64 `json:"hook_rate_delta" db:"hook_rate_delta"`

	// Share of the window's spend consumed by the single top sub-unit.
	SpendTop1Pct float64 `json:"spend_top1_pct" db:"spend_top1_pct"`

	// Count of sub-units with non-zero spend in the 7d window.
	ActiveSubUnits int `json:"active_sub_units" db:"active_sub_units"`

	// Budget change over the last 3 days, as a percentage.
	BudgetChangePct3d float64 `json:"budget_change_pct_3d" db:"budget_change_pct_3d"`

	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ConceptMetrics is the RollingMetrics shape aggregated at the
// creative-concept level. A concept groups ads sharing one creative idea.
type ConceptMetrics struct {
	ClientID  string `json:"client_id" db:"client_id"`
	ConceptID string `json:"concept_id" db:"concept_id"`

	AvgCPA7d      float64 `json:"avg_cpa_7d" db:"avg_cpa_7d"`
	AvgCPA14d     float64 `json:"avg_cpa_14d" db:"avg_cpa_14d"`
	HookRateDelta float64 `json:"hook_rate_delta" db:"hook_rate_delta"`
	SpendTop1Pct  float64 `json:"spend_top1_pct" db:"spend_top1_pct"`
	Fatigued      bool    `json:"fatigued" db:"fatigued"`

	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
