package domain

// Client holds the per-client commercial context the engine reads targets
// from. Synced from the CRM collaborator; read-only here.
type Client struct {
	ID             string  `json:"id" db:"id"`
	Name           string  `json:"name" db:"name"`
	TargetCPA      float64 `json:"target_cpa" db:"target_cpa"`
	TargetROAS     float64 `json:"target_roas" db:"target_roas"`
	PrimaryGoal    string  `json:"primary_goal" db:"primary_goal"`
	BusinessModel  string  `json:"business_model" db:"business_model"`
	GrowthMode     string  `json:"growth_mode" db:"growth_mode"`
	FunnelPriority string  `json:"funnel_priority" db:"funnel_priority"`
	LTV            float64 `json:"ltv" db:"ltv"`
}

// PercentileAnchor carries the 10th and 90th percentile of one intent-signal
// distribution.
type PercentileAnchor struct {
	P10 float64 `json:"p10"`
	P90 float64 `json:"p90"`
}

// ClientPercentiles holds the distribution anchors for the four intent
// signals, recomputed from the full rolling-metric population on every
// classification pass. Never persisted as authoritative: percentiles must
// reflect today's account shape, not stale baselines.
type ClientPercentiles struct {
	ClientID string           `json:"client_id"`
	FitRate  PercentileAnchor `json:"fit_rate"`
	ConvRate PercentileAnchor `json:"conv_rate"`
	CPAInv   PercentileAnchor `json:"cpa_inv"`
	CTR      PercentileAnchor `json:"ctr"`
}
