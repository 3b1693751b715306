package engine

import "github.com/ignite/adpulse/internal/domain"

// Intent score weights. Fixed for now; tune here, not in per-client config.
const (
	weightFitRate  = 0.30
	weightConvRate = 0.25
	weightCPAInv   = 0.25
	weightCTR      = 0.20
)

// IntentResult carries the purchase-intent score and its funnel bucket.
type IntentResult struct {
	Score float64
	Stage domain.IntentStage
}

// normalize maps a raw value into [0,1] against a P10/P90 anchor pair.
// A degenerate anchor (p90 <= p10) gives a neutral 0.5 rather than a
// division by zero.
func normalize(value float64, a domain.PercentileAnchor) float64 {
	if a.P90 <= a.P10 {
		return 0.5
	}
	n := (value - a.P10) / (a.P90 - a.P10)
	if n < 0 {
		return 0
	}
	if n > 1 {
		return 1
	}
	return n
}

// ScoreIntent computes the 0-1 purchase-intent score for an entity from its
// latest daily snapshot, normalized against the client's percentile anchors.
// When the entity's 3-day budget change exceeds the learning-reset
// percentage the configured volatility penalty is subtracted: a freshly
// shocked budget makes today's ratios less trustworthy.
func ScoreIntent(snap domain.DailySnapshot, rolling domain.RollingMetrics, pct domain.ClientPercentiles, cfg Config) IntentResult {
	var fitRate, convRate, cpaInv, ctr float64
	if snap.Clicks > 0 {
		fitRate = float64(snap.Purchases) / float64(snap.Clicks)
	}
	if snap.Impressions > 0 {
		convRate = float64(snap.Purchases) / float64(snap.Impressions)
		ctr = float64(snap.Clicks) / float64(snap.Impressions)
	}
	if snap.Spend > 0 && snap.Purchases > 0 {
		cpaInv = float64(snap.Purchases) / snap.Spend
	}

	score := weightFitRate*normalize(fitRate, pct.FitRate) +
		weightConvRate*normalize(convRate, pct.ConvRate) +
		weightCPAInv*normalize(cpaInv, pct.CPAInv) +
		weightCTR*normalize(ctr, pct.CTR)

	if abs(rolling.BudgetChangePct3d) > cfg.Alerts.LearningResetBudgetChangePct {
		score -= cfg.Intent.VolatilityPenalty
		if score < 0 {
			score = 0
		}
	}

	stage := domain.StageTOFU
	switch {
	case score >= cfg.Intent.BOFUMin:
		stage = domain.StageBOFU
	case score >= cfg.Intent.MOFUMin:
		stage = domain.StageMOFU
	}

	return IntentResult{Score: score, Stage: stage}
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
