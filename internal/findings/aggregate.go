package findings

import (
	"sort"

	"github.com/ignite/adpulse/internal/domain"
)

// PeriodStats is one period of account-level performance, already reduced
// to the ratios the rules compare.
type PeriodStats struct {
	Days        int     `json:"days"`
	Spend       float64 `json:"spend"`
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Purchases   int64   `json:"purchases"`
	Value       float64 `json:"value"`
	CPA         float64 `json:"cpa"`
	ROAS        float64 `json:"roas"`
	CTR         float64 `json:"ctr"`
	CVR         float64 `json:"cvr"`

	// Daily CPA series, kept for volatility analysis.
	DailyCPA []float64 `json:"-"`
}

// CampaignStats is the per-campaign aggregate for the current period.
type CampaignStats struct {
	CampaignID string  `json:"campaign_id"`
	Name       string  `json:"name"`
	Spend      float64 `json:"spend"`
	Purchases  int64   `json:"purchases"`
	CPA        float64 `json:"cpa"`
}

// SplitPeriods orders the account's daily snapshots by date and splits them
// at the midpoint into a previous and a current period.
func SplitPeriods(days []domain.DailySnapshot) (previous, current []domain.DailySnapshot) {
	sorted := make([]domain.DailySnapshot, len(days))
	copy(sorted, days)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	mid := len(sorted) / 2
	return sorted[:mid], sorted[mid:]
}

// Aggregate reduces a period of daily snapshots to its stats.
func Aggregate(days []domain.DailySnapshot) PeriodStats {
	s := PeriodStats{Days: len(days)}
	for _, d := range days {
		s.Spend += d.Spend
		s.Impressions += d.Impressions
		s.Clicks += d.Clicks
		s.Purchases += d.Purchases
		s.Value += d.Value
		if d.Purchases > 0 {
			s.DailyCPA = append(s.DailyCPA, d.Spend/float64(d.Purchases))
		}
	}
	if s.Purchases > 0 {
		s.CPA = s.Spend / float64(s.Purchases)
	}
	if s.Spend > 0 {
		s.ROAS = s.Value / s.Spend
	}
	if s.Impressions > 0 {
		s.CTR = float64(s.Clicks) / float64(s.Impressions)
	}
	if s.Clicks > 0 {
		s.CVR = float64(s.Purchases) / float64(s.Clicks)
	}
	return s
}

// AggregateCampaigns groups campaign-level daily snapshots by campaign and
// reduces each group to its period stats. Ordered by spend, highest first.
func AggregateCampaigns(days []domain.DailySnapshot) []CampaignStats {
	byID := make(map[string]*CampaignStats)
	var order []string
	for _, d := range days {
		cs, ok := byID[d.EntityID]
		if !ok {
			cs = &CampaignStats{CampaignID: d.EntityID, Name: d.EntityName}
			byID[d.EntityID] = cs
			order = append(order, d.EntityID)
		}
		cs.Spend += d.Spend
		cs.Purchases += d.Purchases
		if d.EntityName != "" {
			cs.Name = d.EntityName
		}
	}

	out := make([]CampaignStats, 0, len(order))
	for _, id := range order {
		cs := byID[id]
		if cs.Purchases > 0 {
			cs.CPA = cs.Spend / float64(cs.Purchases)
		}
		out = append(out, *cs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Spend > out[j].Spend })
	return out
}

// pctChange returns the percentage change from previous to current, 0 when
// there is no previous baseline.
func pctChange(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / previous * 100
}
