// Package findings implements the account-level anomaly detector: a set of
// independent rules comparing the current period against the prior one.
// Every rule that holds appends one finding; none are mutually exclusive.
//
// Thresholds here are deliberately package constants rather than per-client
// configuration: findings are account-wide anomaly detection against
// fixed expectations, while the decision engine's thresholds are per-client
// tuning knobs.
package findings

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/ignite/adpulse/internal/domain"
)

const (
	cpaSpikeThresholdPct      = 25
	roasDropThresholdPct      = 15
	cvrDropThresholdPct       = 15
	ctrStableBandPct          = 5
	ctrDropThresholdPct       = 15
	concentrationTopShare     = 0.2
	concentrationSpendPct     = 80
	concentrationMinCampaigns = 3
	zombieSpendCPAMultiple    = 2
	volatilityCVMax           = 0.5
	volatilityMinPoints       = 3
	underfundedCPAEdgePct     = 20

	// Status stamped on every fresh finding; downstream reporting owns any
	// later transitions.
	statusOpen = "OPEN"
)

// Detector runs the anomaly rules for one client. Stateless apart from the
// injected clock.
type Detector struct {
	now func() time.Time
}

// NewDetector returns a detector stamping findings with the wall clock.
func NewDetector() *Detector {
	return &Detector{now: time.Now}
}

// NewDetectorAt returns a detector with an injected clock.
func NewDetectorAt(now func() time.Time) *Detector {
	return &Detector{now: now}
}

// Detect splits the account's daily snapshots into two periods, aggregates
// them, and runs every rule. The returned batch is append-only downstream.
func (d *Detector) Detect(clientID string, days []domain.DailySnapshot, campaigns []CampaignStats) []domain.Finding {
	prevDays, curDays := SplitPeriods(days)
	prev := Aggregate(prevDays)
	cur := Aggregate(curDays)

	var out []domain.Finding
	add := func(f domain.Finding) {
		f.ID = uuid.New().String()
		f.ClientID = clientID
		f.Status = statusOpen
		f.SchemaVersion = domain.FindingSchemaVersion
		f.CreatedAt = d.now().UTC()
		out = append(out, f)
	}

	d.checkCPASpike(prev, cur, add)
	d.checkROASDrop(prev, cur, add)
	d.checkCVRDrop(prev, cur, add)
	d.checkCTRDrop(prev, cur, add)
	d.checkSpendConcentration(campaigns, add)
	d.checkNoConversionsHighSpend(cur, campaigns, add)
	d.checkVolatility(cur, add)
	d.checkUnderfundedWinners(cur, campaigns, add)

	return out
}

func (d *Detector) checkCPASpike(prev, cur PeriodStats, add func(domain.Finding)) {
	if prev.CPA <= 0 || cur.CPA <= 0 {
		return
	}
	delta := pctChange(cur.CPA, prev.CPA)
	if delta <= cpaSpikeThresholdPct {
		return
	}
	add(domain.Finding{
		Type:     domain.FindingCPASpike,
		Severity: domain.SeverityCritical,
		Title:    "CPA en alza",
		Description: fmt.Sprintf("El CPA subio %.0f%% respecto al periodo anterior ($%.2f vs $%.2f)",
			delta, cur.CPA, prev.CPA),
		Evidence: domain.FindingEvidence{
			Current: cur.CPA, Previous: prev.CPA, Delta: delta, Threshold: cpaSpikeThresholdPct,
		},
	})
}

func (d *Detector) checkROASDrop(prev, cur PeriodStats, add func(domain.Finding)) {
	if prev.ROAS <= 0 {
		return
	}
	delta := pctChange(cur.ROAS, prev.ROAS)
	if delta >= -roasDropThresholdPct {
		return
	}
	add(domain.Finding{
		Type:     domain.FindingROASDrop,
		Severity: domain.SeverityCritical,
		Title:    "ROAS en caida",
		Description: fmt.Sprintf("El ROAS cayo %.0f%% respecto al periodo anterior (%.2f vs %.2f)",
			-delta, cur.ROAS, prev.ROAS),
		Evidence: domain.FindingEvidence{
			Current: cur.ROAS, Previous: prev.ROAS, Delta: delta, Threshold: -roasDropThresholdPct,
		},
	})
}

// CVR down while CTR holds isolates a landing-page/offer problem from an
// ad-relevance problem.
func (d *Detector) checkCVRDrop(prev, cur PeriodStats, add func(domain.Finding)) {
	if prev.CVR <= 0 || prev.CTR <= 0 {
		return
	}
	ctrDelta := pctChange(cur.CTR, prev.CTR)
	cvrDelta := pctChange(cur.CVR, prev.CVR)
	if math.Abs(ctrDelta) > ctrStableBandPct || cvrDelta >= -cvrDropThresholdPct {
		return
	}
	add(domain.Finding{
		Type:     domain.FindingCVRDrop,
		Severity: domain.SeverityWarning,
		Title:    "Conversion cayendo con CTR estable",
		Description: fmt.Sprintf("CTR estable (%.1f%%) pero la tasa de conversion cayo %.0f%%: revisar landing u oferta",
			ctrDelta, -cvrDelta),
		Evidence: domain.FindingEvidence{
			Current: cur.CVR, Previous: prev.CVR, Delta: cvrDelta, Threshold: -cvrDropThresholdPct,
		},
	})
}

func (d *Detector) checkCTRDrop(prev, cur PeriodStats, add func(domain.Finding)) {
	if prev.CTR <= 0 {
		return
	}
	delta := pctChange(cur.CTR, prev.CTR)
	if delta >= -ctrDropThresholdPct {
		return
	}
	add(domain.Finding{
		Type:     domain.FindingCTRDrop,
		Severity: domain.SeverityWarning,
		Title:    "CTR en caida",
		Description: fmt.Sprintf("El CTR cayo %.0f%% respecto al periodo anterior (%.2f%% vs %.2f%%)",
			-delta, cur.CTR*100, prev.CTR*100),
		Evidence: domain.FindingEvidence{
			Current: cur.CTR, Previous: prev.CTR, Delta: delta, Threshold: -ctrDropThresholdPct,
		},
	})
}

func (d *Detector) checkSpendConcentration(campaigns []CampaignStats, add func(domain.Finding)) {
	if len(campaigns) <= concentrationMinCampaigns {
		return
	}
	sorted := make([]CampaignStats, len(campaigns))
	copy(sorted, campaigns)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Spend > sorted[j].Spend })

	topN := int(math.Ceil(float64(len(sorted)) * concentrationTopShare))
	if topN < 1 {
		topN = 1
	}
	var topSpend, total float64
	var names []string
	for i, c := range sorted {
		total += c.Spend
		if i < topN {
			topSpend += c.Spend
			names = append(names, c.Name)
		}
	}
	if total <= 0 {
		return
	}
	share := topSpend / total * 100
	if share <= concentrationSpendPct {
		return
	}
	add(domain.Finding{
		Type:     domain.FindingSpendConcentration,
		Severity: domain.SeverityWarning,
		Title:    "Gasto concentrado en pocas campanas",
		Description: fmt.Sprintf("%d de %d campanas concentran el %.0f%% del gasto",
			topN, len(sorted), share),
		Entities: names,
		Evidence: domain.FindingEvidence{
			Current: share, Previous: 0, Delta: share, Threshold: concentrationSpendPct,
		},
	})
}

func (d *Detector) checkNoConversionsHighSpend(cur PeriodStats, campaigns []CampaignStats, add func(domain.Finding)) {
	if cur.CPA <= 0 {
		return
	}
	floor := cur.CPA * zombieSpendCPAMultiple
	var names []string
	var worstSpend float64
	for _, c := range campaigns {
		if c.Purchases == 0 && c.Spend > floor {
			names = append(names, c.Name)
			if c.Spend > worstSpend {
				worstSpend = c.Spend
			}
		}
	}
	if len(names) == 0 {
		return
	}
	add(domain.Finding{
		Type:     domain.FindingNoConversionsHighSpend,
		Severity: domain.SeverityCritical,
		Title:    "Gasto sin conversiones",
		Description: fmt.Sprintf("%d campana(s) sin compras gastando mas de $%.2f (2x el CPA promedio de la cuenta)",
			len(names), floor),
		Entities: names,
		Evidence: domain.FindingEvidence{
			Current: worstSpend, Previous: 0, Delta: worstSpend, Threshold: floor,
		},
	})
}

func (d *Detector) checkVolatility(cur PeriodStats, add func(domain.Finding)) {
	if len(cur.DailyCPA) <= volatilityMinPoints {
		return
	}
	mean := 0.0
	for _, v := range cur.DailyCPA {
		mean += v
	}
	mean /= float64(len(cur.DailyCPA))
	if mean <= 0 {
		return
	}
	variance := 0.0
	for _, v := range cur.DailyCPA {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(cur.DailyCPA))
	cv := math.Sqrt(variance) / mean
	if cv <= volatilityCVMax {
		return
	}
	add(domain.Finding{
		Type:     domain.FindingVolatility,
		Severity: domain.SeverityWarning,
		Title:    "CPA diario volatil",
		Description: fmt.Sprintf("El CPA diario varia demasiado (coeficiente de variacion %.2f sobre %d dias)",
			cv, len(cur.DailyCPA)),
		Evidence: domain.FindingEvidence{
			Current: cv, Previous: 0, Delta: cv, Threshold: volatilityCVMax,
		},
	})
}

// Underfunded winners is a positive-signal finding: campaigns beating the
// account CPA that receive less than their fair share of budget.
func (d *Detector) checkUnderfundedWinners(cur PeriodStats, campaigns []CampaignStats, add func(domain.Finding)) {
	if cur.CPA <= 0 || len(campaigns) == 0 {
		return
	}
	var totalSpend float64
	for _, c := range campaigns {
		totalSpend += c.Spend
	}
	avgSpend := totalSpend / float64(len(campaigns))
	cpaCeiling := cur.CPA * (1 - underfundedCPAEdgePct/100.0)

	var names []string
	var bestCPA float64
	for _, c := range campaigns {
		if c.Purchases > 0 && c.CPA > 0 && c.CPA <= cpaCeiling && c.Spend < avgSpend {
			names = append(names, c.Name)
			if bestCPA == 0 || c.CPA < bestCPA {
				bestCPA = c.CPA
			}
		}
	}
	if len(names) == 0 {
		return
	}
	add(domain.Finding{
		Type:     domain.FindingUnderfundedWinners,
		Severity: domain.SeverityHealthy,
		Title:    "Ganadoras con poco presupuesto",
		Description: fmt.Sprintf("%d campana(s) con CPA al menos %d%% mejor que el promedio reciben menos gasto que la media",
			len(names), underfundedCPAEdgePct),
		Entities: names,
		Evidence: domain.FindingEvidence{
			Current: bestCPA, Previous: cur.CPA, Delta: pctChange(bestCPA, cur.CPA), Threshold: -underfundedCPAEdgePct,
		},
	})
}
