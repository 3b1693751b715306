package engine

import (
	"sort"

	"github.com/ignite/adpulse/internal/domain"
)

// Fallback anchors used when a client has no population to derive a
// distribution from (new account, first sync). Calibrated on aggregate
// e-commerce benchmarks; they only matter until real data arrives.
var fallbackAnchors = domain.ClientPercentiles{
	FitRate:  domain.PercentileAnchor{P10: 0.005, P90: 0.05},
	ConvRate: domain.PercentileAnchor{P10: 0.0005, P90: 0.01},
	CPAInv:   domain.PercentileAnchor{P10: 0.005, P90: 0.1},
	CTR:      domain.PercentileAnchor{P10: 0.005, P90: 0.03},
}

// percentile returns the p-th percentile (0-100) of the positive values
// extracted from the population, using nearest-rank with linear
// interpolation between adjacent ranks. Returns (0, false) when no
// positive values exist.
func percentile(population []domain.RollingMetrics, p float64, extract func(domain.RollingMetrics) float64) (float64, bool) {
	var values []float64
	for _, m := range population {
		if v := extract(m); v > 0 {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return 0, false
	}
	sort.Float64s(values)

	if len(values) == 1 {
		return values[0], true
	}

	rank := p / 100 * float64(len(values)-1)
	lo := int(rank)
	hi := lo + 1
	if hi >= len(values) {
		return values[len(values)-1], true
	}
	frac := rank - float64(lo)
	return values[lo] + frac*(values[hi]-values[lo]), true
}

// anchorFor computes a P10/P90 anchor pair for one signal, falling back to
// the given default when the population carries no positive values.
func anchorFor(population []domain.RollingMetrics, extract func(domain.RollingMetrics) float64, fallback domain.PercentileAnchor) domain.PercentileAnchor {
	p10, ok10 := percentile(population, 10, extract)
	p90, ok90 := percentile(population, 90, extract)
	if !ok10 || !ok90 {
		return fallback
	}
	return domain.PercentileAnchor{P10: p10, P90: p90}
}

func extractFitRate(m domain.RollingMetrics) float64 {
	if m.Clicks7d == 0 {
		return 0
	}
	return float64(m.Conversions7d) / float64(m.Clicks7d)
}

func extractConvRate(m domain.RollingMetrics) float64 {
	if m.Impressions7d == 0 {
		return 0
	}
	return float64(m.Conversions7d) / float64(m.Impressions7d)
}

func extractCPAInv(m domain.RollingMetrics) float64 {
	if m.Spend7d <= 0 || m.Conversions7d == 0 {
		return 0
	}
	return float64(m.Conversions7d) / m.Spend7d
}

func extractCTR(m domain.RollingMetrics) float64 {
	if m.Impressions7d == 0 {
		return 0
	}
	return float64(m.Clicks7d) / float64(m.Impressions7d)
}

// ComputePercentiles derives the four intent-signal anchor pairs from the
// full population of a client's rolling metrics. Computed once per
// classification pass and passed read-only to every entity; never persisted
// as authoritative, so anchors always reflect today's account shape.
func ComputePercentiles(clientID string, population []domain.RollingMetrics) domain.ClientPercentiles {
	return domain.ClientPercentiles{
		ClientID: clientID,
		FitRate:  anchorFor(population, extractFitRate, fallbackAnchors.FitRate),
		ConvRate: anchorFor(population, extractConvRate, fallbackAnchors.ConvRate),
		CPAInv:   anchorFor(population, extractCPAInv, fallbackAnchors.CPAInv),
		CTR:      anchorFor(population, extractCTR, fallbackAnchors.CTR),
	}
}
