package engine

import "github.com/ignite/adpulse/internal/domain"

// Conversion volume below which spreading budget across many sub-units
// starves every one of them of signal.
const fragmentationConversionFloor = 30

// AnalyzeStructure flags budget/structure pathologies. Two independent
// checks; either can fire, fragmentation wins when both do.
//
// FRAGMENTED only makes sense at account/campaign level: an ad has no
// sub-units to fragment across. OVERCONCENTRATED requires a minimum spend
// floor so one ad "dominating" $20 is not flagged.
func AnalyzeStructure(level domain.EntityLevel, rolling domain.RollingMetrics, cfg StructureThresholds) domain.StructureState {
	if level == domain.LevelAccount || level == domain.LevelCampaign {
		if rolling.Conversions7d < fragmentationConversionFloor && rolling.ActiveSubUnits > cfg.MaxActiveSubUnits {
			return domain.StructureFragmented
		}
	}

	if rolling.SpendTop1Pct > cfg.OverconcentrationPct && rolling.Spend7d > cfg.MinSpendForConcentration {
		return domain.StructureOverconcentrated
	}

	return domain.StructureHealthy
}
