package engine

import "github.com/ignite/adpulse/internal/domain"

// DetectFatigue decides whether an entity, or its creative concept, is
// creatively exhausted.
//
// Frequency alone is a noisy fatigue proxy, so REAL fatigue demands the
// full conjunction: worsening CPA, a sinking hook rate, and spend piling
// onto a single top ad. High frequency with neither CPA nor hook-rate
// degradation is HEALTHY_REPETITION: the audience is still responding.
//
// Concept-level decay is evaluated independently of the entity-level
// result whenever concept metrics are supplied, so a fresh or
// healthy-looking ad inside a dying concept is still caught. Only REAL
// outranks it.
func DetectFatigue(rolling domain.RollingMetrics, concept *domain.ConceptMetrics, cfg FatigueThresholds) domain.FatigueState {
	conceptDecay := false
	if concept != nil {
		cpaDecaying := concept.AvgCPA14d > 0 && concept.AvgCPA7d > concept.AvgCPA14d*cfg.CPAMultiplier
		conceptDecay = cpaDecaying && concept.HookRateDelta < cfg.HookRateDeltaFloor
	}

	if rolling.Frequency7d > cfg.FrequencyMax {
		cpaWorse := rolling.CPA14d > 0 && rolling.CPA7d > rolling.CPA14d*cfg.CPAMultiplier
		hookSinking := rolling.HookRateDelta < cfg.HookRateDeltaFloor
		concentrated := rolling.SpendTop1Pct > cfg.ConcentrationMax

		if cpaWorse && hookSinking && concentrated {
			return domain.FatigueReal
		}
		if !cpaWorse && !hookSinking && !conceptDecay {
			return domain.FatigueHealthyRep
		}
	}

	if conceptDecay {
		return domain.FatigueConcept
	}

	return domain.FatigueNone
}
