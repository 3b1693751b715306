package engine

import (
	"testing"

	"github.com/ignite/adpulse/internal/domain"
)

func fatigueCfg() FatigueThresholds {
	return FatigueThresholds{
		FrequencyMax:       1.0,
		CPAMultiplier:      1.3,
		HookRateDeltaFloor: -0.2,
		ConcentrationMax:   0.6,
	}
}

func TestDetectFatigue(t *testing.T) {
	cfg := fatigueCfg()

	tests := []struct {
		name    string
		rolling domain.RollingMetrics
		concept *domain.ConceptMetrics
		want    domain.FatigueState
	}{
		{
			name: "all three signals degraded is real fatigue",
			rolling: domain.RollingMetrics{
				Frequency7d: 4.5, CPA7d: 60, CPA14d: 40,
				HookRateDelta: -0.3, SpendTop1Pct: 0.7,
			},
			want: domain.FatigueReal,
		},
		{
			name: "high frequency but audience still responding",
			rolling: domain.RollingMetrics{
				Frequency7d: 4.5, CPA7d: 40, CPA14d: 40,
				HookRateDelta: 0.05, SpendTop1Pct: 0.7,
			},
			want: domain.FatigueHealthyRep,
		},
		{
			name: "two of three signals is not fatigue",
			rolling: domain.RollingMetrics{
				Frequency7d: 4.5, CPA7d: 60, CPA14d: 40,
				HookRateDelta: -0.3, SpendTop1Pct: 0.3,
			},
			want: domain.FatigueNone,
		},
		{
			name: "low frequency never triggers entity fatigue",
			rolling: domain.RollingMetrics{
				Frequency7d: 0.8, CPA7d: 60, CPA14d: 40,
				HookRateDelta: -0.3, SpendTop1Pct: 0.7,
			},
			want: domain.FatigueNone,
		},
		{
			name:    "concept decay fires without entity frequency",
			rolling: domain.RollingMetrics{Frequency7d: 0.5},
			concept: &domain.ConceptMetrics{
				ConceptID: "concept-a", AvgCPA7d: 60, AvgCPA14d: 40, HookRateDelta: -0.25,
			},
			want: domain.FatigueConcept,
		},
		{
			name: "decaying concept outranks healthy repetition",
			rolling: domain.RollingMetrics{
				Frequency7d: 4.5, CPA7d: 40, CPA14d: 40,
				HookRateDelta: 0.05, SpendTop1Pct: 0.7,
			},
			concept: &domain.ConceptMetrics{
				ConceptID: "concept-a", AvgCPA7d: 60, AvgCPA14d: 40, HookRateDelta: -0.25,
			},
			want: domain.FatigueConcept,
		},
		{
			name: "real fatigue outranks concept decay",
			rolling: domain.RollingMetrics{
				Frequency7d: 4.5, CPA7d: 60, CPA14d: 40,
				HookRateDelta: -0.3, SpendTop1Pct: 0.7,
			},
			concept: &domain.ConceptMetrics{
				ConceptID: "concept-a", AvgCPA7d: 60, AvgCPA14d: 40, HookRateDelta: -0.25,
			},
			want: domain.FatigueReal,
		},
		{
			name:    "healthy concept stays none",
			rolling: domain.RollingMetrics{Frequency7d: 0.5},
			concept: &domain.ConceptMetrics{
				ConceptID: "concept-a", AvgCPA7d: 42, AvgCPA14d: 40, HookRateDelta: 0.01,
			},
			want: domain.FatigueNone,
		},
		{
			name: "zero 14d CPA cannot satisfy the multiplier",
			rolling: domain.RollingMetrics{
				Frequency7d: 4.5, CPA7d: 60, CPA14d: 0,
				HookRateDelta: -0.3, SpendTop1Pct: 0.7,
			},
			want: domain.FatigueNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectFatigue(tt.rolling, tt.concept, cfg)
			if got != tt.want {
				t.Errorf("DetectFatigue() = %s, want %s", got, tt.want)
			}
		})
	}
}
