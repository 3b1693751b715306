package engine

import (
	"testing"

	"github.com/ignite/adpulse/internal/domain"
)

func TestAnalyzeStructure(t *testing.T) {
	cfg := DefaultConfig().Structure

	tests := []struct {
		name    string
		level   domain.EntityLevel
		rolling domain.RollingMetrics
		want    domain.StructureState
	}{
		{
			name:    "fragmented campaign",
			level:   domain.LevelCampaign,
			rolling: domain.RollingMetrics{Conversions7d: 12, ActiveSubUnits: 9, Spend7d: 400},
			want:    domain.StructureFragmented,
		},
		{
			name:    "many sub-units with enough conversions is fine",
			level:   domain.LevelCampaign,
			rolling: domain.RollingMetrics{Conversions7d: 45, ActiveSubUnits: 9, Spend7d: 400},
			want:    domain.StructureHealthy,
		},
		{
			name:    "fragmentation not evaluated at ad level",
			level:   domain.LevelAd,
			rolling: domain.RollingMetrics{Conversions7d: 12, ActiveSubUnits: 9},
			want:    domain.StructureHealthy,
		},
		{
			name:    "overconcentrated with real spend",
			level:   domain.LevelAdSet,
			rolling: domain.RollingMetrics{SpendTop1Pct: 0.85, Spend7d: 500},
			want:    domain.StructureOverconcentrated,
		},
		{
			name:    "dominating twenty dollars is not a pathology",
			level:   domain.LevelAdSet,
			rolling: domain.RollingMetrics{SpendTop1Pct: 0.95, Spend7d: 20},
			want:    domain.StructureHealthy,
		},
		{
			name:    "fragmentation outranks concentration",
			level:   domain.LevelAccount,
			rolling: domain.RollingMetrics{Conversions7d: 5, ActiveSubUnits: 12, SpendTop1Pct: 0.9, Spend7d: 2000},
			want:    domain.StructureFragmented,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnalyzeStructure(tt.level, tt.rolling, cfg)
			if got != tt.want {
				t.Errorf("AnalyzeStructure() = %s, want %s", got, tt.want)
			}
		})
	}
}
