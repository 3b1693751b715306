package engine

import (
	"testing"

	"github.com/ignite/adpulse/internal/domain"
)

func TestClassifyLearning(t *testing.T) {
	cfg := DefaultConfig().Learning

	tests := []struct {
		name              string
		daysActive        int
		daysSinceLastEdit int
		want              domain.LearningState
	}{
		{"brand new entity", 1, 10, domain.LearningExploration},
		{"exploration boundary", 4, 10, domain.LearningExploration},
		{"stabilizing", 5, 10, domain.LearningStabilizing},
		{"stabilizing boundary", 14, 10, domain.LearningStabilizing},
		{"exploitation", 15, 10, domain.LearningExploitation},
		{"old entity", 120, 30, domain.LearningExploitation},
		{"edited yesterday", 120, 1, domain.LearningUnstable},
		{"edited today", 2, 0, domain.LearningUnstable},
		{"edit boundary exits unstable", 120, 3, domain.LearningExploitation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyLearning(tt.daysActive, tt.daysSinceLastEdit, cfg)
			if got != tt.want {
				t.Errorf("ClassifyLearning(%d, %d) = %s, want %s",
					tt.daysActive, tt.daysSinceLastEdit, got, tt.want)
			}
		})
	}
}

// A recent edit resets trust no matter how old or well-funded the
// entity is.
func TestClassifyLearning_RecentEditAlwaysWins(t *testing.T) {
	cfg := DefaultConfig().Learning
	for _, age := range []int{1, 4, 14, 60, 365} {
		for edit := 0; edit < cfg.UnstableEditDays; edit++ {
			if got := ClassifyLearning(age, edit, cfg); got != domain.LearningUnstable {
				t.Errorf("age=%d edit=%d: got %s, want UNSTABLE", age, edit, got)
			}
		}
	}
}
