package engine

import "github.com/ignite/adpulse/internal/domain"

// ClassifyLearning determines whether an entity's data is trustworthy yet.
// A recent edit always resets trust, regardless of how old the entity is.
// State is recomputed from scratch each run; nothing is persisted between
// runs, so there are no transition bookkeeping bugs to worry about.
func ClassifyLearning(daysActive, daysSinceLastEdit int, cfg LearningThresholds) domain.LearningState {
	switch {
	case daysSinceLastEdit < cfg.UnstableEditDays:
		return domain.LearningUnstable
	case daysActive <= cfg.ExplorationMaxDays:
		return domain.LearningExploration
	case daysActive <= cfg.StabilizingMaxDays:
		return domain.LearningStabilizing
	default:
		return domain.LearningExploitation
	}
}
