// Package engine implements the multi-layer classification and decision
// engine: the component that turns rolling performance windows for one
// advertising entity into a structured verdict with evidence and
// confidence.
//
// Every component here is a pure function over its inputs. The engine holds
// no state between runs, performs no I/O, and rereads nothing: the caller
// supplies the snapshot, the rolling windows, the percentile anchors, and
// the client thresholds, and gets one Classification back. Re-running with
// identical inputs produces an identical record except for the stamped
// timestamp.
package engine

import (
	"time"

	"github.com/ignite/adpulse/internal/domain"
)

// Input is everything needed to classify one entity.
type Input struct {
	Snapshot    domain.DailySnapshot
	Rolling     domain.RollingMetrics
	Concept     *domain.ConceptMetrics // optional
	Client      *domain.Client         // optional; carries targets
	Percentiles domain.ClientPercentiles
	Config      Config
}

// Classifier runs the full cascade for one entity at a time. Safe for
// concurrent use: it has no mutable state.
type Classifier struct {
	now func() time.Time
}

// NewClassifier returns a classifier stamping output with the wall clock.
func NewClassifier() *Classifier {
	return &Classifier{now: time.Now}
}

// NewClassifierAt returns a classifier with an injected clock.
func NewClassifierAt(now func() time.Time) *Classifier {
	return &Classifier{now: now}
}

// Classify produces the structured verdict for one entity.
func (cl *Classifier) Classify(in Input) domain.Classification {
	learning := ClassifyLearning(in.Snapshot.DaysActive, in.Snapshot.DaysSinceLastEdit, in.Config.Learning)
	intent := ScoreIntent(in.Snapshot, in.Rolling, in.Percentiles, in.Config)
	fatigue := DetectFatigue(in.Rolling, in.Concept, in.Config.Fatigue)
	structure := AnalyzeStructure(in.Snapshot.Level, in.Rolling, in.Config.Structure)

	_, out := decide(decisionContext{
		snap:      in.Snapshot,
		rolling:   in.Rolling,
		concept:   in.Concept,
		client:    in.Client,
		cfg:       in.Config,
		learning:  learning,
		intent:    intent,
		fatigue:   fatigue,
		structure: structure,
	})

	return domain.Classification{
		ClientID:      in.Snapshot.ClientID,
		Level:         in.Snapshot.Level,
		EntityID:      in.Snapshot.EntityID,
		ConceptID:     in.Snapshot.ConceptID,
		LearningState: learning,
		IntentStage:   intent.Stage,
		IntentScore:   intent.Score,
		Fatigue:       fatigue,
		Structure:     structure,
		Decision:      out.decision,
		Confidence:    out.confidence,
		ImpactScore:   impactScore(in.Rolling, out.decision),
		Evidence:      out.evidence,
		ClassifiedAt:  cl.now().UTC(),
	}
}
