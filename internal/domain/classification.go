package domain

import "time"

// LearningState says whether an entity's data is trustworthy yet.
type LearningState string

const (
	LearningUnstable     LearningState = "UNSTABLE"
	LearningExploration  LearningState = "EXPLORATION"
	LearningStabilizing  LearningState = "STABILIZING"
	LearningExploitation LearningState = "EXPLOITATION"
)

// IntentStage is the funnel stage inferred from the intent score.
type IntentStage string

const (
	StageBOFU IntentStage = "BOFU"
	StageMOFU IntentStage = "MOFU"
	StageTOFU IntentStage = "TOFU"
)

// FatigueState is the creative-exhaustion verdict for an entity or its concept.
type FatigueState string

const (
	FatigueNone       FatigueState = "NONE"
	FatigueReal       FatigueState = "REAL"
	FatigueHealthyRep FatigueState = "HEALTHY_REPETITION"
	FatigueConcept    FatigueState = "CONCEPT_DECAY"
)

// StructureState flags budget/structure pathologies.
type StructureState string

const (
	StructureHealthy          StructureState = "HEALTHY"
	StructureFragmented       StructureState = "FRAGMENTED"
	StructureOverconcentrated StructureState = "OVERCONCENTRATED"
)

// Decision is the final recommended action for an entity.
type Decision string

const (
	DecisionScale         Decision = "SCALE"
	DecisionRotateConcept Decision = "ROTATE_CONCEPT"
	DecisionConsolidate   Decision = "CONSOLIDATE"
	DecisionBOFUVariants  Decision = "INTRODUCE_BOFU_VARIANTS"
	DecisionKillRetry     Decision = "KILL_RETRY"
	DecisionHold          Decision = "HOLD"
)

// Classification is the engine's verdict for one entity on one run.
// One record per (client, level, entity); overwritten each run.
type Classification struct {
	ClientID  string      `json:"client_id" db:"client_id"`
	Level     EntityLevel `json:"level" db:"level"`
	EntityID  string      `json:"entity_id" db:"entity_id"`
	ConceptID string      `json:"concept_id,omitempty" db:"concept_id"`

	LearningState LearningState  `json:"learning_state" db:"learning_state"`
	IntentStage   IntentStage    `json:"intent_stage" db:"intent_stage"`
	IntentScore   float64        `json:"intent_score" db:"intent_score"`
	Fatigue       FatigueState   `json:"fatigue" db:"fatigue"`
	Structure     StructureState `json:"structure" db:"structure"`

	Decision     Decision  `json:"decision" db:"decision"`
	Confidence   float64   `json:"confidence" db:"confidence"`
	ImpactScore  float64   `json:"impact_score" db:"impact_score"`
	Evidence     []string  `json:"evidence" db:"evidence"`
	ClassifiedAt time.Time `json:"classified_at" db:"classified_at"`
}

// CreativeBucket is the strategic category assigned to an individual ad.
type CreativeBucket string

const (
	BucketDominantScalable    CreativeBucket = "DOMINANT_SCALABLE"
	BucketWinnerSaturating    CreativeBucket = "WINNER_SATURATING"
	BucketHiddenBOFU          CreativeBucket = "HIDDEN_BOFU"
	BucketInefficientTOFU     CreativeBucket = "INEFFICIENT_TOFU"
	BucketZombie              CreativeBucket = "ZOMBIE"
	BucketNewInsufficientData CreativeBucket = "NEW_INSUFFICIENT_DATA"
)
