package engine

import "fmt"

// Config holds the per-client, user-editable thresholds the engine reads.
// Every threshold is a plain number or percentage; the engine never
// hard-codes a value it can read from here.
type Config struct {
	Learning  LearningThresholds  `json:"learning" yaml:"learning"`
	Intent    IntentThresholds    `json:"intent" yaml:"intent"`
	Fatigue   FatigueThresholds   `json:"fatigue" yaml:"fatigue"`
	Structure StructureThresholds `json:"structure" yaml:"structure"`
	Alerts    AlertThresholds     `json:"alerts" yaml:"alerts"`
}

// LearningThresholds controls the trust classifier.
type LearningThresholds struct {
	// Edits within this many days mark the entity UNSTABLE.
	UnstableEditDays int `json:"unstable_edit_days" yaml:"unstable_edit_days"`
	// Entities at most this old are still EXPLORATION.
	ExplorationMaxDays int `json:"exploration_max_days" yaml:"exploration_max_days"`
	// Entities at most this old are STABILIZING; older ones are EXPLOITATION.
	StabilizingMaxDays int `json:"stabilizing_max_days" yaml:"stabilizing_max_days"`
}

// IntentThresholds controls funnel-stage bucketing of the intent score.
type IntentThresholds struct {
	BOFUMin float64 `json:"bofu_min" yaml:"bofu_min"`
	MOFUMin float64 `json:"mofu_min" yaml:"mofu_min"`
	// Subtracted from the score when the 3-day budget change exceeds the
	// learning-reset percentage.
	VolatilityPenalty float64 `json:"volatility_penalty" yaml:"volatility_penalty"`
}

// FatigueThresholds controls the creative-exhaustion detector.
type FatigueThresholds struct {
	// 7d frequency above this makes the entity a fatigue candidate.
	FrequencyMax float64 `json:"frequency_max" yaml:"frequency_max"`
	// REAL fatigue needs CPA7d > CPA14d * this multiplier.
	CPAMultiplier float64 `json:"cpa_multiplier" yaml:"cpa_multiplier"`
	// REAL fatigue needs hook-rate delta below this (negative) floor.
	HookRateDeltaFloor float64 `json:"hook_rate_delta_floor" yaml:"hook_rate_delta_floor"`
	// REAL fatigue needs top-ad spend share above this ceiling (0-1).
	ConcentrationMax float64 `json:"concentration_max" yaml:"concentration_max"`
}

// StructureThresholds controls the budget/structure analyzer.
type StructureThresholds struct {
	// More actively-spending sub-units than this, with thin conversions,
	// means FRAGMENTED.
	MaxActiveSubUnits int `json:"max_active_sub_units" yaml:"max_active_sub_units"`
	// A single sub-unit above this spend share (0-1) means OVERCONCENTRATED.
	OverconcentrationPct float64 `json:"overconcentration_pct" yaml:"overconcentration_pct"`
	// Minimum 7d spend before concentration is worth flagging at all.
	MinSpendForConcentration float64 `json:"min_spend_for_concentration" yaml:"min_spend_for_concentration"`
}

// AlertThresholds holds cross-cutting tripwires.
type AlertThresholds struct {
	// Budget changes above this percentage likely reset the platform's
	// learning phase.
	LearningResetBudgetChangePct float64 `json:"learning_reset_budget_change_pct" yaml:"learning_reset_budget_change_pct"`
	// Scaling is vetoed above this 7d frequency.
	ScalingFrequencyMax float64 `json:"scaling_frequency_max" yaml:"scaling_frequency_max"`
}

// Validate rejects threshold combinations the engine cannot interpret.
func (c Config) Validate() error {
	if c.Learning.UnstableEditDays < 0 || c.Learning.ExplorationMaxDays < 1 || c.Learning.StabilizingMaxDays <= c.Learning.ExplorationMaxDays {
		return fmt.Errorf("learning thresholds must satisfy 0 <= unstable, 1 <= exploration < stabilizing")
	}
	if c.Intent.BOFUMin <= c.Intent.MOFUMin || c.Intent.MOFUMin <= 0 || c.Intent.BOFUMin > 1 {
		return fmt.Errorf("intent thresholds must satisfy 0 < mofu_min < bofu_min <= 1")
	}
	if c.Intent.VolatilityPenalty < 0 || c.Intent.VolatilityPenalty > 1 {
		return fmt.Errorf("volatility_penalty must be in [0, 1]")
	}
	if c.Fatigue.FrequencyMax <= 0 || c.Fatigue.CPAMultiplier < 1 {
		return fmt.Errorf("fatigue thresholds must satisfy frequency_max > 0 and cpa_multiplier >= 1")
	}
	if c.Fatigue.ConcentrationMax <= 0 || c.Fatigue.ConcentrationMax > 1 {
		return fmt.Errorf("concentration_max must be in (0, 1]")
	}
	if c.Structure.MaxActiveSubUnits < 1 || c.Structure.OverconcentrationPct <= 0 || c.Structure.OverconcentrationPct > 1 {
		return fmt.Errorf("structure thresholds must satisfy max_active_sub_units >= 1 and overconcentration_pct in (0, 1]")
	}
	if c.Alerts.ScalingFrequencyMax <= 0 {
		return fmt.Errorf("scaling_frequency_max must be positive")
	}
	return nil
}

// DefaultConfig returns the thresholds seeded for a new client before any
// tuning through the admin surface.
func DefaultConfig() Config {
	return Config{
		Learning: LearningThresholds{
			UnstableEditDays:   3,
			ExplorationMaxDays: 4,
			StabilizingMaxDays: 14,
		},
		Intent: IntentThresholds{
			BOFUMin:           0.65,
			MOFUMin:           0.35,
			VolatilityPenalty: 0.05,
		},
		Fatigue: FatigueThresholds{
			FrequencyMax:       3.0,
			CPAMultiplier:      1.3,
			HookRateDeltaFloor: -0.2,
			ConcentrationMax:   0.6,
		},
		Structure: StructureThresholds{
			MaxActiveSubUnits:        5,
			OverconcentrationPct:     0.7,
			MinSpendForConcentration: 100,
		},
		Alerts: AlertThresholds{
			LearningResetBudgetChangePct: 20,
			ScalingFrequencyMax:          2.0,
		},
	}
}
