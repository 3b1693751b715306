package engine

import (
	"fmt"

	"github.com/ignite/adpulse/internal/domain"
)

// decisionContext bundles everything a matrix rule may inspect.
type decisionContext struct {
	snap      domain.DailySnapshot
	rolling   domain.RollingMetrics
	concept   *domain.ConceptMetrics
	client    *domain.Client
	cfg       Config
	learning  domain.LearningState
	intent    IntentResult
	fatigue   domain.FatigueState
	structure domain.StructureState
}

// outcome is what a matched rule produces.
type outcome struct {
	decision   domain.Decision
	confidence float64
	evidence   []string
}

// decisionRule is one guard/result pair in the matrix. apply returns nil
// when the guard does not hold.
type decisionRule struct {
	name  string
	apply func(decisionContext) *outcome
}

// decisionMatrix is the priority-ordered rule cascade. Strictly first-match
// wins: once an earlier rule fires, later rules are unreachable. Keeping
// the cascade as data keeps the ordering auditable and testable rule by
// rule.
var decisionMatrix = []decisionRule{
	{
		name: "exploration_zero_conversions",
		apply: func(c decisionContext) *outcome {
			if c.learning != domain.LearningExploration || c.rolling.Spend7d <= 50 || c.rolling.Conversions7d != 0 {
				return nil
			}
			return &outcome{
				decision:   domain.DecisionKillRetry,
				confidence: 0.8,
				evidence: []string{
					fmt.Sprintf("Sin conversiones en 7 dias con $%.0f invertidos durante exploracion", c.rolling.Spend7d),
				},
			}
		},
	},
	{
		name: "exploration_hold",
		apply: func(c decisionContext) *outcome {
			if c.learning != domain.LearningExploration {
				return nil
			}
			return &outcome{
				decision:   domain.DecisionHold,
				confidence: 0.9,
				evidence: []string{
					fmt.Sprintf("Entidad en exploracion (%d dias activa), demasiado pronto para juzgar", c.snap.DaysActive),
				},
			}
		},
	},
	{
		name: "unstable_hold",
		apply: func(c decisionContext) *outcome {
			if c.learning != domain.LearningUnstable {
				return nil
			}
			ev := []string{
				fmt.Sprintf("Editada hace %d dias, dejar que re-estabilice", c.snap.DaysSinceLastEdit),
			}
			if abs(c.rolling.BudgetChangePct3d) > c.cfg.Alerts.LearningResetBudgetChangePct {
				ev = append(ev, fmt.Sprintf(
					"Cambio de presupuesto del %.0f%% en 3 dias, probable reinicio del learning",
					abs(c.rolling.BudgetChangePct3d)))
			}
			return &outcome{decision: domain.DecisionHold, confidence: 0.85, evidence: ev}
		},
	},
	{
		name: "fatigue_rotate",
		apply: func(c decisionContext) *outcome {
			switch c.fatigue {
			case domain.FatigueReal:
				return &outcome{
					decision:   domain.DecisionRotateConcept,
					confidence: 0.85,
					evidence: []string{
						fmt.Sprintf("Fatiga creativa real: frecuencia %.1f, CPA 7d ($%.2f) vs 14d ($%.2f), hook rate %.2f",
							c.rolling.Frequency7d, c.rolling.CPA7d, c.rolling.CPA14d, c.rolling.HookRateDelta),
					},
				}
			case domain.FatigueConcept:
				ev := []string{"Concepto creativo en decadencia: CPA promedio del concepto empeorando con hook rate en caida"}
				if c.concept != nil {
					ev = []string{fmt.Sprintf(
						"Concepto %s en decadencia: CPA promedio 7d ($%.2f) vs 14d ($%.2f), hook rate %.2f",
						c.concept.ConceptID, c.concept.AvgCPA7d, c.concept.AvgCPA14d, c.concept.HookRateDelta)}
				}
				return &outcome{decision: domain.DecisionRotateConcept, confidence: 0.85, evidence: ev}
			}
			return nil
		},
	},
	{
		name: "fragmented_consolidate",
		apply: func(c decisionContext) *outcome {
			if c.structure != domain.StructureFragmented {
				return nil
			}
			return &outcome{
				decision:   domain.DecisionConsolidate,
				confidence: 0.8,
				evidence: []string{
					fmt.Sprintf("Estructura fragmentada: %d sub-unidades activas con solo %d conversiones en 7 dias",
						c.rolling.ActiveSubUnits, c.rolling.Conversions7d),
				},
			}
		},
	},
	{
		name: "overconcentrated_consolidate",
		apply: func(c decisionContext) *outcome {
			if c.structure != domain.StructureOverconcentrated {
				return nil
			}
			return &outcome{
				decision:   domain.DecisionConsolidate,
				confidence: 0.7,
				evidence: []string{
					fmt.Sprintf("Sobreconcentracion: %.0f%% del gasto ($%.0f en 7 dias) en una sola sub-unidad",
						c.rolling.SpendTop1Pct*100, c.rolling.Spend7d),
				},
			}
		},
	},
	{
		name: "exploitation_bofu_scale",
		apply: func(c decisionContext) *outcome {
			if c.learning != domain.LearningExploitation || c.intent.Stage != domain.StageBOFU {
				return nil
			}
			if c.client == nil {
				return nil
			}
			cpaOK := c.client.TargetCPA > 0 && c.rolling.CPA7d > 0 && c.rolling.CPA7d <= c.client.TargetCPA
			roasOK := c.client.TargetROAS > 0 && c.rolling.ROAS7d >= c.client.TargetROAS
			if !cpaOK && !roasOK {
				return nil
			}
			if c.rolling.Velocity7d < c.rolling.Velocity14d {
				return nil
			}
			if c.rolling.Frequency7d >= c.cfg.Alerts.ScalingFrequencyMax {
				return nil
			}
			if c.snap.DaysSinceLastEdit < c.cfg.Learning.UnstableEditDays {
				return nil
			}
			var ev []string
			if cpaOK {
				ev = append(ev, fmt.Sprintf("CPA ($%.2f) dentro del target ($%.2f)", c.rolling.CPA7d, c.client.TargetCPA))
			}
			if roasOK {
				ev = append(ev, fmt.Sprintf("ROAS (%.2f) sobre el target (%.2f)", c.rolling.ROAS7d, c.client.TargetROAS))
			}
			ev = append(ev,
				fmt.Sprintf("Velocidad de conversion estable o creciente (%.1f/dia vs %.1f/dia)",
					c.rolling.Velocity7d, c.rolling.Velocity14d),
				fmt.Sprintf("Frecuencia %.1f bajo el limite de escalado %.1f",
					c.rolling.Frequency7d, c.cfg.Alerts.ScalingFrequencyMax),
			)
			return &outcome{decision: domain.DecisionScale, confidence: 0.88, evidence: ev}
		},
	},
	{
		name: "exploitation_mofu_variants",
		apply: func(c decisionContext) *outcome {
			if c.learning != domain.LearningExploitation || c.intent.Stage != domain.StageMOFU {
				return nil
			}
			return &outcome{
				decision:   domain.DecisionBOFUVariants,
				confidence: 0.75,
				evidence: []string{
					fmt.Sprintf("Intencion MOFU (score %.2f) en explotacion: introducir variantes BOFU", c.intent.Score),
				},
			}
		},
	},
	{
		name: "default_hold",
		apply: func(c decisionContext) *outcome {
			return &outcome{
				decision:   domain.DecisionHold,
				confidence: 0.95,
				evidence:   []string{"Sin senales accionables, mantener configuracion actual"},
			}
		},
	},
}

// decide runs the matrix top-down and returns the first match. The default
// rule always matches, so a result is guaranteed.
func decide(c decisionContext) (string, outcome) {
	for _, rule := range decisionMatrix {
		if out := rule.apply(c); out != nil {
			return rule.name, *out
		}
	}
	// Unreachable: default_hold has no guard.
	return "default_hold", outcome{decision: domain.DecisionHold, confidence: 0.95}
}

// impactScore biases toward entities where money is at stake and the
// recommended action is consequential.
func impactScore(rolling domain.RollingMetrics, d domain.Decision) float64 {
	spendFactor := rolling.Spend7d / 1000
	if spendFactor > 1 {
		spendFactor = 1
	}
	velFactor := rolling.Velocity7d / 5
	if velFactor > 1 {
		velFactor = 1
	}
	severity := 20.0
	switch d {
	case domain.DecisionScale, domain.DecisionRotateConcept, domain.DecisionKillRetry:
		severity = 40.0
	}
	return spendFactor*40 + severity + velFactor*20
}
