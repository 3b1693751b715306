// Package creative buckets individual ads into strategic categories using
// the decision engine's per-ad output plus spend-share statistics, and
// mines naming-convention patterns from the winning population.
package creative

import (
	"sort"

	"github.com/ignite/adpulse/internal/domain"
)

const (
	minDataDays            = 4
	minDataImpressions     = 2000
	zombieSpendFloor       = 50
	zombieSpendFloorLate   = 30
	dominantSpendShare     = 0.30
	inefficientSpendMin    = 100
	inefficientCPAMultiple = 1.5
)

// AdInput is one ad's full context for strategic bucketing.
type AdInput struct {
	Snapshot domain.DailySnapshot
	Rolling  domain.RollingMetrics
	Class    domain.Classification
}

// Assignment is the strategic bucket for one ad.
type Assignment struct {
	EntityID   string                `json:"entity_id"`
	EntityName string                `json:"entity_name"`
	Bucket     domain.CreativeBucket `json:"bucket"`
	SpendShare float64               `json:"spend_share"`
}

// adContext adds the account-relative statistics each rule may use.
type adContext struct {
	ad         AdInput
	client     *domain.Client
	spendShare float64
	p25Spend   float64
}

// bucketRule is one guard in the strategic cascade.
type bucketRule struct {
	name  string
	apply func(adContext) (domain.CreativeBucket, bool)
}

func targetCPA(c *domain.Client) float64 {
	if c == nil {
		return 0
	}
	return c.TargetCPA
}

// strategicCascade is evaluated top-down, first match wins, mirroring the
// decision matrix's ordering discipline.
var strategicCascade = []bucketRule{
	{
		name: "new_insufficient_data",
		apply: func(c adContext) (domain.CreativeBucket, bool) {
			if c.ad.Snapshot.DaysActive < minDataDays && c.ad.Snapshot.Impressions < minDataImpressions {
				return domain.BucketNewInsufficientData, true
			}
			return "", false
		},
	},
	{
		name: "zombie_spend",
		apply: func(c adContext) (domain.CreativeBucket, bool) {
			if c.ad.Rolling.Spend7d > zombieSpendFloor && c.ad.Rolling.Conversions7d == 0 {
				return domain.BucketZombie, true
			}
			return "", false
		},
	},
	{
		name: "dominant_scalable",
		apply: func(c adContext) (domain.CreativeBucket, bool) {
			if c.ad.Class.IntentStage != domain.StageBOFU {
				return "", false
			}
			target := targetCPA(c.client)
			cpaWithinTarget := target > 0 && c.ad.Rolling.CPA7d > 0 && c.ad.Rolling.CPA7d <= target
			if (c.ad.Class.Decision == domain.DecisionScale || cpaWithinTarget) && c.spendShare > dominantSpendShare {
				return domain.BucketDominantScalable, true
			}
			return "", false
		},
	},
	{
		name: "winner_saturating",
		apply: func(c adContext) (domain.CreativeBucket, bool) {
			if c.ad.Class.IntentStage != domain.StageBOFU {
				return "", false
			}
			if c.ad.Class.Fatigue == domain.FatigueReal || c.ad.Class.Fatigue == domain.FatigueConcept {
				return domain.BucketWinnerSaturating, true
			}
			return "", false
		},
	},
	{
		name: "hidden_bofu",
		apply: func(c adContext) (domain.CreativeBucket, bool) {
			if c.ad.Class.IntentStage == domain.StageBOFU &&
				c.ad.Rolling.Conversions7d > 0 &&
				c.ad.Rolling.Spend7d < c.p25Spend {
				return domain.BucketHiddenBOFU, true
			}
			return "", false
		},
	},
	{
		name: "inefficient_tofu",
		apply: func(c adContext) (domain.CreativeBucket, bool) {
			target := targetCPA(c.client)
			if c.ad.Class.IntentStage == domain.StageTOFU &&
				c.ad.Rolling.Spend7d > inefficientSpendMin &&
				target > 0 && c.ad.Rolling.CPA7d > target*inefficientCPAMultiple {
				return domain.BucketInefficientTOFU, true
			}
			return "", false
		},
	},
	{
		name: "zombie_spend_late",
		apply: func(c adContext) (domain.CreativeBucket, bool) {
			if c.ad.Rolling.Spend7d > zombieSpendFloorLate && c.ad.Rolling.Conversions7d == 0 {
				return domain.BucketZombie, true
			}
			return "", false
		},
	},
	{
		name: "bofu_high_share_catchall",
		apply: func(c adContext) (domain.CreativeBucket, bool) {
			if c.ad.Class.IntentStage == domain.StageBOFU && c.spendShare > dominantSpendShare {
				return domain.BucketDominantScalable, true
			}
			return "", false
		},
	},
}

// ClassifyAds assigns every ad its strategic bucket. Spend share and the
// 25th-percentile spend are computed over the supplied population, so the
// caller passes all of an account's ads in one call.
func ClassifyAds(ads []AdInput, client *domain.Client) []Assignment {
	var totalSpend float64
	spends := make([]float64, 0, len(ads))
	for _, ad := range ads {
		totalSpend += ad.Rolling.Spend7d
		spends = append(spends, ad.Rolling.Spend7d)
	}
	p25 := spendPercentile(spends, 25)

	out := make([]Assignment, 0, len(ads))
	for _, ad := range ads {
		ctx := adContext{ad: ad, client: client, p25Spend: p25}
		if totalSpend > 0 {
			ctx.spendShare = ad.Rolling.Spend7d / totalSpend
		}

		bucket := domain.BucketNewInsufficientData
		for _, rule := range strategicCascade {
			if b, ok := rule.apply(ctx); ok {
				bucket = b
				break
			}
		}

		out = append(out, Assignment{
			EntityID:   ad.Snapshot.EntityID,
			EntityName: ad.Snapshot.EntityName,
			Bucket:     bucket,
			SpendShare: ctx.spendShare,
		})
	}
	return out
}

// spendPercentile is the same nearest-rank interpolation the engine uses,
// inlined over a plain slice.
func spendPercentile(values []float64, p float64) float64 {
	var positive []float64
	for _, v := range values {
		if v > 0 {
			positive = append(positive, v)
		}
	}
	if len(positive) == 0 {
		return 0
	}
	sort.Float64s(positive)
	if len(positive) == 1 {
		return positive[0]
	}
	rank := p / 100 * float64(len(positive)-1)
	lo := int(rank)
	hi := lo + 1
	if hi >= len(positive) {
		return positive[len(positive)-1]
	}
	frac := rank - float64(lo)
	return positive[lo] + frac*(positive[hi]-positive[lo])
}
