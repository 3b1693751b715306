package creative

import (
	"sort"
	"strings"
	"unicode"

	"github.com/ignite/adpulse/internal/domain"
)

const maxHookTokens = 10

// Patterns summarizes the winning creative population. Informational
// output for brief generation; it never feeds back into decisions.
type Patterns struct {
	Ads           int                `json:"ads"`
	AvgCPA        float64            `json:"avg_cpa"`
	AvgROAS       float64            `json:"avg_roas"`
	DominantStage domain.IntentStage `json:"dominant_stage"`
	HookTokens    []TokenCount       `json:"hook_tokens"`
}

// TokenCount is one lexical token mined from ad names with its frequency.
type TokenCount struct {
	Token string `json:"token"`
	Count int    `json:"count"`
}

// Naming-convention noise that never identifies a creative hook.
var tokenStopwords = map[string]bool{
	"ad": true, "video": true, "img": true, "image": true, "static": true,
	"copy": true, "new": true, "final": true, "test": true, "v1": true,
	"v2": true, "v3": true, "es": true, "en": true, "mx": true, "us": true,
	"feed": true, "story": true, "reel": true, "reels": true, "ugc": true,
}

// ExtractPatterns aggregates only the winner buckets (DOMINANT_SCALABLE and
// HIDDEN_BOFU): average CPA/ROAS, the dominant funnel stage, and the hook
// tokens their names share.
func ExtractPatterns(ads []AdInput, assignments []Assignment) Patterns {
	winners := map[string]bool{}
	for _, a := range assignments {
		if a.Bucket == domain.BucketDominantScalable || a.Bucket == domain.BucketHiddenBOFU {
			winners[a.EntityID] = true
		}
	}

	var p Patterns
	var cpaSum, roasSum float64
	var cpaN, roasN int
	stageCounts := map[domain.IntentStage]int{}
	tokenCounts := map[string]int{}

	for _, ad := range ads {
		if !winners[ad.Snapshot.EntityID] {
			continue
		}
		p.Ads++
		if ad.Rolling.CPA7d > 0 {
			cpaSum += ad.Rolling.CPA7d
			cpaN++
		}
		if ad.Rolling.ROAS7d > 0 {
			roasSum += ad.Rolling.ROAS7d
			roasN++
		}
		stageCounts[ad.Class.IntentStage]++
		for _, tok := range hookTokens(ad.Snapshot.EntityName) {
			tokenCounts[tok]++
		}
	}

	if cpaN > 0 {
		p.AvgCPA = cpaSum / float64(cpaN)
	}
	if roasN > 0 {
		p.AvgROAS = roasSum / float64(roasN)
	}

	best := 0
	for stage, n := range stageCounts {
		if n > best || (n == best && stage == domain.StageBOFU) {
			best = n
			p.DominantStage = stage
		}
	}

	for tok, n := range tokenCounts {
		p.HookTokens = append(p.HookTokens, TokenCount{Token: tok, Count: n})
	}
	sort.Slice(p.HookTokens, func(i, j int) bool {
		if p.HookTokens[i].Count != p.HookTokens[j].Count {
			return p.HookTokens[i].Count > p.HookTokens[j].Count
		}
		return p.HookTokens[i].Token < p.HookTokens[j].Token
	})
	if len(p.HookTokens) > maxHookTokens {
		p.HookTokens = p.HookTokens[:maxHookTokens]
	}
	return p
}

// hookTokens splits an ad name on the usual naming-convention separators
// and keeps the tokens that could identify a creative hook.
func hookTokens(name string) []string {
	fields := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return r == '|' || r == '_' || r == '-' || r == '/' || r == '[' || r == ']' || unicode.IsSpace(r)
	})
	var out []string
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if len(f) < 3 || tokenStopwords[f] || isNumeric(f) {
			continue
		}
		out = append(out, f)
	}
	return out
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return len(s) > 0
}
