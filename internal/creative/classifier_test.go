package creative

import (
	"testing"

	"github.com/ignite/adpulse/internal/domain"
)

func ad(id, name string, daysActive int, impressions int64, spend7d float64, conv7d int64, cpa7d float64,
	stage domain.IntentStage, decision domain.Decision, fatigue domain.FatigueState) AdInput {
	return AdInput{
		Snapshot: domain.DailySnapshot{
			ClientID: "client-1", Level: domain.LevelAd,
			EntityID: id, EntityName: name,
			DaysActive: daysActive, Impressions: impressions,
		},
		Rolling: domain.RollingMetrics{
			Spend7d: spend7d, Conversions7d: conv7d, CPA7d: cpa7d,
		},
		Class: domain.Classification{
			EntityID: id, IntentStage: stage, Decision: decision, Fatigue: fatigue,
		},
	}
}

func bucketOf(t *testing.T, assignments []Assignment, id string) domain.CreativeBucket {
	t.Helper()
	for _, a := range assignments {
		if a.EntityID == id {
			return a.Bucket
		}
	}
	t.Fatalf("no assignment for %s", id)
	return ""
}

func TestClassifyAds_Cascade(t *testing.T) {
	client := &domain.Client{ID: "client-1", TargetCPA: 50}

	ads := []AdInput{
		// daysActive 2, barely any impressions: no verdict possible.
		ad("new", "UGC | Testimonial | v1", 2, 500, 10, 0, 0,
			domain.StageTOFU, domain.DecisionHold, domain.FatigueNone),
		// $80 with zero conversions: burning money.
		ad("zombie", "Static | Promo | Black", 10, 50000, 80, 0, 0,
			domain.StageTOFU, domain.DecisionHold, domain.FatigueNone),
		// BOFU, SCALE, and more than 30% of account spend.
		ad("dominant", "Video | Unboxing | Hook-Pain", 20, 90000, 600, 20, 30,
			domain.StageBOFU, domain.DecisionScale, domain.FatigueNone),
		// BOFU but creatively exhausted.
		ad("saturating", "Video | Unboxing | Hook-Pain | v4", 30, 80000, 120, 6, 20,
			domain.StageBOFU, domain.DecisionRotateConcept, domain.FatigueReal),
		// BOFU with conversions but spend under the 25th percentile.
		ad("hidden", "UGC | Review | Maria", 15, 20000, 40, 3, 13,
			domain.StageBOFU, domain.DecisionHold, domain.FatigueNone),
		// TOFU burning over $100 at triple the target CPA.
		ad("inefficient", "Video | Brand | Awareness", 25, 60000, 160, 1, 160,
			domain.StageTOFU, domain.DecisionHold, domain.FatigueNone),
	}

	got := ClassifyAds(ads, client)
	want := map[string]domain.CreativeBucket{
		"new":         domain.BucketNewInsufficientData,
		"zombie":      domain.BucketZombie,
		"dominant":    domain.BucketDominantScalable,
		"saturating":  domain.BucketWinnerSaturating,
		"hidden":      domain.BucketHiddenBOFU,
		"inefficient": domain.BucketInefficientTOFU,
	}
	for id, bucket := range want {
		if b := bucketOf(t, got, id); b != bucket {
			t.Errorf("%s: bucket = %s, want %s", id, b, bucket)
		}
	}
}

func TestClassifyAds_SecondaryZombieFloor(t *testing.T) {
	// $40 with zero conversions passes the $50 early gate but hits the $30
	// floor later in the cascade.
	ads := []AdInput{
		ad("late-zombie", "Static | Promo", 10, 30000, 40, 0, 0,
			domain.StageMOFU, domain.DecisionHold, domain.FatigueNone),
		ad("filler", "Video | Demo", 15, 40000, 300, 10, 30,
			domain.StageMOFU, domain.DecisionHold, domain.FatigueNone),
	}
	got := ClassifyAds(ads, nil)
	if b := bucketOf(t, got, "late-zombie"); b != domain.BucketZombie {
		t.Errorf("bucket = %s, want ZOMBIE via late floor", b)
	}
}

func TestClassifyAds_BOFUHighShareCatchAll(t *testing.T) {
	// BOFU ad with no target, no SCALE decision and no fatigue, but a
	// dominant spend share: the catch-all claims it.
	ads := []AdInput{
		ad("whale", "Video | Offer", 20, 90000, 900, 9, 100,
			domain.StageBOFU, domain.DecisionHold, domain.FatigueNone),
		ad("minnow", "Video | Offer | v2", 20, 10000, 100, 2, 50,
			domain.StageMOFU, domain.DecisionHold, domain.FatigueNone),
	}
	got := ClassifyAds(ads, nil)
	if b := bucketOf(t, got, "whale"); b != domain.BucketDominantScalable {
		t.Errorf("bucket = %s, want DOMINANT_SCALABLE via catch-all", b)
	}
	if b := bucketOf(t, got, "minnow"); b != domain.BucketNewInsufficientData {
		t.Errorf("minnow bucket = %s, want NEW_INSUFFICIENT_DATA last resort", b)
	}
}

func TestClassifyAds_SpendShare(t *testing.T) {
	ads := []AdInput{
		ad("a", "A", 10, 10000, 750, 5, 150, domain.StageMOFU, domain.DecisionHold, domain.FatigueNone),
		ad("b", "B", 10, 10000, 250, 5, 50, domain.StageMOFU, domain.DecisionHold, domain.FatigueNone),
	}
	got := ClassifyAds(ads, nil)
	for _, a := range got {
		switch a.EntityID {
		case "a":
			if a.SpendShare != 0.75 {
				t.Errorf("a spend share = %v", a.SpendShare)
			}
		case "b":
			if a.SpendShare != 0.25 {
				t.Errorf("b spend share = %v", a.SpendShare)
			}
		}
	}
}

func TestClassifyAds_EmptyPopulation(t *testing.T) {
	if got := ClassifyAds(nil, nil); len(got) != 0 {
		t.Errorf("expected empty assignments, got %v", got)
	}
}
