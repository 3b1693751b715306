package findings

import (
	"testing"
	"time"

	"github.com/ignite/adpulse/internal/domain"
)

func campaignDay(campaignID, name string, offset int, spend float64, purchases int64) domain.DailySnapshot {
	return domain.DailySnapshot{
		ClientID:   "client-1",
		Level:      domain.LevelCampaign,
		EntityID:   campaignID,
		EntityName: name,
		Date:       time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset),
		Spend:      spend,
		Purchases:  purchases,
	}
}

func TestAggregateCampaigns(t *testing.T) {
	days := []domain.DailySnapshot{
		campaignDay("c-1", "Prospecting", 0, 100, 2),
		campaignDay("c-2", "Retargeting", 0, 40, 4),
		campaignDay("c-1", "Prospecting", 1, 100, 2),
		campaignDay("c-3", "Testing", 1, 10, 0),
	}

	got := AggregateCampaigns(days)
	if len(got) != 3 {
		t.Fatalf("campaigns = %d, want 3", len(got))
	}
	// Highest spend first.
	if got[0].CampaignID != "c-1" || got[0].Spend != 200 || got[0].CPA != 50 {
		t.Errorf("top campaign = %+v", got[0])
	}
	if got[1].CampaignID != "c-2" || got[1].CPA != 10 {
		t.Errorf("second campaign = %+v", got[1])
	}
	// No purchases keeps CPA at zero rather than dividing by zero.
	if got[2].CampaignID != "c-3" || got[2].CPA != 0 {
		t.Errorf("third campaign = %+v", got[2])
	}
}

func TestSplitPeriods_OrdersByDate(t *testing.T) {
	days := []domain.DailySnapshot{
		day(3, 10, 1000, 30, 1, 50),
		day(0, 10, 1000, 30, 1, 50),
		day(2, 10, 1000, 30, 1, 50),
		day(1, 10, 1000, 30, 1, 50),
	}
	prev, cur := SplitPeriods(days)
	if len(prev) != 2 || len(cur) != 2 {
		t.Fatalf("split = %d/%d, want 2/2", len(prev), len(cur))
	}
	if !prev[0].Date.Before(prev[1].Date) || !cur[0].Date.Before(cur[1].Date) {
		t.Error("periods are not date ordered")
	}
	if !prev[1].Date.Before(cur[0].Date) {
		t.Error("previous period overlaps current")
	}
}
