package findings

import (
	"math"
	"testing"
	"time"

	"github.com/ignite/adpulse/internal/domain"
)

func day(offset int, spend float64, impressions, clicks, purchases int64, value float64) domain.DailySnapshot {
	return domain.DailySnapshot{
		ClientID: "client-1",
		Level:    domain.LevelAccount,
		EntityID: "acc-1",
		Date:     time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset),
		Spend:    spend, Impressions: impressions, Clicks: clicks, Purchases: purchases, Value: value,
	}
}

// steadyDays builds an N-day series with identical daily performance.
func steadyDays(n int, spend float64, impressions, clicks, purchases int64, value float64) []domain.DailySnapshot {
	out := make([]domain.DailySnapshot, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, day(i, spend, impressions, clicks, purchases, value))
	}
	return out
}

func findByType(batch []domain.Finding, ft domain.FindingType) *domain.Finding {
	for i := range batch {
		if batch[i].Type == ft {
			return &batch[i]
		}
	}
	return nil
}

func TestDetect_CPASpike(t *testing.T) {
	d := NewDetector()

	// Previous period CPA 100, current CPA 130: a 30% spike.
	var days []domain.DailySnapshot
	for i := 0; i < 4; i++ {
		days = append(days, day(i, 100, 10000, 200, 1, 150))
	}
	for i := 4; i < 8; i++ {
		days = append(days, day(i, 130, 10000, 200, 1, 150))
	}

	batch := d.Detect("client-1", days, nil)
	f := findByType(batch, domain.FindingCPASpike)
	if f == nil {
		t.Fatal("expected a CPA_SPIKE finding")
	}
	if f.Severity != domain.SeverityCritical {
		t.Errorf("severity = %s, want CRITICAL", f.Severity)
	}
	if math.Abs(f.Evidence.Delta-30) > 0.01 {
		t.Errorf("delta = %v, want ~30", f.Evidence.Delta)
	}
	if f.Evidence.Threshold != 25 {
		t.Errorf("threshold = %v, want 25", f.Evidence.Threshold)
	}
	if f.Evidence.Current != 130 || f.Evidence.Previous != 100 {
		t.Errorf("evidence = %+v", f.Evidence)
	}
}

func TestDetect_CPASpike_TenPercentDoesNotFire(t *testing.T) {
	d := NewDetector()
	var days []domain.DailySnapshot
	for i := 0; i < 4; i++ {
		days = append(days, day(i, 100, 10000, 200, 1, 150))
	}
	for i := 4; i < 8; i++ {
		days = append(days, day(i, 110, 10000, 200, 1, 150))
	}
	if f := findByType(d.Detect("client-1", days, nil), domain.FindingCPASpike); f != nil {
		t.Errorf("10%% CPA rise should not fire, got %+v", f)
	}
}

func TestDetect_ROASDrop(t *testing.T) {
	d := NewDetector()
	var days []domain.DailySnapshot
	// ROAS 2.0 then 1.5: a 25% drop.
	for i := 0; i < 4; i++ {
		days = append(days, day(i, 100, 10000, 200, 2, 200))
	}
	for i := 4; i < 8; i++ {
		days = append(days, day(i, 100, 10000, 200, 2, 150))
	}
	f := findByType(d.Detect("client-1", days, nil), domain.FindingROASDrop)
	if f == nil {
		t.Fatal("expected a ROAS_DROP finding")
	}
	if f.Evidence.Current != 1.5 || f.Evidence.Previous != 2.0 {
		t.Errorf("evidence = %+v", f.Evidence)
	}
}

func TestDetect_CVRDropWithStableCTR(t *testing.T) {
	d := NewDetector()
	var days []domain.DailySnapshot
	// CTR steady at 2%; CVR halves from 2% to 1%.
	for i := 0; i < 4; i++ {
		days = append(days, day(i, 100, 10000, 200, 4, 150))
	}
	for i := 4; i < 8; i++ {
		days = append(days, day(i, 100, 10000, 200, 2, 150))
	}
	batch := d.Detect("client-1", days, nil)
	if findByType(batch, domain.FindingCVRDrop) == nil {
		t.Error("expected a CVR_DROP finding")
	}
	if findByType(batch, domain.FindingCTRDrop) != nil {
		t.Error("CTR_DROP should not fire when CTR is stable")
	}
}

func TestDetect_CTRDrop(t *testing.T) {
	d := NewDetector()
	var days []domain.DailySnapshot
	// CTR drops from 2% to 1.5%.
	for i := 0; i < 4; i++ {
		days = append(days, day(i, 100, 10000, 200, 2, 150))
	}
	for i := 4; i < 8; i++ {
		days = append(days, day(i, 100, 10000, 150, 2, 150))
	}
	if findByType(d.Detect("client-1", days, nil), domain.FindingCTRDrop) == nil {
		t.Error("expected a CTR_DROP finding")
	}
}

func TestDetect_SpendConcentration(t *testing.T) {
	d := NewDetector()
	campaigns := []CampaignStats{
		{CampaignID: "c1", Name: "Prospecting ES", Spend: 9000, Purchases: 50, CPA: 180},
		{CampaignID: "c2", Name: "Retargeting", Spend: 400, Purchases: 5, CPA: 80},
		{CampaignID: "c3", Name: "Lookalike", Spend: 300, Purchases: 3, CPA: 100},
		{CampaignID: "c4", Name: "Broad", Spend: 200, Purchases: 2, CPA: 100},
		{CampaignID: "c5", Name: "Test", Spend: 100, Purchases: 1, CPA: 100},
	}
	f := findByType(d.Detect("client-1", steadyDays(8, 100, 10000, 200, 2, 150), campaigns), domain.FindingSpendConcentration)
	if f == nil {
		t.Fatal("expected a SPEND_CONCENTRATION finding")
	}
	if len(f.Entities) != 1 || f.Entities[0] != "Prospecting ES" {
		t.Errorf("entities = %v", f.Entities)
	}
}

func TestDetect_SpendConcentration_NeedsEnoughCampaigns(t *testing.T) {
	d := NewDetector()
	campaigns := []CampaignStats{
		{CampaignID: "c1", Name: "A", Spend: 9000},
		{CampaignID: "c2", Name: "B", Spend: 100},
		{CampaignID: "c3", Name: "C", Spend: 100},
	}
	if f := findByType(d.Detect("client-1", steadyDays(8, 100, 10000, 200, 2, 150), campaigns), domain.FindingSpendConcentration); f != nil {
		t.Errorf("concentration needs more than 3 campaigns, got %+v", f)
	}
}

func TestDetect_NoConversionsHighSpend(t *testing.T) {
	d := NewDetector()
	// Account CPA is 50, so the floor is 100.
	days := steadyDays(8, 100, 10000, 200, 2, 150)
	campaigns := []CampaignStats{
		{CampaignID: "c1", Name: "Winner", Spend: 500, Purchases: 10, CPA: 50},
		{CampaignID: "c2", Name: "Bleeder", Spend: 250, Purchases: 0},
	}
	f := findByType(d.Detect("client-1", days, campaigns), domain.FindingNoConversionsHighSpend)
	if f == nil {
		t.Fatal("expected a NO_CONVERSIONS_HIGH_SPEND finding")
	}
	if len(f.Entities) != 1 || f.Entities[0] != "Bleeder" {
		t.Errorf("entities = %v", f.Entities)
	}
	if f.Evidence.Threshold != 100 {
		t.Errorf("threshold = %v, want 100 (2x account CPA)", f.Evidence.Threshold)
	}
}

func TestDetect_Volatility(t *testing.T) {
	d := NewDetector()
	// Current period daily CPA swings between 20 and 200.
	days := steadyDays(5, 100, 10000, 200, 2, 150)
	for i := 5; i < 10; i++ {
		spend := 20.0
		if i%2 == 0 {
			spend = 200
		}
		days = append(days, day(i, spend, 10000, 200, 1, 150))
	}
	if findByType(d.Detect("client-1", days, nil), domain.FindingVolatility) == nil {
		t.Error("expected a VOLATILITY finding")
	}

	// A steady series must not fire.
	if f := findByType(d.Detect("client-1", steadyDays(8, 100, 10000, 200, 2, 150), nil), domain.FindingVolatility); f != nil {
		t.Errorf("steady CPA should not fire, got %+v", f)
	}
}

func TestDetect_UnderfundedWinners(t *testing.T) {
	d := NewDetector()
	// Account CPA 50; ceiling for "winner" is 40.
	days := steadyDays(8, 100, 10000, 200, 2, 150)
	campaigns := []CampaignStats{
		{CampaignID: "c1", Name: "Big Average", Spend: 1000, Purchases: 20, CPA: 50},
		{CampaignID: "c2", Name: "Hidden Gem", Spend: 120, Purchases: 4, CPA: 30},
	}
	f := findByType(d.Detect("client-1", days, campaigns), domain.FindingUnderfundedWinners)
	if f == nil {
		t.Fatal("expected an UNDERFUNDED_WINNERS finding")
	}
	if f.Severity != domain.SeverityHealthy {
		t.Errorf("severity = %s, want HEALTHY (positive signal)", f.Severity)
	}
	if len(f.Entities) != 1 || f.Entities[0] != "Hidden Gem" {
		t.Errorf("entities = %v", f.Entities)
	}
}

func TestDetect_HealthyAccountIsQuiet(t *testing.T) {
	d := NewDetector()
	batch := d.Detect("client-1", steadyDays(8, 100, 10000, 200, 2, 150), nil)
	if len(batch) != 0 {
		t.Errorf("steady account produced findings: %+v", batch)
	}
}

func TestDetect_BatchMetadata(t *testing.T) {
	fixed := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	d := NewDetectorAt(func() time.Time { return fixed })

	var days []domain.DailySnapshot
	for i := 0; i < 4; i++ {
		days = append(days, day(i, 100, 10000, 200, 1, 300))
	}
	for i := 4; i < 8; i++ {
		days = append(days, day(i, 200, 10000, 100, 1, 150))
	}
	batch := d.Detect("client-1", days, nil)
	if len(batch) < 2 {
		t.Fatalf("expected several findings, got %d", len(batch))
	}
	seen := map[string]bool{}
	for _, f := range batch {
		if f.ID == "" || seen[f.ID] {
			t.Errorf("finding IDs must be unique and non-empty: %+v", f)
		}
		seen[f.ID] = true
		if f.ClientID != "client-1" || f.Status != "OPEN" {
			t.Errorf("metadata wrong: %+v", f)
		}
		if f.SchemaVersion != domain.FindingSchemaVersion {
			t.Errorf("schema version = %d", f.SchemaVersion)
		}
		if !f.CreatedAt.Equal(fixed) {
			t.Errorf("created at = %v, want %v", f.CreatedAt, fixed)
		}
	}
}
