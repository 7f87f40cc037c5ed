package domain

import "testing"

func TestTierOf(t *testing.T) {
	tiers := DefaultTiers()

	tests := []struct {
		name     string
		lifetime int64
		want     string
	}{
		{name: "negative lifetime maps to lowest tier", lifetime: -5, want: "rookie"},
		{name: "zero lifetime is rookie", lifetime: 0, want: "rookie"},
		{name: "just below bronze threshold", lifetime: 999, want: "rookie"},
		{name: "exact bronze threshold", lifetime: 1000, want: "bronze"},
		{name: "between thresholds stays at lower tier", lifetime: 9999, want: "bronze"},
		{name: "exact silver threshold", lifetime: 10_000, want: "silver"},
		{name: "well past top tier", lifetime: 5_000_000, want: "diamond"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tiers.TierOf(tt.lifetime)
			if got.Name != tt.want {
				t.Fatalf("expected tier %q, got %q", tt.want, got.Name)
			}
		})
	}
}

func TestTierOfEmptyTable(t *testing.T) {
	var tiers TierTable

	got := tiers.TierOf(5000)
	if got != (Tier{}) {
		t.Fatalf("expected zero tier for empty table, got %+v", got)
	}
	if next := tiers.Next(got.Name); next != nil {
		t.Fatalf("expected no next tier for empty table, got %+v", next)
	}
}

func TestTierCrossingPaysExactlyOnce(t *testing.T) {
	tiers := DefaultTiers()

	// Lifetime 9999 plus a 50-point claim crosses the silver threshold.
	before := tiers.TierOf(9999)
	after := tiers.TierOf(9999 + 50)
	if before.Name != "bronze" || after.Name != "silver" {
		t.Fatalf("expected bronze -> silver, got %s -> %s", before.Name, after.Name)
	}
	if tiers.IndexOf(after.Name) <= tiers.IndexOf(before.Name) {
		t.Fatalf("crossing must advance the tier index")
	}

	// A second claim at the same tier must not look like another crossing.
	again := tiers.TierOf(9999 + 50 + 10)
	if tiers.IndexOf(again.Name) != tiers.IndexOf(after.Name) {
		t.Fatalf("expected tier to stay at silver, got %s", again.Name)
	}
}

func TestIndexOf(t *testing.T) {
	tiers := DefaultTiers()

	if got := tiers.IndexOf("rookie"); got != 0 {
		t.Fatalf("expected rookie at index 0, got %d", got)
	}
	if got := tiers.IndexOf("diamond"); got != len(tiers)-1 {
		t.Fatalf("expected diamond at last index, got %d", got)
	}
	if got := tiers.IndexOf("unknown"); got != -1 {
		t.Fatalf("expected -1 for unknown tier, got %d", got)
	}
	if got := tiers.IndexOf(""); got != -1 {
		t.Fatalf("expected -1 for empty tier, got %d", got)
	}
}

func TestNext(t *testing.T) {
	tiers := DefaultTiers()

	next := tiers.Next("rookie")
	if next == nil || next.Name != "bronze" {
		t.Fatalf("expected bronze after rookie, got %+v", next)
	}
	if got := tiers.Next("diamond"); got != nil {
		t.Fatalf("expected nil after top tier, got %+v", got)
	}
	if got := tiers.Next("unknown"); got != nil {
		t.Fatalf("expected nil for unknown tier, got %+v", got)
	}
}

func TestRankProgress(t *testing.T) {
	tiers := DefaultTiers()

	info := tiers.RankProgress(1500)
	if info.Tier != "bronze" {
		t.Fatalf("expected bronze, got %s", info.Tier)
	}
	if info.NextTier == nil || *info.NextTier != "silver" {
		t.Fatalf("expected next tier silver, got %+v", info.NextTier)
	}
	if info.PointsToNext == nil || *info.PointsToNext != 8500 {
		t.Fatalf("expected 8500 points to next, got %+v", info.PointsToNext)
	}
	want := float64(1500-1000) / float64(10_000-1000) * 100
	if info.ProgressPercent != want {
		t.Fatalf("expected %.4f percent, got %.4f", want, info.ProgressPercent)
	}
}

func TestRankProgressAtTopTier(t *testing.T) {
	tiers := DefaultTiers()

	info := tiers.RankProgress(2_000_000)
	if info.Tier != "diamond" {
		t.Fatalf("expected diamond, got %s", info.Tier)
	}
	if info.NextTier != nil || info.NextThreshold != nil || info.PointsToNext != nil {
		t.Fatalf("expected no next tier fields at the top, got %+v", info)
	}
	if info.ProgressPercent != 100 {
		t.Fatalf("expected 100 percent at the top, got %.2f", info.ProgressPercent)
	}
}
