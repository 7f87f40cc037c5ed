/**
 * @description
 * This file defines the rank ladder: an ordered list of tiers keyed by lifetime
 * earnings thresholds, each paying a one-time bonus when first reached. The
 * rank engine is pure; idempotent bonus issuance is enforced in the store layer
 * via the cached rank column plus a unique ledger reference.
 */

package domain

// Tier is one rung of the rank ladder. Thresholds are lifetime-earnings
// minimums; Bonus is the one-time coin grant paid on first reaching the tier.
type Tier struct {
	Name      string `json:"name"`
	Threshold int64  `json:"threshold"`
	Bonus     int64  `json:"bonus"`
}

// TierTable is an ordered (ascending threshold) list of tiers. The first entry
// must have threshold 0 so every lifetime value maps to a tier.
type TierTable []Tier

// DefaultTiers is the production rank ladder.
func DefaultTiers() TierTable {
	return TierTable{
		{Name: "rookie", Threshold: 0, Bonus: 0},
		{Name: "bronze", Threshold: 1_000, Bonus: 100},
		{Name: "silver", Threshold: 10_000, Bonus: 500},
		{Name: "gold", Threshold: 50_000, Bonus: 2_000},
		{Name: "platinum", Threshold: 200_000, Bonus: 10_000},
		{Name: "diamond", Threshold: 1_000_000, Bonus: 50_000},
	}
}

// TierOf returns the highest tier whose threshold is <= lifetime. Negative
// input maps to the lowest tier; an empty table yields the zero Tier.
func (t TierTable) TierOf(lifetime int64) Tier {
	if len(t) == 0 {
		return Tier{}
	}
	current := t[0]
	for _, tier := range t {
		if lifetime >= tier.Threshold {
			current = tier
		}
	}
	return current
}

// IndexOf returns the position of the named tier, or -1 when unknown. Unknown
// names (including the empty string on legacy rows) rank below the lowest tier.
func (t TierTable) IndexOf(name string) int {
	for i, tier := range t {
		if tier.Name == name {
			return i
		}
	}
	return -1
}

// Next returns the tier after the named one, or nil when the name is the top
// tier or unknown-above-table.
func (t TierTable) Next(name string) *Tier {
	idx := t.IndexOf(name)
	if idx < 0 || idx+1 >= len(t) {
		return nil
	}
	next := t[idx+1]
	return &next
}

// RankUpInfo describes a rank transition paid out during a claim or an admin
// point grant.
type RankUpInfo struct {
	Tier  string `json:"tier"`
	Bonus int64  `json:"bonus"`
}

// RankProgress summarizes progress toward the next tier for the rank-info
// endpoint. Progress is measured from the current tier's threshold.
func (t TierTable) RankProgress(lifetime int64) RankInfo {
	current := t.TierOf(lifetime)
	info := RankInfo{
		Tier:             current.Name,
		LifetimeEarnings: lifetime,
		ProgressPercent:  100,
	}

	next := t.Next(current.Name)
	if next == nil {
		return info
	}

	remaining := next.Threshold - lifetime
	if remaining < 0 {
		remaining = 0
	}
	span := next.Threshold - current.Threshold
	progress := 0.0
	if span > 0 {
		progress = float64(lifetime-current.Threshold) / float64(span) * 100
	}
	if progress > 100 {
		progress = 100
	}

	info.NextTier = &next.Name
	info.NextThreshold = &next.Threshold
	info.PointsToNext = &remaining
	info.ProgressPercent = progress
	return info
}
