package domain

import "testing"

func defaultFeedRules() FeedRules {
	return FeedRules{
		CostPerFeed:   20,
		XPPerFeed:     20,
		XPForLevelUp:  1200,
		MaxDailySpend: 600,
		MaxLevel:      50,
	}
}

func TestApplyFeed(t *testing.T) {
	rules := defaultFeedRules()

	tests := []struct {
		name          string
		level         int
		xp            int64
		xpGain        int64
		wantLevel     int
		wantXP        int64
		wantLeveledUp bool
	}{
		{
			name:      "five feeds below threshold do not level",
			level:     3,
			xp:        500,
			xpGain:    100, // 5 feeds * 20 XP
			wantLevel: 3,
			wantXP:    600,
		},
		{
			name:          "crossing threshold levels once with carry-over",
			level:         3,
			xp:            1150,
			xpGain:        100,
			wantLevel:     4,
			wantXP:        50,
			wantLeveledUp: true,
		},
		{
			name:          "exact threshold levels with zero carry-over",
			level:         1,
			xp:            1180,
			xpGain:        20,
			wantLevel:     2,
			wantXP:        0,
			wantLeveledUp: true,
		},
		{
			name:          "large gain still grants at most one level",
			level:         2,
			xp:            1100,
			xpGain:        600, // 30 feeds, enough XP for more than one level
			wantLevel:     3,
			wantXP:        500,
			wantLeveledUp: true,
		},
		{
			name:      "no level past the ceiling",
			level:     50,
			xp:        1190,
			xpGain:    20,
			wantLevel: 50,
			wantXP:    1210,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotLevel, gotXP, gotLeveledUp := ApplyFeed(tt.level, tt.xp, tt.xpGain, rules)
			if gotLevel != tt.wantLevel {
				t.Fatalf("expected level %d, got %d", tt.wantLevel, gotLevel)
			}
			if gotXP != tt.wantXP {
				t.Fatalf("expected xp %d, got %d", tt.wantXP, gotXP)
			}
			if gotLeveledUp != tt.wantLeveledUp {
				t.Fatalf("expected leveledUp=%t, got %t", tt.wantLeveledUp, gotLeveledUp)
			}
		})
	}
}

func TestEvaluateFeed(t *testing.T) {
	rules := defaultFeedRules()

	tests := []struct {
		name       string
		balance    int64
		spentToday int64
		level      int
		cost       int64
		wantReason FeedReason
		wantOK     bool
	}{
		{
			name:       "all checks pass",
			balance:    500,
			spentToday: 0,
			level:      3,
			cost:       100,
			wantOK:     true,
		},
		{
			name:       "spend landing exactly on the cap is allowed",
			balance:    500,
			spentToday: 580,
			level:      3,
			cost:       20,
			wantOK:     true,
		},
		{
			name:       "one point over the cap rejects the whole feed",
			balance:    500,
			spentToday: 590,
			level:      3,
			cost:       20,
			wantReason: FeedReasonDailyLimitExceeded,
		},
		{
			name:       "balance below cost",
			balance:    99,
			spentToday: 0,
			level:      3,
			cost:       100,
			wantReason: FeedReasonInsufficientBalance,
		},
		{
			name:       "balance exactly equal to cost is allowed",
			balance:    100,
			spentToday: 0,
			level:      3,
			cost:       100,
			wantOK:     true,
		},
		{
			name:       "level at ceiling",
			balance:    500,
			spentToday: 0,
			level:      50,
			cost:       20,
			wantReason: FeedReasonMaxLevelReached,
		},
		{
			name:       "balance check wins over daily cap",
			balance:    0,
			spentToday: 600,
			level:      3,
			cost:       20,
			wantReason: FeedReasonInsufficientBalance,
		},
		{
			name:       "daily cap check wins over level ceiling",
			balance:    500,
			spentToday: 600,
			level:      50,
			cost:       20,
			wantReason: FeedReasonDailyLimitExceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason, ok := EvaluateFeed(tt.balance, tt.spentToday, tt.level, tt.cost, rules)
			if ok != tt.wantOK {
				t.Fatalf("expected ok=%t, got %t (reason %q)", tt.wantOK, ok, reason)
			}
			if !tt.wantOK && reason != tt.wantReason {
				t.Fatalf("expected reason %s, got %s", tt.wantReason, reason)
			}
			if tt.wantOK && reason != "" {
				t.Fatalf("expected empty reason on success, got %s", reason)
			}
		})
	}
}

func TestFailedFeed(t *testing.T) {
	outcome := FailedFeed(FeedReasonDailyLimitExceeded, 580, 600)
	if outcome.Success {
		t.Fatalf("expected failure outcome")
	}
	if outcome.Reason != FeedReasonDailyLimitExceeded {
		t.Fatalf("expected reason %s, got %s", FeedReasonDailyLimitExceeded, outcome.Reason)
	}
	if outcome.DailySpent != 580 || outcome.DailyCap != 600 {
		t.Fatalf("expected daily counters 580/600, got %d/%d", outcome.DailySpent, outcome.DailyCap)
	}
	if outcome.PointsSpent != 0 || outcome.XPGained != 0 {
		t.Fatalf("failure outcome must not report spend or xp")
	}
}
