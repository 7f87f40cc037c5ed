/**
 * @description
 * This file defines the feeding state machine: the configurable feed rules, the
 * pure XP/level transition, and the structured FeedOutcome returned to callers.
 *
 * @notes
 * - Business-rule failures (insufficient balance, daily cap, max level) are
 *   reported as outcomes with success=false and a machine-readable reason, not
 *   as errors, so the client can render them without treating them as faults.
 * - A single feed call grants at most one level regardless of how much XP it
 *   adds; overflow XP carries into the new level. Observed product behavior,
 *   preserved deliberately.
 */

package domain

// Feed count bounds accepted by the feed endpoint. Values outside this range
// are invalid input, not a business failure.
const (
	MinFeedCount = 1
	MaxFeedCount = 30
)

// FeedRules carries the configured feeding economy.
type FeedRules struct {
	CostPerFeed   int64 // points debited per feed unit
	XPPerFeed     int64 // XP granted per feed unit
	XPForLevelUp  int64 // XP required to advance one level
	MaxDailySpend int64 // cumulative daily feeding spend cap
	MaxLevel      int   // pet level ceiling
}

// FeedReason is the machine-readable reason attached to a failed feed outcome.
type FeedReason string

const (
	FeedReasonInsufficientBalance FeedReason = "INSUFFICIENT_BALANCE"
	FeedReasonDailyLimitExceeded  FeedReason = "DAILY_LIMIT_EXCEEDED"
	FeedReasonMaxLevelReached     FeedReason = "MAX_LEVEL_REACHED"
)

// FeedOutcome is the structured result of a feed call. On failure only Success,
// Reason and the daily counters are meaningful.
type FeedOutcome struct {
	Success     bool       `json:"success"`
	Reason      FeedReason `json:"reason,omitempty"`
	PointsSpent int64      `json:"points_spent"`
	XPGained    int64      `json:"xp_gained"`
	PetLevel    int        `json:"pet_level"`
	PetXP       int64      `json:"pet_xp"`
	LeveledUp   bool       `json:"leveled_up"`
	NewBalance  int64      `json:"new_balance"`
	DailySpent  int64      `json:"daily_spent"`
	DailyCap    int64      `json:"daily_cap"`
}

// EvaluateFeed runs the sequenced business checks against the locked account
// state: balance first, then the daily spend cap, then the level ceiling. It
// returns the first failing reason; ok is true when the feed may proceed.
func EvaluateFeed(balance, spentToday int64, level int, cost int64, rules FeedRules) (reason FeedReason, ok bool) {
	if balance < cost {
		return FeedReasonInsufficientBalance, false
	}
	if spentToday+cost > rules.MaxDailySpend {
		return FeedReasonDailyLimitExceeded, false
	}
	if level >= rules.MaxLevel {
		return FeedReasonMaxLevelReached, false
	}
	return "", true
}

// FailedFeed builds a failure outcome with the daily counters filled in.
func FailedFeed(reason FeedReason, dailySpent, dailyCap int64) *FeedOutcome {
	return &FeedOutcome{
		Success:    false,
		Reason:     reason,
		DailySpent: dailySpent,
		DailyCap:   dailyCap,
	}
}

// ApplyFeed computes the post-feed level and XP. At most one level is gained
// per call; overflow XP carries over. Callers must have already verified that
// level < rules.MaxLevel.
func ApplyFeed(level int, xp, xpGain int64, rules FeedRules) (newLevel int, newXP int64, leveledUp bool) {
	newXP = xp + xpGain
	if newXP >= rules.XPForLevelUp && level < rules.MaxLevel {
		return level + 1, newXP - rules.XPForLevelUp, true
	}
	return level, newXP, false
}
