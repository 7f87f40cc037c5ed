/**
 * @description
 * This file defines the core domain models for the mining-service.
 * These structs represent the main entities and data transfer objects (DTOs)
 * used throughout the service's business logic, database interactions, and API layers.
 *
 * @notes
 * - All point amounts are stored as `int64` in whole reward points; fractional
 *   accrual is floored at calculation time so balances never carry fractions.
 * - `LifetimeEarnings` is monotone non-decreasing and is the sole input to the
 *   rank ladder. Spending (feeding) reduces `Balance` but never lifetime.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Account represents one player's pet-mining state. This struct maps directly
// to the `mining_accounts` table in the database.
type Account struct {
	ID               uuid.UUID `json:"id"`
	SubjectID        string    `json:"subject_id"` // stable identity from the session token
	WalletAddress    *string   `json:"wallet_address,omitempty"`
	Balance          int64     `json:"balance"`
	LifetimeEarnings int64     `json:"lifetime_earnings"`
	PetLevel         int       `json:"pet_level"`
	PetXP            int64     `json:"pet_xp"`
	LastClaimAt      time.Time `json:"last_claim_at"`
	RankTier         string    `json:"rank_tier"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// DailyFeedLog tracks cumulative feeding spend for one account on one UTC
// calendar day. Rows are upserted on feed and never deleted; a new day simply
// uses a new day key, so no midnight reset job exists.
type DailyFeedLog struct {
	AccountID   uuid.UUID `json:"account_id"`
	DayKey      string    `json:"day_key"` // "2006-01-02", UTC
	SpentPoints int64     `json:"spent_points"`
	XPGained    int64     `json:"xp_gained"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DayKey derives the UTC calendar-day bucket for the daily feed log. The time
// is an explicit parameter so tests can inject arbitrary clocks.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// PetStatus is the read model returned by the pet-status endpoint. The pending
// reward is computed on read and never persisted.
type PetStatus struct {
	PetLevel      int       `json:"pet_level"`
	PetXP         int64     `json:"pet_xp"`
	XPToNextLevel int64     `json:"xp_to_next_level"`
	LastClaimAt   time.Time `json:"last_claim_at"`
	PendingReward int64     `json:"pending_reward"`
	CanLevelUp    bool      `json:"can_level_up"`
	DailySpent    int64     `json:"daily_spent"`
	DailyCap      int64     `json:"daily_cap"`
	FeedCost      int64     `json:"feed_cost"`
	Balance       int64     `json:"balance"`
}

// RankInfo is the read model for the rank-info endpoint.
type RankInfo struct {
	Tier             string  `json:"tier"`
	LifetimeEarnings int64   `json:"lifetime_earnings"`
	NextTier         *string `json:"next_tier,omitempty"`
	NextThreshold    *int64  `json:"next_threshold,omitempty"`
	PointsToNext     *int64  `json:"points_to_next,omitempty"`
	ProgressPercent  float64 `json:"progress_percent"`
}

// LeaderboardEntry is one row of the lifetime-earnings leaderboard.
// Position is 1-based and already offset-adjusted.
type LeaderboardEntry struct {
	Position         int       `json:"position"`
	AccountID        uuid.UUID `json:"account_id"`
	LifetimeEarnings int64     `json:"lifetime_earnings"`
	PetLevel         int       `json:"pet_level"`
	RankTier         string    `json:"rank_tier"`
}
