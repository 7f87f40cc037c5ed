/**
 * @description
 * This file defines the `Repository` interface, which specifies the contract for all
 * data access operations required by the mining-service. By defining an interface,
 * we decouple the application's business logic from the specific database implementation
 * (e.g., PostgreSQL), making the code more modular and easier to test.
 *
 * @dependencies
 * - context, time: Standard Go libraries.
 * - github.com/google/uuid: For UUID handling.
 * - internal/domain: For the service's domain models.
 */

package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pawmine/mining-service/internal/domain"
)

var (
	ErrAccountNotFound = errors.New("mining account not found")
	ErrCycleNotFound   = errors.New("growth cycle not found")
	// ErrTxConflict marks a transient serialization/lock conflict; callers may
	// retry the request. It is never returned for a genuinely empty claim.
	ErrTxConflict = errors.New("transaction conflict, retry")
)

// Repository defines the set of methods for interacting with the database.
type Repository interface {
	// Account methods. Accounts are created lazily with a default pet on first
	// interaction; FindOrCreate never returns ErrAccountNotFound.
	FindOrCreateAccountBySubject(ctx context.Context, subjectID string, now time.Time) (*domain.Account, error)
	FindAccountByID(ctx context.Context, accountID uuid.UUID) (*domain.Account, error)
	FindDailyFeedLog(ctx context.Context, accountID uuid.UUID, dayKey string) (*domain.DailyFeedLog, error)

	// FeedAtomic runs the feeding state machine inside one row-locked
	// transaction: balance check, daily-cap check, level cap, debit, XP/level
	// transition and daily-log upsert all commit together or not at all.
	// Business-rule failures roll back and come back as a failed FeedOutcome.
	FeedAtomic(ctx context.Context, accountID uuid.UUID, feedCount int, rules domain.FeedRules, now time.Time) (*domain.FeedOutcome, error)

	// ClaimAtomic locks the account row, computes the pending reward from the
	// locked state, credits balance and lifetime earnings, advances the claim
	// cursor, settles any rank-up bonus and appends the ledger entries, all in
	// one transaction. A zero reward yields a NO_REWARD outcome.
	ClaimAtomic(ctx context.Context, accountID uuid.UUID, cycle domain.GrowthCycle, window time.Duration, tiers domain.TierTable, now time.Time) (*domain.ClaimOutcome, error)

	// AdjustPointsAtomic applies an admin point grant: credits balance and
	// lifetime earnings, runs the rank check and writes the ledger entry.
	AdjustPointsAtomic(ctx context.Context, accountID uuid.UUID, amount int64, description string, tiers domain.TierTable, now time.Time) (*domain.AdjustOutcome, error)

	// Growth cycle registry.
	GetActiveCycle(ctx context.Context, now time.Time) (*domain.GrowthCycle, error)
	CreateCycle(ctx context.Context, cycle *domain.GrowthCycle) (*domain.GrowthCycle, error)
	ActivateCycle(ctx context.Context, cycleID uuid.UUID) (*domain.GrowthCycle, error)
	ListCycles(ctx context.Context) ([]domain.GrowthCycle, error)

	// Reads.
	Leaderboard(ctx context.Context, limit, offset int) ([]domain.LeaderboardEntry, error)
	FindTransactionsByAccountID(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]domain.RewardTransaction, error)
}
