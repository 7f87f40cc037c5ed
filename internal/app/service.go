/**
 * @description
 * This file contains the core business logic for the mining-service. The `Service`
 * struct orchestrates the pet-mining ledger: feeding, claiming, rank lookups and
 * the administrative growth-cycle operations, coordinating between the database
 * repository, the chain settlement client and the message broker.
 *
 * Key features:
 * - Lazily provisions a default pet on first interaction with an identity.
 * - Delegates all check-then-mutate sequences to row-locked repository
 *   transactions; the service itself never does read-compute-write in steps.
 * - Dispatches the external chain settlement strictly after commit, as a
 *   fire-and-forget side call whose failure never surfaces to the caller.
 *
 * @dependencies
 * - github.com/google/uuid: For UUID handling.
 * - internal/domain, internal/store: For domain models and data access.
 * - pkg/rabbitmq: For post-commit event publishing.
 */

package app

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/pawmine/mining-service/internal/domain"
	"github.com/pawmine/mining-service/internal/store"
	"github.com/pawmine/mining-service/pkg/rabbitmq"
)

var (
	// ErrInvalidFeedCount rejects feed counts outside the accepted range before
	// any state is touched.
	ErrInvalidFeedCount = fmt.Errorf("feed count must be between %d and %d", domain.MinFeedCount, domain.MaxFeedCount)
	// ErrRateLimited is returned when the per-account action limiter trips.
	ErrRateLimited = errors.New("too many requests, slow down")
)

// SettlementClient is the boundary to the external chain settlement
// collaborator. Any outcome, including an error, is non-fatal to the ledger.
type SettlementClient interface {
	Settle(ctx context.Context, address string, amount int64, nonce, signature string) error
}

// RateLimiter limits actions per key within a fixed window.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// Service provides the core business logic for the pet-mining ledger.
type Service struct {
	repo       store.Repository
	settlement SettlementClient
	producer   rabbitmq.Publisher
	limiter    RateLimiter

	feedRules      domain.FeedRules
	tiers          domain.TierTable
	claimWindow    time.Duration
	defaultCycle   domain.GrowthCycle
	minSettlement  int64
	eventExchange  string
	claimRateLimit int
	feedRateLimit  int

	now func() time.Time
}

// NewService creates a new mining service instance.
func NewService(
	repo store.Repository,
	settlement SettlementClient,
	producer rabbitmq.Publisher,
	feedRules domain.FeedRules,
	claimWindow time.Duration,
	defaultGrowthRate float64,
	minSettlementPoints int64,
	eventExchange string,
) *Service {
	defaultCycle := domain.DefaultCycle()
	if defaultGrowthRate > 0 {
		defaultCycle.GrowthRate = defaultGrowthRate
	}
	return &Service{
		repo:          repo,
		settlement:    settlement,
		producer:      producer,
		feedRules:     feedRules,
		tiers:         domain.DefaultTiers(),
		claimWindow:   claimWindow,
		defaultCycle:  defaultCycle,
		minSettlement: minSettlementPoints,
		eventExchange: eventExchange,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// SetRateLimiter wires the optional per-account action limiter.
func (s *Service) SetRateLimiter(limiter RateLimiter, claimPerMinute, feedPerMinute int) {
	s.limiter = limiter
	s.claimRateLimit = claimPerMinute
	s.feedRateLimit = feedPerMinute
}

// ResolveAccount maps an identity subject to its mining account, creating a
// default pet on first contact.
func (s *Service) ResolveAccount(ctx context.Context, subjectID string) (*domain.Account, error) {
	return s.repo.FindOrCreateAccountBySubject(ctx, subjectID, s.now())
}

// activeCycle resolves the active growth cycle, degrading to the default cycle
// on any registry failure so misconfiguration can never block a claim.
func (s *Service) activeCycle(ctx context.Context) domain.GrowthCycle {
	cycle, err := s.repo.GetActiveCycle(ctx, s.now())
	if err != nil {
		if !errors.Is(err, store.ErrCycleNotFound) {
			log.Printf("level=warn component=app msg=\"active cycle lookup failed; using default\" err=%v", err)
		}
		return s.defaultCycle
	}
	return *cycle
}

// PetStatus assembles the pet dashboard view. The pending reward is computed
// on read against the active cycle and never persisted.
func (s *Service) PetStatus(ctx context.Context, subjectID string) (*domain.PetStatus, error) {
	acct, err := s.ResolveAccount(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve account: %w", err)
	}

	now := s.now()
	cycle := s.activeCycle(ctx)
	pending := domain.PendingReward(acct.PetLevel, acct.LastClaimAt, now, cycle, s.claimWindow)

	dayLog, err := s.repo.FindDailyFeedLog(ctx, acct.ID, domain.DayKey(now))
	if err != nil {
		// Degrade field-by-field: the dashboard still renders without today's counters.
		log.Printf("level=warn component=app msg=\"daily feed log lookup failed\" account_id=%s err=%v", acct.ID, err)
		dayLog = &domain.DailyFeedLog{AccountID: acct.ID, DayKey: domain.DayKey(now)}
	}

	xpToNext := s.feedRules.XPForLevelUp - acct.PetXP
	if xpToNext < 0 {
		xpToNext = 0
	}

	return &domain.PetStatus{
		PetLevel:      acct.PetLevel,
		PetXP:         acct.PetXP,
		XPToNextLevel: xpToNext,
		LastClaimAt:   acct.LastClaimAt,
		PendingReward: pending,
		CanLevelUp:    acct.PetLevel < s.feedRules.MaxLevel,
		DailySpent:    dayLog.SpentPoints,
		DailyCap:      s.feedRules.MaxDailySpend,
		FeedCost:      s.feedRules.CostPerFeed,
		Balance:       acct.Balance,
	}, nil
}

// Feed runs the feeding state machine for the subject's pet.
func (s *Service) Feed(ctx context.Context, subjectID string, feedCount int) (*domain.FeedOutcome, error) {
	if feedCount < domain.MinFeedCount || feedCount > domain.MaxFeedCount {
		return nil, ErrInvalidFeedCount
	}

	acct, err := s.ResolveAccount(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve account: %w", err)
	}

	if err := s.allow(ctx, "feed:"+acct.ID.String(), s.feedRateLimit); err != nil {
		return nil, err
	}

	return s.repo.FeedAtomic(ctx, acct.ID, feedCount, s.feedRules, s.now())
}

// Claim credits the pending mining reward inside one atomic transaction and,
// after commit, dispatches the best-effort chain settlement and events.
func (s *Service) Claim(ctx context.Context, subjectID string) (*domain.ClaimOutcome, error) {
	acct, err := s.ResolveAccount(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve account: %w", err)
	}

	if err := s.allow(ctx, "claim:"+acct.ID.String(), s.claimRateLimit); err != nil {
		return nil, err
	}

	outcome, err := s.repo.ClaimAtomic(ctx, acct.ID, s.activeCycle(ctx), s.claimWindow, s.tiers, s.now())
	if err != nil {
		return nil, err
	}

	if outcome.Success {
		s.dispatchSettlement(acct, outcome.Reward)
		// Broker publishing must never delay the committed claim's response.
		go s.publishClaimEvents(acct.ID, outcome)
	}
	return outcome, nil
}

// RankInfo returns the subject's rank ladder progress.
func (s *Service) RankInfo(ctx context.Context, subjectID string) (*domain.RankInfo, error) {
	acct, err := s.ResolveAccount(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve account: %w", err)
	}
	info := s.tiers.RankProgress(acct.LifetimeEarnings)
	return &info, nil
}

// Leaderboard returns the lifetime-earnings leaderboard page.
func (s *Service) Leaderboard(ctx context.Context, limit, offset int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.Leaderboard(ctx, limit, offset)
}

// TransactionHistory returns the subject's ledger entries, newest first.
func (s *Service) TransactionHistory(ctx context.Context, subjectID string, limit, offset int) ([]domain.RewardTransaction, error) {
	acct, err := s.ResolveAccount(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve account: %w", err)
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.FindTransactionsByAccountID(ctx, acct.ID, limit, offset)
}

// AdjustPoints applies an administrative point grant. Grants lift lifetime
// earnings, so the rank check runs in the same transaction.
func (s *Service) AdjustPoints(ctx context.Context, accountID uuid.UUID, amount int64, description string) (*domain.AdjustOutcome, error) {
	if amount <= 0 {
		return nil, errors.New("adjustment amount must be positive")
	}
	if description == "" {
		description = "Admin point grant"
	}
	outcome, err := s.repo.AdjustPointsAtomic(ctx, accountID, amount, description, s.tiers, s.now())
	if err != nil {
		return nil, err
	}
	if outcome.RankUp != nil {
		go s.publishRankUp(accountID, outcome.RankUp)
	}
	return outcome, nil
}

// CreateCycle registers a new (inactive) growth cycle.
func (s *Service) CreateCycle(ctx context.Context, cycleNumber int, growthRate, maxSpeed float64, startsAt, endsAt time.Time) (*domain.GrowthCycle, error) {
	if growthRate <= 0 {
		return nil, errors.New("growth rate must be positive")
	}
	if !endsAt.After(startsAt) {
		return nil, errors.New("cycle end must be after start")
	}
	return s.repo.CreateCycle(ctx, &domain.GrowthCycle{
		CycleNumber: cycleNumber,
		GrowthRate:  growthRate,
		MaxSpeed:    maxSpeed,
		StartsAt:    startsAt.UTC(),
		EndsAt:      endsAt.UTC(),
	})
}

// ActivateCycle makes the named cycle the single active one.
func (s *Service) ActivateCycle(ctx context.Context, cycleID uuid.UUID) (*domain.GrowthCycle, error) {
	return s.repo.ActivateCycle(ctx, cycleID)
}

// ListCycles returns all growth cycles for the admin surface.
func (s *Service) ListCycles(ctx context.Context) ([]domain.GrowthCycle, error) {
	return s.repo.ListCycles(ctx)
}

// allow consults the rate limiter when one is configured. Limiter failures are
// logged and treated as allowed so a broken redis never blocks play.
func (s *Service) allow(ctx context.Context, key string, limit int) error {
	if s.limiter == nil || limit <= 0 {
		return nil
	}
	ok, err := s.limiter.Allow(ctx, key, limit, time.Minute)
	if err != nil {
		log.Printf("level=warn component=app msg=\"rate limiter unavailable; allowing request\" key=%s err=%v", key, err)
		return nil
	}
	if !ok {
		return ErrRateLimited
	}
	return nil
}

// dispatchSettlement performs the external chain settlement strictly after the
// claim has committed. It is fire-and-forget: outcomes are only logged and the
// committed ledger mutation is never retried because of it.
func (s *Service) dispatchSettlement(acct *domain.Account, reward int64) {
	if s.settlement == nil || reward < s.minSettlement {
		return
	}
	if acct.WalletAddress == nil || *acct.WalletAddress == "" {
		return
	}

	address := *acct.WalletAddress
	accountID := acct.ID
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		nonce := uuid.NewString()
		signature := settlementSignature(address, reward, nonce)
		if err := s.settlement.Settle(ctx, address, reward, nonce, signature); err != nil {
			log.Printf("level=warn component=app msg=\"chain settlement failed; reward remains in ledger\" account_id=%s amount=%d err=%v", accountID, reward, err)
			return
		}
		log.Printf("level=info component=app msg=\"chain settlement submitted\" account_id=%s amount=%d nonce=%s", accountID, reward, nonce)
	}()
}

// settlementSignature produces the locally generated placeholder signature the
// settlement boundary expects. The real signing scheme lives on the chain side.
func settlementSignature(address string, amount int64, nonce string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%s", address, amount, nonce)))
	return hex.EncodeToString(sum[:])
}

// publishClaimEvents emits post-commit broker events for a successful claim.
func (s *Service) publishClaimEvents(accountID uuid.UUID, outcome *domain.ClaimOutcome) {
	if s.producer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	event := rabbitmq.RewardClaimedEvent{
		AccountID:        accountID,
		Reward:           outcome.Reward,
		NewBalance:       outcome.NewBalance,
		LifetimeEarnings: outcome.LifetimeEarnings,
		ClaimedAt:        outcome.ClaimedAt,
	}
	if err := s.producer.PublishRewardClaimedEvent(ctx, s.eventExchange, event); err != nil {
		log.Printf("level=warn component=app msg=\"reward claimed event publish failed\" account_id=%s err=%v", accountID, err)
	}

	if outcome.RankUp != nil {
		s.publishRankUp(accountID, outcome.RankUp)
	}
}

func (s *Service) publishRankUp(accountID uuid.UUID, rankUp *domain.RankUpInfo) {
	if s.producer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	event := rabbitmq.RankUpEvent{
		AccountID: accountID,
		Tier:      rankUp.Tier,
		Bonus:     rankUp.Bonus,
		Timestamp: s.now(),
	}
	if err := s.producer.PublishRankUpEvent(ctx, s.eventExchange, event); err != nil {
		log.Printf("level=warn component=app msg=\"rank up event publish failed\" account_id=%s tier=%s err=%v", accountID, rankUp.Tier, err)
	}
}
