/**
 * @description
 * This file contains the PostgreSQL implementation of the `Repository` interface.
 * It uses the `pgx` library and a connection pool to execute SQL queries. All
 * ledger mutations (feed, claim, admin adjustment) run inside a single database
 * transaction that locks the account row with `SELECT ... FOR UPDATE`, so the
 * check-then-mutate sequences can never act on stale state under concurrency.
 *
 * Key tables:
 * - mining_accounts:     one row per player (balance, lifetime, pet state, rank)
 * - daily_feed_logs:     (account_id, day_key) cumulative feeding counters
 * - growth_cycles:       versioned accrual configuration, at most one active
 * - reward_transactions: append-only ledger, unique reference column
 *
 * @dependencies
 * - github.com/jackc/pgx/v5: PostgreSQL driver and connection pooling.
 * - internal/domain: Domain models and the pure accrual/rank/feeding engines,
 *   which are evaluated between lock and write so results match the locked row.
 */

package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pawmine/mining-service/internal/domain"
)

// PostgresRepository implements Repository backed by a pgx connection pool.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new repository instance.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const accountColumns = `
	id, subject_id, wallet_address, balance, lifetime_earnings,
	pet_level, pet_xp, last_claim_at, rank_tier, created_at, updated_at
`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var acct domain.Account
	err := row.Scan(
		&acct.ID, &acct.SubjectID, &acct.WalletAddress, &acct.Balance, &acct.LifetimeEarnings,
		&acct.PetLevel, &acct.PetXP, &acct.LastClaimAt, &acct.RankTier, &acct.CreatedAt, &acct.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &acct, nil
}

// classifyTxError maps PostgreSQL serialization and deadlock failures to
// ErrTxConflict so the transport layer can tell retryable conflicts apart from
// hard faults.
func classifyTxError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 40001 serialization_failure, 40P01 deadlock_detected, 55P03 lock_not_available
		switch pgErr.Code {
		case "40001", "40P01", "55P03":
			return ErrTxConflict
		}
	}
	return err
}

// --- Accounts ---------------------------------------------------------------

// FindOrCreateAccountBySubject resolves the account for an identity subject,
// creating a default pet (level 1, 0 XP, claim cursor = now) on first contact.
func (r *PostgresRepository) FindOrCreateAccountBySubject(ctx context.Context, subjectID string, now time.Time) (*domain.Account, error) {
	acct, err := scanAccount(r.db.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM mining_accounts
		WHERE subject_id = $1
	`, subjectID))
	if err == nil {
		return acct, nil
	}
	if err != pgx.ErrNoRows {
		return nil, fmt.Errorf("failed to find account by subject: %w", err)
	}

	lowest := domain.DefaultTiers()[0].Name
	acct, err = scanAccount(r.db.QueryRow(ctx, `
		INSERT INTO mining_accounts (
			id, subject_id, balance, lifetime_earnings, pet_level, pet_xp,
			last_claim_at, rank_tier, created_at, updated_at
		)
		VALUES ($1, $2, 0, 0, 1, 0, $3, $4, $3, $3)
		ON CONFLICT (subject_id) DO UPDATE SET updated_at = mining_accounts.updated_at
		RETURNING `+accountColumns+`
	`, uuid.New(), subjectID, now.UTC(), lowest))
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return acct, nil
}

// FindAccountByID retrieves an account by its internal id.
func (r *PostgresRepository) FindAccountByID(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	acct, err := scanAccount(r.db.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM mining_accounts
		WHERE id = $1
	`, accountID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	return acct, nil
}

// FindDailyFeedLog returns the feed log for one account/day, or a zeroed log
// when the account has not fed that day.
func (r *PostgresRepository) FindDailyFeedLog(ctx context.Context, accountID uuid.UUID, dayKey string) (*domain.DailyFeedLog, error) {
	log := &domain.DailyFeedLog{AccountID: accountID, DayKey: dayKey}
	err := r.db.QueryRow(ctx, `
		SELECT spent_points, xp_gained, updated_at
		FROM daily_feed_logs
		WHERE account_id = $1 AND day_key = $2
	`, accountID, dayKey).Scan(&log.SpentPoints, &log.XPGained, &log.UpdatedAt)
	if err != nil && err != pgx.ErrNoRows {
		return nil, fmt.Errorf("failed to find daily feed log: %w", err)
	}
	return log, nil
}

// --- Feeding ----------------------------------------------------------------

// FeedAtomic performs the feeding state machine inside one transaction.
func (r *PostgresRepository) FeedAtomic(ctx context.Context, accountID uuid.UUID, feedCount int, rules domain.FeedRules, now time.Time) (*domain.FeedOutcome, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// 1. Lock the account row.
	var balance, xp int64
	var level int
	err = tx.QueryRow(ctx, `
		SELECT balance, pet_level, pet_xp
		FROM mining_accounts
		WHERE id = $1
		FOR UPDATE
	`, accountID).Scan(&balance, &level, &xp)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrAccountNotFound
		}
		return nil, classifyTxError(fmt.Errorf("failed to lock account: %w", err))
	}

	cost := int64(feedCount) * rules.CostPerFeed
	xpGain := int64(feedCount) * rules.XPPerFeed
	dayKey := domain.DayKey(now)

	// 2. Read today's cumulative spend under the same lock scope.
	var spentToday, xpToday int64
	err = tx.QueryRow(ctx, `
		SELECT spent_points, xp_gained
		FROM daily_feed_logs
		WHERE account_id = $1 AND day_key = $2
		FOR UPDATE
	`, accountID, dayKey).Scan(&spentToday, &xpToday)
	if err != nil && err != pgx.ErrNoRows {
		return nil, classifyTxError(fmt.Errorf("failed to read daily feed log: %w", err))
	}

	// 3. Sequenced business checks; any failure rolls everything back.
	if reason, ok := domain.EvaluateFeed(balance, spentToday, level, cost, rules); !ok {
		return domain.FailedFeed(reason, spentToday, rules.MaxDailySpend), nil
	}

	newLevel, newXP, leveledUp := domain.ApplyFeed(level, xp, xpGain, rules)
	newBalance := balance - cost

	// 4. Apply the mutation.
	_, err = tx.Exec(ctx, `
		UPDATE mining_accounts
		SET balance = $2, pet_level = $3, pet_xp = $4, updated_at = $5
		WHERE id = $1
	`, accountID, newBalance, newLevel, newXP, now.UTC())
	if err != nil {
		return nil, classifyTxError(fmt.Errorf("failed to update account: %w", err))
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO daily_feed_logs (account_id, day_key, spent_points, xp_gained, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (account_id, day_key) DO UPDATE
		SET spent_points = daily_feed_logs.spent_points + EXCLUDED.spent_points,
		    xp_gained    = daily_feed_logs.xp_gained + EXCLUDED.xp_gained,
		    updated_at   = EXCLUDED.updated_at
	`, accountID, dayKey, cost, xpGain, now.UTC())
	if err != nil {
		return nil, classifyTxError(fmt.Errorf("failed to upsert daily feed log: %w", err))
	}

	// 5. Audit entry for the spend. Feeding never touches lifetime earnings.
	_, err = tx.Exec(ctx, `
		INSERT INTO reward_transactions (id, account_id, amount, type, description, reference, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, uuid.New(), accountID, -cost, domain.TxTypeFeedSpend,
		fmt.Sprintf("Fed pet x%d", feedCount), "feed:"+uuid.NewString(), now.UTC())
	if err != nil {
		return nil, classifyTxError(fmt.Errorf("failed to log feed spend: %w", err))
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, classifyTxError(fmt.Errorf("failed to commit feed: %w", err))
	}

	return &domain.FeedOutcome{
		Success:     true,
		PointsSpent: cost,
		XPGained:    xpGain,
		PetLevel:    newLevel,
		PetXP:       newXP,
		LeveledUp:   leveledUp,
		NewBalance:  newBalance,
		DailySpent:  spentToday + cost,
		DailyCap:    rules.MaxDailySpend,
	}, nil
}

// --- Claiming ---------------------------------------------------------------

// ClaimAtomic performs the claim inside one transaction. The pending reward is
// computed from the locked row, so two concurrent claims can never both credit
// the same elapsed window: the loser re-reads the winner's claim cursor and
// observes NO_REWARD.
func (r *PostgresRepository) ClaimAtomic(ctx context.Context, accountID uuid.UUID, cycle domain.GrowthCycle, window time.Duration, tiers domain.TierTable, now time.Time) (*domain.ClaimOutcome, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var balance, lifetime int64
	var level int
	var lastClaim time.Time
	var rankTier string
	err = tx.QueryRow(ctx, `
		SELECT balance, lifetime_earnings, pet_level, last_claim_at, rank_tier
		FROM mining_accounts
		WHERE id = $1
		FOR UPDATE
	`, accountID).Scan(&balance, &lifetime, &level, &lastClaim, &rankTier)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrAccountNotFound
		}
		return nil, classifyTxError(fmt.Errorf("failed to lock account: %w", err))
	}

	reward := domain.PendingReward(level, lastClaim, now, cycle, window)
	if reward <= 0 {
		return &domain.ClaimOutcome{
			Success:          false,
			Reason:           domain.ClaimReasonNoReward,
			NewBalance:       balance,
			LifetimeEarnings: lifetime,
		}, nil
	}

	newBalance := balance + reward
	newLifetime := lifetime + reward

	_, err = tx.Exec(ctx, `
		UPDATE mining_accounts
		SET balance = $2, lifetime_earnings = $3, last_claim_at = $4, updated_at = $4
		WHERE id = $1
	`, accountID, newBalance, newLifetime, now.UTC())
	if err != nil {
		return nil, classifyTxError(fmt.Errorf("failed to apply claim: %w", err))
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO reward_transactions (id, account_id, amount, type, description, reference, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, uuid.New(), accountID, reward, domain.TxTypeMiningClaim,
		fmt.Sprintf("Mining claim for cycle %d", cycle.CycleNumber), "claim:"+uuid.NewString(), now.UTC())
	if err != nil {
		return nil, classifyTxError(fmt.Errorf("failed to log claim: %w", err))
	}

	var rankUp *domain.RankUpInfo
	rankUp, newBalance, newLifetime = applyRankBonus(ctx, tx, accountID, rankTier, newBalance, newLifetime, tiers, now)

	if err := tx.Commit(ctx); err != nil {
		return nil, classifyTxError(fmt.Errorf("failed to commit claim: %w", err))
	}

	return &domain.ClaimOutcome{
		Success:          true,
		Reward:           reward,
		NewBalance:       newBalance,
		LifetimeEarnings: newLifetime,
		ClaimedAt:        now.UTC(),
		RankUp:           rankUp,
	}, nil
}

// --- Admin adjustments ------------------------------------------------------

// AdjustPointsAtomic credits an external point grant to balance and lifetime
// earnings and runs the rank check, all in one transaction.
func (r *PostgresRepository) AdjustPointsAtomic(ctx context.Context, accountID uuid.UUID, amount int64, description string, tiers domain.TierTable, now time.Time) (*domain.AdjustOutcome, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var balance, lifetime int64
	var rankTier string
	err = tx.QueryRow(ctx, `
		SELECT balance, lifetime_earnings, rank_tier
		FROM mining_accounts
		WHERE id = $1
		FOR UPDATE
	`, accountID).Scan(&balance, &lifetime, &rankTier)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrAccountNotFound
		}
		return nil, classifyTxError(fmt.Errorf("failed to lock account: %w", err))
	}

	newBalance := balance + amount
	newLifetime := lifetime + amount

	_, err = tx.Exec(ctx, `
		UPDATE mining_accounts
		SET balance = $2, lifetime_earnings = $3, updated_at = $4
		WHERE id = $1
	`, accountID, newBalance, newLifetime, now.UTC())
	if err != nil {
		return nil, classifyTxError(fmt.Errorf("failed to apply adjustment: %w", err))
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO reward_transactions (id, account_id, amount, type, description, reference, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, uuid.New(), accountID, amount, domain.TxTypeAdminAdjustment,
		description, "adjust:"+uuid.NewString(), now.UTC())
	if err != nil {
		return nil, classifyTxError(fmt.Errorf("failed to log adjustment: %w", err))
	}

	var rankUp *domain.RankUpInfo
	rankUp, newBalance, newLifetime = applyRankBonus(ctx, tx, accountID, rankTier, newBalance, newLifetime, tiers, now)

	if err := tx.Commit(ctx); err != nil {
		return nil, classifyTxError(fmt.Errorf("failed to commit adjustment: %w", err))
	}

	return &domain.AdjustOutcome{
		Amount:           amount,
		NewBalance:       newBalance,
		LifetimeEarnings: newLifetime,
		RankUp:           rankUp,
	}, nil
}

// applyRankBonus runs the rank check inside a savepoint on the outer
// transaction. A bonus persistence failure rolls back only the savepoint, is
// logged, and reports no rank-up; the triggering credit still commits.
func applyRankBonus(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, currentRank string, balance, lifetime int64, tiers domain.TierTable, now time.Time) (*domain.RankUpInfo, int64, int64) {
	sp, err := tx.Begin(ctx)
	if err != nil {
		log.Printf("level=warn component=store msg=\"rank bonus savepoint failed; continuing without bonus\" account_id=%s err=%v", accountID, err)
		return nil, balance, lifetime
	}

	rankUp, newBalance, newLifetime, err := settleRankBonus(ctx, sp, accountID, currentRank, balance, lifetime, tiers, now)
	if err != nil {
		_ = sp.Rollback(ctx)
		log.Printf("level=warn component=store msg=\"rank bonus persistence failed; continuing without bonus\" account_id=%s err=%v", accountID, err)
		return nil, balance, lifetime
	}
	if err := sp.Commit(ctx); err != nil {
		log.Printf("level=warn component=store msg=\"rank bonus savepoint commit failed; continuing without bonus\" account_id=%s err=%v", accountID, err)
		return nil, balance, lifetime
	}
	return rankUp, newBalance, newLifetime
}

// settleRankBonus detects a rank transition against the cached rank column and
// pays the new tier's one-time bonus. The unique ledger reference is the
// idempotency backstop: if the bonus row already exists the insert is a no-op
// and only the rank column advances, so a tier bonus can never be paid twice.
func settleRankBonus(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, currentRank string, balance, lifetime int64, tiers domain.TierTable, now time.Time) (*domain.RankUpInfo, int64, int64, error) {
	newTier := tiers.TierOf(lifetime)
	if tiers.IndexOf(newTier.Name) <= tiers.IndexOf(currentRank) {
		return nil, balance, lifetime, nil
	}

	res, err := tx.Exec(ctx, `
		INSERT INTO reward_transactions (id, account_id, amount, type, description, reference, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (reference) DO NOTHING
	`, uuid.New(), accountID, newTier.Bonus, domain.TxTypeRankBonus,
		fmt.Sprintf("Rank-up bonus for reaching %s", newTier.Name),
		domain.RankBonusReference(accountID, newTier.Name), now.UTC())
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to log rank bonus: %w", err)
	}

	alreadyPaid := res.RowsAffected() == 0
	if alreadyPaid || newTier.Bonus <= 0 {
		// Advance the cached rank without re-crediting.
		if _, err := tx.Exec(ctx, `
			UPDATE mining_accounts SET rank_tier = $2, updated_at = $3 WHERE id = $1
		`, accountID, newTier.Name, now.UTC()); err != nil {
			return nil, 0, 0, fmt.Errorf("failed to advance rank: %w", err)
		}
		if alreadyPaid {
			return nil, balance, lifetime, nil
		}
		return &domain.RankUpInfo{Tier: newTier.Name, Bonus: 0}, balance, lifetime, nil
	}

	balance += newTier.Bonus
	lifetime += newTier.Bonus
	if _, err := tx.Exec(ctx, `
		UPDATE mining_accounts
		SET balance = $2, lifetime_earnings = $3, rank_tier = $4, updated_at = $5
		WHERE id = $1
	`, accountID, balance, lifetime, newTier.Name, now.UTC()); err != nil {
		return nil, 0, 0, fmt.Errorf("failed to credit rank bonus: %w", err)
	}

	return &domain.RankUpInfo{Tier: newTier.Name, Bonus: newTier.Bonus}, balance, lifetime, nil
}

// --- Growth cycles ----------------------------------------------------------

const cycleColumns = `id, cycle_number, growth_rate, max_speed, starts_at, ends_at, active, created_at`

func scanCycle(row pgx.Row) (*domain.GrowthCycle, error) {
	var c domain.GrowthCycle
	err := row.Scan(&c.ID, &c.CycleNumber, &c.GrowthRate, &c.MaxSpeed, &c.StartsAt, &c.EndsAt, &c.Active, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetActiveCycle returns the active cycle covering now.
func (r *PostgresRepository) GetActiveCycle(ctx context.Context, now time.Time) (*domain.GrowthCycle, error) {
	cycle, err := scanCycle(r.db.QueryRow(ctx, `
		SELECT `+cycleColumns+`
		FROM growth_cycles
		WHERE active = TRUE AND starts_at <= $1 AND ends_at > $1
		ORDER BY cycle_number DESC
		LIMIT 1
	`, now.UTC()))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrCycleNotFound
		}
		return nil, fmt.Errorf("failed to find active cycle: %w", err)
	}
	return cycle, nil
}

// CreateCycle inserts a new (inactive) growth cycle.
func (r *PostgresRepository) CreateCycle(ctx context.Context, cycle *domain.GrowthCycle) (*domain.GrowthCycle, error) {
	if cycle.ID == uuid.Nil {
		cycle.ID = uuid.New()
	}
	cycle.CreatedAt = time.Now().UTC()
	_, err := r.db.Exec(ctx, `
		INSERT INTO growth_cycles (id, cycle_number, growth_rate, max_speed, starts_at, ends_at, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, $7)
	`, cycle.ID, cycle.CycleNumber, cycle.GrowthRate, cycle.MaxSpeed, cycle.StartsAt, cycle.EndsAt, cycle.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create cycle: %w", err)
	}
	cycle.Active = false
	return cycle, nil
}

// ActivateCycle flips the named cycle active and deactivates every other cycle
// in the same transaction, preserving the at-most-one-active invariant.
func (r *PostgresRepository) ActivateCycle(ctx context.Context, cycleID uuid.UUID) (*domain.GrowthCycle, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE growth_cycles SET active = FALSE WHERE active = TRUE`); err != nil {
		return nil, fmt.Errorf("failed to deactivate cycles: %w", err)
	}

	cycle, err := scanCycle(tx.QueryRow(ctx, `
		UPDATE growth_cycles
		SET active = TRUE
		WHERE id = $1
		RETURNING `+cycleColumns+`
	`, cycleID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrCycleNotFound
		}
		return nil, fmt.Errorf("failed to activate cycle: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, classifyTxError(fmt.Errorf("failed to commit activation: %w", err))
	}
	return cycle, nil
}

// ListCycles returns all cycles, newest first.
func (r *PostgresRepository) ListCycles(ctx context.Context) ([]domain.GrowthCycle, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+cycleColumns+`
		FROM growth_cycles
		ORDER BY cycle_number DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list cycles: %w", err)
	}
	defer rows.Close()

	var cycles []domain.GrowthCycle
	for rows.Next() {
		var c domain.GrowthCycle
		if err := rows.Scan(&c.ID, &c.CycleNumber, &c.GrowthRate, &c.MaxSpeed, &c.StartsAt, &c.EndsAt, &c.Active, &c.CreatedAt); err != nil {
			return nil, err
		}
		cycles = append(cycles, c)
	}
	return cycles, rows.Err()
}

// --- Reads ------------------------------------------------------------------

// Leaderboard returns accounts ordered by lifetime earnings with a 1-based,
// offset-adjusted position.
func (r *PostgresRepository) Leaderboard(ctx context.Context, limit, offset int) ([]domain.LeaderboardEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, lifetime_earnings, pet_level, rank_tier
		FROM mining_accounts
		ORDER BY lifetime_earnings DESC, created_at ASC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []domain.LeaderboardEntry
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(&e.AccountID, &e.LifetimeEarnings, &e.PetLevel, &e.RankTier); err != nil {
			return nil, err
		}
		e.Position = offset + len(entries) + 1
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// FindTransactionsByAccountID returns the account's ledger history, newest first.
func (r *PostgresRepository) FindTransactionsByAccountID(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]domain.RewardTransaction, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, account_id, amount, type, description, reference, created_at
		FROM reward_transactions
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txs []domain.RewardTransaction
	for rows.Next() {
		var t domain.RewardTransaction
		if err := rows.Scan(&t.ID, &t.AccountID, &t.Amount, &t.Type, &t.Description, &t.Reference, &t.CreatedAt); err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}
