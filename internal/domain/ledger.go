/**
 * @description
 * This file defines the append-only reward ledger model and the outcome DTOs
 * for the claim and admin-adjustment operations. Ledger rows are never updated
 * or deleted; every event that lifts lifetime earnings writes exactly one row,
 * and the unique reference column is what makes one-time payouts idempotent.
 */

package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Reward transaction type tags.
const (
	TxTypeMiningClaim     = "mining_claim"
	TxTypeRankBonus       = "rank_bonus"
	TxTypeFeedSpend       = "feed_spend"
	TxTypeAdminAdjustment = "admin_adjustment"
)

// RewardTransaction is one append-only ledger entry. Amount is signed: credits
// are positive, feeding debits negative.
type RewardTransaction struct {
	ID          uuid.UUID `json:"id"`
	AccountID   uuid.UUID `json:"account_id"`
	Amount      int64     `json:"amount"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Reference   string    `json:"reference"`
	CreatedAt   time.Time `json:"created_at"`
}

// RankBonusReference builds the ledger reference for a rank bonus. It is unique
// per (account, tier), so the bonus for a given tier can be written at most
// once per account.
func RankBonusReference(accountID uuid.UUID, tier string) string {
	return fmt.Sprintf("rank-bonus:%s:%s", accountID, tier)
}

// ClaimReason values for unsuccessful claim outcomes.
const ClaimReasonNoReward = "NO_REWARD"

// ClaimOutcome is the structured result of a claim. A zero pending reward is a
// legitimate empty result (success=false, reason NO_REWARD), not an error.
type ClaimOutcome struct {
	Success          bool        `json:"success"`
	Reason           string      `json:"reason,omitempty"`
	Reward           int64       `json:"reward"`
	NewBalance       int64       `json:"new_balance"`
	LifetimeEarnings int64       `json:"lifetime_earnings"`
	ClaimedAt        time.Time   `json:"claimed_at,omitempty"`
	RankUp           *RankUpInfo `json:"rank_up,omitempty"`
}

// AdjustOutcome is the result of an admin point grant.
type AdjustOutcome struct {
	Amount           int64       `json:"amount"`
	NewBalance       int64       `json:"new_balance"`
	LifetimeEarnings int64       `json:"lifetime_earnings"`
	RankUp           *RankUpInfo `json:"rank_up,omitempty"`
}
