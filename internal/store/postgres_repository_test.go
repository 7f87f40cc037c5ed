package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pawmine/mining-service/internal/domain"
)

func TestClassifyTxError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantConflict bool
	}{
		{
			name:         "nil error passes through",
			err:          nil,
			wantConflict: false,
		},
		{
			name:         "serialization failure maps to conflict",
			err:          &pgconn.PgError{Code: "40001"},
			wantConflict: true,
		},
		{
			name:         "deadlock maps to conflict",
			err:          &pgconn.PgError{Code: "40P01"},
			wantConflict: true,
		},
		{
			name:         "lock not available maps to conflict",
			err:          &pgconn.PgError{Code: "55P03"},
			wantConflict: true,
		},
		{
			name:         "wrapped serialization failure still maps",
			err:          fmt.Errorf("failed to lock account: %w", &pgconn.PgError{Code: "40001"}),
			wantConflict: true,
		},
		{
			name:         "unique violation is not a conflict",
			err:          &pgconn.PgError{Code: "23505"},
			wantConflict: false,
		},
		{
			name:         "plain error passes through",
			err:          errors.New("connection refused"),
			wantConflict: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyTxError(tt.err)
			if tt.wantConflict {
				if !errors.Is(got, ErrTxConflict) {
					t.Fatalf("expected ErrTxConflict, got %v", got)
				}
				return
			}
			if errors.Is(got, ErrTxConflict) {
				t.Fatalf("did not expect ErrTxConflict for %v", tt.err)
			}
			if tt.err == nil && got != nil {
				t.Fatalf("expected nil passthrough, got %v", got)
			}
		})
	}
}

type savepointTxStub struct {
	pgx.Tx
	execErr    error
	execTags   []pgconn.CommandTag
	execCalls  int
	committed  bool
	rolledBack bool
}

func (s *savepointTxStub) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	call := s.execCalls
	s.execCalls++
	if s.execErr != nil {
		return pgconn.CommandTag{}, s.execErr
	}
	if call < len(s.execTags) {
		return s.execTags[call], nil
	}
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (s *savepointTxStub) Commit(ctx context.Context) error {
	s.committed = true
	return nil
}

func (s *savepointTxStub) Rollback(ctx context.Context) error {
	s.rolledBack = true
	return nil
}

type outerTxStub struct {
	pgx.Tx
	savepoint *savepointTxStub
	beginErr  error
	committed bool
}

func (s *outerTxStub) Begin(ctx context.Context) (pgx.Tx, error) {
	if s.beginErr != nil {
		return nil, s.beginErr
	}
	return s.savepoint, nil
}

func (s *outerTxStub) Commit(ctx context.Context) error {
	s.committed = true
	return nil
}

func TestApplyRankBonusFailureKeepsTriggeringCredit(t *testing.T) {
	sp := &savepointTxStub{execErr: errors.New("ledger insert failed")}
	outer := &outerTxStub{savepoint: sp}
	accountID := uuid.New()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Lifetime crosses the silver threshold, so a bonus is due; its
	// persistence failure must not surface to the caller.
	rankUp, balance, lifetime := applyRankBonus(
		context.Background(), outer, accountID, "bronze", 10_049, 10_049, domain.DefaultTiers(), now)

	if rankUp != nil {
		t.Fatalf("expected no rank-up after persistence failure, got %+v", rankUp)
	}
	if balance != 10_049 || lifetime != 10_049 {
		t.Fatalf("expected balance and lifetime untouched, got %d / %d", balance, lifetime)
	}
	if !sp.rolledBack {
		t.Fatal("expected the savepoint to roll back")
	}
	if sp.committed {
		t.Fatal("savepoint must not commit after a persistence failure")
	}
}

func TestApplyRankBonusSavepointBeginFailure(t *testing.T) {
	outer := &outerTxStub{beginErr: errors.New("savepoint unavailable")}

	rankUp, balance, lifetime := applyRankBonus(
		context.Background(), outer, uuid.New(), "bronze", 10_049, 10_049, domain.DefaultTiers(), time.Now())

	if rankUp != nil {
		t.Fatalf("expected no rank-up when the savepoint cannot open, got %+v", rankUp)
	}
	if balance != 10_049 || lifetime != 10_049 {
		t.Fatalf("expected balance and lifetime untouched, got %d / %d", balance, lifetime)
	}
}

func TestApplyRankBonusCreditsOnSuccess(t *testing.T) {
	sp := &savepointTxStub{execTags: []pgconn.CommandTag{
		pgconn.NewCommandTag("INSERT 0 1"),
		pgconn.NewCommandTag("UPDATE 1"),
	}}
	outer := &outerTxStub{savepoint: sp}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	rankUp, balance, lifetime := applyRankBonus(
		context.Background(), outer, uuid.New(), "bronze", 10_049, 10_049, domain.DefaultTiers(), now)

	if rankUp == nil || rankUp.Tier != "silver" || rankUp.Bonus != 500 {
		t.Fatalf("expected silver rank-up with bonus 500, got %+v", rankUp)
	}
	if balance != 10_549 || lifetime != 10_549 {
		t.Fatalf("expected bonus credited to balance and lifetime, got %d / %d", balance, lifetime)
	}
	if !sp.committed {
		t.Fatal("expected the savepoint to commit")
	}
	if sp.rolledBack {
		t.Fatal("savepoint must not roll back on success")
	}
}

func TestApplyRankBonusAlreadyPaid(t *testing.T) {
	sp := &savepointTxStub{execTags: []pgconn.CommandTag{
		pgconn.NewCommandTag("INSERT 0 0"),
		pgconn.NewCommandTag("UPDATE 1"),
	}}
	outer := &outerTxStub{savepoint: sp}

	rankUp, balance, lifetime := applyRankBonus(
		context.Background(), outer, uuid.New(), "bronze", 10_049, 10_049, domain.DefaultTiers(), time.Now())

	if rankUp != nil {
		t.Fatalf("expected no rank-up when the bonus ledger row already exists, got %+v", rankUp)
	}
	if balance != 10_049 || lifetime != 10_049 {
		t.Fatalf("expected no re-credit, got %d / %d", balance, lifetime)
	}
	if !sp.committed {
		t.Fatal("expected the rank advance to commit")
	}
}

func TestApplyRankBonusNoCrossing(t *testing.T) {
	sp := &savepointTxStub{}
	outer := &outerTxStub{savepoint: sp}

	rankUp, balance, lifetime := applyRankBonus(
		context.Background(), outer, uuid.New(), "silver", 10_049, 10_049, domain.DefaultTiers(), time.Now())

	if rankUp != nil {
		t.Fatalf("expected no rank-up below the next threshold, got %+v", rankUp)
	}
	if balance != 10_049 || lifetime != 10_049 {
		t.Fatalf("expected balance and lifetime untouched, got %d / %d", balance, lifetime)
	}
	if sp.execCalls != 0 {
		t.Fatalf("expected no writes without a tier transition, got %d", sp.execCalls)
	}
	if !sp.committed {
		t.Fatal("expected the empty savepoint to commit")
	}
}
