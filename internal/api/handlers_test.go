package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pawmine/mining-service/internal/app"
	"github.com/pawmine/mining-service/internal/domain"
	"github.com/pawmine/mining-service/internal/store"
)

type handlerRepoStub struct {
	store.Repository

	account      *domain.Account
	feedOutcome  *domain.FeedOutcome
	feedErr      error
	claimOutcome *domain.ClaimOutcome
	claimErr     error
	leaderboard  []domain.LeaderboardEntry
}

func (s *handlerRepoStub) FindOrCreateAccountBySubject(ctx context.Context, subjectID string, now time.Time) (*domain.Account, error) {
	return s.account, nil
}

func (s *handlerRepoStub) FindDailyFeedLog(ctx context.Context, accountID uuid.UUID, dayKey string) (*domain.DailyFeedLog, error) {
	return &domain.DailyFeedLog{AccountID: accountID, DayKey: dayKey}, nil
}

func (s *handlerRepoStub) GetActiveCycle(ctx context.Context, now time.Time) (*domain.GrowthCycle, error) {
	return nil, store.ErrCycleNotFound
}

func (s *handlerRepoStub) FeedAtomic(ctx context.Context, accountID uuid.UUID, feedCount int, rules domain.FeedRules, now time.Time) (*domain.FeedOutcome, error) {
	if s.feedErr != nil {
		return nil, s.feedErr
	}
	return s.feedOutcome, nil
}

func (s *handlerRepoStub) ClaimAtomic(ctx context.Context, accountID uuid.UUID, cycle domain.GrowthCycle, window time.Duration, tiers domain.TierTable, now time.Time) (*domain.ClaimOutcome, error) {
	if s.claimErr != nil {
		return nil, s.claimErr
	}
	return s.claimOutcome, nil
}

func (s *handlerRepoStub) Leaderboard(ctx context.Context, limit, offset int) ([]domain.LeaderboardEntry, error) {
	return s.leaderboard, nil
}

func handlerTestAccount() *domain.Account {
	return &domain.Account{
		ID:          uuid.New(),
		SubjectID:   "subject-1",
		Balance:     500,
		PetLevel:    3,
		PetXP:       200,
		LastClaimAt: time.Now().UTC().Add(-time.Hour),
		RankTier:    "rookie",
	}
}

func newTestHandlers(repo store.Repository) *MiningHandlers {
	svc := app.NewService(
		repo,
		nil,
		nil,
		domain.FeedRules{CostPerFeed: 20, XPPerFeed: 20, XPForLevelUp: 1200, MaxDailySpend: 600, MaxLevel: 50},
		4*time.Hour,
		0.8,
		10_000,
		"mining_service.events",
	)
	return NewMiningHandlers(svc)
}

func authedRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	ctx := context.WithValue(req.Context(), subjectIDKey, "subject-1")
	return req.WithContext(ctx)
}

func TestPetStatusHandler(t *testing.T) {
	h := newTestHandlers(&handlerRepoStub{account: handlerTestAccount()})

	rec := httptest.NewRecorder()
	h.PetStatusHandler(rec, authedRequest(http.MethodGet, "/mining/pet", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var status domain.PetStatus
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if status.PetLevel != 3 || status.Balance != 500 {
		t.Fatalf("unexpected status payload: %+v", status)
	}
}

func TestPetStatusHandlerRequiresSubject(t *testing.T) {
	h := newTestHandlers(&handlerRepoStub{account: handlerTestAccount()})

	rec := httptest.NewRecorder()
	h.PetStatusHandler(rec, httptest.NewRequest(http.MethodGet, "/mining/pet", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without subject, got %d", rec.Code)
	}
}

func TestFeedHandlerValidation(t *testing.T) {
	h := newTestHandlers(&handlerRepoStub{account: handlerTestAccount()})

	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "malformed body", body: "{not-json", want: http.StatusBadRequest},
		{name: "zero feed count", body: `{"feed_count":0}`, want: http.StatusBadRequest},
		{name: "feed count above cap", body: `{"feed_count":31}`, want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.FeedHandler(rec, authedRequest(http.MethodPost, "/mining/pet/feed", tt.body))
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestFeedHandlerBusinessFailureIsOK(t *testing.T) {
	repo := &handlerRepoStub{
		account:     handlerTestAccount(),
		feedOutcome: domain.FailedFeed(domain.FeedReasonDailyLimitExceeded, 600, 600),
	}
	h := newTestHandlers(repo)

	rec := httptest.NewRecorder()
	h.FeedHandler(rec, authedRequest(http.MethodPost, "/mining/pet/feed", `{"feed_count":5}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected business failure as 200, got %d", rec.Code)
	}
	var outcome domain.FeedOutcome
	if err := json.NewDecoder(rec.Body).Decode(&outcome); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if outcome.Success || outcome.Reason != domain.FeedReasonDailyLimitExceeded {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
}

func TestFeedHandlerConflictMapsTo409(t *testing.T) {
	repo := &handlerRepoStub{
		account: handlerTestAccount(),
		feedErr: store.ErrTxConflict,
	}
	h := newTestHandlers(repo)

	rec := httptest.NewRecorder()
	h.FeedHandler(rec, authedRequest(http.MethodPost, "/mining/pet/feed", `{"feed_count":5}`))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for transaction conflict, got %d", rec.Code)
	}
}

func TestClaimHandlerNoRewardIsOK(t *testing.T) {
	repo := &handlerRepoStub{
		account:      handlerTestAccount(),
		claimOutcome: &domain.ClaimOutcome{Success: false, Reason: domain.ClaimReasonNoReward},
	}
	h := newTestHandlers(repo)

	rec := httptest.NewRecorder()
	h.ClaimHandler(rec, authedRequest(http.MethodPost, "/mining/claim", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var outcome domain.ClaimOutcome
	if err := json.NewDecoder(rec.Body).Decode(&outcome); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if outcome.Success || outcome.Reason != domain.ClaimReasonNoReward {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
}

func TestRankInfoHandler(t *testing.T) {
	acct := handlerTestAccount()
	acct.LifetimeEarnings = 1500
	h := newTestHandlers(&handlerRepoStub{account: acct})

	rec := httptest.NewRecorder()
	h.RankInfoHandler(rec, authedRequest(http.MethodGet, "/mining/rank", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var info domain.RankInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if info.Tier != "bronze" {
		t.Fatalf("expected bronze, got %s", info.Tier)
	}
	if info.NextTier == nil || *info.NextTier != "silver" {
		t.Fatalf("expected next tier silver, got %+v", info.NextTier)
	}
}

func TestLeaderboardHandlerIsPublic(t *testing.T) {
	repo := &handlerRepoStub{
		leaderboard: []domain.LeaderboardEntry{
			{Position: 1, AccountID: uuid.New(), LifetimeEarnings: 90_000, PetLevel: 12, RankTier: "gold"},
		},
	}
	h := newTestHandlers(repo)

	// No subject in context: leaderboard must still respond.
	rec := httptest.NewRecorder()
	h.LeaderboardHandler(rec, httptest.NewRequest(http.MethodGet, "/mining/leaderboard?limit=5", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var payload struct {
		Entries []domain.LeaderboardEntry `json:"entries"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(payload.Entries) != 1 || payload.Entries[0].RankTier != "gold" {
		t.Fatalf("unexpected leaderboard payload: %+v", payload.Entries)
	}
}

func TestAdjustPointsHandlerValidation(t *testing.T) {
	h := newTestHandlers(&handlerRepoStub{account: handlerTestAccount()})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/mining/admin/adjustments", strings.NewReader(`{"amount":100}`))
	h.AdjustPointsHandler(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing account id, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	body := `{"account_id":"` + uuid.NewString() + `","amount":-5}`
	req = httptest.NewRequest(http.MethodPost, "/mining/admin/adjustments", strings.NewReader(body))
	h.AdjustPointsHandler(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-positive amount, got %d", rec.Code)
	}
}

func TestInternalKeyMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	protected := InternalKeyMiddleware("secret-key")(next)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/mining/admin/cycles", nil)
	protected.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without key, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/mining/admin/cycles", nil)
	req.Header.Set("X-Internal-API-Key", "wrong-key")
	protected.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 with wrong key, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/mining/admin/cycles", nil)
	req.Header.Set("X-Internal-API-Key", "secret-key")
	protected.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with correct key, got %d", rec.Code)
	}
}
