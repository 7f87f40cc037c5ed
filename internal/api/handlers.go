/**
 * @description
 * This file contains the HTTP handlers for the mining-service's API endpoints.
 * Handlers are responsible for parsing incoming requests, calling the appropriate
 * methods on the application service, and writing the HTTP response. They act as the
 * bridge between the web layer and the business logic layer.
 *
 * Business-rule failures (insufficient balance, daily cap, nothing to claim)
 * come back from the service as structured outcomes and are written with a 200
 * status so clients render them as game state, not faults. Transient
 * transaction conflicts map to 409 and invite a client retry.
 *
 * @dependencies
 * - encoding/json, log, net/http: Standard Go libraries.
 * - internal/app, internal/store: For service logic, models, and custom errors.
 */

package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pawmine/mining-service/internal/app"
	"github.com/pawmine/mining-service/internal/store"
)

// MiningHandlers holds the application service that handlers will use.
type MiningHandlers struct {
	service *app.Service
}

// NewMiningHandlers creates a new instance of MiningHandlers.
func NewMiningHandlers(service *app.Service) *MiningHandlers {
	return &MiningHandlers{service: service}
}

// feedRequest is the DTO for the feed endpoint.
type feedRequest struct {
	FeedCount int `json:"feed_count"`
}

// createCycleRequest is the DTO for the admin cycle-creation endpoint.
type createCycleRequest struct {
	CycleNumber int       `json:"cycle_number"`
	GrowthRate  float64   `json:"growth_rate"`
	MaxSpeed    float64   `json:"max_speed"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
}

// adjustRequest is the DTO for the admin point-grant endpoint.
type adjustRequest struct {
	AccountID   uuid.UUID `json:"account_id"`
	Amount      int64     `json:"amount"`
	Description string    `json:"description"`
}

// PetStatusHandler returns the pet dashboard for the authenticated subject.
func (h *MiningHandlers) PetStatusHandler(w http.ResponseWriter, r *http.Request) {
	subject, ok := GetSubjectID(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "Could not get subject from context")
		return
	}

	status, err := h.service.PetStatus(r.Context(), subject)
	if err != nil {
		log.Printf("level=error component=api endpoint=pet_status msg=\"status lookup failed\" subject=%s err=%v", subject, err)
		h.writeError(w, http.StatusInternalServerError, "Unable to load pet status")
		return
	}
	h.writeJSON(w, http.StatusOK, status)
}

// FeedHandler handles pet feeding requests.
func (h *MiningHandlers) FeedHandler(w http.ResponseWriter, r *http.Request) {
	subject, ok := GetSubjectID(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "Could not get subject from context")
		return
	}

	var req feedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	outcome, err := h.service.Feed(r.Context(), subject, req.FeedCount)
	if err != nil {
		h.writeServiceError(w, "feed", subject, err)
		return
	}
	h.writeJSON(w, http.StatusOK, outcome)
}

// ClaimHandler handles mining reward claims.
func (h *MiningHandlers) ClaimHandler(w http.ResponseWriter, r *http.Request) {
	subject, ok := GetSubjectID(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "Could not get subject from context")
		return
	}

	outcome, err := h.service.Claim(r.Context(), subject)
	if err != nil {
		h.writeServiceError(w, "claim", subject, err)
		return
	}
	h.writeJSON(w, http.StatusOK, outcome)
}

// RankInfoHandler returns rank ladder progress for the authenticated subject.
func (h *MiningHandlers) RankInfoHandler(w http.ResponseWriter, r *http.Request) {
	subject, ok := GetSubjectID(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "Could not get subject from context")
		return
	}

	info, err := h.service.RankInfo(r.Context(), subject)
	if err != nil {
		h.writeServiceError(w, "rank_info", subject, err)
		return
	}
	h.writeJSON(w, http.StatusOK, info)
}

// TransactionsHandler returns the subject's ledger history.
func (h *MiningHandlers) TransactionsHandler(w http.ResponseWriter, r *http.Request) {
	subject, ok := GetSubjectID(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "Could not get subject from context")
		return
	}

	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)
	txs, err := h.service.TransactionHistory(r.Context(), subject, limit, offset)
	if err != nil {
		h.writeServiceError(w, "transactions", subject, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"transactions": txs})
}

// LeaderboardHandler returns the public lifetime-earnings leaderboard.
func (h *MiningHandlers) LeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)

	entries, err := h.service.Leaderboard(r.Context(), limit, offset)
	if err != nil {
		log.Printf("level=error component=api endpoint=leaderboard msg=\"leaderboard query failed\" err=%v", err)
		h.writeError(w, http.StatusInternalServerError, "Unable to load leaderboard")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}

// CreateCycleHandler registers a new growth cycle (admin).
func (h *MiningHandlers) CreateCycleHandler(w http.ResponseWriter, r *http.Request) {
	var req createCycleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cycle, err := h.service.CreateCycle(r.Context(), req.CycleNumber, req.GrowthRate, req.MaxSpeed, req.StartsAt, req.EndsAt)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writeJSON(w, http.StatusCreated, cycle)
}

// ActivateCycleHandler activates a growth cycle (admin).
func (h *MiningHandlers) ActivateCycleHandler(w http.ResponseWriter, r *http.Request) {
	cycleID, err := uuid.Parse(chi.URLParam(r, "cycleID"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid cycle ID")
		return
	}

	cycle, err := h.service.ActivateCycle(r.Context(), cycleID)
	if err != nil {
		if errors.Is(err, store.ErrCycleNotFound) {
			h.writeError(w, http.StatusNotFound, "Growth cycle not found")
			return
		}
		log.Printf("level=error component=api endpoint=activate_cycle msg=\"activation failed\" cycle_id=%s err=%v", cycleID, err)
		h.writeError(w, http.StatusInternalServerError, "Unable to activate cycle")
		return
	}
	h.writeJSON(w, http.StatusOK, cycle)
}

// ListCyclesHandler lists all growth cycles (admin).
func (h *MiningHandlers) ListCyclesHandler(w http.ResponseWriter, r *http.Request) {
	cycles, err := h.service.ListCycles(r.Context())
	if err != nil {
		log.Printf("level=error component=api endpoint=list_cycles msg=\"cycle listing failed\" err=%v", err)
		h.writeError(w, http.StatusInternalServerError, "Unable to list cycles")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"cycles": cycles})
}

// AdjustPointsHandler applies an administrative point grant (admin).
func (h *MiningHandlers) AdjustPointsHandler(w http.ResponseWriter, r *http.Request) {
	var req adjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.AccountID == uuid.Nil {
		h.writeError(w, http.StatusBadRequest, "account_id is required")
		return
	}

	outcome, err := h.service.AdjustPoints(r.Context(), req.AccountID, req.Amount, req.Description)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			h.writeError(w, http.StatusNotFound, "Account not found")
			return
		}
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, outcome)
}

// writeServiceError maps service-layer errors onto the HTTP taxonomy.
func (h *MiningHandlers) writeServiceError(w http.ResponseWriter, endpoint, subject string, err error) {
	switch {
	case errors.Is(err, app.ErrInvalidFeedCount):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrRateLimited):
		h.writeError(w, http.StatusTooManyRequests, "Too many requests. Please slow down.")
	case errors.Is(err, store.ErrTxConflict):
		h.writeError(w, http.StatusConflict, "Please retry your request.")
	case errors.Is(err, store.ErrAccountNotFound):
		h.writeError(w, http.StatusNotFound, "Account not found")
	default:
		log.Printf("level=error component=api endpoint=%s msg=\"request failed\" subject=%s err=%v", endpoint, subject, err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

// writeJSON is a helper for writing JSON responses.
func (h *MiningHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError is a helper for writing JSON error responses.
func (h *MiningHandlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
