/**
 * @description
 * This file sets up the HTTP router for the mining-service. It defines the API
 * endpoints, associates them with their corresponding handlers, and applies any
 * necessary middleware, such as for authentication.
 *
 * @dependencies
 * - net/http: Standard Go library for HTTP functionality.
 * - github.com/go-chi/chi/v5: A lightweight and idiomatic router for Go.
 */

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// MiningRoutes creates and returns a new router for the mining service.
func MiningRoutes(h *MiningHandlers, jwksURL, internalAPIKey string) http.Handler {
	r := chi.NewRouter()

	// Add standard middleware for logging, panic recovery, and timeouts.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	// Public leaderboard does not require a signed-in player.
	r.Get("/leaderboard", h.LeaderboardHandler)

	// Group routes that require player authentication.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(jwksURL))

		r.Get("/pet", h.PetStatusHandler)
		r.Post("/pet/feed", h.FeedHandler)
		r.Post("/claim", h.ClaimHandler)
		r.Get("/rank", h.RankInfoHandler)
		r.Get("/transactions", h.TransactionsHandler)
	})

	// Admin endpoints are reachable only with the internal service key.
	r.Group(func(r chi.Router) {
		r.Use(InternalKeyMiddleware(internalAPIKey))

		r.Post("/admin/cycles", h.CreateCycleHandler)
		r.Post("/admin/cycles/{cycleID}/activate", h.ActivateCycleHandler)
		r.Get("/admin/cycles", h.ListCyclesHandler)
		r.Post("/admin/adjustments", h.AdjustPointsHandler)
	})

	return r
}
