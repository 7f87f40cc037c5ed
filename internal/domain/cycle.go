/**
 * @description
 * This file defines the growth-cycle model and the accrual calculator. A growth
 * cycle is the globally configured rate at which a pet mines reward points; the
 * accrual calculator is a pure function over pet level, elapsed time and the
 * active cycle.
 *
 * @notes
 * - At most one cycle is active at a time (enforced by a partial unique index
 *   in the database). When none is active, or the lookup fails, callers fall
 *   back to DefaultCycle so a misconfigured registry can never block a claim.
 */

package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// GrowthCycle is a time-boxed accrual configuration. Immutable once created
// except for the Active flag, which is flipped by the admin activate operation.
type GrowthCycle struct {
	ID          uuid.UUID `json:"id"`
	CycleNumber int       `json:"cycle_number"`
	GrowthRate  float64   `json:"growth_rate"` // reward points per pet-level per hour
	MaxSpeed    float64   `json:"max_speed"`   // cap on points per hour, 0 = uncapped
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

// DefaultCycle is the hardcoded fallback used when no cycle is active or the
// registry lookup fails.
func DefaultCycle() GrowthCycle {
	return GrowthCycle{
		CycleNumber: 0,
		GrowthRate:  0.8,
		MaxSpeed:    0,
	}
}

// PendingReward computes the reward accrued between lastClaim and now for a pet
// at the given level under the given cycle. Elapsed time counted toward a
// single claim is capped at window, which bounds accrual from long-idle
// accounts. The result is floored to a whole point count and is never negative.
func PendingReward(petLevel int, lastClaim, now time.Time, cycle GrowthCycle, window time.Duration) int64 {
	if petLevel < 1 {
		petLevel = 1
	}

	elapsed := now.Sub(lastClaim)
	if elapsed <= 0 {
		return 0
	}
	if window > 0 && elapsed > window {
		elapsed = window
	}

	pointsPerHour := float64(petLevel) * cycle.GrowthRate
	if cycle.MaxSpeed > 0 && pointsPerHour > cycle.MaxSpeed {
		pointsPerHour = cycle.MaxSpeed
	}
	if pointsPerHour <= 0 {
		return 0
	}

	reward := math.Floor(elapsed.Hours() * pointsPerHour)
	if reward < 0 {
		return 0
	}
	return int64(reward)
}
