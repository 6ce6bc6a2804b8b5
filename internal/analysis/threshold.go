package analysis

import (
	"time"

	"runcoach/internal/store"
)

// ThresholdParams tunes threshold estimation.
type ThresholdParams struct {
	WindowDays    int     // trailing evidence window
	MinEffortSec  int     // minimum moving time for a workout to count
	Discount      float64 // applied to the best weighted speed
	MinChange     float64 // fractional change required to emit a new estimate
	StalenessDays int     // age after which an estimate is refreshed regardless
}

// DefaultThresholdParams returns the standard estimation parameters.
func DefaultThresholdParams() ThresholdParams {
	return ThresholdParams{
		WindowDays:    90,
		MinEffortSec:  1200,
		Discount:      0.97,
		MinChange:     0.02,
		StalenessDays: 56,
	}
}

// basisTolerance is how close (fractionally) to the best weighted speed a
// piece of evidence must be to be recorded in the estimate's basis.
const basisTolerance = 0.03

// typeWeight discounts evidence by how reliably its average pace reflects
// a sustainable effort. Races are taken at face value; interval averages
// are the least trustworthy because of recovery jogs.
func typeWeight(t store.WorkoutType) float64 {
	switch t {
	case store.TypeRace:
		return 1.0
	case store.TypeTempo:
		return 0.98
	case store.TypeInterval:
		return 0.96
	default:
		return 0
	}
}

// ThresholdResult is a candidate threshold estimate.
type ThresholdResult struct {
	Speed float64  // m/s
	Basis []string // IDs of the supporting workouts
}

// EstimateThreshold derives a sustainable threshold speed from the
// trailing evidence window ending at asOf. Evidence is any tempo,
// interval, or race workout with at least MinEffortSec of moving time and
// a measurable grade-adjusted speed. The estimate is the discounted best
// weighted speed. Deterministic for a given history; returns false when
// the window holds no evidence.
func EstimateThreshold(workouts []store.Workout, asOf time.Time, p ThresholdParams) (ThresholdResult, bool) {
	cutoff := Day(asOf).AddDate(0, 0, -p.WindowDays)
	end := Day(asOf)

	best := 0.0
	type candidate struct {
		id       string
		weighted float64
	}
	var candidates []candidate

	for _, w := range workouts {
		weight := typeWeight(w.Type)
		if weight == 0 || w.MovingTime < p.MinEffortSec {
			continue
		}
		day := Day(w.Date)
		if day.Before(cutoff) || day.After(end) {
			continue
		}
		speed := EffortSpeed(w)
		if speed <= 0 {
			continue
		}
		weighted := speed * weight
		candidates = append(candidates, candidate{id: w.ID, weighted: weighted})
		if weighted > best {
			best = weighted
		}
	}

	if best == 0 {
		return ThresholdResult{}, false
	}

	var basis []string
	for _, c := range candidates {
		if c.weighted >= best*(1-basisTolerance) {
			basis = append(basis, c.id)
		}
	}

	return ThresholdResult{Speed: best * p.Discount, Basis: basis}, true
}

// ShouldReplace reports whether a freshly computed estimate should
// supersede the current one. True when none exists, when the value moved
// by at least MinChange, or when the current estimate has gone stale.
// Keeping near-identical estimates out avoids churn in the history.
func ShouldReplace(current *store.ThresholdEstimate, next float64, asOf time.Time, p ThresholdParams) bool {
	if current == nil {
		return true
	}
	if current.Speed <= 0 {
		return true
	}
	change := (next - current.Speed) / current.Speed
	if change < 0 {
		change = -change
	}
	if change >= p.MinChange {
		return true
	}
	age := daysBetween(Day(current.EffectiveFrom), Day(asOf))
	return age >= p.StalenessDays
}
