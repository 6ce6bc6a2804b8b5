package plan

import (
	"time"

	"runcoach/internal/analysis"
	"runcoach/internal/store"
)

// EvalParams are the evaluator tunables. Metric weights are renormalized
// over the metrics a given prescription actually carries.
type EvalParams struct {
	MatchWindowDays int     // how far from the planned date an actual may land
	DurationWeight  float64 //
	DistanceWeight  float64 //
	IntensityWeight float64 //
	OnTargetScore   float64 // aggregate score at or above this is on target
}

// DefaultEvalParams returns the standard evaluation configuration.
func DefaultEvalParams() EvalParams {
	return EvalParams{
		MatchWindowDays: 1,
		DurationWeight:  0.3,
		DistanceWeight:  0.4,
		IntensityWeight: 0.3,
		OnTargetScore:   85,
	}
}

// MatchActual finds the workout closest in time to the planned date
// within the match window, or nil when nothing qualifies.
func MatchActual(planned store.PlannedWorkout, actuals []store.Workout, windowDays int) *store.Workout {
	plannedDay := analysis.Day(planned.Date)

	var best *store.Workout
	var bestDistance time.Duration
	for i := range actuals {
		w := &actuals[i]
		dayGap := analysis.Day(w.Date).Sub(plannedDay)
		if dayGap < 0 {
			dayGap = -dayGap
		}
		if dayGap > time.Duration(windowDays)*24*time.Hour {
			continue
		}
		gap := w.Date.Sub(plannedDay)
		if gap < 0 {
			gap = -gap
		}
		if best == nil || gap < bestDistance {
			best = w
			bestDistance = gap
		}
	}
	return best
}

// Evaluate scores an actual workout against its prescription. A nil
// actual is the no-matching-activity case: matched false, no score,
// verdict missed. Only prescribed metrics are scored; deltas for the
// others are still reported. The returned result has no ID or creation
// time; the caller stamps those before persisting.
func Evaluate(planned store.PlannedWorkout, actual *store.Workout, threshold float64, p EvalParams) store.EvaluationResult {
	result := store.EvaluationResult{
		PlannedID: planned.ID,
		Verdict:   store.VerdictMissed,
	}
	if actual == nil {
		return result
	}

	result.ActualID = &actual.ID
	result.Matched = true

	if threshold <= 0 {
		threshold = analysis.DefaultAnchorSpeed
	}

	var durationDelta, distanceDelta *float64
	if planned.TargetDuration > 0 {
		d := percentDelta(float64(actual.MovingTime), float64(planned.TargetDuration))
		durationDelta = &d
	}
	if planned.TargetDistance > 0 {
		d := percentDelta(actual.Distance, planned.TargetDistance)
		distanceDelta = &d
	}
	intensityDelta := zoneDelta(analysis.EffortSpeed(*actual), planned.Zone, threshold)

	result.DurationDelta = durationDelta
	result.DistanceDelta = distanceDelta
	result.IntensityDelta = &intensityDelta

	// Distance-prescribed workouts are scored on distance and intensity;
	// the derived duration is informational. Duration is scored only when
	// it is the prescription itself.
	var weightSum, weighted float64
	score := func(weight float64, delta float64) {
		weightSum += weight
		weighted += weight * adherence(delta)
	}
	volumeDelta := 0.0
	switch {
	case distanceDelta != nil:
		score(p.DistanceWeight, *distanceDelta)
		volumeDelta = *distanceDelta
	case durationDelta != nil:
		score(p.DurationWeight, *durationDelta)
		volumeDelta = *durationDelta
	}
	score(p.IntensityWeight, intensityDelta)

	total := weighted / weightSum
	result.Score = &total

	switch {
	case total >= p.OnTargetScore:
		result.Verdict = store.VerdictOnTarget
	case volumeDelta > 0:
		result.Verdict = store.VerdictOver
	case volumeDelta < 0:
		result.Verdict = store.VerdictUnder
	case intensityDelta > 0:
		result.Verdict = store.VerdictOver
	default:
		result.Verdict = store.VerdictUnder
	}
	return result
}

// adherence maps a percentage deviation to a 0-100 metric score.
func adherence(delta float64) float64 {
	if delta < 0 {
		delta = -delta
	}
	if delta > 100 {
		delta = 100
	}
	return 100 - delta
}

func percentDelta(actual, target float64) float64 {
	return (actual - target) / target * 100
}

// zoneDelta is zero when the speed sits inside the target zone band,
// otherwise the signed percentage distance to the nearest band edge.
func zoneDelta(speed float64, zone int, threshold float64) float64 {
	low, high := analysis.ZoneBounds(zone, threshold)
	switch {
	case speed > high:
		return (speed - high) / high * 100
	case speed < low:
		return -(low - speed) / low * 100
	}
	return 0
}
