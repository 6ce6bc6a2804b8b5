package analysis

import (
	"time"

	"runcoach/internal/store"
)

// Aerobic efficiency relates speed to the heart rate it cost. Rising
// efficiency at a steady heart rate is the clearest summary-level signal
// that aerobic fitness is improving.

// Trend windows: the last week against the four weeks before it.
const (
	EFCurrentDays  = 7
	EFBaselineDays = 28
)

// Heart rate and speed bounds outside which a summary is treated as
// sensor noise rather than a measurement.
const (
	minEFHeartRate = 80
	maxEFHeartRate = 220
	minEFSpeed     = 0.5 // m/s
)

// EfficiencyFactor returns the workout's aerobic efficiency in meters
// per minute per beat, using the grade-adjusted speed so hilly runs
// compare against flat ones. Typical values run 1.0 to 2.0. Returns 0
// when heart rate is missing or implausible.
func EfficiencyFactor(w store.Workout) float64 {
	if w.AverageHR == nil {
		return 0
	}
	hr := *w.AverageHR
	if hr < minEFHeartRate || hr > maxEFHeartRate {
		return 0
	}
	speed := EffortSpeed(w)
	if speed < minEFSpeed {
		return 0
	}
	return speed * 60 / hr
}

// aerobicType reports whether the workout type runs at a steady aerobic
// effort. Efficiency comparisons across mixed intensities say nothing:
// intervals score high on speed for reasons unrelated to fitness.
func aerobicType(t store.WorkoutType) bool {
	switch t {
	case store.TypeEasy, store.TypeRecovery, store.TypeLong:
		return true
	}
	return false
}

// EfficiencyTrend compares recent aerobic efficiency against a trailing
// baseline.
type EfficiencyTrend struct {
	Current  float64 // mean EF over the last EFCurrentDays
	Baseline float64 // mean EF over the EFBaselineDays before that
	Drift    float64 // fractional change of Current from Baseline
}

// ComputeEfficiencyTrend averages the EF of aerobic workouts in the
// current and baseline windows ending at asOf. Returns false unless both
// windows hold at least one usable workout.
func ComputeEfficiencyTrend(workouts []store.Workout, asOf time.Time) (EfficiencyTrend, bool) {
	end := Day(asOf)
	currentStart := end.AddDate(0, 0, -EFCurrentDays+1)
	baselineStart := currentStart.AddDate(0, 0, -EFBaselineDays)

	var currentSum, baselineSum float64
	var currentN, baselineN int

	for _, w := range workouts {
		if !aerobicType(w.Type) {
			continue
		}
		ef := EfficiencyFactor(w)
		if ef == 0 {
			continue
		}
		day := Day(w.Date)
		switch {
		case day.After(end) || day.Before(baselineStart):
		case !day.Before(currentStart):
			currentSum += ef
			currentN++
		default:
			baselineSum += ef
			baselineN++
		}
	}

	if currentN == 0 || baselineN == 0 {
		return EfficiencyTrend{}, false
	}

	trend := EfficiencyTrend{
		Current:  currentSum / float64(currentN),
		Baseline: baselineSum / float64(baselineN),
	}
	trend.Drift = (trend.Current - trend.Baseline) / trend.Baseline
	return trend, true
}
