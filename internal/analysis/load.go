package analysis

import (
	"time"
)

// DailyStress is the summed stress recorded for one day.
type DailyStress struct {
	Date   time.Time
	Stress float64
}

// LoadPoint is one day of the computed training load series.
type LoadPoint struct {
	Date      time.Time
	Stress    float64
	Fitness   float64 // long-window EWMA of daily stress (CTL)
	Fatigue   float64 // short-window EWMA of daily stress (ATL)
	Readiness float64 // Fitness - Fatigue (TSB)
}

// Windows holds the recurrence time constants in days.
type Windows struct {
	FitnessDays int
	FatigueDays int
}

// DefaultWindows returns the standard 42/7 day constants.
func DefaultWindows() Windows {
	return Windows{FitnessDays: 42, FatigueDays: 7}
}

// Day truncates a time to midnight UTC. All series bucketing uses it.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the number of calendar days from a to b, for
// day-truncated UTC times.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

// BuildSeries computes the load series from the first stress day through
// the given end day. Every calendar day in between gets a point; days
// with no recorded stress are explicit zero-stress points, which lets the
// recurrence decay fitness and fatigue on rest days. The first day seeds
// fitness = fatigue = that day's stress; each later day d applies
//
//	fitness[d] = fitness[d-1] + (stress[d] - fitness[d-1]) / FitnessDays
//	fatigue[d] = fatigue[d-1] + (stress[d] - fatigue[d-1]) / FatigueDays
//
// Input order doesn't matter; entries on the same day are summed.
func BuildSeries(daily []DailyStress, through time.Time, win Windows) []LoadPoint {
	if len(daily) == 0 {
		return nil
	}

	start := Day(daily[0].Date)
	for _, d := range daily[1:] {
		if day := Day(d.Date); day.Before(start) {
			start = day
		}
	}
	end := Day(through)
	if end.Before(start) {
		end = start
	}

	stress := denseStress(daily, start, end)

	points := make([]LoadPoint, len(stress))
	fitness, fatigue := stress[0], stress[0]
	points[0] = LoadPoint{
		Date:      start,
		Stress:    stress[0],
		Fitness:   fitness,
		Fatigue:   fatigue,
		Readiness: fitness - fatigue,
	}
	for i := 1; i < len(stress); i++ {
		fitness += (stress[i] - fitness) / float64(win.FitnessDays)
		fatigue += (stress[i] - fatigue) / float64(win.FatigueDays)
		points[i] = LoadPoint{
			Date:      start.AddDate(0, 0, i),
			Stress:    stress[i],
			Fitness:   fitness,
			Fatigue:   fatigue,
			Readiness: fitness - fatigue,
		}
	}

	return points
}

// ExtendSeries recomputes the series for the days after prev through the
// given end day, starting the recurrence from prev's values. Given the
// point for day d-1 it produces exactly the points BuildSeries would for
// [d, through], which is what keeps incremental and full recomputes
// identical. Stress entries outside the range are ignored.
func ExtendSeries(prev LoadPoint, daily []DailyStress, through time.Time, win Windows) []LoadPoint {
	from := Day(prev.Date).AddDate(0, 0, 1)
	end := Day(through)
	if end.Before(from) {
		return nil
	}

	stress := denseStress(daily, from, end)

	points := make([]LoadPoint, len(stress))
	fitness, fatigue := prev.Fitness, prev.Fatigue
	for i := range stress {
		fitness += (stress[i] - fitness) / float64(win.FitnessDays)
		fatigue += (stress[i] - fatigue) / float64(win.FatigueDays)
		points[i] = LoadPoint{
			Date:      from.AddDate(0, 0, i),
			Stress:    stress[i],
			Fitness:   fitness,
			Fatigue:   fatigue,
			Readiness: fitness - fatigue,
		}
	}

	return points
}

// denseStress folds stress entries into a dense day-indexed array
// covering [start, end]. The array representation is what enforces the
// no-gap invariant.
func denseStress(daily []DailyStress, start, end time.Time) []float64 {
	stress := make([]float64, daysBetween(start, end)+1)
	for _, d := range daily {
		i := daysBetween(start, Day(d.Date))
		if i >= 0 && i < len(stress) {
			stress[i] += d.Stress
		}
	}
	return stress
}

// FormDescription returns a human-readable reading of a readiness value.
func FormDescription(readiness float64) string {
	switch {
	case readiness > 25:
		return "Highly rested - may be losing fitness"
	case readiness > 15:
		return "Well rested - optimal race readiness"
	case readiness > 5:
		return "Rested - good for racing"
	case readiness > -10:
		return "Fresh - productive training zone"
	case readiness > -30:
		return "Optimal training - building fitness"
	case readiness > -50:
		return "Heavy training - monitor for overtraining"
	default:
		return "Very fatigued - risk of overtraining"
	}
}
