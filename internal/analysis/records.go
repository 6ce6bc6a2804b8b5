package analysis

import (
	"sort"
	"time"

	"runcoach/internal/store"
)

// raceMatchTolerance is how far (fractionally) a workout's total distance
// may sit from a standard race distance and still count as that race.
// GPS drift and course measurement put real races a few percent off.
const raceMatchTolerance = 0.05

// recordDistances lists the categories records are tracked at, shortest
// first. The tolerance bands of adjacent categories never overlap.
var recordDistances = []store.RaceDistance{
	store.Race5K,
	store.Race10K,
	store.RaceHalf,
	store.RaceMarathon,
	store.Race50K,
	store.Race50Mile,
	store.Race100K,
	store.Race100Mile,
}

// RaceResult is one workout read as a timed effort at a standard race
// distance.
type RaceResult struct {
	Distance  store.RaceDistance
	WorkoutID string
	Meters    float64 // the workout's actual distance
	Seconds   int     // moving time
	Speed     float64 // m/s over the actual distance
	AverageHR *float64
	Date      time.Time
}

// MatchRaceDistance maps a total distance onto a standard race distance
// within the tolerance band. Returns false for distances that land
// between categories.
func MatchRaceDistance(meters float64) (store.RaceDistance, bool) {
	for _, d := range recordDistances {
		target := d.Meters()
		if meters >= target*(1-raceMatchTolerance) && meters <= target*(1+raceMatchTolerance) {
			return d, true
		}
	}
	return "", false
}

// BestRaceResults scans the workout history and keeps the fastest effort
// at each standard race distance. Any workout whose total distance lands
// on a category is a candidate; the lowest moving time wins, and the
// earlier date keeps a tied record with the workout that set it first.
// Results come back ordered shortest distance first.
func BestRaceResults(workouts []store.Workout) []RaceResult {
	best := make(map[store.RaceDistance]RaceResult)

	for _, w := range workouts {
		if w.MovingTime <= 0 || w.Distance <= 0 {
			continue
		}
		distance, ok := MatchRaceDistance(w.Distance)
		if !ok {
			continue
		}

		result := RaceResult{
			Distance:  distance,
			WorkoutID: w.ID,
			Meters:    w.Distance,
			Seconds:   w.MovingTime,
			Speed:     w.Distance / float64(w.MovingTime),
			AverageHR: w.AverageHR,
			Date:      Day(w.Date),
		}

		current, exists := best[distance]
		if !exists || result.Seconds < current.Seconds ||
			(result.Seconds == current.Seconds && result.Date.Before(current.Date)) {
			best[distance] = result
		}
	}

	results := make([]RaceResult, 0, len(best))
	for _, r := range best {
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Distance.Meters() < results[j].Distance.Meters()
	})
	return results
}
