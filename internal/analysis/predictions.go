package analysis

import (
	"math"
	"time"

	"runcoach/internal/store"
)

// predictionTargets are the distances predictions cover: the classic
// road distances the reference table is built on. Ultra records are
// tracked but never extrapolated from or to.
var predictionTargets = []store.RaceDistance{
	store.Race5K,
	store.Race10K,
	store.RaceHalf,
	store.RaceMarathon,
}

// sourceMaxAgeDays bounds how old a record may be and still anchor
// predictions. A race from over a year ago says little about current
// form.
const sourceMaxAgeDays = 365

// RacePrediction is a projected finish time at one target distance.
type RacePrediction struct {
	Distance   store.RaceDistance
	Meters     float64
	Seconds    int
	Speed      float64 // m/s implied by the predicted time
	VDOT       float64
	Confidence string  // high, medium, or low
	Score      float64 // 0-1, what Confidence buckets
}

// SelectPredictionSource picks the record predictions extrapolate from:
// the longest prediction-target distance raced within the last year.
// Longer races pin the aerobic profile better than short ones. Returns
// nil when no recent record qualifies.
func SelectPredictionSource(records []store.RaceRecord, asOf time.Time) *store.RaceRecord {
	cutoff := Day(asOf).AddDate(0, 0, -sourceMaxAgeDays)

	var best *store.RaceRecord
	for i := range records {
		r := &records[i]
		if r.AchievedAt.Before(cutoff) {
			continue
		}
		if !isPredictionTarget(r.Distance) {
			continue
		}
		if best == nil || r.Distance.Meters() > best.Distance.Meters() {
			best = r
		}
	}
	return best
}

func isPredictionTarget(d store.RaceDistance) bool {
	for _, t := range predictionTargets {
		if d == t {
			return true
		}
	}
	return false
}

// PredictionConfidence scores how much to trust one extrapolation, 0-1,
// with its bucket label. Three things erode it: extrapolating far from
// the source distance, a source that has aged, and aerobic efficiency
// drifting downward since the baseline (efDrift, fractional, may be
// nil when unknown).
func PredictionConfidence(source store.RaceRecord, targetMeters float64, asOf time.Time, efDrift *float64) (float64, string) {
	score := 1.0

	ratio := targetMeters / source.Meters
	if ratio < 1 {
		ratio = 1 / ratio
	}
	switch {
	case ratio > 4:
		score *= 0.7
	case ratio > 2:
		score *= 0.85
	case ratio > 1.5:
		score *= 0.95
	}

	age := daysBetween(Day(source.AchievedAt), Day(asOf))
	switch {
	case age > 180:
		score *= 0.75
	case age > 90:
		score *= 0.9
	case age > 30:
		score *= 0.95
	}

	if efDrift != nil && *efDrift < -0.05 {
		score *= 0.85
	}

	label := "low"
	switch {
	case score >= 0.85:
		label = "high"
	case score >= 0.65:
		label = "medium"
	}
	return score, label
}

// PredictRaces projects finish times at every target distance from the
// source record. The source's own distance is skipped; the athlete
// already has that time. Returns nil when the source yields no VDOT.
func PredictRaces(source store.RaceRecord, asOf time.Time, efDrift *float64) []RacePrediction {
	vdot := VDOT(source.Meters, source.Seconds)
	if vdot <= 0 {
		return nil
	}

	var predictions []RacePrediction
	for _, target := range predictionTargets {
		if target == source.Distance {
			continue
		}
		meters := target.Meters()
		seconds := PredictTime(vdot, meters)
		if seconds <= 0 {
			continue
		}
		score, label := PredictionConfidence(source, meters, asOf, efDrift)
		predictions = append(predictions, RacePrediction{
			Distance:   target,
			Meters:     meters,
			Seconds:    seconds,
			Speed:      meters / float64(seconds),
			VDOT:       vdot,
			Confidence: label,
			Score:      math.Round(score*100) / 100,
		})
	}
	return predictions
}
