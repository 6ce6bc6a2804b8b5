package service

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"runcoach/internal/analysis"
	"runcoach/internal/store"
)

// refreshRecords recomputes the race record set from the workout history
// and replaces the stored rows. Callers hold the athlete's lock.
func (c *Coach) refreshRecords(athleteID int64, workouts []store.Workout) error {
	results := analysis.BestRaceResults(workouts)

	records := make([]store.RaceRecord, 0, len(results))
	for _, r := range results {
		records = append(records, store.RaceRecord{
			AthleteID:  athleteID,
			Distance:   r.Distance,
			WorkoutID:  r.WorkoutID,
			Meters:     r.Meters,
			Seconds:    r.Seconds,
			Speed:      r.Speed,
			AverageHR:  r.AverageHR,
			AchievedAt: r.Date,
		})
	}

	if err := c.db.ReplaceRaceRecords(athleteID, records); err != nil {
		return fmt.Errorf("replacing race records: %w", err)
	}

	log.Debug().
		Int64("athlete", athleteID).
		Int("records", len(records)).
		Msg("race records refreshed")

	return nil
}

// RaceRecords returns the athlete's records, shortest distance first.
func (c *Coach) RaceRecords(athleteID int64) ([]store.RaceRecord, error) {
	return c.db.ListRaceRecords(athleteID)
}

// RecordAt returns the athlete's record at one distance, or
// store.ErrRecordNotFound when none has been set.
func (c *Coach) RecordAt(athleteID int64, distance store.RaceDistance) (*store.RaceRecord, error) {
	return c.db.GetRaceRecord(athleteID, distance)
}

// PredictionsReport is the race outlook assembled for display. Source is
// nil when no recent record can anchor predictions.
type PredictionsReport struct {
	Source      *store.RaceRecord
	VDOT        float64
	Level       string   // competitive bucket for the VDOT
	EFDrift     *float64 // fractional efficiency change feeding confidence
	Predictions []analysis.RacePrediction
}

// RacePredictions projects finish times at the standard distances from
// the athlete's best recent race. The report is derived on demand rather
// than stored: it is a pure function of the record set and the clock,
// and its confidence decays with record age, so persisted rows would go
// quietly stale.
func (c *Coach) RacePredictions(athleteID int64) (*PredictionsReport, error) {
	records, err := c.db.ListRaceRecords(athleteID)
	if err != nil {
		return nil, fmt.Errorf("listing race records: %w", err)
	}

	today := analysis.Day(c.now())
	source := analysis.SelectPredictionSource(records, today)
	if source == nil {
		return &PredictionsReport{}, nil
	}

	report := &PredictionsReport{Source: source}
	report.VDOT = analysis.VDOT(source.Meters, source.Seconds)
	report.Level = analysis.VDOTLabel(report.VDOT)

	if trend, ok := c.efficiencyTrend(athleteID, today); ok {
		drift := trend.Drift
		report.EFDrift = &drift
	}

	report.Predictions = analysis.PredictRaces(*source, today, report.EFDrift)
	return report, nil
}

// efficiencyTrend computes the aerobic efficiency trend over the trailing
// windows ending today. ok is false when either window lacks usable runs.
func (c *Coach) efficiencyTrend(athleteID int64, today time.Time) (analysis.EfficiencyTrend, bool) {
	since := today.AddDate(0, 0, -(analysis.EFCurrentDays + analysis.EFBaselineDays))
	workouts, err := c.db.ListWorkoutsSince(athleteID, since)
	if err != nil {
		log.Warn().Int64("athlete", athleteID).Err(err).Msg("efficiency trend unavailable")
		return analysis.EfficiencyTrend{}, false
	}
	return analysis.ComputeEfficiencyTrend(workouts, today)
}
