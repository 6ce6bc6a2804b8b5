package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"runcoach/internal/analysis"
	"runcoach/internal/store"
)

// StatusReport is the athlete's current training state, assembled for
// display. Pointer fields are nil when the athlete has no history yet.
type StatusReport struct {
	AthleteID int64
	Workouts  int

	Latest *store.DailyLoadPoint
	Form   string // readiness interpretation, empty without a series

	Threshold  *store.ThresholdEstimate
	Efficiency *analysis.EfficiencyTrend
	Goal       *store.Goal
	Program    *store.TrainingProgram
}

// Status gathers the athlete's current state: workout count, the latest
// load point with its form interpretation, the newest threshold estimate,
// the active goal, and the active program.
func (c *Coach) Status(athleteID int64) (*StatusReport, error) {
	report := &StatusReport{AthleteID: athleteID}

	count, err := c.db.CountWorkouts(athleteID)
	if err != nil {
		return nil, fmt.Errorf("counting workouts: %w", err)
	}
	report.Workouts = count

	latest, err := c.db.LatestLoadPoint(athleteID)
	if err != nil {
		return nil, fmt.Errorf("reading latest load point: %w", err)
	}
	if latest != nil {
		report.Latest = latest
		report.Form = analysis.FormDescription(latest.Readiness)
	}

	threshold, err := c.db.CurrentThreshold(athleteID)
	if err != nil && !errors.Is(err, store.ErrNoThreshold) {
		return nil, fmt.Errorf("reading current threshold: %w", err)
	}
	report.Threshold = threshold

	if trend, ok := c.efficiencyTrend(athleteID, analysis.Day(c.now())); ok {
		report.Efficiency = &trend
	}

	goal, err := c.db.ActiveGoal(athleteID)
	if err != nil && !errors.Is(err, store.ErrNoActiveGoal) {
		return nil, fmt.Errorf("reading active goal: %w", err)
	}
	report.Goal = goal

	program, err := c.db.ActiveProgram(athleteID)
	if err != nil && !errors.Is(err, store.ErrNoActiveProgram) {
		return nil, fmt.Errorf("reading active program: %w", err)
	}
	report.Program = program

	return report, nil
}

// LoadSeries returns the trailing days of the athlete's load series in
// date order, up through today.
func (c *Coach) LoadSeries(athleteID int64, days int) ([]store.DailyLoadPoint, error) {
	to := analysis.Day(c.now())
	from := to.AddDate(0, 0, -(days - 1))
	return c.db.ListLoadPoints(athleteID, from, to)
}

// ThresholdHistory returns every threshold estimate in effective order.
func (c *Coach) ThresholdHistory(athleteID int64) ([]store.ThresholdEstimate, error) {
	return c.db.ListThresholdEstimates(athleteID)
}

// ActiveProgram returns the athlete's active program graph.
func (c *Coach) ActiveProgram(athleteID int64) (*store.TrainingProgram, error) {
	return c.db.ActiveProgram(athleteID)
}

// SetGoal activates a race goal for the athlete, deactivating any prior
// one. The race date is truncated to a day.
func (c *Coach) SetGoal(athleteID int64, distance store.RaceDistance, raceDate time.Time, targetTime *int) (*store.Goal, error) {
	if !store.ValidRaceDistance(distance) {
		return nil, fmt.Errorf("unknown race distance %q", distance)
	}

	mu := c.lockAthlete(athleteID)
	mu.Lock()
	defer mu.Unlock()

	goal := &store.Goal{
		ID:         uuid.NewString(),
		AthleteID:  athleteID,
		Distance:   distance,
		RaceDate:   analysis.Day(raceDate),
		TargetTime: targetTime,
		Active:     true,
		CreatedAt:  c.now(),
	}
	if err := c.db.SaveGoal(goal); err != nil {
		return nil, fmt.Errorf("saving goal: %w", err)
	}
	return goal, nil
}

// ActiveGoal returns the athlete's active goal.
func (c *Coach) ActiveGoal(athleteID int64) (*store.Goal, error) {
	return c.db.ActiveGoal(athleteID)
}

// AdherenceSummary aggregates the recorded evaluations of one program.
type AdherenceSummary struct {
	Evaluated int
	Matched   int
	Missed    int
	AvgScore  float64 // over matched evaluations only
}

// ProgramAdherence summarizes how well the athlete has followed a
// program so far.
func (c *Coach) ProgramAdherence(programID string) (*AdherenceSummary, error) {
	evaluations, err := c.db.ListEvaluationsForProgram(programID)
	if err != nil {
		return nil, fmt.Errorf("listing evaluations: %w", err)
	}

	summary := &AdherenceSummary{Evaluated: len(evaluations)}
	total := 0.0
	for _, e := range evaluations {
		if !e.Matched {
			summary.Missed++
			continue
		}
		summary.Matched++
		if e.Score != nil {
			total += *e.Score
		}
	}
	if summary.Matched > 0 {
		summary.AvgScore = total / float64(summary.Matched)
	}
	return summary, nil
}
