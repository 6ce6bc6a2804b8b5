package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"runcoach/internal/analysis"
	"runcoach/internal/plan"
	"runcoach/internal/store"
)

// GenerateProgram builds a program for the athlete's active goal and
// atomically swaps it in as the active one. Regenerating replaces the
// prior program; a swap that loses a race with a concurrent regenerate
// surfaces store.ErrProgramConflict, which is safe to retry.
func (c *Coach) GenerateProgram(ctx context.Context, athleteID int64) (*store.TrainingProgram, error) {
	mu := c.lockAthlete(athleteID)
	mu.Lock()
	defer mu.Unlock()

	goal, err := c.db.ActiveGoal(athleteID)
	if err != nil {
		return nil, err
	}

	generation, err := c.db.ProgramGeneration(athleteID)
	if err != nil {
		return nil, fmt.Errorf("reading program generation: %w", err)
	}

	threshold := 0.0
	current, err := c.db.CurrentThreshold(athleteID)
	if err != nil && !errors.Is(err, store.ErrNoThreshold) {
		return nil, fmt.Errorf("reading current threshold: %w", err)
	}
	if current != nil {
		threshold = current.Speed
	}

	volume, err := c.recentWeeklyVolume(athleteID)
	if err != nil {
		return nil, err
	}

	program, err := plan.Build(plan.Request{
		AthleteID:    athleteID,
		Goal:         *goal,
		Threshold:    threshold,
		WeeklyVolume: volume,
		Today:        c.now(),
	}, c.cfg.PlanParams())
	if err != nil {
		return nil, err
	}

	if err := c.db.SaveProgram(program, generation); err != nil {
		return nil, err
	}

	log.Info().
		Int64("athlete", athleteID).
		Str("program", program.ID).
		Int("weeks", program.TotalWeeks).
		Int64("generation", program.Generation).
		Msg("program generated")

	return program, nil
}

// recentWeeklyVolume averages the trailing 28 days of recorded distance
// into a weekly number. Zero when the athlete has no recent workouts;
// the planner applies its own floor.
func (c *Coach) recentWeeklyVolume(athleteID int64) (float64, error) {
	since := analysis.Day(c.now()).AddDate(0, 0, -28)
	workouts, err := c.db.ListWorkoutsSince(athleteID, since)
	if err != nil {
		return 0, fmt.Errorf("listing recent workouts: %w", err)
	}

	total := 0.0
	for _, w := range workouts {
		total += w.Distance
	}
	return total / 4, nil
}

// EvaluateDue scores every planned workout whose match window has closed
// as of the given day, records the results, and marks matched plans
// completed. A plan dated close enough to asOf that a matching run could
// still arrive is left alone. Returns the results in date order.
func (c *Coach) EvaluateDue(ctx context.Context, athleteID int64, asOf time.Time) ([]store.EvaluationResult, error) {
	mu := c.lockAthlete(athleteID)
	mu.Lock()
	defer mu.Unlock()

	params := c.cfg.EvalParams()
	cutoff := analysis.Day(asOf).AddDate(0, 0, -params.MatchWindowDays)

	due, err := c.db.ListDuePlannedWorkouts(athleteID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("listing due planned workouts: %w", err)
	}
	if len(due) == 0 {
		return nil, nil
	}

	estimates, err := c.db.ListThresholdEstimates(athleteID)
	if err != nil {
		return nil, fmt.Errorf("listing threshold estimates: %w", err)
	}

	results := make([]store.EvaluationResult, 0, len(due))
	for _, planned := range due {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}

		// The plan date is midnight; the window's last day runs through
		// the following midnight.
		from := planned.Date.AddDate(0, 0, -params.MatchWindowDays)
		to := planned.Date.AddDate(0, 0, params.MatchWindowDays+1)
		actuals, err := c.db.ListWorkoutsBetween(athleteID, from, to)
		if err != nil {
			return results, fmt.Errorf("listing candidate workouts: %w", err)
		}

		actual := plan.MatchActual(planned, actuals, params.MatchWindowDays)
		threshold := speedOn(estimates, planned.Date)

		result := plan.Evaluate(planned, actual, threshold, params)
		result.ID = uuid.NewString()
		result.CreatedAt = c.now()

		if err := c.db.SaveEvaluation(&result); err != nil {
			return results, fmt.Errorf("saving evaluation: %w", err)
		}
		if actual != nil {
			if err := c.db.MarkPlannedCompleted(planned.ID); err != nil {
				return results, fmt.Errorf("marking plan completed: %w", err)
			}
		}

		results = append(results, result)
	}

	log.Info().
		Int64("athlete", athleteID).
		Int("evaluated", len(results)).
		Msg("due plans evaluated")

	return results, nil
}
