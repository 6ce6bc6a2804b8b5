package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"runcoach/internal/analysis"
	"runcoach/internal/ingest"
	"runcoach/internal/store"
)

// ErrStaleSnapshot is returned when a workout landed mid-recompute and
// invalidated the stress scores already computed. The caller should
// simply retry; nothing has been written.
var ErrStaleSnapshot = errors.New("workout history changed during recompute")

// recomputeConcurrency bounds how many athletes recompute in parallel.
const recomputeConcurrency = 4

// ImportResult summarizes one import run.
type ImportResult struct {
	Fetched  int // activities read from the source
	Imported int // stored as workouts
	Skipped  int // not runs
	Invalid  int // runs rejected by validation
}

// ImportActivities reads activities from a source, stores the runs as
// workouts, and rebuilds the load series from the earliest imported day.
// Re-importing the same export is safe: activities keep their source IDs,
// so duplicates collapse into updates. Invalid activities are logged and
// skipped without failing the import.
func (c *Coach) ImportActivities(ctx context.Context, athleteID int64, src ingest.Source) (*ImportResult, error) {
	activities, err := src.Activities(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading activities: %w", err)
	}

	mu := c.lockAthlete(athleteID)
	mu.Lock()
	defer mu.Unlock()

	result := &ImportResult{Fetched: len(activities)}
	var earliest time.Time

	for _, a := range activities {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if !a.IsRun() {
			result.Skipped++
			continue
		}

		w := a.Workout(athleteID)
		if err := analysis.ValidateWorkout(w); err != nil {
			log.Warn().Str("id", w.ID).Str("name", w.Name).Err(err).Msg("skipping activity")
			result.Invalid++
			continue
		}

		if err := c.db.UpsertWorkout(&w); err != nil {
			return result, fmt.Errorf("storing workout %s: %w", w.ID, err)
		}
		result.Imported++

		if earliest.IsZero() || w.Date.Before(earliest) {
			earliest = w.Date
		}
	}

	if result.Imported > 0 {
		if err := c.recomputeLocked(ctx, athleteID, earliest); err != nil {
			return result, err
		}
	}

	log.Info().
		Int64("athlete", athleteID).
		Int("fetched", result.Fetched).
		Int("imported", result.Imported).
		Int("skipped", result.Skipped).
		Int("invalid", result.Invalid).
		Msg("import complete")

	return result, nil
}

// AddWorkout records a manually entered workout and rebuilds the series
// from its day. Missing ID, source, and type are filled in; the type
// falls back to classifying the workout name.
func (c *Coach) AddWorkout(ctx context.Context, w store.Workout) (*store.Workout, error) {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	if w.Source == "" {
		w.Source = "manual"
	}
	if w.Type == "" {
		w.Type = ingest.Classify(w.Name)
	}
	if w.AverageSpeed == 0 && w.MovingTime > 0 {
		w.AverageSpeed = w.Distance / float64(w.MovingTime)
	}
	if err := analysis.ValidateWorkout(w); err != nil {
		return nil, err
	}

	mu := c.lockAthlete(w.AthleteID)
	mu.Lock()
	defer mu.Unlock()

	if err := c.db.UpsertWorkout(&w); err != nil {
		return nil, fmt.Errorf("storing workout: %w", err)
	}
	if err := c.recomputeLocked(ctx, w.AthleteID, w.Date); err != nil {
		return nil, err
	}
	return &w, nil
}

// Recompute rebuilds the athlete's load series from the given day through
// today and refreshes the threshold estimate. A zero from forces a full
// rebuild from the first workout.
func (c *Coach) Recompute(ctx context.Context, athleteID int64, from time.Time) error {
	mu := c.lockAthlete(athleteID)
	mu.Lock()
	defer mu.Unlock()

	return c.recomputeLocked(ctx, athleteID, from)
}

// RecomputeAll fully rebuilds every athlete's series, a bounded number of
// athletes at a time.
func (c *Coach) RecomputeAll(ctx context.Context) error {
	ids, err := c.db.ListAthleteIDs()
	if err != nil {
		return fmt.Errorf("listing athletes: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(recomputeConcurrency)
	for _, id := range ids {
		id := id // per-iteration copy: language version predates Go 1.22 loop scoping
		g.Go(func() error {
			return c.Recompute(ctx, id, time.Time{})
		})
	}
	return g.Wait()
}

// recomputeLocked does the actual work. Callers hold the athlete's lock.
//
// The revision counter is snapshotted up front and checked again after
// scoring: holding the in-process lock does not protect against another
// process writing the same database file, and a stale snapshot must never
// be silently merged into the series.
func (c *Coach) recomputeLocked(ctx context.Context, athleteID int64, from time.Time) error {
	revision, err := c.db.WorkoutRevision(athleteID)
	if err != nil {
		return fmt.Errorf("reading workout revision: %w", err)
	}

	workouts, err := c.db.ListWorkouts(athleteID)
	if err != nil {
		return fmt.Errorf("listing workouts: %w", err)
	}
	if len(workouts) == 0 {
		return nil
	}

	today := analysis.Day(c.now())

	daily, err := c.dailyStress(athleteID, workouts)
	if err != nil {
		return err
	}

	// Resume from the stored point for the day before the change, or from
	// the series tail when it ends earlier than that. A change on or
	// before the first stored day forces a full rebuild.
	var prev *store.DailyLoadPoint
	if !from.IsZero() {
		first, err := c.db.FirstLoadPoint(athleteID)
		if err != nil {
			return err
		}
		day := analysis.Day(from)
		if first != nil && day.After(first.Date) {
			latest, err := c.db.LatestLoadPoint(athleteID)
			if err != nil {
				return err
			}
			resume := day.AddDate(0, 0, -1)
			if latest.Date.Before(resume) {
				resume = latest.Date
			}
			prev, err = c.db.GetLoadPoint(athleteID, resume)
			if err != nil {
				return err
			}
		}
	}

	var points []analysis.LoadPoint
	if prev != nil {
		seed := analysis.LoadPoint{
			Date:      prev.Date,
			Stress:    prev.Stress,
			Fitness:   prev.Fitness,
			Fatigue:   prev.Fatigue,
			Readiness: prev.Readiness,
		}
		points = analysis.ExtendSeries(seed, daily, today, c.cfg.Windows())
	} else {
		points = analysis.BuildSeries(daily, today, c.cfg.Windows())
	}

	check, err := c.db.WorkoutRevision(athleteID)
	if err != nil {
		return fmt.Errorf("re-reading workout revision: %w", err)
	}
	if check != revision {
		return ErrStaleSnapshot
	}

	// Ascending order, one day per write: an interrupted recompute leaves
	// a consistent prefix.
	for _, p := range points {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		lp := store.DailyLoadPoint{
			AthleteID: athleteID,
			Date:      p.Date,
			Stress:    p.Stress,
			Fitness:   p.Fitness,
			Fatigue:   p.Fatigue,
			Readiness: p.Readiness,
		}
		if err := c.db.UpsertLoadPoint(&lp); err != nil {
			return fmt.Errorf("storing load point %s: %w", p.Date.Format("2006-01-02"), err)
		}
	}

	// A full rebuild can start later than the stored series when a
	// correction moved the first workout; drop the orphaned prefix.
	if prev == nil && len(points) > 0 {
		if err := c.db.DeleteLoadPointsBefore(athleteID, points[0].Date); err != nil {
			return fmt.Errorf("pruning load points: %w", err)
		}
	}

	log.Debug().
		Int64("athlete", athleteID).
		Int("days", len(points)).
		Msg("load series recomputed")

	if err := c.refreshThreshold(athleteID, workouts, today); err != nil {
		return err
	}
	return c.refreshRecords(athleteID, workouts)
}

// dailyStress scores each workout under the threshold estimate effective
// on its date and folds the scores into per-day sums. Workouts that fail
// validation are logged and skipped.
func (c *Coach) dailyStress(athleteID int64, workouts []store.Workout) ([]analysis.DailyStress, error) {
	estimates, err := c.db.ListThresholdEstimates(athleteID)
	if err != nil {
		return nil, fmt.Errorf("listing threshold estimates: %w", err)
	}

	daily := make([]analysis.DailyStress, 0, len(workouts))
	for _, w := range workouts {
		day := analysis.Day(w.Date)
		thr := c.cfg.Thresholds(speedOn(estimates, day))
		stress, err := analysis.Score(w, thr)
		if err != nil {
			log.Warn().Str("id", w.ID).Err(err).Msg("skipping workout in recompute")
			continue
		}
		daily = append(daily, analysis.DailyStress{Date: day, Stress: stress})
	}
	return daily, nil
}

// speedOn resolves the threshold speed effective on a day from the
// estimate history, 0 when none applies yet. Estimates are ordered by
// effective date ascending.
func speedOn(estimates []store.ThresholdEstimate, day time.Time) float64 {
	speed := 0.0
	for _, e := range estimates {
		if e.EffectiveFrom.After(day) {
			break
		}
		speed = e.Speed
	}
	return speed
}

// refreshThreshold re-runs the estimator over the trailing window and
// appends a new estimate when it differs materially from the current one.
// New estimates take effect tomorrow, never today: the day being
// recomputed right now must score the same way on the next full rebuild.
func (c *Coach) refreshThreshold(athleteID int64, workouts []store.Workout, today time.Time) error {
	params := c.cfg.ThresholdParams()

	result, ok := analysis.EstimateThreshold(workouts, today, params)
	if !ok {
		return nil
	}

	current, err := c.db.CurrentThreshold(athleteID)
	if err != nil && !errors.Is(err, store.ErrNoThreshold) {
		return fmt.Errorf("reading current threshold: %w", err)
	}
	if !analysis.ShouldReplace(current, result.Speed, today, params) {
		return nil
	}

	estimate := &store.ThresholdEstimate{
		ID:            uuid.NewString(),
		AthleteID:     athleteID,
		Speed:         result.Speed,
		EffectiveFrom: today.AddDate(0, 0, 1),
		Basis:         result.Basis,
		CreatedAt:     c.now(),
	}
	if err := c.db.SaveThresholdEstimate(estimate); err != nil {
		return fmt.Errorf("saving threshold estimate: %w", err)
	}

	log.Info().
		Int64("athlete", athleteID).
		Float64("speed", result.Speed).
		Int("basis", len(result.Basis)).
		Msg("threshold estimate updated")

	return nil
}
