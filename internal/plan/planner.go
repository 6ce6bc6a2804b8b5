// Package plan generates phase-structured training programs and scores
// completed workouts against their prescriptions. Everything here is a
// pure function of its inputs; persistence belongs to the caller.
package plan

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"runcoach/internal/analysis"
	"runcoach/internal/store"
)

// ErrInsufficientLeadTime indicates the race is too close to build a
// valid phase sequence.
var ErrInsufficientLeadTime = errors.New("insufficient lead time before race")

// PhaseSplit is the proportional allocation of program weeks to phases.
// The fractions are applied to the total and floored; each phase gets at
// least one week and leftover weeks go to Base.
type PhaseSplit struct {
	Base  float64
	Build float64
	Peak  float64
	Taper float64
}

// Params are the planner tunables.
type Params struct {
	MinWeeks         int        // shortest program generated
	MaxWeeks         int        // longest program generated
	MinLeadWeeks     int        // below this the planner refuses
	RampFraction     float64    // weekly volume growth in base and build
	PeakFraction     float64    // peak volume relative to end of build
	TaperFraction    float64    // weekly volume multiplier during taper
	RecoveryInterval int        // every Nth week is a recovery week
	RecoveryFraction float64    // emitted volume multiplier on recovery weeks
	Split            PhaseSplit //
	MinWeeklyVolume  float64    // floor for starting weekly volume, meters
	AnchorSpeed      float64    // zone anchor when no threshold exists, m/s
}

// DefaultParams returns the standard planning configuration.
func DefaultParams() Params {
	return Params{
		MinWeeks:         8,
		MaxWeeks:         20,
		MinLeadWeeks:     4,
		RampFraction:     0.08,
		PeakFraction:     0.95,
		TaperFraction:    0.60,
		RecoveryInterval: 4,
		RecoveryFraction: 0.65,
		Split:            PhaseSplit{Base: 0.40, Build: 0.35, Peak: 0.15, Taper: 0.10},
		MinWeeklyVolume:  20000,
		AnchorSpeed:      analysis.DefaultAnchorSpeed,
	}
}

// Request carries the inputs for one program generation. The caller has
// already resolved the athlete's active goal and recent weekly volume.
type Request struct {
	AthleteID    int64
	Goal         store.Goal
	Threshold    float64   // current threshold speed in m/s, 0 when unknown
	WeeklyVolume float64   // recent weekly distance in meters
	Today        time.Time // generation day
}

// Build generates a complete program graph for the request. The program
// starts on the Monday after Today and runs for floor(days-to-race / 7)
// weeks, clamped to [MinWeeks, MaxWeeks]. No partial program is ever
// returned: either the whole graph is valid or an error comes back.
func Build(req Request, p Params) (*store.TrainingProgram, error) {
	today := analysis.Day(req.Today)
	raceDay := analysis.Day(req.Goal.RaceDate)

	days := int(raceDay.Sub(today).Hours() / 24)
	weeks := days / 7
	if weeks < p.MinLeadWeeks {
		return nil, fmt.Errorf("%w: race in %d days, need %d weeks",
			ErrInsufficientLeadTime, days, p.MinLeadWeeks)
	}
	if weeks < p.MinWeeks {
		weeks = p.MinWeeks
	}
	if weeks > p.MaxWeeks {
		weeks = p.MaxWeeks
	}

	start := nextMonday(today)
	phases := allocatePhases(weeks, p.Split)

	// The race lands inside the program when the clamp stretched or
	// shrank it; otherwise it follows the final week and the race-day
	// workout closes that week on its Sunday.
	raceDays := int(raceDay.Sub(start).Hours() / 24)
	raceWeek := raceDays/7 + 1
	raceOffset := raceDays % 7
	if raceDays < 0 || raceWeek > weeks {
		raceWeek = weeks
		raceOffset = 6
	}

	threshold := req.Threshold
	if threshold <= 0 {
		threshold = p.AnchorSpeed
	}

	startVolume := req.WeeklyVolume
	if startVolume < p.MinWeeklyVolume {
		startVolume = p.MinWeeklyVolume
	}

	program := &store.TrainingProgram{
		ID:         uuid.NewString(),
		AthleteID:  req.AthleteID,
		GoalID:     req.Goal.ID,
		StartDate:  start,
		TotalWeeks: weeks,
		CreatedAt:  req.Today,
	}

	trajectory := startVolume
	var prevPhase store.Phase
	number := 0
	for _, ph := range phaseOrder {
		for i := 0; i < phases[ph]; i++ {
			number++
			if number > 1 {
				switch ph {
				case store.PhaseBase, store.PhaseBuild:
					trajectory *= 1 + p.RampFraction
				case store.PhasePeak:
					if prevPhase != store.PhasePeak {
						trajectory *= p.PeakFraction
					}
				case store.PhaseTaper:
					trajectory *= p.TaperFraction
				}
			}
			prevPhase = ph

			recovery := ph != store.PhaseTaper &&
				p.RecoveryInterval > 0 && number%p.RecoveryInterval == 0
			volume := trajectory
			if recovery {
				volume = trajectory * p.RecoveryFraction
			}

			week := store.ProgramWeek{
				ID:           uuid.NewString(),
				ProgramID:    program.ID,
				Number:       number,
				Phase:        ph,
				StartDate:    start.AddDate(0, 0, (number-1)*7),
				TargetVolume: volume,
				Recovery:     recovery,
			}

			in := buildWeekInput{
				week:       week,
				goal:       req.Goal,
				threshold:  threshold,
				raceOffset: -1,
			}
			if number == raceWeek {
				in.raceOffset = raceOffset
			}
			week.Workouts = buildWeek(in)
			program.Weeks = append(program.Weeks, week)
		}
	}

	return program, nil
}

// phaseOrder is the mandatory phase sequence. Taper is always last.
var phaseOrder = [4]store.Phase{store.PhaseBase, store.PhaseBuild, store.PhasePeak, store.PhaseTaper}

// allocatePhases splits total weeks across the four phases: floor the
// proportional share, raise each phase to at least one week, and hand
// any leftover weeks to Base. The epsilon keeps float dust from eating
// a week (20 * 0.35 lands just under 7).
func allocatePhases(total int, split PhaseSplit) map[store.Phase]int {
	const eps = 1e-9
	counts := map[store.Phase]int{
		store.PhaseBase:  int(float64(total)*split.Base + eps),
		store.PhaseBuild: int(float64(total)*split.Build + eps),
		store.PhasePeak:  int(float64(total)*split.Peak + eps),
		store.PhaseTaper: int(float64(total)*split.Taper + eps),
	}
	sum := 0
	for _, ph := range phaseOrder {
		if counts[ph] < 1 {
			counts[ph] = 1
		}
		sum += counts[ph]
	}
	counts[store.PhaseBase] += total - sum
	return counts
}

// nextMonday returns the first Monday strictly after d.
func nextMonday(d time.Time) time.Time {
	offset := (int(time.Monday) - int(d.Weekday()) + 7) % 7
	if offset == 0 {
		offset = 7
	}
	return d.AddDate(0, 0, offset)
}
