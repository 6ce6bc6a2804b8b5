package plan

import (
	"github.com/google/uuid"

	"runcoach/internal/analysis"
	"runcoach/internal/store"
)

// slot is one workout position in a weekly template. Fraction is the
// share of the week's target volume; fractions in a template sum to 1.
type slot struct {
	day         int // 0 = Monday .. 6 = Sunday
	typ         store.WorkoutType
	fraction    float64
	zone        int
	racePace    bool // target the goal race speed when one is set
	description string
}

// weekTemplates is the fixed per-phase workout composition. Base is
// aerobic volume plus one long run; Build introduces intervals and a
// tempo; Peak shifts the tempo toward race pace; Taper cuts volume and
// keeps a single sharpening session.
var weekTemplates = map[store.Phase][]slot{
	store.PhaseBase: {
		{day: 1, typ: store.TypeEasy, fraction: 0.25, zone: 2, description: "Easy aerobic run"},
		{day: 3, typ: store.TypeEasy, fraction: 0.20, zone: 2, description: "Easy aerobic run"},
		{day: 5, typ: store.TypeEasy, fraction: 0.20, zone: 2, description: "Easy aerobic run"},
		{day: 6, typ: store.TypeLong, fraction: 0.35, zone: 2, description: "Long endurance run"},
	},
	store.PhaseBuild: {
		{day: 1, typ: store.TypeInterval, fraction: 0.18, zone: 5, description: "Interval repeats"},
		{day: 2, typ: store.TypeEasy, fraction: 0.17, zone: 2, description: "Easy aerobic run"},
		{day: 3, typ: store.TypeTempo, fraction: 0.20, zone: 4, description: "Tempo at threshold effort"},
		{day: 5, typ: store.TypeEasy, fraction: 0.15, zone: 2, description: "Easy aerobic run"},
		{day: 6, typ: store.TypeLong, fraction: 0.30, zone: 2, description: "Long endurance run"},
	},
	store.PhasePeak: {
		{day: 1, typ: store.TypeInterval, fraction: 0.20, zone: 5, description: "Interval repeats"},
		{day: 2, typ: store.TypeEasy, fraction: 0.15, zone: 2, description: "Easy aerobic run"},
		{day: 3, typ: store.TypeTempo, fraction: 0.25, zone: 4, racePace: true, description: "Race-pace tempo"},
		{day: 5, typ: store.TypeEasy, fraction: 0.10, zone: 2, description: "Easy aerobic run"},
		{day: 6, typ: store.TypeLong, fraction: 0.30, zone: 2, description: "Long endurance run"},
	},
	store.PhaseTaper: {
		{day: 1, typ: store.TypeInterval, fraction: 0.30, zone: 4, description: "Sharpening intervals"},
		{day: 3, typ: store.TypeEasy, fraction: 0.40, zone: 2, description: "Easy aerobic run"},
		{day: 5, typ: store.TypeRecovery, fraction: 0.30, zone: 1, description: "Recovery jog"},
	},
}

type buildWeekInput struct {
	week       store.ProgramWeek
	goal       store.Goal
	threshold  float64
	raceOffset int // offset of race day within this week, -1 when absent
}

// buildWeek expands a week's template into planned workouts. Recovery
// weeks swap every quality slot for easy running. The race week keeps
// slots before race day and appends the race itself.
func buildWeek(in buildWeekInput) []store.PlannedWorkout {
	template := weekTemplates[in.week.Phase]
	goalSpeed := in.goal.TargetSpeed()
	raceOffset := in.raceOffset

	var workouts []store.PlannedWorkout
	for _, s := range template {
		if s.zone > 2 && in.week.Recovery {
			s.typ = store.TypeEasy
			s.zone = 2
			s.racePace = false
			s.description = "Easy aerobic run"
		}
		if raceOffset >= 0 && s.day >= raceOffset {
			continue
		}

		speed := analysis.ZoneSpeed(s.zone, in.threshold)
		if s.racePace && goalSpeed > 0 {
			speed = goalSpeed
		}
		distance := in.week.TargetVolume * s.fraction

		workouts = append(workouts, store.PlannedWorkout{
			ID:             uuid.NewString(),
			WeekID:         in.week.ID,
			DayOffset:      s.day,
			Date:           in.week.StartDate.AddDate(0, 0, s.day),
			Type:           s.typ,
			TargetDistance: distance,
			TargetDuration: targetDuration(distance, speed),
			Zone:           s.zone,
			TargetSpeed:    speed,
			Description:    s.description,
		})
	}

	if raceOffset >= 0 {
		speed := analysis.ZoneSpeed(4, in.threshold)
		if goalSpeed > 0 {
			speed = goalSpeed
		}
		distance := in.goal.Distance.Meters()
		workouts = append(workouts, store.PlannedWorkout{
			ID:             uuid.NewString(),
			WeekID:         in.week.ID,
			DayOffset:      raceOffset,
			Date:           in.week.StartDate.AddDate(0, 0, raceOffset),
			Type:           store.TypeRace,
			TargetDistance: distance,
			TargetDuration: targetDuration(distance, speed),
			Zone:           4,
			TargetSpeed:    speed,
			Description:    "Goal race",
		})
	}

	return workouts
}

func targetDuration(distance, speed float64) int {
	if speed <= 0 {
		return 0
	}
	return int(distance / speed)
}
