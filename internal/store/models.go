package store

import "time"

// WorkoutType tags a workout with its training intent.
type WorkoutType string

const (
	TypeEasy     WorkoutType = "easy"
	TypeRecovery WorkoutType = "recovery"
	TypeLong     WorkoutType = "long"
	TypeTempo    WorkoutType = "tempo"
	TypeInterval WorkoutType = "interval"
	TypeHill     WorkoutType = "hill"
	TypeRace     WorkoutType = "race"
)

// ValidWorkoutType reports whether t is one of the known type tags.
func ValidWorkoutType(t WorkoutType) bool {
	switch t {
	case TypeEasy, TypeRecovery, TypeLong, TypeTempo, TypeInterval, TypeHill, TypeRace:
		return true
	}
	return false
}

// Phase names a segment of a training program with a distinct
// volume/intensity policy.
type Phase string

const (
	PhaseBase  Phase = "base"
	PhaseBuild Phase = "build"
	PhasePeak  Phase = "peak"
	PhaseTaper Phase = "taper"
)

// RaceDistance is a race distance category.
type RaceDistance string

const (
	Race5K       RaceDistance = "5k"
	Race10K      RaceDistance = "10k"
	RaceHalf     RaceDistance = "half_marathon"
	RaceMarathon RaceDistance = "marathon"
	Race50K      RaceDistance = "50k"
	Race50Mile   RaceDistance = "50_mile"
	Race100K     RaceDistance = "100k"
	Race100Mile  RaceDistance = "100_mile"
)

var raceDistanceMeters = map[RaceDistance]float64{
	Race5K:       5000,
	Race10K:      10000,
	RaceHalf:     21097.5,
	RaceMarathon: 42195,
	Race50K:      50000,
	Race50Mile:   80467,
	Race100K:     100000,
	Race100Mile:  160934,
}

// Meters returns the distance in meters, or 0 for an unknown category.
func (d RaceDistance) Meters() float64 {
	return raceDistanceMeters[d]
}

// ValidRaceDistance reports whether d is a known category.
func ValidRaceDistance(d RaceDistance) bool {
	_, ok := raceDistanceMeters[d]
	return ok
}

// Workout is one completed training session.
type Workout struct {
	ID              string      `db:"id"`
	AthleteID       int64       `db:"athlete_id"`
	Date            time.Time   `db:"date"`
	Type            WorkoutType `db:"type"`
	Name            string      `db:"name"`
	Distance        float64     `db:"distance"`         // meters
	MovingTime      int         `db:"moving_time"`      // seconds
	ElapsedTime     int         `db:"elapsed_time"`     // seconds
	AverageSpeed    float64     `db:"average_speed"`    // m/s
	MaxSpeed        float64     `db:"max_speed"`        // m/s
	ElevationGain   float64     `db:"elevation_gain"`   // meters
	AverageHR       *float64    `db:"average_hr"`       // nullable, bpm
	MaxHR           *float64    `db:"max_hr"`           // nullable, bpm
	AveragePower    *float64    `db:"average_power"`    // nullable, watts
	MaxPower        *float64    `db:"max_power"`        // nullable, watts
	AverageCadence  *float64    `db:"average_cadence"`  // nullable, spm
	PerceivedEffort *int        `db:"perceived_effort"` // nullable, 1-10
	Notes           string      `db:"notes"`
	Source          string      `db:"source"`
}

// DailyLoadPoint is one day of the athlete's training load series.
// Rest days are explicit rows with Stress = 0; the sequence has no gaps.
type DailyLoadPoint struct {
	AthleteID int64     `db:"athlete_id"`
	Date      time.Time `db:"date"` // day resolution, UTC
	Stress    float64   `db:"stress"`
	Fitness   float64   `db:"fitness"`
	Fatigue   float64   `db:"fatigue"`
	Readiness float64   `db:"readiness"` // always Fitness - Fatigue
}

// ThresholdEstimate is one estimate of sustainable threshold speed.
// Estimates are append-only; the one effective on a date D is the
// latest with EffectiveFrom <= D.
type ThresholdEstimate struct {
	ID            string    `db:"id"`
	AthleteID     int64     `db:"athlete_id"`
	Speed         float64   `db:"speed"`          // m/s
	EffectiveFrom time.Time `db:"effective_from"` // day resolution
	Basis         []string  `db:"basis"`          // supporting workout IDs
	CreatedAt     time.Time `db:"created_at"`
}

// Goal is a race target. At most one active goal per athlete.
type Goal struct {
	ID         string       `db:"id"`
	AthleteID  int64        `db:"athlete_id"`
	Distance   RaceDistance `db:"distance"`
	RaceDate   time.Time    `db:"race_date"`   // day resolution
	TargetTime *int         `db:"target_time"` // nullable, seconds
	Active     bool         `db:"active"`
	CreatedAt  time.Time    `db:"created_at"`
}

// TargetSpeed returns the goal pace in m/s, or 0 when no target time is set.
func (g Goal) TargetSpeed() float64 {
	if g.TargetTime == nil || *g.TargetTime <= 0 {
		return 0
	}
	return g.Distance.Meters() / float64(*g.TargetTime)
}

// TrainingProgram is a generated multi-week plan. Immutable after
// generation except for the active flag; regenerating inserts a new
// program with Generation+1 and deactivates the old one.
type TrainingProgram struct {
	ID         string    `db:"id"`
	AthleteID  int64     `db:"athlete_id"`
	GoalID     string    `db:"goal_id"`
	StartDate  time.Time `db:"start_date"` // always a Monday
	TotalWeeks int       `db:"total_weeks"`
	Generation int64     `db:"generation"`
	Active     bool      `db:"active"`
	CreatedAt  time.Time `db:"created_at"`

	Weeks []ProgramWeek
}

// PhaseWeeks returns the number of weeks in each phase, keyed by phase,
// reconstructed from the week rows.
func (p *TrainingProgram) PhaseWeeks() map[Phase]int {
	counts := make(map[Phase]int)
	for _, w := range p.Weeks {
		counts[w.Phase]++
	}
	return counts
}

// ProgramWeek is one week of a program.
type ProgramWeek struct {
	ID           string    `db:"id"`
	ProgramID    string    `db:"program_id"`
	Number       int       `db:"number"` // 1-based within the program
	Phase        Phase     `db:"phase"`
	StartDate    time.Time `db:"start_date"`    // Monday of the week
	TargetVolume float64   `db:"target_volume"` // meters
	Recovery     bool      `db:"recovery"`

	Workouts []PlannedWorkout
}

// PlannedWorkout is one prescribed session within a week.
type PlannedWorkout struct {
	ID             string      `db:"id"`
	WeekID         string      `db:"week_id"`
	DayOffset      int         `db:"day_offset"` // 0 = Monday .. 6 = Sunday
	Date           time.Time   `db:"date"`
	Type           WorkoutType `db:"type"`
	TargetDistance float64     `db:"target_distance"` // meters
	TargetDuration int         `db:"target_duration"` // seconds, derived from zone speed
	Zone           int         `db:"zone"`            // 1-5
	TargetSpeed    float64     `db:"target_speed"`    // m/s, midpoint of the zone band
	Description    string      `db:"description"`
	Completed      bool        `db:"completed"`
}

// RaceRecord is the athlete's fastest effort at a standard race
// distance. Records derive entirely from the workout history; recomputes
// replace the set rather than merge into it.
type RaceRecord struct {
	AthleteID  int64        `db:"athlete_id"`
	Distance   RaceDistance `db:"distance"`
	WorkoutID  string       `db:"workout_id"`
	Meters     float64      `db:"meters"`  // the workout's actual distance
	Seconds    int          `db:"seconds"` // moving time
	Speed      float64      `db:"speed"`   // m/s
	AverageHR  *float64     `db:"average_hr"`
	AchievedAt time.Time    `db:"achieved_at"` // day resolution
}

// Verdict buckets an evaluation's aggregate score.
type Verdict string

const (
	VerdictOnTarget Verdict = "on_target"
	VerdictUnder    Verdict = "under"
	VerdictOver     Verdict = "over"
	VerdictMissed   Verdict = "missed"
)

// EvaluationResult scores a planned workout against its matched actual.
// Score is nil when no actual workout matched within the window.
type EvaluationResult struct {
	ID             string    `db:"id"`
	PlannedID      string    `db:"planned_id"`
	ActualID       *string   `db:"actual_id"` // nullable
	Matched        bool      `db:"matched"`
	Score          *float64  `db:"score"`           // nullable, 0-100
	DurationDelta  *float64  `db:"duration_delta"`  // nullable, percent
	DistanceDelta  *float64  `db:"distance_delta"`  // nullable, percent
	IntensityDelta *float64  `db:"intensity_delta"` // nullable, percent
	Verdict        Verdict   `db:"verdict"`
	CreatedAt      time.Time `db:"created_at"`
}
