package plan

import (
	"errors"
	"math"
	"testing"
	"time"

	"runcoach/internal/store"
)

func testGoal(distance store.RaceDistance, raceDate time.Time) store.Goal {
	return store.Goal{
		ID:        "goal-1",
		AthleteID: 1,
		Distance:  distance,
		RaceDate:  raceDate,
		Active:    true,
	}
}

func TestBuildTwelveWeekProgram(t *testing.T) {
	// Wednesday; the program starts the following Monday.
	today := time.Date(2026, 9, 2, 10, 0, 0, 0, time.UTC)
	race := today.AddDate(0, 0, 84)

	program, err := Build(Request{
		AthleteID:    1,
		Goal:         testGoal(store.RaceHalf, race),
		Threshold:    3.0,
		WeeklyVolume: 50000,
		Today:        today,
	}, DefaultParams())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if program.TotalWeeks != 12 {
		t.Errorf("TotalWeeks = %d, want 12", program.TotalWeeks)
	}
	if len(program.Weeks) != 12 {
		t.Fatalf("len(Weeks) = %d, want 12", len(program.Weeks))
	}

	wantStart := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	if !program.StartDate.Equal(wantStart) {
		t.Errorf("StartDate = %v, want %v", program.StartDate, wantStart)
	}

	wantPhases := []store.Phase{
		store.PhaseBase, store.PhaseBase, store.PhaseBase, store.PhaseBase,
		store.PhaseBase, store.PhaseBase,
		store.PhaseBuild, store.PhaseBuild, store.PhaseBuild, store.PhaseBuild,
		store.PhasePeak,
		store.PhaseTaper,
	}
	for i, week := range program.Weeks {
		if week.Number != i+1 {
			t.Errorf("week %d: Number = %d", i, week.Number)
		}
		if week.Phase != wantPhases[i] {
			t.Errorf("week %d: Phase = %s, want %s", i+1, week.Phase, wantPhases[i])
		}
		wantWeekStart := wantStart.AddDate(0, 0, i*7)
		if !week.StartDate.Equal(wantWeekStart) {
			t.Errorf("week %d: StartDate = %v, want %v", i+1, week.StartDate, wantWeekStart)
		}
	}

	// Weeks 4 and 8 are recovery weeks; week 12 is taper and cuts volume
	// on its own. All three must drop below the preceding week.
	for _, n := range []int{4, 8, 12} {
		prev := program.Weeks[n-2].TargetVolume
		cur := program.Weeks[n-1].TargetVolume
		if cur >= prev {
			t.Errorf("week %d volume %v not below week %d volume %v", n, cur, n-1, prev)
		}
	}
	if !program.Weeks[3].Recovery || !program.Weeks[7].Recovery {
		t.Error("weeks 4 and 8 should be flagged as recovery")
	}
	if program.Weeks[11].Recovery {
		t.Error("taper week should not be flagged as recovery")
	}

	// Ramp: week 2 grows 8% over week 1, which starts at the request's
	// weekly volume.
	if math.Abs(program.Weeks[0].TargetVolume-50000) > 1e-6 {
		t.Errorf("week 1 volume = %v, want 50000", program.Weeks[0].TargetVolume)
	}
	if math.Abs(program.Weeks[1].TargetVolume-50000*1.08) > 1e-6 {
		t.Errorf("week 2 volume = %v, want %v", program.Weeks[1].TargetVolume, 50000*1.08)
	}

	// Week 1 composition: base template, distances summing to the target.
	week1 := program.Weeks[0]
	if len(week1.Workouts) != 4 {
		t.Fatalf("week 1 has %d workouts, want 4", len(week1.Workouts))
	}
	sum := 0.0
	for _, w := range week1.Workouts {
		sum += w.TargetDistance
		wantDate := week1.StartDate.AddDate(0, 0, w.DayOffset)
		if !w.Date.Equal(wantDate) {
			t.Errorf("workout on offset %d: Date = %v, want %v", w.DayOffset, w.Date, wantDate)
		}
	}
	if math.Abs(sum-week1.TargetVolume) > 1e-6 {
		t.Errorf("week 1 workout distances sum to %v, want %v", sum, week1.TargetVolume)
	}
	long := week1.Workouts[len(week1.Workouts)-1]
	if long.Type != store.TypeLong || long.DayOffset != 6 {
		t.Errorf("week 1 should end with a Sunday long run, got %s on offset %d", long.Type, long.DayOffset)
	}

	// Race day is 79 days past the start Monday: final week, Wednesday.
	final := program.Weeks[11]
	if len(final.Workouts) != 2 {
		t.Fatalf("final week has %d workouts, want 2", len(final.Workouts))
	}
	raceWorkout := final.Workouts[1]
	if raceWorkout.Type != store.TypeRace {
		t.Errorf("final workout type = %s, want race", raceWorkout.Type)
	}
	if raceWorkout.DayOffset != 2 {
		t.Errorf("race day offset = %d, want 2", raceWorkout.DayOffset)
	}
	if math.Abs(raceWorkout.TargetDistance-21097.5) > 1e-6 {
		t.Errorf("race distance = %v, want 21097.5", raceWorkout.TargetDistance)
	}
	for _, w := range final.Workouts[:1] {
		if w.DayOffset >= 2 {
			t.Errorf("workout on offset %d prescribed after race day", w.DayOffset)
		}
	}
}

func TestBuildInsufficientLeadTime(t *testing.T) {
	today := time.Date(2026, 9, 2, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		race    time.Time
		wantErr bool
	}{
		{"two weeks out", today.AddDate(0, 0, 14), true},
		{"three weeks out", today.AddDate(0, 0, 21), true},
		{"one day short of four weeks", today.AddDate(0, 0, 27), true},
		{"exactly four weeks", today.AddDate(0, 0, 28), false},
		{"race already passed", today.AddDate(0, 0, -7), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			program, err := Build(Request{
				AthleteID:    1,
				Goal:         testGoal(store.Race10K, tt.race),
				WeeklyVolume: 40000,
				Today:        today,
			}, DefaultParams())
			if tt.wantErr {
				if !errors.Is(err, ErrInsufficientLeadTime) {
					t.Fatalf("error = %v, want ErrInsufficientLeadTime", err)
				}
				if program != nil {
					t.Error("expected no program on error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
		})
	}
}

func TestBuildClampsProgramLength(t *testing.T) {
	today := time.Date(2026, 9, 2, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		daysOut   int
		wantWeeks int
	}{
		{"five weeks stretches to minimum", 35, 8},
		{"eight weeks kept", 56, 8},
		{"twelve weeks kept", 84, 12},
		{"twenty weeks kept", 140, 20},
		{"thirty weeks capped", 210, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			program, err := Build(Request{
				AthleteID:    1,
				Goal:         testGoal(store.RaceMarathon, today.AddDate(0, 0, tt.daysOut)),
				WeeklyVolume: 60000,
				Today:        today,
			}, DefaultParams())
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			if program.TotalWeeks != tt.wantWeeks {
				t.Errorf("TotalWeeks = %d, want %d", program.TotalWeeks, tt.wantWeeks)
			}
			if len(program.Weeks) != tt.wantWeeks {
				t.Errorf("len(Weeks) = %d, want %d", len(program.Weeks), tt.wantWeeks)
			}
		})
	}
}

func TestBuildPhaseAllocation(t *testing.T) {
	tests := []struct {
		total    int
		expected map[store.Phase]int
	}{
		{8, map[store.Phase]int{store.PhaseBase: 4, store.PhaseBuild: 2, store.PhasePeak: 1, store.PhaseTaper: 1}},
		{12, map[store.Phase]int{store.PhaseBase: 6, store.PhaseBuild: 4, store.PhasePeak: 1, store.PhaseTaper: 1}},
		{20, map[store.Phase]int{store.PhaseBase: 8, store.PhaseBuild: 7, store.PhasePeak: 3, store.PhaseTaper: 2}},
	}

	for _, tt := range tests {
		counts := allocatePhases(tt.total, DefaultParams().Split)
		sum := 0
		for _, ph := range phaseOrder {
			if counts[ph] != tt.expected[ph] {
				t.Errorf("total %d: %s = %d, want %d", tt.total, ph, counts[ph], tt.expected[ph])
			}
			if counts[ph] < 1 {
				t.Errorf("total %d: %s has no weeks", tt.total, ph)
			}
			sum += counts[ph]
		}
		if sum != tt.total {
			t.Errorf("total %d: phases sum to %d", tt.total, sum)
		}
	}
}

func TestBuildStartsNextMonday(t *testing.T) {
	tests := []struct {
		name  string
		today time.Time
		want  time.Time
	}{
		{
			name:  "midweek",
			today: time.Date(2026, 9, 2, 15, 30, 0, 0, time.UTC), // Wednesday
			want:  time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "sunday",
			today: time.Date(2026, 9, 6, 8, 0, 0, 0, time.UTC),
			want:  time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "monday rolls a full week",
			today: time.Date(2026, 9, 7, 8, 0, 0, 0, time.UTC),
			want:  time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			program, err := Build(Request{
				AthleteID:    1,
				Goal:         testGoal(store.Race10K, tt.today.AddDate(0, 0, 84)),
				WeeklyVolume: 40000,
				Today:        tt.today,
			}, DefaultParams())
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			if !program.StartDate.Equal(tt.want) {
				t.Errorf("StartDate = %v, want %v", program.StartDate, tt.want)
			}
			if program.StartDate.Weekday() != time.Monday {
				t.Errorf("StartDate is a %s", program.StartDate.Weekday())
			}
		})
	}
}

func TestBuildRecoveryWeekComposition(t *testing.T) {
	today := time.Date(2026, 9, 2, 10, 0, 0, 0, time.UTC)
	program, err := Build(Request{
		AthleteID:    1,
		Goal:         testGoal(store.RaceMarathon, today.AddDate(0, 0, 84)),
		Threshold:    3.0,
		WeeklyVolume: 50000,
		Today:        today,
	}, DefaultParams())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	// Week 8 sits in Build, normally interval + tempo. As a recovery
	// week every quality slot turns into easy running.
	week8 := program.Weeks[7]
	if !week8.Recovery {
		t.Fatal("week 8 should be a recovery week")
	}
	for _, w := range week8.Workouts {
		if w.Zone > 2 {
			t.Errorf("recovery week workout on offset %d in zone %d", w.DayOffset, w.Zone)
		}
		if w.Type == store.TypeInterval || w.Type == store.TypeTempo {
			t.Errorf("recovery week still prescribes %s", w.Type)
		}
	}

	// The trajectory underneath is not reduced: week 9 resumes the ramp
	// from where week 8 would have been without the cut.
	p := DefaultParams()
	wantWeek9 := program.Weeks[6].TargetVolume * (1 + p.RampFraction) * (1 + p.RampFraction)
	if math.Abs(program.Weeks[8].TargetVolume-wantWeek9) > 1e-6 {
		t.Errorf("week 9 volume = %v, want %v", program.Weeks[8].TargetVolume, wantWeek9)
	}
	wantWeek8 := program.Weeks[6].TargetVolume * (1 + p.RampFraction) * p.RecoveryFraction
	if math.Abs(week8.TargetVolume-wantWeek8) > 1e-6 {
		t.Errorf("week 8 volume = %v, want %v", week8.TargetVolume, wantWeek8)
	}
}

func TestBuildTaperKeepsShrinking(t *testing.T) {
	today := time.Date(2026, 9, 2, 10, 0, 0, 0, time.UTC)
	program, err := Build(Request{
		AthleteID:    1,
		Goal:         testGoal(store.Race100K, today.AddDate(0, 0, 140)),
		Threshold:    3.0,
		WeeklyVolume: 70000,
		Today:        today,
	}, DefaultParams())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	// 20 weeks: two taper weeks, each a sharp cut from the one before.
	taper := program.Weeks[18:]
	if taper[0].Phase != store.PhaseTaper || taper[1].Phase != store.PhaseTaper {
		t.Fatalf("weeks 19-20 phases = %s, %s", taper[0].Phase, taper[1].Phase)
	}
	if taper[0].TargetVolume >= program.Weeks[17].TargetVolume {
		t.Error("first taper week should cut volume")
	}
	if taper[1].TargetVolume >= taper[0].TargetVolume {
		t.Error("second taper week should cut volume again")
	}
}

func TestBuildZoneTargets(t *testing.T) {
	today := time.Date(2026, 9, 2, 10, 0, 0, 0, time.UTC)

	t.Run("uses threshold speed", func(t *testing.T) {
		program, err := Build(Request{
			AthleteID:    1,
			Goal:         testGoal(store.Race10K, today.AddDate(0, 0, 84)),
			Threshold:    3.5,
			WeeklyVolume: 40000,
			Today:        today,
		}, DefaultParams())
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		easy := program.Weeks[0].Workouts[0]
		if math.Abs(easy.TargetSpeed-0.80*3.5) > 1e-9 {
			t.Errorf("easy TargetSpeed = %v, want %v", easy.TargetSpeed, 0.80*3.5)
		}
	})

	t.Run("falls back to the default anchor", func(t *testing.T) {
		program, err := Build(Request{
			AthleteID:    1,
			Goal:         testGoal(store.Race10K, today.AddDate(0, 0, 84)),
			Threshold:    0,
			WeeklyVolume: 40000,
			Today:        today,
		}, DefaultParams())
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		easy := program.Weeks[0].Workouts[0]
		if math.Abs(easy.TargetSpeed-2.40) > 1e-9 {
			t.Errorf("easy TargetSpeed = %v, want 2.40", easy.TargetSpeed)
		}
	})
}

func TestBuildTargetTimeDrivesRacePace(t *testing.T) {
	today := time.Date(2026, 9, 2, 10, 0, 0, 0, time.UTC)
	target := 5400 // 90 minute half marathon
	goal := testGoal(store.RaceHalf, today.AddDate(0, 0, 84))
	goal.TargetTime = &target

	program, err := Build(Request{
		AthleteID:    1,
		Goal:         goal,
		Threshold:    3.0,
		WeeklyVolume: 50000,
		Today:        today,
	}, DefaultParams())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	goalSpeed := 21097.5 / 5400.0

	// Peak week's race-pace tempo targets the goal speed; its other
	// quality work stays on zone anchors.
	peak := program.Weeks[10]
	if peak.Phase != store.PhasePeak {
		t.Fatalf("week 11 phase = %s, want peak", peak.Phase)
	}
	var tempo, interval *store.PlannedWorkout
	for i := range peak.Workouts {
		switch peak.Workouts[i].Type {
		case store.TypeTempo:
			tempo = &peak.Workouts[i]
		case store.TypeInterval:
			interval = &peak.Workouts[i]
		}
	}
	if tempo == nil || interval == nil {
		t.Fatal("peak week should have a tempo and an interval session")
	}
	if math.Abs(tempo.TargetSpeed-goalSpeed) > 1e-9 {
		t.Errorf("race-pace tempo speed = %v, want %v", tempo.TargetSpeed, goalSpeed)
	}
	if math.Abs(interval.TargetSpeed-1.09*3.0) > 1e-9 {
		t.Errorf("interval speed = %v, want %v", interval.TargetSpeed, 1.09*3.0)
	}

	race := program.Weeks[11].Workouts[len(program.Weeks[11].Workouts)-1]
	if race.Type != store.TypeRace {
		t.Fatalf("last planned workout type = %s, want race", race.Type)
	}
	if math.Abs(race.TargetSpeed-goalSpeed) > 1e-9 {
		t.Errorf("race speed = %v, want %v", race.TargetSpeed, goalSpeed)
	}
	wantDuration := int(21097.5 / goalSpeed)
	if race.TargetDuration != wantDuration {
		t.Errorf("race duration = %d, want %d", race.TargetDuration, wantDuration)
	}
}

func TestBuildVolumeFloor(t *testing.T) {
	today := time.Date(2026, 9, 2, 10, 0, 0, 0, time.UTC)
	program, err := Build(Request{
		AthleteID:    1,
		Goal:         testGoal(store.Race5K, today.AddDate(0, 0, 84)),
		Threshold:    3.0,
		WeeklyVolume: 5000, // well under the floor
		Today:        today,
	}, DefaultParams())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if math.Abs(program.Weeks[0].TargetVolume-20000) > 1e-6 {
		t.Errorf("week 1 volume = %v, want the 20000 floor", program.Weeks[0].TargetVolume)
	}
}
