package analysis

import (
	"math"
	"testing"
	"time"

	"runcoach/internal/store"
)

func aerobicRun(id string, typ store.WorkoutType, date time.Time, distance float64, movingTime int, hr float64) store.Workout {
	return store.Workout{
		ID:         id,
		AthleteID:  1,
		Date:       date,
		Type:       typ,
		Distance:   distance,
		MovingTime: movingTime,
		AverageHR:  floatPtr(hr),
	}
}

func TestEfficiencyFactor(t *testing.T) {
	tests := []struct {
		name     string
		workout  store.Workout
		expected float64
	}{
		{
			name:     "steady easy run",
			workout:  aerobicRun("a", store.TypeEasy, time.Time{}, 10000, 3600, 150),
			expected: (10000.0 / 3600.0) * 60 / 150,
		},
		{
			name: "climbing earns grade-adjusted credit",
			workout: func() store.Workout {
				w := aerobicRun("b", store.TypeEasy, time.Time{}, 10000, 3600, 150)
				w.ElevationGain = 100
				return w
			}(),
			expected: (11000.0 / 3600.0) * 60 / 150,
		},
		{
			name:     "no heart rate",
			workout:  store.Workout{Type: store.TypeEasy, Distance: 10000, MovingTime: 3600},
			expected: 0,
		},
		{
			name:     "implausibly low heart rate",
			workout:  aerobicRun("c", store.TypeEasy, time.Time{}, 10000, 3600, 45),
			expected: 0,
		},
		{
			name:     "implausibly high heart rate",
			workout:  aerobicRun("d", store.TypeEasy, time.Time{}, 10000, 3600, 240),
			expected: 0,
		},
		{
			name:     "barely moving",
			workout:  aerobicRun("e", store.TypeEasy, time.Time{}, 1000, 3600, 120),
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := EfficiencyFactor(tt.workout)
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("EfficiencyFactor() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestComputeEfficiencyTrend(t *testing.T) {
	asOf := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		workouts []store.Workout
		checkFn  func(t *testing.T, trend EfficiencyTrend, ok bool)
	}{
		{
			name:     "no workouts",
			workouts: nil,
			checkFn: func(t *testing.T, trend EfficiencyTrend, ok bool) {
				if ok {
					t.Errorf("expected no trend, got %+v", trend)
				}
			},
		},
		{
			name: "recent workouts but an empty baseline",
			workouts: []store.Workout{
				aerobicRun("a", store.TypeEasy, asOf.AddDate(0, 0, -2), 10000, 3600, 150),
			},
			checkFn: func(t *testing.T, trend EfficiencyTrend, ok bool) {
				if ok {
					t.Errorf("expected no trend, got %+v", trend)
				}
			},
		},
		{
			name: "improving efficiency shows positive drift",
			workouts: []store.Workout{
				// Baseline: 10 km/h at HR 150.
				aerobicRun("b1", store.TypeEasy, asOf.AddDate(0, 0, -20), 10000, 3600, 150),
				aerobicRun("b2", store.TypeLong, asOf.AddDate(0, 0, -14), 20000, 7200, 150),
				// Current: same pace at HR 140.
				aerobicRun("c1", store.TypeEasy, asOf.AddDate(0, 0, -3), 10000, 3600, 140),
			},
			checkFn: func(t *testing.T, trend EfficiencyTrend, ok bool) {
				if !ok {
					t.Fatal("expected a trend")
				}
				baseline := (10000.0 / 3600.0) * 60 / 150
				current := (10000.0 / 3600.0) * 60 / 140
				if math.Abs(trend.Baseline-baseline) > 1e-9 {
					t.Errorf("Baseline = %v, want %v", trend.Baseline, baseline)
				}
				if math.Abs(trend.Current-current) > 1e-9 {
					t.Errorf("Current = %v, want %v", trend.Current, current)
				}
				if trend.Drift <= 0 {
					t.Errorf("Drift = %v, want positive", trend.Drift)
				}
			},
		},
		{
			name: "intervals and races stay out of the trend",
			workouts: []store.Workout{
				aerobicRun("b", store.TypeEasy, asOf.AddDate(0, 0, -20), 10000, 3600, 150),
				aerobicRun("c", store.TypeEasy, asOf.AddDate(0, 0, -3), 10000, 3600, 150),
				// Fast intervals in the current window would inflate EF.
				aerobicRun("i", store.TypeInterval, asOf.AddDate(0, 0, -2), 8000, 1800, 175),
				aerobicRun("r", store.TypeRace, asOf.AddDate(0, 0, -1), 10000, 2400, 180),
			},
			checkFn: func(t *testing.T, trend EfficiencyTrend, ok bool) {
				if !ok {
					t.Fatal("expected a trend")
				}
				if math.Abs(trend.Drift) > 1e-9 {
					t.Errorf("Drift = %v, want 0", trend.Drift)
				}
			},
		},
		{
			name: "workouts without heart rate are invisible",
			workouts: []store.Workout{
				aerobicRun("b", store.TypeEasy, asOf.AddDate(0, 0, -20), 10000, 3600, 150),
				{ID: "nohr", AthleteID: 1, Date: asOf.AddDate(0, 0, -3), Type: store.TypeEasy, Distance: 10000, MovingTime: 3600},
			},
			checkFn: func(t *testing.T, trend EfficiencyTrend, ok bool) {
				if ok {
					t.Errorf("expected no trend, got %+v", trend)
				}
			},
		},
		{
			name: "workouts older than both windows are ignored",
			workouts: []store.Workout{
				aerobicRun("ancient", store.TypeEasy, asOf.AddDate(0, 0, -36), 10000, 3600, 120),
				aerobicRun("b", store.TypeEasy, asOf.AddDate(0, 0, -20), 10000, 3600, 150),
				aerobicRun("c", store.TypeEasy, asOf.AddDate(0, 0, -3), 10000, 3600, 150),
			},
			checkFn: func(t *testing.T, trend EfficiencyTrend, ok bool) {
				if !ok {
					t.Fatal("expected a trend")
				}
				want := (10000.0 / 3600.0) * 60 / 150
				if math.Abs(trend.Baseline-want) > 1e-9 {
					t.Errorf("Baseline = %v, want %v (the HR 120 run must not count)", trend.Baseline, want)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trend, ok := ComputeEfficiencyTrend(tt.workouts, asOf)
			tt.checkFn(t, trend, ok)
		})
	}
}
