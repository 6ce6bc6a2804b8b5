package ingest

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"runcoach/internal/store"
)

func TestActivityWorkout(t *testing.T) {
	started := time.Date(2026, 8, 10, 6, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		activity Activity
		checkFn  func(t *testing.T, w store.Workout)
	}{
		{
			name: "full metrics",
			activity: Activity{
				ID:                 12345,
				Name:               "Morning Tempo Run",
				Type:               "Run",
				SportType:          "Run",
				StartDate:          started,
				Distance:           10000,
				MovingTime:         3000,
				ElapsedTime:        3120,
				TotalElevationGain: 85,
				AverageSpeed:       3.33,
				MaxSpeed:           4.1,
				AverageHeartrate:   162,
				MaxHeartrate:       178,
				AverageCadence:     176,
				Description:        "felt strong",
			},
			checkFn: func(t *testing.T, w store.Workout) {
				if w.ID != "strava_12345" {
					t.Errorf("ID = %s, want strava_12345", w.ID)
				}
				if w.AthleteID != 7 {
					t.Errorf("AthleteID = %d, want 7", w.AthleteID)
				}
				if w.Type != store.TypeTempo {
					t.Errorf("Type = %s, want tempo", w.Type)
				}
				if !w.Date.Equal(started) {
					t.Errorf("Date = %v, want %v", w.Date, started)
				}
				if w.AverageHR == nil || *w.AverageHR != 162 {
					t.Errorf("AverageHR = %v, want 162", w.AverageHR)
				}
				if w.AveragePower != nil {
					t.Errorf("AveragePower = %v, want nil", *w.AveragePower)
				}
				if w.Notes != "felt strong" || w.Source != "strava" {
					t.Errorf("Notes/Source = %q/%q", w.Notes, w.Source)
				}
			},
		},
		{
			name: "missing average speed is derived",
			activity: Activity{
				ID:         99,
				Name:       "Evening Run",
				Type:       "Run",
				StartDate:  started,
				Distance:   8000,
				MovingTime: 2400,
			},
			checkFn: func(t *testing.T, w store.Workout) {
				if math.Abs(w.AverageSpeed-8000.0/2400.0) > 1e-9 {
					t.Errorf("AverageSpeed = %v, want %v", w.AverageSpeed, 8000.0/2400.0)
				}
				if w.AverageHR != nil || w.MaxHR != nil || w.AverageCadence != nil {
					t.Error("absent metrics should stay nil")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.checkFn(t, tt.activity.Workout(7))
		})
	}
}

func TestActivityIsRun(t *testing.T) {
	tests := []struct {
		name     string
		activity Activity
		expected bool
	}{
		{"road run", Activity{Type: "Run", SportType: "Run"}, true},
		{"trail run", Activity{Type: "Run", SportType: "TrailRun"}, true},
		{"treadmill", Activity{Type: "Run", SportType: "VirtualRun"}, true},
		{"ride", Activity{Type: "Ride", SportType: "Ride"}, false},
		{"swim", Activity{Type: "Swim", SportType: "Swim"}, false},
		{"legacy export without sport_type", Activity{Type: "Run"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.activity.IsRun(); got != tt.expected {
				t.Errorf("IsRun() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()

	t.Run("reads an export file", func(t *testing.T) {
		path := filepath.Join(dir, "export.json")
		payload := `[
			{"id": 1, "name": "Morning Run", "type": "Run", "sport_type": "Run",
			 "start_date": "2026-08-10T06:30:00Z",
			 "distance": 5000, "moving_time": 1500, "elapsed_time": 1560,
			 "average_speed": 3.33},
			{"id": 2, "name": "Lunch Ride", "type": "Ride", "sport_type": "Ride",
			 "start_date": "2026-08-11T12:00:00Z",
			 "distance": 30000, "moving_time": 3600, "elapsed_time": 3700}
		]`
		if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
			t.Fatal(err)
		}

		activities, err := NewFileSource(path).Activities(context.Background())
		if err != nil {
			t.Fatalf("Activities() error = %v", err)
		}
		if len(activities) != 2 {
			t.Fatalf("got %d activities, want 2", len(activities))
		}
		if activities[0].Name != "Morning Run" || activities[0].MovingTime != 1500 {
			t.Errorf("first activity = %+v", activities[0])
		}
		if activities[1].IsRun() {
			t.Error("ride should not classify as a run")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewFileSource(filepath.Join(dir, "nope.json")).Activities(context.Background())
		if err == nil {
			t.Fatal("expected an error")
		}
	})

	t.Run("malformed payload", func(t *testing.T) {
		path := filepath.Join(dir, "broken.json")
		if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
			t.Fatal(err)
		}
		_, err := NewFileSource(path).Activities(context.Background())
		if err == nil {
			t.Fatal("expected an error")
		}
	})
}
