// Package ingest turns exported activity data into workout records.
// Network sync is out of scope: activities arrive as local JSON exports
// in the Strava activity format, or as manual entries through the CLI.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"runcoach/internal/store"
)

// Activity is one activity from a JSON export.
type Activity struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	Type               string    `json:"type"`
	SportType          string    `json:"sport_type"`
	StartDate          time.Time `json:"start_date"`
	Distance           float64   `json:"distance"`             // meters
	MovingTime         int       `json:"moving_time"`          // seconds
	ElapsedTime        int       `json:"elapsed_time"`         // seconds
	TotalElevationGain float64   `json:"total_elevation_gain"` // meters
	AverageSpeed       float64   `json:"average_speed"`        // m/s
	MaxSpeed           float64   `json:"max_speed"`            // m/s
	AverageHeartrate   float64   `json:"average_heartrate"`    // bpm
	MaxHeartrate       float64   `json:"max_heartrate"`        // bpm
	AverageWatts       float64   `json:"average_watts"`        // watts
	MaxWatts           float64   `json:"max_watts"`            // watts
	AverageCadence     float64   `json:"average_cadence"`      // spm
	Description        string    `json:"description"`
}

// IsRun reports whether the activity is a run. Everything else is
// skipped during import.
func (a Activity) IsRun() bool {
	switch a.SportType {
	case "Run", "TrailRun", "VirtualRun":
		return true
	}
	return a.SportType == "" && a.Type == "Run"
}

// Workout converts the activity into a workout owned by athleteID. The
// stable source-derived ID makes re-imports idempotent: the same
// activity always lands on the same row.
func (a Activity) Workout(athleteID int64) store.Workout {
	w := store.Workout{
		ID:            fmt.Sprintf("strava_%d", a.ID),
		AthleteID:     athleteID,
		Date:          a.StartDate.UTC(),
		Type:          Classify(a.Name),
		Name:          a.Name,
		Distance:      a.Distance,
		MovingTime:    a.MovingTime,
		ElapsedTime:   a.ElapsedTime,
		AverageSpeed:  a.AverageSpeed,
		MaxSpeed:      a.MaxSpeed,
		ElevationGain: a.TotalElevationGain,
		Notes:         a.Description,
		Source:        "strava",
	}
	if a.AverageSpeed == 0 && a.MovingTime > 0 {
		w.AverageSpeed = a.Distance / float64(a.MovingTime)
	}
	w.AverageHR = optional(a.AverageHeartrate)
	w.MaxHR = optional(a.MaxHeartrate)
	w.AveragePower = optional(a.AverageWatts)
	w.MaxPower = optional(a.MaxWatts)
	w.AverageCadence = optional(a.AverageCadence)
	return w
}

func optional(v float64) *float64 {
	if v <= 0 {
		return nil
	}
	return &v
}

// Source yields activities for import.
type Source interface {
	Activities(ctx context.Context) ([]Activity, error)
}

// FileSource reads a JSON export file holding an activity array.
type FileSource struct {
	Path string
}

// NewFileSource returns a Source over the export file at path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (f *FileSource) Activities(ctx context.Context) ([]Activity, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("reading export: %w", err)
	}
	var activities []Activity
	if err := json.Unmarshal(data, &activities); err != nil {
		return nil, fmt.Errorf("parsing export %s: %w", f.Path, err)
	}
	return activities, nil
}

// Static is an in-memory Source.
type Static []Activity

func (s Static) Activities(ctx context.Context) ([]Activity, error) {
	return s, nil
}
