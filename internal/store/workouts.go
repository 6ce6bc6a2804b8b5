package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// UpsertWorkout inserts or updates a workout and bumps the athlete's
// workout revision in the same transaction.
func (db *DB) UpsertWorkout(w *Workout) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO workouts (
			id, athlete_id, date, type, name,
			distance, moving_time, elapsed_time, average_speed, max_speed,
			elevation_gain, average_hr, max_hr, average_power, max_power,
			average_cadence, perceived_effort, notes, source, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			athlete_id = excluded.athlete_id,
			date = excluded.date,
			type = excluded.type,
			name = excluded.name,
			distance = excluded.distance,
			moving_time = excluded.moving_time,
			elapsed_time = excluded.elapsed_time,
			average_speed = excluded.average_speed,
			max_speed = excluded.max_speed,
			elevation_gain = excluded.elevation_gain,
			average_hr = excluded.average_hr,
			max_hr = excluded.max_hr,
			average_power = excluded.average_power,
			max_power = excluded.max_power,
			average_cadence = excluded.average_cadence,
			perceived_effort = excluded.perceived_effort,
			notes = excluded.notes,
			source = excluded.source,
			updated_at = CURRENT_TIMESTAMP
	`,
		w.ID, w.AthleteID, formatTime(w.Date), string(w.Type), w.Name,
		w.Distance, w.MovingTime, w.ElapsedTime, w.AverageSpeed, w.MaxSpeed,
		w.ElevationGain, w.AverageHR, w.MaxHR, w.AveragePower, w.MaxPower,
		w.AverageCadence, w.PerceivedEffort, w.Notes, w.Source,
	)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
		INSERT INTO workout_revisions (athlete_id, revision) VALUES (?, 1)
		ON CONFLICT(athlete_id) DO UPDATE SET revision = revision + 1
	`, w.AthleteID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// GetWorkout retrieves a workout by ID
func (db *DB) GetWorkout(id string) (*Workout, error) {
	row := db.QueryRow(`
		SELECT id, athlete_id, date, type, name,
			distance, moving_time, elapsed_time, average_speed, max_speed,
			elevation_gain, average_hr, max_hr, average_power, max_power,
			average_cadence, perceived_effort, notes, source
		FROM workouts
		WHERE id = ?
	`, id)

	return scanWorkout(row)
}

// ListWorkouts returns all of an athlete's workouts ordered by date ascending
func (db *DB) ListWorkouts(athleteID int64) ([]Workout, error) {
	rows, err := db.Query(`
		SELECT id, athlete_id, date, type, name,
			distance, moving_time, elapsed_time, average_speed, max_speed,
			elevation_gain, average_hr, max_hr, average_power, max_power,
			average_cadence, perceived_effort, notes, source
		FROM workouts
		WHERE athlete_id = ?
		ORDER BY date ASC
	`, athleteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanWorkouts(rows)
}

// ListWorkoutsSince returns an athlete's workouts on or after the given
// time, ordered by date ascending
func (db *DB) ListWorkoutsSince(athleteID int64, since time.Time) ([]Workout, error) {
	rows, err := db.Query(`
		SELECT id, athlete_id, date, type, name,
			distance, moving_time, elapsed_time, average_speed, max_speed,
			elevation_gain, average_hr, max_hr, average_power, max_power,
			average_cadence, perceived_effort, notes, source
		FROM workouts
		WHERE athlete_id = ? AND date >= ?
		ORDER BY date ASC
	`, athleteID, formatTime(since))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanWorkouts(rows)
}

// ListWorkoutsBetween returns an athlete's workouts in [from, to],
// ordered by date ascending
func (db *DB) ListWorkoutsBetween(athleteID int64, from, to time.Time) ([]Workout, error) {
	rows, err := db.Query(`
		SELECT id, athlete_id, date, type, name,
			distance, moving_time, elapsed_time, average_speed, max_speed,
			elevation_gain, average_hr, max_hr, average_power, max_power,
			average_cadence, perceived_effort, notes, source
		FROM workouts
		WHERE athlete_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`, athleteID, formatTime(from), formatTime(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanWorkouts(rows)
}

// CountWorkouts returns the number of workouts for an athlete
func (db *DB) CountWorkouts(athleteID int64) (int, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM workouts WHERE athlete_id = ?", athleteID).Scan(&count)
	return count, err
}

// ListAthleteIDs returns every athlete with at least one workout
func (db *DB) ListAthleteIDs() ([]int64, error) {
	rows, err := db.Query("SELECT DISTINCT athlete_id FROM workouts ORDER BY athlete_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// WorkoutRevision returns the athlete's current workout revision counter.
// Athletes with no recorded workouts are at revision 0.
func (db *DB) WorkoutRevision(athleteID int64) (int64, error) {
	var rev int64
	err := db.QueryRow(`
		SELECT revision FROM workout_revisions WHERE athlete_id = ?
	`, athleteID).Scan(&rev)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return rev, nil
}

// scanWorkout scans a single workout from a row
func scanWorkout(row *sql.Row) (*Workout, error) {
	var w Workout
	var date, typ string

	err := row.Scan(
		&w.ID, &w.AthleteID, &date, &typ, &w.Name,
		&w.Distance, &w.MovingTime, &w.ElapsedTime, &w.AverageSpeed, &w.MaxSpeed,
		&w.ElevationGain, &w.AverageHR, &w.MaxHR, &w.AveragePower, &w.MaxPower,
		&w.AverageCadence, &w.PerceivedEffort, &w.Notes, &w.Source,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWorkoutNotFound
	}
	if err != nil {
		return nil, err
	}

	w.Date, err = parseTime(date)
	if err != nil {
		return nil, fmt.Errorf("workout %s: %w", w.ID, err)
	}
	w.Type = WorkoutType(typ)

	return &w, nil
}

// scanWorkouts scans multiple workouts from rows
func scanWorkouts(rows *sql.Rows) ([]Workout, error) {
	var workouts []Workout

	for rows.Next() {
		var w Workout
		var date, typ string

		err := rows.Scan(
			&w.ID, &w.AthleteID, &date, &typ, &w.Name,
			&w.Distance, &w.MovingTime, &w.ElapsedTime, &w.AverageSpeed, &w.MaxSpeed,
			&w.ElevationGain, &w.AverageHR, &w.MaxHR, &w.AveragePower, &w.MaxPower,
			&w.AverageCadence, &w.PerceivedEffort, &w.Notes, &w.Source,
		)
		if err != nil {
			return nil, err
		}

		w.Date, err = parseTime(date)
		if err != nil {
			return nil, fmt.Errorf("workout %s: %w", w.ID, err)
		}
		w.Type = WorkoutType(typ)

		workouts = append(workouts, w)
	}

	return workouts, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
