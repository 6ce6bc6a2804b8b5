package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// ErrRecordNotFound is returned when no record exists at a distance
var ErrRecordNotFound = errors.New("race record not found")

// ReplaceRaceRecords swaps the athlete's whole record set in one
// transaction. Records are recomputed from the workout history, so a
// replaced set is always internally consistent; merging could leave a
// record whose workout was since corrected.
func (db *DB) ReplaceRaceRecords(athleteID int64, records []RaceRecord) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM race_records WHERE athlete_id = ?`, athleteID); err != nil {
		return err
	}

	for _, r := range records {
		_, err := tx.Exec(`
			INSERT INTO race_records (
				athlete_id, distance, workout_id, meters, seconds,
				speed, average_hr, achieved_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`,
			athleteID, string(r.Distance), r.WorkoutID, r.Meters, r.Seconds,
			r.Speed, r.AverageHR, formatDay(r.AchievedAt),
		)
		if err != nil {
			return fmt.Errorf("inserting %s record: %w", r.Distance, err)
		}
	}

	return tx.Commit()
}

// ListRaceRecords returns the athlete's records ordered shortest
// distance first.
func (db *DB) ListRaceRecords(athleteID int64) ([]RaceRecord, error) {
	rows, err := db.Query(`
		SELECT athlete_id, distance, workout_id, meters, seconds,
			speed, average_hr, achieved_at
		FROM race_records
		WHERE athlete_id = ?
		ORDER BY meters ASC
	`, athleteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRaceRecords(rows)
}

// GetRaceRecord returns the athlete's record at one distance.
func (db *DB) GetRaceRecord(athleteID int64, distance RaceDistance) (*RaceRecord, error) {
	row := db.QueryRow(`
		SELECT athlete_id, distance, workout_id, meters, seconds,
			speed, average_hr, achieved_at
		FROM race_records
		WHERE athlete_id = ? AND distance = ?
	`, athleteID, string(distance))

	return scanRaceRecord(row)
}

// scanRaceRecord scans a single record from a row
func scanRaceRecord(row *sql.Row) (*RaceRecord, error) {
	var r RaceRecord
	var distance, achievedAt string

	err := row.Scan(
		&r.AthleteID, &distance, &r.WorkoutID, &r.Meters, &r.Seconds,
		&r.Speed, &r.AverageHR, &achievedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}

	r.Distance = RaceDistance(distance)
	r.AchievedAt, err = parseDay(achievedAt)
	if err != nil {
		return nil, fmt.Errorf("record %s/%s: %w", r.WorkoutID, distance, err)
	}
	return &r, nil
}

// scanRaceRecords scans multiple records from rows
func scanRaceRecords(rows *sql.Rows) ([]RaceRecord, error) {
	var records []RaceRecord

	for rows.Next() {
		var r RaceRecord
		var distance, achievedAt string

		err := rows.Scan(
			&r.AthleteID, &distance, &r.WorkoutID, &r.Meters, &r.Seconds,
			&r.Speed, &r.AverageHR, &achievedAt,
		)
		if err != nil {
			return nil, err
		}

		r.Distance = RaceDistance(distance)
		r.AchievedAt, err = parseDay(achievedAt)
		if err != nil {
			return nil, fmt.Errorf("record %s/%s: %w", r.WorkoutID, distance, err)
		}
		records = append(records, r)
	}

	return records, rows.Err()
}
