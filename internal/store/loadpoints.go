package store

import (
	"database/sql"
	"errors"
	"time"
)

// UpsertLoadPoint stores one day of the load series. Recomputes call this
// in ascending date order so an interrupted pass leaves a consistent prefix.
func (db *DB) UpsertLoadPoint(p *DailyLoadPoint) error {
	_, err := db.Exec(`
		INSERT INTO load_points (athlete_id, date, stress, fitness, fatigue, readiness)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(athlete_id, date) DO UPDATE SET
			stress = excluded.stress,
			fitness = excluded.fitness,
			fatigue = excluded.fatigue,
			readiness = excluded.readiness
	`, p.AthleteID, formatDay(p.Date), p.Stress, p.Fitness, p.Fatigue, p.Readiness)
	return err
}

// GetLoadPoint retrieves the point for one day, or nil if none exists
func (db *DB) GetLoadPoint(athleteID int64, day time.Time) (*DailyLoadPoint, error) {
	row := db.QueryRow(`
		SELECT athlete_id, date, stress, fitness, fatigue, readiness
		FROM load_points
		WHERE athlete_id = ? AND date = ?
	`, athleteID, formatDay(day))

	return scanLoadPoint(row)
}

// LatestLoadPoint retrieves the most recent point, or nil if none exists
func (db *DB) LatestLoadPoint(athleteID int64) (*DailyLoadPoint, error) {
	row := db.QueryRow(`
		SELECT athlete_id, date, stress, fitness, fatigue, readiness
		FROM load_points
		WHERE athlete_id = ?
		ORDER BY date DESC
		LIMIT 1
	`, athleteID)

	return scanLoadPoint(row)
}

// FirstLoadPoint retrieves the earliest point, or nil if none exists
func (db *DB) FirstLoadPoint(athleteID int64) (*DailyLoadPoint, error) {
	row := db.QueryRow(`
		SELECT athlete_id, date, stress, fitness, fatigue, readiness
		FROM load_points
		WHERE athlete_id = ?
		ORDER BY date ASC
		LIMIT 1
	`, athleteID)

	return scanLoadPoint(row)
}

// ListLoadPoints returns the series between from and to inclusive,
// ordered by date ascending
func (db *DB) ListLoadPoints(athleteID int64, from, to time.Time) ([]DailyLoadPoint, error) {
	rows, err := db.Query(`
		SELECT athlete_id, date, stress, fitness, fatigue, readiness
		FROM load_points
		WHERE athlete_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`, athleteID, formatDay(from), formatDay(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []DailyLoadPoint
	for rows.Next() {
		p, err := scanLoadPointRow(rows)
		if err != nil {
			return nil, err
		}
		points = append(points, *p)
	}
	return points, rows.Err()
}

// DeleteLoadPointsBefore removes points earlier than the given day. Used
// when a correction edit moves the first workout later in time, leaving
// orphaned leading rows.
func (db *DB) DeleteLoadPointsBefore(athleteID int64, day time.Time) error {
	_, err := db.Exec(`
		DELETE FROM load_points WHERE athlete_id = ? AND date < ?
	`, athleteID, formatDay(day))
	return err
}

// scanLoadPoint scans a single point from a row, returning nil when absent
func scanLoadPoint(row *sql.Row) (*DailyLoadPoint, error) {
	var p DailyLoadPoint
	var date string

	err := row.Scan(&p.AthleteID, &date, &p.Stress, &p.Fitness, &p.Fatigue, &p.Readiness)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	p.Date, err = parseDay(date)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanLoadPointRow(rows *sql.Rows) (*DailyLoadPoint, error) {
	var p DailyLoadPoint
	var date string

	err := rows.Scan(&p.AthleteID, &date, &p.Stress, &p.Fitness, &p.Fatigue, &p.Readiness)
	if err != nil {
		return nil, err
	}

	p.Date, err = parseDay(date)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
