package store

import (
	"database/sql"
	"errors"
)

// SaveGoal inserts a new active goal, deactivating any existing active
// goal for the athlete in the same transaction.
func (db *DB) SaveGoal(g *Goal) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		UPDATE goals SET active = 0 WHERE athlete_id = ? AND active = 1
	`, g.AthleteID)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
		INSERT INTO goals (id, athlete_id, distance, race_date, target_time, active, created_at)
		VALUES (?, ?, ?, ?, ?, 1, ?)
	`, g.ID, g.AthleteID, string(g.Distance), formatDay(g.RaceDate), g.TargetTime, formatTime(g.CreatedAt))
	if err != nil {
		return err
	}

	return tx.Commit()
}

// ActiveGoal returns the athlete's active goal, or ErrNoActiveGoal
func (db *DB) ActiveGoal(athleteID int64) (*Goal, error) {
	row := db.QueryRow(`
		SELECT id, athlete_id, distance, race_date, target_time, active, created_at
		FROM goals
		WHERE athlete_id = ? AND active = 1
		ORDER BY created_at DESC
		LIMIT 1
	`, athleteID)

	g, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoActiveGoal
	}
	return g, err
}

// ListGoals returns all goals for an athlete, newest first
func (db *DB) ListGoals(athleteID int64) ([]Goal, error) {
	rows, err := db.Query(`
		SELECT id, athlete_id, distance, race_date, target_time, active, created_at
		FROM goals
		WHERE athlete_id = ?
		ORDER BY created_at DESC
	`, athleteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []Goal
	for rows.Next() {
		var g Goal
		var distance, raceDate, createdAt string
		var active int

		err := rows.Scan(&g.ID, &g.AthleteID, &distance, &raceDate, &g.TargetTime, &active, &createdAt)
		if err != nil {
			return nil, err
		}
		if g.RaceDate, err = parseDay(raceDate); err != nil {
			return nil, err
		}
		if g.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		g.Distance = RaceDistance(distance)
		g.Active = active == 1
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// scanGoal scans a single goal from a row
func scanGoal(row *sql.Row) (*Goal, error) {
	var g Goal
	var distance, raceDate, createdAt string
	var active int

	err := row.Scan(&g.ID, &g.AthleteID, &distance, &raceDate, &g.TargetTime, &active, &createdAt)
	if err != nil {
		return nil, err
	}

	if g.RaceDate, err = parseDay(raceDate); err != nil {
		return nil, err
	}
	if g.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	g.Distance = RaceDistance(distance)
	g.Active = active == 1

	return &g, nil
}
