package store

import (
	"database/sql"
	"errors"
	"strings"
	"time"
)

// SaveThresholdEstimate appends a new estimate. Estimates are never
// updated or deleted; newer rows supersede older ones.
func (db *DB) SaveThresholdEstimate(e *ThresholdEstimate) error {
	_, err := db.Exec(`
		INSERT INTO threshold_estimates (id, athlete_id, speed, effective_from, basis, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.ID, e.AthleteID, e.Speed, formatDay(e.EffectiveFrom),
		strings.Join(e.Basis, ","), formatTime(e.CreatedAt))
	return err
}

// ThresholdOn returns the estimate effective on the given day: the latest
// one with effective_from <= day. Returns ErrNoThreshold when none applies.
func (db *DB) ThresholdOn(athleteID int64, day time.Time) (*ThresholdEstimate, error) {
	row := db.QueryRow(`
		SELECT id, athlete_id, speed, effective_from, basis, created_at
		FROM threshold_estimates
		WHERE athlete_id = ? AND effective_from <= ?
		ORDER BY effective_from DESC, created_at DESC
		LIMIT 1
	`, athleteID, formatDay(day))

	return scanThreshold(row)
}

// CurrentThreshold returns the most recent estimate regardless of
// effective date. Returns ErrNoThreshold when none exists.
func (db *DB) CurrentThreshold(athleteID int64) (*ThresholdEstimate, error) {
	row := db.QueryRow(`
		SELECT id, athlete_id, speed, effective_from, basis, created_at
		FROM threshold_estimates
		WHERE athlete_id = ?
		ORDER BY effective_from DESC, created_at DESC
		LIMIT 1
	`, athleteID)

	return scanThreshold(row)
}

// ListThresholdEstimates returns all estimates ordered by effective date
// ascending
func (db *DB) ListThresholdEstimates(athleteID int64) ([]ThresholdEstimate, error) {
	rows, err := db.Query(`
		SELECT id, athlete_id, speed, effective_from, basis, created_at
		FROM threshold_estimates
		WHERE athlete_id = ?
		ORDER BY effective_from ASC, created_at ASC
	`, athleteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var estimates []ThresholdEstimate
	for rows.Next() {
		var e ThresholdEstimate
		var effectiveFrom, basis, createdAt string

		err := rows.Scan(&e.ID, &e.AthleteID, &e.Speed, &effectiveFrom, &basis, &createdAt)
		if err != nil {
			return nil, err
		}
		if e.EffectiveFrom, err = parseDay(effectiveFrom); err != nil {
			return nil, err
		}
		if e.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if basis != "" {
			e.Basis = strings.Split(basis, ",")
		}
		estimates = append(estimates, e)
	}
	return estimates, rows.Err()
}

// scanThreshold scans a single estimate from a row
func scanThreshold(row *sql.Row) (*ThresholdEstimate, error) {
	var e ThresholdEstimate
	var effectiveFrom, basis, createdAt string

	err := row.Scan(&e.ID, &e.AthleteID, &e.Speed, &effectiveFrom, &basis, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoThreshold
	}
	if err != nil {
		return nil, err
	}

	if e.EffectiveFrom, err = parseDay(effectiveFrom); err != nil {
		return nil, err
	}
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if basis != "" {
		e.Basis = strings.Split(basis, ",")
	}
	return &e, nil
}
