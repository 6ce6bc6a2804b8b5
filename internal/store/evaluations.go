package store

import (
	"database/sql"
	"errors"
)

// SaveEvaluation stores an adherence evaluation
func (db *DB) SaveEvaluation(e *EvaluationResult) error {
	_, err := db.Exec(`
		INSERT INTO evaluations (id, planned_id, actual_id, matched, score,
			duration_delta, distance_delta, intensity_delta, verdict, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.PlannedID, e.ActualID, boolToInt(e.Matched), e.Score,
		e.DurationDelta, e.DistanceDelta, e.IntensityDelta, string(e.Verdict),
		formatTime(e.CreatedAt))
	return err
}

// LatestEvaluation returns the most recent evaluation for a planned
// workout, or nil if none exists
func (db *DB) LatestEvaluation(plannedID string) (*EvaluationResult, error) {
	row := db.QueryRow(`
		SELECT id, planned_id, actual_id, matched, score,
			duration_delta, distance_delta, intensity_delta, verdict, created_at
		FROM evaluations
		WHERE planned_id = ?
		ORDER BY created_at DESC
		LIMIT 1
	`, plannedID)

	e, err := scanEvaluation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return e, err
}

// ListEvaluationsForProgram returns all evaluations of a program's
// planned workouts, ordered by planned date
func (db *DB) ListEvaluationsForProgram(programID string) ([]EvaluationResult, error) {
	rows, err := db.Query(`
		SELECT e.id, e.planned_id, e.actual_id, e.matched, e.score,
			e.duration_delta, e.distance_delta, e.intensity_delta, e.verdict, e.created_at
		FROM evaluations e
		JOIN planned_workouts pw ON e.planned_id = pw.id
		JOIN program_weeks w ON pw.week_id = w.id
		WHERE w.program_id = ?
		ORDER BY pw.date ASC, e.created_at ASC
	`, programID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var evals []EvaluationResult
	for rows.Next() {
		var e EvaluationResult
		var matched int
		var verdict, createdAt string

		err := rows.Scan(&e.ID, &e.PlannedID, &e.ActualID, &matched, &e.Score,
			&e.DurationDelta, &e.DistanceDelta, &e.IntensityDelta, &verdict, &createdAt)
		if err != nil {
			return nil, err
		}
		if e.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		e.Matched = matched == 1
		e.Verdict = Verdict(verdict)
		evals = append(evals, e)
	}
	return evals, rows.Err()
}

// scanEvaluation scans a single evaluation from a row
func scanEvaluation(row *sql.Row) (*EvaluationResult, error) {
	var e EvaluationResult
	var matched int
	var verdict, createdAt string

	err := row.Scan(&e.ID, &e.PlannedID, &e.ActualID, &matched, &e.Score,
		&e.DurationDelta, &e.DistanceDelta, &e.IntensityDelta, &verdict, &createdAt)
	if err != nil {
		return nil, err
	}

	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	e.Matched = matched == 1
	e.Verdict = Verdict(verdict)

	return &e, nil
}
