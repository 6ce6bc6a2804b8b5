package store

import (
	"database/sql"
	"errors"
	"time"
)

// ErrProgramConflict is returned when a program swap loses a race with a
// concurrently generated program. The caller should re-read and retry.
var ErrProgramConflict = errors.New("program generation conflict")

// SaveProgram inserts a program with its weeks and planned workouts and
// atomically swaps it in as the athlete's active program. The caller
// passes the generation it observed; if another program landed in
// between, the swap fails with ErrProgramConflict and nothing is written.
func (db *DB) SaveProgram(p *TrainingProgram, expectedGeneration int64) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var current int64
	err = tx.QueryRow(`
		SELECT COALESCE(MAX(generation), 0) FROM programs WHERE athlete_id = ?
	`, p.AthleteID).Scan(&current)
	if err != nil {
		return err
	}
	if current != expectedGeneration {
		return ErrProgramConflict
	}
	p.Generation = current + 1

	_, err = tx.Exec(`
		UPDATE programs SET active = 0 WHERE athlete_id = ? AND active = 1
	`, p.AthleteID)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
		INSERT INTO programs (id, athlete_id, goal_id, start_date, total_weeks, generation, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 1, ?)
	`, p.ID, p.AthleteID, p.GoalID, formatDay(p.StartDate), p.TotalWeeks, p.Generation, formatTime(p.CreatedAt))
	if err != nil {
		return err
	}

	for i := range p.Weeks {
		w := &p.Weeks[i]
		w.ProgramID = p.ID
		_, err = tx.Exec(`
			INSERT INTO program_weeks (id, program_id, number, phase, start_date, target_volume, recovery)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, w.ID, w.ProgramID, w.Number, string(w.Phase), formatDay(w.StartDate), w.TargetVolume, boolToInt(w.Recovery))
		if err != nil {
			return err
		}

		for j := range w.Workouts {
			pw := &w.Workouts[j]
			pw.WeekID = w.ID
			_, err = tx.Exec(`
				INSERT INTO planned_workouts (id, week_id, day_offset, date, type,
					target_distance, target_duration, zone, target_speed, description, completed)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, pw.ID, pw.WeekID, pw.DayOffset, formatDay(pw.Date), string(pw.Type),
				pw.TargetDistance, pw.TargetDuration, pw.Zone, pw.TargetSpeed, pw.Description,
				boolToInt(pw.Completed))
			if err != nil {
				return err
			}
		}
	}

	p.Active = true
	return tx.Commit()
}

// ProgramGeneration returns the athlete's highest program generation,
// 0 when no program has ever been generated.
func (db *DB) ProgramGeneration(athleteID int64) (int64, error) {
	var gen int64
	err := db.QueryRow(`
		SELECT COALESCE(MAX(generation), 0) FROM programs WHERE athlete_id = ?
	`, athleteID).Scan(&gen)
	return gen, err
}

// ActiveProgram returns the athlete's active program with its full
// week/workout graph, or ErrNoActiveProgram.
func (db *DB) ActiveProgram(athleteID int64) (*TrainingProgram, error) {
	row := db.QueryRow(`
		SELECT id, athlete_id, goal_id, start_date, total_weeks, generation, active, created_at
		FROM programs
		WHERE athlete_id = ? AND active = 1
		LIMIT 1
	`, athleteID)

	p, err := scanProgram(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoActiveProgram
	}
	if err != nil {
		return nil, err
	}

	if err := db.loadProgramGraph(p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetProgram returns a program by ID with its full graph, or
// ErrProgramNotFound.
func (db *DB) GetProgram(id string) (*TrainingProgram, error) {
	row := db.QueryRow(`
		SELECT id, athlete_id, goal_id, start_date, total_weeks, generation, active, created_at
		FROM programs
		WHERE id = ?
	`, id)

	p, err := scanProgram(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProgramNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := db.loadProgramGraph(p); err != nil {
		return nil, err
	}
	return p, nil
}

// loadProgramGraph fills in the program's weeks and their workouts.
func (db *DB) loadProgramGraph(p *TrainingProgram) error {
	rows, err := db.Query(`
		SELECT id, program_id, number, phase, start_date, target_volume, recovery
		FROM program_weeks
		WHERE program_id = ?
		ORDER BY number ASC
	`, p.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	weekIndex := make(map[string]int)
	for rows.Next() {
		var w ProgramWeek
		var phase, startDate string
		var recovery int

		err := rows.Scan(&w.ID, &w.ProgramID, &w.Number, &phase, &startDate, &w.TargetVolume, &recovery)
		if err != nil {
			return err
		}
		if w.StartDate, err = parseDay(startDate); err != nil {
			return err
		}
		w.Phase = Phase(phase)
		w.Recovery = recovery == 1

		weekIndex[w.ID] = len(p.Weeks)
		p.Weeks = append(p.Weeks, w)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	wrows, err := db.Query(`
		SELECT pw.id, pw.week_id, pw.day_offset, pw.date, pw.type,
			pw.target_distance, pw.target_duration, pw.zone, pw.target_speed,
			pw.description, pw.completed
		FROM planned_workouts pw
		JOIN program_weeks w ON pw.week_id = w.id
		WHERE w.program_id = ?
		ORDER BY w.number ASC, pw.day_offset ASC
	`, p.ID)
	if err != nil {
		return err
	}
	defer wrows.Close()

	for wrows.Next() {
		pw, err := scanPlannedRow(wrows)
		if err != nil {
			return err
		}
		i, ok := weekIndex[pw.WeekID]
		if !ok {
			continue
		}
		p.Weeks[i].Workouts = append(p.Weeks[i].Workouts, *pw)
	}
	return wrows.Err()
}

// GetPlannedWorkout returns a planned workout by ID, or ErrPlannedNotFound
func (db *DB) GetPlannedWorkout(id string) (*PlannedWorkout, error) {
	row := db.QueryRow(`
		SELECT id, week_id, day_offset, date, type,
			target_distance, target_duration, zone, target_speed, description, completed
		FROM planned_workouts
		WHERE id = ?
	`, id)

	var pw PlannedWorkout
	var date, typ string
	var completed int

	err := row.Scan(&pw.ID, &pw.WeekID, &pw.DayOffset, &date, &typ,
		&pw.TargetDistance, &pw.TargetDuration, &pw.Zone, &pw.TargetSpeed,
		&pw.Description, &completed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlannedNotFound
	}
	if err != nil {
		return nil, err
	}

	if pw.Date, err = parseDay(date); err != nil {
		return nil, err
	}
	pw.Type = WorkoutType(typ)
	pw.Completed = completed == 1

	return &pw, nil
}

// ListDuePlannedWorkouts returns the active program's planned workouts
// dated on or before the given day that have neither been completed nor
// evaluated, ordered by date ascending. An evaluated-but-missed plan is
// settled; it never comes due again.
func (db *DB) ListDuePlannedWorkouts(athleteID int64, through time.Time) ([]PlannedWorkout, error) {
	rows, err := db.Query(`
		SELECT pw.id, pw.week_id, pw.day_offset, pw.date, pw.type,
			pw.target_distance, pw.target_duration, pw.zone, pw.target_speed,
			pw.description, pw.completed
		FROM planned_workouts pw
		JOIN program_weeks w ON pw.week_id = w.id
		JOIN programs p ON w.program_id = p.id
		WHERE p.athlete_id = ? AND p.active = 1 AND pw.date <= ? AND pw.completed = 0
			AND NOT EXISTS (SELECT 1 FROM evaluations e WHERE e.planned_id = pw.id)
		ORDER BY pw.date ASC
	`, athleteID, formatDay(through))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var planned []PlannedWorkout
	for rows.Next() {
		pw, err := scanPlannedRow(rows)
		if err != nil {
			return nil, err
		}
		planned = append(planned, *pw)
	}
	return planned, rows.Err()
}

// MarkPlannedCompleted flags a planned workout as completed
func (db *DB) MarkPlannedCompleted(id string) error {
	result, err := db.Exec(`
		UPDATE planned_workouts SET completed = 1 WHERE id = ?
	`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrPlannedNotFound
	}
	return nil
}

// scanProgram scans a single program row (without its graph)
func scanProgram(row *sql.Row) (*TrainingProgram, error) {
	var p TrainingProgram
	var startDate, createdAt string
	var active int

	err := row.Scan(&p.ID, &p.AthleteID, &p.GoalID, &startDate, &p.TotalWeeks,
		&p.Generation, &active, &createdAt)
	if err != nil {
		return nil, err
	}

	if p.StartDate, err = parseDay(startDate); err != nil {
		return nil, err
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	p.Active = active == 1

	return &p, nil
}

// scanPlannedRow scans a planned workout from a multi-row result
func scanPlannedRow(rows *sql.Rows) (*PlannedWorkout, error) {
	var pw PlannedWorkout
	var date, typ string
	var completed int

	err := rows.Scan(&pw.ID, &pw.WeekID, &pw.DayOffset, &date, &typ,
		&pw.TargetDistance, &pw.TargetDuration, &pw.Zone, &pw.TargetSpeed,
		&pw.Description, &completed)
	if err != nil {
		return nil, err
	}

	if pw.Date, err = parseDay(date); err != nil {
		return nil, err
	}
	pw.Type = WorkoutType(typ)
	pw.Completed = completed == 1

	return &pw, nil
}
