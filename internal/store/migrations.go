package store

import "database/sql"

// migrate runs all database migrations
func migrate(db *sql.DB) error {
	migrations := []string{
		// Completed workouts
		`CREATE TABLE IF NOT EXISTS workouts (
			id TEXT PRIMARY KEY,
			athlete_id INTEGER NOT NULL,
			date TEXT NOT NULL,
			type TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			distance REAL NOT NULL,
			moving_time INTEGER NOT NULL,
			elapsed_time INTEGER NOT NULL,
			average_speed REAL NOT NULL,
			max_speed REAL NOT NULL DEFAULT 0,
			elevation_gain REAL NOT NULL DEFAULT 0,
			average_hr REAL,
			max_hr REAL,
			average_power REAL,
			max_power REAL,
			average_cadence REAL,
			perceived_effort INTEGER,
			notes TEXT NOT NULL DEFAULT '',
			source TEXT NOT NULL DEFAULT 'manual',
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_workouts_athlete_date ON workouts(athlete_id, date)`,
		`CREATE INDEX IF NOT EXISTS idx_workouts_type ON workouts(type)`,

		// Workout revision counter per athlete, bumped on every write.
		// Recompute passes snapshot this to detect concurrent ingestion.
		`CREATE TABLE IF NOT EXISTS workout_revisions (
			athlete_id INTEGER PRIMARY KEY,
			revision INTEGER NOT NULL DEFAULT 0
		)`,

		// Daily training load series (one row per athlete per day, no gaps)
		`CREATE TABLE IF NOT EXISTS load_points (
			athlete_id INTEGER NOT NULL,
			date TEXT NOT NULL,
			stress REAL NOT NULL,
			fitness REAL NOT NULL,
			fatigue REAL NOT NULL,
			readiness REAL NOT NULL,
			PRIMARY KEY (athlete_id, date)
		)`,

		// Threshold estimates (append-only)
		`CREATE TABLE IF NOT EXISTS threshold_estimates (
			id TEXT PRIMARY KEY,
			athlete_id INTEGER NOT NULL,
			speed REAL NOT NULL,
			effective_from TEXT NOT NULL,
			basis TEXT NOT NULL DEFAULT '',
			created_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_thresholds_athlete_date ON threshold_estimates(athlete_id, effective_from)`,

		// Race goals (at most one active per athlete, enforced in SaveGoal)
		`CREATE TABLE IF NOT EXISTS goals (
			id TEXT PRIMARY KEY,
			athlete_id INTEGER NOT NULL,
			distance TEXT NOT NULL,
			race_date TEXT NOT NULL,
			target_time INTEGER,
			active INTEGER NOT NULL DEFAULT 1,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_goals_athlete_active ON goals(athlete_id, active)`,

		// Generated training programs
		`CREATE TABLE IF NOT EXISTS programs (
			id TEXT PRIMARY KEY,
			athlete_id INTEGER NOT NULL,
			goal_id TEXT NOT NULL,
			start_date TEXT NOT NULL,
			total_weeks INTEGER NOT NULL,
			generation INTEGER NOT NULL,
			active INTEGER NOT NULL DEFAULT 1,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (goal_id) REFERENCES goals(id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_programs_athlete_active ON programs(athlete_id, active)`,

		`CREATE TABLE IF NOT EXISTS program_weeks (
			id TEXT PRIMARY KEY,
			program_id TEXT NOT NULL,
			number INTEGER NOT NULL,
			phase TEXT NOT NULL,
			start_date TEXT NOT NULL,
			target_volume REAL NOT NULL,
			recovery INTEGER NOT NULL DEFAULT 0,
			FOREIGN KEY (program_id) REFERENCES programs(id) ON DELETE CASCADE
		)`,

		`CREATE INDEX IF NOT EXISTS idx_weeks_program ON program_weeks(program_id, number)`,

		`CREATE TABLE IF NOT EXISTS planned_workouts (
			id TEXT PRIMARY KEY,
			week_id TEXT NOT NULL,
			day_offset INTEGER NOT NULL,
			date TEXT NOT NULL,
			type TEXT NOT NULL,
			target_distance REAL NOT NULL,
			target_duration INTEGER NOT NULL,
			zone INTEGER NOT NULL,
			target_speed REAL NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			completed INTEGER NOT NULL DEFAULT 0,
			FOREIGN KEY (week_id) REFERENCES program_weeks(id) ON DELETE CASCADE
		)`,

		`CREATE INDEX IF NOT EXISTS idx_planned_week ON planned_workouts(week_id, day_offset)`,
		`CREATE INDEX IF NOT EXISTS idx_planned_date ON planned_workouts(date)`,

		// Race records, one row per athlete per distance, replaced on
		// recompute
		`CREATE TABLE IF NOT EXISTS race_records (
			athlete_id INTEGER NOT NULL,
			distance TEXT NOT NULL,
			workout_id TEXT NOT NULL,
			meters REAL NOT NULL,
			seconds INTEGER NOT NULL,
			speed REAL NOT NULL,
			average_hr REAL,
			achieved_at TEXT NOT NULL,
			PRIMARY KEY (athlete_id, distance)
		)`,

		// Adherence evaluations
		`CREATE TABLE IF NOT EXISTS evaluations (
			id TEXT PRIMARY KEY,
			planned_id TEXT NOT NULL,
			actual_id TEXT,
			matched INTEGER NOT NULL,
			score REAL,
			duration_delta REAL,
			distance_delta REAL,
			intensity_delta REAL,
			verdict TEXT NOT NULL,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (planned_id) REFERENCES planned_workouts(id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_evaluations_planned ON evaluations(planned_id)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}

	return nil
}
