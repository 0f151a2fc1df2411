package store

import "database/sql"

// migrate runs all database migrations
func migrate(db *sql.DB) error {
	migrations := []string{
		// Authentication (singleton row)
		`CREATE TABLE IF NOT EXISTS auth (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			athlete_id INTEGER NOT NULL,
			access_token TEXT NOT NULL,
			refresh_token TEXT NOT NULL,
			expires_at INTEGER NOT NULL,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		// Sync State (key-value store for sync tracking)
		`CREATE TABLE IF NOT EXISTS sync_state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		// Athletes and the biometrics the zone model needs
		`CREATE TABLE IF NOT EXISTS athletes (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			birth_date TEXT,
			gender TEXT,
			weight_kg REAL,
			ftp_watts REAL,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		// Activities (history cache synced from the provider)
		`CREATE TABLE IF NOT EXISTS activities (
			id INTEGER PRIMARY KEY,
			athlete_id TEXT NOT NULL,
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			start_date TEXT NOT NULL,
			distance REAL NOT NULL,
			moving_time INTEGER NOT NULL,
			elapsed_time INTEGER NOT NULL,
			total_elevation_gain REAL,
			average_speed REAL,
			average_heartrate REAL,
			max_heartrate REAL,
			average_watts REAL,
			has_heartrate INTEGER NOT NULL,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_activities_athlete_date ON activities(athlete_id, start_date)`,
		`CREATE INDEX IF NOT EXISTS idx_activities_type ON activities(type)`,

		// Training plans
		`CREATE TABLE IF NOT EXISTS training_plans (
			id TEXT PRIMARY KEY,
			athlete_id TEXT NOT NULL,
			name TEXT NOT NULL,
			goal TEXT NOT NULL,
			sport TEXT NOT NULL,
			tier TEXT NOT NULL,
			start_date TEXT NOT NULL,
			end_date TEXT NOT NULL,
			weeks INTEGER NOT NULL,
			target_event_date TEXT,
			target_time_minutes REAL,
			zones TEXT,
			status TEXT NOT NULL CHECK (status IN ('pending', 'active', 'completed', 'cancelled')),
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		// At most one pending or active plan per athlete
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_training_plans_active
			ON training_plans(athlete_id) WHERE status IN ('pending', 'active')`,

		`CREATE INDEX IF NOT EXISTS idx_training_plans_athlete ON training_plans(athlete_id, created_at)`,

		`CREATE TABLE IF NOT EXISTS plan_phases (
			plan_id TEXT NOT NULL,
			week INTEGER NOT NULL,
			focus TEXT NOT NULL,
			block_week INTEGER NOT NULL,
			target_stress INTEGER NOT NULL,
			PRIMARY KEY (plan_id, week),
			FOREIGN KEY (plan_id) REFERENCES training_plans(id) ON DELETE CASCADE
		)`,

		`CREATE TABLE IF NOT EXISTS planned_workouts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			plan_id TEXT NOT NULL,
			week INTEGER NOT NULL,
			date TEXT NOT NULL,
			type TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			duration_minutes INTEGER NOT NULL,
			target_zone TEXT,
			stress INTEGER NOT NULL,
			segments TEXT NOT NULL,
			completed INTEGER NOT NULL DEFAULT 0,
			UNIQUE (plan_id, date),
			FOREIGN KEY (plan_id) REFERENCES training_plans(id) ON DELETE CASCADE
		)`,

		`CREATE INDEX IF NOT EXISTS idx_planned_workouts_plan ON planned_workouts(plan_id, date)`,

		`CREATE TABLE IF NOT EXISTS plan_preferences (
			plan_id TEXT PRIMARY KEY,
			frequency INTEGER NOT NULL,
			days TEXT NOT NULL,
			long_day INTEGER,
			start_date TEXT NOT NULL,
			goal_time TEXT,
			target_time_minutes REAL,
			target_source TEXT,
			estimated_times TEXT,
			FOREIGN KEY (plan_id) REFERENCES training_plans(id) ON DELETE CASCADE
		)`,

		`CREATE TABLE IF NOT EXISTS health_declarations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			athlete_id TEXT NOT NULL,
			plan_id TEXT,
			answers TEXT NOT NULL,
			additional_info TEXT,
			accepted INTEGER NOT NULL,
			eligible INTEGER NOT NULL,
			declared_at TEXT NOT NULL,
			FOREIGN KEY (plan_id) REFERENCES training_plans(id) ON DELETE SET NULL
		)`,

		// Cached profiles. Never a source of truth.
		`CREATE TABLE IF NOT EXISTS profile_snapshots (
			athlete_id TEXT PRIMARY KEY,
			profile TEXT NOT NULL,
			computed_at TEXT NOT NULL
		)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}

	return nil
}
