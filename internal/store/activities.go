package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"endurance-planner/internal/analysis"
)

// ErrActivityNotFound is returned when an activity doesn't exist
var ErrActivityNotFound = errors.New("activity not found")

const activityColumns = `id, athlete_id, name, type, start_date,
	distance, moving_time, elapsed_time, total_elevation_gain,
	average_speed, average_heartrate, max_heartrate, average_watts, has_heartrate`

// UpsertActivity inserts or updates an activity
func (db *DB) UpsertActivity(ctx context.Context, a *Activity) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO activities (`+activityColumns+`, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			athlete_id = excluded.athlete_id,
			name = excluded.name,
			type = excluded.type,
			start_date = excluded.start_date,
			distance = excluded.distance,
			moving_time = excluded.moving_time,
			elapsed_time = excluded.elapsed_time,
			total_elevation_gain = excluded.total_elevation_gain,
			average_speed = excluded.average_speed,
			average_heartrate = excluded.average_heartrate,
			max_heartrate = excluded.max_heartrate,
			average_watts = excluded.average_watts,
			has_heartrate = excluded.has_heartrate,
			updated_at = CURRENT_TIMESTAMP
	`,
		a.ID, a.AthleteID, a.Name, a.Type, a.StartDate.UTC().Format(time.RFC3339),
		a.Distance, a.MovingTime, a.ElapsedTime, a.TotalElevationGain,
		a.AverageSpeed, a.AverageHeartrate, a.MaxHeartrate, a.AverageWatts, boolToInt(a.HasHeartrate),
	)
	return err
}

// GetActivity retrieves an activity by ID
func (db *DB) GetActivity(ctx context.Context, id int64) (*Activity, error) {
	row := db.QueryRowContext(ctx, `SELECT `+activityColumns+` FROM activities WHERE id = ?`, id)

	a, err := scanActivity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrActivityNotFound
	}
	return a, err
}

// ListActivities returns an athlete's activities, newest first
func (db *DB) ListActivities(ctx context.Context, athleteID string, limit, offset int) ([]Activity, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+activityColumns+`
		FROM activities
		WHERE athlete_id = ?
		ORDER BY start_date DESC
		LIMIT ? OFFSET ?
	`, athleteID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanActivities(rows)
}

// CountActivities returns the number of activities stored for an athlete
func (db *DB) CountActivities(ctx context.Context, athleteID string) (int, error) {
	var count int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM activities WHERE athlete_id = ?", athleteID).Scan(&count)
	return count, err
}

// FetchActivities returns the athlete's history since a date as engine
// samples, oldest first.
func (db *DB) FetchActivities(ctx context.Context, athleteID string, since time.Time) ([]analysis.Sample, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+activityColumns+`
		FROM activities
		WHERE athlete_id = ? AND start_date >= ?
		ORDER BY start_date ASC
	`, athleteID, since.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("querying activities: %w", err)
	}
	defer rows.Close()

	activities, err := scanActivities(rows)
	if err != nil {
		return nil, err
	}

	samples := make([]analysis.Sample, len(activities))
	for i := range activities {
		samples[i] = activities[i].Sample()
	}
	return samples, nil
}

// SamplesByAthlete returns every athlete's history since a date. The cohort
// classifier clusters over it.
func (db *DB) SamplesByAthlete(ctx context.Context, since time.Time) (map[string][]analysis.Sample, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+activityColumns+`
		FROM activities
		WHERE start_date >= ?
		ORDER BY athlete_id, start_date
	`, since.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("querying cohort activities: %w", err)
	}
	defer rows.Close()

	activities, err := scanActivities(rows)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]analysis.Sample)
	for i := range activities {
		a := &activities[i]
		out[a.AthleteID] = append(out[a.AthleteID], a.Sample())
	}
	return out, nil
}

// Sample converts the activity into the engine's input record.
func (a *Activity) Sample() analysis.Sample {
	s := analysis.Sample{
		Date:            a.StartDate,
		DistanceMeters:  a.Distance,
		DurationMinutes: float64(a.MovingTime) / 60,
		Kind:            a.Type,
	}
	if a.AverageHeartrate != nil {
		s.AvgHeartRate = *a.AverageHeartrate
	}
	if a.MaxHeartrate != nil {
		s.MaxHeartRate = *a.MaxHeartrate
	}
	return s
}

type scanner interface {
	Scan(dest ...any) error
}

func scanActivity(row scanner) (*Activity, error) {
	var a Activity
	var startDate string
	var hasHR int

	err := row.Scan(
		&a.ID, &a.AthleteID, &a.Name, &a.Type, &startDate,
		&a.Distance, &a.MovingTime, &a.ElapsedTime, &a.TotalElevationGain,
		&a.AverageSpeed, &a.AverageHeartrate, &a.MaxHeartrate, &a.AverageWatts, &hasHR,
	)
	if err != nil {
		return nil, err
	}

	a.StartDate, err = time.Parse(time.RFC3339, startDate)
	if err != nil {
		return nil, fmt.Errorf("parsing start_date %q: %w", startDate, err)
	}
	a.HasHeartrate = hasHR == 1

	return &a, nil
}

func scanActivities(rows *sql.Rows) ([]Activity, error) {
	var activities []Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, *a)
	}
	return activities, rows.Err()
}
