package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"endurance-planner/internal/analysis"
)

// ErrAthleteNotFound is returned when an athlete doesn't exist
var ErrAthleteNotFound = errors.New("athlete not found")

// UpsertAthlete inserts an athlete or fills in attributes. A nil attribute
// never clears a stored one.
func (db *DB) UpsertAthlete(ctx context.Context, a *Athlete) error {
	var birth *string
	if a.BirthDate != nil {
		s := a.BirthDate.Format(dateLayout)
		birth = &s
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO athletes (id, name, birth_date, gender, weight_kg, ftp_watts, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			name = CASE WHEN excluded.name = '' THEN athletes.name ELSE excluded.name END,
			birth_date = COALESCE(excluded.birth_date, athletes.birth_date),
			gender = COALESCE(excluded.gender, athletes.gender),
			weight_kg = COALESCE(excluded.weight_kg, athletes.weight_kg),
			ftp_watts = COALESCE(excluded.ftp_watts, athletes.ftp_watts),
			updated_at = CURRENT_TIMESTAMP
	`, a.ID, a.Name, birth, a.Gender, a.WeightKg, a.FTPWatts)
	return err
}

// GetAthlete retrieves an athlete by ID
func (db *DB) GetAthlete(ctx context.Context, id string) (*Athlete, error) {
	var a Athlete
	var birth sql.NullString
	var updated string

	err := db.QueryRowContext(ctx, `
		SELECT id, name, birth_date, gender, weight_kg, ftp_watts, updated_at
		FROM athletes
		WHERE id = ?
	`, id).Scan(&a.ID, &a.Name, &birth, &a.Gender, &a.WeightKg, &a.FTPWatts, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAthleteNotFound
	}
	if err != nil {
		return nil, err
	}

	if birth.Valid {
		t, err := time.Parse(dateLayout, birth.String)
		if err != nil {
			return nil, fmt.Errorf("parsing birth_date %q: %w", birth.String, err)
		}
		a.BirthDate = &t
	}
	a.UpdatedAt, _ = time.Parse(time.DateTime, updated)
	return &a, nil
}

// GetBiometrics returns the athlete's stored attributes. An unknown athlete
// has empty biometrics.
func (db *DB) GetBiometrics(ctx context.Context, athleteID string) (analysis.Biometrics, error) {
	a, err := db.GetAthlete(ctx, athleteID)
	if errors.Is(err, ErrAthleteNotFound) {
		return analysis.Biometrics{}, nil
	}
	if err != nil {
		return analysis.Biometrics{}, fmt.Errorf("loading athlete: %w", err)
	}
	return a.Biometrics(), nil
}

// Biometrics converts the nullable columns into engine input.
func (a *Athlete) Biometrics() analysis.Biometrics {
	b := analysis.Biometrics{BirthDate: a.BirthDate}
	if a.Gender != nil {
		b.Gender = *a.Gender
	}
	if a.WeightKg != nil {
		b.WeightKg = *a.WeightKg
	}
	if a.FTPWatts != nil {
		b.FTPWatts = *a.FTPWatts
	}
	return b
}

// ListAthletes returns every athlete ordered by ID
func (db *DB) ListAthletes(ctx context.Context) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT id FROM athletes ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
