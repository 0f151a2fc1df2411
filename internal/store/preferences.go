package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"endurance-planner/internal/analysis"
)

// ErrSnapshotNotFound is returned when no profile has been cached
var ErrSnapshotNotFound = errors.New("profile snapshot not found")

// SavePreferences stores the scheduling inputs of a plan
func (db *DB) SavePreferences(ctx context.Context, p Preferences) error {
	estimated, err := json.Marshal(p.EstimatedTimes)
	if err != nil {
		return fmt.Errorf("encoding estimated times: %w", err)
	}

	var longDay *int
	if p.LongDay != nil {
		d := int(*p.LongDay)
		longDay = &d
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO plan_preferences (
			plan_id, frequency, days, long_day, start_date,
			goal_time, target_time_minutes, target_source, estimated_times
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(plan_id) DO UPDATE SET
			frequency = excluded.frequency,
			days = excluded.days,
			long_day = excluded.long_day,
			start_date = excluded.start_date,
			goal_time = excluded.goal_time,
			target_time_minutes = excluded.target_time_minutes,
			target_source = excluded.target_source,
			estimated_times = excluded.estimated_times
	`, p.PlanID, p.Frequency, formatDays(p.Days), longDay, p.StartDate.Format(dateLayout),
		p.GoalTime, p.TargetTimeMinutes, p.TargetSource, string(estimated))
	return err
}

// GetPreferences retrieves the scheduling inputs of a plan
func (db *DB) GetPreferences(ctx context.Context, planID string) (*Preferences, error) {
	var p Preferences
	var days, start string
	var longDay sql.NullInt64
	var goalTime, source, estimated sql.NullString

	err := db.QueryRowContext(ctx, `
		SELECT plan_id, frequency, days, long_day, start_date,
			goal_time, target_time_minutes, target_source, estimated_times
		FROM plan_preferences
		WHERE plan_id = ?
	`, planID).Scan(&p.PlanID, &p.Frequency, &days, &longDay, &start,
		&goalTime, &p.TargetTimeMinutes, &source, &estimated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, err
	}

	if p.Days, err = parseDays(days); err != nil {
		return nil, err
	}
	if longDay.Valid {
		d := time.Weekday(longDay.Int64)
		p.LongDay = &d
	}
	if p.StartDate, err = parseDate(start); err != nil {
		return nil, err
	}
	p.GoalTime = goalTime.String
	p.TargetSource = source.String
	if estimated.Valid && estimated.String != "" {
		if err := json.Unmarshal([]byte(estimated.String), &p.EstimatedTimes); err != nil {
			return nil, fmt.Errorf("decoding estimated times: %w", err)
		}
	}
	return &p, nil
}

// SaveHealthDeclaration stores a health declaration and returns its ID
func (db *DB) SaveHealthDeclaration(ctx context.Context, h HealthRecord) (int64, error) {
	answers, err := json.Marshal(h.Answers)
	if err != nil {
		return 0, fmt.Errorf("encoding answers: %w", err)
	}
	declared := h.DeclaredAt
	if declared.IsZero() {
		declared = time.Now()
	}

	var planID *string
	if h.PlanID != "" {
		planID = &h.PlanID
	}

	result, err := db.ExecContext(ctx, `
		INSERT INTO health_declarations (
			athlete_id, plan_id, answers, additional_info, accepted, eligible, declared_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`, h.AthleteID, planID, string(answers), h.AdditionalInfo,
		boolToInt(h.Accepted), boolToInt(h.Eligible), declared.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// LatestHealthDeclaration returns the athlete's most recent declaration
func (db *DB) LatestHealthDeclaration(ctx context.Context, athleteID string) (*HealthRecord, error) {
	var h HealthRecord
	var planID, info sql.NullString
	var answers, declared string
	var accepted, eligible int

	err := db.QueryRowContext(ctx, `
		SELECT id, athlete_id, plan_id, answers, additional_info, accepted, eligible, declared_at
		FROM health_declarations
		WHERE athlete_id = ?
		ORDER BY declared_at DESC, id DESC
		LIMIT 1
	`, athleteID).Scan(&h.ID, &h.AthleteID, &planID, &answers, &info, &accepted, &eligible, &declared)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(answers), &h.Answers); err != nil {
		return nil, fmt.Errorf("decoding answers: %w", err)
	}
	h.PlanID = planID.String
	h.AdditionalInfo = info.String
	h.Accepted = accepted == 1
	h.Eligible = eligible == 1
	h.DeclaredAt, err = time.Parse(time.RFC3339, declared)
	if err != nil {
		return nil, fmt.Errorf("parsing declared_at %q: %w", declared, err)
	}
	return &h, nil
}

// SaveProfileSnapshot caches the latest computed profile for an athlete
func (db *DB) SaveProfileSnapshot(ctx context.Context, athleteID string, p analysis.Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO profile_snapshots (athlete_id, profile, computed_at)
		VALUES (?, ?, ?)
		ON CONFLICT(athlete_id) DO UPDATE SET
			profile = excluded.profile,
			computed_at = excluded.computed_at
	`, athleteID, string(data), p.ComputedAt.UTC().Format(time.RFC3339))
	return err
}

// LatestProfileSnapshot returns the cached profile for an athlete
func (db *DB) LatestProfileSnapshot(ctx context.Context, athleteID string) (analysis.Profile, error) {
	var data string
	err := db.QueryRowContext(ctx, `
		SELECT profile FROM profile_snapshots WHERE athlete_id = ?
	`, athleteID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return analysis.Profile{}, ErrSnapshotNotFound
	}
	if err != nil {
		return analysis.Profile{}, err
	}

	var p analysis.Profile
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return analysis.Profile{}, fmt.Errorf("decoding profile: %w", err)
	}
	return p, nil
}

// DeleteProfileSnapshot drops the cached profile so the next read recomputes
func (db *DB) DeleteProfileSnapshot(ctx context.Context, athleteID string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM profile_snapshots WHERE athlete_id = ?`, athleteID)
	return err
}

func formatDays(days []time.Weekday) string {
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(int(d))
	}
	return strings.Join(parts, ",")
}

func parseDays(s string) ([]time.Weekday, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	days := make([]time.Weekday, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > 6 {
			return nil, fmt.Errorf("parsing days %q", s)
		}
		days[i] = time.Weekday(n)
	}
	return days, nil
}
