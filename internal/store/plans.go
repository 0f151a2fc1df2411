package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"endurance-planner/internal/periodization"
	"endurance-planner/internal/workout"
)

var (
	// ErrPlanNotFound is returned when a plan doesn't exist
	ErrPlanNotFound = errors.New("plan not found")

	// ErrActivePlanExists is returned when the athlete already has a
	// pending or active plan
	ErrActivePlanExists = errors.New("athlete already has an active plan")

	// ErrInvalidTransition is returned for a status change the lifecycle
	// does not allow
	ErrInvalidTransition = errors.New("invalid plan status transition")
)

// transitions lists the states each status may be entered from.
var transitions = map[PlanStatus][]PlanStatus{
	PlanActive:    {PlanPending},
	PlanCompleted: {PlanActive},
	PlanCancelled: {PlanPending, PlanActive},
}

const planColumns = `id, athlete_id, name, goal, sport, tier, start_date, end_date, weeks,
	target_event_date, target_time_minutes, zones, status, created_at`

// HasActivePlan reports whether the athlete has a pending or active plan
func (db *DB) HasActivePlan(ctx context.Context, athleteID string) (bool, error) {
	var n int
	err := db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM training_plans
		WHERE athlete_id = ? AND status IN ('pending', 'active')
	`, athleteID).Scan(&n)
	return n > 0, err
}

// CreatePlan inserts a plan in the pending state. A second pending or
// active plan for the same athlete fails with ErrActivePlanExists.
func (db *DB) CreatePlan(ctx context.Context, p *Plan) error {
	zonesJSON, err := json.Marshal(p.Zones)
	if err != nil {
		return fmt.Errorf("encoding zones: %w", err)
	}
	p.Status = PlanPending

	_, err = db.ExecContext(ctx, `
		INSERT INTO training_plans (
			id, athlete_id, name, goal, sport, tier, start_date, end_date, weeks,
			target_event_date, target_time_minutes, zones, status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		p.ID, p.AthleteID, p.Name, p.Goal, p.Sport, p.Tier,
		p.StartDate.Format(dateLayout), p.EndDate.Format(dateLayout), p.Weeks,
		formatDatePtr(p.TargetEventDate), p.TargetTimeMinutes, string(zonesJSON), p.Status,
	)
	if isUniqueViolation(err) && strings.Contains(err.Error(), "athlete_id") {
		return ErrActivePlanExists
	}
	if err != nil {
		return fmt.Errorf("inserting plan: %w", err)
	}
	return nil
}

// SetPlanStatus moves a plan along its lifecycle.
func (db *DB) SetPlanStatus(ctx context.Context, id string, to PlanStatus) error {
	from, ok := transitions[to]
	if !ok {
		return fmt.Errorf("%w: cannot enter %q", ErrInvalidTransition, to)
	}

	args := []any{to, id}
	placeholders := make([]string, len(from))
	for i, s := range from {
		placeholders[i] = "?"
		args = append(args, s)
	}

	result, err := db.ExecContext(ctx, `
		UPDATE training_plans
		SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status IN (`+strings.Join(placeholders, ",")+`)
	`, args...)
	if isUniqueViolation(err) {
		return ErrActivePlanExists
	}
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows > 0 {
		return nil
	}

	current, err := db.GetPlan(ctx, id)
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, to)
}

// GetPlan retrieves a plan by ID
func (db *DB) GetPlan(ctx context.Context, id string) (*Plan, error) {
	row := db.QueryRowContext(ctx, `SELECT `+planColumns+` FROM training_plans WHERE id = ?`, id)
	p, err := scanPlan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlanNotFound
	}
	return p, err
}

// ActivePlan returns the athlete's pending or active plan
func (db *DB) ActivePlan(ctx context.Context, athleteID string) (*Plan, error) {
	row := db.QueryRowContext(ctx, `
		SELECT `+planColumns+`
		FROM training_plans
		WHERE athlete_id = ? AND status IN ('pending', 'active')
	`, athleteID)
	p, err := scanPlan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlanNotFound
	}
	return p, err
}

// ListPlans returns the athlete's plans, newest first
func (db *DB) ListPlans(ctx context.Context, athleteID string) ([]Plan, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+planColumns+`
		FROM training_plans
		WHERE athlete_id = ?
		ORDER BY created_at DESC, start_date DESC
	`, athleteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, *p)
	}
	return plans, rows.Err()
}

// SavePhases replaces the plan's weekly phases
func (db *DB) SavePhases(ctx context.Context, planID string, phases []periodization.Phase) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM plan_phases WHERE plan_id = ?`, planID); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO plan_phases (plan_id, week, focus, block_week, target_stress)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, ph := range phases {
		if _, err := stmt.ExecContext(ctx, planID, ph.Week, string(ph.Focus), ph.BlockWeek, ph.TargetStress); err != nil {
			return fmt.Errorf("inserting phase %d: %w", ph.Week, err)
		}
	}
	return tx.Commit()
}

// ListPhases returns the plan's phases in week order
func (db *DB) ListPhases(ctx context.Context, planID string) ([]periodization.Phase, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT week, focus, block_week, target_stress
		FROM plan_phases
		WHERE plan_id = ?
		ORDER BY week
	`, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var phases []periodization.Phase
	for rows.Next() {
		var ph periodization.Phase
		var focus string
		if err := rows.Scan(&ph.Week, &focus, &ph.BlockWeek, &ph.TargetStress); err != nil {
			return nil, err
		}
		ph.Focus = periodization.Focus(focus)
		phases = append(phases, ph)
	}
	return phases, rows.Err()
}

// CreateWorkouts inserts the plan's sessions in one transaction
func (db *DB) CreateWorkouts(ctx context.Context, planID string, workouts []workout.Workout) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO planned_workouts (
			plan_id, week, date, type, title, description,
			duration_minutes, target_zone, stress, segments
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, w := range workouts {
		segments, err := json.Marshal(w.Segments)
		if err != nil {
			return fmt.Errorf("encoding segments: %w", err)
		}
		if _, err := stmt.ExecContext(ctx,
			planID, w.Week, w.Date.Format(dateLayout), string(w.Type), w.Title, w.Description,
			w.DurationMinutes, w.TargetZone, w.Stress, string(segments),
		); err != nil {
			return fmt.Errorf("inserting workout %s: %w", w.Date.Format(dateLayout), err)
		}
	}
	return tx.Commit()
}

// ListWorkouts returns the plan's sessions in date order
func (db *DB) ListWorkouts(ctx context.Context, planID string) ([]workout.Workout, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT week, date, type, title, description, duration_minutes, target_zone, stress, segments
		FROM planned_workouts
		WHERE plan_id = ?
		ORDER BY date
	`, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []workout.Workout
	for rows.Next() {
		var w workout.Workout
		var date, typ, segments string
		var zone sql.NullString
		if err := rows.Scan(&w.Week, &date, &typ, &w.Title, &w.Description,
			&w.DurationMinutes, &zone, &w.Stress, &segments); err != nil {
			return nil, err
		}
		if w.Date, err = parseDate(date); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(segments), &w.Segments); err != nil {
			return nil, fmt.Errorf("decoding segments: %w", err)
		}
		w.Type = workout.Type(typ)
		w.TargetZone = zone.String
		out = append(out, w)
	}
	return out, rows.Err()
}

func scanPlan(row scanner) (*Plan, error) {
	var p Plan
	var start, end, created, status string
	var event, zonesJSON sql.NullString

	err := row.Scan(&p.ID, &p.AthleteID, &p.Name, &p.Goal, &p.Sport, &p.Tier, &start, &end, &p.Weeks,
		&event, &p.TargetTimeMinutes, &zonesJSON, &status, &created)
	if err != nil {
		return nil, err
	}

	if p.StartDate, err = parseDate(start); err != nil {
		return nil, err
	}
	if p.EndDate, err = parseDate(end); err != nil {
		return nil, err
	}
	if event.Valid {
		t, err := parseDate(event.String)
		if err != nil {
			return nil, err
		}
		p.TargetEventDate = &t
	}
	if zonesJSON.Valid && zonesJSON.String != "" {
		if err := json.Unmarshal([]byte(zonesJSON.String), &p.Zones); err != nil {
			return nil, fmt.Errorf("decoding zones: %w", err)
		}
	}
	p.Status = PlanStatus(status)
	p.CreatedAt, _ = time.Parse(time.DateTime, created)
	return &p, nil
}

// parseDate reads a stored calendar date as local midnight.
func parseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return t, nil
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}
