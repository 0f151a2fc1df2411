package store

import (
	"time"

	"endurance-planner/internal/zones"
)

// Auth represents OAuth tokens for Strava API access
type Auth struct {
	AthleteID    int64     `db:"athlete_id"`
	AccessToken  string    `db:"access_token"`
	RefreshToken string    `db:"refresh_token"`
	ExpiresAt    time.Time `db:"expires_at"`
}

// Athlete is a person plans are written for.
type Athlete struct {
	ID        string     `db:"id"`
	Name      string     `db:"name"`
	BirthDate *time.Time `db:"birth_date"` // nullable
	Gender    *string    `db:"gender"`     // nullable
	WeightKg  *float64   `db:"weight_kg"`  // nullable
	FTPWatts  *float64   `db:"ftp_watts"`  // nullable
	UpdatedAt time.Time  `db:"updated_at"`
}

// Activity represents a synced activity summary
type Activity struct {
	ID                 int64     `db:"id"`
	AthleteID          string    `db:"athlete_id"`
	Name               string    `db:"name"`
	Type               string    `db:"type"`
	StartDate          time.Time `db:"start_date"`
	Distance           float64   `db:"distance"`     // meters
	MovingTime         int       `db:"moving_time"`  // seconds
	ElapsedTime        int       `db:"elapsed_time"` // seconds
	TotalElevationGain float64   `db:"total_elevation_gain"`
	AverageSpeed       float64   `db:"average_speed"`     // m/s
	AverageHeartrate   *float64  `db:"average_heartrate"` // nullable
	MaxHeartrate       *float64  `db:"max_heartrate"`     // nullable
	AverageWatts       *float64  `db:"average_watts"`     // nullable
	HasHeartrate       bool      `db:"has_heartrate"`
}

// PlanStatus is the lifecycle state of a training plan.
type PlanStatus string

const (
	PlanPending   PlanStatus = "pending"
	PlanActive    PlanStatus = "active"
	PlanCompleted PlanStatus = "completed"
	PlanCancelled PlanStatus = "cancelled"
)

// Plan is a persisted training plan.
type Plan struct {
	ID                string      `db:"id"`
	AthleteID         string      `db:"athlete_id"`
	Name              string      `db:"name"`
	Goal              string      `db:"goal"`
	Sport             string      `db:"sport"`
	Tier              string      `db:"tier"`
	StartDate         time.Time   `db:"start_date"` // YYYY-MM-DD
	EndDate           time.Time   `db:"end_date"`   // YYYY-MM-DD
	Weeks             int         `db:"weeks"`
	TargetEventDate   *time.Time  `db:"target_event_date"`   // nullable
	TargetTimeMinutes *float64    `db:"target_time_minutes"` // nullable
	Zones             zones.Model `db:"zones"`               // JSON
	Status            PlanStatus  `db:"status"`
	CreatedAt         time.Time   `db:"created_at"`
}

// Preferences are the scheduling choices a plan was generated from.
type Preferences struct {
	PlanID            string            `db:"plan_id"`
	Frequency         int               `db:"frequency"`
	Days              []time.Weekday    `db:"days"` // comma separated
	LongDay           *time.Weekday     `db:"long_day"`
	StartDate         time.Time         `db:"start_date"`
	GoalTime          string            `db:"goal_time"`
	TargetTimeMinutes *float64          `db:"target_time_minutes"`
	TargetSource      string            `db:"target_source"`
	EstimatedTimes    map[string]string `db:"estimated_times"` // JSON
}

// HealthRecord is a persisted pre-participation health declaration.
type HealthRecord struct {
	ID             int64     `db:"id"`
	AthleteID      string    `db:"athlete_id"`
	PlanID         string    `db:"plan_id"`
	Answers        []bool    `db:"answers"` // JSON
	AdditionalInfo string    `db:"additional_info"`
	Accepted       bool      `db:"accepted"`
	Eligible       bool      `db:"eligible"`
	DeclaredAt     time.Time `db:"declared_at"`
}

const dateLayout = "2006-01-02"
