package strava

import "time"

// Activity represents a Strava activity from the API
type Activity struct {
	ID                 int64       `json:"id"`
	Athlete            AthleteMeta `json:"athlete"`
	Name               string      `json:"name"`
	Type               string      `json:"type"`
	SportType          string      `json:"sport_type"`
	StartDate          time.Time   `json:"start_date"`
	Distance           float64     `json:"distance"`             // meters
	MovingTime         int         `json:"moving_time"`          // seconds
	ElapsedTime        int         `json:"elapsed_time"`         // seconds
	TotalElevationGain float64     `json:"total_elevation_gain"` // meters
	AverageSpeed       float64     `json:"average_speed"`        // m/s
	AverageHeartrate   float64     `json:"average_heartrate"`    // bpm
	MaxHeartrate       float64     `json:"max_heartrate"`        // bpm
	AverageWatts       float64     `json:"average_watts"`
	DeviceWatts        bool        `json:"device_watts"`
	HasHeartrate       bool        `json:"has_heartrate"`
}

// AthleteMeta is the minimal athlete reference embedded in activities
type AthleteMeta struct {
	ID int64 `json:"id"`
}

// Athlete is the authenticated athlete from /athlete
type Athlete struct {
	ID        int64   `json:"id"`
	Firstname string  `json:"firstname"`
	Lastname  string  `json:"lastname"`
	Sex       string  `json:"sex"`    // "M", "F" or empty
	Weight    float64 `json:"weight"` // kg, 0 when unset
	FTP       *int    `json:"ftp"`    // watts, null when unset
}

// Gender maps Strava's sex field to "male" or "female".
func (a *Athlete) Gender() string {
	switch a.Sex {
	case "M":
		return "male"
	case "F":
		return "female"
	default:
		return ""
	}
}

// Kind returns the most specific activity type Strava reported.
func (a *Activity) Kind() string {
	if a.SportType != "" {
		return a.SportType
	}
	return a.Type
}
