package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config represents the application configuration
type Config struct {
	Strava     StravaConfig     `json:"strava"`
	Athlete    AthleteConfig    `json:"athlete"`
	Display    DisplayConfig    `json:"display"`
	Engine     EngineConfig     `json:"engine"`
	Classifier ClassifierConfig `json:"classifier"`
	Log        LogConfig        `json:"log"`
	Metrics    MetricsConfig    `json:"metrics"`
}

// StravaConfig holds Strava API credentials
type StravaConfig struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	CallbackPort int    `json:"callback_port,omitempty"`
}

// AthleteConfig holds biometrics that take precedence over synced values
type AthleteConfig struct {
	BirthDate string  `json:"birth_date,omitempty"` // YYYY-MM-DD
	Gender    string  `json:"gender,omitempty"`     // "male" or "female"
	WeightKg  float64 `json:"weight_kg,omitempty"`
	FTPWatts  float64 `json:"ftp_watts,omitempty"`
}

// DisplayConfig holds display preferences
type DisplayConfig struct {
	DistanceUnit string `json:"distance_unit"`
	PaceUnit     string `json:"pace_unit"`
}

// EngineConfig tunes profiling
type EngineConfig struct {
	LookbackDays        int `json:"lookback_days"`
	ProfileCacheSize    int `json:"profile_cache_size"`
	ProfileCacheMinutes int `json:"profile_cache_minutes"`
	CommitConcurrency   int `json:"commit_concurrency"`
}

// CacheTTL returns the profile cache lifetime
func (e EngineConfig) CacheTTL() time.Duration {
	return time.Duration(e.ProfileCacheMinutes) * time.Minute
}

// ClassifierConfig configures the tier classification chain
type ClassifierConfig struct {
	URL            string `json:"url,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	LookbackDays   int    `json:"lookback_days"`
	CohortEnabled  bool   `json:"cohort_enabled"`
}

// Timeout returns the per-provider timeout
func (c ClassifierConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LogConfig configures the structured logger
type LogConfig struct {
	Level      string `json:"level"`
	Format     string `json:"format"`
	File       string `json:"file,omitempty"`
	MaxSizeMB  int    `json:"max_size_mb,omitempty"`
	MaxBackups int    `json:"max_backups,omitempty"`
}

// MetricsConfig configures the prometheus listener. Empty Addr disables it.
type MetricsConfig struct {
	Addr string `json:"addr,omitempty"`
}

// ErrNoConfig is returned when the config file doesn't exist
var ErrNoConfig = errors.New("config file not found")

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Display: DisplayConfig{
			DistanceUnit: "km",
			PaceUnit:     "min/km",
		},
		Engine: EngineConfig{
			LookbackDays:        180,
			ProfileCacheSize:    128,
			ProfileCacheMinutes: 15,
			CommitConcurrency:   4,
		},
		Classifier: ClassifierConfig{
			TimeoutSeconds: 3,
			LookbackDays:   56,
			CohortEnabled:  true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the configuration from ~/.endurance/config.json
func Load() (*Config, error) {
	path, err := getConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads a configuration file and fills in defaults
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNoConfig
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// decode over the defaults so booleans like cohort_enabled keep their
	// default when the key is absent
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	cfg.applyDefaults()

	if cfg.Log.File == "" {
		if dir, err := GetConfigDir(); err == nil {
			cfg.Log.File = filepath.Join(dir, "planner.log")
		}
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Display.DistanceUnit == "" {
		c.Display.DistanceUnit = defaults.Display.DistanceUnit
	}
	if c.Display.PaceUnit == "" {
		c.Display.PaceUnit = defaults.Display.PaceUnit
	}
	if c.Engine.LookbackDays <= 0 {
		c.Engine.LookbackDays = defaults.Engine.LookbackDays
	}
	if c.Engine.ProfileCacheSize <= 0 {
		c.Engine.ProfileCacheSize = defaults.Engine.ProfileCacheSize
	}
	if c.Engine.ProfileCacheMinutes <= 0 {
		c.Engine.ProfileCacheMinutes = defaults.Engine.ProfileCacheMinutes
	}
	if c.Engine.CommitConcurrency <= 0 {
		c.Engine.CommitConcurrency = defaults.Engine.CommitConcurrency
	}
	if c.Classifier.TimeoutSeconds <= 0 {
		c.Classifier.TimeoutSeconds = defaults.Classifier.TimeoutSeconds
	}
	if c.Classifier.LookbackDays <= 0 {
		c.Classifier.LookbackDays = defaults.Classifier.LookbackDays
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = defaults.Log.Format
	}
}

// Save writes the configuration to ~/.endurance/config.json
func Save(cfg *Config) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(path, cfg)
}

// SaveFile writes the configuration to path
func SaveFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// CreateExample creates an example config file if none exists
func CreateExample() error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil {
		return nil // Config exists, don't overwrite
	}

	example := DefaultConfig()
	example.Strava = StravaConfig{
		ClientID:     "YOUR_CLIENT_ID",
		ClientSecret: "YOUR_CLIENT_SECRET",
	}

	return Save(&example)
}

// Validate checks if the config has required fields
func (c *Config) Validate() error {
	if c.Strava.ClientID == "" || c.Strava.ClientID == "YOUR_CLIENT_ID" {
		return errors.New("strava.client_id is required - get it from https://www.strava.com/settings/api")
	}
	if c.Strava.ClientSecret == "" || c.Strava.ClientSecret == "YOUR_CLIENT_SECRET" {
		return errors.New("strava.client_secret is required - get it from https://www.strava.com/settings/api")
	}

	if c.Display.DistanceUnit != "" && c.Display.DistanceUnit != "km" && c.Display.DistanceUnit != "mi" {
		return fmt.Errorf("display.distance_unit must be \"km\" or \"mi\", got %q", c.Display.DistanceUnit)
	}
	if c.Display.PaceUnit != "" && c.Display.PaceUnit != "min/km" && c.Display.PaceUnit != "min/mi" {
		return fmt.Errorf("display.pace_unit must be \"min/km\" or \"min/mi\", got %q", c.Display.PaceUnit)
	}

	if c.Athlete.BirthDate != "" {
		if _, err := time.Parse("2006-01-02", c.Athlete.BirthDate); err != nil {
			return fmt.Errorf("athlete.birth_date must be YYYY-MM-DD, got %q", c.Athlete.BirthDate)
		}
	}
	if g := c.Athlete.Gender; g != "" && g != "male" && g != "female" {
		return fmt.Errorf("athlete.gender must be \"male\" or \"female\", got %q", g)
	}
	if c.Athlete.WeightKg < 0 || c.Athlete.FTPWatts < 0 {
		return errors.New("athlete.weight_kg and athlete.ftp_watts must not be negative")
	}

	if f := c.Log.Format; f != "" && f != "text" && f != "json" {
		return fmt.Errorf("log.format must be \"text\" or \"json\", got %q", f)
	}

	return nil
}

// ParsedBirthDate parses the configured birth date, if any
func (a AthleteConfig) ParsedBirthDate() *time.Time {
	if a.BirthDate == "" {
		return nil
	}
	t, err := time.ParseInLocation("2006-01-02", a.BirthDate, time.Local)
	if err != nil {
		return nil
	}
	return &t
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".endurance"), nil
}
