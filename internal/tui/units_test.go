package tui

import (
	"testing"

	"endurance-planner/internal/config"
)

func TestUnits(t *testing.T) {
	metric := NewUnits(config.DisplayConfig{DistanceUnit: "km", PaceUnit: "min/km"})
	imperial := NewUnits(config.DisplayConfig{DistanceUnit: "mi", PaceUnit: "min/mi"})

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"metric distance", metric.FormatKm(21.1), "21.1 km"},
		{"imperial distance", imperial.FormatKm(16.09344), "10.0 mi"},
		{"metric pace", metric.FormatPace(5.5), "5:30/km"},
		{"imperial pace", imperial.FormatPace(5), "8:03/mi"},
		{"no pace", metric.FormatPace(0), "-"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}
