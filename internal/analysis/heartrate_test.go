package analysis

import (
	"testing"
	"time"
)

func TestSuggestMaxHR(t *testing.T) {
	birth := time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		bio      Biometrics
		observed int
		now      time.Time
		want     int
	}{
		{
			name: "age-based, day before birthday",
			bio:  Biometrics{BirthDate: &birth},
			now:  time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC), // age 33
			want: 185,
		},
		{
			name: "age-based, on birthday",
			bio:  Biometrics{BirthDate: &birth},
			now:  time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), // age 34
			want: 184,
		},
		{
			name:     "observed above formula wins",
			bio:      Biometrics{BirthDate: &birth},
			observed: 196,
			now:      time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
			want:     196,
		},
		{
			name:     "observed below formula is ignored",
			bio:      Biometrics{BirthDate: &birth},
			observed: 170,
			now:      time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
			want:     184,
		},
		{
			name:     "no birth date uses observed only",
			observed: 172,
			now:      testNow,
			want:     172,
		},
		{
			name: "no birth date and no history",
			now:  testNow,
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SuggestMaxHR(tt.bio, tt.observed, tt.now)
			if got != tt.want {
				t.Errorf("SuggestMaxHR() = %d, want %d", got, tt.want)
			}
			if tt.observed > 0 && got < tt.observed {
				t.Errorf("SuggestMaxHR() = %d below observed %d", got, tt.observed)
			}
		})
	}
}

func TestBiometricsAge(t *testing.T) {
	birth := time.Date(2000, 2, 29, 0, 0, 0, 0, time.UTC)
	bio := Biometrics{BirthDate: &birth}

	if age, ok := bio.Age(time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC)); !ok || age != 23 {
		t.Errorf("Age() = %d, %v, want 23, true", age, ok)
	}
	if age, ok := bio.Age(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)); !ok || age != 24 {
		t.Errorf("Age() = %d, %v, want 24, true", age, ok)
	}
	if _, ok := (Biometrics{}).Age(testNow); ok {
		t.Error("Age() without birth date should not be ok")
	}
}
