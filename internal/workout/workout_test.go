package workout

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"endurance-planner/internal/analysis"
	"endurance-planner/internal/periodization"
	"endurance-planner/internal/zones"
)

var monday = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func weekday(d time.Weekday) *time.Weekday {
	return &d
}

func TestSegmentTotalMinutes(t *testing.T) {
	tests := []struct {
		name string
		seg  Segment
		want int
	}{
		{"steady", Segment{Kind: SegmentSteady, Minutes: 40}, 40},
		{"intervals", Segment{Kind: SegmentInterval, Minutes: 15, Repeats: 3, RestMinutes: 5}, 55},
		{"single repeat", Segment{Kind: SegmentInterval, Minutes: 20, Repeats: 1, RestMinutes: 5}, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.seg.TotalMinutes(); got != tt.want {
				t.Errorf("TotalMinutes() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTemplateStress(t *testing.T) {
	// week 3: 3 % 3 = 0 -> 3x15min, 5 min rest
	ss := Build(TypeSweetSpot, 3)
	if ss.TotalMinutes() != 80 {
		t.Errorf("sweet spot minutes = %d, want 80", ss.TotalMinutes())
	}
	if ss.Stress() != 113 {
		t.Errorf("sweet spot stress = %d, want 113", ss.Stress())
	}

	endurance := Build(TypeEndurance, 1)
	if endurance.Stress() != 80 {
		t.Errorf("endurance stress = %d, want 80", endurance.Stress())
	}
}

func TestVariationsRotate(t *testing.T) {
	for typ := range variations {
		for week := 1; week < 12; week++ {
			a, b := Build(typ, week), Build(typ, week+1)
			if reflect.DeepEqual(a.Segments, b.Segments) {
				t.Errorf("%s: weeks %d and %d are identical", typ, week, week+1)
			}
		}
	}
}

func TestLongSessionProgression(t *testing.T) {
	tests := []struct {
		week    int
		ride    int
		longRun int
	}{
		{1, 90, 60},
		{2, 105, 65},
		{9, 210, 100},
		{19, 210, 150},
		{40, 210, 150},
	}
	for _, tt := range tests {
		if got := LongRideMinutes(tt.week); got != tt.ride {
			t.Errorf("LongRideMinutes(%d) = %d, want %d", tt.week, got, tt.ride)
		}
		if got := LongRunMinutes(tt.week); got != tt.longRun {
			t.Errorf("LongRunMinutes(%d) = %d, want %d", tt.week, got, tt.longRun)
		}
	}
}

func TestTemplatesForSubstitution(t *testing.T) {
	build := periodization.Phase{Week: 5, Focus: periodization.FocusBuild}

	cycling := TemplatesFor(SportCycling, build, analysis.TierAdvanced)
	if contains(cycling, TypeVO2Max) || !contains(cycling, TypeOverUnder) {
		t.Errorf("advanced cycling build = %v, want over/under instead of VO2max", cycling)
	}
	running := TemplatesFor(SportRunning, build, analysis.TierElite)
	if contains(running, TypeIntervals) || !contains(running, TypeHillRepeats) {
		t.Errorf("elite running build = %v, want hill repeats instead of intervals", running)
	}
	if got := TemplatesFor(SportCycling, build, analysis.TierBeginner); !contains(got, TypeVO2Max) {
		t.Errorf("beginner cycling build = %v, want VO2max", got)
	}
}

func TestPolarizedWeeks(t *testing.T) {
	even := periodization.Phase{Week: 6, Focus: periodization.FocusBuild}
	odd := periodization.Phase{Week: 7, Focus: periodization.FocusBuild}

	if !Polarized(even, analysis.TierAdvanced) {
		t.Error("advanced even build week should be polarized")
	}
	if Polarized(odd, analysis.TierAdvanced) {
		t.Error("odd build week should not be polarized")
	}
	if Polarized(even, analysis.TierIntermediate) {
		t.Error("intermediate athletes never get polarized weeks")
	}

	var quality int
	for _, typ := range TemplatesFor(SportCycling, even, analysis.TierElite) {
		if Build(typ, even.Week).Quality {
			quality++
		}
	}
	if quality != 1 {
		t.Errorf("polarized week has %d quality sessions, want 1", quality)
	}
}

func TestSynthesizeNeverExceedsDays(t *testing.T) {
	phase := periodization.Phase{Week: 1, Focus: periodization.FocusBuild, TargetStress: 300}
	for _, sport := range []Sport{SportRunning, SportCycling} {
		got := Synthesize(WeekRequest{
			Sport: sport,
			Phase: phase,
			Tier:  analysis.TierIntermediate,
			Zones: zones.Power(200),
			Start: monday,
			Days:  []time.Weekday{time.Tuesday, time.Saturday},
		})
		if len(got) > 2 {
			t.Errorf("%s: %d workouts for 2 days", sport, len(got))
		}
		assertDistinctDates(t, got)
	}
}

func TestSynthesizeDates(t *testing.T) {
	req := WeekRequest{
		Sport:   SportCycling,
		Phase:   periodization.Phase{Week: 2, Focus: periodization.FocusBase, TargetStress: 200},
		Tier:    analysis.TierBeginner,
		Zones:   zones.Power(200),
		Start:   monday,
		Days:    []time.Weekday{time.Saturday, time.Tuesday, time.Thursday},
		LongDay: weekday(time.Saturday),
	}
	got := Synthesize(req)
	if len(got) != 3 {
		t.Fatalf("Synthesize() returned %d workouts, want 3", len(got))
	}

	want := []time.Time{
		time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 13, 0, 0, 0, 0, time.UTC),
	}
	for i, w := range got {
		if !w.Date.Equal(want[i]) {
			t.Errorf("workout %d date = %s, want %s", i, w.Date.Format("2006-01-02"), want[i].Format("2006-01-02"))
		}
		if w.Week != 2 {
			t.Errorf("workout %d week = %d, want 2", i, w.Week)
		}
	}
	if got[2].Type != TypeLongRide {
		t.Errorf("Saturday workout = %s, want long ride", got[2].Type)
	}
}

func TestSynthesizeLongDayNotFirst(t *testing.T) {
	got := Synthesize(WeekRequest{
		Sport:   SportRunning,
		Phase:   periodization.Phase{Week: 1, Focus: periodization.FocusBase, TargetStress: 200},
		Tier:    analysis.TierBeginner,
		Zones:   zones.Pace(6.0),
		Start:   monday,
		Days:    []time.Weekday{time.Monday, time.Wednesday, time.Friday, time.Sunday},
		LongDay: weekday(time.Sunday),
		// only two sessions: the long run keeps Sunday, the other takes Monday
		Frequency: 2,
	})
	if len(got) != 2 {
		t.Fatalf("Synthesize() returned %d workouts, want 2", len(got))
	}
	if got[0].Date.Weekday() != time.Monday || got[1].Date.Weekday() != time.Sunday {
		t.Errorf("days = %s, %s, want Monday, Sunday", got[0].Date.Weekday(), got[1].Date.Weekday())
	}
	if got[1].Type != TypeLongRun {
		t.Errorf("Sunday workout = %s, want long run", got[1].Type)
	}
}

func TestSynthesizeMidweekStart(t *testing.T) {
	wednesday := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	got := Synthesize(WeekRequest{
		Sport: SportRunning,
		Phase: periodization.Phase{Week: 1, Focus: periodization.FocusRecovery, TargetStress: 120},
		Tier:  analysis.TierBeginner,
		Zones: zones.Pace(6.0),
		Start: wednesday,
		Days:  []time.Weekday{time.Monday, time.Wednesday},
	})
	if len(got) != 2 {
		t.Fatalf("Synthesize() returned %d workouts, want 2", len(got))
	}
	for _, w := range got {
		if w.Date.Before(wednesday) {
			t.Errorf("workout on %s before plan start", w.Date.Format("2006-01-02"))
		}
	}
	if got[0].Date.Day() != 3 || got[1].Date.Day() != 8 {
		t.Errorf("dates = %d, %d, want 3 and 8", got[0].Date.Day(), got[1].Date.Day())
	}
}

func TestSynthesizeDuplicateDays(t *testing.T) {
	got := Synthesize(WeekRequest{
		Sport: SportCycling,
		Phase: periodization.Phase{Week: 1, Focus: periodization.FocusBase},
		Start: monday,
		Days:  []time.Weekday{time.Tuesday, time.Tuesday, time.Tuesday},
	})
	if len(got) != 1 {
		t.Errorf("Synthesize() with one distinct day returned %d workouts", len(got))
	}
}

func TestSynthesizeNoDays(t *testing.T) {
	got := Synthesize(WeekRequest{
		Sport: SportCycling,
		Phase: periodization.Phase{Week: 1, Focus: periodization.FocusBase},
		Start: monday,
	})
	if got != nil {
		t.Errorf("Synthesize() without days = %v, want nil", got)
	}
}

func TestFillerScaling(t *testing.T) {
	req := WeekRequest{
		Sport:     SportCycling,
		Phase:     periodization.Phase{Week: 1, Focus: periodization.FocusBase, TargetStress: 192},
		Tier:      analysis.TierBeginner,
		Zones:     zones.Power(200),
		Start:     monday,
		Days:      []time.Weekday{time.Monday, time.Wednesday, time.Saturday},
		LongDay:   weekday(time.Saturday),
		Frequency: 3,
	}

	// long ride 98 + endurance 80 + sweet spot 99 is well above 192:
	// the endurance ride shrinks by the largest 5-minute step inside 20%
	low := endurance(t, Synthesize(req))
	if low.DurationMinutes != 70 {
		t.Errorf("scaled-down endurance = %d min, want 70", low.DurationMinutes)
	}

	req.Phase.TargetStress = 1000
	high := endurance(t, Synthesize(req))
	if high.DurationMinutes != 90 {
		t.Errorf("scaled-up endurance = %d min, want 90", high.DurationMinutes)
	}

	// long and quality sessions keep their shape
	for _, w := range Synthesize(req) {
		if w.Type == TypeLongRide && w.DurationMinutes != LongRideMinutes(1) {
			t.Errorf("long ride = %d min, want %d", w.DurationMinutes, LongRideMinutes(1))
		}
	}
}

func TestSynthesizeDeterministic(t *testing.T) {
	req := WeekRequest{
		Sport:   SportRunning,
		Phase:   periodization.Phase{Week: 9, Focus: periodization.FocusPeak, TargetStress: 400},
		Tier:    analysis.TierAdvanced,
		Zones:   zones.Pace(5.0),
		Floors:  zones.SafePaces(5.0),
		Start:   monday,
		Days:    []time.Weekday{time.Monday, time.Tuesday, time.Thursday, time.Saturday, time.Sunday},
		LongDay: weekday(time.Sunday),
	}
	if !reflect.DeepEqual(Synthesize(req), Synthesize(req)) {
		t.Error("Synthesize() is not deterministic")
	}
}

func TestDescriptions(t *testing.T) {
	got := Synthesize(WeekRequest{
		Sport: SportCycling,
		Phase: periodization.Phase{Week: 3, Focus: periodization.FocusBase},
		Tier:  analysis.TierBeginner,
		Zones: zones.Power(200),
		Start: monday,
		Days:  []time.Weekday{time.Monday, time.Tuesday, time.Wednesday},
	})
	var ss *Workout
	for i := range got {
		if got[i].Type == TypeSweetSpot {
			ss = &got[i]
		}
	}
	if ss == nil {
		t.Fatal("no sweet spot session in base week")
	}
	if !strings.Contains(ss.Description, "3 x 15 min @ 180 W (Z3)") {
		t.Errorf("description = %q, want the 180 W main set", ss.Description)
	}
	if ss.TargetZone != "Z3" {
		t.Errorf("TargetZone = %q, want Z3", ss.TargetZone)
	}
}

func TestRunningPacesRespectFloors(t *testing.T) {
	floors := zones.SafePaces(5.5)
	got := Synthesize(WeekRequest{
		Sport:  SportRunning,
		Phase:  periodization.Phase{Week: 1, Focus: periodization.FocusRecovery},
		Tier:   analysis.TierIntermediate,
		Zones:  zones.Pace(5.0),
		Floors: floors,
		Start:  monday,
		Days:   []time.Weekday{time.Monday},
	})
	if len(got) != 1 || got[0].Type != TypeEasy {
		t.Fatalf("recovery week first session = %v, want easy run", got)
	}
	// Z2 would allow 5:53/km, the easy floor slows it to 10K pace + 0.5 (6:14)
	want := zones.FormatPace(floors.Easy)
	if !strings.Contains(got[0].Segments[0].Target, want) {
		t.Errorf("easy target = %q, want fast end %s", got[0].Segments[0].Target, want)
	}
}

func TestDateForWeekday(t *testing.T) {
	tests := []struct {
		start time.Time
		week  int
		day   time.Weekday
		want  string
	}{
		{monday, 0, time.Monday, "2024-01-01"},
		{monday, 0, time.Sunday, "2024-01-07"},
		{monday, 3, time.Wednesday, "2024-01-24"},
		{time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), 0, time.Tuesday, "2024-01-09"},
	}
	for _, tt := range tests {
		if got := DateForWeekday(tt.start, tt.week, tt.day).Format("2006-01-02"); got != tt.want {
			t.Errorf("DateForWeekday(%s, %d, %s) = %s, want %s", tt.start.Format("2006-01-02"), tt.week, tt.day, got, tt.want)
		}
	}
}

func TestParseSport(t *testing.T) {
	if s, err := ParseSport("Ride"); err != nil || s != SportCycling {
		t.Errorf("ParseSport(Ride) = %v, %v", s, err)
	}
	if _, err := ParseSport("swim"); err == nil {
		t.Error("ParseSport(swim) should fail")
	}
}

func contains(types []Type, want Type) bool {
	for _, t := range types {
		if t == want {
			return true
		}
	}
	return false
}

func endurance(t *testing.T, workouts []Workout) Workout {
	t.Helper()
	for _, w := range workouts {
		if w.Type == TypeEndurance {
			return w
		}
	}
	t.Fatal("no endurance ride scheduled")
	return Workout{}
}

func assertDistinctDates(t *testing.T, workouts []Workout) {
	t.Helper()
	seen := make(map[string]bool)
	for _, w := range workouts {
		key := w.Date.Format("2006-01-02")
		if seen[key] {
			t.Errorf("two workouts on %s", key)
		}
		seen[key] = true
	}
}
