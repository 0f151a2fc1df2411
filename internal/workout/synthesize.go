package workout

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"endurance-planner/internal/analysis"
	"endurance-planner/internal/periodization"
	"endurance-planner/internal/zones"
)

// Filler sessions move at most this fraction of their main block, in
// whole steps, toward the weekly stress target.
const (
	fillerScale = 0.20
	fillerStep  = 5
)

// WeekRequest is everything needed to lay out one week.
type WeekRequest struct {
	Sport     Sport
	Phase     periodization.Phase
	Tier      analysis.Tier
	Zones     zones.Model
	Floors    zones.PaceFloors // running only
	Start     time.Time        // plan start date
	Days      []time.Weekday
	LongDay   *time.Weekday
	Frequency int // requested sessions per week, 0 means one per selected day
}

// Synthesize emits the dated workouts of one week, ordered by date.
// It never schedules more sessions than selected days and never puts two
// sessions on the same day.
func Synthesize(req WeekRequest) []Workout {
	weekIdx := req.Phase.Week - 1
	days := orderDays(req.Days, req.Start.AddDate(0, 0, 7*weekIdx).Weekday())

	types := TemplatesFor(req.Sport, req.Phase, req.Tier)
	n := min(len(types), len(days))
	if req.Frequency > 0 {
		n = min(n, req.Frequency)
	}
	if n == 0 {
		return nil
	}

	templates := make([]Template, n)
	for i, t := range types[:n] {
		templates[i] = Build(t, req.Phase.Week)
	}
	scaleFillers(templates, req.Phase.TargetStress)

	slots := assignDays(templates, days, req.LongDay)
	workouts := make([]Workout, 0, n)
	for i, t := range templates {
		date := DateForWeekday(req.Start, weekIdx, slots[i])
		workouts = append(workouts, render(t, date, req.Phase.Week, req.Zones, req.Floors))
	}

	sort.SliceStable(workouts, func(i, j int) bool {
		return workouts[i].Date.Before(workouts[j].Date)
	})
	return workouts
}

// DateForWeekday returns the first date on the given weekday at or after
// start + weekIndex*7 days.
func DateForWeekday(start time.Time, weekIndex int, day time.Weekday) time.Time {
	base := start.AddDate(0, 0, 7*weekIndex)
	offset := (int(day) - int(base.Weekday()) + 7) % 7
	return base.AddDate(0, 0, offset)
}

// orderDays dedupes days and sorts them in calendar order from first.
func orderDays(days []time.Weekday, first time.Weekday) []time.Weekday {
	seen := make(map[time.Weekday]bool, len(days))
	out := make([]time.Weekday, 0, len(days))
	for _, d := range days {
		if d < time.Sunday || d > time.Saturday || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	offset := func(d time.Weekday) int {
		return (int(d) - int(first) + 7) % 7
	}
	sort.Slice(out, func(i, j int) bool {
		return offset(out[i]) < offset(out[j])
	})
	return out
}

// assignDays picks one day per template. The long session takes the long
// day when that day was selected; the rest follow calendar order.
func assignDays(templates []Template, days []time.Weekday, longDay *time.Weekday) []time.Weekday {
	n := len(templates)
	slots := make([]time.Weekday, n)

	longIdx := -1
	for i, t := range templates {
		if t.Long {
			longIdx = i
			break
		}
	}
	hasLongDay := false
	if longDay != nil {
		for _, d := range days {
			if d == *longDay {
				hasLongDay = true
				break
			}
		}
	}
	if longIdx < 0 || !hasLongDay {
		copy(slots, days[:n])
		return slots
	}

	// Long day plus the earliest other days, kept in calendar order
	chosen := make([]time.Weekday, 0, n)
	others := 0
	for _, d := range days {
		if d == *longDay {
			chosen = append(chosen, d)
		} else if others < n-1 {
			chosen = append(chosen, d)
			others++
		}
	}

	slots[longIdx] = *longDay
	next := 0
	for i := range templates {
		if i == longIdx {
			continue
		}
		for chosen[next] == *longDay {
			next++
		}
		slots[i] = chosen[next]
		next++
	}
	return slots
}

// scaleFillers stretches or trims endurance fillers toward the target.
func scaleFillers(templates []Template, target int) {
	if target <= 0 {
		return
	}
	var total, fillers int
	for _, t := range templates {
		total += t.Stress()
		if t.Filler() {
			fillers++
		}
	}
	if fillers == 0 {
		return
	}

	share := float64(target-total) / float64(fillers)
	for i := range templates {
		if !templates[i].Filler() {
			continue
		}
		idx := mainSegment(templates[i].Segments)
		seg := &templates[i].Segments[idx]

		limit := float64(seg.Minutes) * fillerScale
		delta := share * 60 / templates[i].StressPerHour
		delta = math.Max(-limit, math.Min(limit, delta))
		seg.Minutes += int(delta/fillerStep) * fillerStep
	}
}

// mainSegment is the first interval block, else the longest steady block.
func mainSegment(segments []Segment) int {
	best := 0
	for i, s := range segments {
		if s.Kind == SegmentInterval {
			return i
		}
		if s.Kind == SegmentSteady && (segments[best].Kind != SegmentSteady || s.Minutes > segments[best].Minutes) {
			best = i
		}
	}
	return best
}

func render(t Template, date time.Time, week int, m zones.Model, floors zones.PaceFloors) Workout {
	segments := make([]Segment, len(t.Segments))
	lines := make([]string, 0, len(t.Segments))
	for i, s := range t.Segments {
		s.Target = target(m, floors, paceKind(t.Type, s), s)
		segments[i] = s
		lines = append(lines, describe(s))
	}

	w := Workout{
		Date:            date,
		Week:            week,
		Type:            t.Type,
		Title:           t.Name,
		Description:     strings.Join(lines, "\n"),
		DurationMinutes: t.TotalMinutes(),
		Stress:          t.Stress(),
		Segments:        segments,
	}
	if len(segments) > 0 {
		w.TargetZone = segments[mainSegment(segments)].Zone
	}
	return w
}

// paceKind maps a running segment onto its safety floor.
func paceKind(t Type, s Segment) string {
	switch s.Kind {
	case SegmentWarmup, SegmentCooldown:
		return zones.PaceEasy
	case SegmentInterval:
		if t == TypeTempo {
			return zones.PaceTempo
		}
		return zones.PaceInterval
	}
	switch t {
	case TypeLongRun:
		return zones.PaceLong
	case TypeRacePace:
		return zones.PaceTempo
	}
	return zones.PaceEasy
}

func target(m zones.Model, floors zones.PaceFloors, kind string, s Segment) string {
	if m.Anchor <= 0 {
		return s.Zone
	}

	if m.Kind == zones.KindPower {
		if s.Intensity > 0 {
			return fmt.Sprintf("%.0f W (%s)", math.Round(s.Intensity*m.Anchor), s.Zone)
		}
		return m.Describe(s.Zone)
	}

	if s.Intensity > 0 {
		return fmt.Sprintf("%s %s/km", s.Zone, zones.FormatPace(floors.Clamp(kind, m.Anchor/s.Intensity)))
	}
	slow, fast, ok := m.Range(s.Zone)
	if !ok {
		return s.Zone
	}
	fast = floors.Clamp(kind, fast)
	slow = math.Max(slow, fast)
	if zones.FormatPace(slow) == zones.FormatPace(fast) {
		return fmt.Sprintf("%s %s/km", s.Zone, zones.FormatPace(fast))
	}
	return fmt.Sprintf("%s %s-%s/km", s.Zone, zones.FormatPace(slow), zones.FormatPace(fast))
}

func describe(s Segment) string {
	var line string
	switch s.Kind {
	case SegmentWarmup:
		line = fmt.Sprintf("Warm-up: %d min %s", s.Minutes, s.Target)
	case SegmentCooldown:
		line = fmt.Sprintf("Cool-down: %d min %s", s.Minutes, s.Target)
	case SegmentInterval:
		line = fmt.Sprintf("%d x %d min @ %s", s.Repeats, s.Minutes, s.Target)
		if s.Repeats > 1 && s.RestMinutes > 0 {
			line += fmt.Sprintf(", %d min easy between", s.RestMinutes)
		}
	default:
		line = fmt.Sprintf("%d min %s", s.Minutes, s.Target)
	}
	if s.Note != "" {
		line += " (" + s.Note + ")"
	}
	return line
}
