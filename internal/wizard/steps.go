package wizard

import (
	"fmt"
	"strings"
	"time"

	"endurance-planner/internal/periodization"
)

// StepID names a node of the step graph.
type StepID string

const (
	StepGoal           StepID = "goal"
	StepLevel          StepID = "level"
	StepBiometrics     StepID = "biometrics"
	StepFTP            StepID = "ftp"
	StepEstimatedTimes StepID = "estimated_times"
	StepFrequency      StepID = "frequency"
	StepAvailableDays  StepID = "available_days"
	StepLongDay        StepID = "long_day"
	StepStartDate      StepID = "start_date"
	StepDuration       StepID = "duration"
	StepRaceDate       StepID = "race_date"
	StepGoalTime       StepID = "goal_time"
	StepSummary        StepID = "summary"
	StepHealth         StepID = "health"
	StepGenerate       StepID = "generate"
)

// FieldError is a validation failure of one input.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (f FieldError) Error() string {
	return f.Field + ": " + f.Message
}

// ValidationError carries every field that failed.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Error()
	}
	return "invalid plan input: " + strings.Join(msgs, "; ")
}

// Step is a node of the graph. Include decides whether the step is on the
// path for a state; Validate lists what blocks advancing past it.
type Step struct {
	ID       StepID
	Title    string
	Include  func(State) bool
	Validate func(State) []FieldError
}

func always(State) bool { return true }

func none(State) []FieldError { return nil }

// Graph is every step in order. Conditional steps carry an Include predicate.
var Graph = []Step{
	{StepGoal, "Goal", always, validateGoal},
	{StepLevel, "Athlete level", always, validateLevel},
	{StepBiometrics, "Biometrics", always, validateBiometrics},
	{StepFTP, "Functional threshold power", func(s State) bool { return s.Goal.Cycling() }, validateFTP},
	{StepEstimatedTimes, "Current race times", func(s State) bool { return !s.Goal.Cycling() }, validateEstimatedTimes},
	{StepFrequency, "Sessions per week", always, validateFrequency},
	{StepAvailableDays, "Available days", always, validateDays},
	{StepLongDay, "Long session day", always, validateLongDay},
	{StepStartDate, "Start date", always, validateStartDate},
	{StepDuration, "Plan length", always, validateDuration},
	{StepRaceDate, "Event date", func(s State) bool { return s.Goal.NeedsEventDate() }, validateRaceDate},
	{StepGoalTime, "Goal time", func(s State) bool { return s.Goal.Race() }, validateGoalTime},
	{StepSummary, "Summary", always, none},
	{StepHealth, "Health declaration", always, validateHealth},
	{StepGenerate, "Generate", always, nil},
}

func init() {
	// generate re-checks the whole path; set here to break the init cycle
	for i := range Graph {
		if Graph[i].ID == StepGenerate {
			Graph[i].Validate = ValidateAll
		}
	}
}

// Lookup returns the graph node of a step.
func Lookup(id StepID) (Step, bool) {
	for _, s := range Graph {
		if s.ID == id {
			return s, true
		}
	}
	return Step{}, false
}

// Sequence is the path through the graph for a state.
func Sequence(s State) []StepID {
	seq := make([]StepID, 0, len(Graph))
	for _, step := range Graph {
		if step.Include(s) {
			seq = append(seq, step.ID)
		}
	}
	return seq
}

// CanAdvance reports whether the state satisfies a step.
func CanAdvance(id StepID, s State) bool {
	step, ok := Lookup(id)
	if !ok {
		return false
	}
	return len(step.Validate(s)) == 0
}

// ValidateAll runs every step on the state's path except generate itself.
func ValidateAll(s State) []FieldError {
	var errs []FieldError
	for _, step := range Graph {
		if step.ID == StepGenerate || !step.Include(s) {
			continue
		}
		errs = append(errs, step.Validate(s)...)
	}
	return errs
}

func validateGoal(s State) []FieldError {
	if !s.Goal.Valid() {
		return []FieldError{{"goal", "choose a goal"}}
	}
	return nil
}

func validateLevel(s State) []FieldError {
	if !s.Tier.Valid() {
		return []FieldError{{"tier", "choose Beginner, Intermediate, Advanced or Elite"}}
	}
	return nil
}

func validateBiometrics(s State) []FieldError {
	var errs []FieldError
	if s.BirthDate == nil {
		errs = append(errs, FieldError{"birth_date", "required"})
	} else if s.BirthDate.After(time.Now()) {
		errs = append(errs, FieldError{"birth_date", "must be in the past"})
	}
	if s.Gender != "male" && s.Gender != "female" {
		errs = append(errs, FieldError{"gender", "choose male or female"})
	}
	if s.WeightKg < 0 || s.WeightKg > 300 {
		errs = append(errs, FieldError{"weight_kg", "must be between 0 and 300"})
	}
	return errs
}

func validateFTP(s State) []FieldError {
	// zero means estimate from weight and level
	if s.FTPWatts != 0 && (s.FTPWatts < 50 || s.FTPWatts > 600) {
		return []FieldError{{"ftp_watts", "must be between 50 and 600 W, or empty to estimate"}}
	}
	return nil
}

func validateEstimatedTimes(s State) []FieldError {
	var errs []FieldError
	for name, raw := range s.EstimatedTimes {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		if _, err := ParseClock(raw); err != nil {
			errs = append(errs, FieldError{"estimated_times." + name, err.Error()})
		}
	}
	return errs
}

func validateFrequency(s State) []FieldError {
	if s.Frequency < 1 || s.Frequency > 7 {
		return []FieldError{{"frequency", "must be between 1 and 7 sessions"}}
	}
	return nil
}

func validateDays(s State) []FieldError {
	seen := make(map[time.Weekday]bool)
	for _, d := range s.Days {
		seen[d] = true
	}
	if len(seen) < s.Frequency {
		return []FieldError{{"days", fmt.Sprintf("select at least %d days", s.Frequency)}}
	}
	return nil
}

func validateLongDay(s State) []FieldError {
	if s.LongDay == nil || !s.HasDay(*s.LongDay) {
		return []FieldError{{"long_day", "must be one of the selected days"}}
	}
	return nil
}

func validateStartDate(s State) []FieldError {
	if s.StartDate.IsZero() {
		return []FieldError{{"start_date", "required"}}
	}
	return nil
}

func validateDuration(s State) []FieldError {
	if s.Weeks < periodization.MinWeeks || s.Weeks > periodization.MaxWeeks {
		return []FieldError{{"weeks", fmt.Sprintf("must be between %d and %d", periodization.MinWeeks, periodization.MaxWeeks)}}
	}
	return nil
}

func validateRaceDate(s State) []FieldError {
	if !s.HasRaceDate {
		return nil
	}
	if s.RaceDate == nil {
		return []FieldError{{"race_date", "required when an event date is set"}}
	}
	if !s.StartDate.IsZero() && !s.RaceDate.After(s.StartDate) {
		return []FieldError{{"race_date", "must be after the start date"}}
	}
	return nil
}

func validateGoalTime(s State) []FieldError {
	if strings.TrimSpace(s.GoalTime) == "" {
		return nil
	}
	if _, err := ParseClock(s.GoalTime); err != nil {
		return []FieldError{{"goal_time", err.Error()}}
	}
	return nil
}

func validateHealth(s State) []FieldError {
	if err := CheckEligibility(s.Health); err != nil {
		return []FieldError{{"health", err.Error()}}
	}
	return nil
}
