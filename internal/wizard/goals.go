package wizard

import "endurance-planner/internal/workout"

// Goal is what the athlete wants the plan to achieve.
type Goal string

const (
	GoalGeneralFitness   Goal = "general_fitness"
	GoalWeightLoss       Goal = "weight_loss"
	Goal5K               Goal = "5k"
	Goal10K              Goal = "10k"
	GoalHalfMarathon     Goal = "half_marathon"
	GoalMarathon         Goal = "marathon"
	GoalImproveTimes     Goal = "improve_times"
	GoalReturnRunning    Goal = "return_running"
	GoalMaintenance      Goal = "maintenance"
	GoalCyclingEndurance Goal = "cycling_endurance"
	GoalCyclingEvent     Goal = "cycling_event"
	GoalCyclingFTP       Goal = "cycling_ftp"
)

// Goals lists every goal in menu order.
var Goals = []Goal{
	GoalGeneralFitness, GoalWeightLoss, Goal5K, Goal10K, GoalHalfMarathon, GoalMarathon,
	GoalImproveTimes, GoalReturnRunning, GoalMaintenance,
	GoalCyclingEndurance, GoalCyclingEvent, GoalCyclingFTP,
}

var goalLabels = map[Goal]string{
	GoalGeneralFitness:   "General Fitness",
	GoalWeightLoss:       "Weight Loss",
	Goal5K:               "5K Race",
	Goal10K:              "10K Race",
	GoalHalfMarathon:     "Half Marathon",
	GoalMarathon:         "Marathon",
	GoalImproveTimes:     "Improve Current Times",
	GoalReturnRunning:    "Return to Running",
	GoalMaintenance:      "Maintenance",
	GoalCyclingEndurance: "Cycling Endurance",
	GoalCyclingEvent:     "Cycling Event",
	GoalCyclingFTP:       "FTP Builder",
}

// raceEstimate maps running race goals to the profile estimate they target.
var raceEstimate = map[Goal]string{
	Goal5K:           "5k",
	Goal10K:          "10k",
	GoalHalfMarathon: "half",
	GoalMarathon:     "marathon",
}

// Valid reports whether g is a known goal.
func (g Goal) Valid() bool {
	_, ok := goalLabels[g]
	return ok
}

// Label is the display name of the goal.
func (g Goal) Label() string {
	if l, ok := goalLabels[g]; ok {
		return l
	}
	return string(g)
}

// Cycling reports whether the goal is trained on the bike.
func (g Goal) Cycling() bool {
	return g == GoalCyclingEndurance || g == GoalCyclingEvent || g == GoalCyclingFTP
}

// Sport returns the sport the plan is written for.
func (g Goal) Sport() workout.Sport {
	if g.Cycling() {
		return workout.SportCycling
	}
	return workout.SportRunning
}

// Race reports whether the goal is a running race distance.
func (g Goal) Race() bool {
	_, ok := raceEstimate[g]
	return ok
}

// EstimateName returns the race estimate key ("5k", "half", ...) of a race goal.
func (g Goal) EstimateName() (string, bool) {
	name, ok := raceEstimate[g]
	return name, ok
}

// NeedsEventDate reports whether the wizard asks for a race or event date.
func (g Goal) NeedsEventDate() bool {
	return g.Race() || g == GoalImproveTimes || g == GoalCyclingEvent
}
