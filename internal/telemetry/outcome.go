package telemetry

// Outcome classifies the result of a single step request.
type Outcome string

const (
	OutcomeMoved          Outcome = "moved"
	OutcomeHeld           Outcome = "held"
	OutcomeExtinguished   Outcome = "extinguished"
	OutcomeRefueled       Outcome = "refueled"
	OutcomeNotFound       Outcome = "not_found"
	OutcomeOutOfFuel      Outcome = "out_of_fuel"
	OutcomeTargetRejected Outcome = "target_rejected"
)

// Rejected reports whether the step was refused without touching state.
func (o Outcome) Rejected() bool {
	switch o {
	case OutcomeNotFound, OutcomeOutOfFuel, OutcomeTargetRejected:
		return true
	}
	return false
}

// StepResult describes what one StepDrone call did.
type StepResult struct {
	Outcome Outcome `json:"outcome"`
	DroneID string  `json:"drone_id"`
	From    Coord   `json:"from"`
	To      Coord   `json:"to"`
	Target  Coord   `json:"target"`
	Fuel    int     `json:"fuel"`
	Moved   bool    `json:"moved"`
	Message string  `json:"message"`
}

func (r StepResult) String() string {
	return r.Message
}

// ZoneResult describes what one RegisterZone call did.
type ZoneResult struct {
	Accepted bool   `json:"accepted"`
	Zone     Zone   `json:"zone"`
	Message  string `json:"message"`
}

func (r ZoneResult) String() string {
	return r.Message
}
