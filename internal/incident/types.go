package incident

import "reliefops-sim/internal/telemetry"

// Kind names the emergency type of an incident.
type Kind string

const (
	KindFire     Kind = "fire"
	KindFlood    Kind = "flood"
	KindCollapse Kind = "collapse"
	KindMedical  Kind = "medical"
)

// Incident is a generated emergency waiting to be registered as a zone.
type Incident struct {
	ID       string
	Kind     Kind
	Coords   telemetry.Coord
	Severity int
}
