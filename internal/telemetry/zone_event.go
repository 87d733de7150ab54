package telemetry

import "time"

const (
	ZoneEventRegistered = "registered"
	ZoneEventRejected   = "rejected"
	ZoneEventCleared    = "cleared"
)

// ZoneEventTableName is the GreptimeDB table for zone lifecycle events.
var ZoneEventTableName = envOr("ZONE_EVENT_TABLE", "zone_events")

// ZoneEventRow represents a change in the set of emergency zones.
type ZoneEventRow struct {
	ClusterID  string    `json:"cluster_id"`
	Turn       int       `json:"turn"`
	EventType  string    `json:"event_type"`
	X          int       `json:"x"`
	Y          int       `json:"y"`
	Severity   int       `json:"severity"`
	DroneID    string    `json:"drone_id,omitempty"`
	IncidentID string    `json:"incident_id,omitempty"`
	Source     string    `json:"source,omitempty"`
	Timestamp  time.Time `json:"ts"`
}

func (ZoneEventRow) TableName() string {
	return ZoneEventTableName
}
