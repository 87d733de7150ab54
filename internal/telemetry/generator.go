package telemetry

import "time"

// Generator turns kernel results into rows ready for the writers.
type Generator struct {
	ClusterID string
	now       func() time.Time
}

// NewGenerator creates a new row generator for a given cluster.
func NewGenerator(clusterID string) *Generator {
	return &Generator{ClusterID: clusterID, now: time.Now}
}

// WithClock returns a copy of g that stamps rows using now.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	cp := *g
	cp.now = now
	return &cp
}

// MoveRow builds the row describing one step.
func (g *Generator) MoveRow(turn int, res StepResult) MoveRow {
	return MoveRow{
		ClusterID: g.ClusterID,
		DroneID:   res.DroneID,
		Turn:      turn,
		Outcome:   string(res.Outcome),
		X:         res.To.X,
		Y:         res.To.Y,
		TargetX:   res.Target.X,
		TargetY:   res.Target.Y,
		Fuel:      res.Fuel,
		Moved:     res.Moved,
		Message:   res.Message,
		Timestamp: g.now().UTC(),
	}
}

// ZoneRow builds a zone lifecycle row. For cleared zones droneID names the drone that
// reached it.
func (g *Generator) ZoneRow(turn int, eventType string, z Zone, droneID string) ZoneEventRow {
	return ZoneEventRow{
		ClusterID: g.ClusterID,
		Turn:      turn,
		EventType: eventType,
		X:         z.Coords.X,
		Y:         z.Coords.Y,
		Severity:  z.Severity,
		DroneID:   droneID,
		Timestamp: g.now().UTC(),
	}
}

// StatsRow snapshots the aggregate counters.
func (g *Generator) StatsRow(turn int, st Stats, activeZones int) StatsRow {
	return StatsRow{
		ClusterID:         g.ClusterID,
		Turn:              turn,
		TotalMoves:        st.TotalMoves,
		TotalFuelConsumed: st.TotalFuelConsumed,
		ZonesCleared:      st.ZonesCleared,
		RefuelCount:       st.RefuelCount,
		ActiveZones:       activeZones,
		Timestamp:         g.now().UTC(),
	}
}
