package commander

import (
	"context"
	"fmt"
	"strings"

	"reliefops-sim/internal/telemetry"
)

// ScriptedCommander applies the standard rules without a model: low-fuel drones head
// to the nearest hub, the rest take the nearest unclaimed zone.
type ScriptedCommander struct {
	LowFuel int
}

// NewScriptedCommander returns a rule-based commander.
func NewScriptedCommander(lowFuel int) *ScriptedCommander {
	if lowFuel <= 0 {
		lowFuel = DefaultLowFuel
	}
	return &ScriptedCommander{LowFuel: lowFuel}
}

// Decide never fails; an override is acknowledged in the reasoning only.
func (c *ScriptedCommander) Decide(ctx context.Context, s Situation) (Plan, error) {
	if err := ctx.Err(); err != nil {
		return Plan{}, err
	}
	claimed := make(map[telemetry.Coord]bool)
	var notes []string
	zones := make([]telemetry.Coord, len(s.World.Zones))
	for i, z := range s.World.Zones {
		zones[i] = z.Coords
	}
	plan := Plan{}
	for _, d := range s.World.Drones {
		if d.Fuel <= 0 {
			continue
		}
		if d.Fuel < c.LowFuel {
			if hub, ok := nearest(d.Position, s.World.Hubs, nil); ok {
				plan.Moves = append(plan.Moves, Move{DroneID: d.ID, Target: hub})
				notes = append(notes, fmt.Sprintf("%s returning to hub %s", d.ID, hub))
			}
			continue
		}
		if z, ok := nearest(d.Position, zones, claimed); ok {
			claimed[z] = true
			plan.Moves = append(plan.Moves, Move{DroneID: d.ID, Target: z})
			notes = append(notes, fmt.Sprintf("%s taking zone %s", d.ID, z))
		}
	}
	switch {
	case len(notes) > 0:
		plan.Reasoning = strings.Join(notes, "; ")
	default:
		plan.Reasoning = "All quiet; holding positions."
	}
	if o := strings.TrimSpace(s.Override); o != "" {
		plan.Reasoning = fmt.Sprintf("Override noted (%s). %s", o, plan.Reasoning)
	}
	return plan, nil
}

func nearest(from telemetry.Coord, candidates []telemetry.Coord, skip map[telemetry.Coord]bool) (telemetry.Coord, bool) {
	best, bestDist, found := telemetry.Coord{}, 0, false
	for _, c := range candidates {
		if skip[c] {
			continue
		}
		d := abs(c.X-from.X) + abs(c.Y-from.Y)
		if !found || d < bestDist {
			best, bestDist, found = c, d, true
		}
	}
	return best, found
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
