package commander

import (
	"fmt"
	"strings"

	"reliefops-sim/internal/telemetry"
)

// Situation is the read-only view handed to a commander each turn.
type Situation struct {
	World    telemetry.World
	Override string
}

const systemInstruction = `You are the Autonomous Disaster Relief Commander.

GOAL: Clear Red Zones efficiently. Keep Drones alive.

STANDARD RULES (Apply unless overridden):
1. If Drone Fuel < %d -> MUST return to nearest Hub.
2. If Drone is Idle -> Send to nearest Red Zone.
3. Conflict Resolution -> Do not send multiple drones to the same target unless necessary.

Drones move one grid cell per turn along x first, then y. Each move costs %d fuel.
The grid spans 0..%d on both axes.

OUTPUT FORMAT:
Return strictly a JSON object with this structure:
{
    "reasoning": "A brief tactical explanation of your moves",
    "moves": {
        "DroneID_1": [x, y],
        "DroneID_2": [x, y]
    }
}
`

// BuildPrompt renders the system instruction, situation report and optional human
// override into a single prompt.
func BuildPrompt(s Situation, lowFuel int) string {
	var b strings.Builder
	fmt.Fprintf(&b, systemInstruction, lowFuel, telemetry.FuelCostPerMove, s.World.GridSize-1)

	b.WriteString("\nCurrent Map Status:\n")
	b.WriteString("- Active Red Zones (Emergencies): ")
	if len(s.World.Zones) == 0 {
		b.WriteString("none")
	}
	for i, z := range s.World.Zones {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s severity %d", z.Coords, z.Severity)
	}
	b.WriteString("\n- Refuel Hubs: ")
	for i, h := range s.World.Hubs {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(h.String())
	}
	b.WriteString("\n- Drone Squad Status:\n")
	for _, d := range s.World.Drones {
		fmt.Fprintf(&b, "  - %s at %s fuel %d status %s\n", d.ID, d.Position, d.Fuel, d.Status)
	}

	if o := strings.TrimSpace(s.Override); o != "" {
		fmt.Fprintf(&b, "\nURGENT PRIORITY ORDER FROM HUMAN COMMANDER: %s\n", o)
		b.WriteString("(You MUST adjust your strategy to follow this order, even if it contradicts standard rules.)\n")
	}
	b.WriteString("\nReply ONLY with the JSON.")
	return b.String()
}
