// Grid kernel owning drone, zone, hub and stats state
package sim

import (
	"fmt"

	"reliefops-sim/internal/telemetry"
)

// DroneSpec describes a drone at construction time.
type DroneSpec struct {
	ID    string
	Start telemetry.Coord
}

// KernelConfig fixes the world shape for the lifetime of a kernel.
type KernelConfig struct {
	GridSize int
	Drones   []DroneSpec
	Hubs     []telemetry.Coord
}

// DefaultKernelConfig returns the stock three-drone, four-hub world.
func DefaultKernelConfig() KernelConfig {
	return KernelConfig{
		GridSize: telemetry.DefaultGridSize,
		Drones: []DroneSpec{
			{ID: "Alpha", Start: telemetry.Coord{X: 0, Y: 0}},
			{ID: "Beta", Start: telemetry.Coord{X: 9, Y: 9}},
			{ID: "Gamma", Start: telemetry.Coord{X: 5, Y: 0}},
		},
		Hubs: []telemetry.Coord{{X: 0, Y: 0}, {X: 9, Y: 9}, {X: 0, Y: 9}, {X: 9, Y: 0}},
	}
}

// Kernel is the deterministic simulation core. It is not safe for concurrent use;
// the owner serialises calls.
type Kernel struct {
	gridSize int
	drones   []*telemetry.Drone
	zones    []telemetry.Zone
	hubs     []telemetry.Coord
	stats    telemetry.Stats
}

// NewKernel validates cfg and creates a kernel with every drone fully fuelled.
func NewKernel(cfg KernelConfig) (*Kernel, error) {
	if cfg.GridSize <= 0 {
		return nil, fmt.Errorf("grid size must be positive, got %d", cfg.GridSize)
	}
	k := &Kernel{gridSize: cfg.GridSize}
	seen := make(map[string]bool, len(cfg.Drones))
	for _, spec := range cfg.Drones {
		if spec.ID == "" {
			return nil, fmt.Errorf("drone id must not be empty")
		}
		if seen[spec.ID] {
			return nil, fmt.Errorf("duplicate drone id %q", spec.ID)
		}
		if !k.InBounds(spec.Start.X, spec.Start.Y) {
			return nil, fmt.Errorf("drone %s starts outside the grid at %s", spec.ID, spec.Start)
		}
		seen[spec.ID] = true
		k.drones = append(k.drones, &telemetry.Drone{
			ID:       spec.ID,
			Position: spec.Start,
			Fuel:     telemetry.MaxFuel,
			Status:   telemetry.StatusIdle,
		})
	}
	for _, h := range cfg.Hubs {
		if !k.InBounds(h.X, h.Y) {
			return nil, fmt.Errorf("hub %s outside the grid", h)
		}
		k.hubs = append(k.hubs, h)
	}
	return k, nil
}

// NewDefaultKernel returns a kernel built from DefaultKernelConfig.
func NewDefaultKernel() *Kernel {
	k, err := NewKernel(DefaultKernelConfig())
	if err != nil {
		panic(err)
	}
	return k
}

// GridSize returns the side length of the square grid.
func (k *Kernel) GridSize() int { return k.gridSize }

// InBounds reports whether (x, y) lies on the grid.
func (k *Kernel) InBounds(x, y int) bool {
	return x >= 0 && x < k.gridSize && y >= 0 && y < k.gridSize
}

// RegisterZone adds an emergency zone. Out-of-grid coordinates are rejected without
// mutation.
func (k *Kernel) RegisterZone(x, y, severity int) telemetry.ZoneResult {
	z := telemetry.Zone{Coords: telemetry.Coord{X: x, Y: y}, Severity: severity}
	if !k.InBounds(x, y) {
		return telemetry.ZoneResult{Zone: z, Message: "Coordinates out of bounds."}
	}
	k.zones = append(k.zones, z)
	return telemetry.ZoneResult{Accepted: true, Zone: z, Message: fmt.Sprintf("Zone added at (%d, %d)", x, y)}
}

// StepDrone advances one drone by at most one cell toward the target, x axis first,
// then resolves zone clearing and refuelling at its new position.
func (k *Kernel) StepDrone(droneID string, targetX, targetY int) telemetry.StepResult {
	target := telemetry.Coord{X: targetX, Y: targetY}
	d := k.lookup(droneID)
	if d == nil {
		return telemetry.StepResult{Outcome: telemetry.OutcomeNotFound, DroneID: droneID, Target: target, Message: "Drone not found"}
	}
	res := telemetry.StepResult{DroneID: d.ID, From: d.Position, To: d.Position, Target: target, Fuel: d.Fuel}
	if d.Fuel <= 0 {
		res.Outcome = telemetry.OutcomeOutOfFuel
		res.Message = fmt.Sprintf("%s is out of fuel!", d.ID)
		return res
	}
	if !k.InBounds(targetX, targetY) {
		res.Outcome = telemetry.OutcomeTargetRejected
		res.Message = fmt.Sprintf("%s target %s is outside the grid.", d.ID, target)
		return res
	}

	next := d.Position
	if dx := targetX - d.Position.X; dx != 0 {
		next.X += sign(dx)
	} else if dy := targetY - d.Position.Y; dy != 0 {
		next.Y += sign(dy)
	}
	if next != d.Position {
		d.Position = next
		// Fuel is not floored at zero.
		d.Fuel -= telemetry.FuelCostPerMove
		d.Status = telemetry.StatusMoving
		k.stats.TotalMoves++
		k.stats.TotalFuelConsumed += telemetry.FuelCostPerMove
		res.Moved = true
	} else {
		d.Status = telemetry.StatusIdle
	}
	res.To = d.Position

	for i, z := range k.zones {
		if z.Coords != d.Position {
			continue
		}
		k.zones = append(k.zones[:i], k.zones[i+1:]...)
		k.stats.ZonesCleared++
		d.Status = telemetry.StatusExtinguishing
		res.Outcome = telemetry.OutcomeExtinguished
		res.Fuel = d.Fuel
		res.Message = fmt.Sprintf("%s EXTINGUISHED fire at %s!", d.ID, d.Position)
		return res
	}

	if k.isHub(d.Position) && d.Fuel < telemetry.MaxFuel {
		d.Fuel = telemetry.MaxFuel
		d.Status = telemetry.StatusRefueling
		k.stats.RefuelCount++
		res.Outcome = telemetry.OutcomeRefueled
		res.Fuel = d.Fuel
		res.Message = fmt.Sprintf("%s refueled at Hub.", d.ID)
		return res
	}

	if d.Fuel <= 0 {
		d.Status = telemetry.StatusOutOfFuel
	}
	res.Outcome = telemetry.OutcomeHeld
	if res.Moved {
		res.Outcome = telemetry.OutcomeMoved
	}
	res.Fuel = d.Fuel
	res.Message = fmt.Sprintf("%s moved to %s. Fuel: %d", d.ID, d.Position, d.Fuel)
	return res
}

// Drone returns a copy of the named drone.
func (k *Kernel) Drone(id string) (telemetry.Drone, bool) {
	if d := k.lookup(id); d != nil {
		return *d, true
	}
	return telemetry.Drone{}, false
}

// Zones returns a copy of the active zones in registration order.
func (k *Kernel) Zones() []telemetry.Zone {
	return append([]telemetry.Zone(nil), k.zones...)
}

// Hubs returns a copy of the hub set.
func (k *Kernel) Hubs() []telemetry.Coord {
	return append([]telemetry.Coord(nil), k.hubs...)
}

// Stats returns the aggregate counters.
func (k *Kernel) Stats() telemetry.Stats { return k.stats }

// Snapshot returns a deep copy of the whole world.
func (k *Kernel) Snapshot() telemetry.World {
	drones := make([]telemetry.Drone, len(k.drones))
	for i, d := range k.drones {
		drones[i] = *d
	}
	return telemetry.World{
		GridSize: k.gridSize,
		Drones:   drones,
		Zones:    k.Zones(),
		Hubs:     k.Hubs(),
		Stats:    k.stats,
	}
}

func (k *Kernel) lookup(id string) *telemetry.Drone {
	for _, d := range k.drones {
		if d.ID == id {
			return d
		}
	}
	return nil
}

func (k *Kernel) isHub(c telemetry.Coord) bool {
	for _, h := range k.hubs {
		if h == c {
			return true
		}
	}
	return false
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
