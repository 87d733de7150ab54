// Fleet entities and the rows emitted for each turn
package telemetry

import (
	"fmt"
	"os"
	"time"
)

// Kernel constants shared by every component that reasons about fuel.
const (
	MaxFuel         = 100
	FuelCostPerMove = 5
	DefaultSeverity = 5
	DefaultGridSize = 10
)

// Drone status labels. They are informational only; movement is gated on fuel.
const (
	StatusIdle          = "IDLE"
	StatusMoving        = "MOVING"
	StatusExtinguishing = "EXTINGUISHING"
	StatusRefueling     = "REFUELING"
	StatusOutOfFuel     = "OUT_OF_FUEL"
)

// Coord is an integer grid cell.
type Coord struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d, %d)", c.X, c.Y)
}

// Drone holds runtime state for a relief drone.
type Drone struct {
	ID       string `json:"id"`
	Position Coord  `json:"pos"`
	Fuel     int    `json:"fuel"`
	Status   string `json:"status"`
}

// Zone is an active emergency.
type Zone struct {
	Coords   Coord `json:"coords"`
	Severity int   `json:"severity"`
}

// Stats aggregates fleet activity over the lifetime of a kernel.
type Stats struct {
	TotalMoves        int `json:"total_moves"`
	TotalFuelConsumed int `json:"total_fuel_consumed"`
	ZonesCleared      int `json:"zones_cleared"`
	RefuelCount       int `json:"refuel_count"`
}

// World is a read-only copy of the kernel state.
type World struct {
	GridSize int     `json:"grid_size"`
	Drones   []Drone `json:"drones"`
	Zones    []Zone  `json:"red_zones"`
	Hubs     []Coord `json:"hubs"`
	Stats    Stats   `json:"stats"`
}

// Drone returns the drone with the given id from the snapshot.
func (w World) Drone(id string) (Drone, bool) {
	for _, d := range w.Drones {
		if d.ID == id {
			return d, true
		}
	}
	return Drone{}, false
}

// MoveRow records one step request and its outcome.
type MoveRow struct {
	ClusterID string    `json:"cluster_id"` // TAG
	DroneID   string    `json:"drone_id"`   // TAG
	Turn      int       `json:"turn"`       // FIELD
	Outcome   string    `json:"outcome"`    // FIELD
	X         int       `json:"x"`          // FIELD
	Y         int       `json:"y"`          // FIELD
	TargetX   int       `json:"target_x"`   // FIELD
	TargetY   int       `json:"target_y"`   // FIELD
	Fuel      int       `json:"fuel"`       // FIELD
	Moved     bool      `json:"moved"`      // FIELD
	Message   string    `json:"message"`    // FIELD
	Timestamp time.Time `json:"ts"`         // TIME INDEX
}

// MoveTableName holds the table name used when writing moves to GreptimeDB.
// It defaults to "drone_moves" but can be overridden via the
// GREPTIMEDB_TABLE environment variable.
var MoveTableName = envOr("GREPTIMEDB_TABLE", "drone_moves")

func (MoveRow) TableName() string {
	return MoveTableName
}

func envOr(key, def string) string {
	if env := os.Getenv(key); env != "" {
		return env
	}
	return def
}
