// YAML config loader with CUE validation integration
package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Commander providers.
const (
	ProviderScripted = "scripted"
	ProviderGemini   = "gemini"
)

// DroneConfig places one drone on the grid at start-up.
type DroneConfig struct {
	ID string `yaml:"id"`
	X  int    `yaml:"x"`
	Y  int    `yaml:"y"`
}

// CoordConfig is a grid cell.
type CoordConfig struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// ZoneConfig is an emergency present when the simulation starts.
type ZoneConfig struct {
	X        int `yaml:"x"`
	Y        int `yaml:"y"`
	Severity int `yaml:"severity"`
}

// CommanderConfig selects how turn decisions are made.
type CommanderConfig struct {
	Provider         string `yaml:"provider"`
	Model            string `yaml:"model"`
	LowFuelThreshold int    `yaml:"low_fuel_threshold"`
}

// IncidentConfig drives random emergency generation.
type IncidentConfig struct {
	Rate      float64 `yaml:"rate"`
	MaxActive int     `yaml:"max_active"`
	Seed      int64   `yaml:"seed"`
}

// SimulationConfig is the root configuration for the relief grid.
type SimulationConfig struct {
	ClusterID string          `yaml:"cluster_id"`
	GridSize  int             `yaml:"grid_size"`
	Drones    []DroneConfig   `yaml:"drones"`
	Hubs      []CoordConfig   `yaml:"hubs"`
	Zones     []ZoneConfig    `yaml:"zones"`
	Commander CommanderConfig `yaml:"commander"`
	Incidents IncidentConfig  `yaml:"incidents"`
	Scenario  string          `yaml:"scenario"`
}

// Default returns the stock relief world: three drones, four corner hubs and two
// initial fires.
func Default() *SimulationConfig {
	cfg := &SimulationConfig{}
	cfg.applyDefaults()
	cfg.Zones = []ZoneConfig{{X: 2, Y: 2, Severity: 5}, {X: 8, Y: 8, Severity: 5}}
	return cfg
}

func (c *SimulationConfig) applyDefaults() {
	if c.ClusterID == "" {
		c.ClusterID = "relief-01"
	}
	if c.GridSize == 0 {
		c.GridSize = 10
	}
	if len(c.Drones) == 0 {
		c.Drones = []DroneConfig{{ID: "Alpha", X: 0, Y: 0}, {ID: "Beta", X: 9, Y: 9}, {ID: "Gamma", X: 5, Y: 0}}
	}
	if len(c.Hubs) == 0 {
		n := c.GridSize - 1
		c.Hubs = []CoordConfig{{X: 0, Y: 0}, {X: n, Y: n}, {X: 0, Y: n}, {X: n, Y: 0}}
	}
	for i := range c.Zones {
		if c.Zones[i].Severity == 0 {
			c.Zones[i].Severity = 5
		}
	}
	if c.Commander.Provider == "" {
		c.Commander.Provider = ProviderScripted
	}
	if c.Commander.LowFuelThreshold == 0 {
		c.Commander.LowFuelThreshold = 20
	}
	if c.Incidents.MaxActive == 0 {
		c.Incidents.MaxActive = 6
	}
}

// Validate checks semantic constraints the schema cannot express.
func (c *SimulationConfig) Validate() error {
	if c.GridSize <= 0 {
		return fmt.Errorf("grid_size must be positive, got %d", c.GridSize)
	}
	seen := make(map[string]bool)
	for _, d := range c.Drones {
		if d.ID == "" {
			return fmt.Errorf("drone with empty id")
		}
		if seen[d.ID] {
			return fmt.Errorf("duplicate drone id %q", d.ID)
		}
		seen[d.ID] = true
		if !c.inGrid(d.X, d.Y) {
			return fmt.Errorf("drone %s starts outside the grid at (%d, %d)", d.ID, d.X, d.Y)
		}
	}
	for _, h := range c.Hubs {
		if !c.inGrid(h.X, h.Y) {
			return fmt.Errorf("hub (%d, %d) outside the grid", h.X, h.Y)
		}
	}
	switch c.Commander.Provider {
	case ProviderScripted, ProviderGemini:
	default:
		return fmt.Errorf("unknown commander provider %q", c.Commander.Provider)
	}
	if c.Incidents.Rate < 0 || c.Incidents.Rate > 1 {
		return fmt.Errorf("incidents.rate must be within [0,1], got %v", c.Incidents.Rate)
	}
	return nil
}

func (c *SimulationConfig) inGrid(x, y int) bool {
	return x >= 0 && x < c.GridSize && y >= 0 && y < c.GridSize
}

// Load loads YAML config and validates it against a CUE schema
func Load(configPath, cueSchemaPath string) (*SimulationConfig, error) {
	if err := ValidateWithCue(configPath, cueSchemaPath); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	var cfg SimulationConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slog.Info("loaded configuration",
		"cluster_id", cfg.ClusterID,
		"grid_size", cfg.GridSize,
		"drones", len(cfg.Drones),
		"zones", len(cfg.Zones),
		"commander", cfg.Commander.Provider,
	)

	return &cfg, nil
}
