package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const schemaPath = "../../schemas/relief.cue"

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "relief.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func TestLoadConfig_Valid(t *testing.T) {
	path := writeConfig(t, `
cluster_id: relief-x
grid_size: 12
drones:
  - id: Hawk
    x: 1
    y: 1
zones:
  - x: 3
    y: 4
commander:
  provider: gemini
incidents:
  rate: 0.25
`)
	cfg, err := Load(path, schemaPath)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.ClusterID != "relief-x" || cfg.GridSize != 12 {
		t.Errorf("unexpected header: %+v", cfg)
	}
	if len(cfg.Drones) != 1 || cfg.Drones[0].ID != "Hawk" {
		t.Errorf("unexpected drones: %+v", cfg.Drones)
	}
	if len(cfg.Hubs) != 4 || cfg.Hubs[1] != (CoordConfig{X: 11, Y: 11}) {
		t.Errorf("expected corner hubs on a 12 grid, got %+v", cfg.Hubs)
	}
	if cfg.Zones[0].Severity != 5 {
		t.Errorf("expected default severity, got %d", cfg.Zones[0].Severity)
	}
	if cfg.Commander.Provider != ProviderGemini || cfg.Commander.LowFuelThreshold != 20 {
		t.Errorf("unexpected commander: %+v", cfg.Commander)
	}
	if cfg.Incidents.Rate != 0.25 || cfg.Incidents.MaxActive != 6 {
		t.Errorf("unexpected incidents: %+v", cfg.Incidents)
	}
}

func TestLoadConfig_RepoDefault(t *testing.T) {
	cfg, err := Load("../../config/relief.yaml", schemaPath)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if len(cfg.Drones) != 3 || len(cfg.Zones) != 2 || cfg.Commander.Provider != ProviderScripted {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadConfig_SchemaRejects(t *testing.T) {
	cases := map[string]string{
		"unknown provider": "commander:\n  provider: oracle\n",
		"negative grid":    "grid_size: -3\n",
		"unknown field":    "fleets: []\n",
		"rate too high":    "incidents:\n  rate: 2\n",
		"empty drone id":   "drones:\n  - id: \"\"\n    x: 0\n    y: 0\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, body), schemaPath); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestLoadConfig_SemanticRejects(t *testing.T) {
	path := writeConfig(t, "grid_size: 5\ndrones:\n  - {id: A, x: 0, y: 0}\n  - {id: A, x: 1, y: 1}\n")
	_, err := Load(path, schemaPath)
	if err == nil || !strings.Contains(err.Error(), "duplicate drone id") {
		t.Fatalf("expected duplicate id error, got %v", err)
	}
	path = writeConfig(t, "grid_size: 5\ndrones:\n  - {id: A, x: 7, y: 0}\n")
	if _, err := Load(path, schemaPath); err == nil {
		t.Fatalf("expected off-grid drone error")
	}
}

func TestLoadConfig_MissingSchema(t *testing.T) {
	path := writeConfig(t, "grid_size: 5\n")
	if _, err := Load(path, filepath.Join(t.TempDir(), "missing.cue")); err == nil {
		t.Fatalf("expected error for missing schema")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.GridSize != 10 || len(cfg.Drones) != 3 || len(cfg.Hubs) != 4 || len(cfg.Zones) != 2 {
		t.Fatalf("unexpected default: %+v", cfg)
	}
}
