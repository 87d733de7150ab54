package sim

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"reliefops-sim/internal/commander"
	"reliefops-sim/internal/config"
	"reliefops-sim/internal/telemetry"
)

// MockWriter collects every row kind for validation.
type MockWriter struct {
	mu    sync.Mutex
	Rows  []telemetry.MoveRow
	Zones []telemetry.ZoneEventRow
	Stats []telemetry.StatsRow
}

func (w *MockWriter) Write(row telemetry.MoveRow) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Rows = append(w.Rows, row)
	return nil
}

func (w *MockWriter) WriteZoneEvent(row telemetry.ZoneEventRow) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Zones = append(w.Zones, row)
	return nil
}

func (w *MockWriter) WriteStats(row telemetry.StatsRow) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Stats = append(w.Stats, row)
	return nil
}

func (w *MockWriter) zoneEvents(eventType string) []telemetry.ZoneEventRow {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []telemetry.ZoneEventRow
	for _, z := range w.Zones {
		if z.EventType == eventType {
			out = append(out, z)
		}
	}
	return out
}

type fakeCommander struct {
	plan      commander.Plan
	err       error
	calls     int
	situation commander.Situation
}

func (f *fakeCommander) Decide(_ context.Context, s commander.Situation) (commander.Plan, error) {
	f.calls++
	f.situation = s
	return f.plan, f.err
}

func newTestSimulator(t *testing.T, cfg *config.SimulationConfig, cmdr commander.Commander) (*Simulator, *MockWriter) {
	t.Helper()
	w := &MockWriter{}
	s, err := NewSimulator(cfg, cmdr, w, time.Second)
	if err != nil {
		t.Fatalf("NewSimulator: %v", err)
	}
	s.now = func() time.Time { return time.Unix(1000, 0) }
	return s, w
}

func TestNewSimulatorRegistersConfigZones(t *testing.T) {
	s, w := newTestSimulator(t, config.Default(), &fakeCommander{})
	world := s.World()
	if len(world.Zones) != 2 || len(world.Drones) != 3 || len(world.Hubs) != 4 {
		t.Fatalf("unexpected world: %+v", world)
	}
	regs := w.zoneEvents(telemetry.ZoneEventRegistered)
	if len(regs) != 2 || regs[0].Source != SourceConfig || regs[0].ClusterID != "relief-01" {
		t.Fatalf("unexpected zone events: %+v", w.Zones)
	}
}

func TestNewSimulatorRejectsBadWorld(t *testing.T) {
	cfg := config.Default()
	cfg.Drones = append(cfg.Drones, config.DroneConfig{ID: "Alpha", X: 1, Y: 1})
	if _, err := NewSimulator(cfg, &fakeCommander{}, &MockWriter{}, time.Second); err == nil {
		t.Fatalf("expected duplicate drone error")
	}
}

func TestRunTurnAppliesPlan(t *testing.T) {
	cmdr := &fakeCommander{plan: commander.Plan{
		Reasoning: "Alpha to the fire, Beta holds.",
		Moves: []commander.Move{
			{DroneID: "Alpha", Target: telemetry.Coord{X: 2, Y: 2}},
			{DroneID: "Beta", Target: telemetry.Coord{X: 9, Y: 9}},
		},
	}}
	s, w := newTestSimulator(t, config.Default(), cmdr)

	rep, err := s.RunTurn(context.Background(), "hold the line")
	if err != nil {
		t.Fatalf("RunTurn: %v", err)
	}
	if rep.Turn != 1 || s.Turn() != 1 {
		t.Fatalf("expected turn 1, got %d/%d", rep.Turn, s.Turn())
	}
	if cmdr.situation.Override != "hold the line" || len(cmdr.situation.World.Zones) != 2 {
		t.Fatalf("commander got %+v", cmdr.situation)
	}
	if len(rep.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(rep.Results))
	}
	alpha := rep.Results[0]
	if alpha.Outcome != telemetry.OutcomeMoved || alpha.To != (telemetry.Coord{X: 1, Y: 0}) || alpha.Fuel != 95 {
		t.Fatalf("unexpected alpha result %+v", alpha)
	}
	if rep.Results[1].Outcome != telemetry.OutcomeHeld {
		t.Fatalf("expected beta to hold, got %+v", rep.Results[1])
	}
	if len(w.Rows) != 2 || w.Rows[0].Turn != 1 || w.Rows[0].DroneID != "Alpha" {
		t.Fatalf("unexpected move rows %+v", w.Rows)
	}
	if len(w.Stats) != 1 || w.Stats[0].TotalMoves != 1 || w.Stats[0].ActiveZones != 2 {
		t.Fatalf("unexpected stats rows %+v", w.Stats)
	}

	log := s.MissionLog(0)
	if len(log) != 1 || log[0].Reasoning != "Alpha to the fire, Beta holds." || len(log[0].Actions) != 2 {
		t.Fatalf("unexpected mission log %+v", log)
	}
	if !strings.Contains(log[0].String(), "- Alpha moved to (1, 0). Fuel: 95") {
		t.Fatalf("unexpected rendering %q", log[0].String())
	}
}

func TestRunTurnCommanderFailureLeavesWorld(t *testing.T) {
	boom := errors.New("quota exceeded")
	s, w := newTestSimulator(t, config.Default(), &fakeCommander{err: boom})
	before := s.World()

	_, err := s.RunTurn(context.Background(), "")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped commander error, got %v", err)
	}
	after := s.World()
	if len(after.Zones) != len(before.Zones) || after.Stats != before.Stats || after.Drones[0] != before.Drones[0] {
		t.Fatalf("world changed on failure")
	}
	if s.Turn() != 0 || s.Failures() != 1 {
		t.Fatalf("turn=%d failures=%d", s.Turn(), s.Failures())
	}
	if len(w.Rows) != 0 || len(w.Stats) != 0 {
		t.Fatalf("rows written on failure")
	}
	log := s.MissionLog(1)
	if len(log) != 1 || log[0].Error == "" || !strings.Contains(log[0].String(), "RADIO SILENCE") {
		t.Fatalf("expected radio silence entry, got %+v", log)
	}
}

func TestRunTurnDropsOffGridMoves(t *testing.T) {
	cmdr := &fakeCommander{plan: commander.Plan{
		Reasoning: "test",
		Moves: []commander.Move{
			{DroneID: "Alpha", Target: telemetry.Coord{X: 12, Y: 0}},
			{DroneID: "Gamma", Target: telemetry.Coord{X: 5, Y: 1}},
		},
	}}
	s, w := newTestSimulator(t, config.Default(), cmdr)
	rep, err := s.RunTurn(context.Background(), "")
	if err != nil {
		t.Fatalf("RunTurn: %v", err)
	}
	if len(rep.Dropped) != 1 || rep.Dropped[0].DroneID != "Alpha" {
		t.Fatalf("expected Alpha dropped, got %+v", rep.Dropped)
	}
	if len(w.Rows) != 1 || w.Rows[0].DroneID != "Gamma" {
		t.Fatalf("unexpected rows %+v", w.Rows)
	}
	d, _ := s.World().Drone("Alpha")
	if d.Fuel != 100 || d.Position != (telemetry.Coord{}) {
		t.Fatalf("dropped drone mutated: %+v", d)
	}
	if acts := s.MissionLog(1)[0].Actions; len(acts) != 2 || !strings.Contains(acts[1], "ignored") {
		t.Fatalf("unexpected actions %v", acts)
	}
}

func TestRunTurnClearsZone(t *testing.T) {
	cfg := config.Default()
	cfg.Drones = []config.DroneConfig{{ID: "Alpha", X: 1, Y: 2}}
	cfg.Zones = []config.ZoneConfig{{X: 2, Y: 2, Severity: 7}}
	cmdr := &fakeCommander{plan: commander.Plan{
		Reasoning: "go",
		Moves:     []commander.Move{{DroneID: "Alpha", Target: telemetry.Coord{X: 2, Y: 2}}},
	}}
	s, w := newTestSimulator(t, cfg, cmdr)
	rep, err := s.RunTurn(context.Background(), "")
	if err != nil {
		t.Fatalf("RunTurn: %v", err)
	}
	if rep.Results[0].Outcome != telemetry.OutcomeExtinguished || rep.Stats.ZonesCleared != 1 {
		t.Fatalf("unexpected report %+v", rep)
	}
	cleared := w.zoneEvents(telemetry.ZoneEventCleared)
	if len(cleared) != 1 || cleared[0].Severity != 7 || cleared[0].DroneID != "Alpha" || cleared[0].Turn != 1 {
		t.Fatalf("unexpected cleared events %+v", cleared)
	}
	if len(s.World().Zones) != 0 {
		t.Fatalf("zone not removed")
	}
}

func TestRegisterZone(t *testing.T) {
	s, w := newTestSimulator(t, config.Default(), &fakeCommander{})
	res := s.RegisterZone(context.Background(), 5, 5, 0, SourceOperator)
	if !res.Accepted || res.Message != "Zone added at (5, 5)" || res.Zone.Severity != telemetry.DefaultSeverity {
		t.Fatalf("unexpected result %+v", res)
	}
	res = s.RegisterZone(context.Background(), 10, 3, 4, SourceOperator)
	if res.Accepted || res.Message != "Coordinates out of bounds." {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(s.World().Zones) != 3 {
		t.Fatalf("expected 3 zones, got %d", len(s.World().Zones))
	}
	rej := w.zoneEvents(telemetry.ZoneEventRejected)
	if len(rej) != 1 || rej[0].X != 10 || rej[0].Source != SourceOperator {
		t.Fatalf("unexpected rejected rows %+v", rej)
	}
}

func TestScenarioPhaseAdvances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drill.yaml")
	doc := `name: drill
phases:
  - name: opening
    incidents:
      - {x: 3, y: 3, severity: 4}
    triggers:
      - {event: turn_elapsed, value: 1, next: second}
  - name: second
    incidents:
      - {x: 6, y: 6}
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write scenario: %v", err)
	}
	cfg := config.Default()
	cfg.Zones = nil
	cfg.Scenario = path
	s, w := newTestSimulator(t, cfg, &fakeCommander{plan: commander.Plan{Reasoning: "wait"}})

	if s.Phase() != "opening" || len(s.World().Zones) != 1 {
		t.Fatalf("expected opening phase with one zone, got %q %+v", s.Phase(), s.World().Zones)
	}
	rep, err := s.RunTurn(context.Background(), "")
	if err != nil {
		t.Fatalf("RunTurn: %v", err)
	}
	if rep.Phase != "second" || s.Phase() != "second" {
		t.Fatalf("expected phase second, got %q", rep.Phase)
	}
	zones := s.World().Zones
	if len(zones) != 2 || zones[1].Coords != (telemetry.Coord{X: 6, Y: 6}) || zones[1].Severity != telemetry.DefaultSeverity {
		t.Fatalf("unexpected zones %+v", zones)
	}
	regs := w.zoneEvents(telemetry.ZoneEventRegistered)
	if regs[len(regs)-1].Source != "scenario:second" {
		t.Fatalf("unexpected source %q", regs[len(regs)-1].Source)
	}
}

func TestUnknownScenario(t *testing.T) {
	cfg := config.Default()
	cfg.Scenario = "no-such-scenario"
	if _, err := NewSimulator(cfg, &fakeCommander{}, &MockWriter{}, time.Second); err == nil {
		t.Fatalf("expected error for unknown scenario")
	}
}

func TestRandomIncidents(t *testing.T) {
	cfg := config.Default()
	cfg.Incidents = config.IncidentConfig{Rate: 1, MaxActive: 3, Seed: 42}
	s, w := newTestSimulator(t, cfg, &fakeCommander{plan: commander.Plan{Reasoning: "wait"}})
	for i := 0; i < 3; i++ {
		if _, err := s.RunTurn(context.Background(), ""); err != nil {
			t.Fatalf("RunTurn: %v", err)
		}
	}
	if n := len(s.World().Zones); n != 3 {
		t.Fatalf("expected cap of 3 active zones, got %d", n)
	}
	var spawned []telemetry.ZoneEventRow
	for _, z := range w.zoneEvents(telemetry.ZoneEventRegistered) {
		if strings.HasPrefix(z.Source, SourceIncident+":") {
			spawned = append(spawned, z)
		}
	}
	if len(spawned) != 1 || spawned[0].IncidentID == "" {
		t.Fatalf("unexpected spawned incidents %+v", spawned)
	}
}

func TestMissionLogOrderAndClear(t *testing.T) {
	s, _ := newTestSimulator(t, config.Default(), &fakeCommander{plan: commander.Plan{Reasoning: "wait"}})
	for i := 0; i < 3; i++ {
		if _, err := s.RunTurn(context.Background(), ""); err != nil {
			t.Fatalf("RunTurn: %v", err)
		}
	}
	log := s.MissionLog(2)
	if len(log) != 2 || log[0].Turn != 3 || log[1].Turn != 2 {
		t.Fatalf("expected newest first, got %+v", log)
	}
	s.ClearMissionLog()
	if len(s.MissionLog(0)) != 0 {
		t.Fatalf("log not cleared")
	}
}

func TestRunAutopilot(t *testing.T) {
	s, _ := newTestSimulator(t, config.Default(), commander.NewScriptedCommander(20))
	s.tickInterval = 5 * time.Millisecond
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	s.Run(ctx)
	if s.Turn() == 0 {
		t.Fatalf("autopilot did not run any turn")
	}
	if s.Stats().TotalMoves == 0 {
		t.Fatalf("expected scripted commander to move drones")
	}
}
