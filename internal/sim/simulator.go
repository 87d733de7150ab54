// Simulator driving the kernel one commander turn at a time
package sim

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"reliefops-sim/internal/commander"
	"reliefops-sim/internal/config"
	"reliefops-sim/internal/incident"
	"reliefops-sim/internal/logging"
	"reliefops-sim/internal/scenario"
	"reliefops-sim/internal/telemetry"
)

// Zone sources recorded on zone event rows.
const (
	SourceConfig   = "config"
	SourceOperator = "operator"
	SourceIncident = "incident"
	SourceScenario = "scenario"
)

// TurnReport summarises one completed turn.
type TurnReport struct {
	Turn      int                    `json:"turn"`
	Reasoning string                 `json:"reasoning"`
	Results   []telemetry.StepResult `json:"results"`
	Dropped   []commander.Move       `json:"dropped,omitempty"`
	Stats     telemetry.Stats        `json:"stats"`
	Phase     string                 `json:"phase,omitempty"`
}

// Simulator owns the kernel and serialises access to it. Turns are driven either
// by RunTurn or by the Run autopilot.
type Simulator struct {
	clusterID    string
	kernel       *Kernel
	commander    commander.Commander
	gen          *telemetry.Generator
	writer       MoveWriter
	zoneWriter   ZoneEventWriter
	statsWriter  StatsWriter
	incidents    *incident.Engine
	scenario     *scenario.Scenario
	phase        string
	tickInterval time.Duration

	turn       int
	failures   int
	missionLog []MissionEntry

	now func() time.Time

	turnMu sync.Mutex
	mu     sync.Mutex
}

// KernelConfigFrom converts the loaded configuration into a kernel world.
func KernelConfigFrom(cfg *config.SimulationConfig) KernelConfig {
	kc := KernelConfig{GridSize: cfg.GridSize}
	for _, d := range cfg.Drones {
		kc.Drones = append(kc.Drones, DroneSpec{ID: d.ID, Start: telemetry.Coord{X: d.X, Y: d.Y}})
	}
	for _, h := range cfg.Hubs {
		kc.Hubs = append(kc.Hubs, telemetry.Coord{X: h.X, Y: h.Y})
	}
	return kc
}

// NewSimulator builds the world from cfg and registers its initial zones. The
// writer may additionally implement ZoneEventWriter and StatsWriter.
func NewSimulator(cfg *config.SimulationConfig, cmdr commander.Commander, writer MoveWriter, tickInterval time.Duration) (*Simulator, error) {
	k, err := NewKernel(KernelConfigFrom(cfg))
	if err != nil {
		return nil, fmt.Errorf("build kernel: %w", err)
	}
	seed := cfg.Incidents.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s := &Simulator{
		clusterID:    cfg.ClusterID,
		kernel:       k,
		commander:    cmdr,
		writer:       writer,
		incidents:    incident.NewEngine(cfg.GridSize, cfg.Incidents.Rate, cfg.Incidents.MaxActive, rand.New(rand.NewSource(seed))),
		tickInterval: tickInterval,
		now:          time.Now,
	}
	s.gen = telemetry.NewGenerator(cfg.ClusterID).WithClock(func() time.Time { return s.now() })
	if zw, ok := writer.(ZoneEventWriter); ok {
		s.zoneWriter = zw
	}
	if sw, ok := writer.(StatsWriter); ok {
		s.statsWriter = sw
	}
	if cfg.Scenario != "" {
		sc, err := scenario.Resolve(cfg.Scenario)
		if err != nil {
			return nil, err
		}
		s.scenario = sc
	}

	var rows []telemetry.ZoneEventRow
	for _, z := range cfg.Zones {
		row, _ := s.registerLocked(z.X, z.Y, z.Severity, SourceConfig, "")
		rows = append(rows, row)
	}
	if s.scenario != nil {
		rows = append(rows, s.enterPhaseLocked(s.scenario.Phases[0])...)
	}
	s.emitZoneEvents(context.Background(), rows)
	return s, nil
}

// RegisterZone reports an emergency at (x, y). A non-positive severity uses the
// default. Rejections are returned, not errors.
func (s *Simulator) RegisterZone(ctx context.Context, x, y, severity int, source string) telemetry.ZoneResult {
	if severity <= 0 {
		severity = telemetry.DefaultSeverity
	}
	s.mu.Lock()
	row, res := s.registerLocked(x, y, severity, source, "")
	s.mu.Unlock()
	s.emitZoneEvents(ctx, []telemetry.ZoneEventRow{row})
	logging.FromContext(ctx).Info("zone reported", "x", x, "y", y, "severity", severity, "source", source, "accepted", res.Accepted)
	return res
}

func (s *Simulator) registerLocked(x, y, severity int, source, incidentID string) (telemetry.ZoneEventRow, telemetry.ZoneResult) {
	res := s.kernel.RegisterZone(x, y, severity)
	event := telemetry.ZoneEventRegistered
	if !res.Accepted {
		event = telemetry.ZoneEventRejected
	}
	row := s.gen.ZoneRow(s.turn, event, res.Zone, "")
	row.Source = source
	row.IncidentID = incidentID
	return row, res
}

func (s *Simulator) enterPhaseLocked(p scenario.Phase) []telemetry.ZoneEventRow {
	s.phase = p.Name
	var rows []telemetry.ZoneEventRow
	for _, inc := range p.Incidents {
		severity := inc.Severity
		if severity <= 0 {
			severity = telemetry.DefaultSeverity
		}
		row, _ := s.registerLocked(inc.X, inc.Y, severity, SourceScenario+":"+p.Name, "")
		rows = append(rows, row)
	}
	return rows
}

// advanceLocked evaluates scenario triggers and rolls for a random incident.
func (s *Simulator) advanceLocked(ctx context.Context) []telemetry.ZoneEventRow {
	log := logging.FromContext(ctx)
	var rows []telemetry.ZoneEventRow
	if s.scenario != nil {
		events := []scenario.Event{
			{Type: scenario.EventTurnElapsed, Value: s.turn},
			{Type: scenario.EventZonesCleared, Value: s.kernel.Stats().ZonesCleared},
		}
		for _, ev := range events {
			next, ok := s.scenario.NextPhase(s.phase, ev)
			if !ok {
				continue
			}
			p, ok := s.scenario.Phase(next)
			if !ok {
				log.Warn("scenario trigger names unknown phase", "phase", next)
				break
			}
			log.Info("scenario phase change", "from", s.phase, "to", next, "turn", s.turn)
			rows = append(rows, s.enterPhaseLocked(p)...)
			break
		}
	}
	if inc, ok := s.incidents.Step(len(s.kernel.Zones())); ok {
		log.Info("incident reported", "id", inc.ID, "kind", inc.Kind, "coords", inc.Coords.String(), "severity", inc.Severity)
		row, _ := s.registerLocked(inc.Coords.X, inc.Coords.Y, inc.Severity, SourceIncident+":"+string(inc.Kind), inc.ID)
		rows = append(rows, row)
	}
	return rows
}

func (s *Simulator) emitZoneEvents(ctx context.Context, rows []telemetry.ZoneEventRow) {
	if s.zoneWriter == nil {
		return
	}
	if err := writeZoneEvents(s.zoneWriter, rows); err != nil {
		logging.FromContext(ctx).Error("zone event write failed", "err", err)
	}
}

// World returns a copy of the current world.
func (s *Simulator) World() telemetry.World {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kernel.Snapshot()
}

// Stats returns the kernel counters.
func (s *Simulator) Stats() telemetry.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kernel.Stats()
}

// Turn returns the number of completed turns.
func (s *Simulator) Turn() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turn
}

// Failures returns how many turns were lost to commander errors.
func (s *Simulator) Failures() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failures
}

// Phase returns the active scenario phase, or "" without a scenario.
func (s *Simulator) Phase() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// ClusterID identifies this simulator in emitted rows.
func (s *Simulator) ClusterID() string { return s.clusterID }
