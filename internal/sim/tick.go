package sim

import (
	"context"
	"fmt"
	"time"

	"reliefops-sim/internal/commander"
	"reliefops-sim/internal/logging"
	"reliefops-sim/internal/telemetry"
)

// Run drives one turn per tick interval and stops when the context is done.
// Commander failures are logged and the next tick retries.
func (s *Simulator) Run(ctx context.Context) {
	log := logging.FromContext(ctx)
	interval := s.tickInterval
	if interval <= 0 {
		interval = time.Second
	}
	log.Info("starting simulator", "tick_interval", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.RunTurn(ctx, ""); err != nil {
				log.Warn("turn skipped", "err", err)
			}
		case <-ctx.Done():
			log.Info("stopping simulator")
			return
		}
	}
}

// RunTurn asks the commander for a plan and applies it. The override is passed to
// the commander verbatim. When the commander fails the world is left untouched and
// the error is returned.
func (s *Simulator) RunTurn(ctx context.Context, override string) (TurnReport, error) {
	log := logging.FromContext(ctx)
	s.turnMu.Lock()
	defer s.turnMu.Unlock()

	s.mu.Lock()
	turn := s.turn + 1
	world := s.kernel.Snapshot()
	s.mu.Unlock()

	plan, err := s.commander.Decide(ctx, commander.Situation{World: world, Override: override})
	if err != nil {
		s.mu.Lock()
		s.failures++
		s.logMissionLocked(MissionEntry{Turn: turn, Timestamp: s.now().UTC(), Override: override, Error: err.Error()})
		s.mu.Unlock()
		log.Error("commander failed", "turn", turn, "err", err)
		return TurnReport{Turn: turn}, fmt.Errorf("turn %d: %w", turn, err)
	}

	plan, dropped := plan.Filter(world.GridSize)
	for _, m := range dropped {
		log.Warn("dropping off-grid move", "turn", turn, "drone_id", m.DroneID, "target", m.Target.String())
	}

	report := TurnReport{Turn: turn, Reasoning: plan.Reasoning, Dropped: dropped}
	var moves []telemetry.MoveRow
	var zoneRows []telemetry.ZoneEventRow
	actions := make([]string, 0, len(plan.Moves)+len(dropped))

	s.mu.Lock()
	s.turn = turn
	for _, m := range plan.Moves {
		before := s.kernel.Zones()
		res := s.kernel.StepDrone(m.DroneID, m.Target.X, m.Target.Y)
		report.Results = append(report.Results, res)
		actions = append(actions, res.Message)
		moves = append(moves, s.gen.MoveRow(turn, res))
		if res.Outcome == telemetry.OutcomeExtinguished {
			z := clearedZone(before, res.To)
			zoneRows = append(zoneRows, s.gen.ZoneRow(turn, telemetry.ZoneEventCleared, z, res.DroneID))
		}
		log.Debug("step", "turn", turn, "drone_id", res.DroneID, "outcome", res.Outcome, "fuel", res.Fuel)
	}
	for _, m := range dropped {
		actions = append(actions, fmt.Sprintf("%s order ignored: target %s is outside the grid.", m.DroneID, m.Target))
	}
	zoneRows = append(zoneRows, s.advanceLocked(ctx)...)
	report.Stats = s.kernel.Stats()
	report.Phase = s.phase
	statsRow := s.gen.StatsRow(turn, report.Stats, len(s.kernel.Zones()))
	s.logMissionLocked(MissionEntry{
		Turn:      turn,
		Timestamp: s.now().UTC(),
		Reasoning: plan.Reasoning,
		Actions:   actions,
		Override:  override,
	})
	s.mu.Unlock()

	if s.writer != nil {
		if err := writeMoves(s.writer, moves); err != nil {
			log.Error("move write failed", "turn", turn, "err", err)
		}
	}
	s.emitZoneEvents(ctx, zoneRows)
	if s.statsWriter != nil {
		if err := s.statsWriter.WriteStats(statsRow); err != nil {
			log.Error("stats write failed", "turn", turn, "err", err)
		}
	}
	log.Info("turn complete", "turn", turn, "moves", len(plan.Moves), "zones_cleared", report.Stats.ZonesCleared, "active_zones", statsRow.ActiveZones)
	return report, nil
}

// clearedZone finds the zone the kernel removed at c, given the zones before the step.
func clearedZone(before []telemetry.Zone, c telemetry.Coord) telemetry.Zone {
	for _, z := range before {
		if z.Coords == c {
			return z
		}
	}
	return telemetry.Zone{Coords: c}
}
