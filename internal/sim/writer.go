package sim

import "reliefops-sim/internal/telemetry"

// MoveWriter is implemented by every output and receives one row per step request.
type MoveWriter interface {
	Write(telemetry.MoveRow) error
}

// Optional: writers can also support batch mode
type batchWriter interface {
	WriteBatch([]telemetry.MoveRow) error
}

// ZoneEventWriter handles zone lifecycle events.
type ZoneEventWriter interface {
	WriteZoneEvent(telemetry.ZoneEventRow) error
}

// Optional: zone event writers may support batch mode.
type batchZoneEventWriter interface {
	WriteZoneEvents([]telemetry.ZoneEventRow) error
}

// StatsWriter handles per-turn fleet statistics.
type StatsWriter interface {
	WriteStats(telemetry.StatsRow) error
}

func writeMoves(w MoveWriter, rows []telemetry.MoveRow) error {
	if len(rows) == 0 {
		return nil
	}
	if bw, ok := w.(batchWriter); ok {
		return bw.WriteBatch(rows)
	}
	for _, r := range rows {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	return nil
}

func writeZoneEvents(w ZoneEventWriter, rows []telemetry.ZoneEventRow) error {
	if len(rows) == 0 {
		return nil
	}
	if bw, ok := w.(batchZoneEventWriter); ok {
		return bw.WriteZoneEvents(rows)
	}
	for _, r := range rows {
		if err := w.WriteZoneEvent(r); err != nil {
			return err
		}
	}
	return nil
}
