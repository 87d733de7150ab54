package sim

import (
	"errors"
	"io"

	"reliefops-sim/internal/telemetry"
)

// MultiWriter fans rows out to multiple writers. Zone events and stats go to the
// writers that implement ZoneEventWriter or StatsWriter.
type MultiWriter struct {
	writers []MoveWriter
}

// NewMultiWriter creates a new MultiWriter.
func NewMultiWriter(ws ...MoveWriter) *MultiWriter {
	return &MultiWriter{writers: ws}
}

// Write sends a move row to all writers.
func (mw *MultiWriter) Write(row telemetry.MoveRow) error {
	for _, w := range mw.writers {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteBatch sends multiple move rows to all writers, using batch if supported.
func (mw *MultiWriter) WriteBatch(rows []telemetry.MoveRow) error {
	for _, w := range mw.writers {
		if err := writeMoves(w, rows); err != nil {
			return err
		}
	}
	return nil
}

// WriteZoneEvent sends a zone event to every zone event writer.
func (mw *MultiWriter) WriteZoneEvent(row telemetry.ZoneEventRow) error {
	return mw.WriteZoneEvents([]telemetry.ZoneEventRow{row})
}

// WriteZoneEvents sends zone events to every zone event writer, using batch if supported.
func (mw *MultiWriter) WriteZoneEvents(rows []telemetry.ZoneEventRow) error {
	for _, w := range mw.writers {
		zw, ok := w.(ZoneEventWriter)
		if !ok {
			continue
		}
		if err := writeZoneEvents(zw, rows); err != nil {
			return err
		}
	}
	return nil
}

// WriteStats sends the per-turn counters to every stats writer.
func (mw *MultiWriter) WriteStats(row telemetry.StatsRow) error {
	for _, w := range mw.writers {
		if sw, ok := w.(StatsWriter); ok {
			if err := sw.WriteStats(row); err != nil {
				return err
			}
		}
	}
	return nil
}

// SetAdminStatus forwards the admin indicator to writers that show it.
func (mw *MultiWriter) SetAdminStatus(listening bool) {
	for _, w := range mw.writers {
		if aw, ok := w.(AdminStatusWriter); ok {
			aw.SetAdminStatus(listening)
		}
	}
}

// SetZoneReporter forwards the reporting callback to interactive writers.
func (mw *MultiWriter) SetZoneReporter(fn func(x, y, severity int) string) {
	for _, w := range mw.writers {
		if zr, ok := w.(ZoneReporter); ok {
			zr.SetZoneReporter(fn)
		}
	}
}

// Close closes every writer that holds resources.
func (mw *MultiWriter) Close() error {
	var errs []error
	for _, w := range mw.writers {
		if c, ok := w.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}
