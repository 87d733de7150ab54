package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"reliefops-sim/internal/telemetry"
)

// JSONStdoutWriter prints moves, zone events and stats as JSON lines to STDOUT.
type JSONStdoutWriter struct {
	out io.Writer
}

// NewJSONStdoutWriter creates a JSONStdoutWriter writing to os.Stdout.
func NewJSONStdoutWriter() *JSONStdoutWriter {
	return &JSONStdoutWriter{out: os.Stdout}
}

func (w *JSONStdoutWriter) emit(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w.out, string(data))
	return err
}

// Write outputs a move row in JSON format.
func (w *JSONStdoutWriter) Write(row telemetry.MoveRow) error {
	return w.emit(row)
}

// WriteBatch outputs multiple move rows in JSON format.
func (w *JSONStdoutWriter) WriteBatch(rows []telemetry.MoveRow) error {
	for _, r := range rows {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteZoneEvent outputs a zone event in JSON format.
func (w *JSONStdoutWriter) WriteZoneEvent(e telemetry.ZoneEventRow) error {
	return w.emit(e)
}

// WriteStats outputs the per-turn counters in JSON format.
func (w *JSONStdoutWriter) WriteStats(row telemetry.StatsRow) error {
	return w.emit(row)
}
