package sim

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"reliefops-sim/internal/config"
	"reliefops-sim/internal/telemetry"
)

func TestJSONStdoutWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	w := &JSONStdoutWriter{out: buf}
	if err := w.Write(telemetry.MoveRow{ClusterID: "c1", DroneID: "Alpha", Timestamp: time.Unix(0, 0)}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.WriteStats(telemetry.StatsRow{Turn: 2}); err != nil {
		t.Fatalf("stats: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", buf.String())
	}
	var row telemetry.MoveRow
	if err := json.Unmarshal([]byte(lines[0]), &row); err != nil || row.DroneID != "Alpha" {
		t.Fatalf("unexpected row %+v (%v)", row, err)
	}
}

func TestColorStdoutWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	w := &ColorStdoutWriter{cfg: config.Default(), out: buf}
	row := telemetry.MoveRow{ClusterID: "c1", DroneID: "Alpha", Turn: 1, Outcome: "extinguished", Fuel: 85, Message: "Alpha EXTINGUISHED fire at (2, 2)!", Timestamp: time.Unix(0, 0)}
	if err := w.Write(row); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	output := buf.String()
	if !strings.Contains(output, "Relief Operation:") || !strings.Contains(output, "Drones:") {
		t.Fatalf("overview not printed: %q", output)
	}
	if !strings.Contains(output, "\x1b[") || !strings.Contains(output, "EXTINGUISHED") {
		t.Fatalf("expected colorized move line: %q", output)
	}

	buf.Reset()
	if err := w.WriteZoneEvent(telemetry.ZoneEventRow{EventType: telemetry.ZoneEventRegistered, X: 1, Y: 1, Source: "operator"}); err != nil {
		t.Fatalf("zone write failed: %v", err)
	}
	if strings.Contains(buf.String(), "Relief Operation:") {
		t.Fatalf("overview printed more than once")
	}
	if !strings.Contains(buf.String(), "source=operator") {
		t.Fatalf("unexpected zone line %q", buf.String())
	}
}
