package sim

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"reliefops-sim/internal/telemetry"
)

type collectWriter struct{ rows []telemetry.MoveRow }

func (c *collectWriter) Write(r telemetry.MoveRow) error {
	c.rows = append(c.rows, r)
	return nil
}

func TestReplayLog(t *testing.T) {
	rows := []telemetry.MoveRow{
		{ClusterID: "c1", DroneID: "Alpha", Turn: 1, Timestamp: time.Unix(0, 0)},
		{ClusterID: "c1", DroneID: "Beta", Turn: 1, Timestamp: time.Unix(1, 0)},
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, r := range rows {
		if err := enc.Encode(r); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	cw := &collectWriter{}
	if err := ReplayLog(&buf, cw, 0); err != nil {
		t.Fatalf("ReplayLog: %v", err)
	}
	if len(cw.rows) != len(rows) {
		t.Fatalf("expected %d rows, got %d", len(rows), len(cw.rows))
	}
	for i, r := range rows {
		if cw.rows[i].DroneID != r.DroneID {
			t.Fatalf("row %d mismatch: %+v vs %+v", i, cw.rows[i], r)
		}
	}
}

func TestReplayLogSpeed(t *testing.T) {
	rows := []telemetry.MoveRow{
		{DroneID: "Alpha", Timestamp: time.Unix(0, 0)},
		{DroneID: "Alpha", Timestamp: time.Unix(0, int64(20*time.Millisecond))},
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, r := range rows {
		_ = enc.Encode(r)
	}
	start := time.Now()
	if err := ReplayLog(&buf, &collectWriter{}, 1); err != nil {
		t.Fatalf("ReplayLog: %v", err)
	}
	if time.Since(start) < 20*time.Millisecond {
		t.Fatalf("expected real-time delay")
	}
}

func TestReplayLogMalformed(t *testing.T) {
	if err := ReplayLog(strings.NewReader("{not json"), &collectWriter{}, 0); err == nil {
		t.Fatalf("expected decode error")
	}
}
