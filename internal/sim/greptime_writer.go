package sim

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"

	"reliefops-sim/internal/telemetry"
)

// greptimeClient is the subset of the ingester client used by the writer.
type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeDBWriter writes moves, zone events and stats to GreptimeDB via the ingester client.
type GreptimeDBWriter struct {
	client     greptimeClient
	moveTable  string
	zoneTable  string
	statsTable string
	timeout    time.Duration
}

// NewGreptimeDBWriter connects to the gRPC endpoint host:port and database.
// Tables are created on first write.
func NewGreptimeDBWriter(host string, port int, database string) (*GreptimeDBWriter, error) {
	cfg := greptime.NewConfig(host).WithPort(port).WithDatabase(database)
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("greptime client: %w", err)
	}
	return &GreptimeDBWriter{
		client:     client,
		moveTable:  telemetry.MoveTableName,
		zoneTable:  telemetry.ZoneEventTableName,
		statsTable: telemetry.StatsTableName,
		timeout:    5 * time.Second,
	}, nil
}

func (w *GreptimeDBWriter) write(name string, tbl *table.Table, n int) error {
	ctx := context.Background()
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}
	if _, err := w.client.Write(ctx, tbl); err != nil {
		slog.Error("greptime write failed", "table", name, "err", err)
		return err
	}
	slog.Debug("greptime wrote rows", "table", name, "rows", n)
	return nil
}

// Write inserts a single move row.
func (w *GreptimeDBWriter) Write(row telemetry.MoveRow) error {
	return w.WriteBatch([]telemetry.MoveRow{row})
}

// WriteBatch inserts multiple move rows.
func (w *GreptimeDBWriter) WriteBatch(rows []telemetry.MoveRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := table.New(w.moveTable)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("cluster_id", types.STRING)
	tbl.AddTagColumn("drone_id", types.STRING)
	tbl.AddFieldColumn("turn", types.INT64)
	tbl.AddFieldColumn("outcome", types.STRING)
	tbl.AddFieldColumn("x", types.INT64)
	tbl.AddFieldColumn("y", types.INT64)
	tbl.AddFieldColumn("target_x", types.INT64)
	tbl.AddFieldColumn("target_y", types.INT64)
	tbl.AddFieldColumn("fuel", types.INT64)
	tbl.AddFieldColumn("moved", types.BOOLEAN)
	tbl.AddFieldColumn("message", types.STRING)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)
	for _, r := range rows {
		if err := tbl.AddRow(r.ClusterID, r.DroneID, int64(r.Turn), r.Outcome,
			int64(r.X), int64(r.Y), int64(r.TargetX), int64(r.TargetY),
			int64(r.Fuel), r.Moved, r.Message, r.Timestamp); err != nil {
			return err
		}
	}
	return w.write(w.moveTable, tbl, len(rows))
}

// WriteZoneEvent inserts a single zone event.
func (w *GreptimeDBWriter) WriteZoneEvent(e telemetry.ZoneEventRow) error {
	return w.WriteZoneEvents([]telemetry.ZoneEventRow{e})
}

// WriteZoneEvents inserts multiple zone events.
func (w *GreptimeDBWriter) WriteZoneEvents(rows []telemetry.ZoneEventRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := table.New(w.zoneTable)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("cluster_id", types.STRING)
	tbl.AddTagColumn("event_type", types.STRING)
	tbl.AddFieldColumn("turn", types.INT64)
	tbl.AddFieldColumn("x", types.INT64)
	tbl.AddFieldColumn("y", types.INT64)
	tbl.AddFieldColumn("severity", types.INT64)
	tbl.AddFieldColumn("drone_id", types.STRING)
	tbl.AddFieldColumn("incident_id", types.STRING)
	tbl.AddFieldColumn("source", types.STRING)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)
	for _, r := range rows {
		if err := tbl.AddRow(r.ClusterID, r.EventType, int64(r.Turn), int64(r.X), int64(r.Y),
			int64(r.Severity), r.DroneID, r.IncidentID, r.Source, r.Timestamp); err != nil {
			return err
		}
	}
	return w.write(w.zoneTable, tbl, len(rows))
}

// WriteStats inserts the per-turn counters.
func (w *GreptimeDBWriter) WriteStats(r telemetry.StatsRow) error {
	tbl, err := table.New(w.statsTable)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("cluster_id", types.STRING)
	tbl.AddFieldColumn("turn", types.INT64)
	tbl.AddFieldColumn("total_moves", types.INT64)
	tbl.AddFieldColumn("total_fuel_consumed", types.INT64)
	tbl.AddFieldColumn("zones_cleared", types.INT64)
	tbl.AddFieldColumn("refuel_count", types.INT64)
	tbl.AddFieldColumn("active_zones", types.INT64)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)
	if err := tbl.AddRow(r.ClusterID, int64(r.Turn), int64(r.TotalMoves), int64(r.TotalFuelConsumed),
		int64(r.ZonesCleared), int64(r.RefuelCount), int64(r.ActiveZones), r.Timestamp); err != nil {
		return err
	}
	return w.write(w.statsTable, tbl, 1)
}
