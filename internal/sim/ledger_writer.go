package sim

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"reliefops-sim/internal/telemetry"
)

// LedgerWriter appends every row to a local SQLite database for post-mission analysis.
type LedgerWriter struct {
	db *sql.DB
}

// DroneTotal aggregates the ledger for one drone.
type DroneTotal struct {
	DroneID      string
	Moves        int
	ZonesCleared int
	Refuels      int
	Rejected     int
}

// OpenLedger opens or creates the ledger at path.
func OpenLedger(path string) (*LedgerWriter, error) {
	if path == "" {
		return nil, fmt.Errorf("empty ledger path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	stmts := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		`CREATE TABLE IF NOT EXISTS moves (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			cluster_id TEXT NOT NULL,
			turn INTEGER NOT NULL,
			drone_id TEXT NOT NULL,
			outcome TEXT NOT NULL,
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			target_x INTEGER NOT NULL,
			target_y INTEGER NOT NULL,
			fuel INTEGER NOT NULL,
			moved INTEGER NOT NULL,
			message TEXT NOT NULL,
			ts TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS moves_drone ON moves(drone_id, turn);`,
		`CREATE TABLE IF NOT EXISTS zone_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			cluster_id TEXT NOT NULL,
			turn INTEGER NOT NULL,
			event_type TEXT NOT NULL,
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			severity INTEGER NOT NULL,
			drone_id TEXT NOT NULL,
			incident_id TEXT NOT NULL,
			source TEXT NOT NULL,
			ts TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS turn_stats (
			cluster_id TEXT NOT NULL,
			turn INTEGER NOT NULL,
			total_moves INTEGER NOT NULL,
			total_fuel_consumed INTEGER NOT NULL,
			zones_cleared INTEGER NOT NULL,
			refuel_count INTEGER NOT NULL,
			active_zones INTEGER NOT NULL,
			ts TEXT NOT NULL,
			PRIMARY KEY (cluster_id, turn)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init ledger: %w", err)
		}
	}
	return &LedgerWriter{db: db}, nil
}

func ledgerTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Write appends one move.
func (l *LedgerWriter) Write(r telemetry.MoveRow) error {
	return l.WriteBatch([]telemetry.MoveRow{r})
}

// WriteBatch appends a turn's moves in one transaction.
func (l *LedgerWriter) WriteBatch(rows []telemetry.MoveRow) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := l.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO moves(cluster_id, turn, drone_id, outcome, x, y, target_x, target_y, fuel, moved, message, ts)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.Exec(r.ClusterID, r.Turn, r.DroneID, r.Outcome, r.X, r.Y, r.TargetX, r.TargetY,
			r.Fuel, boolInt(r.Moved), r.Message, ledgerTime(r.Timestamp)); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// WriteZoneEvent appends a zone event.
func (l *LedgerWriter) WriteZoneEvent(e telemetry.ZoneEventRow) error {
	_, err := l.db.Exec(`INSERT INTO zone_events(cluster_id, turn, event_type, x, y, severity, drone_id, incident_id, source, ts)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ClusterID, e.Turn, e.EventType, e.X, e.Y, e.Severity, e.DroneID, e.IncidentID, e.Source, ledgerTime(e.Timestamp))
	return err
}

// WriteStats records the counters at the end of a turn.
func (l *LedgerWriter) WriteStats(r telemetry.StatsRow) error {
	_, err := l.db.Exec(`INSERT OR REPLACE INTO turn_stats(cluster_id, turn, total_moves, total_fuel_consumed, zones_cleared, refuel_count, active_zones, ts)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ClusterID, r.Turn, r.TotalMoves, r.TotalFuelConsumed, r.ZonesCleared, r.RefuelCount, r.ActiveZones, ledgerTime(r.Timestamp))
	return err
}

// DroneTotals summarises the ledger per drone, ordered by drone id.
func (l *LedgerWriter) DroneTotals(ctx context.Context) ([]DroneTotal, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT drone_id,
			SUM(moved),
			SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END),
			SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END),
			SUM(CASE WHEN outcome IN (?, ?, ?) THEN 1 ELSE 0 END)
		FROM moves GROUP BY drone_id ORDER BY drone_id`,
		string(telemetry.OutcomeExtinguished), string(telemetry.OutcomeRefueled),
		string(telemetry.OutcomeNotFound), string(telemetry.OutcomeOutOfFuel), string(telemetry.OutcomeTargetRejected))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []DroneTotal
	for rows.Next() {
		var t DroneTotal
		if err := rows.Scan(&t.DroneID, &t.Moves, &t.ZonesCleared, &t.Refuels, &t.Rejected); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Close closes the database.
func (l *LedgerWriter) Close() error {
	return l.db.Close()
}
