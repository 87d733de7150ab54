package telemetry

import "time"

// StatsTableName is the GreptimeDB table for per-turn fleet statistics.
var StatsTableName = envOr("FLEET_STATS_TABLE", "fleet_stats")

// StatsRow captures the aggregate counters at the end of a turn.
type StatsRow struct {
	ClusterID         string    `json:"cluster_id"`
	Turn              int       `json:"turn"`
	TotalMoves        int       `json:"total_moves"`
	TotalFuelConsumed int       `json:"total_fuel_consumed"`
	ZonesCleared      int       `json:"zones_cleared"`
	RefuelCount       int       `json:"refuel_count"`
	ActiveZones       int       `json:"active_zones"`
	Timestamp         time.Time `json:"ts"`
}

func (StatsRow) TableName() string {
	return StatsTableName
}
