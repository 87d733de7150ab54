// ColorStdoutWriter prints human-friendly, colorized turn output to STDOUT.
package sim

import (
	"fmt"
	"io"
	"os"
	"sync"
	"text/tabwriter"
	"time"

	"reliefops-sim/internal/config"
	"reliefops-sim/internal/telemetry"
)

const (
	colorReset   = "\x1b[0m"
	colorRed     = "\x1b[31m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorBlue    = "\x1b[34m"
	colorMagenta = "\x1b[35m"
	colorCyan    = "\x1b[36m"
	colorGray    = "\x1b[90m"
)

// ColorStdoutWriter prints rows using ANSI colors.
type ColorStdoutWriter struct {
	cfg  *config.SimulationConfig
	out  io.Writer
	once sync.Once
}

// NewColorStdoutWriter creates a ColorStdoutWriter writing to os.Stdout.
func NewColorStdoutWriter(cfg *config.SimulationConfig) *ColorStdoutWriter {
	return &ColorStdoutWriter{cfg: cfg, out: os.Stdout}
}

func (w *ColorStdoutWriter) printOverview() {
	if w.cfg == nil {
		return
	}
	fmt.Fprintln(w.out, "Relief Operation:")
	tw := tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Cluster:\t%s\n", w.cfg.ClusterID)
	fmt.Fprintf(tw, "Grid:\t%dx%d\n", w.cfg.GridSize, w.cfg.GridSize)
	fmt.Fprintf(tw, "Commander:\t%s\n", w.cfg.Commander.Provider)
	if w.cfg.Scenario != "" {
		fmt.Fprintf(tw, "Scenario:\t%s\n", w.cfg.Scenario)
	}
	tw.Flush()

	fmt.Fprintln(w.out, "\nDrones:")
	tw = tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tStart\n")
	for _, d := range w.cfg.Drones {
		fmt.Fprintf(tw, "%s%s%s\t(%d, %d)\n", colorCyan, d.ID, colorReset, d.X, d.Y)
	}
	tw.Flush()
	fmt.Fprintln(w.out)
}

func outcomeColor(outcome string) string {
	switch telemetry.Outcome(outcome) {
	case telemetry.OutcomeExtinguished:
		return colorRed
	case telemetry.OutcomeRefueled:
		return colorGreen
	case telemetry.OutcomeOutOfFuel, telemetry.OutcomeNotFound, telemetry.OutcomeTargetRejected:
		return colorYellow
	}
	return colorBlue
}

// Write outputs a single move row in colorized format.
func (w *ColorStdoutWriter) Write(row telemetry.MoveRow) error {
	w.once.Do(w.printOverview)
	fuelColor := colorGreen
	switch {
	case row.Fuel <= 0:
		fuelColor = colorRed
	case row.Fuel < 20:
		fuelColor = colorYellow
	}
	_, err := fmt.Fprintf(w.out, "%s[%s]%s %sturn=%d%s %sdrone=%s%s %s%s%s pos=(%d, %d) target=(%d, %d) %sfuel=%d%s %s\n",
		colorGray, row.Timestamp.Format(time.RFC3339), colorReset,
		colorMagenta, row.Turn, colorReset,
		colorCyan, row.DroneID, colorReset,
		outcomeColor(row.Outcome), row.Outcome, colorReset,
		row.X, row.Y, row.TargetX, row.TargetY,
		fuelColor, row.Fuel, colorReset,
		row.Message)
	return err
}

// WriteBatch outputs multiple move rows.
func (w *ColorStdoutWriter) WriteBatch(rows []telemetry.MoveRow) error {
	for _, r := range rows {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteZoneEvent prints a zone lifecycle event.
func (w *ColorStdoutWriter) WriteZoneEvent(e telemetry.ZoneEventRow) error {
	w.once.Do(w.printOverview)
	col := colorYellow
	if e.EventType == telemetry.ZoneEventCleared {
		col = colorGreen
	}
	line := fmt.Sprintf("%s[%s]%s %sZONE %s%s (%d, %d) severity=%d",
		colorGray, e.Timestamp.Format(time.RFC3339), colorReset,
		col, e.EventType, colorReset, e.X, e.Y, e.Severity)
	if e.DroneID != "" {
		line += " by=" + e.DroneID
	}
	if e.Source != "" {
		line += " source=" + e.Source
	}
	_, err := fmt.Fprintln(w.out, line)
	return err
}

// WriteStats prints the per-turn counters.
func (w *ColorStdoutWriter) WriteStats(row telemetry.StatsRow) error {
	w.once.Do(w.printOverview)
	_, err := fmt.Fprintf(w.out, "%s[%s]%s %sSTATS%s turn=%d moves=%d fuel=%d cleared=%d refuels=%d active=%d\n",
		colorGray, row.Timestamp.Format(time.RFC3339), colorReset,
		colorBlue, colorReset, row.Turn, row.TotalMoves, row.TotalFuelConsumed,
		row.ZonesCleared, row.RefuelCount, row.ActiveZones)
	return err
}
