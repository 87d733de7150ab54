package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"reliefops-sim/internal/config"
	"reliefops-sim/internal/logging"
	"reliefops-sim/internal/sim"
)

var (
	turnsCount      int
	turnsConfigPath string
	turnsSchemaPath string
	turnsLogFile    string
	turnsLedger     string
	turnsCommander  string
	turnsOverride   string
	turnsQuiet      bool
)

var turnsCmd = &cobra.Command{
	Use:   "turns",
	Short: "Run a fixed number of turns and print a summary",
	Long:  "turns drives the simulator headless for --count turns, then reports fleet statistics.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if turnsCount <= 0 {
			return fmt.Errorf("--count must be positive, got %d", turnsCount)
		}
		logger := logging.New()
		ctx := logging.NewContext(cmd.Context(), logger)

		cfg, err := config.Load(turnsConfigPath, turnsSchemaPath)
		if err != nil {
			return err
		}
		if _, err := applyEnv(cfg, 0); err != nil {
			return err
		}
		writers, err := newWriters(writerOptions{
			cfg:       cfg,
			printOnly: true,
			format:    formatJSON,
			logFile:   turnsLogFile,
			ledger:    turnsLedger,
			quiet:     turnsQuiet,
		})
		if err != nil {
			return err
		}
		defer writers.Close()

		cmdr, err := newCommander(ctx, cfg, turnsCommander)
		if err != nil {
			return err
		}
		simulator, err := sim.NewSimulator(cfg, cmdr, writers.Writer, 0)
		if err != nil {
			return err
		}
		return runTurns(ctx, cmd.OutOrStdout(), simulator, writers.Ledger, turnsCount, turnsOverride)
	},
}

// runTurns plays n turns. The override applies to the first turn only.
func runTurns(ctx context.Context, out io.Writer, s *sim.Simulator, ledger *sim.LedgerWriter, n int, override string) error {
	log := logging.FromContext(ctx)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		o := ""
		if i == 0 {
			o = override
		}
		if _, err := s.RunTurn(ctx, o); err != nil {
			log.Warn("turn lost", "err", err)
		}
	}
	return printSummary(ctx, out, s, ledger)
}

func printSummary(ctx context.Context, out io.Writer, s *sim.Simulator, ledger *sim.LedgerWriter) error {
	world := s.World()
	st := world.Stats
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Cluster:\t%s\n", s.ClusterID())
	fmt.Fprintf(tw, "Turns:\t%d\n", s.Turn())
	fmt.Fprintf(tw, "Radio silence:\t%d\n", s.Failures())
	if p := s.Phase(); p != "" {
		fmt.Fprintf(tw, "Phase:\t%s\n", p)
	}
	fmt.Fprintf(tw, "Zones cleared:\t%d\n", st.ZonesCleared)
	fmt.Fprintf(tw, "Active zones:\t%d\n", len(world.Zones))
	fmt.Fprintf(tw, "Fuel consumed:\t%d L\n", st.TotalFuelConsumed)
	fmt.Fprintf(tw, "Total maneuvers:\t%d\n", st.TotalMoves)
	fmt.Fprintf(tw, "Refuel stops:\t%d\n", st.RefuelCount)
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "DRONE\tPOS\tFUEL\tSTATUS")
	for _, d := range world.Drones {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", d.ID, d.Position, d.Fuel, d.Status)
	}
	if ledger != nil {
		totals, err := ledger.DroneTotals(ctx)
		if err != nil {
			return fmt.Errorf("ledger totals: %w", err)
		}
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "DRONE\tMOVES\tCLEARED\tREFUELS\tREJECTED")
		for _, t := range totals {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\n", t.DroneID, t.Moves, t.ZonesCleared, t.Refuels, t.Rejected)
		}
	}
	return tw.Flush()
}

func init() {
	turnsCmd.Flags().IntVarP(&turnsCount, "count", "n", 10, "Number of turns to run")
	turnsCmd.Flags().StringVar(&turnsConfigPath, "config", "config/relief.yaml", "Path to simulation configuration YAML")
	turnsCmd.Flags().StringVar(&turnsSchemaPath, "schema", "schemas/relief.cue", "Path to CUE schema file")
	turnsCmd.Flags().StringVar(&turnsLogFile, "log-file", "", "Path to export move/zone/stats logs (JSONL, .zst compresses)")
	turnsCmd.Flags().StringVar(&turnsLedger, "ledger", "", "Path to a SQLite turn ledger")
	turnsCmd.Flags().StringVar(&turnsCommander, "commander", "", "Override the configured commander provider (scripted or gemini)")
	turnsCmd.Flags().StringVar(&turnsOverride, "override", "", "Operator message for the first turn")
	turnsCmd.Flags().BoolVarP(&turnsQuiet, "quiet", "q", false, "Only print the summary")
}
