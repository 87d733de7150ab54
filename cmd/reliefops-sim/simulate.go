package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"reliefops-sim/internal/admin"
	"reliefops-sim/internal/config"
	"reliefops-sim/internal/logging"
	"reliefops-sim/internal/sim"
)

var (
	simPrintOnly  bool
	simConfigPath string
	simSchemaPath string
	simTick       time.Duration
	simLogFile    string
	simLedger     string
	simFormat     string
	simTUI        bool
	simAdminAddr  string
	simCommander  string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the relief fleet on autopilot",
	Long:  "simulate asks the commander for a plan every tick, applies it and serves the operator console.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		useTUI := simTUI && term.IsTerminal(int(os.Stdout.Fd()))
		logger := logging.New()
		if useTUI {
			// The TUI owns the terminal.
			logger = logging.NewWithWriter(io.Discard, "", false)
		}
		ctx = logging.NewContext(ctx, logger)
		if simTUI && !useTUI {
			logger.Warn("stdout is not a terminal, ignoring --tui")
		}

		cfg, err := config.Load(simConfigPath, simSchemaPath)
		if err != nil {
			return err
		}
		tick, err := applyEnv(cfg, simTick)
		if err != nil {
			return err
		}

		var hub *admin.StreamHub
		var extra []sim.MoveWriter
		if simAdminAddr != "" {
			hub = admin.NewStreamHub()
			extra = append(extra, hub)
		}
		writers, err := newWriters(writerOptions{
			cfg:       cfg,
			printOnly: simPrintOnly,
			format:    simFormat,
			logFile:   simLogFile,
			ledger:    simLedger,
			tui:       useTUI,
		}, extra...)
		if err != nil {
			return err
		}
		defer writers.Close()

		cmdr, err := newCommander(ctx, cfg, simCommander)
		if err != nil {
			return err
		}
		simulator, err := sim.NewSimulator(cfg, cmdr, writers.Writer, tick)
		if err != nil {
			return err
		}
		if zr, ok := writers.Writer.(sim.ZoneReporter); ok {
			zr.SetZoneReporter(func(x, y, severity int) string {
				return simulator.RegisterZone(ctx, x, y, severity, sim.SourceOperator).Message
			})
		}

		if hub != nil {
			srv := admin.NewServer(simulator, hub)
			status, _ := writers.Writer.(sim.AdminStatusWriter)
			go func() {
				if status != nil {
					status.SetAdminStatus(true)
				}
				if err := srv.Start(ctx, simAdminAddr); err != nil {
					logger.Error("admin server failed", "err", err)
				}
				if status != nil {
					status.SetAdminStatus(false)
				}
			}()
		}

		simulator.Run(ctx)
		logger.Info("relief simulation stopped", "turns", simulator.Turn(), "failures", simulator.Failures())
		return nil
	},
}

func init() {
	simulateCmd.Flags().BoolVar(&simPrintOnly, "print-only", false, "Print rows to STDOUT instead of writing to DB")
	simulateCmd.Flags().StringVar(&simConfigPath, "config", "config/relief.yaml", "Path to simulation configuration YAML")
	simulateCmd.Flags().StringVar(&simSchemaPath, "schema", "schemas/relief.cue", "Path to CUE schema file")
	simulateCmd.Flags().DurationVar(&simTick, "tick", 2*time.Second, "Turn interval (e.g. 500ms, 2s)")
	simulateCmd.Flags().StringVar(&simLogFile, "log-file", "", "Path to export move/zone/stats logs (JSONL, .zst compresses)")
	simulateCmd.Flags().StringVar(&simLedger, "ledger", "", "Path to a SQLite turn ledger")
	simulateCmd.Flags().StringVar(&simFormat, "format", formatJSON, "STDOUT format: json or color")
	simulateCmd.Flags().BoolVar(&simTUI, "tui", false, "Render the fleet in a terminal UI")
	simulateCmd.Flags().StringVar(&simAdminAddr, "admin-addr", ":8080", "Operator console address, empty disables it")
	simulateCmd.Flags().StringVar(&simCommander, "commander", "", "Override the configured commander provider (scripted or gemini)")
}
