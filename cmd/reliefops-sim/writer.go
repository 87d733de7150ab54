package main

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"

	"reliefops-sim/internal/config"
	"reliefops-sim/internal/sim"
)

const (
	formatJSON  = "json"
	formatColor = "color"

	defaultGreptimePort = 4001
)

type writerOptions struct {
	cfg       *config.SimulationConfig
	printOnly bool
	format    string
	logFile   string
	ledger    string
	tui       bool
	// quiet skips the primary writer, keeping only the log file and ledger.
	quiet bool
}

// writerSet is the combined writer handed to the simulator plus the resources
// the commands need to release or query afterwards.
type writerSet struct {
	Writer  sim.MoveWriter
	Ledger  *sim.LedgerWriter
	closers []io.Closer
}

// Close releases every writer in reverse order of creation.
func (ws *writerSet) Close() error {
	var errs []error
	for i := len(ws.closers) - 1; i >= 0; i-- {
		errs = append(errs, ws.closers[i].Close())
	}
	return errors.Join(errs...)
}

// newWriters sets up the row writers based on flags and env vars. extra writers,
// such as the admin stream hub, are appended to the fan-out.
func newWriters(opts writerOptions, extra ...sim.MoveWriter) (*writerSet, error) {
	ws := &writerSet{}
	var writers []sim.MoveWriter
	if !opts.quiet {
		base, err := baseWriter(opts)
		if err != nil {
			return nil, err
		}
		if c, ok := base.(io.Closer); ok {
			ws.closers = append(ws.closers, c)
		}
		writers = append(writers, base)
	}

	if opts.logFile != "" {
		fw, err := sim.NewFileWriter(opts.logFile, streamPath(opts.logFile, "zones"), streamPath(opts.logFile, "stats"))
		if err != nil {
			ws.Close()
			return nil, err
		}
		ws.closers = append(ws.closers, fw)
		writers = append(writers, fw)
	}
	if opts.ledger != "" {
		l, err := sim.OpenLedger(opts.ledger)
		if err != nil {
			ws.Close()
			return nil, fmt.Errorf("open ledger: %w", err)
		}
		ws.Ledger = l
		ws.closers = append(ws.closers, l)
		writers = append(writers, l)
	}
	writers = append(writers, extra...)

	switch len(writers) {
	case 0:
	case 1:
		ws.Writer = writers[0]
	default:
		ws.Writer = sim.NewMultiWriter(writers...)
	}
	return ws, nil
}

// baseWriter chooses the primary writer: the TUI, GreptimeDB or STDOUT.
func baseWriter(opts writerOptions) (sim.MoveWriter, error) {
	if opts.tui {
		return sim.NewTUIWriter(opts.cfg), nil
	}
	endpoint := os.Getenv("GREPTIMEDB_ENDPOINT")
	if opts.printOnly || endpoint == "" {
		if opts.format == formatColor {
			return sim.NewColorStdoutWriter(opts.cfg), nil
		}
		return sim.NewJSONStdoutWriter(), nil
	}
	host, port, err := parseEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	database := os.Getenv("GREPTIMEDB_DATABASE")
	if database == "" {
		database = "public"
	}
	return sim.NewGreptimeDBWriter(host, port, database)
}

// parseEndpoint splits host[:port], defaulting to the GreptimeDB gRPC port.
func parseEndpoint(endpoint string) (string, int, error) {
	if !strings.Contains(endpoint, ":") {
		return endpoint, defaultGreptimePort, nil
	}
	host, p, err := net.SplitHostPort(endpoint)
	if err != nil {
		return "", 0, fmt.Errorf("invalid GREPTIMEDB_ENDPOINT %q: %w", endpoint, err)
	}
	port, err := strconv.Atoi(p)
	if err != nil {
		return "", 0, fmt.Errorf("invalid GREPTIMEDB_ENDPOINT port %q: %w", p, err)
	}
	return host, port, nil
}

// streamPath derives a sibling log path, keeping a .zst suffix last.
func streamPath(logFile, stream string) string {
	if base, ok := strings.CutSuffix(logFile, ".zst"); ok {
		return base + "." + stream + ".zst"
	}
	return logFile + "." + stream
}
