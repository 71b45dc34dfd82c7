package main

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"diffusion-sim/internal/config"
	"diffusion-sim/internal/sim"
)

// Output formats accepted by --format.
const (
	formatAuto  = ""
	formatJSON  = "json"
	formatColor = "color"
	formatTUI   = "tui"
)

// stdoutIsTerminal reports whether stdout is attached to a terminal.
var stdoutIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// sinkOptions selects where a run is published.
type sinkOptions struct {
	format    string
	printOnly bool
	logFile   string
	csvPath   string
}

// newWriters sets up the record writer from flags and env vars. It returns
// the writer, the TUI writer when one is active, and a cleanup function that
// closes any opened resources.
func newWriters(cfg *config.SimulationConfig, opts sinkOptions) (sim.RecordWriter, *sim.TUIWriter, func() error, error) {
	base, err := baseWriter(cfg, opts.format)
	if err != nil {
		return nil, nil, nil, err
	}
	tui, _ := base.(*sim.TUIWriter)
	writers := []sim.RecordWriter{base}

	if !opts.printOnly && os.Getenv("GREPTIMEDB_ENDPOINT") != "" {
		db := os.Getenv("GREPTIMEDB_DATABASE")
		if db == "" {
			db = "public"
		}
		gw, err := sim.NewGreptimeDBWriter(os.Getenv("GREPTIMEDB_ENDPOINT"), db)
		if err != nil {
			closeAll(writers)
			return nil, nil, nil, err
		}
		writers = append(writers, gw)
	}
	if opts.logFile != "" {
		fw, err := sim.NewFileWriter(opts.logFile, "")
		if err != nil {
			closeAll(writers)
			return nil, nil, nil, err
		}
		writers = append(writers, fw)
	}
	if opts.csvPath != "" {
		f, err := os.Create(opts.csvPath)
		if err != nil {
			closeAll(writers)
			return nil, nil, nil, fmt.Errorf("create csv export: %w", err)
		}
		writers = append(writers, sim.NewCSVWriter(f))
	}

	if len(writers) == 1 {
		return base, tui, func() error { return closeAll(writers) }, nil
	}
	var events []sim.EventWriter
	for _, w := range writers {
		if ew, ok := w.(sim.EventWriter); ok {
			events = append(events, ew)
		}
	}
	mw := sim.NewMultiWriter(writers, events)
	return mw, tui, mw.Close, nil
}

// checkFormat rejects values --format does not accept.
func checkFormat(format string) error {
	switch format {
	case formatAuto, formatJSON, formatColor, formatTUI:
		return nil
	}
	return fmt.Errorf("unknown output format %q (want json, color or tui)", format)
}

// baseWriter chooses the terminal-facing writer. The automatic format prints
// color text to a terminal and JSON lines otherwise.
func baseWriter(cfg *config.SimulationConfig, format string) (sim.RecordWriter, error) {
	switch format {
	case formatAuto:
		if stdoutIsTerminal() {
			return sim.NewColorStdoutWriter(cfg), nil
		}
		return sim.NewJSONStdoutWriter(), nil
	case formatJSON:
		return sim.NewJSONStdoutWriter(), nil
	case formatColor:
		return sim.NewColorStdoutWriter(cfg), nil
	case formatTUI:
		return sim.NewTUIWriter(cfg), nil
	default:
		return nil, checkFormat(format)
	}
}

func closeAll(writers []sim.RecordWriter) error {
	var first error
	for _, w := range writers {
		if c, ok := w.(io.Closer); ok {
			if err := c.Close(); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}
