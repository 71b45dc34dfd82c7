package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"diffusion-sim/internal/country"
	"diffusion-sim/internal/sim"
	"diffusion-sim/internal/timeseries"
)

type replayCollector struct {
	records []timeseries.Record
	events  []timeseries.Event
}

func (c *replayCollector) Write(r timeseries.Record) error {
	c.records = append(c.records, r)
	return nil
}

func (c *replayCollector) WriteEvent(e timeseries.Event) error {
	c.events = append(c.events, e)
	return nil
}

// setSimulateFlags sets the simulate flag variables for one test.
func setSimulateFlags(t *testing.T, format, logFile string) {
	t.Helper()
	prevFormat, prevLog, prevPrint := simFormat, simLogFile, simPrintOnly
	simFormat, simLogFile, simPrintOnly = format, logFile, true
	simulateCmd.SetContext(context.Background())
	t.Cleanup(func() {
		simFormat, simLogFile, simPrintOnly = prevFormat, prevLog, prevPrint
	})
}

func TestSimulateLogFileReplaysEvents(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "run.jsonl")
	setSimulateFlags(t, formatJSON, logPath)

	if err := simulateCmd.RunE(simulateCmd, nil); err != nil {
		t.Fatalf("simulate failed: %v", err)
	}

	c := &replayCollector{}
	if err := sim.ReplayLogFile(logPath, c, 0); err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	n := len(country.DefaultSpecs())
	if len(c.records) == 0 || len(c.records)%n != 0 {
		t.Fatalf("expected whole snapshots of %d countries, got %d records", n, len(c.records))
	}
	if len(c.events) == 0 || c.events[0].Kind != timeseries.EventInitiated {
		t.Fatalf("expected replayed events starting with initiated, got %v", c.events)
	}

	adoptedEvents := 0
	for _, e := range c.events {
		if e.Kind == timeseries.EventAdopted {
			adoptedEvents++
		}
	}
	adoptedFinal := 0
	for _, r := range c.records[len(c.records)-n:] {
		if r.Status == timeseries.StatusAdopted {
			adoptedFinal++
		}
	}
	if adoptedEvents+1 != adoptedFinal {
		t.Fatalf("replayed %d adoption events for %d final adopters", adoptedEvents, adoptedFinal)
	}
}

func TestSimulateRejectsFormatBeforeRunning(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "run.jsonl")
	setSimulateFlags(t, "xml", logPath)

	err := simulateCmd.RunE(simulateCmd, nil)
	if err == nil || !strings.Contains(err.Error(), "output format") {
		t.Fatalf("expected format error, got %v", err)
	}
	if _, err := os.Stat(logPath); !os.IsNotExist(err) {
		t.Fatalf("expected no log file after rejected format, stat err = %v", err)
	}
}
