package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"diffusion-sim/internal/config"
	"diffusion-sim/internal/sim"
	"diffusion-sim/internal/timeseries"
)

func withTerminal(t *testing.T, tty bool) {
	t.Helper()
	orig := stdoutIsTerminal
	stdoutIsTerminal = func() bool { return tty }
	t.Cleanup(func() { stdoutIsTerminal = orig })
}

func TestNewWritersPrintOnly(t *testing.T) {
	w, tui, cleanup, err := newWriters(config.Default(), sinkOptions{format: formatJSON, printOnly: true})
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	defer cleanup()
	if tui != nil {
		t.Fatalf("expected no TUI writer")
	}
	if _, ok := w.(*sim.JSONStdoutWriter); !ok {
		t.Fatalf("expected *sim.JSONStdoutWriter, got %T", w)
	}
}

func TestNewWritersGreptimeFallback(t *testing.T) {
	t.Setenv("GREPTIMEDB_ENDPOINT", "")
	withTerminal(t, false)
	w, _, cleanup, err := newWriters(config.Default(), sinkOptions{})
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	defer cleanup()
	if _, ok := w.(*sim.JSONStdoutWriter); !ok {
		t.Fatalf("expected *sim.JSONStdoutWriter, got %T", w)
	}
}

func TestNewWritersAutoColorOnTerminal(t *testing.T) {
	withTerminal(t, true)
	w, _, cleanup, err := newWriters(config.Default(), sinkOptions{printOnly: true})
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	defer cleanup()
	if _, ok := w.(*sim.ColorStdoutWriter); !ok {
		t.Fatalf("expected *sim.ColorStdoutWriter, got %T", w)
	}
}

func TestNewWritersUnknownFormat(t *testing.T) {
	if _, _, _, err := newWriters(config.Default(), sinkOptions{format: "xml"}); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestNewWritersLogFileAndCSV(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "run.log")
	csvPath := filepath.Join(dir, "run.csv")
	w, _, cleanup, err := newWriters(config.Default(), sinkOptions{
		format:    formatJSON,
		printOnly: true,
		logFile:   logPath,
		csvPath:   csvPath,
	})
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	mw, ok := w.(*sim.MultiWriter)
	if !ok {
		t.Fatalf("expected *sim.MultiWriter, got %T", w)
	}
	row := timeseries.Record{RunID: "r1", Year: 2025, Country: "Japan", ISO: "JPN", Status: timeseries.StatusAdopted, Color: 1}
	if err := mw.Write(row); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	ev := timeseries.NewInitiatedEvent("r1", 2025, "Japan")
	if err := mw.WriteEvent(ev); err != nil {
		t.Fatalf("write event failed: %v", err)
	}
	if err := cleanup(); err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}

	b, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log failed: %v", err)
	}
	if lines := strings.Count(string(b), "\n"); lines != 2 {
		t.Fatalf("expected record and event in one log, got %d lines:\n%s", lines, b)
	}
	if _, err := os.Stat(logPath + ".events"); !os.IsNotExist(err) {
		t.Fatalf("expected no separate events file, stat err = %v", err)
	}
	b, err = os.ReadFile(csvPath)
	if err != nil {
		t.Fatalf("read csv failed: %v", err)
	}
	want := "Year,Country,ISO,Status,Color\n2025,Japan,JPN,Adopted,1\n"
	if string(b) != want {
		t.Fatalf("unexpected csv:\n%s", b)
	}
}

func TestBuiltInScenarioNamesListed(t *testing.T) {
	batchList = true
	t.Cleanup(func() { batchList = false })
	if err := batchCmd.RunE(batchCmd, nil); err != nil {
		t.Fatalf("list failed: %v", err)
	}
}

func TestRootRegistersCommands(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	got := strings.Join(names, ",")
	for _, want := range []string{"simulate", "countries", "network", "batch", "serve", "replay", "dashboard"} {
		if !strings.Contains(got, want) {
			t.Fatalf("command %q not registered (have %s)", want, got)
		}
	}
}
