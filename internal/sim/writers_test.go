package sim

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"diffusion-sim/internal/config"
	"diffusion-sim/internal/country"
	"diffusion-sim/internal/timeseries"
)

type collectWriter struct {
	rows    []timeseries.Record
	events  []timeseries.Event
	batches int
	started *Result
	closed  bool
}

func (c *collectWriter) Write(r timeseries.Record) error {
	c.rows = append(c.rows, r)
	return nil
}

func (c *collectWriter) WriteBatch(rows []timeseries.Record) error {
	c.batches++
	c.rows = append(c.rows, rows...)
	return nil
}

func (c *collectWriter) WriteEvent(e timeseries.Event) error {
	c.events = append(c.events, e)
	return nil
}

func (c *collectWriter) StartRun(res *Result) error {
	c.started = res
	return nil
}

func (c *collectWriter) Close() error {
	c.closed = true
	return nil
}

type recordOnlyWriter struct{ rows []timeseries.Record }

func (r *recordOnlyWriter) Write(row timeseries.Record) error {
	r.rows = append(r.rows, row)
	return nil
}

type failingWriter struct{}

func (failingWriter) Write(timeseries.Record) error { return errors.New("disk full") }

func smallResult(t *testing.T) *Result {
	t.Helper()
	specs := []country.Spec{
		{Name: "Alpha", ISO: "AAA", Region: country.Europe, Resistance: fixed(-1)},
		{Name: "Beta", ISO: "BBB", Region: country.Europe, Resistance: fixed(-1)},
		{Name: "Gamma", ISO: "CCC", Region: country.Asia, Resistance: fixed(-1)},
	}
	s := newTestSimulator(t, specs, 1, 1)
	res, err := s.Run(context.Background(), "Alpha", 1.0, 3)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	res.Policy = "Test Policy"
	return res
}

func TestPublishStreamsStepsInOrder(t *testing.T) {
	res := smallResult(t)
	c := &collectWriter{}
	if err := Publish(context.Background(), res, c, 0); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if c.started != res {
		t.Fatalf("StartRun not called")
	}
	if c.batches != res.FinalStep+1 {
		t.Fatalf("expected one batch per step, got %d", c.batches)
	}
	if len(c.rows) != len(res.Records) || len(c.events) != len(res.Events) {
		t.Fatalf("expected %d rows / %d events, got %d / %d", len(res.Records), len(res.Events), len(c.rows), len(c.events))
	}
	for i := 1; i < len(c.rows); i++ {
		if c.rows[i].Step < c.rows[i-1].Step {
			t.Fatalf("rows out of order at %d", i)
		}
	}
}

func TestPublishHonoursCancellation(t *testing.T) {
	res := smallResult(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Publish(ctx, res, &collectWriter{}, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPublishWithoutEventWriter(t *testing.T) {
	res := smallResult(t)
	w := &recordOnlyWriter{}
	if err := Publish(context.Background(), res, w, 0); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(w.rows) != len(res.Records) {
		t.Fatalf("expected %d rows, got %d", len(res.Records), len(w.rows))
	}
}

func TestMultiWriterFanOut(t *testing.T) {
	a, b := &collectWriter{}, &collectWriter{}
	plain := &recordOnlyWriter{}
	mw := NewMultiWriter([]RecordWriter{a, plain}, []EventWriter{a, b})
	res := smallResult(t)
	if err := Publish(context.Background(), res, mw, 0); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if a.started != res || len(a.rows) != len(res.Records) || len(plain.rows) != len(res.Records) {
		t.Fatalf("records not fanned out")
	}
	if len(a.events) != len(res.Events) || len(b.events) != len(res.Events) {
		t.Fatalf("events not fanned out")
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !a.closed || !b.closed {
		t.Fatalf("closers not closed")
	}
}

func TestMultiWriterStopsOnError(t *testing.T) {
	mw := NewMultiWriter([]RecordWriter{failingWriter{}}, nil)
	if err := mw.Write(timeseries.Record{}); err == nil {
		t.Fatalf("expected error from failing writer")
	}
}

func TestFileWriterAndReplay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.jsonl")
	fw, err := NewFileWriter(path, "")
	if err != nil {
		t.Fatalf("NewFileWriter: %v", err)
	}
	res := smallResult(t)
	if err := Publish(context.Background(), res, fw, 0); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := fw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	c := &collectWriter{}
	if err := ReplayLogFile(path, c, 0); err != nil {
		t.Fatalf("replay: %v", err)
	}
	if len(c.rows) != len(res.Records) || len(c.events) != len(res.Events) {
		t.Fatalf("replayed %d rows / %d events, want %d / %d", len(c.rows), len(c.events), len(res.Records), len(res.Events))
	}
	if c.events[0].Kind != timeseries.EventInitiated || c.rows[0].Country != "Alpha" {
		t.Fatalf("unexpected replay order: %+v %+v", c.events[0], c.rows[0])
	}
}

func TestFileWriterSeparateEvents(t *testing.T) {
	dir := t.TempDir()
	recPath := filepath.Join(dir, "records.jsonl")
	evPath := filepath.Join(dir, "events.jsonl")
	fw, err := NewFileWriter(recPath, evPath)
	if err != nil {
		t.Fatalf("NewFileWriter: %v", err)
	}
	ev := timeseries.NewInitiatedEvent("r", 2025, "Alpha")
	if err := fw.WriteEvent(ev); err != nil {
		t.Fatalf("write event: %v", err)
	}
	fw.Close()
	data, err := os.ReadFile(evPath)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	var got timeseries.Event
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if got.Message != ev.Message {
		t.Fatalf("unexpected event: %#v", got)
	}
	if rec, _ := os.ReadFile(recPath); len(rec) != 0 {
		t.Fatalf("records file should be empty")
	}
}

func TestReplayLogPacing(t *testing.T) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, y := range []int{2025, 2026, 2027} {
		_ = enc.Encode(timeseries.Record{Year: y, Country: "Alpha"})
	}
	c := &collectWriter{}
	start := time.Now()
	if err := ReplayLog(&buf, c, 20*time.Millisecond); err != nil {
		t.Fatalf("replay: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Fatalf("expected pacing, took %v", elapsed)
	}
	if len(c.rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(c.rows))
	}
}

func TestReplayLogMalformed(t *testing.T) {
	if err := ReplayLog(strings.NewReader("{not json"), &collectWriter{}, 0); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestCSVExport(t *testing.T) {
	res := smallResult(t)
	var buf bytes.Buffer
	if err := ExportCSV(&buf, res); err != nil {
		t.Fatalf("export: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[0] != "Year,Country,ISO,Status,Color" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if len(lines) != len(res.Records)+1 {
		t.Fatalf("expected %d lines, got %d", len(res.Records)+1, len(lines))
	}
	if lines[1] != "2025,Alpha,AAA,Adopted,1" {
		t.Fatalf("unexpected first row %q", lines[1])
	}
}

func TestCSVExportEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportCSV(&buf, &Result{}); err != nil {
		t.Fatalf("export: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "Year,Country,ISO,Status,Color" {
		t.Fatalf("expected header only, got %q", buf.String())
	}
}

func TestJSONStdoutWriter(t *testing.T) {
	var buf bytes.Buffer
	w := &JSONStdoutWriter{out: &buf}
	if err := w.Write(timeseries.Record{Country: "Alpha", Year: 2025, Status: timeseries.StatusAdopted, Color: 1}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.WriteEvent(timeseries.NewSaturatedEvent("r", 1, 2026)); err != nil {
		t.Fatalf("write event: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	var rec timeseries.Record
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil || rec.Country != "Alpha" {
		t.Fatalf("bad record line %q: %v", lines[0], err)
	}
	if !strings.Contains(lines[1], `"kind":"saturated"`) {
		t.Fatalf("bad event line %q", lines[1])
	}
}

func TestColorStdoutWriter(t *testing.T) {
	var buf bytes.Buffer
	w := &ColorStdoutWriter{cfg: config.Default(), out: &buf, regionColors: map[string]string{}}
	res := smallResult(t)
	if err := Publish(context.Background(), res, w, 0); err != nil {
		t.Fatalf("publish: %v", err)
	}
	out := buf.String()
	if strings.Count(out, "Simulation Configuration:") != 1 {
		t.Fatalf("overview should print once")
	}
	for _, want := range []string{"Test Policy", "adopted=1/3", "Policy initiated in Alpha", "SATURATED"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

type brokenPipe struct{}

func (brokenPipe) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestColorStdoutWriterEventsReturnError(t *testing.T) {
	w := &ColorStdoutWriter{cfg: config.Default(), out: brokenPipe{}, regionColors: map[string]string{}}
	events := []timeseries.Event{
		timeseries.NewInitiatedEvent("r1", 2025, "Alpha"),
		timeseries.NewAdoptedEvent("r1", 1, 2026, "Beta"),
	}
	if err := w.WriteEvents(events); err == nil || !strings.Contains(err.Error(), "broken pipe") {
		t.Fatalf("expected write error, got %v", err)
	}
}
