package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"diffusion-sim/internal/timeseries"
)

// JSONStdoutWriter prints records and events as JSON lines to STDOUT.
type JSONStdoutWriter struct {
	out io.Writer
}

// NewJSONStdoutWriter creates a JSONStdoutWriter writing to os.Stdout.
func NewJSONStdoutWriter() *JSONStdoutWriter {
	return &JSONStdoutWriter{out: os.Stdout}
}

func (w *JSONStdoutWriter) emit(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w.out, string(data))
	return err
}

// Write outputs a record in JSON format.
func (w *JSONStdoutWriter) Write(row timeseries.Record) error {
	return w.emit(row)
}

// WriteBatch outputs multiple records in JSON format.
func (w *JSONStdoutWriter) WriteBatch(rows []timeseries.Record) error {
	for _, r := range rows {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteEvent outputs an event in JSON format.
func (w *JSONStdoutWriter) WriteEvent(e timeseries.Event) error {
	return w.emit(e)
}

// WriteEvents outputs multiple events in JSON format.
func (w *JSONStdoutWriter) WriteEvents(rows []timeseries.Event) error {
	for _, e := range rows {
		if err := w.WriteEvent(e); err != nil {
			return err
		}
	}
	return nil
}
