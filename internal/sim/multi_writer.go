package sim

import (
	"errors"
	"io"

	"diffusion-sim/internal/timeseries"
)

// MultiWriter fans out records and events to multiple writers.
type MultiWriter struct {
	recwriters []RecordWriter
	evwriters  []EventWriter
}

// NewMultiWriter creates a new MultiWriter.
func NewMultiWriter(rws []RecordWriter, ews []EventWriter) *MultiWriter {
	return &MultiWriter{recwriters: rws, evwriters: ews}
}

// StartRun forwards run metadata to writers that want it.
func (mw *MultiWriter) StartRun(res *Result) error {
	for _, w := range mw.recwriters {
		if rw, ok := w.(RunWriter); ok {
			if err := rw.StartRun(res); err != nil {
				return err
			}
		}
	}
	return nil
}

// Write sends a record to all writers.
func (mw *MultiWriter) Write(row timeseries.Record) error {
	for _, w := range mw.recwriters {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteBatch sends multiple records to all writers, using batch if supported.
func (mw *MultiWriter) WriteBatch(rows []timeseries.Record) error {
	for _, w := range mw.recwriters {
		if err := writeRecords(w, rows); err != nil {
			return err
		}
	}
	return nil
}

// WriteEvent sends an event to all event writers.
func (mw *MultiWriter) WriteEvent(e timeseries.Event) error {
	for _, w := range mw.evwriters {
		if err := w.WriteEvent(e); err != nil {
			return err
		}
	}
	return nil
}

// WriteEvents sends multiple events to all event writers, using batch if supported.
func (mw *MultiWriter) WriteEvents(rows []timeseries.Event) error {
	for _, w := range mw.evwriters {
		if err := writeEvents(w, rows); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every writer implementing io.Closer once.
func (mw *MultiWriter) Close() error {
	seen := make(map[any]bool)
	var errs []error
	closeOne := func(w any) {
		c, ok := w.(io.Closer)
		if !ok || seen[w] {
			return
		}
		seen[w] = true
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, w := range mw.recwriters {
		closeOne(w)
	}
	for _, w := range mw.evwriters {
		closeOne(w)
	}
	return errors.Join(errs...)
}

func writeRecords(w RecordWriter, rows []timeseries.Record) error {
	if bw, ok := w.(batchWriter); ok {
		return bw.WriteBatch(rows)
	}
	for _, r := range rows {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	return nil
}

func writeEvents(w EventWriter, rows []timeseries.Event) error {
	if bw, ok := w.(batchEventWriter); ok {
		return bw.WriteEvents(rows)
	}
	for _, e := range rows {
		if err := w.WriteEvent(e); err != nil {
			return err
		}
	}
	return nil
}
