package sim

import (
	"encoding/csv"
	"io"
	"strconv"

	"diffusion-sim/internal/timeseries"
)

// CSVHeader is the column layout of exported reports.
var CSVHeader = []string{"Year", "Country", "ISO", "Status", "Color"}

// CSVWriter writes records as CSV rows. The header is written before the
// first row.
type CSVWriter struct {
	w      *csv.Writer
	closer io.Closer
	header bool
}

// NewCSVWriter wraps out. If out is an io.Closer it is closed by Close.
func NewCSVWriter(out io.Writer) *CSVWriter {
	c, _ := out.(io.Closer)
	return &CSVWriter{w: csv.NewWriter(out), closer: c}
}

// Write appends one record.
func (c *CSVWriter) Write(row timeseries.Record) error {
	if !c.header {
		if err := c.w.Write(CSVHeader); err != nil {
			return err
		}
		c.header = true
	}
	return c.w.Write([]string{
		strconv.Itoa(row.Year),
		row.Country,
		row.ISO,
		string(row.Status),
		strconv.Itoa(row.Color),
	})
}

// WriteBatch appends records and flushes.
func (c *CSVWriter) WriteBatch(rows []timeseries.Record) error {
	for _, r := range rows {
		if err := c.Write(r); err != nil {
			return err
		}
	}
	return c.Flush()
}

// Flush writes buffered rows to the underlying writer.
func (c *CSVWriter) Flush() error {
	c.w.Flush()
	return c.w.Error()
}

// Close flushes and closes the underlying writer when it is closable.
func (c *CSVWriter) Close() error {
	if err := c.Flush(); err != nil {
		return err
	}
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}

// ExportCSV writes the full time series of res to out.
func ExportCSV(out io.Writer, res *Result) error {
	cw := NewCSVWriter(out)
	if len(res.Records) == 0 {
		if err := cw.w.Write(CSVHeader); err != nil {
			return err
		}
		return cw.Flush()
	}
	return cw.WriteBatch(res.Records)
}
