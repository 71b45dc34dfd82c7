package sim

import "diffusion-sim/internal/timeseries"

// RecordWriter consumes adoption time-series rows.
type RecordWriter interface {
	Write(timeseries.Record) error
}

// Optional: record writers may support batch mode.
type batchWriter interface {
	WriteBatch([]timeseries.Record) error
}
