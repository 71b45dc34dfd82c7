package sim

import "diffusion-sim/internal/timeseries"

// EventWriter consumes the narrative event log of a run.
type EventWriter interface {
	WriteEvent(timeseries.Event) error
}

// Optional: event writers may support batch mode.
type batchEventWriter interface {
	WriteEvents([]timeseries.Event) error
}

// RunWriter is notified once per run before any rows are written.
type RunWriter interface {
	StartRun(*Result) error
}
