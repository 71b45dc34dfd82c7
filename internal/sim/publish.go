package sim

import (
	"context"
	"time"

	"diffusion-sim/internal/timeseries"
)

// Publish streams a finished run to w one step at a time: the step's records
// first, then the step's events when w is also an EventWriter. A positive
// interval paces the steps; cancelling ctx stops between steps.
func Publish(ctx context.Context, res *Result, w RecordWriter, interval time.Duration) error {
	if rw, ok := w.(RunWriter); ok {
		if err := rw.StartRun(res); err != nil {
			return err
		}
	}
	ew, _ := w.(EventWriter)

	next := 0
	for step := 0; step <= res.FinalStep; step++ {
		if step > 0 && interval > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(interval):
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		if err := writeRecords(w, res.RecordsAt(step)); err != nil {
			return err
		}

		var events []timeseries.Event
		for next < len(res.Events) && res.Events[next].Step == step {
			events = append(events, res.Events[next])
			next++
		}
		if ew != nil && len(events) > 0 {
			if err := writeEvents(ew, events); err != nil {
				return err
			}
		}
	}
	return nil
}
