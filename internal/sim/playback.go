package sim

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"diffusion-sim/internal/timeseries"
)

// kindProbe detects event lines in a mixed JSONL stream.
type kindProbe struct {
	Kind timeseries.EventKind `json:"kind"`
}

// ReplayLog replays records (and interleaved events) from r to writer. When
// yearDelay > 0 playback pauses that long each time the year advances. Events
// are forwarded only if writer implements EventWriter.
func ReplayLog(r io.Reader, writer RecordWriter, yearDelay time.Duration) error {
	dec := json.NewDecoder(r)
	ew, _ := writer.(EventWriter)
	prevYear := 0
	for {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		var probe kindProbe
		if err := json.Unmarshal(raw, &probe); err != nil {
			return err
		}

		var year int
		if probe.Kind != "" {
			var ev timeseries.Event
			if err := json.Unmarshal(raw, &ev); err != nil {
				return err
			}
			year = ev.Year
			pause(prevYear, year, yearDelay)
			if ew != nil {
				if err := ew.WriteEvent(ev); err != nil {
					return err
				}
			}
		} else {
			var row timeseries.Record
			if err := json.Unmarshal(raw, &row); err != nil {
				return err
			}
			year = row.Year
			pause(prevYear, year, yearDelay)
			if err := writer.Write(row); err != nil {
				return err
			}
		}
		prevYear = year
	}
}

func pause(prev, cur int, delay time.Duration) {
	if prev != 0 && cur > prev && delay > 0 {
		time.Sleep(delay)
	}
}

// ReplayLogFile opens a file and replays its rows.
func ReplayLogFile(path string, writer RecordWriter, yearDelay time.Duration) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return ReplayLog(f, writer, yearDelay)
}
