package timeseries

import "diffusion-sim/internal/country"

// Recorder appends full-registry snapshots for a single run.
type Recorder struct {
	RunID    string
	BaseYear int
	order    []country.Country
	records  []Record
}

// NewRecorder creates a recorder that emits rows in the given country order.
func NewRecorder(runID string, baseYear int, order []country.Country) *Recorder {
	return &Recorder{RunID: runID, BaseYear: baseYear, order: order}
}

// Year converts a step index into a calendar year.
func (r *Recorder) Year(step int) int {
	return r.BaseYear + step
}

// Snapshot appends one row per country for step and returns the new rows.
func (r *Recorder) Snapshot(step int, status map[string]Status) []Record {
	start := len(r.records)
	year := r.Year(step)
	for _, c := range r.order {
		st := status[c.Name]
		r.records = append(r.records, Record{
			RunID:   r.RunID,
			Step:    step,
			Year:    year,
			Country: c.Name,
			ISO:     c.ISO,
			Region:  string(c.Region),
			Status:  st,
			Color:   st.Color(),
		})
	}
	return r.records[start:len(r.records):len(r.records)]
}

// Records returns every row recorded so far.
func (r *Recorder) Records() []Record {
	return r.records
}
