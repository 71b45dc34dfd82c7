package sim

import "diffusion-sim/internal/timeseries"

// Result is the output of one run: the full time series and the event log.
type Result struct {
	RunID     string              `json:"run_id"`
	Policy    string              `json:"policy,omitempty"`
	Origin    string              `json:"origin"`
	Strength  float64             `json:"strength"`
	Years     int                 `json:"years"`
	BaseYear  int                 `json:"base_year"`
	FinalStep int                 `json:"final_step"`
	Saturated bool                `json:"saturated"`
	Countries int                 `json:"countries"`
	Records   []timeseries.Record `json:"records"`
	Events    []timeseries.Event  `json:"events"`
}

// CurvePoint is the cumulative adopter count at one step.
type CurvePoint struct {
	Step    int `json:"step"`
	Year    int `json:"year"`
	Adopted int `json:"adopted"`
}

// EndYear is the calendar year of the last simulated step.
func (r *Result) EndYear() int {
	return r.BaseYear + r.FinalStep
}

// RecordsAt returns the snapshot for step, or nil if it was not simulated.
func (r *Result) RecordsAt(step int) []timeseries.Record {
	if step < 0 || step > r.FinalStep || r.Countries == 0 {
		return nil
	}
	start := step * r.Countries
	end := start + r.Countries
	if end > len(r.Records) {
		return nil
	}
	return r.Records[start:end]
}

// StatusAt returns the status of name at step.
func (r *Result) StatusAt(step int, name string) (timeseries.Status, bool) {
	for _, rec := range r.RecordsAt(step) {
		if rec.Country == name {
			return rec.Status, true
		}
	}
	return "", false
}

// AdoptionCurve returns the adopted count for every simulated step.
func (r *Result) AdoptionCurve() []CurvePoint {
	curve := make([]CurvePoint, 0, r.FinalStep+1)
	for step := 0; step <= r.FinalStep; step++ {
		rows := r.RecordsAt(step)
		if rows == nil {
			break
		}
		p := CurvePoint{Step: step, Year: r.BaseYear + step}
		for _, rec := range rows {
			p.Adopted += rec.Color
		}
		curve = append(curve, p)
	}
	return curve
}

// Reach returns the adopted and total country counts at the final step.
func (r *Result) Reach() (adopted, total int) {
	curve := r.AdoptionCurve()
	if len(curve) == 0 {
		return 0, r.Countries
	}
	return curve[len(curve)-1].Adopted, r.Countries
}

// ReachPercent is the truncated percentage of countries that adopted.
func (r *Result) ReachPercent() int {
	adopted, total := r.Reach()
	if total == 0 {
		return 0
	}
	return adopted * 100 / total
}

// Adopters returns countries that adopted after the base year, in event order.
func (r *Result) Adopters() []string {
	var out []string
	for _, ev := range r.Events {
		if ev.Kind == timeseries.EventAdopted {
			out = append(out, ev.Country)
		}
	}
	return out
}
