// Row types produced by a diffusion run.
package timeseries

import (
	"fmt"
	"os"
)

// Status is a country's adoption state.
type Status string

// Adoption statuses.
const (
	StatusSusceptible Status = "Susceptible"
	StatusAdopted     Status = "Adopted"
)

// Color maps a status to the binary flag used by map renderers.
func (s Status) Color() int {
	if s == StatusAdopted {
		return 1
	}
	return 0
}

// Record is one (year, country) row of the time series.
type Record struct {
	RunID   string `json:"run_id"`
	Step    int    `json:"step"`    // 0 is the base year
	Year    int    `json:"year"`    // TIME INDEX
	Country string `json:"country"` // TAG
	ISO     string `json:"iso"`     // TAG
	Region  string `json:"region"`
	Status  Status `json:"status"`
	Color   int    `json:"color"`
}

// EventKind classifies event log entries.
type EventKind string

// Event kinds.
const (
	EventInitiated EventKind = "initiated"
	EventAdopted   EventKind = "adopted"
	EventSaturated EventKind = "saturated"
)

// Event is one entry of the chronological event log.
type Event struct {
	RunID   string    `json:"run_id"`
	Step    int       `json:"step"`
	Year    int       `json:"year"`
	Kind    EventKind `json:"kind"`
	Country string    `json:"country,omitempty"`
	Message string    `json:"message"`
}

// NewInitiatedEvent announces the origin at the base year.
func NewInitiatedEvent(runID string, year int, origin string) Event {
	return Event{RunID: runID, Step: 0, Year: year, Kind: EventInitiated, Country: origin,
		Message: fmt.Sprintf("%d: Policy initiated in %s", year, origin)}
}

// NewAdoptedEvent records a country adopting in a given step.
func NewAdoptedEvent(runID string, step, year int, name string) Event {
	return Event{RunID: runID, Step: step, Year: year, Kind: EventAdopted, Country: name,
		Message: fmt.Sprintf("%d: %s adopts policy.", year, name)}
}

// NewSaturatedEvent marks that every country has adopted.
func NewSaturatedEvent(runID string, step, year int) Event {
	return Event{RunID: runID, Step: step, Year: year, Kind: EventSaturated,
		Message: fmt.Sprintf("%d: Global Saturation Reached.", year)}
}

// AdoptionTableName holds the table name used when writing records to GreptimeDB.
// It defaults to "policy_adoption" but can be overridden via the
// GREPTIMEDB_TABLE environment variable.
var AdoptionTableName = func() string {
	if env := os.Getenv("GREPTIMEDB_TABLE"); env != "" {
		return env
	}
	return "policy_adoption"
}()

func (Record) TableName() string {
	return AdoptionTableName
}

// EventTableName is the GreptimeDB table for event rows, overridable via
// POLICY_EVENT_TABLE.
var EventTableName = func() string {
	if env := os.Getenv("POLICY_EVENT_TABLE"); env != "" {
		return env
	}
	return "policy_events"
}()

func (Event) TableName() string {
	return EventTableName
}
