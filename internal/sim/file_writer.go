package sim

import (
	"encoding/json"
	"os"

	"diffusion-sim/internal/timeseries"
)

// FileWriter writes records and events to JSONL files.
type FileWriter struct {
	recFile *os.File
	evFile  *os.File
	recEnc  *json.Encoder
	evEnc   *json.Encoder
}

// NewFileWriter creates a FileWriter. If eventsPath is empty, events are
// interleaved with records in recordsPath so the file replays as one stream.
func NewFileWriter(recordsPath, eventsPath string) (*FileWriter, error) {
	rf, err := os.Create(recordsPath)
	if err != nil {
		return nil, err
	}
	fw := &FileWriter{recFile: rf, recEnc: json.NewEncoder(rf)}
	fw.evEnc = fw.recEnc
	if eventsPath != "" {
		ef, err := os.Create(eventsPath)
		if err != nil {
			rf.Close()
			return nil, err
		}
		fw.evFile = ef
		fw.evEnc = json.NewEncoder(ef)
	}
	return fw, nil
}

// Write logs a single record.
func (f *FileWriter) Write(row timeseries.Record) error {
	return f.recEnc.Encode(row)
}

// WriteBatch logs multiple records.
func (f *FileWriter) WriteBatch(rows []timeseries.Record) error {
	for _, r := range rows {
		if err := f.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteEvent logs a single event.
func (f *FileWriter) WriteEvent(e timeseries.Event) error {
	return f.evEnc.Encode(e)
}

// WriteEvents logs multiple events.
func (f *FileWriter) WriteEvents(rows []timeseries.Event) error {
	for _, e := range rows {
		if err := f.WriteEvent(e); err != nil {
			return err
		}
	}
	return nil
}

// Close closes any underlying files.
func (f *FileWriter) Close() error {
	var err error
	if f.recFile != nil {
		if e := f.recFile.Close(); e != nil {
			err = e
		}
	}
	if f.evFile != nil {
		if e := f.evFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}
