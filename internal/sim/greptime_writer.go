package sim

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"

	"diffusion-sim/internal/timeseries"
)

const greptimeWriteTimeout = 10 * time.Second

// greptimeClient is the subset of the ingester client used by the writer.
type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeDBWriter writes records and events to GreptimeDB via the ingester client.
// Tables are created on first write by the server's auto-create behaviour.
type GreptimeDBWriter struct {
	client     greptimeClient
	table      string
	eventTable string
	log        *slog.Logger
}

// NewGreptimeDBWriter connects to endpoint (host or host:port, default gRPC
// port 4001) and writes into database.
func NewGreptimeDBWriter(endpoint, database string) (*GreptimeDBWriter, error) {
	host, port := endpoint, 4001
	if h, p, err := net.SplitHostPort(endpoint); err == nil {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid greptime port %q: %w", p, err)
		}
		host, port = h, n
	}
	cfg := greptime.NewConfig(host).WithPort(port).WithDatabase(database)
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("greptime client: %w", err)
	}
	return &GreptimeDBWriter{
		client:     client,
		table:      timeseries.AdoptionTableName,
		eventTable: timeseries.EventTableName,
		log:        slog.Default(),
	}, nil
}

// yearTimestamp anchors a calendar year at January 1st UTC.
func yearTimestamp(year int) time.Time {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
}

func (w *GreptimeDBWriter) logger() *slog.Logger {
	if w.log == nil {
		return slog.Default()
	}
	return w.log
}

func (w *GreptimeDBWriter) send(tbl *table.Table, name string, n int) error {
	ctx, cancel := context.WithTimeout(context.Background(), greptimeWriteTimeout)
	defer cancel()
	if _, err := w.client.Write(ctx, tbl); err != nil {
		w.logger().Error("greptime write failed", "table", name, "err", err)
		return err
	}
	w.logger().Debug("greptime write", "table", name, "rows", n)
	return nil
}

// Write inserts a single record.
func (w *GreptimeDBWriter) Write(row timeseries.Record) error {
	return w.WriteBatch([]timeseries.Record{row})
}

// WriteBatch inserts multiple records.
func (w *GreptimeDBWriter) WriteBatch(rows []timeseries.Record) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := table.New(w.table)
	if err != nil {
		return err
	}
	if err := tbl.AddTagColumn("run_id", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddTagColumn("country", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddTagColumn("iso", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("region", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("status", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("color", types.INT64); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("step", types.INT64); err != nil {
		return err
	}
	if err := tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND); err != nil {
		return err
	}

	for _, r := range rows {
		if err := tbl.AddRow(
			r.RunID,
			r.Country,
			r.ISO,
			r.Region,
			string(r.Status),
			int64(r.Color),
			int64(r.Step),
			yearTimestamp(r.Year),
		); err != nil {
			return err
		}
	}
	return w.send(tbl, w.table, len(rows))
}

// WriteEvent inserts a single event.
func (w *GreptimeDBWriter) WriteEvent(e timeseries.Event) error {
	return w.WriteEvents([]timeseries.Event{e})
}

// WriteEvents inserts multiple events.
func (w *GreptimeDBWriter) WriteEvents(rows []timeseries.Event) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := table.New(w.eventTable)
	if err != nil {
		return err
	}
	if err := tbl.AddTagColumn("run_id", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddTagColumn("kind", types.STRING); err != nil {
		return err
	}
	// country is part of the key so same-year adoptions stay distinct rows.
	if err := tbl.AddTagColumn("country", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("message", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("step", types.INT64); err != nil {
		return err
	}
	if err := tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND); err != nil {
		return err
	}

	for _, e := range rows {
		if err := tbl.AddRow(
			e.RunID,
			string(e.Kind),
			e.Country,
			e.Message,
			int64(e.Step),
			yearTimestamp(e.Year),
		); err != nil {
			return err
		}
	}
	return w.send(tbl, w.eventTable, len(rows))
}
