// ColorStdoutWriter prints human-friendly, colorized adoption output to STDOUT.
package sim

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"text/tabwriter"

	"diffusion-sim/internal/config"
	"diffusion-sim/internal/timeseries"
)

const (
	colorReset   = "\x1b[0m"
	colorRed     = "\x1b[31m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorBlue    = "\x1b[34m"
	colorMagenta = "\x1b[35m"
	colorCyan    = "\x1b[36m"
	colorGray    = "\x1b[90m"
)

var regionPalette = []string{colorRed, colorGreen, colorYellow, colorBlue, colorMagenta, colorCyan}

// ColorStdoutWriter prints records and events using ANSI colors.
type ColorStdoutWriter struct {
	cfg          *config.SimulationConfig
	out          io.Writer
	once         sync.Once
	regionColors map[string]string
	colorIdx     int
}

// NewColorStdoutWriter creates a ColorStdoutWriter writing to os.Stdout.
func NewColorStdoutWriter(cfg *config.SimulationConfig) *ColorStdoutWriter {
	return &ColorStdoutWriter{
		cfg:          cfg,
		out:          os.Stdout,
		regionColors: make(map[string]string),
	}
}

func (w *ColorStdoutWriter) getRegionColor(region string) string {
	if c, ok := w.regionColors[region]; ok {
		return c
	}
	c := regionPalette[w.colorIdx%len(regionPalette)]
	w.regionColors[region] = c
	w.colorIdx++
	return c
}

func statusColor(s timeseries.Status) string {
	if s == timeseries.StatusAdopted {
		return colorGreen
	}
	return colorGray
}

func eventColor(k timeseries.EventKind) string {
	switch k {
	case timeseries.EventInitiated:
		return colorCyan
	case timeseries.EventSaturated:
		return colorMagenta
	default:
		return colorYellow
	}
}

func (w *ColorStdoutWriter) printOverview() {
	if w.cfg == nil {
		return
	}
	fmt.Fprintln(w.out, "Simulation Configuration:")
	tw := tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Policy:\t%s\n", w.cfg.Policy)
	fmt.Fprintf(tw, "Seed:\t%d\n", w.cfg.Seed)
	fmt.Fprintf(tw, "Base Year:\t%d\n", w.cfg.BaseYear)
	fmt.Fprintf(tw, "Regional Weight:\t%.2f\n", w.cfg.Network.RegionalWeight)
	fmt.Fprintf(tw, "Cross-Region Weight:\t%.2f\n", w.cfg.Network.CrossRegionWeight)
	fmt.Fprintf(tw, "Cross-Region Probability:\t%.2f\n", w.cfg.Network.CrossRegionProbability)
	fmt.Fprintf(tw, "Resistance:\t(%.2f, %.2f)\n", w.cfg.Resistance.Min, w.cfg.Resistance.Max)
	tw.Flush()
	fmt.Fprintln(w.out)
}

// StartRun prints the configuration overview and the run parameters.
func (w *ColorStdoutWriter) StartRun(res *Result) error {
	w.once.Do(w.printOverview)
	tw := tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Run:\t%s\n", res.RunID)
	if res.Policy != "" {
		fmt.Fprintf(tw, "Policy:\t%s\n", res.Policy)
	}
	fmt.Fprintf(tw, "Origin:\t%s\n", res.Origin)
	fmt.Fprintf(tw, "Strength:\t%.2f\n", res.Strength)
	fmt.Fprintf(tw, "Years:\t%d\n", res.Years)
	tw.Flush()
	fmt.Fprintln(w.out)
	return nil
}

// Write outputs a single record in colorized format.
func (w *ColorStdoutWriter) Write(row timeseries.Record) error {
	w.once.Do(w.printOverview)
	fmt.Fprintf(w.out, "%s[%d]%s %s%-20s%s %s%s%s %sregion=%s%s %sstatus=%s%s\n",
		colorGray, row.Year, colorReset,
		colorBlue, row.Country, colorReset,
		colorGray, row.ISO, colorReset,
		w.getRegionColor(row.Region), row.Region, colorReset,
		statusColor(row.Status), row.Status, colorReset)
	return nil
}

// WriteBatch prints one summary line per step followed by the adopters.
func (w *ColorStdoutWriter) WriteBatch(rows []timeseries.Record) error {
	w.once.Do(w.printOverview)
	if len(rows) == 0 {
		return nil
	}
	var adopted []string
	for _, r := range rows {
		if r.Status == timeseries.StatusAdopted {
			adopted = append(adopted, w.getRegionColor(r.Region)+r.ISO+colorReset)
		}
	}
	fmt.Fprintf(w.out, "%s[%d]%s %sadopted=%d/%d%s %sreach=%d%%%s\n",
		colorGray, rows[0].Year, colorReset,
		colorGreen, len(adopted), len(rows), colorReset,
		colorCyan, len(adopted)*100/len(rows), colorReset)
	fmt.Fprintf(w.out, "       %s\n", strings.Join(adopted, " "))
	return nil
}

// WriteEvent prints an event log entry.
func (w *ColorStdoutWriter) WriteEvent(e timeseries.Event) error {
	w.once.Do(w.printOverview)
	_, err := fmt.Fprintf(w.out, "%s[%d]%s %s%s%s %s\n",
		colorGray, e.Year, colorReset,
		eventColor(e.Kind), strings.ToUpper(string(e.Kind)), colorReset,
		e.Message)
	return err
}

// WriteEvents prints multiple events.
func (w *ColorStdoutWriter) WriteEvents(rows []timeseries.Event) error {
	for _, e := range rows {
		if err := w.WriteEvent(e); err != nil {
			return err
		}
	}
	return nil
}
