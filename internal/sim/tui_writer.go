package sim

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"diffusion-sim/internal/config"
	"diffusion-sim/internal/country"
	"diffusion-sim/internal/timeseries"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// logMsg carries a log line for the viewport.
type logMsg struct{ line string }

// recordMsg carries one time-series row.
type recordMsg struct{ timeseries.Record }

// runMsg announces the run being played back.
type runMsg struct {
	runID    string
	policy   string
	origin   string
	strength float64
	years    int
}

const (
	maxLogLines = 1000
	barWidth    = 20
)

var sparkTicks = []rune("▁▂▃▄▅▆▇█")

// TUIWriter renders a run using a bubbletea TUI.
type TUIWriter struct {
	program    teaProgram
	done       chan struct{}
	sendSignal atomic.Bool
}

// NewTUIWriter starts a bubbletea program and returns a TUIWriter.
func NewTUIWriter(cfg *config.SimulationConfig) *TUIWriter {
	w := &TUIWriter{done: make(chan struct{})}
	w.sendSignal.Store(true)
	p := tea.NewProgram(newTUIModel(cfg), tea.WithAltScreen())
	w.program = p
	go func() {
		_, _ = p.Run()
		close(w.done)
		if w.sendSignal.Load() {
			if proc, err := os.FindProcess(os.Getpid()); err == nil {
				_ = proc.Signal(os.Interrupt)
			}
		}
	}()
	return w
}

// StartRun implements RunWriter.
func (w *TUIWriter) StartRun(res *Result) error {
	w.program.Send(runMsg{
		runID:    res.RunID,
		policy:   res.Policy,
		origin:   res.Origin,
		strength: res.Strength,
		years:    res.Years,
	})
	return nil
}

// Write implements RecordWriter.
func (w *TUIWriter) Write(row timeseries.Record) error {
	w.program.Send(recordMsg{row})
	return nil
}

// WriteBatch outputs multiple records.
func (w *TUIWriter) WriteBatch(rows []timeseries.Record) error {
	for _, r := range rows {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteEvent implements EventWriter.
func (w *TUIWriter) WriteEvent(e timeseries.Event) error {
	line := fmt.Sprintf("%s[%d]%s %s%s%s %s",
		colorGray, e.Year, colorReset,
		eventColor(e.Kind), strings.ToUpper(string(e.Kind)), colorReset,
		e.Message)
	w.program.Send(logMsg{line: line})
	return nil
}

// WriteEvents outputs multiple events.
func (w *TUIWriter) WriteEvents(rows []timeseries.Event) error {
	for _, e := range rows {
		if err := w.WriteEvent(e); err != nil {
			return err
		}
	}
	return nil
}

// Close shuts down the TUI program and waits for cleanup.
func (w *TUIWriter) Close() error {
	w.sendSignal.Store(false)
	if w.program != nil {
		w.program.Send(tea.Quit())
	}
	if w.done != nil {
		<-w.done
	}
	return nil
}

// Wait blocks until the user quits the TUI.
func (w *TUIWriter) Wait() {
	w.sendSignal.Store(false)
	if w.done != nil {
		<-w.done
	}
}

type regionTally struct {
	adopted int
	total   int
}

type tuiModel struct {
	cfg          *config.SimulationConfig
	table        table.Model
	vp           viewport.Model
	logs         []string
	run          runMsg
	wrap         bool
	autoscroll   bool
	help         bool
	showRegions  bool
	summary      bool
	header       string
	headerHeight int
	height       int
	year         int
	status       map[string]timeseries.Status
	regionOf     map[string]string
	curve        map[int]int
	years        []int
}

func newTUIModel(cfg *config.SimulationConfig) tuiModel {
	if cfg == nil {
		cfg = config.Default()
	}
	cols := []table.Column{
		{Title: "Config", Width: 24},
		{Title: "Value", Width: 10},
		{Title: "Config", Width: 24},
		{Title: "Value", Width: 10},
	}
	rows := []table.Row{
		{"Seed", fmt.Sprintf("%d", cfg.Seed), "Base Year", fmt.Sprintf("%d", cfg.BaseYear)},
		{"Regional Weight", fmt.Sprintf("%.2f", cfg.Network.RegionalWeight), "Cross-Region Weight", fmt.Sprintf("%.2f", cfg.Network.CrossRegionWeight)},
		{"Cross-Region Probability", fmt.Sprintf("%.2f", cfg.Network.CrossRegionProbability), "Resistance", fmt.Sprintf("%.2f-%.2f", cfg.Resistance.Min, cfg.Resistance.Max)},
	}
	t := table.New(table.WithColumns(cols), table.WithRows(rows), table.WithHeight(len(rows)+1))
	return tuiModel{
		cfg:         cfg,
		table:       t,
		vp:          viewport.New(0, 0),
		autoscroll:  true,
		showRegions: true,
		status:      make(map[string]timeseries.Status),
		regionOf:    make(map[string]string),
		curve:       make(map[int]int),
	}
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetWidth(msg.Width)
		m.vp.Width = msg.Width
		m.height = msg.Height
		m.header = m.renderHeader()
		m.headerHeight = lipgloss.Height(m.header)
		m.updateViewportHeight()
		m.refreshViewport()
	case tea.KeyMsg:
		if m.help {
			switch msg.String() {
			case "?", "h", "esc":
				m.help = false
				m.updateViewportHeight()
			}
			return m, nil
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "w":
			m.wrap = !m.wrap
			m.refreshViewport()
			m.header = m.renderHeader()
			m.headerHeight = lipgloss.Height(m.header)
			m.updateViewportHeight()
			return m, nil
		case "s":
			m.autoscroll = !m.autoscroll
			if m.autoscroll {
				m.vp.GotoBottom()
			}
			return m, nil
		case "r":
			m.showRegions = !m.showRegions
			m.updateViewportHeight()
			return m, nil
		case "t":
			m.summary = !m.summary
			m.updateViewportHeight()
			return m, nil
		case "?", "h":
			m.help = true
			return m, nil
		}
		if !m.autoscroll {
			switch msg.String() {
			case "j", "down":
				m.vp.LineDown(1)
			case "k", "up":
				m.vp.LineUp(1)
			case "pgdown", "ctrl+n":
				m.vp.LineDown(10)
			case "pgup", "ctrl+p":
				m.vp.LineUp(10)
			default:
				var cmd tea.Cmd
				m.vp, cmd = m.vp.Update(msg)
				return m, cmd
			}
			return m, nil
		}
		return m, nil
	case logMsg:
		m.logs = append(m.logs, msg.line)
		if len(m.logs) > maxLogLines {
			m.logs = m.logs[len(m.logs)-maxLogLines:]
		}
		m.refreshViewport()
	case runMsg:
		m.run = msg
		m.header = m.renderHeader()
		m.headerHeight = lipgloss.Height(m.header)
		m.updateViewportHeight()
	case recordMsg:
		m.applyRecord(msg.Record)
	}
	return m, nil
}

func (m *tuiModel) applyRecord(r timeseries.Record) {
	if _, seen := m.curve[r.Year]; !seen {
		m.years = append(m.years, r.Year)
		m.curve[r.Year] = 0
	}
	if r.Year > m.year {
		m.year = r.Year
	}
	m.status[r.Country] = r.Status
	m.regionOf[r.Country] = r.Region
	if r.Status == timeseries.StatusAdopted {
		m.curve[r.Year]++
	}
}

func (m tuiModel) adopted() (adopted, total int) {
	for _, st := range m.status {
		total++
		if st == timeseries.StatusAdopted {
			adopted++
		}
	}
	return adopted, total
}

func (m tuiModel) regionTallies() map[string]regionTally {
	out := make(map[string]regionTally)
	for name, st := range m.status {
		t := out[m.regionOf[name]]
		t.total++
		if st == timeseries.StatusAdopted {
			t.adopted++
		}
		out[m.regionOf[name]] = t
	}
	return out
}

func (m *tuiModel) updateViewportHeight() {
	used := m.headerHeight + lipgloss.Height(m.renderBottom()) + 3
	if m.showRegions {
		used += lipgloss.Height(m.renderRegions()) + 1
	}
	h := m.height - used
	if h < 0 {
		h = 0
	}
	m.vp.Height = h
	if m.autoscroll {
		m.vp.GotoBottom()
	}
}

func (m *tuiModel) refreshViewport() {
	var lines []string
	for _, l := range m.logs {
		if m.wrap {
			lines = append(lines, wordwrap.String(l, m.vp.Width))
		} else {
			lines = append(lines, l)
		}
	}
	m.vp.SetContent(strings.Join(lines, "\n"))
	if m.autoscroll {
		m.vp.GotoBottom()
	}
}

func (m tuiModel) View() string {
	if m.help {
		return m.renderHelp()
	}
	divider := strings.Repeat("─", m.vp.Width)
	sections := []string{m.header, divider}
	if m.showRegions {
		sections = append(sections, m.renderRegions(), divider)
	}
	sections = append(sections, m.vp.View(), divider, m.renderBottom())
	return strings.Join(sections, "\n")
}

func (m tuiModel) renderHeader() string {
	title := lipgloss.NewStyle().Bold(true).Render("Global Policy Diffusion")
	if m.run.policy != "" {
		line := fmt.Sprintf("%s: %s from %s (strength %.2f, %d years)", title, m.run.policy, m.run.origin, m.run.strength, m.run.years)
		if m.wrap && m.vp.Width > 0 {
			line = wordwrap.String(line, m.vp.Width)
		}
		title = line
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, m.table.View())
}

func (m tuiModel) renderRegions() string {
	tallies := m.regionTallies()
	var b strings.Builder
	for _, r := range country.Regions {
		t, ok := tallies[string(r)]
		if !ok {
			continue
		}
		filled := 0
		if t.total > 0 {
			filled = t.adopted * barWidth / t.total
		}
		bar := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(strings.Repeat("█", filled)) +
			lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(strings.Repeat("░", barWidth-filled))
		fmt.Fprintf(&b, "%-14s %s %d/%d\n", r, bar, t.adopted, t.total)
	}
	out := strings.TrimRight(b.String(), "\n")
	if out == "" {
		return "Waiting for records..."
	}
	return out
}

// renderCurve draws the adoption curve as a sparkline.
func (m tuiModel) renderCurve() string {
	_, total := m.adopted()
	if total == 0 || len(m.years) == 0 {
		return ""
	}
	var b strings.Builder
	for _, y := range m.years {
		idx := m.curve[y] * (len(sparkTicks) - 1) / total
		b.WriteRune(sparkTicks[idx])
	}
	return b.String()
}

func indicator(on bool) string {
	c := lipgloss.Color("9")
	if on {
		c = lipgloss.Color("10")
	}
	return lipgloss.NewStyle().Foreground(c).Render("●")
}

func (m tuiModel) renderBottom() string {
	adopted, total := m.adopted()
	pct := 0
	if total > 0 {
		pct = adopted * 100 / total
	}
	state := fmt.Sprintf("%sYEAR%s %s%d%s %sadopted=%d/%d%s %sreach=%d%%%s",
		colorBlue, colorReset,
		colorYellow, m.year, colorReset,
		colorGreen, adopted, total, colorReset,
		colorCyan, pct, colorReset)
	line := fmt.Sprintf("%s | Wrap %s | Scroll %s | Regions %s | Curve %s | Help %s",
		state, indicator(m.wrap), indicator(m.autoscroll), indicator(m.showRegions), indicator(m.summary), indicator(m.help))
	if m.summary {
		return fmt.Sprintf("%sCURVE%s %s\n%s", colorMagenta, colorReset, m.renderCurve(), line)
	}
	return line
}

func (m tuiModel) renderHelp() string {
	lines := []string{
		"Key Bindings:",
		" q  quit",
		" w  toggle wrap for event log and title",
		" s  toggle auto-scroll",
		" r  toggle region board",
		" t  toggle adoption curve",
		" h/? toggle this help view",
		"",
		"When auto-scroll is disabled:",
		" j/k or up/down    scroll one line",
		" pgdown/pgup       scroll a page",
	}
	return strings.Join(lines, "\n")
}
