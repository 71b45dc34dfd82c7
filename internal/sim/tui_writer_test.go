package sim

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"diffusion-sim/internal/config"
	"diffusion-sim/internal/timeseries"
)

type fakeProgram struct{ msgs []tea.Msg }

func (f *fakeProgram) Send(msg tea.Msg) { f.msgs = append(f.msgs, msg) }

func TestTUIWriterMessages(t *testing.T) {
	p := &fakeProgram{}
	w := &TUIWriter{program: p}
	if err := w.StartRun(&Result{RunID: "r", Policy: "P", Origin: "Alpha"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, ok := p.msgs[0].(runMsg); !ok {
		t.Fatalf("expected runMsg, got %T", p.msgs[0])
	}
	if err := w.Write(timeseries.Record{Country: "Alpha", Year: 2025}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, ok := p.msgs[1].(recordMsg); !ok {
		t.Fatalf("expected recordMsg, got %T", p.msgs[1])
	}
	if err := w.WriteEvent(timeseries.NewInitiatedEvent("r", 2025, "Alpha")); err != nil {
		t.Fatalf("event: %v", err)
	}
	lm, ok := p.msgs[2].(logMsg)
	if !ok {
		t.Fatalf("expected logMsg, got %T", p.msgs[2])
	}
	if !strings.Contains(lm.line, "Policy initiated in Alpha") {
		t.Fatalf("unexpected log line %q", lm.line)
	}
}

func TestRegionBoardAndReach(t *testing.T) {
	m := newTUIModel(config.Default())
	rows := []timeseries.Record{
		{Year: 2025, Country: "Alpha", Region: "Europe", Status: timeseries.StatusAdopted, Color: 1},
		{Year: 2025, Country: "Beta", Region: "Europe", Status: timeseries.StatusSusceptible},
		{Year: 2025, Country: "Gamma", Region: "Asia", Status: timeseries.StatusSusceptible},
		{Year: 2026, Country: "Alpha", Region: "Europe", Status: timeseries.StatusAdopted, Color: 1},
		{Year: 2026, Country: "Beta", Region: "Europe", Status: timeseries.StatusAdopted, Color: 1},
		{Year: 2026, Country: "Gamma", Region: "Asia", Status: timeseries.StatusSusceptible},
	}
	for _, r := range rows {
		mi, _ := m.Update(recordMsg{r})
		m = mi.(tuiModel)
	}
	if adopted, total := m.adopted(); adopted != 2 || total != 3 {
		t.Fatalf("expected 2/3 adopted, got %d/%d", adopted, total)
	}
	board := m.renderRegions()
	if !strings.Contains(board, "2/2") || !strings.Contains(board, "0/1") {
		t.Fatalf("unexpected region board:\n%s", board)
	}
	if strings.Index(board, "Europe") > strings.Index(board, "Asia") {
		t.Fatalf("regions out of display order:\n%s", board)
	}
	if !strings.Contains(m.renderBottom(), "reach=66%") {
		t.Fatalf("unexpected bottom line %q", m.renderBottom())
	}
	if got := []rune(m.renderCurve()); len(got) != 2 || got[0] >= got[1] {
		t.Fatalf("expected rising two-point curve, got %q", string(got))
	}
}

func TestWrapToggle(t *testing.T) {
	m := newTUIModel(config.Default())
	mi, _ := m.Update(tea.WindowSizeMsg{Width: 20, Height: 40})
	m = mi.(tuiModel)
	long := "one two three four five six"
	mi, _ = m.Update(logMsg{line: long})
	m = mi.(tuiModel)
	lines := strings.Split(m.vp.View(), "\n")
	if len(lines) < 2 || strings.TrimSpace(lines[1]) != "" {
		t.Fatalf("expected single line before wrap")
	}
	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'w'}})
	m = mi.(tuiModel)
	if !m.wrap {
		t.Fatalf("wrap not toggled")
	}
	lines = strings.Split(m.vp.View(), "\n")
	if strings.TrimSpace(lines[1]) == "" {
		t.Fatalf("expected wrapped content on second line")
	}
}

func TestScrollToggle(t *testing.T) {
	m := newTUIModel(nil)
	m.vp.Height = 1
	m.vp.Width = 20
	mi, _ := m.Update(logMsg{line: "l1"})
	m = mi.(tuiModel)
	mi, _ = m.Update(logMsg{line: "l2"})
	m = mi.(tuiModel)
	if m.vp.YOffset != 1 {
		t.Fatalf("expected YOffset 1, got %d", m.vp.YOffset)
	}
	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	m = mi.(tuiModel)
	if m.autoscroll {
		t.Fatalf("autoscroll should be off")
	}
	mi, _ = m.Update(logMsg{line: "l3"})
	m = mi.(tuiModel)
	if m.vp.YOffset != 1 {
		t.Fatalf("expected YOffset unchanged, got %d", m.vp.YOffset)
	}
	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = mi.(tuiModel)
	if m.vp.YOffset != 0 {
		t.Fatalf("expected YOffset 0 after scrolling up, got %d", m.vp.YOffset)
	}
	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	m = mi.(tuiModel)
	if !m.autoscroll {
		t.Fatalf("autoscroll should be on")
	}
	expected := len(m.logs) - m.vp.Height
	if m.vp.YOffset != expected {
		t.Fatalf("expected YOffset %d, got %d", expected, m.vp.YOffset)
	}
}

func TestHelpView(t *testing.T) {
	m := newTUIModel(nil)
	mi, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	m = mi.(tuiModel)
	if !strings.Contains(m.View(), "Key Bindings") {
		t.Fatalf("expected help view")
	}
	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = mi.(tuiModel)
	if m.help {
		t.Fatalf("help should close on esc")
	}
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
}
