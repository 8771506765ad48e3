package dashboard

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tcounter/internal/model"
	"github.com/verte-zerg/tcounter/internal/session"
)

func TestProgressUpdatesRows(t *testing.T) {
	m := NewModel(2, nil)
	_, cmd := m.Update(ProgressMsg(session.Progress{
		Messages: 4,
		Tokens:   9,
		Distinct: 3,
		Top: []model.WordCount{
			{Word: "hello", Count: 4},
			{Word: "world", Count: 3},
			{Word: "extra", Count: 2},
		},
	}))
	if cmd != nil {
		t.Fatalf("expected no command for running session")
	}
	rows := m.table.Rows()
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][1] != "hello" || rows[0][2] != "4" {
		t.Fatalf("unexpected first row: %v", rows[0])
	}
	view := m.View()
	for _, want := range []string{"messages 4", "tokens 9", "distinct 3", "hello"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
}

func TestDoneProgressQuits(t *testing.T) {
	m := NewModel(10, nil)
	_, cmd := m.Update(ProgressMsg(session.Progress{Done: true}))
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

func TestStopKeyCallsOnce(t *testing.T) {
	calls := 0
	m := NewModel(10, func() { calls++ })
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if calls != 1 {
		t.Fatalf("expected one stop call, got %d", calls)
	}
	if !strings.Contains(m.View(), "stopping") {
		t.Fatalf("expected stopping footer")
	}
}

func TestRemainingTime(t *testing.T) {
	base := time.Unix(1000, 0)
	m := NewModel(10, nil)
	m.now = func() time.Time { return base }
	m.Update(ProgressMsg(session.Progress{Deadline: base.Add(90 * time.Second)}))
	if !strings.Contains(m.renderStats(), "remaining 1m30s") {
		t.Fatalf("unexpected stats: %s", m.renderStats())
	}
	m.now = func() time.Time { return base.Add(time.Hour) }
	if !strings.Contains(m.renderStats(), "remaining 0s") {
		t.Fatalf("expected clamp to zero: %s", m.renderStats())
	}
}
