// Package dashboard provides the Bubble Tea live view of a running session.
package dashboard

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/tcounter/internal/session"
)

const wordColumnWidth = 24

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	statStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	boxStyle    = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
)

// ProgressMsg carries a session progress update into the program.
type ProgressMsg session.Progress

type tickMsg time.Time

// Model implements the Bubble Tea live view.
type Model struct {
	top      int
	onStop   func()
	now      func() time.Time
	table    table.Model
	progress session.Progress
	stopping bool
	width    int
	height   int
}

// NewModel builds a view for up to top rows. onStop is called once when
// the user asks to end the session.
func NewModel(top int, onStop func()) *Model {
	if top <= 0 {
		top = 10
	}
	columns := []table.Column{
		{Title: "#", Width: 3},
		{Title: "Word", Width: wordColumnWidth},
		{Title: "Count", Width: 8},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithHeight(top+1),
	)
	t.SetWidth(3 + wordColumnWidth + 8 + 2*len(columns))
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		BorderBottom(true).
		Bold(true)
	styles.Selected = lipgloss.NewStyle()
	t.SetStyles(styles)
	return &Model{top: top, onStop: onStop, now: time.Now, table: t}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tick()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case ProgressMsg:
		m.progress = session.Progress(msg)
		m.table.SetRows(buildRows(m.progress, m.top))
		if m.progress.Done {
			return m, tea.Quit
		}
		return m, nil
	case tickMsg:
		return m, tick()
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			m.stop()
		}
		return m, nil
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	header := titleStyle.Render("tcounter") + "  " + statStyle.Render(m.renderStats())
	body := boxStyle.Render(m.table.View())
	footer := footerStyle.Render("q: stop and save")
	if m.stopping {
		footer = footerStyle.Render("stopping, saving snapshot...")
	}
	content := strings.Join([]string{header, body, footer}, "\n")
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) stop() {
	if m.stopping {
		return
	}
	m.stopping = true
	if m.onStop != nil {
		m.onStop()
	}
}

func (m *Model) renderStats() string {
	segments := []string{
		fmt.Sprintf("messages %d", m.progress.Messages),
		fmt.Sprintf("tokens %d", m.progress.Tokens),
		fmt.Sprintf("distinct %d", m.progress.Distinct),
	}
	if !m.progress.Deadline.IsZero() {
		remaining := m.progress.Deadline.Sub(m.now()).Round(time.Second)
		if remaining < 0 {
			remaining = 0
		}
		segments = append(segments, fmt.Sprintf("remaining %s", remaining))
	}
	return strings.Join(segments, " · ")
}

func buildRows(p session.Progress, top int) []table.Row {
	n := len(p.Top)
	if n > top {
		n = top
	}
	rows := make([]table.Row, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, table.Row{
			strconv.Itoa(i + 1),
			runewidth.Truncate(p.Top[i].Word, wordColumnWidth, "…"),
			strconv.Itoa(p.Top[i].Count),
		})
	}
	return rows
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
