package report

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/verte-zerg/tcounter/internal/model"
)

// DisplayTag prefixes every report line.
const DisplayTag = "[displaying-data]"

const maxWordWidth = 40

var (
	tagStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	wordStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	countStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
)

// WriteTop prints the ranked entries as "word --> count" lines under a
// header naming n. Color is used only when w is a terminal.
func WriteTop(w io.Writer, n int, entries []model.WordCount) error {
	color := shouldUseColor(w)
	tag := DisplayTag
	if color {
		tag = tagStyle.Render(DisplayTag)
	}
	if _, err := fmt.Fprintf(w, "%s top %d word counts...\n", tag, n); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	for _, e := range entries {
		word := runewidth.Truncate(e.Word, maxWordWidth, "…")
		count := strconv.Itoa(e.Count)
		if color {
			word = wordStyle.Render(word)
			count = countStyle.Render(count)
		}
		if _, err := fmt.Fprintf(w, "%s %s --> %s\n", tag, word, count); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}
	return nil
}

// WriteTable prints the ranked entries as an aligned table with rank and
// share of total occurrences.
func WriteTable(w io.Writer, entries []model.WordCount, total int) error {
	rows := make([][]string, 0, len(entries))
	for i, e := range entries {
		share := "-"
		if total > 0 {
			share = fmt.Sprintf("%.2f%%", float64(e.Count)/float64(total)*100)
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			runewidth.Truncate(e.Word, maxWordWidth, "…"),
			strconv.Itoa(e.Count),
			share,
		})
	}
	lines := FormatTable([]string{"#", "Word", "Count", "Share"}, rows, map[int]bool{0: true, 2: true, 3: true})
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

// WriteSessions prints session history rows, oldest first.
func WriteSessions(w io.Writer, sessions []model.SessionRecord) error {
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		top := ""
		if len(s.TopWords) > 0 {
			top = fmt.Sprintf("%s (%d)", s.TopWords[0].Word, s.TopWords[0].Count)
		}
		rows = append(rows, []string{
			strconv.FormatInt(s.ID, 10),
			s.EndedAt.Local().Format("2006-01-02 15:04"),
			s.EndedAt.Sub(s.StartedAt).Round(time.Second).String(),
			s.Reason,
			strconv.Itoa(s.Messages),
			strconv.Itoa(s.Tokens),
			strconv.Itoa(s.DistinctWords),
			top,
		})
	}
	headers := []string{"ID", "Ended", "Length", "Reason", "Messages", "Tokens", "Distinct", "Top"}
	lines := FormatTable(headers, rows, map[int]bool{0: true, 4: true, 5: true, 6: true})
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func shouldUseColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
