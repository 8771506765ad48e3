package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/tcounter/internal/model"
)

func TestWriteTop(t *testing.T) {
	var buf bytes.Buffer
	entries := []model.WordCount{{Word: "hello", Count: 4}, {Word: "world", Count: 2}}
	if err := WriteTop(&buf, 10, entries); err != nil {
		t.Fatalf("WriteTop: %v", err)
	}
	want := "[displaying-data] top 10 word counts...\n" +
		"[displaying-data] hello --> 4\n" +
		"[displaying-data] world --> 2\n"
	if buf.String() != want {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
}

func TestWriteTopEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTop(&buf, 10, nil); err != nil {
		t.Fatalf("WriteTop: %v", err)
	}
	if strings.Count(buf.String(), "\n") != 1 {
		t.Fatalf("expected header only, got %q", buf.String())
	}
}

func TestWriteTopTruncatesLongWords(t *testing.T) {
	var buf bytes.Buffer
	long := strings.Repeat("a", 100)
	if err := WriteTop(&buf, 1, []model.WordCount{{Word: long, Count: 1}}); err != nil {
		t.Fatalf("WriteTop: %v", err)
	}
	if strings.Contains(buf.String(), long) {
		t.Fatalf("expected long word to be truncated")
	}
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	entries := []model.WordCount{{Word: "go", Count: 3}, {Word: "zig", Count: 1}}
	if err := WriteTable(&buf, entries, 4); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[1], "75.00%") || !strings.Contains(lines[2], "25.00%") {
		t.Fatalf("unexpected shares: %q", buf.String())
	}
}

func TestWriteSessions(t *testing.T) {
	var buf bytes.Buffer
	start := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	sessions := []model.SessionRecord{{
		ID:            7,
		StartedAt:     start,
		EndedAt:       start.Add(90 * time.Second),
		Reason:        "deadline",
		Messages:      12,
		Tokens:        40,
		DistinctWords: 30,
		TopWords:      []model.WordCount{{Word: "hello", Count: 5}},
	}}
	if err := WriteSessions(&buf, sessions); err != nil {
		t.Fatalf("WriteSessions: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"deadline", "1m30s", "hello (5)", "Messages"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}
