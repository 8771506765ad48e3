package report

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Word", "Count", "Share"}
	rows := [][]string{
		{"golang", "12", "40.00%"},
		{"go", "3", "10.00%"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := FormatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Word   Count  Share" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "golang    12 40.00%" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "go         3 10.00%" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableTrimsTrailingPadding(t *testing.T) {
	lines := FormatTable([]string{"Word", "Note"}, [][]string{{"a", ""}}, nil)
	if lines[1] != "a" {
		t.Fatalf("expected trailing padding trimmed, got %q", lines[1])
	}
}

func TestFormatTableEmpty(t *testing.T) {
	if lines := FormatTable(nil, nil, nil); lines != nil {
		t.Fatalf("expected nil, got %v", lines)
	}
}
