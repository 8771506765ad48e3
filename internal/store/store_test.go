package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/tcounter/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "tcounter.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestInsertAndListSessions(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 3; i++ {
		start := time.Unix(0, 0).UTC().Add(time.Duration(i) * time.Hour)
		rec := model.SessionRecord{
			StartedAt:     start,
			EndedAt:       start.Add(5 * time.Minute),
			Reason:        "deadline",
			Persistence:   "file",
			Messages:      10 + i,
			Tokens:        50,
			DistinctWords: 20,
			TopWords: []model.WordCount{
				{Word: "hello", Count: 5 + i},
				{Word: "world", Count: 3},
			},
		}
		id, err := st.InsertSession(ctx, rec)
		if err != nil {
			t.Fatalf("insert session: %v", err)
		}
		ids = append(ids, id)
	}

	all, err := st.ListSessions(ctx, 0)
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(all))
	}

	last, err := st.ListSessions(ctx, 2)
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(last) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(last))
	}
	if last[0].ID != ids[1] || last[1].ID != ids[2] {
		t.Fatalf("unexpected session order: %+v", last)
	}
	if last[1].Messages != 12 || last[1].Reason != "deadline" {
		t.Fatalf("unexpected session fields: %+v", last[1])
	}
	if !last[1].EndedAt.Equal(last[1].StartedAt.Add(5 * time.Minute)) {
		t.Fatalf("timestamps not preserved: %+v", last[1])
	}
	if len(last[1].TopWords) != 2 || last[1].TopWords[0].Word != "hello" || last[1].TopWords[0].Count != 7 {
		t.Fatalf("unexpected top words: %+v", last[1].TopWords)
	}
}

func TestInsertSessionWithoutTopWords(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()
	id, err := st.InsertSession(ctx, model.SessionRecord{StartedAt: now, EndedAt: now, Reason: "feed-error", Persistence: "none"})
	if err != nil {
		t.Fatalf("insert session: %v", err)
	}
	top, err := st.ListTopWords(ctx, id)
	if err != nil {
		t.Fatalf("list top words: %v", err)
	}
	if len(top) != 0 {
		t.Fatalf("expected no top words, got %v", top)
	}
}
