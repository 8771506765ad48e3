// Package counter holds the running word-frequency table.
package counter

import (
	"sort"

	"github.com/verte-zerg/tcounter/internal/model"
)

// Table maps tokens to occurrence counts. It is not safe for concurrent
// use; a single session loop owns it.
type Table struct {
	counts  map[string]int
	version uint64
}

// New returns an empty table.
func New() *Table {
	return &Table{counts: map[string]int{}}
}

// FromSnapshot returns a table seeded with a copy of snapshot.
func FromSnapshot(snapshot map[string]int) *Table {
	t := New()
	t.Replace(snapshot)
	return t
}

// Count returns the count for token, or 0 when absent. It never inserts.
func (t *Table) Count(token string) int {
	return t.counts[token]
}

// Increment adds one occurrence of token.
func (t *Table) Increment(token string) {
	t.counts[token]++
	t.version++
}

// Ingest increments every token in order.
func (t *Table) Ingest(tokens []string) {
	for _, tok := range tokens {
		t.Increment(tok)
	}
}

// Replace swaps the backing map for a copy of snapshot. Negative counts are dropped.
func (t *Table) Replace(snapshot map[string]int) {
	counts := make(map[string]int, len(snapshot))
	for word, n := range snapshot {
		if n < 0 {
			continue
		}
		counts[word] = n
	}
	t.counts = counts
	t.version++
}

// Snapshot returns a copy of the current counts.
func (t *Table) Snapshot() map[string]int {
	out := make(map[string]int, len(t.counts))
	for word, n := range t.counts {
		out[word] = n
	}
	return out
}

// Len returns the number of distinct tokens.
func (t *Table) Len() int {
	return len(t.counts)
}

// Total returns the sum of all counts.
func (t *Table) Total() int {
	total := 0
	for _, n := range t.counts {
		total += n
	}
	return total
}

// Version changes whenever the table is mutated.
func (t *Table) Version() uint64 {
	return t.version
}

// TopK returns up to k entries ordered by count descending. Equal counts
// are ordered by word ascending.
func (t *Table) TopK(k int) []model.WordCount {
	return TopK(t.counts, k)
}

// TopK ranks an arbitrary count mapping the same way Table.TopK does.
func TopK(counts map[string]int, k int) []model.WordCount {
	if k <= 0 || len(counts) == 0 {
		return nil
	}
	items := make([]model.WordCount, 0, len(counts))
	for word, n := range counts {
		items = append(items, model.WordCount{Word: word, Count: n})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count == items[j].Count {
			return items[i].Word < items[j].Word
		}
		return items[i].Count > items[j].Count
	})
	if k > len(items) {
		k = len(items)
	}
	return items[:k:k]
}
