package wordlist

import "testing"

func TestStopWordSetKeepsASCIIWords(t *testing.T) {
	set := StopWordSet([]string{"The", " and "}, []string{"résumé", "don’t", "co-op", "", "and"})
	if len(set) != 2 {
		t.Fatalf("expected 2 stop words, got %v", set)
	}
	for _, word := range []string{"the", "and"} {
		if _, ok := set[word]; !ok {
			t.Fatalf("expected %q in set", word)
		}
	}
}
