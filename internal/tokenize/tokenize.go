// Package tokenize turns raw message text into normalized word tokens.
package tokenize

import (
	"regexp"
	"sort"
	"strings"
)

var singleLetter = regexp.MustCompile(`\b[a-z]\b`)

// Tokenizer splits text into lowercase ASCII-letter tokens, dropping
// single letters and configured stop words.
type Tokenizer struct {
	stopWords *regexp.Regexp
}

// New compiles a Tokenizer for the given stop words. Stop words are
// matched as whole lowercase words.
func New(stopWords map[string]struct{}) *Tokenizer {
	return &Tokenizer{stopWords: stopWordPattern(stopWords)}
}

// Tokenize is a convenience wrapper around New(stopWords).Tokens(text).
func Tokenize(text string, stopWords map[string]struct{}) []string {
	return New(stopWords).Tokens(text)
}

// Tokens returns the tokens of text in order, duplicates kept.
// Input without letters yields an empty slice.
func (t *Tokenizer) Tokens(text string) []string {
	s := strings.ToLower(lettersOnly(text))
	s = singleLetter.ReplaceAllString(s, " ")
	if t.stopWords != nil {
		s = t.stopWords.ReplaceAllString(s, " ")
	}
	return strings.Fields(s)
}

func lettersOnly(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '\n', r == '\t', r == ' ':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	return b.String()
}

func stopWordPattern(stopWords map[string]struct{}) *regexp.Regexp {
	if len(stopWords) == 0 {
		return nil
	}
	words := make([]string, 0, len(stopWords))
	for w := range stopWords {
		if w == "" {
			continue
		}
		words = append(words, regexp.QuoteMeta(strings.ToLower(w)))
	}
	if len(words) == 0 {
		return nil
	}
	sort.Strings(words)
	return regexp.MustCompile(`\b(?:` + strings.Join(words, "|") + `)\b`)
}
