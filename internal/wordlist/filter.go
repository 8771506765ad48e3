package wordlist

import "strings"

// StopWordSet lowercases the given words and keeps only those made of
// ASCII letters, since no other word can ever match a token.
func StopWordSet(lists ...[]string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, list := range lists {
		for _, word := range list {
			word = strings.ToLower(strings.TrimSpace(word))
			if isASCIIWord(word) {
				set[word] = struct{}{}
			}
		}
	}
	return set
}

func isASCIIWord(word string) bool {
	if word == "" {
		return false
	}
	for i := 0; i < len(word); i++ {
		ch := word[i]
		if ch < 'a' || ch > 'z' {
			return false
		}
	}
	return true
}
