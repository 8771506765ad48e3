package tokenize

import (
	"reflect"
	"testing"
)

func set(words ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		out[w] = struct{}{}
	}
	return out
}

func TestTokenizeDropsSingleLettersAndStopWords(t *testing.T) {
	got := Tokenize("Hello, World! I am testing.", set("am"))
	want := []string{"hello", "world", "testing"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestTokenizeCases(t *testing.T) {
	tests := []struct {
		name string
		text string
		stop map[string]struct{}
		want []string
	}{
		{"empty", "", nil, []string{}},
		{"no letters", "1234 !!! ?", nil, []string{}},
		{"digits split words", "go1lang r2d2", nil, []string{"go", "lang"}},
		{"non ascii replaced", "café naïve", nil, []string{"caf", "na", "ve"}},
		{"whitespace kept", "one\ttwo\nthree", nil, []string{"one", "two", "three"}},
		{"duplicates kept", "go go GO", nil, []string{"go", "go", "go"}},
		{"adjacent single letters", "a b c dd", nil, []string{"dd"}},
		{"stop word boundary", "the theme other the", set("the"), []string{"theme", "other"}},
		{"repeated stop words", "the the the end", set("the"), []string{"end"}},
		{"multiple stop words", "to be or not to be", set("to", "be", "or"), []string{"not"}},
		{"apostrophe", "don't stop", set("don"), []string{"stop"}},
		{"stop word case", "And then", set("and"), []string{"then"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.text, tt.stop)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestTokenizerReusable(t *testing.T) {
	tk := New(set("of"))
	first := tk.Tokens("state of the art")
	second := tk.Tokens("state of the art")
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected repeatable output, got %v and %v", first, second)
	}
	if want := []string{"state", "the", "art"}; !reflect.DeepEqual(first, want) {
		t.Fatalf("expected %v, got %v", want, first)
	}
}

func TestTokensAreLowercaseLetters(t *testing.T) {
	for _, tok := range Tokenize("RT @user: Check THIS out!!! https://t.co/xyz #Go", nil) {
		if len(tok) < 2 {
			t.Fatalf("token %q shorter than 2", tok)
		}
		for i := 0; i < len(tok); i++ {
			if tok[i] < 'a' || tok[i] > 'z' {
				t.Fatalf("token %q has non-letter byte", tok)
			}
		}
	}
}
