package speech

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

var phonetic = [26]string{
	"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf", "hotel",
	"india", "juliett", "kilo", "lima", "mike", "november", "oscar", "papa",
	"quebec", "romeo", "sierra", "tango", "uniform", "victor", "whiskey",
	"xray", "yankee", "zulu",
}

// Phonetic returns the NATO phonetic word for a single ASCII letter, or
// CharacterName(ch) for anything else.
func Phonetic(ch string) string {
	r, size := utf8.DecodeRuneInString(ch)
	if size == 0 || size != len(ch) {
		return CharacterName(ch)
	}
	lower := unicode.ToLower(r)
	if lower < 'a' || lower > 'z' {
		return CharacterName(ch)
	}
	return phonetic[lower-'a']
}

// Characters splits text into its characters.
func Characters(text string) []string {
	chars := make([]string, 0, utf8.RuneCountInString(text))
	for _, r := range text {
		chars = append(chars, string(r))
	}
	return chars
}

// PhoneticString spells text with Phonetic, one word per character.
func PhoneticString(text string) string {
	words := make([]string, 0, len(text))
	for _, ch := range Characters(text) {
		words = append(words, Phonetic(ch))
	}
	return strings.Join(words, " ")
}
