package readability

import (
	"strings"
	"unicode/utf8"
)

const vowels = "aeiouy"

// CountSyllables estimates the number of syllables in a single word.
//
// Words of three characters or fewer count as one syllable. Longer words are
// scored by counting groups of one or two consecutive vowels and then
// applying a silent-suffix correction. The result is never below 1 for a
// non-empty word. The empty string contributes 0.
func CountSyllables(word string) int {
	if word == "" {
		return 0
	}
	if utf8.RuneCountInString(word) <= 3 {
		return 1
	}

	word = strings.ToLower(word)

	syllables := countVowelGroups(word)
	if syllables == 0 {
		syllables = 1
	}

	if hasSilentSuffix(word) {
		syllables--
	}

	return max(1, syllables)
}

// countVowelGroups counts non-overlapping left-to-right matches of one or two
// vowels. A run of n vowels therefore yields ceil(n/2) groups.
func countVowelGroups(word string) int {
	groups := 0
	run := 0
	for i := 0; i < len(word); i++ {
		if isVowel(word[i]) {
			run++
			continue
		}
		groups += (run + 1) / 2
		run = 0
	}
	return groups + (run+1)/2
}

// hasSilentSuffix reports whether a single syllable should be dropped for the
// word's ending. The trailing-e rule fires when the letter before the final
// "e" is not a vowel, the reverse of the usual phonetic rule. Existing scores
// depend on it.
func hasSilentSuffix(word string) bool {
	switch {
	case strings.HasSuffix(word, "es") && !strings.HasSuffix(word, "sses"):
		return true
	case strings.HasSuffix(word, "ed") && !strings.HasSuffix(word, "lled"):
		return true
	case strings.HasSuffix(word, "e") && len(word) >= 2 && !isVowel(word[len(word)-2]):
		return true
	}
	return false
}

func isVowel(c byte) bool {
	return strings.IndexByte(vowels, c) >= 0
}
