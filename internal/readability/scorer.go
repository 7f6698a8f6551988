package readability

import (
	"errors"
	"math"
	"strings"
)

// ErrInsufficientText is returned when a text has no sentences or no words,
// in which case the grade-level formula is undefined.
var ErrInsufficientText = errors.New("insufficient text for a readability score")

// Flesch-Kincaid grade level coefficients.
const (
	wordsPerSentenceWeight = 0.39
	syllablesPerWordWeight = 11.8
	gradeOffset            = 15.59
)

// Stats holds the counts behind a grade level.
type Stats struct {
	Sentences  int     `json:"sentences"`
	Words      int     `json:"words"`
	Syllables  int     `json:"syllables"`
	GradeLevel float64 `json:"grade_level"`
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithLegacyTokenization keeps the empty tokens produced when text starts or
// ends with a non-letter. Each one counts as a word of one syllable, which is
// how the browser form scored text. Scores from this mode run high for short
// punctuated input.
func WithLegacyTokenization() Option {
	return func(s *Scorer) {
		s.keepEmptyTokens = true
	}
}

// Scorer computes the Flesch-Kincaid grade level of a text.
// A Scorer has no mutable state and is safe for concurrent use.
type Scorer struct {
	keepEmptyTokens bool
}

// NewScorer creates a Scorer with the given options.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Analyze counts sentences, words and syllables in text and computes its
// grade level. It returns ErrInsufficientText when either count is zero.
func (s *Scorer) Analyze(text string) (Stats, error) {
	stats := Stats{
		Sentences: countSentences(text),
	}

	for _, word := range s.words(text) {
		stats.Words++
		if word == "" {
			stats.Syllables++
			continue
		}
		stats.Syllables += CountSyllables(word)
	}

	if stats.Sentences == 0 || stats.Words == 0 {
		return stats, ErrInsufficientText
	}

	stats.GradeLevel = GradeLevel(stats.Words, stats.Sentences, stats.Syllables)
	return stats, nil
}

// GradeLevel applies the Flesch-Kincaid grade level formula. Callers must pass
// non-zero word and sentence counts.
func GradeLevel(words, sentences, syllables int) float64 {
	w := float64(words)
	return wordsPerSentenceWeight*(w/float64(sentences)) +
		syllablesPerWordWeight*(float64(syllables)/w) -
		gradeOffset
}

// Score returns the grade level and band label for text.
func (s *Scorer) Score(text string) (float64, string, error) {
	stats, err := s.Analyze(text)
	if err != nil {
		return math.NaN(), Band(math.NaN()), err
	}
	return stats.GradeLevel, Band(stats.GradeLevel), nil
}

// countSentences splits on sentence-terminal punctuation and counts the
// segments that are not blank.
func countSentences(text string) int {
	segments := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	count := 0
	for _, segment := range segments {
		if strings.TrimSpace(segment) != "" {
			count++
		}
	}
	return count
}

// words splits text on every run of characters that are not ASCII letters.
func (s *Scorer) words(text string) []string {
	var tokens []string
	start := 0
	inGap := false
	for i := 0; i < len(text); i++ {
		if isASCIILetter(text[i]) {
			if inGap {
				start = i
				inGap = false
			}
			continue
		}
		if !inGap {
			tokens = append(tokens, text[start:i])
			inGap = true
		}
	}
	if !inGap {
		tokens = append(tokens, text[start:])
	} else {
		tokens = append(tokens, "")
	}

	if s.keepEmptyTokens {
		return tokens
	}

	words := tokens[:0]
	for _, token := range tokens {
		if token != "" {
			words = append(words, token)
		}
	}
	return words
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
