// Package summary picks the single most representative sentence of a text
// by normalized word frequency.
package summary

import (
	"errors"
	"strings"

	"github.com/DeafMist/hespress-digest/internal/nlp"
)

// ErrEmptyInput is returned by Score when text has no content tokens or no
// sentence contains any of them.
var ErrEmptyInput = errors.New("no scorable content")

// Summarizer extracts key points with a language analyzer.
type Summarizer struct {
	lang nlp.Analyzer
}

// New creates a Summarizer over lang.
func New(lang nlp.Analyzer) *Summarizer {
	return &Summarizer{lang: lang}
}

// Frequencies counts the content tokens of text and divides each count by
// the largest one, so every value lies in (0, 1].
func (s *Summarizer) Frequencies(text string) (map[string]float64, error) {
	counts := make(map[string]int)
	maxCount := 0
	for _, tok := range s.lang.Content(text) {
		counts[tok]++
		if counts[tok] > maxCount {
			maxCount = counts[tok]
		}
	}
	if maxCount == 0 {
		return nil, ErrEmptyInput
	}

	freq := make(map[string]float64, len(counts))
	for word, n := range counts {
		freq[word] = float64(n) / float64(maxCount)
	}
	return freq, nil
}

// Score returns the highest scoring sentence of text, trimmed.
//
// A sentence scores the sum of the normalized frequencies of its
// whitespace-separated words found in the frequency table; words carrying
// attached punctuation or stop words add nothing but do not disqualify the
// sentence. Repeated identical sentences accumulate into one entry. Ties go
// to the sentence seen first.
func (s *Summarizer) Score(text string) (string, error) {
	freq, err := s.Frequencies(text)
	if err != nil {
		return "", err
	}

	scores := make(map[string]float64)
	var order []string
	for _, sent := range s.lang.Sentences(text) {
		for _, word := range strings.Fields(sent) {
			f, ok := freq[word]
			if !ok {
				continue
			}
			if _, scored := scores[sent]; !scored {
				order = append(order, sent)
			}
			scores[sent] += f
		}
	}
	if len(order) == 0 {
		return "", ErrEmptyInput
	}

	best := order[0]
	for _, sent := range order[1:] {
		if scores[sent] > scores[best] {
			best = sent
		}
	}
	return strings.TrimSpace(best), nil
}

// KeyPoint is Score with ErrEmptyInput mapped to an empty summary.
func (s *Summarizer) KeyPoint(text string) string {
	point, err := s.Score(text)
	if err != nil {
		return ""
	}
	return point
}
