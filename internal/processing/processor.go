package processing

import (
	"crypto/sha1"
	"encoding/hex"
	"sort"
	"strings"
	"unicode"

	"github.com/DeafMist/hespress-digest/internal/models"
	"github.com/DeafMist/hespress-digest/internal/nlp"
)

// KeywordSeparator joins an article's keywords into one field.
const KeywordSeparator = ", "

// Cleaner strips stop words, punctuation and stray symbols from short texts
// such as titles and key points.
type Cleaner struct {
	lang nlp.Analyzer
}

// NewCleaner creates a Cleaner over lang.
func NewCleaner(lang nlp.Analyzer) *Cleaner {
	return &Cleaner{lang: lang}
}

// Clean keeps the content tokens of text, replaces every rune inside them
// that is not a letter or number with a space, drops
// fragments that turn out to be stop words, and joins the rest with single
// spaces. Clean(Clean(s)) == Clean(s).
func (c *Cleaner) Clean(text string) string {
	var words []string
	for _, tok := range c.lang.Content(text) {
		for _, piece := range strings.Fields(strings.Map(keepWordRune, tok)) {
			if c.lang.IsStop(piece) {
				continue
			}
			words = append(words, piece)
		}
	}
	return strings.Join(words, " ")
}

func keepWordRune(r rune) rune {
	if unicode.IsLetter(r) || unicode.IsNumber(r) {
		return r
	}
	return ' '
}

// JoinKeywords joins keywords as given. Padding and empty entries are kept;
// readers split on commas and trim.
func JoinKeywords(keywords []string) string {
	return strings.Join(keywords, KeywordSeparator)
}

// ExtractKeywords returns the most frequent content words of text, at most
// limit of them, ties broken alphabetically.
func ExtractKeywords(lang nlp.Analyzer, text string, limit, minLen int) []string {
	freq := make(map[string]int)
	for _, tok := range lang.Content(text) {
		tok = strings.TrimFunc(tok, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		if tok == "" || len([]rune(tok)) < minLen || lang.IsStop(tok) {
			continue
		}
		freq[tok]++
	}

	if len(freq) == 0 {
		return nil
	}

	type kv struct {
		word  string
		count int
	}

	pairs := make([]kv, 0, len(freq))
	for word, count := range freq {
		pairs = append(pairs, kv{word: word, count: count})
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].count == pairs[j].count {
			return pairs[i].word < pairs[j].word
		}
		return pairs[i].count > pairs[j].count
	})

	max := limit
	if max <= 0 || max > len(pairs) {
		max = len(pairs)
	}

	keywords := make([]string, 0, max)
	for i := 0; i < max; i++ {
		keywords = append(keywords, pairs[i].word)
	}

	return keywords
}

// BuildDocumentID hashes every field of the raw article, so two articles share an ID exactly when they are duplicates.
func BuildDocumentID(a models.Article) string {
	h := sha1.New()
	for _, field := range []string{a.Title, a.Category, a.Content, JoinKeywords(a.Keywords), a.Source, a.Date} {
		h.Write([]byte(field))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
