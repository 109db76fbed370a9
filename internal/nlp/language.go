// Package nlp segments text into tokens and sentences and classifies
// tokens as stop words, punctuation or whitespace.
package nlp

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Token is one unit of segmented text. Start and End are byte offsets into
// the analyzed string.
type Token struct {
	Text    string
	Start   int
	End     int
	IsStop  bool
	IsPunct bool
	IsSpace bool
}

// Analyzer is what the summarizer and cleaner need from a language.
type Analyzer interface {
	Tokenize(text string) []Token
	Content(text string) []string
	Sentences(text string) []string
	IsStop(word string) bool
}

// Language is an immutable tokenizer, stop word table and sentence
// splitter for one language.
type Language struct {
	name        string
	stop        map[string]struct{}
	terminators map[string]struct{}
}

var _ Analyzer = (*Language)(nil)

// New builds a Language from res.
func New(res Resource) *Language {
	l := &Language{
		name:        res.Name,
		stop:        make(map[string]struct{}, len(res.StopWords)),
		terminators: make(map[string]struct{}, len(res.SentenceTerminators)),
	}
	for _, w := range res.StopWords {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			l.stop[w] = struct{}{}
		}
	}
	for _, t := range res.SentenceTerminators {
		if t != "" {
			l.terminators[t] = struct{}{}
		}
	}
	return l
}

// Name returns the resource name.
func (l *Language) Name() string {
	return l.name
}

// IsStop reports whether word is a stop word. Matching ignores case.
func (l *Language) IsStop(word string) bool {
	_, ok := l.stop[strings.ToLower(word)]
	return ok
}

// Tokenize splits text on whitespace, then splits leading and trailing
// punctuation or symbols off each chunk as separate tokens. A single plain
// space between chunks is not a token; any other whitespace run is.
func (l *Language) Tokenize(text string) []Token {
	var tokens []Token
	i := 0
	for i < len(text) {
		r, _ := utf8.DecodeRuneInString(text[i:])
		j := scan(text, i, unicode.IsSpace(r))
		if unicode.IsSpace(r) {
			if text[i:j] != " " {
				tokens = append(tokens, Token{Text: text[i:j], Start: i, End: j, IsSpace: true})
			}
		} else {
			tokens = l.appendChunk(tokens, text, i, j)
		}
		i = j
	}
	return tokens
}

// scan returns the end of the run starting at i whose runes are whitespace
// when space is true, and non-whitespace otherwise.
func scan(text string, i int, space bool) int {
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if unicode.IsSpace(r) != space {
			break
		}
		i += size
	}
	return i
}

func (l *Language) appendChunk(tokens []Token, text string, start, end int) []Token {
	var suffix []Token

	for start < end {
		n := affixLen(text[start:end], false)
		if n == 0 {
			break
		}
		tokens = append(tokens, l.token(text, start, start+n))
		start += n
	}
	for start < end {
		n := affixLen(text[start:end], true)
		if n == 0 {
			break
		}
		suffix = append(suffix, l.token(text, end-n, end))
		end -= n
	}
	if start < end {
		tokens = append(tokens, l.token(text, start, end))
	}
	for k := len(suffix) - 1; k >= 0; k-- {
		tokens = append(tokens, suffix[k])
	}
	return tokens
}

// affixLen returns the byte length of the punctuation affix at the start
// (or end, when last is set) of s, or 0 when s does not begin (end) with
// one. Runs of dots form a single affix.
func affixLen(s string, last bool) int {
	var r rune
	var size int
	if last {
		r, size = utf8.DecodeLastRuneInString(s)
	} else {
		r, size = utf8.DecodeRuneInString(s)
	}
	if !isAffix(r) {
		return 0
	}
	if r != '.' {
		return size
	}
	if last {
		return len(s) - len(strings.TrimRight(s, "."))
	}
	return len(s) - len(strings.TrimLeft(s, "."))
}

func isAffix(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

func (l *Language) token(text string, start, end int) Token {
	s := text[start:end]
	return Token{
		Text:    s,
		Start:   start,
		End:     end,
		IsStop:  l.IsStop(s),
		IsPunct: isPunct(s),
	}
}

func isPunct(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsPunct(r) {
			return false
		}
	}
	return true
}

// Content returns the tokens of text that are not stop words, punctuation
// or whitespace (line breaks included).
func (l *Language) Content(text string) []string {
	var out []string
	for _, tok := range l.Tokenize(text) {
		if tok.IsStop || tok.IsPunct || tok.IsSpace {
			continue
		}
		out = append(out, tok.Text)
	}
	return out
}

// Sentences splits text after sentence terminators. A new sentence starts
// at the first token after a terminator that is neither punctuation nor a
// terminator itself, so "?!" and closing quotes stay with their sentence.
// Whitespace-only spans are dropped.
func (l *Language) Sentences(text string) []string {
	tokens := l.Tokenize(text)
	if len(tokens) == 0 {
		return nil
	}

	var sentences []string
	first := 0
	seenTerminator := false
	for k, tok := range tokens {
		_, isTerminator := l.terminators[tok.Text]
		switch {
		case seenTerminator && !tok.IsPunct && !isTerminator:
			sentences = appendSpan(sentences, text, tokens[first].Start, tokens[k-1].End)
			first = k
			seenTerminator = false
		case isTerminator:
			seenTerminator = true
		}
	}
	return appendSpan(sentences, text, tokens[first].Start, tokens[len(tokens)-1].End)
}

func appendSpan(sentences []string, text string, start, end int) []string {
	span := text[start:end]
	if strings.TrimSpace(span) == "" {
		return sentences
	}
	return append(sentences, span)
}
