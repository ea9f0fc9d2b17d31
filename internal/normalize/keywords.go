package normalize

import (
	"regexp"
	"strings"
)

const (
	// minTokenLength filters out short tokens that carry no search signal.
	minTokenLength = 4

	defaultMaxKeywords = 8

	// DefaultFallbackKeyword is returned when extraction yields nothing.
	// Callers depend on at least one search term, so the keyword set is
	// never empty.
	DefaultFallbackKeyword = "support"
)

// defaultStopWords are tokens that appear in virtually every support ticket
// and would only dilute search queries.
var defaultStopWords = []string{
	"error", "issue", "problem", "ticket", "please", "unable", "failed",
	"failure", "help", "hello", "thanks", "thank", "when", "after",
	"with", "this", "that", "have", "from", "been", "were", "there",
	"redacted",
}

var tokenPattern = regexp.MustCompile(`[a-zA-Z0-9_]+`)

// KeywordExtractor turns cleaned text into a bounded, ordered keyword set:
// lowercased tokens of length >= 4, stop words removed, de-duplicated
// case-insensitively with insertion order preserved, capped at maxWords.
type KeywordExtractor struct {
	maxWords  int
	stopWords map[string]struct{}
	fallback  string
}

// NewKeywordExtractor builds an extractor. Zero or negative maxWords, a nil
// stopWords slice and an empty fallback select the package defaults.
func NewKeywordExtractor(maxWords int, stopWords []string, fallback string) *KeywordExtractor {
	if maxWords <= 0 {
		maxWords = defaultMaxKeywords
	}
	if stopWords == nil {
		stopWords = defaultStopWords
	}
	if fallback == "" {
		fallback = DefaultFallbackKeyword
	}

	stop := make(map[string]struct{}, len(stopWords))
	for _, w := range stopWords {
		stop[strings.ToLower(w)] = struct{}{}
	}

	return &KeywordExtractor{maxWords: maxWords, stopWords: stop, fallback: fallback}
}

// Extract returns the keyword set for text. Never returns an empty slice:
// when nothing survives filtering, the single fallback keyword is returned.
func (e *KeywordExtractor) Extract(text string) []string {
	seen := make(map[string]struct{})
	var keywords []string

	for _, token := range tokenPattern.FindAllString(strings.ToLower(text), -1) {
		if len(token) < minTokenLength {
			continue
		}
		if _, stop := e.stopWords[token]; stop {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		keywords = append(keywords, token)
		if len(keywords) == e.maxWords {
			break
		}
	}

	if len(keywords) == 0 {
		return []string{e.fallback}
	}
	return keywords
}

// ExtractKeywords is a convenience wrapper over a default-configured
// extractor, for callers that have no tuning to apply.
func ExtractKeywords(text string, maxWords int) []string {
	return NewKeywordExtractor(maxWords, nil, "").Extract(text)
}
