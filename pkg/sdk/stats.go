package sdk

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Guidance given to the writer. Nothing enforces these; PostStats only
// reports how a draft compares.
const (
	RecommendedPostLength = 1300
	MinHashtags           = 3
	MaxHashtags           = 5
)

// Stats describes a draft against the writer guidance.
type Stats struct {
	Characters      int  `json:"characters"`
	Hashtags        int  `json:"hashtags"`
	WithinLength    bool `json:"within_length"`
	HashtagsInRange bool `json:"hashtags_in_range"`
}

// PostStats measures a draft. Characters are counted as runes.
func PostStats(text string) Stats {
	chars := utf8.RuneCountInString(text)
	tags := countHashtags(text)
	return Stats{
		Characters:      chars,
		Hashtags:        tags,
		WithinLength:    chars <= RecommendedPostLength,
		HashtagsInRange: tags >= MinHashtags && tags <= MaxHashtags,
	}
}

// countHashtags counts whitespace-separated tokens of the form #word.
func countHashtags(text string) int {
	count := 0
	for _, field := range strings.Fields(text) {
		if !strings.HasPrefix(field, "#") {
			continue
		}
		rest := strings.TrimLeft(field, "#")
		r, _ := utf8.DecodeRuneInString(rest)
		if r != utf8.RuneError && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			count++
		}
	}
	return count
}
