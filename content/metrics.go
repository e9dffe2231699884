// Package content derives the stored artifacts of a post from its block
// tree: HTML, plain text, word count, reading time and excerpt.
package content

import (
	"regexp"
	"strings"
)

// WordsPerMinute is the reading speed behind ReadingTime.
const WordsPerMinute = 200

// ExcerptLength is the number of characters kept by Excerpt before the
// word-boundary trim.
const ExcerptLength = 160

// WordCount returns the number of whitespace-delimited tokens in text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// ReadingTime returns the estimated reading time in minutes. It is never
// below 1, even for empty text.
func ReadingTime(text string) int {
	minutes := (WordCount(text) + WordsPerMinute - 1) / WordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}

var reTrailingWord = regexp.MustCompile(`\s+\S*$`)

// Excerpt cuts text to ExcerptLength characters, drops the trailing
// (possibly partial) word and appends "...". The trailing word is dropped
// even when text was shorter than the limit.
func Excerpt(text string) string {
	runes := []rune(text)
	if len(runes) > ExcerptLength {
		runes = runes[:ExcerptLength]
	}
	return reTrailingWord.ReplaceAllString(string(runes), "") + "..."
}
