package types

import "strings"

// CountWords returns the number of whitespace-separated tokens in s. It is
// the word-count definition used everywhere a length is derived: artifact
// word counts, length enforcement, and the pipeline result.
func CountWords(s string) int {
	return len(strings.Fields(s))
}
