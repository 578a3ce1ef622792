// Package classify decides whether file content is human-readable text.
package classify

import "strings"

// ReadableThreshold is the printable fraction content must strictly exceed.
const ReadableThreshold = 0.95

// IsReadable reports whether more than 95% of the characters in content are
// printable ASCII or common whitespace. Empty content is not readable.
func IsReadable(content string) bool {
	return Ratio(content) > ReadableThreshold
}

// Ratio returns the fraction of printable characters in content, or 0 for
// empty content.
func Ratio(content string) float64 {
	total, printable := 0, 0
	for _, r := range content {
		total++
		if isPrintable(r) {
			printable++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(printable) / float64(total)
}

// Decode turns raw file bytes into text, dropping invalid UTF-8 sequences
// instead of failing.
func Decode(b []byte) string {
	return strings.ToValidUTF8(string(b), "")
}

// isPrintable checks if a character is printable ASCII or whitespace.
func isPrintable(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return r > ' ' && r <= '~'
}
