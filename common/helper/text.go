package helper

import "strings"

// Shorten trims whitespace and clamps the string to the provided rune length.
func Shorten(text string, limit int) string {
	text = strings.TrimSpace(text)
	if limit <= 0 || len(text) <= limit {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "…"
}

// Snippet flattens a response body onto one line and clamps it for trace output.
func Snippet(body []byte) string {
	const maxLen = 256
	cleaned := strings.Join(strings.Fields(string(body)), " ")
	return Shorten(cleaned, maxLen)
}
