// Package textproc prepares extracted document text for similarity scoring.
package textproc

import "strings"

// Normalize canonicalizes raw extracted (or OCR-recognized) text: lower-case,
// strip characters outside [a-z0-9] and whitespace, tokenize, drop English
// stop-words, and rejoin with single spaces. The function is pure and
// idempotent; empty or non-alphanumeric-only input yields "".
func Normalize(raw string) string {
	lower := strings.ToLower(raw)

	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '\t', r == '\n', r == '\r', r == '\v', r == '\f':
			b.WriteByte(' ')
		}
		// Everything else (punctuation, symbols, non-ASCII) is dropped so
		// tokens like "102°f" collapse to "102f" instead of splitting.
	}

	tokens := strings.Fields(b.String())
	kept := tokens[:0]
	for _, tok := range tokens {
		if _, stop := stopWords[tok]; stop {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}
