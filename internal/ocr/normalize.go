package ocr

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// asciiFold decomposes (NFKD) and drops combining marks, so accented letters
// fold to their base letter before the ASCII filter below.
var asciiFold = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))

// Normalize converts raw acquired text into the canonical form the pattern
// rules run against: ASCII only, one trimmed line per text line, no blank
// lines. Pure and idempotent.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	if folded, _, err := transform.String(asciiFold, s); err == nil {
		s = folded
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\r' {
			b.WriteByte('\n')
			continue
		}
		if r < 128 {
			b.WriteRune(r)
		}
	}
	lines := strings.Split(b.String(), "\n")
	clean := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			clean = append(clean, line)
		}
	}
	return strings.Join(clean, "\n")
}
