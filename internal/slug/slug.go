// Package slug turns arbitrary text into lowercase ASCII URL fragments.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Make returns a lossy ASCII slug of text: accents are stripped, letters are
// lowercased and every run of other characters becomes a single dash.
//
//	Make("Hello World") == "hello-world"
//	Make("Příliš žluťoučký kůň") == "prilis-zlutoucky-kun"
func Make(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, text)
	if err != nil {
		stripped = text
	}

	var sb strings.Builder
	sb.Grow(len(stripped))
	dash := false
	for _, r := range strings.ToLower(stripped) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
			dash = false
			continue
		}
		if !dash && sb.Len() > 0 {
			sb.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(sb.String(), "-")
}
