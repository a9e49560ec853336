package uploads

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// asciiFold decomposes accented letters and drops everything outside ASCII.
var asciiFold = transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool {
	return r > unicode.MaxASCII
})))

// SecureFilename reduces name to a safe single path component: ASCII letters,
// digits, '_', '.', and '-', whitespace and path separators collapsed to '_',
// leading and trailing dots and underscores stripped. It may return "".
func SecureFilename(name string) string {
	folded, _, err := transform.String(asciiFold, name)
	if err != nil {
		folded = name
	}
	folded = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' {
			return ' '
		}
		return r
	}, folded)
	folded = strings.Join(strings.Fields(folded), "_")
	folded = unsafeFilenameChars.ReplaceAllString(folded, "")
	return strings.Trim(folded, "._")
}
