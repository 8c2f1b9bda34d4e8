package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)
	whitespaceRun       = regexp.MustCompile(`\s+`)
	asciiFold           = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
)

// SanitizeFilename reduces name to a flat, ASCII-only filename that cannot escape its
// directory. It returns "" when nothing usable is left.
func SanitizeFilename(name string) string {
	folded, _, err := transform.String(asciiFold, name)
	if err != nil {
		folded = name
	}
	folded = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, folded)

	folded = strings.NewReplacer("/", " ", "\\", " ").Replace(folded)
	folded = whitespaceRun.ReplaceAllString(strings.TrimSpace(folded), "_")
	folded = unsafeFilenameChars.ReplaceAllString(folded, "")
	return strings.Trim(folded, "._")
}

// DisplayName strips the generated id prefix from a stored attachment name.
func DisplayName(storedName string) string {
	if i := strings.Index(storedName, "_"); i >= 0 {
		return storedName[i+1:]
	}
	return storedName
}
