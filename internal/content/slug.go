package content

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugSeparators  = regexp.MustCompile(`[\s_]+`)
	slugInvalid     = regexp.MustCompile(`[^a-z0-9-]+`)
	slugHyphenRuns  = regexp.MustCompile(`-{2,}`)
	slugAccentStrip = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Slugify turns a display name into a lowercase, hyphenated identifier made of
// [a-z0-9-]. Accents are folded before stripping, so "Café" becomes "cafe";
// scripts without a Latin decomposition produce an empty slug.
func Slugify(name string) string {
	result, _, err := transform.String(slugAccentStrip, name)
	if err != nil {
		result = name
	}

	result = strings.ToLower(result)
	result = slugSeparators.ReplaceAllString(result, "-")
	result = slugInvalid.ReplaceAllString(result, "")
	result = slugHyphenRuns.ReplaceAllString(result, "-")

	return strings.Trim(result, "-")
}
