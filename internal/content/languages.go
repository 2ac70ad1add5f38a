package content

import (
	"slices"
	"strings"
)

// BaseLanguage values are stored on owner rows and used as the fallback.
const BaseLanguage = "en"

// Languages is the ordered set of supported language codes. The base
// language is always first.
type Languages []string

func NewLanguages(codes ...string) Languages {
	languages := Languages{BaseLanguage}
	for _, code := range codes {
		code = normalizeLanguage(code)
		if code == "" || slices.Contains(languages, code) {
			continue
		}
		languages = append(languages, code)
	}
	return languages
}

func (l Languages) Supports(code string) bool {
	return slices.Contains(l, normalizeLanguage(code))
}

// Resolve maps a requested language onto a supported one, falling back to the
// base language.
func (l Languages) Resolve(code string) string {
	code = normalizeLanguage(code)
	if code == "" || !slices.Contains(l, code) {
		return BaseLanguage
	}
	return code
}

func normalizeLanguage(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}
