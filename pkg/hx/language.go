package hx

import (
	"strings"

	"golang.org/x/text/language"
)

// ParseLanguage parses a BCP 47 tag; empty input yields language.Und
func ParseLanguage(s string) (language.Tag, error) {
	if strings.TrimSpace(s) == "" {
		return language.Und, nil
	}
	return language.Parse(s)
}

// LanguageLabel renders the two-letter upper-case label used in entry trees,
// "--" when the variant carries no language
func LanguageLabel(t language.Tag) string {
	if t == language.Und {
		return "--"
	}
	base, conf := t.Base()
	if conf == language.No {
		return "--"
	}
	return strings.ToUpper(base.String())
}

// SameLanguage compares two tags by base language
func SameLanguage(a, b language.Tag) bool {
	if a == language.Und || b == language.Und {
		return false
	}
	ba, _ := a.Base()
	bb, _ := b.Base()
	return ba == bb
}
