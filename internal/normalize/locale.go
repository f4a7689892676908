package normalize

import "golang.org/x/text/language"

type monthTable [12]string

// Month abbreviations per supported display locale. The dashboard audience
// of the original deployment is French, so French sits first in matcher
// priority and serves as the fallback for unrecognized tags.
var (
	supportedLocales = []language.Tag{
		language.French,
		language.English,
	}

	monthTables = []monthTable{
		{"janv.", "févr.", "mars", "avr.", "mai", "juin", "juil.", "août", "sept.", "oct.", "nov.", "déc."},
		{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
	}

	localeMatcher = language.NewMatcher(supportedLocales)
)

// monthsForLocale resolves a BCP-47 locale string ("fr", "fr-FR", "en-US")
// to its month abbreviation table.
func monthsForLocale(locale string) monthTable {
	_, index := language.MatchStrings(localeMatcher, locale)
	return monthTables[index]
}
