// Package normalize rewrites the HTML summary fragments embedded in status
// feed entries: relative links are made absolute, UTC timestamps are
// rendered in the display timezone, and the now-redundant UTC caveat is
// stripped. The publisher's markup is semi-structured at best, so each
// rewrite is a targeted text substitution rather than an HTML parse.
package normalize

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const utcTimestampLayout = "2006-01-02 15:04"

var (
	// href="?hl=en" — a link relative to the incident's own detail page.
	// Absolute links start with a scheme, never with a bare query string,
	// so this cannot double-prefix.
	relativeHrefPattern = regexp.MustCompile(`href="\?`)

	// Timestamps the dashboard always emits as UTC wall-clock.
	utcTimestampPattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2} \d{2}:\d{2}`)

	// Decorative label following each timestamp. Localized timestamps no
	// longer carry the caveat, so it is removed wholesale.
	utcBoilerplatePattern = regexp.MustCompile(`(?is)\s*<(?:i|em)>\s*\(\s*utc\s+timezone\s*\)\s*</(?:i|em)>`)

	// Trailing timezone marker some incident titles carry.
	titleSuffixPattern = regexp.MustCompile(`(?i)\s*\(\s*utc\s*\)\s*$`)
)

// Normalizer applies the summary rewrite pipeline for one display locale and
// timezone. It is stateless after construction and safe for concurrent use.
type Normalizer struct {
	location     *time.Location
	months       monthTable
	fallbackBase string
}

// New creates a Normalizer rendering timestamps in the given IANA timezone
// and BCP-47 locale. fallbackBase is used for link repair when an entry has
// no canonical link of its own.
func New(timezone, locale, fallbackBase string) (*Normalizer, error) {
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid display timezone %q: %w", timezone, err)
	}

	return &Normalizer{
		location:     location,
		months:       monthsForLocale(locale),
		fallbackBase: fallbackBase,
	}, nil
}

// Run applies the full pipeline to one summary fragment. The pass order is
// fixed: link repair, then timestamp localization, then boilerplate
// stripping. An empty summary yields an empty string.
func (n *Normalizer) Run(summary, base string) string {
	if summary == "" {
		return ""
	}

	summary = n.RepairRelativeLinks(summary, base)
	summary = n.LocalizeTimestamps(summary)
	summary = n.StripUTCBoilerplate(summary)
	return summary
}

// RepairRelativeLinks prefixes every href consisting of a bare query string
// with the entry's canonical link, so the link resolves outside the
// dashboard origin. Already-absolute links are left untouched.
func (n *Normalizer) RepairRelativeLinks(summary, base string) string {
	if summary == "" {
		return ""
	}
	if base == "" {
		base = n.fallbackBase
	}

	return relativeHrefPattern.ReplaceAllStringFunc(summary, func(string) string {
		return `href="` + base + `?`
	})
}

// LocalizeTimestamps rewrites every embedded "YYYY-MM-DD HH:MM" timestamp,
// interpreted as UTC, into the display timezone and locale. A fragment that
// matches the shape but fails to parse as a date is preserved byte for byte;
// one malformed timestamp must not corrupt the rest of the summary.
func (n *Normalizer) LocalizeTimestamps(summary string) string {
	if summary == "" {
		return ""
	}

	return utcTimestampPattern.ReplaceAllStringFunc(summary, func(match string) string {
		t, err := time.ParseInLocation(utcTimestampLayout, match, time.UTC)
		if err != nil {
			return match
		}

		local := t.In(n.location)
		return fmt.Sprintf("%d %s, %s", local.Day(), n.months[local.Month()-1], local.Format("15:04"))
	})
}

// StripUTCBoilerplate removes the "(UTC timezone)" label that follows each
// timestamp in the published markup. Matching is case-insensitive and
// whitespace-tolerant.
func (n *Normalizer) StripUTCBoilerplate(summary string) string {
	if summary == "" {
		return ""
	}
	return utcBoilerplatePattern.ReplaceAllString(summary, "")
}

// StripTitleSuffix removes a trailing "(UTC)" marker from an incident title.
func StripTitleSuffix(title string) string {
	return strings.TrimSpace(titleSuffixPattern.ReplaceAllString(title, ""))
}
