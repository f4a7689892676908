package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNormalizer(t *testing.T, locale string) *Normalizer {
	t.Helper()
	n, err := New("Europe/Paris", locale, "https://www.google.com/appsstatus/dashboard/")
	require.NoError(t, err)
	return n
}

func TestRepairRelativeLinks(t *testing.T) {
	n := newTestNormalizer(t, "fr")

	// Relative query-string link gets the entry's canonical link prefixed
	out := n.RepairRelativeLinks(`<a href="?hl=en">x</a>`, "https://status.example/incident/42")
	assert.Equal(t, `<a href="https://status.example/incident/42?hl=en">x</a>`, out)

	// Already-absolute link is untouched
	out = n.RepairRelativeLinks(`<a href="https://other.example/y">z</a>`, "https://status.example/incident/42")
	assert.Equal(t, `<a href="https://other.example/y">z</a>`, out)

	// Empty base falls back to the dashboard URL
	out = n.RepairRelativeLinks(`<a href="?p=1">x</a>`, "")
	assert.Equal(t, `<a href="https://www.google.com/appsstatus/dashboard/?p=1">x</a>`, out)

	assert.Equal(t, "", n.RepairRelativeLinks("", "https://status.example"))
}

func TestLocalizeTimestamps(t *testing.T) {
	n := newTestNormalizer(t, "fr")

	// December in Paris is UTC+1
	out := n.LocalizeTimestamps("<strong>2025-12-14 09:30</strong>")
	assert.Equal(t, "<strong>14 déc., 10:30</strong>", out)

	// July in Paris is UTC+2
	out = n.LocalizeTimestamps("<strong>2025-07-01 23:30</strong>")
	assert.Equal(t, "<strong>2 juil., 01:30</strong>", out)

	// Malformed fragment is preserved byte for byte
	out = n.LocalizeTimestamps("<strong>not-a-date</strong>")
	assert.Equal(t, "<strong>not-a-date</strong>", out)

	// Shape matches but the date itself is invalid
	out = n.LocalizeTimestamps("<strong>2025-13-99 09:30</strong>")
	assert.Equal(t, "<strong>2025-13-99 09:30</strong>", out)

	// One malformed timestamp does not affect its neighbors
	out = n.LocalizeTimestamps("<p>2025-13-99 09:30 and 2025-12-14 09:30</p>")
	assert.Equal(t, "<p>2025-13-99 09:30 and 14 déc., 10:30</p>", out)

	assert.Equal(t, "", n.LocalizeTimestamps(""))
}

func TestLocalizeTimestampsEnglishLocale(t *testing.T) {
	n := newTestNormalizer(t, "en-US")

	out := n.LocalizeTimestamps("<strong>2025-12-14 09:30</strong>")
	assert.Equal(t, "<strong>14 Dec, 10:30</strong>", out)
}

func TestStripUTCBoilerplate(t *testing.T) {
	n := newTestNormalizer(t, "fr")

	out := n.StripUTCBoilerplate("<strong>14 déc., 10:30</strong> <i>(UTC timezone)</i>")
	assert.Equal(t, "<strong>14 déc., 10:30</strong>", out)

	// Case-insensitive and whitespace-tolerant
	out = n.StripUTCBoilerplate("x <I>( utc   TIMEZONE )</I> y")
	assert.Equal(t, "x y", out)

	out = n.StripUTCBoilerplate("x <em>(UTC timezone)</em>")
	assert.Equal(t, "x", out)

	assert.Equal(t, "", n.StripUTCBoilerplate(""))
}

func TestRunComposesAllPasses(t *testing.T) {
	n := newTestNormalizer(t, "fr")

	in := `<p><a href="?hl=fr">Details</a> <strong>2025-12-14 09:30</strong> <i>(UTC timezone)</i></p>`
	out := n.Run(in, "https://status.example/incident/42")
	assert.Equal(t, `<p><a href="https://status.example/incident/42?hl=fr">Details</a> <strong>14 déc., 10:30</strong></p>`, out)

	assert.Equal(t, "", n.Run("", "https://status.example"))
}

func TestStripTitleSuffix(t *testing.T) {
	assert.Equal(t, "Gmail outage", StripTitleSuffix("Gmail outage (UTC)"))
	assert.Equal(t, "Gmail outage", StripTitleSuffix("Gmail outage ( utc )"))
	assert.Equal(t, "Gmail outage", StripTitleSuffix("Gmail outage"))
	assert.Equal(t, "", StripTitleSuffix(""))
}
