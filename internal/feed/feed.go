package feed

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mmcdole/gofeed"
)

// Entry is one incident record parsed from the status feed. Entries are
// rebuilt from scratch on every pass; only the ID outlives the pass, via the
// seen-set.
type Entry struct {
	ID            string
	Title         string
	CanonicalLink string
	SummaryHTML   string
	UpdatedAt     string

	// parsed form of UpdatedAt, kept for ordering only
	updatedTime *time.Time
}

// Source fetches the current state of the incident feed as an ordered list
// of entries, oldest first.
type Source interface {
	FetchEntries(ctx context.Context) ([]Entry, error)
}

// extractEntries converts a parsed feed into Entry values, oldest first.
// The dashboard publishes newest-first, and notification order must follow
// chronology, so the native order is inverted. Entries carrying a parseable
// update time are additionally sorted by it.
func extractEntries(feed *gofeed.Feed, dashboardURL string) ([]Entry, error) {
	entries := make([]Entry, 0, len(feed.Items))

	for i := len(feed.Items) - 1; i >= 0; i-- {
		item := feed.Items[i]

		entry, err := extractEntry(item, dashboardURL)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].updatedTime, entries[j].updatedTime
		if a == nil || b == nil {
			return false
		}
		return a.Before(*b)
	})

	return entries, nil
}

func extractEntry(item *gofeed.Item, dashboardURL string) (Entry, error) {
	// An incident without these children cannot be deduplicated or
	// rendered, so the whole pass fails rather than skipping it.
	if item.GUID == "" {
		return Entry{}, fmt.Errorf("missing entry id")
	}
	if item.Title == "" {
		return Entry{}, fmt.Errorf("missing entry title (id %s)", item.GUID)
	}
	if item.Description == "" {
		return Entry{}, fmt.Errorf("missing entry summary (id %s)", item.GUID)
	}
	if item.Updated == "" {
		return Entry{}, fmt.Errorf("missing entry updated timestamp (id %s)", item.GUID)
	}

	// gofeed resolves the Atom link with rel="alternate" (an absent rel
	// counts as alternate) into item.Link. When the publisher tags every
	// link otherwise, fall back to the dashboard landing page.
	link := item.Link
	if link == "" {
		link = dashboardURL
	}

	entry := Entry{
		ID:            item.GUID,
		Title:         item.Title,
		CanonicalLink: link,
		SummaryHTML:   item.Description,
		UpdatedAt:     item.Updated,
		updatedTime:   item.UpdatedParsed,
	}
	return entry, nil
}
