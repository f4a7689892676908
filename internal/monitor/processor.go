// Package monitor drives one feed processing pass: load the seen-set, pull
// the incident feed, notify every unseen entry oldest-first, then persist
// the updated seen-set.
package monitor

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/FabriceFx/Google-Workspace-Status-Monitor/internal/feed"
	"github.com/FabriceFx/Google-Workspace-Status-Monitor/internal/metrics"
	"github.com/FabriceFx/Google-Workspace-Status-Monitor/internal/normalize"
	"github.com/FabriceFx/Google-Workspace-Status-Monitor/internal/notify"
	"github.com/FabriceFx/Google-Workspace-Status-Monitor/internal/store"
)

// Processor orchestrates a single pass over the incident feed.
type Processor struct {
	source     feed.Source
	seenStore  *store.SeenSetStore
	normalizer *normalize.Normalizer
	notifier   *notify.Notifier
	metrics    *metrics.Metrics
}

// NewProcessor creates a feed processor.
func NewProcessor(source feed.Source, seenStore *store.SeenSetStore,
	normalizer *normalize.Normalizer, notifier *notify.Notifier, m *metrics.Metrics) *Processor {
	return &Processor{
		source:     source,
		seenStore:  seenStore,
		normalizer: normalizer,
		notifier:   notifier,
		metrics:    m,
	}
}

// Run executes one pass. A fetch, parse, or seen-set load failure aborts the
// pass before anything is persisted; the next scheduled pass retries from
// the last persisted state. A delivery failure for one entry is logged and
// surfaced in the returned error, but the entry is still recorded as seen
// (deliveries are not retried) and the pass completes its persistence step.
func (p *Processor) Run(ctx context.Context) error {
	seen, err := p.seenStore.Load()
	if err != nil {
		return fmt.Errorf("failed to load seen-set: %w", err)
	}

	entries, err := p.source.FetchEntries(ctx)
	if err != nil {
		p.metrics.FetchFailures.Inc()
		return fmt.Errorf("failed to fetch feed: %w", err)
	}
	p.metrics.EntriesFetched.Add(float64(len(entries)))

	newCount, failedCount := 0, 0
	for _, entry := range entries {
		if seen.Contains(entry.ID) {
			continue
		}

		// Repair links against this entry's own detail page; incidents
		// do not share one.
		summary := p.normalizer.Run(entry.SummaryHTML, entry.CanonicalLink)

		if err := p.notifier.Notify(ctx, entry, summary); err != nil {
			logrus.Errorf("Delivery failed for incident %s: %v", entry.ID, err)
			p.metrics.NotificationFailures.Inc()
			failedCount++
		} else {
			p.metrics.NotificationsSent.Inc()
		}

		// Recorded immediately so a duplicate id later in the same pull
		// is not notified twice.
		seen.Record(entry.ID)
		newCount++
	}

	if seen.Dirty() {
		if err := p.seenStore.Persist(seen); err != nil {
			return fmt.Errorf("failed to persist seen-set: %w", err)
		}
	}
	p.metrics.SeenSetSize.Set(float64(seen.Len()))

	if newCount > 0 {
		logrus.Infof("Processed %d feed entries: %d new, %d delivery failures",
			len(entries), newCount, failedCount)
	}

	if failedCount > 0 {
		return fmt.Errorf("%d of %d notifications failed to send", failedCount, newCount)
	}
	return nil
}
