package news

import (
	"context"
	"sort"
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/marketbrief/internal/interfaces"
	"github.com/ternarybob/marketbrief/internal/models"
)

// Collector fans out to all registered sources concurrently and merges
// their results into a single deduplicated, time-ordered report.
type Collector struct {
	sources  []interfaces.NewsSource
	maxItems int
	logger   arbor.ILogger
}

type CollectorOption func(*Collector)

// WithMaxItems caps the merged report. Zero means no cap.
func WithMaxItems(n int) CollectorOption {
	return func(c *Collector) {
		c.maxItems = n
	}
}

func NewCollector(logger arbor.ILogger, sources []interfaces.NewsSource, opts ...CollectorOption) *Collector {
	c := &Collector{
		sources: sources,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type sourceResult struct {
	name  string
	items []models.NewsItem
	err   error
}

// Collect queries every source in parallel. A failing source is logged and
// skipped; the merged result only errors when no source produced anything
// and at least one failed.
func (c *Collector) Collect(ctx context.Context) (*models.NewsReport, error) {
	results := make([]sourceResult, len(c.sources))

	var wg sync.WaitGroup
	for i, source := range c.sources {
		wg.Add(1)
		go func(i int, source interfaces.NewsSource) {
			defer wg.Done()
			items, err := source.Fetch(ctx)
			results[i] = sourceResult{name: source.Name(), items: items, err: err}
		}(i, source)
	}
	wg.Wait()

	var merged []models.NewsItem
	seen := make(map[string]struct{})
	var failed int
	var lastErr error

	for _, res := range results {
		if res.err != nil {
			failed++
			lastErr = res.err
			if c.logger != nil {
				c.logger.Warn().Str("source", res.name).Err(res.err).Msg("News source failed")
			}
			continue
		}
		for _, item := range res.items {
			fp := item.Fingerprint()
			if _, dup := seen[fp]; dup {
				continue
			}
			seen[fp] = struct{}{}
			merged = append(merged, item)
		}
	}

	if len(merged) == 0 && failed > 0 {
		return nil, lastErr
	}

	sortByTimeDesc(merged)
	if c.maxItems > 0 && len(merged) > c.maxItems {
		merged = merged[:c.maxItems]
	}

	if c.logger != nil {
		c.logger.Info().Int("items", len(merged)).Int("sources", len(c.sources)).Int("failed", failed).Msg("News collection complete")
	}
	return &models.NewsReport{Items: merged}, nil
}

// sortByTimeDesc orders items newest first. Items without a publish time
// sink to the end; the sort is stable so arrival order breaks ties.
func sortByTimeDesc(items []models.NewsItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].PublishTime, items[j].PublishTime
		if a.IsZero() {
			return false
		}
		if b.IsZero() {
			return true
		}
		return a.After(b)
	})
}
