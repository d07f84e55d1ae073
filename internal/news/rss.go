package news

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/marketbrief/internal/models"
)

// RSSSource fetches user-configured RSS/Atom feeds. One adapter covers all
// configured feeds; a feed that fails is skipped, every feed failing is an
// error so the collector records the source as degraded.
type RSSSource struct {
	feeds  []string
	parser *gofeed.Parser
	logger arbor.ILogger
}

// NewRSSSource creates the RSS adapter. Feed URLs that are not http(s) are
// dropped at construction.
func NewRSSSource(feeds []string, httpClient *http.Client, logger arbor.ILogger) *RSSSource {
	valid := make([]string, 0, len(feeds))
	for _, feed := range feeds {
		if strings.HasPrefix(feed, "http://") || strings.HasPrefix(feed, "https://") {
			valid = append(valid, feed)
		}
	}

	parser := gofeed.NewParser()
	parser.Client = httpClient

	return &RSSSource{
		feeds:  valid,
		parser: parser,
		logger: logger,
	}
}

func (s *RSSSource) Name() string { return "rss" }

// Fetch retrieves and flattens all configured feeds
func (s *RSSSource) Fetch(ctx context.Context) ([]models.NewsItem, error) {
	if len(s.feeds) == 0 {
		return nil, nil
	}

	var items []models.NewsItem
	var lastErr error

	for _, feedURL := range s.feeds {
		feed, err := s.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			lastErr = fmt.Errorf("rss feed %s: %w", feedURL, err)
			if s.logger != nil {
				s.logger.Warn().Str("feed", feedURL).Err(err).Msg("RSS feed failed")
			}
			continue
		}

		for _, entry := range feed.Items {
			title := strings.TrimSpace(entry.Title)
			if title == "" {
				continue
			}
			item := models.NewsItem{
				Title:   title,
				URL:     entry.Link,
				Source:  s.Name(),
				Content: strings.TrimSpace(entry.Description),
			}
			if entry.PublishedParsed != nil {
				item.PublishTime = entry.PublishedParsed.Local()
			}
			items = append(items, item)
		}
	}

	if len(items) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return items, nil
}
