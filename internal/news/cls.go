package news

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/marketbrief/internal/models"
)

const (
	clsDefaultBase = "https://www.cls.cn"

	minFlashRunes   = 6
	maxTitleRunes   = 120
	maxContentRunes = 200
)

// CLSSource scrapes the Cailian Press telegraph page. The page renders the
// most recent flash items server-side, which is enough for a snapshot; no
// API token is required.
type CLSSource struct {
	baseURL    string
	httpClient *http.Client
	logger     arbor.ILogger
}

type CLSOption func(*CLSSource)

func WithCLSBaseURL(baseURL string) CLSOption {
	return func(s *CLSSource) {
		s.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

func NewCLSSource(httpClient *http.Client, logger arbor.ILogger, opts ...CLSOption) *CLSSource {
	s := &CLSSource{
		baseURL:    clsDefaultBase,
		httpClient: httpClient,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *CLSSource) Name() string { return "cls" }

func (s *CLSSource) Fetch(ctx context.Context) ([]models.NewsItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/telegraph", nil)
	if err != nil {
		return nil, fmt.Errorf("build cls request: %w", err)
	}
	req.Header.Set("Referer", s.baseURL+"/")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch cls telegraph: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cls telegraph returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse cls telegraph: %w", err)
	}

	now := time.Now()
	var items []models.NewsItem
	doc.Find("div.telegraph-content-box").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Find("span.telegraph-content").First().Text())
		if text == "" {
			text = strings.TrimSpace(sel.Text())
		}
		stamp := strings.TrimSpace(sel.Find("span.telegraph-time-box").First().Text())
		title, content := splitFlash(text)
		if len([]rune(title)) < minFlashRunes {
			return
		}

		item := models.NewsItem{
			Title:       truncateRunes(title, maxTitleRunes),
			Source:      s.Name(),
			Content:     truncateRunes(content, maxContentRunes),
			PublishTime: parseClockStamp(stamp, now),
		}
		if href, ok := sel.Find("a").First().Attr("href"); ok && href != "" {
			if strings.HasPrefix(href, "/") {
				href = s.baseURL + href
			}
			item.URL = href
		}
		items = append(items, item)
	})

	if len(items) == 0 {
		return nil, fmt.Errorf("cls telegraph returned no items")
	}
	return items, nil
}

// splitFlash separates a flash into a headline and body. Telegraph items
// lead with a bracketed headline; without one the first sentence serves.
func splitFlash(text string) (title, content string) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "【") {
		if end := strings.Index(text, "】"); end > 0 {
			title = strings.TrimSpace(text[len("【"):end])
			content = strings.TrimSpace(text[end+len("】"):])
			return title, content
		}
	}
	for _, sep := range []string{"。", "；"} {
		if idx := strings.Index(text, sep); idx > 0 {
			return strings.TrimSpace(text[:idx]), text
		}
	}
	return text, text
}

// parseClockStamp interprets an HH:MM:SS wall-clock stamp as today's time.
// Stamps ahead of now are treated as yesterday's.
func parseClockStamp(stamp string, now time.Time) time.Time {
	clock, err := time.Parse("15:04:05", stamp)
	if err != nil {
		if clock, err = time.Parse("15:04", stamp); err != nil {
			return time.Time{}
		}
	}
	t := time.Date(now.Year(), now.Month(), now.Day(), clock.Hour(), clock.Minute(), clock.Second(), 0, now.Location())
	if t.After(now) {
		t = t.AddDate(0, 0, -1)
	}
	return t
}
