// Package news implements the news source adapters and the concurrent
// collector. Each adapter contains its own failures; the collector tolerates
// any subset of sources being down.
package news

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/marketbrief/internal/models"
)

// showTimeFormats are the timestamp layouts the eastmoney list API emits
var showTimeFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// EastmoneySource fetches the A-share headline and finance digest columns
type EastmoneySource struct {
	baseURL    string
	httpClient *http.Client
	logger     arbor.ILogger
}

// NewEastmoneySource creates the eastmoney news adapter
func NewEastmoneySource(httpClient *http.Client, logger arbor.ILogger) *EastmoneySource {
	return &EastmoneySource{
		baseURL:    "https://np-listapi.eastmoney.com",
		httpClient: httpClient,
		logger:     logger,
	}
}

func (s *EastmoneySource) Name() string { return "eastmoney" }

// Fetch retrieves the A-share headlines (column 298) plus the finance digest
// (column 297). A column that fails is skipped; both failing is an error.
func (s *EastmoneySource) Fetch(ctx context.Context) ([]models.NewsItem, error) {
	var items []models.NewsItem
	var lastErr error

	for _, column := range []string{"298", "297"} {
		colItems, err := s.fetchColumn(ctx, column)
		if err != nil {
			lastErr = err
			continue
		}
		items = append(items, colItems...)
	}

	if len(items) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return items, nil
}

func (s *EastmoneySource) fetchColumn(ctx context.Context, column string) ([]models.NewsItem, error) {
	params := url.Values{}
	params.Set("columns", column)
	if column == "298" {
		params.Set("pageSize", "30")
	} else {
		params.Set("pageSize", "20")
	}
	params.Set("pageIndex", "0")

	reqURL := s.baseURL + "/comm/web/getNewsByColumns?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("eastmoney news column %s: status %d", column, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Data struct {
			List []struct {
				Title     string `json:"title"`
				ShowTime  string `json:"showTime"`
				Date      string `json:"date"`
				ArtCode   string `json:"art_code"`
				Code      string `json:"code"`
				MediaName string `json:"mediaName"`
			} `json:"list"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("eastmoney news column %s: %w", column, err)
	}

	var items []models.NewsItem
	for _, entry := range payload.Data.List {
		title := strings.TrimSpace(entry.Title)
		if title == "" {
			continue
		}

		dateStr := entry.ShowTime
		if dateStr == "" {
			dateStr = entry.Date
		}
		var pubTime time.Time
		for _, layout := range showTimeFormats {
			if t, err := time.ParseInLocation(layout, dateStr, time.Local); err == nil {
				pubTime = t
				break
			}
		}

		artCode := entry.ArtCode
		if artCode == "" {
			artCode = entry.Code
		}
		link := ""
		if artCode != "" {
			link = "https://finance.eastmoney.com/a/" + artCode + ".html"
		}

		items = append(items, models.NewsItem{
			Title:       title,
			URL:         link,
			Source:      s.Name(),
			Content:     entry.MediaName,
			PublishTime: pubTime,
		})
	}
	return items, nil
}
