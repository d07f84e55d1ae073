package news

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/marketbrief/internal/models"
)

// SinaSource fetches the Sina Finance stock-channel roll feed
type SinaSource struct {
	baseURL    string
	httpClient *http.Client
	logger     arbor.ILogger
}

// NewSinaSource creates the sina news adapter
func NewSinaSource(httpClient *http.Client, logger arbor.ILogger) *SinaSource {
	return &SinaSource{
		baseURL:    "https://feed.mix.sina.com.cn",
		httpClient: httpClient,
		logger:     logger,
	}
}

func (s *SinaSource) Name() string { return "sina" }

// Fetch retrieves the most recent stock-channel roll entries
func (s *SinaSource) Fetch(ctx context.Context) ([]models.NewsItem, error) {
	params := url.Values{}
	params.Set("pageid", "155")
	params.Set("lid", "2516") // stock channel
	params.Set("num", "30")
	params.Set("page", "1")

	reqURL := s.baseURL + "/api/roll/get?" + params.Encode()
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
		return nil, fmt.Errorf("sina roll feed: status %d", resp.StatusCode)
	}

	var payload struct {
		Result struct {
			Data []struct {
				Title string `json:"title"`
				URL   string `json:"url"`
				Intro string `json:"intro"`
				Ctime string `json:"ctime"`
			} `json:"data"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("sina roll feed: %w", err)
	}

	var items []models.NewsItem
	for _, entry := range payload.Result.Data {
		title := strings.TrimSpace(entry.Title)
		if title == "" {
			continue
		}

		var pubTime time.Time
		if ts, err := strconv.ParseInt(entry.Ctime, 10, 64); err == nil && ts > 0 {
			pubTime = time.Unix(ts, 0)
		}

		items = append(items, models.NewsItem{
			Title:       title,
			URL:         entry.URL,
			Source:      s.Name(),
			Content:     entry.Intro,
			PublishTime: pubTime,
		})
	}
	return items, nil
}
