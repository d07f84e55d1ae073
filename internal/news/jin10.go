package news

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/marketbrief/internal/models"
)

const (
	// jin10MaxItems caps the flash feed, which is high-volume
	jin10MaxItems = 40
	// jin10MinTitleLen drops fragments (rune count)
	jin10MinTitleLen = 6
)

var (
	htmlTagRe     = regexp.MustCompile(`<[^>]+>`)
	jsArrayRe     = regexp.MustCompile(`(?s)\[.*\]`)
	jin10Formats  = []string{"2006-01-02 15:04:05", "2006-01-02 15:04"}
	jin10Referer  = "https://www.jin10.com/"
	jin10AppID    = "bVBF4FyRTn5NJF5n"
	jin10MaxTitle = 120
)

// Jin10Source fetches the jin10 7x24 flash newswire
type Jin10Source struct {
	baseURL    string
	httpClient *http.Client
	logger     arbor.ILogger
}

// NewJin10Source creates the jin10 flash adapter
func NewJin10Source(httpClient *http.Client, logger arbor.ILogger) *Jin10Source {
	return &Jin10Source{
		baseURL:    "https://www.jin10.com",
		httpClient: httpClient,
		logger:     logger,
	}
}

func (s *Jin10Source) Name() string { return "jin10" }

// Fetch retrieves the newest flash entries. The endpoint serves a JS variable
// assignment wrapping a JSON array; the array is extracted before parsing.
func (s *Jin10Source) Fetch(ctx context.Context) ([]models.NewsItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/flash_newest.js", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Referer", jin10Referer)
	req.Header.Set("X-App-Id", jin10AppID)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jin10 flash feed: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(string(body))
	if strings.HasPrefix(text, "var ") {
		if match := jsArrayRe.FindString(text); match != "" {
			text = match
		}
	}

	var entries []struct {
		Time      string          `json:"time"`
		Important int             `json:"important"`
		Data      json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal([]byte(text), &entries); err != nil {
		return nil, fmt.Errorf("jin10 flash feed: %w", err)
	}

	var items []models.NewsItem
	for _, entry := range entries {
		title := flashTitle(entry.Data)
		title = strings.TrimSpace(htmlTagRe.ReplaceAllString(title, ""))
		if len([]rune(title)) < jin10MinTitleLen {
			continue
		}

		var pubTime time.Time
		for _, layout := range jin10Formats {
			if t, err := time.ParseInLocation(layout, entry.Time, time.Local); err == nil {
				pubTime = t
				break
			}
		}

		prefix := ""
		if entry.Important != 0 {
			prefix = "[重要] "
		}

		items = append(items, models.NewsItem{
			Title:       prefix + truncateRunes(title, jin10MaxTitle),
			URL:         jin10Referer,
			Source:      s.Name(),
			Content:     truncateRunes(title, 200),
			PublishTime: pubTime,
		})
		if len(items) >= jin10MaxItems {
			break
		}
	}
	return items, nil
}

// flashTitle extracts the text from a flash entry's data field, which is
// either a bare string or an object with content/title keys
func flashTitle(data json.RawMessage) string {
	if len(data) == 0 {
		return ""
	}

	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		return asString
	}

	var asObject struct {
		Content string `json:"content"`
		Title   string `json:"title"`
	}
	if err := json.Unmarshal(data, &asObject); err == nil {
		if asObject.Content != "" {
			return asObject.Content
		}
		return asObject.Title
	}
	return ""
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
