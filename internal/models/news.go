package models

import "time"

// fingerprintTitleLen is the number of title runes included in the dedup key
const fingerprintTitleLen = 30

// NewsItem represents a single news article from any source
type NewsItem struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	Content     string    `json:"content"`
	PublishTime time.Time `json:"publish_time"`
}

// Fingerprint returns the deduplication key: source plus the first 30 runes
// of the title. The source is part of the key on purpose - the same story
// carried by two different feeds stays distinct, only exact reposts from one
// source collapse.
func (n NewsItem) Fingerprint() string {
	title := []rune(n.Title)
	if len(title) > fingerprintTitleLen {
		title = title[:fingerprintTitleLen]
	}
	return n.Source + ":" + string(title)
}

// NewsReport holds the collected news stream plus sector correlation results
type NewsReport struct {
	Items []NewsItem `json:"items"`
	// Matched maps a sector name to the news items whose title or content
	// mention it. Populated by news.MatchToSectors.
	Matched map[string][]NewsItem `json:"matched,omitempty"`
}
