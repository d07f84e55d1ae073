package interfaces

import (
	"context"

	"github.com/ternarybob/marketbrief/internal/models"
)

// NewsSource is one independent news feed. Implementations contain their own
// failures: a broken provider returns (nil, err) and never panics past the
// boundary, so the collector can degrade per source.
type NewsSource interface {
	Name() string
	Fetch(ctx context.Context) ([]models.NewsItem, error)
}
