package news

import (
	"strings"

	"github.com/ternarybob/marketbrief/internal/models"
)

// MatchToSectors attaches news items to sector names by substring search
// over title and content. The result maps sector name to its related items
// in report order; sectors with no matches are absent.
func MatchToSectors(report *models.NewsReport, sectorNames []string) map[string][]models.NewsItem {
	if report == nil || len(report.Items) == 0 || len(sectorNames) == 0 {
		return nil
	}

	matched := make(map[string][]models.NewsItem)
	for _, name := range sectorNames {
		if name == "" {
			continue
		}
		for _, item := range report.Items {
			if strings.Contains(item.Title, name) || strings.Contains(item.Content, name) {
				matched[name] = append(matched[name], item)
			}
		}
	}
	if len(matched) == 0 {
		return nil
	}
	return matched
}
