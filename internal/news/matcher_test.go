package news

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/marketbrief/internal/models"
)

func TestMatchToSectors(t *testing.T) {
	report := &models.NewsReport{Items: []models.NewsItem{
		{Title: "国务院发布半导体产业扶持新政策", Source: "a"},
		{Title: "白酒板块午后走强", Content: "酿酒行业龙头集体上涨", Source: "b"},
		{Title: "国际油价震荡", Source: "c"},
	}}

	matched := MatchToSectors(report, []string{"半导体", "酿酒行业", "房地产"})
	require.Len(t, matched, 2)

	require.Len(t, matched["半导体"], 1)
	assert.Equal(t, "国务院发布半导体产业扶持新政策", matched["半导体"][0].Title)

	require.Len(t, matched["酿酒行业"], 1, "content is searched as well as title")

	_, ok := matched["房地产"]
	assert.False(t, ok, "sectors with no related news are absent")
}

func TestMatchToSectorsEmptyInputs(t *testing.T) {
	assert.Nil(t, MatchToSectors(nil, []string{"半导体"}))
	assert.Nil(t, MatchToSectors(&models.NewsReport{}, []string{"半导体"}))
	assert.Nil(t, MatchToSectors(&models.NewsReport{Items: []models.NewsItem{{Title: "x"}}}, nil))
	assert.Nil(t, MatchToSectors(&models.NewsReport{Items: []models.NewsItem{{Title: "x"}}}, []string{""}))
}
