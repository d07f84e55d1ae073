package news

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/marketbrief/internal/interfaces"
	"github.com/ternarybob/marketbrief/internal/models"
)

type stubSource struct {
	name  string
	items []models.NewsItem
	err   error
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(_ context.Context) ([]models.NewsItem, error) {
	return s.items, s.err
}

func at(hour, minute int) time.Time {
	return time.Date(2026, 8, 28, hour, minute, 0, 0, time.Local)
}

func TestCollectorMergesAndSorts(t *testing.T) {
	sources := []interfaces.NewsSource{
		&stubSource{name: "a", items: []models.NewsItem{
			{Title: "早间消息", Source: "a", PublishTime: at(9, 30)},
			{Title: "无时间戳消息", Source: "a"},
		}},
		&stubSource{name: "b", items: []models.NewsItem{
			{Title: "午后消息", Source: "b", PublishTime: at(14, 0)},
		}},
	}

	report, err := NewCollector(nil, sources).Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Items, 3)

	assert.Equal(t, "午后消息", report.Items[0].Title)
	assert.Equal(t, "早间消息", report.Items[1].Title)
	assert.Equal(t, "无时间戳消息", report.Items[2].Title, "items without a timestamp sink to the end")
}

func TestCollectorDeduplicates(t *testing.T) {
	shared := "国务院发布新政策支持先进制造业发展壮大，利好多个行业板块持续走强"
	sources := []interfaces.NewsSource{
		&stubSource{name: "a", items: []models.NewsItem{
			{Title: shared, Source: "a", PublishTime: at(10, 0), URL: "https://a.example/1"},
			{Title: shared, Source: "a", PublishTime: at(10, 5), URL: "https://a.example/2"},
		}},
		&stubSource{name: "b", items: []models.NewsItem{
			{Title: shared, Source: "b", PublishTime: at(10, 1)},
		}},
	}

	report, err := NewCollector(nil, sources).Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Items, 2, "same source collapses, different source survives")

	urls := []string{report.Items[0].URL, report.Items[1].URL}
	assert.Contains(t, urls, "https://a.example/1", "first occurrence wins within a source")
	assert.NotContains(t, urls, "https://a.example/2")
}

func TestCollectorToleratesFailedSource(t *testing.T) {
	sources := []interfaces.NewsSource{
		&stubSource{name: "broken", err: fmt.Errorf("connection refused")},
		&stubSource{name: "ok", items: []models.NewsItem{
			{Title: "正常消息", Source: "ok", PublishTime: at(11, 0)},
		}},
	}

	report, err := NewCollector(nil, sources).Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Items, 1)
	assert.Equal(t, "正常消息", report.Items[0].Title)
}

func TestCollectorAllSourcesFailed(t *testing.T) {
	sources := []interfaces.NewsSource{
		&stubSource{name: "a", err: fmt.Errorf("timeout")},
		&stubSource{name: "b", err: fmt.Errorf("status 503")},
	}

	_, err := NewCollector(nil, sources).Collect(context.Background())
	assert.Error(t, err)
}

func TestCollectorMaxItems(t *testing.T) {
	var items []models.NewsItem
	for i := 0; i < 10; i++ {
		items = append(items, models.NewsItem{
			Title:       fmt.Sprintf("第%d条消息内容", i),
			Source:      "a",
			PublishTime: at(9, i),
		})
	}
	sources := []interfaces.NewsSource{&stubSource{name: "a", items: items}}

	report, err := NewCollector(nil, sources, WithMaxItems(4)).Collect(context.Background())
	require.NoError(t, err)
	assert.Len(t, report.Items, 4)
	assert.Equal(t, "第9条消息内容", report.Items[0].Title, "cap keeps the newest items")
}

func TestCollectorEmptySourcesNoError(t *testing.T) {
	sources := []interfaces.NewsSource{&stubSource{name: "a"}}

	report, err := NewCollector(nil, sources).Collect(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Items)
}
