package news

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEastmoneySourceFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/comm/web/getNewsByColumns", r.URL.Path)
		switch r.URL.Query().Get("columns") {
		case "298":
			assert.Equal(t, "30", r.URL.Query().Get("pageSize"))
			w.Write([]byte(`{"data":{"list":[
				{"title":"沪指放量上涨","showTime":"2026-08-28 14:30:00","art_code":"202608281234","mediaName":"证券时报"},
				{"title":"","showTime":"2026-08-28 14:00:00","art_code":"x"}
			]}}`))
		case "297":
			assert.Equal(t, "20", r.URL.Query().Get("pageSize"))
			w.Write([]byte(`{"data":{"list":[
				{"title":"财经早餐","date":"2026-08-28","code":"202608285678"}
			]}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	source := NewEastmoneySource(server.Client(), nil)
	source.baseURL = server.URL

	items, err := source.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2, "empty titles are dropped")

	assert.Equal(t, "沪指放量上涨", items[0].Title)
	assert.Equal(t, "eastmoney", items[0].Source)
	assert.Equal(t, "证券时报", items[0].Content)
	assert.Equal(t, "https://finance.eastmoney.com/a/202608281234.html", items[0].URL)
	assert.Equal(t, time.Date(2026, 8, 28, 14, 30, 0, 0, time.Local), items[0].PublishTime)

	assert.Equal(t, "财经早餐", items[1].Title)
	assert.Equal(t, "https://finance.eastmoney.com/a/202608285678.html", items[1].URL)
}

func TestEastmoneySourcePartialColumnFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("columns") == "298" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"data":{"list":[{"title":"仅剩一列可用","showTime":"2026-08-28 09:00:00"}]}}`))
	}))
	defer server.Close()

	source := NewEastmoneySource(server.Client(), nil)
	source.baseURL = server.URL

	items, err := source.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "仅剩一列可用", items[0].Title)
}

func TestSinaSourceFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/roll/get", r.URL.Path)
		assert.Equal(t, "155", r.URL.Query().Get("pageid"))
		assert.Equal(t, "2516", r.URL.Query().Get("lid"))
		w.Write([]byte(`{"result":{"data":[
			{"title":"两市成交额再破两万亿","url":"https://finance.sina.com.cn/x.shtml","intro":"成交持续放大","ctime":"1787894400"},
			{"title":"时间字段异常的消息","url":"https://finance.sina.com.cn/y.shtml","ctime":"bad"}
		]}}`))
	}))
	defer server.Close()

	source := NewSinaSource(server.Client(), nil)
	source.baseURL = server.URL

	items, err := source.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "两市成交额再破两万亿", items[0].Title)
	assert.Equal(t, "sina", items[0].Source)
	assert.Equal(t, time.Unix(1787894400, 0), items[0].PublishTime)
	assert.True(t, items[1].PublishTime.IsZero(), "unparsable ctime leaves the zero time")
}

func TestJin10SourceFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/flash_newest.js", r.URL.Path)
		assert.Equal(t, "bVBF4FyRTn5NJF5n", r.Header.Get("X-App-Id"))
		w.Write([]byte(`var newest = [
			{"time":"2026-08-28 10:15:00","important":1,"data":"央行开展<b>3000亿元</b>逆回购操作"},
			{"time":"2026-08-28 10:10:00","important":0,"data":{"content":"国家统计局公布最新工业增加值数据"}},
			{"time":"2026-08-28 10:05:00","important":0,"data":"短"}
		];`))
	}))
	defer server.Close()

	source := NewJin10Source(server.Client(), nil)
	source.baseURL = server.URL

	items, err := source.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2, "fragments under the minimum length are dropped")

	assert.Equal(t, "[重要] 央行开展3000亿元逆回购操作", items[0].Title, "HTML tags stripped, important flag prefixed")
	assert.Equal(t, "国家统计局公布最新工业增加值数据", items[1].Title)
	assert.Equal(t, "jin10", items[0].Source)
}

func TestCLSSourceFetch(t *testing.T) {
	page := `<html><body>
		<div class="telegraph-content-box">
			<span class="telegraph-time-box">09:35:20</span>
			<span class="telegraph-content">【多部门联合发文】推动新型储能产业高质量发展，相关企业有望受益。</span>
			<a href="/detail/12345">详情</a>
		</div>
		<div class="telegraph-content-box">
			<span class="telegraph-time-box">09:30:00</span>
			<span class="telegraph-content">沪深两市今日高开，三大股指集体上涨。</span>
		</div>
	</body></html>`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/telegraph", r.URL.Path)
		w.Write([]byte(page))
	}))
	defer server.Close()

	source := NewCLSSource(server.Client(), nil, WithCLSBaseURL(server.URL))

	items, err := source.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "多部门联合发文", items[0].Title)
	assert.Contains(t, items[0].Content, "新型储能")
	assert.Equal(t, server.URL+"/detail/12345", items[0].URL)
	assert.Equal(t, "cls", items[0].Source)
	assert.False(t, items[0].PublishTime.IsZero())

	assert.Equal(t, "沪深两市今日高开", items[1].Title, "first sentence serves as the headline")
}

func TestCLSSourceEmptyPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`<html><body></body></html>`))
	}))
	defer server.Close()

	source := NewCLSSource(server.Client(), nil, WithCLSBaseURL(server.URL))

	_, err := source.Fetch(context.Background())
	assert.Error(t, err, "a page with no items is treated as a failed source")
}

func TestSplitFlash(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		title   string
		content string
	}{
		{
			name:    "bracketed headline",
			text:    "【重磅消息】正文内容在这里。",
			title:   "重磅消息",
			content: "正文内容在这里。",
		},
		{
			name:    "first sentence",
			text:    "第一句是标题。后面是更多内容。",
			title:   "第一句是标题",
			content: "第一句是标题。后面是更多内容。",
		},
		{
			name:    "no separator",
			text:    "只有一句话没有句号",
			title:   "只有一句话没有句号",
			content: "只有一句话没有句号",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, content := splitFlash(tt.text)
			assert.Equal(t, tt.title, title)
			assert.Equal(t, tt.content, content)
		})
	}
}

func TestParseClockStamp(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.Local)

	morning := parseClockStamp("09:35:20", now)
	assert.Equal(t, time.Date(2026, 8, 28, 9, 35, 20, 0, time.Local), morning)

	evening := parseClockStamp("22:00:00", now)
	assert.Equal(t, time.Date(2026, 8, 27, 22, 0, 0, 0, time.Local), evening, "stamps ahead of now roll back a day")

	assert.True(t, parseClockStamp("garbage", now).IsZero())
}
