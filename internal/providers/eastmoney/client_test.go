package eastmoney

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(srv *httptest.Server) *Client {
	// No throttle in tests
	return NewClient(WithBaseURL(srv.URL), WithThrottle(time.Nanosecond))
}

func TestSecID(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"600519", "1.600519"},
		{"900901", "1.900901"},
		{"300274", "0.300274"},
		{"000001", "0.000001"},
		{"830799", "0.830799"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SecID(tt.code), "code %s", tt.code)
	}
}

func TestQuoteList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/qt/ulist.np/get", r.URL.Path)
		assert.Equal(t, "1.600519,0.300274", r.URL.Query().Get("secids"))
		assert.NotEmpty(t, r.URL.Query().Get("_"), "cache-busting timestamp required")
		w.Write([]byte(`{"data":{"total":2,"diff":[
			{"f12":"600519","f14":"贵州茅台","f2":1688.0,"f3":1.2,"f6":5.1e9},
			{"f12":"300274","f14":"阳光电源","f2":88.5,"f3":5.0,"f6":2.85e9}
		]}}`))
	}))
	defer srv.Close()

	rows, err := newTestClient(srv).QuoteList(context.Background(), []string{"600519", "300274"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "贵州茅台", rows[0].Name)
	assert.InDelta(t, 88.5, rows[1].LastPrice, 1e-9)
}

func TestQuoteList_MissingValuesAsDash(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"total":1,"diff":[{"f12":"300274","f14":"阳光电源","f2":"-","f3":"-"}]}}`))
	}))
	defer srv.Close()

	rows, err := newTestClient(srv).QuoteList(context.Background(), []string{"300274"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Zero(t, rows[0].LastPrice)
	assert.Zero(t, rows[0].ChangePct)
}

func TestSectorFundFlowRank(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/qt/clist/get", r.URL.Path)
		assert.Equal(t, "f62", r.URL.Query().Get("fid"))
		w.Write([]byte(`{"data":{"total":1,"diff":[{"f12":"BK1031","f14":"光伏设备","f3":2.1,"f62":1.25e9,"f184":8.4}]}}`))
	}))
	defer srv.Close()

	rows, err := newTestClient(srv).SectorFundFlowRank(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "光伏设备", rows[0].Name)
	assert.InDelta(t, 1.25e9, rows[0].MainInflow, 1e-3)
}

func TestLimitUpPool(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/getTopicZTPool", r.URL.Path)
		assert.Equal(t, "20260831", r.URL.Query().Get("date"))
		// Codes arrive as numbers on this endpoint
		w.Write([]byte(`{"data":{"pool":[
			{"c":300274,"n":"阳光电源","hybk":"光伏设备","lbc":3},
			{"c":1234,"n":"测试科技","hybk":"半导体","lbc":0}
		]}}`))
	}))
	defer srv.Close()

	pool, err := newTestClient(srv).LimitUpPool(context.Background(), "20260831")
	require.NoError(t, err)
	require.Len(t, pool, 2)

	assert.Equal(t, "光伏设备", pool["300274"].Industry)
	assert.Equal(t, 3, pool["300274"].Boards)

	// Numeric code zero-padded back to 6 digits, board floor of 1
	assert.Equal(t, "半导体", pool["001234"].Industry)
	assert.Equal(t, 1, pool["001234"].Boards)
}

func TestLimitUpPool_EmptyData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":null}`))
	}))
	defer srv.Close()

	pool, err := newTestClient(srv).LimitUpPool(context.Background(), "20260831")
	require.NoError(t, err)
	assert.Empty(t, pool)
}

func TestOrgClassification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/data/v1/get", r.URL.Path)
		assert.Contains(t, r.URL.Query().Get("filter"), `"300274"`)
		w.Write([]byte(`{"result":{"data":[
			{"SECURITY_CODE":"300274","SECURITY_NAME_ABBR":"阳光电源","EM2016":"电气设备-电源设备-太阳能"},
			{"SECURITY_CODE":"600519","SECURITY_NAME_ABBR":"贵州茅台","EM2016":""}
		]}}`))
	}))
	defer srv.Close()

	result, err := newTestClient(srv).OrgClassification(context.Background(), []string{"300274", "600519"})
	require.NoError(t, err)
	require.Len(t, result, 2)

	assert.Equal(t, "太阳能", result["300274"].Industry)
	assert.Equal(t, []string{"电气设备", "电源设备", "太阳能"}, result["300274"].Keywords)
	assert.Empty(t, result["600519"].Industry)
}

func TestCompanyProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "SZ300274", r.URL.Query().Get("code"))
		w.Write([]byte(`{"jbzl":{"sshy":"光伏设备"}}`))
	}))
	defer srv.Close()

	industry, err := newTestClient(srv).CompanyProfile(context.Background(), "300274")
	require.NoError(t, err)
	assert.Equal(t, "光伏设备", industry)
}

func TestGetJSON_Non200IsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).SpotList(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
}
