package httpclient

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InjectsDefaultHeaders(t *testing.T) {
	var gotUA, gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotLang = r.Header.Get("Accept-Language")
	}))
	defer srv.Close()

	client := New(Options{Timeout: 5 * time.Second})
	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Contains(t, gotUA, "Chrome/120")
	assert.Equal(t, "zh-CN,zh;q=0.9,en;q=0.8", gotLang)
}

func TestNew_PerRequestHeadersWin(t *testing.T) {
	var gotRef string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRef = r.Header.Get("Referer")
	}))
	defer srv.Close()

	client := New(Options{
		Timeout: 5 * time.Second,
		Headers: map[string]string{"Referer": "https://example.com/default"},
	})

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	req.Header.Set("Referer", "https://example.com/override")

	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "https://example.com/override", gotRef)
}

func TestNew_BypassSystemProxy(t *testing.T) {
	client := New(Options{Timeout: 5 * time.Second, BypassSystemProxy: true})

	ht, ok := client.Transport.(*headerTransport)
	require.True(t, ok)
	base, ok := ht.base.(*http.Transport)
	require.True(t, ok)
	assert.Nil(t, base.Proxy)
}

func TestNew_KeepsSystemProxyByDefault(t *testing.T) {
	client := New(Options{Timeout: 5 * time.Second})

	ht, ok := client.Transport.(*headerTransport)
	require.True(t, ok)
	base, ok := ht.base.(*http.Transport)
	require.True(t, ok)
	assert.NotNil(t, base.Proxy)
}
