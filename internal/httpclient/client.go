// Package httpclient builds the shared HTTP transport used by every provider
// client and news adapter. The transport is stateless with respect to business
// data and safe to share across goroutines.
package httpclient

import (
	"net/http"
	"time"
)

// DefaultHeaders is the browser-like identity header set sent with every
// request. Several of the upstream endpoints reject requests without a
// plausible User-Agent.
var DefaultHeaders = map[string]string{
	"User-Agent": "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/120.0.0.0 Safari/537.36",
	"Accept":          "application/json, text/javascript, */*; q=0.01",
	"Accept-Language": "zh-CN,zh;q=0.9,en;q=0.8",
}

// Options configures the shared client
type Options struct {
	Timeout time.Duration
	// BypassSystemProxy disables ambient proxy settings (HTTP_PROXY et al).
	// The upstream providers are mainland-China hosts that are typically
	// unreachable through a local proxy.
	BypassSystemProxy bool
	// Headers are applied to every request; nil falls back to DefaultHeaders
	Headers map[string]string
}

// headerTransport injects the identity headers on every request without the
// callers having to set them per call
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	for k, v := range t.headers {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}
	return t.base.RoundTrip(req)
}

// New creates the shared HTTP client
func New(opts Options) *http.Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	headers := opts.Headers
	if headers == nil {
		headers = DefaultHeaders
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.BypassSystemProxy {
		transport.Proxy = nil
	}

	return &http.Client{
		Timeout: opts.Timeout,
		Transport: &headerTransport{
			base:    transport,
			headers: headers,
		},
	}
}
