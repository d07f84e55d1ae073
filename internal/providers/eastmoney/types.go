// Package eastmoney provides a client for the Eastmoney push2 family of
// endpoints. This is the secondary provider for sector/stock rankings, and the
// only provider for fund flow, watch data, the limit-up pool and stock
// classification. Calls are throttled by a shared rate limiter because the
// push2 servers ban aggressive clients.
package eastmoney

import "fmt"

// APIError represents a non-200 response from an eastmoney endpoint
type APIError struct {
	StatusCode int
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("eastmoney API error: status %d (endpoint: %s)", e.StatusCode, e.Endpoint)
}

// ut is the public token eastmoney web frontends send with push2 requests
const ut = "b2884a393a59ad64002292a3e90d46a5"

// Board list filters for the clist endpoint
const (
	fsIndustryBoards = "m:90+t:2+f:!50"
	fsConceptBoards  = "m:90+t:3+f:!50"
	// All A-share instruments across both exchanges
	fsAllAShares = "m:0+t:6,m:0+t:80,m:1+t:2,m:1+t:23,m:0+t:81+s:2048"
)
