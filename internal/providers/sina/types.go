// Package sina provides a client for the Sina Finance quote endpoints.
// These are the primary providers for sector rankings, stock rankings and
// market breadth; they do not depend on the eastmoney push2 servers.
package sina

import "fmt"

// Sort fields accepted by the ranked-stocks endpoint
const (
	SortChangePct = "changepercent"
	SortAmount    = "amount"
)

// APIError represents a non-200 response from a Sina endpoint
type APIError struct {
	StatusCode int
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sina API error: status %d (endpoint: %s)", e.StatusCode, e.Endpoint)
}
