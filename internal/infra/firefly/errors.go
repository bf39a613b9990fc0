package firefly

import "fmt"

// APIError is a failed ledger API call. The request payload is carried for
// diagnostics, since the ledger's validation errors are only meaningful next
// to what was sent.
type APIError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
	Payload    string
}

func (e *APIError) Error() string {
	if e.Payload != "" {
		return fmt.Sprintf("firefly %s %s: status %d: %s (payload: %s)", e.Method, e.URL, e.StatusCode, e.Body, e.Payload)
	}
	return fmt.Sprintf("firefly %s %s: status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}
