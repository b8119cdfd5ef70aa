package server

import "strings"

// healthResponse is the body of GET /health.
type healthResponse struct {
	Status  string `json:"status"`
	Clients int    `json:"clients"`
	Users   int    `json:"users"`
	Rooms   int    `json:"rooms"`
}

// errorResponse is the body of every JSON error.
type errorResponse struct {
	Error string `json:"error"`
}

// isExpectedCloseError checks if an error is expected during connection closure.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "websocket: close sent") ||
		strings.Contains(errStr, "broken pipe")
}
