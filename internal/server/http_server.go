package server

import (
	"net/http"
	"time"
)

// newHTTPServer creates an http.Server with production timeouts. Upgraded
// WebSocket connections are not subject to them; the upgrade clears the
// connection deadlines.
func newHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
