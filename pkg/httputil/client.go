package httputil

import (
	"net"
	"net/http"
	"time"
)

// NewHTTPClient creates an HTTP client with timeouts suitable for registry
// API calls. The overall request timeout is 30s; connection establishment
// and TLS handshake get tighter budgets so stuck dials fail fast.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 15 * time.Second,
			MaxIdleConns:          20,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
		},
	}
}
