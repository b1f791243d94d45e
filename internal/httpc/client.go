// Package httpc builds HTTP clients for the speech and chat providers.
//
// Every provider talks to its API over TLS with the same connection
// profile. Constructing clients here keeps dial timeouts and pooling
// uniform instead of scattering http.Client literals per provider.
package httpc

import (
	"net"
	"net/http"
	"time"
)

// Connection defaults shared by all provider clients.
const (
	DefaultTimeout         = 30 * time.Second
	DefaultConnectTimeout  = 10 * time.Second
	DefaultKeepAlive       = 30 * time.Second
	DefaultIdleConnTimeout = 90 * time.Second
)

// NewClient returns an HTTP client with a pooled transport and the
// given overall request timeout. A non-positive timeout falls back to
// DefaultTimeout.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   DefaultConnectTimeout,
				KeepAlive: DefaultKeepAlive,
			}).DialContext,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       DefaultIdleConnTimeout,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}
