// Package transport provides http.RoundTripper wrappers for the source wiki
// client.
package transport

import (
	"net/http"
	"net/url"
)

// BasicAuth adds HTTP Basic credentials to requests for a single host.
// Requests to any other host, such as attachments served from a CDN, pass
// through untouched.
type BasicAuth struct {
	inner    http.RoundTripper
	host     string
	username string
	password string
}

// NewBasicAuth creates a BasicAuth transport scoped to the host of baseURL.
// If inner is nil, http.DefaultTransport is used.
func NewBasicAuth(baseURL, username, password string, inner http.RoundTripper) (*BasicAuth, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	if inner == nil {
		inner = http.DefaultTransport
	}
	return &BasicAuth{
		inner:    inner,
		host:     u.Host,
		username: username,
		password: password,
	}, nil
}

// RoundTrip implements http.RoundTripper.
func (t *BasicAuth) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Host != t.host || req.Header.Get("Authorization") != "" {
		return t.inner.RoundTrip(req)
	}
	authed := req.Clone(req.Context())
	authed.SetBasicAuth(t.username, t.password)
	return t.inner.RoundTrip(authed)
}
