package ownhttp

import "net/http"

// DefaultUserAgent is the User-Agent used if none is configured
const DefaultUserAgent = "mclaunch/0.1 (+https://github.com/minepkg/mclaunch)"

// AddHeaderTransport sets the User-Agent header on every request
type AddHeaderTransport struct {
	T         http.RoundTripper
	UserAgent string
}

func (adt *AddHeaderTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		// RoundTrippers should not modify the request
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", adt.UserAgent)
	}
	return adt.T.RoundTrip(req)
}

func NewAddHeaderTransport(T http.RoundTripper, userAgent string) *AddHeaderTransport {
	if T == nil {
		T = http.DefaultTransport
	}
	return &AddHeaderTransport{T, userAgent}
}
