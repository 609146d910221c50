package ownhttp

import (
	"net/http"

	"golang.org/x/time/rate"
)

// ThrottleTransport waits for the limiter before every request.
// Waiting respects the request context.
type ThrottleTransport struct {
	T       http.RoundTripper
	limiter *rate.Limiter
}

func (tt *ThrottleTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := tt.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return tt.T.RoundTrip(req)
}

// NewThrottleTransport wraps T (or the default transport if T is nil)
func NewThrottleTransport(T http.RoundTripper, limiter *rate.Limiter) *ThrottleTransport {
	if T == nil {
		T = http.DefaultTransport
	}
	return &ThrottleTransport{T, limiter}
}
